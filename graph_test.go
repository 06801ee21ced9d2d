package modregistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencyClosure(t *testing.T) {
	registry := newTestRegistry(t)
	require.NoError(t, registry.Register(moduleConfig("core")))
	require.NoError(t, registry.Register(moduleConfig("auth", "core")))
	require.NoError(t, registry.Register(moduleConfig("grades", "core", "auth")))

	assert.Equal(t, []string{"core", "auth"}, registry.GetDependencies("grades"))
	assert.Equal(t, []string{"core"}, registry.GetDependencies("auth"))
	assert.Empty(t, registry.GetDependencies("core"))

	assert.ElementsMatch(t, []string{"auth", "grades"}, registry.GetDependents("core"))
	assert.Equal(t, []string{"grades"}, registry.GetDependents("auth"))
	assert.Empty(t, registry.GetDependents("grades"))
}

func TestDependencyQueriesUnknownName(t *testing.T) {
	registry := newTestRegistry(t)
	assert.Empty(t, registry.GetDependencies("ghost"))
	assert.Empty(t, registry.GetDependents("ghost"))
}

func TestDependentsBackfilledForLateDependency(t *testing.T) {
	registry := newTestRegistry(t)

	// The forward reference fails, but its edge is recorded on the entry.
	err := registry.Register(moduleConfig("reports", "warehouse"))
	require.ErrorIs(t, err, ErrDependencyNotFound)
	assert.Empty(t, registry.GetDependents("warehouse")) // unknown name

	// Once the referenced name registers, the reverse relation is visible.
	require.NoError(t, registry.Register(moduleConfig("warehouse")))
	assert.Equal(t, []string{"reports"}, registry.GetDependents("warehouse"))
	assert.Equal(t, []string{"warehouse"}, registry.GetDependencies("reports"))
}

func TestCycleThroughErrorEntry(t *testing.T) {
	registry := newTestRegistry(t)

	require.ErrorIs(t, registry.Register(moduleConfig("a", "b")), ErrDependencyNotFound)

	// a failed, but its entry exists, so depending on it is allowed.
	require.NoError(t, registry.Register(moduleConfig("c", "a")))

	// b -> c -> a -> b is only detectable because a's failed entry kept its edge.
	err := registry.Register(moduleConfig("b", "c"))
	require.ErrorIs(t, err, ErrCircularDependency)
	assert.Contains(t, err.Error(), "b")
}

func TestLongerCycleDetected(t *testing.T) {
	registry := newTestRegistry(t)

	require.NoError(t, registry.Register(moduleConfig("base")))
	require.ErrorIs(t, registry.Register(moduleConfig("mid", "top")), ErrDependencyNotFound)

	err := registry.Register(moduleConfig("top", "base", "mid"))
	require.ErrorIs(t, err, ErrCircularDependency)

	// base remains untouched by the failed registrations
	assert.True(t, registry.IsEnabled("base"))
}

func TestRepeatedDependencyRecordedOnce(t *testing.T) {
	registry := newTestRegistry(t)

	require.NoError(t, registry.Register(moduleConfig("core")))
	require.NoError(t, registry.Register(moduleConfig("reports", "core", "core")))

	assert.Equal(t, []string{"reports"}, registry.GetDependents("core"))
	// The declared list is reported as supplied.
	assert.Equal(t, []string{"core", "core"}, registry.GetDependencies("reports"))
}

func TestDiamondDependencyIsNotACycle(t *testing.T) {
	registry := newTestRegistry(t)

	require.NoError(t, registry.Register(moduleConfig("core")))
	require.NoError(t, registry.Register(moduleConfig("left", "core")))
	require.NoError(t, registry.Register(moduleConfig("right", "core")))
	require.NoError(t, registry.Register(moduleConfig("apex", "left", "right")))

	assert.ElementsMatch(t, []string{"left", "right"}, registry.GetDependents("core"))
}
