package modregistry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlManifest = `modules:
  - name: core
    version: 1.0.0
    enabled: true
    category: core
  - name: auth
    version: 1.2.0
    enabled: true
    category: core
    dependencies: [core]
  - name: grades
    version: 2.0.0
    enabled: true
    category: feature
    dependencies: [core, auth]
    routes: [/grades]
`

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadManifestYAML(t *testing.T) {
	registry := newTestRegistry(t)
	path := writeManifest(t, "modules.yaml", yamlManifest)

	require.NoError(t, registry.LoadManifest(path))

	assert.Equal(t, 3, registry.GetStatistics().Total)
	assert.True(t, registry.IsEnabled("grades"))
	assert.Equal(t, []string{"core", "auth"}, registry.GetDependencies("grades"))
	assert.ElementsMatch(t, []string{"auth", "grades"}, registry.GetDependents("core"))
}

func TestLoadManifestTOML(t *testing.T) {
	registry := newTestRegistry(t)
	path := writeManifest(t, "modules.toml", `
[[modules]]
name = "core"
version = "1.0.0"
enabled = true

[[modules]]
name = "grades"
version = "2.0.0"
enabled = true
dependencies = ["core"]
`)

	require.NoError(t, registry.LoadManifest(path))
	assert.True(t, registry.IsEnabled("grades"))
	assert.Equal(t, []string{"grades"}, registry.GetDependents("core"))
}

func TestLoadManifestStopsAtFirstFailure(t *testing.T) {
	registry := newTestRegistry(t)
	path := writeManifest(t, "modules.yaml", `modules:
  - name: core
    version: 1.0.0
    enabled: true
  - name: broken
    version: 1.0.0
    enabled: true
    dependencies: [missing]
  - name: never-registered
    version: 1.0.0
    enabled: true
`)

	err := registry.LoadManifest(path)
	require.ErrorIs(t, err, ErrDependencyNotFound)
	assert.Contains(t, err.Error(), "broken")

	// Earlier modules stay registered, later ones were never attempted
	assert.True(t, registry.IsEnabled("core"))
	_, ok := registry.GetModule("never-registered")
	assert.False(t, ok)
}

func TestLoadManifestUnsupportedFormat(t *testing.T) {
	registry := newTestRegistry(t)
	path := writeManifest(t, "modules.json", `{}`)
	assert.ErrorIs(t, registry.LoadManifest(path), ErrUnsupportedManifestFormat)
}

func TestLoadManifestMissingFile(t *testing.T) {
	registry := newTestRegistry(t)
	assert.Error(t, registry.LoadManifest(filepath.Join(t.TempDir(), "absent.yaml")))
}

func TestReadManifest(t *testing.T) {
	path := writeManifest(t, "modules.yaml", yamlManifest)
	manifest, err := ReadManifest(path)
	require.NoError(t, err)
	require.Len(t, manifest.Modules, 3)
	assert.Equal(t, "auth", manifest.Modules[1].Name)
	assert.Equal(t, []string{"core"}, manifest.Modules[1].Dependencies)
}
