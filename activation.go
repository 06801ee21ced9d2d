package modregistry

import (
	"context"
)

// IsEnabled reports whether the named module is currently enabled. Unknown
// names report false and never error. A hit counts as a read access and bumps
// the module's access metrics.
func (r *Registry) IsEnabled(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[name]
	if !ok {
		return false
	}
	r.touchLocked(entry)
	return entry.Config.Enabled
}

// Enable activates a disabled module. It reports false without mutating
// state when the module is unknown, failed registration, has a dependency
// that is not currently enabled, or has a required feature that currently
// evaluates false. On success the module returns to StatusLoaded and a
// module enabled event is emitted.
func (r *Registry) Enable(name string) bool {
	r.mu.Lock()
	entry, ok := r.entries[name]
	if !ok || entry.Status == StatusError {
		r.mu.Unlock()
		return false
	}

	for _, dep := range entry.Config.Dependencies {
		depEntry, depOk := r.entries[dep]
		if !depOk || !depEntry.Config.Enabled {
			r.mu.Unlock()
			r.logger.Warn("Enable refused, dependency not enabled", "module", name, "dependency", dep)
			return false
		}
	}
	for _, flag := range entry.Config.RequiredFeatures {
		if !r.flags.IsEnabled(flag) {
			r.mu.Unlock()
			r.logger.Warn("Enable refused, required feature disabled", "module", name, "feature", flag)
			return false
		}
	}

	entry.Config.Enabled = true
	entry.Status = StatusLoaded
	r.mu.Unlock()

	r.logger.Info("Module enabled", "module", name)
	r.emit(context.Background(), EventTypeModuleEnabled, name, nil)
	return true
}

// Disable deactivates a module. It reports false without mutating state when
// the module is unknown, failed registration, or still has at least one
// enabled dependent. On success the module moves to StatusDisabled and a
// module disabled event with reason "manual" is emitted.
func (r *Registry) Disable(name string) bool {
	r.mu.Lock()
	entry, ok := r.entries[name]
	if !ok || entry.Status == StatusError {
		r.mu.Unlock()
		return false
	}

	if blockers := r.enabledDependentsLocked(name); len(blockers) > 0 {
		r.mu.Unlock()
		r.logger.Warn("Disable refused, module has enabled dependents", "module", name, "dependents", blockers)
		return false
	}

	entry.Config.Enabled = false
	entry.Status = StatusDisabled
	r.mu.Unlock()

	r.logger.Info("Module disabled", "module", name)
	r.emit(context.Background(), EventTypeModuleDisabled, name, map[string]any{"reason": "manual"})
	return true
}

// CanDisable reports whether Disable would be permitted for name, without
// mutating anything. Unknown names report true: no module, no constraint.
func (r *Registry) CanDisable(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; !ok {
		return true
	}
	return len(r.enabledDependentsLocked(name)) == 0
}
