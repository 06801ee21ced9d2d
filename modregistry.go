// Package modregistry provides an in-process module registry for applications
// composed of named functional units. Modules register with declared
// dependencies and feature-flag gates; the registry validates the dependency
// graph, detects cycles, gates activation on externally-owned feature flags,
// guards cascading enable/disable, and tracks per-module health and metrics.
//
// The registry is a library surface, not a service: it holds no network
// protocol and no persistent state. Construct isolated instances with New and
// inject them where needed:
//
//	registry := modregistry.New(
//		modregistry.WithLogger(logger),
//		modregistry.WithFlagEvaluator(flags),
//	)
//	if err := registry.Register(cfg); err != nil {
//		log.Fatal(err)
//	}
package modregistry

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"
)

// ModuleStatus represents the registration status of a module.
type ModuleStatus string

const (
	// StatusLoaded indicates the module registered successfully.
	StatusLoaded ModuleStatus = "loaded"
	// StatusDisabled indicates the module was deliberately deactivated.
	StatusDisabled ModuleStatus = "disabled"
	// StatusError indicates registration failed validation, dependency
	// resolution, or cycle detection. Terminal for that entry.
	StatusError ModuleStatus = "error"
)

// ModuleMetrics tracks per-module usage counters.
type ModuleMetrics struct {
	// LoadTime is the wall-clock duration of the registration call.
	LoadTime time.Duration `json:"loadTime"`
	// AccessCount increments on every read access via IsEnabled or GetModule.
	AccessCount int64 `json:"accessCount"`
	// LastAccessed is the time of the most recent read access.
	// Zero if the module has never been read.
	LastAccessed time.Time `json:"lastAccessed,omitempty"`
}

// ModuleHealth is the stored health state for a module, set at registration
// and refreshed by PerformHealthCheck.
type ModuleHealth struct {
	Status    HealthStatus   `json:"status"`
	LastCheck time.Time      `json:"lastCheck"`
	Details   map[string]any `json:"details,omitempty"`
}

// ModuleEntry is the registry-owned record for a registered module.
type ModuleEntry struct {
	Config   ModuleConfig  `json:"config"`
	Status   ModuleStatus  `json:"status"`
	LoadedAt time.Time     `json:"loadedAt,omitempty"`
	Err      error         `json:"-"`
	Metrics  ModuleMetrics `json:"metrics"`
	Health   ModuleHealth  `json:"health"`
}

// Registry is the process-wide module registry. It owns all module state and
// serializes mutating operations; use New to construct isolated instances.
type Registry struct {
	mu         sync.Mutex
	entries    map[string]*ModuleEntry
	dependents map[string][]string

	flags  FeatureFlagEvaluator
	logger Logger
	now    func() time.Time
	source string

	observerMu sync.RWMutex
	observers  []*observerRegistration

	healthSchedule *healthSchedule
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the structured logger used by the registry.
func WithLogger(logger Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithFlagEvaluator sets the feature flag evaluator consulted for gating.
// When unset, every flag evaluates false, so modules declaring required
// features start disabled.
func WithFlagEvaluator(flags FeatureFlagEvaluator) Option {
	return func(r *Registry) {
		if flags != nil {
			r.flags = flags
		}
	}
}

// WithClock overrides the registry's time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithEventSource overrides the CloudEvents source attribute on emitted events.
func WithEventSource(source string) Option {
	return func(r *Registry) {
		if source != "" {
			r.source = source
		}
	}
}

// New creates an empty module registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		entries:    make(map[string]*ModuleEntry),
		dependents: make(map[string][]string),
		flags:      NewStaticFlagEvaluator(nil),
		logger:     noopLogger{},
		now:        time.Now,
		source:     "/campusware/modregistry",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a module to the registry.
//
// The config is validated first; a validation failure creates no entry. A
// duplicate name fails with ErrDuplicateModule and leaves the original entry
// untouched. A missing dependency or a detected cycle still creates the entry
// with StatusError and the failure recorded on it, so the failed registration
// remains observable through GetModule, and the same error is returned.
//
// On success the initial enabled state is the caller's request gated by the
// feature flag evaluator: every required feature must currently be true.
// A module registered event is emitted for every created entry.
func (r *Registry) Register(cfg ModuleConfig) error {
	start := r.now()

	if err := cfg.Validate(); err != nil {
		r.logger.Debug("Module config rejected", "module", cfg.Name, "error", err)
		return err
	}

	r.mu.Lock()
	if _, exists := r.entries[cfg.Name]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateModule, cfg.Name)
	}

	entry := &ModuleEntry{
		Config: cfg,
		Health: ModuleHealth{Status: HealthUnknown},
	}

	regErr := r.resolveDependenciesLocked(cfg)
	if regErr != nil {
		entry.Status = StatusError
		entry.Err = regErr
		entry.Config.Enabled = false
		r.storeLocked(entry)
		r.mu.Unlock()

		r.logger.Error("Module registration failed", "module", cfg.Name, "error", regErr)
		r.emit(context.Background(), EventTypeModuleRegistered, cfg.Name, map[string]any{
			"status": string(StatusError),
			"error":  regErr.Error(),
		})
		return regErr
	}

	entry.Status = StatusLoaded
	entry.LoadedAt = r.now()
	entry.Config.Enabled = cfg.Enabled && r.requiredFeaturesSatisfiedLocked(cfg)
	entry.Health = ModuleHealth{Status: HealthHealthy, LastCheck: entry.LoadedAt}
	entry.Metrics.LoadTime = r.now().Sub(start)
	r.storeLocked(entry)
	r.mu.Unlock()

	r.logger.Info("Module registered",
		"module", cfg.Name,
		"version", cfg.Version,
		"enabled", entry.Config.Enabled,
		"dependencies", cfg.Dependencies)
	r.emit(context.Background(), EventTypeModuleRegistered, cfg.Name, map[string]any{
		"status":  string(StatusLoaded),
		"version": cfg.Version,
		"enabled": entry.Config.Enabled,
	})
	return nil
}

// resolveDependenciesLocked checks dependency existence and cycles for a
// config about to be stored. Dependencies must already be registered; edges
// declared by error-status entries participate in cycle detection, so a
// registration that completes a loop through an earlier failed entry is
// reported here.
func (r *Registry) resolveDependenciesLocked(cfg ModuleConfig) error {
	for _, dep := range cfg.Dependencies {
		if dep == cfg.Name {
			// The module being registered participates in the graph even
			// though it is not stored yet; the cycle walk reports self-loops.
			continue
		}
		if _, ok := r.entries[dep]; !ok {
			return fmt.Errorf("%w: %s (required by %s)", ErrDependencyNotFound, dep, cfg.Name)
		}
	}
	if cycle := r.detectCycleLocked(cfg.Name, cfg.Dependencies); cycle != nil {
		return fmt.Errorf("%w: %s", ErrCircularDependency, formatCycle(cycle))
	}
	return nil
}

// storeLocked inserts the entry and maintains the reverse-edge index. The
// dependents index is keyed by referenced name even when the dependency entry
// failed to register, which keeps it the exact transpose of forward edges
// over stored entries.
func (r *Registry) storeLocked(entry *ModuleEntry) {
	name := entry.Config.Name
	r.entries[name] = entry
	for _, dep := range entry.Config.Dependencies {
		if slices.Contains(r.dependents[dep], name) {
			continue
		}
		r.dependents[dep] = append(r.dependents[dep], name)
	}
}

func (r *Registry) requiredFeaturesSatisfiedLocked(cfg ModuleConfig) bool {
	for _, flag := range cfg.RequiredFeatures {
		if !r.flags.IsEnabled(flag) {
			r.logger.Debug("Required feature not enabled", "module", cfg.Name, "feature", flag)
			return false
		}
	}
	return true
}

// GetModule returns a snapshot of the entry for name. The second return is
// false when no module with that name was ever registered. A hit counts as a
// read access and bumps the module's access metrics.
func (r *Registry) GetModule(name string) (ModuleEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[name]
	if !ok {
		return ModuleEntry{}, false
	}
	r.touchLocked(entry)
	return snapshotEntry(entry), true
}

// GetAllModules returns snapshots of every entry, sorted by module name.
func (r *Registry) GetAllModules() []ModuleEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collectLocked(func(*ModuleEntry) bool { return true })
}

// GetEnabledModules returns snapshots of all currently enabled modules,
// sorted by module name.
func (r *Registry) GetEnabledModules() []ModuleEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collectLocked(func(e *ModuleEntry) bool { return e.Config.Enabled })
}

// GetModulesByCategory returns snapshots of all modules whose config carries
// the given category tag, sorted by module name.
func (r *Registry) GetModulesByCategory(category string) []ModuleEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collectLocked(func(e *ModuleEntry) bool { return e.Config.Category == category })
}

func (r *Registry) collectLocked(match func(*ModuleEntry) bool) []ModuleEntry {
	out := make([]ModuleEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		if match(entry) {
			out = append(out, snapshotEntry(entry))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Config.Name < out[j].Config.Name })
	return out
}

// touchLocked records a read access on an entry.
func (r *Registry) touchLocked(entry *ModuleEntry) {
	entry.Metrics.AccessCount++
	entry.Metrics.LastAccessed = r.now()
}

// snapshotEntry copies an entry so callers never alias registry-owned state.
func snapshotEntry(entry *ModuleEntry) ModuleEntry {
	out := *entry
	out.Config.Dependencies = append([]string(nil), entry.Config.Dependencies...)
	out.Config.Routes = append([]string(nil), entry.Config.Routes...)
	out.Config.Components = append([]string(nil), entry.Config.Components...)
	out.Config.Services = append([]string(nil), entry.Config.Services...)
	out.Config.RequiredFeatures = append([]string(nil), entry.Config.RequiredFeatures...)
	out.Config.OptionalFeatures = append([]string(nil), entry.Config.OptionalFeatures...)
	if entry.Health.Details != nil {
		details := make(map[string]any, len(entry.Health.Details))
		for k, v := range entry.Health.Details {
			details[k] = v
		}
		out.Health.Details = details
	}
	return out
}

// Clear atomically resets the module store and the dependency indexes.
// Registered observers and any running health schedule are retained; Clear is
// intended for test teardown and bootstrap, not steady-state use.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*ModuleEntry)
	r.dependents = make(map[string][]string)
	r.logger.Debug("Module registry cleared")
}
