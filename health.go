package modregistry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// HealthStatus represents the health state of a module.
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
	HealthUnknown   HealthStatus = "unknown"
)

// IsHealthy returns true if the status represents a healthy state.
func (s HealthStatus) IsHealthy() bool {
	return s == HealthHealthy
}

// HealthResult is the outcome of a single module's health evaluation.
type HealthResult struct {
	// Status is the health status determined by the check.
	Status HealthStatus `json:"status"`

	// Message provides human-readable details, such as which dependency
	// caused an unhealthy verdict.
	Message string `json:"message,omitempty"`

	// CheckedAt indicates when the check was performed.
	CheckedAt time.Time `json:"checkedAt"`

	// Details carries structured check information, including which optional
	// features are currently available under "featuresAvailable".
	Details map[string]any `json:"details,omitempty"`
}

// PerformHealthCheck reevaluates the health of every currently enabled
// module as one unit of work. Disabled and error-status modules are skipped.
//
// A module whose dependency is no longer enabled is unhealthy, with a message
// naming the first failing dependency. Otherwise the module is healthy and
// its optional features are checked against the flag evaluator, recording the
// available ones under the "featuresAvailable" detail key. Each examined
// module's stored health is refreshed and one health-check event per module
// is emitted after the sweep. The full result map is returned.
func (r *Registry) PerformHealthCheck(ctx context.Context) map[string]HealthResult {
	r.mu.Lock()
	results := make(map[string]HealthResult)
	for name, entry := range r.entries {
		if !entry.Config.Enabled {
			continue
		}
		result := r.checkModuleLocked(entry)
		entry.Health = ModuleHealth{
			Status:    result.Status,
			LastCheck: result.CheckedAt,
			Details:   result.Details,
		}
		results[name] = result
	}
	r.mu.Unlock()

	for name, result := range results {
		r.emit(ctx, EventTypeModuleHealthCheck, name, map[string]any{
			"status":  string(result.Status),
			"message": result.Message,
		})
	}
	return results
}

func (r *Registry) checkModuleLocked(entry *ModuleEntry) HealthResult {
	result := HealthResult{Status: HealthHealthy, CheckedAt: r.now()}

	for _, dep := range entry.Config.Dependencies {
		depEntry, ok := r.entries[dep]
		if !ok || !depEntry.Config.Enabled {
			result.Status = HealthUnhealthy
			result.Message = fmt.Sprintf("Dependency %s is not enabled", dep)
			r.logger.Warn("Module unhealthy", "module", entry.Config.Name, "dependency", dep)
			return result
		}
	}

	if len(entry.Config.OptionalFeatures) > 0 {
		available := make([]string, 0, len(entry.Config.OptionalFeatures))
		for _, flag := range entry.Config.OptionalFeatures {
			if r.flags.IsEnabled(flag) {
				available = append(available, flag)
			}
		}
		result.Details = map[string]any{"featuresAvailable": available}
	}
	return result
}

// healthSchedule drives periodic health sweeps through a cron scheduler.
type healthSchedule struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
}

// StartHealthSchedule begins running PerformHealthCheck on the given cron
// schedule (standard five-field cron spec, e.g. "*/5 * * * *"). Only one
// schedule may run at a time.
func (r *Registry) StartHealthSchedule(spec string) error {
	r.mu.Lock()
	if r.healthSchedule == nil {
		r.healthSchedule = &healthSchedule{}
	}
	schedule := r.healthSchedule
	r.mu.Unlock()

	schedule.mu.Lock()
	defer schedule.mu.Unlock()

	if schedule.cron != nil {
		return fmt.Errorf("%w: %s", ErrHealthScheduleRunning, spec)
	}

	c := cron.New()
	entryID, err := c.AddFunc(spec, func() {
		r.PerformHealthCheck(context.Background())
	})
	if err != nil {
		return fmt.Errorf("invalid health check schedule %q: %w", spec, err)
	}

	schedule.cron = c
	schedule.entryID = entryID
	c.Start()
	r.logger.Info("Health check schedule started", "schedule", spec)
	return nil
}

// StopHealthSchedule stops the periodic health sweep. Idempotent; a sweep
// already in flight completes before the scheduler's context is done.
func (r *Registry) StopHealthSchedule() {
	r.mu.Lock()
	schedule := r.healthSchedule
	r.mu.Unlock()
	if schedule == nil {
		return
	}

	schedule.mu.Lock()
	defer schedule.mu.Unlock()
	if schedule.cron == nil {
		return
	}
	ctx := schedule.cron.Stop()
	<-ctx.Done()
	schedule.cron = nil
	r.logger.Info("Health check schedule stopped")
}
