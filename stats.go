package modregistry

import (
	"time"
)

// Synthetic memory model: a fixed per-module cost plus a per-item cost over
// the declared inventories. Deterministic by design; it does not track any
// real allocator.
const (
	moduleBaseCost = 2048
	listItemCost   = 128
)

// Statistics is a read-only rollup over the module store.
type Statistics struct {
	// Total counts every stored entry, including error-status entries.
	Total int `json:"total"`

	// Enabled counts modules whose config is currently enabled. Disabled and
	// Errors count by status. A loaded module gated off by feature flags
	// lands in none of the three, so Enabled+Disabled+Errors <= Total.
	Enabled  int `json:"enabled"`
	Disabled int `json:"disabled"`
	Errors   int `json:"errors"`

	// ByCategory and ByStatus are histograms over config category and status.
	ByCategory map[string]int       `json:"byCategory"`
	ByStatus   map[ModuleStatus]int `json:"byStatus"`

	// TotalMemoryUsage is the coarse synthetic footprint estimate in bytes.
	TotalMemoryUsage int64 `json:"totalMemoryUsage"`

	// AverageLoadTime is the mean registration duration across all entries,
	// zero when the store is empty.
	AverageLoadTime time.Duration `json:"averageLoadTime"`
}

// GetStatistics scans the store and produces aggregate counts, histograms,
// the synthetic memory estimate, and the average load time.
func (r *Registry) GetStatistics() Statistics {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Statistics{
		ByCategory: make(map[string]int),
		ByStatus:   make(map[ModuleStatus]int),
	}

	var totalLoadTime time.Duration
	for _, entry := range r.entries {
		stats.Total++
		if entry.Config.Enabled {
			stats.Enabled++
		}
		switch entry.Status {
		case StatusDisabled:
			stats.Disabled++
		case StatusError:
			stats.Errors++
		}
		if entry.Config.Category != "" {
			stats.ByCategory[entry.Config.Category]++
		}
		stats.ByStatus[entry.Status]++
		stats.TotalMemoryUsage += estimateFootprint(&entry.Config)
		totalLoadTime += entry.Metrics.LoadTime
	}

	if stats.Total > 0 {
		stats.AverageLoadTime = totalLoadTime / time.Duration(stats.Total)
	}
	return stats
}

func estimateFootprint(cfg *ModuleConfig) int64 {
	items := len(cfg.Dependencies) + len(cfg.Routes) + len(cfg.Components) + len(cfg.Services)
	return moduleBaseCost + int64(items)*listItemCost
}
