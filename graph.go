package modregistry

import (
	"strings"
)

// GetDependencies returns the dependency names a module declared at
// registration, in declaration order. Unknown names yield an empty list.
// Error-status entries report their declared dependencies too, so a failed
// registration stays inspectable.
func (r *Registry) GetDependencies(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil
	}
	return append([]string(nil), entry.Config.Dependencies...)
}

// GetDependents returns the names of stored modules that declared a
// dependency on name. Unknown names yield an empty list. The result is the
// exact inverse of the forward dependency relation over stored entries.
func (r *Registry) GetDependents(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; !ok {
		return nil
	}
	return append([]string(nil), r.dependents[name]...)
}

// enabledDependentsLocked filters the reverse edges of name down to modules
// that are currently enabled.
func (r *Registry) enabledDependentsLocked(name string) []string {
	var enabled []string
	for _, dependent := range r.dependents[name] {
		if entry, ok := r.entries[dependent]; ok && entry.Config.Enabled {
			enabled = append(enabled, dependent)
		}
	}
	return enabled
}

// detectCycleLocked walks the dependency relation depth-first starting at the
// module being registered, treating its candidate dependency list as if the
// edges were already stored. A repeat visit to a node on the current path is
// a cycle; the returned slice is the offending path ending at the repeated
// node. Returns nil when the graph stays acyclic.
func (r *Registry) detectCycleLocked(name string, deps []string) []string {
	edges := func(node string) []string {
		if node == name {
			return deps
		}
		if entry, ok := r.entries[node]; ok {
			return entry.Config.Dependencies
		}
		return nil
	}

	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	var path []string

	var visit func(node string) []string
	visit = func(node string) []string {
		if visiting[node] {
			return append(append([]string(nil), path...), node)
		}
		if visited[node] {
			return nil
		}
		visiting[node] = true
		path = append(path, node)

		for _, dep := range edges(node) {
			if cycle := visit(dep); cycle != nil {
				return cycle
			}
		}

		path = path[:len(path)-1]
		visiting[node] = false
		visited[node] = true
		return nil
	}

	return visit(name)
}

func formatCycle(cycle []string) string {
	return strings.Join(cycle, " -> ")
}
