package modregistry

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// moduleView is the JSON shape served for a module entry. Err does not
// marshal as an error value, so it is flattened to a string here.
type moduleView struct {
	ModuleEntry
	Error string `json:"error,omitempty"`
}

func viewOf(entry ModuleEntry) moduleView {
	view := moduleView{ModuleEntry: entry}
	if entry.Err != nil {
		view.Error = entry.Err.Error()
	}
	return view
}

// Handler returns a read-only HTTP handler for external pollers such as
// deployment health-check scripts. It exposes no mutating routes and
// participates in none of the registry's invariants.
//
//	GET /modules          all module entries
//	GET /modules/{name}   one module entry, 404 when absent
//	GET /statistics       registry statistics
//	GET /health           health sweep; 503 unless every module is healthy
func (r *Registry) Handler() http.Handler {
	router := chi.NewRouter()

	router.Get("/modules", func(w http.ResponseWriter, req *http.Request) {
		entries := r.GetAllModules()
		views := make([]moduleView, 0, len(entries))
		for _, entry := range entries {
			views = append(views, viewOf(entry))
		}
		writeJSON(w, http.StatusOK, views)
	})

	router.Get("/modules/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		entry, ok := r.GetModule(name)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "module not found", "module": name})
			return
		}
		writeJSON(w, http.StatusOK, viewOf(entry))
	})

	router.Get("/statistics", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, r.GetStatistics())
	})

	router.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		results := r.PerformHealthCheck(req.Context())
		status := http.StatusOK
		for _, result := range results {
			if !result.Status.IsHealthy() {
				status = http.StatusServiceUnavailable
				break
			}
		}
		writeJSON(w, status, results)
	})

	return router
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
