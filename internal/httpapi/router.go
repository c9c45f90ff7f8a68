// Package httpapi exposes the run trigger, health check and metrics over HTTP.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nguyentantai21042004/meetsort/internal/logger"
	"github.com/nguyentantai21042004/meetsort/internal/processor"
)

type Router struct {
	proc   processor.Processor
	logger logger.Logger
}

func NewRouter(proc processor.Processor, log logger.Logger) http.Handler {
	r := &Router{proc: proc, logger: log}
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)

	mux.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	mux.Get("/", r.wrap(r.handleRun))
	mux.Post("/", r.wrap(r.handleRun))

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			r.logger.Error(req.Context(), "Request %s %s failed: %v", req.Method, req.URL.Path, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}
}

// GET|POST /
// Runs one pass and returns the run summary.
func (r *Router) handleRun(w http.ResponseWriter, req *http.Request) error {
	r.logger.Info(req.Context(), "Run triggered by %s %s (request %s)", req.Method, req.URL.Path, middleware.GetReqID(req.Context()))

	summary, err := r.proc.Run(req.Context())
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, summary)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
