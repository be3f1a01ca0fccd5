// Package httpapi implements the read-only JSON inspection surface of
// spec.md §6: list endpoints over the registry, falling through to static
// file serving, and graceful shutdown on SIGINT/SIGTERM.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/xtaci/fedhub/registry"
)

// Server wraps an *http.Server configured with the spec.md §6 routes.
type Server struct {
	http *http.Server
	reg  *registry.Registry
}

// New builds a Server bound to addr (spec.md §6: "0.0.0.0:3031"), serving
// static files from htmlDir for any path not matched by an API route.
func New(addr string, reg *registry.Registry, htmlDir string) *Server {
	mux := http.NewServeMux()
	s := &Server{reg: reg}

	mux.HandleFunc("/api/list/item_frequency.json", s.handleItemFrequency)
	mux.HandleFunc("/api/list/items.json", s.handleItems)
	mux.HandleFunc("/api/list/fluid_frequency.json", s.handleFluidFrequency)
	mux.HandleFunc("/api/list/fluids.json", s.handleFluids)
	mux.HandleFunc("/api/list/energy_frequency.json", s.handleEnergyFrequency)
	mux.HandleFunc("/api/list/clients.json", s.handleClients)
	mux.Handle("/", http.FileServer(http.Dir(htmlDir)))

	s.http = &http.Server{Addr: addr, Handler: mux}
	return s
}

// ListenAndServe runs the HTTP server until Shutdown is called.
func (s *Server) ListenAndServe() error {
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server (spec.md §6: "Graceful shutdown
// on SIGINT or SIGTERM").
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
