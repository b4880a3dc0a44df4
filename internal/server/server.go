// Package server exposes the computation over HTTP for deployments that
// rerun it on demand rather than as a one-shot batch.
package server

import (
	"net/http"
	"sync"

	"github.com/ClimateCodeFoundation/zontem/internal/config"
	"github.com/ClimateCodeFoundation/zontem/internal/runner"
	"github.com/ClimateCodeFoundation/zontem/internal/storage"
)

// Server holds the pieces a running service needs.
type Server struct {
	Config  *config.Config
	Storage storage.Client
	Runner  *runner.Runner

	runMutex sync.Mutex
}

// New creates a server around an already-initialized storage client.
func New(cfg *config.Config, store storage.Client) *Server {
	return &Server{
		Config:  cfg,
		Storage: store,
		Runner:  runner.New(cfg, store),
	}
}

// SetupRoutes configures HTTP routes for the server
func (s *Server) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/run", s.HandleRun)
	mux.HandleFunc("/runs", s.HandleListRuns)
	mux.HandleFunc("/files/", s.HandleFileProxy)
	mux.HandleFunc("/", s.HandleRoot)

	return mux
}

// Close cleans up server resources
func (s *Server) Close() error {
	if s.Storage != nil {
		return s.Storage.Close()
	}
	return nil
}
