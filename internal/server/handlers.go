package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ClimateCodeFoundation/zontem/internal/storage"
)

// HandleRoot redirects to the latest published report, or shows an
// initial page when no run has completed yet.
func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	runs, err := s.Storage.ListRuns(r.Context(), 1)
	if err != nil || len(runs) == 0 {
		s.serveInitialPage(w)
		return
	}

	w.Header().Set("Location", "/files/"+runs[0]+"/report.html")
	w.WriteHeader(http.StatusFound)
}

// serveInitialPage shows a minimal landing page before the first run.
func (s *Server) serveInitialPage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>Zontem</title></head>
<body>
	<h1>Zontem</h1>
	<p>No runs have completed yet. POST /run to compute the global annual
	temperature anomaly series from GHCN-M.</p>
	<ul>
		<li><strong>GET /health</strong> - service health</li>
		<li><strong>POST /run</strong> - execute a computation</li>
		<li><strong>GET /runs</strong> - list published runs</li>
	</ul>
</body>
</html>`)
}

// HandleHealth provides health check endpoint
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": map[string]string{
			"storage": "ok",
			"config":  "ok",
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// HandleRun executes a full computation and publishes its artifacts.
func (s *Server) HandleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// One computation at a time; a concurrent request gets a conflict
	// instead of a second multi-minute run.
	if !s.runMutex.TryLock() {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "conflict",
			"error":  "a run is already in progress",
		})
		return
	}
	defer s.runMutex.Unlock()

	startTime := time.Now()
	folder, summary, err := s.Runner.Execute(r.Context())
	if err != nil {
		logrus.WithError(err).Error("run failed")
		http.Error(w, fmt.Sprintf("Run failed: %v", err), http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"status":      "success",
		"run_folder":  folder,
		"report_url":  "/files/" + folder + "/report.html",
		"duration_ms": time.Since(startTime).Milliseconds(),
		"summary": map[string]interface{}{
			"stations":        summary.StationCount,
			"zones":           summary.ZoneCount,
			"populated_zones": summary.PopulatedZones,
			"first_year":      summary.FirstYear,
			"last_year":       summary.LastYear,
			"dropped_series":  len(summary.Dropped),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleListRuns lists recent published runs.
func (s *Server) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
		if limit > 100 {
			limit = 100
		}
	}

	runs, err := s.Storage.ListRuns(r.Context(), limit)
	if err != nil {
		logrus.WithError(err).Error("failed to list runs")
		http.Error(w, fmt.Sprintf("Failed to list runs: %v", err), http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"runs":      runs,
		"count":     len(runs),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleFileProxy serves any published artifact through the service.
func (s *Server) HandleFileProxy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/files/")
	if path == "" {
		http.Error(w, "File path required", http.StatusBadRequest)
		return
	}

	fileData, err := s.Storage.GetFile(r.Context(), path)
	if err != nil {
		logrus.WithError(err).WithField("path", path).Warn("artifact not found")
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", storage.ContentType(path))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(fileData)
}
