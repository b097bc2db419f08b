package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

var startTime = time.Now()

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	downloadsDir string
	activity     Pinger
}

// NewHealthHandler creates a new health handler. activity may be nil.
func NewHealthHandler(downloadsDir string, activity Pinger) *HealthHandler {
	return &HealthHandler{
		downloadsDir: downloadsDir,
		activity:     activity,
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status    string        `json:"status"`
	Timestamp string        `json:"timestamp"`
	Uptime    string        `json:"uptime,omitempty"`
	Storage   *StorageStats `json:"storage,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// StorageStats describes the downloads directory's filesystem.
type StorageStats struct {
	Path       string  `json:"path"`
	FreeBytes  uint64  `json:"free_bytes"`
	TotalBytes uint64  `json:"total_bytes"`
	UsedPct    float64 `json:"used_pct"`
	FreeHuman  string  `json:"free_human"`
}

// Live handles GET /health - liveness probe.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(startTime).Round(time.Second).String(),
	})
}

// Ready handles GET /ready - readiness probe. The service is ready when the
// downloads directory is writable and the activity store answers.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC().Format(time.RFC3339)

	if err := checkWritable(h.downloadsDir); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "error",
			Timestamp: now,
			Error:     err.Error(),
		})
		return
	}

	if h.activity != nil {
		if err := h.activity.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:    "error",
				Timestamp: now,
				Error:     fmt.Sprintf("activity store: %v", err),
			})
			return
		}
	}

	stats := &StorageStats{Path: h.downloadsDir}
	if total, free, err := diskStats(h.downloadsDir); err == nil {
		stats.TotalBytes = total
		stats.FreeBytes = free
		if total > 0 {
			stats.UsedPct = float64(total-free) / float64(total) * 100
		}
	}
	stats.FreeHuman = humanize.Bytes(stats.FreeBytes)

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: now,
		Storage:   stats,
	})
}

// checkWritable verifies dir exists, is a directory and accepts new files.
func checkWritable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("downloads dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("downloads dir: %s is not a directory", dir)
	}

	f, err := os.CreateTemp(dir, ".ready-*")
	if err != nil {
		return fmt.Errorf("downloads dir not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
