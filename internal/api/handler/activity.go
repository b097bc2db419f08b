package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iconidentify/tubegrab/internal/domain"
	"github.com/iconidentify/tubegrab/internal/service"
)

// ActivityLister reads the activity log.
type ActivityLister interface {
	List(ctx context.Context, query domain.ActivityQuery) ([]domain.Activity, error)
	Stats() service.ActivityStats
}

// ActivityHandler handles activity log requests.
type ActivityHandler struct {
	activitySvc ActivityLister
	logger      *slog.Logger
}

// NewActivityHandler creates a new activity handler.
func NewActivityHandler(activitySvc ActivityLister, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{
		activitySvc: activitySvc,
		logger:      logger,
	}
}

// ActivityListResponse is the JSON response for GET /api/activity.
type ActivityListResponse struct {
	Success bool                   `json:"success"`
	Entries []domain.Activity      `json:"entries"`
	Stats   *service.ActivityStats `json:"stats,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// List handles GET /api/activity
// Query parameters:
//   - kind: lookup or download
//   - limit: max entries to return (default 50, max 200)
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	var query domain.ActivityQuery

	if k := r.URL.Query().Get("kind"); k != "" {
		query.Kind = domain.ActivityKind(k)
		if !query.Kind.Valid() {
			writeJSON(w, http.StatusBadRequest, ActivityListResponse{
				Error: fmt.Sprintf("invalid kind %q", k),
			})
			return
		}
	}

	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, ActivityListResponse{
				Error: fmt.Sprintf("invalid limit %q", l),
			})
			return
		}
		query.Limit = parsed
	}

	entries, err := h.activitySvc.List(r.Context(), query)
	if err != nil {
		h.logger.Error("list activity failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ActivityListResponse{
			Error: "Unexpected error: " + err.Error(),
		})
		return
	}

	stats := h.activitySvc.Stats()
	writeJSON(w, http.StatusOK, ActivityListResponse{
		Success: true,
		Entries: entries,
		Stats:   &stats,
	})
}
