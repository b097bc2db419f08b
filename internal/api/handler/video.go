package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/iconidentify/tubegrab/internal/domain"
	"github.com/iconidentify/tubegrab/internal/service"
)

// maxRequestBody bounds the JSON body of POST /api/download.
const maxRequestBody = 1 << 20

// MetadataService looks up video details.
type MetadataService interface {
	GetVideoDetails(ctx context.Context, rawURL string) (*domain.VideoDetails, error)
}

// DownloadService downloads videos.
type DownloadService interface {
	Download(ctx context.Context, req domain.DownloadRequest) (*service.DownloadResult, error)
}

// VideoHandler handles video-related HTTP requests.
type VideoHandler struct {
	metadataSvc MetadataService
	downloadSvc DownloadService
	logger      *slog.Logger

	// shutdown, when set, aborts running downloads once it is done.
	shutdown context.Context
}

// NewVideoHandler creates a new video handler.
func NewVideoHandler(metadataSvc MetadataService, downloadSvc DownloadService, logger *slog.Logger) *VideoHandler {
	return &VideoHandler{
		metadataSvc: metadataSvc,
		downloadSvc: downloadSvc,
		logger:      logger,
	}
}

// SetShutdownContext ties running downloads to ctx instead of the client
// connection. A client that disconnects does not stop its download.
func (h *VideoHandler) SetShutdownContext(ctx context.Context) {
	h.shutdown = ctx
}

func (h *VideoHandler) downloadContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	if h.shutdown == nil {
		return ctx, cancel
	}
	stop := context.AfterFunc(h.shutdown, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// DownloadRequest is the JSON request body for downloads.
type DownloadRequest struct {
	URL    string `json:"url"`
	Format string `json:"format,omitempty"`
}

// DownloadResponse is the JSON response for downloads.
type DownloadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Title   string `json:"title,omitempty"`
	Format  string `json:"format,omitempty"`
	Path    string `json:"path,omitempty"`
	Error   string `json:"error,omitempty"`
}

// VideoDetailsData is the projection of a single video.
type VideoDetailsData struct {
	Title     string `json:"title"`
	Channel   string `json:"channel"`
	Thumbnail string `json:"thumbnail"`
	Duration  string `json:"duration"`
}

// VideoDetailsResponse is the JSON response for metadata lookups.
type VideoDetailsResponse struct {
	Success bool              `json:"success"`
	Data    *VideoDetailsData `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// Details handles GET /api/video_details?url=...
func (h *VideoHandler) Details(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeJSON(w, http.StatusBadRequest, VideoDetailsResponse{Error: domain.ErrMissingURL.Error()})
		return
	}

	details, err := h.metadataSvc.GetVideoDetails(r.Context(), rawURL)
	if err != nil {
		writeJSON(w, statusFor(err), VideoDetailsResponse{Error: lookupErrorText(err)})
		return
	}

	writeJSON(w, http.StatusOK, VideoDetailsResponse{
		Success: true,
		Data: &VideoDetailsData{
			Title:     details.Title,
			Channel:   details.Channel,
			Thumbnail: details.Thumbnail,
			Duration:  details.Duration,
		},
	})
}

// Download handles POST /api/download.
func (h *VideoHandler) Download(w http.ResponseWriter, r *http.Request) {
	var req DownloadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, DownloadResponse{
			Message: "Invalid request",
			Error:   fmt.Sprintf("%s: %v", domain.ErrInvalidRequestBody, err),
		})
		return
	}

	ctx, cancel := h.downloadContext(r)
	defer cancel()

	result, err := h.downloadSvc.Download(ctx, domain.DownloadRequest{
		URL:    req.URL,
		Format: req.Format,
	})
	if err != nil {
		message := domain.MessageOf(err, "Download failed")
		if domain.KindOf(err) == domain.KindValidation {
			message = "Invalid request"
		}
		writeJSON(w, statusFor(err), DownloadResponse{
			Message: message,
			Error:   domain.DetailOf(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, DownloadResponse{
		Success: true,
		Message: "Video downloaded successfully as " + result.Filename,
		Title:   result.Title,
		Format:  result.Format,
		Path:    result.Path,
	})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUpstream, domain.KindInternal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func lookupErrorText(err error) string {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return domain.DetailOf(err)
	case domain.KindNotFound:
		return domain.ErrVideoNotFound.Error()
	case domain.KindUpstream:
		return "YouTube API error: " + domain.DetailOf(err)
	default:
		return "Unexpected error: " + domain.DetailOf(err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
