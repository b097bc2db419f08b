package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/iconidentify/tubegrab/internal/domain"
	"github.com/iconidentify/tubegrab/internal/metrics"
	"github.com/iconidentify/tubegrab/pkg/youtube"
)

// ActivityRecorder receives one entry per finished lookup or download.
type ActivityRecorder interface {
	Record(ctx context.Context, activity domain.Activity)
}

// MetadataService looks up video metadata in the YouTube Data API.
type MetadataService struct {
	client   youtube.Client
	activity ActivityRecorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewMetadataService creates a new metadata service. activity and m may be nil.
func NewMetadataService(
	client youtube.Client,
	activity ActivityRecorder,
	m *metrics.Metrics,
	logger *slog.Logger,
) *MetadataService {
	return &MetadataService{
		client:   client,
		activity: activity,
		metrics:  m,
		logger:   logger,
	}
}

// GetVideoDetails validates rawURL, extracts the video ID and fetches the
// video's details. The URL is fully validated before any outbound call.
func (s *MetadataService) GetVideoDetails(ctx context.Context, rawURL string) (*domain.VideoDetails, error) {
	start := time.Now()
	id, details, err := s.lookup(ctx, rawURL)
	s.finish(ctx, rawURL, id, details, err, time.Since(start))
	return details, err
}

func (s *MetadataService) lookup(ctx context.Context, rawURL string) (domain.VideoID, *domain.VideoDetails, error) {
	id, err := domain.VideoDetailsRequest{URL: rawURL}.Validate()
	if err != nil {
		return "", nil, domain.NewError(domain.KindValidation, "validate request", err)
	}

	list, err := s.client.ListVideos(ctx, id.String())
	if err != nil {
		return id, nil, domain.NewError(domain.KindUpstream, "list videos", err)
	}
	if list == nil || len(list.Items) == 0 {
		return id, nil, domain.NewError(domain.KindNotFound, "list videos", domain.ErrVideoNotFound)
	}

	return id, projectVideo(list.Items[0]), nil
}

func projectVideo(v youtube.Video) *domain.VideoDetails {
	return &domain.VideoDetails{
		Title:     v.Snippet.Title,
		Channel:   v.Snippet.ChannelTitle,
		Thumbnail: v.Snippet.Thumbnails.High.URL,
		Duration:  v.ContentDetails.Duration,
	}
}

func (s *MetadataService) finish(ctx context.Context, rawURL string, id domain.VideoID, details *domain.VideoDetails, err error, elapsed time.Duration) {
	entry := domain.Activity{
		Kind:     domain.ActivityLookup,
		URL:      rawURL,
		VideoID:  id.String(),
		Success:  err == nil,
		Duration: elapsed.Milliseconds(),
	}

	if err != nil {
		kind := domain.KindOf(err)
		entry.Error = err.Error()
		s.metrics.ObserveLookup(kind.String())

		level := slog.LevelWarn
		if kind == domain.KindUpstream || kind == domain.KindInternal {
			level = slog.LevelError
		}
		s.logger.Log(ctx, level, "video lookup failed",
			"url", rawURL,
			"video_id", id,
			"kind", kind.String(),
			"error", err,
		)
	} else {
		entry.Title = details.Title
		s.metrics.ObserveLookup(metrics.OutcomeSuccess)
		s.logger.Info("video lookup",
			"video_id", id,
			"title", details.Title,
			"duration", elapsed,
		)
	}

	if s.activity != nil {
		s.activity.Record(ctx, entry)
	}
}
