package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/iconidentify/tubegrab/internal/config"
	"github.com/iconidentify/tubegrab/internal/domain"
	"github.com/iconidentify/tubegrab/internal/downloader"
	"github.com/iconidentify/tubegrab/internal/metrics"
)

// Summaries reported to clients for the download failures that have their own wording.
const (
	msgExtractFailed = "Failed to extract video information"
	msgProcessFailed = "Failed to process video information"
)

// DownloadService downloads single videos into the downloads directory.
type DownloadService struct {
	downloader downloader.Downloader
	dir        string
	newSuffix  func() string
	activity   ActivityRecorder
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewDownloadService creates a new download service. activity and m may be nil.
func NewDownloadService(
	dl downloader.Downloader,
	storageCfg config.StorageConfig,
	activity ActivityRecorder,
	m *metrics.Metrics,
	logger *slog.Logger,
) *DownloadService {
	return &DownloadService{
		downloader: dl,
		dir:        storageCfg.DownloadsDir,
		newSuffix:  randomSuffix,
		activity:   activity,
		metrics:    m,
		logger:     logger,
	}
}

// SetSuffixFunc replaces the generator of per-download filename suffixes.
func (s *DownloadService) SetSuffixFunc(fn func() string) {
	s.newSuffix = fn
}

// randomSuffix returns the first 8 hex characters of a random UUID.
func randomSuffix() string {
	return uuid.NewString()[:8]
}

// DownloadResult describes a finished download.
type DownloadResult struct {
	Title    string
	Format   string
	Filename string
	Path     string
}

// Download validates req and downloads the video synchronously. Same-titled
// videos never collide because every call gets its own filename suffix.
func (s *DownloadService) Download(ctx context.Context, req domain.DownloadRequest) (*DownloadResult, error) {
	start := time.Now()
	result, err := s.download(ctx, &req)
	s.finish(ctx, req, result, err, time.Since(start))
	return result, err
}

func (s *DownloadService) download(ctx context.Context, req *domain.DownloadRequest) (*DownloadResult, error) {
	if err := req.Validate(); err != nil {
		return nil, domain.NewError(domain.KindValidation, "validate request", err)
	}

	suffix := s.newSuffix()
	template := filepath.Join(s.dir, "%(title)s-"+suffix+".%(ext)s")

	s.logger.Info("starting download",
		"url", req.URL,
		"format", req.Format,
		"output_template", template,
	)

	res, err := s.downloader.Download(ctx, downloader.Request{
		URL:            req.URL,
		Format:         req.Format,
		OutputTemplate: template,
	})
	if err != nil {
		return nil, domain.NewError(domain.KindUpstream, "download", err)
	}
	if res == nil {
		return nil, &domain.Error{
			Kind:    domain.KindUpstream,
			Op:      "download",
			Message: msgExtractFailed,
			Err:     domain.ErrNoVideoInfo,
		}
	}

	info, err := domain.NewVideoInfo(res.Title, res.Extension)
	if err != nil {
		return nil, &domain.Error{
			Kind:    domain.KindInternal,
			Op:      "process video info",
			Message: msgProcessFailed,
			Err:     err,
		}
	}

	filename := info.Filename(suffix)
	return &DownloadResult{
		Title:    info.Title,
		Format:   req.Format,
		Filename: filename,
		Path:     filepath.Join(s.dir, filename),
	}, nil
}

func (s *DownloadService) finish(ctx context.Context, req domain.DownloadRequest, result *DownloadResult, err error, elapsed time.Duration) {
	entry := domain.Activity{
		Kind:     domain.ActivityDownload,
		URL:      req.URL,
		Format:   req.Format,
		Success:  err == nil,
		Duration: elapsed.Milliseconds(),
	}
	if id, ok := domain.ExtractVideoID(req.URL); ok {
		entry.VideoID = id.String()
	}

	if err != nil {
		kind := domain.KindOf(err)
		entry.Error = err.Error()
		s.metrics.ObserveDownload(kind.String(), elapsed)
		s.logger.Error("download failed",
			"url", req.URL,
			"format", req.Format,
			"kind", kind.String(),
			"error", err,
			"duration", elapsed,
		)
	} else {
		entry.Title = result.Title
		entry.Path = result.Path
		s.metrics.ObserveDownload(metrics.OutcomeSuccess, elapsed)
		s.logger.Info("download completed",
			"url", req.URL,
			"title", result.Title,
			"path", result.Path,
			"duration", elapsed,
		)
	}

	if s.activity != nil {
		s.activity.Record(ctx, entry)
	}
}
