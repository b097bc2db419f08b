package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lrstanley/go-ytdlp"

	"github.com/iconidentify/tubegrab/internal/config"
)

// YtDlpDownloader implements Downloader on top of the yt-dlp executable.
type YtDlpDownloader struct {
	executable       string
	progressInterval time.Duration
	logger           *slog.Logger
}

// NewYtDlpDownloader creates a new yt-dlp backed downloader.
func NewYtDlpDownloader(cfg config.DownloadConfig, logger *slog.Logger) *YtDlpDownloader {
	return &YtDlpDownloader{
		executable:       cfg.YtDlpPath,
		progressInterval: cfg.ProgressInterval,
		logger:           logger,
	}
}

// Install makes sure a yt-dlp executable is available, downloading one into
// the go-ytdlp cache if needed. Only called when auto install is enabled.
func (d *YtDlpDownloader) Install(ctx context.Context) error {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return fmt.Errorf("install yt-dlp: %w", err)
	}
	if d.executable == "" {
		d.executable = resolved.Executable
	}
	d.logger.Info("yt-dlp available", "executable", resolved.Executable)
	return nil
}

// Download runs yt-dlp for req.URL and waits for it to finish.
func (d *YtDlpDownloader) Download(ctx context.Context, req Request) (*Result, error) {
	cmd := d.command(req)

	start := time.Now()
	res, err := cmd.Run(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp: %w", err)
	}

	infos, err := res.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("parse extracted info: %w", err)
	}

	result := resultFromInfo(infos)
	if result != nil {
		d.logger.Info("yt-dlp finished",
			"url", req.URL,
			"title", result.Title,
			"filename", result.Filename,
			"duration", time.Since(start),
		)
	}
	return result, nil
}

func (d *YtDlpDownloader) command(req Request) *ytdlp.Command {
	// -j with --no-simulate downloads and still prints the info JSON.
	cmd := ytdlp.New().
		Format(req.Format).
		Output(req.OutputTemplate).
		DumpJSON().
		NoSimulate()

	if d.executable != "" {
		cmd = cmd.SetExecutable(d.executable)
	}

	if d.progressInterval > 0 {
		logger := d.logger.With("url", req.URL)
		var once sync.Once
		cmd = cmd.Progress().ProgressFunc(d.progressInterval, func(update ytdlp.ProgressUpdate) {
			if update.Info != nil && update.Info.Title != nil {
				once.Do(func() { logger = logger.With("title", *update.Info.Title) })
			}
			logProgress(logger, update)
		})
	}

	return cmd
}

func logProgress(logger *slog.Logger, update ytdlp.ProgressUpdate) {
	attrs := []any{"downloaded", humanize.Bytes(uint64(update.DownloadedBytes))}
	if update.TotalBytes > 0 {
		pct := float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100
		attrs = append(attrs,
			"total", humanize.Bytes(uint64(update.TotalBytes)),
			"percent", fmt.Sprintf("%.1f%%", pct),
		)
	}
	if eta := update.ETA(); eta > 0 {
		attrs = append(attrs, "eta", eta.Round(time.Second))
	}
	logger.Debug("download progress", attrs...)
}

// resultFromInfo picks the first extracted video. The extension comes from
// "ext", falling back to the filename's. Fields yt-dlp did not report stay
// empty; defaults are applied later.
func resultFromInfo(infos []*ytdlp.ExtractedInfo) *Result {
	for _, info := range infos {
		if info == nil {
			continue
		}
		result := &Result{}
		if info.Title != nil {
			result.Title = *info.Title
		}
		switch {
		case info.Filename != nil:
			result.Filename = *info.Filename
		case info.AltFilename != nil:
			result.Filename = *info.AltFilename
		}
		result.Extension = info.Extension
		if result.Extension == "" {
			result.Extension = strings.TrimPrefix(filepath.Ext(result.Filename), ".")
		}
		return result
	}
	return nil
}
