package handler

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/iconidentify/tubegrab/internal/config"
	"github.com/iconidentify/tubegrab/internal/downloader"
	"github.com/iconidentify/tubegrab/internal/service"
	"github.com/iconidentify/tubegrab/pkg/youtube"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeYouTubeClient is a test implementation of youtube.Client.
type fakeYouTubeClient struct {
	mu    sync.Mutex
	calls int
	resp  *youtube.VideoListResponse
	err   error
}

func (f *fakeYouTubeClient) ListVideos(ctx context.Context, id string) (*youtube.VideoListResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.resp, f.err
}

func (f *fakeYouTubeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeDownloader is a test implementation of downloader.Downloader.
type fakeDownloader struct {
	mu     sync.Mutex
	calls  int
	result *downloader.Result
	err    error
}

func (f *fakeDownloader) Download(ctx context.Context, req downloader.Request) (*downloader.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result, f.err
}

func (f *fakeDownloader) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// newTestVideoHandler wires real services around the fakes.
func newTestVideoHandler(client youtube.Client, dl downloader.Downloader, dir string, suffix string) *VideoHandler {
	metadataSvc := service.NewMetadataService(client, nil, nil, testLogger())
	downloadSvc := service.NewDownloadService(dl, config.StorageConfig{DownloadsDir: dir}, nil, nil, testLogger())
	if suffix != "" {
		downloadSvc.SetSuffixFunc(func() string { return suffix })
	}
	return NewVideoHandler(metadataSvc, downloadSvc, testLogger())
}
