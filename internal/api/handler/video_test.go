package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iconidentify/tubegrab/internal/domain"
	"github.com/iconidentify/tubegrab/internal/downloader"
	"github.com/iconidentify/tubegrab/internal/service"
	"github.com/iconidentify/tubegrab/pkg/youtube"
)

func oneVideo() *youtube.VideoListResponse {
	return &youtube.VideoListResponse{Items: []youtube.Video{{
		ID: "dQw4w9WgXcQ",
		Snippet: youtube.Snippet{
			Title:        "Never Gonna Give You Up",
			ChannelTitle: "Rick Astley",
			Thumbnails: youtube.Thumbnails{
				High: youtube.Thumbnail{URL: "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg"},
			},
		},
		ContentDetails: youtube.ContentDetails{Duration: "PT3M33S"},
	}}}
}

func getDetails(h *VideoHandler, rawURL string) *httptest.ResponseRecorder {
	target := "/api/video_details"
	if rawURL != "" {
		target += "?url=" + url.QueryEscape(rawURL)
	}
	w := httptest.NewRecorder()
	h.Details(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func postDownload(h *VideoHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/download", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Download(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func TestVideoHandler_Details_Success(t *testing.T) {
	client := &fakeYouTubeClient{resp: oneVideo()}
	h := newTestVideoHandler(client, &fakeDownloader{}, t.TempDir(), "")

	w := getDetails(h, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	resp := decode[VideoDetailsResponse](t, w)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Error)
	assert.Equal(t, &VideoDetailsData{
		Title:     "Never Gonna Give You Up",
		Channel:   "Rick Astley",
		Thumbnail: "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg",
		Duration:  "PT3M33S",
	}, resp.Data)
	assert.NotContains(t, w.Body.String(), `"error"`)
}

func TestVideoHandler_Details_MissingURL(t *testing.T) {
	client := &fakeYouTubeClient{resp: oneVideo()}
	h := newTestVideoHandler(client, &fakeDownloader{}, t.TempDir(), "")

	w := getDetails(h, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[VideoDetailsResponse](t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "No URL provided", resp.Error)
	assert.Zero(t, client.callCount())
}

func TestVideoHandler_Details_InvalidURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantError string
	}{
		{"not a url", "not a url", "Invalid URL"},
		{"ftp", "ftp://www.youtube.com/watch?v=dQw4w9WgXcQ", "Invalid URL"},
		{"no video id", "https://www.youtube.com/", "Invalid YouTube URL"},
		{"other host", "https://vimeo.com/12345", "Invalid YouTube URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeYouTubeClient{resp: oneVideo()}
			h := newTestVideoHandler(client, &fakeDownloader{}, t.TempDir(), "")

			w := getDetails(h, tt.url)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decode[VideoDetailsResponse](t, w)
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Error, tt.wantError)
			assert.Nil(t, resp.Data)
			assert.Zero(t, client.callCount(), "no outbound call for invalid input")
		})
	}
}

func TestVideoHandler_Details_NotFound(t *testing.T) {
	h := newTestVideoHandler(&fakeYouTubeClient{resp: &youtube.VideoListResponse{}}, &fakeDownloader{}, t.TempDir(), "")

	w := getDetails(h, "https://youtu.be/aaaaaaaaaaa")

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decode[VideoDetailsResponse](t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "Video not found", resp.Error)
}

func TestVideoHandler_Details_UpstreamError(t *testing.T) {
	client := &fakeYouTubeClient{err: &youtube.APIError{StatusCode: 403, Message: "quota exceeded"}}
	h := newTestVideoHandler(client, &fakeDownloader{}, t.TempDir(), "")

	w := getDetails(h, "https://youtu.be/dQw4w9WgXcQ")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode[VideoDetailsResponse](t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "YouTube API error: quota exceeded (status 403)", resp.Error)
}

func TestVideoHandler_Download_Success(t *testing.T) {
	dir := t.TempDir()
	dl := &fakeDownloader{result: &downloader.Result{Title: "My Video", Extension: "webm"}}
	h := newTestVideoHandler(&fakeYouTubeClient{}, dl, dir, "ab12")

	w := postDownload(h, `{"url":"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}`)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[DownloadResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Video downloaded successfully as My Video-ab12.webm", resp.Message)
	assert.Equal(t, "My Video", resp.Title)
	assert.Equal(t, "best", resp.Format)
	assert.Equal(t, filepath.Join(dir, "My Video-ab12.webm"), resp.Path)
	assert.True(t, strings.HasSuffix(resp.Path, "My Video-ab12.webm"))
	assert.Empty(t, resp.Error)
	assert.NotContains(t, w.Body.String(), `"error"`)
}

func TestVideoHandler_Download_Failure(t *testing.T) {
	dl := &fakeDownloader{err: errors.New("ERROR: [youtube] dQw4w9WgXcQ: Video unavailable")}
	h := newTestVideoHandler(&fakeYouTubeClient{}, dl, t.TempDir(), "")

	w := postDownload(h, `{"url":"https://www.youtube.com/watch?v=dQw4w9WgXcQ","format":"bestaudio"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode[DownloadResponse](t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "Download failed", resp.Message)
	assert.Equal(t, "ERROR: [youtube] dQw4w9WgXcQ: Video unavailable", resp.Error)
	assert.Empty(t, resp.Path)
	assert.Equal(t, 1, dl.callCount())
}

func TestVideoHandler_Download_NoInfo(t *testing.T) {
	h := newTestVideoHandler(&fakeYouTubeClient{}, &fakeDownloader{}, t.TempDir(), "")

	w := postDownload(h, `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode[DownloadResponse](t, w)
	assert.Equal(t, "Failed to extract video information", resp.Message)
	assert.Equal(t, "No video information returned", resp.Error)
}

func TestVideoHandler_Download_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"url":`},
		{"wrong type", `{"url":42}`},
		{"missing url", `{}`},
		{"malformed url", `{"url":"htp:/nope"}`},
		{"relative url", `{"url":"/watch?v=dQw4w9WgXcQ"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dl := &fakeDownloader{result: &downloader.Result{Title: "x"}}
			h := newTestVideoHandler(&fakeYouTubeClient{}, dl, t.TempDir(), "")

			w := postDownload(h, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decode[DownloadResponse](t, w)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
			assert.Zero(t, dl.callCount(), "no download for invalid input")
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("plain")))
}

// ctxDownloadService reports the context a download ran under.
type ctxDownloadService struct {
	wait bool
	err  error
}

func (s *ctxDownloadService) Download(ctx context.Context, req domain.DownloadRequest) (*service.DownloadResult, error) {
	if s.wait {
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
		}
	}
	s.err = ctx.Err()
	if s.err != nil {
		return nil, domain.NewError(domain.KindUpstream, "download", s.err)
	}
	return &service.DownloadResult{Title: "My Video", Format: "best", Filename: "My Video-ab12.webm"}, nil
}

func TestVideoHandler_Download_ClientDisconnectDoesNotCancel(t *testing.T) {
	svc := &ctxDownloadService{}
	h := NewVideoHandler(nil, svc, testLogger())
	h.SetShutdownContext(context.Background())

	reqCtx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/download",
		strings.NewReader(`{"url":"https://youtu.be/dQw4w9WgXcQ"}`)).WithContext(reqCtx)
	w := httptest.NewRecorder()
	h.Download(w, req)

	assert.NoError(t, svc.err)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVideoHandler_Download_ShutdownCancels(t *testing.T) {
	svc := &ctxDownloadService{wait: true}
	h := NewVideoHandler(nil, svc, testLogger())

	shutdown, stop := context.WithCancel(context.Background())
	h.SetShutdownContext(shutdown)
	stop()

	w := postDownload(h, `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)

	assert.ErrorIs(t, svc.err, context.Canceled)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
