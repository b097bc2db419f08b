package domain

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/asaskevich/govalidator"
)

// DownloadRequest asks for a video to be downloaded to the downloads directory.
type DownloadRequest struct {
	URL    string
	Format string // yt-dlp format selector, passed through untouched
}

// Validate checks the URL and fills in the default format.
func (r *DownloadRequest) Validate() error {
	if err := ValidateURL(r.URL); err != nil {
		return err
	}
	if r.Format == "" {
		r.Format = DefaultFormat
	}
	return nil
}

// VideoDetailsRequest asks for the metadata of a single video.
type VideoDetailsRequest struct {
	URL string
}

// Validate checks the URL and returns the video ID it points to.
func (r VideoDetailsRequest) Validate() (VideoID, error) {
	if err := ValidateURL(r.URL); err != nil {
		return "", err
	}
	id, ok := ExtractVideoID(r.URL)
	if !ok {
		return "", ErrInvalidVideoURL
	}
	return id, nil
}

// ValidateURL reports whether raw is an absolute http or https URL with a host.
func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrMissingURL
	}
	if !govalidator.IsRequestURL(raw) {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}
