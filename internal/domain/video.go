package domain

import (
	"fmt"
	"strings"
)

// Defaults applied when the extraction library leaves a field empty.
const (
	DefaultFormat    = "best"
	DefaultTitle     = "video"
	DefaultExtension = "mp4"
)

// VideoID is the platform identifier of a video.
type VideoID string

// String returns the string representation of the VideoID.
func (id VideoID) String() string {
	return string(id)
}

// VideoDetails is the projection of a metadata API item.
type VideoDetails struct {
	Title     string
	Channel   string
	Thumbnail string
	Duration  string // ISO 8601, as reported by the API
}

// VideoInfo is what a finished download tells us about the written file.
type VideoInfo struct {
	Title     string
	Extension string
}

// NewVideoInfo builds a VideoInfo from raw extraction values, applying defaults.
// The extension must be a bare token since it becomes part of a filename.
func NewVideoInfo(title, ext string) (VideoInfo, error) {
	if title == "" {
		title = DefaultTitle
	}
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = DefaultExtension
	}
	if strings.ContainsAny(ext, `/\. `) || strings.ContainsRune(title, 0) {
		return VideoInfo{}, fmt.Errorf("%w: title %q, extension %q", ErrInvalidVideoInfo, title, ext)
	}
	return VideoInfo{Title: title, Extension: ext}, nil
}

// Filename returns the name the extraction library writes for this video
// when given the "%(title)s-<suffix>.%(ext)s" template.
func (v VideoInfo) Filename(suffix string) string {
	return fmt.Sprintf("%s-%s.%s", v.Title, suffix, v.Extension)
}
