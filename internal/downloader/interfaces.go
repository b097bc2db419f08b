package downloader

import (
	"context"
)

// Downloader resolves a video URL and writes the media to disk.
type Downloader interface {
	// Download performs the actual download described by req and blocks until
	// the file is written. A nil Result with a nil error means the extractor
	// finished without reporting any video information.
	Download(ctx context.Context, req Request) (*Result, error)
}

// Request describes a single download.
type Request struct {
	URL            string
	Format         string // format selector, e.g. "best" or "bv*+ba/b"
	OutputTemplate string // path template with %(title)s and %(ext)s placeholders
}

// Result is what the extractor reported about the downloaded video.
type Result struct {
	Title     string
	Extension string
	Filename  string // final path as reported by the extractor, may be empty
}
