package domain

import "time"

// ActivityID uniquely identifies an activity entry.
type ActivityID string

// ActivityKind says which endpoint produced an entry.
type ActivityKind string

const (
	ActivityLookup   ActivityKind = "lookup"
	ActivityDownload ActivityKind = "download"
)

// Valid reports whether k is a known kind.
func (k ActivityKind) Valid() bool {
	return k == ActivityLookup || k == ActivityDownload
}

// Activity is one completed lookup or download, kept for the activity log.
type Activity struct {
	ID        ActivityID   `json:"id"`
	Kind      ActivityKind `json:"kind"`
	URL       string       `json:"url"`
	VideoID   string       `json:"video_id,omitempty"`
	Title     string       `json:"title,omitempty"`
	Format    string       `json:"format,omitempty"`
	Path      string       `json:"path,omitempty"`
	Success   bool         `json:"success"`
	Error     string       `json:"error,omitempty"`
	Duration  int64        `json:"duration_ms"`
	Timestamp time.Time    `json:"timestamp"`
}

// ActivityQuery filters activity log reads.
type ActivityQuery struct {
	Kind  ActivityKind // empty matches all
	Limit int
}
