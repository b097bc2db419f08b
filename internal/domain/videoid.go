package domain

import "regexp"

// videoIDPattern matches watch?v=, youtu.be/ and embed-style URLs.
// Other shapes (shorts, live, attribution links) are deliberately not matched.
var videoIDPattern = regexp.MustCompile(
	`(?:https?://)?(?:www\.)?(?:youtube\.com/(?:watch\?(?:\S*?&)?v=|embed/|v/)|youtu\.be/)([^&/?#\s]+)`,
)

// ExtractVideoID returns the video ID embedded in url, if any.
func ExtractVideoID(url string) (VideoID, bool) {
	m := videoIDPattern.FindStringSubmatch(url)
	if m == nil || m[1] == "" {
		return "", false
	}
	return VideoID(m[1]), true
}
