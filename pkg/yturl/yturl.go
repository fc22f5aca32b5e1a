// Package yturl recognizes YouTube video URLs.
package yturl

import "regexp"

// Patterns cover the common host/path shapes: the main site, the short
// youtu.be form, the privacy-enhanced youtube-nocookie host, and the
// watch/embed/v paths. Matching is anchored at the start only, so query
// strings and extra path segments are allowed.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`^(https?://)?(www\.)?(youtube|youtu|youtube-nocookie)\.(com|be)/`),
	regexp.MustCompile(`^(https?://)?(www\.)?youtu\.be/`),
	regexp.MustCompile(`^(https?://)?(www\.)?youtube\.com/watch\?v=`),
	regexp.MustCompile(`^(https?://)?(www\.)?youtube\.com/embed/`),
	regexp.MustCompile(`^(https?://)?(www\.)?youtube\.com/v/`),
}

// IsYouTubeURL reports whether raw looks like a YouTube video URL. It does
// not verify that the video exists or is reachable.
func IsYouTubeURL(raw string) bool {
	for _, re := range patterns {
		if re.MatchString(raw) {
			return true
		}
	}

	return false
}
