package yturl

import "testing"

func TestIsYouTubeURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"canonical_watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"short_form", "https://youtu.be/dQw4w9WgXcQ", true},
		{"no_scheme", "www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"no_www", "https://youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", true},
		{"v_path", "https://www.youtube.com/v/dQw4w9WgXcQ", true},
		{"nocookie", "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ", true},
		{"http_scheme", "http://youtu.be/dQw4w9WgXcQ", true},
		{"other_site", "https://vimeo.com/123456", false},
		{"lookalike_host", "https://notyoutube.example.com/watch?v=x", false},
		{"empty", "", false},
		{"plain_text", "not a url at all", false},
		{"suffix_only", "see https://youtu.be/dQw4w9WgXcQ", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsYouTubeURL(tc.url); got != tc.want {
				t.Errorf("IsYouTubeURL(%q) = %v; want %v", tc.url, got, tc.want)
			}
		})
	}
}
