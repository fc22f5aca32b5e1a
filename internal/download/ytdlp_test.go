package download

import "testing"

func TestParseOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   string
	}{
		{
			name:   "single path",
			stdout: "/tmp/youtube_download_1/Never Gonna Give You Up.mp4\n",
			want:   "/tmp/youtube_download_1/Never Gonna Give You Up.mp4",
		},
		{
			name:   "last path wins",
			stdout: "/tmp/dl/part.f137.mp4\n/tmp/dl/merged.mp4\n",
			want:   "/tmp/dl/merged.mp4",
		},
		{
			name:   "json lines skipped",
			stdout: "{\"id\":\"abc\"}\n/tmp/dl/video.webm\n",
			want:   "/tmp/dl/video.webm",
		},
		{
			name:   "noise only",
			stdout: "[download] Destination unknown\nWARNING: something\n",
			want:   "",
		},
		{
			name:   "empty",
			stdout: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseOutputPath(tt.stdout); got != tt.want {
				t.Errorf("ParseOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
