package extractor

import (
	_ "embed"
	"testing"

	"waketube/internal/entity"
	"waketube/pkg/ptr"
)

//go:embed testdata/info.json
var testInfoJSON []byte

func TestParseInfo(t *testing.T) {
	info, err := ParseInfo(testInfoJSON)
	if err != nil {
		t.Fatalf("ParseInfo() failed: %v", err)
	}

	if info.Title != "Never Gonna Give You Up" {
		t.Errorf("Title = %q", info.Title)
	}

	if info.Duration != 212 {
		t.Errorf("Duration = %d, want 212", info.Duration)
	}

	if info.DurationDisplay != "03:32" {
		t.Errorf("DurationDisplay = %q, want 03:32", info.DurationDisplay)
	}

	if info.Uploader != "Rick Astley" {
		t.Errorf("Uploader = %q", info.Uploader)
	}

	if info.ViewCount != 1400000000 {
		t.Errorf("ViewCount = %d", info.ViewCount)
	}

	if len(info.Formats) != 6 {
		t.Errorf("len(Formats) = %d, want 6", len(info.Formats))
	}
}

func TestParseInfoDefaults(t *testing.T) {
	info, err := ParseInfo([]byte(`{"id":"x"}`))
	if err != nil {
		t.Fatalf("ParseInfo() failed: %v", err)
	}

	if info.Title != "Unknown Title" {
		t.Errorf("Title = %q, want Unknown Title", info.Title)
	}

	if info.Uploader != "Unknown" {
		t.Errorf("Uploader = %q, want Unknown", info.Uploader)
	}

	if info.DurationDisplay != "Unknown" {
		t.Errorf("DurationDisplay = %q, want Unknown", info.DurationDisplay)
	}
}

func TestParseInfoInvalidJSON(t *testing.T) {
	if _, err := ParseInfo([]byte("ERROR: not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestAvailableFormats(t *testing.T) {
	info, err := ParseInfo(testInfoJSON)
	if err != nil {
		t.Fatalf("ParseInfo() failed: %v", err)
	}

	records := AvailableFormats(info)

	// Two complete video streams and two audio-only streams survive; the
	// storyboard and the video-only 1080p stream are dropped.
	if len(records) != 4 {
		t.Fatalf("len(records) = %d, want 4: %+v", len(records), records)
	}

	for i, want := range []entity.FormatRecord{
		{FormatID: "18", Ext: "mp4", Quality: "360", Filesize: 10489874, Size: "10.0 MB", Type: entity.FormatTypeVideo, Note: "360p", Fps: 25},
		{FormatID: "22", Ext: "mp4", Quality: "720", Filesize: 0, Size: "Unknown", Type: entity.FormatTypeVideo, Note: "720p", Fps: 25},
		{FormatID: "140", Ext: "m4a", Quality: "129", Filesize: 3433514, Size: "3.3 MB", Type: entity.FormatTypeAudio, Note: "medium", Abr: 129},
		{FormatID: "251", Ext: "webm", Quality: "133", Filesize: 3437753, Size: "3.3 MB", Type: entity.FormatTypeAudio, Note: "medium", Abr: 133},
	} {
		if records[i] != want {
			t.Errorf("records[%d] = %+v, want %+v", i, records[i], want)
		}
	}
}

func TestAvailableFormatsUnknownQuality(t *testing.T) {
	info := &entity.VideoInfo{Formats: []entity.Format{
		{FormatID: "v", Ext: "mp4", VCodec: "avc1", ACodec: "mp4a"},
		{FormatID: "a", Ext: "m4a", VCodec: "none", ACodec: "mp4a"},
	}}

	records := AvailableFormats(info)
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	for _, r := range records {
		if r.Quality != "Unknown" {
			t.Errorf("record %s Quality = %q, want Unknown", r.FormatID, r.Quality)
		}

		if r.Size != "Unknown" {
			t.Errorf("record %s Size = %q, want Unknown", r.FormatID, r.Size)
		}
	}
}

func TestAvailableFormatsEmptyCodecIsAbsent(t *testing.T) {
	info := &entity.VideoInfo{Formats: []entity.Format{
		// An empty vcodec means no video track, so this is audio-only.
		{FormatID: "a", Ext: "webm", VCodec: "", ACodec: "opus", Abr: ptr.Of(64.0)},
	}}

	records := AvailableFormats(info)
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}

	if records[0].Type != entity.FormatTypeAudio {
		t.Errorf("Type = %q, want audio", records[0].Type)
	}
}

func TestAvailableFormatsExcludesOtherContainers(t *testing.T) {
	info := &entity.VideoInfo{Formats: []entity.Format{
		{FormatID: "flv", Ext: "flv", VCodec: "avc1", ACodec: "mp4a"},
		{FormatID: "aac", Ext: "aac", VCodec: "none", ACodec: "mp4a"},
		{FormatID: "ok", Ext: "mp4", VCodec: "avc1", ACodec: "mp4a"},
	}}

	records := AvailableFormats(info)
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}

	if records[0].FormatID != "ok" {
		t.Errorf("FormatID = %q, want ok", records[0].FormatID)
	}
}
