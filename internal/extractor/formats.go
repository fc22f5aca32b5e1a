package extractor

import (
	"strconv"

	"waketube/internal/entity"
	"waketube/pkg/humanize"
	"waketube/pkg/maths"
	"waketube/pkg/ptr"
)

var (
	videoExts = map[string]bool{"mp4": true, "webm": true, "mkv": true}
	audioExts = map[string]bool{"mp3": true, "m4a": true, "webm": true}
)

// codecPresent reports whether a codec field names an actual codec.
// yt-dlp uses "none" for streams that lack the track entirely.
func codecPresent(codec string) bool {
	return codec != "" && codec != "none"
}

// AvailableFormats organizes the raw format list into the records shown
// to the client: combined video+audio streams first, then audio-only
// ones, both in the order yt-dlp reported them.
func AvailableFormats(info *entity.VideoInfo) []entity.FormatRecord {
	if info == nil {
		return nil
	}

	var video, audio []entity.FormatRecord

	for _, f := range info.Formats {
		switch {
		case codecPresent(f.VCodec) && codecPresent(f.ACodec) && videoExts[f.Ext]:
			video = append(video, videoRecord(f))
		case !codecPresent(f.VCodec) && codecPresent(f.ACodec) && audioExts[f.Ext]:
			audio = append(audio, audioRecord(f))
		}
	}

	return append(video, audio...)
}

func videoRecord(f entity.Format) entity.FormatRecord {
	// Quality carries the raw height; the UI adds the "p" suffix.
	quality := "Unknown"
	if f.Height != nil {
		quality = strconv.Itoa(maths.RoundFloat64ToInt(*f.Height))
	}

	return entity.FormatRecord{
		FormatID: f.FormatID,
		Ext:      f.Ext,
		Quality:  quality,
		Filesize: ptr.Deref(f.Filesize),
		Size:     humanize.FileSize(ptr.Deref(f.Filesize)),
		Type:     entity.FormatTypeVideo,
		Note:     f.FormatNote,
		Fps:      maths.RoundFloat64ToInt(ptr.Deref(f.Fps)),
	}
}

func audioRecord(f entity.Format) entity.FormatRecord {
	quality := "Unknown"
	if f.Abr != nil {
		quality = strconv.Itoa(maths.RoundFloat64ToInt(*f.Abr))
	}

	return entity.FormatRecord{
		FormatID: f.FormatID,
		Ext:      f.Ext,
		Quality:  quality,
		Filesize: ptr.Deref(f.Filesize),
		Size:     humanize.FileSize(ptr.Deref(f.Filesize)),
		Type:     entity.FormatTypeAudio,
		Note:     f.FormatNote,
		Abr:      maths.RoundFloat64ToInt(ptr.Deref(f.Abr)),
	}
}
