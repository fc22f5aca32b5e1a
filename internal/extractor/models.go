package extractor

import (
	"encoding/json"
	"fmt"

	"waketube/internal/entity"
	"waketube/pkg/humanize"
	"waketube/pkg/maths"
)

// infoJSON mirrors the single-video JSON document yt-dlp prints for
// --dump-single-json. Only the fields the status page needs are mapped.
type infoJSON struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Duration    float64         `json:"duration"`
	Thumbnail   string          `json:"thumbnail"`
	Uploader    string          `json:"uploader"`
	ViewCount   int64           `json:"view_count"`
	UploadDate  string          `json:"upload_date"`
	WebpageURL  string          `json:"webpage_url"`
	Formats     []entity.Format `json:"formats"`
}

// ParseInfo decodes a yt-dlp single-video JSON document into VideoInfo.
// Missing metadata falls back to display placeholders rather than empty
// strings so templates never render blanks.
func ParseInfo(raw []byte) (*entity.VideoInfo, error) {
	var doc infoJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal info json: %w", err)
	}

	info := &entity.VideoInfo{
		URL:             doc.WebpageURL,
		Title:           doc.Title,
		Duration:        maths.RoundFloat64ToInt(doc.Duration),
		DurationDisplay: humanize.Duration(maths.RoundFloat64ToInt(doc.Duration)),
		Thumbnail:       doc.Thumbnail,
		Uploader:        doc.Uploader,
		ViewCount:       doc.ViewCount,
		UploadDate:      doc.UploadDate,
		Description:     doc.Description,
		Formats:         doc.Formats,
	}

	if info.Title == "" {
		info.Title = "Unknown Title"
	}

	if info.Uploader == "" {
		info.Uploader = "Unknown"
	}

	return info, nil
}
