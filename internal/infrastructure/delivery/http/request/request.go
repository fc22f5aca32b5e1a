package request

import (
	"waketube/internal/errs"
	"waketube/pkg/urls"
	"waketube/pkg/yturl"
)

type Info struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

func (i *Info) Validate() error {
	if i.SessionID == "" {
		return errs.ErrSessionIDEmpty
	}

	if !yturl.IsYouTubeURL(urls.Normalize(i.URL)) {
		return errs.ErrInvalidURL
	}

	return nil
}

type Download struct {
	SessionID string `json:"session_id"`
	FormatID  string `json:"format_id"`
}

func (d *Download) Validate() error {
	if d.SessionID == "" {
		return errs.ErrSessionIDEmpty
	}

	if d.FormatID == "" {
		return errs.ErrInvalidFormatID
	}

	return nil
}
