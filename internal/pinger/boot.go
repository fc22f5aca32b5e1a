// Package pinger implements the keep-alive visitor loop, the persisted
// boot clock and the append-only visit log.
package pinger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"waketube/internal/consts"
	"waketube/internal/errs"
)

const bootFilePerm = 0o644

// BootClock derives a display-only "virtual" clock from a fixed epoch and
// the wall-clock time elapsed since the very first start. The first-run
// timestamp is persisted; later starts load it back instead of capturing a
// new one.
type BootClock struct {
	virtualStart time.Time
	realStart    time.Time
	now          func() time.Time
}

// NewBootClock loads the persisted first-run timestamp from path, creating
// the file with the current time when it does not exist yet. A present but
// unparseable file is a startup failure. The now func is injectable for
// tests; nil means time.Now.
func NewBootClock(path, virtualStart string, now func() time.Time) (*BootClock, error) {
	if now == nil {
		now = time.Now
	}

	vs, err := time.Parse(consts.TimeLayout, virtualStart)
	if err != nil {
		return nil, fmt.Errorf("parse virtual start: %w", err)
	}

	realStart, err := loadOrCreateBootTime(path, now)
	if err != nil {
		return nil, err
	}

	return &BootClock{
		virtualStart: vs,
		realStart:    realStart,
		now:          now,
	}, nil
}

// RealStart returns the persisted first-run timestamp.
func (c *BootClock) RealStart() time.Time {
	return c.realStart
}

// VirtualNow returns the virtual epoch advanced by the real elapsed time
// since first boot.
func (c *BootClock) VirtualNow() time.Time {
	return c.virtualStart.Add(c.now().Sub(c.realStart))
}

func loadOrCreateBootTime(path string, now func() time.Time) (time.Time, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		start := now().Truncate(time.Second)

		if werr := os.WriteFile(path, []byte(start.Format(consts.TimeLayout)), bootFilePerm); werr != nil {
			return time.Time{}, fmt.Errorf("write boot time file: %w", werr)
		}

		return start, nil
	}

	if err != nil {
		return time.Time{}, fmt.Errorf("read boot time file: %w", err)
	}

	start, err := time.Parse(consts.TimeLayout, strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", errs.ErrBootTimeMalformed, err)
	}

	return start, nil
}
