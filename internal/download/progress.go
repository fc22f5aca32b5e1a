package download

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"waketube/internal/entity"
	"waketube/pkg/calc"
)

const fullProgress = 100

// Event is one progress report from a download engine. Byte counters
// are authoritative when present; PercentString is the engine's own
// rendering and is only consulted when the counters are missing.
type Event struct {
	Status          string
	DownloadedBytes int64
	TotalBytes      int64
	PercentString   string
	Started         time.Time
}

// Tracker folds progress events into a DownloadState snapshot safe for
// concurrent polling.
type Tracker struct {
	mu    sync.Mutex
	state entity.DownloadState
}

func NewTracker() *Tracker {
	return &Tracker{state: entity.DownloadState{Status: entity.DownloadStatusIdle}}
}

// Apply merges one event into the snapshot. Percent is derived from the
// byte counters first, then from the engine's percent string, and stays
// untouched when neither is usable.
func (t *Tracker) Apply(ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Engine "error" events carry no usable counters; failures reach the
	// snapshot through Fail instead.
	if ev.Status == "error" {
		return
	}

	if ev.Status == "finished" {
		t.state.Status = entity.DownloadStatusFinished
		t.state.Percent = fullProgress
		t.state.Message = "Download completed!"
		t.state.DownloadedBytes = ev.DownloadedBytes
		t.state.TotalBytes = ev.TotalBytes
		t.state.ETA = 0

		return
	}

	t.state.Status = entity.DownloadStatusDownloading
	t.state.DownloadedBytes = ev.DownloadedBytes
	t.state.TotalBytes = ev.TotalBytes

	switch {
	case ev.TotalBytes > 0:
		t.state.Percent = calc.Percent(ev.DownloadedBytes, ev.TotalBytes)
		t.state.Message = fmt.Sprintf("%.1f%%", t.state.Percent)
	case ev.PercentString != "":
		raw := strings.TrimSuffix(strings.TrimSpace(ev.PercentString), "%")
		if pct, err := strconv.ParseFloat(raw, 64); err == nil {
			t.state.Percent = pct
			t.state.Message = fmt.Sprintf("%.1f%%", pct)
		} else {
			t.state.Message = "Downloading..."
		}
	default:
		t.state.Message = "Downloading..."
	}

	if ev.TotalBytes > 0 && !ev.Started.IsZero() {
		t.state.ETA = calc.ETA(ev.DownloadedBytes, ev.TotalBytes, ev.Started)
	}
}

// Fail records a terminal error.
func (t *Tracker) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.Status = entity.DownloadStatusError
	t.state.Message = "Download failed"

	if err != nil {
		t.state.Error = err.Error()
	}
}

// State returns the current snapshot.
func (t *Tracker) State() entity.DownloadState {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state
}
