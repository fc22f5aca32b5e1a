package pinger

import (
	"fmt"
	"os"
	"strings"
)

const logFilePerm = 0o644

// VisitLog is the append-only text log of visit attempts. One line per
// attempt; the file itself is never rotated or capped.
type VisitLog struct {
	path string
}

// NewVisitLog returns a VisitLog appending to path.
func NewVisitLog(path string) *VisitLog {
	return &VisitLog{path: path}
}

// Append writes all lines as one batch. An empty batch is a no-op.
func (l *VisitLog) Append(lines []string) error {
	if len(lines) == 0 {
		return nil
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFilePerm)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("append log lines: %w", err)
	}

	return nil
}

// Tail returns the last n log lines. A missing file yields no lines.
func (l *VisitLog) Tail(n int) ([]string, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}

	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	return lines, nil
}
