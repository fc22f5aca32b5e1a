package pinger

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestVisitLogAppendAndTail(t *testing.T) {
	journal := NewVisitLog(filepath.Join(t.TempDir(), "logs.txt"))

	if err := journal.Append([]string{"one", "two"}); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	if err := journal.Append([]string{"three"}); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	lines, err := journal.Tail(10)
	if err != nil {
		t.Fatalf("Tail() failed: %v", err)
	}

	want := []string{"one", "two", "three"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}

	for i, line := range lines {
		if line != want[i] {
			t.Errorf("line %d = %q; want %q", i, line, want[i])
		}
	}
}

func TestVisitLogTailTruncates(t *testing.T) {
	journal := NewVisitLog(filepath.Join(t.TempDir(), "logs.txt"))

	var all []string
	for i := range 150 {
		all = append(all, "line "+strconv.Itoa(i))
	}

	if err := journal.Append(all); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	lines, err := journal.Tail(100)
	if err != nil {
		t.Fatalf("Tail() failed: %v", err)
	}

	if len(lines) != 100 {
		t.Fatalf("got %d lines, want 100", len(lines))
	}

	if lines[0] != "line 50" || lines[99] != "line 149" {
		t.Errorf("unexpected window: first=%q last=%q", lines[0], lines[99])
	}
}

func TestVisitLogTailMissingFile(t *testing.T) {
	journal := NewVisitLog(filepath.Join(t.TempDir(), "nope.txt"))

	lines, err := journal.Tail(100)
	if err != nil {
		t.Fatalf("Tail() failed: %v", err)
	}

	if len(lines) != 0 {
		t.Errorf("expected no lines, got %d", len(lines))
	}
}

func TestVisitLogAppendEmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	journal := NewVisitLog(path)

	if err := journal.Append(nil); err != nil {
		t.Fatalf("Append(nil) failed: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("empty batch must not create the file")
	}
}
