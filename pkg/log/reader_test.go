package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"
)

func writeEvents(t *testing.T, path string, events []Event) {
	t.Helper()
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()
}

func TestReaderReadsAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "all.plog")
	writeEvents(t, path, []Event{
		{Timestamp: time.Now(), ConnectionID: "a"},
		{Timestamp: time.Now(), ConnectionID: "b"},
		{Timestamp: time.Now(), ConnectionID: "c"},
	})

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var ids []string
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		ids = append(ids, event.ConnectionID)
	}

	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Errorf("read order: got %v", ids)
	}
}

func TestReaderFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filtered.plog")
	in := DirectionIn
	frameLayer := LayerFrame

	writeEvents(t, path, []Event{
		{Timestamp: time.Now(), ConnectionID: "a", Direction: DirectionIn, Layer: LayerTransport},
		{Timestamp: time.Now(), ConnectionID: "b", Direction: DirectionOut, Layer: LayerFrame},
		{
			Timestamp: time.Now(), ConnectionID: "a", Direction: DirectionIn, Layer: LayerFrame,
			Frame: &FrameEvent{SeqID: "1", Identifier: "hello"},
		},
	})

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"by connection", Filter{ConnectionID: "a"}, 2},
		{"by direction", Filter{Direction: &in}, 2},
		{"by layer", Filter{Layer: &frameLayer}, 2},
		{"by identifier", Filter{Identifier: "hello"}, 1},
		{"by identifier no match", Filter{Identifier: "nope"}, 0},
		{"combined", Filter{ConnectionID: "a", Layer: &frameLayer}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer reader.Close()

			count := 0
			for {
				if _, err := reader.Next(); err != nil {
					break
				}
				count++
			}
			if count != tt.want {
				t.Errorf("matched events: got %d, want %d", count, tt.want)
			}
		})
	}
}

func TestReaderTimeRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "times.plog")
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	writeEvents(t, path, []Event{
		{Timestamp: base, ConnectionID: "early"},
		{Timestamp: base.Add(time.Minute), ConnectionID: "mid"},
		{Timestamp: base.Add(2 * time.Minute), ConnectionID: "late"},
	})

	start := base.Add(30 * time.Second)
	end := base.Add(90 * time.Second)
	reader, err := NewFilteredReader(path, Filter{TimeStart: &start, TimeEnd: &end})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if event.ConnectionID != "mid" {
		t.Errorf("got %q, want %q", event.ConnectionID, "mid")
	}
	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing.plog")); err == nil {
		t.Error("NewReader succeeded on missing file")
	}
}
