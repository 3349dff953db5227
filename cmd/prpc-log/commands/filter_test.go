package commands

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prpc-protocol/prpc-go/pkg/log"
)

func TestRunFilterByConnection(t *testing.T) {
	path := writeTestLog(t, testEvents())
	out := filepath.Join(t.TempDir(), "filtered.plog")

	err := RunFilter(path, FilterOptions{Output: out, ConnID: "conn-a"})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	reader, err := log.NewReader(out)
	if err != nil {
		t.Fatalf("failed to open filtered file: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read filtered event: %v", err)
		}
		if event.ConnectionID != "conn-a" {
			t.Errorf("unexpected connection id: %s", event.ConnectionID)
		}
		count++
	}
	if count != 3 {
		t.Errorf("expected 3 filtered events, got %d", count)
	}
}

func TestRunFilterByIdentifier(t *testing.T) {
	path := writeTestLog(t, testEvents())
	out := filepath.Join(t.TempDir(), "filtered.plog")

	err := RunFilter(path, FilterOptions{Output: out, Identifier: "hello"})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	reader, err := log.NewReader(out)
	if err != nil {
		t.Fatalf("failed to open filtered file: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read filtered event: %v", err)
		}
		if event.Frame == nil || event.Frame.Identifier != "hello" {
			t.Errorf("unexpected event: %+v", event)
		}
		count++
	}
	if count != 2 {
		t.Errorf("expected 2 filtered events, got %d", count)
	}
}

func TestRunFilterInvalidTime(t *testing.T) {
	path := writeTestLog(t, testEvents())
	out := filepath.Join(t.TempDir(), "filtered.plog")

	err := RunFilter(path, FilterOptions{Output: out, TimeStart: "yesterday"})
	if err == nil {
		t.Error("expected error for invalid time format")
	}
}

func TestRunExportJSONL(t *testing.T) {
	path := writeTestLog(t, testEvents())
	out := filepath.Join(t.TempDir(), "events.jsonl")

	if err := RunExport(path, "jsonl", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	data, err := readFile(out)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 JSONL lines, got %d", len(lines))
	}
	for i, line := range lines {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestRunExportCSV(t *testing.T) {
	path := writeTestLog(t, testEvents())
	out := filepath.Join(t.TempDir(), "events.csv")

	if err := RunExport(path, "csv", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	data, err := readFile(out)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// Header plus one row per event
	if len(lines) != 5 {
		t.Fatalf("expected 5 CSV lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "timestamp,connection_id,direction") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "hello") {
		t.Errorf("expected identifier column, got: %s", lines[1])
	}
}

func TestRunExportUnknownFormat(t *testing.T) {
	path := writeTestLog(t, testEvents())

	if err := RunExport(path, "xml", ""); err == nil {
		t.Error("expected error for unknown format")
	}
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
