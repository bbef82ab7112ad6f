// internal/monitor/state_test.go
package monitor

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStateReadWrite(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "nested", "state")

	// Initially should return zero state
	s, err := ReadState(statePath)
	if err != nil {
		t.Fatalf("ReadState (missing file) error: %v", err)
	}
	if s.Path != "" || !s.End.IsZero() {
		t.Errorf("expected zero state for missing file, got %+v", s)
	}

	end := time.Date(2017, 6, 1, 12, 30, 0, 0, time.UTC)
	want := State{Path: "/logs/2017-06-01_bbc.log", End: end}
	if err := WriteState(statePath, want); err != nil {
		t.Fatalf("WriteState error: %v", err)
	}

	got, err := ReadState(statePath)
	if err != nil {
		t.Fatalf("ReadState error: %v", err)
	}
	if !got.Seen(want.Path, end) {
		t.Errorf("ReadState = %+v, want %+v", got, want)
	}
	if got.Seen(want.Path, end.Add(time.Second)) {
		t.Error("Seen matched a different end time")
	}
	if got.Seen("/logs/other.log", end) {
		t.Error("Seen matched a different path")
	}
}

func TestStateCorruptFile(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state")

	os.WriteFile(statePath, []byte("end: [not a time"), 0644)

	s, err := ReadState(statePath)
	if err != nil {
		t.Fatalf("ReadState (corrupt) error: %v", err)
	}
	if s.Path != "" || !s.End.IsZero() {
		t.Errorf("expected zero state for corrupt file, got %+v", s)
	}
}
