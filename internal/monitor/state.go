// internal/monitor/state.go
package monitor

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// State remembers the last session the monitor recorded.
type State struct {
	Path string    `yaml:"path"`
	End  time.Time `yaml:"end"`
}

// Seen reports whether a session of path ending at end was already recorded.
func (s State) Seen(path string, end time.Time) bool {
	return s.Path == path && s.End.Equal(end)
}

// ReadState reads the state file.
// Returns the zero State if the file doesn't exist or is corrupt.
func ReadState(path string) (State, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return State{}, nil
	}
	if err != nil {
		return State{}, err
	}

	var s State
	if err := yaml.Unmarshal(data, &s); err != nil {
		// Corrupt file - start over
		return State{}, nil
	}
	return s, nil
}

// WriteState writes the state file, creating parent directories if needed.
func WriteState(path string, s State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
