package scheduler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// AlertState is the last scan verdict per ticker, persisted so a restart does
// not repeat alerts for patterns already reported.
type AlertState struct {
	Detected  map[string]bool `json:"detected"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// LoadState reads the alert state from a JSON file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (*AlertState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &AlertState{Detected: map[string]bool{}}, nil
		}
		return nil, err
	}
	var state AlertState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode alert state: %w", err)
	}
	if state.Detected == nil {
		state.Detected = map[string]bool{}
	}
	return &state, nil
}

// SaveState writes the alert state to a JSON file.
func SaveState(filePath string, state *AlertState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0o644)
}
