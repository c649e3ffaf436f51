// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/curriculum-engine/internal/textutil"
	"github.com/pdiddy/curriculum-engine/pkg/types"
)

// Snapshot is the on-disk record of a discovery run. A later run for the
// same subject and level overwrites it.
type Snapshot struct {
	RunID          string                     `json:"runId"`
	Subject        string                     `json:"subject"`
	Level          string                     `json:"level"`
	TargetOutcomes []string                   `json:"targetOutcomes"`
	GeneratedAt    time.Time                  `json:"generatedAt"`
	AdapterErrors  []AdapterError             `json:"adapterErrors"`
	Results        []types.DiscoveredResource `json:"results"`
}

// AdapterError records an adapter that failed during the run.
type AdapterError struct {
	Adapter string `json:"adapter"`
	Error   string `json:"error"`
}

// SnapshotPath returns the snapshot file for subject and level.
func SnapshotPath(dir, subject, level string) string {
	key := textutil.Slug(subject + " " + level)
	if key == "" {
		key = "untitled"
	}
	return filepath.Join(dir, key+".json")
}

// AdapterErrors lists the adapters that failed during the run.
func (run *Run) AdapterErrors() []AdapterError {
	errs := []AdapterError{}
	for _, r := range run.Adapters {
		if r.Err != nil {
			errs = append(errs, AdapterError{Adapter: r.Name, Error: r.Err.Error()})
		}
	}
	return errs
}

// WriteSnapshot saves run under dir and returns the file path.
func WriteSnapshot(dir string, run *Run) (string, error) {
	snap := Snapshot{
		RunID:          run.ID,
		Subject:        run.Request.Subject,
		Level:          run.Request.Level,
		TargetOutcomes: nonNilStrings(run.Request.TargetOutcomes),
		GeneratedAt:    run.GeneratedAt,
		AdapterErrors:  run.AdapterErrors(),
		Results:        run.Results,
	}
	if snap.Results == nil {
		snap.Results = []types.DiscoveredResource{}
	}

	data, err := json.MarshalIndent(&snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling discovery snapshot: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating discovery directory: %w", err)
	}
	path := SnapshotPath(dir, run.Request.Subject, run.Request.Level)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing discovery snapshot: %w", err)
	}
	return path, nil
}

// ReadSnapshot loads a previously saved snapshot.
func ReadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading discovery snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing discovery snapshot: %w", err)
	}
	return &snap, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
