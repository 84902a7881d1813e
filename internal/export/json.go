package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/petquest/internal/store"
)

// FormatVersion is written into every JSON export and checked on import.
const FormatVersion = 1

var ErrUnsupportedVersion = errors.New("unsupported export version")

type jsonExport struct {
	Version    int            `json:"version"`
	ExportedAt string         `json:"exported_at"`
	Counts     jsonCounts     `json:"counts"`
	Data       store.Snapshot `json:"data"`
}

type jsonCounts struct {
	Todos         int `json:"todos"`
	FocusSessions int `json:"focus_sessions"`
	PlanBoard     int `json:"plan_board"`
	TimeSlots     int `json:"time_slots"`
	Achievements  int `json:"achievements"`
}

// ToJSON writes a full snapshot that FromJSON can restore.
func ToJSON(snap store.Snapshot, exportedAt time.Time, path string) error {
	export := jsonExport{
		Version:    FormatVersion,
		ExportedAt: exportedAt.UTC().Format(time.RFC3339),
		Counts: jsonCounts{
			Todos:         len(snap.Todos),
			FocusSessions: len(snap.FocusSessions),
			PlanBoard:     len(snap.PlanBoard),
			TimeSlots:     len(snap.TimeSlots),
			Achievements:  len(snap.Profile.Achievements),
		},
		Data: snap,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

// FromJSON reads an export written by ToJSON.
func FromJSON(path string) (store.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("read json file: %w", err)
	}

	var export jsonExport
	if err := json.Unmarshal(data, &export); err != nil {
		return store.Snapshot{}, fmt.Errorf("parse json: %w", err)
	}
	if export.Version != FormatVersion {
		return store.Snapshot{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, export.Version)
	}
	return export.Data, nil
}
