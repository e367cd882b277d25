package deploy

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// IncompleteMarker is written before the first extraction and removed once
// it succeeds. Its presence sends the next start back into the installer.
type IncompleteMarker struct {
	ID        string    `json:"id"`
	Version   string    `json:"version"`
	StartedAt time.Time `json:"started_at"`
}

// ReadIncomplete loads the marker at path.
func ReadIncomplete(path string) (*IncompleteMarker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m IncompleteMarker
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &m, nil
}

type MarkIncompleteStep struct{}

func (s *MarkIncompleteStep) Name() string { return "mark-incomplete" }

func (s *MarkIncompleteStep) Run(ctx *StepContext) error {
	path := ctx.Layout.IncompletePath()

	if prev, err := ReadIncomplete(path); err == nil {
		ctx.Logger.Log("previous install %s (version %q, started %s) did not finish", prev.ID, prev.Version, prev.StartedAt.Format(time.RFC3339))
	}

	m := IncompleteMarker{
		ID:        uuid.NewString(),
		Version:   ctx.Bundle.Version,
		StartedAt: time.Now().UTC(),
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	ctx.Logger.Log("install %s in progress", m.ID)
	return os.WriteFile(path, data, 0644)
}

type ClearIncompleteStep struct{}

func (s *ClearIncompleteStep) Name() string { return "clear-incomplete" }

func (s *ClearIncompleteStep) Run(ctx *StepContext) error {
	if err := os.Remove(ctx.Layout.IncompletePath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
