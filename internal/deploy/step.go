package deploy

import (
	"github.com/librarygrid/librarygrid/internal/archive"
	"github.com/librarygrid/librarygrid/internal/bundle"
	"github.com/librarygrid/librarygrid/internal/layout"
	"github.com/librarygrid/librarygrid/internal/logging"
)

type Step interface {
	Name() string
	Run(ctx *StepContext) error
}

// Undoer is implemented by steps that can revert their own side effects
// when a later step fails.
type Undoer interface {
	Undo(ctx *StepContext)
}

type StepContext struct {
	Layout layout.Layout
	Bundle bundle.Bundle
	Logger *logging.StepLogger

	// Install re-entry after an interrupted first run.
	Resume bool

	// Enriched during pipeline
	Staging string
	Retired string
	Summary archive.Summary
}
