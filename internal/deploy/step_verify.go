package deploy

import (
	"fmt"
	"path/filepath"

	"github.com/librarygrid/librarygrid/internal/bundle"
	"github.com/librarygrid/librarygrid/internal/marker"
)

// VerifyMarkerStep checks that the freshly extracted tree carries the
// bundle's version marker, so the next start sees a Match.
type VerifyMarkerStep struct {
	Staged bool
}

func (s *VerifyMarkerStep) Name() string { return "verify-marker" }

func (s *VerifyMarkerStep) Run(ctx *StepContext) error {
	dir := ctx.Layout.WebDir()
	if s.Staged {
		dir = ctx.Staging
	}

	status, err := marker.Compare(ctx.Bundle.Version, filepath.Join(dir, bundle.VersionFile))
	if err != nil {
		return err
	}
	if status != marker.Match {
		return fmt.Errorf("%w (%s)", ErrMarkerMismatch, status)
	}
	return nil
}
