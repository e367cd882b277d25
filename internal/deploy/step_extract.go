package deploy

import (
	"fmt"

	"github.com/librarygrid/librarygrid/internal/archive"
)

// ExtractStep unpacks the bundle into the web directory, or into the
// staging directory when Staged is set.
type ExtractStep struct {
	Staged bool
}

func (s *ExtractStep) Name() string { return "extract" }

func (s *ExtractStep) target(ctx *StepContext) (string, error) {
	if !s.Staged {
		return ctx.Layout.WebDir(), nil
	}
	if ctx.Staging == "" {
		return "", fmt.Errorf("no staging directory")
	}
	return ctx.Staging, nil
}

func (s *ExtractStep) Run(ctx *StepContext) error {
	dest, err := s.target(ctx)
	if err != nil {
		return err
	}

	ctx.Logger.Log("extracting web interface %q into %s", ctx.Bundle.Version, dest)
	sum, err := archive.Extract(ctx.Bundle.Archive, dest)
	ctx.Summary = sum
	if err != nil {
		return err
	}
	ctx.Logger.Log("extracted %s", sum)
	return nil
}
