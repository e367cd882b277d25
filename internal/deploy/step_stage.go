package deploy

import (
	"os"

	"github.com/librarygrid/librarygrid/internal/layout"
)

// StageStep creates an empty sibling of the web directory to extract into.
// Being on the same filesystem keeps the later swap a plain rename.
type StageStep struct{}

func (s *StageStep) Name() string { return "stage" }

func (s *StageStep) Run(ctx *StepContext) error {
	dir, err := os.MkdirTemp(ctx.Layout.Root, layout.StagingPrefix+"*")
	if err != nil {
		return err
	}
	if err := os.Chmod(dir, 0755); err != nil {
		os.RemoveAll(dir)
		return err
	}
	ctx.Staging = dir
	ctx.Logger.Log("staging in %s", dir)
	return nil
}

func (s *StageStep) Undo(ctx *StepContext) {
	if ctx.Staging == "" {
		return
	}
	if err := os.RemoveAll(ctx.Staging); err != nil {
		ctx.Logger.Warn("remove staging %s: %v", ctx.Staging, err)
		return
	}
	ctx.Staging = ""
}
