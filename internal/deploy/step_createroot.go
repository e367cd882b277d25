package deploy

import (
	"os"
)

type CreateRootStep struct{}

func (s *CreateRootStep) Name() string { return "create-root" }

func (s *CreateRootStep) Run(ctx *StepContext) error {
	root := ctx.Layout.Root
	if ctx.Resume {
		ctx.Logger.Log("resume: reusing installation directory %s", root)
		return nil
	}

	ctx.Logger.Log("creating installation directory: %s", root)
	return os.MkdirAll(root, 0755)
}
