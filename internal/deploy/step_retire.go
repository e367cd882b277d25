package deploy

import (
	"os"
)

// RetireStep deletes the parked previous web directory. A failure here is
// only logged: the live tree is already correct and the next update sweeps
// the leftover.
type RetireStep struct{}

func (s *RetireStep) Name() string { return "retire" }

func (s *RetireStep) Run(ctx *StepContext) error {
	if ctx.Retired == "" {
		return nil
	}
	if err := os.RemoveAll(ctx.Retired); err != nil {
		ctx.Logger.Warn("remove previous web directory %s: %v", ctx.Retired, err)
		return nil
	}
	ctx.Logger.Log("removed previous web directory")
	ctx.Retired = ""
	return nil
}
