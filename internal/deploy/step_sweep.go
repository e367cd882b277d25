package deploy

import (
	"os"
)

// SweepStep removes staging and parked directories left by an update that
// was interrupted.
type SweepStep struct{}

func (s *SweepStep) Name() string { return "sweep" }

func (s *SweepStep) Run(ctx *StepContext) error {
	leftovers, err := ctx.Layout.Leftovers()
	if err != nil {
		return err
	}
	for _, dir := range leftovers {
		ctx.Logger.Log("removing leftover %s", dir)
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
	}
	return nil
}
