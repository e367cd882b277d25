package deploy

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// SwapStep parks the live web directory and renames the staged tree into
// its place. If the second rename fails the parked tree is put back.
type SwapStep struct{}

func (s *SwapStep) Name() string { return "swap" }

func (s *SwapStep) Run(ctx *StepContext) error {
	web := ctx.Layout.WebDir()

	if _, err := os.Stat(web); err == nil {
		retired := ctx.Layout.RetiredDir(uuid.NewString())
		if err := os.Rename(web, retired); err != nil {
			return fmt.Errorf("park %s: %w", web, err)
		}
		ctx.Retired = retired
	}

	if err := os.Rename(ctx.Staging, web); err != nil {
		if ctx.Retired != "" {
			if rerr := os.Rename(ctx.Retired, web); rerr != nil {
				ctx.Logger.Warn("restore %s from %s: %v", web, ctx.Retired, rerr)
			} else {
				ctx.Retired = ""
			}
		}
		return fmt.Errorf("activate %s: %w", ctx.Staging, err)
	}

	ctx.Logger.Log("web directory now serves %q", ctx.Bundle.Version)
	ctx.Staging = ""
	return nil
}
