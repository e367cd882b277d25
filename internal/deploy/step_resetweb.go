package deploy

import (
	"os"
)

type ResetWebStep struct{}

func (s *ResetWebStep) Name() string { return "create-web-dir" }

func (s *ResetWebStep) Run(ctx *StepContext) error {
	web := ctx.Layout.WebDir()

	// Only an interrupted install can have left a web directory behind.
	if _, err := os.Stat(web); err == nil {
		ctx.Logger.Log("removing partial web directory")
		if err := os.RemoveAll(web); err != nil {
			return err
		}
	}

	ctx.Logger.Log("creating web directory: %s", web)
	return os.Mkdir(web, 0755)
}
