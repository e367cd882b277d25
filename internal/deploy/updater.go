package deploy

import (
	"context"
	"log/slog"

	"github.com/librarygrid/librarygrid/internal/bundle"
	"github.com/librarygrid/librarygrid/internal/layout"
	"github.com/librarygrid/librarygrid/internal/logging"
)

// Updater replaces the installed web directory with the embedded bundle.
type Updater struct {
	Layout layout.Layout
	Bundle bundle.Bundle
	Logger *slog.Logger
	OnLine func(op, line string)
}

func (u *Updater) pipeline() *Pipeline {
	return NewPipeline("update",
		&SweepStep{},
		&StageStep{},
		&ExtractStep{Staged: true},
		&VerifyMarkerStep{Staged: true},
		&SwapStep{},
		&RetireStep{},
	)
}

// Reconcile extracts the bundle next to the live web directory and swaps it
// in with a rename, so there is never a moment without a complete tree.
// Any failure before the swap leaves the installed assets untouched.
func (u *Updater) Reconcile(ctx context.Context) error {
	sctx := &StepContext{
		Layout: u.Layout,
		Bundle: u.Bundle,
		Logger: logging.NewStepLogger("update", u.Logger, u.OnLine),
	}

	if err := u.pipeline().Run(ctx, sctx); err != nil {
		step, cause := stepParts(err)
		return &UpdateError{Step: step, Err: cause}
	}
	return nil
}
