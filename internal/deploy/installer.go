package deploy

import (
	"context"
	"log/slog"

	"github.com/librarygrid/librarygrid/internal/bundle"
	"github.com/librarygrid/librarygrid/internal/layout"
	"github.com/librarygrid/librarygrid/internal/logging"
)

// Installer performs the first-run bootstrap of the installation directory.
type Installer struct {
	Layout layout.Layout
	Bundle bundle.Bundle

	// Confirm is asked exactly once per Install.
	Confirm func() bool

	Logger *slog.Logger
	OnLine func(op, line string)
}

func (i *Installer) pipeline() *Pipeline {
	return NewPipeline("install",
		&CreateRootStep{},
		&MarkIncompleteStep{},
		&ResetWebStep{},
		&ExtractStep{},
		&VerifyMarkerStep{},
		&ClearIncompleteStep{},
	)
}

// Install asks for confirmation and, if given, creates the installation
// directory and extracts the bundle into its web directory. A declined
// prompt returns ErrDeclined and touches nothing.
//
// Install also resumes an earlier attempt that left the install-incomplete
// marker behind; the partial web directory is rebuilt from scratch.
func (i *Installer) Install(ctx context.Context) error {
	if i.Confirm == nil || !i.Confirm() {
		return ErrDeclined
	}

	sctx := &StepContext{
		Layout: i.Layout,
		Bundle: i.Bundle,
		Logger: logging.NewStepLogger("install", i.Logger, i.OnLine),
		Resume: layout.Exists(i.Layout.Root),
	}

	if err := i.pipeline().Run(ctx, sctx); err != nil {
		step, cause := stepParts(err)
		return &InstallError{Step: step, Err: cause}
	}
	return nil
}
