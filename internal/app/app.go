// Package app holds the command trees of the librarygrid binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/librarygrid/librarygrid/internal/bundle"
	"github.com/librarygrid/librarygrid/internal/config"
	"github.com/librarygrid/librarygrid/internal/deploy"
	"github.com/librarygrid/librarygrid/internal/layout"
	"github.com/librarygrid/librarygrid/internal/logging"
	"github.com/librarygrid/librarygrid/internal/prompt"
)

// Env is what the commands read from and write to. Tests swap every field.
type Env struct {
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
	Bundle bundle.Bundle

	// Interactive reports whether In is a terminal someone can answer.
	Interactive func() bool
}

// DefaultEnv wires the process's standard streams and the embedded bundle.
func DefaultEnv() *Env {
	return &Env{
		In:          os.Stdin,
		Out:         os.Stdout,
		Err:         os.Stderr,
		Bundle:      bundle.Default(),
		Interactive: func() bool { return prompt.IsInteractive(os.Stdin) },
	}
}

// options are the flags shared by both binaries.
type options struct {
	home string
	yes  bool

	// onLine receives every install or update progress line.
	onLine func(op, line string)
}

func (o *options) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&o.home, "home", "", "directory holding the librarygrid folder (default: user home)")
	cmd.PersistentFlags().BoolVarP(&o.yes, "yes", "y", false, "install without asking")
}

func (o *options) layout() (layout.Layout, error) {
	return layout.New(o.home)
}

func (env *Env) webVersion() string {
	return strings.TrimSpace(env.Bundle.Version)
}

func (env *Env) logger() *slog.Logger {
	return logging.New(env.Err)
}

// driver builds the Driver both binaries run on start.
func (env *Env) driver(l layout.Layout, p *prompt.Prompter, o *options) *deploy.Driver {
	return &deploy.Driver{
		Layout:  l,
		Bundle:  env.Bundle,
		Confirm: env.confirm(p, l, o.yes),
		Logger:  env.logger(),
		OnLine:  o.onLine,
	}
}

func (env *Env) confirm(p *prompt.Prompter, l layout.Layout, yes bool) func() bool {
	return func() bool {
		fmt.Fprintln(env.Out, "--- welcome to the librarygrid software! ---")
		fmt.Fprintf(env.Out, "librarygrid %s will be installed into %s\n", env.webVersion(), l.Root)
		if yes {
			return true
		}
		if env.Interactive != nil && !env.Interactive() {
			fmt.Fprintln(env.Out, "stdin is not a terminal, rerun with --yes to install")
			return false
		}
		return p.Confirm("would you like to install it?")
	}
}

func (env *Env) deploy(ctx context.Context, o *options) (*deploy.Result, *prompt.Prompter, layout.Layout, error) {
	l, err := o.layout()
	if err != nil {
		return nil, nil, l, err
	}
	p := prompt.New(env.In, env.Out)
	res, err := env.driver(l, p, o).Run(ctx)
	return res, p, l, err
}

// Main runs cmd until it returns or the process receives SIGINT or SIGTERM.
// The signal context is in place before deployment starts, so an interrupt
// stops the install or update between steps.
func Main(cmd *cobra.Command, env *Env) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Run(ctx, cmd, env)
}

// Run executes cmd and maps its error to a process exit code. Declining the
// install and writing a fresh config are clean exits.
func Run(ctx context.Context, cmd *cobra.Command, env *Env) int {
	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, deploy.ErrDeclined):
		fmt.Fprintln(env.Out, "goodbye!")
		return 0
	case errors.Is(err, config.ErrNeedsRestart):
		fmt.Fprintln(env.Out, "config written successfully. please restart this program")
		return 0
	default:
		fmt.Fprintf(env.Err, "Error: %v\n", err)
		return 1
	}
}
