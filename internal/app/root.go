package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/librarygrid/librarygrid/internal/config"
	"github.com/librarygrid/librarygrid/internal/library"
	"github.com/librarygrid/librarygrid/internal/server"
	"github.com/librarygrid/librarygrid/internal/version"
)

// NewRootCmd returns the librarygrid command: deploy the web bundle, make
// sure a config exists, open the library and serve it.
func NewRootCmd(env *Env) *cobra.Command {
	o := &options{}
	var listen string

	cmd := &cobra.Command{
		Use:   "librarygrid",
		Short: "Serve a searchable map of where every book lives",
		Long: `librarygrid serves a web interface for finding books on a shelf grid.

On every start it installs or updates the web interface bundled into the
binary under <home>/librarygrid/web, then asks for a config on first run.`,
		Example: `  # first run, installs and writes a config
  librarygrid

  # load books into the library
  librarygrid import books.yml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.serve(cmd.Context(), o, listen)
		},
	}
	cmd.SetIn(env.In)
	cmd.SetOut(env.Out)
	cmd.SetErr(env.Err)

	o.register(cmd)
	cmd.Flags().StringVar(&listen, "listen", "", "override the configured listen address")

	cmd.AddCommand(newVersionCmd(env))
	cmd.AddCommand(newStatusCmd(env, o))
	cmd.AddCommand(newImportCmd(env, o))
	return cmd
}

func newVersionCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(env.Out, version.String())
			fmt.Fprintf(env.Out, "web bundle %s\n", env.webVersion())
		},
	}
}

func (env *Env) serve(ctx context.Context, o *options, listen string) error {
	res, p, l, err := env.deploy(ctx, o)
	if err != nil {
		return err
	}

	cfg, err := config.Ensure(p, env.Out, l, l.ConfigPath())
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Server.Listen = listen
	}

	store, err := library.Open(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.CreateSchema(ctx); err != nil {
		return err
	}

	logger := env.logger()
	srv := server.New(cfg, store, res.WebDir, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("librarygrid stopped")
	return nil
}
