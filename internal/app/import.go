package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/librarygrid/librarygrid/internal/config"
	"github.com/librarygrid/librarygrid/internal/library"
)

func newImportCmd(env *Env, o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <books.yml>",
		Short: "Load a YAML catalog of books into the library",
		Long: `Import reads a catalog of books and writes them to the library database.
Books are matched by isbn, so importing the same file twice updates in place.
Every shelf cell must lie inside the configured grid.`,
		Example: `  librarygrid import books.yml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := o.layout()
			if err != nil {
				return err
			}
			cfg, err := config.Load(l.ConfigPath(), l)
			if err != nil {
				return fmt.Errorf("%w (start librarygrid once to create it)", err)
			}

			c, err := library.ParseCatalog(args[0])
			if err != nil {
				return err
			}
			if err := c.Validate(cfg.Grid.XSize, cfg.Grid.YSize); err != nil {
				return err
			}

			store, err := library.Open(cfg.DB.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			if err := store.CreateSchema(ctx); err != nil {
				return err
			}
			n, err := store.Import(ctx, c)
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Out, "imported %d books into %s\n", n, cfg.DB.Path)
			return nil
		},
	}
}
