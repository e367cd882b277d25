package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDeployCmd returns librarygrid-deploy, which runs only the install and
// update logic and exits.
func NewDeployCmd(env *Env) *cobra.Command {
	var check bool
	o := &options{}
	o.onLine = func(op, line string) {
		fmt.Fprintf(env.Out, "%s %s\n", op, line)
	}

	cmd := &cobra.Command{
		Use:   "librarygrid-deploy",
		Short: "Install or update the librarygrid web interface",
		Long: `librarygrid-deploy installs the web interface bundled into this binary
under <home>/librarygrid/web, or replaces an installed one whose version
differs. It never starts the server.`,
		Example: `  # show what would happen
  librarygrid-deploy --check

  # install without asking
  librarygrid-deploy --yes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if check {
				return env.status(o)
			}

			res, _, _, err := env.deploy(cmd.Context(), o)
			if err != nil {
				return err
			}
			switch {
			case res.Installed:
				fmt.Fprintf(env.Out, "installed web %s into %s\n", env.webVersion(), res.WebDir)
			case res.Updated:
				fmt.Fprintf(env.Out, "updated web to %s in %s\n", env.webVersion(), res.WebDir)
			default:
				fmt.Fprintf(env.Out, "web %s in %s is up to date (%s)\n", env.webVersion(), res.WebDir, res.Status)
			}
			return nil
		},
	}
	cmd.SetIn(env.In)
	cmd.SetOut(env.Out)
	cmd.SetErr(env.Err)

	o.register(cmd)
	cmd.Flags().BoolVar(&check, "check", false, "report the installation state without changing it")
	return cmd
}
