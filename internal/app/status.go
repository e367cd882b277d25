package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/librarygrid/librarygrid/internal/deploy"
	"github.com/librarygrid/librarygrid/internal/layout"
)

func newStatusCmd(env *Env, o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the installed and embedded web versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.status(o)
		},
	}
}

func (env *Env) status(o *options) error {
	l, err := o.layout()
	if err != nil {
		return err
	}
	d := &deploy.Driver{Layout: l, Bundle: env.Bundle}
	r, err := d.Inspect()
	if err != nil {
		return err
	}
	printReport(env.Out, l, r)
	return nil
}

func printReport(w io.Writer, l layout.Layout, r *deploy.Report) {
	onDisk := strings.TrimSpace(r.OnDisk)
	if onDisk == "" {
		onDisk = "-"
	}

	fmt.Fprintf(w, "root:       %s\n", r.Root)
	fmt.Fprintf(w, "installed:  %v\n", r.Installed)
	if r.Incomplete {
		fmt.Fprintf(w, "incomplete: %s is present, the next start resumes the install\n", l.IncompletePath())
	}
	fmt.Fprintf(w, "embedded:   %s\n", strings.TrimSpace(r.Embedded))
	fmt.Fprintf(w, "on disk:    %s\n", onDisk)
	fmt.Fprintf(w, "status:     %s\n", r.Status)
}
