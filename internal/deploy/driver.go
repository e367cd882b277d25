// Package deploy keeps the installed web interface in step with the bundle
// compiled into the binary.
//
// On every start the Driver decides between three outcomes: install (no
// installation directory, or an unfinished one), update (the on-disk
// version marker differs from the embedded one) or nothing. Both the server
// and the standalone deploy helper run the same Driver.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/librarygrid/librarygrid/internal/bundle"
	"github.com/librarygrid/librarygrid/internal/layout"
	"github.com/librarygrid/librarygrid/internal/marker"
)

type Driver struct {
	Layout layout.Layout
	Bundle bundle.Bundle

	// Confirm gates the first-run install. A nil Confirm declines.
	Confirm func() bool

	Logger *slog.Logger
	OnLine func(op, line string)
}

// Result describes what one Run did.
type Result struct {
	Root      string
	WebDir    string
	Installed bool
	Updated   bool
	Recovered bool

	// Status is the oracle's answer before any update ran.
	Status marker.Status
}

func (d *Driver) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// Run brings the installation directory in line with the bundle. It returns
// ErrDeclined if the operator refused the install, and an *InstallError or
// *UpdateError on failure. On success the web directory is ready to serve.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	res := &Result{Root: d.Layout.Root, WebDir: d.Layout.WebDir()}

	if d.Bundle.Empty() {
		return res, errors.New("deploy: binary carries no web bundle")
	}

	recovered, err := d.recoverSwap()
	if err != nil {
		return res, err
	}
	res.Recovered = recovered

	if reason := d.needsInstall(); reason != "" {
		d.logger().Info("web interface not installed", "root", d.Layout.Root, "reason", reason)
		inst := &Installer{
			Layout:  d.Layout,
			Bundle:  d.Bundle,
			Confirm: d.Confirm,
			Logger:  d.Logger,
			OnLine:  d.OnLine,
		}
		if err := inst.Install(ctx); err != nil {
			return res, err
		}
		res.Installed = true
	}

	status, err := marker.Compare(d.Bundle.Version, d.Layout.VersionPath())
	if err != nil {
		return res, fmt.Errorf("deploy: check version: %w", err)
	}
	res.Status = status

	switch status {
	case marker.Match:
		d.logger().Info("web interface up to date", "version", d.Bundle.Version)

	case marker.Mismatch:
		current, _ := marker.Read(d.Layout.VersionPath())
		d.logger().Info("down-/upgrading web interface", "from", current, "to", d.Bundle.Version)
		up := &Updater{
			Layout: d.Layout,
			Bundle: d.Bundle,
			Logger: d.Logger,
			OnLine: d.OnLine,
		}
		if err := up.Reconcile(ctx); err != nil {
			return res, err
		}
		res.Updated = true

	case marker.NotInstalled:
		d.logger().Warn("web directory has no version marker, leaving it as is", "path", d.Layout.VersionPath())
	}

	return res, nil
}

// needsInstall returns why the installer has to run, or "" if it doesn't.
func (d *Driver) needsInstall() string {
	switch {
	case !layout.Exists(d.Layout.Root):
		return "no installation directory"
	case layout.Exists(d.Layout.IncompletePath()):
		return "previous install did not finish"
	case !layout.Exists(d.Layout.WebDir()):
		return "no web directory"
	}
	return ""
}

// recoverSwap puts a parked web directory back when an update was
// interrupted between its two renames.
func (d *Driver) recoverSwap() (bool, error) {
	if !layout.Exists(d.Layout.Root) || layout.Exists(d.Layout.WebDir()) {
		return false, nil
	}
	retired, err := d.Layout.Retired()
	if err != nil || len(retired) == 0 {
		return false, err
	}

	// newest parked tree wins
	sort.Slice(retired, func(i, j int) bool {
		return modTime(retired[i]) > modTime(retired[j])
	})
	if err := os.Rename(retired[0], d.Layout.WebDir()); err != nil {
		return false, fmt.Errorf("deploy: restore %s: %w", retired[0], err)
	}
	d.logger().Warn("restored web directory from interrupted update", "from", retired[0])
	return true, nil
}

func modTime(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.ModTime().UnixNano()
}

// Report is a read-only view of the installation state.
type Report struct {
	Root       string
	Installed  bool
	Incomplete bool
	Embedded   string
	OnDisk     string
	Status     marker.Status
}

// Inspect reports the installation state without changing anything.
func (d *Driver) Inspect() (*Report, error) {
	r := &Report{
		Root:       d.Layout.Root,
		Installed:  layout.Exists(d.Layout.Root),
		Incomplete: layout.Exists(d.Layout.IncompletePath()),
		Embedded:   d.Bundle.Version,
	}

	status, err := marker.Compare(d.Bundle.Version, d.Layout.VersionPath())
	if err != nil {
		return r, err
	}
	r.Status = status
	if status != marker.NotInstalled {
		r.OnDisk, _ = marker.Read(d.Layout.VersionPath())
	}
	return r, nil
}
