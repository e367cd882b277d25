// Package layout names the files and directories under the installation
// root, <home>/librarygrid.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	DirName        = "librarygrid"
	WebDirName     = "web"
	VersionFile    = "version.txt"
	ConfigFile     = "config.toml"
	DatabaseFile   = "library.db"
	IncompleteFile = ".install-incomplete"

	// StagingPrefix and RetiredPrefix name the sibling directories used
	// while the web directory is being swapped.
	StagingPrefix = ".web-staging-"
	RetiredPrefix = ".web-old-"
)

// Layout is the set of paths owned by the application.
type Layout struct {
	Root string
}

// New returns the layout rooted at <home>/librarygrid. An empty home means
// the current user's home directory.
func New(home string) (Layout, error) {
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return Layout{}, fmt.Errorf("layout: no home directory: %w", err)
		}
		home = h
	}
	return Layout{Root: filepath.Join(home, DirName)}, nil
}

// At returns a layout for an explicit root directory.
func At(root string) Layout {
	return Layout{Root: root}
}

func (l Layout) WebDir() string         { return filepath.Join(l.Root, WebDirName) }
func (l Layout) VersionPath() string    { return filepath.Join(l.WebDir(), VersionFile) }
func (l Layout) ConfigPath() string     { return filepath.Join(l.Root, ConfigFile) }
func (l Layout) DatabasePath() string   { return filepath.Join(l.Root, DatabaseFile) }
func (l Layout) IncompletePath() string { return filepath.Join(l.Root, IncompleteFile) }

// RetiredDir is where the live web directory is parked during a swap.
func (l Layout) RetiredDir(id string) string {
	return filepath.Join(l.Root, RetiredPrefix+id)
}

// Staged returns staging directories left by an interrupted update.
func (l Layout) Staged() ([]string, error) {
	return filepath.Glob(filepath.Join(l.Root, StagingPrefix+"*"))
}

// Retired returns parked web directories left by an interrupted update.
func (l Layout) Retired() ([]string, error) {
	return filepath.Glob(filepath.Join(l.Root, RetiredPrefix+"*"))
}

// Leftovers returns staging and retired directories left by an interrupted
// update.
func (l Layout) Leftovers() ([]string, error) {
	var out []string
	for _, prefix := range []string{StagingPrefix, RetiredPrefix} {
		matches, err := filepath.Glob(filepath.Join(l.Root, prefix+"*"))
		if err != nil {
			return nil, err
		}
		out = append(out, matches...)
	}
	return out, nil
}

// Exists reports whether path exists. Errors other than not-exist count as
// existing so callers do not treat a permission problem as a fresh install.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !os.IsNotExist(err)
}
