package config

import (
	"errors"
	"fmt"
	"io"

	"github.com/librarygrid/librarygrid/internal/layout"
	"github.com/librarygrid/librarygrid/internal/prompt"
)

// ErrNeedsRestart is returned after the setup helper wrote a new config
// file. The process is expected to exit cleanly and be started again.
var ErrNeedsRestart = errors.New("config written, please restart this program")

// Setup asks for the values of a fresh config and writes it to path.
func Setup(p *prompt.Prompter, out io.Writer, l layout.Layout, path string) (*Config, error) {
	cfg := Default(l)

	fmt.Fprintln(out, "--- config setup! ---")

	var err error
	if cfg.DB.Path, err = p.Ask("database path", cfg.DB.Path); err != nil {
		return nil, err
	}
	if cfg.Server.Listen, err = p.Ask("listen address", cfg.Server.Listen); err != nil {
		return nil, err
	}
	if cfg.Grid.XSize, err = p.AskInt("grid x size", cfg.Grid.XSize); err != nil {
		return nil, err
	}
	if cfg.Grid.YSize, err = p.AskInt("grid y size", cfg.Grid.YSize); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := Write(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Ensure is the gate in front of the database: it loads the config at path,
// or runs Setup and returns ErrNeedsRestart when there is none yet.
func Ensure(p *prompt.Prompter, out io.Writer, l layout.Layout, path string) (*Config, error) {
	if Exists(path) {
		return Load(path, l)
	}
	if _, err := Setup(p, out, l, path); err != nil {
		return nil, err
	}
	return nil, ErrNeedsRestart
}
