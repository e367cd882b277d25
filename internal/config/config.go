package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/librarygrid/librarygrid/internal/layout"
)

type Config struct {
	Server ServerConfig `toml:"server"`
	DB     DBConfig     `toml:"db"`
	Grid   GridConfig   `toml:"grid"`
	Search SearchConfig `toml:"search"`
}

type ServerConfig struct {
	Listen string `toml:"listen"`
}

type DBConfig struct {
	// Path of the SQLite database. Relative paths are resolved against the
	// installation directory.
	Path string `toml:"path"`
}

type GridConfig struct {
	XSize int `toml:"x_size"`
	YSize int `toml:"y_size"`
}

type SearchConfig struct {
	Limit int     `toml:"limit"`
	Rate  float64 `toml:"rate"`
	Burst int     `toml:"burst"`
}

func Default(l layout.Layout) *Config {
	return &Config{
		Server: ServerConfig{
			Listen: "0.0.0.0:8080",
		},
		DB: DBConfig{
			Path: l.DatabasePath(),
		},
		Grid: GridConfig{
			XSize: 10,
			YSize: 10,
		},
		Search: SearchConfig{
			Limit: 25,
			Rate:  20,
			Burst: 40,
		},
	}
}

// Load reads path over the defaults. A missing file is an error wrapping
// fs.ErrNotExist; callers run the setup helper in that case.
func Load(path string, l layout.Layout) (*Config, error) {
	cfg := Default(l)

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config: %s: unknown keys %v", path, undecoded)
	}

	if cfg.DB.Path != "" && !filepath.IsAbs(cfg.DB.Path) {
		cfg.DB.Path = filepath.Join(l.Root, cfg.DB.Path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Listen == "" {
		errs = append(errs, errors.New("server.listen is empty"))
	}
	if c.DB.Path == "" {
		errs = append(errs, errors.New("db.path is empty"))
	}
	if c.Grid.XSize <= 0 || c.Grid.YSize <= 0 {
		errs = append(errs, fmt.Errorf("grid size %dx%d must be positive", c.Grid.XSize, c.Grid.YSize))
	}
	if c.Search.Limit <= 0 {
		errs = append(errs, fmt.Errorf("search.limit %d must be positive", c.Search.Limit))
	}
	if c.Search.Rate < 0 || c.Search.Burst < 0 {
		errs = append(errs, errors.New("search.rate and search.burst must not be negative"))
	}
	return errors.Join(errs...)
}

// Write encodes cfg as TOML at path.
func Write(path string, cfg *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Exists reports whether a config file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
