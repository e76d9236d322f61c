package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/Zuo-Peng/cc-session-search/internal/parse"
)

type Config struct {
	ProjectsRoot string `toml:"projects_root"`
	DBPath       string `toml:"db_path"`
	Workers      int    `toml:"workers"`
	DefaultModel string `toml:"default_model"`
	// Pricing overrides or extends the built-in price table, in USD per
	// million tokens.
	Pricing map[string]parse.ModelPrice `toml:"pricing"`

	// Path is the config file that was read, empty when none exists.
	Path string `toml:"-"`
}

// Load reads ~/.config/ccs/config.toml if present and fills defaults.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return LoadFile(DefaultPath(home), home)
}

// DefaultPath is the config file location under home.
func DefaultPath(home string) string {
	return filepath.Join(home, ".config", "ccs", "config.toml")
}

// LoadFile reads cfgPath if it exists. A missing file is not an error.
func LoadFile(cfgPath, home string) (*Config, error) {
	cfg := &Config{
		ProjectsRoot: filepath.Join(home, ".claude", "projects"),
		DBPath:       filepath.Join(home, ".config", "ccs", "ccs.db"),
		Workers:      runtime.GOMAXPROCS(0),
		DefaultModel: parse.DefaultModel,
	}

	if _, err := os.Stat(cfgPath); err == nil {
		md, err := toml.DecodeFile(cfgPath, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parse config %s: unknown key %q", cfgPath, undecoded[0].String())
		}
		cfg.Path = cfgPath
	}

	// expand ~ in paths
	cfg.ProjectsRoot = expandHome(cfg.ProjectsRoot, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	for model, p := range cfg.Pricing {
		if p.Input < 0 || p.Output < 0 {
			return nil, fmt.Errorf("parse config %s: negative price for %s", cfgPath, model)
		}
	}
	return cfg, nil
}

// Prices builds the price table with the configured overrides applied.
func (c *Config) Prices() *parse.PriceTable {
	return parse.NewPriceTable(c.Pricing)
}

// Parser returns a parser configured with the price table and default
// model.
func (c *Config) Parser() *parse.Parser {
	return parse.NewParser(parse.NewNormalizer(c.Prices(), c.DefaultModel), nil)
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
