package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultFile is read from the working directory when no config path is given.
const DefaultFile = ".xaml-sleuth.toml"

type Config struct {
	Log     Log     `toml:"log"`
	Static  Static  `toml:"static"`
	Runtime Runtime `toml:"runtime"`
	Report  Report  `toml:"report"`
	Rules   Rules   `toml:"rules"`
}

type Log struct {
	Level string `toml:"level"`
}

type Static struct {
	MockData string `toml:"mock_data"`
}

type Runtime struct {
	MaxDepth      *int   `toml:"max_depth"`
	SearchTimeout string `toml:"search_timeout"`
	Snapshot      string `toml:"snapshot"`
}

type Report struct {
	Path   string `toml:"path"`
	Format string `toml:"format"`
}

type Rules struct {
	Disabled []string `toml:"disabled"`
}

// SearchTimeoutDuration parses runtime.search_timeout. An empty value returns zero.
func (r Runtime) SearchTimeoutDuration() (time.Duration, error) {
	if r.SearchTimeout == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(r.SearchTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid runtime.search_timeout %q: %w", r.SearchTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("runtime.search_timeout must be positive, got %s", d)
	}

	return d, nil
}

// validateConfigPath checks that path exists and is a regular file.
func validateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// Load reads the config file at path. When path is empty, DefaultFile is used
// if it exists, otherwise an empty config is returned.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err != nil {
			return cfg, nil
		}
		path = DefaultFile
	}

	if err := validateConfigPath(path); err != nil {
		return nil, err
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Runtime.MaxDepth != nil && *cfg.Runtime.MaxDepth < 0 {
		return nil, fmt.Errorf("runtime.max_depth must not be negative, got %d", *cfg.Runtime.MaxDepth)
	}
	if _, err := cfg.Runtime.SearchTimeoutDuration(); err != nil {
		return nil, err
	}

	return cfg, nil
}
