// Package config loads tzq settings from a TOML file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the settings a tzq invocation starts from. Command line
// flags override anything read from a file.
type Config struct {
	// Zoneinfo is the directory zone names resolve against. Empty means
	// the system zoneinfo directories.
	Zoneinfo string `toml:"zoneinfo"`

	// Color selects colored output: "auto", "always" or "never".
	Color string `toml:"color"`
}

// Load reads a TOML config file.
func Load(path string) (Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := toml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}
