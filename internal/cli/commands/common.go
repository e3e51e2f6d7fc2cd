package commands

import (
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/mlieder/go-localtime/internal/cli/config"
	"github.com/mlieder/go-localtime/internal/cli/output"
	"github.com/mlieder/go-localtime/tzdb"
	"github.com/mlieder/go-localtime/zone"
)

// commonFlags are shared by every subcommand: where zone data comes from
// and how output is colored.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Load settings from TOML `FILE`",
		},
		&cli.StringFlag{
			Name:    "zoneinfo",
			Aliases: []string{"z"},
			Usage:   "Resolve zone names against `DIR` instead of the system database",
		},
		&cli.StringFlag{
			Name:  "color",
			Usage: "Colored output: auto, always or never",
		},
	}
}

// settings resolves the effective configuration of an invocation, file
// settings first and flags on top, and applies the color mode.
func settings(cmd *cli.Command) (config.Config, error) {
	var cfg config.Config
	if path := cmd.String("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return cfg, err
		}
	}
	if dir := cmd.String("zoneinfo"); dir != "" {
		cfg.Zoneinfo = dir
	}
	if mode := cmd.String("color"); mode != "" {
		cfg.Color = mode
	}
	if err := output.SetColorMode(cfg.Color, cmd.Root().Writer); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// source returns the zone data source the configuration names.
func source(cfg config.Config) tzdb.Source {
	if cfg.Zoneinfo != "" {
		return tzdb.Dir(cfg.Zoneinfo)
	}
	return tzdb.System()
}

// loadZone resolves one zone through the configured source.
func loadZone(cmd *cli.Command, name string) (*zone.Zone, error) {
	cfg, err := settings(cmd)
	if err != nil {
		return nil, err
	}
	return zone.Load(name, source(cfg))
}

// clockOffset renders a UT offset in seconds as ±hh:mm[:ss].
func clockOffset(sec int) string {
	sign := "+"
	if sec < 0 {
		sign, sec = "-", -sec
	}
	h, rem := sec/3600, sec%3600
	m, s := rem/60, rem%60
	if s != 0 {
		return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%s%02d:%02d", sign, h, m)
}
