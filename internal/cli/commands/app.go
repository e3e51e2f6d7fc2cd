// Package commands provides the command-line interface for tzq.
package commands

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
)

// MakeApp creates a new CLI application instance.
func MakeApp() *cli.Command {
	return &cli.Command{
		Name:    "tzq",
		Usage:   "Query and inspect time zone data",
		Version: "0.1.0",
		Commands: []*cli.Command{
			atCommand(),
			dumpCommand(),
			checkCommand(),
			diffCommand(),
			leapCommand(),
		},
		CommandNotFound: func(_ context.Context, cmd *cli.Command, command string) {
			_ = cli.ShowAppHelp(cmd)
			w := lo.CoalesceOrEmpty(cmd.Root().ErrWriter, cmd.Root().Writer)
			_, _ = fmt.Fprintf(w, "\nCommand not found: %s\n", command)
		},
	}
}

// App is the main CLI application.
var App = MakeApp()
