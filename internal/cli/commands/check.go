package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/mlieder/go-localtime/internal/cli/output"
	"github.com/mlieder/go-localtime/zone"
)

// checkCommand returns the check command.
func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Validate TZif files",
		ArgsUsage: "<file>...",
		Description: `Decode and validate each file against the structural rules of RFC 8536:
magic and version octets, count consistency, strictly ascending
transition times, type and designation indexes in range, well-formed
leap second records, and a footer rule that agrees with the last
transition.

Every problem of a file is reported, not just the first. The exit
status is nonzero when any file fails.

EXAMPLES:
  tzq check /usr/share/zoneinfo/Europe/Berlin
  tzq check build/zones/*`,
		Flags:  commonFlags(),
		Action: checkAction,
	}
}

func checkAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 {
		return fmt.Errorf("usage: tzq check <file>...")
	}
	if _, err := settings(cmd); err != nil {
		return err
	}
	w := cmd.Root().Writer

	var failed int
	for _, path := range cmd.Args().Slice() {
		data, err := os.ReadFile(path)
		if err == nil {
			_, err = zone.New(path, data)
		}
		if err != nil {
			failed++
			output.Failed(w, path, err)
			continue
		}
		output.Success(w, "%s", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, cmd.Args().Len())
	}
	return nil
}
