package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/google/go-cmp/cmp"
	"github.com/urfave/cli/v3"

	"github.com/mlieder/go-localtime/internal/cli/output"
	"github.com/mlieder/go-localtime/tzif"
)

// diffCommand returns the diff command.
func diffCommand() *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "Compare two TZif files",
		ArgsUsage: "<file-a> <file-b>",
		Description: `Decode two TZif files and compare their contents field by field,
ignoring encoding differences that do not change meaning. The output
marks values of the first file with - and values of the second with +.

EXAMPLES:
  tzq diff old/Berlin new/Berlin
  tzq diff /usr/share/zoneinfo/UTC build/UTC`,
		Flags:  commonFlags(),
		Action: diffAction,
	}
}

func diffAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return fmt.Errorf("usage: tzq diff <file-a> <file-b>")
	}
	if _, err := settings(cmd); err != nil {
		return err
	}
	apath, bpath := cmd.Args().Get(0), cmd.Args().Get(1)

	a, err := decodeFile(apath)
	if err != nil {
		return err
	}
	b, err := decodeFile(bpath)
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	if diff := cmp.Diff(a, b); diff != "" {
		output.Printf(w, "files are different: -%s +%s\n", apath, bpath)
		output.Printf(w, "%s", output.ColorDiff(diff))
	} else {
		output.Println(w, "files are identical")
	}
	return nil
}

func decodeFile(path string) (tzif.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tzif.File{}, err
	}
	f, err := tzif.DecodeBytes(data)
	if err != nil {
		return tzif.File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
