package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/karasz/glibtai"
	"github.com/urfave/cli/v3"

	"github.com/mlieder/go-localtime/internal/cli/output"
	"github.com/mlieder/go-localtime/leapsec"
	"github.com/mlieder/go-localtime/zone"
)

// fetchList downloads the IANA leap seconds list. It is a variable to
// allow mocking in tests.
var fetchList = leapsec.Fetch

// leapCommand returns the leap command.
func leapCommand() *cli.Command {
	return &cli.Command{
		Name:      "leap",
		Usage:     "List leap seconds",
		ArgsUsage: "[zone]",
		Description: `List leap second records: from the table of a leap-aware ("right/")
zone, from a leap-seconds.list file, or from the current copy published
by IANA.

Each row shows the TAI64 label of the occurrence, the UTC instant at
which the new correction takes effect, and the cumulative correction
from then on, counted from the start of the table.

EXAMPLES:
  tzq leap right/UTC
  tzq leap --list /usr/share/zoneinfo/leap-seconds.list
  tzq leap --fetch`,
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:  "list",
				Usage: "Read records from leap-seconds.list `FILE`",
			},
			&cli.BoolFlag{
				Name:  "fetch",
				Usage: "Download the current list from IANA",
			},
		),
		Action: leapAction,
	}
}

func leapAction(ctx context.Context, cmd *cli.Command) error {
	file := cmd.String("list")
	fetch := cmd.Bool("fetch")
	name := cmd.Args().First()

	n := cmd.Args().Len()
	if n > 1 {
		return fmt.Errorf("usage: tzq leap [--list FILE | --fetch | <zone>]")
	}
	if (file != "" && fetch) || ((file != "" || fetch) && n > 0) {
		return fmt.Errorf("--list, --fetch and a zone argument are mutually exclusive")
	}
	if file == "" && !fetch && n == 0 {
		return fmt.Errorf("usage: tzq leap [--list FILE | --fetch | <zone>]")
	}

	switch {
	case fetch:
		if _, err := settings(cmd); err != nil {
			return err
		}
		l, _, err := fetchList(ctx, "")
		if err != nil {
			return err
		}
		return printList(cmd.Root().Writer, l)
	case file != "":
		if _, err := settings(cmd); err != nil {
			return err
		}
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		l, err := leapsec.Parse(f)
		if err != nil {
			return err
		}
		return printList(cmd.Root().Writer, l)
	default:
		z, err := loadZone(cmd, name)
		if err != nil {
			return err
		}
		w := cmd.Root().Writer
		recs := z.LeapSeconds()
		if len(recs) == 0 {
			output.Println(w, "no leap second records")
			return nil
		}
		for _, rec := range recs {
			posix, err := z.ToPosix(rec.Occur)
			if err != nil {
				return err
			}
			if err := printLeap(w, posix, rec.Corr); err != nil {
				return err
			}
		}
		return nil
	}
}

func printList(w io.Writer, l *leapsec.List) error {
	out := output.New(w)
	out.Field("Updated", formatUTC(l.Updated))
	if l.Expires != 0 {
		out.Field("Expires", formatUTC(l.Expires))
	}
	out.Field("Baseline", fmt.Sprintf("TAI-UTC = %ds", l.Entries[0].TAIMinusUTC))
	out.Separator()
	if l.Expired(time.Now().Unix()) {
		output.Warning(w, "list has expired, fetch a fresh copy")
	}
	base := l.Entries[0].TAIMinusUTC
	for _, e := range l.Entries[1:] {
		if err := printLeap(w, e.At, e.TAIMinusUTC-base); err != nil {
			return err
		}
	}
	return nil
}

func printLeap(w io.Writer, posix int64, corr int32) error {
	ct, err := zone.ToUTC(posix)
	if err != nil {
		return err
	}
	label := glibtai.TAIfromTime(time.Unix(posix, 0))
	output.Printf(w, "%s  %s UTC  corr=%+d\n", label, ct, corr)
	return nil
}

func formatUTC(sec int64) string {
	ct, err := zone.ToUTC(sec)
	if err != nil {
		return fmt.Sprintf("<%d>", sec)
	}
	return ct.String()
}
