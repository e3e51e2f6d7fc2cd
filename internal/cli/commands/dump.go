package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/mlieder/go-localtime/internal/cli/output"
	"github.com/mlieder/go-localtime/zone"
)

// dumpCommand returns the dump command.
func dumpCommand() *cli.Command {
	return &cli.Command{
		Name:      "dump",
		Usage:     "Print a zone's transition table",
		ArgsUsage: "<zone>",
		Description: `Print every transition of a zone in the manner of zdump(8): the instant,
its UT reading, the wall-clock reading it establishes, and the offset
and daylight flag from then on.

The table ends where the zone data ends. Use --years to keep going by
expanding the footer rule for that many calendar years past the last
row. Zones named by a bare POSIX TZ rule have no table at all, so
--years is the only way to see their transitions.

EXAMPLES:
  tzq dump America/Los_Angeles
  tzq dump --years 5 Europe/Berlin
  tzq dump --years 2 'CET-1CEST,M3.5.0,M10.5.0/3'`,
		Flags: append(commonFlags(),
			&cli.IntFlag{
				Name:  "years",
				Usage: "Expand the footer rule `N` years past the table",
			},
		),
		Action: dumpAction,
	}
}

func dumpAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("usage: tzq dump <zone>")
	}
	z, err := loadZone(cmd, cmd.Args().First())
	if err != nil {
		return err
	}
	w := cmd.Root().Writer

	rows := z.Transitions()
	for _, row := range rows {
		if err := printTransition(w, z, row.At); err != nil {
			return err
		}
	}

	rule, hasRule := z.Rule()
	if len(rows) == 0 && !hasRule {
		output.Println(w, "no transitions: fixed offset zone")
		return nil
	}

	years := int(cmd.Int("years"))
	if years <= 0 {
		return nil
	}
	if !hasRule {
		output.Warning(cmd.Root().ErrWriter, "zone has no footer rule to expand")
		return nil
	}
	from := ruleStartYear(z, rows)
	for y := from; y < from+int64(years); y++ {
		toDST, toStd, ok := rule.Transitions(y)
		if !ok {
			break
		}
		// toStd precedes toDST in the southern hemisphere.
		first, second := toDST, toStd
		if second < first {
			first, second = second, first
		}
		for _, at := range []int64{first, second} {
			if len(rows) > 0 && at <= rows[len(rows)-1].At {
				continue
			}
			if err := printTransition(w, z, at); err != nil {
				return err
			}
		}
	}
	return nil
}

// ruleStartYear picks the first calendar year --years expands: the year
// after the last table row, or the current year for rule-only zones.
func ruleStartYear(z *zone.Zone, rows []zone.Transition) int64 {
	if len(rows) == 0 {
		return int64(time.Now().UTC().Year())
	}
	last := rows[len(rows)-1]
	ct, err := z.ToCivil(last.At)
	if err != nil {
		return int64(time.Now().UTC().Year())
	}
	return int64(ct.Year) + 1900 + 1
}

// printTransition prints one zdump-style row for the instant a type
// takes effect.
func printTransition(w io.Writer, z *zone.Zone, at int64) error {
	local, err := z.ToCivil(at)
	if err != nil {
		return err
	}
	// In a leap-aware zone the instant is on the zone's own scale; its
	// POSIX name is what the UT column should read.
	posix, err := z.ToPosix(at)
	if err != nil {
		return err
	}
	ut, err := zone.ToUTC(posix)
	if err != nil {
		return err
	}
	output.Printf(w, "%-12d %s UT = %s %s isdst=%d gmtoff=%d\n",
		at, ut, local, local.Zone, lo.Ternary(local.IsDST > 0, 1, 0), local.Offset)
	return nil
}
