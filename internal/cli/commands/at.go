package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/mlieder/go-localtime/civil"
	"github.com/mlieder/go-localtime/internal/cli/colors"
	"github.com/mlieder/go-localtime/internal/cli/output"
	"github.com/mlieder/go-localtime/zone"
)

// atCommand returns the at command.
func atCommand() *cli.Command {
	return &cli.Command{
		Name:      "at",
		Usage:     "Show the civil time of an epoch second in a zone",
		ArgsUsage: "<epoch>...",
		Description: `Convert Unix epoch seconds to broken-down civil time.

The zone comes from --zone, or from the TZ environment variable when the
flag is absent. Either way the name may be an Olson name such as
Europe/Berlin or a POSIX TZ rule such as CET-1CEST,M3.5.0,M10.5.0/3. An
unset or unresolvable TZ falls back to UTC.

With --posix, inputs are POSIX epoch seconds and are moved onto the
zone's own time scale first. The two scales only differ for leap-aware
("right/") zones, where they drift apart by the accumulated leap
seconds.

EXAMPLES:
  tzq at 127810800                              Use the TZ environment variable
  tzq at --zone America/New_York 127810800
  tzq at --zone right/UTC --posix 536457599
  TZ=Asia/Tokyo tzq at 0 1234567890`,
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:    "zone",
				Aliases: []string{"Z"},
				Usage:   "Convert into zone `NAME` instead of $TZ",
			},
			&cli.BoolFlag{
				Name:  "posix",
				Usage: "Treat inputs as POSIX seconds, not the zone's own scale",
			},
		),
		Action: atAction,
	}
}

func atAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 {
		return fmt.Errorf("usage: tzq at <epoch>...")
	}

	cfg, err := settings(cmd)
	if err != nil {
		return err
	}

	var z *zone.Zone
	if name := cmd.String("zone"); name != "" {
		z, err = zone.Load(name, source(cfg))
		if err != nil {
			return err
		}
	} else {
		r := &zone.Registry{Source: source(cfg)}
		z = r.Zone()
	}

	out := output.New(cmd.Root().Writer)
	for i, arg := range cmd.Args().Slice() {
		sec, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid epoch %q: %w", arg, err)
		}
		t := sec
		if cmd.Bool("posix") {
			if t, err = z.FromPosix(sec); err != nil {
				return fmt.Errorf("epoch %d: %w", sec, err)
			}
		}
		ct, err := z.ToCivil(t)
		if err != nil {
			return fmt.Errorf("epoch %d: %w", sec, err)
		}
		if i > 0 {
			out.Separator()
		}
		printCivil(out, z.Name(), sec, ct)
	}
	return nil
}

func printCivil(out *output.Writer, name string, epoch int64, ct civil.Time) {
	abbr := ct.Zone
	if ct.IsDST > 0 {
		abbr = colors.Daylight(abbr)
	}
	out.Field("Zone", name)
	out.Field("Epoch", strconv.FormatInt(epoch, 10))
	out.Field("Local", fmt.Sprintf("%s %s", ct, abbr))
	out.Field("Offset", clockOffset(ct.Offset))
	out.Field("DST", lo.Ternary(ct.IsDST > 0, "yes", "no"))
	out.Field("Yday", strconv.Itoa(ct.Yday))
}
