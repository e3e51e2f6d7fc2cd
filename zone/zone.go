// Package zone converts between Unix instants and the civil wall-clock
// readings of named time zones. A Zone is an immutable handle built from
// TZif data, from a POSIX TZ rule, or from a fixed offset; once built it
// is safe for concurrent conversions. The package-level functions cover
// the two ambient zones every process has: UTC, and the zone named by
// the TZ environment variable.
package zone

import (
	"errors"
	"fmt"

	"github.com/mlieder/go-localtime/tzdb"
	"github.com/mlieder/go-localtime/tzif"
	"github.com/mlieder/go-localtime/tzposix"
)

var (
	// ErrMalformedZoneData reports TZif data that failed to decode or
	// validate, or whose footer rule contradicts the last transition.
	ErrMalformedZoneData = errors.New("malformed zone data")

	// ErrUnknownZone reports a name the data source does not know and
	// that does not parse as a POSIX TZ rule either.
	ErrUnknownZone = errors.New("unknown zone")

	// ErrAmbiguousTime reports a civil time that does not denote exactly
	// one instant: it was repeated by a backward clock change or skipped
	// by a forward one. The instant returned alongside it is still the
	// best reading, so callers that do not care may ignore the error.
	ErrAmbiguousTime = errors.New("ambiguous local time")

	// ErrClosed reports a second Close of the same handle.
	ErrClosed = errors.New("zone already closed")
)

// ztype is one resolved local time type: what the wall clock shows
// relative to UT while the type is in effect.
type ztype struct {
	utoff int32
	dst   bool
	abbr  string
}

// transition switches the zone to a new type at an instant. The instant
// is on the zone's own time scale, so for leap-aware data it counts
// inserted leap seconds.
type transition struct {
	at  int64
	typ int
}

// leap is one leap-second record: the cumulative UT correction in effect
// from the occurrence on.
type leap struct {
	occur int64
	corr  int32
}

// Transition is one row of a zone's resolved transition table.
type Transition struct {
	// At is the instant the row takes effect.
	At int64
	// Offset is the wall-clock offset in seconds east of UT from At on.
	Offset int32
	IsDST  bool
	Abbr   string
}

// Zone is a handle to one time zone. Handles are immutable after
// construction; Close invalidates the handle and must not overlap other
// use of it.
type Zone struct {
	name      string
	types     []ztype
	trans     []transition
	first     int
	extend    tzposix.TZ
	hasExtend bool
	leaps     []leap
	closed    bool
}

// New builds a handle from raw TZif data. The data is decoded, validated
// and cross-checked: a footer rule that disagrees with the offset or
// daylight flag the last transition establishes is rejected rather than
// papered over.
func New(name string, data []byte) (*Zone, error) {
	f, err := tzif.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedZoneData, err)
	}
	if err := tzif.Validate(f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedZoneData, err)
	}
	b := f.Block()

	z := &Zone{name: name}
	z.types = make([]ztype, len(b.LocalTimeTypes))
	for i, tt := range b.LocalTimeTypes {
		z.types[i] = ztype{utoff: tt.Utoff, dst: tt.Dst, abbr: b.Designation(tt.Idx)}
	}
	z.trans = make([]transition, len(b.TransitionTimes))
	for i, at := range b.TransitionTimes {
		z.trans[i] = transition{at: at, typ: int(b.TransitionTypes[i])}
	}
	z.first = firstZone(z.types, z.trans)
	z.leaps = make([]leap, len(b.LeapSecondRecords))
	for i, lr := range b.LeapSecondRecords {
		z.leaps[i] = leap{occur: lr.Occur, corr: lr.Corr}
	}

	if s := string(f.Footer.TZString); s != "" {
		tz, err := tzposix.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%w: footer: %w", ErrMalformedZoneData, err)
		}
		z.extend = tz
		z.hasExtend = true
		if len(z.trans) > 0 {
			last := z.trans[len(z.trans)-1]
			want := z.types[last.typ]
			_, off, dst := tz.OffsetAt(last.at)
			if off != want.utoff || dst != want.dst {
				return nil, fmt.Errorf("%w: footer rule %q disagrees with the last transition", ErrMalformedZoneData, s)
			}
		}
	}
	return z, nil
}

// firstZone picks the type in effect before the first transition. The
// heuristic is the one tzcode and the Go standard library share: the
// first type if no transition refers to it, otherwise the closest
// standard type preceding the first transition's type, otherwise the
// first standard type anywhere, otherwise type zero.
func firstZone(types []ztype, trans []transition) int {
	refersToZero := false
	for _, tr := range trans {
		if tr.typ == 0 {
			refersToZero = true
			break
		}
	}
	if !refersToZero {
		return 0
	}
	if len(trans) > 0 && types[trans[0].typ].dst {
		for i := trans[0].typ - 1; i >= 0; i-- {
			if !types[i].dst {
				return i
			}
		}
	}
	for i := range types {
		if !types[i].dst {
			return i
		}
	}
	return 0
}

// Load resolves a zone by name. The empty string and "UTC" yield the
// builtin UTC handle; a name the source knows yields its parsed data; a
// name that is itself a valid POSIX TZ rule, such as
// "CET-1CEST,M3.5.0,M10.5.0/3", yields a synthetic rule-only zone. A nil
// source means the system zoneinfo directories.
func Load(name string, src tzdb.Source) (*Zone, error) {
	if name == "" || name == "UTC" {
		return Fixed("UTC", 0), nil
	}
	if src == nil {
		src = tzdb.System()
	}
	data, err := src.Lookup(name)
	switch {
	case err == nil:
		return New(name, data)
	case !errors.Is(err, tzdb.ErrNotFound):
		return nil, fmt.Errorf("zone %q: %w", name, err)
	}
	if tz, err := tzposix.Parse(name); err == nil {
		return fromRule(name, tz), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownZone, name)
}

// fromRule builds a zone with no transition table; every query evaluates
// the rule.
func fromRule(name string, tz tzposix.TZ) *Zone {
	return &Zone{
		name:      name,
		types:     []ztype{{utoff: tz.StdOffset, dst: false, abbr: tz.Std}},
		extend:    tz,
		hasExtend: true,
	}
}

// Fixed builds a handle with a single constant offset, in seconds east
// of UT, that never observes daylight saving.
func Fixed(name string, offset int32) *Zone {
	return &Zone{
		name:  name,
		types: []ztype{{utoff: offset, abbr: name}},
	}
}

// Close releases the handle. Converting through a closed handle panics;
// closing one twice returns ErrClosed.
func (z *Zone) Close() error {
	if z.closed {
		return ErrClosed
	}
	z.closed = true
	z.types = nil
	z.trans = nil
	z.leaps = nil
	z.hasExtend = false
	return nil
}

func (z *Zone) check() {
	if z.closed {
		panic("zone: use of closed Zone")
	}
}

// Name returns the name the handle was created under.
func (z *Zone) Name() string { return z.name }

// LeapAware reports whether the zone carries leap-second records, which
// is the mark of a "right/" style database entry.
func (z *Zone) LeapAware() bool {
	z.check()
	return len(z.leaps) > 0
}

// Transitions returns the resolved transition table in ascending order
// of instant. The slice is a fresh copy and stays valid after Close.
// Changes implied by a footer rule are not materialized into rows.
func (z *Zone) Transitions() []Transition {
	z.check()
	out := make([]Transition, len(z.trans))
	for i, tr := range z.trans {
		ty := z.types[tr.typ]
		out[i] = Transition{At: tr.at, Offset: ty.utoff, IsDST: ty.dst, Abbr: ty.abbr}
	}
	return out
}

// LeapSecond is one row of a zone's leap second table.
type LeapSecond struct {
	// Occur is the instant on the zone's time scale at which the
	// cumulative correction changes.
	Occur int64
	// Corr is the cumulative correction in effect from Occur on.
	Corr int32
}

// LeapSeconds returns the zone's leap second table in ascending order of
// occurrence. The slice is a fresh copy and stays valid after Close.
func (z *Zone) LeapSeconds() []LeapSecond {
	z.check()
	out := make([]LeapSecond, len(z.leaps))
	for i, lp := range z.leaps {
		out[i] = LeapSecond{Occur: lp.occur, Corr: lp.corr}
	}
	return out
}

// Rule returns the POSIX rule that extends the transition table past its
// last row, if the zone has one.
func (z *Zone) Rule() (tzposix.TZ, bool) {
	z.check()
	return z.extend, z.hasExtend
}
