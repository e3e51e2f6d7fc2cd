package zone

import (
	"fmt"

	"github.com/mlieder/go-localtime/civil"
	"github.com/mlieder/go-localtime/internal/overflow"
)

// utc backs ToUTC and FromUTC. It is never closed.
var utc = Fixed("UTC", 0)

// ToUTC breaks an instant down into UTC civil fields, like gmtime(3).
func ToUTC(t int64) (civil.Time, error) { return utc.ToCivil(t) }

// FromUTC interprets civil fields as UTC and returns the instant they
// denote, like timegm(3).
func FromUTC(ct civil.Time) (int64, error) { return utc.FromCivil(ct) }

// ToCivil converts an instant on the zone's time scale to the civil time
// the zone's wall clock showed, like localtime(3). In a leap-aware zone
// the instant counts inserted leap seconds, and an instant falling on an
// inserted second comes back with Sec 60.
func (z *Zone) ToCivil(t int64) (civil.Time, error) {
	z.check()
	return z.civilAt(t, z.typeAt(t))
}

func (z *Zone) civilAt(t int64, ty ztype) (civil.Time, error) {
	corr, hit := leapCorrection(z.leaps, t)
	shifted, ok := overflow.Add(t, int64(ty.utoff)-int64(corr))
	if !ok {
		return civil.Time{}, civil.ErrRange
	}
	tm, err := civil.FromUnix(shifted)
	if err != nil {
		return civil.Time{}, err
	}
	if hit {
		tm.Sec++
	}
	if ty.dst {
		tm.IsDST = 1
	}
	tm.Offset = int(ty.utoff)
	tm.Zone = ty.abbr
	return tm, nil
}

// leapCorrection returns the cumulative leap-second correction in effect
// at t and whether t falls exactly on an inserted leap second.
func leapCorrection(leaps []leap, t int64) (corr int32, hit bool) {
	for i := len(leaps) - 1; i >= 0; i-- {
		lp := leaps[i]
		if t >= lp.occur {
			corr = lp.corr
			var prev int32
			if i > 0 {
				prev = leaps[i-1].corr
			}
			hit = t == lp.occur && prev < lp.corr
			break
		}
	}
	return corr, hit
}

// offsetClass is a candidate wall-clock offset together with the
// daylight flag of the type it was taken from.
type offsetClass struct {
	off int32
	dst bool
}

// candidateOffsets enumerates the distinct offsets the zone has ever
// used, plus the two offsets of the footer rule. Each offset keeps the
// daylight flag of the first type carrying it.
func (z *Zone) candidateOffsets() []offsetClass {
	out := make([]offsetClass, 0, len(z.types)+2)
	seen := make(map[int32]bool, len(z.types)+2)
	add := func(off int32, dst bool) {
		if !seen[off] {
			seen[off] = true
			out = append(out, offsetClass{off, dst})
		}
	}
	for _, ty := range z.types {
		add(ty.utoff, ty.dst)
	}
	if z.hasExtend {
		add(z.extend.StdOffset, false)
		if z.extend.HasDST {
			add(z.extend.DstOffset, true)
		}
	}
	return out
}

// candidate is one possible reading of a civil time: the instant reached
// by assuming some offset, the type actually governing that instant, and
// the daylight flag of the assumed offset.
type candidate struct {
	at  int64
	ty  ztype
	src bool
}

// FromCivil finds the instant at which the zone's wall clock showed the
// given civil time, like mktime(3). Out-of-range fields are normalized
// the way civil.Time.Normalize does, except that seconds are carried
// through the search additively so that Sec 60 can land on an inserted
// leap second instead of rolling into the next minute.
//
// The IsDST field steers wall times that exist twice or not at all:
// positive prefers the daylight reading, zero the standard reading, and
// negative lets the zone decide. Every such time also returns
// ErrAmbiguousTime alongside the chosen instant. A repeated time
// resolves to the preferred reading, earliest first when the flag does
// not settle it; a skipped time resolves by sliding the wall clock
// across the change, so half past two during a spring-forward gap comes
// back as the instant whose local reading is half past three.
func (z *Zone) FromCivil(ct civil.Time) (int64, error) {
	z.check()

	saved := ct.Sec
	work := ct
	work.Sec = 0
	if err := work.Normalize(); err != nil {
		return 0, err
	}
	u, err := work.Unix()
	if err != nil {
		return 0, err
	}

	var genuine, displaced []candidate
	for _, oc := range z.candidateOffsets() {
		t, ok := z.instantFor(u, oc.off)
		if !ok {
			continue
		}
		c := candidate{at: t, ty: z.typeAt(t), src: oc.dst}
		if c.ty.utoff == oc.off {
			genuine = append(genuine, c)
		} else {
			displaced = append(displaced, c)
		}
	}

	pick, unique := choose(genuine, displaced, ct.IsDST)
	if pick == nil {
		return 0, civil.ErrRange
	}
	t, ok := overflow.Add(pick.at, int64(saved))
	if !ok {
		return 0, civil.ErrRange
	}
	if !unique {
		return t, fmt.Errorf("%w: %s", ErrAmbiguousTime, ct)
	}
	return t, nil
}

// instantFor inverts the wall-clock display for one assumed offset: the
// instant t with t + off - corr(t) equal to the calendar second u. With
// leap records the correction depends on t itself, so iterate until it
// stabilizes. Occurrences are months apart while the total correction
// moves one second per record, so three rounds always reach the fixed
// point.
func (z *Zone) instantFor(u int64, off int32) (int64, bool) {
	t, ok := overflow.Sub(u, int64(off))
	if !ok {
		return 0, false
	}
	for range 3 {
		corr, _ := leapCorrection(z.leaps, t)
		nt, ok := overflow.Add(u, int64(corr)-int64(off))
		if !ok {
			return 0, false
		}
		if nt == t {
			break
		}
		t = nt
	}
	return t, true
}

// choose picks among the candidate readings of a wall time. Exactly one
// genuine reading means the time is unambiguous. Several mean a repeated
// time, settled by the daylight flag and then by the earliest instant.
// None means a skipped time, settled by honoring the flag's claimed
// offset so that the result displays as the wall time slid across the
// change; a negative flag guesses standard time, the usual mktime
// outcome.
func choose(genuine, displaced []candidate, isdst int) (pick *candidate, unique bool) {
	if len(genuine) == 1 {
		return &genuine[0], true
	}
	if len(genuine) > 1 {
		pool := genuine
		if isdst >= 0 {
			want := isdst > 0
			var sel []candidate
			for _, c := range pool {
				if c.ty.dst == want {
					sel = append(sel, c)
				}
			}
			if len(sel) > 0 {
				pool = sel
			}
		}
		best := pool[0]
		for _, c := range pool[1:] {
			if c.at < best.at {
				best = c
			}
		}
		return &best, false
	}
	if len(displaced) == 0 {
		return nil, false
	}
	want := isdst > 0
	var sel []candidate
	for _, c := range displaced {
		if c.src == want {
			sel = append(sel, c)
		}
	}
	if len(sel) == 0 {
		sel = displaced
	}
	best := sel[0]
	for _, c := range sel[1:] {
		if c.at < best.at {
			best = c
		}
	}
	return &best, false
}
