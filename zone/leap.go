package zone

import (
	"github.com/mlieder/go-localtime/civil"
	"github.com/mlieder/go-localtime/internal/overflow"
)

// ToPosix converts an instant on the zone's time scale to the POSIX
// epoch scale, which pretends leap seconds never happened. For a zone
// without leap records the two scales coincide and t comes back as is.
func (z *Zone) ToPosix(t int64) (int64, error) {
	z.check()
	out, ok := z.posixOf(t)
	if !ok {
		return 0, civil.ErrRange
	}
	return out, nil
}

// FromPosix converts a POSIX epoch second to the zone's time scale,
// reinstating the leap seconds the POSIX scale skips. A POSIX second
// whose reading is repeated by an inserted leap maps to the earliest
// matching instant; one erased by a deleted leap maps to the adjacent
// second. ToPosix(FromPosix(t)) always restores t.
func (z *Zone) FromPosix(t int64) (int64, error) {
	z.check()
	corr, _ := leapCorrection(z.leaps, t)
	x, ok := overflow.Add(t, int64(corr))
	if !ok {
		return 0, civil.ErrRange
	}
	y, ok := z.posixOf(x)
	if !ok {
		return 0, civil.ErrRange
	}
	// Walk x until its POSIX reading meets t, then back off the
	// overshoot a deleted second leaves behind.
	switch {
	case y < t:
		for y < t {
			x++
			if y, ok = z.posixOf(x); !ok {
				return 0, civil.ErrRange
			}
		}
		x -= y - t
	case y > t:
		for y > t {
			x--
			if y, ok = z.posixOf(x); !ok {
				return 0, civil.ErrRange
			}
		}
		x += t - y
	}
	return x, nil
}

func (z *Zone) posixOf(x int64) (int64, bool) {
	corr, _ := leapCorrection(z.leaps, x)
	return overflow.Sub(x, int64(corr))
}
