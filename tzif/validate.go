package tzif

import (
	"bytes"
	"errors"
	"fmt"
	"math"
)

// Validate checks the structural requirements of RFC8536 that Decode
// alone does not enforce.  All reported problems are joined into a single
// error wrapping ErrMalformed.
func Validate(f File) error {
	var errs []error
	if !f.Version.defined() {
		errs = append(errs, fmt.Errorf("undefined version: %v", f.Version))
	}

	errs = append(errs, validateBlock("v1", f.V1, f.Version)...)

	if f.Version > V1 {
		errs = append(errs, validateBlock("v2", f.V2, f.Version)...)
		if i := bytes.IndexByte(f.Footer.TZString, 0); i >= 0 {
			errs = append(errs, fmt.Errorf("invalid footer: TZ string contains NUL octet at index %d", i))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return nil
}

func validateBlock(label string, b DataBlock, v Version) []error {
	var errs []error

	typecnt := len(b.LocalTimeTypes)
	charcnt := len(b.Designations)

	// Isutcnt
	if n := len(b.UTLocalIndicators); n != 0 && n != typecnt {
		errs = append(errs, fmt.Errorf("invalid %s isutcnt (%d): must be 0 or equal to typecnt (%d)", label, n, typecnt))
	}

	// Isstdcnt
	if n := len(b.StandardWallIndicators); n != 0 && n != typecnt {
		errs = append(errs, fmt.Errorf("invalid %s isstdcnt (%d): must be 0 or equal to typecnt (%d)", label, n, typecnt))
	}
	for i, ut := range b.UTLocalIndicators {
		if ut && i < len(b.StandardWallIndicators) && !b.StandardWallIndicators[i] {
			errs = append(errs, fmt.Errorf("invalid %s indicators: UT/local indicator %d set without standard/wall indicator", label, i))
		}
	}

	// Timecnt
	if times, types := len(b.TransitionTimes), len(b.TransitionTypes); times != types {
		errs = append(errs, fmt.Errorf("inconsistent %s transitions: transition times = %d, transition types = %d", label, times, types))
	}
	for i := 1; i < len(b.TransitionTimes); i++ {
		if b.TransitionTimes[i] <= b.TransitionTimes[i-1] {
			errs = append(errs, fmt.Errorf("invalid %s transition times: not strictly ascending at index %d", label, i))
			break
		}
	}
	for i, t := range b.TransitionTypes {
		if int(t) >= typecnt {
			errs = append(errs, fmt.Errorf("invalid %s transition type at index %d: %d out of range [0, %d)", label, i, t, typecnt))
			break
		}
	}

	// Typecnt
	if typecnt == 0 {
		errs = append(errs, fmt.Errorf("invalid %s typecnt: must not be zero", label))
	}
	for i, t := range b.LocalTimeTypes {
		if t.Utoff == math.MinInt32 {
			errs = append(errs, fmt.Errorf("invalid %s local time type record %d: utoff must not be -2**31", label, i))
		}
		if int(t.Idx) >= charcnt {
			errs = append(errs, fmt.Errorf("invalid %s local time type record %d: designation index %d out of range [0, %d)", label, i, t.Idx, charcnt))
		}
	}

	// Charcnt
	if charcnt == 0 {
		errs = append(errs, fmt.Errorf("invalid %s charcnt: must not be zero", label))
	} else if b.Designations[charcnt-1] != 0 {
		errs = append(errs, fmt.Errorf("invalid %s time zone designations: missing null terminator", label))
	}

	// Leapcnt
	errs = append(errs, validateLeapSeconds(label, b.LeapSecondRecords, v)...)

	return errs
}

func validateLeapSeconds(label string, recs []LeapSecondRecord, v Version) []error {
	var errs []error
	for i, r := range recs {
		if i == 0 {
			if r.Occur < 0 {
				errs = append(errs, fmt.Errorf("invalid %s leap second record 0: occurrence %d is negative", label, r.Occur))
			}
			// V4 permits any initial correction to represent a
			// truncated table.
			if v < V4 && r.Corr != 1 && r.Corr != -1 {
				errs = append(errs, fmt.Errorf("invalid %s leap second record 0: correction %d must be 1 or -1", label, r.Corr))
			}
			continue
		}
		prev := recs[i-1]
		if r.Occur <= prev.Occur {
			errs = append(errs, fmt.Errorf("invalid %s leap second record %d: occurrences not strictly ascending", label, i))
		}
		diff := r.Corr - prev.Corr
		if diff != 1 && diff != -1 {
			// V4 allows the final record to repeat the previous
			// correction, marking the expiration of the table.
			if !(v >= V4 && i == len(recs)-1 && diff == 0) {
				errs = append(errs, fmt.Errorf("invalid %s leap second record %d: correction %d does not differ from %d by one", label, i, r.Corr, prev.Corr))
			}
		}
	}
	return errs
}
