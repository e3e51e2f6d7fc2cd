package zone_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlieder/go-localtime/civil"
	"github.com/mlieder/go-localtime/zone"
)

// 1974-01-19 07:00:00 UT, deep inside the energy-crisis winter when the
// United States ran daylight saving time year round.
const winter74 = int64(127810800)

func TestToCivil(t *testing.T) {
	t.Parallel()

	la, err := zone.New("America/Los_Angeles", losAngeles(t))
	require.NoError(t, err)
	ny, err := zone.New("America/New_York", eastern(t))
	require.NoError(t, err)

	got, err := la.ToCivil(winter74)
	require.NoError(t, err)
	assert.Equal(t, civil.Time{
		Day: 19, Year: 74, Weekday: 6, Yday: 18,
		IsDST: 1, Offset: -25200, Zone: "PDT",
	}, got)

	back, err := la.FromCivil(got)
	require.NoError(t, err)
	assert.Equal(t, winter74, back)

	got, err = ny.ToCivil(winter74)
	require.NoError(t, err)
	assert.Equal(t, civil.Time{
		Hour: 3, Day: 19, Year: 74, Weekday: 6, Yday: 18,
		IsDST: 1, Offset: -14400, Zone: "EDT",
	}, got)
}

func TestToCivil_Eras(t *testing.T) {
	t.Parallel()

	la, err := zone.New("America/Los_Angeles", losAngeles(t))
	require.NoError(t, err)

	cases := []struct {
		name string
		t    int64
		hour int
		zone string
	}{
		{"before the first transition", 0, 16, "PST"},
		{"mid era", 100000000, 1, "PST"},
		{"exactly on a transition", 126698400, 3, "PDT"},
		{"last table row onward", 215600400, 1, "PST"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := la.ToCivil(tc.t)
			require.NoError(t, err)
			assert.Equal(t, tc.hour, got.Hour)
			assert.Equal(t, tc.zone, got.Zone)
		})
	}
}

func TestToCivil_ExtendRule(t *testing.T) {
	t.Parallel()

	la, err := zone.New("America/Los_Angeles", losAngeles(t))
	require.NoError(t, err)

	// Well past the table, the footer rule "PST8PDT,M4.5.0,M10.5.0"
	// governs. In 2030 the clocks move on April 28 and October 27.
	cases := []struct {
		t    int64
		hour int
		min  int
		sec  int
		zone string
	}{
		{1903600799, 1, 59, 59, "PST"},
		{1903600800, 3, 0, 0, "PDT"},
		{1919321999, 1, 59, 59, "PDT"},
		{1919322000, 1, 0, 0, "PST"},
		{1909422000, 12, 0, 0, "PDT"},
		{1926230400, 0, 0, 0, "PST"},
	}
	for _, tc := range cases {
		got, err := la.ToCivil(tc.t)
		require.NoError(t, err)
		assert.Equal(t, tc.hour, got.Hour, "t=%d", tc.t)
		assert.Equal(t, tc.min, got.Min, "t=%d", tc.t)
		assert.Equal(t, tc.sec, got.Sec, "t=%d", tc.t)
		assert.Equal(t, tc.zone, got.Zone, "t=%d", tc.t)
	}

	back, err := la.FromCivil(civil.Time{Hour: 12, Day: 4, Month: 6, Year: 130, IsDST: -1})
	require.NoError(t, err)
	assert.Equal(t, int64(1909422000), back)
}

func TestFromCivil_Normalizes(t *testing.T) {
	t.Parallel()

	la, err := zone.New("America/Los_Angeles", losAngeles(t))
	require.NoError(t, err)

	// 26:00 on New Year's Eve 1976 is 02:00 on New Year's Day 1977.
	got, err := la.FromCivil(civil.Time{Hour: 26, Day: 31, Month: 11, Year: 76})
	require.NoError(t, err)
	assert.Equal(t, int64(220960800), got)
}

func TestFromCivil_HintOnUnambiguousTime(t *testing.T) {
	t.Parallel()

	la, err := zone.New("America/Los_Angeles", losAngeles(t))
	require.NoError(t, err)

	// Mid-January exists exactly once; a daylight saving hint does not
	// turn it into an error or shift the result.
	got, err := la.FromCivil(civil.Time{Day: 15, Year: 131, IsDST: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1926230400), got)
}

func TestFromCivil_Fold(t *testing.T) {
	t.Parallel()

	la, err := zone.New("America/Los_Angeles", losAngeles(t))
	require.NoError(t, err)

	// 01:30 on 1976-10-31 happened twice: once in PDT, once an hour
	// later in PST.
	base := civil.Time{Min: 30, Hour: 1, Day: 31, Month: 9, Year: 76}
	cases := []struct {
		isdst int
		want  int64
	}{
		{isdst: 1, want: 215598600},
		{isdst: 0, want: 215602200},
		{isdst: -1, want: 215598600},
	}
	for _, tc := range cases {
		ct := base
		ct.IsDST = tc.isdst
		got, err := la.FromCivil(ct)
		assert.ErrorIs(t, err, zone.ErrAmbiguousTime, "isdst=%d", tc.isdst)
		assert.Equal(t, tc.want, got, "isdst=%d", tc.isdst)
	}
}

func TestFromCivil_Gap(t *testing.T) {
	t.Parallel()

	la, err := zone.New("America/Los_Angeles", losAngeles(t))
	require.NoError(t, err)

	// 02:30 on 1976-04-25 never happened; the clocks jumped from 02:00
	// PST to 03:00 PDT.
	base := civil.Time{Min: 30, Hour: 2, Day: 25, Month: 3, Year: 76}
	cases := []struct {
		isdst int
		want  int64
	}{
		{isdst: 1, want: 199272600},
		{isdst: 0, want: 199276200},
		{isdst: -1, want: 199276200},
	}
	for _, tc := range cases {
		ct := base
		ct.IsDST = tc.isdst
		got, err := la.FromCivil(ct)
		assert.ErrorIs(t, err, zone.ErrAmbiguousTime, "isdst=%d", tc.isdst)
		assert.Equal(t, tc.want, got, "isdst=%d", tc.isdst)
	}

	// The default resolution slides the wall clock across the change:
	// half past two comes back reading half past three.
	got, err := la.FromCivil(base)
	assert.ErrorIs(t, err, zone.ErrAmbiguousTime)
	civ, err := la.ToCivil(got)
	require.NoError(t, err)
	assert.Equal(t, 3, civ.Hour)
	assert.Equal(t, 30, civ.Min)
	assert.Equal(t, "PDT", civ.Zone)
}

func TestUTCHelpers(t *testing.T) {
	t.Parallel()

	got, err := zone.ToUTC(winter74)
	require.NoError(t, err)
	assert.Equal(t, civil.Time{Hour: 7, Day: 19, Year: 74, Weekday: 6, Yday: 18, Zone: "UTC"}, got)

	// Only the calendar fields count on the way back; offset and
	// designation of the source zone are ignored.
	back, err := zone.FromUTC(civil.Time{
		Day: 19, Year: 74, Weekday: 6, Yday: 18,
		IsDST: 1, Offset: -25200, Zone: "PDT",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(127785600), back)
}

func TestLeapSecond_ToCivil(t *testing.T) {
	t.Parallel()

	right, err := zone.New("right/UTC", rightUTC(t))
	require.NoError(t, err)
	assert.True(t, right.LeapAware())

	// Thirteen seconds separate this zone's scale from the POSIX one by
	// the end of 1986.
	got, err := right.ToCivil(536457612)
	require.NoError(t, err)
	assert.Equal(t, civil.Time{
		Sec: 59, Min: 59, Hour: 23, Day: 31, Month: 11, Year: 86,
		Weekday: 3, Yday: 364, Zone: "UTC",
	}, got)

	// The instant of an inserted second reads 23:59:60.
	got, err = right.ToCivil(567993613)
	require.NoError(t, err)
	assert.Equal(t, civil.Time{
		Sec: 60, Min: 59, Hour: 23, Day: 31, Month: 11, Year: 87,
		Weekday: 4, Yday: 364, Zone: "UTC",
	}, got)

	got, err = right.ToCivil(567993614)
	require.NoError(t, err)
	assert.Equal(t, civil.Time{Day: 1, Year: 88, Weekday: 5, Zone: "UTC"}, got)
}

func TestLeapSecond_FromCivil(t *testing.T) {
	t.Parallel()

	right, err := zone.New("right/UTC", rightUTC(t))
	require.NoError(t, err)

	got, err := right.FromCivil(civil.Time{Sec: 60, Min: 59, Hour: 23, Day: 31, Month: 11, Year: 87})
	require.NoError(t, err)
	assert.Equal(t, int64(567993613), got)

	got, err = right.FromCivil(civil.Time{Day: 1, Year: 88})
	require.NoError(t, err)
	assert.Equal(t, int64(567993614), got)
}

func TestPosixScale(t *testing.T) {
	t.Parallel()

	right, err := zone.New("right/UTC", rightUTC(t))
	require.NoError(t, err)

	got, err := right.FromPosix(536457599)
	require.NoError(t, err)
	assert.Equal(t, int64(536457612), got)

	back, err := right.ToPosix(got)
	require.NoError(t, err)
	assert.Equal(t, int64(536457599), back)

	// Around the first inserted second.
	cases := []struct{ posix, scale int64 }{
		{78796799, 78796799},
		{78796800, 78796801},
		{78796801, 78796802},
	}
	for _, tc := range cases {
		got, err := right.FromPosix(tc.posix)
		require.NoError(t, err)
		assert.Equal(t, tc.scale, got, "posix=%d", tc.posix)
	}

	// The inserted second itself has no POSIX name of its own, so it
	// shares one with its predecessor.
	back, err = right.ToPosix(78796800)
	require.NoError(t, err)
	assert.Equal(t, int64(78796799), back)

	for _, tt := range []int64{0, 63072000, 78796798, 78796799, 78796800, 536457599, 915148799, 1483228799, 2000000000} {
		scale, err := right.FromPosix(tt)
		require.NoError(t, err)
		back, err := right.ToPosix(scale)
		require.NoError(t, err)
		assert.Equal(t, tt, back, "t=%d", tt)
	}
}

func TestPosixScale_PlainZone(t *testing.T) {
	t.Parallel()

	la, err := zone.New("America/Los_Angeles", losAngeles(t))
	require.NoError(t, err)

	got, err := la.FromPosix(winter74)
	require.NoError(t, err)
	assert.Equal(t, winter74, got)

	got, err = la.ToPosix(winter74)
	require.NoError(t, err)
	assert.Equal(t, winter74, got)
}
