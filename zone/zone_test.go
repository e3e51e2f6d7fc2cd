package zone_test

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlieder/go-localtime/civil"
	"github.com/mlieder/go-localtime/tzdb"
	"github.com/mlieder/go-localtime/tzif"
	"github.com/mlieder/go-localtime/zone"
)

func encode(t *testing.T, f tzif.File) []byte {
	t.Helper()
	data, err := f.AppendTo(nil)
	require.NoError(t, err)
	return data
}

// pacific is a 1972-1976 extract of America/Los_Angeles: the last of the
// fixed-date years, the energy-crisis winters of 1974 and 1975, and the
// last-Sunday rule the era settled on.
func pacific() tzif.DataBlock {
	return tzif.DataBlock{
		TransitionTimes: []int64{
			73476000, 89197200, 104925600, 120646800, 126698400,
			152096400, 162381600, 183546000, 199274400, 215600400,
		},
		TransitionTypes: []uint8{1, 0, 1, 0, 1, 0, 1, 0, 1, 0},
		LocalTimeTypes: []tzif.LocalTimeType{
			{Utoff: -28800, Dst: false, Idx: 0},
			{Utoff: -25200, Dst: true, Idx: 4},
		},
		Designations: []byte("PST\x00PDT\x00"),
	}
}

func losAngeles(t *testing.T) []byte {
	t.Helper()
	b := pacific()
	return encode(t, tzif.File{
		Version: tzif.V2,
		V1:      b,
		V2:      b,
		Footer:  tzif.Footer{TZString: []byte("PST8PDT,M4.5.0,M10.5.0")},
	})
}

// eastern is the matching America/New_York extract.
func eastern(t *testing.T) []byte {
	t.Helper()
	b := tzif.DataBlock{
		TransitionTimes: []int64{126687600, 152085600, 162370800, 183535200},
		TransitionTypes: []uint8{1, 0, 1, 0},
		LocalTimeTypes: []tzif.LocalTimeType{
			{Utoff: -18000, Dst: false, Idx: 0},
			{Utoff: -14400, Dst: true, Idx: 4},
		},
		Designations: []byte("EST\x00EDT\x00"),
	}
	return encode(t, tzif.File{
		Version: tzif.V2,
		V1:      b,
		V2:      b,
		Footer:  tzif.Footer{TZString: []byte("EST5EDT,M4.5.0,M10.5.0")},
	})
}

// rightUTC is a leap-aware UTC zone carrying the IERS table through the
// end of 2016. Occurrences are on the zone's own scale, so each counts
// the seconds inserted before it.
func rightUTC(t *testing.T) []byte {
	t.Helper()
	b := tzif.DataBlock{
		LocalTimeTypes: []tzif.LocalTimeType{{Utoff: 0, Dst: false, Idx: 0}},
		Designations:   []byte("UTC\x00"),
		LeapSecondRecords: []tzif.LeapSecondRecord{
			{Occur: 78796800, Corr: 1}, {Occur: 94694401, Corr: 2},
			{Occur: 126230402, Corr: 3}, {Occur: 157766403, Corr: 4},
			{Occur: 189302404, Corr: 5}, {Occur: 220924805, Corr: 6},
			{Occur: 252460806, Corr: 7}, {Occur: 283996807, Corr: 8},
			{Occur: 315532808, Corr: 9}, {Occur: 362793609, Corr: 10},
			{Occur: 394329610, Corr: 11}, {Occur: 425865611, Corr: 12},
			{Occur: 489024012, Corr: 13}, {Occur: 567993613, Corr: 14},
			{Occur: 631152014, Corr: 15}, {Occur: 662688015, Corr: 16},
			{Occur: 709948816, Corr: 17}, {Occur: 741484817, Corr: 18},
			{Occur: 773020818, Corr: 19}, {Occur: 820454419, Corr: 20},
			{Occur: 867715220, Corr: 21}, {Occur: 915148821, Corr: 22},
			{Occur: 1136073622, Corr: 23}, {Occur: 1230768023, Corr: 24},
			{Occur: 1341100824, Corr: 25}, {Occur: 1435708825, Corr: 26},
			{Occur: 1483228826, Corr: 27},
		},
	}
	return encode(t, tzif.File{
		Version: tzif.V2,
		V1:      b,
		V2:      b,
		Footer:  tzif.Footer{TZString: []byte("UTC0")},
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	z, err := zone.New("America/Los_Angeles", losAngeles(t))
	require.NoError(t, err)

	assert.Equal(t, "America/Los_Angeles", z.Name())
	assert.False(t, z.LeapAware())

	rows := z.Transitions()
	require.Len(t, rows, 10)
	assert.Equal(t, zone.Transition{At: 73476000, Offset: -25200, IsDST: true, Abbr: "PDT"}, rows[0])
	assert.Equal(t, zone.Transition{At: 215600400, Offset: -28800, IsDST: false, Abbr: "PST"}, rows[9])

	rule, ok := z.Rule()
	require.True(t, ok)
	assert.Equal(t, "PST", rule.Std)
	assert.Equal(t, "PDT", rule.Dst)
	assert.EqualValues(t, -28800, rule.StdOffset)
}

func TestNew_Malformed(t *testing.T) {
	t.Parallel()

	unsorted := pacific()
	unsorted.TransitionTimes[3] = unsorted.TransitionTimes[2]

	badFooter := pacific()

	cases := []struct {
		name string
		data []byte
	}{
		{"not tzif data", []byte("this is not a zoneinfo file")},
		{"truncated", losAngeles(t)[:60]},
		{"unsorted transitions", encode(t, tzif.File{
			Version: tzif.V2,
			V1:      unsorted,
			V2:      unsorted,
			Footer:  tzif.Footer{TZString: []byte("PST8PDT,M4.5.0,M10.5.0")},
		})},
		{"unparseable footer", encode(t, tzif.File{
			Version: tzif.V2,
			V1:      badFooter,
			V2:      badFooter,
			Footer:  tzif.Footer{TZString: []byte("not a rule!")},
		})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := zone.New("x", tc.data)
			assert.ErrorIs(t, err, zone.ErrMalformedZoneData)
		})
	}
}

func TestNew_FooterDisagreement(t *testing.T) {
	t.Parallel()

	// The table's last row enters standard time on 1976-10-31, but under
	// the modern US rule that date is still daylight saving time.
	b := pacific()
	_, err := zone.New("x", encode(t, tzif.File{
		Version: tzif.V2,
		V1:      b,
		V2:      b,
		Footer:  tzif.Footer{TZString: []byte("PST8PDT,M3.2.0,M11.1.0")},
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, zone.ErrMalformedZoneData)
	assert.ErrorContains(t, err, "disagrees")
}

type failSource struct{ err error }

func (s failSource) Lookup(string) ([]byte, error) { return nil, s.err }

func TestLoad(t *testing.T) {
	t.Parallel()

	src := tzdb.Map{"America/Los_Angeles": losAngeles(t)}

	t.Run("empty name is UTC", func(t *testing.T) {
		t.Parallel()
		z, err := zone.Load("", src)
		require.NoError(t, err)
		assert.Equal(t, "UTC", z.Name())
	})

	t.Run("UTC skips the source", func(t *testing.T) {
		t.Parallel()
		z, err := zone.Load("UTC", failSource{fs.ErrPermission})
		require.NoError(t, err)
		assert.Equal(t, "UTC", z.Name())
	})

	t.Run("known name", func(t *testing.T) {
		t.Parallel()
		z, err := zone.Load("America/Los_Angeles", src)
		require.NoError(t, err)
		assert.Equal(t, "America/Los_Angeles", z.Name())
		assert.Len(t, z.Transitions(), 10)
	})

	t.Run("unknown name", func(t *testing.T) {
		t.Parallel()
		_, err := zone.Load("Atlantis/Lost_City", src)
		assert.ErrorIs(t, err, zone.ErrUnknownZone)
	})

	t.Run("posix rule as name", func(t *testing.T) {
		t.Parallel()
		z, err := zone.Load("EST5EDT,M3.2.0,M11.1.0", src)
		require.NoError(t, err)
		assert.Equal(t, "EST5EDT,M3.2.0,M11.1.0", z.Name())

		got, err := z.ToCivil(127810800) // 1974-01-19, standard time under the modern rule
		require.NoError(t, err)
		assert.Equal(t, 2, got.Hour)
		assert.Equal(t, "EST", got.Zone)

		got, err = z.ToCivil(1909422000) // 2030-07-04
		require.NoError(t, err)
		assert.Equal(t, 15, got.Hour)
		assert.Equal(t, "EDT", got.Zone)
	})

	t.Run("source failure", func(t *testing.T) {
		t.Parallel()
		_, err := zone.Load("America/Los_Angeles", failSource{fs.ErrPermission})
		require.Error(t, err)
		assert.ErrorIs(t, err, fs.ErrPermission)
		assert.NotErrorIs(t, err, zone.ErrUnknownZone)
	})
}

func TestFixed(t *testing.T) {
	t.Parallel()

	z := zone.Fixed("UTC+1", 3600)
	assert.False(t, z.LeapAware())

	got, err := z.ToCivil(0)
	require.NoError(t, err)
	assert.Equal(t, civil.Time{Hour: 1, Day: 1, Year: 70, Weekday: 4, Offset: 3600, Zone: "UTC+1"}, got)

	back, err := z.FromCivil(got)
	require.NoError(t, err)
	assert.Zero(t, back)
}

func TestClose(t *testing.T) {
	t.Parallel()

	z, err := zone.New("America/Los_Angeles", losAngeles(t))
	require.NoError(t, err)
	_, err = z.ToCivil(0)
	require.NoError(t, err)

	require.NoError(t, z.Close())
	assert.ErrorIs(t, z.Close(), zone.ErrClosed)

	// The name survives, conversions do not.
	assert.Equal(t, "America/Los_Angeles", z.Name())
	assert.PanicsWithValue(t, "zone: use of closed Zone", func() { _, _ = z.ToCivil(0) })
	assert.PanicsWithValue(t, "zone: use of closed Zone", func() { _, _ = z.FromCivil(civil.Time{}) })
	assert.PanicsWithValue(t, "zone: use of closed Zone", func() { _, _ = z.FromPosix(0) })
}
