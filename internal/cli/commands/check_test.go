package commands_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlieder/go-localtime/tzif"
)

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good", losAngelesData(t))

	out, err := run(t, "check", filepath.Join(dir, "good"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+filepath.Join(dir, "good"))
}

func TestCheck_ReportsFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good", losAngelesData(t))
	writeFile(t, dir, "truncated", losAngelesData(t)[:60])

	// A transition type index past the type count must be caught by
	// validation, never read out of bounds.
	b := losAngelesBlock()
	b.TransitionTypes[0] = 7
	writeFile(t, dir, "badindex", encode(t, tzif.File{
		Version: tzif.V2,
		V1:      b,
		V2:      b,
		Footer:  tzif.Footer{TZString: []byte("PST8PDT,M4.5.0,M10.5.0")},
	}))

	out, err := run(t, "check",
		filepath.Join(dir, "good"),
		filepath.Join(dir, "truncated"),
		filepath.Join(dir, "badindex"),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 files failed validation")
	assert.Contains(t, out, "✓ "+filepath.Join(dir, "good"))
	assert.Contains(t, out, "Failed "+filepath.Join(dir, "truncated"))
	assert.Contains(t, out, "Failed "+filepath.Join(dir, "badindex"))
	assert.Contains(t, out, "transition type")
}

func TestCheck_MissingFile(t *testing.T) {
	out, err := run(t, "check", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, out, "Failed")
}

func TestCheck_Usage(t *testing.T) {
	_, err := run(t, "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage: tzq check")
}
