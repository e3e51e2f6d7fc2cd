package commands

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlieder/go-localtime/leapsec"
)

func TestLeap_Fetch(t *testing.T) {
	const list = "#$\t3676924800\n#@\t6311433600\n2272060800\t10\n2287785600\t11\n"
	orig := fetchList
	t.Cleanup(func() { fetchList = orig })
	var gotETag string
	fetchList = func(_ context.Context, etag string) (*leapsec.List, string, error) {
		gotETag = etag
		l, err := leapsec.Parse(strings.NewReader(list))
		return l, `"1"`, err
	}

	app := MakeApp()
	var buf bytes.Buffer
	app.Writer = &buf
	app.ErrWriter = &buf
	err := app.Run(context.Background(), []string{"tzq", "leap", "--fetch"})
	require.NoError(t, err)
	assert.Empty(t, gotETag)
	assert.Contains(t, buf.String(), "Baseline: TAI-UTC = 10s")
	assert.Contains(t, buf.String(), "Sat Jul  1 00:00:00 1972 UTC  corr=+1")
}

func TestLeap_FetchError(t *testing.T) {
	orig := fetchList
	t.Cleanup(func() { fetchList = orig })
	fetchList = func(context.Context, string) (*leapsec.List, string, error) {
		return nil, "", errors.New("GET: connection refused")
	}

	app := MakeApp()
	var buf bytes.Buffer
	app.Writer = &buf
	app.ErrWriter = &buf
	err := app.Run(context.Background(), []string{"tzq", "leap", "--fetch"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
