// Package leapsec parses and downloads the IERS leap-seconds.list file.
//
// The list is the authoritative record of the TAI-UTC difference. It is
// downloaded from the [IANA data server]. Clients are advised to store
// the [ETags] returned by this package and pass them to subsequent calls
// to avoid downloading the same data multiple times.
//
// [ETags]: https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/ETag
// [IANA data server]: https://www.iana.org/time-zones
package leapsec

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/mlieder/go-localtime/tzif"
)

// ErrBadList is wrapped by every error Parse returns.
var ErrBadList = errors.New("malformed leap seconds list")

// ntpUnixDelta converts the list's NTP timestamps, counted from
// 1900-01-01, to Unix time.
const ntpUnixDelta = 2208988800

// Entry is one data line of the list: from At on, TAI is ahead of UTC by
// TAIMinusUTC seconds.
type Entry struct {
	// At is the Unix time of the midnight at which the difference takes
	// effect.
	At int64
	// TAIMinusUTC is the full TAI-UTC difference, including the ten
	// seconds accumulated before 1972.
	TAIMinusUTC int32
}

// List is a parsed leap-seconds.list.
type List struct {
	// Entries in ascending order of At. The first entry is the baseline
	// difference in effect at the start of 1972, not a leap second of
	// its own.
	Entries []Entry
	// Updated is the Unix time the file was last revised.
	Updated int64
	// Expires is the Unix time after which the file is stale and a fresh
	// copy should be fetched.
	Expires int64
}

// Parse reads a leap-seconds.list. Data lines carry an NTP timestamp and
// the TAI-UTC difference; the special comments "#$" and "#@" carry the
// update and expiry timestamps. All errors wrap ErrBadList.
func Parse(r io.Reader) (*List, error) {
	l, err := parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadList, err)
	}
	return l, nil
}

func parse(r io.Reader) (*List, error) {
	var l List
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		switch {
		case text == "":
			continue
		case strings.HasPrefix(text, "#$"):
			ntp, err := ntpField(text[2:])
			if err != nil {
				return nil, fmt.Errorf("line %d: update timestamp: %w", line, err)
			}
			l.Updated = ntp
		case strings.HasPrefix(text, "#@"):
			ntp, err := ntpField(text[2:])
			if err != nil {
				return nil, fmt.Errorf("line %d: expiry timestamp: %w", line, err)
			}
			l.Expires = ntp
		case strings.HasPrefix(text, "#"):
			continue
		default:
			fields := strings.Fields(text)
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: expected timestamp and offset, got %q", line, text)
			}
			ntp, err := strconv.ParseInt(fields[0], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: timestamp: %w", line, err)
			}
			off, err := strconv.ParseInt(fields[1], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: offset: %w", line, err)
			}
			e := Entry{At: ntp - ntpUnixDelta, TAIMinusUTC: int32(off)}
			if n := len(l.Entries); n > 0 && e.At <= l.Entries[n-1].At {
				return nil, fmt.Errorf("line %d: timestamps not strictly ascending", line)
			}
			l.Entries = append(l.Entries, e)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(l.Entries) == 0 {
		return nil, errors.New("no entries")
	}
	return &l, nil
}

func ntpField(s string) (int64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, errors.New("missing value")
	}
	ntp, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, err
	}
	return ntp - ntpUnixDelta, nil
}

// Expired reports whether the list's expiry has passed at the given Unix
// time. Lists without an expiry line never expire.
func (l *List) Expired(now int64) bool {
	return l.Expires != 0 && now > l.Expires
}

// Records converts the list to TZif leap-second records. Occurrences are
// on the leap-aware time scale, so each one counts the seconds inserted
// before it, and corrections are relative to the baseline difference of
// the first entry.
func (l *List) Records() []tzif.LeapSecondRecord {
	if len(l.Entries) < 2 {
		return nil
	}
	base := l.Entries[0].TAIMinusUTC
	recs := make([]tzif.LeapSecondRecord, 0, len(l.Entries)-1)
	prev := int32(0)
	for _, e := range l.Entries[1:] {
		corr := e.TAIMinusUTC - base
		recs = append(recs, tzif.LeapSecondRecord{Occur: e.At + int64(prev), Corr: corr})
		prev = corr
	}
	return recs
}

// DefaultClient is the client used by the top-level Fetch.
var DefaultClient = &Client{}

// Client downloads the leap seconds list. The zero value is ready to use
// and fetches the copy published by IANA.
type Client struct {
	// HTTPClient is the http.Client used for the download. If HTTPClient
	// is nil, http.DefaultClient is used.
	//
	// This variable is useful to prevent network calls during tests by
	// using an http.Client with a fake http.RoundTripper that returns
	// canned responses. You can also use it to set timeouts, control
	// redirects, etc. However, timeouts are also controlled by the
	// context passed to Fetch.
	HTTPClient *http.Client

	// URL overrides the location of the list. Empty means the IANA copy.
	URL string
}

const defaultURL = "https://data.iana.org/time-zones/data/leap-seconds.list"

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

func (c *Client) url() string {
	if c.URL == "" {
		return defaultURL
	}
	return c.URL
}

// Fetch downloads and parses the leap seconds list using DefaultClient.
//
// If the server responds with a 304 Not Modified status code, the
// returned ETag is the same as the input and the returned List and error
// are both nil. If an error is returned, the returned ETag is empty and
// the returned List is nil.
func Fetch(ctx context.Context, etag string) (*List, string, error) {
	return DefaultClient.Fetch(ctx, etag)
}

// Fetch downloads and parses the leap seconds list.
//
// If the server responds with a 304 Not Modified status code, the
// returned ETag is the same as the input and the returned List and error
// are both nil. If an error is returned, the returned ETag is empty and
// the returned List is nil.
//
// The given context.Context is passed to the http.Request and can be
// used to control cancellation and timeouts.
func (c *Client) Fetch(ctx context.Context, etag string) (*List, string, error) {
	url := c.url()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request for %q: %w", url, err)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("GET %q: %w", url, err)
	}
	defer func() {
		// Drain and close the response body to ensure the connection
		// can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotModified {
			return nil, etag, nil
		}
		return nil, "", fmt.Errorf("response for %q: unexpected status: %s", url, resp.Status)
	}

	l, err := Parse(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return l, resp.Header.Get("etag"), nil
}
