// Package tzdb locates raw TZif blobs by zone name. It provides the
// Source implementations that package zone resolves Olson names through:
// a zoneinfo directory, an in-memory map, a zip archive, and the
// conventional system locations.
package tzdb

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound reports that a source has no data for the requested name.
var ErrNotFound = errors.New("zone not found")

// Source supplies raw TZif blobs by zone name, for example
// "Europe/Berlin". Implementations must be safe for concurrent use.
type Source interface {
	Lookup(name string) ([]byte, error)
}

// Dir serves blobs from a zoneinfo directory tree such as
// /usr/share/zoneinfo.
type Dir string

func (d Dir) Lookup(name string) ([]byte, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	b, err := os.ReadFile(filepath.Join(string(d), filepath.FromSlash(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Map serves blobs from memory, keyed by name.
type Map map[string][]byte

func (m Map) Lookup(name string) ([]byte, error) {
	b, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return b, nil
}

// Zip serves blobs from a zip archive laid out like the Go toolchain's
// lib/time/zoneinfo.zip, with one file per zone name.
type Zip string

func (z Zip) Lookup(name string) ([]byte, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	r, err := zip.OpenReader(string(z))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	f, err := r.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Multi tries each source in order and returns the first hit.
type Multi []Source

func (m Multi) Lookup(name string) ([]byte, error) {
	for _, src := range m {
		b, err := src.Lookup(name)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// System returns a source covering the conventional Unix zoneinfo
// directories, in the same order the Go standard library consults them.
func System() Source {
	return Multi{
		Dir("/usr/share/zoneinfo"),
		Dir("/usr/share/lib/zoneinfo"),
		Dir("/usr/lib/locale/TZ"),
		Dir("/etc/zoneinfo"),
	}
}

// validName rejects empty names, absolute paths and names with relative
// elements, which could otherwise escape the database root.
func validName(name string) bool {
	if name == "" || name[0] == '/' {
		return false
	}
	for _, el := range strings.Split(name, "/") {
		if el == "" || el == "." || el == ".." {
			return false
		}
	}
	return true
}
