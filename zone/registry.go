package zone

import (
	"os"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/mlieder/go-localtime/civil"
	"github.com/mlieder/go-localtime/tzdb"
)

// Registry tracks the ambient zone of the process, the one named by the
// TZ environment variable. The zero value is ready to use: the first
// conversion resolves TZ once, and afterwards only Resync re-reads it.
// Conversions running while a Resync swaps the zone keep the handle they
// started with; replaced handles are never closed by the registry.
type Registry struct {
	// LookupEnv reads an environment variable. nil means os.LookupEnv.
	LookupEnv func(key string) (string, bool)

	// Source resolves zone names to TZif data. nil means the system
	// zoneinfo directories.
	Source tzdb.Source

	mu    sync.Mutex
	cur   *Zone
	gen   uint64
	group singleflight.Group
}

// Resync re-reads TZ and swaps the ambient zone. An unset, empty or
// unresolvable TZ falls back to UTC; Resync never fails. Concurrent
// calls coalesce into a single resolution.
func (r *Registry) Resync() {
	r.group.Do("resync", func() (any, error) {
		z := r.resolve()
		r.mu.Lock()
		r.cur = z
		r.gen++
		r.mu.Unlock()
		return nil, nil
	})
}

func (r *Registry) resolve() *Zone {
	lookup := r.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	name, _ := lookup("TZ")
	z, err := Load(name, r.Source)
	if err != nil {
		return Fixed("UTC", 0)
	}
	return z
}

func (r *Registry) current() *Zone {
	r.mu.Lock()
	z := r.cur
	r.mu.Unlock()
	if z == nil {
		r.Resync()
		r.mu.Lock()
		z = r.cur
		r.mu.Unlock()
	}
	return z
}

// Zone returns the current ambient handle, resolving TZ on first use.
func (r *Registry) Zone() *Zone { return r.current() }

// Generation counts completed resyncs. Callers holding civil results can
// compare generations to detect that the ambient zone changed under
// them.
func (r *Registry) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// ToLocal converts an instant to civil time in the ambient zone, like
// localtime(3).
func (r *Registry) ToLocal(t int64) (civil.Time, error) {
	return r.current().ToCivil(t)
}

// FromLocal converts civil time in the ambient zone to an instant, like
// mktime(3).
func (r *Registry) FromLocal(ct civil.Time) (int64, error) {
	return r.current().FromCivil(ct)
}

// DefaultRegistry backs the package-level ToLocal, FromLocal and Resync.
var DefaultRegistry = &Registry{}

// ToLocal converts an instant to civil time in the zone named by TZ.
func ToLocal(t int64) (civil.Time, error) { return DefaultRegistry.ToLocal(t) }

// FromLocal converts civil time in the zone named by TZ to an instant.
func FromLocal(ct civil.Time) (int64, error) { return DefaultRegistry.FromLocal(ct) }

// Resync makes the package-level conversions pick up a changed TZ.
func Resync() { DefaultRegistry.Resync() }
