// ABOUTME: Time-windowed dedup gate keyed by content fingerprint, with lazy expiry sweeps
// ABOUTME: Processed is the never-expiring id set owned by the poll loop

package dedup

import (
	"sync"
	"time"
)

// DefaultWindow is how long a fingerprint suppresses repeats.
const DefaultWindow = 5 * time.Second

// Gate suppresses content seen within Window. Safe for concurrent use.
type Gate struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock injects the time source used by IsDuplicate.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// NewGate creates a gate. A non-positive window uses DefaultWindow.
func NewGate(window time.Duration, opts ...Option) *Gate {
	if window <= 0 {
		window = DefaultWindow
	}
	g := &Gate{
		window: window,
		now:    time.Now,
		seen:   make(map[string]time.Time),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Window returns the configured suppression window.
func (g *Gate) Window() time.Duration { return g.window }

// IsDuplicate reports whether fp was recorded within the window, using the
// gate's clock.
func (g *Gate) IsDuplicate(fp string) bool {
	return g.Seen(fp, g.now())
}

// Seen is IsDuplicate at an explicit instant. Non-duplicates are recorded at
// at; duplicates leave the table untouched so a steady stream of repeats
// cannot extend the window indefinitely.
func (g *Gate) Seen(fp string, at time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.sweep(at)

	if last, ok := g.seen[fp]; ok && at.Sub(last) < g.window {
		return true
	}
	g.seen[fp] = at
	return false
}

// Forget drops fp so the next check for it is not a duplicate. The loop uses
// it when a record could not be persisted and must be retried.
func (g *Gate) Forget(fp string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, fp)
}

// Len returns the number of live fingerprints.
func (g *Gate) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}

// sweep drops entries older than the window. Caller holds g.mu.
func (g *Gate) sweep(at time.Time) {
	for fp, last := range g.seen {
		if at.Sub(last) >= g.window {
			delete(g.seen, fp)
		}
	}
}

// Processed is a set of record ids that never expire.
type Processed struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewProcessed returns a set seeded with ids.
func NewProcessed(ids ...string) *Processed {
	p := &Processed{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id != "" {
			p.ids[id] = struct{}{}
		}
	}
	return p
}

// Has reports whether id was marked.
func (p *Processed) Has(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.ids[id]
	return ok
}

// Mark adds id to the set.
func (p *Processed) Mark(id string) {
	if id == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids[id] = struct{}{}
}

// Len returns the set size.
func (p *Processed) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.ids)
}
