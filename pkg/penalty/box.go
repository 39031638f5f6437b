package penalty

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const DefaultCleanupInterval = time.Minute

// Config sets the ban policy.
type Config struct {
	Threshold int
	Window    time.Duration
	BanFor    time.Duration
}

func (c Config) enabled() bool {
	return c.Threshold > 0 && c.Window > 0 && c.BanFor > 0
}

type entry struct {
	count      int
	windowFrom time.Time
	bannedTill time.Time
}

// Box tracks strikes and bans. Safe for concurrent use.
type Box struct {
	mu      sync.Mutex
	entries map[string]*entry
	cfg     Config

	cleanupInterval time.Duration
	log             *slog.Logger
	now             func() time.Time

	bans atomic.Int64
}

// Stats is a snapshot for observability.
type Stats struct {
	Tracked   int
	Banned    int
	TotalBans int64
}

type Option func(*Box)

// WithCleanupInterval sets how often Run prunes stale entries.
func WithCleanupInterval(d time.Duration) Option {
	return func(b *Box) {
		if d > 0 {
			b.cleanupInterval = d
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(b *Box) {
		if log != nil {
			b.log = log
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Box) {
		if now != nil {
			b.now = now
		}
	}
}

func New(cfg Config, opts ...Option) *Box {
	b := &Box{
		entries:         make(map[string]*entry),
		cfg:             cfg,
		cleanupInterval: DefaultCleanupInterval,
		log:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Enabled reports whether the box can ban anything.
func (b *Box) Enabled() bool {
	return b != nil && b.cfg.enabled()
}

// Banned reports whether key is banned and until when.
func (b *Box) Banned(key string) (bool, time.Time) {
	if !b.Enabled() {
		return false, time.Time{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.entries[key]
	if e == nil || !b.now().Before(e.bannedTill) {
		return false, time.Time{}
	}
	return true, e.bannedTill
}

// Strike counts one offence against key. It reports whether key is banned
// afterwards, which includes keys that were already banned.
func (b *Box) Strike(key string) (bool, time.Time) {
	if !b.Enabled() {
		return false, time.Time{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	e := b.entries[key]
	if e == nil {
		e = &entry{windowFrom: now}
		b.entries[key] = e
	}
	if now.Before(e.bannedTill) {
		return true, e.bannedTill
	}
	if now.Sub(e.windowFrom) > b.cfg.Window {
		e.windowFrom = now
		e.count = 0
	}

	e.count++
	if e.count < b.cfg.Threshold {
		return false, time.Time{}
	}
	e.bannedTill = now.Add(b.cfg.BanFor)
	e.count = 0
	e.windowFrom = now
	b.bans.Add(1)
	return true, e.bannedTill
}

// Pardon lifts any ban on key and forgets its strikes.
func (b *Box) Pardon(key string) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, key)
}

// Cleanup drops entries that are neither banned nor inside a recent window.
// It returns the number removed.
func (b *Box) Cleanup() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	removed := 0
	for k, e := range b.entries {
		if !now.Before(e.bannedTill) && now.Sub(e.windowFrom) > 2*b.cfg.Window {
			delete(b.entries, k)
			removed++
		}
	}
	return removed
}

func (b *Box) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	s := Stats{Tracked: len(b.entries), TotalBans: b.bans.Load()}
	for _, e := range b.entries {
		if now.Before(e.bannedTill) {
			s.Banned++
		}
	}
	return s
}

// Run returns a function for errgroup.Go that prunes the box every cleanup
// interval until ctx is done. Cancellation is not an error.
func (b *Box) Run(ctx context.Context) func() error {
	return func() error {
		if !b.Enabled() {
			<-ctx.Done()
			return nil
		}
		ticker := time.NewTicker(b.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if n := b.Cleanup(); n > 0 {
					b.log.DebugContext(ctx, "penalty entries pruned", slog.Int("removed", n))
				}
			}
		}
	}
}
