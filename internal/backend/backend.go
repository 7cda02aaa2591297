// Package backend serves random texts from a cached pool, looks up the
// current world time and tracks how long the process has been running.
package backend

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"pkg.jsn.cam/gentexts/internal/archive"
	"pkg.jsn.cam/gentexts/internal/worldtime"
	"pkg.jsn.cam/gentexts/pkg/gentexts"
)

// ErrNoWorldTime is returned when the backend has no world time client
var ErrNoWorldTime = errors.New("world time lookup not configured")

// WorldTimer looks up the current time of a timezone
type WorldTimer interface {
	Fetch(ctx context.Context, zone string) (worldtime.Snapshot, error)
}

// Config holds the backend settings
type Config struct {
	// Seed 0 seeds from the clock
	Seed       uint64
	QuotaBytes int
	Timezone   string
}

// Backend owns the generator and the current text pool. Generator access
// is serialized, so a seeded source can be shared by concurrent callers.
type Backend struct {
	cfg     Config
	clock   WorldTimer
	store   archive.Store
	logger  *zap.Logger
	started time.Time

	mu   sync.Mutex
	gen  *gentexts.Generator
	pick *rand.Rand
	pool *gentexts.TextList
}

// New creates a backend and records its start time. A zero seed is
// replaced by the current time.
func New(cfg Config, clock WorldTimer, store archive.Store, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = archive.NewMemoryStore()
	}
	if cfg.Timezone == "" {
		cfg.Timezone = worldtime.DefaultZone
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	b := &Backend{
		cfg:     cfg,
		clock:   clock,
		store:   store,
		logger:  logger.Named("backend"),
		started: time.Now(),
		gen:     gentexts.NewSeeded(seed, gentexts.WithQuota(gentexts.NewQuota(cfg.QuotaBytes))),
		pick:    rand.New(rand.NewPCG(seed, ^seed)),
	}
	b.logger.Info("backend initialized",
		zap.Uint64("seed", seed),
		zap.Int("quota_bytes", cfg.QuotaBytes),
		zap.String("timezone", cfg.Timezone))

	return b
}

// RandomText returns a copy of a uniformly chosen text from the pool. The
// pool is generated on first use; later calls draw from it without
// generating again. gentexts.ErrAllocation means nothing was produced this
// time and the caller should skip the cycle.
func (b *Backend) RandomText(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pool == nil {
		if _, err := b.refreshLocked(); err != nil {
			return "", err
		}
	}

	return b.pool.At(b.pick.IntN(b.pool.Len())), nil
}

// Refresh replaces the pool with a newly generated list and releases the old one
func (b *Backend) Refresh(ctx context.Context) (archive.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.refreshLocked()
}

func (b *Backend) refreshLocked() (archive.Record, error) {
	l, err := b.gen.TextList()
	if err != nil {
		b.logger.Warn("text pool generation failed", zap.Error(err))
		return archive.Record{}, err
	}

	rec := b.archive(l)

	b.pool.Release()
	b.pool = l
	b.logger.Debug("text pool refreshed", zap.String("id", rec.ID), zap.Int("count", l.Len()))

	return rec, nil
}

// TextList generates a list for the caller, who must release it
func (b *Backend) TextList(ctx context.Context) (*gentexts.TextList, archive.Record, error) {
	b.mu.Lock()
	l, err := b.gen.TextList()
	b.mu.Unlock()
	if err != nil {
		return nil, archive.Record{}, err
	}

	return l, b.archive(l), nil
}

// archive records l; a storage failure is logged, never returned
func (b *Backend) archive(l *gentexts.TextList) archive.Record {
	rec := archive.NewRecord(l.Texts())
	if err := b.store.Put(rec); err != nil {
		b.logger.Error("failed to archive text list", zap.String("id", rec.ID), zap.Error(err))
	}
	return rec
}

// History returns up to limit archived lists, newest first
func (b *Backend) History(limit int) ([]archive.Record, error) {
	return b.store.List(limit)
}

// HistoryRecord returns one archived list
func (b *Backend) HistoryRecord(id string) (archive.Record, error) {
	return b.store.Get(id)
}

// WorldTime fetches the current time of the configured timezone
func (b *Backend) WorldTime(ctx context.Context) (worldtime.Snapshot, error) {
	if b.clock == nil {
		return worldtime.Snapshot{}, ErrNoWorldTime
	}

	snap, err := b.clock.Fetch(ctx, b.cfg.Timezone)
	if err != nil {
		b.logger.Warn("world time lookup failed", zap.String("zone", b.cfg.Timezone), zap.Error(err))
		return worldtime.Snapshot{}, fmt.Errorf("world time lookup: %w", err)
	}

	return snap, nil
}

// Elapsed returns the time since the backend was created
func (b *Backend) Elapsed() time.Duration {
	return time.Since(b.started)
}

// ElapsedSeconds returns Elapsed in seconds
func (b *Backend) ElapsedSeconds() float64 {
	return b.Elapsed().Seconds()
}

// QuotaStats reports the generator's allocation counters
func (b *Backend) QuotaStats() gentexts.QuotaStats {
	return b.gen.Quota().Stats()
}

// Close releases the pool and closes the archive
func (b *Backend) Close() error {
	b.mu.Lock()
	b.pool.Release()
	b.pool = nil
	b.mu.Unlock()

	return b.store.Close()
}
