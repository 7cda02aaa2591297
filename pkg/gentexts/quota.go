package gentexts

import (
	"fmt"
	"sync"
)

// SlotSize is the number of bytes charged per slot of a list container.
const SlotSize = 16

// QuotaStats is a point-in-time view of a Quota
type QuotaStats struct {
	Limit  int `json:"limit"`
	InUse  int `json:"in_use"`
	Peak   int `json:"peak"`
	Allocs int `json:"allocs"`
	Frees  int `json:"frees"`
}

// Quota bounds the bytes a Generator may hold live and counts buffer
// allocations and frees. A nil *Quota accounts nothing and never fails.
type Quota struct {
	mu     sync.Mutex
	limit  int
	inUse  int
	peak   int
	allocs int
	frees  int
}

// NewQuota creates a quota of limit bytes. A limit <= 0 means unlimited.
func NewQuota(limit int) *Quota {
	if limit < 0 {
		limit = 0
	}
	return &Quota{limit: limit}
}

// Stats returns the current counters
func (q *Quota) Stats() QuotaStats {
	if q == nil {
		return QuotaStats{}
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	return QuotaStats{
		Limit:  q.limit,
		InUse:  q.inUse,
		Peak:   q.peak,
		Allocs: q.allocs,
		Frees:  q.frees,
	}
}

// alloc opens a new buffer of n bytes
func (q *Quota) alloc(n int) error {
	if q == nil {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.reserveLocked(n); err != nil {
		return err
	}
	q.allocs++

	return nil
}

// grow extends a live buffer by n bytes
func (q *Quota) grow(n int) error {
	if q == nil {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	return q.reserveLocked(n)
}

// free closes a buffer that currently holds n bytes
func (q *Quota) free(n int) {
	if q == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.inUse -= n
	if q.inUse < 0 {
		panic(fmt.Sprintf("gentexts: quota released %d bytes more than reserved", -q.inUse))
	}
	q.frees++
}

func (q *Quota) reserveLocked(n int) error {
	if q.limit > 0 && q.inUse+n > q.limit {
		return fmt.Errorf("%w: need %d bytes, %d of %d in use", ErrAllocation, n, q.inUse, q.limit)
	}

	q.inUse += n
	if q.inUse > q.peak {
		q.peak = q.inUse
	}

	return nil
}
