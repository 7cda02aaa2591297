package gentexts

import (
	"fmt"
	"slices"
	"sync/atomic"
)

// TextList is an owned, ordered set of texts produced by one TextList call.
// It must be released exactly once; further releases are no-ops.
type TextList struct {
	texts    []string
	slots    int
	quota    *Quota
	released atomic.Bool
}

// Len returns the number of texts, 0 for a nil or released list
func (l *TextList) Len() int {
	if l == nil || l.released.Load() {
		return 0
	}
	return len(l.texts)
}

// At returns the i-th text
func (l *TextList) At(i int) string {
	return l.texts[i]
}

// Texts returns a copy of the texts
func (l *TextList) Texts() []string {
	if l == nil || l.released.Load() {
		return nil
	}
	return slices.Clone(l.texts)
}

// Released reports whether Release has been called
func (l *TextList) Released() bool {
	return l != nil && l.released.Load()
}

// Release frees every text and then the list itself. It is safe to call on
// a nil list.
func (l *TextList) Release() {
	if l == nil || !l.released.CompareAndSwap(false, true) {
		return
	}

	for i, text := range l.texts {
		l.quota.free(len(text))
		l.texts[i] = ""
	}
	l.quota.free(l.slots * SlotSize)
	l.texts = nil
}

// FreeTextList releases l after checking that count is the count it was
// produced with. A nil or already released list is a no-op.
func FreeTextList(l *TextList, count int) error {
	if l == nil || l.Released() {
		return nil
	}
	if n := l.Len(); n != count {
		return fmt.Errorf("%w: list holds %d texts, got %d", ErrCountMismatch, n, count)
	}

	l.Release()
	return nil
}
