package gentexts

import "errors"

// Sentinel errors for generation and release
var (
	// ErrAllocation is the only generation failure. Nothing partial is returned with it.
	ErrAllocation = errors.New("allocation failed")

	// ErrCountMismatch is returned by FreeTextList when the count does not
	// match the one produced with the list.
	ErrCountMismatch = errors.New("text list count mismatch")
)
