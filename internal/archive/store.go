// Package archive keeps a history of generated text lists.
package archive

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get for an unknown id
var ErrNotFound = errors.New("record not found")

// DefaultListLimit is used by List when limit <= 0
const DefaultListLimit = 20

// Record is one archived text list
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Count     int       `json:"count"`
	Texts     []string  `json:"texts"`
}

// NewRecord stamps texts with a time-ordered id
func NewRecord(texts []string) Record {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	return Record{
		ID:        id.String(),
		CreatedAt: time.Now().UTC(),
		Count:     len(texts),
		Texts:     texts,
	}
}

// Bytes returns the total text size
func (r Record) Bytes() int {
	n := 0
	for _, t := range r.Texts {
		n += len(t)
	}
	return n
}

// Store persists records. Implementations must be safe for concurrent use.
type Store interface {
	Put(rec Record) error
	Get(id string) (Record, error)

	// List returns up to limit records, newest first
	List(limit int) ([]Record, error)

	Close() error
}

// Open returns a BoltStore at path, or a MemoryStore when path is empty
func Open(path string) (Store, error) {
	if path == "" {
		return NewMemoryStore(), nil
	}
	return NewBoltStore(path)
}
