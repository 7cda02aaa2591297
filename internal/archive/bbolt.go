package archive

import (
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/klauspost/compress/zstd"
	bolt "go.etcd.io/bbolt"
)

var listsBucket = []byte("lists")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	enc *zstd.Encoder
	dec *zstd.Decoder
)

func init() {
	enc, _ = zstd.NewWriter(nil, // wont fail
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1))
	dec, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
}

// BoltStore implements Store using bbolt. Keys are record ids, which sort
// by creation time; values are zstd-compressed JSON.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the database at path
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(listsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Put stores rec, replacing any record with the same id
func (b *BoltStore) Put(rec Record) error {
	value, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(listsBucket).Put([]byte(rec.ID), value)
	})
}

// Get retrieves the record with the given id
func (b *BoltStore) Get(id string) (Record, error) {
	var rec Record
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(listsBucket).Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}

		var err error
		rec, err = decodeRecord(v)
		return err
	})

	return rec, err
}

// List walks the bucket backwards so the newest records come first
func (b *BoltStore) List(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var out []Record
	err := b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(listsBucket).Cursor()
		for k, v := c.Last(); k != nil && len(out) < limit; k, v = c.Prev() {
			rec, err := decodeRecord(v)
			if err != nil {
				return fmt.Errorf("record %s: %w", k, err)
			}
			out = append(out, rec)
		}
		return nil
	})

	return out, err
}

// Close closes the database
func (b *BoltStore) Close() error {
	return b.db.Close()
}

func encodeRecord(rec Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return enc.EncodeAll(data, nil), nil
}

// decodeRecord copies out of v, which is only valid during the transaction
func decodeRecord(v []byte) (Record, error) {
	data, err := dec.DecodeAll(v, nil)
	if err != nil {
		return Record{}, errors.Join(errors.New("failed to decompress record"), err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to decode record: %w", err)
	}

	return rec, nil
}
