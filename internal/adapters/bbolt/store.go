// Package bbolt implements the ports.PatternStore interface using bbolt
// (embedded B+ tree). All sets live under one top-level "sets" bucket; each
// set gets its own sub-bucket holding a JSON "meta" record and a binary
// "patterns" blob. Writes are transactional so a crash mid-write cannot
// corrupt previously committed data.
package bbolt

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/corey/acmatch/internal/ports"
	bolt "go.etcd.io/bbolt"
)

// Bucket keys
var (
	bucketSets  = []byte("sets")
	keyMeta     = []byte("meta")
	keyPatterns = []byte("patterns")
)

// Store implements ports.PatternStore backed by bbolt.
type Store struct {
	db *bolt.DB
}

var _ ports.PatternStore = (*Store)(nil)

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// setMeta is the JSON "meta" record of a set. Patterns are stored apart.
type setMeta struct {
	AllowEmpty bool  `json:"allow_empty,omitempty"`
	Updated    int64 `json:"updated"`
	Count      int   `json:"count"`
}

// SaveSet persists a pattern set, replacing any set with the same name.
func (s *Store) SaveSet(set *ports.PatternSet) error {
	if set == nil {
		return fmt.Errorf("nil pattern set")
	}
	if set.Name == "" {
		return fmt.Errorf("pattern set has no name")
	}

	updated := set.Updated
	if updated == 0 {
		updated = time.Now().Unix()
	}
	metaJSON, err := json.Marshal(setMeta{
		AllowEmpty: set.AllowEmpty,
		Updated:    updated,
		Count:      len(set.Patterns),
	})
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	blob := encodePatterns(set.Patterns)

	return s.db.Update(func(tx *bolt.Tx) error {
		sets, err := tx.CreateBucketIfNotExists(bucketSets)
		if err != nil {
			return err
		}
		// Replace wholesale so no key from an older version survives.
		if sets.Bucket([]byte(set.Name)) != nil {
			if err := sets.DeleteBucket([]byte(set.Name)); err != nil {
				return err
			}
		}
		sb, err := sets.CreateBucket([]byte(set.Name))
		if err != nil {
			return err
		}
		if err := sb.Put(keyMeta, metaJSON); err != nil {
			return err
		}
		return sb.Put(keyPatterns, blob)
	})
}

// LoadSet retrieves a pattern set by name.
// Returns nil, nil if no such set exists.
func (s *Store) LoadSet(name string) (*ports.PatternSet, error) {
	var metaJSON, blob []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		sets := tx.Bucket(bucketSets)
		if sets == nil {
			return nil
		}
		sb := sets.Bucket([]byte(name))
		if sb == nil {
			return nil
		}
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := sb.Get(keyMeta); v != nil {
			metaJSON = make([]byte, len(v))
			copy(metaJSON, v)
		}
		if v := sb.Get(keyPatterns); v != nil {
			blob = make([]byte, len(v))
			copy(blob, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if metaJSON == nil && blob == nil {
		return nil, nil
	}

	var meta setMeta
	if metaJSON != nil {
		if err := json.Unmarshal(metaJSON, &meta); err != nil {
			return nil, fmt.Errorf("unmarshal meta of %q: %w", name, err)
		}
	}
	var patterns []string
	if blob != nil {
		patterns, err = decodePatterns(blob)
		if err != nil {
			return nil, fmt.Errorf("decode patterns of %q: %w", name, err)
		}
	}

	return &ports.PatternSet{
		Name:       name,
		Patterns:   patterns,
		AllowEmpty: meta.AllowEmpty,
		Updated:    meta.Updated,
	}, nil
}

// ListSets returns the names of all stored sets, sorted.
func (s *Store) ListSets() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		sets := tx.Bucket(bucketSets)
		if sets == nil {
			return nil
		}
		return sets.ForEach(func(k, v []byte) error {
			// Sub-buckets have a nil value.
			if v == nil {
				names = append(names, string(k))
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// DeleteSet removes a set. Idempotent: deleting a missing set is not an error.
func (s *Store) DeleteSet(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		sets := tx.Bucket(bucketSets)
		if sets == nil || sets.Bucket([]byte(name)) == nil {
			return nil
		}
		return sets.DeleteBucket([]byte(name))
	})
}
