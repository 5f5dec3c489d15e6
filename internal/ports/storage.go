// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

// PatternStore persists named pattern sets to durable storage. Only the
// source strings are stored; automata are always rebuilt from them.
// Concurrent reads are safe; writes are serialized by the adapter.
//
// Crash safety: SaveSet must be transactional. A crash mid-write must not
// corrupt previously committed sets.
type PatternStore interface {
	// SaveSet persists a pattern set, overwriting any set with the same name.
	SaveSet(set *PatternSet) error

	// LoadSet retrieves a pattern set by name.
	// Returns nil, nil if no such set exists.
	LoadSet(name string) (*PatternSet, error)

	// ListSets returns the names of all stored sets, sorted.
	ListSets() ([]string, error)

	// DeleteSet removes a set. Idempotent: deleting a missing set is not an error.
	DeleteSet(name string) error
}

// PatternSet is a named list of patterns plus the policy it was built with.
type PatternSet struct {
	Name       string   `json:"name"`
	Patterns   []string `json:"patterns"`
	AllowEmpty bool     `json:"allow_empty,omitempty"`
	Updated    int64    `json:"updated"` // unix seconds
}
