// Package storage contains all the artifacts persisted by the voting core:
// event aggregates, invitation tokens and the identity directory records.
// It is a prefixed key-value store over a single database. The following
// prefixes are used:
//   - 'e/' for voting events
//   - 't/' for invitation tokens, keyed by token value
//   - 'u/' for identities, keyed by identity id
//   - 'ue/' for the email -> identity index
//   - 'uw/' for the wallet -> identity index
//
// The membership accumulator trees live in the same database under their own
// prefixes, managed by the group package.
package storage

import (
	"encoding/binary"
	"fmt"

	"go.vocdoni.io/dvote/db"
)

var (
	// Prefixes for the keys in the database.
	eventPrefix       = []byte("e/")
	tokenPrefix       = []byte("t/")
	identityPrefix    = []byte("u/")
	emailIndexPrefix  = []byte("ue/")
	walletIndexPrefix = []byte("uw/")

	// identityCounterKey holds the last assigned identity id.
	identityCounterKey = []byte("uc/next")

	// ErrNotFound is returned when the requested artifact does not exist.
	ErrNotFound = fmt.Errorf("artifact not found")
)

// Storage wraps the basic methods to persist and retrieve the voting core
// artifacts. Each method is an atomic read or write; serialization of
// read-modify-write sequences against the same event is the caller's job
// (the election controller holds one lock per event id).
type Storage struct {
	db db.Database
}

// New creates a new Storage instance over the given database.
func New(database db.Database) *Storage {
	return &Storage{db: database}
}

// Database returns the underlying key-value database, shared with the
// accumulator trees.
func (s *Storage) Database() db.Database {
	return s.db
}

// Close closes the storage.
func (s *Storage) Close() {
	s.db.Close()
}

// eventKey encodes an event id as a fixed-size big-endian key.
func eventKey(id uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, id)
	return key
}
