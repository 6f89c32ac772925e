// Package group maintains the membership accumulator of each voting event: an
// ordered list of (identity, commitment) leaves summarized by the root of an
// arbo merkle tree. The root is a pure function of the surviving ordered leaf
// set; removal wipes the tree and rebuilds it from the remaining leaves, so
// callers must not assume positional stability of any leaf across mutations.
package group

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/vocdoni/arbo"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
	"go.vocdoni.io/dvote/log"

	"github.com/trustlevel/trustvote/types"
	"github.com/trustlevel/trustvote/util"
)

const (
	groupDBprefix      = "gt_"
	groupDBstatePrefix = "gs_"
)

var (
	// ErrGroupNotFound is returned when the event has no accumulator.
	ErrGroupNotFound = fmt.Errorf("group not found in the local database")
	// ErrGroupAlreadyExists is returned by Create() if the accumulator already exists.
	ErrGroupAlreadyExists = fmt.Errorf("group already exists in the local database")
	// ErrCapacityInvalid is returned when an accumulator is created with capacity <= 0.
	ErrCapacityInvalid = fmt.Errorf("group capacity must be positive")
	// ErrCapacityExceeded is returned on insert beyond the declared capacity
	// when the strict capacity policy is enabled.
	ErrCapacityExceeded = fmt.Errorf("group capacity exceeded")
	// ErrDuplicateCommitment is returned when a commitment already registered
	// for another identity is presented again.
	ErrDuplicateCommitment = fmt.Errorf("commitment already registered for another identity")

	defaultHashFunction = arbo.HashFunctionPoseidon
)

// Config tunes the accumulator policies.
type Config struct {
	// EnforceCapacity rejects inserts beyond the declared capacity. The
	// default treats capacity as advisory sizing only.
	EnforceCapacity bool
}

// groupState is the persisted ordered leaf list of one accumulator.
type groupState struct {
	Capacity int          `cbor:"0,keyasint"`
	Leaves   []types.Leaf `cbor:"1,keyasint,omitempty"`
}

// DB is a safe and persistent database of membership accumulators, one per
// voting event. The mutex serializes tree rebuilds; higher-level operation
// ordering is the election controller's job.
type DB struct {
	mu  sync.Mutex
	db  db.Database
	cfg Config
}

// NewDB creates a new accumulator database over the given key-value store.
func NewDB(database db.Database, cfg Config) *DB {
	return &DB{db: database, cfg: cfg}
}

// Create initializes an empty accumulator for the event, sized for capacity
// members, and returns its root.
func (g *DB) Create(eventID uint64, capacity int) (types.HexBytes, error) {
	if capacity <= 0 {
		return nil, ErrCapacityInvalid
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := g.state(eventID); err == nil {
		return nil, ErrGroupAlreadyExists
	} else if !errors.Is(err, ErrGroupNotFound) {
		return nil, err
	}
	if err := g.writeState(eventID, &groupState{Capacity: capacity}); err != nil {
		return nil, err
	}
	tree, err := g.tree(eventID)
	if err != nil {
		return nil, err
	}
	return tree.Root()
}

// Exists returns true if the event has an accumulator.
func (g *DB) Exists(eventID uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, err := g.state(eventID)
	return err == nil
}

// Insert appends an (identity, commitment) leaf and returns the recomputed
// root. It is idempotent per identity: a second insert for the same identity
// is a no-op returning the unchanged root. Presenting a commitment already
// registered for a different identity fails with ErrDuplicateCommitment.
func (g *DB) Insert(eventID, identity uint64, commitment types.HexBytes) (types.HexBytes, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	st, err := g.state(eventID)
	if err != nil {
		return nil, err
	}
	for _, leaf := range st.Leaves {
		if leaf.Identity == identity {
			tree, err := g.tree(eventID)
			if err != nil {
				return nil, err
			}
			return tree.Root()
		}
		if bytes.Equal(leaf.Commitment, commitment) {
			return nil, ErrDuplicateCommitment
		}
	}
	if g.cfg.EnforceCapacity && len(st.Leaves) >= st.Capacity {
		return nil, ErrCapacityExceeded
	}

	tree, err := g.tree(eventID)
	if err != nil {
		return nil, err
	}
	if err := tree.Add(leafKey(identity), leafValue(commitment)); err != nil {
		return nil, fmt.Errorf("could not add leaf: %w", err)
	}
	st.Leaves = append(st.Leaves, types.Leaf{Identity: identity, Commitment: commitment})
	if err := g.writeState(eventID, st); err != nil {
		return nil, err
	}
	return tree.Root()
}

// Remove deletes the identity's leaf, if present, and returns the root
// recomputed from the surviving leaves in their original relative order.
// Removing an identity that was never a member is a no-op returning the
// unchanged root.
func (g *DB) Remove(eventID, identity uint64) (types.HexBytes, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	st, err := g.state(eventID)
	if err != nil {
		return nil, err
	}
	survivors := make([]types.Leaf, 0, len(st.Leaves))
	for _, leaf := range st.Leaves {
		if leaf.Identity != identity {
			survivors = append(survivors, leaf)
		}
	}
	if len(survivors) == len(st.Leaves) {
		tree, err := g.tree(eventID)
		if err != nil {
			return nil, err
		}
		return tree.Root()
	}

	// arbo has no leaf deletion; wipe the tree keyspace and rebuild from
	// the surviving ordered list.
	if _, err := deleteGroupTreeFromDatabase(g.db, treePrefix(eventID)); err != nil {
		return nil, err
	}
	tree, err := g.tree(eventID)
	if err != nil {
		return nil, err
	}
	keys := make([][]byte, len(survivors))
	values := make([][]byte, len(survivors))
	for i, leaf := range survivors {
		keys[i] = leafKey(leaf.Identity)
		values[i] = leafValue(leaf.Commitment)
	}
	if invalid, err := tree.AddBatch(keys, values); err != nil {
		return nil, fmt.Errorf("could not rebuild tree: %w", err)
	} else if len(invalid) > 0 {
		return nil, fmt.Errorf("could not rebuild tree: %d invalid leaves", len(invalid))
	}
	st.Leaves = survivors
	if err := g.writeState(eventID, st); err != nil {
		return nil, err
	}
	return tree.Root()
}

// Root returns the current accumulator root of the event.
func (g *DB) Root(eventID uint64) (types.HexBytes, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, err := g.state(eventID); err != nil {
		return nil, err
	}
	tree, err := g.tree(eventID)
	if err != nil {
		return nil, err
	}
	return tree.Root()
}

// Members returns the registered identities in insertion order.
func (g *DB) Members(eventID uint64) ([]uint64, error) {
	leaves, err := g.Leaves(eventID)
	if err != nil {
		return nil, err
	}
	members := make([]uint64, len(leaves))
	for i, leaf := range leaves {
		members[i] = leaf.Identity
	}
	return members, nil
}

// Leaves returns a copy of the ordered (identity, commitment) leaf list.
func (g *DB) Leaves(eventID uint64) ([]types.Leaf, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	st, err := g.state(eventID)
	if err != nil {
		return nil, err
	}
	return append([]types.Leaf(nil), st.Leaves...), nil
}

// Size returns the number of leaves in the accumulator.
func (g *DB) Size(eventID uint64) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	st, err := g.state(eventID)
	if err != nil {
		return 0, err
	}
	return len(st.Leaves), nil
}

// Capacity returns the declared capacity of the accumulator.
func (g *DB) Capacity(eventID uint64) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	st, err := g.state(eventID)
	if err != nil {
		return 0, err
	}
	return st.Capacity, nil
}

// Delete removes the accumulator state and its tree from the database.
func (g *DB) Delete(eventID uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	wTx := prefixeddb.NewPrefixedWriteTx(g.db.WriteTx(), []byte(groupDBstatePrefix))
	if err := wTx.Delete(stateKey(eventID)); err != nil {
		wTx.Discard()
		return err
	}
	if err := wTx.Commit(); err != nil {
		return err
	}
	_, err := deleteGroupTreeFromDatabase(g.db, treePrefix(eventID))
	return err
}

// state loads the persisted leaf list of one accumulator.
func (g *DB) state(eventID uint64) (*groupState, error) {
	rd := prefixeddb.NewPrefixedReader(g.db, []byte(groupDBstatePrefix))
	data, err := rd.Get(stateKey(eventID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrGroupNotFound, eventID)
		}
		return nil, err
	}
	st := &groupState{}
	if err := decodeState(data, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (g *DB) writeState(eventID uint64, st *groupState) error {
	data, err := encodeState(st)
	if err != nil {
		return err
	}
	wTx := prefixeddb.NewPrefixedWriteTx(g.db.WriteTx(), []byte(groupDBstatePrefix))
	defer wTx.Discard()
	if err := wTx.Set(stateKey(eventID), data); err != nil {
		return err
	}
	return wTx.Commit()
}

// tree opens (or creates) the arbo tree of one accumulator.
func (g *DB) tree(eventID uint64) (*arbo.Tree, error) {
	return arbo.NewTree(arbo.Config{
		Database:     prefixeddb.NewPrefixedDatabase(g.db, treePrefix(eventID)),
		MaxLevels:    types.GroupTreeMaxLevels,
		HashFunction: defaultHashFunction,
	})
}

// deleteGroupTreeFromDatabase removes all keys belonging to an accumulator
// tree from the database.
func deleteGroupTreeFromDatabase(kv db.Database, prefix []byte) (int, error) {
	database := prefixeddb.NewPrefixedDatabase(kv, prefix)
	wTx := database.WriteTx()
	count := 0
	err := database.Iterate(nil, func(k, _ []byte) bool {
		if err := wTx.Delete(k); err != nil {
			log.Warnw("could not remove key from database", "key", fmt.Sprintf("%x", k))
		} else {
			count++
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	return count, wTx.Commit()
}

// leafKey encodes an identity as an accumulator leaf key.
func leafKey(identity uint64) []byte {
	return arbo.BigIntToBytes(types.GroupKeyLen, new(big.Int).SetUint64(identity))
}

// leafValue reduces a commitment to the Poseidon field so arbo can hash it.
func leafValue(commitment types.HexBytes) []byte {
	ff := util.BigToFF(new(big.Int).SetBytes(commitment))
	return arbo.BigIntToBytes(defaultHashFunction.Len(), ff)
}

func treePrefix(eventID uint64) []byte {
	return append([]byte(groupDBprefix), stateKey(eventID)...)
}

func stateKey(eventID uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, eventID)
	return key
}

func encodeState(st *groupState) ([]byte, error) {
	encOpts := cbor.CoreDetEncOptions()
	em, err := encOpts.EncMode()
	if err != nil {
		return nil, fmt.Errorf("encode group state: %w", err)
	}
	return em.Marshal(st)
}

func decodeState(data []byte, st *groupState) error {
	return cbor.Unmarshal(data, st)
}
