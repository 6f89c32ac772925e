package storage

import (
	"encoding/binary"
	"fmt"

	"go.vocdoni.io/dvote/db/prefixeddb"

	"github.com/trustlevel/trustvote/types"
)

// Event retrieves an event aggregate from the storage. It returns
// ErrNotFound if the event does not exist.
func (s *Storage) Event(id uint64) (*types.Event, error) {
	ev := &types.Event{}
	if err := s.getArtifact(eventPrefix, eventKey(id), ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// SetEvent stores an event aggregate.
func (s *Storage) SetEvent(ev *types.Event) error {
	if ev == nil {
		return fmt.Errorf("nil event")
	}
	return s.setArtifact(eventPrefix, eventKey(ev.ID), ev)
}

// DeleteEvent removes an event and all its invitation tokens. Token rows
// reference the event by id, so they are swept by iterating the token
// keyspace.
func (s *Storage) DeleteEvent(id uint64) error {
	if err := s.deleteArtifact(eventPrefix, eventKey(id)); err != nil {
		return err
	}
	tokens, err := s.TokensByEvent(id)
	if err != nil {
		return err
	}
	for _, tok := range tokens {
		if err := s.deleteArtifact(tokenPrefix, []byte(tok.Value)); err != nil {
			return err
		}
	}
	return nil
}

// ListEvents returns the ids of all stored events.
func (s *Storage) ListEvents() ([]uint64, error) {
	keys, err := s.listKeys(eventPrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(keys))
	for _, k := range keys {
		if len(k) != 8 {
			continue
		}
		ids = append(ids, binary.BigEndian.Uint64(k))
	}
	return ids, nil
}

// TokensByEvent returns all invitation tokens issued for the given event.
func (s *Storage) TokensByEvent(id uint64) ([]*types.InvitationToken, error) {
	rd := prefixeddb.NewPrefixedDatabase(s.db, tokenPrefix)
	tokens := []*types.InvitationToken{}
	var iterErr error
	err := rd.Iterate(nil, func(_, v []byte) bool {
		tok := &types.InvitationToken{}
		if err := decodeArtifact(v, tok); err != nil {
			iterErr = err
			return false
		}
		if tok.EventID == id {
			tokens = append(tokens, tok)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if iterErr != nil {
		return nil, iterErr
	}
	return tokens, nil
}
