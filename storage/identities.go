package storage

import (
	"encoding/binary"
	"errors"
	"fmt"

	"go.vocdoni.io/dvote/db"

	"github.com/trustlevel/trustvote/types"
)

// Identity retrieves an identity record by id. It returns ErrNotFound if
// the identity does not exist.
func (s *Storage) Identity(id uint64) (*types.Identity, error) {
	ident := &types.Identity{}
	if err := s.getArtifact(identityPrefix, eventKey(id), ident); err != nil {
		return nil, err
	}
	return ident, nil
}

// SetIdentity stores an identity record and its contact indexes.
func (s *Storage) SetIdentity(ident *types.Identity) error {
	if ident == nil {
		return fmt.Errorf("nil identity")
	}
	if err := s.setArtifact(identityPrefix, eventKey(ident.ID), ident); err != nil {
		return err
	}
	if ident.Email != "" {
		if err := s.setArtifact(emailIndexPrefix, []byte(ident.Email), ident.ID); err != nil {
			return err
		}
	}
	if ident.Wallet != "" {
		if err := s.setArtifact(walletIndexPrefix, []byte(ident.Wallet), ident.ID); err != nil {
			return err
		}
	}
	return nil
}

// IdentityByEmail resolves an identity by its (normalized) email address.
func (s *Storage) IdentityByEmail(email string) (*types.Identity, error) {
	return s.identityByIndex(emailIndexPrefix, email)
}

// IdentityByWallet resolves an identity by its (normalized) wallet address.
func (s *Storage) IdentityByWallet(wallet string) (*types.Identity, error) {
	return s.identityByIndex(walletIndexPrefix, wallet)
}

func (s *Storage) identityByIndex(prefix []byte, contact string) (*types.Identity, error) {
	var id uint64
	if err := s.getArtifact(prefix, []byte(contact), &id); err != nil {
		return nil, err
	}
	return s.Identity(id)
}

// NextIdentityID allocates the next identity id from the persisted counter.
// Callers serialize through the identity directory.
func (s *Storage) NextIdentityID() (uint64, error) {
	var next uint64 = 1
	data, err := s.db.Get(identityCounterKey)
	switch {
	case err == nil:
		next = binary.BigEndian.Uint64(data) + 1
	case errors.Is(err, db.ErrKeyNotFound):
		// First identity ever.
	default:
		return 0, err
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	wTx := s.db.WriteTx()
	defer wTx.Discard()
	if err := wTx.Set(identityCounterKey, buf); err != nil {
		return 0, err
	}
	if err := wTx.Commit(); err != nil {
		return 0, err
	}
	return next, nil
}
