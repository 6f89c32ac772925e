// Package ledger implements the invitation-token lifecycle: the only gate by
// which an external contact becomes an enrolled participant. Validation is
// side-effect free and repeatable; consumption flips the single-use flag
// exactly once.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"go.vocdoni.io/dvote/log"

	"github.com/trustlevel/trustvote/directory"
	"github.com/trustlevel/trustvote/storage"
	"github.com/trustlevel/trustvote/types"
	"github.com/trustlevel/trustvote/util"
)

var (
	// ErrTokenNotFound is returned when the token value is unknown.
	ErrTokenNotFound = fmt.Errorf("invitation token not found")
	// ErrTokenAlreadyUsed is returned when the token was already consumed.
	ErrTokenAlreadyUsed = fmt.Errorf("invitation token already used")
	// ErrTokenExpired is returned when the token expiry has passed.
	ErrTokenExpired = fmt.Errorf("invitation token expired")
)

// Ledger issues, validates and consumes invitation tokens.
type Ledger struct {
	stg *storage.Storage
	dir *directory.Directory
	now func() time.Time
}

// New creates a new token ledger. A nil clock defaults to time.Now; tests
// inject their own.
func New(stg *storage.Storage, dir *directory.Directory, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{stg: stg, dir: dir, now: now}
}

// Issue resolves (or creates) the contact's identity, generates a fresh
// unguessable token for it and persists it unconsumed with a 7-day expiry.
// Issuing twice for the same contact yields two independently valid tokens.
func (l *Ledger) Issue(eventID uint64, contact string) (*types.InvitationToken, error) {
	ident, err := l.dir.ResolveOrCreate(contact)
	if err != nil {
		return nil, err
	}
	now := l.now()
	tok := &types.InvitationToken{
		Value:     util.RandomHex(16),
		EventID:   eventID,
		Identity:  ident.ID,
		Contact:   contact,
		ExpiresAt: now.Add(types.InvitationTokenTTL).Unix(),
		CreatedAt: now.Unix(),
	}
	if err := l.stg.SetToken(tok); err != nil {
		return nil, err
	}
	log.Debugw("invitation token issued", "event", eventID, "identity", ident.ID)
	return tok, nil
}

// Validate checks a token without side effects, so the caller can re-check
// it any number of times before deciding to register. It fails with
// ErrTokenNotFound, ErrTokenAlreadyUsed or ErrTokenExpired.
func (l *Ledger) Validate(value string) (*types.InvitationToken, error) {
	tok, err := l.stg.Token(value)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	if tok.Used {
		return nil, ErrTokenAlreadyUsed
	}
	if l.now().Unix() > tok.ExpiresAt {
		return nil, ErrTokenExpired
	}
	return tok, nil
}

// Consume marks a token as used. It does not check expiry; callers needing
// the expiry check must Validate first. Consuming an already consumed token
// is a no-op.
func (l *Ledger) Consume(value string) error {
	tok, err := l.stg.Token(value)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTokenNotFound
		}
		return err
	}
	if tok.Used {
		return nil
	}
	tok.Used = true
	return l.stg.SetToken(tok)
}
