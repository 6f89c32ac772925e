// Package directory resolves contact addresses to stable participant
// identities. An identity is created once per contact and reused across
// events; events never create identities, they look them up here.
package directory

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/dvote/log"

	"github.com/trustlevel/trustvote/storage"
	"github.com/trustlevel/trustvote/types"
)

// ErrInvalidContact is returned when a contact is neither an email address
// nor a wallet address.
var ErrInvalidContact = fmt.Errorf("contact is not an email or wallet address")

// Directory is the identity directory. The mutex serializes identity
// creation so a contact never maps to two identities.
type Directory struct {
	mu  sync.Mutex
	stg *storage.Storage
}

// New creates a new identity directory over the given storage.
func New(stg *storage.Storage) *Directory {
	return &Directory{stg: stg}
}

// ResolveOrCreate returns the identity of the given contact, creating it on
// first sight. Emails are matched case-insensitively; EVM-style wallet
// addresses are checksummed before lookup, other wallet addresses are used
// verbatim.
func (d *Directory) ResolveOrCreate(contact string) (*types.Identity, error) {
	email, wallet, err := normalizeContact(contact)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var ident *types.Identity
	if email != "" {
		ident, err = d.stg.IdentityByEmail(email)
	} else {
		ident, err = d.stg.IdentityByWallet(wallet)
	}
	if err == nil {
		return ident, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	id, err := d.stg.NextIdentityID()
	if err != nil {
		return nil, err
	}
	ident = &types.Identity{
		ID:        id,
		Email:     email,
		Wallet:    wallet,
		CreatedAt: time.Now().Unix(),
	}
	if err := d.stg.SetIdentity(ident); err != nil {
		return nil, err
	}
	log.Debugw("new identity", "id", id, "email", email, "wallet", wallet)
	return ident, nil
}

// Identity returns the identity record for the given id.
func (d *Directory) Identity(id uint64) (*types.Identity, error) {
	return d.stg.Identity(id)
}

// normalizeContact classifies a contact as email or wallet address and
// returns its canonical form.
func normalizeContact(contact string) (email, wallet string, err error) {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return "", "", ErrInvalidContact
	}
	if strings.Contains(contact, "@") {
		return strings.ToLower(contact), "", nil
	}
	if common.IsHexAddress(contact) {
		return "", common.HexToAddress(contact).Hex(), nil
	}
	// Non-EVM wallet addresses (e.g. bech32 Cardano addresses) are opaque.
	if len(contact) >= 8 && !strings.ContainsAny(contact, " \t\n") {
		return "", contact, nil
	}
	return "", "", ErrInvalidContact
}
