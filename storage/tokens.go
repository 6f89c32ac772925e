package storage

import (
	"fmt"

	"github.com/trustlevel/trustvote/types"
)

// Token retrieves an invitation token by its value. It returns ErrNotFound
// if the token is unknown.
func (s *Storage) Token(value string) (*types.InvitationToken, error) {
	tok := &types.InvitationToken{}
	if err := s.getArtifact(tokenPrefix, []byte(value), tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// SetToken stores an invitation token, keyed by its value.
func (s *Storage) SetToken(tok *types.InvitationToken) error {
	if tok == nil {
		return fmt.Errorf("nil token")
	}
	if tok.Value == "" {
		return fmt.Errorf("empty token value")
	}
	return s.setArtifact(tokenPrefix, []byte(tok.Value), tok)
}
