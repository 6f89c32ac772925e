package types

// InvitationToken is a single-use, time-limited credential granting one
// registration attempt to an identity for one event. It stays usable for
// validation any number of times until it is consumed or expires.
type InvitationToken struct {
	Value     string `json:"token"     cbor:"0,keyasint"`
	EventID   uint64 `json:"eventId"   cbor:"1,keyasint"`
	Identity  uint64 `json:"identity"  cbor:"2,keyasint"`
	Contact   string `json:"contact"   cbor:"3,keyasint"`
	Used      bool   `json:"used"      cbor:"4,keyasint"`
	ExpiresAt int64  `json:"expiresAt" cbor:"5,keyasint"`
	CreatedAt int64  `json:"createdAt" cbor:"6,keyasint"`
}

// Identity is a stable participant handle, resolved once per contact address
// and reused across events.
type Identity struct {
	ID        uint64 `json:"identity"        cbor:"0,keyasint"`
	Email     string `json:"email,omitempty"  cbor:"1,keyasint,omitempty"`
	Wallet    string `json:"wallet,omitempty" cbor:"2,keyasint,omitempty"`
	CreatedAt int64  `json:"createdAt"        cbor:"3,keyasint"`
}
