package types

import "time"

const (
	// GroupTreeMaxLevels is the number of levels of the membership merkle
	// tree. It is fixed so that identity keys always fit the tree depth;
	// the declared group capacity bounds the leaf count, not the depth.
	GroupTreeMaxLevels = 64
	// GroupKeyLen is the length of a membership leaf key in bytes.
	GroupKeyLen = GroupTreeMaxLevels / 8
	// DefaultGroupCapacity is the group capacity used when an event does
	// not declare one.
	DefaultGroupCapacity = 20
	// InvitationTokenTTL is the lifetime of an invitation token.
	InvitationTokenTTL = 7 * 24 * time.Hour
)
