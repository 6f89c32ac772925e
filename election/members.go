package election

import (
	"time"

	"go.vocdoni.io/dvote/log"

	"github.com/trustlevel/trustvote/notify"
	"github.com/trustlevel/trustvote/types"
)

// DeliveryFailure describes one failed invitation delivery.
type DeliveryFailure struct {
	Contact string `json:"contact"`
	Reason  string `json:"reason"`
}

// InviteReport is the per-batch outcome of an Invite call. Failures are
// per-recipient and never abort the batch.
type InviteReport struct {
	SuccessCount int               `json:"successCount"`
	FailedCount  int               `json:"failedCount"`
	Failures     []DeliveryFailure `json:"failures,omitempty"`
}

// Invite issues one invitation token per contact and records the contacts in
// the event's display ledger, then delivers the links after the event record
// has been committed. Re-inviting a contact issues a fresh token; the
// display ledger deduplicates by contact address only.
func (c *Controller) Invite(id uint64, contacts []string) (*InviteReport, error) {
	release := c.lockEvent(id)

	ev, err := c.Event(id)
	if err != nil {
		release()
		return nil, err
	}

	report := &InviteReport{}
	invitations := make([]notify.Invitation, 0, len(contacts))
	for _, contact := range contacts {
		tok, err := c.ledger.Issue(id, contact)
		if err != nil {
			report.FailedCount++
			report.Failures = append(report.Failures, DeliveryFailure{
				Contact: contact,
				Reason:  err.Error(),
			})
			continue
		}
		recordInvitation(ev, tok.Contact, tok.Identity, c.now())
		invitations = append(invitations, notify.Invitation{
			Contact:   tok.Contact,
			Token:     tok.Value,
			EventID:   ev.ID,
			EventName: ev.Name,
			StartTime: ev.StartTime,
			EndTime:   ev.EndTime,
		})
	}
	sentAt := c.now().Unix()
	ev.InvitationsSentAt = &sentAt
	if err := c.stg.SetEvent(ev); err != nil {
		release()
		return nil, err
	}
	release()

	// Delivery happens outside the event lock; each failure is collected,
	// never fatal to the batch.
	for _, inv := range invitations {
		if c.notifier == nil {
			report.SuccessCount++
			continue
		}
		if err := c.notifier.Deliver(inv); err != nil {
			log.Warnw("invitation delivery failed", "contact", inv.Contact, "err", err)
			report.FailedCount++
			report.Failures = append(report.Failures, DeliveryFailure{
				Contact: inv.Contact,
				Reason:  err.Error(),
			})
			continue
		}
		report.SuccessCount++
	}
	return report, nil
}

// Invited returns the display ledger of invited contacts.
func (c *Controller) Invited(id uint64) ([]types.Invitation, error) {
	ev, err := c.Event(id)
	if err != nil {
		return nil, err
	}
	return append([]types.Invitation(nil), ev.Invited...), nil
}

// ValidateToken checks an invitation token without consuming it.
func (c *Controller) ValidateToken(value string) (*types.InvitationToken, error) {
	return c.ledger.Validate(value)
}

// Register enrolls the identity named by the token into the event's
// membership group: validate, insert, consume, in that order. An insertion
// never happens for an invalid, expired or used token, and the token is
// never consumed if the insertion fails, so a failed registration is
// retryable with the same token.
func (c *Controller) Register(id uint64, tokenValue string, commitment types.HexBytes) (types.HexBytes, error) {
	defer c.lockEvent(id)()

	ev, err := c.Event(id)
	if err != nil {
		return nil, err
	}
	tok, err := c.ledger.Validate(tokenValue)
	if err != nil {
		return nil, err
	}
	if tok.EventID != id {
		return nil, ErrTokenWrongEvent
	}
	root, err := c.groups.Insert(id, tok.Identity, commitment)
	if err != nil {
		return nil, err
	}
	if err := c.ledger.Consume(tokenValue); err != nil {
		return nil, err
	}
	ev.GroupRoot = root
	if err := c.stg.SetEvent(ev); err != nil {
		return nil, err
	}
	log.Infow("member registered", "event", id, "identity", tok.Identity, "root", root.String())
	return root, nil
}

// Members returns the registered identities in insertion order.
func (c *Controller) Members(id uint64) ([]uint64, error) {
	if _, err := c.Event(id); err != nil {
		return nil, err
	}
	return c.groups.Members(id)
}

// Leaves returns the ordered (identity, commitment) accumulator leaves.
func (c *Controller) Leaves(id uint64) ([]types.Leaf, error) {
	if _, err := c.Event(id); err != nil {
		return nil, err
	}
	return c.groups.Leaves(id)
}

// RemoveMember removes the identity's accumulator leaf and returns the
// recomputed root. Removing a never-registered identity is a no-op
// returning the unchanged root.
func (c *Controller) RemoveMember(id, identity uint64) (types.HexBytes, error) {
	defer c.lockEvent(id)()

	ev, err := c.Event(id)
	if err != nil {
		return nil, err
	}
	root, err := c.groups.Remove(id, identity)
	if err != nil {
		return nil, err
	}
	ev.GroupRoot = root
	if err := c.stg.SetEvent(ev); err != nil {
		return nil, err
	}
	log.Infow("member removed", "event", id, "identity", identity, "root", root.String())
	return root, nil
}

// recordInvitation appends a contact to the display ledger unless it is
// already listed.
func recordInvitation(ev *types.Event, contact string, identity uint64, now time.Time) {
	for _, inv := range ev.Invited {
		if inv.Contact == contact {
			return
		}
	}
	ev.Invited = append(ev.Invited, types.Invitation{
		Contact:   contact,
		Identity:  identity,
		InvitedAt: now.Unix(),
	})
}
