// Package notify delivers invitation links to contacts. Delivery failures
// are per-recipient; the election controller collects them into a batch
// report instead of aborting the batch.
package notify

import (
	"fmt"
	"time"

	"go.vocdoni.io/dvote/log"
)

// Invitation is the payload delivered to one contact.
type Invitation struct {
	Contact   string
	Token     string
	EventID   uint64
	EventName string
	StartTime *int64
	EndTime   *int64
}

// Notifier delivers invitations out-of-band. Implementations must be safe
// for concurrent use.
type Notifier interface {
	Deliver(inv Invitation) error
}

// LogNotifier writes the invitation link to the log instead of delivering
// it. Used in development and tests.
type LogNotifier struct {
	FrontendURL string
}

// Deliver implements Notifier.
func (n *LogNotifier) Deliver(inv Invitation) error {
	log.Infow("invitation link",
		"contact", inv.Contact,
		"link", MagicLink(n.FrontendURL, inv.EventID, inv.Token),
	)
	return nil
}

// MagicLink builds the registration link embedded in an invitation.
func MagicLink(frontendURL string, eventID uint64, token string) string {
	return fmt.Sprintf("%s/event/%d?token=%s", frontendURL, eventID, token)
}

// formatDate renders an optional POSIX timestamp for the invitation body.
func formatDate(ts *int64) string {
	if ts == nil {
		return "Not set"
	}
	return time.Unix(*ts, 0).UTC().Format("Mon, 02 Jan 2006 15:04 MST")
}
