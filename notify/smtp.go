package notify

import (
	"fmt"

	"go.vocdoni.io/dvote/log"
	"gopkg.in/gomail.v2"
)

// SMTPConfig holds the settings of the SMTP notifier.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	FrontendURL string
}

// SMTPNotifier delivers invitation emails with a single-use magic link.
type SMTPNotifier struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

// NewSMTP creates a new SMTP notifier.
func NewSMTP(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Deliver implements Notifier.
func (n *SMTPNotifier) Deliver(inv Invitation) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", inv.Contact)
	m.SetHeader("Subject", fmt.Sprintf("You're invited to vote in %s", inv.EventName))
	m.SetBody("text/html", invitationBody(n.cfg.FrontendURL, inv))
	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("could not send invitation to %s: %w", inv.Contact, err)
	}
	log.Debugw("invitation email sent", "contact", inv.Contact, "event", inv.EventID)
	return nil
}

func invitationBody(frontendURL string, inv Invitation) string {
	link := MagicLink(frontendURL, inv.EventID, inv.Token)
	return fmt.Sprintf(`<html><body>
<h1>You're invited to vote</h1>
<p>You've been invited to participate in the voting event <b>%s</b>.</p>
<p>Voting period: %s - %s</p>
<p><a href="%s">Register &amp; Vote</a></p>
<p>This invitation link can only be used once. If you have any questions,
please contact the event organizer.</p>
</body></html>`,
		inv.EventName, formatDate(inv.StartTime), formatDate(inv.EndTime), link)
}
