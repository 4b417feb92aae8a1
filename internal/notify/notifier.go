package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// sendTimeout bounds every delivery attempt so a slow relay never
// holds up the request that triggered it.
const sendTimeout = 5 * time.Second

// Notifier sends portal emails in the background. Delivery failures
// are logged, never surfaced to the caller.
type Notifier struct {
	provider Provider
	logger   *zap.Logger
}

func NewNotifier(provider Provider, logger *zap.Logger) *Notifier {
	return &Notifier{provider: provider, logger: logger}
}

func (n *Notifier) dispatch(kind string, msg Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := n.provider.Send(ctx, msg); err != nil {
			n.logger.Warn("email delivery failed",
				zap.String("kind", kind),
				zap.Strings("to", msg.To),
				zap.Error(err),
			)
			return
		}
		n.logger.Info("email sent", zap.String("kind", kind), zap.Strings("to", msg.To))
	}()
}

// RegistrationCredentials mails a newly registered user their
// generated password.
func (n *Notifier) RegistrationCredentials(to, name, idNumber, password string) {
	n.dispatch("registration_credentials", Message{
		To:      []string{to},
		Subject: "Your Compensation Fund portal account",
		HTMLBody: fmt.Sprintf(
			"<p>Dear %s,</p>"+
				"<p>Your portal account has been created.</p>"+
				"<p>Username (ID number): <strong>%s</strong><br>"+
				"Temporary password: <strong>%s</strong></p>"+
				"<p>Please sign in and change your password.</p>",
			name, idNumber, password),
	})
}

// PasswordReset mails a regenerated password after a forgot-password
// request.
func (n *Notifier) PasswordReset(to, name, password string) {
	n.dispatch("password_reset", Message{
		To:      []string{to},
		Subject: "Compensation Fund portal password reset",
		HTMLBody: fmt.Sprintf(
			"<p>Dear %s,</p>"+
				"<p>Your password has been reset. Your new temporary password is "+
				"<strong>%s</strong>.</p>"+
				"<p>Please sign in and change it as soon as possible.</p>",
			name, password),
	})
}

// OrganisationApproved notifies the registrant that their organisation
// was approved, including the issued identifiers.
func (n *Notifier) OrganisationApproved(to, orgName, cfNumber, bpNumber string) {
	n.dispatch("organisation_approved", Message{
		To:      []string{to},
		Subject: fmt.Sprintf("Registration approved: %s", orgName),
		HTMLBody: fmt.Sprintf(
			"<p>The registration of <strong>%s</strong> has been approved.</p>"+
				"<p>CF registration number: <strong>%s</strong><br>"+
				"BP number: <strong>%s</strong></p>",
			orgName, cfNumber, bpNumber),
	})
}

// LinkingRequested mails the authorisation form that must be signed
// before a user can be linked to an organisation.
func (n *Notifier) LinkingRequested(to, orgName, filename string, form []byte) {
	n.dispatch("linking_requested", Message{
		To:      []string{to},
		Subject: fmt.Sprintf("Linking authorisation for %s", orgName),
		HTMLBody: fmt.Sprintf(
			"<p>A request was made to link your account to <strong>%s</strong>.</p>"+
				"<p>Please sign the attached authorisation form and upload it on the portal.</p>",
			orgName),
		Attachments: []Attachment{{
			Filename:    filename,
			ContentType: "application/pdf",
			Data:        form,
		}},
	})
}

// LinkingConfirmed notifies the linked user and the organisation's
// primary contact that the link is now active.
func (n *Notifier) LinkingConfirmed(to []string, orgName string) {
	n.dispatch("linking_confirmed", Message{
		To:      to,
		Subject: fmt.Sprintf("Linked to %s", orgName),
		HTMLBody: fmt.Sprintf(
			"<p>Your account is now linked to <strong>%s</strong>. You can act on its "+
				"behalf on the portal.</p>",
			orgName),
	})
}
