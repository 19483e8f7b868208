package account

import (
	"context"
	"strings"

	"github.com/flosch/pongo2/v6"
	goerrors "github.com/goliatone/go-errors"
	"github.com/wneessen/go-mail"
)

// Mailer sends a composed message. SMTPMailer is the production
// implementation; tests inject fakes.
type Mailer interface {
	Send(ctx context.Context, msg *mail.Msg) error
}

// SMTPMailer delivers messages over SMTP.
type SMTPMailer struct {
	client *mail.Client
}

// NewSMTPMailer connects the mailer to an SMTP host. Options are passed
// through to the underlying client (port, auth, TLS policy).
func NewSMTPMailer(host string, opts ...mail.Option) (*SMTPMailer, error) {
	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to create SMTP client")
	}

	return &SMTPMailer{client: client}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg *mail.Msg) error {
	return m.client.DialAndSendWithContext(ctx, msg)
}

// EmailSinkConfig configures how notifications become email.
type EmailSinkConfig struct {
	// From is the sender address.
	From string
	// ToField names the account field holding the recipient address.
	// Defaults to email.
	ToField string
	// Subject and Body are pongo2 template sources rendered with
	// {{ token }} and {{ account }} in context.
	Subject string
	Body    string
}

// EmailSink renders notifications through templates and hands them to a
// Mailer, the way a reset or confirmation email is typically produced.
type EmailSink struct {
	mailer  Mailer
	from    string
	toField string
	subject *pongo2.Template
	body    *pongo2.Template
}

var _ Sink = (*EmailSink)(nil)

// NewEmailSink compiles the configured templates and returns the sink.
func NewEmailSink(mailer Mailer, cfg EmailSinkConfig) (*EmailSink, error) {
	if mailer == nil {
		return nil, goerrors.New("mailer is required", goerrors.CategoryBadInput)
	}

	if cfg.From == "" {
		return nil, goerrors.New("sender address is required", goerrors.CategoryBadInput)
	}

	subject, err := pongo2.FromString(cfg.Subject)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid subject template")
	}

	body, err := pongo2.FromString(cfg.Body)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid body template")
	}

	toField := cfg.ToField
	if toField == "" {
		toField = FieldEmail
	}

	return &EmailSink{
		mailer:  mailer,
		from:    cfg.From,
		toField: toField,
		subject: subject,
		body:    body,
	}, nil
}

func (s *EmailSink) Send(ctx context.Context, n Notification) error {
	if n.Account == nil {
		return goerrors.New("notification has no account", goerrors.CategoryBadInput)
	}

	rawTo, ok := n.Account.FieldValue(s.toField)
	to, _ := rawTo.(string)
	if !ok || to == "" {
		return goerrors.New("account has no recipient address", goerrors.CategoryOperation).
			WithMetadata(map[string]any{"field": s.toField})
	}

	tplCtx := pongo2.Context{
		"token":   n.Token,
		"account": n.Account,
	}

	subject, err := s.subject.Execute(tplCtx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to render subject template")
	}

	body, err := s.body.Execute(tplCtx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to render body template")
	}

	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "invalid sender address")
	}
	if err := msg.To(to); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "invalid recipient address")
	}
	msg.Subject(strings.TrimSpace(subject))
	msg.SetBodyString(mail.TypeTextHTML, body)

	if err := s.mailer.Send(ctx, msg); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "notification delivery failed")
	}

	return nil
}
