package delivery

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/stepauth/stepauth/internal/identity"
	"github.com/stepauth/stepauth/internal/models"

	"github.com/wneessen/go-mail"
)

const emailSubject = "Your verification code"

const emailTextTemplate = `Dear user,

Your one-time passcode is: %s

This code is valid for the next 10 minutes. Please do not share it with anyone.

If you did not request this code, please contact support immediately.
`

const emailHTMLTemplate = `<html><body>
<p>Dear user,</p>
<p>Your one-time passcode is: <b>%s</b></p>
<p>This code is valid for the next 10 minutes. Please do not share it with anyone.</p>
<p>If you did not request this code, please contact support immediately.</p>
<hr/>
<p style="font-size:small; color:gray;">
  This email may contain confidential information and is intended only for the recipient.
</p>
</body></html>`

// EmailChannel delivers passcodes over SMTP.
type EmailChannel struct {
	client *mail.Client
	from   string
}

func NewEmailChannel(config models.SMTPDeliveryConfiguration) (*EmailChannel, error) {
	opts := []mail.Option{
		mail.WithPort(config.Port),
	}

	if config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(config.Username),
			mail.WithPassword(config.Password),
		)
	}

	if config.EnableTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		if config.SkipVerifyTLS {
			opts = append(opts, mail.WithTLSConfig(&tls.Config{InsecureSkipVerify: true})) //nolint:gosec // operator opt-in for internal relays
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(config.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return &EmailChannel{client: client, from: config.FromAddress}, nil
}

func (c *EmailChannel) Name() string {
	return ChannelEmail
}

func (c *EmailChannel) Target(account identity.Account) string {
	return account.Email
}

func (c *EmailChannel) Send(ctx context.Context, target, code string) error {
	msg := mail.NewMsg()
	if err := msg.From(c.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(target); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject(emailSubject)
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(emailTextTemplate, code))
	msg.AddAlternativeString(mail.TypeTextHTML, fmt.Sprintf(emailHTMLTemplate, code))

	if err := c.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
