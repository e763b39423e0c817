package booktracker

import (
	"crypto/tls"
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/dajohi/goemail"
	"github.com/goliatone/go-errors"
)

const accountVerificationSubject = "Verify your email address"
const accountVerificationBody = `You are receiving this email because this address was used to register an account.

Follow the link below to activate your account. The link is valid for 24 hours.

%s

If you did not register, you can safely ignore this email.
`

const passwordResetSubject = "Reset your password"
const passwordResetBody = `A password reset was requested for your account.

Follow the link below to choose a new password. The link is valid for 15 minutes and can be used once.

%s

If you did not request a reset, you can safely ignore this email.
`

const passwordChangedSubject = "Your password was changed"
const passwordChangedBody = `The password for your account was just changed.

If this was you, no further action is needed. If it was not, reset your password immediately.
`

// SMTPMailer sends account lifecycle emails through an SMTP server. Email is
// considered disabled when any of the required credentials are missing, in
// which case every send is a silent no-op.
type SMTPMailer struct {
	smtp        *goemail.SMTP
	mailName    string
	mailAddress string
	baseURL     string
	disabled    bool
	logger      Logger
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer will create a mailer for the given SMTP host. baseURL is the
// public origin used to build activation and reset links.
func NewSMTPMailer(host, user, password, emailAddress, baseURL string, skipVerify bool) (*SMTPMailer, error) {
	if host == "" || user == "" || password == "" {
		return &SMTPMailer{
			disabled: true,
			logger:   defLogger{},
		}, nil
	}

	h := fmt.Sprintf("smtps://%v:%v@%v", user, password, host)
	u, err := url.Parse(h)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to parse mail host")
	}

	a, err := mail.ParseAddress(emailAddress)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to parse mail address")
	}

	tlsConfig := &tls.Config{
		InsecureSkipVerify: skipVerify,
	}

	smtp, err := goemail.NewSMTP(u.String(), tlsConfig)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create smtp client")
	}

	return &SMTPMailer{
		smtp:        smtp,
		mailName:    a.Name,
		mailAddress: a.Address,
		baseURL:     strings.TrimRight(baseURL, "/"),
		logger:      defLogger{},
	}, nil
}

func (m *SMTPMailer) WithLogger(logger Logger) *SMTPMailer {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// IsEnabled returns whether the mail server is enabled.
func (m *SMTPMailer) IsEnabled() bool {
	return !m.disabled
}

func (m *SMTPMailer) SendAccountVerification(to, hash string) error {
	link := fmt.Sprintf("%s/auth/verify/%s", m.baseURL, hash)
	return m.send(to, accountVerificationSubject, fmt.Sprintf(accountVerificationBody, link))
}

func (m *SMTPMailer) SendPasswordReset(to, hash string) error {
	link := fmt.Sprintf("%s/reset-password/%s", m.baseURL, hash)
	return m.send(to, passwordResetSubject, fmt.Sprintf(passwordResetBody, link))
}

func (m *SMTPMailer) SendPasswordChanged(to string) error {
	return m.send(to, passwordChangedSubject, passwordChangedBody)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	if m.disabled {
		m.logger.Debug("mail disabled, skipping send", "subject", subject)
		return nil
	}

	msg := goemail.NewMessage(m.mailAddress, subject, body)
	msg.SetName(m.mailName)
	msg.AddBCC(to)

	return m.smtp.Send(msg)
}
