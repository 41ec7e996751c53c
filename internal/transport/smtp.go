package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/shaharia-lab/notifyd/internal/storage"
)

// DefaultSendTimeout bounds a single dial-and-send when the factory is not
// given an explicit timeout.
const DefaultSendTimeout = 30 * time.Second

// Message is one rendered outbound message.
type Message struct {
	To      string
	Subject string
	// HTMLBody is sent as text/html.
	HTMLBody string
}

// Client sends messages through one configured transport.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// Factory builds a Client from a transport configuration. Build never
// performs network I/O and cannot fail; a bad host or port surfaces when
// the client sends.
type Factory interface {
	Build(cfg storage.TransportConfig) Client
}

// Settings are the protocol-level parameters of an SMTPClient.
type Settings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Auth enables SMTP AUTH with Username and Password.
	Auth bool
	// StartTLS upgrades the connection with STARTTLS when the server offers it.
	StartTLS bool
	Timeout  time.Duration
}

// SMTPFactory builds SMTPClients backed by go-mail.
type SMTPFactory struct {
	timeout time.Duration
}

// NewSMTPFactory returns a factory whose clients use timeout per send.
// A non-positive timeout selects DefaultSendTimeout.
func NewSMTPFactory(timeout time.Duration) *SMTPFactory {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &SMTPFactory{timeout: timeout}
}

// Build maps cfg onto SMTP settings.
func (f *SMTPFactory) Build(cfg storage.TransportConfig) Client {
	return NewSMTPClient(Settings{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.FromAddress,
		Auth:     cfg.AuthEnabled,
		StartTLS: cfg.SecureTransportEnabled,
		Timeout:  f.timeout,
	})
}

// SMTPClient delivers messages via SMTP using the go-mail library. The
// underlying connection is opened per send.
type SMTPClient struct {
	settings Settings
}

// NewSMTPClient returns a client for settings.
func NewSMTPClient(settings Settings) *SMTPClient {
	return &SMTPClient{settings: settings}
}

// Settings returns the client's protocol settings.
func (c *SMTPClient) Settings() Settings { return c.settings }

// Send dials the server and delivers msg.
func (c *SMTPClient) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(c.settings.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)

	client, err := mail.NewClient(c.settings.Host, c.options()...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if c.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.settings.Timeout)
		defer cancel()
	}
	return client.DialAndSendWithContext(ctx, m)
}

// options translates the settings into go-mail client options.
func (c *SMTPClient) options() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(c.settings.Port),
		mail.WithTLSPolicy(tlsPolicy(c.settings.StartTLS)),
	}
	if c.settings.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(c.settings.Timeout))
	}
	if c.settings.Auth {
		opts = append(opts,
			mail.WithSMTPAuth(authMechanism(c.settings.StartTLS)),
			mail.WithUsername(c.settings.Username),
			mail.WithPassword(c.settings.Password),
		)
	}
	return opts
}

// tlsPolicy converts the STARTTLS flag to a go-mail TLSPolicy.
func tlsPolicy(startTLS bool) mail.TLSPolicy {
	if startTLS {
		return mail.TLSOpportunistic
	}
	return mail.NoTLS
}

// authMechanism selects PLAIN auth. Without STARTTLS the credentials are
// sent on the plain connection, as the server was configured to accept.
// With STARTTLS enabled, PLAIN is refused if the server did not upgrade.
func authMechanism(startTLS bool) mail.SMTPAuthType {
	if startTLS {
		return mail.SMTPAuthPlain
	}
	return mail.SMTPAuthPlainNoEnc
}
