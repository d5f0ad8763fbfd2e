package email

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"fmt"
	"math/big"
	"net"
	"net/smtp"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendVerificationEmail(ctx context.Context, toEmail, toName, token string) error
	SendWelcomeEmail(ctx context.Context, toEmail, toName string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
	// BaseURL is where the API is reachable, used for verification links
	BaseURL string
	// TokenTTL is quoted in the verification email
	TokenTTL time.Duration
}

// EmailServiceImpl implements EmailService over SMTP
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	return &EmailServiceImpl{
		config: config,
		logger: logger,
	}
}

// enabled reports whether credentials are configured. Without them mails are
// logged instead of sent.
func (s *EmailServiceImpl) enabled() bool {
	return s.config.Host != "" && s.config.Username != "" && s.config.Password != ""
}

// VerificationURL builds the link a user follows to verify their address
func (s *EmailServiceImpl) VerificationURL(token string) string {
	return fmt.Sprintf("%s/api/v1/auth/verify-email?token=%s", strings.TrimRight(s.config.BaseURL, "/"), url.QueryEscape(token))
}

// SendVerificationEmail sends an email with a verification link/token
func (s *EmailServiceImpl) SendVerificationEmail(ctx context.Context, toEmail, toName, token string) error {
	verificationURL := s.VerificationURL(token)

	if !s.enabled() {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("token", token).
			Str("verificationURL", verificationURL).
			Msg("SMTP not configured, verification email not sent")
		return nil
	}

	hours := int(s.config.TokenTTL.Hours())
	if hours <= 0 {
		hours = 24
	}

	body := fmt.Sprintf(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2 style="color: #333;">Welcome to nhance!</h2>
		<p>Hello %s,</p>
		<p>Please confirm your email address to start browsing study materials.</p>
		<div style="text-align: center; margin: 30px 0;">
			<a href="%s" style="background-color: #4a86e8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Verify Email</a>
		</div>
		<p>Or use this verification code: <strong>%s</strong></p>
		<p>The link and code expire in %d hours.</p>
		<p>If you did not create an nhance account, ignore this email.</p>
	</div>
</body>
</html>`, toName, verificationURL, token, hours)

	return s.sendHTMLEmail(ctx, toEmail, "Verify your email address - nhance", body)
}

// SendWelcomeEmail sends a welcome email to a newly verified user
func (s *EmailServiceImpl) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled() {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("toName", toName).
			Msg("SMTP not configured, welcome email not sent")
		return nil
	}

	body := fmt.Sprintf(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2 style="color: #333;">You're all set, %s</h2>
		<p>Your email has been verified. Log in to pick your semester and start studying.</p>
	</div>
</body>
</html>`, toName)

	return s.sendHTMLEmail(ctx, toEmail, "Welcome to nhance", body)
}

// buildMessage renders headers and body in a stable order
func (s *EmailServiceImpl) buildMessage(toEmail, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", toEmail)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

func (s *EmailServiceImpl) sendHTMLEmail(ctx context.Context, toEmail, subject, htmlBody string) error {
	serverAddress := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	message := s.buildMessage(toEmail, subject, htmlBody)

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	var (
		conn net.Conn
		err  error
	)
	if s.config.UseTLS {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: s.config.Host}}
		conn, err = tlsDialer.DialContext(ctx, "tcp", serverAddress)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", serverAddress)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		conn.Close()
		s.logger.Error().Err(err).Msg("Failed to create SMTP client")
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if !s.config.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err = client.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}

	if err = client.Auth(smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}

// GenerateVerificationToken returns a 32 character alphanumeric token
func GenerateVerificationToken() (string, error) {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, 32)

	limit := big.NewInt(int64(len(chars)))
	for i := range result {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate verification token: %w", err)
		}
		result[i] = chars[n.Int64()]
	}

	return string(result), nil
}
