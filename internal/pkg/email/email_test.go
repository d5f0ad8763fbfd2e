package email

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendVerificationEmail_LogsWhenUnconfigured(t *testing.T) {
	var buf bytes.Buffer
	svc := NewEmailService(SMTPConfig{BaseURL: "http://localhost:8080/"}, zerolog.New(&buf))

	err := svc.SendVerificationEmail(context.Background(), "s@nhance.edu", "S", "tok123")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "tok123")
	assert.Contains(t, out, "http://localhost:8080/api/v1/auth/verify-email?token=tok123")

	require.NoError(t, svc.SendWelcomeEmail(context.Background(), "s@nhance.edu", "S"))
}

func TestBuildMessage(t *testing.T) {
	svc := &EmailServiceImpl{config: SMTPConfig{FromName: "nhance", FromEmail: "no-reply@nhance.edu"}}

	msg := string(svc.buildMessage("s@nhance.edu", "Hi", "<p>body</p>"))
	assert.True(t, strings.HasPrefix(msg, "From: nhance <no-reply@nhance.edu>\r\nTo: s@nhance.edu\r\nSubject: Hi\r\n"))
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>body</p>"))
}

func TestGenerateVerificationToken(t *testing.T) {
	a, err := GenerateVerificationToken()
	require.NoError(t, err)
	b, err := GenerateVerificationToken()
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9]{32}$`), a)
	assert.NotEqual(t, a, b)
}
