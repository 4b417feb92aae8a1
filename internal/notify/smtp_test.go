package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMIMEPlainMessage(t *testing.T) {
	raw, err := buildMIME("no-reply@cfportal.local", Message{
		To:       []string{"user@example.com"},
		Subject:  "Your portal credentials",
		HTMLBody: "<p>Welcome</p>",
	})
	require.NoError(t, err)

	body := string(raw)
	assert.Contains(t, body, "To: user@example.com")
	assert.Contains(t, body, "Subject: Your portal credentials")
	assert.Contains(t, body, "Content-Type: text/html")
	assert.Contains(t, body, "<p>Welcome</p>")
	assert.NotContains(t, body, "multipart/mixed")
}

func TestBuildMIMEWithAttachment(t *testing.T) {
	raw, err := buildMIME("no-reply@cfportal.local", Message{
		To:       []string{"user@example.com"},
		Subject:  "Linking form",
		HTMLBody: "<p>Form attached</p>",
		Attachments: []Attachment{{
			Filename:    "linking-form.pdf",
			ContentType: "application/pdf",
			Data:        []byte(strings.Repeat("x", 200)),
		}},
	})
	require.NoError(t, err)

	body := string(raw)
	assert.Contains(t, body, "multipart/mixed")
	assert.Contains(t, body, `filename="linking-form.pdf"`)
	assert.Contains(t, body, "Content-Transfer-Encoding: base64")

	// Base64 body lines stay within the RFC line limit.
	for _, line := range strings.Split(body, "\r\n") {
		assert.LessOrEqual(t, len(line), 998)
	}
}
