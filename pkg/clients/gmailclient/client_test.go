package gmailclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("pantry@example.com", "ada@example.com", "Shift reminder", "See you Saturday")

	assert.Equal(t,
		"From: pantry@example.com\r\n"+
			"To: ada@example.com\r\n"+
			"Subject: Shift reminder\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n"+
			"See you Saturday",
		msg)
}

func TestBuildMessage_NoSenderEncodesSubject(t *testing.T) {
	msg := buildMessage("", "ada@example.com", "Café shift", "body")

	assert.NotContains(t, msg, "From:")
	assert.Contains(t, msg, "Subject: =?utf-8?q?Caf=C3=A9_shift?=\r\n")
}
