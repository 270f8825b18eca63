package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserTag(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"legacy discriminator", User{Username: "alice", Discriminator: "0420"}, "alice#0420"},
		{"pomelo username", User{Username: "bob", Discriminator: "0"}, "bob"},
		{"no discriminator", User{Username: "carol"}, "carol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.Tag())
		})
	}
}

func TestMentions(t *testing.T) {
	assert.Equal(t, "<@42>", User{ID: "42"}.Mention())
	assert.Equal(t, "<#99>", Channel{ID: "99"}.Mention())
}

func TestMessageURL(t *testing.T) {
	assert.Equal(t, "https://discord.com/channels/1/2/3", MessageURL("1", "2", "3"))
	assert.Equal(t, "https://discord.com/channels/@me/2/3", MessageURL("", "2", "3"))
}

func TestParseWebhookCredential(t *testing.T) {
	cred, err := ParseWebhookCredential("123/abc")
	require.NoError(t, err)
	assert.Equal(t, WebhookCredential{ID: "123", Token: "abc"}, cred)
	assert.Equal(t, "123/abc", cred.String())

	cred, err = ParseWebhookCredential("  456/def\n")
	require.NoError(t, err)
	assert.Equal(t, "456", cred.ID)

	for _, bad := range []string{"", "123", "/abc", "123/", "1/2/3"} {
		t.Run(bad, func(t *testing.T) {
			_, err := ParseWebhookCredential(bad)
			assert.Error(t, err)
		})
	}
}

func TestAPIErrorIs(t *testing.T) {
	tooLong := &APIError{Code: CodeInvalidFormBody, Message: "Invalid Form Body"}
	blocked := &APIError{Code: CodeCannotMessageUser, Message: "Cannot send messages to this user"}
	other := &APIError{Code: 50013, Message: "Missing Permissions"}

	assert.True(t, errors.Is(tooLong, ErrPayloadTooLong))
	assert.False(t, errors.Is(tooLong, ErrRecipientUnreachable))

	wrapped := fmt.Errorf("sending: %w", blocked)
	assert.True(t, errors.Is(wrapped, ErrRecipientUnreachable))
	assert.False(t, errors.Is(wrapped, ErrPayloadTooLong))

	assert.False(t, errors.Is(other, ErrPayloadTooLong))
	assert.False(t, errors.Is(other, ErrRecipientUnreachable))
	assert.Contains(t, other.Error(), "50013")
}

func TestSourceMessageJSON(t *testing.T) {
	msg := SourceMessage{
		ID:      "m1",
		URL:     MessageURL("g", "c", "m1"),
		Content: "hello <:wave:1>",
		Author:  User{ID: "u1", Username: "alice"},
		Member:  &Member{DisplayName: "Alice"},
		Attachments: []Attachment{
			{URL: "https://cdn.example/a.png", Filename: "a.png"},
		},
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"displayName":"Alice"`)
	assert.NotContains(t, string(data), `"embeds"`)
}
