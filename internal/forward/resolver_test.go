package forward

import (
	"context"
	"errors"
	"testing"

	"github.com/soyeahso/relaybot/internal/domain"
	"github.com/soyeahso/relaybot/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logging.Logger {
	return logging.New(nil, "silent")
}

// mockLookup is a test double for Lookup.
type mockLookup struct {
	channels map[string]domain.Channel
	writable map[string]bool
	dms      map[string]domain.Channel
}

func (m *mockLookup) Channel(_ context.Context, id string) (domain.Channel, bool) {
	ch, ok := m.channels[id]
	return ch, ok
}

func (m *mockLookup) CanWrite(_ context.Context, id string) bool {
	return m.writable[id]
}

func (m *mockLookup) DirectChannel(_ context.Context, userID string) (domain.Channel, error) {
	ch, ok := m.dms[userID]
	if !ok {
		return domain.Channel{}, errors.New("unknown user")
	}
	return ch, nil
}

func envOf(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func newLookup() *mockLookup {
	return &mockLookup{
		channels: map[string]domain.Channel{
			"100": {ID: "100", Name: "open", Kind: domain.ChannelKindText},
			"200": {ID: "200", Name: "locked", Kind: domain.ChannelKindText},
			"300": {ID: "300", Name: "voice", Kind: domain.ChannelKindVoice},
		},
		writable: map[string]bool{"100": true},
		dms: map[string]domain.Channel{
			"42": {ID: "900", Kind: domain.ChannelKindDM, Recipient: &domain.User{ID: "42", Username: "alice"}},
		},
	}
}

func TestResolve_InvalidChannel(t *testing.T) {
	r := NewResolver(newLookup(), EnvCredentials{LookupFn: envOf(nil)}, testLogger())

	_, err := r.Resolve(context.Background(), "999")
	assert.ErrorIs(t, err, domain.ErrInvalidChannel)

	_, err = r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidChannel)
}

func TestResolve_WritableDirect(t *testing.T) {
	r := NewResolver(newLookup(), EnvCredentials{LookupFn: envOf(nil)}, testLogger())

	res, err := r.Resolve(context.Background(), "100")
	require.NoError(t, err)
	assert.Equal(t, "100", res.Channel.ID)
	assert.True(t, res.Writable)
	assert.False(t, res.UsesWebhook())
}

func TestResolve_WebhookWinsOverPermission(t *testing.T) {
	env := envOf(map[string]string{"DISCORD_WEBHOOK_200": "123/abc"})
	r := NewResolver(newLookup(), EnvCredentials{LookupFn: env}, testLogger())

	res, err := r.Resolve(context.Background(), "200")
	require.NoError(t, err)
	require.True(t, res.UsesWebhook())
	assert.Equal(t, domain.WebhookCredential{ID: "123", Token: "abc"}, *res.Webhook)
	assert.False(t, res.Writable)
}

func TestResolve_UnwritableWithoutWebhook(t *testing.T) {
	r := NewResolver(newLookup(), EnvCredentials{LookupFn: envOf(nil)}, testLogger())

	res, err := r.Resolve(context.Background(), "200")
	assert.ErrorIs(t, err, domain.ErrCannotWrite)
	assert.Equal(t, "200", res.Channel.ID, "failed resolution still names the channel")
}

func TestResolve_NonTextAssumedWritable(t *testing.T) {
	r := NewResolver(newLookup(), EnvCredentials{LookupFn: envOf(nil)}, testLogger())

	res, err := r.Resolve(context.Background(), "300")
	require.NoError(t, err)
	assert.True(t, res.Writable)
}

func TestResolve_DirectMessageTarget(t *testing.T) {
	r := NewResolver(newLookup(), EnvCredentials{LookupFn: envOf(nil)}, testLogger())

	res, err := r.Resolve(context.Background(), "@42")
	require.NoError(t, err)
	assert.Equal(t, domain.ChannelKindDM, res.Channel.Kind)
	require.NotNil(t, res.Channel.Recipient)
	assert.Equal(t, "42", res.Channel.Recipient.ID)

	_, err = r.Resolve(context.Background(), "@77")
	assert.ErrorIs(t, err, domain.ErrInvalidChannel)

	_, err = r.Resolve(context.Background(), "@")
	assert.ErrorIs(t, err, domain.ErrInvalidChannel)
}

func TestEnvCredentials(t *testing.T) {
	env := envOf(map[string]string{
		"RELAY_HOOK_1":      "11/tok",
		"RELAY_HOOK_2":      "garbage",
		"RELAY_HOOK_3":      "",
		"DISCORD_WEBHOOK_4": "44/t4",
	})

	creds := EnvCredentials{Prefix: "RELAY_HOOK", LookupFn: env, Log: testLogger()}

	cred, ok := creds.Webhook("1")
	require.True(t, ok)
	assert.Equal(t, "11", cred.ID)

	_, ok = creds.Webhook("2")
	assert.False(t, ok, "malformed credential is ignored")

	_, ok = creds.Webhook("3")
	assert.False(t, ok)

	_, ok = creds.Webhook("4")
	assert.False(t, ok, "other prefixes are not consulted")

	cred, ok = EnvCredentials{LookupFn: env}.Webhook("4")
	require.True(t, ok)
	assert.Equal(t, "t4", cred.Token)
}

func TestEnvCredentials_ProcessEnv(t *testing.T) {
	t.Setenv("DISCORD_WEBHOOK_555", "5/five")

	cred, ok := EnvCredentials{}.Webhook("555")
	require.True(t, ok)
	assert.Equal(t, domain.WebhookCredential{ID: "5", Token: "five"}, cred)
}
