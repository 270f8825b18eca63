// Package forward resolves configured forward targets to live destinations.
package forward

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/soyeahso/relaybot/internal/domain"
	"github.com/soyeahso/relaybot/internal/logging"
)

// DefaultEnvPrefix is the environment prefix for destination webhooks.
const DefaultEnvPrefix = "DISCORD_WEBHOOK"

// Lookup is the slice of the platform the resolver needs.
type Lookup interface {
	Channel(ctx context.Context, id string) (domain.Channel, bool)
	CanWrite(ctx context.Context, channelID string) bool
	DirectChannel(ctx context.Context, userID string) (domain.Channel, error)
}

// Credentials finds the webhook registered for a destination.
type Credentials interface {
	Webhook(targetID string) (domain.WebhookCredential, bool)
}

// EnvCredentials reads webhook credentials from <Prefix>_<channelID>
// variables holding "<webhookID>/<webhookToken>".
type EnvCredentials struct {
	Prefix   string
	LookupFn func(string) (string, bool) // defaults to os.LookupEnv
	Log      *logging.Logger
}

// Webhook returns the credential for targetID. Malformed values are ignored.
func (e EnvCredentials) Webhook(targetID string) (domain.WebhookCredential, bool) {
	prefix := e.Prefix
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	lookup := e.LookupFn
	if lookup == nil {
		lookup = os.LookupEnv
	}

	key := prefix + "_" + targetID
	raw, ok := lookup(key)
	if !ok || raw == "" {
		return domain.WebhookCredential{}, false
	}
	cred, err := domain.ParseWebhookCredential(raw)
	if err != nil {
		if e.Log != nil {
			e.Log.Warn().Err(err).Str("env", key).Msg("ignoring malformed webhook credential")
		}
		return domain.WebhookCredential{}, false
	}
	return cred, true
}

// Resolution is a resolved forward destination.
type Resolution struct {
	Channel  domain.Channel
	Webhook  *domain.WebhookCredential
	Writable bool
}

// UsesWebhook reports whether delivery goes through the destination webhook.
func (r Resolution) UsesWebhook() bool { return r.Webhook != nil }

// Resolver turns a target ID into a Resolution.
type Resolver struct {
	lookup Lookup
	creds  Credentials
	log    *logging.Logger
}

// NewResolver creates a forward resolver.
func NewResolver(lookup Lookup, creds Credentials, log *logging.Logger) *Resolver {
	return &Resolver{
		lookup: lookup,
		creds:  creds,
		log:    log.Sub("forward"),
	}
}

// Resolve looks targetID up in live channel state. Targets of the form
// "@<userID>" resolve to the user's DM channel.
//
// A webhook credential wins over the write check. Without one, an
// unwritable destination fails with domain.ErrCannotWrite; the returned
// Resolution still carries the channel so callers can name it.
func (r *Resolver) Resolve(ctx context.Context, targetID string) (Resolution, error) {
	ch, err := r.channel(ctx, targetID)
	if err != nil {
		r.log.Debug().Err(err).Str("target", targetID).Msg("forward target not found")
		return Resolution{}, err
	}

	res := Resolution{Channel: ch, Writable: true}
	if ch.Kind == domain.ChannelKindText {
		res.Writable = r.lookup.CanWrite(ctx, ch.ID)
	}

	if r.creds != nil {
		if cred, ok := r.creds.Webhook(targetID); ok {
			res.Webhook = &cred
			r.log.Debug().Str("target", targetID).Msg("forwarding through webhook")
			return res, nil
		}
	}

	if !res.Writable {
		return res, fmt.Errorf("forward to %s: %w", ch.ID, domain.ErrCannotWrite)
	}
	return res, nil
}

func (r *Resolver) channel(ctx context.Context, targetID string) (domain.Channel, error) {
	if targetID == "" {
		return domain.Channel{}, domain.ErrInvalidChannel
	}
	if userID, ok := strings.CutPrefix(targetID, "@"); ok {
		if userID == "" {
			return domain.Channel{}, domain.ErrInvalidChannel
		}
		ch, err := r.lookup.DirectChannel(ctx, userID)
		if err != nil {
			return domain.Channel{}, fmt.Errorf("%w: %w", domain.ErrInvalidChannel, err)
		}
		return ch, nil
	}

	ch, ok := r.lookup.Channel(ctx, targetID)
	if !ok {
		return domain.Channel{}, domain.ErrInvalidChannel
	}
	return ch, nil
}
