// Package relay connects inbound platform messages to the dispatcher
// through the stored forward rules.
package relay

import (
	"context"
	"strings"
	"sync"

	"github.com/soyeahso/relaybot/internal/color"
	"github.com/soyeahso/relaybot/internal/dispatch"
	"github.com/soyeahso/relaybot/internal/domain"
	"github.com/soyeahso/relaybot/internal/hooks"
	"github.com/soyeahso/relaybot/internal/logging"
	"github.com/soyeahso/relaybot/internal/store"
)

// Rules lists forward rules for an origin channel.
type Rules interface {
	ListByOrigin(ctx context.Context, originID string) ([]store.ForwardRule, error)
}

// Deliverer carries out one relay request.
type Deliverer interface {
	Deliver(ctx context.Context, req dispatch.Request) dispatch.Outcome
}

// Platform is the slice of the platform the router needs.
type Platform interface {
	CanWrite(ctx context.Context, channelID string) bool
	SetStatus(ctx context.Context, status domain.Status, writable bool) error
}

// MessageSource delivers inbound messages to a handler.
type MessageSource interface {
	OnMessage(handler func(domain.InboundMessage))
}

// Router fans inbound messages out to their forward rules.
type Router struct {
	rules      Rules
	dispatcher Deliverer
	platform   Platform
	hooks      *hooks.Manager
	log        *logging.Logger
	inflight   sync.WaitGroup
}

// NewRouter creates a relay router.
func NewRouter(rules Rules, dispatcher Deliverer, platform Platform, hm *hooks.Manager, log *logging.Logger) *Router {
	return &Router{
		rules:      rules,
		dispatcher: dispatcher,
		platform:   platform,
		hooks:      hm,
		log:        log.Sub("relay"),
	}
}

// HandleInbound relays msg along every rule registered for its channel,
// one delivery per rule, and returns the outcomes in rule order.
func (r *Router) HandleInbound(ctx context.Context, msg domain.InboundMessage) []dispatch.Outcome {
	src := msg.Source
	if src.Author.Bot {
		return nil
	}
	if strings.TrimSpace(src.Content) == "" && len(src.Attachments) == 0 {
		return nil
	}

	r.log.Debug().
		Str("channel", msg.Channel.ID).
		Str("from", src.Author.Tag()).
		Str("message", src.ID).
		Msg("inbound message")

	r.hooks.Emit(ctx, hooks.EventMessageReceived, map[string]any{
		"channel": msg.Channel.ID,
		"message": src.ID,
		"author":  src.Author.ID,
	})

	rules, err := r.rules.ListByOrigin(ctx, msg.Channel.ID)
	if err != nil {
		r.log.Error().Err(err).Str("channel", msg.Channel.ID).Msg("listing forward rules failed")
		return nil
	}
	if len(rules) == 0 {
		return nil
	}

	writable := true
	if msg.Channel.Kind == domain.ChannelKindText {
		writable = r.platform.CanWrite(ctx, msg.Channel.ID)
	}

	r.setStatus(ctx, domain.StatusBusy, writable)
	defer r.setStatus(ctx, domain.StatusFree, writable)

	outcomes := make([]dispatch.Outcome, len(rules))
	var wg sync.WaitGroup
	for i, rule := range rules {
		i, rule := i, rule
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = r.dispatcher.Deliver(ctx, buildRequest(msg, rule, writable))
		}()
	}
	wg.Wait()

	for i, out := range outcomes {
		r.report(ctx, msg, rules[i], out)
	}
	return outcomes
}

// buildRequest turns an inbound message and one of its rules into a request.
func buildRequest(msg domain.InboundMessage, rule store.ForwardRule, writable bool) dispatch.Request {
	req := dispatch.Request{
		Text:       msg.Source.Content,
		Color:      color.Default,
		ShowAuthor: rule.ShowAuthor,
		ForwardTo:  rule.Destination,
		CanWrite:   writable,
		Channel:    msg.Channel,
		Source:     msg.Source,
	}
	if msg.Channel.Name != "" {
		req.Footer = "#" + msg.Channel.Name
		if msg.Channel.GuildName != "" {
			req.Footer += " · " + msg.Channel.GuildName
		}
	}
	return req
}

func (r *Router) report(ctx context.Context, msg domain.InboundMessage, rule store.ForwardRule, out dispatch.Outcome) {
	data := map[string]any{
		"delivery":    out.ID,
		"origin":      msg.Channel.ID,
		"destination": rule.Destination,
		"route":       string(out.Route),
	}
	switch {
	case out.Delivered():
		r.hooks.Emit(ctx, hooks.EventMessageRelayed, data)
	case out.Err != nil:
		data["error"] = out.Err.Error()
		r.hooks.Emit(ctx, hooks.EventDeliveryFailed, data)
	}
}

func (r *Router) setStatus(ctx context.Context, status domain.Status, writable bool) {
	if err := r.platform.SetStatus(ctx, status, writable); err != nil {
		r.log.Debug().Err(err).Str("status", string(status)).Msg("presence update failed")
	}
}

// Wire registers the router as the message handler of src. Each message is
// handled on its own goroutine; Wait blocks until they finish.
func (r *Router) Wire(ctx context.Context, src MessageSource) {
	src.OnMessage(func(msg domain.InboundMessage) {
		r.inflight.Add(1)
		go func() {
			defer r.inflight.Done()
			r.HandleInbound(ctx, msg)
		}()
	})
	r.log.Debug().Msg("wired message handler")
}

// Wait blocks until all wired handlers have returned.
func (r *Router) Wait() {
	r.inflight.Wait()
}
