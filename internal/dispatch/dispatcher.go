// Package dispatch decides how a relay request is delivered and carries it out.
//
// A request moves through fixed stages, each producing a narrower value:
// the write gate, forward resolution (Request -> resolvedPlan), identity,
// sanitization and caps (resolvedPlan -> deliveryPlan), and execution.
// Every failure ends in an event log entry, a notice in a channel, or both.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/soyeahso/relaybot/internal/color"
	"github.com/soyeahso/relaybot/internal/domain"
	"github.com/soyeahso/relaybot/internal/eventlog"
	"github.com/soyeahso/relaybot/internal/forward"
	"github.com/soyeahso/relaybot/internal/logging"
)

// DefaultMaxEmbeds caps embeds and attachments when no limit is configured.
const DefaultMaxEmbeds = 5

// EventLog receives operational events.
type EventLog interface {
	Log(ev eventlog.Event)
}

// TaskRemover removes forward rules from the task store.
type TaskRemover interface {
	RemoveTask(ctx context.Context, originID, recipientKey string) error
}

// Resolver resolves forward targets.
type Resolver interface {
	Resolve(ctx context.Context, targetID string) (forward.Resolution, error)
}

// Config holds dispatcher settings.
type Config struct {
	MaxEmbeds int    // applies to embeds and attachments alike
	BotName   string // used in permission notices to guild owners
}

// Dispatcher delivers relay requests.
type Dispatcher struct {
	platform domain.Platform
	resolver Resolver
	tasks    TaskRemover
	events   EventLog
	cfg      Config
	log      *logging.Logger
}

// New creates a dispatcher.
func New(
	platform domain.Platform,
	resolver Resolver,
	tasks TaskRemover,
	events EventLog,
	cfg Config,
	log *logging.Logger,
) *Dispatcher {
	if cfg.MaxEmbeds <= 0 {
		cfg.MaxEmbeds = DefaultMaxEmbeds
	}
	if cfg.BotName == "" {
		cfg.BotName = "Relay bot"
	}
	return &Dispatcher{
		platform: platform,
		resolver: resolver,
		tasks:    tasks,
		events:   events,
		cfg:      cfg,
		log:      log.Sub("dispatch"),
	}
}

// execution is per-call state of one Deliver.
type execution struct {
	id             string
	log            *logging.Logger
	privacyHandled bool
}

// Deliver carries out one request. It never panics and never returns an
// error to the caller; failures are reported and summarized in the Outcome.
func (d *Dispatcher) Deliver(ctx context.Context, req Request) (out Outcome) {
	ex := &execution{id: uuid.NewString()}
	ex.log = d.log.With("delivery", ex.id)
	out.ID = ex.id

	defer func() {
		if r := recover(); r != nil {
			ex.log.Error().Interface("panic", r).Msg("delivery panicked")
			d.events.Log(eventlog.ErrorEvent{Subtype: eventlog.SubtypeUncaught, Payload: fmt.Sprint(r)})
			out.Err = fmt.Errorf("delivery %s panicked: %v", ex.id, r)
		}
	}()

	if !req.CanWrite {
		return d.denyWrite(ctx, ex, req, out)
	}

	rp := localPlan(req)
	if req.ForwardTo != "" {
		res, err := d.resolver.Resolve(ctx, req.ForwardTo)
		if err != nil {
			return d.rejectForward(ctx, ex, req, res, err, out)
		}
		rp = forwardPlan(req, res)
	}

	out.Route = rp.route()
	out.ChannelID = rp.dest.ID

	if len(req.Text) <= 1 {
		ex.log.Debug().Str("channel", rp.dest.ID).Msg("nothing to send")
		out.Route = RouteSkipped
		return out
	}

	plan, err := buildDeliveryPlan(rp, d.cfg.MaxEmbeds)
	if err != nil {
		ex.log.Warn().Err(err).Msg("text sanitization incomplete")
		d.events.Log(eventlog.ErrorEvent{Payload: err})
	}
	out.Identity = plan.identity
	out.Embeds = len(plan.embeds)
	out.Attachments = len(plan.attachments)

	d.warnCaps(ctx, ex, plan)

	if plan.webhook != nil {
		out.Err = d.sendWebhook(ctx, ex, plan)
	} else {
		out.Err = d.sendDirect(ctx, ex, plan)
	}

	if out.Err == nil {
		ex.log.Info().
			Str("route", string(out.Route)).
			Str("channel", out.ChannelID).
			Int("embeds", out.Embeds).
			Int("attachments", out.Attachments).
			Msg("delivered")
	}
	return out
}

// denyWrite tells the guild owner the bot cannot post in the origin channel.
func (d *Dispatcher) denyWrite(ctx context.Context, ex *execution, req Request, out Outcome) Outcome {
	out.Route = RouteDenied
	out.Err = fmt.Errorf("channel %s: %w", req.Channel.ID, domain.ErrCannotWrite)

	if req.Channel.OwnerID == "" {
		ex.log.Warn().Str("channel", req.Channel.ID).Msg("cannot write and no guild owner to notify")
		d.events.Log(eventlog.ErrorEvent{Payload: out.Err})
		return out
	}

	ex.log.Info().
		Str("channel", req.Channel.ID).
		Str("owner", req.Channel.OwnerID).
		Msg("missing write permission, notifying guild owner")

	if err := d.platform.DirectMessage(ctx, req.Channel.OwnerID, writeDeniedNotice(d.cfg.BotName, req.Channel)); err != nil {
		d.events.Log(eventlog.ErrorEvent{Payload: err})
	}
	return out
}

// rejectForward reports an unusable forward target back in the origin channel.
func (d *Dispatcher) rejectForward(
	ctx context.Context,
	ex *execution,
	req Request,
	res forward.Resolution,
	err error,
	out Outcome,
) Outcome {
	out.Route = RouteRejected
	out.ChannelID = req.Channel.ID
	out.Err = err

	text := noticeInvalidChannel
	if errors.Is(err, domain.ErrCannotWrite) {
		text = destinationDeniedNotice(res.Channel)
	}

	ex.log.Info().Err(err).Str("target", req.ForwardTo).Msg("forward target rejected")
	d.sendNotice(ctx, ex, req.Channel.ID, text, color.Error)
	return out
}

// warnCaps posts one warning per capped item kind before the truncated send.
func (d *Dispatcher) warnCaps(ctx context.Context, ex *execution, plan deliveryPlan) {
	if plan.droppedAttachments > 0 {
		d.sendNotice(ctx, ex, plan.noticeChannel(),
			attachmentCapNotice(d.cfg.MaxEmbeds, plan.droppedAttachments), color.Warn)
	}
	if plan.droppedEmbeds > 0 {
		d.sendNotice(ctx, ex, plan.noticeChannel(),
			embedCapNotice(d.cfg.MaxEmbeds, plan.droppedEmbeds), color.Warn)
	}
}

func (d *Dispatcher) sendWebhook(ctx context.Context, ex *execution, plan deliveryPlan) error {
	post := domain.WebhookPost{
		Content:     plan.text + sourceLink(plan.req.Source.URL),
		Embeds:      plan.embeds,
		Attachments: plan.attachments,
	}
	if plan.identity != nil {
		post.Username = plan.identity.DisplayName
		post.AvatarURL = plan.identity.AvatarURL
	}

	if err := d.platform.SendWebhook(ctx, *plan.webhook, post); err != nil {
		d.handleSendError(ctx, ex, plan, err)
		return err
	}
	return nil
}

func (d *Dispatcher) sendDirect(ctx context.Context, ex *execution, plan deliveryPlan) error {
	req := plan.req
	msg := domain.RichMessage{
		Title:       req.Title,
		Description: plan.text,
		Color:       color.Resolve(req.Color),
		Fields:      req.Fields,
		Author:      plan.identity,
		Footer:      req.Footer,
	}

	if err := d.platform.SendMessage(ctx, plan.dest.ID, msg); err != nil {
		d.handleSendError(ctx, ex, plan, err)
		return err
	}

	if !plan.forward {
		return nil
	}

	// Forwarded embeds are replayed as bare links so the platform unfurls them.
	for _, e := range plan.embeds {
		if e.URL == "" {
			continue
		}
		if err := d.platform.SendText(ctx, plan.dest.ID, e.URL); err != nil {
			d.handleSendError(ctx, ex, plan, err)
		}
	}
	for _, att := range plan.attachments {
		if err := d.platform.SendFile(ctx, plan.dest.ID, att); err != nil {
			d.handleSendError(ctx, ex, plan, err)
		}
	}
	return nil
}

// sendFailure is the event payload for a rejected send.
type sendFailure struct {
	Delivery  string `json:"delivery"`
	Channel   string `json:"channel"`
	Recipient string `json:"recipient,omitempty"`
	Error     error  `json:"error"`
}

// handleSendError logs a rejected send and reacts to the codes that need it.
func (d *Dispatcher) handleSendError(ctx context.Context, ex *execution, plan deliveryPlan, err error) {
	failure := sendFailure{Delivery: ex.id, Channel: plan.dest.ID, Error: err}
	if r := plan.dest.Recipient; r != nil {
		failure.Recipient = "@" + r.Tag()
	}
	ex.log.Warn().Err(err).Str("channel", plan.dest.ID).Msg("send rejected")
	d.events.Log(eventlog.ErrorEvent{Payload: failure})

	switch {
	case errors.Is(err, domain.ErrPayloadTooLong):
		if serr := d.platform.SendText(ctx, plan.noticeChannel(), noticeTooLong); serr != nil {
			d.events.Log(eventlog.ErrorEvent{Payload: serr})
		}

	case errors.Is(err, domain.ErrRecipientUnreachable):
		if plan.origin == nil || plan.dest.Recipient == nil || ex.privacyHandled {
			return
		}
		ex.privacyHandled = true
		d.stopForwardingTo(ctx, ex, *plan.origin, *plan.dest.Recipient)
	}
}

// stopForwardingTo removes the rule that relays origin to a user who
// blocks the bot, then explains why in the origin channel.
func (d *Dispatcher) stopForwardingTo(ctx context.Context, ex *execution, origin domain.Channel, user domain.User) {
	key := "@" + user.ID
	if err := d.tasks.RemoveTask(ctx, origin.ID, key); err != nil {
		ex.log.Error().Err(err).Str("origin", origin.ID).Str("recipient", key).Msg("removing forward rule failed")
		d.events.Log(eventlog.ErrorEvent{Subtype: eventlog.SubtypeDB, Payload: err})
		return
	}

	ex.log.Info().Str("origin", origin.ID).Str("recipient", key).Msg("forward rule removed, recipient blocks direct messages")
	if err := d.platform.SendText(ctx, origin.ID, privacyNotice(user)); err != nil {
		d.events.Log(eventlog.ErrorEvent{Payload: err})
	}
}

// sendNotice posts a colored notice box. Failures are logged only.
func (d *Dispatcher) sendNotice(ctx context.Context, ex *execution, channelID, text string, tag color.Tag) {
	msg := domain.RichMessage{Description: text, Color: color.Resolve(tag)}
	if err := d.platform.SendMessage(ctx, channelID, msg); err != nil {
		ex.log.Warn().Err(err).Str("channel", channelID).Msg("notice rejected")
		d.events.Log(eventlog.ErrorEvent{Payload: err})
	}
}
