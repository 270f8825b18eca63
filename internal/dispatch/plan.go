package dispatch

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/soyeahso/relaybot/internal/domain"
	"github.com/soyeahso/relaybot/internal/forward"
)

// resolvedPlan is a request with its destination fixed.
type resolvedPlan struct {
	req     Request
	dest    domain.Channel
	origin  *domain.Channel // set when forwarding to a writable destination
	webhook *domain.WebhookCredential
	forward bool
	// destWritable is false only for webhook deliveries into channels the
	// bot cannot post in directly.
	destWritable bool
}

// noticeChannel is where warnings about this delivery are posted.
func (p resolvedPlan) noticeChannel() string {
	if !p.destWritable {
		return p.req.Channel.ID
	}
	return p.dest.ID
}

func (p resolvedPlan) route() Route {
	switch {
	case p.webhook != nil:
		return RouteWebhook
	case p.forward:
		return RouteForward
	default:
		return RouteDirect
	}
}

// localPlan keeps the message in its own channel.
func localPlan(req Request) resolvedPlan {
	return resolvedPlan{req: req, dest: req.Channel, destWritable: true}
}

// forwardPlan narrows a request onto a resolved forward destination.
func forwardPlan(req Request, res forward.Resolution) resolvedPlan {
	p := resolvedPlan{
		req:          req,
		dest:         res.Channel,
		webhook:      res.Webhook,
		forward:      true,
		destWritable: res.Writable,
	}
	if res.Writable {
		origin := req.Channel
		p.origin = &origin
	}
	return p
}

// deliveryPlan is the final, capped and sanitized form of a delivery.
type deliveryPlan struct {
	resolvedPlan
	identity    *domain.Identity
	text        string
	embeds      []domain.Embed
	attachments []domain.Attachment

	droppedEmbeds      int
	droppedAttachments int
}

// carriesMedia reports whether embeds and attachments are sent separately
// from the message box. Local posts never replay them.
func (p deliveryPlan) carriesMedia() bool {
	return p.webhook != nil || p.forward
}

func buildDeliveryPlan(rp resolvedPlan, maxItems int) (deliveryPlan, error) {
	p := deliveryPlan{
		resolvedPlan: rp,
		identity:     resolveIdentity(rp.req, rp.webhook != nil),
	}

	text, err := sanitizeText(rp.req.Text, rp.req.Source.Content)
	p.text = text

	if p.carriesMedia() {
		p.embeds, p.droppedEmbeds = capItems(rp.req.Source.Embeds, maxItems)
		p.attachments, p.droppedAttachments = capItems(rp.req.Source.Attachments, maxItems)
	}
	return p, err
}

// resolveIdentity picks the name and avatar the message is shown under.
// Webhook posts always impersonate the author.
func resolveIdentity(req Request, webhook bool) *domain.Identity {
	if !req.ShowAuthor && !webhook {
		return nil
	}
	author := req.Source.Author
	if req.Author != nil {
		author = *req.Author
	}
	name := author.Username
	if m := req.Source.Member; m != nil && m.DisplayName != "" {
		name = m.DisplayName
	}
	return &domain.Identity{DisplayName: name, AvatarURL: author.AvatarURL}
}

// capItems keeps the first limit items in order and reports how many were dropped.
func capItems[T any](items []T, limit int) ([]T, int) {
	if len(items) <= limit {
		return items, 0
	}
	kept := make([]T, limit)
	copy(kept, items[:limit])
	return kept, len(items) - limit
}

var (
	emojiSite   = regexp.MustCompile(`<[：:].*?>`)
	sourceEmoji = regexp.MustCompile(`<:.*?>`)
)

// sanitizeText repairs markup damaged in translation. The full-width
// mention prefix is normalized, and every custom emoji site is replaced,
// left to right, by the corresponding emoji of the original content. Sites
// beyond the original's emoji count keep their text and yield
// domain.ErrEmojiMismatch.
func sanitizeText(text, original string) (string, error) {
	text = strings.ReplaceAll(text, "<@！", "<@!")

	originals := sourceEmoji.FindAllString(original, -1)
	next, unmatched := 0, 0
	text = emojiSite.ReplaceAllStringFunc(text, func(site string) string {
		if next >= len(originals) {
			unmatched++
			return site
		}
		tok := originals[next]
		next++
		return tok
	})

	if unmatched > 0 {
		return text, fmt.Errorf("%w: %d emoji sites, %d in source",
			domain.ErrEmojiMismatch, next+unmatched, len(originals))
	}
	return text, nil
}
