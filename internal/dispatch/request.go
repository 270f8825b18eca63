package dispatch

import (
	"github.com/soyeahso/relaybot/internal/color"
	"github.com/soyeahso/relaybot/internal/domain"
)

// Request is one outbound relay built from an inbound message.
type Request struct {
	Title  string
	Text   string
	Fields []domain.Field
	Color  color.Tag
	Footer string

	// Author overrides the source author shown on the message. The member
	// display name of the source message still applies.
	Author     *domain.User
	ShowAuthor bool

	// ForwardTo is a channel ID, or "@<userID>" for a DM. Empty means the
	// message is posted back to Channel.
	ForwardTo string

	// CanWrite reports whether the bot may post in Channel.
	CanWrite bool

	Channel domain.Channel
	Source  domain.SourceMessage
}

// Route is how a request ended up being handled.
type Route string

const (
	RouteDenied   Route = "denied"   // bot cannot write to the origin; guild owner notified
	RouteRejected Route = "rejected" // forward target unusable; origin notified
	RouteSkipped  Route = "skipped"  // nothing to send
	RouteDirect   Route = "direct"
	RouteForward  Route = "forward"
	RouteWebhook  Route = "webhook"
)

// Outcome reports what Deliver did. Deliver never returns an error; a
// failed delivery carries it in Err after it has been logged or notified.
type Outcome struct {
	ID          string
	Route       Route
	ChannelID   string
	Identity    *domain.Identity
	Embeds      int
	Attachments int
	Err         error
}

// Delivered reports whether the main message reached its destination.
func (o Outcome) Delivered() bool {
	switch o.Route {
	case RouteDirect, RouteForward, RouteWebhook:
		return o.Err == nil
	}
	return false
}
