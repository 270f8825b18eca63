// Package eventlog reports operational events to an operations webhook.
//
// Every event is rendered into a domain.RichMessage and handed to a Poster
// on its own goroutine, so Log never waits on the network. Post failures go
// to the console logger only; they are never fed back into Log.
package eventlog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/soyeahso/relaybot/internal/color"
	"github.com/soyeahso/relaybot/internal/domain"
	"github.com/soyeahso/relaybot/internal/logging"
)

const defaultPostTimeout = 15 * time.Second

// spacer widens guild notifications to a fixed embed width.
var spacer = "\u200b" + strings.Repeat(" ", 58) + "\u200b"

// Poster delivers a rendered notification to the operations webhook.
type Poster interface {
	Post(ctx context.Context, msg domain.RichMessage) error
}

// Event is one of DevEvent, ErrorEvent, WarnEvent, CustomEvent,
// GuildJoinEvent or GuildLeaveEvent.
type Event interface {
	Kind() Kind
}

// DevEvent is printed to the console when development mode is on.
type DevEvent struct {
	Payload any
}

// ErrorEvent reports a failure. Payload may be any Go value.
type ErrorEvent struct {
	Subtype Subtype
	Payload any
}

// WarnEvent is an untitled warning.
type WarnEvent struct {
	Text string
}

// CustomEvent is a caller-specified notification.
type CustomEvent struct {
	Title  string
	Color  color.Tag
	Text   string
	Footer string
}

// GuildJoinEvent reports that the bot was added to a guild.
type GuildJoinEvent struct {
	Guild domain.Guild
}

// GuildLeaveEvent reports that the bot was removed from a guild.
type GuildLeaveEvent struct {
	Guild domain.Guild
}

func (DevEvent) Kind() Kind        { return KindDev }
func (ErrorEvent) Kind() Kind      { return KindError }
func (WarnEvent) Kind() Kind       { return KindWarn }
func (CustomEvent) Kind() Kind     { return KindCustom }
func (GuildJoinEvent) Kind() Kind  { return KindGuildJoin }
func (GuildLeaveEvent) Kind() Kind { return KindGuildLeave }

// Logger sends operational events to the operations webhook. A nil Poster
// keeps everything on the console.
type Logger struct {
	poster  Poster
	console *logging.Logger
	dev     bool
	timeout time.Duration
	wg      sync.WaitGroup
}

// New creates an event logger. It is built once at process start and lives
// for the life of the process.
func New(poster Poster, console *logging.Logger, dev bool) *Logger {
	return &Logger{
		poster:  poster,
		console: console.Sub("eventlog"),
		dev:     dev,
		timeout: defaultPostTimeout,
	}
}

// Log renders and dispatches an event. It returns before the webhook post
// completes.
func (l *Logger) Log(ev Event) {
	if ev == nil {
		return
	}
	if dev, ok := ev.(DevEvent); ok {
		if l.dev {
			l.console.Info().Str("payload", Serialize(ValueOf(dev.Payload))).Msg("dev")
		}
		return
	}

	msg, ok := Render(ev)
	if !ok {
		l.console.Warn().Str("kind", ev.Kind().String()).Msg("dropping event of unknown kind")
		return
	}
	l.post(ev.Kind(), msg)
}

// Dev prints payload to the console in development mode.
func (l *Logger) Dev(payload any) { l.Log(DevEvent{Payload: payload}) }

// Error reports a failure under the given subtype.
func (l *Logger) Error(subtype Subtype, payload any) {
	l.Log(ErrorEvent{Subtype: subtype, Payload: payload})
}

// Warn reports a warning.
func (l *Logger) Warn(text string) { l.Log(WarnEvent{Text: text}) }

// GuildJoin reports a guild join.
func (l *Logger) GuildJoin(g domain.Guild) { l.Log(GuildJoinEvent{Guild: g}) }

// GuildLeave reports a guild leave.
func (l *Logger) GuildLeave(g domain.Guild) { l.Log(GuildLeaveEvent{Guild: g}) }

// Wait blocks until every pending webhook post has finished.
func (l *Logger) Wait() {
	l.wg.Wait()
}

// Render builds the notification for an event. Dev events have no
// notification and report false.
func Render(ev Event) (domain.RichMessage, bool) {
	switch e := ev.(type) {
	case ErrorEvent:
		return domain.RichMessage{
			Title:       e.Subtype.Title(),
			Color:       color.Resolve(color.Error),
			Description: "```json\n" + Serialize(ValueOf(e.Payload)) + "\n```",
		}, true
	case WarnEvent:
		return domain.RichMessage{
			Color:       color.Resolve(color.Warn),
			Description: e.Text,
		}, true
	case CustomEvent:
		return domain.RichMessage{
			Title:       e.Title,
			Color:       color.Resolve(e.Color),
			Description: e.Text,
			Footer:      e.Footer,
		}, true
	case GuildJoinEvent:
		return domain.RichMessage{
			Title:       "Joined Guild",
			Color:       color.Resolve(color.OK),
			Description: guildSummary(":white_check_mark:", e.Guild),
		}, true
	case GuildLeaveEvent:
		return domain.RichMessage{
			Title:       "Left Guild",
			Color:       color.Resolve(color.Warn),
			Description: guildSummary(":regional_indicator_x:", e.Guild),
		}, true
	default:
		return domain.RichMessage{}, false
	}
}

func guildSummary(icon string, g domain.Guild) string {
	return fmt.Sprintf("%s  **%s**\n```md\n> %s\n@%s\n```", icon, g.Name, g.ID, g.OwnerTag) +
		spacer + spacer
}

func (l *Logger) post(kind Kind, msg domain.RichMessage) {
	if l.poster == nil {
		l.console.Info().
			Str("kind", kind.String()).
			Str("title", msg.Title).
			Str("text", msg.Description).
			Msg("event")
		return
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				l.console.Error().Interface("panic", r).Msg("ops webhook poster panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()

		if err := l.poster.Post(ctx, msg); err != nil {
			l.console.Error().
				Err(err).
				Str("kind", kind.String()).
				Str("title", msg.Title).
				Msg("ops webhook post failed")
		}
	}()
}
