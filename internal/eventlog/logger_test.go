package eventlog

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/soyeahso/relaybot/internal/color"
	"github.com/soyeahso/relaybot/internal/domain"
	"github.com/soyeahso/relaybot/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePoster records posted notifications.
type fakePoster struct {
	mu    sync.Mutex
	posts []domain.RichMessage
	err   error
}

func (f *fakePoster) Post(_ context.Context, msg domain.RichMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, msg)
	return f.err
}

func (f *fakePoster) all() []domain.RichMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.RichMessage(nil), f.posts...)
}

func newTestLogger(poster Poster, dev bool) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(poster, logging.New(&buf, "debug"), dev), &buf
}

func TestLogger_ErrorWithSubtype(t *testing.T) {
	poster := &fakePoster{}
	l, _ := newTestLogger(poster, false)

	l.Error(SubtypeSend, map[string]any{"code": 50035})
	l.Wait()

	posts := poster.all()
	require.Len(t, posts, 1)
	assert.Equal(t, ":postbox:  Discord - send", posts[0].Title)
	assert.Equal(t, color.Resolve(color.Error), posts[0].Color)
	assert.Equal(t, "```json\n{code: 50035}\n```", posts[0].Description)
}

func TestLogger_ErrorWithoutSubtype(t *testing.T) {
	poster := &fakePoster{}
	l, _ := newTestLogger(poster, false)

	l.Log(ErrorEvent{Payload: errors.New("socket closed")})
	l.Wait()

	posts := poster.all()
	require.Len(t, posts, 1)
	assert.Empty(t, posts[0].Title)
	assert.Contains(t, posts[0].Description, `"socket closed"`)
}

func TestLogger_Warn(t *testing.T) {
	poster := &fakePoster{}
	l, _ := newTestLogger(poster, false)

	l.Warn("shard reconnecting")
	l.Wait()

	posts := poster.all()
	require.Len(t, posts, 1)
	assert.Empty(t, posts[0].Title)
	assert.Equal(t, "shard reconnecting", posts[0].Description)
	assert.Equal(t, color.Resolve(color.Warn), posts[0].Color)
}

func TestLogger_Custom(t *testing.T) {
	poster := &fakePoster{}
	l, _ := newTestLogger(poster, false)

	l.Log(CustomEvent{Title: "Deploy", Color: color.OK, Text: "v1.2.0 live", Footer: "ci"})
	l.Wait()

	posts := poster.all()
	require.Len(t, posts, 1)
	assert.Equal(t, domain.RichMessage{
		Title:       "Deploy",
		Color:       color.Resolve(color.OK),
		Description: "v1.2.0 live",
		Footer:      "ci",
	}, posts[0])
}

func TestLogger_GuildJoinAndLeave(t *testing.T) {
	poster := &fakePoster{}
	l, _ := newTestLogger(poster, false)
	g := domain.Guild{ID: "555", Name: "Relay Lab", OwnerTag: "alice#0001"}

	l.GuildJoin(g)
	l.Wait()
	l.GuildLeave(g)
	l.Wait()

	posts := poster.all()
	require.Len(t, posts, 2)

	assert.Equal(t, "Joined Guild", posts[0].Title)
	assert.Equal(t, color.Resolve(color.OK), posts[0].Color)
	assert.True(t, strings.HasPrefix(posts[0].Description,
		":white_check_mark:  **Relay Lab**\n```md\n> 555\n@alice#0001\n```"))

	assert.Equal(t, "Left Guild", posts[1].Title)
	assert.Equal(t, color.Resolve(color.Warn), posts[1].Color)
	assert.Contains(t, posts[1].Description, ":regional_indicator_x:  **Relay Lab**")
}

func TestLogger_DevOnlyInDevMode(t *testing.T) {
	poster := &fakePoster{}

	l, buf := newTestLogger(poster, false)
	l.Dev("hidden payload")
	l.Wait()
	assert.Empty(t, poster.all())
	assert.NotContains(t, buf.String(), "hidden payload")

	l, buf = newTestLogger(poster, true)
	l.Dev(map[string]int{"shown": 1})
	l.Wait()
	assert.Empty(t, poster.all(), "dev events never reach the webhook")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_PostFailureStaysOnConsole(t *testing.T) {
	poster := &fakePoster{err: errors.New("webhook 401")}
	l, buf := newTestLogger(poster, false)

	l.Warn("first")
	l.Wait()

	assert.Len(t, poster.all(), 1, "a failed post must not be re-logged through the webhook")
	assert.Contains(t, buf.String(), "ops webhook post failed")
	assert.Contains(t, buf.String(), "webhook 401")
}

func TestLogger_NilPosterWritesConsole(t *testing.T) {
	l, buf := newTestLogger(nil, false)

	l.Warn("no webhook configured")
	l.Wait()

	assert.Contains(t, buf.String(), "no webhook configured")
}

func TestLogger_LogReturnsBeforePost(t *testing.T) {
	release := make(chan struct{})
	poster := &blockingPoster{release: release}
	l, _ := newTestLogger(poster, false)

	l.Warn("slow")
	close(release)
	l.Wait()
	assert.True(t, poster.done)
}

type blockingPoster struct {
	release chan struct{}
	done    bool
}

func (b *blockingPoster) Post(_ context.Context, _ domain.RichMessage) error {
	<-b.release
	b.done = true
	return nil
}

func TestRender_Dev(t *testing.T) {
	_, ok := Render(DevEvent{Payload: "x"})
	assert.False(t, ok)
}

func TestParseKind(t *testing.T) {
	for k, name := range kindNames {
		got, err := ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, k, got)
		assert.Equal(t, name, k.String())
	}

	_, err := ParseKind("verbose")
	assert.Error(t, err)
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestParseSubtype(t *testing.T) {
	assert.Len(t, subtypeNames, 13)

	for st, name := range subtypeNames {
		got, err := ParseSubtype(name)
		require.NoError(t, err)
		assert.Equal(t, st, got)
		assert.NotEmpty(t, st.Title(), "subtype %s needs a title", name)
	}

	got, err := ParseSubtype("")
	require.NoError(t, err)
	assert.Equal(t, SubtypeNone, got)
	assert.Empty(t, SubtypeNone.Title())

	_, err = ParseSubtype("segfault")
	assert.Error(t, err)
}
