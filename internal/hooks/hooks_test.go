package hooks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/soyeahso/relaybot/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *Manager {
	return NewManager(logging.New(nil, "silent"))
}

func TestManager_On_And_Emit(t *testing.T) {
	m := testManager()

	var called bool
	m.On(EventBotReady, "test", func(_ context.Context, p Payload) error {
		called = true
		assert.Equal(t, EventBotReady, p.Event)
		return nil
	})

	m.Emit(context.Background(), EventBotReady, nil)
	assert.True(t, called)
}

func TestManager_Emit_Order(t *testing.T) {
	m := testManager()

	var order []string
	m.On(EventMessageReceived, "first", func(_ context.Context, _ Payload) error {
		order = append(order, "first")
		return nil
	})
	m.On(EventMessageReceived, "second", func(_ context.Context, _ Payload) error {
		order = append(order, "second")
		return nil
	})

	m.Emit(context.Background(), EventMessageReceived, nil)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestManager_Emit_WithData(t *testing.T) {
	m := testManager()

	var got Payload
	m.On(EventGuildJoin, "test", func(_ context.Context, p Payload) error {
		got = p
		return nil
	})

	m.Emit(context.Background(), EventGuildJoin, map[string]any{
		"guild":   "g1",
		"members": 42,
	})

	assert.Equal(t, "g1", got.String("guild"))
	assert.Equal(t, "42", got.String("members"))
	assert.Equal(t, "", got.String("missing"))
}

func TestManager_Emit_HandlerErrorAndPanic(t *testing.T) {
	m := testManager()

	var lastCalled bool
	m.On(EventDeliveryFailed, "failing", func(_ context.Context, _ Payload) error {
		return errors.New("handler broke")
	})
	m.On(EventDeliveryFailed, "panicking", func(_ context.Context, _ Payload) error {
		panic("boom")
	})
	m.On(EventDeliveryFailed, "last", func(_ context.Context, _ Payload) error {
		lastCalled = true
		return nil
	})

	assert.NotPanics(t, func() {
		m.Emit(context.Background(), EventDeliveryFailed, nil)
	})
	assert.True(t, lastCalled)
}

func TestManager_Emit_NoHandlers(t *testing.T) {
	m := testManager()
	assert.NotPanics(t, func() {
		m.Emit(context.Background(), EventBotStop, nil)
	})
}

func TestManager_Off(t *testing.T) {
	m := testManager()

	var removed, kept int
	m.On(EventBotReady, "removable", func(_ context.Context, _ Payload) error {
		removed++
		return nil
	})
	m.On(EventBotReady, "keep", func(_ context.Context, _ Payload) error {
		kept++
		return nil
	})

	m.Emit(context.Background(), EventBotReady, nil)
	m.Off(EventBotReady, "removable")
	m.Emit(context.Background(), EventBotReady, nil)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, kept)
}

func TestManager_EmitAsync_Wait(t *testing.T) {
	m := testManager()

	var count atomic.Int32
	for _, name := range []string{"a", "b", "c"} {
		m.On(EventMessageRelayed, name, func(_ context.Context, _ Payload) error {
			time.Sleep(10 * time.Millisecond)
			count.Add(1)
			return nil
		})
	}

	m.EmitAsync(context.Background(), EventMessageRelayed, nil)

	done := make(chan struct{})
	go func() { m.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async handlers did not complete in time")
	}
	assert.Equal(t, int32(3), count.Load())
}

func TestManager_CountAndEvents(t *testing.T) {
	m := testManager()
	assert.Equal(t, 0, m.Count(EventGuildLeave))

	m.On(EventGuildLeave, "h1", func(_ context.Context, _ Payload) error { return nil })
	m.On(EventGuildLeave, "h2", func(_ context.Context, _ Payload) error { return nil })
	m.On(EventBotReady, "h3", func(_ context.Context, _ Payload) error { return nil })

	assert.Equal(t, 2, m.Count(EventGuildLeave))
	assert.Equal(t, []string{EventBotReady, EventGuildLeave}, m.Events())
}

func TestKnown(t *testing.T) {
	require.Len(t, AllEvents, 7)
	for _, e := range AllEvents {
		assert.True(t, Known(e), e)
	}
	assert.False(t, Known("gateway_start"))
}
