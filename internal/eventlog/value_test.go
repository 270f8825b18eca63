package eventlog

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/soyeahso/relaybot/internal/domain"
	"github.com/stretchr/testify/assert"
)

type node struct {
	Name string
	Next *node
}

type tagged struct {
	ChannelID string `json:"channelId"`
	Secret    string `json:"-"`
	Count     int
	hidden    string
}

func TestSerialize_Primitives(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "null"},
		{"string", "hello", `"hello"`},
		{"markup kept", "<@!42> & co", `"<@!42> & co"`},
		{"newline escaped", "a\nb", `"a\nb"`},
		{"int", 50035, "50035"},
		{"negative", int8(-3), "-3"},
		{"uint", uint(7), "7"},
		{"float", 1.5, "1.5"},
		{"nan", math.NaN(), "null"},
		{"bool", true, "true"},
		{"bytes", []byte("raw"), `"raw"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Serialize(ValueOf(tt.in)))
		})
	}
}

func TestSerialize_Collections(t *testing.T) {
	payload := map[string]any{
		"b": 1,
		"a": []any{"x", true, nil},
	}
	assert.Equal(t, `{a: ["x",true,null],b: 1}`, Serialize(ValueOf(payload)))

	assert.Equal(t, "[]", Serialize(ValueOf([]int{})))
	assert.Equal(t, "{}", Serialize(ValueOf(map[string]int{})))
	assert.Equal(t, "[1,2]", Serialize(ValueOf([2]int{1, 2})))
}

func TestSerialize_Struct(t *testing.T) {
	v := tagged{ChannelID: "123", Secret: "s3cr3t", Count: 2, hidden: "x"}
	got := Serialize(ValueOf(&v))
	assert.Equal(t, `{channelId: "123",Count: 2}`, got)
	assert.NotContains(t, got, "s3cr3t")
}

func TestSerialize_Func(t *testing.T) {
	got := Serialize(ValueOf(strings.ToUpper))
	assert.Equal(t, "func strings.ToUpper", got)

	var nilFn func()
	assert.Equal(t, "null", Serialize(ValueOf(nilFn)))
}

func TestSerialize_Errors(t *testing.T) {
	apiErr := &domain.APIError{Code: 50035, Message: "Invalid Form Body"}
	assert.Equal(t,
		`{message: "platform error 50035: Invalid Form Body",Code: 50035,Status: 0}`,
		Serialize(ValueOf(apiErr)))

	wrapped := fmt.Errorf("send: %w", apiErr)
	got := Serialize(ValueOf(wrapped))
	assert.True(t, strings.HasPrefix(got, `{message: "send: platform error 50035: Invalid Form Body",cause: {`))

	assert.Equal(t, `{message: "boom"}`, Serialize(ValueOf(errors.New("boom"))))
}

func TestSerialize_CycleIsBounded(t *testing.T) {
	n := &node{Name: "loop"}
	n.Next = n

	got := Serialize(ValueOf(n))
	assert.Contains(t, got, `"[max depth]"`)
	assert.True(t, strings.HasPrefix(got, `{Name: "loop",Next: {Name: "loop"`))
}

func TestSerialize_Unrepresentable(t *testing.T) {
	ch := make(chan int)
	assert.NotPanics(t, func() {
		got := Serialize(ValueOf(ch))
		assert.True(t, strings.HasPrefix(got, `"`))
	})
	assert.NotPanics(t, func() {
		Serialize(ValueOf(complex(1, 2)))
	})
}

func TestSerialize_ExplicitValues(t *testing.T) {
	v := Fields{
		{Name: "channel", Value: String("general")},
		{Name: "ids", Value: List{Int(1), Uint(2)}},
		{Name: "missing", Value: nil},
		{Name: "handler", Value: Func{Name: "relay.onMessage"}},
		{Name: "ok", Value: Bool(false)},
		{Name: "ratio", Value: Float(0.25)},
		{Name: "none", Value: Null{}},
	}
	assert.Equal(t,
		`{channel: "general",ids: [1,2],missing: null,handler: func relay.onMessage,ok: false,ratio: 0.25,none: null}`,
		Serialize(v))
	assert.Equal(t, Serialize(v), Serialize(ValueOf(v)))
}
