package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	t.Parallel()

	t.Run("join", func(t *testing.T) {
		ev, err := DecodeEvent([]byte(`{"type":"join","room":"r1","user":"alice"}`))
		require.NoError(t, err)
		require.Equal(t, JoinEvent{Room: "r1", User: "alice"}, ev)
		require.Equal(t, EvtJoin, ev.Kind())
		require.Equal(t, "r1", ev.RoomID())
	})

	t.Run("leave without user", func(t *testing.T) {
		ev, err := DecodeEvent([]byte(`{"type":"leave","room":"r1"}`))
		require.NoError(t, err)
		require.Equal(t, LeaveEvent{Room: "r1"}, ev)
	})

	t.Run("message", func(t *testing.T) {
		ev, err := DecodeEvent([]byte(`{"type":"message","room":"r1","user":"bob","message":"hi"}`))
		require.NoError(t, err)
		require.Equal(t, MessageEvent{Room: "r1", User: "bob", Message: "hi"}, ev)
	})
}

func TestDecodeEventRejects(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		data string
		want string
	}{
		{"not json", `not json`, "malformed JSON"},
		{"missing type", `{"room":"r1"}`, "type is required"},
		{"unknown type", `{"type":"shout","room":"r1"}`, `unknown type "shout"`},
		{"join without user", `{"type":"join","room":"r1"}`, "user is required"},
		{"join without room", `{"type":"join","user":"alice"}`, "room is required"},
		{"room is not a string", `{"type":"join","room":5,"user":"a"}`, "invalid event"},
		{"room too long", `{"type":"leave","room":"` + strings.Repeat("x", 129) + `"}`, "room exceeds 128 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeEvent([]byte(tc.data))
			require.ErrorIs(t, err, ErrInvalidEvent)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestDecodeEventEmptyMessage(t *testing.T) {
	t.Parallel()
	ev, err := DecodeEvent([]byte(`{"type":"message","room":"r1","message":""}`))
	require.NoError(t, err)
	require.Equal(t, MessageEvent{Room: "r1"}, ev)

	data, err := Encode(Chat("r1", "alice", ""))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"message","room":"r1","user":"alice","message":""}`, string(data))
}

func TestEventIDLimitMatchesRegistry(t *testing.T) {
	t.Parallel()

	for _, id := range []string{
		strings.Repeat("x", MaxIDLength),
		strings.Repeat("é", MaxIDLength),
	} {
		require.False(t, IDTooLong(id))
		_, err := DecodeEvent([]byte(`{"type":"join","room":"` + id + `","user":"` + id + `"}`))
		require.NoError(t, err)
	}

	long := strings.Repeat("x", MaxIDLength+1)
	require.True(t, IDTooLong(long))
	_, err := DecodeEvent([]byte(`{"type":"join","room":"` + long + `","user":"alice"}`))
	require.ErrorIs(t, err, ErrInvalidEvent)
	_, err = DecodeEvent([]byte(`{"type":"join","room":"r1","user":"` + long + `"}`))
	require.ErrorIs(t, err, ErrInvalidEvent)
}

func TestNotificationWireShape(t *testing.T) {
	t.Parallel()

	data, err := Encode(Chat("r1", "alice", "hello"))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"message","room":"r1","user":"alice","message":"hello"}`, string(data))

	data, err = Encode(UserJoined("r1", "bob"))
	require.NoError(t, err)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	require.NotContains(t, raw, "message")
	require.JSONEq(t, `"user_joined"`, string(raw["type"]))
}

func TestRoomFull(t *testing.T) {
	t.Parallel()
	require.False(t, Room{ID: "r1", Members: []string{"alice"}}.Full())
	require.True(t, Room{ID: "r1", Members: []string{"alice", "bob"}}.Full())
}
