package events

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	t.Run("client join frame carries the channel as a string", func(t *testing.T) {
		req := require.New(t)
		env, err := Decode([]byte(`{"event":"joinChat","data":"abc"}`))
		req.NoError(err)
		req.Equal(EventJoinChat, env.Event)

		channel, ok := env.DataString()
		req.True(ok)
		req.Equal("abc", channel)
	})

	t.Run("non string data is not a channel", func(t *testing.T) {
		env, err := Decode([]byte(`{"event":"joinChat","data":{"id":"abc"}}`))
		require.NoError(t, err)
		_, ok := env.DataString()
		require.False(t, ok)
	})

	t.Run("malformed frame", func(t *testing.T) {
		_, err := Decode([]byte(`{"event":`))
		require.Error(t, err)
	})

	t.Run("encode nests data", func(t *testing.T) {
		frame, err := Encode(EventNewMessage, map[string]string{"content": "hi"})
		require.NoError(t, err)
		require.JSONEq(t, `{"event":"newMessage","data":{"content":"hi"}}`, string(frame))
	})
}

func TestConversationChannel(t *testing.T) {
	req := require.New(t)
	ch := ConversationChannel("42")
	req.Equal("channel:conversation:42", ch)

	id, ok := ConversationFromChannel(ch)
	req.True(ok)
	req.Equal("42", id)

	_, ok = ConversationFromChannel("channel:user:42")
	req.False(ok)
	_, ok = ConversationFromChannel(ChannelPrefixConversation)
	req.False(ok)
	_, ok = ConversationFromChannel(RevokeChannel("42"))
	req.False(ok)

	id, ok = RevokedFromChannel(RevokeChannel("42"))
	req.True(ok)
	req.Equal("42", id)
	_, ok = RevokedFromChannel(ch)
	req.False(ok)
}

type fakePublisher struct {
	channel string
	payload []byte
}

func (p *fakePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	p.channel = channel
	p.payload = payload
	return nil
}

func TestRedisBus(t *testing.T) {
	pub := &fakePublisher{}
	bus := NewRedisBus(pub)

	require.NoError(t, bus.Broadcast(context.Background(), "42", []byte("frame")))
	require.Equal(t, "channel:conversation:42", pub.channel)
	require.Equal(t, []byte("frame"), pub.payload)

	userID := uuid.New()
	require.NoError(t, bus.RevokeChannel(context.Background(), "42", userID))
	require.Equal(t, "channel:revoke:42", pub.channel)
	require.Equal(t, userID.String(), string(pub.payload))
}
