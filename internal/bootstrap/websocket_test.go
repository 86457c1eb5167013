package bootstrap_test

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sentinal-social/internal/events"
	"sentinal-social/internal/services"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event, data string) {
	t.Helper()
	frame, err := events.Encode(event, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
}

func receive(t *testing.T, conn *websocket.Conn) events.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	env, err := events.Decode(frame)
	require.NoError(t, err)
	return env
}

func expectNothing(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	netErr, ok := err.(net.Error)
	require.True(t, ok && netErr.Timeout(), "expected a read timeout, got %v", err)
}

func TestRealtimeDelivery(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(h.app.Server.Engine())
	t.Cleanup(srv.Close)

	a := h.register("alice")
	b := h.register("bob")
	c := h.register("carol")

	var chat services.ChatView
	rec := h.do(http.MethodPost, "/chats", a.token, map[string]any{
		"participants": []string{a.ID.String(), b.ID.String()},
	}, &chat)
	require.Equal(t, http.StatusCreated, rec.Code)

	joined := dial(t, srv, b.token)
	idle := dial(t, srv, b.token)
	outsider := dial(t, srv, c.token)

	send(t, joined, events.EventJoinChat, chat.ID.String())
	ack := receive(t, joined)
	require.Equal(t, events.EventJoined, ack.Event)

	send(t, outsider, events.EventJoinChat, chat.ID.String())
	denied := receive(t, outsider)
	require.Equal(t, events.EventError, denied.Event)

	require.Eventually(t, func() bool {
		return h.app.Hub.UserSessionCount(b.ID) == 2
	}, 2*time.Second, 10*time.Millisecond)

	rec = h.do(http.MethodPost, "/messages", a.token, map[string]any{"content": "hi", "chat": chat.ID.String()}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	env := receive(t, joined)
	require.Equal(t, events.EventNewMessage, env.Event)
	var msg services.MessageView
	require.NoError(t, json.Unmarshal(env.Data, &msg))
	require.Equal(t, "hi", msg.Content)
	require.Equal(t, a.ID, msg.Sender.ID)
	require.Equal(t, "alice", msg.Sender.Username)

	expectNothing(t, idle)
	expectNothing(t, outsider)

	t.Run("unknown channel is refused", func(t *testing.T) {
		send(t, joined, events.EventJoinChat, uuid.NewString())
		require.Equal(t, events.EventError, receive(t, joined).Event)
	})

	t.Run("leave stops delivery", func(t *testing.T) {
		send(t, joined, events.EventLeaveChat, chat.ID.String())
		require.Equal(t, events.EventLeft, receive(t, joined).Event)

		rec := h.do(http.MethodPost, "/messages", a.token, map[string]any{"content": "again", "chat": chat.ID.String()}, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
		expectNothing(t, joined)
	})
}

func TestRealtimePresence(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(h.app.Server.Engine())
	t.Cleanup(srv.Close)

	a := h.register("alice")

	t.Run("bad token is rejected before upgrade", func(t *testing.T) {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=nope"
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	conn := dial(t, srv, a.token)
	require.Eventually(t, func() bool {
		u, err := h.app.Directory.GetByID(t.Context(), a.ID)
		return err == nil && u.Connected
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		u, err := h.app.Directory.GetByID(t.Context(), a.ID)
		return err == nil && !u.Connected
	}, 2*time.Second, 10*time.Millisecond)
}


func TestRealtimeRemovedMemberStopsReceiving(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(h.app.Server.Engine())
	t.Cleanup(srv.Close)

	a := h.register("alice")
	b := h.register("bob")
	c := h.register("carol")

	var group services.GroupView
	rec := h.do(http.MethodPost, "/groups", a.token, map[string]any{
		"name":         "climbers",
		"participants": []string{b.ID.String(), c.ID.String()},
	}, &group)
	require.Equal(t, http.StatusCreated, rec.Code)
	channel := group.ID.String()

	removed := dial(t, srv, b.token)
	kept := dial(t, srv, c.token)
	for _, conn := range []*websocket.Conn{removed, kept} {
		send(t, conn, events.EventJoinChat, channel)
		require.Equal(t, events.EventJoined, receive(t, conn).Event)
	}

	rec = h.do(http.MethodDelete, "/groups/"+channel+"/users/"+b.ID.String(), a.token, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	left := receive(t, removed)
	require.Equal(t, events.EventLeft, left.Event)
	id, ok := left.DataString()
	require.True(t, ok)
	require.Equal(t, channel, id)

	rec = h.do(http.MethodPost, "/messages", a.token, map[string]any{"content": "members only", "group": channel}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	env := receive(t, kept)
	require.Equal(t, events.EventNewMessage, env.Event)
	expectNothing(t, removed)

	t.Run("rejoining is refused", func(t *testing.T) {
		other := dial(t, srv, b.token)
		send(t, other, events.EventJoinChat, channel)
		require.Equal(t, events.EventError, receive(t, other).Event)
	})
}

func TestRealtimeJoinNormalizesChannel(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(h.app.Server.Engine())
	t.Cleanup(srv.Close)

	a := h.register("alice")
	b := h.register("bob")

	var chat services.ChatView
	rec := h.do(http.MethodPost, "/chats", a.token, map[string]any{
		"participants": []string{a.ID.String(), b.ID.String()},
	}, &chat)
	require.Equal(t, http.StatusCreated, rec.Code)

	for _, spelled := range []string{
		strings.ToUpper(chat.ID.String()),
		"urn:uuid:" + chat.ID.String(),
	} {
		t.Run(spelled, func(t *testing.T) {
			conn := dial(t, srv, b.token)
			send(t, conn, events.EventJoinChat, spelled)

			ack := receive(t, conn)
			require.Equal(t, events.EventJoined, ack.Event)
			id, ok := ack.DataString()
			require.True(t, ok)
			require.Equal(t, chat.ID.String(), id)

			rec := h.do(http.MethodPost, "/messages", a.token, map[string]any{"content": "hi", "chat": chat.ID.String()}, nil)
			require.Equal(t, http.StatusCreated, rec.Code)
			require.Equal(t, events.EventNewMessage, receive(t, conn).Event)

			send(t, conn, events.EventLeaveChat, spelled)
			left := receive(t, conn)
			require.Equal(t, events.EventLeft, left.Event)
			id, _ = left.DataString()
			require.Equal(t, chat.ID.String(), id)
		})
	}
}
