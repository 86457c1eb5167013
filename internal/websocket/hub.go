package websocket

import (
	"context"
	"sync"

	"sentinal-social/internal/events"
	"sentinal-social/internal/metrics"

	"github.com/google/uuid"
)

// PresenceTracker records whether a user has at least one live session.
type PresenceTracker interface {
	SetConnected(ctx context.Context, userID uuid.UUID, connected bool) error
}

// Hub is the registry of live sessions and their channel subscriptions.
// Channels are keyed by conversation id. State lives in memory only and is
// rebuilt as clients reconnect.
type Hub struct {
	mu sync.RWMutex

	// clients maps session ID to client
	clients map[string]*Client

	// channels maps channel name to the sessions subscribed to it
	channels map[string]map[string]*Client

	// sessions counts live sessions per user
	sessions map[uuid.UUID]int

	// presenceLocks orders one user's first-connect and last-disconnect
	// writes without blocking other users.
	presenceLocks userLocks
	presence      PresenceTracker
	log           *EventLogger
}

// userLocks hands out a mutex per user. Entries live while someone holds or
// waits on them.
type userLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func (l *userLocks) lock(userID uuid.UUID) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[uuid.UUID]*userLock)
	}
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.Lock()
	return func() {
		ul.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

// NewHub creates a new hub. presence may be nil.
func NewHub(presence PresenceTracker, log *EventLogger) *Hub {
	if log == nil {
		log = NewLogger(nil)
	}
	return &Hub{
		clients:  make(map[string]*Client),
		channels: make(map[string]map[string]*Client),
		sessions: make(map[uuid.UUID]int),
		presence: presence,
		log:      log,
	}
}

// Register adds a session. The user is marked connected on their first
// session.
func (h *Hub) Register(ctx context.Context, client *Client) {
	defer h.presenceLocks.lock(client.UserID)()

	h.mu.Lock()
	h.clients[client.ID] = client
	h.sessions[client.UserID]++
	first := h.sessions[client.UserID] == 1
	h.mu.Unlock()

	metrics.ActiveSessions.Inc()
	if first {
		h.setConnected(ctx, client, true)
	}
}

// Unregister removes a session with all its subscriptions and closes its
// send buffer. The user is marked disconnected when their last session goes.
func (h *Hub) Unregister(ctx context.Context, client *Client) {
	defer h.presenceLocks.lock(client.UserID)()

	h.mu.Lock()
	if _, ok := h.clients[client.ID]; !ok {
		h.mu.Unlock()
		return
	}
	for _, channel := range client.GetChannels() {
		h.removeFromChannel(client.ID, channel)
	}
	delete(h.clients, client.ID)
	h.sessions[client.UserID]--
	last := h.sessions[client.UserID] <= 0
	if last {
		delete(h.sessions, client.UserID)
	}
	client.closeSend()
	h.mu.Unlock()

	metrics.ActiveSessions.Dec()
	if last {
		h.setConnected(ctx, client, false)
	}
}

func (h *Hub) setConnected(ctx context.Context, client *Client, connected bool) {
	if h.presence == nil {
		return
	}
	if err := h.presence.SetConnected(ctx, client.UserID, connected); err != nil {
		h.log.Error("presence_update", client.UserID, client.ID, err)
	}
}

// Subscribe joins a session to a channel. Joining twice is a no-op. It
// reports false when the session is not registered.
func (h *Hub) Subscribe(sessionID, channel string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[sessionID]
	if !ok {
		return false
	}
	if _, ok := h.channels[channel]; !ok {
		h.channels[channel] = make(map[string]*Client)
	}
	h.channels[channel][sessionID] = client
	client.Subscribe(channel)
	return true
}

// Unsubscribe removes a session from a channel. Leaving a channel that was
// never joined is a no-op.
func (h *Hub) Unsubscribe(sessionID, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromChannel(sessionID, channel)
	if client, ok := h.clients[sessionID]; ok {
		client.Unsubscribe(channel)
	}
}

// UnsubscribeUser drops every session of userID from channel and tells each
// one with a leftChat frame. It returns the number of sessions dropped.
func (h *Hub) UnsubscribeUser(userID uuid.UUID, channel string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	var dropped []*Client
	for _, c := range h.channels[channel] {
		if c.UserID == userID {
			dropped = append(dropped, c)
		}
	}
	if len(dropped) == 0 {
		return 0
	}

	frame, _ := events.Encode(events.EventLeft, channel)
	for _, c := range dropped {
		h.removeFromChannel(c.ID, channel)
		c.Unsubscribe(channel)
		if frame != nil {
			c.SendMessage(frame)
		}
	}
	return len(dropped)
}

// removeFromChannel expects h.mu to be held.
func (h *Hub) removeFromChannel(sessionID, channel string) {
	if subscribers, ok := h.channels[channel]; ok {
		delete(subscribers, sessionID)
		if len(subscribers) == 0 {
			delete(h.channels, channel)
		}
	}
}

// Broadcast queues payload once for every session subscribed to channel.
// Sessions whose buffers are full are skipped. It returns the number of
// sessions the payload was queued for.
func (h *Hub) Broadcast(channel string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, c := range h.channels[channel] {
		if c.SendMessage(payload) {
			delivered++
			metrics.FramesDelivered.Inc()
		} else {
			metrics.FramesDropped.Inc()
		}
	}
	return delivered
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetChannelSubscriberCount returns the number of subscribers for a channel
func (h *Hub) GetChannelSubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// IsSubscribed reports whether a session is subscribed to channel.
func (h *Hub) IsSubscribed(sessionID, channel string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.channels[channel][sessionID]
	return ok
}

// UserSessionCount returns the number of live sessions of a user.
func (h *Hub) UserSessionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[userID]
}
