package websocket

import (
	"context"
	"net/http"
	"strings"
	"time"

	"sentinal-social/internal/events"
	"sentinal-social/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// TokenVerifier resolves an access token to the user it was issued to.
type TokenVerifier interface {
	CurrentUserID(token string) (uuid.UUID, error)
}

type Handler struct {
	auth       TokenVerifier
	hub        *Hub
	authorizer *ChannelAuthorizer
	log        *EventLogger
	upgrader   websocket.Upgrader
}

func NewHandler(auth TokenVerifier, hub *Hub, authorizer *ChannelAuthorizer, log *EventLogger) *Handler {
	if log == nil {
		log = NewLogger(nil)
	}
	return &Handler{
		auth:       auth,
		hub:        hub,
		authorizer: authorizer,
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = bearerToken(c.GetHeader("Authorization"))
	}
	userID, err := h.auth.CurrentUserID(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("upgrade", userID, "", err)
		return
	}

	client := NewClient(conn, userID)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(ctx, client)
	h.log.Info("connected", userID, client.ID)
	go client.WriteLoop(ctx)

	h.readLoop(ctx, client)

	h.hub.Unregister(ctx, client)
	h.log.Info("disconnected", userID, client.ID)
}

func (h *Handler) readLoop(ctx context.Context, client *Client) {
	conn := client.Conn
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warn("read", client.UserID, client.ID, zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		h.handleFrame(ctx, client, frame)
	}
}

func (h *Handler) handleFrame(ctx context.Context, client *Client, frame []byte) {
	env, err := events.Decode(frame)
	if err != nil {
		h.reply(client, events.EventError, "malformed frame")
		return
	}

	switch env.Event {
	case events.EventJoinChat:
		channel, ok := env.DataString()
		if !ok || channel == "" {
			h.reply(client, events.EventError, "channel id required")
			return
		}
		canonical, allowed, err := h.authorizer.CanSubscribe(ctx, client.UserID, channel)
		if err != nil {
			h.log.Error("authorize", client.UserID, client.ID, err, zap.String("channel", channel))
			h.reply(client, events.EventError, "internal error")
			return
		}
		if !allowed {
			h.log.Warn("join_denied", client.UserID, client.ID, zap.String("channel", channel))
			h.reply(client, events.EventError, "forbidden")
			return
		}
		h.hub.Subscribe(client.ID, canonical)
		h.reply(client, events.EventJoined, canonical)

	case events.EventLeaveChat:
		channel, ok := env.DataString()
		if !ok {
			h.reply(client, events.EventError, "channel id required")
			return
		}
		channel = canonicalChannel(channel)
		h.hub.Unsubscribe(client.ID, channel)
		h.reply(client, events.EventLeft, channel)

	default:
		h.reply(client, events.EventError, "unknown event")
	}
}

func (h *Handler) reply(client *Client, event, data string) {
	payload, err := events.Encode(event, data)
	if err != nil {
		return
	}
	client.SendMessage(payload)
}

func bearerToken(value string) string {
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
