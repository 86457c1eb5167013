package services

import (
	"context"
	"strings"
	"time"

	"sentinal-social/internal/domain/conversation"
	"sentinal-social/internal/domain/message"
	"sentinal-social/internal/events"
	"sentinal-social/internal/metrics"
	"sentinal-social/internal/proxy"
	"sentinal-social/internal/repository"
	sentinal_errors "sentinal-social/pkg/errors"
	"sentinal-social/pkg/logger"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Broadcaster hands a frame to every live session subscribed to a
// conversation's channel. Delivery is best effort.
type Broadcaster interface {
	Broadcast(ctx context.Context, conversationID string, payload []byte) error
}

type MessageService struct {
	messages    repository.MessageRepository
	resolver    *ConversationService
	directory   *Directory
	access      *proxy.AccessControl
	broadcaster Broadcaster
	log         *logger.Logger
	now         func() time.Time
}

func NewMessageService(
	messages repository.MessageRepository,
	resolver *ConversationService,
	directory *Directory,
	access *proxy.AccessControl,
	broadcaster Broadcaster,
	log *logger.Logger,
) *MessageService {
	if log == nil {
		log = logger.Nop()
	}
	return &MessageService{
		messages:    messages,
		resolver:    resolver,
		directory:   directory,
		access:      access,
		broadcaster: broadcaster,
		log:         log.Named("messages"),
		now:         time.Now,
	}
}

type PostMessageInput struct {
	Content string
	Chat    *uuid.UUID
	Group   *uuid.UUID
}

// PostMessage persists a message in its conversation and fans it out to the
// conversation's subscribers. The stored message is returned whatever the
// delivery outcome.
func (s *MessageService) PostMessage(ctx context.Context, actorID uuid.UUID, in PostMessageInput) (MessageView, error) {
	dest, err := s.resolver.ResolveDestination(ctx, in.Chat, in.Group)
	if err != nil {
		return MessageView{}, err
	}
	if strings.TrimSpace(in.Content) == "" {
		return MessageView{}, sentinal_errors.ErrEmptyContent
	}
	if err := s.access.CanSendMessage(ctx, actorID, dest.ID); err != nil {
		return MessageView{}, err
	}

	m := message.Message{
		ID:               uuid.New(),
		ConversationID:   dest.ID,
		ConversationKind: dest.Kind,
		SenderID:         actorID,
		Content:          in.Content,
		IsRead:           false,
		CreatedAt:        s.now(),
	}
	if err := s.messages.CreateAndAppend(ctx, &m); err != nil {
		return MessageView{}, err
	}
	metrics.MessagesPosted.WithLabelValues(string(dest.Kind)).Inc()

	sender, err := s.directory.Identity(ctx, actorID)
	if err != nil {
		return MessageView{}, err
	}
	view := toMessageView(m, sender)
	s.deliver(ctx, view, dest.ID)
	return view, nil
}

func (s *MessageService) deliver(ctx context.Context, view MessageView, conversationID uuid.UUID) {
	if s.broadcaster == nil {
		return
	}
	payload, err := events.Encode(events.EventNewMessage, view)
	if err == nil {
		err = s.broadcaster.Broadcast(ctx, conversationID.String(), payload)
	}
	if err != nil {
		metrics.BroadcastFailures.Inc()
		s.log.Warn(ctx, "message broadcast failed",
			zap.String("message_id", view.ID.String()),
			zap.String("conversation_id", conversationID.String()),
			zap.Error(err),
		)
	}
}

func (s *MessageService) GetMessage(ctx context.Context, messageID uuid.UUID) (MessageView, error) {
	m, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return MessageView{}, err
	}
	return s.enrich(ctx, m)
}

// ListMessages returns a chat's messages in append order.
func (s *MessageService) ListMessages(ctx context.Context, actorID, chatID uuid.UUID) ([]MessageView, error) {
	return s.list(ctx, actorID, chatID, conversation.KindChat)
}

// ListGroupMessages returns a group's messages in append order.
func (s *MessageService) ListGroupMessages(ctx context.Context, actorID, groupID uuid.UUID) ([]MessageView, error) {
	return s.list(ctx, actorID, groupID, conversation.KindGroup)
}

func (s *MessageService) list(ctx context.Context, actorID, conversationID uuid.UUID, kind conversation.Kind) ([]MessageView, error) {
	c, err := s.resolver.Get(ctx, conversationID, kind)
	if err != nil {
		return nil, err
	}
	if err := s.access.CanViewConversation(ctx, actorID, c.ID); err != nil {
		return nil, err
	}

	msgs, err := s.messages.GetConversationMessages(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	senders, err := s.directory.IdentityMap(ctx, lo.Map(msgs, func(m message.Message, _ int) uuid.UUID {
		return m.SenderID
	}))
	if err != nil {
		return nil, err
	}

	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, toMessageView(m, senders[m.SenderID]))
	}
	return views, nil
}

// SetReadStatus updates a message's read flag. Only participants of the
// message's conversation may change it.
func (s *MessageService) SetReadStatus(ctx context.Context, actorID, messageID uuid.UUID, isRead bool) (MessageView, error) {
	m, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return MessageView{}, err
	}
	if err := s.access.CanViewConversation(ctx, actorID, m.ConversationID); err != nil {
		return MessageView{}, err
	}
	if err := s.messages.UpdateReadStatus(ctx, m.ID, isRead); err != nil {
		return MessageView{}, err
	}
	m.IsRead = isRead
	return s.enrich(ctx, m)
}

func (s *MessageService) enrich(ctx context.Context, m message.Message) (MessageView, error) {
	sender, err := s.directory.Identity(ctx, m.SenderID)
	if err != nil {
		return MessageView{}, err
	}
	return toMessageView(m, sender), nil
}
