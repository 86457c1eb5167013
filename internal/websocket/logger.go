package websocket

import (
	"sentinal-social/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventLogger provides structured logging for WebSocket events
type EventLogger struct {
	logger *zap.Logger
}

// NewLogger tags l with component=websocket. A nil l discards everything.
func NewLogger(l *logger.Logger) *EventLogger {
	if l == nil {
		l = logger.Nop()
	}
	return &EventLogger{logger: l.Named("websocket").Logger}
}

func (l *EventLogger) Info(event string, userID uuid.UUID, clientID string, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("event", event),
		zap.String("user_id", userID.String()),
		zap.String("client_id", clientID),
	}, fields...)
	l.logger.Info("websocket_event", allFields...)
}

func (l *EventLogger) Error(event string, userID uuid.UUID, clientID string, err error, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("event", event),
		zap.String("user_id", userID.String()),
		zap.String("client_id", clientID),
		zap.Error(err),
	}, fields...)
	l.logger.Error("websocket_error", allFields...)
}

func (l *EventLogger) Warn(event string, userID uuid.UUID, clientID string, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("event", event),
		zap.String("user_id", userID.String()),
		zap.String("client_id", clientID),
	}, fields...)
	l.logger.Warn("websocket_warning", allFields...)
}
