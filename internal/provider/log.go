package provider

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogSender writes emails to the logger instead of delivering them.
// Used for local runs without mail credentials.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, e Email) (string, error) {
	if e.To == "" {
		return "", ErrEmptyRecipient
	}
	id := uuid.NewString()
	s.logger.Info("email (log transport)",
		zap.String("message_id", id),
		zap.String("to", e.To),
		zap.String("subject", e.Subject),
		zap.String("text", e.Text),
	)
	return id, nil
}

var _ Sender = (*LogSender)(nil)
