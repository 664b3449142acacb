package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/breed-query-worker/internal/domain"
	"github.com/ricirt/breed-query-worker/internal/queue"
)

// Submission is returned to the caller once a request is on the queue.
type Submission struct {
	RequestID string `json:"requestId"`
	MessageID string `json:"messageId"`
	Recipient string `json:"recipient"`
}

// IntakeService is the producer side of the queue: it turns an accepted
// HTTP request into a RequestMessage and enqueues it. The worker never
// calls it.
type IntakeService struct {
	q      queue.Transport
	logger *zap.Logger
	now    func() time.Time
}

func NewIntakeService(q queue.Transport, logger *zap.Logger) *IntakeService {
	return &IntakeService{q: q, logger: logger, now: time.Now}
}

// Submit enqueues query for asynchronous execution; results go to recipient.
func (s *IntakeService) Submit(ctx context.Context, recipient string, query domain.Query) (*Submission, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return nil, domain.ErrInvalidRecipient
	}

	msg := domain.NewRequestMessage(recipient, query, s.now())
	body, err := msg.Encode()
	if err != nil {
		return nil, err
	}

	messageID, err := s.q.Send(ctx, body)
	if err != nil {
		s.logger.Error("failed to enqueue request",
			zap.String("request_id", msg.RequestID),
			zap.String("request_type", string(msg.RequestType)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrQueueUnavailable, err)
	}

	s.logger.Info("request enqueued",
		zap.String("request_id", msg.RequestID),
		zap.String("request_type", string(msg.RequestType)),
		zap.String("message_id", messageID),
	)

	return &Submission{
		RequestID: msg.RequestID,
		MessageID: messageID,
		Recipient: recipient,
	}, nil
}
