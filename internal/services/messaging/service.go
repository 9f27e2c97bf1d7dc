package messaging

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClareAI/astra-outbound-caller/internal/domain"
	"github.com/ClareAI/astra-outbound-caller/internal/phone"
	"github.com/ClareAI/astra-outbound-caller/pkg/logger"
	"github.com/ClareAI/astra-outbound-caller/pkg/twilio"
	"go.uber.org/zap"
)

// MessageSender delivers one SMS to an E.164 number and returns its provider id
type MessageSender interface {
	SendMessage(ctx context.Context, to, body string) (string, error)
}

// Service sends single outbound SMS messages
type Service struct {
	sender  MessageSender
	timeout time.Duration
}

// NewService creates the messaging service. timeout bounds each send.
func NewService(sender MessageSender, timeout time.Duration) *Service {
	return &Service{sender: sender, timeout: timeout}
}

// Send normalizes rawPhone and dispatches body to it. Unrecognized numbers
// fail with domain.ErrInvalidRecipient before anything is sent.
func (s *Service) Send(ctx context.Context, rawPhone, body string) (string, error) {
	number := phone.Normalize(rawPhone)
	if number.Empty() {
		return "", domain.MissingField("phoneNumber")
	}
	if !number.Valid {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidRecipient, rawPhone)
	}
	if strings.TrimSpace(body) == "" {
		return "", domain.MissingField("message")
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	startTime := time.Now()
	sid, err := s.sender.SendMessage(ctx, number.Dialable, body)
	if err != nil {
		status, detail := twilio.ErrorDetail(err)
		logger.Error(ctx, "SMS delivery failed",
			zap.String("to", number.Dialable),
			zap.Int("status_code", status),
			zap.String("detail", detail),
			zap.Error(err))
		return "", domain.NewDeliveryError(status, detail, err)
	}

	logger.Info(ctx, "SMS sent",
		zap.String("to", number.Dialable),
		zap.String("message_sid", sid),
		zap.Duration("duration", time.Since(startTime)))
	return sid, nil
}
