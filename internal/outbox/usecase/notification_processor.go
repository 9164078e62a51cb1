package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	apperrors "github.com/allisson/identity/internal/errors"
	"github.com/allisson/identity/internal/outbox/domain"
)

// Message is an outgoing notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers notifications to users.
type Mailer interface {
	Send(ctx context.Context, message Message) error
}

// NotificationProcessor turns identity events into confirmation and password
// reset messages.
type NotificationProcessor struct {
	mailer  Mailer
	baseURL string
	logger  *slog.Logger
}

// NewNotificationProcessor creates a processor that builds links from baseURL.
func NewNotificationProcessor(mailer Mailer, baseURL string, logger *slog.Logger) *NotificationProcessor {
	return &NotificationProcessor{
		mailer:  mailer,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Process delivers the message for a known event type. Unknown types are
// logged and treated as delivered so they do not block the queue.
func (p *NotificationProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	var build func(domain.UserTokenPayload) Message
	switch event.EventType {
	case domain.EventUserRegistered:
		build = p.confirmationMessage
	case domain.EventPasswordResetRequested:
		build = p.resetMessage
	default:
		p.logger.Warn("unknown outbox event type", slog.String("event_type", event.EventType))
		return nil
	}

	var payload domain.UserTokenPayload
	if err := json.Unmarshal([]byte(event.Payload), &payload); err != nil {
		return apperrors.Wrap(err, "failed to decode event payload")
	}

	return p.mailer.Send(ctx, build(payload))
}

func (p *NotificationProcessor) confirmationMessage(payload domain.UserTokenPayload) Message {
	query := url.Values{}
	query.Set("user_id", payload.UserID.String())
	query.Set("token", payload.Token)

	return Message{
		To:      payload.Email,
		Subject: "Confirm your email",
		Body: fmt.Sprintf("Hello %s, please confirm your account by visiting %s/auth/confirm-email?%s",
			payload.UserName, p.baseURL, query.Encode()),
	}
}

func (p *NotificationProcessor) resetMessage(payload domain.UserTokenPayload) Message {
	query := url.Values{}
	query.Set("username", payload.UserName)
	query.Set("token", payload.Token)

	return Message{
		To:      payload.Email,
		Subject: "Reset your password",
		Body: fmt.Sprintf("Hello %s, reset your password by visiting %s/auth/reset-password?%s",
			payload.UserName, p.baseURL, query.Encode()),
	}
}

// LogMailer writes messages to the logger instead of sending them. Bodies
// carry one-time tokens and are only logged at debug level.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a new LogMailer
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, message Message) error {
	m.logger.InfoContext(ctx, "notification sent",
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
	)
	m.logger.DebugContext(ctx, "notification body", slog.String("body", message.Body))
	return nil
}
