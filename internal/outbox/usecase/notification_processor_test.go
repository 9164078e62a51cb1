package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/identity/internal/outbox/domain"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, message Message) error {
	return m.Called(ctx, message).Error(0)
}

func tokenEvent(t *testing.T, eventType string) (*domain.OutboxEvent, domain.UserTokenPayload) {
	t.Helper()
	payload := domain.UserTokenPayload{
		UserID:   uuid.MustParse("0190a3c4-0000-7000-8000-000000000001"),
		UserName: "alice",
		Email:    "alice@example.com",
		Token:    "abc+/=",
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &domain.OutboxEvent{ID: uuid.Must(uuid.NewV7()), EventType: eventType, Payload: string(raw)}, payload
}

func newTestProcessor(mailer Mailer) *NotificationProcessor {
	return NewNotificationProcessor(mailer, "https://id.example.com/", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNotificationProcessor_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("registration sends confirmation link", func(t *testing.T) {
		mailer := &mockMailer{}
		event, payload := tokenEvent(t, domain.EventUserRegistered)
		mailer.On("Send", ctx, mock.MatchedBy(func(m Message) bool {
			return m.To == payload.Email &&
				m.Subject == "Confirm your email" &&
				bytes.Contains([]byte(m.Body),
					[]byte("https://id.example.com/auth/confirm-email?token=abc%2B%2F%3D&user_id="+payload.UserID.String()))
		})).Return(nil).Once()

		require.NoError(t, newTestProcessor(mailer).Process(ctx, event))
		mailer.AssertExpectations(t)
	})

	t.Run("reset request sends reset link", func(t *testing.T) {
		mailer := &mockMailer{}
		event, _ := tokenEvent(t, domain.EventPasswordResetRequested)
		mailer.On("Send", ctx, mock.MatchedBy(func(m Message) bool {
			return m.Subject == "Reset your password" &&
				bytes.Contains([]byte(m.Body), []byte("/auth/reset-password?token=abc%2B%2F%3D&username=alice"))
		})).Return(nil).Once()

		require.NoError(t, newTestProcessor(mailer).Process(ctx, event))
		mailer.AssertExpectations(t)
	})

	t.Run("mailer failure is returned", func(t *testing.T) {
		mailer := &mockMailer{}
		event, _ := tokenEvent(t, domain.EventUserRegistered)
		mailer.On("Send", ctx, mock.Anything).Return(errors.New("smtp down")).Once()

		assert.EqualError(t, newTestProcessor(mailer).Process(ctx, event), "smtp down")
	})

	t.Run("malformed payload", func(t *testing.T) {
		mailer := &mockMailer{}
		event := &domain.OutboxEvent{EventType: domain.EventUserRegistered, Payload: "{"}

		err := newTestProcessor(mailer).Process(ctx, event)

		assert.ErrorContains(t, err, "failed to decode event payload")
		mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("unknown event type is skipped", func(t *testing.T) {
		mailer := &mockMailer{}
		event := &domain.OutboxEvent{EventType: "user.deleted", Payload: "{}"}

		assert.NoError(t, newTestProcessor(mailer).Process(ctx, event))
		mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})
}

func TestLogMailer_Send(t *testing.T) {
	var buf bytes.Buffer
	mailer := NewLogMailer(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	err := mailer.Send(context.Background(), Message{To: "alice@example.com", Subject: "Hi", Body: "token=secret"})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "alice@example.com")
	assert.NotContains(t, buf.String(), "token=secret")
}
