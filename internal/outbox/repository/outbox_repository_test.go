package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/identity/internal/outbox/domain"
)

var outboxColumnNames = []string{
	"id", "event_type", "payload", "status", "retries", "last_error", "processed_at", "created_at", "updated_at",
}

func newTestEvent() *domain.OutboxEvent {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: domain.EventUserRegistered,
		Payload:   `{"user_name":"alice"}`,
		Status:    domain.OutboxEventStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPostgreSQLOutboxEventRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLOutboxEventRepository(db)
	event := newTestEvent()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WithArgs(event.ID, event.EventType, event.Payload, event.Status, 0, nil, nil, event.CreatedAt, event.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Create(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLOutboxEventRepository_GetPendingEvents(t *testing.T) {
	ctx := context.Background()
	retryBefore := time.Now().UTC()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		repo := NewPostgreSQLOutboxEventRepository(db)
		event := newTestEvent()

		rows := sqlmock.NewRows(outboxColumnNames).AddRow(event.ID, event.EventType, event.Payload,
			event.Status, 0, nil, nil, event.CreatedAt, event.UpdatedAt)
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE SKIP LOCKED")).
			WithArgs(domain.OutboxEventStatusPending, retryBefore, 10).
			WillReturnRows(rows)

		events, err := repo.GetPendingEvents(ctx, 10, retryBefore)

		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, event.ID, events[0].ID)
		assert.Equal(t, event.Payload, events[0].Payload)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows(outboxColumnNames))

		events, err := NewPostgreSQLOutboxEventRepository(db).GetPendingEvents(ctx, 10, retryBefore)

		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("Query error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection reset"))

		_, err = NewPostgreSQLOutboxEventRepository(db).GetPendingEvents(ctx, 10, retryBefore)

		assert.ErrorContains(t, err, "failed to get pending outbox events")
	})
}

func TestPostgreSQLOutboxEventRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLOutboxEventRepository(db)
	event := newTestEvent()
	event.MarkProcessed(event.CreatedAt.Add(time.Second))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events")).
		WithArgs(event.ID, domain.OutboxEventStatusProcessed, 0, nil, event.ProcessedAt, event.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Update(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLOutboxEventRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewMySQLOutboxEventRepository(db)
	event := newTestEvent()
	idBytes, err := event.ID.MarshalBinary()
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WithArgs(idBytes, event.EventType, event.Payload, event.Status, 0, nil, nil, event.CreatedAt, event.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(ctx, event))

	retryBefore := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE SKIP LOCKED")).
		WithArgs(domain.OutboxEventStatusPending, retryBefore, 5).
		WillReturnRows(sqlmock.NewRows(outboxColumnNames).AddRow(idBytes, event.EventType, event.Payload,
			event.Status, 0, nil, nil, event.CreatedAt, event.UpdatedAt))

	events, err := repo.GetPendingEvents(ctx, 5, retryBefore)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.ID, events[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
