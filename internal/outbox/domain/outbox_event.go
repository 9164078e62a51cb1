// Package domain defines the outbox event entity and the event types it carries.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEventStatus represents the delivery state of an outbox event.
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// OutboxEvent is a notification persisted in the same transaction as the
// change that produced it and delivered later by the outbox worker.
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MarkProcessed records a successful delivery.
func (e *OutboxEvent) MarkProcessed(now time.Time) {
	e.Status = OutboxEventStatusProcessed
	e.ProcessedAt = &now
	e.LastError = nil
	e.UpdatedAt = now
}

// MarkFailed records a failed delivery attempt. The event stays pending until
// maxRetries attempts have failed.
func (e *OutboxEvent) MarkFailed(now time.Time, cause error, maxRetries int) {
	msg := cause.Error()
	e.Retries++
	e.LastError = &msg
	e.UpdatedAt = now
	if e.Retries >= maxRetries {
		e.Status = OutboxEventStatusFailed
	}
}
