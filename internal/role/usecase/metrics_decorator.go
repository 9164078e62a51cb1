package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	identityDomain "github.com/allisson/identity/internal/identity/domain"
	"github.com/allisson/identity/internal/metrics"
)

const metricsDomain = "role"

// roleUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type roleUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewRoleUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewRoleUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &roleUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (r *roleUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	r.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

func (r *roleUseCaseWithMetrics) List(ctx context.Context, offset, limit int) ([]*identityDomain.Role, error) {
	start := time.Now()
	roles, err := r.next.List(ctx, offset, limit)
	r.record(ctx, "list", start, err)
	return roles, err
}

func (r *roleUseCaseWithMetrics) Get(ctx context.Context, id uuid.UUID) (*identityDomain.Role, error) {
	start := time.Now()
	role, err := r.next.Get(ctx, id)
	r.record(ctx, "get", start, err)
	return role, err
}

func (r *roleUseCaseWithMetrics) Create(ctx context.Context, name string) (*identityDomain.Role, error) {
	start := time.Now()
	role, err := r.next.Create(ctx, name)
	r.record(ctx, "create", start, err)
	return role, err
}

func (r *roleUseCaseWithMetrics) Update(
	ctx context.Context,
	id uuid.UUID,
	input UpdateRoleInput,
) (*identityDomain.Role, error) {
	start := time.Now()
	role, err := r.next.Update(ctx, id, input)
	r.record(ctx, "update", start, err)
	return role, err
}

func (r *roleUseCaseWithMetrics) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := r.next.Delete(ctx, id)
	r.record(ctx, "delete", start, err)
	return err
}
