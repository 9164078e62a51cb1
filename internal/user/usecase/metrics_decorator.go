package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	identityDomain "github.com/allisson/identity/internal/identity/domain"
	"github.com/allisson/identity/internal/metrics"
)

const metricsDomain = "user"

// userUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type userUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewUserUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewUserUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &userUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (u *userUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	u.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

func (u *userUseCaseWithMetrics) List(ctx context.Context, offset, limit int) (*ListUsersOutput, error) {
	start := time.Now()
	output, err := u.next.List(ctx, offset, limit)
	u.record(ctx, "list", start, err)
	return output, err
}

func (u *userUseCaseWithMetrics) Get(ctx context.Context, id uuid.UUID) (*identityDomain.User, error) {
	start := time.Now()
	user, err := u.next.Get(ctx, id)
	u.record(ctx, "get", start, err)
	return user, err
}

func (u *userUseCaseWithMetrics) Create(
	ctx context.Context,
	input CreateUserInput,
) (*identityDomain.User, error) {
	start := time.Now()
	user, err := u.next.Create(ctx, input)
	u.record(ctx, "create", start, err)
	return user, err
}

func (u *userUseCaseWithMetrics) Update(
	ctx context.Context,
	id uuid.UUID,
	input UpdateUserInput,
) (*identityDomain.User, error) {
	start := time.Now()
	user, err := u.next.Update(ctx, id, input)
	u.record(ctx, "update", start, err)
	return user, err
}

func (u *userUseCaseWithMetrics) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := u.next.Delete(ctx, id)
	u.record(ctx, "delete", start, err)
	return err
}

func (u *userUseCaseWithMetrics) GetRoles(ctx context.Context, id uuid.UUID) ([]string, error) {
	start := time.Now()
	roles, err := u.next.GetRoles(ctx, id)
	u.record(ctx, "get_roles", start, err)
	return roles, err
}

func (u *userUseCaseWithMetrics) AddRoles(ctx context.Context, id uuid.UUID, roles []string) error {
	start := time.Now()
	err := u.next.AddRoles(ctx, id, roles)
	u.record(ctx, "add_roles", start, err)
	return err
}

func (u *userUseCaseWithMetrics) RemoveRoles(ctx context.Context, id uuid.UUID, roles []string) error {
	start := time.Now()
	err := u.next.RemoveRoles(ctx, id, roles)
	u.record(ctx, "remove_roles", start, err)
	return err
}
