package usecase

import (
	"context"
	"time"

	authDomain "github.com/allisson/identity/internal/auth/domain"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
	"github.com/allisson/identity/internal/metrics"
)

const metricsDomain = "auth"

// authUseCaseWithMetrics decorates AuthUseCase with metrics instrumentation.
type authUseCaseWithMetrics struct {
	next    AuthUseCase
	metrics metrics.BusinessMetrics
}

// NewAuthUseCaseWithMetrics wraps an AuthUseCase with metrics recording.
func NewAuthUseCaseWithMetrics(useCase AuthUseCase, m metrics.BusinessMetrics) AuthUseCase {
	return &authUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *authUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	a.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

func (a *authUseCaseWithMetrics) Register(
	ctx context.Context,
	input *authDomain.RegisterInput,
) (*identityDomain.User, error) {
	start := time.Now()
	user, err := a.next.Register(ctx, input)
	a.record(ctx, "register", start, err)
	return user, err
}

func (a *authUseCaseWithMetrics) Login(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.AuthOutput, error) {
	start := time.Now()
	output, err := a.next.Login(ctx, input)
	a.record(ctx, "login", start, err)
	return output, err
}

func (a *authUseCaseWithMetrics) Refresh(ctx context.Context, token string) (*authDomain.AuthOutput, error) {
	start := time.Now()
	output, err := a.next.Refresh(ctx, token)
	a.record(ctx, "refresh", start, err)
	return output, err
}

func (a *authUseCaseWithMetrics) ConfirmEmail(ctx context.Context, input *authDomain.ConfirmEmailInput) error {
	start := time.Now()
	err := a.next.ConfirmEmail(ctx, input)
	a.record(ctx, "confirm_email", start, err)
	return err
}

func (a *authUseCaseWithMetrics) SendResetLink(ctx context.Context, email string) error {
	start := time.Now()
	err := a.next.SendResetLink(ctx, email)
	a.record(ctx, "send_reset_link", start, err)
	return err
}

func (a *authUseCaseWithMetrics) ResetPassword(ctx context.Context, input *authDomain.ResetPasswordInput) error {
	start := time.Now()
	err := a.next.ResetPassword(ctx, input)
	a.record(ctx, "reset_password", start, err)
	return err
}

func (a *authUseCaseWithMetrics) ChangePassword(
	ctx context.Context,
	caller *authDomain.ClaimsPrincipal,
	input *authDomain.ChangePasswordInput,
) error {
	start := time.Now()
	err := a.next.ChangePassword(ctx, caller, input)
	a.record(ctx, "change_password", start, err)
	return err
}
