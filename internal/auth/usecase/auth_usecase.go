package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/identity/internal/auth/domain"
	authService "github.com/allisson/identity/internal/auth/service"
	"github.com/allisson/identity/internal/database"
	apperrors "github.com/allisson/identity/internal/errors"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
	identityService "github.com/allisson/identity/internal/identity/service"
	outboxDomain "github.com/allisson/identity/internal/outbox/domain"
)

// authUseCase implements AuthUseCase on top of the identity provider and the token services.
type authUseCase struct {
	txManager     database.TxManager
	provider      identityService.Provider
	outboxRepo    OutboxEventRepository
	issuer        authService.TokenIssuer
	validator     authService.TokenValidator
	refreshWindow time.Duration
	now           func() time.Time
}

// NewAuthUseCase creates an AuthUseCase. A zero refreshWindow lets any
// correctly signed token be refreshed regardless of its age.
func NewAuthUseCase(
	txManager database.TxManager,
	provider identityService.Provider,
	outboxRepo OutboxEventRepository,
	issuer authService.TokenIssuer,
	validator authService.TokenValidator,
	refreshWindow time.Duration,
) AuthUseCase {
	return &authUseCase{
		txManager:     txManager,
		provider:      provider,
		outboxRepo:    outboxRepo,
		issuer:        issuer,
		validator:     validator,
		refreshWindow: refreshWindow,
		now:           time.Now,
	}
}

func (a *authUseCase) Register(
	ctx context.Context,
	input *authDomain.RegisterInput,
) (*identityDomain.User, error) {
	user := &identityDomain.User{
		UserName: strings.TrimSpace(input.UserName),
		Email:    strings.TrimSpace(input.Email),
	}

	err := a.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := a.provider.CreateUser(ctx, user, input.Password); err != nil {
			return err
		}

		token, err := a.provider.GenerateEmailConfirmationToken(ctx, user)
		if err != nil {
			return err
		}

		return a.enqueue(ctx, outboxDomain.EventUserRegistered, user, token)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (a *authUseCase) Login(ctx context.Context, input *authDomain.LoginInput) (*authDomain.AuthOutput, error) {
	user, err := a.provider.FindByUserName(ctx, input.UserName)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, authDomain.ErrInvalidCredentials
	}

	// The password is checked first so a wrong password looks the same for
	// unknown, locked and unlocked accounts. Only the holder of the correct
	// password learns about a lockout.
	ok, err := a.provider.CheckPassword(ctx, user, input.Password)
	if err != nil {
		return nil, err
	}
	locked := a.provider.IsLockedOut(user)
	if !ok {
		if !locked {
			if err := a.provider.AccessFailed(ctx, user); err != nil {
				return nil, err
			}
		}
		return nil, authDomain.ErrInvalidCredentials
	}
	if locked {
		return nil, authDomain.ErrUserLocked
	}

	if err := a.provider.ResetAccessFailedCount(ctx, user); err != nil {
		return nil, err
	}

	return a.issueFor(ctx, user)
}

// Refresh only trusts the signature of the presented token. The subject must
// still exist and not be locked out.
func (a *authUseCase) Refresh(ctx context.Context, token string) (*authDomain.AuthOutput, error) {
	principal := a.validator.PrincipalFromExpiredToken(token)
	if principal == nil {
		return nil, authDomain.ErrInvalidToken
	}

	if a.refreshWindow > 0 && a.now().After(principal.ExpiresAt.Add(a.refreshWindow)) {
		return nil, authDomain.ErrRefreshWindowExceeded
	}

	userID, err := uuid.Parse(principal.ID)
	if err != nil {
		return nil, authDomain.ErrInvalidToken
	}

	user, err := a.provider.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, authDomain.ErrInvalidToken
	}

	if a.provider.IsLockedOut(user) {
		return nil, authDomain.ErrUserLocked
	}

	return a.issueFor(ctx, user)
}

func (a *authUseCase) ConfirmEmail(ctx context.Context, input *authDomain.ConfirmEmailInput) error {
	user, err := a.provider.FindByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return authDomain.ErrUserNotFound
	}

	return a.provider.ConfirmEmail(ctx, user, input.Token)
}

func (a *authUseCase) SendResetLink(ctx context.Context, email string) error {
	user, err := a.provider.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return authDomain.ErrUserNotFound
	}

	token, err := a.provider.GeneratePasswordResetToken(ctx, user)
	if err != nil {
		return err
	}

	return a.enqueue(ctx, outboxDomain.EventPasswordResetRequested, user, token)
}

func (a *authUseCase) ResetPassword(ctx context.Context, input *authDomain.ResetPasswordInput) error {
	user, err := a.provider.FindByUserName(ctx, input.UserName)
	if err != nil {
		return err
	}
	if user == nil {
		return authDomain.ErrUserNotFound
	}

	return a.provider.ResetPassword(ctx, user, input.Token, input.NewPassword)
}

func (a *authUseCase) ChangePassword(
	ctx context.Context,
	caller *authDomain.ClaimsPrincipal,
	input *authDomain.ChangePasswordInput,
) error {
	if caller == nil {
		return authDomain.ErrInvalidToken
	}
	if !strings.EqualFold(caller.UserName, strings.TrimSpace(input.UserName)) &&
		!caller.IsInRole(identityDomain.RoleAdmin) {
		return authDomain.ErrChangePasswordForbidden
	}

	user, err := a.provider.FindByUserName(ctx, input.UserName)
	if err != nil {
		return err
	}
	if user == nil {
		return apperrors.NewOperationError(identityDomain.UserNotFound())
	}

	return a.provider.ChangePassword(ctx, user, input.OldPassword, input.NewPassword)
}

func (a *authUseCase) issueFor(ctx context.Context, user *identityDomain.User) (*authDomain.AuthOutput, error) {
	roles, err := a.provider.GetRoles(ctx, user)
	if err != nil {
		return nil, err
	}

	principal := authDomain.Principal{
		ID:       user.ID.String(),
		UserName: user.UserName,
		Email:    user.Email,
		Roles:    roles,
	}

	token, err := a.issuer.Issue(principal)
	if err != nil {
		return nil, err
	}

	return &authDomain.AuthOutput{Token: token, User: principal}, nil
}

func (a *authUseCase) enqueue(ctx context.Context, eventType string, user *identityDomain.User, token string) error {
	payload, err := json.Marshal(outboxDomain.UserTokenPayload{
		UserID:   user.ID,
		UserName: user.UserName,
		Email:    user.Email,
		Token:    token,
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal event payload")
	}

	now := a.now().UTC()
	event := &outboxDomain.OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: eventType,
		Payload:   string(payload),
		Status:    outboxDomain.OutboxEventStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := a.outboxRepo.Create(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to create outbox event")
	}
	return nil
}
