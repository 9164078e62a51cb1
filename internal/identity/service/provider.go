package service

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
	"github.com/samber/lo"

	"github.com/allisson/identity/internal/database"
	apperrors "github.com/allisson/identity/internal/errors"
	"github.com/allisson/identity/internal/identity/domain"
	appValidation "github.com/allisson/identity/internal/validation"
)

// allowedUserNameSymbols are accepted in usernames besides letters and digits.
const allowedUserNameSymbols = "-._@+"

// LockoutOptions controls how failed logins lock an account.
type LockoutOptions struct {
	Enabled     bool
	MaxAttempts int
	Duration    time.Duration
}

// ProviderOptions configures the identity provider.
type ProviderOptions struct {
	PasswordPolicy appValidation.PasswordPolicy
	Lockout        LockoutOptions
}

type identityProvider struct {
	txManager database.TxManager
	userRepo  UserRepository
	roleRepo  RoleRepository
	hasher    PasswordHasher
	tokens    IdentityTokenProvider
	options   ProviderOptions
	now       func() time.Time
}

// NewProvider creates the identity Provider.
func NewProvider(
	txManager database.TxManager,
	userRepo UserRepository,
	roleRepo RoleRepository,
	hasher PasswordHasher,
	tokens IdentityTokenProvider,
	options ProviderOptions,
) Provider {
	return &identityProvider{
		txManager: txManager,
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		hasher:    hasher,
		tokens:    tokens,
		options:   options,
		now:       time.Now,
	}
}

func (p *identityProvider) FindByUserName(ctx context.Context, userName string) (*domain.User, error) {
	return notFoundAsNil(p.userRepo.GetByNormalizedUserName(ctx, domain.NormalizeName(userName)))
}

func (p *identityProvider) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return notFoundAsNil(p.userRepo.GetByNormalizedEmail(ctx, domain.NormalizeName(email)))
}

func (p *identityProvider) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return notFoundAsNil(p.userRepo.GetByID(ctx, id))
}

func (p *identityProvider) CheckPassword(_ context.Context, user *domain.User, password string) (bool, error) {
	if user == nil || !user.HasPassword() {
		return false, nil
	}
	return p.hasher.Verify(password, user.PasswordHash), nil
}

func (p *identityProvider) CreateUser(ctx context.Context, user *domain.User, password string) error {
	details, err := p.validateUser(ctx, user)
	if err != nil {
		return err
	}
	if password != "" {
		details = append(details, p.passwordDetails(password)...)
	}
	if len(details) > 0 {
		return apperrors.NewOperationError(details...)
	}

	if password != "" {
		hash, err := p.hasher.Hash(password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
	}

	id, err := uuid.NewV7()
	if err != nil {
		return apperrors.Wrap(err, "failed to generate user id")
	}

	now := p.now().UTC()
	user.ID = id
	user.Normalize()
	user.SecurityStamp = newStamp()
	user.ConcurrencyStamp = newStamp()
	user.CreatedAt = now
	user.UpdatedAt = now

	return userStoreError(p.userRepo.Create(ctx, user), user)
}

func (p *identityProvider) UpdateUser(ctx context.Context, user *domain.User) error {
	details, err := p.validateUser(ctx, user)
	if err != nil {
		return err
	}
	if len(details) > 0 {
		return apperrors.NewOperationError(details...)
	}
	return p.update(ctx, user)
}

func (p *identityProvider) DeleteUser(ctx context.Context, user *domain.User) error {
	return p.userRepo.Delete(ctx, user.ID)
}

func (p *identityProvider) ChangePassword(
	ctx context.Context,
	user *domain.User,
	currentPassword, newPassword string,
) error {
	ok, err := p.CheckPassword(ctx, user, currentPassword)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewOperationError(domain.PasswordMismatch())
	}
	return p.setPassword(ctx, user, newPassword)
}

func (p *identityProvider) GenerateEmailConfirmationToken(_ context.Context, user *domain.User) (string, error) {
	return p.tokens.Generate(PurposeEmailConfirmation, user)
}

func (p *identityProvider) ConfirmEmail(ctx context.Context, user *domain.User, token string) error {
	if !p.tokens.Validate(PurposeEmailConfirmation, user, token) {
		return apperrors.NewOperationError(domain.InvalidToken())
	}
	user.EmailConfirmed = true
	return p.update(ctx, user)
}

func (p *identityProvider) GeneratePasswordResetToken(_ context.Context, user *domain.User) (string, error) {
	return p.tokens.Generate(PurposeResetPassword, user)
}

func (p *identityProvider) ResetPassword(ctx context.Context, user *domain.User, token, newPassword string) error {
	if !p.tokens.Validate(PurposeResetPassword, user, token) {
		return apperrors.NewOperationError(domain.InvalidToken())
	}
	return p.setPassword(ctx, user, newPassword)
}

func (p *identityProvider) GetRoles(ctx context.Context, user *domain.User) ([]string, error) {
	return p.userRepo.GetRoleNames(ctx, user.ID)
}

func (p *identityProvider) AddToRoles(ctx context.Context, user *domain.User, roles []string) error {
	return p.changeMembership(ctx, user, roles, func(ctx context.Context, role *domain.Role, held bool) error {
		if held {
			return nil
		}
		return p.userRepo.AddToRole(ctx, user.ID, role.ID)
	})
}

func (p *identityProvider) RemoveFromRoles(ctx context.Context, user *domain.User, roles []string) error {
	return p.changeMembership(ctx, user, roles, func(ctx context.Context, role *domain.Role, held bool) error {
		if !held {
			return nil
		}
		return p.userRepo.RemoveFromRole(ctx, user.ID, role.ID)
	})
}

func (p *identityProvider) RoleExists(ctx context.Context, roleName string) (bool, error) {
	role, err := notFoundAsNil(p.roleRepo.GetByNormalizedName(ctx, domain.NormalizeName(roleName)))
	if err != nil {
		return false, err
	}
	return role != nil, nil
}

func (p *identityProvider) CreateRole(ctx context.Context, role *domain.Role) error {
	if err := validation.Validate(role.Name, appValidation.RoleName...); err != nil {
		return apperrors.NewOperationError(domain.InvalidRoleName(role.Name))
	}

	exists, err := p.RoleExists(ctx, role.Name)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.NewOperationError(domain.DuplicateRoleName(role.Name))
	}

	id, err := uuid.NewV7()
	if err != nil {
		return apperrors.Wrap(err, "failed to generate role id")
	}

	role.ID = id
	role.Normalize()
	role.CreatedAt = p.now().UTC()
	if role.ConcurrencyStamp == "" {
		role.ConcurrencyStamp = newStamp()
	}

	if err := p.roleRepo.Create(ctx, role); err != nil {
		if apperrors.Is(err, domain.ErrRoleNameTaken) {
			return apperrors.NewOperationError(domain.DuplicateRoleName(role.Name))
		}
		return err
	}
	return nil
}

func (p *identityProvider) FindRoleByID(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	return notFoundAsNil(p.roleRepo.GetByID(ctx, id))
}

func (p *identityProvider) UpdateRole(ctx context.Context, role *domain.Role) error {
	if err := validation.Validate(role.Name, appValidation.RoleName...); err != nil {
		return apperrors.NewOperationError(domain.InvalidRoleName(role.Name))
	}

	existing, err := notFoundAsNil(p.roleRepo.GetByNormalizedName(ctx, domain.NormalizeName(role.Name)))
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != role.ID {
		return apperrors.NewOperationError(domain.DuplicateRoleName(role.Name))
	}

	role.Normalize()
	role.ConcurrencyStamp = newStamp()

	if err := p.roleRepo.Update(ctx, role); err != nil {
		if apperrors.Is(err, domain.ErrRoleNameTaken) {
			return apperrors.NewOperationError(domain.DuplicateRoleName(role.Name))
		}
		return err
	}
	return nil
}

func (p *identityProvider) DeleteRole(ctx context.Context, role *domain.Role) error {
	return p.roleRepo.Delete(ctx, role.ID)
}

func (p *identityProvider) IsLockedOut(user *domain.User) bool {
	return p.options.Lockout.Enabled && user.IsLockedOut(p.now())
}

// AccessFailed records a failed login and locks the account once the limit is
// reached. The counter is incremented in the store so concurrent failures all count.
func (p *identityProvider) AccessFailed(ctx context.Context, user *domain.User) error {
	if !p.options.Lockout.Enabled {
		return nil
	}

	now := p.now().UTC()
	maxAttempts := max(p.options.Lockout.MaxAttempts, 0)
	return p.txManager.WithTx(ctx, func(ctx context.Context) error {
		stored, err := p.userRepo.RecordAccessFailure(ctx, user.ID, maxAttempts, now.Add(p.options.Lockout.Duration), now)
		if err != nil {
			return err
		}
		user.AccessFailedCount = stored.AccessFailedCount
		user.LockoutEnd = stored.LockoutEnd
		user.UpdatedAt = stored.UpdatedAt
		return nil
	})
}

func (p *identityProvider) ResetAccessFailedCount(ctx context.Context, user *domain.User) error {
	if user.AccessFailedCount == 0 && user.LockoutEnd == nil {
		return nil
	}
	user.AccessFailedCount = 0
	user.LockoutEnd = nil
	return p.update(ctx, user)
}

// changeMembership resolves every role before touching memberships, so an
// unknown role leaves the user unchanged.
func (p *identityProvider) changeMembership(
	ctx context.Context,
	user *domain.User,
	roles []string,
	apply func(ctx context.Context, role *domain.Role, held bool) error,
) error {
	normalized := domain.NormalizeNames(roles)
	if len(normalized) == 0 {
		return nil
	}

	return p.txManager.WithTx(ctx, func(ctx context.Context) error {
		found, err := p.roleRepo.GetByNormalizedNames(ctx, normalized)
		if err != nil {
			return err
		}
		if len(found) != len(normalized) {
			return apperrors.NewOperationError(domain.RolesNotFound())
		}

		current, err := p.userRepo.GetRoleNames(ctx, user.ID)
		if err != nil {
			return err
		}
		held := domain.NormalizeNames(current)

		for _, role := range found {
			if err := apply(ctx, role, lo.Contains(held, role.NormalizedName)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *identityProvider) setPassword(ctx context.Context, user *domain.User, password string) error {
	if details := p.passwordDetails(password); len(details) > 0 {
		return apperrors.NewOperationError(details...)
	}

	hash, err := p.hasher.Hash(password)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.SecurityStamp = newStamp()
	return p.update(ctx, user)
}

func (p *identityProvider) update(ctx context.Context, user *domain.User) error {
	user.Normalize()
	user.ConcurrencyStamp = newStamp()
	user.UpdatedAt = p.now().UTC()
	return userStoreError(p.userRepo.Update(ctx, user), user)
}

// validateUser checks username and email format and uniqueness against other
// users. Lookup failures are returned as errors, not as validation details.
func (p *identityProvider) validateUser(ctx context.Context, user *domain.User) ([]apperrors.Detail, error) {
	var details []apperrors.Detail

	if !isValidUserName(user.UserName) {
		details = append(details, domain.InvalidUserName(user.UserName))
	} else {
		other, err := p.FindByUserName(ctx, user.UserName)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != user.ID {
			details = append(details, domain.DuplicateUserName(user.UserName))
		}
	}

	if err := validation.Validate(user.Email, validation.Required, appValidation.Email); err != nil {
		details = append(details, domain.InvalidEmail(user.Email))
	} else {
		other, err := p.FindByEmail(ctx, user.Email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != user.ID {
			details = append(details, domain.DuplicateEmail(user.Email))
		}
	}

	return details, nil
}

func (p *identityProvider) passwordDetails(password string) []apperrors.Detail {
	return lo.Map(
		p.options.PasswordPolicy.Violations(password),
		func(v appValidation.PasswordViolation, _ int) apperrors.Detail {
			return apperrors.Detail{Code: v.Code, Description: v.Description}
		},
	)
}

func isValidUserName(userName string) bool {
	if strings.TrimSpace(userName) == "" {
		return false
	}
	for _, r := range userName {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune(allowedUserNameSymbols, r) {
			return false
		}
	}
	return true
}

// userStoreError turns unique violations that slipped past validation into operation errors.
func userStoreError(err error, user *domain.User) error {
	switch {
	case err == nil:
		return nil
	case apperrors.Is(err, domain.ErrUserNameTaken):
		return apperrors.NewOperationError(domain.DuplicateUserName(user.UserName))
	case apperrors.Is(err, domain.ErrEmailTaken):
		return apperrors.NewOperationError(domain.DuplicateEmail(user.Email))
	}
	return err
}

func notFoundAsNil[T any](value *T, err error) (*T, error) {
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}

func newStamp() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}
