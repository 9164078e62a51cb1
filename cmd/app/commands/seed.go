package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	authService "github.com/allisson/identity/internal/auth/service"
	"github.com/allisson/identity/internal/database"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
	identityService "github.com/allisson/identity/internal/identity/service"
)

// SeedPasswords holds the initial passwords of the seeded accounts.
type SeedPasswords struct {
	Admin     string
	Developer string
}

type seedUser struct {
	userName string
	email    string
	password string
	role     string
}

// RunSeed creates the built-in roles and the admin and developer accounts.
// Admin and Developer carry a signed role token as their concurrency stamp.
// Existing roles and users are left untouched, except that a seeded account
// missing its role gets it back, so the command can run on every deploy.
func RunSeed(
	ctx context.Context,
	txManager database.TxManager,
	provider identityService.Provider,
	issuer authService.TokenIssuer,
	logger *slog.Logger,
	writer io.Writer,
	passwords SeedPasswords,
) error {
	for _, name := range identityDomain.DefaultRoles() {
		created, err := seedRole(ctx, provider, issuer, name)
		if err != nil {
			return err
		}
		if created {
			logger.Info("role created", slog.String("role", name))
			_, _ = fmt.Fprintf(writer, "Role %s created\n", name)
		}
	}

	users := []seedUser{
		{"admin", "admin@admin.com", passwords.Admin, identityDomain.RoleAdmin},
		{"developer", "developer@admin.com", passwords.Developer, identityDomain.RoleDeveloper},
	}
	for _, u := range users {
		var result seedResult
		err := txManager.WithTx(ctx, func(ctx context.Context) error {
			var err error
			result, err = seedAccount(ctx, provider, u)
			return err
		})
		if err != nil {
			return err
		}
		switch result {
		case userCreated:
			logger.Info("user created", slog.String("user_name", u.userName), slog.String("role", u.role))
			_, _ = fmt.Fprintf(writer, "User %s created with role %s\n", u.userName, u.role)
		case roleRestored:
			logger.Info("role restored", slog.String("user_name", u.userName), slog.String("role", u.role))
			_, _ = fmt.Fprintf(writer, "User %s given missing role %s\n", u.userName, u.role)
		}
	}

	_, _ = fmt.Fprintln(writer, "Seed completed")
	return nil
}

func seedRole(
	ctx context.Context,
	provider identityService.Provider,
	issuer authService.TokenIssuer,
	name string,
) (bool, error) {
	exists, err := provider.RoleExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to check role %s: %w", name, err)
	}
	if exists {
		return false, nil
	}

	role := &identityDomain.Role{Name: name}
	if name == identityDomain.RoleAdmin || name == identityDomain.RoleDeveloper {
		stamp, err := issuer.IssueRoleToken(name)
		if err != nil {
			return false, fmt.Errorf("failed to sign role stamp for %s: %w", name, err)
		}
		role.ConcurrencyStamp = stamp.Token
	}

	if err := provider.CreateRole(ctx, role); err != nil {
		return false, fmt.Errorf("failed to create role %s: %w", name, err)
	}
	return true, nil
}

type seedResult int

const (
	unchanged seedResult = iota
	userCreated
	roleRestored
)

// seedAccount runs inside one transaction: a failed role assignment rolls the
// new user back.
func seedAccount(ctx context.Context, provider identityService.Provider, u seedUser) (seedResult, error) {
	user, err := provider.FindByUserName(ctx, u.userName)
	if err != nil {
		return unchanged, fmt.Errorf("failed to look up user %s: %w", u.userName, err)
	}

	result := roleRestored
	if user == nil {
		user = &identityDomain.User{
			UserName:       u.userName,
			Email:          u.email,
			EmailConfirmed: true,
		}
		if err := provider.CreateUser(ctx, user, u.password); err != nil {
			return unchanged, fmt.Errorf("failed to create user %s: %w", u.userName, err)
		}
		result = userCreated
	} else {
		roles, err := provider.GetRoles(ctx, user)
		if err != nil {
			return unchanged, fmt.Errorf("failed to read roles of %s: %w", u.userName, err)
		}
		if lo.ContainsBy(roles, func(role string) bool { return strings.EqualFold(role, u.role) }) {
			return unchanged, nil
		}
	}

	if err := provider.AddToRoles(ctx, user, []string{u.role}); err != nil {
		return unchanged, fmt.Errorf("failed to assign role %s to %s: %w", u.role, u.userName, err)
	}
	return result, nil
}
