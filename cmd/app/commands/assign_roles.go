package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	identityService "github.com/allisson/identity/internal/identity/service"
)

// RunAssignRoles adds roles (comma-separated) to the named user. Nothing is
// assigned when any role does not exist.
func RunAssignRoles(
	ctx context.Context,
	provider identityService.Provider,
	logger *slog.Logger,
	userName string,
	roles string,
	io IOTuple,
) error {
	names := splitList(roles)
	if len(names) == 0 {
		return errors.New("at least one role is required")
	}

	user, err := provider.FindByUserName(ctx, userName)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %q not found", userName)
	}

	if err := provider.AddToRoles(ctx, user, names); err != nil {
		return fmt.Errorf("failed to assign roles: %w", err)
	}

	current, err := provider.GetRoles(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to read roles: %w", err)
	}

	logger.Info("roles assigned",
		slog.String("user_id", user.ID.String()),
		slog.Any("roles", names))
	_, _ = fmt.Fprintf(io.Writer, "User %s now has roles: %s\n", user.UserName, strings.Join(current, ", "))
	return nil
}
