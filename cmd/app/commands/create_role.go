package commands

import (
	"context"
	"fmt"
	"log/slog"

	roleUsecase "github.com/allisson/identity/internal/role/usecase"
)

// RunCreateRole creates a role and prints its ID in text or JSON format.
func RunCreateRole(
	ctx context.Context,
	roleUseCase roleUsecase.UseCase,
	logger *slog.Logger,
	name string,
	format string,
	io IOTuple,
) error {
	logger.Info("creating role", slog.String("name", name))

	role, err := roleUseCase.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}

	if format == "json" {
		if err := writeJSON(io.Writer, map[string]string{
			"id":   role.ID.String(),
			"name": role.Name,
		}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintln(io.Writer, "Role created successfully!")
		_, _ = fmt.Fprintf(io.Writer, "ID: %s\n", role.ID)
		_, _ = fmt.Fprintf(io.Writer, "Name: %s\n", role.Name)
	}

	logger.Info("role created successfully", slog.String("role_id", role.ID.String()))
	return nil
}
