package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/identity/cmd/app/commands"
	"github.com/allisson/identity/internal/app"
	"github.com/allisson/identity/internal/config"
)

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func getIdentityCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "seed",
			Usage: "Create the default roles and the admin and developer accounts",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				txManager, err := container.TxManager()
				if err != nil {
					return err
				}
				provider, err := container.IdentityProvider()
				if err != nil {
					return err
				}
				issuer, err := container.TokenIssuer()
				if err != nil {
					return err
				}

				return commands.RunSeed(
					ctx,
					txManager,
					provider,
					issuer,
					container.Logger(),
					commands.DefaultIO().Writer,
					commands.SeedPasswords{
						Admin:     cfg.SeedAdminPassword,
						Developer: cfg.SeedDeveloperPassword,
					},
				)
			},
		},
		{
			Name:  "create-role",
			Usage: "Create a new role",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Role name",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				roleUseCase, err := container.RoleUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateRole(
					ctx,
					roleUseCase,
					container.Logger(),
					cmd.String("name"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			},
		},
		{
			Name:  "assign-roles",
			Usage: "Add roles to an existing user",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "user",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "User name",
				},
				&cli.StringFlag{
					Name:     "roles",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "Comma-separated role names (e.g., Admin,Developer)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				provider, err := container.IdentityProvider()
				if err != nil {
					return err
				}

				return commands.RunAssignRoles(
					ctx,
					provider,
					container.Logger(),
					cmd.String("user"),
					cmd.String("roles"),
					commands.DefaultIO(),
				)
			},
		},
		{
			Name:  "inspect-token",
			Usage: "Decode and verify a signed access token",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "token",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Signed JWT",
				},
				&cli.BoolFlag{
					Name:    "strict",
					Aliases: []string{"s"},
					Usage:   "Also verify issuer, audience and expiry",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				validator, err := container.TokenValidator()
				if err != nil {
					return err
				}

				return commands.RunInspectToken(
					validator,
					cmd.String("token"),
					cmd.Bool("strict"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			},
		},
	}
}
