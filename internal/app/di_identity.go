package app

import (
	"fmt"

	identityRepository "github.com/allisson/identity/internal/identity/repository"
	identityService "github.com/allisson/identity/internal/identity/service"
	roleHTTP "github.com/allisson/identity/internal/role/http"
	roleUsecase "github.com/allisson/identity/internal/role/usecase"
	userHTTP "github.com/allisson/identity/internal/user/http"
	userUsecase "github.com/allisson/identity/internal/user/usecase"
	appValidation "github.com/allisson/identity/internal/validation"
)

// UserRepository returns the user repository for the configured driver.
func (c *Container) UserRepository() (identityService.UserRepository, error) {
	return c.userRepo.get(func() (identityService.UserRepository, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for user repository: %w", err)
		}

		switch c.config.DBDriver {
		case "mysql":
			return identityRepository.NewMySQLUserRepository(db), nil
		case "postgres":
			return identityRepository.NewPostgreSQLUserRepository(db), nil
		default:
			return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
}

// RoleRepository returns the role repository for the configured driver.
func (c *Container) RoleRepository() (identityService.RoleRepository, error) {
	return c.roleRepo.get(func() (identityService.RoleRepository, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for role repository: %w", err)
		}

		switch c.config.DBDriver {
		case "mysql":
			return identityRepository.NewMySQLRoleRepository(db), nil
		case "postgres":
			return identityRepository.NewPostgreSQLRoleRepository(db), nil
		default:
			return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
}

// PasswordHasher returns the argon2id password hasher.
func (c *Container) PasswordHasher() (identityService.PasswordHasher, error) {
	return c.passwordHasher.get(identityService.NewPasswordHasher)
}

// IdentityTokenProvider returns the email confirmation and password reset
// token provider. It uses IDENTITY_TOKEN_SECRET, falling back to the resolved
// JWT secret.
func (c *Container) IdentityTokenProvider() (identityService.IdentityTokenProvider, error) {
	return c.identityTokens.get(func() (identityService.IdentityTokenProvider, error) {
		secret := c.config.IdentityTokenSecret
		if secret == "" {
			settings, err := c.TokenSettings()
			if err != nil {
				return nil, fmt.Errorf("failed to get token settings for identity tokens: %w", err)
			}
			secret = settings.Secret
		}
		return identityService.NewIdentityTokenProvider([]byte(secret), c.config.IdentityTokenLifetime)
	})
}

// IdentityProvider returns the identity provider shared by every use case.
func (c *Container) IdentityProvider() (identityService.Provider, error) {
	return c.provider.get(c.initIdentityProvider)
}

// UserUseCase returns the user management use case.
func (c *Container) UserUseCase() (userUsecase.UseCase, error) {
	return c.userUseCase.get(c.initUserUseCase)
}

// RoleUseCase returns the role management use case.
func (c *Container) RoleUseCase() (roleUsecase.UseCase, error) {
	return c.roleUseCase.get(c.initRoleUseCase)
}

// UserHandler returns the HTTP handler for the /user endpoints.
func (c *Container) UserHandler() (*userHTTP.UserHandler, error) {
	return c.userHandler.get(func() (*userHTTP.UserHandler, error) {
		useCase, err := c.UserUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get user use case for user handler: %w", err)
		}
		return userHTTP.NewUserHandler(useCase, c.Logger()), nil
	})
}

// RoleHandler returns the HTTP handler for the /role endpoints.
func (c *Container) RoleHandler() (*roleHTTP.RoleHandler, error) {
	return c.roleHandler.get(func() (*roleHTTP.RoleHandler, error) {
		useCase, err := c.RoleUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get role use case for role handler: %w", err)
		}
		return roleHTTP.NewRoleHandler(useCase, c.Logger()), nil
	})
}

// providerOptions maps the password policy and lockout settings.
func (c *Container) providerOptions() identityService.ProviderOptions {
	return identityService.ProviderOptions{
		PasswordPolicy: appValidation.PasswordPolicy{
			MinLength:              c.config.PasswordMinLength,
			RequireUpper:           c.config.PasswordRequireUppercase,
			RequireLower:           c.config.PasswordRequireLowercase,
			RequireDigit:           c.config.PasswordRequireDigit,
			RequireNonAlphanumeric: c.config.PasswordRequireNonAlphanumeric,
			RequiredUniqueChars:    c.config.PasswordRequiredUniqueChars,
		},
		Lockout: identityService.LockoutOptions{
			Enabled:     c.config.LockoutEnabled,
			MaxAttempts: c.config.LockoutMaxAttempts,
			Duration:    c.config.LockoutDuration,
		},
	}
}

func (c *Container) initIdentityProvider() (identityService.Provider, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for identity provider: %w", err)
	}

	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for identity provider: %w", err)
	}

	roleRepo, err := c.RoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role repository for identity provider: %w", err)
	}

	hasher, err := c.PasswordHasher()
	if err != nil {
		return nil, fmt.Errorf("failed to get password hasher for identity provider: %w", err)
	}

	tokens, err := c.IdentityTokenProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity token provider: %w", err)
	}

	return identityService.NewProvider(txManager, userRepo, roleRepo, hasher, tokens, c.providerOptions()), nil
}

func (c *Container) initUserUseCase() (userUsecase.UseCase, error) {
	provider, err := c.IdentityProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity provider for user use case: %w", err)
	}

	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for user use case: %w", err)
	}

	baseUseCase := userUsecase.NewUserUseCase(provider, userRepo)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for user use case: %w", err)
		}
		return userUsecase.NewUserUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initRoleUseCase() (roleUsecase.UseCase, error) {
	provider, err := c.IdentityProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity provider for role use case: %w", err)
	}

	roleRepo, err := c.RoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role repository for role use case: %w", err)
	}

	baseUseCase := roleUsecase.NewRoleUseCase(provider, roleRepo)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for role use case: %w", err)
		}
		return roleUsecase.NewRoleUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
