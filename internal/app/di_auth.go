package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	authDomain "github.com/allisson/identity/internal/auth/domain"
	authHTTP "github.com/allisson/identity/internal/auth/http"
	authService "github.com/allisson/identity/internal/auth/service"
	authUsecase "github.com/allisson/identity/internal/auth/usecase"
)

// minSecretLength is the HS256 key size below which a warning is logged.
const minSecretLength = 32

// TokenSettings returns the signing settings with the secret resolved
// through the configured KMS key, if any. Invalid settings fail here so the
// server never starts with a configuration that cannot sign.
func (c *Container) TokenSettings() (authDomain.TokenSettings, error) {
	return c.tokenSettings.get(c.initTokenSettings)
}

// TokenIssuer returns the access token issuer.
func (c *Container) TokenIssuer() (authService.TokenIssuer, error) {
	return c.tokenIssuer.get(func() (authService.TokenIssuer, error) {
		settings, err := c.TokenSettings()
		if err != nil {
			return nil, err
		}
		return authService.NewTokenIssuer(settings), nil
	})
}

// TokenValidator returns the validator used by the bearer middleware and refresh.
func (c *Container) TokenValidator() (authService.TokenValidator, error) {
	return c.tokenValidator.get(func() (authService.TokenValidator, error) {
		settings, err := c.TokenSettings()
		if err != nil {
			return nil, err
		}
		return authService.NewTokenValidator(settings, c.config.JWTClockSkew), nil
	})
}

// AuthUseCase returns the authentication flows.
func (c *Container) AuthUseCase() (authUsecase.AuthUseCase, error) {
	return c.authUseCase.get(c.initAuthUseCase)
}

// AuthHandler returns the HTTP handler for the /auth endpoints.
func (c *Container) AuthHandler() (*authHTTP.AuthHandler, error) {
	return c.authHandler.get(func() (*authHTTP.AuthHandler, error) {
		useCase, err := c.AuthUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get auth use case for auth handler: %w", err)
		}
		return authHTTP.NewAuthHandler(useCase, c.Logger()), nil
	})
}

func (c *Container) initTokenSettings() (authDomain.TokenSettings, error) {
	secret, err := c.resolveSecret(c.config.JWTSecret)
	if err != nil {
		return authDomain.TokenSettings{}, fmt.Errorf("failed to resolve jwt secret: %w", err)
	}

	settings := authDomain.TokenSettings{
		Secret:          secret,
		Issuer:          c.config.JWTIssuer,
		Audience:        c.config.JWTAudience,
		LifetimeMinutes: c.config.JWTTokenLifetimeMinutes,
	}
	if err := settings.Validate(); err != nil {
		return authDomain.TokenSettings{}, err
	}

	if len(secret) < minSecretLength {
		c.Logger().Warn("jwt secret is shorter than recommended for HS256",
			slog.Int("min_bytes", minSecretLength))
	}

	return settings, nil
}

// resolveSecret decrypts secret with the configured KMS key. Without a key URI
// the value is used as is.
func (c *Container) resolveSecret(secret string) (string, error) {
	if strings.TrimSpace(c.config.KMSKeyURI) == "" {
		return secret, nil
	}

	c.Logger().Info("decrypting secret with KMS", slog.String("kms_provider", c.config.KMSProvider))
	return authService.NewSecretResolver(c.config.KMSKeyURI).Resolve(context.Background(), secret)
}

func (c *Container) initAuthUseCase() (authUsecase.AuthUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for auth use case: %w", err)
	}

	provider, err := c.IdentityProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity provider for auth use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for auth use case: %w", err)
	}

	issuer, err := c.TokenIssuer()
	if err != nil {
		return nil, fmt.Errorf("failed to get token issuer for auth use case: %w", err)
	}

	validator, err := c.TokenValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to get token validator for auth use case: %w", err)
	}

	baseUseCase := authUsecase.NewAuthUseCase(
		txManager,
		provider,
		outboxRepo,
		issuer,
		validator,
		c.config.JWTRefreshWindow,
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for auth use case: %w", err)
		}
		return authUsecase.NewAuthUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
