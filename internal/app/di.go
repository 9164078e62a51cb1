// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	authDomain "github.com/allisson/identity/internal/auth/domain"
	authHTTP "github.com/allisson/identity/internal/auth/http"
	authService "github.com/allisson/identity/internal/auth/service"
	authUsecase "github.com/allisson/identity/internal/auth/usecase"
	"github.com/allisson/identity/internal/config"
	"github.com/allisson/identity/internal/database"
	"github.com/allisson/identity/internal/http"
	identityService "github.com/allisson/identity/internal/identity/service"
	"github.com/allisson/identity/internal/metrics"
	outboxRepository "github.com/allisson/identity/internal/outbox/repository"
	outboxUsecase "github.com/allisson/identity/internal/outbox/usecase"
	roleHTTP "github.com/allisson/identity/internal/role/http"
	roleUsecase "github.com/allisson/identity/internal/role/usecase"
	userHTTP "github.com/allisson/identity/internal/user/http"
	userUsecase "github.com/allisson/identity/internal/user/usecase"
)

// dbConnectTimeout bounds the first ping of the database pool.
const dbConnectTimeout = 10 * time.Second

// lazy holds a component built on first access. A failed build is remembered
// and returned on every later access.
type lazy[T any] struct {
	once  sync.Once
	value T
	err   error
}

func (l *lazy[T]) get(build func() (T, error)) (T, error) {
	l.once.Do(func() {
		l.value, l.err = build()
	})
	return l.value, l.err
}

// Container holds all application dependencies and provides methods to access them.
// Components are created on first access.
type Container struct {
	config *config.Config

	// Infrastructure
	logger     *slog.Logger
	loggerInit sync.Once
	db         lazy[*sql.DB]
	txManager  lazy[database.TxManager]

	// Metrics
	metricsProvider lazy[*metrics.Provider]
	businessMetrics lazy[metrics.BusinessMetrics]

	// Authentication
	tokenSettings  lazy[authDomain.TokenSettings]
	tokenIssuer    lazy[authService.TokenIssuer]
	tokenValidator lazy[authService.TokenValidator]
	authUseCase    lazy[authUsecase.AuthUseCase]
	authHandler    lazy[*authHTTP.AuthHandler]

	// Identity, users and roles
	userRepo       lazy[identityService.UserRepository]
	roleRepo       lazy[identityService.RoleRepository]
	passwordHasher lazy[identityService.PasswordHasher]
	identityTokens lazy[identityService.IdentityTokenProvider]
	provider       lazy[identityService.Provider]
	userUseCase    lazy[userUsecase.UseCase]
	roleUseCase    lazy[roleUsecase.UseCase]
	userHandler    lazy[*userHTTP.UserHandler]
	roleHandler    lazy[*roleHTTP.RoleHandler]

	// Outbox
	outboxRepo    lazy[outboxUsecase.OutboxEventRepository]
	outboxUseCase lazy[outboxUsecase.UseCase]

	// Servers
	httpServer    lazy[*http.Server]
	metricsServer lazy[*http.MetricsServer]

	mu sync.Mutex
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{config: cfg}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
func (c *Container) DB() (*sql.DB, error) {
	return c.db.get(c.initDB)
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	return c.txManager.get(func() (database.TxManager, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
		}
		return database.NewTxManager(db), nil
	})
}

// MetricsProvider returns the OpenTelemetry provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	return c.metricsProvider.get(func() (*metrics.Provider, error) {
		if !c.config.MetricsEnabled {
			return nil, nil
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics provider: %w", err)
		}
		return provider, nil
	})
}

// BusinessMetrics returns the use case metrics recorder. It is a no-op when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	return c.businessMetrics.get(func() (metrics.BusinessMetrics, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}
		if provider == nil {
			return metrics.NewNoOpBusinessMetrics(), nil
		}
		return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	})
}

// OutboxRepository returns the outbox event repository for the configured driver.
func (c *Container) OutboxRepository() (outboxUsecase.OutboxEventRepository, error) {
	return c.outboxRepo.get(func() (outboxUsecase.OutboxEventRepository, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
		}

		switch c.config.DBDriver {
		case "mysql":
			return outboxRepository.NewMySQLOutboxEventRepository(db), nil
		case "postgres":
			return outboxRepository.NewPostgreSQLOutboxEventRepository(db), nil
		default:
			return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
}

// OutboxUseCase returns the notification worker.
func (c *Container) OutboxUseCase() (outboxUsecase.UseCase, error) {
	return c.outboxUseCase.get(c.initOutboxUseCase)
}

// HTTPServer returns the API server with every route registered.
func (c *Container) HTTPServer() (*http.Server, error) {
	return c.httpServer.get(c.initHTTPServer)
}

// MetricsServer returns the Prometheus scrape server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	return c.metricsServer.get(func() (*http.MetricsServer, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}
		if provider == nil {
			return nil, nil
		}
		return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
	})
}

// Shutdown performs cleanup of all initialized resources.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	if c.httpServer.value != nil {
		if err := c.httpServer.value.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer.value != nil {
		if err := c.metricsServer.value.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider.value != nil {
		if err := c.metricsProvider.value.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db.value != nil {
		if err := c.db.value.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	return nil
}

// initLogger creates a JSON logger at the configured level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

func (c *Container) initDB() (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbConnectTimeout)
	defer cancel()

	db, err := database.Connect(ctx, database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (c *Container) initOutboxUseCase() (outboxUsecase.UseCase, error) {
	logger := c.Logger()

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
	}

	processor := outboxUsecase.NewNotificationProcessor(
		outboxUsecase.NewLogMailer(logger),
		c.config.AppBaseURL,
		logger,
	)

	return outboxUsecase.NewOutboxUseCase(outboxUsecase.Config{
		Interval:      c.config.OutboxInterval,
		BatchSize:     c.config.OutboxBatchSize,
		MaxRetries:    c.config.OutboxMaxRetries,
		RetryInterval: c.config.OutboxRetryInterval,
	}, txManager, outboxRepo, processor, logger), nil
}

func (c *Container) initHTTPServer() (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	authHandler, err := c.AuthHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth handler for http server: %w", err)
	}

	userHandler, err := c.UserHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get user handler for http server: %w", err)
	}

	roleHandler, err := c.RoleHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get role handler for http server: %w", err)
	}

	validator, err := c.TokenValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to get token validator for http server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(c.config, http.Handlers{
		Auth: authHandler,
		User: userHandler,
		Role: roleHandler,
	}, validator, metricsProvider)

	return server, nil
}
