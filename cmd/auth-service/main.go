// Command auth-service serves the identity API: registration, login, profile,
// password change and admin user/role management.
//
// @title                       Authentication Service API
// @version                     1.0
// @description                 Users, roles, permissions and JWT issuance.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/suivipro/platform/internal/api"
	"github.com/suivipro/platform/internal/core/domain"
	"github.com/suivipro/platform/internal/core/ports"
	"github.com/suivipro/platform/internal/core/service"
	"github.com/suivipro/platform/internal/infrastructure/config"
	"github.com/suivipro/platform/internal/infrastructure/db/mongo"
	"github.com/suivipro/platform/internal/infrastructure/db/postgres"
	"github.com/suivipro/platform/internal/infrastructure/db/redis"
	"github.com/suivipro/platform/internal/infrastructure/http/handlers"
	"github.com/suivipro/platform/internal/infrastructure/mail"
	"github.com/suivipro/platform/internal/infrastructure/queue"
	"github.com/suivipro/platform/internal/infrastructure/token"
	"github.com/suivipro/platform/pkg/logger"
)

const (
	connectTimeout = 10 * time.Second
	auditWorkers   = 4
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Configuration and logging
	cfg, err := config.LoadAuth(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: "auth-service"})
		boot.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "auth-service",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("auth service stopped")
	}
}

func run(ctx context.Context, cfg *config.AuthConfig, log zerolog.Logger) error {
	// 2. Credential store
	db, err := postgres.Open(ctx, postgres.Config{
		Host:            cfg.DB.Host,
		Port:            cfg.DB.Port,
		Name:            cfg.DB.Name,
		User:            cfg.DB.User,
		Password:        cfg.DB.Password,
		SSLMode:         cfg.DB.SSLMode,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxIdleTime: cfg.DB.IdleTimeout,
		AcquireTimeout:  cfg.DB.AcquireTimeout,
	}, log)
	if err != nil {
		return err
	}
	defer func() { _ = postgres.Close(db) }()

	if err := postgres.Migrate(ctx, db, logger.Component("migrate")); err != nil {
		return err
	}
	seeded, err := postgres.SeedRoles(ctx, db, domain.DefaultRoles())
	if err != nil {
		return err
	}
	log.Info().Int64("roles_created", seeded).Msg("roles seeded")

	readiness := map[string]handlers.Check{
		"postgres": func(ctx context.Context) error { return postgres.Ping(ctx, db) },
	}

	// 3. Audit trail
	var recorder ports.AuditRecorder = queue.NewLogRecorder(logger.Component("audit"))
	if cfg.Mongo.URI != "" {
		store, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, Timeout: connectTimeout})
		if err != nil {
			return err
		}
		defer func() { _ = store.Close(context.Background()) }()

		repo := mongo.NewAuditRepository(store.DB)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("audit indexes not created")
		}
		recorder = repo
		readiness["mongodb"] = store.Ping
	} else {
		log.Warn().Msg("MONGO_URI not set, audit events go to the log")
	}
	dispatcher := queue.NewDispatcher(auditWorkers, recorder, log)
	dispatcher.Start()

	// 4. Login throttle
	var limiter ports.LoginLimiter
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()

		limiter = redis.NewLoginLimiter(rdb, cfg.Login.MaxFailures, cfg.Login.FailureWindow)
		readiness["redis"] = func(ctx context.Context) error { return pingRedis(ctx, rdb) }
	} else {
		log.Warn().Msg("REDIS_ADDR not set, login throttling disabled")
	}

	// 5. Services
	tokens, err := token.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	if err != nil {
		return err
	}
	notifier, err := mail.NewNotifier(mail.Config{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.User,
		Password:    cfg.SMTP.Password,
		From:        cfg.SMTP.From,
		FrontendURL: cfg.SMTP.FrontendURL,
		Timeout:     cfg.SMTP.Timeout,
	}, log)
	if err != nil {
		return err
	}

	users := postgres.NewUserRepository(db, cfg.DB.AcquireTimeout)
	roles := postgres.NewRoleRepository(db, cfg.DB.AcquireTimeout)
	authSvc := service.NewAuthService(users, tokens, notifier, dispatcher, limiter, cfg.BcryptCost, log)
	adminSvc := service.NewAdminService(users, roles, notifier, dispatcher, cfg.BcryptCost, log)

	if err := seedAdmin(ctx, adminSvc, cfg.Seed); err != nil {
		return err
	}

	// 6. HTTP server
	e := api.NewRouter(api.Deps{
		Auth:        authSvc,
		Admin:       adminSvc,
		Verifier:    tokens,
		Readiness:   readiness,
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("auth service listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	// 7. Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("audit dispatcher did not drain")
	}
	return nil
}

func seedAdmin(ctx context.Context, admins *service.AdminService, seed config.SeedConfig) error {
	_, err := admins.EnsureDefaultAdmin(ctx, ports.AdminSeed{
		Username:  seed.AdminUsername,
		Email:     seed.AdminEmail,
		Password:  seed.AdminPassword,
		FirstName: "Administrateur",
		LastName:  "Système",
	})
	return err
}

func pingRedis(ctx context.Context, rdb *goredis.Client) error {
	return rdb.Ping(ctx).Err()
}
