package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/rs/zerolog"

	"github.com/mysteremeal/recipe-api/internal/api"
	"github.com/mysteremeal/recipe-api/internal/api/handler"
	"github.com/mysteremeal/recipe-api/internal/core/service"
	"github.com/mysteremeal/recipe-api/internal/infrastructure/config"
	mongodb "github.com/mysteremeal/recipe-api/internal/infrastructure/db/mongo"
	redisdb "github.com/mysteremeal/recipe-api/internal/infrastructure/db/redis"
	"github.com/mysteremeal/recipe-api/internal/infrastructure/queue"
	"github.com/mysteremeal/recipe-api/internal/infrastructure/security"
	"github.com/mysteremeal/recipe-api/pkg/logger"
)

const version = "1.0.0"

// @title                       Mystère Meal API
// @version                     1.0.0
// @description                 Recipe catalogue with token-based accounts and admin account management.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		// logger is not configured yet
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "recipe-api",
	})
	if cfg.UsingDefaultSecret {
		log.Warn().Msg("JWT_SECRET is not set, using the development default secret")
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}

	users := mongodb.NewUserRepository(db)
	recipes := mongodb.NewRecipeRepository(db)
	events := mongodb.NewAuditRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, recipes, events); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	tokens, err := security.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create token issuer")
	}
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)

	dispatcher := queue.NewDispatcher(cfg.Audit.Workers,
		service.NewAuditService(events, logger.Component("audit")),
		logger.Component("dispatcher"))
	workerCtx, stopWorkers := context.WithCancel(ctx)
	dispatcher.Start(workerCtx)

	e := api.NewRouter(api.Dependencies{
		Auth: service.NewAuthService(users, hasher, tokens, dispatcher,
			service.AuthOptions{RejectLockedLogin: cfg.Auth.RejectLockedLogin},
			logger.Component("auth")),
		Gate:       service.NewAccessService(users),
		Tokens:     tokens,
		Users:      service.NewUserService(users, events, dispatcher, logger.Component("users")),
		Recipes:    service.NewRecipeService(recipes, logger.Component("recipes")),
		Limiter:    redisdb.NewAttemptLimiter(rdb, cfg.Auth.RateLimit, cfg.Auth.RateWindow),
		TrustProxy: cfg.TrustProxy,
		Health: map[string]handler.Pinger{
			"mongodb": handler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx, nil) }),
			"redis":   handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		},
		Version: version,
		Logger:  logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		// The audit trail writes to MongoDB, so it drains before the
		// client disconnects.
		"http-audit-mongo": func(ctx context.Context) error {
			log.Info().Msg("shutting down HTTP server")
			err := e.Shutdown(ctx)
			if derr := dispatcher.Close(ctx); derr != nil {
				log.Warn().Err(derr).Msg("audit queue not fully drained")
			}
			stopWorkers()
			return errors.Join(err, client.Disconnect(ctx))
		},
		"redis": func(ctx context.Context) error {
			return rdb.Close()
		},
	})

	exitCode := <-wait
	log.Info().Int("exit_code", exitCode).Msg("server stopped")
	os.Exit(exitCode)
}
