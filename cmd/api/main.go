package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"bookmarkd/internal/auth"
	"bookmarkd/internal/bookmark"
	"bookmarkd/internal/config"
	"bookmarkd/internal/database"
	httpServer "bookmarkd/internal/http"
	"bookmarkd/internal/logging"
	"bookmarkd/internal/ratelimit"
	"bookmarkd/internal/user"
)

// @title           bookmarkd
// @version         1.0
// @description     A multi-tenant bookmark-management API with token authentication.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"token_provider", cfg.Auth.TokenProvider,
	)

	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	tokenService, err := newTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Repositories
	userRepo := user.NewRepository(db)
	bookmarkRepo := bookmark.NewRepository(db)

	// Services
	hasher := auth.NewHasher(cfg.Auth.HashConcurrency)
	rateLimiter := ratelimit.NewLimiter(redisClient, cfg.Auth.RateLimit, cfg.Auth.RateLimitWindow)
	authService := auth.NewService(userRepo, hasher, tokenService, cfg.Auth.AccessTokenDuration)
	bookmarkService := bookmark.NewService(bookmarkRepo)

	// HTTP handlers
	authHandler := auth.NewHandler(
		authService,
		rateLimiter,
		!cfg.Server.IsDevelopment(), // isProduction
		cfg.Auth.AccessTokenDuration,
	)
	authMiddleware := auth.NewMiddleware(tokenService)
	userHandler := user.NewHandler(userRepo)
	bookmarkHandler := bookmark.NewHandler(bookmarkService)

	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, userHandler, bookmarkHandler, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// newTokenService builds the configured TokenService. The secret was
// validated at config load; constructors still fail loudly on a bad key.
func newTokenService(cfg config.AuthConfig) (auth.TokenService, error) {
	switch cfg.TokenProvider {
	case config.ProviderJWT:
		return auth.NewJWTService(cfg.TokenSecret)
	default:
		return auth.NewPasetoService(cfg.TokenSecret)
	}
}

// initDB opens the Postgres connection and returns a Bun DB instance.
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return database.NewBunDB(sqlDB), nil
}

// initRedis opens the Redis connection used for rate limiting.
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
