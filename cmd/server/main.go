// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/gurkanbulca/projecttracker/internal/config"
	"github.com/gurkanbulca/projecttracker/internal/database"
	"github.com/gurkanbulca/projecttracker/internal/handler"
	"github.com/gurkanbulca/projecttracker/internal/logger"
	"github.com/gurkanbulca/projecttracker/internal/repository"
	"github.com/gurkanbulca/projecttracker/internal/service"
	"github.com/gurkanbulca/projecttracker/pkg/auth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Environment)

	if err := cfg.ValidateConfig(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.ToDatabaseConfig(), log)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database connection")
		}
	}()

	if cfg.Server.AutoMigrate {
		log.Info().Msg("running auto migration")
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info().Msg("auto migration completed")
	}

	revocations, closeRevocations, err := newRevocationStore(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer closeRevocations()

	clock := repository.SystemClock(cfg.Location())
	projectRepo := repository.NewProjectRepository(db, clock)
	taskRepo := repository.NewTaskRepository(db, clock)
	userRepo := repository.NewUserRepository(db, clock)

	tokenManager := auth.NewTokenManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenDuration,
		cfg.JWT.RefreshTokenDuration,
		cfg.JWT.Issuer,
	)
	passwordManager := auth.NewPasswordManager(cfg.Security.BcryptCost, cfg.Security.PasswordMinLength)
	authService := service.NewAuthService(userRepo, tokenManager, passwordManager, revocations, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handler.RouterConfig{
		Projects:     projectRepo,
		Tasks:        taskRepo,
		Auth:         authService,
		DB:           db,
		Logger:       log,
		AllowOrigins: cfg.Server.AllowOrigins,
	})

	httpServer := &http.Server{
		Addr:           ":" + cfg.Server.HTTPPort,
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	// Register reflection for development
	if cfg.Server.EnableReflection && !cfg.IsProduction() {
		reflection.Register(grpcServer)
		log.Info().Msg("gRPC reflection enabled")
	}

	listener, err := net.Listen("tcp", ":"+cfg.Server.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen on gRPC port: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info().Str("port", cfg.Server.GRPCPort).Msg("gRPC health server listening")
		if err := grpcServer.Serve(listener); err != nil {
			errCh <- fmt.Errorf("serve gRPC: %w", err)
		}
	}()
	go func() {
		log.Info().Str("port", cfg.Server.HTTPPort).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serve HTTP: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	log.Info().Msg("shutting down server")
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	grpcServer.GracefulStop()

	log.Info().Msg("server shutdown complete")
	return serveErr
}

// newRevocationStore connects to Redis when configured. Without Redis a
// logout only invalidates the refresh token.
func newRevocationStore(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (auth.RevocationStore, func(), error) {
	if cfg.Addr == "" {
		log.Warn().Msg("REDIS_ADDR not set, access tokens are not revoked on logout")
		return auth.NoopRevocationStore{}, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	log.Info().Str("addr", cfg.Addr).Msg("connected to redis")

	return auth.NewRedisRevocationStore(client), func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis connection")
		}
	}, nil
}
