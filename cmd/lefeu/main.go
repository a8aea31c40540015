package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JungWooHyub/le-feu-sub000/internal/app"
	"github.com/JungWooHyub/le-feu-sub000/internal/audit"
	"github.com/JungWooHyub/le-feu-sub000/internal/auth"
	"github.com/JungWooHyub/le-feu-sub000/internal/guard"
	"github.com/JungWooHyub/le-feu-sub000/internal/platform/cache"
	"github.com/JungWooHyub/le-feu-sub000/internal/platform/db"
	"github.com/JungWooHyub/le-feu-sub000/internal/ratelimit"
	"github.com/JungWooHyub/le-feu-sub000/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := cache.New(ctx, cfg.RedisAddr, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	usersRepo := users.NewRepository(dbpool)
	verifier := auth.NewRemoteVerifier(cfg.AuthVerifyURL, cfg.AuthVerifyTimeout)
	authService := auth.NewService(verifier, usersRepo, logger)

	auditor := audit.NewLogger(audit.NewPostgresSink(dbpool), logger)

	limiterOpts := []ratelimit.Option{ratelimit.WithLogger(logger)}
	if cfg.RateLimitShared {
		limiterOpts = append(limiterOpts, ratelimit.WithStore(ratelimit.NewRedisStore(redisClient)))
	}
	limiter := ratelimit.NewLimiter(limiterOpts...)

	requestGuard := guard.New(authService, limiter, auditor, logger)

	usersService := users.NewService(usersRepo, auditor)
	usersHandler := users.NewHandler(logger, usersService, requestGuard)

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		UsersHandler: usersHandler,
	})

	srv := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped cleanly")
}
