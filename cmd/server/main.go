package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"lc_stat/internal/api"
	"lc_stat/internal/app/service"
	"lc_stat/internal/common/security"
	"lc_stat/internal/domain/repository"
	"lc_stat/internal/platform/config"
	"lc_stat/internal/platform/database"
	"lc_stat/internal/platform/docstore"
	"lc_stat/internal/platform/kv"
	"lc_stat/internal/platform/leetcode"
	"lc_stat/internal/platform/logger"

	_ "go.uber.org/automaxprocs"
	"golang.org/x/sync/errgroup"
)

const appName = "lc_stat"

var appVersion = "v0.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	log := logger.New(os.Stdout, appName, appVersion, cfg.Debug)
	slog.SetDefault(log)
	ctx = logger.WithLogger(ctx, log)

	log.Info("configuration loaded",
		slog.String("docstore_driver", cfg.DocStore.Driver),
		slog.String("port", cfg.APIPort),
		slog.Int("default_usernames", len(cfg.Stats.DefaultUsernames)),
	)

	// 2. Document store
	store, err := openDocStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	log.Info("document store ready", slog.String("driver", cfg.DocStore.Driver))

	// 3. Repositories and services
	userRepo := repository.NewDocUserRepository(store, cfg.DocStore.Collection)
	tokens := security.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Expiration)

	lcClient := leetcode.NewClient(cfg.LeetCode.GraphQLURL, cfg.LeetCode.HTTPTimeout)
	statsService := service.NewStatsService(lcClient, service.StatsOptions{
		SubmissionLimit: cfg.Stats.SubmissionLimit,
		RequestDelay:    cfg.Stats.RequestDelay,
	})
	friendsService := service.NewFriendsService(userRepo)
	reportService := service.NewReportService(statsService, friendsService, cfg.Stats.DefaultUsernames)
	authService := service.NewAuthService(userRepo, tokens)
	userService := service.NewUserService(userRepo)

	// 4. Router and HTTP server
	router := api.NewRouter(
		api.RouterOptions{
			Logger:         log,
			TokenAuth:      tokens.JWTAuth(),
			AllowedOrigins: cfg.CORSAllowedOrigins,
			HandlerTimeout: cfg.HTTP.HandlerTimeout,
		},
		authService,
		userService,
		friendsService,
		reportService,
	)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	// 5. Serve until a signal arrives, then shut down gracefully.
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server.ListenAndServe: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server.Shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}

// openDocStore connects the driver picked by DOCSTORE_DRIVER and prepares
// its schema.
func openDocStore(ctx context.Context, cfg *config.Config) (docstore.Store, error) {
	switch cfg.DocStore.Driver {
	case config.DriverPostgres:
		db, err := database.ConnectPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		store := docstore.NewPostgresStore(db)
		if err := store.InitTable(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("postgres docstore init: %w", err)
		}
		return store, nil

	case config.DriverRedis:
		rdb, err := kv.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return docstore.NewRedisStore(rdb, cfg.Redis.KeyPrefix), nil

	case config.DriverSQLite:
		db, err := database.ConnectSQLite(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		store := docstore.NewSQLiteStore(db)
		if err := store.InitTable(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("sqlite docstore init: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown docstore driver %q", cfg.DocStore.Driver)
	}
}
