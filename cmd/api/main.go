package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jnitin/flask-catalog/internal/auth"
	"github.com/jnitin/flask-catalog/internal/cache"
	"github.com/jnitin/flask-catalog/internal/config"
	"github.com/jnitin/flask-catalog/internal/database"
	"github.com/jnitin/flask-catalog/internal/handlers"
	"github.com/jnitin/flask-catalog/internal/jobs"
	"github.com/jnitin/flask-catalog/internal/log"
	"github.com/jnitin/flask-catalog/internal/mail"
	"github.com/jnitin/flask-catalog/internal/repository"
	"github.com/jnitin/flask-catalog/internal/repository/memory"
	"github.com/jnitin/flask-catalog/internal/security"
	"github.com/jnitin/flask-catalog/internal/server"
	"github.com/jnitin/flask-catalog/internal/service"
)

type stores struct {
	accounts   service.AccountStore
	roles      service.RoleStore
	categories service.CategoryStore
	items      service.ItemStore
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)

	ctx := context.Background()
	probes := map[string]handlers.Pinger{}

	var (
		dbPool *pgxpool.Pool
		st     stores
	)
	if cfg.Postgres.DSN != "" {
		dbPool, err = database.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect postgres")
		}
		if err := database.EnsureSchema(ctx, dbPool); err != nil {
			logger.Fatal().Err(err).Msg("failed to apply schema")
		}
		st = stores{
			accounts:   repository.NewAccountRepository(dbPool),
			roles:      repository.NewRoleRepository(dbPool),
			categories: repository.NewCategoryRepository(dbPool),
			items:      repository.NewItemRepository(dbPool),
		}
		probes["postgres"] = dbPool
	} else {
		logger.Warn().Msg("postgres.dsn is empty, using the in-memory store")
		mem := memory.New()
		st = stores{
			accounts:   mem.Accounts(),
			roles:      mem.Roles(),
			categories: mem.Categories(),
			items:      mem.Items(),
		}
	}

	var (
		redisClient *redis.Client
		mailQueue   service.MailQueue
	)
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis, "catalog-api")
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		mailQueue = mail.NewOutbox(redisClient, cfg.Mail.Stream)
		probes["redis"] = cache.Probe{Client: redisClient}
	} else {
		logger.Warn().Msg("redis.addr is empty, mail is logged inline")
		mailQueue = mail.Inline{Mailer: mail.NewLogMailer(logger, cfg.Mail.LinkBaseURL)}
	}

	if err := service.SeedRoles(ctx, st.roles); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed roles")
	}
	if cfg.Seed.Enabled {
		if err := service.SeedAccounts(ctx, st.accounts, st.roles, cfg.Seed, logger); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed accounts")
		}
		if err := service.SeedCatalog(ctx, st.accounts, st.categories, st.items, cfg.Seed, logger); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed catalog")
		}
	}

	tokens := security.NewTokenIssuer(cfg.Security.TokenSecret)
	authService := service.NewAuthService(st.accounts, tokens, cfg.Security, logger)
	accountService := service.NewAccountService(st.accounts, st.roles, tokens, mailQueue, cfg.Security, logger)
	catalogService := service.NewCatalogService(st.accounts, st.categories, st.items, logger)

	handlerSet := handlers.NewHandlerSet(handlers.Deps{
		Log:      logger,
		Config:   cfg,
		Gate:     auth.NewGate(authService, tokens, logger),
		Auth:     authService,
		Accounts: accountService,
		Catalog:  catalogService,
		Probes:   probes,
	})
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(accountService, cfg.Jobs, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop()

	if db != nil {
		db.Close()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
