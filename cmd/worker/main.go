package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/jnitin/flask-catalog/internal/cache"
	"github.com/jnitin/flask-catalog/internal/config"
	"github.com/jnitin/flask-catalog/internal/log"
	"github.com/jnitin/flask-catalog/internal/mail"
	"github.com/jnitin/flask-catalog/internal/queue"
	"github.com/jnitin/flask-catalog/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := cache.NewRedisClient(ctx, cfg.Redis, "catalog-worker")
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	processor := tasks.NewProcessor(logger, mail.NewLogMailer(logger, cfg.Mail.LinkBaseURL))
	consumer := queue.NewConsumer(
		client,
		cfg.Mail.Stream,
		cfg.Mail.Group,
		cfg.Mail.Consumer,
		cfg.Mail.ClaimInterval,
		logger,
		processor,
	)

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("consumer stopped unexpectedly")
		return
	}
	logger.Info().Msg("worker exited cleanly")
}
