package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"

	"foodtue/internal/config"
	"foodtue/internal/events"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApplication(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}

	// --- Start RabbitMQ Consumer ---
	// Logs every order event; other services bind their own queues.
	if a.rabbit != nil {
		err := a.rabbit.Consume("foodtue.order-log", "order.*", func(msg amqp.Delivery) error {
			return events.LogDelivery(msg.Body)
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to start RabbitMQ consumer")
		}
	}

	// --- Start HTTP Server ---
	go func() {
		log.Info().Str("addr", cfg.AppPort).Str("storage", cfg.Storage.Driver).Msg("starting server")
		if err := a.app.Listen(cfg.AppPort); err != nil {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-ctx.Done()
	log.Info().Msg("shutting down server")

	if err := a.app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("error during Fiber shutdown")
	}
	a.close()
	log.Info().Msg("server gracefully stopped")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
