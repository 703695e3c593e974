package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirhosein2004/sale-tele-bot/internal/config"
	"github.com/amirhosein2004/sale-tele-bot/internal/flow"
	"github.com/amirhosein2004/sale-tele-bot/internal/httpapi"
	"github.com/amirhosein2004/sale-tele-bot/internal/infra"
	"github.com/amirhosein2004/sale-tele-bot/internal/metrics"
	"github.com/amirhosein2004/sale-tele-bot/internal/repository"
	"github.com/amirhosein2004/sale-tele-bot/internal/service"
	"github.com/amirhosein2004/sale-tele-bot/internal/session"
	"github.com/amirhosein2004/sale-tele-bot/internal/telegram"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// newLogger builds the process logger — dev: pretty console, prod: JSON.
func newLogger(env string, out io.Writer) zerolog.Logger {
	if env == "production" {
		return zerolog.New(out).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log.Logger = newLogger(cfg.Env, os.Stderr)
	if cfg.BotToken == "" {
		log.Fatal().Msg("BOT_TOKEN is required")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	var rdb *goredis.Client
	var store session.Store
	switch cfg.SessionStore {
	case "redis":
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		store = session.NewRedisStore(rdb)
	default:
		store = session.NewMemoryStore()
	}

	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	inventorySvc := service.NewInventoryService(productRepo)
	salesSvc := service.NewSalesService(saleRepo, productRepo)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	engine := flow.NewEngine(store, inventorySvc, salesSvc, m, cfg.PageSize)

	bot, err := telegram.New(cfg.BotToken, engine, cfg.AllowedIDs())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create telegram bot")
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.New(cfg.Env, db, rdb, registry, salesSvc),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("ops server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ops server error")
		}
	}()

	go func() {
		log.Info().Msg("telegram bot polling")
		bot.Start()
	}()

	// Graceful shutdown on SIGINT / SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down…")
	bot.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("bot exited")
}
