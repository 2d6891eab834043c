package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CupSentinel/internal/analyzer"
	"CupSentinel/internal/api"
	"CupSentinel/internal/collector"
	"CupSentinel/internal/config"
	"CupSentinel/internal/logging"
	"CupSentinel/internal/metrics"
	"CupSentinel/internal/notifier"
	"CupSentinel/internal/scheduler"
	"CupSentinel/internal/store"

	"github.com/rs/zerolog"
)

func main() {
	// Load config
	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, logCloser := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer logCloser.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Str("detection_config", cfg.Detection.Version).Msg("CupSentinel starting")

	book, err := config.NewSymbolBook(cfg.Symbols)
	if err != nil {
		log.Fatal().Err(err).Msg("build symbol book")
	}
	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		log.Fatal().Err(err).Msg("load timezone")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("open price store")
	}
	defer st.Close()

	rec := metrics.New()

	fetcher := newFetcher(cfg)
	log.Info().Str("source", fetcher.Name()).Strs("tickers", book.Tickers()).Msg("data source ready")
	col := collector.NewCollector(fetcher, st, book.Tickers(), rec, log)

	if cfg.DataSource.Backfill {
		go func() {
			if _, err := col.Backfill(ctx, cfg.DataSource.Interval, cfg.RetentionWindow()); err != nil {
				log.Error().Err(err).Msg("backfill failed")
			}
		}()
	}

	an := analyzer.New(book, st, cfg.Detection, cfg.RetentionWindow(), rec, log)

	// Telegram is optional
	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		sender = tn
	}

	sched := scheduler.NewScheduler(ctx, col, st, an, book, sender, loc, cfg.RetentionWindow(), log)
	if err := sched.UseStateFile(cfg.Schedule.StateFile); err != nil {
		log.Warn().Err(err).Msg("alert state unavailable, starting fresh")
	}
	if err := sched.RegisterAll(scheduler.Jobs{
		FetchCron: cfg.Schedule.FetchCron,
		TrimCron:  cfg.Schedule.TrimCron,
		ScanCron:  cfg.Schedule.ScanCron,
	}); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil && cfg.Telegram.Polling {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	srv := api.NewServer(cfg.Server.Addr, api.NewHandler(an, book, log), rec, log)
	srv.Start()

	log.Info().Msg("CupSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer done()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("CupSentinel stopped")
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.PriceStore, error) {
	switch cfg.Store.Backend {
	case "redis":
		return store.NewRedisStore(ctx, store.RedisOptions{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		}, log)
	case "memory":
		log.Warn().Msg("using in-memory price store, samples are lost on restart")
		return store.NewMemoryStore(), nil
	default:
		return store.NewSQLiteStore(cfg.Store.SQLitePath, log)
	}
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case "rest":
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case "mock":
		return &collector.MockFetcher{}
	default:
		return collector.NewYahooFetcher(cfg.Proxy)
	}
}
