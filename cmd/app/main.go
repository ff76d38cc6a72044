// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"telegram-video-downloader/internal/application"
	"telegram-video-downloader/internal/config"
	"telegram-video-downloader/internal/domain/ports/adapter"
	tele "telegram-video-downloader/internal/infra/adapters/telegram"
	httpapi "telegram-video-downloader/internal/infra/http"
	"telegram-video-downloader/internal/infra/i18n"
	"telegram-video-downloader/internal/infra/logging"
	"telegram-video-downloader/internal/infra/metrics"
	red "telegram-video-downloader/internal/infra/redis"
	"telegram-video-downloader/internal/infra/sched"
	"telegram-video-downloader/internal/infra/worker"
	"telegram-video-downloader/internal/infra/ytdlp"
	"telegram-video-downloader/internal/usecase"
)

// set with -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "none"
)

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted secrets)")
	fetchURL := flag.String("fetch", "", "dev: run one download for this URL against a logging messenger and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (%s)\n", version, commit)
		return
	}

	if *fetchURL != "" && os.Getenv(config.EnvBotToken) == "" {
		// the token is irrelevant for a local fetch
		_ = os.Setenv(config.EnvBotToken, "local:fetch")
	}
	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	logger.Info().
		Str("version", version).
		Str("bot_token", logging.Redact(cfg.Bot.Token, cfg.Runtime.Dev)).
		Bool("dev", cfg.Runtime.Dev).
		Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *fetchURL); err != nil {
		logger.Error().Err(err).Msg("exiting with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, fetchURL string) error {
	// ---- Metrics ----
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Scratch directory ----
	if err := os.MkdirAll(cfg.Download.Dir, 0o755); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}

	// ---- Extraction engine ----
	if cfg.Download.Install && cfg.Download.YtDlpPath == "" {
		if err := ytdlp.Install(ctx, logger); err != nil {
			return err
		}
	}
	engine := ytdlp.NewEngine(cfg.Download.YtDlpPath, logger)

	// ---- i18n ----
	translator, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Language)
	if err != nil {
		return fmt.Errorf("i18n: %w", err)
	}

	// ---- Worker pool ----
	pool := worker.NewPool(cfg.Download.Workers, cfg.Download.QueueDepth, *logger)
	pool.Start(ctx)
	defer pool.Stop()

	fetchUC := usecase.NewFetchUseCase(engine, cfg.Download.Dir, logger)

	// ---- Dev: single fetch ----
	if fetchURL != "" {
		facade := application.NewBotFacade(fetchUC, pool, tele.NewNoopMessenger(logger), translator, logger)
		return facade.HandleURL(ctx, 0, fetchURL)
	}

	// ---- Redis (optional) ----
	var (
		redisClient *red.Client
		rateLimiter *red.RateLimiter
	)
	if cfg.Redis.Enabled() {
		redisClient, err = red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer redisClient.Close()
		rateLimiter = red.NewRateLimiter(redisClient)
		logger.Info().Str("addr", cfg.Redis.URL).Msg("redis connected")
	}

	// ---- Telegram ----
	client, err := tele.NewClient(cfg.Bot.Token, logger)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	var messenger adapter.Messenger = client

	facade := application.NewBotFacade(fetchUC, pool, messenger, translator, logger)
	if redisClient != nil {
		facade.WithChatLock(red.NewLocker(redisClient), cfg.Redis.LockTTL)
	}

	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, client, facade, translator, logger)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	botAdapter.WithRateLimiter(rateLimiter)
	if strings.ToLower(cfg.Bot.Mode) != "polling" {
		logger.Warn().Str("mode", cfg.Bot.Mode).Msg("bot.mode not implemented; falling back to polling")
	}

	// ---- Janitor ----
	janitor := sched.NewJanitor(cfg.Download.Dir, cfg.Scheduler.CleanupCron, cfg.Scheduler.Retention, logger)
	if err := janitor.Start(); err != nil {
		return fmt.Errorf("janitor: %w", err)
	}
	defer janitor.Stop()

	// ---- Ops HTTP server ----
	var ops *httpapi.Server
	if cfg.Admin.Port > 0 {
		ops = httpapi.NewServer(cfg.Admin.Port, logger)
		if redisClient != nil {
			ops.AddCheck("redis", redisClient.Ping)
		}
		go func() {
			if err := ops.Start(); err != nil {
				logger.Error().Err(err).Msg("ops server stopped")
			}
		}()
	}

	logger.Info().Str("bot", client.Username()).Msg("bot is running")
	err = botAdapter.StartPolling(ctx)

	// ---- Shutdown ----
	logger.Info().Msg("shutting down")
	if ops != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ops.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("ops server shutdown")
		}
	}
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
