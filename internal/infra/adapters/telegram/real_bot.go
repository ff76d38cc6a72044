package telegram

import (
	"context"
	"errors"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-video-downloader/internal/config"
	"telegram-video-downloader/internal/infra/i18n"
	"telegram-video-downloader/internal/infra/logging"
	"telegram-video-downloader/internal/infra/metrics"
	red "telegram-video-downloader/internal/infra/redis"
)

// Handler is the facade surface the adapter routes to.
type Handler interface {
	HandleStart(ctx context.Context, chatID int64) error
	HandleHelp(ctx context.Context, chatID int64) error
	HandleUnknownCommand(ctx context.Context, chatID int64) error
	HandleOther(ctx context.Context, chatID int64) error
	HandleURL(ctx context.Context, chatID int64, url string) error
	HandleRateLimited(ctx context.Context, chatID int64) error
}

type rateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RealTelegramBotAdapter long-polls the Bot API and routes messages to the Handler.
type RealTelegramBotAdapter struct {
	client      *Client
	username    string
	cfg         *config.BotConfig
	handler     Handler
	rateLimiter rateLimiter
	translator  *i18n.Translator
	log         *zerolog.Logger

	updateWorkers int
	cancelPolling context.CancelFunc
	mu            sync.Mutex
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig, client *Client, handler Handler, translator *i18n.Translator, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if handler == nil {
		return nil, errors.New("bot handler is nil")
	}
	if translator == nil {
		return nil, errors.New("translator is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}
	l := logger.With().Str("component", "telegram_adapter").Logger()
	username := ""
	if client != nil {
		username = client.Username()
	}
	return &RealTelegramBotAdapter{
		client:        client,
		username:      username,
		cfg:           cfg,
		handler:       handler,
		translator:    translator,
		log:           &l,
		updateWorkers: workers,
	}, nil
}

// WithRateLimiter enables per-chat throttling using cfg.RateLimit and cfg.RateWindow.
func (r *RealTelegramBotAdapter) WithRateLimiter(rl *red.RateLimiter) *RealTelegramBotAdapter {
	if rl != nil && r.cfg.RateLimit > 0 {
		r.rateLimiter = rl
	}
	return r
}

// StartPolling blocks until ctx is cancelled or StopPolling is called.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	if r.client == nil {
		return errors.New("telegram client is nil")
	}
	r.client.SetCommands(map[string]string{
		"start": r.describe("start"),
		"help":  r.describe("help"),
	})

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.client.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancelPolling = cancel
	r.mu.Unlock()

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Msg("update handling failed")
					}
				}
			}
		}(i)
	}

	r.log.Info().Int("workers", r.updateWorkers).Msg("polling started")
	for {
		select {
		case <-ctx.Done():
			r.client.bot.StopReceivingUpdates()
			wg.Wait()
			r.log.Info().Msg("polling stopped")
			return ctx.Err()
		case up := <-updates:
			select {
			case updateChan <- up:
			case <-ctx.Done():
			}
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		return nil
	}
	chatID := msg.Chat.ID
	ctx = logging.WithTgID(ctx, chatID)

	kind := classifyMessage(msg)
	metrics.IncUpdate(kind.String())

	if r.rateLimiter != nil {
		allowed, err := r.rateLimiter.Allow(ctx, red.ChatMessageKey(chatID), r.cfg.RateLimit, r.cfg.RateWindow)
		if err != nil {
			r.log.Warn().Err(err).Int64("tg_id", chatID).Msg("rate limit check failed")
		} else if !allowed {
			metrics.IncRateLimitTriggered()
			return r.handler.HandleRateLimited(ctx, chatID)
		}
	}

	switch kind {
	case KindCommand:
		return r.handleCommand(ctx, msg)
	case KindURL:
		return r.handler.HandleURL(ctx, chatID, msg.Text)
	default:
		return r.handler.HandleOther(ctx, chatID)
	}
}
