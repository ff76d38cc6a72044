package telegram

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"telegram-video-downloader/internal/domain/ports/adapter"
)

var _ adapter.Messenger = (*NoopMessenger)(nil)

// NoopMessenger implements adapter.Messenger for local/dev runs.
// It logs messages instead of sending real Telegram messages.
type NoopMessenger struct {
	log    *zerolog.Logger
	nextID int64
}

func NewNoopMessenger(logger *zerolog.Logger) *NoopMessenger {
	l := logger.With().Str("component", "noop_telegram").Logger()
	return &NoopMessenger{log: &l}
}

// wait simulates a little network latency and respects ctx.
func wait(ctx context.Context) error {
	select {
	case <-time.After(50 * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *NoopMessenger) SendText(ctx context.Context, chatID int64, text string, mode adapter.ParseMode) (int, error) {
	if err := wait(ctx); err != nil {
		return 0, err
	}
	id := int(atomic.AddInt64(&n.nextID, 1))
	n.log.Info().Int64("tg_id", chatID).Int("msg_id", id).Str("mode", string(mode)).Msg(text)
	return id, nil
}

func (n *NoopMessenger) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := wait(ctx); err != nil {
		return err
	}
	n.log.Info().Int64("tg_id", chatID).Int("msg_id", messageID).Str("op", "edit").Msg(text)
	return nil
}

func (n *NoopMessenger) Delete(ctx context.Context, chatID int64, messageID int) error {
	n.log.Info().Int64("tg_id", chatID).Int("msg_id", messageID).Str("op", "delete").Msg("message deleted")
	return nil
}

func (n *NoopMessenger) SendVideo(ctx context.Context, chatID int64, path, caption string) error {
	if err := wait(ctx); err != nil {
		return err
	}
	n.log.Info().Int64("tg_id", chatID).Str("path", path).Str("op", "video").Msg(caption)
	return nil
}
