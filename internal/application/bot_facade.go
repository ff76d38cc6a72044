package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-video-downloader/internal/domain"
	"telegram-video-downloader/internal/domain/model"
	"telegram-video-downloader/internal/domain/ports/adapter"
	"telegram-video-downloader/internal/infra/i18n"
	"telegram-video-downloader/internal/infra/logging"
	"telegram-video-downloader/internal/infra/metrics"
	"telegram-video-downloader/internal/infra/worker"
)

var urlPattern = regexp.MustCompile(`^https?://`)

// IsURL reports whether text, once trimmed, starts with http:// or https://.
func IsURL(text string) bool {
	return urlPattern.MatchString(strings.TrimSpace(text))
}

// BotFacade turns inbound conversation events into replies.
// Workflow failures never leave HandleURL; only transport errors do.
type BotFacade struct {
	fetch     FetchUseCaseIface
	runner    TaskRunner
	messenger adapter.Messenger
	tr        *i18n.Translator
	log       *zerolog.Logger

	locker  ChatLocker
	lockTTL time.Duration
}

func NewBotFacade(
	fetch FetchUseCaseIface,
	runner TaskRunner,
	messenger adapter.Messenger,
	tr *i18n.Translator,
	logger *zerolog.Logger,
) *BotFacade {
	l := logger.With().Str("component", "bot_facade").Logger()
	return &BotFacade{
		fetch:     fetch,
		runner:    runner,
		messenger: messenger,
		tr:        tr,
		log:       &l,
	}
}

// WithChatLock makes HandleURL refuse a second download for a chat until the first ends.
func (b *BotFacade) WithChatLock(locker ChatLocker, ttl time.Duration) *BotFacade {
	b.locker = locker
	b.lockTTL = ttl
	return b
}

func (b *BotFacade) HandleStart(ctx context.Context, chatID int64) error {
	text := b.tr.T("welcome_message", model.MaxFileSize/(1024*1024), int(model.MaxDuration/time.Minute))
	_, err := b.messenger.SendText(ctx, chatID, text, adapter.ParseModeMarkdown)
	return err
}

func (b *BotFacade) HandleHelp(ctx context.Context, chatID int64) error {
	_, err := b.messenger.SendText(ctx, chatID, b.tr.T("help_message"), adapter.ParseModeMarkdown)
	return err
}

func (b *BotFacade) HandleUnknownCommand(ctx context.Context, chatID int64) error {
	_, err := b.messenger.SendText(ctx, chatID, b.tr.T("unknown_command"), adapter.ParseModeNone)
	return err
}

// HandleOther answers any text that is neither a command nor a URL.
func (b *BotFacade) HandleOther(ctx context.Context, chatID int64) error {
	_, err := b.messenger.SendText(ctx, chatID, b.tr.T("send_url_prompt"), adapter.ParseModeNone)
	return err
}

// HandleRateLimited tells the chat to slow down.
func (b *BotFacade) HandleRateLimited(ctx context.Context, chatID int64) error {
	_, err := b.messenger.SendText(ctx, chatID, b.Render(domain.ErrRateLimited), adapter.ParseModeNone)
	return err
}

// HandleURL runs the whole fetch-and-deliver flow for one URL message.
func (b *BotFacade) HandleURL(ctx context.Context, chatID int64, rawURL string) error {
	url := strings.TrimSpace(rawURL)
	if !IsURL(url) {
		_, err := b.messenger.SendText(ctx, chatID, b.Render(domain.ErrInvalidURL), adapter.ParseModeNone)
		return err
	}

	ctx = logging.WithTgID(logging.WithTraceID(ctx, uuid.NewString()), chatID)
	log := logging.With(ctx, b.log)

	if b.locker != nil {
		release, err := b.lockChat(ctx, chatID)
		if err != nil {
			if errors.Is(err, domain.ErrInFlight) {
				_, sendErr := b.messenger.SendText(ctx, chatID, b.Render(err), adapter.ParseModeNone)
				return sendErr
			}
			// lock backend trouble should not block downloads
			log.Warn().Err(err).Msg("chat lock unavailable, continuing without it")
		} else {
			defer release()
		}
	}

	defer metrics.TrackInFlight()()

	progressID, err := b.messenger.SendText(ctx, chatID, b.tr.T("progress_processing"), adapter.ParseModeNone)
	if err != nil {
		return fmt.Errorf("send progress: %w", err)
	}

	path, err := b.runFetch(ctx, url)
	if err != nil {
		return b.fail(ctx, log, chatID, progressID, err)
	}
	defer b.fetch.Cleanup(path)

	if err := b.deliver(ctx, chatID, progressID, path); err != nil {
		return b.fail(ctx, log, chatID, progressID, err)
	}

	if err := b.messenger.Delete(ctx, chatID, progressID); err != nil {
		log.Warn().Err(err).Msg("failed to delete progress message")
	}
	metrics.IncDownload(metrics.ResultOK)
	log.Info().Str("url", url).Msg("video delivered")
	return nil
}

func (b *BotFacade) lockChat(ctx context.Context, chatID int64) (func(), error) {
	key := chatLockKey(chatID)
	token, err := b.locker.TryLock(ctx, key, b.lockTTL)
	if err != nil {
		return nil, err
	}
	return func() {
		// the request ctx may already be done
		if err := b.locker.Unlock(context.Background(), key, token); err != nil {
			b.log.Warn().Err(err).Int64("tg_id", chatID).Msg("failed to release chat lock")
		}
	}, nil
}

func chatLockKey(chatID int64) string {
	return fmt.Sprintf("lock:download:%d", chatID)
}

// runFetch hands the workflow to the worker pool and waits for it.
func (b *BotFacade) runFetch(ctx context.Context, url string) (string, error) {
	start := time.Now()
	defer func() { metrics.ObserveStage("fetch", time.Since(start)) }()

	res := make(chan model.DownloadResult, 1)
	err := b.runner.Do(ctx, func(ctx context.Context) error {
		path, err := b.fetch.Fetch(ctx, model.NewDownloadRequest(url))
		res <- model.DownloadResult{Path: path, Err: err}
		return err
	})
	if errors.Is(err, worker.ErrQueueFull) {
		metrics.IncPoolRejected()
		return "", domain.ErrBusy
	}
	if err != nil {
		return "", err
	}
	r := <-res
	if !r.OK() {
		return "", domain.ErrDownloadFailed
	}
	return r.Path, nil
}

func (b *BotFacade) deliver(ctx context.Context, chatID int64, progressID int, path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrFileMissing, err)
	}

	if err := b.messenger.EditText(ctx, chatID, progressID, b.tr.T("progress_uploading")); err != nil {
		return fmt.Errorf("edit progress: %w", err)
	}

	start := time.Now()
	if err := b.messenger.SendVideo(ctx, chatID, path, b.tr.T("video_caption")); err != nil {
		return fmt.Errorf("upload video: %w", err)
	}
	metrics.ObserveStage("upload", time.Since(start))
	metrics.ObserveFileSize(st.Size())
	return nil
}

// fail reports err on the progress message. Only a failed edit is returned.
func (b *BotFacade) fail(ctx context.Context, log *zerolog.Logger, chatID int64, progressID int, err error) error {
	result := resultLabel(err)
	metrics.IncDownload(result)
	if result == metrics.ResultError {
		log.Error().Err(err).Msg("download request failed")
	} else {
		log.Info().Err(err).Str("result", result).Msg("download request rejected")
	}

	// the edit must go out even when the request ctx was cancelled mid-flight
	editCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		editCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
	}
	if editErr := b.messenger.EditText(editCtx, chatID, progressID, b.Render(err)); editErr != nil {
		return fmt.Errorf("edit progress with error: %w", editErr)
	}
	return nil
}

// Render converts an error into the single line shown to the user.
func (b *BotFacade) Render(err error) string {
	var extErr *domain.ExtractionError
	switch {
	case errors.Is(err, domain.ErrInvalidURL):
		return b.tr.T("error_invalid_url")
	case errors.Is(err, domain.ErrTooLong):
		return b.tr.T("error_too_long", int(model.MaxDuration/time.Minute))
	case errors.Is(err, domain.ErrDownloadFailed):
		return b.tr.T("error_download_failed")
	case errors.As(err, &extErr):
		return b.tr.T("error_extraction", extErr.Detail)
	case errors.Is(err, domain.ErrTooLarge):
		return b.tr.T("error_too_large", model.MaxFileSize/(1024*1024))
	case errors.Is(err, domain.ErrFileMissing):
		return b.tr.T("error_file_missing")
	case errors.Is(err, domain.ErrBusy):
		return b.tr.T("error_busy")
	case errors.Is(err, domain.ErrRateLimited):
		return b.tr.T("error_rate_limited")
	case errors.Is(err, domain.ErrInFlight):
		return b.tr.T("error_in_flight")
	default:
		return b.tr.T("error_generic", err.Error())
	}
}

func resultLabel(err error) string {
	var extErr *domain.ExtractionError
	switch {
	case errors.Is(err, domain.ErrTooLong):
		return metrics.ResultTooLong
	case errors.Is(err, domain.ErrTooLarge):
		return metrics.ResultTooLarge
	case errors.Is(err, domain.ErrDownloadFailed), errors.Is(err, domain.ErrFileMissing):
		return metrics.ResultDownloadFailed
	case errors.As(err, &extErr):
		return metrics.ResultExtraction
	case errors.Is(err, domain.ErrBusy):
		return metrics.ResultBusy
	default:
		return metrics.ResultError
	}
}
