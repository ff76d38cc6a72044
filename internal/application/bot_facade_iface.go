package application

import (
	"context"
	"time"

	"telegram-video-downloader/internal/domain/model"
	"telegram-video-downloader/internal/infra/worker"
)

// ---- small interfaces to decouple the facade from concrete implementations ----

type FetchUseCaseIface interface {
	Fetch(ctx context.Context, req model.DownloadRequest) (string, error)
	Cleanup(path string)
}

// TaskRunner runs a task off the calling goroutine and waits for its result.
type TaskRunner interface {
	Do(ctx context.Context, task worker.Task) error
}

// ChatLocker guards a conversation against concurrent downloads.
type ChatLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
