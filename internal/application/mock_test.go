//go:build !integration

package application_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"telegram-video-downloader/internal/domain"
	"telegram-video-downloader/internal/domain/model"
	"telegram-video-downloader/internal/domain/ports/adapter"
	"telegram-video-downloader/internal/infra/worker"
)

// ---- Mock Messenger ----

type call struct {
	Op      string // send | edit | delete | video
	ChatID  int64
	MsgID   int
	Text    string
	Mode    adapter.ParseMode
	Path    string
	Existed bool // for video: the file existed at upload time
}

type mockMessenger struct {
	mu     sync.Mutex
	calls  []call
	nextID int

	VideoErr error
}

var _ adapter.Messenger = (*mockMessenger)(nil)

func (m *mockMessenger) SendText(ctx context.Context, chatID int64, text string, mode adapter.ParseMode) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.calls = append(m.calls, call{Op: "send", ChatID: chatID, MsgID: m.nextID, Text: text, Mode: mode})
	return m.nextID, nil
}

func (m *mockMessenger) EditText(ctx context.Context, chatID int64, msgID int, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call{Op: "edit", ChatID: chatID, MsgID: msgID, Text: text})
	return nil
}

func (m *mockMessenger) Delete(ctx context.Context, chatID int64, msgID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call{Op: "delete", ChatID: chatID, MsgID: msgID})
	return nil
}

func (m *mockMessenger) SendVideo(ctx context.Context, chatID int64, path, caption string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, statErr := os.Stat(path)
	m.calls = append(m.calls, call{Op: "video", ChatID: chatID, Text: caption, Path: path, Existed: statErr == nil})
	return m.VideoErr
}

func (m *mockMessenger) ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.Op
	}
	return out
}

func (m *mockMessenger) last() call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[len(m.calls)-1]
}

// ---- Stub Extractor ----

type stubExtractor struct {
	mu            sync.Mutex
	info          model.MediaInfo
	probeErr      error
	fileName      string
	fileSize      int64
	probeCalls    int
	downloadCalls int
}

func (s *stubExtractor) Probe(ctx context.Context, url string) (*model.MediaInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probeCalls++
	if s.probeErr != nil {
		return nil, s.probeErr
	}
	info := s.info
	return &info, nil
}

func (s *stubExtractor) Download(ctx context.Context, url string, opts adapter.DownloadOptions) (*adapter.DownloadOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloadCalls++
	f, err := os.Create(filepath.Join(opts.Dir, s.fileName))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := f.Truncate(s.fileSize); err != nil {
		return nil, err
	}
	return &adapter.DownloadOutput{}, nil
}

// ---- Runners ----

type runnerFunc func(ctx context.Context, task worker.Task) error

func (f runnerFunc) Do(ctx context.Context, task worker.Task) error { return f(ctx, task) }

var inlineRunner = runnerFunc(func(ctx context.Context, task worker.Task) error { return task(ctx) })

// ---- Mock ChatLocker ----

type mockLocker struct {
	mu       sync.Mutex
	held     map[string]string
	unlocked []string
}

func (l *mockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = map[string]string{}
	}
	if _, ok := l.held[key]; ok {
		return "", domain.ErrInFlight
	}
	l.held[key] = "token-" + key
	return l.held[key], nil
}

func (l *mockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		l.unlocked = append(l.unlocked, key)
	}
	return nil
}

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func mediaInfo(title string, d time.Duration) model.MediaInfo {
	return model.MediaInfo{Title: title, Duration: d}
}
