//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"telegram-video-downloader/internal/domain/model"
	"telegram-video-downloader/internal/domain/ports/adapter"
)

// ---- Mock Extractor ----

// MockExtractor serves canned metadata and writes a file of FileSize bytes
// named FileName into the download directory.
type MockExtractor struct {
	mu sync.Mutex

	Info     *model.MediaInfo
	ProbeErr error

	FileName     string
	FileSize     int64
	ReportedName bool
	ModTime      time.Time
	DownloadErr  error

	ProbeCalls    int
	DownloadCalls int
	LastOptions   adapter.DownloadOptions
}

var _ adapter.Extractor = (*MockExtractor)(nil)

func (m *MockExtractor) Probe(ctx context.Context, url string) (*model.MediaInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProbeCalls++
	if m.ProbeErr != nil {
		return nil, m.ProbeErr
	}
	info := *m.Info
	return &info, nil
}

func (m *MockExtractor) Download(ctx context.Context, url string, opts adapter.DownloadOptions) (*adapter.DownloadOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DownloadCalls++
	m.LastOptions = opts
	if m.DownloadErr != nil {
		return nil, m.DownloadErr
	}
	out := &adapter.DownloadOutput{}
	if m.FileName == "" {
		return out, nil
	}
	path := filepath.Join(opts.Dir, m.FileName)
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(m.FileSize); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	if !m.ModTime.IsZero() {
		if err := os.Chtimes(path, m.ModTime, m.ModTime); err != nil {
			return nil, err
		}
	}
	if m.ReportedName {
		out.Filename = path
	}
	return out, nil
}

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
