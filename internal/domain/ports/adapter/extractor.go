// File: internal/domain/ports/adapter/extractor.go
package adapter

import (
	"context"

	"telegram-video-downloader/internal/domain/model"
)

// DownloadOptions tells the extraction engine where and how to save the media.
type DownloadOptions struct {
	Dir            string
	Format         string
	OutputTemplate string
}

// DownloadOutput is what the engine reports after a download.
// Filename is empty when the engine did not report one.
type DownloadOutput struct {
	Filename string
}

// Extractor is the port for the external media extraction engine.
type Extractor interface {
	// Probe reads metadata only; nothing is written to disk.
	Probe(ctx context.Context, url string) (*model.MediaInfo, error)
	Download(ctx context.Context, url string, opts DownloadOptions) (*DownloadOutput, error)
}
