package model

import "time"

const (
	// MaxDuration is the longest media the bot will download.
	MaxDuration = 600 * time.Second
	// MaxFileSize is the upload ceiling for bots on the Telegram Bot API.
	MaxFileSize int64 = 50 * 1024 * 1024

	// FormatSelector prefers a stream at or under the size limit and falls back to best.
	FormatSelector = "best[filesize<?50M]/best"
	// OutputTemplate names files after the media title inside the download directory.
	OutputTemplate = "%(title)s.%(ext)s"
)

// DownloadRequest lives for exactly one inbound URL message.
type DownloadRequest struct {
	URL         string
	MaxDuration time.Duration
	MaxFileSize int64
}

func NewDownloadRequest(url string) DownloadRequest {
	return DownloadRequest{
		URL:         url,
		MaxDuration: MaxDuration,
		MaxFileSize: MaxFileSize,
	}
}

// MediaInfo is what the metadata probe reports.
type MediaInfo struct {
	Title    string
	Duration time.Duration
}

// DownloadResult holds either a local file path or an error, never both.
type DownloadResult struct {
	Path string
	Err  error
}

func (r DownloadResult) OK() bool { return r.Err == nil && r.Path != "" }
