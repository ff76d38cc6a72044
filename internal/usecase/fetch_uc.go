package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"telegram-video-downloader/internal/domain"
	"telegram-video-downloader/internal/domain/model"
	"telegram-video-downloader/internal/domain/ports/adapter"
	"telegram-video-downloader/internal/infra/logging"
)

// Compile-time check
var _ FetchUseCase = (*fetchUC)(nil)

// titlePrefixLen is how many leading title characters a file name may match on.
const titlePrefixLen = 20

// FetchUseCase turns a URL into a local media file within the size and duration limits.
type FetchUseCase interface {
	// Fetch returns the path of the downloaded file. The caller owns the file and
	// must hand it back to Cleanup.
	Fetch(ctx context.Context, req model.DownloadRequest) (string, error)
	Cleanup(path string)
}

type fetchUC struct {
	extractor adapter.Extractor
	dir       string
	log       *zerolog.Logger
}

func NewFetchUseCase(extractor adapter.Extractor, dir string, logger *zerolog.Logger) *fetchUC {
	l := logger.With().Str("component", "fetch_uc").Logger()
	return &fetchUC{
		extractor: extractor,
		dir:       dir,
		log:       &l,
	}
}

func (u *fetchUC) Fetch(ctx context.Context, req model.DownloadRequest) (string, error) {
	defer logging.TraceDuration(u.log, "FetchUC.Fetch")()
	log := logging.With(ctx, u.log)

	info, err := u.extractor.Probe(ctx, req.URL)
	if err != nil {
		return "", extractionErr(ctx, err)
	}
	if info.Duration > req.MaxDuration {
		log.Info().Str("title", info.Title).Dur("duration", info.Duration).Msg("rejected: too long")
		return "", domain.ErrTooLong
	}

	out, err := u.extractor.Download(ctx, req.URL, adapter.DownloadOptions{
		Dir:            u.dir,
		Format:         model.FormatSelector,
		OutputTemplate: model.OutputTemplate,
	})
	if err != nil {
		return "", extractionErr(ctx, err)
	}

	reported := ""
	if out != nil {
		reported = out.Filename
	}
	path, err := locateDownload(u.dir, info.Title, reported)
	if err != nil {
		log.Warn().Str("title", info.Title).Str("reported", reported).Msg("downloaded file not found")
		return "", err
	}

	st, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrFileMissing, err)
	}
	if st.Size() > req.MaxFileSize {
		log.Info().Str("path", path).Int64("size", st.Size()).Msg("rejected: too large")
		u.Cleanup(path)
		return "", domain.ErrTooLarge
	}

	// The janitor ages files by mtime; restart the clock for the upload.
	now := time.Now()
	if err := os.Chtimes(path, now, now); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to refresh mtime")
	}

	log.Info().Str("path", path).Int64("size", st.Size()).Msg("download ready")
	return path, nil
}

// Cleanup removes a file handed out by Fetch. Removing twice is fine.
func (u *fetchUC) Cleanup(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		u.log.Warn().Err(err).Str("path", path).Msg("failed to remove download")
	}
}

func extractionErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return domain.NewExtractionError(err)
}

// locateDownload finds the file the engine produced. A reported path inside dir
// wins; otherwise the directory is scanned in name order for an entry containing
// the title (slashes replaced by underscores) or starting with its first characters.
func locateDownload(dir, title, reported string) (string, error) {
	if reported != "" {
		if p, ok := insideDir(dir, reported); ok {
			if st, err := os.Stat(p); err == nil && st.Mode().IsRegular() {
				return p, nil
			}
		}
	}

	if strings.TrimSpace(title) == "" {
		return "", domain.ErrDownloadFailed
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", domain.ErrDownloadFailed
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	safeTitle := strings.ReplaceAll(title, "/", "_")
	prefix := title
	if r := []rune(title); len(r) > titlePrefixLen {
		prefix = string(r[:titlePrefixLen])
	}

	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || isPartial(name) {
			continue
		}
		if strings.Contains(name, safeTitle) || strings.HasPrefix(name, prefix) {
			return filepath.Join(dir, name), nil
		}
	}
	return "", domain.ErrDownloadFailed
}

func insideDir(dir, path string) (string, bool) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	if filepath.Dir(absPath) != absDir {
		return "", false
	}
	return absPath, true
}

// isPartial reports yt-dlp's in-progress artifacts.
func isPartial(name string) bool {
	return strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".ytdl")
}
