// File: internal/infra/ytdlp/engine.go
package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog"

	"telegram-video-downloader/internal/domain/model"
	"telegram-video-downloader/internal/domain/ports/adapter"
	"telegram-video-downloader/internal/infra/logging"
)

// Engine drives the yt-dlp binary through go-ytdlp.
type Engine struct {
	executable string
	log        *zerolog.Logger
}

var _ adapter.Extractor = (*Engine)(nil)

// NewEngine returns an Engine. An empty executable means "yt-dlp" from PATH
// or the copy cached by Install.
func NewEngine(executable string, log *zerolog.Logger) *Engine {
	l := log.With().Str("component", "ytdlp").Logger()
	return &Engine{executable: executable, log: &l}
}

// Install makes sure a yt-dlp binary is available, downloading it into the
// user cache when neither PATH nor the cache has one.
func Install(ctx context.Context, log *zerolog.Logger) error {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return fmt.Errorf("install yt-dlp: %w", err)
	}
	log.Info().Str("executable", resolved.Executable).Str("version", resolved.Version).Msg("yt-dlp ready")
	return nil
}

func (e *Engine) command() *ytdlp.Command {
	cmd := ytdlp.New().NoPlaylist()
	if e.executable != "" {
		cmd = cmd.SetExecutable(e.executable)
	}
	return cmd
}

// Probe extracts metadata only; nothing is written to disk.
func (e *Engine) Probe(ctx context.Context, url string) (*model.MediaInfo, error) {
	defer logging.TraceDuration(e.log, "ytdlp.Probe")()

	res, err := e.command().SkipDownload().DumpJSON().Run(ctx, url)
	if err != nil {
		return nil, runError(res, err)
	}
	info, err := firstInfo(res)
	if err != nil {
		return nil, err
	}
	return &model.MediaInfo{
		Title:    deref(info.Title),
		Duration: seconds(info.Duration),
	}, nil
}

// downloadCommand keeps the file's mtime at download time so the janitor's
// retention clock starts when the file lands, not at the server's Last-Modified.
func (e *Engine) downloadCommand(opts adapter.DownloadOptions) *ytdlp.Command {
	return e.command().
		Format(opts.Format).
		Output(filepath.Join(opts.Dir, opts.OutputTemplate)).
		NoMtime().
		PrintJSON()
}

// Download fetches the media into opts.Dir using the given format selector and output template.
func (e *Engine) Download(ctx context.Context, url string, opts adapter.DownloadOptions) (*adapter.DownloadOutput, error) {
	defer logging.TraceDuration(e.log, "ytdlp.Download")()

	res, err := e.downloadCommand(opts).Run(ctx, url)
	if err != nil {
		return nil, runError(res, err)
	}

	out := &adapter.DownloadOutput{}
	// a missing filename is not fatal; the caller scans the directory
	if info, err := firstInfo(res); err == nil {
		out.Filename = deref(info.Filename)
	} else {
		e.log.Debug().Err(err).Msg("no extracted info in download output")
	}
	return out, nil
}

func firstInfo(res *ytdlp.Result) (*ytdlp.ExtractedInfo, error) {
	infos, err := res.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}
	if len(infos) == 0 || infos[0] == nil {
		return nil, errors.New("yt-dlp returned no media info")
	}
	return infos[0], nil
}

// runError keeps yt-dlp's own "ERROR: ..." line when there is one, since that
// is what users see.
func runError(res *ytdlp.Result, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if res != nil {
		if line := lastErrorLine(res.Stderr); line != "" {
			return &engineError{msg: line, err: err}
		}
	}
	return err
}

func lastErrorLine(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		l := strings.TrimSpace(lines[i])
		if strings.HasPrefix(l, "ERROR:") {
			return l
		}
	}
	return ""
}

type engineError struct {
	msg string
	err error
}

func (e *engineError) Error() string { return e.msg }
func (e *engineError) Unwrap() error { return e.err }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func seconds(f *float64) time.Duration {
	if f == nil || *f <= 0 {
		return 0
	}
	return time.Duration(*f * float64(time.Second))
}
