//go:build !integration

package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-video-downloader/internal/domain/model"
	"telegram-video-downloader/internal/domain/ports/adapter"
)

func TestLastErrorLine(t *testing.T) {
	cases := []struct {
		name   string
		stderr string
		want   string
	}{
		{"empty", "", ""},
		{"warnings only", "WARNING: something\nWARNING: else", ""},
		{"single error", "WARNING: x\nERROR: Unsupported URL: https://example.com/", "ERROR: Unsupported URL: https://example.com/"},
		{"last error wins", "ERROR: first\nERROR: second\n", "ERROR: second"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := lastErrorLine(tc.stderr); got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestRunErrorPassesCancellationThrough(t *testing.T) {
	wrapped := fmt.Errorf("run: %w", context.Canceled)
	if got := runError(nil, wrapped); !errors.Is(got, context.Canceled) {
		t.Fatalf("expected cancellation to survive, got %v", got)
	}
	plain := errors.New("exit status 1")
	if got := runError(nil, plain); got != plain {
		t.Fatalf("expected original error without result, got %v", got)
	}
}

func TestEngineErrorUnwraps(t *testing.T) {
	base := errors.New("exit status 1")
	err := &engineError{msg: "ERROR: private video", err: base}
	if err.Error() != "ERROR: private video" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected engineError to unwrap to base")
	}
}

func TestSecondsAndDeref(t *testing.T) {
	f := 120.5
	if got := seconds(&f); got != 120*time.Second+500*time.Millisecond {
		t.Fatalf("unexpected duration %s", got)
	}
	if seconds(nil) != 0 {
		t.Fatalf("nil duration should be zero")
	}
	neg := -1.0
	if seconds(&neg) != 0 {
		t.Fatalf("negative duration should be zero")
	}
	s := "title"
	if deref(&s) != "title" || deref(nil) != "" {
		t.Fatalf("deref mismatch")
	}
}

func TestDownloadCommandFlags(t *testing.T) {
	logger := zerolog.New(io.Discard)
	e := NewEngine("", &logger)
	dir := t.TempDir()

	flags := e.downloadCommand(adapter.DownloadOptions{
		Dir:            dir,
		Format:         model.FormatSelector,
		OutputTemplate: model.OutputTemplate,
	}).GetFlagConfig().ToFlags()

	got := map[string][]any{}
	for _, f := range flags {
		got[f.Flag] = f.Args
	}
	for _, want := range []string{"--no-mtime", "--no-playlist", "--print-json"} {
		if _, ok := got[want]; !ok {
			t.Errorf("expected %s in %v", want, got)
		}
	}
	if _, ok := got["--mtime"]; ok {
		t.Errorf("download must not stamp files with the server's Last-Modified time")
	}
	out, ok := got["--output"]
	if !ok || len(out) != 1 || out[0] != filepath.Join(dir, model.OutputTemplate) {
		t.Errorf("unexpected output flag %v", out)
	}
}
