//go:build !integration

package usecase

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"telegram-video-downloader/internal/domain"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, nil, 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLocateDownload(t *testing.T) {
	t.Run("slash in title matches underscore file name", func(t *testing.T) {
		dir := t.TempDir()
		want := touch(t, dir, "AC_DC Live.mp4")
		got, err := locateDownload(dir, "AC/DC Live", "")
		if err != nil || got != want {
			t.Fatalf("want %q, got %q (%v)", want, got, err)
		}
	})

	t.Run("prefix of a long title", func(t *testing.T) {
		dir := t.TempDir()
		want := touch(t, dir, "A very long title th-sanitized.mp4")
		got, err := locateDownload(dir, "A very long title that the engine shortened", "")
		if err != nil || got != want {
			t.Fatalf("want %q, got %q (%v)", want, got, err)
		}
	})

	t.Run("skips partial downloads", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "Clip.mp4.part")
		if _, err := locateDownload(dir, "Clip", ""); !errors.Is(err, domain.ErrDownloadFailed) {
			t.Fatalf("expected ErrDownloadFailed, got %v", err)
		}
	})

	t.Run("reported path outside dir is ignored", func(t *testing.T) {
		dir := t.TempDir()
		other := touch(t, t.TempDir(), "Clip.mp4")
		want := touch(t, dir, "Clip.mp4")
		got, err := locateDownload(dir, "Clip", other)
		if err != nil || got != want {
			t.Fatalf("want %q, got %q (%v)", want, got, err)
		}
	})

	t.Run("empty title never matches", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "whatever.mp4")
		if _, err := locateDownload(dir, "  ", ""); !errors.Is(err, domain.ErrDownloadFailed) {
			t.Fatalf("expected ErrDownloadFailed, got %v", err)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		if _, err := locateDownload(filepath.Join(t.TempDir(), "nope"), "x", ""); !errors.Is(err, domain.ErrDownloadFailed) {
			t.Fatalf("expected ErrDownloadFailed, got %v", err)
		}
	})
}
