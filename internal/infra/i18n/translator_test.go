//go:build !integration

package i18n

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTranslator(t *testing.T) {
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "test_fa.yaml")
	contentBytes := []byte("greeting: سلام\nwelcome_user: سلام %s")
	if err := os.WriteFile(filePath, contentBytes, 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("failed to read temp file: %v", err)
	}

	translator, err := newTranslatorFromBytes(data)
	if err != nil {
		t.Fatalf("newTranslatorFromBytes failed: %v", err)
	}

	t.Run("should translate a simple key", func(t *testing.T) {
		got := translator.T("greeting")
		want := "سلام"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})

	t.Run("should return key if not found", func(t *testing.T) {
		got := translator.T("nonexistent_key")
		want := "nonexistent_key"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})

	t.Run("should format arguments correctly", func(t *testing.T) {
		got := translator.T("welcome_user", "Ali")
		want := "سلام Ali"
		if got != want {
			t.Errorf("wanted '%s', got '%s'", want, got)
		}
	})
}

func TestEmbeddedEnglishCatalog(t *testing.T) {
	tr, err := NewTranslator(LocalesFS, "en")
	if err != nil {
		t.Fatalf("NewTranslator failed: %v", err)
	}
	if tr.Lang() != "en" {
		t.Errorf("unexpected lang %q", tr.Lang())
	}

	want := "🔗 Please send me a video URL to download.\n\nUse /help to see supported platforms and usage instructions."
	if got := tr.T("send_url_prompt"); got != want {
		t.Errorf("send_url_prompt mismatch:\nwant %q\ngot  %q", want, got)
	}
	if got := tr.T("video_caption"); got != "✅ Here's your downloaded video!" {
		t.Errorf("unexpected caption %q", got)
	}
	if got := tr.T("error_too_long", 10); got != "❌ Video too long (max 10 minutes)" {
		t.Errorf("unexpected too-long text %q", got)
	}
	welcome := tr.T("welcome_message", 50, 10)
	if !strings.HasPrefix(welcome, "🎬 *Video Downloader Bot*") || !strings.Contains(welcome, "Max file size: 50MB") {
		t.Errorf("unexpected welcome text %q", welcome)
	}
}

func TestNewTranslatorUnknownLanguage(t *testing.T) {
	if _, err := NewTranslator(LocalesFS, "xx"); err == nil {
		t.Fatalf("expected error for missing locale")
	}
}
