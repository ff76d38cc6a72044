package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-video-downloader/internal/application"
)

// Kind is how an inbound text message is routed.
type Kind int

const (
	KindOther Kind = iota
	KindCommand
	KindURL
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindURL:
		return "url"
	default:
		return "other"
	}
}

// Classify routes plain text: a leading "/" is a command, a leading http(s):// is a URL.
func Classify(text string) Kind {
	trimmed := strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(trimmed, "/"):
		return KindCommand
	case application.IsURL(trimmed):
		return KindURL
	default:
		return KindOther
	}
}

func classifyMessage(m *tgbotapi.Message) Kind {
	if m.IsCommand() {
		return KindCommand
	}
	return Classify(m.Text)
}
