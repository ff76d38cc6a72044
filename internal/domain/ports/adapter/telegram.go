// File: internal/domain/ports/adapter/telegram.go
package adapter

import "context"

type ParseMode string

const (
	ParseModeNone     ParseMode = ""
	ParseModeMarkdown ParseMode = "Markdown"
)

// Messenger is the outbound half of the transport used by the facade.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, mode ParseMode) (messageID int, err error)
	EditText(ctx context.Context, chatID int64, messageID int, text string) error
	Delete(ctx context.Context, chatID int64, messageID int) error
	SendVideo(ctx context.Context, chatID int64, path, caption string) error
}
