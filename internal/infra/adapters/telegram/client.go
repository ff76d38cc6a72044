package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-video-downloader/internal/domain/ports/adapter"
	"telegram-video-downloader/internal/infra/metrics"
)

var _ adapter.Messenger = (*Client)(nil)

// Client implements the outbound Messenger port on top of the Bot API.
type Client struct {
	bot *tgbotapi.BotAPI
	log *zerolog.Logger
}

func NewClient(token string, logger *zerolog.Logger) (*Client, error) {
	return newClient(token, tgbotapi.APIEndpoint, logger)
}

// newClient talks to the Bot API at endpoint, a "%s" token and "%s" method pattern.
func newClient(token, endpoint string, logger *zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("bot token is empty")
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, err
	}
	l := logger.With().Str("component", "telegram").Str("bot", bot.Self.UserName).Logger()
	return &Client{bot: bot, log: &l}, nil
}

func (c *Client) Username() string { return c.bot.Self.UserName }

func (c *Client) SendText(ctx context.Context, chatID int64, text string, mode adapter.ParseMode) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = string(mode)
	sent, err := c.bot.Send(msg)
	if err != nil {
		metrics.IncSendError("send")
		return 0, err
	}
	return sent.MessageID, nil
}

func (c *Client) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.bot.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
	if err != nil && !isNotModified(err) {
		metrics.IncSendError("edit")
		return err
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		metrics.IncSendError("delete")
		return err
	}
	return nil
}

// SendVideo uploads the file at path as a streamable video.
func (c *Client) SendVideo(ctx context.Context, chatID int64, path, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(path))
	v.Caption = caption
	v.SupportsStreaming = true
	if _, err := c.bot.Send(v); err != nil {
		metrics.IncSendError("video")
		return err
	}
	return nil
}

// SetCommands publishes the command menu. Failures are logged only.
func (c *Client) SetCommands(commands map[string]string) {
	list := make([]tgbotapi.BotCommand, 0, len(commands))
	for _, name := range []string{"start", "help"} {
		if desc, ok := commands[name]; ok {
			list = append(list, tgbotapi.BotCommand{Command: name, Description: desc})
		}
	}
	if _, err := c.bot.Request(tgbotapi.NewSetMyCommands(list...)); err != nil {
		c.log.Warn().Err(err).Msg("setMyCommands failed")
	}
}

// isNotModified matches the Bot API error for an edit with identical content.
func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
