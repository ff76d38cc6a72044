package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-video-downloader/internal/infra/metrics"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start": r.handleStartCommand,
		"help":  r.handleHelpCommand,
	}
}

func (r *RealTelegramBotAdapter) describe(command string) string {
	return r.translator.T("menu_" + command)
}

func (r *RealTelegramBotAdapter) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	if !r.addressedToBot(message) {
		r.log.Debug().Str("command", message.CommandWithAt()).Msg("command for another bot ignored")
		return nil
	}
	name := message.Command()
	if name == "" {
		// "/" typed without a command entity, e.g. "/ start"
		return r.handler.HandleUnknownCommand(ctx, message.Chat.ID)
	}
	metrics.IncTelegramCommand("/" + name)

	if h, ok := r.commandRoutes()[name]; ok {
		return h(ctx, message)
	}
	return r.handler.HandleUnknownCommand(ctx, message.Chat.ID)
}

// addressedToBot reports whether a command is unqualified or names this bot,
// e.g. "/start" or "/start@ThisBot" but not "/start@OtherBot".
func (r *RealTelegramBotAdapter) addressedToBot(message *tgbotapi.Message) bool {
	_, to, qualified := strings.Cut(message.CommandWithAt(), "@")
	return !qualified || strings.EqualFold(to, r.username)
}

func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.handler.HandleStart(ctx, message.Chat.ID)
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.handler.HandleHelp(ctx, message.Chat.ID)
}
