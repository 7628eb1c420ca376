package gateway

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rahul/planweave/internal/observability"
)

// PlatformTelegram prefixes Telegram chat ids in stored tasks.
const PlatformTelegram = "telegram"

const telegramMessageLimit = 4096

type TelegramGateway struct {
	Bot     *tgbotapi.BotAPI
	Handler *Handler

	logger *observability.Logger
}

func NewTelegramGateway(token string, handler *Handler, logger *observability.Logger) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observability.NewNop()
	}

	logger.Slog().Info("telegram authorized", "account", bot.Self.UserName)

	return &TelegramGateway{
		Bot:     bot,
		Handler: handler,
		logger:  logger,
	}, nil
}

func (tg *TelegramGateway) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			tg.Bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			go tg.reply(ctx, update.Message)
		}
	}
}

func (tg *TelegramGateway) reply(ctx context.Context, msg *tgbotapi.Message) {
	user := ""
	if msg.From != nil {
		user = msg.From.UserName
	}
	tg.logger.Slog().InfoContext(ctx, "telegram message", "user", user, "chat_id", msg.Chat.ID)

	chatID := PlatformTelegram + ":" + strconv.FormatInt(msg.Chat.ID, 10)
	response := tg.Handler.Handle(ctx, chatID, msg.Text)

	if err := tg.Send(ctx, strconv.FormatInt(msg.Chat.ID, 10), response); err != nil {
		tg.logger.Slog().ErrorContext(ctx, "telegram send failed", "chat_id", msg.Chat.ID, "error", err)
	}
}

// Send posts text to a numeric Telegram chat id, split to the message limit.
func (tg *TelegramGateway) Send(ctx context.Context, chatID string, text string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid chat ID: %s", chatID)
	}

	for _, part := range chunk(text, telegramMessageLimit) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := tg.Bot.Send(tgbotapi.NewMessage(id, part)); err != nil {
			return err
		}
	}
	return nil
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}
