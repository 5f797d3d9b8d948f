package chat

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"song-queue-bot/internal/infra/metrics"
)

// Responder отправляет ответы бота в чат канала. Ключ канала — chat ID
// Telegram в десятичной записи.
type Responder struct {
	bot *tgbotapi.BotAPI
	log zerolog.Logger
}

// NewResponder создаёт отправителя.
func NewResponder(bot *tgbotapi.BotAPI, log zerolog.Logger) *Responder {
	return &Responder{bot: bot, log: log}
}

// Send отправляет текст, при необходимости частями.
func (r *Responder) Send(ctx context.Context, channel, text string) error {
	chatID, err := strconv.ParseInt(channel, 10, 64)
	if err != nil {
		return fmt.Errorf("разбор идентификатора канала: %w", err)
	}
	for _, part := range splitMessage(text) {
		msg := tgbotapi.NewMessage(chatID, part)
		start := time.Now()
		_, err := r.bot.Send(msg)
		metrics.ObserveNetworkRequest("telegram_bot", "send_message", channel, start, err)
		if err != nil {
			metrics.BotSendErrors.Inc()
			r.log.Error().Err(err).Str("channel", channel).Msg("не удалось отправить сообщение")
			return err
		}
	}
	return nil
}
