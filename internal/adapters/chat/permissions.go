package chat

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"song-queue-bot/internal/infra/metrics"
)

// Уровни доступа в канале.
const (
	LevelEveryone  = 0
	LevelModerator = 2
	LevelOwner     = 3
)

// TelegramPermissions выводит уровень доступа из статуса участника чата.
type TelegramPermissions struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramPermissions создаёт источник уровней доступа.
func NewTelegramPermissions(bot *tgbotapi.BotAPI) *TelegramPermissions {
	return &TelegramPermissions{bot: bot}
}

// UserLevel возвращает уровень пользователя: владелец чата — 3,
// администратор — 2, остальные — 0.
func (p *TelegramPermissions) UserLevel(ctx context.Context, channel, user string) (int, error) {
	chatID, err := strconv.ParseInt(channel, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("разбор идентификатора канала: %w", err)
	}
	userID, err := strconv.ParseInt(user, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("разбор идентификатора пользователя: %w", err)
	}
	start := time.Now()
	member, err := p.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	metrics.ObserveNetworkRequest("telegram_bot", "get_chat_member", channel, start, err)
	if err != nil {
		return 0, fmt.Errorf("статус участника: %w", err)
	}
	switch {
	case member.IsCreator():
		return LevelOwner, nil
	case member.IsAdministrator():
		return LevelModerator, nil
	default:
		return LevelEveryone, nil
	}
}
