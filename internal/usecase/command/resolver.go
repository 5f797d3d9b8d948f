package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"song-queue-bot/internal/domain"
)

// maxAliasDepth ограничивает длину цепочки алиасов: цикл в таблице
// команд — дефект данных, он обрывается, а не раскручивается бесконечно.
const maxAliasDepth = 10

var (
	// ErrCommandNotFound — триггер не известен ни каналу, ни встроенным командам.
	ErrCommandNotFound = errors.New("команда не найдена")
	// ErrAliasLoop — цепочка алиасов превысила допустимую глубину.
	ErrAliasLoop = errors.New("цепочка алиасов не завершается")
	// ErrPermissionDenied — уровень доступа пользователя ниже требуемого.
	ErrPermissionDenied = errors.New("недостаточно прав")
)

// Resolution — терминальная команда после разворачивания алиасов.
// Заполнено ровно одно из полей Channel и Default.
type Resolution struct {
	Trigger string
	Channel *domain.CommandEntry
	Default *domain.DefaultCommand
	Level   int
}

// Resolve сопоставляет триггер команде: сначала команды канала, затем
// встроенные. Алиасы разворачиваются итеративно; цепочка может
// переходить между таблицами. Для встроенных команд уровень доступа
// берётся из переопределения канала, иначе из глобального значения.
func (s *Service) Resolve(ctx context.Context, channel, trigger string) (Resolution, error) {
	current := strings.ToLower(trigger)
	for depth := 0; depth < maxAliasDepth; depth++ {
		entry, err := s.repo.GetChannelCommand(ctx, channel, current)
		if err != nil {
			return Resolution{}, fmt.Errorf("чтение команды канала: %w", err)
		}
		if entry != nil {
			if entry.IsAlias {
				current = strings.ToLower(entry.AliasFor)
				continue
			}
			return Resolution{Trigger: current, Channel: entry, Level: entry.PermissionLevel}, nil
		}
		def, err := s.repo.GetDefaultCommand(ctx, current)
		if err != nil {
			return Resolution{}, fmt.Errorf("чтение встроенной команды: %w", err)
		}
		if def == nil {
			return Resolution{}, ErrCommandNotFound
		}
		if def.IsAlias {
			current = strings.ToLower(def.AliasFor)
			continue
		}
		level := def.DefaultLevel
		override, err := s.repo.GetDefaultPermission(ctx, current, channel)
		if err != nil {
			return Resolution{}, fmt.Errorf("чтение переопределения прав: %w", err)
		}
		if override != nil {
			level = override.Level
		}
		return Resolution{Trigger: current, Default: def, Level: level}, nil
	}
	return Resolution{}, ErrAliasLoop
}
