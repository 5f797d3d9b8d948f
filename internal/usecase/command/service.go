package command

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"song-queue-bot/internal/domain"
	"song-queue-bot/internal/infra/cachekeys"
)

// Ответы бота на операции с командами. Тексты — контракт интерфейса.
const (
	msgAddSyntax      = "The syntax to add a command is !commands add !commandtoadd text"
	msgAliasSyntax    = "The syntax to add an alias is !commands addalias !newcommandname !commandtoalias"
	msgEditSyntax     = "The syntax to edit a command is !commands edit !commandtoedit text"
	msgDeleteSyntax   = "The syntax to delete a command is !commands delete !commandtodelete"
	msgPermSyntax     = "The syntax to set command permissions is !commands permission !command level"
	msgListEmpty      = "The list is empty!"
	msgListItemAbsent = "That item doesn't exist!"
)

// Service реализует управление командами канала: добавление, алиасы,
// правку, удаление, права доступа и шаблонные подстановки при вызове.
type Service struct {
	repo   domain.CommandRepo
	perms  domain.PermissionSource
	cache  domain.Cache
	events domain.EventSink
	intn   func(n int) int
}

// NewService создаёт сервис команд.
func NewService(repo domain.CommandRepo, perms domain.PermissionSource, cache domain.Cache, events domain.EventSink) *Service {
	return &Service{
		repo:   repo,
		perms:  perms,
		cache:  cache,
		events: events,
		intn:   rand.Intn,
	}
}

// HandleCommandsOp разбирает подкоманду "!commands ..." и выполняет её.
// args — токены сообщения после триггера. Возвращает текст ответа в чат.
func (s *Service) HandleCommandsOp(ctx context.Context, channel, actor string, args []string) (string, error) {
	if len(args) == 0 {
		return msgAddSyntax, nil
	}
	switch strings.ToLower(args[0]) {
	case "add":
		return s.addCommand(ctx, channel, args[1:])
	case "addalias":
		return s.addAlias(ctx, channel, args[1:])
	case "edit":
		return s.editCommand(ctx, channel, args[1:])
	case "delete", "remove":
		return s.deleteCommand(ctx, channel, args[1:])
	case "permission", "permissions", "perms":
		return s.setPermission(ctx, channel, actor, args[1:])
	default:
		return msgAddSyntax, nil
	}
}

func (s *Service) addCommand(ctx context.Context, channel string, args []string) (string, error) {
	if len(args) < 2 || !strings.HasPrefix(args[0], "!") {
		return msgAddSyntax, nil
	}
	trigger := strings.ToLower(args[0])
	existing, err := s.repo.GetChannelCommand(ctx, channel, trigger)
	if err != nil {
		return "", fmt.Errorf("чтение команды канала: %w", err)
	}
	if existing != nil {
		return fmt.Sprintf("The command %s already exists!", trigger), nil
	}
	entry := domain.CommandEntry{
		Channel: channel,
		Trigger: trigger,
		Message: strings.Join(args[1:], " "),
	}
	if err := s.repo.AddChannelCommand(ctx, entry); err != nil {
		return "", fmt.Errorf("вставка команды: %w", err)
	}
	s.afterMutation(ctx, channel, "added")
	return fmt.Sprintf("The command %s has been added!", trigger), nil
}

func (s *Service) addAlias(ctx context.Context, channel string, args []string) (string, error) {
	if len(args) < 2 || !strings.HasPrefix(args[0], "!") || !strings.HasPrefix(args[1], "!") {
		return msgAliasSyntax, nil
	}
	trigger := strings.ToLower(args[0])
	target := strings.ToLower(args[1])
	existing, err := s.repo.GetChannelCommand(ctx, channel, trigger)
	if err != nil {
		return "", fmt.Errorf("чтение команды канала: %w", err)
	}
	if existing != nil {
		return fmt.Sprintf("The command %s already exists!", trigger), nil
	}
	entry := domain.CommandEntry{
		Channel:  channel,
		Trigger:  trigger,
		IsAlias:  true,
		AliasFor: target,
	}
	if err := s.repo.AddChannelCommand(ctx, entry); err != nil {
		return "", fmt.Errorf("вставка алиаса: %w", err)
	}
	s.afterMutation(ctx, channel, "added")
	return fmt.Sprintf("The alias command %s has been added!", trigger), nil
}

func (s *Service) editCommand(ctx context.Context, channel string, args []string) (string, error) {
	if len(args) < 2 || !strings.HasPrefix(args[0], "!") {
		return msgEditSyntax, nil
	}
	trigger := strings.ToLower(args[0])
	existing, err := s.repo.GetChannelCommand(ctx, channel, trigger)
	if err != nil {
		return "", fmt.Errorf("чтение команды канала: %w", err)
	}
	if existing == nil {
		return fmt.Sprintf("The command %s doesn't exist!", trigger), nil
	}
	if err := s.repo.UpdateChannelCommandMessage(ctx, channel, trigger, strings.Join(args[1:], " ")); err != nil {
		return "", fmt.Errorf("правка команды: %w", err)
	}
	s.afterMutation(ctx, channel, "updated")
	return fmt.Sprintf("The command %s has been updated!", trigger), nil
}

func (s *Service) deleteCommand(ctx context.Context, channel string, args []string) (string, error) {
	if len(args) < 1 || !strings.HasPrefix(args[0], "!") {
		return msgDeleteSyntax, nil
	}
	trigger := strings.ToLower(args[0])
	existing, err := s.repo.GetChannelCommand(ctx, channel, trigger)
	if err != nil {
		return "", fmt.Errorf("чтение команды канала: %w", err)
	}
	if existing == nil {
		return fmt.Sprintf("The command %s doesn't exist!", trigger), nil
	}
	if err := s.repo.DeleteChannelCommand(ctx, channel, trigger); err != nil {
		return "", fmt.Errorf("удаление команды: %w", err)
	}
	s.afterMutation(ctx, channel, "deleted")
	return fmt.Sprintf("The command %s has been deleted!", trigger), nil
}

// setPermission меняет уровень доступа команды. Двойное условие: актор
// не может ни выдать уровень выше собственного, ни трогать команду,
// текущий уровень которой выше его собственного.
func (s *Service) setPermission(ctx context.Context, channel, actor string, args []string) (string, error) {
	if len(args) < 2 || !strings.HasPrefix(args[0], "!") {
		return msgPermSyntax, nil
	}
	trigger := strings.ToLower(args[0])
	level, err := strconv.Atoi(args[1])
	if err != nil || level < 0 {
		return fmt.Sprintf("Error setting permissions for %s!", trigger), nil
	}
	actorLevel, err := s.perms.UserLevel(ctx, channel, actor)
	if err != nil {
		return "", fmt.Errorf("уровень доступа актора: %w", err)
	}
	res, err := s.Resolve(ctx, channel, trigger)
	if errors.Is(err, ErrCommandNotFound) {
		return fmt.Sprintf("The command %s doesn't exist!", trigger), nil
	}
	if err != nil {
		return "", err
	}
	if actorLevel < level || actorLevel < res.Level {
		return fmt.Sprintf("Error setting permissions for %s!", trigger), nil
	}
	if res.Channel != nil {
		if err := s.repo.SetChannelCommandPermission(ctx, channel, res.Trigger, level); err != nil {
			return "", fmt.Errorf("права команды канала: %w", err)
		}
	} else {
		if err := s.repo.SetDefaultPermission(ctx, res.Trigger, channel, level); err != nil {
			return "", fmt.Errorf("переопределение прав: %w", err)
		}
	}
	s.afterMutation(ctx, channel, "updated")
	return fmt.Sprintf("The command %s permissions have been updated!", trigger), nil
}

// RunChannelCommand исполняет пользовательскую команду канала: шаблоны
// $(touser)/$(user)/$(counter), а для команд-списков — подоперации и
// показ элементов. actor — логин вызвавшего, display — отображаемое имя.
func (s *Service) RunChannelCommand(ctx context.Context, channel, actor, display string, entry *domain.CommandEntry, args []string) (string, error) {
	message := entry.Message
	if strings.Contains(message, "$(list)") {
		return s.runListCommand(ctx, channel, actor, entry, args)
	}
	if strings.Contains(message, "$(counter)") {
		counter, err := s.repo.IncrementCounter(ctx, channel, entry.Trigger)
		if err != nil {
			return "", fmt.Errorf("инкремент счётчика: %w", err)
		}
		message = strings.ReplaceAll(message, "$(counter)", strconv.Itoa(counter))
	}
	target := display
	if len(args) > 0 && args[0] != "" {
		target = strings.TrimPrefix(args[0], "@")
	}
	message = strings.ReplaceAll(message, "$(touser)", target)
	message = strings.ReplaceAll(message, "$(user)", display)
	return message, nil
}

// runListCommand обслуживает команду-список: подоперации add/edit/delete
// доступны с уровня добавления команд, числовой аргумент показывает
// элемент по номеру, без аргумента показывается случайный элемент.
func (s *Service) runListCommand(ctx context.Context, channel, actor string, entry *domain.CommandEntry, args []string) (string, error) {
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "add", "edit", "delete", "remove":
			allowed, err := s.canEditLists(ctx, channel, actor)
			if err != nil {
				return "", err
			}
			if allowed {
				return s.editList(ctx, channel, entry, args)
			}
		}
	}
	return s.showListItem(entry, args), nil
}

// canEditLists сравнивает уровень актора с уровнем команды "!commands":
// кто может добавлять команды, тот может править и списки.
func (s *Service) canEditLists(ctx context.Context, channel, actor string) (bool, error) {
	res, err := s.Resolve(ctx, channel, "!commands")
	if errors.Is(err, ErrCommandNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	level, err := s.perms.UserLevel(ctx, channel, actor)
	if err != nil {
		return false, fmt.Errorf("уровень доступа актора: %w", err)
	}
	return level >= res.Level, nil
}

func (s *Service) editList(ctx context.Context, channel string, entry *domain.CommandEntry, args []string) (string, error) {
	list := append([]string(nil), entry.List...)
	var reply string
	switch strings.ToLower(args[0]) {
	case "add":
		if len(args) < 2 {
			return msgListItemAbsent, nil
		}
		list = append(list, strings.Join(args[1:], " "))
		reply = fmt.Sprintf("The item has been added as #%d!", len(list))
	case "edit":
		if len(args) < 3 {
			return msgListItemAbsent, nil
		}
		i, err := strconv.Atoi(args[1])
		if err != nil || i < 1 || i > len(list) {
			return msgListItemAbsent, nil
		}
		list[i-1] = strings.Join(args[2:], " ")
		reply = fmt.Sprintf("Item #%d has been updated!", i)
	case "delete", "remove":
		if len(args) < 2 {
			return msgListItemAbsent, nil
		}
		i, err := strconv.Atoi(args[1])
		if err != nil || i < 1 || i > len(list) {
			return msgListItemAbsent, nil
		}
		list = append(list[:i-1], list[i:]...)
		reply = fmt.Sprintf("Item #%d has been removed!", i)
	}
	if err := s.repo.UpdateCommandList(ctx, channel, entry.Trigger, list); err != nil {
		return "", fmt.Errorf("обновление списка: %w", err)
	}
	s.afterMutation(ctx, channel, "updated")
	return reply, nil
}

func (s *Service) showListItem(entry *domain.CommandEntry, args []string) string {
	if len(entry.List) == 0 {
		return msgListEmpty
	}
	idx := -1
	if len(args) > 0 {
		if i, err := strconv.Atoi(args[0]); err == nil {
			if i < 1 || i > len(entry.List) {
				return msgListItemAbsent
			}
			idx = i - 1
		}
	}
	if idx < 0 {
		idx = s.intn(len(entry.List))
	}
	return strings.ReplaceAll(entry.Message, "$(list)", entry.List[idx])
}

// afterMutation сбрасывает кэш списка команд и публикует событие.
// Событий не ждут: для чата это побочный канал.
func (s *Service) afterMutation(ctx context.Context, channel, kind string) {
	_ = s.cache.DelValue(ctx, cachekeys.Commands(channel))
	s.events.Publish(ctx, channel, "commands", kind)
}
