package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"song-queue-bot/internal/domain"
	"song-queue-bot/internal/infra/cachekeys"
	"song-queue-bot/internal/infra/metrics"
	"song-queue-bot/internal/usecase/command"
	"song-queue-bot/internal/usecase/queue"
	"song-queue-bot/internal/usecase/request"
)

// Ответы на встроенные команды управления очередью.
const (
	msgQueueEmpty     = "There are no songs in the queue!"
	msgSongNotFound   = "That song doesn't exist!"
	msgShuffled       = "The queue has been shuffled!"
	msgWrongSongGone  = "Your last song request has been removed!"
	msgNoOwnSongs     = "You have no songs in the queue!"
	msgPlaying        = "Music is now playing!"
	msgPaused         = "Music has been paused!"
	msgVolumeRange    = "The volume must be a number between 0 and 100!"
	msgNoLastSong     = "No song has been played yet!"
	msgRemoveSyntax   = "To remove songs, type !remove followed by queue positions or !remove user name"
	msgBlacklistUsage = "The syntax is !blacklist add/remove video"
)

// Handler принимает апдейты Telegram и направляет команды чата в сервисы.
type Handler struct {
	log       zerolog.Logger
	queueUC   *queue.Service
	requestUC *request.Service
	commandUC *command.Service
	channels  domain.ChannelRepo
	blacklist domain.BlacklistRepo
	songs     domain.QueueRepo
	provider  domain.MediaProvider
	perms     domain.PermissionSource
	responder domain.Responder
	cache     domain.Cache
	limiter   *command.RateLimiter
	listURL   string
}

// NewHandler создаёт обработчик.
func NewHandler(
	log zerolog.Logger,
	queueUC *queue.Service,
	requestUC *request.Service,
	commandUC *command.Service,
	channels domain.ChannelRepo,
	blacklist domain.BlacklistRepo,
	songs domain.QueueRepo,
	provider domain.MediaProvider,
	perms domain.PermissionSource,
	responder domain.Responder,
	cache domain.Cache,
	limiter *command.RateLimiter,
	listURL string,
) *Handler {
	return &Handler{
		log:       log,
		queueUC:   queueUC,
		requestUC: requestUC,
		commandUC: commandUC,
		channels:  channels,
		blacklist: blacklist,
		songs:     songs,
		provider:  provider,
		perms:     perms,
		responder: responder,
		cache:     cache,
		limiter:   limiter,
		listURL:   listURL,
	}
}

// HandleUpdate обрабатывает входящий апдейт.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil || upd.Message.From == nil {
		return
	}
	text := strings.TrimSpace(upd.Message.Text)
	if !strings.HasPrefix(text, "!") {
		return
	}
	channel := strconv.FormatInt(upd.Message.Chat.ID, 10)
	actor := strconv.FormatInt(upd.Message.From.ID, 10)
	display := upd.Message.From.UserName
	if display == "" {
		display = upd.Message.From.FirstName
	}

	if _, err := h.channels.EnsureChannel(ctx, channel); err != nil {
		h.log.Error().Err(err).Str("channel", channel).Msg("не удалось зарегистрировать канал")
		return
	}

	tokens := strings.Fields(text)
	trigger := strings.ToLower(tokens[0])
	args := tokens[1:]

	if !h.limiter.Allow(channel, trigger) {
		return
	}

	res, err := h.commandUC.Resolve(ctx, channel, trigger)
	if errors.Is(err, command.ErrCommandNotFound) || errors.Is(err, command.ErrAliasLoop) {
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("trigger", trigger).Msg("не удалось разрешить команду")
		return
	}
	level, err := h.perms.UserLevel(ctx, channel, actor)
	if err != nil {
		h.log.Error().Err(err).Str("channel", channel).Msg("не удалось получить уровень доступа")
		return
	}
	if level < res.Level {
		return
	}
	metrics.IncCommandInvocation(res.Trigger)

	var reply string
	if res.Channel != nil {
		reply, err = h.commandUC.RunChannelCommand(ctx, channel, actor, display, res.Channel, args)
	} else {
		reply, err = h.dispatchBuiltin(ctx, channel, actor, display, res.Trigger, args, strings.TrimSpace(strings.TrimPrefix(text, tokens[0])))
	}
	if err != nil {
		h.log.Error().Err(err).Str("trigger", res.Trigger).Msg("ошибка исполнения команды")
		return
	}
	if reply == "" {
		return
	}
	if err := h.responder.Send(ctx, channel, display+", "+reply); err != nil {
		h.log.Error().Err(err).Str("channel", channel).Msg("не удалось ответить в чат")
	}
}

// dispatchBuiltin исполняет встроенную команду по её каноническому
// триггеру. rest — хвост сообщения после триггера как есть.
func (h *Handler) dispatchBuiltin(ctx context.Context, channel, actor, display, trigger string, args []string, rest string) (string, error) {
	switch trigger {
	case "!songrequest":
		return h.requestUC.RequestSongs(ctx, channel, display, rest)
	case "!playlistrequest":
		return h.requestUC.RequestPlaylist(ctx, channel, display, rest)
	case "!skip":
		return h.handleSkip(ctx, channel)
	case "!promote":
		return h.handlePromote(ctx, channel, rest)
	case "!shuffle":
		return h.handleShuffle(ctx, channel)
	case "!wrongsong":
		return h.handleWrongSong(ctx, channel, display)
	case "!remove":
		return h.handleRemove(ctx, channel, args)
	case "!play":
		if err := h.queueUC.Play(ctx, channel); err != nil {
			return "", err
		}
		return msgPlaying, nil
	case "!pause":
		if err := h.queueUC.Pause(ctx, channel); err != nil {
			return "", err
		}
		return msgPaused, nil
	case "!volume":
		return h.handleVolume(ctx, channel, args)
	case "!currentsong":
		return h.handleCurrentSong(ctx, channel)
	case "!lastsong":
		return h.handleLastSong(ctx, channel)
	case "!songlist":
		return fmt.Sprintf("The song list for this channel is available here: %s/%s", h.listURL, channel), nil
	case "!commands":
		return h.commandUC.HandleCommandsOp(ctx, channel, actor, args)
	case "!blacklist":
		return h.handleBlacklist(ctx, channel, display, args)
	}
	return "", nil
}

func (h *Handler) handleSkip(ctx context.Context, channel string) (string, error) {
	res, err := h.queueUC.Skip(ctx, channel)
	if errors.Is(err, queue.ErrQueueEmpty) {
		return msgQueueEmpty, nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("The song %s has been skipped!", res.SkippedTitle), nil
}

func (h *Handler) handlePromote(ctx context.Context, channel, target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return msgSongNotFound, nil
	}
	res, err := h.queueUC.Promote(ctx, channel, target)
	if errors.Is(err, queue.ErrQueueEmpty) {
		return msgQueueEmpty, nil
	}
	if errors.Is(err, queue.ErrSongNotFound) {
		return msgSongNotFound, nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("The song %s has been promoted!", res.Title), nil
}

func (h *Handler) handleShuffle(ctx context.Context, channel string) (string, error) {
	_, err := h.queueUC.Shuffle(ctx, channel)
	if errors.Is(err, queue.ErrQueueEmpty) {
		return msgQueueEmpty, nil
	}
	if err != nil {
		return "", err
	}
	return msgShuffled, nil
}

func (h *Handler) handleWrongSong(ctx context.Context, channel, display string) (string, error) {
	_, err := h.queueUC.WrongSong(ctx, channel, display)
	if errors.Is(err, queue.ErrSongNotFound) {
		return msgNoOwnSongs, nil
	}
	if err != nil {
		return "", err
	}
	return msgWrongSongGone, nil
}

func (h *Handler) handleRemove(ctx context.Context, channel string, args []string) (string, error) {
	if len(args) == 0 {
		return msgRemoveSyntax, nil
	}
	if strings.EqualFold(args[0], "user") {
		if len(args) < 2 {
			return msgRemoveSyntax, nil
		}
		removed, err := h.queueUC.RemoveByRequester(ctx, channel, args[1])
		if err != nil {
			return "", err
		}
		if removed == 1 {
			return "1 song has been removed!", nil
		}
		return fmt.Sprintf("%d songs have been removed!", removed), nil
	}
	var positions []int
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return msgRemoveSyntax, nil
		}
		positions = append(positions, n)
	}
	if len(positions) == 1 {
		res, err := h.queueUC.RemoveByPosition(ctx, channel, positions[0])
		if errors.Is(err, queue.ErrQueueEmpty) {
			return msgQueueEmpty, nil
		}
		if errors.Is(err, queue.ErrSongNotFound) {
			return msgSongNotFound, nil
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("The song %s has been removed!", res.Title), nil
	}
	removed, err := h.queueUC.RemoveMany(ctx, channel, positions)
	if errors.Is(err, queue.ErrQueueEmpty) {
		return msgQueueEmpty, nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d songs have been removed!", removed), nil
}

func (h *Handler) handleVolume(ctx context.Context, channel string, args []string) (string, error) {
	if len(args) == 0 {
		volume, err := h.queueUC.Volume(ctx, channel)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("The current volume is %d", volume), nil
	}
	volume, err := strconv.Atoi(args[0])
	if err != nil {
		return msgVolumeRange, nil
	}
	if err := h.queueUC.SetVolume(ctx, channel, volume); err != nil {
		if errors.Is(err, queue.ErrVolumeOutOfRange) {
			return msgVolumeRange, nil
		}
		return "", err
	}
	return fmt.Sprintf("The volume has been set to %d!", volume), nil
}

func (h *Handler) handleCurrentSong(ctx context.Context, channel string) (string, error) {
	entry, err := h.queueUC.CurrentSong(ctx, channel)
	if err != nil {
		return "", err
	}
	if entry == nil {
		return msgQueueEmpty, nil
	}
	return fmt.Sprintf("The current song is %s, requested by %s", entry.Title, entry.Requester), nil
}

func (h *Handler) handleLastSong(ctx context.Context, channel string) (string, error) {
	title, err := h.queueUC.LastSong(ctx, channel)
	if err != nil {
		return "", err
	}
	if title == "" {
		return msgNoLastSong, nil
	}
	return fmt.Sprintf("The last song was %s", title), nil
}

// handleBlacklist заносит видео в чёрный список канала или убирает из
// него. Занесённое видео заодно удаляется из очереди, если стоит в ней.
func (h *Handler) handleBlacklist(ctx context.Context, channel, display string, args []string) (string, error) {
	if len(args) < 2 {
		return msgBlacklistUsage, nil
	}
	videoID, err := h.requestUC.ResolveVideoID(ctx, args[1])
	if err != nil {
		if errors.Is(err, request.ErrInvalidVideoRef) || errors.Is(err, request.ErrNoSearchResults) {
			return msgBlacklistUsage, nil
		}
		return "", err
	}
	switch strings.ToLower(args[0]) {
	case "add":
		info, err := h.provider.LookupByID(ctx, videoID)
		if errors.Is(err, domain.ErrMediaNotFound) {
			return msgSongNotFound, nil
		}
		if err != nil {
			return "", err
		}
		entry := domain.BlacklistEntry{
			Channel:      channel,
			VideoID:      videoID,
			Title:        info.Title,
			DurationCode: info.DurationCode,
			AddedBy:      display,
			AddedAt:      time.Now(),
		}
		if err := h.blacklist.AddToBlacklist(ctx, entry); err != nil {
			return "", err
		}
		if queued, err := h.songs.FindByVideoID(ctx, channel, videoID); err == nil && queued != nil {
			if err := h.songs.DeleteEntry(ctx, channel, queued.ID); err != nil {
				return "", err
			}
			_ = h.cache.DelValue(ctx, cachekeys.Songlist(channel))
		}
		_ = h.cache.DelValue(ctx, cachekeys.Blacklist(channel))
		return fmt.Sprintf("The song %s has been blacklisted!", info.Title), nil
	case "remove", "delete":
		if err := h.blacklist.RemoveFromBlacklist(ctx, channel, videoID); err != nil {
			return "", err
		}
		_ = h.cache.DelValue(ctx, cachekeys.Blacklist(channel))
		return "The song has been removed from the blacklist!", nil
	default:
		return msgBlacklistUsage, nil
	}
}
