package request

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"song-queue-bot/internal/domain"
)

// playlistSampleCushion — запас сверх квоты при выборке из плейлиста:
// часть кандидатов предсказуемо отсеется как дубли или повторы.
const playlistSampleCushion = 10

// ErrInvalidPlaylistID — ввод не распознан как идентификатор плейлиста.
var ErrInvalidPlaylistID = errors.New("некорректный идентификатор плейлиста")

// ParsePlaylistID распознаёт идентификатор плейлиста: голый идентификатор
// ожидаемой длины, ссылку с параметром list либо голую пару list=...
func ParsePlaylistID(input string) (string, error) {
	input = strings.TrimSpace(input)
	switch len(input) {
	case 34, 24, 13:
		if !strings.Contains(input, " ") && !strings.Contains(input, "=") {
			return input, nil
		}
	}
	if strings.Contains(input, "http") {
		if i := strings.Index(input, "?"); i >= 0 {
			values, err := url.ParseQuery(input[i+1:])
			if err == nil && values.Get("list") != "" {
				return values.Get("list"), nil
			}
		}
		return "", ErrInvalidPlaylistID
	}
	if strings.Contains(input, "list=") {
		query := input
		if i := strings.Index(input, "?"); i >= 0 {
			query = input[i+1:]
		}
		values, err := url.ParseQuery(query)
		if err == nil && values.Get("list") != "" {
			return values.Get("list"), nil
		}
	}
	return "", ErrInvalidPlaylistID
}

// RequestPlaylist раскрывает плейлист в ограниченную случайную выборку
// кандидатов и подаёт её одной партией через конвейер допуска.
// Разбор идентификатора и проверка квоты идут до похода к провайдеру.
func (s *Service) RequestPlaylist(ctx context.Context, channel, requester, input string) (string, error) {
	playlistID, err := ParsePlaylistID(input)
	if err != nil {
		return msgInvalidPlaylist, nil
	}
	cfg, err := s.channels.GetConfig(ctx, channel)
	if err != nil {
		return "", fmt.Errorf("чтение настроек канала: %w", err)
	}
	mine, err := s.songs.CountByRequester(ctx, channel, requester)
	if err != nil {
		return "", fmt.Errorf("подсчёт заявок заказчика: %w", err)
	}
	if mine >= cfg.SongLimit {
		return msgPlaylistLimit, nil
	}
	_ = s.responder.Send(ctx, channel, msgGathering)
	members, err := s.provider.PlaylistItems(ctx, playlistID)
	if errors.Is(err, domain.ErrMediaNotFound) {
		return msgInvalidPlaylist, nil
	}
	if err != nil {
		return "", fmt.Errorf("элементы плейлиста: %w", err)
	}
	if len(members) == 0 {
		return msgInvalidPlaylist, nil
	}
	sample := s.samplePlaylist(members, cfg.SongLimit)
	return s.submitBatch(ctx, channel, requester, sample, false)
}

// samplePlaylist равномерно перемешивает элементы и берёт первые
// quota+cushion, но не больше, чем есть.
func (s *Service) samplePlaylist(members []string, quota int) []string {
	shuffled := append([]string(nil), members...)
	s.shuffleFn(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	n := quota + playlistSampleCushion
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
