package request

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

const videoIDLength = 11

var (
	// ErrInvalidVideoRef — ссылка не похожа на видео.
	ErrInvalidVideoRef = errors.New("некорректная ссылка на видео")
	// ErrNoSearchResults — поиск не дал ни одного видео.
	ErrNoSearchResults = errors.New("поиск не дал результатов")
)

// ResolveVideoID приводит пользовательский ввод к идентификатору видео
// для внешних вызывающих, например управления чёрным списком.
func (s *Service) ResolveVideoID(ctx context.Context, raw string) (string, error) {
	return s.resolveVideoID(ctx, raw)
}

// resolveVideoID приводит пользовательский ввод к идентификатору видео.
// Принимаются: голый 11-символьный идентификатор, ссылки youtu.be и
// watch?v=, голая пара v=..., иначе ввод уходит в поиск провайдера.
func (s *Service) resolveVideoID(ctx context.Context, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) == videoIDLength && !strings.Contains(raw, " ") {
		return raw, nil
	}
	if strings.Contains(raw, "http") {
		id := videoIDFromURL(raw)
		if len(id) == videoIDLength {
			return id, nil
		}
		return "", ErrInvalidVideoRef
	}
	if strings.Contains(raw, "v=") {
		query := raw
		if i := strings.Index(raw, "?"); i >= 0 {
			query = raw[i+1:]
		}
		values, err := url.ParseQuery(query)
		if err == nil && values.Get("v") != "" {
			return values.Get("v"), nil
		}
		return "", ErrInvalidVideoRef
	}
	return s.searchVideoID(ctx, raw)
}

func videoIDFromURL(raw string) string {
	if strings.Contains(raw, "://youtu.be") {
		parts := strings.Split(raw, "/")
		if len(parts) > 3 {
			return strings.SplitN(parts[3], "?", 2)[0]
		}
		return ""
	}
	if strings.Contains(raw, "?") {
		values, err := url.ParseQuery(strings.SplitN(raw, "?", 2)[1])
		if err == nil && values.Get("v") != "" {
			return values.Get("v")
		}
	}
	parts := strings.Split(raw, "/")
	if len(parts) > 3 {
		return strings.SplitN(parts[3], "?", 2)[0]
	}
	return ""
}

// searchVideoID выбирает первый результат поиска с непустым идентификатором.
// Первым результатом бывает канал, а не видео — тогда берётся второй.
func (s *Service) searchVideoID(ctx context.Context, query string) (string, error) {
	results, err := s.provider.Search(ctx, query, 2)
	if err != nil {
		return "", err
	}
	for _, result := range results {
		if result.VideoID != "" {
			return result.VideoID, nil
		}
	}
	return "", ErrNoSearchResults
}
