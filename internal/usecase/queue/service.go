package queue

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strconv"

	"song-queue-bot/internal/domain"
	"song-queue-bot/internal/infra/cachekeys"
)

var (
	// ErrQueueEmpty — операция над пустой очередью, делать нечего.
	ErrQueueEmpty = errors.New("очередь пуста")
	// ErrSongNotFound — заявка не найдена в очереди.
	ErrSongNotFound = errors.New("заявка не найдена")
	// ErrVolumeOutOfRange — громкость вне диапазона 0..100.
	ErrVolumeOutOfRange = errors.New("громкость вне диапазона")
)

// Service выполняет мутации живой очереди канала.
type Service struct {
	queue     domain.QueueRepo
	channels  domain.ChannelRepo
	cache     domain.Cache
	events    domain.EventSink
	shuffleFn func(n int, swap func(i, j int))
}

// NewService создаёт сервис очереди.
func NewService(queueRepo domain.QueueRepo, channelRepo domain.ChannelRepo, cache domain.Cache, events domain.EventSink) *Service {
	return &Service{
		queue:     queueRepo,
		channels:  channelRepo,
		cache:     cache,
		events:    events,
		shuffleFn: rand.Shuffle,
	}
}

// SkipResult — итог скипа текущей заявки.
type SkipResult struct {
	SkippedTitle string
	NextVideoID  string
}

// Skip удаляет голову очереди и закрепляет новую голову первой.
// Новая голова получает ключ BaseSortKey, а счётчик продвижения
// сбрасывается в PromotionKeyReset, чтобы она сортировалась раньше
// любых ранее продвинутых заявок.
func (s *Service) Skip(ctx context.Context, channel string) (SkipResult, error) {
	entries, err := s.queue.ListQueue(ctx, channel)
	if err != nil {
		return SkipResult{}, fmt.Errorf("чтение очереди: %w", err)
	}
	if len(entries) == 0 {
		return SkipResult{}, ErrQueueEmpty
	}
	head := entries[0]
	res := SkipResult{SkippedTitle: head.Title}
	if len(entries) > 1 {
		res.NextVideoID = entries[1].VideoID
		if err := s.queue.UpdateSortKey(ctx, channel, entries[1].ID, BaseSortKey); err != nil {
			return SkipResult{}, fmt.Errorf("перенос новой головы: %w", err)
		}
	}
	if err := s.queue.DeleteEntry(ctx, channel, head.ID); err != nil {
		return SkipResult{}, fmt.Errorf("удаление головы: %w", err)
	}
	if err := s.channels.SetLastSong(ctx, channel, head.Title); err != nil {
		return SkipResult{}, fmt.Errorf("запись последней песни: %w", err)
	}
	if err := s.channels.SetNextPromotionKey(ctx, channel, PromotionKeyReset); err != nil {
		return SkipResult{}, fmt.Errorf("сброс счётчика продвижения: %w", err)
	}
	if err := s.cache.DelValue(ctx, cachekeys.Songlist(channel)); err != nil {
		return SkipResult{}, fmt.Errorf("сброс кэша списка: %w", err)
	}
	s.events.Publish(ctx, channel, "skipped", res.NextVideoID)
	return res, nil
}

// PromoteResult — итог продвижения заявки.
type PromoteResult struct {
	Title   string
	VideoID string
}

// Promote поднимает заявку в начало очереди. Цель задаётся позицией
// (с единицы) либо идентификатором видео. Заявка получает текущее
// значение счётчика продвижения, счётчик уменьшается: последняя
// продвинутая всегда играет раньше продвинутых до неё.
func (s *Service) Promote(ctx context.Context, channel, target string) (PromoteResult, error) {
	entries, err := s.queue.ListQueue(ctx, channel)
	if err != nil {
		return PromoteResult{}, fmt.Errorf("чтение очереди: %w", err)
	}
	if len(entries) == 0 {
		return PromoteResult{}, ErrQueueEmpty
	}
	position, numeric := 0, false
	if n, convErr := strconv.Atoi(target); convErr == nil {
		position, numeric = n, true
	}
	var found *domain.QueueEntry
	for i := range entries {
		if (numeric && position == i+1) || target == entries[i].VideoID {
			found = &entries[i]
			break
		}
	}
	if found == nil {
		return PromoteResult{}, ErrSongNotFound
	}
	cfg, err := s.channels.GetConfig(ctx, channel)
	if err != nil {
		return PromoteResult{}, fmt.Errorf("чтение настроек канала: %w", err)
	}
	if err := s.queue.UpdateSortKey(ctx, channel, found.ID, cfg.NextPromotionKey); err != nil {
		return PromoteResult{}, fmt.Errorf("обновление ключа: %w", err)
	}
	if err := s.channels.SetNextPromotionKey(ctx, channel, cfg.NextPromotionKey-1); err != nil {
		return PromoteResult{}, fmt.Errorf("сдвиг счётчика продвижения: %w", err)
	}
	if err := s.cache.DelValue(ctx, cachekeys.Songlist(channel)); err != nil {
		return PromoteResult{}, fmt.Errorf("сброс кэша списка: %w", err)
	}
	s.events.Publish(ctx, channel, "promoted", found.VideoID)
	return PromoteResult{Title: found.Title, VideoID: found.VideoID}, nil
}

// Shuffle случайно перетасовывает непродвинутые заявки (ключ ≥ ShuffleFloor),
// раздавая им ключи от 200000 с шагом 100000 в новом порядке.
// Продвинутые заявки остаются на месте. Возвращает число перетасованных.
func (s *Service) Shuffle(ctx context.Context, channel string) (int, error) {
	entries, err := s.queue.ListQueue(ctx, channel)
	if err != nil {
		return 0, fmt.Errorf("чтение очереди: %w", err)
	}
	if len(entries) == 0 {
		return 0, ErrQueueEmpty
	}
	var shufflable []domain.QueueEntry
	for _, entry := range entries {
		if entry.SortKey >= ShuffleFloor {
			shufflable = append(shufflable, entry)
		}
	}
	s.shuffleFn(len(shufflable), func(i, j int) {
		shufflable[i], shufflable[j] = shufflable[j], shufflable[i]
	})
	for i, entry := range shufflable {
		if err := s.queue.UpdateSortKey(ctx, channel, entry.ID, ShuffleKey(i)); err != nil {
			return 0, fmt.Errorf("обновление ключа: %w", err)
		}
	}
	if err := s.cache.DelValue(ctx, cachekeys.Songlist(channel)); err != nil {
		return 0, fmt.Errorf("сброс кэша списка: %w", err)
	}
	s.events.Publish(ctx, channel, "shuffled", len(shufflable))
	return len(shufflable), nil
}

// RemoveResult — итог удаления заявки.
type RemoveResult struct {
	Title string
}

// WrongSong удаляет последнюю заявку указанного заказчика.
func (s *Service) WrongSong(ctx context.Context, channel, requester string) (RemoveResult, error) {
	entries, err := s.queue.ListQueue(ctx, channel)
	if err != nil {
		return RemoveResult{}, fmt.Errorf("чтение очереди: %w", err)
	}
	var last *domain.QueueEntry
	for i := range entries {
		if entries[i].Requester == requester {
			last = &entries[i]
		}
	}
	if last == nil {
		return RemoveResult{}, ErrSongNotFound
	}
	if err := s.queue.DeleteEntry(ctx, channel, last.ID); err != nil {
		return RemoveResult{}, fmt.Errorf("удаление заявки: %w", err)
	}
	if err := s.cache.DelValue(ctx, cachekeys.Songlist(channel)); err != nil {
		return RemoveResult{}, fmt.Errorf("сброс кэша списка: %w", err)
	}
	s.events.Publish(ctx, channel, "removed", last.VideoID)
	return RemoveResult{Title: last.Title}, nil
}

// RemoveByPosition удаляет заявку по позиции в очереди (с единицы).
func (s *Service) RemoveByPosition(ctx context.Context, channel string, position int) (RemoveResult, error) {
	entries, err := s.queue.ListQueue(ctx, channel)
	if err != nil {
		return RemoveResult{}, fmt.Errorf("чтение очереди: %w", err)
	}
	if len(entries) == 0 {
		return RemoveResult{}, ErrQueueEmpty
	}
	if position < 1 || position > len(entries) {
		return RemoveResult{}, ErrSongNotFound
	}
	entry := entries[position-1]
	if err := s.queue.DeleteEntry(ctx, channel, entry.ID); err != nil {
		return RemoveResult{}, fmt.Errorf("удаление заявки: %w", err)
	}
	if err := s.cache.DelValue(ctx, cachekeys.Songlist(channel)); err != nil {
		return RemoveResult{}, fmt.Errorf("сброс кэша списка: %w", err)
	}
	s.events.Publish(ctx, channel, "removed", entry.VideoID)
	return RemoveResult{Title: entry.Title}, nil
}

// RemoveMany удаляет заявки по списку позиций. Позиции обрабатываются
// по убыванию, чтобы удаление не сдвигало ещё не удалённые индексы.
func (s *Service) RemoveMany(ctx context.Context, channel string, positions []int) (int, error) {
	entries, err := s.queue.ListQueue(ctx, channel)
	if err != nil {
		return 0, fmt.Errorf("чтение очереди: %w", err)
	}
	if len(entries) == 0 {
		return 0, ErrQueueEmpty
	}
	sorted := append([]int(nil), positions...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	removed := 0
	for _, position := range sorted {
		if position < 1 || position > len(entries) {
			continue
		}
		if err := s.queue.DeleteEntry(ctx, channel, entries[position-1].ID); err != nil {
			return removed, fmt.Errorf("удаление заявки: %w", err)
		}
		removed++
	}
	if removed == 0 {
		return 0, nil
	}
	if err := s.cache.DelValue(ctx, cachekeys.Songlist(channel)); err != nil {
		return removed, fmt.Errorf("сброс кэша списка: %w", err)
	}
	s.events.Publish(ctx, channel, "removed", removed)
	return removed, nil
}

// RemoveByRequester удаляет все заявки, чей заказчик содержит подстроку
// requester без учёта регистра.
func (s *Service) RemoveByRequester(ctx context.Context, channel, requester string) (int64, error) {
	removed, err := s.queue.DeleteByRequester(ctx, channel, requester)
	if err != nil {
		return 0, fmt.Errorf("удаление заявок: %w", err)
	}
	if err := s.cache.DelValue(ctx, cachekeys.Songlist(channel)); err != nil {
		return removed, fmt.Errorf("сброс кэша списка: %w", err)
	}
	s.events.Publish(ctx, channel, "removed", requester)
	return removed, nil
}

// Play включает воспроизведение в канале.
func (s *Service) Play(ctx context.Context, channel string) error {
	return s.setPlayback(ctx, channel, domain.PlaybackPlaying)
}

// Pause ставит воспроизведение на паузу.
func (s *Service) Pause(ctx context.Context, channel string) error {
	return s.setPlayback(ctx, channel, domain.PlaybackPaused)
}

func (s *Service) setPlayback(ctx context.Context, channel string, status domain.PlaybackStatus) error {
	if err := s.channels.SetPlayback(ctx, channel, status); err != nil {
		return fmt.Errorf("смена статуса: %w", err)
	}
	s.events.Publish(ctx, channel, "statuschange", string(status))
	return nil
}

// Volume возвращает текущую громкость канала.
func (s *Service) Volume(ctx context.Context, channel string) (int, error) {
	cfg, err := s.channels.GetConfig(ctx, channel)
	if err != nil {
		return 0, fmt.Errorf("чтение настроек канала: %w", err)
	}
	return cfg.Volume, nil
}

// SetVolume меняет громкость канала в диапазоне 0..100.
func (s *Service) SetVolume(ctx context.Context, channel string, volume int) error {
	if volume < 0 || volume > 100 {
		return ErrVolumeOutOfRange
	}
	if err := s.channels.SetVolume(ctx, channel, volume); err != nil {
		return fmt.Errorf("смена громкости: %w", err)
	}
	s.events.Publish(ctx, channel, "volumeupdated", volume)
	return nil
}

// CurrentSong возвращает голову очереди или nil, если очередь пуста.
func (s *Service) CurrentSong(ctx context.Context, channel string) (*domain.QueueEntry, error) {
	entries, err := s.queue.ListQueue(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("чтение очереди: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	head := entries[0]
	return &head, nil
}

// LastSong возвращает название последней доигранной песни.
func (s *Service) LastSong(ctx context.Context, channel string) (string, error) {
	cfg, err := s.channels.GetConfig(ctx, channel)
	if err != nil {
		return "", fmt.Errorf("чтение настроек канала: %w", err)
	}
	return cfg.LastSong, nil
}
