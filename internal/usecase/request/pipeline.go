package request

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"time"

	"song-queue-bot/internal/domain"
	"song-queue-bot/internal/infra/cachekeys"
	"song-queue-bot/internal/infra/metrics"
	"song-queue-bot/internal/usecase/queue"
)

// metadataMaxAge — возраст записи кэша, до которого метаданные видео
// берутся из кэша вместо похода к провайдеру.
const metadataMaxAge = 30 * 24 * time.Hour

// Service прогоняет заявки через конвейер допуска и собирает сводный ответ.
type Service struct {
	songs     domain.QueueRepo
	channels  domain.ChannelRepo
	songCache domain.SongCacheRepo
	blacklist domain.BlacklistRepo
	provider  domain.MediaProvider
	listCache domain.Cache
	events    domain.EventSink
	stats     domain.RequestCounter
	responder domain.Responder
	region    string
	now       func() time.Time
	shuffleFn func(n int, swap func(i, j int))
}

// NewService создаёт сервис заявок.
func NewService(
	songs domain.QueueRepo,
	channels domain.ChannelRepo,
	songCache domain.SongCacheRepo,
	blacklist domain.BlacklistRepo,
	provider domain.MediaProvider,
	listCache domain.Cache,
	events domain.EventSink,
	stats domain.RequestCounter,
	responder domain.Responder,
	region string,
) *Service {
	return &Service{
		songs:     songs,
		channels:  channels,
		songCache: songCache,
		blacklist: blacklist,
		provider:  provider,
		listCache: listCache,
		events:    events,
		stats:     stats,
		responder: responder,
		region:    region,
		now:       time.Now,
		shuffleFn: rand.Shuffle,
	}
}

// RequestSongs принимает сырой ввод после триггера: один идентификатор,
// ссылку, поисковую фразу либо список через запятую. Возвращает готовый
// текст ответа заказчику.
func (s *Service) RequestSongs(ctx context.Context, channel, requester, query string) (string, error) {
	query = strings.TrimSpace(query)
	query = strings.TrimSuffix(query, ",")
	if query == "" {
		return msgUsage, nil
	}
	if strings.Contains(query, ",") {
		refs := strings.Split(strings.ReplaceAll(query, " ", ""), ",")
		return s.submitBatch(ctx, channel, requester, refs, false)
	}
	return s.submitBatch(ctx, channel, requester, []string{query}, true)
}

// submitBatch прогоняет партию ссылок через конвейер. В одиночном режиме
// ошибка разбора ссылки сразу возвращается заказчику; в партии такие
// ссылки молча пропускаются и в сводку не попадают.
func (s *Service) submitBatch(ctx context.Context, channel, requester string, refs []string, single bool) (string, error) {
	cfg, err := s.channels.GetConfig(ctx, channel)
	if err != nil {
		return "", fmt.Errorf("чтение настроек канала: %w", err)
	}
	outcome := BatchOutcome{
		Counts:    make(map[domain.RejectReason]int),
		SongLimit: cfg.SongLimit,
		Region:    s.region,
	}
	for _, ref := range refs {
		videoID, err := s.resolveVideoID(ctx, ref)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidVideoRef):
				if single {
					return msgInvalidURL, nil
				}
				continue
			case errors.Is(err, ErrNoSearchResults):
				if single {
					return msgSearchNotFound, nil
				}
				continue
			default:
				return "", fmt.Errorf("разрешение ссылки: %w", err)
			}
		}
		reason, info, err := s.admit(ctx, cfg, requester, videoID)
		if err != nil {
			return "", err
		}
		outcome.Requested++
		if info != nil {
			outcome.LastTitle = info.Title
		}
		if reason == "" {
			outcome.Added++
			continue
		}
		outcome.Counts[reason]++
		metrics.IncAdmissionReject(string(reason))
	}
	if outcome.Added == 1 {
		count, err := s.songs.CountQueue(ctx, channel)
		if err != nil {
			return "", fmt.Errorf("подсчёт очереди: %w", err)
		}
		outcome.QueuePosition = count
	}
	if outcome.Added > 0 {
		if err := s.listCache.DelValue(ctx, cachekeys.Songlist(channel), cachekeys.Songcache(channel)); err != nil {
			return "", fmt.Errorf("сброс кэша списка: %w", err)
		}
		s.events.Publish(ctx, channel, "added", outcome.Added)
	}
	return RenderBatchMessage(outcome) + "!", nil
}

// admit прогоняет одно видео через стадии допуска в фиксированном порядке:
// квота, дубль в очереди, чёрный список, окно повторов, регион,
// длительность, встраиваемость. Первая сработавшая стадия обрывает
// конвейер; побочные эффекты наступают только после прохода всех стадий.
func (s *Service) admit(ctx context.Context, cfg domain.ChannelConfig, requester, videoID string) (domain.RejectReason, *domain.MediaInfo, error) {
	info, err := s.lookupMedia(ctx, videoID)
	if errors.Is(err, domain.ErrMediaNotFound) {
		return domain.RejectUnresolvable, nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("метаданные видео: %w", err)
	}

	mine, err := s.songs.CountByRequester(ctx, cfg.Channel, requester)
	if err != nil {
		return "", nil, fmt.Errorf("подсчёт заявок заказчика: %w", err)
	}
	if mine >= cfg.SongLimit {
		return domain.RejectQuotaExceeded, &info, nil
	}

	existing, err := s.songs.FindByVideoID(ctx, cfg.Channel, videoID)
	if err != nil {
		return "", nil, fmt.Errorf("поиск дубля: %w", err)
	}
	if existing != nil {
		return domain.RejectAlreadyQueued, &info, nil
	}

	banned, err := s.blacklist.Contains(ctx, cfg.Channel, videoID)
	if err != nil {
		return "", nil, fmt.Errorf("проверка чёрного списка: %w", err)
	}
	if banned {
		return domain.RejectBlacklisted, &info, nil
	}

	now := s.now()
	cached, err := s.songCache.Lookup(ctx, cfg.Channel, videoID)
	if err != nil {
		return "", nil, fmt.Errorf("чтение кэша заявок: %w", err)
	}
	if cached != nil {
		cutoff := now.Add(-time.Duration(cfg.DuplicateHours) * time.Hour)
		// Совпадение с границей окна — допустимо; отказ только строго внутри окна.
		if cached.RequestedAt.After(cutoff) {
			refreshed := *cached
			refreshed.RequestedAt = now
			if err := s.songCache.Upsert(ctx, refreshed); err != nil {
				return "", nil, fmt.Errorf("обновление кэша заявок: %w", err)
			}
			return domain.RejectTooSoon, &info, nil
		}
	}

	if len(info.AllowedRegions) > 0 && !slices.Contains(info.AllowedRegions, s.region) {
		return domain.RejectRegionRestricted, &info, nil
	}

	if durationTooLong(info.DurationCode, cfg.MaxSongMinutes) {
		return domain.RejectTooLong, &info, nil
	}

	if !info.Embeddable {
		return domain.RejectNotEmbeddable, &info, nil
	}

	maxKey, empty, err := s.maxSortKey(ctx, cfg.Channel)
	if err != nil {
		return "", nil, err
	}
	entry := domain.QueueEntry{
		Channel:      cfg.Channel,
		VideoID:      videoID,
		Title:        info.Title,
		DurationCode: info.DurationCode,
		Requester:    requester,
		SortKey:      queue.NextInsertKey(maxKey, empty),
		RequestedAt:  now,
	}
	if err := s.songs.InsertEntry(ctx, entry); err != nil {
		return "", nil, fmt.Errorf("вставка заявки: %w", err)
	}
	if err := s.songCache.Upsert(ctx, domain.CacheEntry{
		Channel:      cfg.Channel,
		VideoID:      videoID,
		Title:        info.Title,
		DurationCode: info.DurationCode,
		RequestedAt:  now,
	}); err != nil {
		return "", nil, fmt.Errorf("запись кэша заявок: %w", err)
	}
	s.stats.IncSongRequest(cfg.Channel, requester)
	return "", &info, nil
}

func (s *Service) maxSortKey(ctx context.Context, channel string) (int, bool, error) {
	maxKey, ok, err := s.songs.MaxSortKey(ctx, channel)
	if err != nil {
		return 0, false, fmt.Errorf("максимальный ключ: %w", err)
	}
	return maxKey, !ok, nil
}

// lookupMedia возвращает метаданные видео. Свежая запись кэша заявок
// заменяет поход к провайдеру; у кэшированных видео регионы и
// встраиваемость считаются безопасными.
func (s *Service) lookupMedia(ctx context.Context, videoID string) (domain.MediaInfo, error) {
	if len(videoID) == videoIDLength {
		cached, err := s.songCache.FindFresh(ctx, videoID, s.now().Add(-metadataMaxAge))
		if err != nil {
			return domain.MediaInfo{}, fmt.Errorf("чтение кэша метаданных: %w", err)
		}
		if cached != nil {
			return domain.MediaInfo{
				VideoID:      videoID,
				Title:        cached.Title,
				DurationCode: cached.DurationCode,
				Embeddable:   true,
			}, nil
		}
	}
	return s.provider.LookupByID(ctx, videoID)
}
