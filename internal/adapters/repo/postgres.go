package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"song-queue-bot/internal/domain"
	"song-queue-bot/internal/infra/metrics"
)

// ChannelDefaults — стартовые настройки канала при первой регистрации.
type ChannelDefaults struct {
	SongLimit        int
	MaxSongMinutes   int
	DuplicateHours   int
	NextPromotionKey int
}

// Postgres реализует репозитории на основе pgxpool.
type Postgres struct {
	pool     *pgxpool.Pool
	defaults ChannelDefaults
}

var (
	_ domain.QueueRepo     = (*Postgres)(nil)
	_ domain.ChannelRepo   = (*Postgres)(nil)
	_ domain.SongCacheRepo = (*Postgres)(nil)
	_ domain.BlacklistRepo = (*Postgres)(nil)
	_ domain.CommandRepo   = (*Postgres)(nil)
)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool, defaults ChannelDefaults) *Postgres {
	return &Postgres{pool: pool, defaults: defaults}
}

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 5*time.Second)
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// ListQueue возвращает очередь канала в порядке возрастания ключа сортировки.
func (p *Postgres) ListQueue(ctx context.Context, channel string) ([]domain.QueueEntry, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, channel, video_id, title, duration_code, requester, sort_key, created_at
FROM songs
WHERE channel = $1
ORDER BY sort_key ASC
`, channel)
	metrics.ObserveNetworkRequest("postgres", "songs_list", "songs", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.QueueEntry
	for rows.Next() {
		var e domain.QueueEntry
		if err := rows.Scan(&e.ID, &e.Channel, &e.VideoID, &e.Title, &e.DurationCode, &e.Requester, &e.SortKey, &e.RequestedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FindByVideoID возвращает заявку канала по видео либо nil.
func (p *Postgres) FindByVideoID(ctx context.Context, channel, videoID string) (*domain.QueueEntry, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var e domain.QueueEntry
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT id, channel, video_id, title, duration_code, requester, sort_key, created_at
FROM songs
WHERE channel = $1 AND video_id = $2
`, channel, videoID).Scan(&e.ID, &e.Channel, &e.VideoID, &e.Title, &e.DurationCode, &e.Requester, &e.SortKey, &e.RequestedAt)
	metrics.ObserveNetworkRequest("postgres", "songs_find", "songs", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// InsertEntry добавляет заявку в очередь.
func (p *Postgres) InsertEntry(ctx context.Context, entry domain.QueueEntry) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO songs (channel, video_id, title, duration_code, requester, sort_key, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, entry.Channel, entry.VideoID, entry.Title, entry.DurationCode, entry.Requester, entry.SortKey, entry.RequestedAt)
	metrics.ObserveNetworkRequest("postgres", "songs_insert", "songs", start, err)
	return err
}

// UpdateSortKey переставляет заявку по новому ключу сортировки.
func (p *Postgres) UpdateSortKey(ctx context.Context, channel string, id int64, key int) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
UPDATE songs SET sort_key = $3 WHERE channel = $1 AND id = $2
`, channel, id, key)
	metrics.ObserveNetworkRequest("postgres", "songs_update_key", "songs", start, err)
	return err
}

// DeleteEntry удаляет заявку из очереди.
func (p *Postgres) DeleteEntry(ctx context.Context, channel string, id int64) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
DELETE FROM songs WHERE channel = $1 AND id = $2
`, channel, id)
	metrics.ObserveNetworkRequest("postgres", "songs_delete", "songs", start, err)
	return err
}

// DeleteByRequester удаляет заявки по подстроке имени заказчика.
func (p *Postgres) DeleteByRequester(ctx context.Context, channel, requester string) (int64, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `
DELETE FROM songs WHERE channel = $1 AND requester ILIKE '%' || $2 || '%'
`, channel, requester)
	metrics.ObserveNetworkRequest("postgres", "songs_delete_requester", "songs", start, err)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountByRequester считает заявки заказчика в канале.
func (p *Postgres) CountByRequester(ctx context.Context, channel, requester string) (int, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var count int
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM songs WHERE channel = $1 AND requester = $2
`, channel, requester).Scan(&count)
	metrics.ObserveNetworkRequest("postgres", "songs_count_requester", "songs", start, err)
	return count, err
}

// CountQueue считает все заявки канала.
func (p *Postgres) CountQueue(ctx context.Context, channel string) (int, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var count int
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM songs WHERE channel = $1
`, channel).Scan(&count)
	metrics.ObserveNetworkRequest("postgres", "songs_count", "songs", start, err)
	return count, err
}

// MaxSortKey возвращает наибольший ключ сортировки канала. Второй
// результат false — очередь пуста.
func (p *Postgres) MaxSortKey(ctx context.Context, channel string) (int, bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var key int
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT sort_key FROM songs WHERE channel = $1 ORDER BY sort_key DESC LIMIT 1
`, channel).Scan(&key)
	metrics.ObserveNetworkRequest("postgres", "songs_max_key", "songs", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return key, true, nil
}

// EnsureChannel регистрирует канал с настройками по умолчанию, если его
// ещё нет, и возвращает актуальную конфигурацию.
func (p *Postgres) EnsureChannel(ctx context.Context, channel string) (domain.ChannelConfig, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO channels (channel, song_limit, max_song_minutes, duplicate_hours, next_promotion_key, playback, volume, created_at)
VALUES ($1, $2, $3, $4, $5, 'play', 50, now())
ON CONFLICT (channel) DO NOTHING
`, channel, p.defaults.SongLimit, p.defaults.MaxSongMinutes, p.defaults.DuplicateHours, p.defaults.NextPromotionKey)
	metrics.ObserveNetworkRequest("postgres", "channels_ensure", "channels", start, err)
	if err != nil {
		return domain.ChannelConfig{}, err
	}
	return p.GetConfig(ctx, channel)
}

// GetConfig возвращает настройки канала.
func (p *Postgres) GetConfig(ctx context.Context, channel string) (domain.ChannelConfig, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var cfg domain.ChannelConfig
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT channel, song_limit, max_song_minutes, duplicate_hours, next_promotion_key, playback, volume, COALESCE(last_song, ''), created_at
FROM channels
WHERE channel = $1
`, channel).Scan(&cfg.Channel, &cfg.SongLimit, &cfg.MaxSongMinutes, &cfg.DuplicateHours, &cfg.NextPromotionKey, &cfg.Playback, &cfg.Volume, &cfg.LastSong, &cfg.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "channels_get", "channels", start, err)
	return cfg, err
}

// SetPlayback меняет состояние воспроизведения канала.
func (p *Postgres) SetPlayback(ctx context.Context, channel string, status domain.PlaybackStatus) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
UPDATE channels SET playback = $2 WHERE channel = $1
`, channel, status)
	metrics.ObserveNetworkRequest("postgres", "channels_playback", "channels", start, err)
	return err
}

// SetVolume меняет громкость канала.
func (p *Postgres) SetVolume(ctx context.Context, channel string, volume int) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
UPDATE channels SET volume = $2 WHERE channel = $1
`, channel, volume)
	metrics.ObserveNetworkRequest("postgres", "channels_volume", "channels", start, err)
	return err
}

// SetLastSong запоминает последнюю проигранную песню канала.
func (p *Postgres) SetLastSong(ctx context.Context, channel, title string) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
UPDATE channels SET last_song = $2 WHERE channel = $1
`, channel, title)
	metrics.ObserveNetworkRequest("postgres", "channels_last_song", "channels", start, err)
	return err
}

// SetNextPromotionKey сохраняет следующий ключ продвижения канала.
func (p *Postgres) SetNextPromotionKey(ctx context.Context, channel string, key int) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
UPDATE channels SET next_promotion_key = $2 WHERE channel = $1
`, channel, key)
	metrics.ObserveNetworkRequest("postgres", "channels_promotion_key", "channels", start, err)
	return err
}

// Lookup возвращает запись кэша заявок канала либо nil.
func (p *Postgres) Lookup(ctx context.Context, channel, videoID string) (*domain.CacheEntry, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var e domain.CacheEntry
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT channel, video_id, title, duration_code, requested_at
FROM song_cache
WHERE channel = $1 AND video_id = $2
`, channel, videoID).Scan(&e.Channel, &e.VideoID, &e.Title, &e.DurationCode, &e.RequestedAt)
	metrics.ObserveNetworkRequest("postgres", "song_cache_lookup", "song_cache", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Upsert записывает или обновляет запись кэша заявок.
func (p *Postgres) Upsert(ctx context.Context, entry domain.CacheEntry) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO song_cache (channel, video_id, title, duration_code, requested_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (channel, video_id) DO UPDATE SET title = EXCLUDED.title, duration_code = EXCLUDED.duration_code, requested_at = EXCLUDED.requested_at
`, entry.Channel, entry.VideoID, entry.Title, entry.DurationCode, entry.RequestedAt)
	metrics.ObserveNetworkRequest("postgres", "song_cache_upsert", "song_cache", start, err)
	return err
}

// ListCache возвращает кэш заявок канала, свежие записи первыми.
func (p *Postgres) ListCache(ctx context.Context, channel string) ([]domain.CacheEntry, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT channel, video_id, title, duration_code, requested_at
FROM song_cache
WHERE channel = $1
ORDER BY requested_at DESC
`, channel)
	metrics.ObserveNetworkRequest("postgres", "song_cache_list", "song_cache", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.CacheEntry
	for rows.Next() {
		var e domain.CacheEntry
		if err := rows.Scan(&e.Channel, &e.VideoID, &e.Title, &e.DurationCode, &e.RequestedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FindFresh ищет запись кэша по видео в любом канале не старше since.
// Метаданные видео одинаковы для всех каналов, поэтому свежая чужая
// запись избавляет от похода к провайдеру.
func (p *Postgres) FindFresh(ctx context.Context, videoID string, since time.Time) (*domain.CacheEntry, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var e domain.CacheEntry
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT channel, video_id, title, duration_code, requested_at
FROM song_cache
WHERE video_id = $1 AND requested_at >= $2
ORDER BY requested_at DESC
LIMIT 1
`, videoID, since).Scan(&e.Channel, &e.VideoID, &e.Title, &e.DurationCode, &e.RequestedAt)
	metrics.ObserveNetworkRequest("postgres", "song_cache_fresh", "song_cache", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Contains проверяет, занесено ли видео в чёрный список канала.
func (p *Postgres) Contains(ctx context.Context, channel, videoID string) (bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var exists bool
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM song_blacklist WHERE channel = $1 AND video_id = $2)
`, channel, videoID).Scan(&exists)
	metrics.ObserveNetworkRequest("postgres", "blacklist_contains", "song_blacklist", start, err)
	return exists, err
}

// AddToBlacklist заносит видео в чёрный список канала.
func (p *Postgres) AddToBlacklist(ctx context.Context, entry domain.BlacklistEntry) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO song_blacklist (channel, video_id, title, duration_code, added_by, added_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (channel, video_id) DO NOTHING
`, entry.Channel, entry.VideoID, entry.Title, entry.DurationCode, entry.AddedBy, entry.AddedAt)
	metrics.ObserveNetworkRequest("postgres", "blacklist_add", "song_blacklist", start, err)
	return err
}

// RemoveFromBlacklist убирает видео из чёрного списка канала.
func (p *Postgres) RemoveFromBlacklist(ctx context.Context, channel, videoID string) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
DELETE FROM song_blacklist WHERE channel = $1 AND video_id = $2
`, channel, videoID)
	metrics.ObserveNetworkRequest("postgres", "blacklist_remove", "song_blacklist", start, err)
	return err
}

// ListBlacklist возвращает чёрный список канала.
func (p *Postgres) ListBlacklist(ctx context.Context, channel string) ([]domain.BlacklistEntry, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT channel, video_id, title, duration_code, COALESCE(added_by, ''), added_at
FROM song_blacklist
WHERE channel = $1
ORDER BY added_at DESC
`, channel)
	metrics.ObserveNetworkRequest("postgres", "blacklist_list", "song_blacklist", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.BlacklistEntry
	for rows.Next() {
		var e domain.BlacklistEntry
		if err := rows.Scan(&e.Channel, &e.VideoID, &e.Title, &e.DurationCode, &e.AddedBy, &e.AddedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetChannelCommand возвращает команду канала по триггеру либо nil.
func (p *Postgres) GetChannelCommand(ctx context.Context, channel, trigger string) (*domain.CommandEntry, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var e domain.CommandEntry
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT id, channel, trigger, COALESCE(message, ''), is_alias, COALESCE(alias_for, ''), permission_level, counter, COALESCE(list, '{}')
FROM commands
WHERE channel = $1 AND trigger = $2
`, channel, trigger).Scan(&e.ID, &e.Channel, &e.Trigger, &e.Message, &e.IsAlias, &e.AliasFor, &e.PermissionLevel, &e.Counter, &e.List)
	metrics.ObserveNetworkRequest("postgres", "commands_get", "commands", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListChannelCommands возвращает все команды канала.
func (p *Postgres) ListChannelCommands(ctx context.Context, channel string) ([]domain.CommandEntry, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, channel, trigger, COALESCE(message, ''), is_alias, COALESCE(alias_for, ''), permission_level, counter, COALESCE(list, '{}')
FROM commands
WHERE channel = $1
ORDER BY trigger ASC
`, channel)
	metrics.ObserveNetworkRequest("postgres", "commands_list", "commands", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.CommandEntry
	for rows.Next() {
		var e domain.CommandEntry
		if err := rows.Scan(&e.ID, &e.Channel, &e.Trigger, &e.Message, &e.IsAlias, &e.AliasFor, &e.PermissionLevel, &e.Counter, &e.List); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AddChannelCommand добавляет команду канала.
func (p *Postgres) AddChannelCommand(ctx context.Context, entry domain.CommandEntry) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO commands (channel, trigger, message, is_alias, alias_for, permission_level, counter, list)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, 0, '{}')
`, entry.Channel, entry.Trigger, entry.Message, entry.IsAlias, entry.AliasFor, entry.PermissionLevel)
	metrics.ObserveNetworkRequest("postgres", "commands_add", "commands", start, err)
	return err
}

// UpdateChannelCommandMessage меняет текст команды канала.
func (p *Postgres) UpdateChannelCommandMessage(ctx context.Context, channel, trigger, message string) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
UPDATE commands SET message = $3 WHERE channel = $1 AND trigger = $2
`, channel, trigger, message)
	metrics.ObserveNetworkRequest("postgres", "commands_update", "commands", start, err)
	return err
}

// DeleteChannelCommand удаляет команду канала.
func (p *Postgres) DeleteChannelCommand(ctx context.Context, channel, trigger string) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
DELETE FROM commands WHERE channel = $1 AND trigger = $2
`, channel, trigger)
	metrics.ObserveNetworkRequest("postgres", "commands_delete", "commands", start, err)
	return err
}

// SetChannelCommandPermission меняет уровень доступа команды канала.
func (p *Postgres) SetChannelCommandPermission(ctx context.Context, channel, trigger string, level int) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
UPDATE commands SET permission_level = $3 WHERE channel = $1 AND trigger = $2
`, channel, trigger, level)
	metrics.ObserveNetworkRequest("postgres", "commands_permission", "commands", start, err)
	return err
}

// IncrementCounter атомарно увеличивает счётчик команды и возвращает
// новое значение.
func (p *Postgres) IncrementCounter(ctx context.Context, channel, trigger string) (int, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var counter int
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
UPDATE commands SET counter = counter + 1 WHERE channel = $1 AND trigger = $2 RETURNING counter
`, channel, trigger).Scan(&counter)
	metrics.ObserveNetworkRequest("postgres", "commands_counter", "commands", start, err)
	return counter, err
}

// UpdateCommandList заменяет список команды целиком.
func (p *Postgres) UpdateCommandList(ctx context.Context, channel, trigger string, list []string) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
UPDATE commands SET list = $3 WHERE channel = $1 AND trigger = $2
`, channel, trigger, list)
	metrics.ObserveNetworkRequest("postgres", "commands_list_update", "commands", start, err)
	return err
}

// GetDefaultCommand возвращает встроенную команду по триггеру либо nil.
func (p *Postgres) GetDefaultCommand(ctx context.Context, trigger string) (*domain.DefaultCommand, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var e domain.DefaultCommand
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT trigger, is_alias, COALESCE(alias_for, ''), default_level
FROM default_commands
WHERE trigger = $1
`, trigger).Scan(&e.Trigger, &e.IsAlias, &e.AliasFor, &e.DefaultLevel)
	metrics.ObserveNetworkRequest("postgres", "default_commands_get", "default_commands", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetDefaultPermission возвращает переопределение уровня доступа
// встроенной команды в канале либо nil.
func (p *Postgres) GetDefaultPermission(ctx context.Context, trigger, channel string) (*domain.ChannelPermission, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var e domain.ChannelPermission
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT trigger, channel, level
FROM default_command_permissions
WHERE trigger = $1 AND channel = $2
`, trigger, channel).Scan(&e.Trigger, &e.Channel, &e.Level)
	metrics.ObserveNetworkRequest("postgres", "default_permissions_get", "default_command_permissions", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// SetDefaultPermission записывает переопределение уровня доступа
// встроенной команды в канале.
func (p *Postgres) SetDefaultPermission(ctx context.Context, trigger, channel string, level int) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO default_command_permissions (trigger, channel, level)
VALUES ($1, $2, $3)
ON CONFLICT (trigger, channel) DO UPDATE SET level = EXCLUDED.level
`, trigger, channel, level)
	metrics.ObserveNetworkRequest("postgres", "default_permissions_set", "default_command_permissions", start, err)
	return err
}
