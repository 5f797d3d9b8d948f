package domain

import (
	"context"
	"time"
)

// QueueRepo управляет живой очередью заявок.
// Методы поиска возвращают nil без ошибки, если строк нет:
// «ничего не найдено» и «запрос упал» — разные исходы.
type QueueRepo interface {
	ListQueue(ctx context.Context, channel string) ([]QueueEntry, error)
	FindByVideoID(ctx context.Context, channel, videoID string) (*QueueEntry, error)
	InsertEntry(ctx context.Context, entry QueueEntry) error
	UpdateSortKey(ctx context.Context, channel string, id int64, key int) error
	DeleteEntry(ctx context.Context, channel string, id int64) error
	DeleteByRequester(ctx context.Context, channel, requester string) (int64, error)
	CountByRequester(ctx context.Context, channel, requester string) (int, error)
	CountQueue(ctx context.Context, channel string) (int, error)
	MaxSortKey(ctx context.Context, channel string) (int, bool, error)
}

// ChannelRepo управляет настройками каналов.
type ChannelRepo interface {
	EnsureChannel(ctx context.Context, channel string) (ChannelConfig, error)
	GetConfig(ctx context.Context, channel string) (ChannelConfig, error)
	SetPlayback(ctx context.Context, channel string, status PlaybackStatus) error
	SetVolume(ctx context.Context, channel string, volume int) error
	SetLastSong(ctx context.Context, channel, title string) error
	SetNextPromotionKey(ctx context.Context, channel string, key int) error
}

// SongCacheRepo — кэш недавно запрошенных видео.
type SongCacheRepo interface {
	Lookup(ctx context.Context, channel, videoID string) (*CacheEntry, error)
	Upsert(ctx context.Context, entry CacheEntry) error
	ListCache(ctx context.Context, channel string) ([]CacheEntry, error)
	// FindFresh ищет запись по видео в любом канале не старше since.
	FindFresh(ctx context.Context, videoID string, since time.Time) (*CacheEntry, error)
}

// BlacklistRepo — постоянный чёрный список видео канала.
type BlacklistRepo interface {
	Contains(ctx context.Context, channel, videoID string) (bool, error)
	AddToBlacklist(ctx context.Context, entry BlacklistEntry) error
	RemoveFromBlacklist(ctx context.Context, channel, videoID string) error
	ListBlacklist(ctx context.Context, channel string) ([]BlacklistEntry, error)
}

// CommandRepo управляет командами канала и встроенными командами.
type CommandRepo interface {
	GetChannelCommand(ctx context.Context, channel, trigger string) (*CommandEntry, error)
	ListChannelCommands(ctx context.Context, channel string) ([]CommandEntry, error)
	AddChannelCommand(ctx context.Context, entry CommandEntry) error
	UpdateChannelCommandMessage(ctx context.Context, channel, trigger, message string) error
	DeleteChannelCommand(ctx context.Context, channel, trigger string) error
	SetChannelCommandPermission(ctx context.Context, channel, trigger string, level int) error
	IncrementCounter(ctx context.Context, channel, trigger string) (int, error)
	UpdateCommandList(ctx context.Context, channel, trigger string, list []string) error

	GetDefaultCommand(ctx context.Context, trigger string) (*DefaultCommand, error)
	GetDefaultPermission(ctx context.Context, trigger, channel string) (*ChannelPermission, error)
	SetDefaultPermission(ctx context.Context, trigger, channel string, level int) error
}

// MediaProvider — внешний провайдер метаданных и поиска видео.
type MediaProvider interface {
	LookupByID(ctx context.Context, videoID string) (MediaInfo, error)
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	PlaylistItems(ctx context.Context, playlistID string) ([]string, error)
}

// Cache — обобщённый TTL-кэш для списочных выдач.
type Cache interface {
	GetValue(ctx context.Context, key string) ([]byte, bool, error)
	SetValue(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DelValue(ctx context.Context, keys ...string) error
}

// EventSink рассылает события об изменениях очереди и команд.
// Публикация — fire-and-forget: ошибки логируются внутри адаптера.
type EventSink interface {
	Publish(ctx context.Context, channel, name string, payload any)
}

// Responder отправляет текст в чат канала.
type Responder interface {
	Send(ctx context.Context, channel, text string) error
}

// PermissionSource возвращает уровень доступа пользователя в канале.
type PermissionSource interface {
	UserLevel(ctx context.Context, channel, user string) (int, error)
}

// RequestCounter — внешний счётчик успешных заявок.
type RequestCounter interface {
	IncSongRequest(channel, requester string)
}
