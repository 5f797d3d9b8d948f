package domain

import "time"

// PlaybackStatus описывает состояние воспроизведения в канале.
type PlaybackStatus string

const (
	// PlaybackPlaying — музыка играет.
	PlaybackPlaying PlaybackStatus = "play"
	// PlaybackPaused — музыка на паузе.
	PlaybackPaused PlaybackStatus = "pause"
)

// QueueEntry описывает одну заявку в живой очереди канала.
type QueueEntry struct {
	ID           int64
	Channel      string
	VideoID      string
	Title        string
	DurationCode string
	Requester    string
	SortKey      int
	RequestedAt  time.Time
}

// ChannelConfig хранит настройки канала и транзитное состояние очереди.
type ChannelConfig struct {
	Channel          string
	SongLimit        int
	MaxSongMinutes   int
	DuplicateHours   int
	NextPromotionKey int
	Playback         PlaybackStatus
	Volume           int
	LastSong         string
	CreatedAt        time.Time
}

// CacheEntry — запись кэша заявок для подавления повторов.
type CacheEntry struct {
	Channel      string
	VideoID      string
	Title        string
	DurationCode string
	RequestedAt  time.Time
}

// BlacklistEntry блокирует видео в канале навсегда.
type BlacklistEntry struct {
	Channel      string
	VideoID      string
	Title        string
	DurationCode string
	AddedBy      string
	AddedAt      time.Time
}

// CommandEntry — команда, добавленная в канале.
type CommandEntry struct {
	ID              int64
	Channel         string
	Trigger         string
	Message         string
	IsAlias         bool
	AliasFor        string
	PermissionLevel int
	Counter         int
	List            []string
}

// DefaultCommand — встроенная команда бота.
type DefaultCommand struct {
	Trigger      string
	IsAlias      bool
	AliasFor     string
	DefaultLevel int
}

// ChannelPermission — переопределение уровня доступа встроенной команды в канале.
type ChannelPermission struct {
	Trigger string
	Channel string
	Level   int
}

// MediaInfo — метаданные видео от внешнего провайдера.
type MediaInfo struct {
	VideoID        string
	Title          string
	DurationCode   string
	Embeddable     bool
	AllowedRegions []string
}

// SearchResult — кандидат из поиска провайдера.
type SearchResult struct {
	VideoID string
	Title   string
}

// Event — событие об изменении очереди или команд.
type Event struct {
	ID      string    `json:"id"`
	Channel string    `json:"channel"`
	Name    string    `json:"name"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}
