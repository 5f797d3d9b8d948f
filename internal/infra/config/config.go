package config

import (
	"log"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	TZ     string `envconfig:"TZ" default:"Europe/Amsterdam"`
	Port   int    `envconfig:"PORT" default:"8080"`

	Telegram struct {
		Token      string `envconfig:"TG_BOT_TOKEN"`
		WebhookURL string `envconfig:"TG_WEBHOOK_URL"`
	} `envconfig:""`

	YouTube struct {
		APIKey string `envconfig:"YOUTUBE_API_KEY"`
		Region string `envconfig:"YOUTUBE_REGION" default:"US"`
	} `envconfig:""`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	RabbitURL string `envconfig:"RABBIT_URL"`

	Limits struct {
		SongLimit      int `envconfig:"DEFAULT_SONG_LIMIT" default:"5"`
		MaxSongMinutes int `envconfig:"DEFAULT_MAX_SONG_MINUTES" default:"10"`
		DuplicateHours int `envconfig:"DEFAULT_DUPLICATE_HOURS" default:"4"`
	} `envconfig:""`

	Events struct {
		Exchange string `envconfig:"EVENTS_EXCHANGE" default:"queue_events"`
	} `envconfig:""`

	Songlist struct {
		BaseURL string `envconfig:"SONGLIST_BASE_URL" default:"http://localhost:8081/songs"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
