package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"song-queue-bot/internal/domain"
	"song-queue-bot/internal/infra/metrics"
)

// RedisSink публикует события через Redis Pub/Sub. Запасной транспорт
// для окружений без RabbitMQ.
type RedisSink struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewRedisSink создаёт публикатор с префиксом топиков.
func NewRedisSink(client *redis.Client, prefix string, logger zerolog.Logger) *RedisSink {
	return &RedisSink{client: client, prefix: prefix, logger: logger}
}

// Publish отправляет событие в топик канала. Ошибки не возвращаются.
func (s *RedisSink) Publish(ctx context.Context, channel, name string, payload any) {
	event := domain.Event{
		ID:      uuid.NewString(),
		Channel: channel,
		Name:    name,
		Payload: payload,
		At:      time.Now(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Error().Err(err).Str("event", name).Msg("events: marshal failed")
		return
	}
	topic := s.prefix + channel
	start := time.Now()
	err = s.client.Publish(ctx, topic, body).Err()
	metrics.ObserveNetworkRequest("redis", "publish", topic, start, err)
	if err != nil {
		s.logger.Error().Err(err).Str("channel", channel).Str("event", name).Msg("events: publish failed")
	}
}
