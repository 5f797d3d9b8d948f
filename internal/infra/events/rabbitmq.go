package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"song-queue-bot/internal/domain"
	"song-queue-bot/internal/infra/metrics"
)

// RabbitSink публикует события очереди в fanout-обменник RabbitMQ.
// Публикация fire-and-forget: чат не ждёт подтверждения брокера,
// ошибки уходят в лог и метрики.
type RabbitSink struct {
	ch       *amqp.Channel
	exchange string
	logger   zerolog.Logger
}

// NewRabbitSink подключается к брокеру и объявляет обменник.
func NewRabbitSink(amqpURL, exchange string, logger zerolog.Logger) (*RabbitSink, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("подключение к rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("открытие канала rabbitmq: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("объявление обменника: %w", err)
	}
	return &RabbitSink{ch: ch, exchange: exchange, logger: logger}, nil
}

// Publish отправляет событие. Ошибки не возвращаются вызывающему.
func (s *RabbitSink) Publish(ctx context.Context, channel, name string, payload any) {
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
	start := time.Now()
	err = s.ch.PublishWithContext(ctx, s.exchange, channel, false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   event.ID,
		Timestamp:   event.At,
		Body:        body,
	})
	metrics.ObserveNetworkRequest("rabbitmq", "publish", s.exchange, start, err)
	if err != nil {
		s.logger.Error().Err(err).Str("channel", channel).Str("event", name).Msg("events: publish failed")
	}
}
