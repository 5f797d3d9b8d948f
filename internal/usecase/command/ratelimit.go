package command

import (
	"sync"
	"time"
)

// rateInterval — минимальный промежуток между срабатываниями одного
// триггера в одном канале. Триггеры независимы друг от друга.
const rateInterval = 2 * time.Second

// RateLimiter подавляет повторные вызовы команд в пределах интервала.
// Состояние целиком в памяти, каналы регистрируются лениво при первом
// обращении.
type RateLimiter struct {
	mu       sync.Mutex
	channels map[string]map[string]time.Time
	now      func() time.Time
}

// NewRateLimiter создаёт ограничитель с системными часами.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		channels: make(map[string]map[string]time.Time),
		now:      time.Now,
	}
}

// Allow сообщает, можно ли сейчас исполнить триггер в канале, и при
// положительном ответе фиксирует момент срабатывания. Первый вызов
// триггера разрешается всегда.
func (r *RateLimiter) Allow(channel, trigger string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	triggers, ok := r.channels[channel]
	if !ok {
		triggers = make(map[string]time.Time)
		r.channels[channel] = triggers
	}
	now := r.now()
	if last, ok := triggers[trigger]; ok && now.Sub(last) < rateInterval {
		return false
	}
	triggers[trigger] = now
	return true
}

// Forget убирает состояние канала, когда бот покидает его.
func (r *RateLimiter) Forget(channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.channels, channel)
}
