package command

import (
	"testing"
	"time"
)

func newTestLimiter() (*RateLimiter, *time.Time) {
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter()
	limiter.now = func() time.Time { return current }
	return limiter, &current
}

func TestRateLimiterInterval(t *testing.T) {
	limiter, current := newTestLimiter()
	if !limiter.Allow("chan", "!sr") {
		t.Fatalf("первый вызов должен проходить")
	}
	*current = current.Add(1900 * time.Millisecond)
	if limiter.Allow("chan", "!sr") {
		t.Fatalf("вызов внутри интервала должен подавляться")
	}
	*current = current.Add(200 * time.Millisecond)
	if !limiter.Allow("chan", "!sr") {
		t.Fatalf("после интервала вызов должен проходить")
	}
}

func TestRateLimiterTriggersIndependent(t *testing.T) {
	limiter, _ := newTestLimiter()
	if !limiter.Allow("chan", "!sr") {
		t.Fatalf("первый вызов должен проходить")
	}
	if !limiter.Allow("chan", "!skip") {
		t.Fatalf("другой триггер не должен зависеть от первого")
	}
	if !limiter.Allow("other", "!sr") {
		t.Fatalf("другой канал не должен зависеть от первого")
	}
}

func TestRateLimiterForget(t *testing.T) {
	limiter, _ := newTestLimiter()
	limiter.Allow("chan", "!sr")
	limiter.Forget("chan")
	if !limiter.Allow("chan", "!sr") {
		t.Fatalf("после сброса канала первый вызов должен проходить")
	}
}
