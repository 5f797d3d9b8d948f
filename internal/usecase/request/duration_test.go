package request

import "testing"

func TestParseDurationCode(t *testing.T) {
	minutes, hasHour := parseDurationCode("PT4M13S")
	if minutes != 4 || hasHour {
		t.Fatalf("ожидали 4 минуты без часа, получили %d, %v", minutes, hasHour)
	}
	minutes, hasHour = parseDurationCode("PT1H2M")
	if minutes != 2 || !hasHour {
		t.Fatalf("ожидали час в коде, получили %d, %v", minutes, hasHour)
	}
	minutes, hasHour = parseDurationCode("PT45S")
	if minutes != 0 || hasHour {
		t.Fatalf("ожидали 0 минут, получили %d", minutes)
	}
}

func TestDurationTooLong(t *testing.T) {
	if durationTooLong("PT11M", 10) != true {
		t.Fatalf("11 минут при лимите 10 должны отсекаться")
	}
	if durationTooLong("PT10M", 10) {
		t.Fatalf("ровно лимит должен проходить")
	}
	if durationTooLong("PT1H", 10) != true {
		t.Fatalf("часовой код при лимите должен отсекаться")
	}
	// Нулевой лимит отключает проверку даже для часовых видео.
	if durationTooLong("PT3H", 0) {
		t.Fatalf("нулевой лимит не должен отсекать")
	}
}
