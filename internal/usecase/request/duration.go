package request

import (
	"regexp"
	"strconv"
	"strings"
)

var durationCodeRegex = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseDurationCode разбирает код длительности вида PT1H2M3S.
// Возвращает минутную компоненту и признак часовой.
func parseDurationCode(code string) (minutes int, hasHour bool) {
	matches := durationCodeRegex.FindStringSubmatch(strings.TrimSpace(code))
	if matches == nil {
		return 0, false
	}
	if matches[1] != "" {
		hasHour = true
	}
	if matches[2] != "" {
		minutes, _ = strconv.Atoi(matches[2])
	}
	return minutes, hasHour
}

// durationTooLong проверяет длительность против лимита канала в минутах.
// Нулевой лимит значит «без ограничений». При ненулевом лимите часовая
// компонента всегда проходит как «слишком длинно», иначе сравниваются минуты.
func durationTooLong(code string, maxMinutes int) bool {
	if maxMinutes == 0 {
		return false
	}
	minutes, hasHour := parseDurationCode(code)
	if hasHour {
		return true
	}
	return minutes > maxMinutes
}
