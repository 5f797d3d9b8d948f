package request

import (
	"fmt"
	"strings"

	"song-queue-bot/internal/domain"
)

// Ответы бота заказчику. Тексты — контракт: они проверяются тестами
// вплоть до форм множественного числа.
const (
	msgUsage           = "To request a song, type the following: !sr youtube URL, video ID, or the song name"
	msgInvalidURL      = "Invalid URL! To request a song, type the following: !sr youtube URL, video ID, or the song name"
	msgSearchNotFound  = "Song not found! To request a song, type the following: !sr youtube URL, video ID, or the song name"
	msgInvalidPlaylist = "Invalid Playlist! To request a playlist, type the following: !pr PlaylistID or YouTube URL!"
	msgPlaylistLimit   = "Song request limit reached, please try again later!"
	msgGathering       = "Gathering playlist data, please wait..."
	msgLimitReached    = "Song request limit reached, please try again later"
)

// BatchOutcome — агрегат исходов одной партии заявок.
type BatchOutcome struct {
	Requested     int
	Added         int
	Counts        map[domain.RejectReason]int
	LastTitle     string
	QueuePosition int
	SongLimit     int
	Region        string
}

// renderOrder фиксирует порядок причин в сводном сообщении.
var renderOrder = []domain.RejectReason{
	domain.RejectTooSoon,
	domain.RejectTooLong,
	domain.RejectAlreadyQueued,
	domain.RejectBlacklisted,
	domain.RejectRegionRestricted,
	domain.RejectNotEmbeddable,
	domain.RejectUnresolvable,
}

// RenderBatchMessage строит детерминированный сводный ответ по партии:
// счётчики причин склоняются по числу, исчерпанная квота подавляет
// остальные причины, полная партия даёт короткое «добавлено».
func RenderBatchMessage(o BatchOutcome) string {
	if o.Added > 0 {
		if o.Requested == o.Added || o.Added == o.SongLimit {
			if o.Added == 1 {
				return fmt.Sprintf("The song %s has been added to the queue as #%d", o.LastTitle, o.QueuePosition)
			}
			return fmt.Sprintf("%d songs added", o.Added)
		}
		if o.Counts[domain.RejectQuotaExceeded] > 0 {
			if o.Added > 1 {
				return fmt.Sprintf("%d songs were added, but you reached the limit", o.Added)
			}
			return fmt.Sprintf("%d song was added, but you reached the limit", o.Added)
		}
		var prefix string
		if o.Added > 1 {
			prefix = fmt.Sprintf("%d songs were added, but ", o.Added)
		} else {
			prefix = fmt.Sprintf("%d song was added, but ", o.Added)
		}
		return prefix + joinFailures(failureMessages(o))
	}
	if o.Counts[domain.RejectQuotaExceeded] > 0 {
		return msgLimitReached
	}
	var prefix string
	if o.Requested > 1 {
		prefix = "No songs were added because "
	}
	return prefix + joinFailures(failureMessages(o))
}

func failureMessages(o BatchOutcome) []string {
	var msgs []string
	for _, reason := range renderOrder {
		n := o.Counts[reason]
		if n == 0 {
			continue
		}
		msgs = append(msgs, failureMessage(reason, n, o))
	}
	return msgs
}

func failureMessage(reason domain.RejectReason, n int, o BatchOutcome) string {
	single := o.Requested == 1 && n == 1
	switch reason {
	case domain.RejectTooSoon:
		switch {
		case single:
			return fmt.Sprintf("The song %s was played too recently", o.LastTitle)
		case n == 1:
			return "1 song was played too recently"
		default:
			return fmt.Sprintf("%d songs were played too recently", n)
		}
	case domain.RejectTooLong:
		switch {
		case single:
			return fmt.Sprintf("The song %s is too long", o.LastTitle)
		case n == 1:
			return "1 song is too long"
		default:
			return fmt.Sprintf("%d songs are too long", n)
		}
	case domain.RejectAlreadyQueued:
		switch {
		case single:
			return fmt.Sprintf("The song %s already exists in the queue", o.LastTitle)
		case n == 1:
			return "1 song already exists"
		default:
			return fmt.Sprintf("%d songs already exist", n)
		}
	case domain.RejectBlacklisted:
		switch {
		case single:
			return fmt.Sprintf("The song %s is blacklisted", o.LastTitle)
		case n == 1:
			return "1 song is blacklisted"
		default:
			return fmt.Sprintf("%d songs are blacklisted", n)
		}
	case domain.RejectRegionRestricted:
		switch {
		case single:
			return fmt.Sprintf("The song %s is unavailable for playback in: %s", o.LastTitle, o.Region)
		case n == 1:
			return fmt.Sprintf("1 song was unavailable for playback in: %s", o.Region)
		default:
			return fmt.Sprintf("%d songs were unavailable for playback in: %s", n, o.Region)
		}
	case domain.RejectNotEmbeddable:
		switch {
		case single:
			return fmt.Sprintf("The song %s is not allowed to be embedded", o.LastTitle)
		case n == 1:
			return "1 song was not allowed to be embedded"
		default:
			return fmt.Sprintf("%d songs were not allowed to be embedded", n)
		}
	case domain.RejectUnresolvable:
		switch {
		case single:
			return "Invalid song ID"
		case n == 1:
			return "1 ID was invalid"
		default:
			return fmt.Sprintf("%d IDs were invalid", n)
		}
	}
	return ""
}

func joinFailures(msgs []string) string {
	switch len(msgs) {
	case 0:
		return ""
	case 1:
		return msgs[0]
	}
	return strings.Join(msgs[:len(msgs)-1], ", ") + ", and " + msgs[len(msgs)-1]
}
