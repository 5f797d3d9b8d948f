package request

import (
	"testing"

	"song-queue-bot/internal/domain"
)

func TestRenderSingleAdded(t *testing.T) {
	out := RenderBatchMessage(BatchOutcome{
		Requested:     1,
		Added:         1,
		Counts:        map[domain.RejectReason]int{},
		LastTitle:     "Test Song",
		QueuePosition: 3,
		SongLimit:     5,
	})
	if out != "The song Test Song has been added to the queue as #3" {
		t.Fatalf("неожиданный текст: %q", out)
	}
}

func TestRenderAllAdded(t *testing.T) {
	out := RenderBatchMessage(BatchOutcome{
		Requested: 3,
		Added:     3,
		Counts:    map[domain.RejectReason]int{},
		SongLimit: 5,
	})
	if out != "3 songs added" {
		t.Fatalf("неожиданный текст: %q", out)
	}
}

func TestRenderMixedCounts(t *testing.T) {
	out := RenderBatchMessage(BatchOutcome{
		Requested: 3,
		Added:     1,
		Counts:    map[domain.RejectReason]int{domain.RejectTooLong: 2},
		SongLimit: 5,
	})
	if out != "1 song was added, but 2 songs are too long" {
		t.Fatalf("неожиданный текст: %q", out)
	}
}

func TestRenderMultipleReasonsJoined(t *testing.T) {
	out := RenderBatchMessage(BatchOutcome{
		Requested: 4,
		Added:     0,
		Counts: map[domain.RejectReason]int{
			domain.RejectTooSoon:       1,
			domain.RejectTooLong:      2,
			domain.RejectAlreadyQueued: 1,
		},
		SongLimit: 5,
	})
	expected := "No songs were added because 1 song was played too recently, 2 songs are too long, and 1 song already exists"
	if out != expected {
		t.Fatalf("неожиданный текст: %q", out)
	}
}

func TestRenderQuotaSuppressesOtherReasons(t *testing.T) {
	out := RenderBatchMessage(BatchOutcome{
		Requested: 5,
		Added:     2,
		Counts: map[domain.RejectReason]int{
			domain.RejectQuotaExceeded: 2,
			domain.RejectTooLong:       1,
		},
		SongLimit: 5,
	})
	if out != "2 songs were added, but you reached the limit" {
		t.Fatalf("неожиданный текст: %q", out)
	}
}

func TestRenderQuotaOnly(t *testing.T) {
	out := RenderBatchMessage(BatchOutcome{
		Requested: 2,
		Added:     0,
		Counts:    map[domain.RejectReason]int{domain.RejectQuotaExceeded: 2},
		SongLimit: 5,
	})
	if out != msgLimitReached {
		t.Fatalf("неожиданный текст: %q", out)
	}
}

func TestRenderSingleRejectNamesSong(t *testing.T) {
	out := RenderBatchMessage(BatchOutcome{
		Requested: 1,
		Added:     0,
		Counts:    map[domain.RejectReason]int{domain.RejectBlacklisted: 1},
		LastTitle: "Bad Song",
		SongLimit: 5,
	})
	if out != "The song Bad Song is blacklisted" {
		t.Fatalf("неожиданный текст: %q", out)
	}
}

func TestRenderRegionIncludesCode(t *testing.T) {
	out := RenderBatchMessage(BatchOutcome{
		Requested: 1,
		Added:     0,
		Counts:    map[domain.RejectReason]int{domain.RejectRegionRestricted: 1},
		LastTitle: "Geo Song",
		Region:    "US",
		SongLimit: 5,
	})
	if out != "The song Geo Song is unavailable for playback in: US" {
		t.Fatalf("неожиданный текст: %q", out)
	}
}
