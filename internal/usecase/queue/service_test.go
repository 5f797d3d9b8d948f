package queue

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"song-queue-bot/internal/domain"
)

type stubQueueRepo struct {
	entries []domain.QueueEntry
	nextID  int64
}

func (s *stubQueueRepo) add(videoID, title, requester string, sortKey int) {
	s.nextID++
	s.entries = append(s.entries, domain.QueueEntry{
		ID:        s.nextID,
		Channel:   "chan",
		VideoID:   videoID,
		Title:     title,
		Requester: requester,
		SortKey:   sortKey,
	})
}

func (s *stubQueueRepo) sorted() []domain.QueueEntry {
	out := append([]domain.QueueEntry(nil), s.entries...)
	sort.Slice(out, func(i, j int) bool { return out[i].SortKey < out[j].SortKey })
	return out
}

func (s *stubQueueRepo) ListQueue(context.Context, string) ([]domain.QueueEntry, error) {
	return s.sorted(), nil
}

func (s *stubQueueRepo) FindByVideoID(_ context.Context, _, videoID string) (*domain.QueueEntry, error) {
	for i := range s.entries {
		if s.entries[i].VideoID == videoID {
			return &s.entries[i], nil
		}
	}
	return nil, nil
}

func (s *stubQueueRepo) InsertEntry(_ context.Context, entry domain.QueueEntry) error {
	s.nextID++
	entry.ID = s.nextID
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubQueueRepo) UpdateSortKey(_ context.Context, _ string, id int64, key int) error {
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].SortKey = key
			return nil
		}
	}
	return errors.New("нет такой заявки")
}

func (s *stubQueueRepo) DeleteEntry(_ context.Context, _ string, id int64) error {
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return errors.New("нет такой заявки")
}

func (s *stubQueueRepo) DeleteByRequester(_ context.Context, _, requester string) (int64, error) {
	var kept []domain.QueueEntry
	var removed int64
	for _, e := range s.entries {
		if strings.Contains(strings.ToLower(e.Requester), strings.ToLower(requester)) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return removed, nil
}

func (s *stubQueueRepo) CountByRequester(_ context.Context, _, requester string) (int, error) {
	count := 0
	for _, e := range s.entries {
		if e.Requester == requester {
			count++
		}
	}
	return count, nil
}

func (s *stubQueueRepo) CountQueue(context.Context, string) (int, error) {
	return len(s.entries), nil
}

func (s *stubQueueRepo) MaxSortKey(context.Context, string) (int, bool, error) {
	if len(s.entries) == 0 {
		return 0, false, nil
	}
	max := s.entries[0].SortKey
	for _, e := range s.entries {
		if e.SortKey > max {
			max = e.SortKey
		}
	}
	return max, true, nil
}

type stubChannelRepo struct {
	cfg domain.ChannelConfig
}

func (s *stubChannelRepo) EnsureChannel(context.Context, string) (domain.ChannelConfig, error) {
	return s.cfg, nil
}
func (s *stubChannelRepo) GetConfig(context.Context, string) (domain.ChannelConfig, error) {
	return s.cfg, nil
}
func (s *stubChannelRepo) SetPlayback(_ context.Context, _ string, status domain.PlaybackStatus) error {
	s.cfg.Playback = status
	return nil
}
func (s *stubChannelRepo) SetVolume(_ context.Context, _ string, volume int) error {
	s.cfg.Volume = volume
	return nil
}
func (s *stubChannelRepo) SetLastSong(_ context.Context, _, title string) error {
	s.cfg.LastSong = title
	return nil
}
func (s *stubChannelRepo) SetNextPromotionKey(_ context.Context, _ string, key int) error {
	s.cfg.NextPromotionKey = key
	return nil
}

type stubCache struct {
	deleted []string
}

func (s *stubCache) GetValue(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (s *stubCache) SetValue(context.Context, string, []byte, time.Duration) error {
	return nil
}
func (s *stubCache) DelValue(_ context.Context, keys ...string) error {
	s.deleted = append(s.deleted, keys...)
	return nil
}

type stubSink struct {
	names []string
}

func (s *stubSink) Publish(_ context.Context, _ string, name string, _ any) {
	s.names = append(s.names, name)
}

func newTestService(repo *stubQueueRepo, channels *stubChannelRepo) (*Service, *stubSink) {
	sink := &stubSink{}
	svc := NewService(repo, channels, &stubCache{}, sink)
	return svc, sink
}

func TestSkipResetsHeadAndPromotionKey(t *testing.T) {
	repo := &stubQueueRepo{}
	repo.add("aaa", "первая", "u1", 100000)
	repo.add("bbb", "вторая", "u2", 150000)
	repo.add("ccc", "третья", "u3", 200000)
	channels := &stubChannelRepo{cfg: domain.ChannelConfig{Channel: "chan", NextPromotionKey: 150000}}
	svc, sink := newTestService(repo, channels)

	res, err := svc.Skip(context.Background(), "chan")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if res.SkippedTitle != "первая" {
		t.Fatalf("ожидали скип головы, получили %q", res.SkippedTitle)
	}
	if res.NextVideoID != "bbb" {
		t.Fatalf("ожидали новую голову bbb, получили %q", res.NextVideoID)
	}
	head := repo.sorted()[0]
	if head.VideoID != "bbb" || head.SortKey != BaseSortKey {
		t.Fatalf("новая голова должна получить ключ %d, получили %d", BaseSortKey, head.SortKey)
	}
	if channels.cfg.NextPromotionKey != PromotionKeyReset {
		t.Fatalf("ожидали сброс счётчика в %d, получили %d", PromotionKeyReset, channels.cfg.NextPromotionKey)
	}
	if channels.cfg.LastSong != "первая" {
		t.Fatalf("ожидали запись последней песни")
	}
	if len(sink.names) != 1 || sink.names[0] != "skipped" {
		t.Fatalf("ожидали одно событие skipped, получили %v", sink.names)
	}
}

func TestSkipEmptyQueue(t *testing.T) {
	svc, sink := newTestService(&stubQueueRepo{}, &stubChannelRepo{})
	if _, err := svc.Skip(context.Background(), "chan"); !errors.Is(err, ErrQueueEmpty) {
		t.Fatalf("ожидали ErrQueueEmpty, получили %v", err)
	}
	if len(sink.names) != 0 {
		t.Fatalf("пустой скип не должен публиковать событий")
	}
}

func TestPromoteTwiceKeepsLastFirst(t *testing.T) {
	repo := &stubQueueRepo{}
	repo.add("aaa", "первая", "u1", 100000)
	repo.add("bbb", "вторая", "u2", 200000)
	repo.add("ccc", "третья", "u3", 300000)
	channels := &stubChannelRepo{cfg: domain.ChannelConfig{Channel: "chan", NextPromotionKey: 199999}}
	svc, _ := newTestService(repo, channels)

	if _, err := svc.Promote(context.Background(), "chan", "bbb"); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if _, err := svc.Promote(context.Background(), "chan", "ccc"); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}

	order := repo.sorted()
	if order[0].VideoID != "aaa" {
		t.Fatalf("голова не должна меняться, получили %q", order[0].VideoID)
	}
	if order[1].VideoID != "ccc" || order[2].VideoID != "bbb" {
		t.Fatalf("последняя продвинутая должна идти раньше: %q, %q", order[1].VideoID, order[2].VideoID)
	}
	if channels.cfg.NextPromotionKey != 199997 {
		t.Fatalf("счётчик должен уменьшаться на единицу, получили %d", channels.cfg.NextPromotionKey)
	}
}

func TestPromoteByPosition(t *testing.T) {
	repo := &stubQueueRepo{}
	repo.add("aaa", "первая", "u1", 100000)
	repo.add("bbb", "вторая", "u2", 200000)
	channels := &stubChannelRepo{cfg: domain.ChannelConfig{NextPromotionKey: 199999}}
	svc, _ := newTestService(repo, channels)

	res, err := svc.Promote(context.Background(), "chan", "2")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if res.VideoID != "bbb" {
		t.Fatalf("ожидали продвижение второй позиции, получили %q", res.VideoID)
	}
}

func TestPromoteMissingSong(t *testing.T) {
	repo := &stubQueueRepo{}
	repo.add("aaa", "первая", "u1", 100000)
	svc, _ := newTestService(repo, &stubChannelRepo{})
	if _, err := svc.Promote(context.Background(), "chan", "zzz"); !errors.Is(err, ErrSongNotFound) {
		t.Fatalf("ожидали ErrSongNotFound, получили %v", err)
	}
}

func TestShuffleKeepsPromotedInPlace(t *testing.T) {
	repo := &stubQueueRepo{}
	repo.add("head", "голова", "u1", 100000)
	repo.add("prom", "продвинутая", "u2", 199998)
	repo.add("aaa", "а", "u3", 200000)
	repo.add("bbb", "б", "u4", 300000)
	repo.add("ccc", "в", "u5", 400000)
	svc, _ := newTestService(repo, &stubChannelRepo{})
	// Детерминированная перетасовка: разворот среза.
	svc.shuffleFn = func(n int, swap func(i, j int)) {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			swap(i, j)
		}
	}

	count, err := svc.Shuffle(context.Background(), "chan")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if count != 3 {
		t.Fatalf("перетасовке подлежали 3 заявки, получили %d", count)
	}
	order := repo.sorted()
	if order[0].VideoID != "head" || order[1].VideoID != "prom" {
		t.Fatalf("голова и продвинутая должны остаться на месте: %q, %q", order[0].VideoID, order[1].VideoID)
	}
	if order[2].VideoID != "ccc" || order[3].VideoID != "bbb" || order[4].VideoID != "aaa" {
		t.Fatalf("ожидали развёрнутый хвост, получили %q %q %q", order[2].VideoID, order[3].VideoID, order[4].VideoID)
	}
	for i, e := range order[2:] {
		if e.SortKey != (i+2)*SortKeyStep {
			t.Fatalf("ожидали ключ %d, получили %d", (i+2)*SortKeyStep, e.SortKey)
		}
	}
}

func TestWrongSongRemovesLastOfRequester(t *testing.T) {
	repo := &stubQueueRepo{}
	repo.add("aaa", "первая", "alice", 100000)
	repo.add("bbb", "вторая", "bob", 200000)
	repo.add("ccc", "третья", "alice", 300000)
	svc, _ := newTestService(repo, &stubChannelRepo{})

	res, err := svc.WrongSong(context.Background(), "chan", "alice")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if res.Title != "третья" {
		t.Fatalf("ожидали удаление последней заявки alice, получили %q", res.Title)
	}
	if len(repo.entries) != 2 {
		t.Fatalf("ожидали 2 заявки, получили %d", len(repo.entries))
	}
}

func TestRemoveManyDescending(t *testing.T) {
	repo := &stubQueueRepo{}
	repo.add("aaa", "а", "u1", 100000)
	repo.add("bbb", "б", "u2", 200000)
	repo.add("ccc", "в", "u3", 300000)
	repo.add("ddd", "г", "u4", 400000)
	svc, _ := newTestService(repo, &stubChannelRepo{})

	removed, err := svc.RemoveMany(context.Background(), "chan", []int{1, 3})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if removed != 2 {
		t.Fatalf("ожидали 2 удаления, получили %d", removed)
	}
	order := repo.sorted()
	if order[0].VideoID != "bbb" || order[1].VideoID != "ddd" {
		t.Fatalf("позиции не должны сдвигаться при удалении: %q, %q", order[0].VideoID, order[1].VideoID)
	}
}

func TestSetVolumeRange(t *testing.T) {
	channels := &stubChannelRepo{}
	svc, sink := newTestService(&stubQueueRepo{}, channels)
	if err := svc.SetVolume(context.Background(), "chan", 101); !errors.Is(err, ErrVolumeOutOfRange) {
		t.Fatalf("ожидали ErrVolumeOutOfRange, получили %v", err)
	}
	if err := svc.SetVolume(context.Background(), "chan", 70); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if channels.cfg.Volume != 70 {
		t.Fatalf("громкость не сохранилась")
	}
	if len(sink.names) != 1 || sink.names[0] != "volumeupdated" {
		t.Fatalf("ожидали одно событие volumeupdated, получили %v", sink.names)
	}
}
