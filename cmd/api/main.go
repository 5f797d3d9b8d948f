package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"song-queue-bot/internal/adapters/repo"
	"song-queue-bot/internal/domain"
	"song-queue-bot/internal/infra/cache"
	"song-queue-bot/internal/infra/cachekeys"
	"song-queue-bot/internal/infra/config"
	"song-queue-bot/internal/infra/db"
	httpinfra "song-queue-bot/internal/infra/http"
	"song-queue-bot/internal/infra/log"
	"song-queue-bot/internal/infra/metrics"
	"song-queue-bot/internal/usecase/queue"
)

// listCacheTTL — время жизни закэшированных списочных выдач. Мутации
// очереди и команд сбрасывают ключи раньше.
const listCacheTTL = 10 * time.Minute

type app struct {
	store *repo.Postgres
	cache domain.Cache
}

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: нет подключения к БД")
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	a := &app{
		store: repo.NewPostgres(pool, repo.ChannelDefaults{
			SongLimit:        cfg.Limits.SongLimit,
			MaxSongMinutes:   cfg.Limits.MaxSongMinutes,
			DuplicateHours:   cfg.Limits.DuplicateHours,
			NextPromotionKey: queue.InitialPromotionKey,
		}),
		cache: cache.NewRedis(redisClient),
	}

	srv := httpinfra.NewServer(logger)
	srv.Router.Route("/api/v1", func(r chi.Router) {
		r.Get("/songs/{channel}", a.handleSongs)
		r.Get("/songcache/{channel}", a.handleSongCache)
		r.Get("/blacklist/{channel}", a.handleBlacklist)
		r.Get("/commands/{channel}", a.handleCommands)
		r.Get("/musicstatus/{channel}", a.handleMusicStatus)
		r.Get("/volume/{channel}", a.handleVolume)
	})

	if err := srv.Start(":" + strconv.Itoa(cfg.Port)); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("api: сервер остановлен")
	}
}

type songItem struct {
	Position  int    `json:"position"`
	VideoID   string `json:"video_id"`
	Title     string `json:"title"`
	Duration  string `json:"duration"`
	Requester string `json:"requester"`
}

func (a *app) handleSongs(w http.ResponseWriter, r *http.Request) {
	channel := chi.URLParam(r, "channel")
	a.readThrough(w, r.Context(), cachekeys.Songlist(channel), func(ctx context.Context) (any, error) {
		entries, err := a.store.ListQueue(ctx, channel)
		if err != nil {
			return nil, err
		}
		items := make([]songItem, 0, len(entries))
		for i, e := range entries {
			items = append(items, songItem{
				Position:  i + 1,
				VideoID:   e.VideoID,
				Title:     e.Title,
				Duration:  e.DurationCode,
				Requester: e.Requester,
			})
		}
		return items, nil
	})
}

type cacheItem struct {
	VideoID     string    `json:"video_id"`
	Title       string    `json:"title"`
	Duration    string    `json:"duration"`
	RequestedAt time.Time `json:"requested_at"`
}

func (a *app) handleSongCache(w http.ResponseWriter, r *http.Request) {
	channel := chi.URLParam(r, "channel")
	a.readThrough(w, r.Context(), cachekeys.Songcache(channel), func(ctx context.Context) (any, error) {
		entries, err := a.store.ListCache(ctx, channel)
		if err != nil {
			return nil, err
		}
		items := make([]cacheItem, 0, len(entries))
		for _, e := range entries {
			items = append(items, cacheItem{
				VideoID:     e.VideoID,
				Title:       e.Title,
				Duration:    e.DurationCode,
				RequestedAt: e.RequestedAt,
			})
		}
		return items, nil
	})
}

type blacklistItem struct {
	VideoID string    `json:"video_id"`
	Title   string    `json:"title"`
	AddedBy string    `json:"added_by,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

func (a *app) handleBlacklist(w http.ResponseWriter, r *http.Request) {
	channel := chi.URLParam(r, "channel")
	a.readThrough(w, r.Context(), cachekeys.Blacklist(channel), func(ctx context.Context) (any, error) {
		entries, err := a.store.ListBlacklist(ctx, channel)
		if err != nil {
			return nil, err
		}
		items := make([]blacklistItem, 0, len(entries))
		for _, e := range entries {
			items = append(items, blacklistItem{
				VideoID: e.VideoID,
				Title:   e.Title,
				AddedBy: e.AddedBy,
				AddedAt: e.AddedAt,
			})
		}
		return items, nil
	})
}

type commandItem struct {
	Trigger  string   `json:"trigger"`
	Message  string   `json:"message,omitempty"`
	IsAlias  bool     `json:"is_alias"`
	AliasFor string   `json:"alias_for,omitempty"`
	Level    int      `json:"level"`
	Counter  int      `json:"counter"`
	List     []string `json:"list,omitempty"`
}

func (a *app) handleCommands(w http.ResponseWriter, r *http.Request) {
	channel := chi.URLParam(r, "channel")
	a.readThrough(w, r.Context(), cachekeys.Commands(channel), func(ctx context.Context) (any, error) {
		entries, err := a.store.ListChannelCommands(ctx, channel)
		if err != nil {
			return nil, err
		}
		items := make([]commandItem, 0, len(entries))
		for _, e := range entries {
			items = append(items, commandItem{
				Trigger:  e.Trigger,
				Message:  e.Message,
				IsAlias:  e.IsAlias,
				AliasFor: e.AliasFor,
				Level:    e.PermissionLevel,
				Counter:  e.Counter,
				List:     e.List,
			})
		}
		return items, nil
	})
}

func (a *app) handleMusicStatus(w http.ResponseWriter, r *http.Request) {
	cfg, err := a.store.GetConfig(r.Context(), chi.URLParam(r, "channel"))
	if err != nil {
		writeError(w, http.StatusNotFound, "channel not found")
		return
	}
	writeJSON(w, map[string]string{"status": string(cfg.Playback)})
}

func (a *app) handleVolume(w http.ResponseWriter, r *http.Request) {
	cfg, err := a.store.GetConfig(r.Context(), chi.URLParam(r, "channel"))
	if err != nil {
		writeError(w, http.StatusNotFound, "channel not found")
		return
	}
	writeJSON(w, map[string]int{"volume": cfg.Volume})
}

// readThrough отдаёт закэшированный JSON либо строит его заново и
// кладёт в кэш. Ошибка кэша не роняет запрос: выдача строится из БД.
func (a *app) readThrough(w http.ResponseWriter, ctx context.Context, key string, load func(ctx context.Context) (any, error)) {
	if data, ok, err := a.cache.GetValue(ctx, key); err == nil && ok {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
		return
	}
	value, err := load(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode error")
		return
	}
	_ = a.cache.SetValue(ctx, key, data, listCacheTTL)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
