package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chi "github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"song-queue-bot/internal/adapters/chat"
	"song-queue-bot/internal/adapters/repo"
	"song-queue-bot/internal/adapters/youtube"
	"song-queue-bot/internal/domain"
	"song-queue-bot/internal/infra/cache"
	"song-queue-bot/internal/infra/config"
	"song-queue-bot/internal/infra/db"
	"song-queue-bot/internal/infra/events"
	"song-queue-bot/internal/infra/log"
	"song-queue-bot/internal/infra/metrics"
	"song-queue-bot/internal/usecase/command"
	"song-queue-bot/internal/usecase/queue"
	"song-queue-bot/internal/usecase/request"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось подключиться к БД")
	}
	defer pool.Close()

	repoAdapter := repo.NewPostgres(pool, repo.ChannelDefaults{
		SongLimit:        cfg.Limits.SongLimit,
		MaxSongMinutes:   cfg.Limits.MaxSongMinutes,
		DuplicateHours:   cfg.Limits.DuplicateHours,
		NextPromotionKey: queue.InitialPromotionKey,
	})

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	cacheAdapter := cache.NewRedis(redisClient)

	var sink domain.EventSink
	if cfg.RabbitURL != "" {
		rabbitSink, err := events.NewRabbitSink(cfg.RabbitURL, cfg.Events.Exchange, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("не удалось подключиться к rabbitmq")
		}
		sink = rabbitSink
	} else {
		sink = events.NewRedisSink(redisClient, "events:", logger)
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось создать бота")
	}
	if cfg.Telegram.WebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.Telegram.WebhookURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("некорректный адрес вебхука")
		}
		if _, err := botAPI.Request(wh); err != nil {
			logger.Fatal().Err(err).Msg("не удалось зарегистрировать вебхук")
		}
	}

	responder := chat.NewResponder(botAPI, logger)
	perms := chat.NewTelegramPermissions(botAPI)
	provider := youtube.NewClient(cfg.YouTube.APIKey, "", 0)

	queueService := queue.NewService(repoAdapter, repoAdapter, cacheAdapter, sink)
	requestService := request.NewService(
		repoAdapter,
		repoAdapter,
		repoAdapter,
		repoAdapter,
		provider,
		cacheAdapter,
		sink,
		metrics.RequestStats{},
		responder,
		cfg.YouTube.Region,
	)
	commandService := command.NewService(repoAdapter, perms, cacheAdapter, sink)

	h := chat.NewHandler(
		logger,
		queueService,
		requestService,
		commandService,
		repoAdapter,
		repoAdapter,
		repoAdapter,
		provider,
		perms,
		responder,
		cacheAdapter,
		command.NewRateLimiter(),
		cfg.Songlist.BaseURL,
	)

	r := chi.NewRouter()
	r.Post("/bot/webhook", func(w http.ResponseWriter, r *http.Request) {
		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.HandleUpdate(r.Context(), update)
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: r}
	go func() {
		logger.Info().Msg("бот-гейтвей запущен")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP сервер остановлен")
		}
	}()

	metricsCtx, metricsCancel := context.WithCancel(context.Background())
	defer metricsCancel()
	metrics.StartServer(metricsCtx, logger, ":9090")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	logger.Info().Msg("остановка бота")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
