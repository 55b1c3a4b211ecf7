package main

import (
	"context"
	"log"
	"time"

	"livepoll/config"
	"livepoll/internal/domain/poll"
	"livepoll/internal/handler"
	"livepoll/internal/redis"
	"livepoll/internal/repository"
	"livepoll/internal/server"
	"livepoll/internal/services"
	"livepoll/internal/websocket"
	"livepoll/pkg/database"
	"livepoll/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	logMode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		logMode = logger.ProductionMode
	}
	l := logger.New(logMode)
	logger.SetGlobalLogger(l)

	// Connect to Database
	database.Connect(cfg)

	if err := database.DB.AutoMigrate(
		&poll.Poll{},
		&poll.Option{},
		&poll.VoteRecord{},
	); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	redisClient := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	limiter := redis.NewRateLimiter(redisClient, redis.DefaultRateLimitConfig())
	cache := redis.NewSnapshotCache(redisClient, redis.DefaultCacheConfig())

	pollRepo := repository.NewPollRepository(database.DB)
	voteRepo := repository.NewVoteRepository(database.DB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.NewHub(l)
	go hub.Run(ctx)

	pollService := services.NewPollService(pollRepo, cache, l)
	voteService := services.NewVoteService(pollRepo, voteRepo, hub, cache, l)

	reconciler := services.NewReconciler(pollRepo, voteRepo, l, time.Duration(cfg.ReconcileSec)*time.Second)
	reconciler.ReconcileAll(ctx)
	reconciler.Start(ctx)

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Poll: handler.NewPollHandler(pollService),
		Vote: handler.NewVoteHandler(voteService),
		WS:   websocket.NewHandler(hub),
	}, limiter, cache)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
