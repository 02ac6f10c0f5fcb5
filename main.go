package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/telebot.v3"

	"creditguard-bot/config"
	"creditguard-bot/database"
	"creditguard-bot/handlers"
	"creditguard-bot/middleware"
	"creditguard-bot/platform"
	"creditguard-bot/policy"
	"creditguard-bot/store"
	"creditguard-bot/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ Configuration error: ", err)
	}

	if err := database.Connect(cfg.MongoURI, cfg.MongoDB); err != nil {
		log.Fatal("❌ MongoDB connection failed: ", err)
	}
	defer database.Disconnect()

	ctx := context.Background()

	st := store.New(database.GetDatabase())
	if err := st.Init(ctx); err != nil {
		log.Fatal("❌ Index setup failed: ", err)
	}
	if err := st.EnsureOwner(ctx, cfg.OwnerID); err != nil {
		log.Fatal("❌ Owner bootstrap failed: ", err)
	}
	log.Printf("✅ Record store ready (owner %s)", cfg.OwnerID)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("❌ Redis connection failed: ", err)
	}
	log.Println("✅ Connected to Redis")

	bot, err := telebot.NewBot(telebot.Settings{
		Token: cfg.BotToken,
		Client: &http.Client{
			Timeout: 2 * time.Minute,
		},
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		log.Fatal("❌ Bot startup failed: ", err)
	}

	pol := policy.New(st)
	gate := &middleware.Gate{
		Records:         st,
		Policy:          pol,
		Chat:            platform.NewChat(bot, st, cfg.LogChannelID),
		ModeratedChatID: cfg.ModeratedChatID,
		Prefixes:        cfg.CommandPrefixes,
	}

	bot.Use(middleware.MenuGuard)
	bot.Use(middleware.NewFloodControl(redisClient, cfg.OwnerID, cfg.CommandPrefixes).Middleware)
	bot.Use(gate.Middleware)

	handlers.New(st, pol).Register(bot)

	if cfg.SweepIntervalSec > 0 {
		sweeper := worker.NewSweeper(st, time.Duration(cfg.SweepIntervalSec)*time.Second)
		go sweeper.Start()
	}

	log.Println("🤖 Bot is running...")
	go bot.Start()

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := database.HealthCheck(ctx); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	log.Println("Listening on", cfg.HealthAddr)
	log.Fatal(http.ListenAndServe(cfg.HealthAddr, nil))
}
