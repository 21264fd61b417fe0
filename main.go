package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"adpay-go/cache"
	"adpay-go/config"
	"adpay-go/database"
	"adpay-go/handlers"
	"adpay-go/jobs"
	"adpay-go/middleware"
	"adpay-go/notify"
	"adpay-go/services"
	"adpay-go/utils"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, reading configuration from the environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("level", cfg.LogLevel).Warn("Unknown LOG_LEVEL, using info")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cipher, err := utils.NewCipher(cfg.EncryptionKey)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize encryption")
	}
	tokens, err := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize JWT")
	}

	db, err := database.Initialize(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	store := database.NewStore(db)

	deps := services.Deps{
		Store:    store,
		Rules:    services.RulesFromConfig(cfg),
		Tokens:   tokens,
		Cipher:   cipher,
		Notifier: notify.Noop{},
		CacheTTL: cfg.DashboardCacheTTL,
		Now:      time.Now,
		Admin: services.AdminCredentials{
			Email:        cfg.AdminEmail,
			PasswordHash: cfg.AdminPasswordHash,
			Password:     cfg.AdminPassword,
		},
	}

	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Warn("Dashboard cache disabled")
		} else {
			defer rdb.Close()
			deps.Cache = cache.NewRedis(rdb, "adpay:")
		}
	}

	if cfg.TelegramBotToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramAdminChatID)
		if err != nil {
			log.WithError(err).Warn("Admin notifications disabled")
		} else {
			deps.Notifier = tg
		}
	}

	svc := services.New(deps)
	h := handlers.NewHandlers(svc, store, cfg)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	scheduler := jobs.NewScheduler(cfg.Location(), svc.Tokens, limiter)
	if err := scheduler.Start(ctx); err != nil {
		log.WithError(err).Fatal("Failed to start job scheduler")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.Handler(middleware.NewAuth(tokens), limiter),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{
			"port":        cfg.Port,
			"environment": cfg.Environment,
			"timezone":    cfg.Timezone,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	scheduler.Stop()

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
