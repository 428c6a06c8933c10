package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/HenryPajuri/interparents2-sub000/internal/config"
	"github.com/HenryPajuri/interparents2-sub000/internal/db"
	internalhttp "github.com/HenryPajuri/interparents2-sub000/internal/http"
	"github.com/HenryPajuri/interparents2-sub000/internal/ratelimit"
	"github.com/HenryPajuri/interparents2-sub000/internal/repository"
	"github.com/HenryPajuri/interparents2-sub000/internal/storage"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connection failed: %v", err)
	}
	defer pool.Close()

	files, err := storage.NewFileStore(cfg.ContentDir)
	if err != nil {
		log.Fatalf("content dir unavailable: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisClient.Close()
	} else {
		log.Printf("REDIS_ADDR not set, rate limiting disabled")
	}

	limiter := ratelimit.NewLimiter(redisClient, "rl:ip", cfg.RateLimitWindow, cfg.RateLimitMax)
	loginLimiter := ratelimit.NewLimiter(redisClient, "rl:login", cfg.LoginLimitWindow, cfg.LoginLimitMax)

	store := repository.NewStore(pool)
	server := internalhttp.NewServer(cfg, store, files, limiter, loginLimiter)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("interparents server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
