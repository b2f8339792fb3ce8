package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"urlshortener/internal/config"
	"urlshortener/internal/handler"
	"urlshortener/internal/repository"
	"urlshortener/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded")
	}

	cfg := config.FromEnv()
	if cfg.DatabaseDSN == "" {
		log.Fatal("DATABASE_DSN not set")
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatal(err)
	}
	db.SetMaxOpenConns(cfg.MaxDBConns)
	db.SetMaxIdleConns(cfg.MaxDBConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStart()
	if err := db.PingContext(startCtx); err != nil {
		log.Fatal("db ping:", err)
	}

	repo := repository.NewRepo(db)
	if err := repo.InitSchema(startCtx); err != nil {
		log.Fatal("init schema:", err)
	}

	// Redis optional; backs the rate limiter when reachable
	var limiter handler.RateLimiter
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(startCtx).Err(); err != nil {
			log.Println("redis ping failed, falling back to in-memory rate limiting:", err)
			_ = rdb.Close()
			rdb = nil
		} else {
			log.Println("redis connected")
		}
	}
	if rdb != nil {
		limiter = handler.NewRedisRateLimiter(rdb, 60, time.Minute)
	} else {
		limiter = handler.NewMemoryRateLimiter(1.0, 10)
	}

	svc := service.NewService(repo, cfg.CodeLength)
	h := handler.NewHandler(svc, limiter)

	r := h.Routes()

	allowed := handlers.AllowedOrigins([]string{cfg.CORSOrigin})
	allowedHeaders := handlers.AllowedHeaders([]string{"Content-Type"})
	allowedMethods := handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handlers.CORS(allowed, allowedHeaders, allowedMethods)(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// graceful shutdown
	go func() {
		log.Printf("server listening on %s\n", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown: %v", err)
	}

	if rdb != nil {
		_ = rdb.Close()
	}
	_ = db.Close()
	log.Println("server gracefully stopped")
}
