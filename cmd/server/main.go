package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/karales/social-network-api/internal/config"
	"github.com/karales/social-network-api/internal/database"
	"github.com/karales/social-network-api/internal/handler"
	"github.com/karales/social-network-api/internal/middleware"
	"github.com/karales/social-network-api/internal/queue"
	"github.com/karales/social-network-api/internal/repository"
	"github.com/karales/social-network-api/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	cancel()

	users := repository.NewUserRepo(db)
	posts := repository.NewPostRepo(db)
	follows := repository.NewFollowRepo(db)
	likes := repository.NewLikeRepo(db)
	sessions := repository.NewSessionRepo(db)

	// Redis is optional: a nil client turns the rate limiter and the
	// response cache into pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Print("redis unavailable; rate limiting and response cache disabled")
	}
	auth := middleware.JWTAuth(cfg.JWTSecret, sessions)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.ResponseCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, sessions), auth, limiter)
	router.RegisterUsers(e, handler.NewUserHandler(users, follows), auth, cache)
	router.RegisterPosts(e, handler.NewPostHandler(posts, likes), auth, cache)

	// Background engagement consumer; reconnects on broker failures.
	go queue.StartEngagementConsumer()

	// Periodic sweep of expired session rows. Tokens die at their exp
	// claim regardless; this keeps the table from growing unbounded.
	go func() {
		interval := time.Duration(cfg.SessionSweepMin) * time.Minute
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			sctx, scancel := context.WithTimeout(context.Background(), 30*time.Second)
			if n, err := sessions.DeleteExpired(sctx); err != nil {
				log.Printf("session sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("session sweep removed %d expired rows", n)
			}
			scancel()
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
