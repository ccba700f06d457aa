package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/smartwaste/collection-booking/internal/availability"
	"github.com/smartwaste/collection-booking/internal/config"
	"github.com/smartwaste/collection-booking/internal/database"
	"github.com/smartwaste/collection-booking/internal/handler"
	"github.com/smartwaste/collection-booking/internal/middleware"
	"github.com/smartwaste/collection-booking/internal/queue"
	"github.com/smartwaste/collection-booking/internal/rating"
	"github.com/smartwaste/collection-booking/internal/repository"
	"github.com/smartwaste/collection-booking/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	points := repository.NewCollectionPointRepo(db)
	visits := repository.NewVisitRepo(db)
	reviews := repository.NewReviewRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	checker := availability.NewChecker(repository.NewAvailabilityStore(points, visits))
	recomputer := rating.NewRecomputer(repository.NewRatingStore(points, reviews))

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(points, reviews, checker), cacheMW)
	router.RegisterClient(e,
		handler.NewBookingHandler(points, visits, checker),
		handler.NewReviewHandler(points, reviews, recomputer),
		handler.NewProfileHandler(cfg, users),
		cfg.JWTSecret)
	router.RegisterOperator(e, handler.NewOperatorHandler(points), cfg.JWTSecret)

	// The consumer reconnects forever; a broker outage only pauses the
	// booking log.
	go func() {
		if err := queue.StartVisitConsumer(); err != nil {
			log.Printf("visit consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
