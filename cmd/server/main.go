package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/davilat/bus-inventory/internal/cache"
	"github.com/davilat/bus-inventory/internal/config"
	"github.com/davilat/bus-inventory/internal/database"
	"github.com/davilat/bus-inventory/internal/handler"
	"github.com/davilat/bus-inventory/internal/middleware"
	"github.com/davilat/bus-inventory/internal/queue"
	"github.com/davilat/bus-inventory/internal/repository"
	"github.com/davilat/bus-inventory/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close()

	store := repository.NewStore(db)

	// Redis is optional: a nil client disables rate limiting and the
	// layout cache without touching the handlers.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and layout cache disabled")
	}
	layouts := cache.NewLayoutCache(config.LoadLayoutCacheConfig(), rdb)
	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	auth := handler.NewAuthHandler(cfg, store)
	templates := handler.NewTemplateHandler(store, layouts)
	diagrams := handler.NewDiagramHandler(store, layouts)
	zones := handler.NewZoneHandler(store, layouts)
	buses := handler.NewBusHandler(store)

	go func() {
		if err := queue.StartLayoutConsumer(layouts); err != nil {
			log.Printf("layout consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, auth)
	router.RegisterOperator(e, cfg.JWTSecret, auth, templates, diagrams, zones, buses, rateLimit)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
