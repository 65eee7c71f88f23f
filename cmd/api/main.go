package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"balloon-stock-api/internal/cache"
	"balloon-stock-api/internal/config"
	"balloon-stock-api/internal/handler"
	"balloon-stock-api/internal/repository"
	"balloon-stock-api/internal/router"
	"balloon-stock-api/internal/service"
	"balloon-stock-api/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting balloon stock API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize store repository based on config
	var repo repository.StoreRepository
	switch cfg.StoreDB.Type {
	case "mysql":
		mysqlRepo, err := repository.NewMySQLStoreRepository(cfg.StoreDB.MySQLDSN())
		if err != nil {
			log.Fatalf("Failed to initialize MySQL: %v", err)
		}
		repo = mysqlRepo
		log.Println("MySQL store repository initialized")
	default: // sqlite
		sqliteRepo, err := repository.NewSQLiteStoreRepository(cfg.StoreDB.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		repo = sqliteRepo
		log.Println("SQLite store repository initialized")
	}

	// The observable entity store owns the repository for the process lifetime.
	st := store.New(repo)
	defer st.Close()

	// Initialize snapshot cache
	var snapshotCache cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Printf("Warning: Redis cache unavailable, falling back to memory: %v", err)
			snapshotCache = cache.NewMemoryCache()
		} else {
			defer redisCache.Close()
			snapshotCache = redisCache
			log.Println("Redis snapshot cache initialized")
		}
	default:
		snapshotCache = cache.NewMemoryCache()
		log.Println("Memory snapshot cache initialized")
	}

	// Initialize services
	inventoryService := service.NewInventoryService(st, snapshotCache, cfg.Cache.TTL)
	balloonService := service.NewBalloonService(st)
	eventService := service.NewEventService(st)
	historyService := service.NewHistoryService(st)

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if err := inventoryService.StartCacheInvalidation(watchCtx); err != nil {
		log.Fatalf("Failed to start cache invalidation: %v", err)
	}

	// Initialize handlers
	healthHandler := handler.New(cfg.App.Version)
	balloonHandler := handler.NewBalloonHandler(balloonService, inventoryService)
	eventHandler := handler.NewEventHandler(eventService, historyService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)

	// Create router
	r := router.New(router.Config{
		Handler:          healthHandler,
		BalloonHandler:   balloonHandler,
		EventHandler:     eventHandler,
		InventoryHandler: inventoryHandler,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
