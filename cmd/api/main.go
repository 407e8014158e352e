package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"islamic-app-api/internal/cache"
	"islamic-app-api/internal/config"
	"islamic-app-api/internal/handler"
	"islamic-app-api/internal/repository"
	"islamic-app-api/internal/router"
	"islamic-app-api/internal/service"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Islamic App API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize surah repository based on config
	var surahRepo repository.SurahRepository
	switch cfg.SurahDB.Type {
	case "sqlite":
		sqliteRepo, err := repository.NewSQLiteSurahRepository(cfg.SurahDB.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		surahRepo = sqliteRepo
		log.Println("SQLite surah repository initialized")
	case "mysql":
		mysqlRepo, err := repository.NewMySQLSurahRepository(cfg.SurahDB.MySQLDSN())
		if err != nil {
			log.Fatalf("Failed to initialize MySQL: %v", err)
		}
		surahRepo = mysqlRepo
		log.Println("MySQL surah repository initialized")
	default: // mongodb
		mongoRepo, err := repository.NewMongoDBSurahRepository(
			cfg.SurahDB.MongoURI,
			cfg.SurahDB.MongoDatabase,
			cfg.SurahDB.MongoCollection,
		)
		if err != nil {
			log.Fatalf("Failed to initialize MongoDB: %v", err)
		}
		surahRepo = mongoRepo
		log.Println("MongoDB surah repository initialized")
	}
	defer surahRepo.Close()

	// Initialize cache. The cache is a soft dependency: when it cannot be
	// reached the API serves every request from the store alone.
	var surahCache cache.Cache
	var cachePinger handler.Pinger
	switch cfg.Cache.Type {
	case "memory":
		memCache := cache.NewMemoryCache()
		defer memCache.Close()
		surahCache = memCache
		cachePinger = memCache
		log.Println("In-memory cache initialized")
	case "disabled":
		log.Println("Cache disabled by configuration")
	default: // redis
		redisCache, err := cache.NewRedisCache(cache.RedisCacheConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Printf("Warning: Redis connection failed, running without cache: %v", err)
		} else {
			defer redisCache.Close()
			surahCache = redisCache
			cachePinger = redisCache
			log.Println("Redis cache initialized")
		}
	}

	// Initialize services
	surahService := service.NewSurahService(surahRepo, surahCache)

	// Initialize handlers
	healthHandler := handler.New(surahRepo, cachePinger)
	surahHandler := handler.NewSurahHandler(surahService)

	// Create router
	r := router.New(router.Config{
		Handler:      healthHandler,
		SurahHandler: surahHandler,
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
