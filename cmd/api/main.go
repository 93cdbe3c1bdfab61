package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/tair/client-favorites/internal/catalog/cache"
	"github.com/tair/client-favorites/internal/catalog/gateway"
	clienthttp "github.com/tair/client-favorites/internal/client/delivery/http"
	clientrepo "github.com/tair/client-favorites/internal/client/repository"
	clientcommand "github.com/tair/client-favorites/internal/client/usecase/command"
	favhttp "github.com/tair/client-favorites/internal/favorites/delivery/http"
	favrepo "github.com/tair/client-favorites/internal/favorites/repository"
	favcommand "github.com/tair/client-favorites/internal/favorites/usecase/command"
	"github.com/tair/client-favorites/kafka"
	"github.com/tair/client-favorites/pkg/database"
	"github.com/tair/client-favorites/pkg/logger"
	"github.com/tair/client-favorites/pkg/ratelimit"
	"github.com/tair/client-favorites/pkg/tracing"
)

const serviceName = "client-favorites-api"

func main() {
	logger.Init(serviceName, os.Getenv("ENV") == "development")
	logger.SetLevel(getEnv("LOG_LEVEL", "info"))

	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx, tp); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to shut down tracer")
		}
	}()

	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "favoritesdb"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	db, err := database.NewGormConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	clientRepository := clientrepo.NewGormClientRepositoryWithTracing(db)
	if err := clientRepository.AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to migrate clients schema")
	}
	favoriteRepository := favrepo.NewGormFavoriteRepositoryWithTracing(db)
	if err := favoriteRepository.AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to migrate favorites schema")
	}

	catalogGateway := gateway.NewHTTPGateway(getEnv("CATALOG_URL", "https://fakestoreapi.com"))
	productCache := cache.NewProductCache(catalogGateway, cache.Config{
		TTL:      getEnvDuration("CACHE_TTL", time.Hour),
		Capacity: getEnvInt("CACHE_CAPACITY", cache.DefaultCapacity),
	})

	var clientEvents clientcommand.EventPublisher
	var favoriteEvents favcommand.EventPublisher
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		publisher, err := kafka.NewPublisher(strings.Split(brokers, ","))
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to connect to Kafka")
		}
		defer publisher.Close()
		clientEvents = publisher
		favoriteEvents = publisher
	}

	router := mux.NewRouter()

	clientHandler := clienthttp.NewClientHandler(clientRepository, clientEvents)
	clientHandler.RegisterRoutes(router)

	favoritesHandler := favhttp.NewFavoritesHandler(clientRepository, favoriteRepository, productCache, favoriteEvents)
	favoritesHandler.RegisterRoutes(router)

	router.Handle("/metrics", promhttp.Handler())
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := sqlDB.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: addr})
		limiter := ratelimit.NewRateLimiter(
			redisClient,
			getEnvInt("RATE_LIMIT_MAX", 100),
			getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		)
		router.Use(limiter.Middleware)
		logger.Logger.Info().Str("addr", addr).Msg("Redis rate limiting enabled")
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	port := getEnv("HTTP_PORT", "8080")
	server := &http.Server{
		Addr:    ":" + port,
		Handler: c.Handler(router),
	}

	go func() {
		logger.Logger.Info().Str("port", port).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server shutdown failed")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
