package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"campus-assistant/internal/api"
	"campus-assistant/internal/api/handler"
	"campus-assistant/internal/api/middleware"
	"campus-assistant/internal/catalog"
	"campus-assistant/internal/config"
	"campus-assistant/internal/repository/postgres"
	"campus-assistant/internal/repository/redis"
	"campus-assistant/internal/retrieval"
	"campus-assistant/internal/security"
	"campus-assistant/internal/service"
)

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting campus assistant gateway")

	db, err := postgres.NewDB(context.Background(), cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Upstream clients
	catalogClient := catalog.NewHTTPClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)
	retrievalClient := retrieval.NewHTTPClient(cfg.Retrieval.BaseURL, cfg.Retrieval.Timeout)

	// Services
	catalogCache := redis.NewCatalogCache(redisClient)
	policy := security.NewRoleAccessPolicy()
	registry := service.NewHierarchyRegistry(catalogClient, catalogCache)
	resolver := service.NewScopeResolver(policy)
	audits := postgres.NewTurnAuditRepository(db)
	hubs := service.NewHubManager(resolver, retrievalClient, audits)

	// HTTP layer
	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	rateLimiter := redis.NewRateLimiter(redisClient, cfg.Security.RateLimit.RequestsPerMinute, cfg.Security.RateLimit.Burst)

	router := api.NewRouter(api.RouterDeps{
		Health:    handler.NewHealthHandler(db, redisClient),
		Catalog:   handler.NewCatalogHandler(registry, policy, catalogCache, cfg.Catalog.FallbackDepartments),
		Chat:      handler.NewChatHandler(hubs, audits),
		Auth:      middleware.NewAuthMiddleware(jwtManager),
		RateLimit: middleware.NewRateLimitMiddleware(rateLimiter),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
