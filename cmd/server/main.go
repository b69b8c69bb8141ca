package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/fajar1211/remix-of-digitaldev/internal/availability"
	"github.com/fajar1211/remix-of-digitaldev/internal/cache"
	"github.com/fajar1211/remix-of-digitaldev/internal/checkout"
	"github.com/fajar1211/remix-of-digitaldev/internal/config"
	"github.com/fajar1211/remix-of-digitaldev/internal/domainsearch"
	"github.com/fajar1211/remix-of-digitaldev/internal/events"
	"github.com/fajar1211/remix-of-digitaldev/internal/handlers"
	"github.com/fajar1211/remix-of-digitaldev/internal/integrations"
	"github.com/fajar1211/remix-of-digitaldev/internal/middleware"
	"github.com/fajar1211/remix-of-digitaldev/internal/migrate"
	"github.com/fajar1211/remix-of-digitaldev/internal/promo"
	"github.com/fajar1211/remix-of-digitaldev/internal/repository"
	"github.com/fajar1211/remix-of-digitaldev/internal/service"
	"github.com/fajar1211/remix-of-digitaldev/internal/store"
	"github.com/fajar1211/remix-of-digitaldev/pkg/invoiceclient"
	"github.com/fajar1211/remix-of-digitaldev/pkg/logger"
	"github.com/fajar1211/remix-of-digitaldev/pkg/whoisclient"
)

// repositories is the storage backend selected at startup
type repositories struct {
	catalog repository.CatalogRepository
	promos  repository.PromoRepository
	leads   repository.LeadRepository
	audit   repository.AuditRepository
	secrets integrations.SecretStore
	checks  []handlers.HealthCheck
	close   func()
}

func main() {
	// A missing .env file is fine; the environment may already be set
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	// Money is served as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	log.Info("starting checkout api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer repos.close()

	availabilityCache, redisCheck, closeRedis := openCache(ctx, cfg, log)
	defer closeRedis()
	if redisCheck != nil {
		repos.checks = append(repos.checks, *redisCheck)
	}

	publisher := openPublisher(cfg, log)
	defer publisher.Close()

	// Services
	whois := whoisclient.NewClient(cfg.Whois.BaseURL)
	availabilitySvc := availability.NewService(repos.secrets, cfg.Whois.APIKey, whois, availabilityCache, log)
	aggregator := domainsearch.NewAggregator(availabilitySvc, log)

	evaluator := promo.NewEvaluator(promo.NewCatalogValidator(repos.promos), log)
	registry := checkout.NewRegistry(evaluator, cfg.Checkout.PromoDebounce, log)
	registry.SetSuggesterFactory(func() *domainsearch.Suggester {
		return domainsearch.NewSuggester(aggregator, cfg.Checkout.SuggestionDebounce, log)
	})
	defer registry.Close()

	catalogSvc := service.NewCatalogService(repos.catalog)
	dispatcher := service.NewDispatcher(
		repos.leads,
		repos.audit,
		invoiceclient.NewClient(cfg.Gateway.BaseURL),
		publisher,
		cfg.RabbitMQ.LeadExchange,
		log,
	)

	// Handlers
	healthHandler := handlers.NewHealthHandler(log, repos.checks...)
	domainHandler := handlers.NewDomainHandler(availabilitySvc, aggregator, log)
	promoHandler := handlers.NewPromoHandler(evaluator, log)
	providerHandler := handlers.NewProviderHandler(service.NewProviderService(repos.secrets), log)
	checkoutHandler := handlers.NewCheckoutHandler(registry, catalogSvc, dispatcher, log)
	leadHandler := handlers.NewLeadHandler(service.NewLeadService(repos.leads), log)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Client-Info", "Apikey", "X-API-Key", "api_key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Post("/domains/check", domainHandler.Check)
		r.Get("/domains/suggestions", domainHandler.Suggestions)

		r.Post("/payment-provider", providerHandler.Readiness)

		r.Get("/promo/{code}", promoHandler.Evaluate)

		r.Route("/checkout/sessions", func(r chi.Router) {
			r.Post("/", checkoutHandler.CreateSession)
			r.Get("/{sessionId}", checkoutHandler.GetSession)
			r.Patch("/{sessionId}", checkoutHandler.UpdateSession)
			r.Post("/{sessionId}/promo", checkoutHandler.ApplyPromo)
			r.Post("/{sessionId}/pay", checkoutHandler.Pay)
			r.Put("/{sessionId}/domain-query", checkoutHandler.UpdateDomainQuery)
			r.Get("/{sessionId}/suggestions", checkoutHandler.Suggestions)
		})
	})

	r.Route("/internal", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.Auth))
		r.Get("/leads", leadHandler.List)
		r.Post("/leads/{leadId}/read", leadHandler.MarkRead)
	})

	sweeper := checkout.NewSweeper(registry, cfg.Checkout.SessionIdle, log)
	if err := sweeper.Start(cfg.Checkout.SweepSchedule); err != nil {
		log.Error("failed to start session sweeper", "error", err)
		return
	}
	defer sweeper.Stop()

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		log.Error("server failed to start", "error", err)
		return
	}

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		return
	}

	log.Info("server stopped gracefully")
}

// openRepositories connects to Postgres when DATABASE_URL is set and falls back to seeded in-memory storage otherwise
func openRepositories(ctx context.Context, cfg *config.Config, log *slog.Logger) (*repositories, error) {
	if cfg.Database.URL == "" {
		log.Warn("DATABASE_URL not set, using in-memory repositories")
		return &repositories{
			catalog: repository.NewInMemoryCatalogRepository(),
			promos:  repository.NewInMemoryPromoRepository(repository.DefaultPromos()...),
			leads:   repository.NewInMemoryLeadRepository(),
			audit:   repository.NewInMemoryAuditRepository(),
			secrets: repository.NewInMemorySecretRepository(),
			close:   func() {},
		}, nil
	}

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if cfg.Database.RunMigrations {
		if err := migrate.Apply(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("database migrations applied")
	}

	return &repositories{
		catalog: store.NewCatalogRepository(pool),
		promos:  store.NewPromoRepository(pool),
		leads:   store.NewLeadRepository(pool, log),
		audit:   store.NewAuditRepository(pool),
		secrets: store.NewSecretRepository(pool, log),
		checks:  []handlers.HealthCheck{{Name: "postgres", Check: pool.Ping}},
		close:   pool.Close,
	}, nil
}

// openCache returns a Redis-backed availability cache, or a no-op cache when Redis is not configured or unreachable
func openCache(ctx context.Context, cfg *config.Config, log *slog.Logger) (cache.AvailabilityCache, *handlers.HealthCheck, func()) {
	if cfg.Redis.URL == "" {
		log.Info("REDIS_URL not set, availability results are not cached")
		return cache.NopCache{}, nil, func() {}
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Warn("invalid REDIS_URL, availability results are not cached", "error", err)
		return cache.NopCache{}, nil, func() {}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable, availability results are not cached", "error", err)
		_ = client.Close()
		return cache.NopCache{}, nil, func() {}
	}

	check := &handlers.HealthCheck{
		Name:  "redis",
		Check: func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}
	return cache.NewRedisCache(client, cfg.Redis.AvailabilityTTL), check, func() { _ = client.Close() }
}

func openPublisher(cfg *config.Config, log *slog.Logger) events.Publisher {
	if cfg.RabbitMQ.URL == "" {
		log.Info("RABBITMQ_URL not set, lead events are only logged")
		return &events.FallbackPublisher{Logger: log}
	}

	pub, err := events.NewRabbitPublisher(cfg.RabbitMQ.URL)
	if err != nil {
		log.Warn("rabbitmq unavailable, lead events are only logged", "error", err)
		return &events.FallbackPublisher{Logger: log}
	}
	return pub
}
