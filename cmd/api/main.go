package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"tattoovision/internal/db"
	"tattoovision/internal/http/handlers"
	httpapi "tattoovision/internal/http/httpapi"
	"tattoovision/internal/infra"
	"tattoovision/internal/infra/geoip"
	"tattoovision/internal/library"
	"tattoovision/internal/metrics"
	"tattoovision/internal/middleware"
	"tattoovision/internal/proposal"
	"tattoovision/internal/providers/designer"
	"tattoovision/internal/providers/genai"
	"tattoovision/internal/storage"
	"tattoovision/internal/studio"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)
	ctx := context.Background()
	m := metrics.New()

	store, closeStore, err := newLibraryStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.LibraryBackend).Msg("failed to open design library")
	}
	defer closeStore()

	sessions, closeSessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.SessionBackend).Msg("failed to open session store")
	}
	defer closeSessions()

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()
	var lookup middleware.CountryLookup
	if resolver != nil {
		lookup = resolver.CountryCode
	}

	svc := studio.New(studio.Options{
		Designers:     designer.NewLazy(func() (designer.Designer, error) { return newDesigner(cfg, &logger) }),
		Sessions:      sessions,
		Library:       library.New(store, logger, m),
		Metrics:       m,
		Logger:        logger,
		MaxImageBytes: cfg.MaxImageBytes,
		AITimeout:     cfg.AITimeout,
	})

	app := handlers.NewApp(cfg, logger, svc)
	router := httpapi.NewRouter(app, m, lookup)
	server := infra.NewHTTPServer(cfg, router, logger)

	go func() {
		logger.Info().
			Str("provider", cfg.DesignProvider).
			Str("library", cfg.LibraryBackend).
			Str("sessions", cfg.SessionBackend).
			Msg("starting API")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func newLibraryStore(ctx context.Context, cfg *infra.Config, logger infra.Logger) (library.Store, func(), error) {
	if cfg.LibraryBackend == infra.LibraryBackendPostgres {
		if err := db.Migrate(cfg.DatabaseURL, logger); err != nil {
			return nil, nil, err
		}
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return library.NewPostgresStore(infra.NewSQLRunner(pool, logger)), pool.Close, nil
	}

	files, err := storage.NewFileStore(cfg.LibraryDir)
	if err != nil {
		return nil, nil, err
	}
	return library.NewFileStore(files), func() {}, nil
}

func newSessionStore(ctx context.Context, cfg *infra.Config) (proposal.Store, func(), error) {
	if cfg.SessionBackend == infra.SessionBackendRedis {
		client, err := infra.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return proposal.NewRedisStore(client, cfg.SessionTTL), func() { _ = client.Close() }, nil
	}
	return proposal.NewMemoryStore(cfg.SessionTTL), func() {}, nil
}

// newDesigner runs on first use so a bad provider setup fails the AI routes
// only; settings, library and placement keep working.
func newDesigner(cfg *infra.Config, logger *infra.Logger) (designer.Designer, error) {
	switch cfg.DesignProvider {
	case infra.ProviderOpenAI:
		return designer.NewOpenAIDesigner(designer.OpenAIOptions{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			Model:      cfg.OpenAIModel,
			ImageModel: cfg.OpenAIImageModel,
			Logger:     logger,
		})
	case infra.ProviderStatic:
		return designer.NewStaticDesigner(), nil
	default:
		client, err := genai.NewClient(genai.Options{
			APIKey:     cfg.GeminiAPIKey,
			BaseURL:    cfg.GeminiBaseURL,
			TextModel:  cfg.GeminiModel,
			ImageModel: cfg.GeminiImageModel,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		return designer.NewGeminiDesigner(client, logger)
	}
}
