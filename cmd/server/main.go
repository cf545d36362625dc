package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"giphygetter/internal/config"
	"giphygetter/internal/db"
	"giphygetter/internal/delivery"
	"giphygetter/internal/gif"
	"giphygetter/internal/giphy"
	"giphygetter/internal/handlers"
	"giphygetter/internal/jobs"
	"giphygetter/internal/logging"
	"giphygetter/internal/memstore"
	"giphygetter/internal/metrics"
	"giphygetter/internal/server"
	"giphygetter/internal/validation"
)

// store is what the resolver, metrics and probes need from persistence.
type store interface {
	gif.Store
	metrics.Store
	handlers.Pinger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup(cfg.LogLevel, cfg.IsDev())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore := openStore(ctx, cfg)
	defer closeStore()

	searcher, err := giphy.New(giphy.Config{
		BaseURL:   cfg.GiphyBaseURL,
		APIKey:    cfg.GiphyAPIKey,
		Variant:   cfg.GiphyImageSize,
		Timeout:   cfg.GiphyTimeout,
		UserAgent: "GiphyGetter/1.0",
	})
	if err != nil {
		log.Fatal().Err(err).Str("image_size", cfg.GiphyImageSize).Msg("invalid giphy configuration")
	}

	resolver := gif.NewResolver(st, searcher)

	if err := applySeed(ctx, resolver); err != nil {
		log.Fatal().Err(err).Msg("failed to apply seed config")
	}

	metrics.Init(st)

	var downloader *delivery.Downloader
	if cfg.TempDir != "" {
		downloader, err = delivery.New(delivery.Config{Dir: cfg.TempDir, MaxBytes: cfg.GifMaxBytes})
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.TempDir).Msg("failed to prepare temp dir")
		}
		go jobs.NewTempSweeper(cfg.TempDir, cfg.TempSweepInterval, cfg.TempMaxAge).Start(ctx)
	} else {
		log.Warn().Msg("TEMP_DIR not set, gif delivery is disabled")
	}

	srv := server.New(cfg)
	srv.RegisterRoutes(server.Deps{
		Resolver:   resolver,
		Store:      st,
		Downloader: downloader,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()

	log.Info().Msg("shutting down server")
	if err := srv.Shutdown(); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	metrics.Flush()
	log.Info().Msg("server exited")
}

// openStore connects to Postgres, or falls back to an in-memory store when
// no database is configured.
func openStore(ctx context.Context, cfg *config.Config) (store, func()) {
	dsn := cfg.DatabaseDSN()
	if dsn == "" {
		log.Warn().Msg("no database configured, reservations and bans will not survive a restart")
		return memstore.New(), func() {}
	}

	database, err := db.Connect(ctx, dsn, cfg.DBConnectBackoff)
	if err != nil {
		if errors.Is(err, db.ErrStoreUnavailable) {
			log.Fatal().Err(err).Msg("database unreachable")
		}
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.RunMigrations(dsn); err != nil {
		database.Close()
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("migrations completed successfully")

	return database, database.Close
}

// applySeed loads reservations and bans from the seed file, if any.
func applySeed(ctx context.Context, resolver *gif.Resolver) error {
	seed, err := config.LoadSeedConfig()
	if err != nil {
		return err
	}
	if seed.IsEmpty() {
		return nil
	}

	for _, r := range seed.Reserves {
		if err := resolver.Reserve(ctx, validation.NormalizeKeyword(r.Keyword), r.URL); err != nil {
			return err
		}
	}
	for _, url := range seed.Bans {
		if err := resolver.Ban(ctx, url); err != nil {
			return err
		}
	}

	log.Info().
		Int("reserves", len(seed.Reserves)).
		Int("bans", len(seed.Bans)).
		Msg("seed config applied")
	return nil
}
