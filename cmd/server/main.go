// Package main is the entry point for the cryptofolio portfolio tracker.
// It serves a Kraken-backed portfolio with profit/loss attribution,
// composition analytics over CoinGecko token data, and order placement.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/cryptofolio/internal/clientdata"
	"github.com/aristath/cryptofolio/internal/clients/coingecko"
	"github.com/aristath/cryptofolio/internal/clients/kraken"
	"github.com/aristath/cryptofolio/internal/clients/textembed"
	"github.com/aristath/cryptofolio/internal/config"
	"github.com/aristath/cryptofolio/internal/database"
	"github.com/aristath/cryptofolio/internal/domain"
	"github.com/aristath/cryptofolio/internal/modules/ledger"
	"github.com/aristath/cryptofolio/internal/modules/portfolio"
	"github.com/aristath/cryptofolio/internal/modules/trading"
	"github.com/aristath/cryptofolio/internal/scheduler"
	"github.com/aristath/cryptofolio/internal/server"
	"github.com/aristath/cryptofolio/internal/services"
	"github.com/aristath/cryptofolio/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting cryptofolio")

	if !cfg.HasExchangeCredentials() {
		log.Warn().Msg("No exchange credentials configured, private endpoints will fail")
	}

	// Cache database for client responses
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "client_data.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	cacheRepo := clientdata.NewRepository(cacheDB.Conn())
	if err := cacheRepo.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache schema")
	}

	healthCtx, healthCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := cacheDB.HealthCheck(healthCtx); err != nil {
		log.Warn().Err(err).Msg("Cache database integrity check failed")
	}
	healthCancel()

	// Clients
	krakenClient := kraken.NewClient(cfg.KrakenAPIKey, cfg.KrakenAPISecret, log)
	coingeckoClient := coingecko.NewClient(log)

	var embedder domain.TextEmbedder
	if cfg.GeminiAPIKey != "" {
		emb, err := textembed.New(context.Background(), log)
		if err != nil {
			log.Warn().Err(err).Msg("Embedding client unavailable, similarity uses structural features only")
		} else {
			embedder = emb
		}
	}

	// Services and modules
	priceService := services.NewPriceService(krakenClient, cacheRepo, log)
	tokenService := services.NewTokenService(coingeckoClient, cacheRepo, embedder, log)
	ledgerService := ledger.NewService(krakenClient, log)
	pairResolver := portfolio.StaticPairResolver{}
	builder := portfolio.NewBuilder(krakenClient, ledgerService, pairResolver, priceService, log)
	tradingService := trading.NewService(krakenClient, log)

	// Live ticker feed keeps the price cache warm between REST
	// refreshes. The feed speaks websocket channel names while the
	// cache is keyed by REST pair identifiers, so updates translate
	// before they land.
	trackedPairs := portfolio.TrackedPairs()
	tickerFeed := kraken.NewTickerFeed(portfolio.TrackedWSNames(), func(wsName string, close float64) {
		if pair, ok := portfolio.PairForWSName(wsName); ok {
			priceService.HandlePriceUpdate(pair, close)
		}
	}, log)
	tickerFeed.Start()
	defer tickerFeed.Stop()

	// Background jobs
	sched := scheduler.New(log)
	refreshJob := scheduler.NewPriceRefreshJob(priceService, trackedPairs, log)
	if err := sched.AddJob(cfg.PriceCacheCron, refreshJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register price refresh job")
	}
	if err := sched.AddJob("@daily", clientdata.NewCleanupJob(cacheRepo, cacheDB, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache cleanup job")
	}
	sched.Start()
	defer sched.Stop()

	// Prime the price cache so the first portfolio build does not pay
	// a cold-start ticker fetch per pair.
	if err := sched.RunNow(refreshJob); err != nil {
		log.Warn().Err(err).Msg("Initial price refresh failed")
	}

	// HTTP server
	handlers := server.NewHandlers(builder, ledgerService, tradingService, tokenService, krakenClient, log)
	srv := server.New(server.Config{
		Log:      log,
		Port:     cfg.Port,
		DevMode:  cfg.DevMode,
		Handlers: handlers,
		System:   server.NewSystemHandlers(cacheDB, log),
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
