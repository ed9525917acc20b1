package main

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"donation-widget/internal/api"
	"donation-widget/internal/config"
	"donation-widget/internal/database"
	"donation-widget/internal/donation"
	"donation-widget/internal/emitters"
	"donation-widget/internal/embed"
	"donation-widget/internal/events"
	"donation-widget/internal/health"
	"donation-widget/internal/interfaces"
	"donation-widget/internal/logger"
	"donation-widget/internal/models"
	"donation-widget/internal/rpc"
	"donation-widget/internal/signer"

	"github.com/rs/zerolog"
)

const (
	probeInterval   = 30 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			logger.GetLogger().Error().Interface("panic", r).Msg("Application panicked, recovering")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", true)
		logger.GetLogger().Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.LogLevel, cfg.IsDevelopment())
	log := logger.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		projects  interfaces.ProjectStore
		recorder  interfaces.TransferRecorder
		transfers api.TransferLister
	)
	if cfg.Database.Enabled {
		if err := database.InitDB(ctx, cfg.Database); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer database.Close()

		if err := database.RunMigrations(cfg.Database); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
		store := database.Store{}
		projects, recorder, transfers = store, store, store
	} else {
		log.Warn().Msg("Database disabled, projects and transfers are kept in memory")
		store := database.NewMemoryStore()
		projects, recorder, transfers = store, store, store
	}

	emitter := &events.LogEmitter{}
	if cfg.Kafka.Enabled {
		kafkaEmitter := emitters.NewKafkaEmitter(cfg.Kafka.BrokerAddress, cfg.Kafka.Topic, cfg.Kafka.BatchSize, cfg.Kafka.BatchTimeout)
		defer func() {
			if err := kafkaEmitter.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close Kafka emitter")
			}
		}()
		emitter.WrappedEmitter = kafkaEmitter
	}

	checker := health.NewChecker(probeInterval)
	router, closeSigners := buildSigners(ctx, cfg, checker, log)
	defer closeSigners()

	seedProject(ctx, cfg.ProjectFile, projects)

	service := donation.NewService(router, emitter, recorder, log)
	app := &api.App{
		Projects:  projects,
		Transfers: transfers,
		Donations: service,
		Embed:     embed.NewGenerator(cfg.Embed.BaseURL, cfg.Embed.PackageName),
		Health:    checker,
		Logger:    log,
	}

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
		// Donations wait on the signer for every recipient
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server failed")
			stop()
		}
	}()
	checker.SetReady(true)

	<-ctx.Done()
	checker.SetReady(false)
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	checker.Wait()
}

// buildSigners creates one signer and one health probe per configured chain
func buildSigners(ctx context.Context, cfg *config.Config, checker *health.Checker, log *zerolog.Logger) (*signer.Router, func()) {
	router := signer.NewRouter()
	var closers []func()

	var key *ecdsa.PrivateKey
	if cfg.Signer.Mode == config.SignerKey {
		var err error
		if key, err = signer.ParseKey(cfg.Signer.PrivateKey); err != nil {
			log.Fatal().Err(err).Msg("Failed to parse signer key")
		}
	}

	for _, chain := range models.SupportedChains {
		chainCfg, ok := cfg.Chains[chain.ID]
		if !ok || chainCfg.RpcEndpoint == "" {
			continue
		}

		client := rpc.NewClient(chain.ID, chainCfg.RpcEndpoint, chainCfg.ApiKey, chainCfg.RateLimit,
			cfg.MaxRetries, cfg.RetryDelay, cfg.HTTP.Timeout, log)
		closers = append(closers, client.Close)

		if remote, err := client.RemoteChainID(ctx); err != nil {
			log.Warn().Err(err).Str("chain", chain.Name).Msg("Could not confirm chain id")
		} else if remote != chain.ID {
			log.Error().
				Str("chain", chain.Name).
				Int64("remote", int64(remote)).
				Msg("RPC endpoint serves a different chain, skipping")
			continue
		}
		checker.RegisterProbe(ctx, client)

		if key == nil {
			router.Register(chain.ID, rpc.NewWalletSigner(client))
			continue
		}

		s, ethClient, err := signer.DialKeySigner(ctx, chain.ID, chainCfg.RpcEndpoint, key, log)
		if err != nil {
			log.Error().Err(err).Str("chain", chain.Name).Msg("Failed to create key signer")
			continue
		}
		closers = append(closers, ethClient.Close)
		router.Register(chain.ID, s)
		log.Info().Str("chain", chain.Name).Str("address", s.Address().Hex()).Msg("Key signer ready")
	}

	return router, func() {
		for _, c := range closers {
			c()
		}
	}
}
