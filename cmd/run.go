package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mangaverse/application"
	"mangaverse/config"
	"mangaverse/database"
	"mangaverse/domain/interfaces"
	"mangaverse/infrastructure"
	"mangaverse/infrastructure/chain"
	"mangaverse/infrastructure/observability"
	"mangaverse/server"

	log "github.com/sirupsen/logrus"
)

// deps holds every long-lived dependency the commands share
type deps struct {
	cfg        *config.Config
	db         *database.DB
	natsClient *infrastructure.NATSClient
	metrics    *observability.MetricsProvider
	settings   application.Settings
	uowFactory application.UnitOfWorkFactory
}

func setup(ctx context.Context) (*deps, error) {
	cfg := config.Get()

	log.Info("Initializing metrics...")
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics := observability.GetMetrics()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	rt := &deps{
		cfg:      cfg,
		db:       db,
		metrics:  metrics,
		settings: application.SettingsFromConfig(cfg),
	}

	var publisher interfaces.EventPublisher
	if cfg.NATSEnabled {
		log.Infof("Connecting to NATS at %s...", cfg.NATSServers)
		rt.natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := rt.natsClient.Connect(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		natsPublisher := infrastructure.NewNATSEventPublisher(rt.natsClient, infrastructure.NewEventSubjectMapper())
		if err := natsPublisher.EnsureDomainEventStream(rt.natsClient); err != nil {
			rt.close()
			return nil, fmt.Errorf("failed to ensure event stream: %w", err)
		}
		infrastructure.RegisterForAllEvents(natsPublisher, metrics.RecordEvent)
		publisher = natsPublisher
	} else {
		log.Info("NATS disabled, settlement events stay in process")
		noopPublisher := infrastructure.NewNoopEventPublisher()
		infrastructure.RegisterForAllEvents(noopPublisher, metrics.RecordEvent)
		publisher = noopPublisher
	}

	rt.uowFactory = infrastructure.NewUnitOfWorkFactory(db, publisher)
	return rt, nil
}

// newChainDependencies returns nil dependencies when no treasury is configured
func (rt *deps) newChainDependencies() (interfaces.TokenChain, interfaces.CustodialKeyGenerator, error) {
	if rt.cfg.TokenMint == "" || rt.cfg.TreasuryPrivateKey == "" || len(rt.cfg.WalletSealKey) == 0 {
		log.Warn("Airdrop treasury not configured, airdrop claims will be rejected")
		return nil, nil, nil
	}

	client, err := chain.NewClient(chain.Config{
		RPCURL:             rt.cfg.SolanaRPCURL,
		TokenMint:          rt.cfg.TokenMint,
		TreasuryPrivateKey: rt.cfg.TreasuryPrivateKey,
		RequestsPerSecond:  rt.cfg.ChainRPS,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create chain client: %w", err)
	}
	sealer, err := chain.NewKeySealer(rt.cfg.WalletSealKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create key sealer: %w", err)
	}
	return client, sealer, nil
}

func (rt *deps) close() {
	if rt.natsClient != nil {
		if err := rt.natsClient.Close(); err != nil {
			log.Errorf("Error closing NATS connection: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.Errorf("Error shutting down metrics: %v", err)
	}

	log.Info("Closing database connection...")
	rt.db.Close()
}

// Run initializes and starts the HTTP service
func Run(ctx context.Context) error {
	log.Info("Starting settlement service...")

	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	tokenChain, keys, err := rt.newChainDependencies()
	if err != nil {
		return err
	}

	rewardHandler := application.NewRewardHandler(rt.uowFactory, rt.settings, rt.metrics)
	handlers := server.Handlers{
		Game:    application.NewGameHandler(rt.uowFactory, rt.settings, rt.metrics),
		Reward:  rewardHandler,
		Account: application.NewAccountHandler(rt.uowFactory, rt.settings, rt.metrics),
		Airdrop: application.NewAirdropHandler(rt.uowFactory, tokenChain, keys, rt.settings, rt.metrics),
		Rating:  application.NewRatingHandler(rt.uowFactory, rt.metrics),
	}

	var stopWorker func()
	if rt.cfg.WeeklyScheduleEnabled {
		worker, err := application.NewWeeklyRewardWorker(rewardHandler)
		if err != nil {
			return err
		}
		stopWorker, err = worker.Start(ctx, rt.cfg.WeeklyScheduleCheck)
		if err != nil {
			return err
		}
	}

	srv := server.New(handlers, server.Options{
		AdminToken:   rt.cfg.AdminToken,
		Recorder:     rt.metrics,
		WriteTimeout: rt.cfg.ChainTimeout*3 + 10*time.Second,
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("HTTP server listening on %s (%s mode)", rt.cfg.HTTPAddr, rt.cfg.Environment)
		serveErr <- srv.Listen(rt.cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down settlement service...")
	case err := <-serveErr:
		if err != nil {
			log.Errorf("HTTP server stopped: %v", err)
		}
	}

	if stopWorker != nil {
		stopWorker()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Errorf("Error shutting down HTTP server: %v", err)
	}

	log.Info("Shutdown completed")
	return nil
}

// Distribute runs a single self-gated weekly distribution, for external cron
func Distribute(ctx context.Context) error {
	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	handler := application.NewRewardHandler(rt.uowFactory, rt.settings, rt.metrics)
	result, err := handler.RunWeeklyDistribution(ctx, nil)
	if err != nil {
		return fmt.Errorf("weekly distribution failed: %w", err)
	}

	log.WithFields(log.Fields{
		"distributed":      result.Distributed,
		"recipients":       result.Recipients,
		"totalDistributed": result.TotalDistributed.String(),
		"dust":             result.Dust.String(),
		"nextEligibleAt":   result.NextEligibleAt,
	}).Info(result.Message)
	return nil
}
