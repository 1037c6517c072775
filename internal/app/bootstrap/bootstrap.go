package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	saleengine "mintery/contexts/market-core/sale-engine"
	"mintery/contexts/market-core/sale-engine/adapters/nftclient"
	marketpostgres "mintery/contexts/market-core/sale-engine/adapters/postgres"
	marketworkers "mintery/contexts/market-core/sale-engine/application/workers"
	seriesledger "mintery/contexts/nft-core/series-ledger"
	ledgerpostgres "mintery/contexts/nft-core/series-ledger/adapters/postgres"
	ledgerworkers "mintery/contexts/nft-core/series-ledger/application/workers"
	"mintery/internal/platform/bank"
	"mintery/internal/platform/config"
	"mintery/internal/platform/db"
	"mintery/internal/platform/httpserver"
	"mintery/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	ledgerRelay  ledgerworkers.OutboxRelay
	marketRelay  marketworkers.OutboxRelay
	reaper       marketworkers.PendingReaper
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := ledgerpostgres.Migrate(pg.DB); err != nil {
		return nil, err
	}
	if err := marketpostgres.Migrate(pg.DB); err != nil {
		return nil, err
	}
	if err := bank.MigratePostgres(pg.DB); err != nil {
		return nil, err
	}

	// Balances live beside the contract tables so the api and the worker
	// settle against one ledger. The http boundary credits each attached
	// deposit before the entry point debits it.
	funds := bank.NewPostgres(pg.DB, logger)

	ledgerRepo := ledgerpostgres.NewRepository(pg.DB, logger)
	ledger := seriesledger.NewModule(seriesledger.Dependencies{
		Repository:  ledgerRepo,
		Bank:        funds,
		Outbox:      ledgerRepo,
		Clock:       ledgerpostgres.SystemClock{},
		IDGenerator: ledgerpostgres.UUIDGenerator{},
		ContractID:  cfg.NFTContractID,
		Logger:      logger,
	})

	marketRepo := marketpostgres.NewRepository(pg.DB, logger)
	market := saleengine.NewModule(saleengine.Dependencies{
		Repository:  marketRepo,
		Bank:        funds,
		Outbox:      marketRepo,
		Clock:       marketpostgres.SystemClock{},
		IDGenerator: marketpostgres.UUIDGenerator{},
		ContractID:  cfg.MarketContractID,
		Logger:      logger,
	})

	// The two contracts reference each other, so the cross-contract edges are
	// wired after construction.
	registry := nftclient.NewRegistry()
	registry.Register(cfg.NFTContractID, &nftclient.Client{
		MarketAccountID: cfg.MarketContractID,
		Ledger:          ledger.Service,
	})
	market.Service.SetRegistry(registry)
	ledger.Service.SetApprovalReceiver(nftclient.ListingBridge{Market: market.Service})

	server := httpserver.New(ledger, market, funds, logger, normalizeAddr(cfg.HTTPPort), cfg.EnableLegacyTypeRoutes)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	ledgerRepo := ledgerpostgres.NewRepository(pg.DB, logger)
	marketRepo := marketpostgres.NewRepository(pg.DB, logger)
	// Same balance table the api writes; the reaper's refunds land where the
	// buyers' deposits were captured.
	market := saleengine.NewModule(saleengine.Dependencies{
		Repository:  marketRepo,
		Bank:        bank.NewPostgres(pg.DB, logger),
		Outbox:      marketRepo,
		Clock:       marketpostgres.SystemClock{},
		IDGenerator: marketpostgres.UUIDGenerator{},
		ContractID:  cfg.MarketContractID,
		Logger:      logger,
	})

	return &WorkerApp{
		postgres: pg,
		ledgerRelay: ledgerworkers.OutboxRelay{
			Outbox:    ledgerRepo,
			Publisher: kafka,
			Clock:     ledgerpostgres.SystemClock{},
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		marketRelay: marketworkers.OutboxRelay{
			Outbox:    marketRepo,
			Publisher: kafka,
			Clock:     marketpostgres.SystemClock{},
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		reaper: marketworkers.PendingReaper{
			Service:   market.Service,
			TTL:       cfg.PendingSettlementTTL,
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		pollInterval: cfg.OutboxRelayInterval,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.ledgerRelay.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.marketRelay.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.reaper.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
