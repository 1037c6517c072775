package saleengine

import (
	"log/slog"

	httpadapter "mintery/contexts/market-core/sale-engine/adapters/http"
	"mintery/contexts/market-core/sale-engine/adapters/memory"
	"mintery/contexts/market-core/sale-engine/application"
	"mintery/contexts/market-core/sale-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service *application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repository  ports.Repository
	Bank        ports.Bank
	Registry    ports.TokenContractRegistry
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	ContractID  string
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := &application.Service{
		Repo:       deps.Repository,
		Bank:       deps.Bank,
		Registry:   deps.Registry,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGenerator,
		ContractID: deps.ContractID,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

func NewInMemoryModule(contractID string, bank ports.Bank, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:  store,
		Bank:        bank,
		Outbox:      store,
		Clock:       store,
		IDGenerator: store,
		ContractID:  contractID,
		Logger:      logger,
	})
	module.Store = store
	return module
}
