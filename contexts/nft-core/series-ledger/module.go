package seriesledger

import (
	"log/slog"

	httpadapter "mintery/contexts/nft-core/series-ledger/adapters/http"
	"mintery/contexts/nft-core/series-ledger/adapters/memory"
	"mintery/contexts/nft-core/series-ledger/application"
	"mintery/contexts/nft-core/series-ledger/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service *application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repository  ports.Repository
	Bank        ports.Bank
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Receiver    ports.ApprovalReceiver
	ContractID  string
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := &application.Service{
		Repo:       deps.Repository,
		Bank:       deps.Bank,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGenerator,
		Receiver:   deps.Receiver,
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
