package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gaze-network/uint128"

	domainerrors "mintery/contexts/market-core/sale-engine/domain/errors"
	"mintery/contexts/market-core/sale-engine/ports"
	"mintery/internal/shared/nearamount"
)

// NearCurrency is the native token id, supported by every market.
const NearCurrency = "near"

// maxSettlementBeneficiaries bounds the payout fan-out of one purchase.
const maxSettlementBeneficiaries = 10

// StoragePerSale is the storage stake one listing locks. Listing N sales
// requires N times this amount on deposit.
var StoragePerSale = nearamount.MustParse("0.01")

// Service owns the marketplace contract state: the sale book, storage
// deposits and the settlement engine. Entry points run to completion under
// one lock; the cross-contract settlement leg is the only concurrency.
type Service struct {
	mu sync.Mutex

	Repo       ports.Repository
	Bank       ports.Bank
	Registry   ports.TokenContractRegistry
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	ContractID string
	Logger     *slog.Logger
}

// SetRegistry wires the NFT contract client registry after both contracts are
// constructed. Composition-time only.
func (s *Service) SetRegistry(registry ports.TokenContractRegistry) {
	s.Registry = registry
}

// Initialize is the one-time constructor. NEAR is supported by default;
// ftTokenIDs adds further settlement currencies.
func (s *Service) Initialize(ctx context.Context, ownerID string, ftTokenIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return domainerrors.ErrInvalidInput
	}
	if _, exists, err := s.Repo.GetMarketState(ctx); err != nil {
		return err
	} else if exists {
		return domainerrors.ErrAlreadyInitialized
	}
	if err := s.Repo.PutMarketState(ctx, ports.MarketState{
		OwnerID:       ownerID,
		InitializedAt: s.now(),
	}); err != nil {
		return err
	}
	if _, err := s.Repo.AddCurrency(ctx, NearCurrency); err != nil {
		return err
	}
	for _, ftTokenID := range ftTokenIDs {
		if strings.TrimSpace(ftTokenID) == "" {
			continue
		}
		if _, err := s.Repo.AddCurrency(ctx, ftTokenID); err != nil {
			return err
		}
	}
	resolveLogger(s.Logger).Info("market contract initialized",
		"event", "market_initialized",
		"module", "market-core/sale-engine",
		"layer", "application",
		"owner_id", ownerID,
	)
	return nil
}

// AddSupportedCurrencies registers settlement currencies, owner only. Returns
// one bool per id: true when the id was newly added.
func (s *Service) AddSupportedCurrencies(
	ctx context.Context,
	caller ports.Caller,
	ftTokenIDs []string,
) ([]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.requireState(ctx)
	if err != nil {
		return nil, err
	}
	if caller.AccountID != state.OwnerID {
		return nil, domainerrors.ErrUnauthorized
	}

	added := make([]bool, 0, len(ftTokenIDs))
	for _, ftTokenID := range ftTokenIDs {
		ftTokenID = strings.TrimSpace(ftTokenID)
		if ftTokenID == "" {
			return nil, domainerrors.ErrInvalidInput
		}
		isNew, err := s.Repo.AddCurrency(ctx, ftTokenID)
		if err != nil {
			return nil, err
		}
		added = append(added, isNew)
	}
	return added, nil
}

func (s *Service) SupportedCurrencies(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Repo.ListCurrencies(ctx)
}

// StorageDeposit stakes the attached deposit toward sale-listing storage,
// optionally on behalf of another account. The deposit must cover at least
// one sale.
func (s *Service) StorageDeposit(ctx context.Context, caller ports.Caller, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireState(ctx); err != nil {
		return err
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		accountID = caller.AccountID
	}
	if caller.Deposit.Cmp(StoragePerSale) < 0 {
		return domainerrors.ErrInsufficientDeposit
	}
	if err := s.Bank.Transfer(ctx, caller.AccountID, s.ContractID, caller.Deposit); err != nil {
		return err
	}

	balance, err := s.Repo.GetStorageDeposit(ctx, accountID)
	if err != nil {
		return err
	}
	return s.Repo.PutStorageDeposit(ctx, accountID, balance.Add(caller.Deposit))
}

// StorageWithdraw returns the caller's free storage stake: everything above
// what their live sales keep locked.
func (s *Service) StorageWithdraw(ctx context.Context, caller ports.Caller) (uint128.Uint128, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireState(ctx); err != nil {
		return uint128.Zero, err
	}
	if !atLeastOneYocto(caller.Deposit) {
		return uint128.Zero, domainerrors.ErrInsufficientDeposit
	}

	balance, err := s.Repo.GetStorageDeposit(ctx, caller.AccountID)
	if err != nil {
		return uint128.Zero, err
	}
	saleCount, err := s.Repo.CountSalesByOwner(ctx, caller.AccountID)
	if err != nil {
		return uint128.Zero, err
	}
	locked, overflow := StoragePerSale.MulOverflow(uint128.From64(saleCount))
	if overflow || balance.Cmp(locked) <= 0 {
		return uint128.Zero, nil
	}

	free := balance.Sub(locked)
	if err := s.Bank.Transfer(ctx, s.ContractID, caller.AccountID, free); err != nil {
		return uint128.Zero, err
	}
	if err := s.Repo.PutStorageDeposit(ctx, caller.AccountID, locked); err != nil {
		return uint128.Zero, err
	}
	return free, nil
}

func (s *Service) StoragePaid(ctx context.Context, accountID string) (uint128.Uint128, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Repo.GetStorageDeposit(ctx, strings.TrimSpace(accountID))
}

// StorageMinimum is the stake one sale listing requires.
func (s *Service) StorageMinimum() uint128.Uint128 {
	return StoragePerSale
}

func (s *Service) requireState(ctx context.Context) (ports.MarketState, error) {
	state, exists, err := s.Repo.GetMarketState(ctx)
	if err != nil {
		return ports.MarketState{}, err
	}
	if !exists {
		return ports.MarketState{}, domainerrors.ErrNotInitialized
	}
	return state, nil
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s *Service) newID(ctx context.Context) string {
	if s.IDGen == nil {
		return ""
	}
	id, err := s.IDGen.NewID(ctx)
	if err != nil {
		return ""
	}
	return id
}

// appendSaleEvent writes a market event to the outbox. Event failures never
// abort the state change they describe.
func (s *Service) appendSaleEvent(ctx context.Context, eventType string, saleKey string, data any) {
	if s.Outbox == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	eventID := s.newID(ctx)
	if err := s.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       s.now(),
		SourceService:    "sale-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "sale_key",
		PartitionKey:     saleKey,
		Data:             payload,
	}); err != nil {
		resolveLogger(s.Logger).Warn("sale event append failed",
			"event", "market_event_append_failed",
			"module", "market-core/sale-engine",
			"layer", "application",
			"event_type", eventType,
			"sale_key", saleKey,
			"error", err.Error(),
		)
	}
}

func atLeastOneYocto(deposit uint128.Uint128) bool {
	return deposit.Cmp(nearamount.OneYocto) >= 0
}

func cloneConditions(conditions map[string]uint128.Uint128) map[string]uint128.Uint128 {
	out := make(map[string]uint128.Uint128, len(conditions))
	for currency, price := range conditions {
		out[currency] = price
	}
	return out
}

func cloneRoyalty(royalty map[string]uint32) map[string]uint32 {
	out := make(map[string]uint32, len(royalty))
	for accountID, bps := range royalty {
		out[accountID] = bps
	}
	return out
}
