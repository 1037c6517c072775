package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gaze-network/uint128"
	"github.com/google/uuid"

	domainerrors "mintery/contexts/market-core/sale-engine/domain/errors"
	"mintery/contexts/market-core/sale-engine/ports"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Store keeps the whole market state behind one lock.
type Store struct {
	mu sync.RWMutex

	state      *ports.MarketState
	currencies []string
	sales      map[string]ports.Sale
	saleKeys   []string
	deposits   map[string]uint128.Uint128
	pendings   map[string]ports.PendingSettlement
	pendingIDs []string
	outbox     map[string]outboxRecord
	outboxID   []string
}

type outboxRecord struct {
	Message     ports.OutboxMessage
	Status      string
	PublishedAt *time.Time
}

func NewStore() *Store {
	return &Store{
		sales:    make(map[string]ports.Sale),
		deposits: make(map[string]uint128.Uint128),
		pendings: make(map[string]ports.PendingSettlement),
		outbox:   make(map[string]outboxRecord),
	}
}

func (s *Store) GetMarketState(_ context.Context) (ports.MarketState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil {
		return ports.MarketState{}, false, nil
	}
	return *s.state, true, nil
}

func (s *Store) PutMarketState(_ context.Context, state ports.MarketState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = &state
	return nil
}

func (s *Store) AddCurrency(_ context.Context, ftTokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.currencies {
		if existing == ftTokenID {
			return false, nil
		}
	}
	s.currencies = append(s.currencies, ftTokenID)
	return true, nil
}

func (s *Store) HasCurrency(_ context.Context, ftTokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, existing := range s.currencies {
		if existing == ftTokenID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListCurrencies(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.currencies))
	copy(out, s.currencies)
	return out, nil
}

func (s *Store) PutSale(_ context.Context, sale ports.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sale.Key()
	if _, exists := s.sales[key]; !exists {
		s.saleKeys = append(s.saleKeys, key)
	}
	s.sales[key] = sale
	return nil
}

func (s *Store) GetSale(_ context.Context, nftContractID string, tokenID string) (ports.Sale, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.sales[ports.SaleKey(nftContractID, tokenID)]
	return sale, ok, nil
}

func (s *Store) RemoveSale(_ context.Context, nftContractID string, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ports.SaleKey(nftContractID, tokenID)
	if _, ok := s.sales[key]; !ok {
		return nil
	}
	delete(s.sales, key)
	for i, existing := range s.saleKeys {
		if existing == key {
			s.saleKeys = append(s.saleKeys[:i], s.saleKeys[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) CountSales(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return uint64(len(s.sales)), nil
}

func (s *Store) CountSalesByOwner(_ context.Context, ownerID string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count uint64
	for _, sale := range s.sales {
		if sale.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountSalesByNFTContract(_ context.Context, nftContractID string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count uint64
	for _, sale := range s.sales {
		if sale.NFTContractID == nftContractID {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListSalesByOwner(
	_ context.Context,
	ownerID string,
	fromIndex uint64,
	limit int,
) ([]ports.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectSales(fromIndex, limit, func(sale ports.Sale) bool { return sale.OwnerID == ownerID }), nil
}

func (s *Store) ListSalesByNFTContract(
	_ context.Context,
	nftContractID string,
	fromIndex uint64,
	limit int,
) ([]ports.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectSales(fromIndex, limit, func(sale ports.Sale) bool {
		return sale.NFTContractID == nftContractID
	}), nil
}

// collectSales walks sales in listing order; fromIndex skips the first n
// matches.
func (s *Store) collectSales(fromIndex uint64, limit int, match func(ports.Sale) bool) []ports.Sale {
	items := make([]ports.Sale, 0, limit)
	var seen uint64
	for _, key := range s.saleKeys {
		sale := s.sales[key]
		if !match(sale) {
			continue
		}
		seen++
		if seen <= fromIndex {
			continue
		}
		items = append(items, sale)
		if len(items) == limit {
			break
		}
	}
	return items
}

func (s *Store) GetStorageDeposit(_ context.Context, accountID string) (uint128.Uint128, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.deposits[accountID], nil
}

func (s *Store) PutStorageDeposit(_ context.Context, accountID string, amount uint128.Uint128) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount.IsZero() {
		delete(s.deposits, accountID)
		return nil
	}
	s.deposits[accountID] = amount
	return nil
}

func (s *Store) CreatePending(_ context.Context, pending ports.PendingSettlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pendings[pending.PendingID]; exists {
		return domainerrors.ErrInvalidInput
	}
	s.pendings[pending.PendingID] = pending
	s.pendingIDs = append(s.pendingIDs, pending.PendingID)
	return nil
}

func (s *Store) DeletePending(_ context.Context, pendingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pendings[pendingID]; !ok {
		return nil
	}
	delete(s.pendings, pendingID)
	for i, existing := range s.pendingIDs {
		if existing == pendingID {
			s.pendingIDs = append(s.pendingIDs[:i], s.pendingIDs[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) ListPendingBefore(
	_ context.Context,
	cutoff time.Time,
	limit int,
) ([]ports.PendingSettlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.PendingSettlement, 0, limit)
	for _, pendingID := range s.pendingIDs {
		pending := s.pendings[pendingID]
		if !pending.CreatedAt.Before(cutoff) {
			continue
		}
		items = append(items, pending)
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := envelope.EventID
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	s.outbox[outboxID] = outboxRecord{
		Message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    envelope.EventType,
			PartitionKey: envelope.PartitionKey,
			Payload:      payload,
			CreatedAt:    envelope.OccurredAt,
		},
		Status: outboxStatusPending,
	}
	s.outboxID = append(s.outboxID, outboxID)
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, limit)
	for _, outboxID := range s.outboxID {
		record := s.outbox[outboxID]
		if record.Status != outboxStatusPending {
			continue
		}
		items = append(items, record.Message)
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.outbox[outboxID]
	if !ok {
		return domainerrors.ErrInvalidInput
	}
	record.Status = outboxStatusPublished
	record.PublishedAt = &publishedAt
	s.outbox[outboxID] = record
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
