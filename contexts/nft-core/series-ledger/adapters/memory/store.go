package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domainerrors "mintery/contexts/nft-core/series-ledger/domain/errors"
	"mintery/contexts/nft-core/series-ledger/ports"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Store keeps the whole contract state behind one lock, mirroring the
// single-threaded storage a deployed contract sees.
type Store struct {
	mu sync.RWMutex

	state    *ports.ContractState
	series   map[uint64]ports.Series
	byTitle  map[string]uint64
	tokens   map[string]ports.Token
	tokenIDs []string
	outbox   map[string]outboxRecord
	outboxID []string
}

type outboxRecord struct {
	Message     ports.OutboxMessage
	Status      string
	PublishedAt *time.Time
}

func NewStore() *Store {
	return &Store{
		series:  make(map[uint64]ports.Series),
		byTitle: make(map[string]uint64),
		tokens:  make(map[string]ports.Token),
		outbox:  make(map[string]outboxRecord),
	}
}

func (s *Store) GetContractState(_ context.Context) (ports.ContractState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil {
		return ports.ContractState{}, false, nil
	}
	return *s.state, true, nil
}

func (s *Store) PutContractState(_ context.Context, state ports.ContractState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = &state
	return nil
}

func (s *Store) CreateSeries(_ context.Context, series ports.Series) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byTitle[series.Title]; exists {
		return domainerrors.ErrDuplicateSeries
	}
	s.series[series.SeriesID] = series
	s.byTitle[series.Title] = series.SeriesID
	return nil
}

func (s *Store) GetSeriesByTitle(_ context.Context, title string) (ports.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seriesID, ok := s.byTitle[title]
	if !ok {
		return ports.Series{}, domainerrors.ErrSeriesNotFound
	}
	return s.series[seriesID], nil
}

func (s *Store) GetSeriesByID(_ context.Context, seriesID uint64) (ports.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, ok := s.series[seriesID]
	if !ok {
		return ports.Series{}, domainerrors.ErrSeriesNotFound
	}
	return series, nil
}

func (s *Store) UpdateSeries(_ context.Context, series ports.Series) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.series[series.SeriesID]; !ok {
		return domainerrors.ErrSeriesNotFound
	}
	s.series[series.SeriesID] = series
	return nil
}

func (s *Store) CountSeries(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return uint64(len(s.series)), nil
}

func (s *Store) ListSeries(_ context.Context, fromIndex uint64, limit int) ([]ports.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]uint64, 0, len(s.series))
	for id := range s.series {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	items := make([]ports.Series, 0, limit)
	for _, id := range ids {
		if id <= fromIndex {
			continue
		}
		items = append(items, s.series[id])
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) CreateToken(_ context.Context, token ports.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tokens[token.TokenID]; exists {
		return domainerrors.ErrInvalidInput
	}
	s.tokens[token.TokenID] = token
	s.tokenIDs = append(s.tokenIDs, token.TokenID)
	return nil
}

func (s *Store) GetToken(_ context.Context, tokenID string) (ports.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[tokenID]
	if !ok {
		return ports.Token{}, domainerrors.ErrTokenNotFound
	}
	return token, nil
}

func (s *Store) UpdateToken(_ context.Context, token ports.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tokens[token.TokenID]; !ok {
		return domainerrors.ErrTokenNotFound
	}
	s.tokens[token.TokenID] = token
	return nil
}

func (s *Store) CountTokens(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return uint64(len(s.tokens)), nil
}

func (s *Store) CountTokensByOwner(_ context.Context, ownerID string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count uint64
	for _, token := range s.tokens {
		if token.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListTokens(_ context.Context, fromIndex uint64, limit int) ([]ports.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectTokens(fromIndex, limit, func(ports.Token) bool { return true }), nil
}

func (s *Store) ListTokensBySeries(
	_ context.Context,
	seriesID uint64,
	fromIndex uint64,
	limit int,
) ([]ports.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectTokens(fromIndex, limit, func(t ports.Token) bool { return t.SeriesID == seriesID }), nil
}

func (s *Store) ListTokensByOwner(
	_ context.Context,
	ownerID string,
	fromIndex uint64,
	limit int,
) ([]ports.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectTokens(fromIndex, limit, func(t ports.Token) bool { return t.OwnerID == ownerID }), nil
}

// collectTokens walks tokens in mint order; fromIndex skips over the first n
// matches, so pagination is stable while supply only grows.
func (s *Store) collectTokens(fromIndex uint64, limit int, match func(ports.Token) bool) []ports.Token {
	items := make([]ports.Token, 0, limit)
	var seen uint64
	for _, tokenID := range s.tokenIDs {
		token := s.tokens[tokenID]
		if !match(token) {
			continue
		}
		seen++
		if seen <= fromIndex {
			continue
		}
		items = append(items, token)
		if len(items) == limit {
			break
		}
	}
	return items
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := marshalEnvelope(envelope)
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

func marshalEnvelope(envelope ports.EventEnvelope) ([]byte, error) {
	return json.Marshal(envelope)
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
