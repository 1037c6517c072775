package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gaze-network/uint128"

	domainerrors "mintery/contexts/nft-core/series-ledger/domain/errors"
	"mintery/contexts/nft-core/series-ledger/ports"
	"mintery/internal/shared/nearamount"
)

// Token id and display-title delimiters. Callers read them through
// SeriesFormat instead of hard-coding the scheme.
const (
	TokenDelimiter   = ":"
	TitleDelimiter   = " — "
	EditionDelimiter = "/"
)

const royaltyDenominator = 10_000

// Flat marginal storage costs per persisted record, charged against the
// attached deposit. Excess above the cost never leaves the caller.
var (
	storageCostSeries   = nearamount.MustParse("0.01")
	storageCostToken    = nearamount.MustParse("0.01")
	storageCostApproval = nearamount.MustParse("0.001")
)

// Service owns the NFT contract state: series registry, minting engine,
// ownership ledger and approval manager. Entry points run to completion under
// one lock, matching the host runtime's no-preemption execution model.
type Service struct {
	mu sync.Mutex

	Repo       ports.Repository
	Bank       ports.Bank
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Receiver   ports.ApprovalReceiver
	ContractID string
	Logger     *slog.Logger
}

// SetApprovalReceiver wires the marketplace callback after both contracts are
// constructed. Composition-time only, not safe once traffic flows.
func (s *Service) SetApprovalReceiver(receiver ports.ApprovalReceiver) {
	s.Receiver = receiver
}

// Initialize is the one-time constructor. Re-invocation fails with
// ErrAlreadyInitialized and leaves state unchanged.
func (s *Service) Initialize(ctx context.Context, ownerID string, metadata ports.ContractMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return domainerrors.ErrInvalidInput
	}
	if _, exists, err := s.Repo.GetContractState(ctx); err != nil {
		return err
	} else if exists {
		return domainerrors.ErrAlreadyInitialized
	}
	state := ports.ContractState{
		OwnerID:       ownerID,
		Metadata:      metadata,
		InitializedAt: s.now(),
	}
	if err := s.Repo.PutContractState(ctx, state); err != nil {
		return err
	}
	resolveLogger(s.Logger).Info("nft contract initialized",
		"event", "nft_contract_initialized",
		"module", "nft-core/series-ledger",
		"layer", "application",
		"owner_id", ownerID,
		"name", metadata.Name,
	)
	return nil
}

// InitializeDefault mirrors new_default_meta.
func (s *Service) InitializeDefault(ctx context.Context, ownerID string) error {
	return s.Initialize(ctx, ownerID, ports.ContractMetadata{
		Spec:   "nft-1.0.0",
		Name:   "NFT Series",
		Symbol: "NFT",
	})
}

func (s *Service) CreateSeries(
	ctx context.Context,
	caller ports.Caller,
	input ports.CreateSeriesInput,
) (ports.Series, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireState(ctx); err != nil {
		return ports.Series{}, err
	}

	title := strings.TrimSpace(input.Metadata.Title)
	if title == "" {
		return ports.Series{}, domainerrors.ErrTitleRequired
	}
	if err := validateRoyalty(input.Royalty); err != nil {
		return ports.Series{}, err
	}
	if caller.Deposit.Cmp(storageCostSeries) < 0 {
		return ports.Series{}, domainerrors.ErrInsufficientDeposit
	}
	if _, err := s.Repo.GetSeriesByTitle(ctx, title); err == nil {
		return ports.Series{}, domainerrors.ErrDuplicateSeries
	}

	count, err := s.Repo.CountSeries(ctx)
	if err != nil {
		return ports.Series{}, err
	}

	if err := s.Bank.Transfer(ctx, caller.AccountID, s.ContractID, storageCostSeries); err != nil {
		return ports.Series{}, err
	}

	metadata := input.Metadata
	metadata.Title = title
	series := ports.Series{
		SeriesID:    count + 1,
		Title:       title,
		OwnerID:     caller.AccountID,
		Metadata:    metadata,
		Royalty:     cloneRoyalty(input.Royalty),
		MintedCount: 0,
		CreatedAt:   s.now(),
	}
	if err := s.Repo.CreateSeries(ctx, series); err != nil {
		return ports.Series{}, err
	}

	resolveLogger(s.Logger).Info("series created",
		"event", "nft_series_created",
		"module", "nft-core/series-ledger",
		"layer", "application",
		"series_id", series.SeriesID,
		"title", series.Title,
		"owner_id", series.OwnerID,
	)
	return series, nil
}

// CapCopies locks the series supply at its current minted count. Idempotent:
// capping an already-capped series is a no-op.
func (s *Service) CapCopies(ctx context.Context, caller ports.Caller, seriesTitle string) (ports.Series, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireState(ctx); err != nil {
		return ports.Series{}, err
	}
	series, err := s.Repo.GetSeriesByTitle(ctx, strings.TrimSpace(seriesTitle))
	if err != nil {
		return ports.Series{}, domainerrors.ErrSeriesNotFound
	}
	if caller.AccountID != series.OwnerID {
		return ports.Series{}, domainerrors.ErrUnauthorized
	}

	capped := series.MintedCount
	series.Metadata.Copies = &capped
	if err := s.Repo.UpdateSeries(ctx, series); err != nil {
		return ports.Series{}, err
	}

	resolveLogger(s.Logger).Info("series copies capped",
		"event", "nft_series_capped",
		"module", "nft-core/series-ledger",
		"layer", "application",
		"title", series.Title,
		"copies", capped,
	)
	return series, nil
}

func (s *Service) requireState(ctx context.Context) (ports.ContractState, error) {
	state, exists, err := s.Repo.GetContractState(ctx)
	if err != nil {
		return ports.ContractState{}, err
	}
	if !exists {
		return ports.ContractState{}, domainerrors.ErrNotInitialized
	}
	return state, nil
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s *Service) newEventID(ctx context.Context) string {
	if s.IDGen == nil {
		return ""
	}
	id, err := s.IDGen.NewID(ctx)
	if err != nil {
		return ""
	}
	return id
}

// appendTokenEvent writes a NEP-171 style event to the outbox. Event failures
// never abort the state change they describe.
func (s *Service) appendTokenEvent(ctx context.Context, eventType string, tokenID string, data any) {
	if s.Outbox == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"standard": "nep171",
		"version":  "1.0.0",
		"event":    eventType,
		"data":     []any{data},
	})
	if err != nil {
		return
	}
	eventID := s.newEventID(ctx)
	if err := s.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       s.now(),
		SourceService:    "series-ledger",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "token_id",
		PartitionKey:     tokenID,
		Data:             payload,
	}); err != nil {
		resolveLogger(s.Logger).Warn("token event append failed",
			"event", "nft_event_append_failed",
			"module", "nft-core/series-ledger",
			"layer", "application",
			"event_type", eventType,
			"token_id", tokenID,
			"error", err.Error(),
		)
	}
}

func validateRoyalty(royalty map[string]uint32) error {
	var total uint64
	for accountID, bps := range royalty {
		if strings.TrimSpace(accountID) == "" {
			return domainerrors.ErrInvalidInput
		}
		total += uint64(bps)
	}
	if total > royaltyDenominator {
		return domainerrors.ErrInvalidRoyalty
	}
	return nil
}

func cloneRoyalty(royalty map[string]uint32) map[string]uint32 {
	out := make(map[string]uint32, len(royalty))
	for accountID, bps := range royalty {
		out[accountID] = bps
	}
	return out
}

func cloneApprovals(approvals map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(approvals))
	for accountID, approvalID := range approvals {
		out[accountID] = approvalID
	}
	return out
}

func atLeastOneYocto(deposit uint128.Uint128) bool {
	return deposit.Cmp(nearamount.OneYocto) >= 0
}
