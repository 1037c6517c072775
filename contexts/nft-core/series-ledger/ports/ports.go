package ports

import (
	"context"
	"time"

	"github.com/gaze-network/uint128"

	contractsv1 "mintery/contracts/gen/events/v1"
)

// Caller carries the transaction context of a contract entry point: the
// immediate caller (predecessor), the original transaction signer, and the
// deposit attached to the call.
type Caller struct {
	AccountID string
	SignerID  string
	Deposit   uint128.Uint128
}

// Signer falls back to the predecessor for direct calls.
func (c Caller) Signer() string {
	if c.SignerID != "" {
		return c.SignerID
	}
	return c.AccountID
}

type ContractMetadata struct {
	Spec      string
	Name      string
	Symbol    string
	Icon      string
	BaseURI   string
	Reference string
}

type ContractState struct {
	OwnerID       string
	Metadata      ContractMetadata
	InitializedAt time.Time
}

type SeriesMetadata struct {
	Title       string
	Description string
	Media       string
	Reference   string
	Copies      *uint64
}

type Series struct {
	SeriesID    uint64
	Title       string
	OwnerID     string
	Metadata    SeriesMetadata
	Royalty     map[string]uint32
	MintedCount uint64
	CreatedAt   time.Time
}

type Token struct {
	TokenID        string
	SeriesID       uint64
	SeriesTitle    string
	OwnerID        string
	EditionIndex   uint64
	CopiesAtMint   *uint64
	Approvals      map[string]uint64
	NextApprovalID uint64
	IssuedAt       time.Time
}

// TokenView is the read shape with the display title rendered from the
// mint-time copies snapshot.
type TokenView struct {
	TokenID     string
	OwnerID     string
	SeriesTitle string
	Title       string
	Media       string
	Copies      *uint64
	Approvals   map[string]uint64
}

type SeriesView struct {
	Metadata SeriesMetadata
	OwnerID  string
	Royalty  map[string]uint32
}

type Payout struct {
	Payout map[string]uint128.Uint128
}

type CreateSeriesInput struct {
	Metadata SeriesMetadata
	Royalty  map[string]uint32
}

type MintInput struct {
	SeriesTitle string
	ReceiverID  string
}

type TransferInput struct {
	ReceiverID string
	TokenID    string
	ApprovalID *uint64
	Memo       string
}

type TransferPayoutInput struct {
	ReceiverID   string
	TokenID      string
	ApprovalID   uint64
	Balance      *uint128.Uint128
	MaxLenPayout *uint32
}

type ApproveInput struct {
	TokenID   string
	AccountID string
	Msg       *string
}

// ApprovalNotice is the cross-contract notification forwarded to the grantee
// when nft_approve carries a message. Delivery is best effort; the approval
// itself is committed before the notice leaves the contract.
type ApprovalNotice struct {
	NFTContractID string
	TokenID       string
	OwnerID       string
	SignerID      string
	ApprovalID    uint64
	Msg           string
}

type ApprovalReceiver interface {
	OnApprove(ctx context.Context, notice ApprovalNotice) error
}

type Repository interface {
	GetContractState(ctx context.Context) (ContractState, bool, error)
	PutContractState(ctx context.Context, state ContractState) error

	CreateSeries(ctx context.Context, series Series) error
	GetSeriesByTitle(ctx context.Context, title string) (Series, error)
	GetSeriesByID(ctx context.Context, seriesID uint64) (Series, error)
	UpdateSeries(ctx context.Context, series Series) error
	CountSeries(ctx context.Context) (uint64, error)
	ListSeries(ctx context.Context, fromIndex uint64, limit int) ([]Series, error)

	CreateToken(ctx context.Context, token Token) error
	GetToken(ctx context.Context, tokenID string) (Token, error)
	UpdateToken(ctx context.Context, token Token) error
	CountTokens(ctx context.Context) (uint64, error)
	CountTokensByOwner(ctx context.Context, ownerID string) (uint64, error)
	ListTokens(ctx context.Context, fromIndex uint64, limit int) ([]Token, error)
	ListTokensBySeries(ctx context.Context, seriesID uint64, fromIndex uint64, limit int) ([]Token, error)
	ListTokensByOwner(ctx context.Context, ownerID string, fromIndex uint64, limit int) ([]Token, error)
}

// Bank is the host runtime's native token accounting: attached deposits and
// refunds settle through it, never inside contract storage.
type Bank interface {
	Transfer(ctx context.Context, from string, to string, amount uint128.Uint128) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
