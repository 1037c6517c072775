package ports

import (
	"context"
	"time"

	"github.com/gaze-network/uint128"

	contractsv1 "mintery/contracts/gen/events/v1"
)

// Caller carries the transaction context of a market entry point.
type Caller struct {
	AccountID string
	SignerID  string
	Deposit   uint128.Uint128
}

func (c Caller) Signer() string {
	if c.SignerID != "" {
		return c.SignerID
	}
	return c.AccountID
}

type MarketState struct {
	OwnerID       string
	InitializedAt time.Time
}

// Sale is one listing, keyed by (nft_contract_id, token_id). The royalty map
// and seller are snapshotted at listing time so the split cannot be
// renegotiated mid-sale.
type Sale struct {
	NFTContractID   string
	TokenID         string
	OwnerID         string
	ApprovalID      uint64
	Conditions      map[string]uint128.Uint128
	IsAuction       bool
	RoyaltySnapshot map[string]uint32
	CreatedAt       time.Time
}

// SaleKey is the composite listing key, "{nft_contract_id}||{token_id}".
func SaleKey(nftContractID, tokenID string) string {
	return nftContractID + "||" + tokenID
}

func (s Sale) Key() string {
	return SaleKey(s.NFTContractID, s.TokenID)
}

// ListingNotice is the approval message pushed by an NFT contract. Msg is the
// opaque payload the seller attached to nft_approve.
type ListingNotice struct {
	NFTContractID string
	TokenID       string
	OwnerID       string
	SignerID      string
	ApprovalID    uint64
	Msg           string
}

// PendingSettlement records a purchase between phase one (deposit captured)
// and phase two (transfer resolved). Exactly one of settle or refund closes
// it; the reaper refunds rows orphaned by a crash in between.
type PendingSettlement struct {
	PendingID     string
	NFTContractID string
	TokenID       string
	BuyerID       string
	Currency      string
	Price         uint128.Uint128
	Deposit       uint128.Uint128
	CreatedAt     time.Time
}

// TokenContract is the market's client view of an NFT contract: the royalty
// read used at listing time and the transfer-with-payout settlement leg.
type TokenContract interface {
	Royalty(ctx context.Context, tokenID string) (map[string]uint32, error)
	TransferPayout(
		ctx context.Context,
		receiverID string,
		tokenID string,
		approvalID uint64,
		balance uint128.Uint128,
		maxLenPayout uint32,
	) (map[string]uint128.Uint128, string, error)
}

// TokenContractRegistry resolves NFT contract accounts to their clients.
type TokenContractRegistry interface {
	Resolve(nftContractID string) (TokenContract, bool)
}

type Repository interface {
	GetMarketState(ctx context.Context) (MarketState, bool, error)
	PutMarketState(ctx context.Context, state MarketState) error

	AddCurrency(ctx context.Context, ftTokenID string) (bool, error)
	HasCurrency(ctx context.Context, ftTokenID string) (bool, error)
	ListCurrencies(ctx context.Context) ([]string, error)

	PutSale(ctx context.Context, sale Sale) error
	GetSale(ctx context.Context, nftContractID string, tokenID string) (Sale, bool, error)
	RemoveSale(ctx context.Context, nftContractID string, tokenID string) error
	CountSales(ctx context.Context) (uint64, error)
	CountSalesByOwner(ctx context.Context, ownerID string) (uint64, error)
	CountSalesByNFTContract(ctx context.Context, nftContractID string) (uint64, error)
	ListSalesByOwner(ctx context.Context, ownerID string, fromIndex uint64, limit int) ([]Sale, error)
	ListSalesByNFTContract(ctx context.Context, nftContractID string, fromIndex uint64, limit int) ([]Sale, error)

	GetStorageDeposit(ctx context.Context, accountID string) (uint128.Uint128, error)
	PutStorageDeposit(ctx context.Context, accountID string, amount uint128.Uint128) error

	CreatePending(ctx context.Context, pending PendingSettlement) error
	DeletePending(ctx context.Context, pendingID string) error
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]PendingSettlement, error)
}

// Bank is the host runtime's native token accounting.
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
