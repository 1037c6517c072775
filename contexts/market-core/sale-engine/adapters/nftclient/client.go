// Package nftclient adapts an in-process series-ledger contract to the sale
// engine's TokenContract port. In a deployed system this would be the
// cross-contract call boundary; here it is a direct call that still crosses
// only through ports.
package nftclient

import (
	"context"

	"github.com/gaze-network/uint128"

	marketapp "mintery/contexts/market-core/sale-engine/application"
	"mintery/contexts/market-core/sale-engine/ports"
	ledgerapp "mintery/contexts/nft-core/series-ledger/application"
	ledgerports "mintery/contexts/nft-core/series-ledger/ports"
	"mintery/internal/shared/nearamount"
)

type Client struct {
	// MarketAccountID is the predecessor the ledger sees on settlement calls.
	MarketAccountID string
	Ledger          *ledgerapp.Service
}

func (c *Client) Royalty(ctx context.Context, tokenID string) (map[string]uint32, error) {
	return c.Ledger.RoyaltyForToken(ctx, tokenID)
}

func (c *Client) TransferPayout(
	ctx context.Context,
	receiverID string,
	tokenID string,
	approvalID uint64,
	balance uint128.Uint128,
	maxLenPayout uint32,
) (map[string]uint128.Uint128, string, error) {
	payout, previousOwnerID, err := c.Ledger.TransferPayout(ctx, ledgerports.Caller{
		AccountID: c.MarketAccountID,
		Deposit:   nearamount.OneYocto,
	}, ledgerports.TransferPayoutInput{
		ReceiverID:   receiverID,
		TokenID:      tokenID,
		ApprovalID:   approvalID,
		Balance:      &balance,
		MaxLenPayout: &maxLenPayout,
	})
	if err != nil {
		return nil, "", err
	}
	return payout.Payout, previousOwnerID, nil
}

// ListingBridge delivers approval notices from an in-process ledger to the
// sale engine, standing in for the nft_on_approve receipt a deployed market
// would receive.
type ListingBridge struct {
	Market *marketapp.Service
}

func (b ListingBridge) OnApprove(ctx context.Context, notice ledgerports.ApprovalNotice) error {
	return b.Market.OnApprove(ctx, ports.ListingNotice{
		NFTContractID: notice.NFTContractID,
		TokenID:       notice.TokenID,
		OwnerID:       notice.OwnerID,
		SignerID:      notice.SignerID,
		ApprovalID:    notice.ApprovalID,
		Msg:           notice.Msg,
	})
}

// Registry maps NFT contract account ids to their clients.
type Registry struct {
	clients map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

func (r *Registry) Register(nftContractID string, client *Client) {
	r.clients[nftContractID] = client
}

func (r *Registry) Resolve(nftContractID string) (ports.TokenContract, bool) {
	client, ok := r.clients[nftContractID]
	if !ok {
		return nil, false
	}
	return client, true
}
