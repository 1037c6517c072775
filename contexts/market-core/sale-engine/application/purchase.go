package application

import (
	"context"
	"strings"
	"time"

	"github.com/gaze-network/uint128"

	domainerrors "mintery/contexts/market-core/sale-engine/domain/errors"
	"mintery/contexts/market-core/sale-engine/ports"
	"mintery/internal/shared/nearamount"
)

// Offer buys a listed token at its NEAR price. Two-phase protocol:
//
//  1. Under the lock: validate, persist a PendingSettlement and capture the
//     buyer's full deposit into the market account.
//  2. Outside the lock: call the NFT contract's transfer-with-payout using the
//     listing approval id. The lock is released for this leg, the in-process
//     analog of suspending on a cross-contract call.
//  3. Under the lock again: apply exactly one of settle (pay every payout
//     share, refund the excess, remove the sale) or refund (return the full
//     deposit, sale untouched).
//
// A failed or invalid payout surfaces as ErrSettlementFailure after the
// refund; the buyer may resubmit.
func (s *Service) Offer(
	ctx context.Context,
	caller ports.Caller,
	nftContractID string,
	tokenID string,
) (string, error) {
	nftContractID = strings.TrimSpace(nftContractID)
	tokenID = strings.TrimSpace(tokenID)

	sale, pending, contract, err := s.beginPurchase(ctx, caller, nftContractID, tokenID)
	if err != nil {
		return "", err
	}

	payout, previousOwnerID, transferErr := contract.TransferPayout(
		ctx,
		pending.BuyerID,
		tokenID,
		sale.ApprovalID,
		pending.Price,
		maxSettlementBeneficiaries,
	)

	return s.resolvePurchase(ctx, sale, pending, payout, previousOwnerID, transferErr)
}

// beginPurchase is phase one: all validation, then the pending record and the
// deposit capture, under the lock.
func (s *Service) beginPurchase(
	ctx context.Context,
	caller ports.Caller,
	nftContractID string,
	tokenID string,
) (ports.Sale, ports.PendingSettlement, ports.TokenContract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireState(ctx); err != nil {
		return ports.Sale{}, ports.PendingSettlement{}, nil, err
	}

	sale, found, err := s.Repo.GetSale(ctx, nftContractID, tokenID)
	if err != nil {
		return ports.Sale{}, ports.PendingSettlement{}, nil, err
	}
	if !found {
		return ports.Sale{}, ports.PendingSettlement{}, nil, domainerrors.ErrNoSale
	}
	if caller.AccountID == sale.OwnerID {
		return ports.Sale{}, ports.PendingSettlement{}, nil, domainerrors.ErrSelfPurchase
	}
	price, ok := sale.Conditions[NearCurrency]
	if !ok {
		return ports.Sale{}, ports.PendingSettlement{}, nil, domainerrors.ErrUnsupportedCurrency
	}
	if caller.Deposit.IsZero() || caller.Deposit.Cmp(price) < 0 {
		return ports.Sale{}, ports.PendingSettlement{}, nil, domainerrors.ErrPriceMismatch
	}
	contract, ok := s.resolveContract(sale.NFTContractID)
	if !ok {
		return ports.Sale{}, ports.PendingSettlement{}, nil, domainerrors.ErrSettlementFailure
	}

	pending := ports.PendingSettlement{
		PendingID:     s.newID(ctx),
		NFTContractID: sale.NFTContractID,
		TokenID:       sale.TokenID,
		BuyerID:       caller.AccountID,
		Currency:      NearCurrency,
		Price:         price,
		Deposit:       caller.Deposit,
		CreatedAt:     s.now(),
	}
	if err := s.Repo.CreatePending(ctx, pending); err != nil {
		return ports.Sale{}, ports.PendingSettlement{}, nil, err
	}
	if err := s.Bank.Transfer(ctx, caller.AccountID, s.ContractID, caller.Deposit); err != nil {
		return ports.Sale{}, ports.PendingSettlement{}, nil, err
	}
	return sale, pending, contract, nil
}

// resolvePurchase is phase three. Exactly one of settle or refund runs.
func (s *Service) resolvePurchase(
	ctx context.Context,
	sale ports.Sale,
	pending ports.PendingSettlement,
	payout map[string]uint128.Uint128,
	previousOwnerID string,
	transferErr error,
) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := resolveLogger(s.Logger)
	if transferErr != nil || !validPayout(payout, sale, pending.Price) {
		if err := s.refundPending(ctx, pending); err != nil {
			return "", err
		}
		s.appendSaleEvent(ctx, "market_sale_refunded", sale.Key(), map[string]any{
			"nft_contract_id": sale.NFTContractID,
			"token_id":        sale.TokenID,
			"buyer_id":        pending.BuyerID,
			"deposit":         nearamount.FormatYocto(pending.Deposit),
		})
		logger.Warn("purchase refunded",
			"event", "market_sale_refunded",
			"module", "market-core/sale-engine",
			"layer", "application",
			"nft_contract_id", sale.NFTContractID,
			"token_id", sale.TokenID,
			"buyer_id", pending.BuyerID,
			"transfer_failed", transferErr != nil,
		)
		return "", domainerrors.ErrSettlementFailure
	}

	for accountID, share := range payout {
		if err := s.Bank.Transfer(ctx, s.ContractID, accountID, share); err != nil {
			return "", err
		}
	}
	// Excess above the price goes back to the buyer, never kept.
	if excess := pending.Deposit.Sub(pending.Price); !excess.IsZero() {
		if err := s.Bank.Transfer(ctx, s.ContractID, pending.BuyerID, excess); err != nil {
			return "", err
		}
	}
	if err := s.Repo.RemoveSale(ctx, sale.NFTContractID, sale.TokenID); err != nil {
		return "", err
	}
	if err := s.Repo.DeletePending(ctx, pending.PendingID); err != nil {
		return "", err
	}

	s.appendSaleEvent(ctx, "market_sale_settled", sale.Key(), map[string]any{
		"nft_contract_id":   sale.NFTContractID,
		"token_id":          sale.TokenID,
		"buyer_id":          pending.BuyerID,
		"previous_owner_id": previousOwnerID,
		"price":             nearamount.FormatYocto(pending.Price),
	})
	logger.Info("purchase settled",
		"event", "market_sale_settled",
		"module", "market-core/sale-engine",
		"layer", "application",
		"nft_contract_id", sale.NFTContractID,
		"token_id", sale.TokenID,
		"buyer_id", pending.BuyerID,
		"previous_owner_id", previousOwnerID,
	)
	return previousOwnerID, nil
}

// refundPending returns the full captured deposit and closes the pending
// record. The sale stays on the book.
func (s *Service) refundPending(ctx context.Context, pending ports.PendingSettlement) error {
	if err := s.Bank.Transfer(ctx, s.ContractID, pending.BuyerID, pending.Deposit); err != nil {
		return err
	}
	return s.Repo.DeletePending(ctx, pending.PendingID)
}

// RefundExpiredPendings refunds settlements orphaned between phases, e.g. by
// a crash after the deposit was captured. Worker entry point.
func (s *Service) RefundExpiredPendings(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired, err := s.Repo.ListPendingBefore(ctx, s.now().Add(-olderThan), limit)
	if err != nil {
		return 0, err
	}
	refunded := 0
	for _, pending := range expired {
		if err := s.refundPending(ctx, pending); err != nil {
			return refunded, err
		}
		refunded++
		resolveLogger(s.Logger).Warn("expired pending settlement refunded",
			"event", "market_pending_reaped",
			"module", "market-core/sale-engine",
			"layer", "application",
			"pending_id", pending.PendingID,
			"buyer_id", pending.BuyerID,
		)
	}
	return refunded, nil
}

// validPayout rejects empty or oversized payout maps, any split whose shares
// exceed the price paid, and any beneficiary outside the set fixed at listing
// time: the royalty snapshot plus the sale owner. Royalty edits made after the
// listing cannot redirect the settlement.
func validPayout(payout map[string]uint128.Uint128, sale ports.Sale, price uint128.Uint128) bool {
	if len(payout) == 0 || len(payout) > maxSettlementBeneficiaries {
		return false
	}
	total := uint128.Zero
	for accountID, share := range payout {
		if accountID != sale.OwnerID {
			if _, ok := sale.RoyaltySnapshot[accountID]; !ok {
				return false
			}
		}
		var carry bool
		total, carry = total.AddOverflow(share)
		if carry {
			return false
		}
	}
	return total.Cmp(price) <= 0
}
