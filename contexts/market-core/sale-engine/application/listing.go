package application

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gaze-network/uint128"

	domainerrors "mintery/contexts/market-core/sale-engine/domain/errors"
	"mintery/contexts/market-core/sale-engine/ports"
	"mintery/internal/shared/nearamount"
)

// saleArgs is the versioned listing payload sellers attach to nft_approve.
// Prices travel as yocto strings.
type saleArgs struct {
	SaleConditions map[string]string `json:"sale_conditions"`
	IsAuction      *bool             `json:"is_auction,omitempty"`
}

// OnApprove receives an approval message from an NFT contract and records the
// sale. A malformed payload is logged and dropped without error so the
// approval it rides on is never broken; guard violations (wrong signer,
// unsupported currency, missing storage stake) reject the listing.
func (s *Service) OnApprove(ctx context.Context, notice ports.ListingNotice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireState(ctx); err != nil {
		return err
	}
	logger := resolveLogger(s.Logger)

	// Listings arrive only as cross-contract calls signed by the token owner.
	if notice.NFTContractID == notice.SignerID {
		return domainerrors.ErrUnauthorized
	}
	if notice.OwnerID != notice.SignerID {
		return domainerrors.ErrUnauthorized
	}

	var args saleArgs
	if err := json.Unmarshal([]byte(notice.Msg), &args); err != nil || len(args.SaleConditions) == 0 {
		logger.Warn("listing payload rejected",
			"event", "market_listing_payload_invalid",
			"module", "market-core/sale-engine",
			"layer", "application",
			"nft_contract_id", notice.NFTContractID,
			"token_id", notice.TokenID,
		)
		return nil
	}

	conditions := make(map[string]uint128.Uint128, len(args.SaleConditions))
	for currency, raw := range args.SaleConditions {
		supported, err := s.Repo.HasCurrency(ctx, currency)
		if err != nil {
			return err
		}
		if !supported {
			return domainerrors.ErrUnsupportedCurrency
		}
		price, err := nearamount.ParseYocto(raw)
		if err != nil {
			logger.Warn("listing payload rejected",
				"event", "market_listing_payload_invalid",
				"module", "market-core/sale-engine",
				"layer", "application",
				"nft_contract_id", notice.NFTContractID,
				"token_id", notice.TokenID,
				"currency", currency,
			)
			return nil
		}
		conditions[currency] = price
	}

	// The seller's stake must cover every live sale plus this one.
	staked, err := s.Repo.GetStorageDeposit(ctx, notice.OwnerID)
	if err != nil {
		return err
	}
	saleCount, err := s.Repo.CountSalesByOwner(ctx, notice.OwnerID)
	if err != nil {
		return err
	}
	required, overflow := StoragePerSale.MulOverflow(uint128.From64(saleCount + 1))
	if overflow || staked.Cmp(required) < 0 {
		return domainerrors.ErrInsufficientStorage
	}

	// Royalty split is fixed at listing time.
	royalty := map[string]uint32{}
	if contract, ok := s.resolveContract(notice.NFTContractID); ok {
		royalty, err = contract.Royalty(ctx, notice.TokenID)
		if err != nil {
			return err
		}
	}

	sale := ports.Sale{
		NFTContractID:   notice.NFTContractID,
		TokenID:         notice.TokenID,
		OwnerID:         notice.OwnerID,
		ApprovalID:      notice.ApprovalID,
		Conditions:      conditions,
		IsAuction:       args.IsAuction != nil && *args.IsAuction,
		RoyaltySnapshot: cloneRoyalty(royalty),
		CreatedAt:       s.now(),
	}
	if err := s.Repo.PutSale(ctx, sale); err != nil {
		return err
	}

	s.appendSaleEvent(ctx, "market_sale_listed", sale.Key(), map[string]any{
		"nft_contract_id": sale.NFTContractID,
		"token_id":        sale.TokenID,
		"owner_id":        sale.OwnerID,
		"approval_id":     sale.ApprovalID,
	})
	logger.Info("sale listed",
		"event", "market_sale_listed",
		"module", "market-core/sale-engine",
		"layer", "application",
		"nft_contract_id", sale.NFTContractID,
		"token_id", sale.TokenID,
		"owner_id", sale.OwnerID,
	)
	return nil
}

// UpdatePrice sets or adds a price for one currency on an existing sale.
func (s *Service) UpdatePrice(
	ctx context.Context,
	caller ports.Caller,
	nftContractID string,
	tokenID string,
	ftTokenID string,
	price uint128.Uint128,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireState(ctx); err != nil {
		return err
	}
	sale, err := s.saleOwnerGuard(ctx, caller, nftContractID, tokenID)
	if err != nil {
		return err
	}
	supported, err := s.Repo.HasCurrency(ctx, strings.TrimSpace(ftTokenID))
	if err != nil {
		return err
	}
	if !supported {
		return domainerrors.ErrUnsupportedCurrency
	}

	sale.Conditions = cloneConditions(sale.Conditions)
	sale.Conditions[strings.TrimSpace(ftTokenID)] = price
	return s.Repo.PutSale(ctx, sale)
}

// RemoveSale delists a token. Sale owner only, 1-yocto guard.
func (s *Service) RemoveSale(ctx context.Context, caller ports.Caller, nftContractID string, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireState(ctx); err != nil {
		return err
	}
	sale, err := s.saleOwnerGuard(ctx, caller, nftContractID, tokenID)
	if err != nil {
		return err
	}
	if err := s.Repo.RemoveSale(ctx, sale.NFTContractID, sale.TokenID); err != nil {
		return err
	}

	resolveLogger(s.Logger).Info("sale removed",
		"event", "market_sale_removed",
		"module", "market-core/sale-engine",
		"layer", "application",
		"nft_contract_id", sale.NFTContractID,
		"token_id", sale.TokenID,
	)
	return nil
}

func (s *Service) saleOwnerGuard(
	ctx context.Context,
	caller ports.Caller,
	nftContractID string,
	tokenID string,
) (ports.Sale, error) {
	if !atLeastOneYocto(caller.Deposit) {
		return ports.Sale{}, domainerrors.ErrInsufficientDeposit
	}
	sale, found, err := s.Repo.GetSale(ctx, strings.TrimSpace(nftContractID), strings.TrimSpace(tokenID))
	if err != nil {
		return ports.Sale{}, err
	}
	if !found {
		return ports.Sale{}, domainerrors.ErrNoSale
	}
	if caller.AccountID != sale.OwnerID {
		return ports.Sale{}, domainerrors.ErrUnauthorized
	}
	return sale, nil
}

func (s *Service) resolveContract(nftContractID string) (ports.TokenContract, bool) {
	if s.Registry == nil {
		return nil, false
	}
	return s.Registry.Resolve(nftContractID)
}
