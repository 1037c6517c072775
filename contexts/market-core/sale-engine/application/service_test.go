package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gaze-network/uint128"

	saleengine "mintery/contexts/market-core/sale-engine"
	domainerrors "mintery/contexts/market-core/sale-engine/domain/errors"
	"mintery/contexts/market-core/sale-engine/ports"
	"mintery/internal/platform/bank"
	"mintery/internal/shared/nearamount"
)

const (
	marketContractID = "market.test.near"
	nftContractID    = "nft.test.near"
)

var oneNearYocto = "1000000000000000000000000"

func newMarket(t *testing.T) (saleengine.Module, *bank.Bank, *stubRegistry) {
	t.Helper()

	funds := bank.New()
	for _, account := range []string{"alice.near", "bob.near", "buyer.near", "royalty.near"} {
		if err := funds.Deposit(context.Background(), account, nearamount.MustParse("100")); err != nil {
			t.Fatalf("seed balance: %v", err)
		}
	}

	module := saleengine.NewInMemoryModule(marketContractID, funds, nil)
	registry := &stubRegistry{contracts: map[string]ports.TokenContract{}}
	module.Service.SetRegistry(registry)
	if err := module.Service.Initialize(context.Background(), "alice.near", nil); err != nil {
		t.Fatalf("initialize market: %v", err)
	}
	return module, funds, registry
}

func caller(accountID string, deposit string) ports.Caller {
	return ports.Caller{AccountID: accountID, SignerID: accountID, Deposit: nearamount.MustParse(deposit)}
}

// stakeAndList stages the seller's storage and records a 1 NEAR listing.
func stakeAndList(t *testing.T, module saleengine.Module, seller string, approvalID uint64) {
	t.Helper()
	ctx := context.Background()

	if err := module.Service.StorageDeposit(ctx, caller(seller, "0.01"), ""); err != nil {
		t.Fatalf("storage deposit: %v", err)
	}
	err := module.Service.OnApprove(ctx, ports.ListingNotice{
		NFTContractID: nftContractID,
		TokenID:       "1:1",
		OwnerID:       seller,
		SignerID:      seller,
		ApprovalID:    approvalID,
		Msg:           `{"sale_conditions":{"near":"` + oneNearYocto + `"}}`,
	})
	if err != nil {
		t.Fatalf("on approve: %v", err)
	}
}

func TestInitializeSupportsNearByDefaultAndRejectsReinit(t *testing.T) {
	module, _, _ := newMarket(t)
	ctx := context.Background()

	currencies, err := module.Service.SupportedCurrencies(ctx)
	if err != nil {
		t.Fatalf("supported currencies: %v", err)
	}
	if len(currencies) != 1 || currencies[0] != "near" {
		t.Fatalf("expected [near], got %v", currencies)
	}

	if err := module.Service.Initialize(ctx, "bob.near", nil); !errors.Is(err, domainerrors.ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}
}

func TestAddSupportedCurrenciesOwnerOnly(t *testing.T) {
	module, _, _ := newMarket(t)
	ctx := context.Background()

	if _, err := module.Service.AddSupportedCurrencies(ctx, caller("bob.near", "0"), []string{"usdc.near"}); !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	added, err := module.Service.AddSupportedCurrencies(ctx, caller("alice.near", "0"), []string{"usdc.near", "near"})
	if err != nil {
		t.Fatalf("add currencies: %v", err)
	}
	if len(added) != 2 || !added[0] || added[1] {
		t.Fatalf("expected [true false], got %v", added)
	}
}

func TestStorageDepositRequiresOneSaleMinimum(t *testing.T) {
	module, _, _ := newMarket(t)

	err := module.Service.StorageDeposit(context.Background(), caller("alice.near", "0.001"), "")
	if !errors.Is(err, domainerrors.ErrInsufficientDeposit) {
		t.Fatalf("expected ErrInsufficientDeposit, got %v", err)
	}
}

func TestStorageWithdrawReturnsOnlyUnlockedStake(t *testing.T) {
	module, funds, registry := newMarket(t)
	registry.contracts[nftContractID] = &stubContract{}
	ctx := context.Background()

	// Stake enough for three sales, list one.
	if err := module.Service.StorageDeposit(ctx, caller("alice.near", "0.03"), ""); err != nil {
		t.Fatalf("storage deposit: %v", err)
	}
	err := module.Service.OnApprove(ctx, ports.ListingNotice{
		NFTContractID: nftContractID,
		TokenID:       "1:1",
		OwnerID:       "alice.near",
		SignerID:      "alice.near",
		ApprovalID:    1,
		Msg:           `{"sale_conditions":{"near":"` + oneNearYocto + `"}}`,
	})
	if err != nil {
		t.Fatalf("on approve: %v", err)
	}

	before := funds.Balance("alice.near")
	withdrawn, err := module.Service.StorageWithdraw(ctx, caller("alice.near", "0.000000000000000000000001"))
	if err != nil {
		t.Fatalf("storage withdraw: %v", err)
	}
	if withdrawn.Cmp(nearamount.MustParse("0.02")) != 0 {
		t.Fatalf("expected 0.02 withdrawn, got %s", nearamount.Format(withdrawn))
	}
	if funds.Balance("alice.near").Sub(before).Cmp(withdrawn) != 0 {
		t.Fatalf("withdrawn amount not credited")
	}

	paid, err := module.Service.StoragePaid(ctx, "alice.near")
	if err != nil {
		t.Fatalf("storage paid: %v", err)
	}
	if paid.Cmp(nearamount.MustParse("0.01")) != 0 {
		t.Fatalf("expected 0.01 still locked, got %s", nearamount.Format(paid))
	}
}

func TestOnApproveRejectsDirectAndMismatchedSigners(t *testing.T) {
	module, _, _ := newMarket(t)
	ctx := context.Background()

	// Direct call: contract id equals signer.
	err := module.Service.OnApprove(ctx, ports.ListingNotice{
		NFTContractID: "alice.near",
		TokenID:       "1:1",
		OwnerID:       "alice.near",
		SignerID:      "alice.near",
		ApprovalID:    1,
		Msg:           `{"sale_conditions":{"near":"1"}}`,
	})
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for direct call, got %v", err)
	}

	// Owner is not the transaction signer.
	err = module.Service.OnApprove(ctx, ports.ListingNotice{
		NFTContractID: nftContractID,
		TokenID:       "1:1",
		OwnerID:       "alice.near",
		SignerID:      "bob.near",
		ApprovalID:    1,
		Msg:           `{"sale_conditions":{"near":"1"}}`,
	})
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for signer mismatch, got %v", err)
	}
}

func TestOnApproveMalformedPayloadDropsListingWithoutError(t *testing.T) {
	module, _, _ := newMarket(t)
	ctx := context.Background()

	if err := module.Service.StorageDeposit(ctx, caller("alice.near", "0.01"), ""); err != nil {
		t.Fatalf("storage deposit: %v", err)
	}
	err := module.Service.OnApprove(ctx, ports.ListingNotice{
		NFTContractID: nftContractID,
		TokenID:       "1:1",
		OwnerID:       "alice.near",
		SignerID:      "alice.near",
		ApprovalID:    1,
		Msg:           `not json at all`,
	})
	if err != nil {
		t.Fatalf("malformed payload must not error, got %v", err)
	}
	if _, err := module.Service.GetSale(ctx, nftContractID, "1:1"); !errors.Is(err, domainerrors.ErrNoSale) {
		t.Fatalf("expected no sale recorded, got %v", err)
	}
}

func TestOnApproveRejectsUnsupportedCurrencyAndMissingStake(t *testing.T) {
	module, _, _ := newMarket(t)
	ctx := context.Background()

	if err := module.Service.StorageDeposit(ctx, caller("alice.near", "0.01"), ""); err != nil {
		t.Fatalf("storage deposit: %v", err)
	}
	err := module.Service.OnApprove(ctx, ports.ListingNotice{
		NFTContractID: nftContractID,
		TokenID:       "1:1",
		OwnerID:       "alice.near",
		SignerID:      "alice.near",
		ApprovalID:    1,
		Msg:           `{"sale_conditions":{"usdc.near":"100"}}`,
	})
	if !errors.Is(err, domainerrors.ErrUnsupportedCurrency) {
		t.Fatalf("expected ErrUnsupportedCurrency, got %v", err)
	}

	// bob has no stake at all.
	err = module.Service.OnApprove(ctx, ports.ListingNotice{
		NFTContractID: nftContractID,
		TokenID:       "1:2",
		OwnerID:       "bob.near",
		SignerID:      "bob.near",
		ApprovalID:    1,
		Msg:           `{"sale_conditions":{"near":"` + oneNearYocto + `"}}`,
	})
	if !errors.Is(err, domainerrors.ErrInsufficientStorage) {
		t.Fatalf("expected ErrInsufficientStorage, got %v", err)
	}
}

func TestOnApproveSnapshotsRoyaltyAtListingTime(t *testing.T) {
	module, _, registry := newMarket(t)
	registry.contracts[nftContractID] = &stubContract{
		royalty: map[string]uint32{"royalty.near": 1000},
	}
	stakeAndList(t, module, "alice.near", 3)

	sale, err := module.Service.GetSale(context.Background(), nftContractID, "1:1")
	if err != nil {
		t.Fatalf("get sale: %v", err)
	}
	if sale.ApprovalID != 3 || sale.OwnerID != "alice.near" {
		t.Fatalf("unexpected sale: %+v", sale)
	}
	if sale.RoyaltySnapshot["royalty.near"] != 1000 {
		t.Fatalf("royalty not snapshotted: %+v", sale.RoyaltySnapshot)
	}
	if sale.Conditions["near"].Cmp(nearamount.MustParse("1")) != 0 {
		t.Fatalf("unexpected price: %s", nearamount.Format(sale.Conditions["near"]))
	}
}

func TestUpdatePriceAndRemoveSaleGuards(t *testing.T) {
	module, _, registry := newMarket(t)
	registry.contracts[nftContractID] = &stubContract{}
	stakeAndList(t, module, "alice.near", 1)
	ctx := context.Background()

	newPrice := nearamount.MustParse("2")
	err := module.Service.UpdatePrice(ctx, caller("bob.near", "0.000000000000000000000001"), nftContractID, "1:1", "near", newPrice)
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non-owner, got %v", err)
	}

	err = module.Service.UpdatePrice(ctx, ports.Caller{AccountID: "alice.near"}, nftContractID, "1:1", "near", newPrice)
	if !errors.Is(err, domainerrors.ErrInsufficientDeposit) {
		t.Fatalf("expected ErrInsufficientDeposit without yocto, got %v", err)
	}

	if err := module.Service.UpdatePrice(ctx, caller("alice.near", "0.000000000000000000000001"), nftContractID, "1:1", "near", newPrice); err != nil {
		t.Fatalf("update price: %v", err)
	}
	sale, err := module.Service.GetSale(ctx, nftContractID, "1:1")
	if err != nil {
		t.Fatalf("get sale: %v", err)
	}
	if sale.Conditions["near"].Cmp(newPrice) != 0 {
		t.Fatalf("price not updated")
	}

	if err := module.Service.RemoveSale(ctx, caller("alice.near", "0.000000000000000000000001"), nftContractID, "1:1"); err != nil {
		t.Fatalf("remove sale: %v", err)
	}
	if _, err := module.Service.GetSale(ctx, nftContractID, "1:1"); !errors.Is(err, domainerrors.ErrNoSale) {
		t.Fatalf("expected sale removed, got %v", err)
	}
}

func TestOfferTerminalErrors(t *testing.T) {
	module, _, registry := newMarket(t)
	registry.contracts[nftContractID] = &stubContract{}
	ctx := context.Background()

	if _, err := module.Service.Offer(ctx, caller("buyer.near", "1"), nftContractID, "9:9"); !errors.Is(err, domainerrors.ErrNoSale) {
		t.Fatalf("expected ErrNoSale, got %v", err)
	}

	stakeAndList(t, module, "alice.near", 1)

	if _, err := module.Service.Offer(ctx, caller("alice.near", "1"), nftContractID, "1:1"); !errors.Is(err, domainerrors.ErrSelfPurchase) {
		t.Fatalf("expected ErrSelfPurchase, got %v", err)
	}
	if _, err := module.Service.Offer(ctx, caller("buyer.near", "0.5"), nftContractID, "1:1"); !errors.Is(err, domainerrors.ErrPriceMismatch) {
		t.Fatalf("expected ErrPriceMismatch, got %v", err)
	}
}

func TestOfferSettlesRoyaltySplitExactly(t *testing.T) {
	module, funds, registry := newMarket(t)
	registry.contracts[nftContractID] = &stubContract{
		royalty: map[string]uint32{"royalty.near": 1000},
		payout: map[string]uint128.Uint128{
			"royalty.near": nearamount.MustParse("0.1"),
			"alice.near":   nearamount.MustParse("0.9"),
		},
		previousOwnerID: "alice.near",
	}
	stakeAndList(t, module, "alice.near", 1)
	ctx := context.Background()

	sellerBefore := funds.Balance("alice.near")
	royaltyBefore := funds.Balance("royalty.near")
	buyerBefore := funds.Balance("buyer.near")
	marketBefore := funds.Balance(marketContractID)

	previousOwner, err := module.Service.Offer(ctx, caller("buyer.near", "1"), nftContractID, "1:1")
	if err != nil {
		t.Fatalf("offer: %v", err)
	}
	if previousOwner != "alice.near" {
		t.Fatalf("expected previous owner alice.near, got %s", previousOwner)
	}

	if got := funds.Balance("royalty.near").Sub(royaltyBefore); got.Cmp(nearamount.MustParse("0.1")) != 0 {
		t.Fatalf("royalty account expected +0.1, got %s", nearamount.Format(got))
	}
	if got := funds.Balance("alice.near").Sub(sellerBefore); got.Cmp(nearamount.MustParse("0.9")) != 0 {
		t.Fatalf("seller expected +0.9, got %s", nearamount.Format(got))
	}
	if got := buyerBefore.Sub(funds.Balance("buyer.near")); got.Cmp(nearamount.MustParse("1")) != 0 {
		t.Fatalf("buyer expected -1, got %s", nearamount.Format(got))
	}
	// Market keeps nothing from the sale itself.
	if funds.Balance(marketContractID).Cmp(marketBefore) != 0 {
		t.Fatalf("market balance changed by settlement")
	}

	if _, err := module.Service.GetSale(ctx, nftContractID, "1:1"); !errors.Is(err, domainerrors.ErrNoSale) {
		t.Fatalf("expected sale removed after settlement, got %v", err)
	}
}

func TestOfferRefundsExcessAboveThePrice(t *testing.T) {
	module, funds, registry := newMarket(t)
	registry.contracts[nftContractID] = &stubContract{
		payout: map[string]uint128.Uint128{
			"alice.near": nearamount.MustParse("1"),
		},
		previousOwnerID: "alice.near",
	}
	stakeAndList(t, module, "alice.near", 1)
	buyerBefore := funds.Balance("buyer.near")

	if _, err := module.Service.Offer(context.Background(), caller("buyer.near", "2.5"), nftContractID, "1:1"); err != nil {
		t.Fatalf("offer: %v", err)
	}

	if got := buyerBefore.Sub(funds.Balance("buyer.near")); got.Cmp(nearamount.MustParse("1")) != 0 {
		t.Fatalf("buyer should net pay exactly the price, paid %s", nearamount.Format(got))
	}
}

func TestOfferRefundsBuyerWhenTransferFails(t *testing.T) {
	module, funds, registry := newMarket(t)
	registry.contracts[nftContractID] = &stubContract{transferErr: errors.New("approval stale")}
	stakeAndList(t, module, "alice.near", 1)
	ctx := context.Background()

	buyerBefore := funds.Balance("buyer.near")
	_, err := module.Service.Offer(ctx, caller("buyer.near", "1"), nftContractID, "1:1")
	if !errors.Is(err, domainerrors.ErrSettlementFailure) {
		t.Fatalf("expected ErrSettlementFailure, got %v", err)
	}

	if funds.Balance("buyer.near").Cmp(buyerBefore) != 0 {
		t.Fatalf("buyer not refunded in full")
	}
	if _, err := module.Service.GetSale(ctx, nftContractID, "1:1"); err != nil {
		t.Fatalf("sale must stay on the book after a failed settlement: %v", err)
	}
}

func TestOfferRefundsBuyerOnInvalidPayout(t *testing.T) {
	module, funds, registry := newMarket(t)
	// Shares exceed the price: a dishonest payout must not settle.
	registry.contracts[nftContractID] = &stubContract{
		payout: map[string]uint128.Uint128{
			"alice.near": nearamount.MustParse("2"),
		},
		previousOwnerID: "alice.near",
	}
	stakeAndList(t, module, "alice.near", 1)
	buyerBefore := funds.Balance("buyer.near")

	_, err := module.Service.Offer(context.Background(), caller("buyer.near", "1"), nftContractID, "1:1")
	if !errors.Is(err, domainerrors.ErrSettlementFailure) {
		t.Fatalf("expected ErrSettlementFailure, got %v", err)
	}
	if funds.Balance("buyer.near").Cmp(buyerBefore) != 0 {
		t.Fatalf("buyer not refunded after invalid payout")
	}
}

func TestOfferRefundsBuyerOnPayoutOutsideRoyaltySnapshot(t *testing.T) {
	module, funds, registry := newMarket(t)
	// The listing snapshot names royalty.near only; a payout routing a share
	// to any other non-seller account must not settle.
	registry.contracts[nftContractID] = &stubContract{
		royalty: map[string]uint32{"royalty.near": 1000},
		payout: map[string]uint128.Uint128{
			"bob.near":   nearamount.MustParse("0.1"),
			"alice.near": nearamount.MustParse("0.9"),
		},
		previousOwnerID: "alice.near",
	}
	stakeAndList(t, module, "alice.near", 1)
	ctx := context.Background()

	buyerBefore := funds.Balance("buyer.near")
	bobBefore := funds.Balance("bob.near")

	_, err := module.Service.Offer(ctx, caller("buyer.near", "1"), nftContractID, "1:1")
	if !errors.Is(err, domainerrors.ErrSettlementFailure) {
		t.Fatalf("expected ErrSettlementFailure, got %v", err)
	}
	if funds.Balance("buyer.near").Cmp(buyerBefore) != 0 {
		t.Fatalf("buyer not refunded in full")
	}
	if funds.Balance("bob.near").Cmp(bobBefore) != 0 {
		t.Fatalf("account outside the snapshot must not be paid")
	}
	if _, err := module.Service.GetSale(ctx, nftContractID, "1:1"); err != nil {
		t.Fatalf("sale must stay on the book after a rejected payout: %v", err)
	}
}

func TestRefundExpiredPendingsReturnsDeposits(t *testing.T) {
	module, funds, _ := newMarket(t)
	ctx := context.Background()

	deposit := nearamount.MustParse("1")
	if err := module.Store.CreatePending(ctx, ports.PendingSettlement{
		PendingID: "pending-1",
		BuyerID:   "buyer.near",
		Currency:  "near",
		Price:     deposit,
		Deposit:   deposit,
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	}); err != nil {
		t.Fatalf("create pending: %v", err)
	}
	if err := funds.Deposit(ctx, marketContractID, deposit); err != nil {
		t.Fatalf("seed market balance: %v", err)
	}
	buyerBefore := funds.Balance("buyer.near")

	refunded, err := module.Service.RefundExpiredPendings(ctx, 5*time.Minute, 10)
	if err != nil {
		t.Fatalf("reap pendings: %v", err)
	}
	if refunded != 1 {
		t.Fatalf("expected one refund, got %d", refunded)
	}
	if got := funds.Balance("buyer.near").Sub(buyerBefore); got.Cmp(deposit) != 0 {
		t.Fatalf("buyer expected refund of 1, got %s", nearamount.Format(got))
	}
}

type stubRegistry struct {
	contracts map[string]ports.TokenContract
}

func (r *stubRegistry) Resolve(nftContractID string) (ports.TokenContract, bool) {
	contract, ok := r.contracts[nftContractID]
	return contract, ok
}

type stubContract struct {
	royalty         map[string]uint32
	payout          map[string]uint128.Uint128
	previousOwnerID string
	transferErr     error
}

func (c *stubContract) Royalty(_ context.Context, _ string) (map[string]uint32, error) {
	return c.royalty, nil
}

func (c *stubContract) TransferPayout(
	_ context.Context,
	_ string,
	_ string,
	_ uint64,
	_ uint128.Uint128,
	_ uint32,
) (map[string]uint128.Uint128, string, error) {
	if c.transferErr != nil {
		return nil, "", c.transferErr
	}
	return c.payout, c.previousOwnerID, nil
}
