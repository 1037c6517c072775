package bootstrap

import (
	"context"
	"errors"
	"testing"

	saleengine "mintery/contexts/market-core/sale-engine"
	"mintery/contexts/market-core/sale-engine/adapters/nftclient"
	marketerrors "mintery/contexts/market-core/sale-engine/domain/errors"
	marketports "mintery/contexts/market-core/sale-engine/ports"
	seriesledger "mintery/contexts/nft-core/series-ledger"
	ledgererrors "mintery/contexts/nft-core/series-ledger/domain/errors"
	ledgerports "mintery/contexts/nft-core/series-ledger/ports"
	"mintery/internal/platform/bank"
	"mintery/internal/shared/nearamount"
)

const (
	testNFTContractID    = "nft.mintery.test"
	testMarketContractID = "market.mintery.test"
	creatorID            = "creator.near"
)

// wireInMemory builds both contracts and their cross-contract edges the same
// way BuildAPI does, backed by in-memory stores.
func wireInMemory(t *testing.T) (seriesledger.Module, saleengine.Module, *bank.Bank) {
	t.Helper()

	funds := bank.New()
	for _, account := range []string{creatorID, "alice.near", "bob.near", "dan.near"} {
		if err := funds.Deposit(context.Background(), account, nearamount.MustParse("100")); err != nil {
			t.Fatalf("seed balance: %v", err)
		}
	}

	ledger := seriesledger.NewInMemoryModule(testNFTContractID, funds, nil)
	market := saleengine.NewInMemoryModule(testMarketContractID, funds, nil)

	registry := nftclient.NewRegistry()
	registry.Register(testNFTContractID, &nftclient.Client{
		MarketAccountID: testMarketContractID,
		Ledger:          ledger.Service,
	})
	market.Service.SetRegistry(registry)
	ledger.Service.SetApprovalReceiver(nftclient.ListingBridge{Market: market.Service})

	ctx := context.Background()
	if err := ledger.Service.InitializeDefault(ctx, creatorID); err != nil {
		t.Fatalf("initialize ledger: %v", err)
	}
	if err := market.Service.Initialize(ctx, creatorID, nil); err != nil {
		t.Fatalf("initialize market: %v", err)
	}
	return ledger, market, funds
}

func ledgerCaller(accountID string, deposit string) ledgerports.Caller {
	return ledgerports.Caller{AccountID: accountID, Deposit: nearamount.MustParse(deposit)}
}

func oneYoctoCaller(accountID string) ledgerports.Caller {
	return ledgerports.Caller{AccountID: accountID, Deposit: nearamount.OneYocto}
}

func marketCaller(accountID string, deposit string) marketports.Caller {
	return marketports.Caller{AccountID: accountID, Deposit: nearamount.MustParse(deposit)}
}

// The full lifecycle: a capped series is minted and traded through the
// marketplace, with the royalty beneficiary paid out of the sale price.
func TestSeriesLifecycleThroughMarketplace(t *testing.T) {
	ledger, market, funds := wireInMemory(t)
	ctx := context.Background()

	copies := uint64(4)
	_, err := ledger.Service.CreateSeries(ctx, ledgerCaller(creatorID, "0.01"), ledgerports.CreateSeriesInput{
		Metadata: ledgerports.SeriesMetadata{Title: "dogs", Copies: &copies},
		Royalty:  map[string]uint32{"bob.near": 1000},
	})
	if err != nil {
		t.Fatalf("create series: %v", err)
	}

	for edition := 1; edition <= 2; edition++ {
		view, err := ledger.Service.MintSeries(ctx, ledgerCaller(creatorID, "0.01"), ledgerports.MintInput{
			SeriesTitle: "dogs",
			ReceiverID:  creatorID,
		})
		if err != nil {
			t.Fatalf("mint edition %d: %v", edition, err)
		}
		if edition == 1 && view.TokenID != "1:1" {
			t.Fatalf("first edition token id = %q, want 1:1", view.TokenID)
		}
	}

	capped, err := ledger.Service.CapCopies(ctx, oneYoctoCaller(creatorID), "dogs")
	if err != nil {
		t.Fatalf("cap copies: %v", err)
	}
	if capped.Metadata.Copies == nil || *capped.Metadata.Copies != 2 {
		t.Fatalf("capped copies = %v, want 2", capped.Metadata.Copies)
	}
	_, err = ledger.Service.MintSeries(ctx, ledgerCaller(creatorID, "0.01"), ledgerports.MintInput{
		SeriesTitle: "dogs",
		ReceiverID:  creatorID,
	})
	if !errors.Is(err, ledgererrors.ErrSupplyExhausted) {
		t.Fatalf("mint past cap: expected ErrSupplyExhausted, got %v", err)
	}

	// Existing tokens keep the title minted under the original cap.
	view, found, err := ledger.Service.Token(ctx, "1:1")
	if err != nil || !found {
		t.Fatalf("token 1:1 lookup: found=%v err=%v", found, err)
	}
	if view.Title != "dogs — 1/4" {
		t.Fatalf("token title = %q, want %q", view.Title, "dogs — 1/4")
	}

	if err := ledger.Service.Transfer(ctx, oneYoctoCaller(creatorID), ledgerports.TransferInput{
		ReceiverID: "alice.near",
		TokenID:    "1:1",
	}); err != nil {
		t.Fatalf("transfer to alice: %v", err)
	}

	if err := market.Service.StorageDeposit(ctx, marketCaller("alice.near", "0.01"), ""); err != nil {
		t.Fatalf("alice storage deposit: %v", err)
	}
	msg := `{"sale_conditions":{"near":"1000000000000000000000000"}}`
	if _, err := ledger.Service.Approve(ctx, ledgerCaller("alice.near", "0.001"), ledgerports.ApproveInput{
		TokenID:   "1:1",
		AccountID: testMarketContractID,
		Msg:       &msg,
	}); err != nil {
		t.Fatalf("approve market: %v", err)
	}

	sale, err := market.Service.GetSale(ctx, testNFTContractID, "1:1")
	if err != nil {
		t.Fatalf("sale not listed after approval: %v", err)
	}
	if sale.OwnerID != "alice.near" {
		t.Fatalf("sale owner = %q, want alice.near", sale.OwnerID)
	}

	bobBefore := funds.Balance("bob.near")
	aliceBefore := funds.Balance("alice.near")

	previousOwner, err := market.Service.Offer(ctx, marketCaller("dan.near", "1"), testNFTContractID, "1:1")
	if err != nil {
		t.Fatalf("offer: %v", err)
	}
	if previousOwner != "alice.near" {
		t.Fatalf("previous owner = %q, want alice.near", previousOwner)
	}

	if got := funds.Balance("dan.near"); got.Cmp(nearamount.MustParse("99")) != 0 {
		t.Fatalf("buyer balance = %s, want 99 NEAR", nearamount.Format(got))
	}
	if got := funds.Balance("bob.near").Sub(bobBefore); got.Cmp(nearamount.MustParse("0.1")) != 0 {
		t.Fatalf("royalty share = %s, want 0.1 NEAR", nearamount.Format(got))
	}
	if got := funds.Balance("alice.near").Sub(aliceBefore); got.Cmp(nearamount.MustParse("0.9")) != 0 {
		t.Fatalf("seller share = %s, want 0.9 NEAR", nearamount.Format(got))
	}
	if got := funds.Balance(testMarketContractID); got.Cmp(nearamount.MustParse("0.01")) != 0 {
		t.Fatalf("market retains %s, want only the 0.01 storage stake", nearamount.Format(got))
	}

	view, found, err = ledger.Service.Token(ctx, "1:1")
	if err != nil || !found {
		t.Fatalf("token 1:1 after sale: found=%v err=%v", found, err)
	}
	if view.OwnerID != "dan.near" {
		t.Fatalf("token owner after sale = %q, want dan.near", view.OwnerID)
	}
	if _, err := market.Service.GetSale(ctx, testNFTContractID, "1:1"); !errors.Is(err, marketerrors.ErrNoSale) {
		t.Fatalf("sale should be removed after settlement, got %v", err)
	}
}

// A revoked approval makes the settlement leg fail; the buyer gets the full
// deposit back and the listing survives for the owner to fix or remove.
func TestOfferRefundsBuyerWhenApprovalIsStale(t *testing.T) {
	ledger, market, funds := wireInMemory(t)
	ctx := context.Background()

	_, err := ledger.Service.CreateSeries(ctx, ledgerCaller(creatorID, "0.01"), ledgerports.CreateSeriesInput{
		Metadata: ledgerports.SeriesMetadata{Title: "cats"},
	})
	if err != nil {
		t.Fatalf("create series: %v", err)
	}
	if _, err := ledger.Service.MintSeries(ctx, ledgerCaller(creatorID, "0.01"), ledgerports.MintInput{
		SeriesTitle: "cats",
		ReceiverID:  creatorID,
	}); err != nil {
		t.Fatalf("mint: %v", err)
	}

	if err := market.Service.StorageDeposit(ctx, marketCaller(creatorID, "0.01"), ""); err != nil {
		t.Fatalf("storage deposit: %v", err)
	}
	msg := `{"sale_conditions":{"near":"1000000000000000000000000"}}`
	if _, err := ledger.Service.Approve(ctx, ledgerCaller(creatorID, "0.001"), ledgerports.ApproveInput{
		TokenID:   "1:1",
		AccountID: testMarketContractID,
		Msg:       &msg,
	}); err != nil {
		t.Fatalf("approve market: %v", err)
	}
	if err := ledger.Service.RevokeAll(ctx, oneYoctoCaller(creatorID), "1:1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	buyerBefore := funds.Balance("dan.near")
	_, err = market.Service.Offer(ctx, marketCaller("dan.near", "1"), testNFTContractID, "1:1")
	if !errors.Is(err, marketerrors.ErrSettlementFailure) {
		t.Fatalf("expected ErrSettlementFailure, got %v", err)
	}

	if got := funds.Balance("dan.near"); got.Cmp(buyerBefore) != 0 {
		t.Fatalf("buyer balance changed after failed settlement: %s", nearamount.Format(got))
	}
	if _, err := market.Service.GetSale(ctx, testNFTContractID, "1:1"); err != nil {
		t.Fatalf("listing should survive a failed settlement: %v", err)
	}
	view, found, err := ledger.Service.Token(ctx, "1:1")
	if err != nil || !found {
		t.Fatalf("token lookup: found=%v err=%v", found, err)
	}
	if view.OwnerID != creatorID {
		t.Fatalf("token owner = %q, want %q", view.OwnerID, creatorID)
	}
}

func TestNormalizeAddr(t *testing.T) {
	cases := map[string]string{
		"":      ":8080",
		"9090":  ":9090",
		":7070": ":7070",
	}
	for input, want := range cases {
		if got := normalizeAddr(input); got != want {
			t.Fatalf("normalizeAddr(%q) = %q, want %q", input, got, want)
		}
	}
}
