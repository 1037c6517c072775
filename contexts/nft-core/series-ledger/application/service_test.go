package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	seriesledger "mintery/contexts/nft-core/series-ledger"
	domainerrors "mintery/contexts/nft-core/series-ledger/domain/errors"
	"mintery/contexts/nft-core/series-ledger/ports"
	"mintery/internal/platform/bank"
	"mintery/internal/shared/nearamount"
)

const nftContractID = "nft.test.near"

func newLedger(t *testing.T) (seriesledger.Module, *bank.Bank) {
	t.Helper()

	funds := bank.New()
	for _, account := range []string{"alice.near", "bob.near", "carol.near", "market.test.near"} {
		if err := funds.Deposit(context.Background(), account, nearamount.MustParse("100")); err != nil {
			t.Fatalf("seed balance: %v", err)
		}
	}

	module := seriesledger.NewInMemoryModule(nftContractID, funds, nil)
	if err := module.Service.InitializeDefault(context.Background(), "alice.near"); err != nil {
		t.Fatalf("initialize ledger: %v", err)
	}
	return module, funds
}

func caller(accountID string, deposit string) ports.Caller {
	return ports.Caller{AccountID: accountID, Deposit: nearamount.MustParse(deposit)}
}

func createSeries(
	t *testing.T,
	module seriesledger.Module,
	owner string,
	title string,
	copies *uint64,
	royalty map[string]uint32,
) ports.Series {
	t.Helper()

	series, err := module.Service.CreateSeries(context.Background(), caller(owner, "0.01"), ports.CreateSeriesInput{
		Metadata: ports.SeriesMetadata{Title: title, Copies: copies},
		Royalty:  royalty,
	})
	if err != nil {
		t.Fatalf("create series %q: %v", title, err)
	}
	return series
}

func uint64ptr(v uint64) *uint64 { return &v }

func TestInitializeRejectsSecondInvocation(t *testing.T) {
	module, _ := newLedger(t)

	err := module.Service.Initialize(context.Background(), "bob.near", ports.ContractMetadata{
		Spec: "nft-1.0.0", Name: "Other", Symbol: "OTH",
	})
	if !errors.Is(err, domainerrors.ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}

	metadata, err := module.Service.ContractMetadata(context.Background())
	if err != nil {
		t.Fatalf("contract metadata: %v", err)
	}
	if metadata.Name != "NFT Series" {
		t.Fatalf("metadata overwritten by failed re-init: %q", metadata.Name)
	}
}

func TestCreateSeriesAssignsSequentialIDs(t *testing.T) {
	module, _ := newLedger(t)

	first := createSeries(t, module, "alice.near", "dogs", nil, nil)
	second := createSeries(t, module, "bob.near", "cats", nil, nil)
	if first.SeriesID != 1 || second.SeriesID != 2 {
		t.Fatalf("expected series ids 1 and 2, got %d and %d", first.SeriesID, second.SeriesID)
	}
}

func TestCreateSeriesRejectsDuplicateTitle(t *testing.T) {
	module, _ := newLedger(t)
	createSeries(t, module, "alice.near", "dogs", nil, nil)

	_, err := module.Service.CreateSeries(context.Background(), caller("bob.near", "0.01"), ports.CreateSeriesInput{
		Metadata: ports.SeriesMetadata{Title: "dogs"},
	})
	if !errors.Is(err, domainerrors.ErrDuplicateSeries) {
		t.Fatalf("expected ErrDuplicateSeries, got %v", err)
	}
}

func TestCreateSeriesRejectsMissingTitleAndExcessRoyalty(t *testing.T) {
	module, _ := newLedger(t)

	_, err := module.Service.CreateSeries(context.Background(), caller("alice.near", "0.01"), ports.CreateSeriesInput{
		Metadata: ports.SeriesMetadata{Title: "   "},
	})
	if !errors.Is(err, domainerrors.ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}

	_, err = module.Service.CreateSeries(context.Background(), caller("alice.near", "0.01"), ports.CreateSeriesInput{
		Metadata: ports.SeriesMetadata{Title: "dogs"},
		Royalty:  map[string]uint32{"bob.near": 6000, "carol.near": 5000},
	})
	if !errors.Is(err, domainerrors.ErrInvalidRoyalty) {
		t.Fatalf("expected ErrInvalidRoyalty, got %v", err)
	}
}

func TestCreateSeriesChargesOnlyStorageCost(t *testing.T) {
	module, funds := newLedger(t)
	before := funds.Balance("alice.near")

	// Deposit far above the storage cost: only the cost moves.
	_, err := module.Service.CreateSeries(context.Background(), caller("alice.near", "5"), ports.CreateSeriesInput{
		Metadata: ports.SeriesMetadata{Title: "dogs"},
	})
	if err != nil {
		t.Fatalf("create series: %v", err)
	}

	spent := before.Sub(funds.Balance("alice.near"))
	if spent.Cmp(nearamount.MustParse("0.01")) != 0 {
		t.Fatalf("expected 0.01 charged, spent %s", nearamount.Format(spent))
	}
	if funds.Balance(nftContractID).Cmp(nearamount.MustParse("0.01")) != 0 {
		t.Fatalf("contract balance mismatch: %s", nearamount.Format(funds.Balance(nftContractID)))
	}
}

func TestCreateSeriesRejectsInsufficientDeposit(t *testing.T) {
	module, _ := newLedger(t)

	_, err := module.Service.CreateSeries(context.Background(), caller("alice.near", "0.001"), ports.CreateSeriesInput{
		Metadata: ports.SeriesMetadata{Title: "dogs"},
	})
	if !errors.Is(err, domainerrors.ErrInsufficientDeposit) {
		t.Fatalf("expected ErrInsufficientDeposit, got %v", err)
	}
}

func TestMintAssignsTokenIDAndEditionTitle(t *testing.T) {
	module, _ := newLedger(t)
	createSeries(t, module, "alice.near", "dogs", uint64ptr(10), nil)

	view, err := module.Service.MintSeries(context.Background(), caller("alice.near", "0.01"), ports.MintInput{
		SeriesTitle: "dogs",
		ReceiverID:  "bob.near",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if view.TokenID != "1:1" {
		t.Fatalf("expected token id 1:1, got %s", view.TokenID)
	}
	if view.Title != "dogs — 1/10" {
		t.Fatalf("unexpected edition title: %q", view.Title)
	}
	if view.OwnerID != "bob.near" {
		t.Fatalf("expected owner bob.near, got %s", view.OwnerID)
	}
}

func TestMintUncappedSeriesKeepsBareTitle(t *testing.T) {
	module, _ := newLedger(t)
	createSeries(t, module, "alice.near", "open edition", nil, nil)

	view, err := module.Service.MintSeries(context.Background(), caller("alice.near", "0.01"), ports.MintInput{
		SeriesTitle: "open edition",
		ReceiverID:  "alice.near",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if view.Title != "open edition" {
		t.Fatalf("uncapped series should use bare title, got %q", view.Title)
	}
	if view.Copies != nil {
		t.Fatalf("uncapped series should have nil copies in view")
	}
}

func TestMintRequiresSeriesOwner(t *testing.T) {
	module, _ := newLedger(t)
	createSeries(t, module, "alice.near", "dogs", nil, nil)

	_, err := module.Service.MintSeries(context.Background(), caller("bob.near", "0.01"), ports.MintInput{
		SeriesTitle: "dogs",
		ReceiverID:  "bob.near",
	})
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestMintStopsAtSupplyCap(t *testing.T) {
	module, _ := newLedger(t)
	createSeries(t, module, "alice.near", "dogs", uint64ptr(2), nil)

	for i := 0; i < 2; i++ {
		if _, err := module.Service.MintSeries(context.Background(), caller("alice.near", "0.01"), ports.MintInput{
			SeriesTitle: "dogs",
			ReceiverID:  "alice.near",
		}); err != nil {
			t.Fatalf("mint %d: %v", i+1, err)
		}
	}

	_, err := module.Service.MintSeries(context.Background(), caller("alice.near", "0.01"), ports.MintInput{
		SeriesTitle: "dogs",
		ReceiverID:  "alice.near",
	})
	if !errors.Is(err, domainerrors.ErrSupplyExhausted) {
		t.Fatalf("expected ErrSupplyExhausted, got %v", err)
	}
}

func TestCapCopiesFreezesSupplyWithoutRetitlingMintedTokens(t *testing.T) {
	module, _ := newLedger(t)
	createSeries(t, module, "alice.near", "dogs", uint64ptr(4), nil)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := module.Service.MintSeries(ctx, caller("alice.near", "0.01"), ports.MintInput{
			SeriesTitle: "dogs",
			ReceiverID:  "alice.near",
		}); err != nil {
			t.Fatalf("mint %d: %v", i+1, err)
		}
	}

	series, err := module.Service.CapCopies(ctx, caller("alice.near", "0.000000000000000000000001"), "dogs")
	if err != nil {
		t.Fatalf("cap copies: %v", err)
	}
	if series.Metadata.Copies == nil || *series.Metadata.Copies != 2 {
		t.Fatalf("expected copies capped at 2, got %v", series.Metadata.Copies)
	}

	// Titles keep the copies count observed at mint time.
	view, found, err := module.Service.Token(ctx, "1:1")
	if err != nil || !found {
		t.Fatalf("token 1:1 lookup: found=%v err=%v", found, err)
	}
	if view.Title != "dogs — 1/4" {
		t.Fatalf("capping must not rewrite minted titles, got %q", view.Title)
	}

	_, err = module.Service.MintSeries(ctx, caller("alice.near", "0.01"), ports.MintInput{
		SeriesTitle: "dogs",
		ReceiverID:  "alice.near",
	})
	if !errors.Is(err, domainerrors.ErrSupplyExhausted) {
		t.Fatalf("expected ErrSupplyExhausted after cap, got %v", err)
	}
}

func TestCapCopiesRequiresSeriesOwner(t *testing.T) {
	module, _ := newLedger(t)
	createSeries(t, module, "alice.near", "dogs", uint64ptr(4), nil)

	_, err := module.Service.CapCopies(context.Background(), caller("bob.near", "0.01"), "dogs")
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTransferByOwnerClearsApprovals(t *testing.T) {
	module, _ := newLedger(t)
	createSeries(t, module, "alice.near", "dogs", nil, nil)
	ctx := context.Background()

	if _, err := module.Service.MintSeries(ctx, caller("alice.near", "0.01"), ports.MintInput{
		SeriesTitle: "dogs",
		ReceiverID:  "alice.near",
	}); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := module.Service.Approve(ctx, caller("alice.near", "0.001"), ports.ApproveInput{
		TokenID:   "1:1",
		AccountID: "market.test.near",
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if err := module.Service.Transfer(ctx, caller("alice.near", "1"), ports.TransferInput{
		ReceiverID: "bob.near",
		TokenID:    "1:1",
	}); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	view, found, err := module.Service.Token(ctx, "1:1")
	if err != nil || !found {
		t.Fatalf("token lookup: found=%v err=%v", found, err)
	}
	if view.OwnerID != "bob.near" {
		t.Fatalf("expected owner bob.near, got %s", view.OwnerID)
	}
	if len(view.Approvals) != 0 {
		t.Fatalf("expected approvals cleared on transfer, got %v", view.Approvals)
	}
}

func TestTransferRequiresYoctoDeposit(t *testing.T) {
	module, _ := newLedger(t)
	createSeries(t, module, "alice.near", "dogs", nil, nil)
	ctx := context.Background()

	if _, err := module.Service.MintSeries(ctx, caller("alice.near", "0.01"), ports.MintInput{
		SeriesTitle: "dogs",
		ReceiverID:  "alice.near",
	}); err != nil {
		t.Fatalf("mint: %v", err)
	}

	err := module.Service.Transfer(ctx, ports.Caller{AccountID: "alice.near"}, ports.TransferInput{
		ReceiverID: "bob.near",
		TokenID:    "1:1",
	})
	if !errors.Is(err, domainerrors.ErrInsufficientDeposit) {
		t.Fatalf("expected ErrInsufficientDeposit with zero deposit, got %v", err)
	}
}

func TestTransferByApprovedAccountChecksApprovalID(t *testing.T) {
	module, _ := newLedger(t)
	createSeries(t, module, "alice.near", "dogs", nil, nil)
	ctx := context.Background()

	if _, err := module.Service.MintSeries(ctx, caller("alice.near", "0.01"), ports.MintInput{
		SeriesTitle: "dogs",
		ReceiverID:  "alice.near",
	}); err != nil {
		t.Fatalf("mint: %v", err)
	}
	approvalID, err := module.Service.Approve(ctx, caller("alice.near", "0.001"), ports.ApproveInput{
		TokenID:   "1:1",
		AccountID: "market.test.near",
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	wrong := approvalID + 7
	err = module.Service.Transfer(ctx, caller("market.test.near", "1"), ports.TransferInput{
		ReceiverID: "bob.near",
		TokenID:    "1:1",
		ApprovalID: &wrong,
	})
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized on wrong approval id, got %v", err)
	}

	if err := module.Service.Transfer(ctx, caller("market.test.near", "1"), ports.TransferInput{
		ReceiverID: "bob.near",
		TokenID:    "1:1",
		ApprovalID: &approvalID,
	}); err != nil {
		t.Fatalf("transfer with correct approval id: %v", err)
	}
}

func TestApprovalIDsNeverReusedAfterTransfer(t *testing.T) {
	module, _ := newLedger(t)
	createSeries(t, module, "alice.near", "dogs", nil, nil)
	ctx := context.Background()

	if _, err := module.Service.MintSeries(ctx, caller("alice.near", "0.01"), ports.MintInput{
		SeriesTitle: "dogs",
		ReceiverID:  "alice.near",
	}); err != nil {
		t.Fatalf("mint: %v", err)
	}

	first, err := module.Service.Approve(ctx, caller("alice.near", "0.001"), ports.ApproveInput{
		TokenID:   "1:1",
		AccountID: "market.test.near",
	})
	if err != nil {
		t.Fatalf("first approve: %v", err)
	}
	if err := module.Service.Transfer(ctx, caller("alice.near", "1"), ports.TransferInput{
		ReceiverID: "bob.near",
		TokenID:    "1:1",
	}); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	second, err := module.Service.Approve(ctx, caller("bob.near", "0.001"), ports.ApproveInput{
		TokenID:   "1:1",
		AccountID: "carol.near",
	})
	if err != nil {
		t.Fatalf("second approve: %v", err)
	}
	if second <= first {
		t.Fatalf("approval ids must keep climbing across transfers: first=%d second=%d", first, second)
	}
}

func TestRevokeMissingApprovalIsNoOp(t *testing.T) {
	module, _ := newLedger(t)
	createSeries(t, module, "alice.near", "dogs", nil, nil)
	ctx := context.Background()

	if _, err := module.Service.MintSeries(ctx, caller("alice.near", "0.01"), ports.MintInput{
		SeriesTitle: "dogs",
		ReceiverID:  "alice.near",
	}); err != nil {
		t.Fatalf("mint: %v", err)
	}

	if err := module.Service.Revoke(ctx, caller("alice.near", "1"), "1:1", "nobody.near"); err != nil {
		t.Fatalf("revoking absent approval should be a no-op, got %v", err)
	}
}

func TestTransferPayoutSplitsRoyaltyAndPaysSellerRemainder(t *testing.T) {
	module, _ := newLedger(t)
	createSeries(t, module, "alice.near", "dogs", nil, map[string]uint32{"carol.near": 1000})
	ctx := context.Background()

	if _, err := module.Service.MintSeries(ctx, caller("alice.near", "0.01"), ports.MintInput{
		SeriesTitle: "dogs",
		ReceiverID:  "alice.near",
	}); err != nil {
		t.Fatalf("mint: %v", err)
	}
	approvalID, err := module.Service.Approve(ctx, caller("alice.near", "0.001"), ports.ApproveInput{
		TokenID:   "1:1",
		AccountID: "market.test.near",
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	price := nearamount.MustParse("1")
	payout, previousOwner, err := module.Service.TransferPayout(ctx, caller("market.test.near", "1"), ports.TransferPayoutInput{
		ReceiverID: "bob.near",
		TokenID:    "1:1",
		ApprovalID: approvalID,
		Balance:    &price,
	})
	if err != nil {
		t.Fatalf("transfer payout: %v", err)
	}
	if previousOwner != "alice.near" {
		t.Fatalf("expected previous owner alice.near, got %s", previousOwner)
	}
	if got := payout.Payout["carol.near"]; got.Cmp(nearamount.MustParse("0.1")) != 0 {
		t.Fatalf("expected carol royalty 0.1, got %s", nearamount.Format(got))
	}
	if got := payout.Payout["alice.near"]; got.Cmp(nearamount.MustParse("0.9")) != 0 {
		t.Fatalf("expected seller remainder 0.9, got %s", nearamount.Format(got))
	}
}

func TestTransferPayoutSellerInRoyaltyGetsRemainderOnly(t *testing.T) {
	module, _ := newLedger(t)
	// Seller appears in the royalty map; their bps entry is skipped and they
	// collect the remainder instead.
	createSeries(t, module, "alice.near", "dogs", nil, map[string]uint32{
		"alice.near": 2000,
		"carol.near": 500,
	})
	ctx := context.Background()

	if _, err := module.Service.MintSeries(ctx, caller("alice.near", "0.01"), ports.MintInput{
		SeriesTitle: "dogs",
		ReceiverID:  "alice.near",
	}); err != nil {
		t.Fatalf("mint: %v", err)
	}
	approvalID, err := module.Service.Approve(ctx, caller("alice.near", "0.001"), ports.ApproveInput{
		TokenID:   "1:1",
		AccountID: "market.test.near",
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	price := nearamount.MustParse("1")
	payout, _, err := module.Service.TransferPayout(ctx, caller("market.test.near", "1"), ports.TransferPayoutInput{
		ReceiverID: "bob.near",
		TokenID:    "1:1",
		ApprovalID: approvalID,
		Balance:    &price,
	})
	if err != nil {
		t.Fatalf("transfer payout: %v", err)
	}
	if got := payout.Payout["carol.near"]; got.Cmp(nearamount.MustParse("0.05")) != 0 {
		t.Fatalf("expected carol share 0.05, got %s", nearamount.Format(got))
	}
	if got := payout.Payout["alice.near"]; got.Cmp(nearamount.MustParse("0.95")) != 0 {
		t.Fatalf("expected seller remainder 0.95, got %s", nearamount.Format(got))
	}
}

func TestTransferPayoutRejectsTooManyRoyaltyAccounts(t *testing.T) {
	module, _ := newLedger(t)
	createSeries(t, module, "alice.near", "dogs", nil, map[string]uint32{
		"bob.near":   100,
		"carol.near": 100,
	})
	ctx := context.Background()

	if _, err := module.Service.MintSeries(ctx, caller("alice.near", "0.01"), ports.MintInput{
		SeriesTitle: "dogs",
		ReceiverID:  "alice.near",
	}); err != nil {
		t.Fatalf("mint: %v", err)
	}
	approvalID, err := module.Service.Approve(ctx, caller("alice.near", "0.001"), ports.ApproveInput{
		TokenID:   "1:1",
		AccountID: "market.test.near",
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	price := nearamount.MustParse("1")
	maxLen := uint32(1)
	_, _, err = module.Service.TransferPayout(ctx, caller("market.test.near", "1"), ports.TransferPayoutInput{
		ReceiverID:   "bob.near",
		TokenID:      "1:1",
		ApprovalID:   approvalID,
		Balance:      &price,
		MaxLenPayout: &maxLen,
	})
	if !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput when royalty exceeds max_len_payout, got %v", err)
	}
}

func TestApproveForwardsNoticeToReceiver(t *testing.T) {
	module, _ := newLedger(t)
	receiver := &captureReceiver{}
	module.Service.SetApprovalReceiver(receiver)
	createSeries(t, module, "alice.near", "dogs", nil, nil)
	ctx := context.Background()

	if _, err := module.Service.MintSeries(ctx, caller("alice.near", "0.01"), ports.MintInput{
		SeriesTitle: "dogs",
		ReceiverID:  "alice.near",
	}); err != nil {
		t.Fatalf("mint: %v", err)
	}

	msg := `{"sale_conditions":{"near":"1000000000000000000000000"}}`
	approvalID, err := module.Service.Approve(ctx, caller("alice.near", "0.001"), ports.ApproveInput{
		TokenID:   "1:1",
		AccountID: "market.test.near",
		Msg:       &msg,
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	if len(receiver.notices) != 1 {
		t.Fatalf("expected one forwarded notice, got %d", len(receiver.notices))
	}
	notice := receiver.notices[0]
	if notice.NFTContractID != nftContractID || notice.TokenID != "1:1" || notice.ApprovalID != approvalID {
		t.Fatalf("unexpected notice: %+v", notice)
	}
	if notice.Msg != msg {
		t.Fatalf("msg not forwarded verbatim: %q", notice.Msg)
	}
}

func TestApproveWithoutMsgSkipsReceiver(t *testing.T) {
	module, _ := newLedger(t)
	receiver := &captureReceiver{}
	module.Service.SetApprovalReceiver(receiver)
	createSeries(t, module, "alice.near", "dogs", nil, nil)
	ctx := context.Background()

	if _, err := module.Service.MintSeries(ctx, caller("alice.near", "0.01"), ports.MintInput{
		SeriesTitle: "dogs",
		ReceiverID:  "alice.near",
	}); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := module.Service.Approve(ctx, caller("alice.near", "0.001"), ports.ApproveInput{
		TokenID:   "1:1",
		AccountID: "market.test.near",
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if len(receiver.notices) != 0 {
		t.Fatalf("approve without msg must not notify the receiver")
	}
}

func TestMintEmitsNEP171EventToOutbox(t *testing.T) {
	module, _ := newLedger(t)
	createSeries(t, module, "alice.near", "dogs", nil, nil)
	ctx := context.Background()

	if _, err := module.Service.MintSeries(ctx, caller("alice.near", "0.01"), ports.MintInput{
		SeriesTitle: "dogs",
		ReceiverID:  "bob.near",
	}); err != nil {
		t.Fatalf("mint: %v", err)
	}

	outbox, err := module.Store.ListPendingOutbox(ctx, 50)
	if err != nil {
		t.Fatalf("list outbox: %v", err)
	}
	var found bool
	for _, msg := range outbox {
		if msg.EventType != "nft_mint" {
			continue
		}
		found = true
		var envelope struct {
			PartitionKey string          `json:"partition_key"`
			Data         json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if envelope.PartitionKey != "1:1" {
			t.Fatalf("expected partition key 1:1, got %s", envelope.PartitionKey)
		}
		var event struct {
			Standard string `json:"standard"`
			Event    string `json:"event"`
		}
		if err := json.Unmarshal(envelope.Data, &event); err != nil {
			t.Fatalf("decode event payload: %v", err)
		}
		if event.Standard != "nep171" || event.Event != "nft_mint" {
			t.Fatalf("unexpected event payload: %+v", event)
		}
	}
	if !found {
		t.Fatalf("expected nft_mint event in outbox")
	}
}

func TestEnumerationViews(t *testing.T) {
	module, _ := newLedger(t)
	createSeries(t, module, "alice.near", "dogs", uint64ptr(5), nil)
	ctx := context.Background()

	receivers := []string{"alice.near", "bob.near", "alice.near"}
	for _, receiverID := range receivers {
		if _, err := module.Service.MintSeries(ctx, caller("alice.near", "0.01"), ports.MintInput{
			SeriesTitle: "dogs",
			ReceiverID:  receiverID,
		}); err != nil {
			t.Fatalf("mint for %s: %v", receiverID, err)
		}
	}

	total, err := module.Service.TotalSupply(ctx)
	if err != nil || total != 3 {
		t.Fatalf("total supply: got %d err=%v", total, err)
	}
	aliceSupply, err := module.Service.SupplyForOwner(ctx, "alice.near")
	if err != nil || aliceSupply != 2 {
		t.Fatalf("alice supply: got %d err=%v", aliceSupply, err)
	}
	seriesSupply, err := module.Service.SupplyForSeries(ctx, "dogs")
	if err != nil || seriesSupply != 3 {
		t.Fatalf("series supply: got %d err=%v", seriesSupply, err)
	}

	page, err := module.Service.Tokens(ctx, 1, 2)
	if err != nil {
		t.Fatalf("tokens page: %v", err)
	}
	if len(page) != 2 || page[0].TokenID != "1:2" || page[1].TokenID != "1:3" {
		t.Fatalf("unexpected token page: %+v", page)
	}

	owned, err := module.Service.TokensForOwner(ctx, "bob.near", 0, 10)
	if err != nil {
		t.Fatalf("tokens for owner: %v", err)
	}
	if len(owned) != 1 || owned[0].TokenID != "1:2" {
		t.Fatalf("unexpected owner tokens: %+v", owned)
	}
}

func TestSeriesFormatExposesDelimiters(t *testing.T) {
	module, _ := newLedger(t)

	tokenDelim, titleDelim, editionDelim := module.Service.SeriesFormat()
	if tokenDelim != ":" || titleDelim != " — " || editionDelim != "/" {
		t.Fatalf("unexpected delimiters: %q %q %q", tokenDelim, titleDelim, editionDelim)
	}
}

type captureReceiver struct {
	notices []ports.ApprovalNotice
}

func (r *captureReceiver) OnApprove(_ context.Context, notice ports.ApprovalNotice) error {
	r.notices = append(r.notices, notice)
	return nil
}
