package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	saleengine "mintery/contexts/market-core/sale-engine"
	seriesledger "mintery/contexts/nft-core/series-ledger"
	"mintery/internal/shared/nearamount"

	"github.com/gaze-network/uint128"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "mintery/internal/platform/httpserver/docs"
)

// Funder credits a caller's attached deposit into the balance ledger before
// the entry point debits it, the way the host runtime attaches funds to a
// signed transaction.
type Funder interface {
	Deposit(ctx context.Context, accountID string, amount uint128.Uint128) error
}

type Server struct {
	mux          *http.ServeMux
	logger       *slog.Logger
	addr         string
	ledger       seriesledger.Module
	market       saleengine.Module
	funds        Funder
	legacyRoutes bool
}

func New(
	ledger seriesledger.Module,
	market saleengine.Module,
	funds Funder,
	logger *slog.Logger,
	addr string,
	legacyTypeRoutes bool,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:          http.NewServeMux(),
		logger:       logger,
		addr:         addr,
		ledger:       ledger,
		market:       market,
		funds:        funds,
		legacyRoutes: legacyTypeRoutes,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /nft/init", s.handleNFTInitialize)
	s.mux.HandleFunc("GET /nft/metadata", s.handleNFTContractMetadata)
	s.mux.HandleFunc("POST /nft/series", s.handleCreateSeries)
	s.mux.HandleFunc("POST /nft/series/cap-copies", s.handleCapCopies)
	s.mux.HandleFunc("GET /nft/series", s.handleListSeries)
	s.mux.HandleFunc("GET /nft/series/{series_title}", s.handleGetSeries)
	s.mux.HandleFunc("GET /nft/series/{series_title}/supply", s.handleSupplyForSeries)
	s.mux.HandleFunc("GET /nft/series/{series_title}/tokens", s.handleTokensBySeries)
	s.mux.HandleFunc("GET /nft/series-format", s.handleSeriesFormat)
	s.mux.HandleFunc("POST /nft/mint", s.handleMint)
	s.mux.HandleFunc("POST /nft/transfer", s.handleTransfer)
	s.mux.HandleFunc("POST /nft/transfer-payout", s.handleTransferPayout)
	s.mux.HandleFunc("POST /nft/approve", s.handleApprove)
	s.mux.HandleFunc("POST /nft/revoke", s.handleRevoke)
	s.mux.HandleFunc("GET /nft/approved", s.handleIsApproved)
	s.mux.HandleFunc("GET /nft/supply", s.handleTotalSupply)
	s.mux.HandleFunc("GET /nft/tokens", s.handleListTokens)
	s.mux.HandleFunc("GET /nft/tokens/{token_id}", s.handleGetToken)
	s.mux.HandleFunc("GET /nft/owners/{account_id}/supply", s.handleSupplyForOwner)
	s.mux.HandleFunc("GET /nft/owners/{account_id}/tokens", s.handleTokensForOwner)

	// The pre-series deployments called a series a "token type"; the aliases
	// keep those clients working.
	if s.legacyRoutes {
		s.mux.HandleFunc("POST /nft/types", s.handleCreateSeries)
		s.mux.HandleFunc("POST /nft/types/cap-copies", s.handleCapCopies)
		s.mux.HandleFunc("GET /nft/types", s.handleListSeries)
		s.mux.HandleFunc("GET /nft/types/{series_title}", s.handleGetSeries)
		s.mux.HandleFunc("GET /nft/types/{series_title}/supply", s.handleSupplyForSeries)
		s.mux.HandleFunc("GET /nft/types/{series_title}/tokens", s.handleTokensBySeries)
	}

	s.mux.HandleFunc("POST /market/init", s.handleMarketInitialize)
	s.mux.HandleFunc("POST /market/ft-token-ids", s.handleAddFTTokenIDs)
	s.mux.HandleFunc("GET /market/ft-token-ids", s.handleSupportedFTTokenIDs)
	s.mux.HandleFunc("POST /market/storage/deposit", s.handleStorageDeposit)
	s.mux.HandleFunc("POST /market/storage/withdraw", s.handleStorageWithdraw)
	s.mux.HandleFunc("GET /market/storage/paid", s.handleStoragePaid)
	s.mux.HandleFunc("GET /market/storage/minimum", s.handleStorageMinimum)
	s.mux.HandleFunc("POST /market/on-approve", s.handleOnApprove)
	s.mux.HandleFunc("POST /market/update-price", s.handleUpdatePrice)
	s.mux.HandleFunc("POST /market/remove-sale", s.handleRemoveSale)
	s.mux.HandleFunc("POST /market/offer", s.handleOffer)
	s.mux.HandleFunc("GET /market/sale", s.handleGetSale)
	s.mux.HandleFunc("GET /market/sales/supply", s.handleSupplySales)
	s.mux.HandleFunc("GET /market/owners/{account_id}/sales", s.handleSalesByOwner)
	s.mux.HandleFunc("GET /market/owners/{account_id}/supply", s.handleSupplyByOwner)
	s.mux.HandleFunc("GET /market/contracts/{nft_contract_id}/sales", s.handleSalesByNFTContract)
	s.mux.HandleFunc("GET /market/contracts/{nft_contract_id}/supply", s.handleSupplyByNFTContract)
}

// callerIdentity reads the transaction-context headers every signed call
// carries: the predecessor account, the originating signer (optional, defaults
// to the predecessor) and the attached deposit in yoctoNEAR.
func callerIdentity(r *http.Request) (accountID string, signerID string, deposit uint128.Uint128, ok bool, err error) {
	accountID = r.Header.Get("X-Predecessor-Id")
	if accountID == "" {
		return "", "", uint128.Zero, false, nil
	}
	signerID = r.Header.Get("X-Signer-Id")
	deposit = uint128.Zero
	if raw := r.Header.Get("X-Attached-Deposit"); raw != "" {
		deposit, err = nearamount.ParseYocto(raw)
		if err != nil {
			return "", "", uint128.Zero, false, err
		}
	}
	return accountID, signerID, deposit, true, nil
}

// creditDeposit books the attached deposit into the caller's balance so the
// entry point can charge storage or capture the purchase price from it.
func (s *Server) creditDeposit(ctx context.Context, accountID string, deposit uint128.Uint128) error {
	if s.funds == nil || deposit.IsZero() {
		return nil
	}
	return s.funds.Deposit(ctx, accountID, deposit)
}

// parsePage reads the from_index/limit pagination pair shared by the
// enumeration views. from_index travels as a string per the u64 wire form.
func parsePage(r *http.Request) (fromIndex uint64, limit int, err error) {
	query := r.URL.Query()
	if raw := query.Get("from_index"); raw != "" {
		fromIndex, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return 0, 0, err
		}
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, err
		}
	}
	return fromIndex, limit, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
