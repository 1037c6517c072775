package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	marketerrors "mintery/contexts/market-core/sale-engine/domain/errors"
	marketports "mintery/contexts/market-core/sale-engine/ports"
	markethttp "mintery/contexts/market-core/sale-engine/transport/http"
)

func (s *Server) handleMarketInitialize(w http.ResponseWriter, r *http.Request) {
	var req markethttp.InitializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.market.Handler.InitializeHandler(r.Context(), req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddFTTokenIDs(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.marketCaller(w, r)
	if !ok {
		return
	}
	var req markethttp.AddFTTokenIDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.market.Handler.AddFTTokenIDsHandler(r.Context(), caller, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSupportedFTTokenIDs(w http.ResponseWriter, r *http.Request) {
	resp, err := s.market.Handler.SupportedFTTokenIDsHandler(r.Context())
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStorageDeposit(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.marketCaller(w, r)
	if !ok {
		return
	}
	var req markethttp.StorageDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.market.Handler.StorageDepositHandler(r.Context(), caller, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStorageWithdraw(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.marketCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.market.Handler.StorageWithdrawHandler(r.Context(), caller)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStoragePaid(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeMarketError(w, http.StatusBadRequest, "missing_parameters", "account_id is required")
		return
	}
	resp, err := s.market.Handler.StoragePaidHandler(r.Context(), accountID)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStorageMinimum(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.market.Handler.StorageMinimumHandler())
}

func (s *Server) handleOnApprove(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.marketCaller(w, r)
	if !ok {
		return
	}
	var req markethttp.OnApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	// The caller is the NFT contract relaying the approval.
	req.NFTContractID = caller.AccountID
	resp, err := s.market.Handler.OnApproveHandler(r.Context(), caller, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdatePrice(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.marketCaller(w, r)
	if !ok {
		return
	}
	var req markethttp.UpdatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.market.Handler.UpdatePriceHandler(r.Context(), caller, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveSale(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.marketCaller(w, r)
	if !ok {
		return
	}
	var req markethttp.RemoveSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.market.Handler.RemoveSaleHandler(r.Context(), caller, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOffer(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.marketCaller(w, r)
	if !ok {
		return
	}
	var req markethttp.OfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.market.Handler.OfferHandler(r.Context(), caller, req)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSale(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	nftContractID := query.Get("nft_contract_id")
	tokenID := query.Get("token_id")
	if nftContractID == "" || tokenID == "" {
		writeMarketError(w, http.StatusBadRequest, "missing_parameters", "nft_contract_id and token_id are required")
		return
	}
	resp, err := s.market.Handler.GetSaleHandler(r.Context(), nftContractID, tokenID)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSupplySales(w http.ResponseWriter, r *http.Request) {
	resp, err := s.market.Handler.SupplySalesHandler(r.Context())
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSalesByOwner(w http.ResponseWriter, r *http.Request) {
	fromIndex, limit, err := parsePage(r)
	if err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_pagination", "from_index and limit must be integers")
		return
	}
	resp, err := s.market.Handler.SalesByOwnerHandler(r.Context(), r.PathValue("account_id"), fromIndex, limit)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSupplyByOwner(w http.ResponseWriter, r *http.Request) {
	resp, err := s.market.Handler.SupplyByOwnerHandler(r.Context(), r.PathValue("account_id"))
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSalesByNFTContract(w http.ResponseWriter, r *http.Request) {
	fromIndex, limit, err := parsePage(r)
	if err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_pagination", "from_index and limit must be integers")
		return
	}
	resp, err := s.market.Handler.SalesByNFTContractHandler(r.Context(), r.PathValue("nft_contract_id"), fromIndex, limit)
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSupplyByNFTContract(w http.ResponseWriter, r *http.Request) {
	resp, err := s.market.Handler.SupplyByNFTContractHandler(r.Context(), r.PathValue("nft_contract_id"))
	if err != nil {
		writeMarketDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) marketCaller(w http.ResponseWriter, r *http.Request) (marketports.Caller, bool) {
	accountID, signerID, deposit, ok, err := callerIdentity(r)
	if err != nil {
		writeMarketError(w, http.StatusBadRequest, "invalid_deposit", "X-Attached-Deposit must be a yoctoNEAR integer")
		return marketports.Caller{}, false
	}
	if !ok {
		writeMarketError(w, http.StatusUnauthorized, "missing_caller", "X-Predecessor-Id header is required")
		return marketports.Caller{}, false
	}
	if err := s.creditDeposit(r.Context(), accountID, deposit); err != nil {
		writeMarketError(w, http.StatusInternalServerError, "deposit_failed", "attached deposit could not be credited")
		return marketports.Caller{}, false
	}
	return marketports.Caller{AccountID: accountID, SignerID: signerID, Deposit: deposit}, true
}

func writeMarketDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, marketerrors.ErrAlreadyInitialized):
		writeMarketError(w, http.StatusConflict, "already_initialized", err.Error())
	case errors.Is(err, marketerrors.ErrNotInitialized):
		writeMarketError(w, http.StatusConflict, "not_initialized", err.Error())
	case errors.Is(err, marketerrors.ErrUnauthorized):
		writeMarketError(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, marketerrors.ErrInvalidInput):
		writeMarketError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, marketerrors.ErrNoSale):
		writeMarketError(w, http.StatusNotFound, "sale_not_found", err.Error())
	case errors.Is(err, marketerrors.ErrSelfPurchase):
		writeMarketError(w, http.StatusBadRequest, "self_purchase", err.Error())
	case errors.Is(err, marketerrors.ErrUnsupportedCurrency):
		writeMarketError(w, http.StatusBadRequest, "unsupported_ft_token", err.Error())
	case errors.Is(err, marketerrors.ErrPriceMismatch):
		writeMarketError(w, http.StatusPaymentRequired, "price_mismatch", err.Error())
	case errors.Is(err, marketerrors.ErrInsufficientDeposit):
		writeMarketError(w, http.StatusPaymentRequired, "insufficient_deposit", err.Error())
	case errors.Is(err, marketerrors.ErrInsufficientStorage):
		writeMarketError(w, http.StatusPaymentRequired, "insufficient_storage", err.Error())
	case errors.Is(err, marketerrors.ErrSettlementFailure):
		writeMarketError(w, http.StatusBadGateway, "settlement_failed", err.Error())
	default:
		writeMarketError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeMarketError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, markethttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
