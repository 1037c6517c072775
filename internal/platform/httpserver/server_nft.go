package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	ledgererrors "mintery/contexts/nft-core/series-ledger/domain/errors"
	ledgerports "mintery/contexts/nft-core/series-ledger/ports"
	ledgerhttp "mintery/contexts/nft-core/series-ledger/transport/http"
)

func (s *Server) handleNFTInitialize(w http.ResponseWriter, r *http.Request) {
	var req ledgerhttp.InitializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeNFTError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.InitializeHandler(r.Context(), req)
	if err != nil {
		writeNFTDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNFTContractMetadata(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.ContractMetadataHandler(r.Context())
	if err != nil {
		writeNFTDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateSeries(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.nftCaller(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.CreateSeriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeNFTError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.CreateSeriesHandler(r.Context(), caller, req)
	if err != nil {
		writeNFTDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCapCopies(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.nftCaller(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.CapCopiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeNFTError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.CapCopiesHandler(r.Context(), caller, req.TokenSeriesTitle)
	if err != nil {
		writeNFTDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSeries(w http.ResponseWriter, r *http.Request) {
	fromIndex, limit, err := parsePage(r)
	if err != nil {
		writeNFTError(w, http.StatusBadRequest, "invalid_pagination", "from_index and limit must be integers")
		return
	}
	resp, err := s.ledger.Handler.SeriesListHandler(r.Context(), fromIndex, limit)
	if err != nil {
		writeNFTDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSeries(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.SeriesJSONHandler(r.Context(), r.PathValue("series_title"))
	if err != nil {
		writeNFTDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSupplyForSeries(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.SupplyForSeriesHandler(r.Context(), r.PathValue("series_title"))
	if err != nil {
		writeNFTDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTokensBySeries(w http.ResponseWriter, r *http.Request) {
	fromIndex, limit, err := parsePage(r)
	if err != nil {
		writeNFTError(w, http.StatusBadRequest, "invalid_pagination", "from_index and limit must be integers")
		return
	}
	resp, err := s.ledger.Handler.TokensBySeriesHandler(r.Context(), r.PathValue("series_title"), fromIndex, limit)
	if err != nil {
		writeNFTDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSeriesFormat(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Handler.SeriesFormatHandler())
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.nftCaller(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.MintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeNFTError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.MintHandler(r.Context(), caller, req)
	if err != nil {
		writeNFTDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.nftCaller(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeNFTError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.TransferHandler(r.Context(), caller, req)
	if err != nil {
		writeNFTDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTransferPayout(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.nftCaller(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.TransferPayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeNFTError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.TransferPayoutHandler(r.Context(), caller, req)
	if err != nil {
		writeNFTDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.nftCaller(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeNFTError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.ApproveHandler(r.Context(), caller, req)
	if err != nil {
		writeNFTDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.nftCaller(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.RevokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeNFTError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.RevokeHandler(r.Context(), caller, req)
	if err != nil {
		writeNFTDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIsApproved(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	tokenID := query.Get("token_id")
	accountID := query.Get("account_id")
	if tokenID == "" || accountID == "" {
		writeNFTError(w, http.StatusBadRequest, "missing_parameters", "token_id and account_id are required")
		return
	}
	var approvalID *uint64
	if raw := query.Get("approval_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeNFTError(w, http.StatusBadRequest, "invalid_approval_id", "approval_id must be an integer")
			return
		}
		approvalID = &parsed
	}
	resp, err := s.ledger.Handler.IsApprovedHandler(r.Context(), tokenID, accountID, approvalID)
	if err != nil {
		writeNFTDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTotalSupply(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.TotalSupplyHandler(r.Context())
	if err != nil {
		writeNFTDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	fromIndex, limit, err := parsePage(r)
	if err != nil {
		writeNFTError(w, http.StatusBadRequest, "invalid_pagination", "from_index and limit must be integers")
		return
	}
	resp, err := s.ledger.Handler.TokensHandler(r.Context(), fromIndex, limit)
	if err != nil {
		writeNFTDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.TokenHandler(r.Context(), r.PathValue("token_id"))
	if err != nil {
		writeNFTDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSupplyForOwner(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.SupplyForOwnerHandler(r.Context(), r.PathValue("account_id"))
	if err != nil {
		writeNFTDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTokensForOwner(w http.ResponseWriter, r *http.Request) {
	fromIndex, limit, err := parsePage(r)
	if err != nil {
		writeNFTError(w, http.StatusBadRequest, "invalid_pagination", "from_index and limit must be integers")
		return
	}
	resp, err := s.ledger.Handler.TokensForOwnerHandler(r.Context(), r.PathValue("account_id"), fromIndex, limit)
	if err != nil {
		writeNFTDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) nftCaller(w http.ResponseWriter, r *http.Request) (ledgerports.Caller, bool) {
	accountID, signerID, deposit, ok, err := callerIdentity(r)
	if err != nil {
		writeNFTError(w, http.StatusBadRequest, "invalid_deposit", "X-Attached-Deposit must be a yoctoNEAR integer")
		return ledgerports.Caller{}, false
	}
	if !ok {
		writeNFTError(w, http.StatusUnauthorized, "missing_caller", "X-Predecessor-Id header is required")
		return ledgerports.Caller{}, false
	}
	if err := s.creditDeposit(r.Context(), accountID, deposit); err != nil {
		writeNFTError(w, http.StatusInternalServerError, "deposit_failed", "attached deposit could not be credited")
		return ledgerports.Caller{}, false
	}
	return ledgerports.Caller{AccountID: accountID, SignerID: signerID, Deposit: deposit}, true
}

func writeNFTDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgererrors.ErrAlreadyInitialized):
		writeNFTError(w, http.StatusConflict, "already_initialized", err.Error())
	case errors.Is(err, ledgererrors.ErrNotInitialized):
		writeNFTError(w, http.StatusConflict, "not_initialized", err.Error())
	case errors.Is(err, ledgererrors.ErrUnauthorized):
		writeNFTError(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, ledgererrors.ErrTitleRequired),
		errors.Is(err, ledgererrors.ErrInvalidRoyalty),
		errors.Is(err, ledgererrors.ErrInvalidInput):
		writeNFTError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, ledgererrors.ErrDuplicateSeries):
		writeNFTError(w, http.StatusConflict, "duplicate_series", err.Error())
	case errors.Is(err, ledgererrors.ErrSeriesNotFound):
		writeNFTError(w, http.StatusNotFound, "series_not_found", err.Error())
	case errors.Is(err, ledgererrors.ErrTokenNotFound):
		writeNFTError(w, http.StatusNotFound, "token_not_found", err.Error())
	case errors.Is(err, ledgererrors.ErrSupplyExhausted):
		writeNFTError(w, http.StatusConflict, "supply_exhausted", err.Error())
	case errors.Is(err, ledgererrors.ErrInsufficientDeposit):
		writeNFTError(w, http.StatusPaymentRequired, "insufficient_deposit", err.Error())
	default:
		writeNFTError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeNFTError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
