package httpadapter

import (
	"context"
	"log/slog"
	"strconv"

	"mintery/contexts/nft-core/series-ledger/application"
	domainerrors "mintery/contexts/nft-core/series-ledger/domain/errors"
	"mintery/contexts/nft-core/series-ledger/ports"
	httptransport "mintery/contexts/nft-core/series-ledger/transport/http"
	"mintery/internal/shared/nearamount"
)

// Handler adapts the transaction-submission surface onto the contract entry
// points. Caller identity and attached deposit arrive with every call.
type Handler struct {
	Service *application.Service
	Logger  *slog.Logger
}

func (h Handler) InitializeHandler(
	ctx context.Context,
	req httptransport.InitializeRequest,
) (httptransport.StatusResponse, error) {
	var err error
	if req.Metadata == nil {
		err = h.Service.InitializeDefault(ctx, req.OwnerID)
	} else {
		err = h.Service.Initialize(ctx, req.OwnerID, ports.ContractMetadata{
			Spec:      req.Metadata.Spec,
			Name:      req.Metadata.Name,
			Symbol:    req.Metadata.Symbol,
			Icon:      req.Metadata.Icon,
			BaseURI:   req.Metadata.BaseURI,
			Reference: req.Metadata.Reference,
		})
	}
	if err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{Status: "success"}, nil
}

func (h Handler) CreateSeriesHandler(
	ctx context.Context,
	caller ports.Caller,
	req httptransport.CreateSeriesRequest,
) (httptransport.SeriesResponse, error) {
	series, err := h.Service.CreateSeries(ctx, caller, ports.CreateSeriesInput{
		Metadata: ports.SeriesMetadata{
			Title:       req.Metadata.Title,
			Description: req.Metadata.Description,
			Media:       req.Metadata.Media,
			Reference:   req.Metadata.Reference,
			Copies:      req.Metadata.Copies,
		},
		Royalty: req.Royalty,
	})
	if err != nil {
		return httptransport.SeriesResponse{}, err
	}
	return httptransport.SeriesResponse{Status: "success", Data: toSeriesDTO(seriesViewOf(series))}, nil
}

func (h Handler) CapCopiesHandler(
	ctx context.Context,
	caller ports.Caller,
	seriesTitle string,
) (httptransport.SeriesResponse, error) {
	series, err := h.Service.CapCopies(ctx, caller, seriesTitle)
	if err != nil {
		return httptransport.SeriesResponse{}, err
	}
	return httptransport.SeriesResponse{Status: "success", Data: toSeriesDTO(seriesViewOf(series))}, nil
}

func (h Handler) MintHandler(
	ctx context.Context,
	caller ports.Caller,
	req httptransport.MintRequest,
) (httptransport.TokenResponse, error) {
	view, err := h.Service.MintSeries(ctx, caller, ports.MintInput{
		SeriesTitle: req.TokenSeriesTitle,
		ReceiverID:  req.ReceiverID,
	})
	if err != nil {
		return httptransport.TokenResponse{}, err
	}
	dto := toTokenDTO(view)
	return httptransport.TokenResponse{Status: "success", Data: &dto}, nil
}

func (h Handler) TransferHandler(
	ctx context.Context,
	caller ports.Caller,
	req httptransport.TransferRequest,
) (httptransport.StatusResponse, error) {
	err := h.Service.Transfer(ctx, caller, ports.TransferInput{
		ReceiverID: req.ReceiverID,
		TokenID:    req.TokenID,
		ApprovalID: req.ApprovalID,
		Memo:       req.Memo,
	})
	if err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{Status: "success"}, nil
}

func (h Handler) TransferPayoutHandler(
	ctx context.Context,
	caller ports.Caller,
	req httptransport.TransferPayoutRequest,
) (httptransport.PayoutResponse, error) {
	input := ports.TransferPayoutInput{
		ReceiverID:   req.ReceiverID,
		TokenID:      req.TokenID,
		ApprovalID:   req.ApprovalID,
		MaxLenPayout: req.MaxLenPayout,
	}
	if req.Balance != nil {
		balance, err := nearamount.ParseYocto(*req.Balance)
		if err != nil {
			return httptransport.PayoutResponse{}, domainerrors.ErrInvalidInput
		}
		input.Balance = &balance
	}
	payout, previousOwnerID, err := h.Service.TransferPayout(ctx, caller, input)
	if err != nil {
		return httptransport.PayoutResponse{}, err
	}
	resp := httptransport.PayoutResponse{Status: "success"}
	resp.Data.PreviousOwnerID = previousOwnerID
	resp.Data.Payout = make(map[string]string, len(payout.Payout))
	for accountID, amount := range payout.Payout {
		resp.Data.Payout[accountID] = amount.String()
	}
	return resp, nil
}

func (h Handler) ApproveHandler(
	ctx context.Context,
	caller ports.Caller,
	req httptransport.ApproveRequest,
) (httptransport.ApproveResponse, error) {
	approvalID, err := h.Service.Approve(ctx, caller, ports.ApproveInput{
		TokenID:   req.TokenID,
		AccountID: req.AccountID,
		Msg:       req.Msg,
	})
	if err != nil {
		return httptransport.ApproveResponse{}, err
	}
	resp := httptransport.ApproveResponse{Status: "success"}
	resp.Data.ApprovalID = approvalID
	return resp, nil
}

func (h Handler) RevokeHandler(
	ctx context.Context,
	caller ports.Caller,
	req httptransport.RevokeRequest,
) (httptransport.StatusResponse, error) {
	var err error
	if req.AccountID == "" {
		err = h.Service.RevokeAll(ctx, caller, req.TokenID)
	} else {
		err = h.Service.Revoke(ctx, caller, req.TokenID, req.AccountID)
	}
	if err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{Status: "success"}, nil
}

func (h Handler) IsApprovedHandler(
	ctx context.Context,
	tokenID string,
	accountID string,
	approvalID *uint64,
) (httptransport.IsApprovedResponse, error) {
	approved, err := h.Service.IsApproved(ctx, tokenID, accountID, approvalID)
	if err != nil {
		return httptransport.IsApprovedResponse{}, err
	}
	return httptransport.IsApprovedResponse{Status: "success", Data: approved}, nil
}

func (h Handler) TokenHandler(ctx context.Context, tokenID string) (httptransport.TokenResponse, error) {
	view, found, err := h.Service.Token(ctx, tokenID)
	if err != nil {
		return httptransport.TokenResponse{}, err
	}
	if !found {
		return httptransport.TokenResponse{Status: "success", Data: nil}, nil
	}
	dto := toTokenDTO(view)
	return httptransport.TokenResponse{Status: "success", Data: &dto}, nil
}

func (h Handler) TokensHandler(
	ctx context.Context,
	fromIndex uint64,
	limit int,
) (httptransport.TokensResponse, error) {
	views, err := h.Service.Tokens(ctx, fromIndex, limit)
	if err != nil {
		return httptransport.TokensResponse{}, err
	}
	return httptransport.TokensResponse{Status: "success", Data: toTokenDTOs(views)}, nil
}

func (h Handler) TotalSupplyHandler(ctx context.Context) (httptransport.SupplyResponse, error) {
	supply, err := h.Service.TotalSupply(ctx)
	if err != nil {
		return httptransport.SupplyResponse{}, err
	}
	return httptransport.SupplyResponse{Status: "success", Data: formatUint(supply)}, nil
}

func (h Handler) SupplyForOwnerHandler(ctx context.Context, accountID string) (httptransport.SupplyResponse, error) {
	supply, err := h.Service.SupplyForOwner(ctx, accountID)
	if err != nil {
		return httptransport.SupplyResponse{}, err
	}
	return httptransport.SupplyResponse{Status: "success", Data: formatUint(supply)}, nil
}

func (h Handler) TokensForOwnerHandler(
	ctx context.Context,
	accountID string,
	fromIndex uint64,
	limit int,
) (httptransport.TokensResponse, error) {
	views, err := h.Service.TokensForOwner(ctx, accountID, fromIndex, limit)
	if err != nil {
		return httptransport.TokensResponse{}, err
	}
	return httptransport.TokensResponse{Status: "success", Data: toTokenDTOs(views)}, nil
}

func (h Handler) SeriesJSONHandler(ctx context.Context, seriesTitle string) (httptransport.SeriesResponse, error) {
	view, err := h.Service.SeriesJSON(ctx, seriesTitle)
	if err != nil {
		return httptransport.SeriesResponse{}, err
	}
	return httptransport.SeriesResponse{Status: "success", Data: toSeriesDTO(view)}, nil
}

func (h Handler) SeriesListHandler(
	ctx context.Context,
	fromIndex uint64,
	limit int,
) (httptransport.SeriesListResponse, error) {
	views, err := h.Service.Series(ctx, fromIndex, limit)
	if err != nil {
		return httptransport.SeriesListResponse{}, err
	}
	resp := httptransport.SeriesListResponse{
		Status: "success",
		Data:   make([]httptransport.SeriesDTO, 0, len(views)),
	}
	for _, view := range views {
		resp.Data = append(resp.Data, toSeriesDTO(view))
	}
	return resp, nil
}

func (h Handler) SupplyForSeriesHandler(ctx context.Context, seriesTitle string) (httptransport.SupplyResponse, error) {
	supply, err := h.Service.SupplyForSeries(ctx, seriesTitle)
	if err != nil {
		return httptransport.SupplyResponse{}, err
	}
	return httptransport.SupplyResponse{Status: "success", Data: formatUint(supply)}, nil
}

func (h Handler) TokensBySeriesHandler(
	ctx context.Context,
	seriesTitle string,
	fromIndex uint64,
	limit int,
) (httptransport.TokensResponse, error) {
	views, err := h.Service.TokensBySeries(ctx, seriesTitle, fromIndex, limit)
	if err != nil {
		return httptransport.TokensResponse{}, err
	}
	return httptransport.TokensResponse{Status: "success", Data: toTokenDTOs(views)}, nil
}

func (h Handler) SeriesFormatHandler() httptransport.SeriesFormatResponse {
	tokenDelim, titleDelim, editionDelim := h.Service.SeriesFormat()
	return httptransport.SeriesFormatResponse{
		Status: "success",
		Data:   []string{tokenDelim, titleDelim, editionDelim},
	}
}

func (h Handler) ContractMetadataHandler(ctx context.Context) (httptransport.ContractMetadataResponse, error) {
	metadata, err := h.Service.ContractMetadata(ctx)
	if err != nil {
		return httptransport.ContractMetadataResponse{}, err
	}
	return httptransport.ContractMetadataResponse{
		Status: "success",
		Data: httptransport.ContractMetadataDTO{
			Spec:      metadata.Spec,
			Name:      metadata.Name,
			Symbol:    metadata.Symbol,
			Icon:      metadata.Icon,
			BaseURI:   metadata.BaseURI,
			Reference: metadata.Reference,
		},
	}, nil
}

func seriesViewOf(series ports.Series) ports.SeriesView {
	return ports.SeriesView{
		Metadata: series.Metadata,
		OwnerID:  series.OwnerID,
		Royalty:  series.Royalty,
	}
}

func toSeriesDTO(view ports.SeriesView) httptransport.SeriesDTO {
	return httptransport.SeriesDTO{
		Metadata: httptransport.SeriesMetadataDTO{
			Title:       view.Metadata.Title,
			Description: view.Metadata.Description,
			Media:       view.Metadata.Media,
			Reference:   view.Metadata.Reference,
			Copies:      view.Metadata.Copies,
		},
		OwnerID: view.OwnerID,
		Royalty: view.Royalty,
	}
}

func toTokenDTO(view ports.TokenView) httptransport.TokenDTO {
	return httptransport.TokenDTO{
		TokenID: view.TokenID,
		OwnerID: view.OwnerID,
		Metadata: httptransport.TokenMetadataDTO{
			Title:  view.Title,
			Media:  view.Media,
			Copies: view.Copies,
		},
		ApprovedAccountIDs: view.Approvals,
	}
}

func toTokenDTOs(views []ports.TokenView) []httptransport.TokenDTO {
	items := make([]httptransport.TokenDTO, 0, len(views))
	for _, view := range views {
		items = append(items, toTokenDTO(view))
	}
	return items
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}
