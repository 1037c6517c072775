package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"mintery/contexts/market-core/sale-engine/application"
	domainerrors "mintery/contexts/market-core/sale-engine/domain/errors"
	"mintery/contexts/market-core/sale-engine/ports"
	httptransport "mintery/contexts/market-core/sale-engine/transport/http"
	"mintery/internal/shared/nearamount"
)

// Handler adapts the transaction-submission surface onto the market entry
// points.
type Handler struct {
	Service *application.Service
	Logger  *slog.Logger
}

func (h Handler) InitializeHandler(
	ctx context.Context,
	req httptransport.InitializeRequest,
) (httptransport.StatusResponse, error) {
	if err := h.Service.Initialize(ctx, req.OwnerID, req.FTTokenIDs); err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{Status: "success"}, nil
}

func (h Handler) AddFTTokenIDsHandler(
	ctx context.Context,
	caller ports.Caller,
	req httptransport.AddFTTokenIDsRequest,
) (httptransport.AddFTTokenIDsResponse, error) {
	added, err := h.Service.AddSupportedCurrencies(ctx, caller, req.FTTokenIDs)
	if err != nil {
		return httptransport.AddFTTokenIDsResponse{}, err
	}
	return httptransport.AddFTTokenIDsResponse{Status: "success", Data: added}, nil
}

func (h Handler) SupportedFTTokenIDsHandler(ctx context.Context) (httptransport.SupportedFTTokenIDsResponse, error) {
	currencies, err := h.Service.SupportedCurrencies(ctx)
	if err != nil {
		return httptransport.SupportedFTTokenIDsResponse{}, err
	}
	return httptransport.SupportedFTTokenIDsResponse{Status: "success", Data: currencies}, nil
}

func (h Handler) StorageDepositHandler(
	ctx context.Context,
	caller ports.Caller,
	req httptransport.StorageDepositRequest,
) (httptransport.StatusResponse, error) {
	if err := h.Service.StorageDeposit(ctx, caller, req.AccountID); err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{Status: "success"}, nil
}

func (h Handler) StorageWithdrawHandler(
	ctx context.Context,
	caller ports.Caller,
) (httptransport.AmountResponse, error) {
	withdrawn, err := h.Service.StorageWithdraw(ctx, caller)
	if err != nil {
		return httptransport.AmountResponse{}, err
	}
	return httptransport.AmountResponse{Status: "success", Data: nearamount.FormatYocto(withdrawn)}, nil
}

func (h Handler) StoragePaidHandler(ctx context.Context, accountID string) (httptransport.AmountResponse, error) {
	paid, err := h.Service.StoragePaid(ctx, accountID)
	if err != nil {
		return httptransport.AmountResponse{}, err
	}
	return httptransport.AmountResponse{Status: "success", Data: nearamount.FormatYocto(paid)}, nil
}

func (h Handler) StorageMinimumHandler() httptransport.AmountResponse {
	return httptransport.AmountResponse{
		Status: "success",
		Data:   nearamount.FormatYocto(h.Service.StorageMinimum()),
	}
}

// OnApproveHandler is the cross-contract approval callback surface, used when
// the listing arrives over the wire instead of in process.
func (h Handler) OnApproveHandler(
	ctx context.Context,
	caller ports.Caller,
	req httptransport.OnApproveRequest,
) (httptransport.StatusResponse, error) {
	err := h.Service.OnApprove(ctx, ports.ListingNotice{
		NFTContractID: req.NFTContractID,
		TokenID:       req.TokenID,
		OwnerID:       req.OwnerID,
		SignerID:      caller.Signer(),
		ApprovalID:    req.ApprovalID,
		Msg:           req.Msg,
	})
	if err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{Status: "success"}, nil
}

func (h Handler) UpdatePriceHandler(
	ctx context.Context,
	caller ports.Caller,
	req httptransport.UpdatePriceRequest,
) (httptransport.StatusResponse, error) {
	price, err := nearamount.ParseYocto(req.Price)
	if err != nil {
		return httptransport.StatusResponse{}, domainerrors.ErrInvalidInput
	}
	if err := h.Service.UpdatePrice(ctx, caller, req.NFTContractID, req.TokenID, req.FTTokenID, price); err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{Status: "success"}, nil
}

func (h Handler) RemoveSaleHandler(
	ctx context.Context,
	caller ports.Caller,
	req httptransport.RemoveSaleRequest,
) (httptransport.StatusResponse, error) {
	if err := h.Service.RemoveSale(ctx, caller, req.NFTContractID, req.TokenID); err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{Status: "success"}, nil
}

func (h Handler) OfferHandler(
	ctx context.Context,
	caller ports.Caller,
	req httptransport.OfferRequest,
) (httptransport.OfferResponse, error) {
	previousOwnerID, err := h.Service.Offer(ctx, caller, req.NFTContractID, req.TokenID)
	if err != nil {
		return httptransport.OfferResponse{}, err
	}
	resp := httptransport.OfferResponse{Status: "success"}
	resp.Data.PreviousOwnerID = previousOwnerID
	return resp, nil
}

func (h Handler) GetSaleHandler(
	ctx context.Context,
	nftContractID string,
	tokenID string,
) (httptransport.SaleResponse, error) {
	sale, err := h.Service.GetSale(ctx, nftContractID, tokenID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNoSale) {
			return httptransport.SaleResponse{Status: "success", Data: nil}, nil
		}
		return httptransport.SaleResponse{}, err
	}
	dto := toSaleDTO(sale)
	return httptransport.SaleResponse{Status: "success", Data: &dto}, nil
}

func (h Handler) SalesByOwnerHandler(
	ctx context.Context,
	ownerID string,
	fromIndex uint64,
	limit int,
) (httptransport.SalesResponse, error) {
	sales, err := h.Service.SalesByOwner(ctx, ownerID, fromIndex, limit)
	if err != nil {
		return httptransport.SalesResponse{}, err
	}
	return httptransport.SalesResponse{Status: "success", Data: toSaleDTOs(sales)}, nil
}

func (h Handler) SalesByNFTContractHandler(
	ctx context.Context,
	nftContractID string,
	fromIndex uint64,
	limit int,
) (httptransport.SalesResponse, error) {
	sales, err := h.Service.SalesByNFTContract(ctx, nftContractID, fromIndex, limit)
	if err != nil {
		return httptransport.SalesResponse{}, err
	}
	return httptransport.SalesResponse{Status: "success", Data: toSaleDTOs(sales)}, nil
}

func (h Handler) SupplySalesHandler(ctx context.Context) (httptransport.SupplyResponse, error) {
	supply, err := h.Service.SupplySales(ctx)
	if err != nil {
		return httptransport.SupplyResponse{}, err
	}
	return httptransport.SupplyResponse{Status: "success", Data: formatUint(supply)}, nil
}

func (h Handler) SupplyByOwnerHandler(ctx context.Context, ownerID string) (httptransport.SupplyResponse, error) {
	supply, err := h.Service.SupplyByOwner(ctx, ownerID)
	if err != nil {
		return httptransport.SupplyResponse{}, err
	}
	return httptransport.SupplyResponse{Status: "success", Data: formatUint(supply)}, nil
}

func (h Handler) SupplyByNFTContractHandler(
	ctx context.Context,
	nftContractID string,
) (httptransport.SupplyResponse, error) {
	supply, err := h.Service.SupplyByNFTContract(ctx, nftContractID)
	if err != nil {
		return httptransport.SupplyResponse{}, err
	}
	return httptransport.SupplyResponse{Status: "success", Data: formatUint(supply)}, nil
}

func toSaleDTO(sale ports.Sale) httptransport.SaleDTO {
	conditions := make(map[string]string, len(sale.Conditions))
	for currency, price := range sale.Conditions {
		conditions[currency] = nearamount.FormatYocto(price)
	}
	return httptransport.SaleDTO{
		NFTContractID:  sale.NFTContractID,
		TokenID:        sale.TokenID,
		OwnerID:        sale.OwnerID,
		ApprovalID:     sale.ApprovalID,
		SaleConditions: conditions,
		IsAuction:      sale.IsAuction,
	}
}

func toSaleDTOs(sales []ports.Sale) []httptransport.SaleDTO {
	items := make([]httptransport.SaleDTO, 0, len(sales))
	for _, sale := range sales {
		items = append(items, toSaleDTO(sale))
	}
	return items
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}
