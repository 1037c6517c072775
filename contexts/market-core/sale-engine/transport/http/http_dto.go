package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type InitializeRequest struct {
	OwnerID    string   `json:"owner_id"`
	FTTokenIDs []string `json:"ft_token_ids,omitempty"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type AddFTTokenIDsRequest struct {
	FTTokenIDs []string `json:"ft_token_ids"`
}

type AddFTTokenIDsResponse struct {
	Status string `json:"status"`
	Data   []bool `json:"data"`
}

type SupportedFTTokenIDsResponse struct {
	Status string   `json:"status"`
	Data   []string `json:"data"`
}

type StorageDepositRequest struct {
	AccountID string `json:"account_id,omitempty"`
}

// Amounts travel as yocto strings, the u128 wire form.
type AmountResponse struct {
	Status string `json:"status"`
	Data   string `json:"data"`
}

type SaleDTO struct {
	NFTContractID string            `json:"nft_contract_id"`
	TokenID       string            `json:"token_id"`
	OwnerID       string            `json:"owner_id"`
	ApprovalID    uint64            `json:"approval_id"`
	SaleConditions map[string]string `json:"sale_conditions"`
	IsAuction     bool              `json:"is_auction"`
}

type SaleResponse struct {
	Status string   `json:"status"`
	Data   *SaleDTO `json:"data"`
}

type SalesResponse struct {
	Status string    `json:"status"`
	Data   []SaleDTO `json:"data"`
}

type SupplyResponse struct {
	Status string `json:"status"`
	Data   string `json:"data"`
}

type UpdatePriceRequest struct {
	NFTContractID string `json:"nft_contract_id"`
	TokenID       string `json:"token_id"`
	FTTokenID     string `json:"ft_token_id"`
	Price         string `json:"price"`
}

type RemoveSaleRequest struct {
	NFTContractID string `json:"nft_contract_id"`
	TokenID       string `json:"token_id"`
}

type OfferRequest struct {
	NFTContractID string `json:"nft_contract_id"`
	TokenID       string `json:"token_id"`
}

type OfferResponse struct {
	Status string `json:"status"`
	Data   struct {
		PreviousOwnerID string `json:"previous_owner_id"`
	} `json:"data"`
}

type OnApproveRequest struct {
	NFTContractID string `json:"nft_contract_id"`
	TokenID       string `json:"token_id"`
	OwnerID       string `json:"owner_id"`
	ApprovalID    uint64 `json:"approval_id"`
	Msg           string `json:"msg"`
}
