package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ContractMetadataDTO struct {
	Spec      string `json:"spec"`
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	Icon      string `json:"icon,omitempty"`
	BaseURI   string `json:"base_uri,omitempty"`
	Reference string `json:"reference,omitempty"`
}

type InitializeRequest struct {
	OwnerID  string               `json:"owner_id"`
	Metadata *ContractMetadataDTO `json:"metadata,omitempty"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type SeriesMetadataDTO struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Media       string  `json:"media,omitempty"`
	Reference   string  `json:"reference,omitempty"`
	Copies      *uint64 `json:"copies,omitempty"`
}

type CreateSeriesRequest struct {
	Metadata SeriesMetadataDTO `json:"metadata"`
	Royalty  map[string]uint32 `json:"royalty"`
}

type SeriesDTO struct {
	Metadata SeriesMetadataDTO `json:"metadata"`
	OwnerID  string            `json:"owner_id"`
	Royalty  map[string]uint32 `json:"royalty"`
}

type SeriesResponse struct {
	Status string    `json:"status"`
	Data   SeriesDTO `json:"data"`
}

type SeriesListResponse struct {
	Status string      `json:"status"`
	Data   []SeriesDTO `json:"data"`
}

type CapCopiesRequest struct {
	TokenSeriesTitle string `json:"token_series_title"`
}

type MintRequest struct {
	TokenSeriesTitle string `json:"token_series_title"`
	ReceiverID       string `json:"receiver_id"`
}

type TokenMetadataDTO struct {
	Title  string  `json:"title"`
	Media  string  `json:"media,omitempty"`
	Copies *uint64 `json:"copies,omitempty"`
}

type TokenDTO struct {
	TokenID            string            `json:"token_id"`
	OwnerID            string            `json:"owner_id"`
	Metadata           TokenMetadataDTO  `json:"metadata"`
	ApprovedAccountIDs map[string]uint64 `json:"approved_account_ids"`
}

type TokenResponse struct {
	Status string    `json:"status"`
	Data   *TokenDTO `json:"data"`
}

type TokensResponse struct {
	Status string     `json:"status"`
	Data   []TokenDTO `json:"data"`
}

// Counts travel as strings, the wire form used for u64/u128 view results.
type SupplyResponse struct {
	Status string `json:"status"`
	Data   string `json:"data"`
}

type TransferRequest struct {
	ReceiverID string  `json:"receiver_id"`
	TokenID    string  `json:"token_id"`
	ApprovalID *uint64 `json:"approval_id,omitempty"`
	Memo       string  `json:"memo,omitempty"`
}

type TransferPayoutRequest struct {
	ReceiverID   string  `json:"receiver_id"`
	TokenID      string  `json:"token_id"`
	ApprovalID   uint64  `json:"approval_id"`
	Balance      *string `json:"balance,omitempty"`
	MaxLenPayout *uint32 `json:"max_len_payout,omitempty"`
}

type PayoutResponse struct {
	Status string `json:"status"`
	Data   struct {
		Payout          map[string]string `json:"payout"`
		PreviousOwnerID string            `json:"previous_owner_id"`
	} `json:"data"`
}

type ApproveRequest struct {
	TokenID   string  `json:"token_id"`
	AccountID string  `json:"account_id"`
	Msg       *string `json:"msg,omitempty"`
}

type ApproveResponse struct {
	Status string `json:"status"`
	Data   struct {
		ApprovalID uint64 `json:"approval_id"`
	} `json:"data"`
}

type RevokeRequest struct {
	TokenID   string `json:"token_id"`
	AccountID string `json:"account_id,omitempty"`
}

type IsApprovedResponse struct {
	Status string `json:"status"`
	Data   bool   `json:"data"`
}

type SeriesFormatResponse struct {
	Status string `json:"status"`
	// [token_delimiter, title_delimiter, edition_delimiter]
	Data []string `json:"data"`
}

type ContractMetadataResponse struct {
	Status string              `json:"status"`
	Data   ContractMetadataDTO `json:"data"`
}
