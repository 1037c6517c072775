package errors

import "errors"

var (
	ErrAlreadyInitialized  = errors.New("contract has already been initialized")
	ErrNotInitialized      = errors.New("contract is not initialized")
	ErrUnauthorized        = errors.New("caller lacks the required role")
	ErrTitleRequired       = errors.New("token_metadata.title is required")
	ErrDuplicateSeries     = errors.New("a series with this title already exists")
	ErrInvalidRoyalty      = errors.New("royalty basis points exceed 10000")
	ErrSeriesNotFound      = errors.New("series not found")
	ErrTokenNotFound       = errors.New("token not found")
	ErrSupplyExhausted     = errors.New("series supply maxed")
	ErrInsufficientDeposit = errors.New("attached deposit does not cover storage")
	ErrInvalidInput        = errors.New("ledger input is invalid")
)
