// Package errors defines the sale-engine error taxonomy. Every entry point
// fails with one of these sentinels so transports can map them uniformly.
package errors

import "errors"

var (
	ErrAlreadyInitialized  = errors.New("market contract already initialized")
	ErrNotInitialized      = errors.New("market contract not initialized")
	ErrUnauthorized        = errors.New("caller lacks required role")
	ErrInvalidInput        = errors.New("invalid input")
	ErrNoSale              = errors.New("no sale on record")
	ErrPriceMismatch       = errors.New("attached deposit below sale price")
	ErrSelfPurchase        = errors.New("cannot buy your own sale")
	ErrUnsupportedCurrency = errors.New("currency not supported by this market")
	ErrInsufficientDeposit = errors.New("attached deposit below required amount")
	ErrInsufficientStorage = errors.New("insufficient storage paid for sale listing")
	ErrSettlementFailure   = errors.New("cross-contract transfer failed, buyer refunded")
)
