// Package bank keeps the native-balance ledger the contracts settle against.
// Every attached deposit, storage charge, payout share and refund moves
// through one ledger so tests can assert conservation of funds. Bank is the
// in-memory implementation; the deployed processes share PostgresBank.
package bank

import (
	"context"
	"errors"
	"sync"

	"github.com/gaze-network/uint128"
)

var (
	ErrInsufficientFunds = errors.New("bank: insufficient funds")
	ErrInvalidAccount    = errors.New("bank: invalid account")
)

type Bank struct {
	mu       sync.Mutex
	balances map[string]uint128.Uint128
}

func New() *Bank {
	return &Bank{balances: make(map[string]uint128.Uint128)}
}

// Deposit credits an account. The transport boundary calls this with the
// attached deposit before the entry point debits it, the analog of the host
// runtime crediting the receiver when a signed transaction carries funds.
func (b *Bank) Deposit(_ context.Context, accountID string, amount uint128.Uint128) error {
	if accountID == "" {
		return ErrInvalidAccount
	}
	if amount.IsZero() {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.balances[accountID] = b.balances[accountID].Add(amount)
	return nil
}

func (b *Bank) Balance(accountID string) uint128.Uint128 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.balances[accountID]
}

// Transfer moves amount from one account to another. A zero amount is a no-op
// so callers never special-case empty shares.
func (b *Bank) Transfer(_ context.Context, from, to string, amount uint128.Uint128) error {
	if from == "" || to == "" {
		return ErrInvalidAccount
	}
	if amount.IsZero() || from == to {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	balance := b.balances[from]
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	b.balances[from] = balance.Sub(amount)
	b.balances[to] = b.balances[to].Add(amount)
	return nil
}
