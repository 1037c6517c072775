package bank

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gaze-network/uint128"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// accountModel persists one native balance per account. Yocto amounts exceed
// any numeric column range, so the balance travels as its decimal wire string.
type accountModel struct {
	AccountID string `gorm:"primaryKey;column:account_id"`
	Balance   string
	UpdatedAt time.Time
}

func (accountModel) TableName() string { return "bank_accounts" }

// MigratePostgres creates the balance table.
func MigratePostgres(db *gorm.DB) error {
	return db.AutoMigrate(&accountModel{})
}

// PostgresBank is the durable balance ledger the postgres-backed processes
// share: a deposit credited at the api's transport boundary is the same row
// the worker's reaper refunds against.
type PostgresBank struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewPostgres(db *gorm.DB, logger *slog.Logger) *PostgresBank {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBank{db: db, logger: logger}
}

// Deposit credits an account.
func (b *PostgresBank) Deposit(ctx context.Context, accountID string, amount uint128.Uint128) error {
	if accountID == "" {
		return ErrInvalidAccount
	}
	if amount.IsZero() {
		return nil
	}

	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		balance, err := lockBalance(tx, accountID)
		if err != nil {
			return err
		}
		return putBalance(tx, accountID, balance.Add(amount))
	})
	if err != nil {
		return b.logError("bank_deposit_failed", err, "account_id", accountID)
	}
	return nil
}

func (b *PostgresBank) Balance(ctx context.Context, accountID string) (uint128.Uint128, error) {
	var row accountModel
	err := b.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uint128.Zero, nil
		}
		return uint128.Zero, b.logError("bank_get_balance_failed", err, "account_id", accountID)
	}
	return uint128.FromString(row.Balance)
}

// Transfer moves amount between two accounts in one transaction. A zero
// amount is a no-op so callers never special-case empty shares.
func (b *PostgresBank) Transfer(ctx context.Context, from, to string, amount uint128.Uint128) error {
	if from == "" || to == "" {
		return ErrInvalidAccount
	}
	if amount.IsZero() || from == to {
		return nil
	}

	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Row locks in sorted account order so concurrent transfers between
		// the same pair never deadlock.
		first, second := from, to
		if second < first {
			first, second = second, first
		}
		balances := make(map[string]uint128.Uint128, 2)
		for _, accountID := range []string{first, second} {
			balance, err := lockBalance(tx, accountID)
			if err != nil {
				return err
			}
			balances[accountID] = balance
		}
		if balances[from].Cmp(amount) < 0 {
			return ErrInsufficientFunds
		}
		if err := putBalance(tx, from, balances[from].Sub(amount)); err != nil {
			return err
		}
		return putBalance(tx, to, balances[to].Add(amount))
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientFunds) {
			return err
		}
		return b.logError("bank_transfer_failed", err, "from", from, "to", to)
	}
	return nil
}

func lockBalance(tx *gorm.DB, accountID string) (uint128.Uint128, error) {
	var row accountModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_id = ?", accountID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uint128.Zero, nil
		}
		return uint128.Zero, err
	}
	return uint128.FromString(row.Balance)
}

func putBalance(tx *gorm.DB, accountID string, amount uint128.Uint128) error {
	row := accountModel{
		AccountID: accountID,
		Balance:   amount.String(),
		UpdatedAt: time.Now().UTC(),
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"balance", "updated_at"}),
	}).Create(&row).Error
}

func (b *PostgresBank) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "internal/platform/bank",
		"layer", "platform",
		"error", err.Error(),
	}, args...)
	b.logger.Error("bank operation failed", fields...)
	return err
}
