package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gaze-network/uint128"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mintery/contexts/market-core/sale-engine/ports"
	"mintery/internal/shared/nearamount"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

// Migrate creates the market tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&marketStateModel{},
		&currencyModel{},
		&saleModel{},
		&storageDepositModel{},
		&pendingModel{},
		&outboxModel{},
	)
}

type marketStateModel struct {
	ID            uint   `gorm:"primaryKey"`
	OwnerID       string `gorm:"column:owner_id"`
	InitializedAt time.Time
}

func (marketStateModel) TableName() string { return "market_state" }

type currencyModel struct {
	FTTokenID string `gorm:"primaryKey;column:ft_token_id"`
}

func (currencyModel) TableName() string { return "market_currencies" }

type saleModel struct {
	SaleKey       string `gorm:"primaryKey;column:sale_key"`
	NFTContractID string `gorm:"column:nft_contract_id;index"`
	TokenID       string `gorm:"column:token_id"`
	OwnerID       string `gorm:"column:owner_id;index"`
	ApprovalID    uint64 `gorm:"column:approval_id"`
	Conditions    []byte `gorm:"type:jsonb"`
	IsAuction     bool
	Royalty       []byte `gorm:"type:jsonb"`
	CreatedAt     time.Time
}

func (saleModel) TableName() string { return "market_sales" }

type storageDepositModel struct {
	AccountID string `gorm:"primaryKey;column:account_id"`
	// Yocto amount as its decimal wire string; exceeds numeric column range.
	Amount string
}

func (storageDepositModel) TableName() string { return "market_storage_deposits" }

type pendingModel struct {
	PendingID     string `gorm:"primaryKey;column:pending_id"`
	NFTContractID string `gorm:"column:nft_contract_id"`
	TokenID       string `gorm:"column:token_id"`
	BuyerID       string `gorm:"column:buyer_id"`
	Currency      string
	Price         string
	Deposit       string
	CreatedAt     time.Time `gorm:"index"`
}

func (pendingModel) TableName() string { return "market_pending_settlements" }

type outboxModel struct {
	OutboxID     string `gorm:"primaryKey;column:outbox_id"`
	EventType    string
	PartitionKey string
	Payload      []byte `gorm:"type:jsonb"`
	Status       string `gorm:"index"`
	CreatedAt    time.Time
	PublishedAt  *time.Time
}

func (outboxModel) TableName() string { return "market_outbox" }

func (r *Repository) GetMarketState(ctx context.Context) (ports.MarketState, bool, error) {
	var row marketStateModel
	err := r.db.WithContext(ctx).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.MarketState{}, false, nil
		}
		return ports.MarketState{}, false, r.logError("market_repo_get_state_failed", err)
	}
	return ports.MarketState{OwnerID: row.OwnerID, InitializedAt: row.InitializedAt}, true, nil
}

func (r *Repository) PutMarketState(ctx context.Context, state ports.MarketState) error {
	row := marketStateModel{ID: 1, OwnerID: state.OwnerID, InitializedAt: state.InitializedAt}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return r.logError("market_repo_put_state_failed", err)
	}
	return nil
}

func (r *Repository) AddCurrency(ctx context.Context, ftTokenID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&currencyModel{FTTokenID: ftTokenID})
	if result.Error != nil {
		return false, r.logError("market_repo_add_currency_failed", result.Error, "ft_token_id", ftTokenID)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) HasCurrency(ctx context.Context, ftTokenID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&currencyModel{}).
		Where("ft_token_id = ?", ftTokenID).
		Count(&count).Error
	if err != nil {
		return false, r.logError("market_repo_has_currency_failed", err, "ft_token_id", ftTokenID)
	}
	return count > 0, nil
}

func (r *Repository) ListCurrencies(ctx context.Context) ([]string, error) {
	var rows []currencyModel
	if err := r.db.WithContext(ctx).Order("ft_token_id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("market_repo_list_currencies_failed", err)
	}
	items := make([]string, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.FTTokenID)
	}
	return items, nil
}

func (r *Repository) PutSale(ctx context.Context, sale ports.Sale) error {
	row, err := saleModelFromEntity(sale)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return r.logError("market_repo_put_sale_failed", err, "sale_key", sale.Key())
	}
	return nil
}

func (r *Repository) GetSale(ctx context.Context, nftContractID string, tokenID string) (ports.Sale, bool, error) {
	var row saleModel
	err := r.db.WithContext(ctx).
		Where("sale_key = ?", ports.SaleKey(nftContractID, tokenID)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Sale{}, false, nil
		}
		return ports.Sale{}, false, r.logError("market_repo_get_sale_failed", err)
	}
	sale, err := row.toEntity()
	if err != nil {
		return ports.Sale{}, false, err
	}
	return sale, true, nil
}

func (r *Repository) RemoveSale(ctx context.Context, nftContractID string, tokenID string) error {
	err := r.db.WithContext(ctx).
		Where("sale_key = ?", ports.SaleKey(nftContractID, tokenID)).
		Delete(&saleModel{}).Error
	if err != nil {
		return r.logError("market_repo_remove_sale_failed", err)
	}
	return nil
}

func (r *Repository) CountSales(ctx context.Context) (uint64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&saleModel{}).Count(&count).Error; err != nil {
		return 0, r.logError("market_repo_count_sales_failed", err)
	}
	return uint64(count), nil
}

func (r *Repository) CountSalesByOwner(ctx context.Context, ownerID string) (uint64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&saleModel{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	if err != nil {
		return 0, r.logError("market_repo_count_sales_by_owner_failed", err)
	}
	return uint64(count), nil
}

func (r *Repository) CountSalesByNFTContract(ctx context.Context, nftContractID string) (uint64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&saleModel{}).
		Where("nft_contract_id = ?", nftContractID).
		Count(&count).Error
	if err != nil {
		return 0, r.logError("market_repo_count_sales_by_contract_failed", err)
	}
	return uint64(count), nil
}

func (r *Repository) ListSalesByOwner(
	ctx context.Context,
	ownerID string,
	fromIndex uint64,
	limit int,
) ([]ports.Sale, error) {
	return r.listSales(r.db.WithContext(ctx).Where("owner_id = ?", ownerID), fromIndex, limit)
}

func (r *Repository) ListSalesByNFTContract(
	ctx context.Context,
	nftContractID string,
	fromIndex uint64,
	limit int,
) ([]ports.Sale, error) {
	return r.listSales(r.db.WithContext(ctx).Where("nft_contract_id = ?", nftContractID), fromIndex, limit)
}

func (r *Repository) listSales(tx *gorm.DB, fromIndex uint64, limit int) ([]ports.Sale, error) {
	var rows []saleModel
	err := tx.
		Order("created_at ASC, sale_key ASC").
		Offset(int(fromIndex)).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("market_repo_list_sales_failed", err)
	}
	items := make([]ports.Sale, 0, len(rows))
	for _, row := range rows {
		sale, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, sale)
	}
	return items, nil
}

func (r *Repository) GetStorageDeposit(ctx context.Context, accountID string) (uint128.Uint128, error) {
	var row storageDepositModel
	err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uint128.Zero, nil
		}
		return uint128.Zero, r.logError("market_repo_get_storage_failed", err, "account_id", accountID)
	}
	return nearamount.ParseYocto(row.Amount)
}

func (r *Repository) PutStorageDeposit(ctx context.Context, accountID string, amount uint128.Uint128) error {
	if amount.IsZero() {
		err := r.db.WithContext(ctx).
			Where("account_id = ?", accountID).
			Delete(&storageDepositModel{}).Error
		if err != nil {
			return r.logError("market_repo_put_storage_failed", err, "account_id", accountID)
		}
		return nil
	}
	row := storageDepositModel{AccountID: accountID, Amount: nearamount.FormatYocto(amount)}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return r.logError("market_repo_put_storage_failed", err, "account_id", accountID)
	}
	return nil
}

func (r *Repository) CreatePending(ctx context.Context, pending ports.PendingSettlement) error {
	row := pendingModel{
		PendingID:     pending.PendingID,
		NFTContractID: pending.NFTContractID,
		TokenID:       pending.TokenID,
		BuyerID:       pending.BuyerID,
		Currency:      pending.Currency,
		Price:         nearamount.FormatYocto(pending.Price),
		Deposit:       nearamount.FormatYocto(pending.Deposit),
		CreatedAt:     pending.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("market_repo_create_pending_failed", err, "pending_id", pending.PendingID)
	}
	return nil
}

func (r *Repository) DeletePending(ctx context.Context, pendingID string) error {
	err := r.db.WithContext(ctx).
		Where("pending_id = ?", pendingID).
		Delete(&pendingModel{}).Error
	if err != nil {
		return r.logError("market_repo_delete_pending_failed", err, "pending_id", pendingID)
	}
	return nil
}

func (r *Repository) ListPendingBefore(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]ports.PendingSettlement, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []pendingModel
	err := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("market_repo_list_pending_failed", err)
	}
	items := make([]ports.PendingSettlement, 0, len(rows))
	for _, row := range rows {
		price, err := nearamount.ParseYocto(row.Price)
		if err != nil {
			return nil, err
		}
		deposit, err := nearamount.ParseYocto(row.Deposit)
		if err != nil {
			return nil, err
		}
		items = append(items, ports.PendingSettlement{
			PendingID:     row.PendingID,
			NFTContractID: row.NFTContractID,
			TokenID:       row.TokenID,
			BuyerID:       row.BuyerID,
			Currency:      row.Currency,
			Price:         price,
			Deposit:       deposit,
			CreatedAt:     row.CreatedAt,
		})
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     envelope.EventID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("market_repo_append_outbox_failed", err, "event_type", envelope.EventType)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("market_repo_list_outbox_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt,
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	err := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt,
		}).Error
	if err != nil {
		return r.logError("market_repo_mark_outbox_failed", err, "outbox_id", outboxID)
	}
	return nil
}

func saleModelFromEntity(sale ports.Sale) (saleModel, error) {
	conditions := make(map[string]string, len(sale.Conditions))
	for currency, price := range sale.Conditions {
		conditions[currency] = nearamount.FormatYocto(price)
	}
	conditionsJSON, err := json.Marshal(conditions)
	if err != nil {
		return saleModel{}, err
	}
	royaltyJSON, err := json.Marshal(sale.RoyaltySnapshot)
	if err != nil {
		return saleModel{}, err
	}
	return saleModel{
		SaleKey:       sale.Key(),
		NFTContractID: sale.NFTContractID,
		TokenID:       sale.TokenID,
		OwnerID:       sale.OwnerID,
		ApprovalID:    sale.ApprovalID,
		Conditions:    conditionsJSON,
		IsAuction:     sale.IsAuction,
		Royalty:       royaltyJSON,
		CreatedAt:     sale.CreatedAt,
	}, nil
}

func (m saleModel) toEntity() (ports.Sale, error) {
	rawConditions := map[string]string{}
	if len(m.Conditions) > 0 {
		if err := json.Unmarshal(m.Conditions, &rawConditions); err != nil {
			return ports.Sale{}, err
		}
	}
	conditions := make(map[string]uint128.Uint128, len(rawConditions))
	for currency, raw := range rawConditions {
		price, err := nearamount.ParseYocto(raw)
		if err != nil {
			return ports.Sale{}, err
		}
		conditions[currency] = price
	}
	royalty := map[string]uint32{}
	if len(m.Royalty) > 0 {
		if err := json.Unmarshal(m.Royalty, &royalty); err != nil {
			return ports.Sale{}, err
		}
	}
	return ports.Sale{
		NFTContractID:   m.NFTContractID,
		TokenID:         m.TokenID,
		OwnerID:         m.OwnerID,
		ApprovalID:      m.ApprovalID,
		Conditions:      conditions,
		IsAuction:       m.IsAuction,
		RoyaltySnapshot: royalty,
		CreatedAt:       m.CreatedAt,
	}, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "market-core/sale-engine",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("market repository operation failed", fields...)
	return err
}
