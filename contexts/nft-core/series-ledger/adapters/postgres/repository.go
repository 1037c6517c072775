package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainerrors "mintery/contexts/nft-core/series-ledger/domain/errors"
	"mintery/contexts/nft-core/series-ledger/ports"
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

// Migrate creates the ledger tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&contractStateModel{},
		&seriesModel{},
		&tokenModel{},
		&outboxModel{},
	)
}

type contractStateModel struct {
	ID            uint   `gorm:"primaryKey"`
	OwnerID       string `gorm:"column:owner_id"`
	Spec          string
	Name          string
	Symbol        string
	Icon          string
	BaseURI       string `gorm:"column:base_uri"`
	Reference     string
	InitializedAt time.Time
}

func (contractStateModel) TableName() string { return "nft_contract_state" }

type seriesModel struct {
	SeriesID    uint64 `gorm:"primaryKey;column:series_id"`
	Title       string `gorm:"uniqueIndex"`
	OwnerID     string `gorm:"column:owner_id;index"`
	Description string
	Media       string
	Reference   string
	Copies      *uint64
	Royalty     []byte `gorm:"type:jsonb"`
	MintedCount uint64
	CreatedAt   time.Time
}

func (seriesModel) TableName() string { return "nft_series" }

type tokenModel struct {
	TokenID        string `gorm:"primaryKey;column:token_id"`
	SeriesID       uint64 `gorm:"column:series_id;index"`
	SeriesTitle    string
	OwnerID        string `gorm:"column:owner_id;index"`
	EditionIndex   uint64
	CopiesAtMint   *uint64
	Approvals      []byte `gorm:"type:jsonb"`
	NextApprovalID uint64 `gorm:"column:next_approval_id"`
	IssuedAt       time.Time
}

func (tokenModel) TableName() string { return "nft_tokens" }

type outboxModel struct {
	OutboxID     string `gorm:"primaryKey;column:outbox_id"`
	EventType    string
	PartitionKey string
	Payload      []byte `gorm:"type:jsonb"`
	Status       string `gorm:"index"`
	CreatedAt    time.Time
	PublishedAt  *time.Time
}

func (outboxModel) TableName() string { return "nft_outbox" }

func (r *Repository) GetContractState(ctx context.Context) (ports.ContractState, bool, error) {
	var row contractStateModel
	err := r.db.WithContext(ctx).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ContractState{}, false, nil
		}
		return ports.ContractState{}, false, r.logError("ledger_repo_get_state_failed", err)
	}
	return ports.ContractState{
		OwnerID: row.OwnerID,
		Metadata: ports.ContractMetadata{
			Spec:      row.Spec,
			Name:      row.Name,
			Symbol:    row.Symbol,
			Icon:      row.Icon,
			BaseURI:   row.BaseURI,
			Reference: row.Reference,
		},
		InitializedAt: row.InitializedAt,
	}, true, nil
}

func (r *Repository) PutContractState(ctx context.Context, state ports.ContractState) error {
	row := contractStateModel{
		ID:            1,
		OwnerID:       state.OwnerID,
		Spec:          state.Metadata.Spec,
		Name:          state.Metadata.Name,
		Symbol:        state.Metadata.Symbol,
		Icon:          state.Metadata.Icon,
		BaseURI:       state.Metadata.BaseURI,
		Reference:     state.Metadata.Reference,
		InitializedAt: state.InitializedAt,
	}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return r.logError("ledger_repo_put_state_failed", err)
	}
	return nil
}

func (r *Repository) CreateSeries(ctx context.Context, series ports.Series) error {
	row, err := seriesModelFromEntity(series)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateSeries
		}
		return r.logError("ledger_repo_create_series_failed", err, "title", series.Title)
	}
	return nil
}

func (r *Repository) GetSeriesByTitle(ctx context.Context, title string) (ports.Series, error) {
	var row seriesModel
	err := r.db.WithContext(ctx).Where("title = ?", title).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Series{}, domainerrors.ErrSeriesNotFound
		}
		return ports.Series{}, r.logError("ledger_repo_get_series_failed", err, "title", title)
	}
	return row.toEntity()
}

func (r *Repository) GetSeriesByID(ctx context.Context, seriesID uint64) (ports.Series, error) {
	var row seriesModel
	err := r.db.WithContext(ctx).Where("series_id = ?", seriesID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Series{}, domainerrors.ErrSeriesNotFound
		}
		return ports.Series{}, r.logError("ledger_repo_get_series_by_id_failed", err, "series_id", seriesID)
	}
	return row.toEntity()
}

func (r *Repository) UpdateSeries(ctx context.Context, series ports.Series) error {
	row, err := seriesModelFromEntity(series)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return r.logError("ledger_repo_update_series_failed", err, "title", series.Title)
	}
	return nil
}

func (r *Repository) CountSeries(ctx context.Context) (uint64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&seriesModel{}).Count(&count).Error; err != nil {
		return 0, r.logError("ledger_repo_count_series_failed", err)
	}
	return uint64(count), nil
}

func (r *Repository) ListSeries(ctx context.Context, fromIndex uint64, limit int) ([]ports.Series, error) {
	var rows []seriesModel
	err := r.db.WithContext(ctx).
		Where("series_id > ?", fromIndex).
		Order("series_id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("ledger_repo_list_series_failed", err)
	}
	items := make([]ports.Series, 0, len(rows))
	for _, row := range rows {
		entity, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, entity)
	}
	return items, nil
}

func (r *Repository) CreateToken(ctx context.Context, token ports.Token) error {
	row, err := tokenModelFromEntity(token)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidInput
		}
		return r.logError("ledger_repo_create_token_failed", err, "token_id", token.TokenID)
	}
	return nil
}

func (r *Repository) GetToken(ctx context.Context, tokenID string) (ports.Token, error) {
	var row tokenModel
	err := r.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Token{}, domainerrors.ErrTokenNotFound
		}
		return ports.Token{}, r.logError("ledger_repo_get_token_failed", err, "token_id", tokenID)
	}
	return row.toEntity()
}

func (r *Repository) UpdateToken(ctx context.Context, token ports.Token) error {
	row, err := tokenModelFromEntity(token)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return r.logError("ledger_repo_update_token_failed", err, "token_id", token.TokenID)
	}
	return nil
}

func (r *Repository) CountTokens(ctx context.Context) (uint64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&tokenModel{}).Count(&count).Error; err != nil {
		return 0, r.logError("ledger_repo_count_tokens_failed", err)
	}
	return uint64(count), nil
}

func (r *Repository) CountTokensByOwner(ctx context.Context, ownerID string) (uint64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&tokenModel{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	if err != nil {
		return 0, r.logError("ledger_repo_count_tokens_by_owner_failed", err, "owner_id", ownerID)
	}
	return uint64(count), nil
}

func (r *Repository) ListTokens(ctx context.Context, fromIndex uint64, limit int) ([]ports.Token, error) {
	return r.listTokens(ctx, r.db.WithContext(ctx), fromIndex, limit)
}

func (r *Repository) ListTokensBySeries(
	ctx context.Context,
	seriesID uint64,
	fromIndex uint64,
	limit int,
) ([]ports.Token, error) {
	tx := r.db.WithContext(ctx).Where("series_id = ?", seriesID)
	return r.listTokens(ctx, tx, fromIndex, limit)
}

func (r *Repository) ListTokensByOwner(
	ctx context.Context,
	ownerID string,
	fromIndex uint64,
	limit int,
) ([]ports.Token, error) {
	tx := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	return r.listTokens(ctx, tx, fromIndex, limit)
}

func (r *Repository) listTokens(_ context.Context, tx *gorm.DB, fromIndex uint64, limit int) ([]ports.Token, error) {
	var rows []tokenModel
	err := tx.
		Order("issued_at ASC, edition_index ASC").
		Offset(int(fromIndex)).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, r.logError("ledger_repo_list_tokens_failed", err)
	}
	items := make([]ports.Token, 0, len(rows))
	for _, row := range rows {
		entity, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, entity)
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
		return r.logError("ledger_repo_append_outbox_failed", err, "event_type", envelope.EventType)
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
		return nil, r.logError("ledger_repo_list_outbox_failed", err)
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
		return r.logError("ledger_repo_mark_outbox_failed", err, "outbox_id", outboxID)
	}
	return nil
}

func seriesModelFromEntity(series ports.Series) (seriesModel, error) {
	royalty, err := json.Marshal(series.Royalty)
	if err != nil {
		return seriesModel{}, err
	}
	return seriesModel{
		SeriesID:    series.SeriesID,
		Title:       series.Title,
		OwnerID:     series.OwnerID,
		Description: series.Metadata.Description,
		Media:       series.Metadata.Media,
		Reference:   series.Metadata.Reference,
		Copies:      series.Metadata.Copies,
		Royalty:     royalty,
		MintedCount: series.MintedCount,
		CreatedAt:   series.CreatedAt,
	}, nil
}

func (m seriesModel) toEntity() (ports.Series, error) {
	royalty := map[string]uint32{}
	if len(m.Royalty) > 0 {
		if err := json.Unmarshal(m.Royalty, &royalty); err != nil {
			return ports.Series{}, err
		}
	}
	return ports.Series{
		SeriesID: m.SeriesID,
		Title:    m.Title,
		OwnerID:  m.OwnerID,
		Metadata: ports.SeriesMetadata{
			Title:       m.Title,
			Description: m.Description,
			Media:       m.Media,
			Reference:   m.Reference,
			Copies:      m.Copies,
		},
		Royalty:     royalty,
		MintedCount: m.MintedCount,
		CreatedAt:   m.CreatedAt,
	}, nil
}

func tokenModelFromEntity(token ports.Token) (tokenModel, error) {
	approvals, err := json.Marshal(token.Approvals)
	if err != nil {
		return tokenModel{}, err
	}
	return tokenModel{
		TokenID:        token.TokenID,
		SeriesID:       token.SeriesID,
		SeriesTitle:    token.SeriesTitle,
		OwnerID:        token.OwnerID,
		EditionIndex:   token.EditionIndex,
		CopiesAtMint:   token.CopiesAtMint,
		Approvals:      approvals,
		NextApprovalID: token.NextApprovalID,
		IssuedAt:       token.IssuedAt,
	}, nil
}

func (m tokenModel) toEntity() (ports.Token, error) {
	approvals := map[string]uint64{}
	if len(m.Approvals) > 0 {
		if err := json.Unmarshal(m.Approvals, &approvals); err != nil {
			return ports.Token{}, err
		}
	}
	return ports.Token{
		TokenID:        m.TokenID,
		SeriesID:       m.SeriesID,
		SeriesTitle:    m.SeriesTitle,
		OwnerID:        m.OwnerID,
		EditionIndex:   m.EditionIndex,
		CopiesAtMint:   m.CopiesAtMint,
		Approvals:      approvals,
		NextApprovalID: m.NextApprovalID,
		IssuedAt:       m.IssuedAt,
	}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "nft-core/series-ledger",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("ledger repository operation failed", fields...)
	return err
}
