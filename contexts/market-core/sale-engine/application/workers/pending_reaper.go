package workers

import (
	"context"
	"log/slog"
	"time"

	"mintery/contexts/market-core/sale-engine/application"
)

// PendingReaper refunds purchase settlements stranded between the deposit
// capture and the transfer resolution, e.g. by a process crash. Anything that
// old can no longer resolve in process.
type PendingReaper struct {
	Service   *application.Service
	TTL       time.Duration
	BatchSize int
	Logger    *slog.Logger
}

func (r PendingReaper) RunOnce(ctx context.Context) error {
	ttl := r.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	refunded, err := r.Service.RefundExpiredPendings(ctx, ttl, limit)
	if err != nil {
		application.ResolveLogger(r.Logger).Error("pending settlement reap failed",
			"event", "market_pending_reap_failed",
			"module", "market-core/sale-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if refunded > 0 {
		application.ResolveLogger(r.Logger).Info("pending settlement reap completed",
			"event", "market_pending_reap_completed",
			"module", "market-core/sale-engine",
			"layer", "worker",
			"refunded_count", refunded,
		)
	}
	return nil
}
