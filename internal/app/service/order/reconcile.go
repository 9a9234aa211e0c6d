package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatflowers/memberpay/internal/app/service/membership"
	"github.com/fatflowers/memberpay/internal/app/service/plancatalog"
	"github.com/fatflowers/memberpay/pkg/config"
	"github.com/fatflowers/memberpay/pkg/logctx"
	"github.com/fatflowers/memberpay/pkg/metrics"
	"github.com/fatflowers/memberpay/pkg/types"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ReconcileResult struct {
	Scanned        int      `json:"scanned"`
	Repaired       int      `json:"repaired"`
	// Superseded orders were already overridden by a newer activation.
	Superseded     int      `json:"superseded"`
	Failed         int      `json:"failed"`
	FailedOrderIDs []string `json:"failed_order_ids,omitempty"`
}

// Reconciler finishes verifications that completed the order but failed to
// update the membership. Replays are safe: membership activations older than
// the stored one are ignored.
type Reconciler struct {
	cfg         config.ReconcileConfig
	orders      OrderStore
	memberships MembershipStore
	catalog     *plancatalog.Catalog
	metrics     *metrics.Recorder
	log         *zap.SugaredLogger
	now         func() time.Time
}

func NewReconciler(cfg config.ReconcileConfig, orders OrderStore, memberships MembershipStore, catalog *plancatalog.Catalog, log *zap.SugaredLogger, rec *metrics.Recorder) *Reconciler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Reconciler{
		cfg:         cfg,
		orders:      orders,
		memberships: memberships,
		catalog:     catalog,
		metrics:     rec,
		log:         log,
		now:         time.Now,
	}
}

// RunOnce repairs one batch of completed orders older than the grace period.
func (r *Reconciler) RunOnce(ctx context.Context) (res *ReconcileResult, err error) {
	start := time.Now()
	defer func() { r.metrics.Observe("reconcile", Outcome(err), start) }()

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()
	logger := logctx.FromCtx(ctx, r.log)

	cutoff := r.now().UTC().Add(-r.cfg.Grace)
	rows, err := r.orders.ListUnapplied(ctx, cutoff, r.cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	res = &ReconcileResult{Scanned: len(rows)}
	var errs error
	for _, o := range rows {
		if ctx.Err() != nil {
			errs = errors.Join(errs, ctx.Err())
			break
		}
		if o.CompletedAt == nil {
			continue
		}
		completedAt := o.CompletedAt.UTC()
		err := r.memberships.Activate(ctx, &membership.Activation{
			UserID:      o.UserID,
			Plan:        o.PlanID,
			OrderID:     o.ID,
			ActivatedAt: completedAt,
			ExpireAt:    completedAt.AddDate(0, 0, r.catalog.DurationDays(o.PlanID)),
			Reason:      types.MembershipChangeReasonReconcile,
		})
		superseded := errors.Is(err, membership.ErrStaleActivation)
		if superseded {
			err = nil
		}
		if err == nil {
			err = r.orders.MarkMembershipApplied(ctx, o.ID, r.now().UTC())
		}
		if err != nil {
			res.Failed++
			res.FailedOrderIDs = append(res.FailedOrderIDs, o.ID)
			errs = errors.Join(errs, fmt.Errorf("order %s: %w", o.ID, err))
			logger.Errorw("reconcile order failed", "order_id", o.ID, "user_id", o.UserID, "error", err)
			continue
		}
		if superseded {
			res.Superseded++
			logger.Infow("reconcile skipped superseded order", "order_id", o.ID, "user_id", o.UserID)
			continue
		}
		res.Repaired++
		logger.Infow("reconciled partial verification", "order_id", o.ID, "user_id", o.UserID, "plan_id", o.PlanID)
	}
	return res, errs
}

// RunForever calls RunOnce every interval until ctx is done.
func (r *Reconciler) RunForever(ctx context.Context) {
	if r.cfg.Interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if res, err := r.RunOnce(ctx); err != nil {
			r.log.Warnw("reconcile run failed", "error", err)
		} else if res.Scanned > 0 {
			r.log.Infow("reconcile run finished", "scanned", res.Scanned, "repaired", res.Repaired)
		}
	}
}

func registerReconcileLoop(lc fx.Lifecycle, cfg *config.Config, r *Reconciler, log *zap.SugaredLogger) {
	if cfg.Reconcile.Interval <= 0 {
		log.Infow("reconcile loop disabled")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			go r.RunForever(ctx)
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
			return nil
		},
	})
}
