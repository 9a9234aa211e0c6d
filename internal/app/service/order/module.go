package order

import (
	"github.com/fatflowers/memberpay/internal/app/service/membership"
	"github.com/fatflowers/memberpay/internal/app/service/notification_log"
	"github.com/fatflowers/memberpay/internal/app/service/plancatalog"
	"github.com/fatflowers/memberpay/internal/platform/razorpay"
	"github.com/fatflowers/memberpay/internal/platform/redis"
	"github.com/fatflowers/memberpay/pkg/config"
	"github.com/fatflowers/memberpay/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Config      *config.Config
	Log         *zap.SugaredLogger
	Gateway     *razorpay.Client
	Orders      OrderStore
	Memberships *membership.Service
	Catalog     *plancatalog.Catalog
	Redis       *redis.Client
	Audit       *notification_log.Service
	Metrics     *metrics.Recorder
}

func newCoordinator(p Params) *Coordinator {
	var locker Locker = noopLocker{}
	if p.Redis != nil {
		locker = p.Redis
	}
	return NewCoordinator(Config{
		KeyID:              p.Config.Razorpay.KeyID,
		KeySecret:          p.Config.Razorpay.KeySecret,
		Currency:           p.Config.Razorpay.Currency,
		ReceiptPrefix:      p.Config.Payment.ReceiptPrefix,
		CallTimeout:        p.Config.Payment.CallTimeout,
		StrictOrderBinding: p.Config.Payment.StrictOrderBinding,
	}, p.Gateway, p.Orders, p.Memberships, p.Catalog,
		WithLocker(locker),
		WithAudit(p.Audit),
		WithMetrics(p.Metrics),
		WithLogger(p.Log),
	)
}

func newReconciler(cfg *config.Config, orders OrderStore, memberships *membership.Service, catalog *plancatalog.Catalog, log *zap.SugaredLogger, rec *metrics.Recorder) *Reconciler {
	return NewReconciler(cfg.Reconcile, orders, memberships, catalog, log, rec)
}

func newRecorder() (*metrics.Recorder, error) {
	return metrics.NewRecorder(prometheus.DefaultRegisterer)
}

// Module exposes the order lifecycle via Fx.
var Module = fx.Options(
	fx.Provide(
		NewStore,
		func(s *Store) OrderStore { return s },
		newRecorder,
		newCoordinator,
		newReconciler,
	),
	fx.Invoke(registerReconcileLoop),
)
