package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fatflowers/memberpay/docs"
	"github.com/fatflowers/memberpay/internal/app/api/handlers"
	mw "github.com/fatflowers/memberpay/internal/app/api/middleware"
	"github.com/fatflowers/memberpay/internal/app/service/membership"
	nh "github.com/fatflowers/memberpay/internal/app/service/notification_handler"
	notificationlog "github.com/fatflowers/memberpay/internal/app/service/notification_log"
	"github.com/fatflowers/memberpay/internal/app/service/order"
	"github.com/fatflowers/memberpay/internal/app/service/plancatalog"
	"github.com/fatflowers/memberpay/internal/app/service/statistics"
	"github.com/fatflowers/memberpay/internal/platform/redis"
	cfgpkg "github.com/fatflowers/memberpay/pkg/config"
	metrics "github.com/fatflowers/memberpay/pkg/metrics"
	"github.com/fatflowers/memberpay/pkg/types"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RouteParams struct {
	fx.In

	Lifecycle   fx.Lifecycle
	Log         *zap.SugaredLogger
	Config      *cfgpkg.Config
	DB          *gorm.DB
	Redis       *redis.Client
	Coordinator *order.Coordinator
	Orders      *order.Store
	Reconciler  *order.Reconciler
	Memberships *membership.Service
	Catalog     *plancatalog.Catalog
	Audit       *notificationlog.Service
	Stats       *statistics.Service
	Webhook     *nh.NotificationHandler
}

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

func healthChecks(gdb *gorm.DB, rc *redis.Client) map[string]handlers.Pinger {
	checks := map[string]handlers.Pinger{}
	if gdb != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if rc != nil {
		checks["redis"] = rc.Ping
	}
	return checks
}

func registerRoutes(r *gin.Engine, p RouteParams) {
	log, cfg := p.Log, p.Config

	// Prometheus metrics
	if cfg != nil && cfg.MetricsAddr != "" {
		prom := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return "unmatched"
			},
			Logger: log,
		})
		prom.SetListenAddress(cfg.MetricsAddr)
		prom.Use(r)
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if srv := prom.Server(); srv != nil {
					return srv.Shutdown(ctx)
				}
				return nil
			},
		})

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(log))
	handlers.RegisterHealthRoutes(pub, healthChecks(p.DB, p.Redis))
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(log))

	// Admin APIs
	admin := apiV1.Group("/admin")
	handlers.RegisterAdminRoutes(admin, p.Orders, p.Reconciler, p.Stats, log)
	handlers.RegisterOrderAuditRoutes(admin, p.Orders, p.Audit, p.Coordinator, log)

	// Payment v2 APIs, bearer auth when a secret is configured
	apiV2 := r.Group("/api/v2")
	apiV2.Use(mw.RequestLoggerMiddleware(log), mw.BearerAuthMiddleware(cfg.Auth.JWTSecret, log), mw.AccessLogMiddleware(log))
	payment := apiV2.Group("/payment")
	handlers.RegisterPaymentRoutes(payment, p.Coordinator, log)
	handlers.RegisterPlanRoutes(payment, p.Catalog)
	handlers.RegisterMembershipRoutes(apiV2, p.Memberships, log)

	// Webhooks authenticate by body signature, not bearer token
	if p.Webhook != nil && p.Webhook.Enabled(types.PaymentProviderRazorpay) {
		hooks := r.Group("/api/v2/payment/webhook")
		hooks.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(log))
		handlers.RegisterPaymentWebhookRoutes(hooks, p.Webhook, log)
	}
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
