package notification_log

import (
	"context"
	"fmt"

	"github.com/fatflowers/memberpay/internal/models"
	"github.com/fatflowers/memberpay/pkg/logctx"
	"github.com/fatflowers/memberpay/pkg/tool"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Save asynchronously persists a payment notification log. Nil input is ignored.
func (s *Service) Save(ctx context.Context, log *models.PaymentNotificationLog) {
	if log == nil {
		return
	}
	logger := logctx.FromCtx(ctx, s.log)
	if log.TraceID == "" {
		log.TraceID = logctx.TraceID(ctx)
	}
	go func() {
		if log.ID == "" {
			log.ID = tool.GenerateUUIDV7()
		}
		if err := s.db.Save(log).Error; err != nil {
			logger.Errorf("failed to save notification log: %v", err)
		}
	}()
}

// ListByOrder returns the attempts recorded for a local order, newest first.
// Webhook deliveries that never resolved a local order are matched by
// gatewayOrderID when it is set.
func (s *Service) ListByOrder(ctx context.Context, orderID, gatewayOrderID string) ([]*models.PaymentNotificationLog, error) {
	tx := s.db.WithContext(ctx).Where("order_id = ?", orderID)
	if gatewayOrderID != "" {
		tx = tx.Or("gateway_order_id = ?", gatewayOrderID)
	}
	var rows []*models.PaymentNotificationLog
	if err := tx.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list notification logs: %w", err)
	}
	return rows, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
