package notification_handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	notificationlog "github.com/fatflowers/memberpay/internal/app/service/notification_log"
	"github.com/fatflowers/memberpay/internal/app/service/order"
	"github.com/fatflowers/memberpay/internal/models"
	"github.com/fatflowers/memberpay/pkg/config"
	"github.com/fatflowers/memberpay/pkg/logctx"
	"github.com/fatflowers/memberpay/pkg/types"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var (
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrUnsupportedProvider = errors.New("unsupported provider")
)

// Notification is a raw provider callback. Body must be the exact bytes
// received; signatures are computed over them.
type Notification struct {
	Body      []byte
	Signature string
}

type Confirmer interface {
	ConfirmCaptured(ctx context.Context, p *order.CapturedPayment) (*order.VerifyPaymentResult, error)
}

type NotificationHandler struct {
	cfg       *config.Config
	notifSvc  order.AuditLogger
	confirmer Confirmer
	Logger    *zap.SugaredLogger
	now       func() time.Time
}

func NewNotificationHandler(cfg *config.Config, notif order.AuditLogger, confirmer Confirmer, log *zap.SugaredLogger) *NotificationHandler {
	return &NotificationHandler{cfg: cfg, notifSvc: notif, confirmer: confirmer, Logger: log, now: time.Now}
}

// Enabled reports whether the provider has a webhook secret configured.
func (h *NotificationHandler) Enabled(provider types.PaymentProvider) bool {
	return provider == types.PaymentProviderRazorpay && h.cfg.Razorpay.WebhookSecret != ""
}

// HandleNotification verifies a provider callback and completes the order it
// confirms. Duplicate deliveries of an already completed order succeed.
func (h *NotificationHandler) HandleNotification(ctx context.Context, provider types.PaymentProvider, n *Notification) (resErr error) {
	logger := logctx.FromCtx(ctx, h.Logger).With("provider", provider)

	// Build provider-specific parser
	var parser NotificationParser
	var err error
	switch provider {
	case types.PaymentProviderRazorpay:
		parser, err = GetRazorpayNotificationParser(h.cfg.Razorpay.WebhookSecret, n, h.now().UTC())
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
	if err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			logger.Warnw("security: webhook signature mismatch", "body_bytes", len(n.Body))
			h.notifSvc.Save(ctx, &models.PaymentNotificationLog{
				ProviderID:       string(provider),
				NotificationTime: h.now().UTC(),
				Data:             datatypes.JSON(`{"reason":"invalid signature"}`),
				Status:           models.PaymentNotificationLogStatusRejected,
			})
		}
		return err
	}

	gatewayOrderID := parser.GetGatewayOrderID(ctx)
	dataBytes, _ := json.Marshal(parser.GetData(ctx))

	// Save 'received' log
	h.notifSvc.Save(ctx, &models.PaymentNotificationLog{
		ProviderID:       string(provider),
		GatewayOrderID:   gatewayOrderID,
		NotificationTime: parser.GetNotificationTime(ctx),
		Data:             datatypes.JSON(dataBytes),
		Status:           models.PaymentNotificationLogStatusReceived,
	})

	// Process notification → order → membership
	var res *order.VerifyPaymentResult
	ignored := false
	defer func() {
		resMap := map[string]any{"event": parser.GetEventType(ctx), "outcome": order.Outcome(resErr)}
		if ignored {
			resMap["outcome"] = "ignored"
		}
		var userID *string
		var orderID string
		if res != nil {
			resMap["expiry_date"] = res.ExpiryDate
			userID, orderID = lo.ToPtr(res.UserID), res.OrderID
		}
		resBytes, _ := json.Marshal(resMap)
		status := models.PaymentNotificationLogStatusHandled
		if resErr != nil {
			status = models.PaymentNotificationLogStatusHandleFailed
		}
		h.notifSvc.Save(ctx, &models.PaymentNotificationLog{
			ProviderID:       string(provider),
			UserID:           userID,
			OrderID:          orderID,
			GatewayOrderID:   gatewayOrderID,
			NotificationTime: h.now().UTC(),
			Data:             datatypes.JSON(dataBytes),
			Result:           lo.ToPtr(datatypes.JSON(resBytes)),
			Status:           status,
		})
	}()

	captured := parser.GetCapturedPayment(ctx)
	if captured == nil {
		ignored = true
		logger.Infow("webhook event ignored", "event", parser.GetEventType(ctx))
		return nil
	}

	res, resErr = h.confirmer.ConfirmCaptured(ctx, captured)
	if errors.Is(resErr, order.ErrAlreadyCompleted) {
		logger.Infow("webhook for completed order", "gateway_order_id", gatewayOrderID)
		resErr = nil
		return nil
	}
	if resErr != nil {
		logger.Errorw("webhook confirm failed", "gateway_order_id", gatewayOrderID, "error", resErr)
		return resErr
	}
	logger.Infow("webhook confirmed payment", "order_id", res.OrderID, "user_id", res.UserID)
	return nil
}

var Module = fx.Options(
	fx.Provide(
		func(cfg *config.Config, notif *notificationlog.Service, coord *order.Coordinator, log *zap.SugaredLogger) *NotificationHandler {
			return NewNotificationHandler(cfg, notif, coord, log)
		},
	),
)
