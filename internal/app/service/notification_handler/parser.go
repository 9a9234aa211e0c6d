package notification_handler

import (
	"context"
	"time"

	"github.com/fatflowers/memberpay/internal/app/service/order"
	"github.com/fatflowers/memberpay/pkg/types"
)

// NotificationParser exposes a verified provider notification.
type NotificationParser interface {
	GetProvider(ctx context.Context) types.PaymentProvider
	GetNotificationTime(ctx context.Context) time.Time
	GetEventType(ctx context.Context) string
	GetGatewayOrderID(ctx context.Context) string
	// GetCapturedPayment returns nil when the notification is not a capture.
	GetCapturedPayment(ctx context.Context) *order.CapturedPayment
	GetData(ctx context.Context) any
}
