package notification_handler

import (
	"context"
	"fmt"
	"time"

	"github.com/fatflowers/memberpay/internal/app/service/order"
	"github.com/fatflowers/memberpay/internal/platform/razorpay"
	"github.com/fatflowers/memberpay/pkg/types"
)

type RazorpayNotificationParser struct {
	Event      *razorpay.WebhookEvent
	receivedAt time.Time
}

func (p *RazorpayNotificationParser) GetProvider(ctx context.Context) types.PaymentProvider {
	return types.PaymentProviderRazorpay
}

func (p *RazorpayNotificationParser) GetNotificationTime(ctx context.Context) time.Time {
	if t := p.Event.Time(); !t.IsZero() {
		return t
	}
	return p.receivedAt
}

func (p *RazorpayNotificationParser) GetEventType(ctx context.Context) string {
	return p.Event.Event
}

func (p *RazorpayNotificationParser) GetGatewayOrderID(ctx context.Context) string {
	if pay := p.Event.Payment(); pay != nil {
		return pay.OrderID
	}
	return ""
}

func (p *RazorpayNotificationParser) GetCapturedPayment(ctx context.Context) *order.CapturedPayment {
	if !p.Event.IsCapture() {
		return nil
	}
	pay := p.Event.Payment()
	return &order.CapturedPayment{
		GatewayOrderID:   pay.OrderID,
		GatewayPaymentID: pay.ID,
		Amount:           pay.Amount,
		Currency:         pay.Currency,
	}
}

func (p *RazorpayNotificationParser) GetData(ctx context.Context) any {
	return p.Event
}

// GetRazorpayNotificationParser authenticates body with the webhook secret
// before decoding it.
func GetRazorpayNotificationParser(secret string, n *Notification, receivedAt time.Time) (NotificationParser, error) {
	if !razorpay.VerifyWebhookSignature(n.Body, n.Signature, secret) {
		return nil, ErrInvalidSignature
	}
	ev, err := razorpay.ParseWebhookEvent(n.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", order.ErrInvalidRequest, err)
	}
	return &RazorpayNotificationParser{Event: ev, receivedAt: receivedAt}, nil
}
