package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Webhook event names that carry a captured payment.
const (
	EventPaymentCaptured = "payment.captured"
	EventOrderPaid       = "order.paid"
)

// WebhookSignatureHeader carries hex(HMAC-SHA256(webhookSecret, rawBody)).
const WebhookSignatureHeader = "X-Razorpay-Signature"

// WebhookSignature signs a raw webhook body.
func WebhookSignature(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookSignature checks the signature over the exact bytes received.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	return equalSignatures([]byte(WebhookSignature(body, secret)), []byte(signature))
}

type PaymentEntity struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Method   string `json:"method"`
}

type WebhookEvent struct {
	Entity    string   `json:"entity"`
	AccountID string   `json:"account_id"`
	Event     string   `json:"event"`
	Contains  []string `json:"contains"`
	Payload   struct {
		Payment *struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
	CreatedAt int64 `json:"created_at"`
}

// ParseWebhookEvent decodes a webhook body. It does not verify the signature.
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}
	if ev.Event == "" {
		return nil, fmt.Errorf("decode webhook: missing event")
	}
	return &ev, nil
}

// Payment returns the payment entity, nil when the event carries none.
func (e *WebhookEvent) Payment() *PaymentEntity {
	if e == nil || e.Payload.Payment == nil {
		return nil
	}
	return &e.Payload.Payment.Entity
}

// Time is the event creation time, zero when absent.
func (e *WebhookEvent) Time() time.Time {
	if e == nil || e.CreatedAt == 0 {
		return time.Time{}
	}
	return time.Unix(e.CreatedAt, 0).UTC()
}

// IsCapture reports whether the event confirms a captured payment.
func (e *WebhookEvent) IsCapture() bool {
	if e == nil {
		return false
	}
	switch e.Event {
	case EventPaymentCaptured, EventOrderPaid:
		p := e.Payment()
		return p != nil && p.ID != "" && p.OrderID != "" && p.Status == "captured"
	default:
		return false
	}
}
