package models

import (
	"time"

	"github.com/fatflowers/memberpay/pkg/types"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// MembershipOrder is a local record of a gateway order for a membership plan.
// Amount, currency and gateway order id never change after creation; the
// payment fields are written once, together with status=completed.
type MembershipOrder struct {
	ID       string            `gorm:"column:id;primary_key;type:uuid" json:"id"`
	UserID   string            `gorm:"column:user_id;type:varchar(64);not null;index:idx_membership_order_user_id" json:"user_id"`
	PlanID   string            `gorm:"column:plan_id;type:varchar(64);not null" json:"plan_id"`
	PlanName string            `gorm:"column:plan_name;type:varchar(128)" json:"plan_name"`
	Amount   decimal.Decimal   `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Currency string            `gorm:"column:currency;type:varchar(16);not null" json:"currency"`
	// AmountMinor is the amount in the gateway's minor unit (paise for INR).
	AmountMinor    int64             `gorm:"column:amount_minor;type:bigint;not null" json:"amount_minor"`
	Receipt        string            `gorm:"column:receipt;type:varchar(64)" json:"receipt"`
	GatewayOrderID string            `gorm:"column:gateway_order_id;type:varchar(64);not null;uniqueIndex" json:"gateway_order_id"`
	Status         types.OrderStatus `gorm:"column:status;type:varchar(32);not null;index:idx_membership_order_status" json:"status"`

	GatewayPaymentID *string    `gorm:"column:gateway_payment_id;type:varchar(64)" json:"gateway_payment_id"`
	GatewaySignature *string    `gorm:"column:gateway_signature;type:varchar(128)" json:"-"`
	CompletedAt      *time.Time `gorm:"column:completed_at;default:null" json:"completed_at"`
	// MembershipAppliedAt is set once the user's membership reflects this
	// order. Completed orders with a null value need reconciliation.
	MembershipAppliedAt *time.Time `gorm:"column:membership_applied_at;default:null" json:"membership_applied_at"`

	Notes     datatypes.JSONType[map[string]string] `gorm:"column:notes;type:jsonb" json:"notes"`
	CreatedAt time.Time                             `json:"created_at"`
	UpdatedAt time.Time                             `json:"updated_at"`
}

func (MembershipOrder) TableName() string {
	return "membership_order"
}

func (o *MembershipOrder) IsCompleted() bool {
	return o != nil && o.Status == types.OrderStatusCompleted
}

// NeedsReconcile reports a completed order whose membership write never landed.
func (o *MembershipOrder) NeedsReconcile() bool {
	return o.IsCompleted() && o.MembershipAppliedAt == nil
}
