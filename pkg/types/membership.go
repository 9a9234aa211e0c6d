package types

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
)

type MembershipStatus string

const (
	MembershipStatusActive   MembershipStatus = "active"
	MembershipStatusInactive MembershipStatus = "inactive"
)

type MembershipChangeReason string

const (
	MembershipChangeReasonPurchase  MembershipChangeReason = "purchase"
	MembershipChangeReasonReconcile MembershipChangeReason = "reconcile"
)

// UserMembershipInfo is the client-facing view of a user's membership.
type UserMembershipInfo struct {
	UserID   string           `json:"user_id"`
	Status   MembershipStatus `json:"status"`
	Plan     string           `json:"plan"`
	ExpireAt *time.Time       `json:"expire_at"`
	Valid    bool             `json:"valid"`
}
