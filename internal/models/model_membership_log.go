package models

import (
	"time"

	"github.com/fatflowers/memberpay/pkg/types"

	"gorm.io/datatypes"
)

// MembershipLog records changes to user memberships.
// Use case: troubleshooting and reconciliation audits.
type MembershipLog struct {
	ID      string                       `gorm:"column:id;type:uuid;primary_key"`
	UserID  string                       `gorm:"column:user_id;type:varchar(64);index:idx_membership_log_user_id;not null"`
	OrderID string                       `gorm:"column:order_id;type:varchar(64)"`
	Reason  types.MembershipChangeReason `gorm:"column:reason;type:varchar(64);not null"`
	// Before stores membership data before the change in JSON format.
	Before datatypes.JSONType[*UserMembership] `gorm:"column:before;type:jsonb"`
	// After stores membership data after the change in JSON format.
	After     datatypes.JSONType[*UserMembership] `gorm:"column:after;type:jsonb"`
	CreatedAt time.Time
}

func (MembershipLog) TableName() string {
	return "membership_log"
}
