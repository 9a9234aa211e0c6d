package models

import (
	"time"

	"github.com/fatflowers/memberpay/pkg/types"
)

// UserMembership is the membership facet of a user.
// Use Valid() to determine whether the membership is currently valid.
type UserMembership struct {
	ID     string                 `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID string                 `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex" json:"user_id"`
	Status types.MembershipStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	// Plan is the last plan activated.
	Plan string `gorm:"column:plan;type:varchar(64)" json:"plan"`
	// ExpireAt is only meaningful while Status is active.
	ExpireAt *time.Time `gorm:"column:expire_at;default:null" json:"expire_at"`
	// ActivatedAt is the completion time of the order that produced this state.
	// Older activations never overwrite newer ones.
	ActivatedAt *time.Time `gorm:"column:activated_at;default:null" json:"activated_at"`
	LastOrderID string     `gorm:"column:last_order_id;type:varchar(64)" json:"last_order_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (UserMembership) TableName() string {
	return "user_membership"
}

func (m *UserMembership) Valid() bool {
	return m.ValidAt(time.Now())
}

func (m *UserMembership) ValidAt(at time.Time) bool {
	return m != nil &&
		m.Status == types.MembershipStatusActive &&
		m.ExpireAt != nil &&
		m.ExpireAt.After(at)
}

// Info converts the record into the client view.
func (m *UserMembership) Info(at time.Time) *types.UserMembershipInfo {
	return &types.UserMembershipInfo{
		UserID:   m.UserID,
		Status:   m.Status,
		Plan:     m.Plan,
		ExpireAt: m.ExpireAt,
		Valid:    m.ValidAt(at),
	}
}
