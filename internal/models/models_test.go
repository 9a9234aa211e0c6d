package models

import (
	"testing"
	"time"

	"github.com/fatflowers/memberpay/pkg/types"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestTableNames(t *testing.T) {
	require.Equal(t, "membership_order", MembershipOrder{}.TableName())
	require.Equal(t, "user_membership", UserMembership{}.TableName())
	require.Equal(t, "membership_log", MembershipLog{}.TableName())
	require.Equal(t, "payment_notification_log", PaymentNotificationLog{}.TableName())
}

func TestUserMembership_ValidAt(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := &UserMembership{Status: types.MembershipStatusActive, ExpireAt: lo.ToPtr(now.Add(time.Hour))}
	require.True(t, m.ValidAt(now))
	require.False(t, m.ValidAt(now.Add(2*time.Hour)))

	m.Status = types.MembershipStatusInactive
	require.False(t, m.ValidAt(now))

	var nilM *UserMembership
	require.False(t, nilM.ValidAt(now))
}

func TestMembershipOrder_NeedsReconcile(t *testing.T) {
	o := &MembershipOrder{Status: types.OrderStatusPending}
	require.False(t, o.NeedsReconcile())

	o.Status = types.OrderStatusCompleted
	require.True(t, o.NeedsReconcile())

	o.MembershipAppliedAt = lo.ToPtr(time.Now())
	require.False(t, o.NeedsReconcile())
}
