package membership

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fatflowers/memberpay/internal/models"
	"github.com/fatflowers/memberpay/internal/platform/db/dbtest"
	"github.com/fatflowers/memberpay/pkg/types"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(dbtest.New(t), zap.NewNop().Sugar())
}

func activation(userID, orderID string, at time.Time, days int) *Activation {
	return &Activation{
		UserID:      userID,
		Plan:        "basic",
		OrderID:     orderID,
		ActivatedAt: at,
		ExpireAt:    at.AddDate(0, 0, days),
		Reason:      types.MembershipChangeReasonPurchase,
	}
}

func TestActivate_CreatesAndUpdates(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	t1 := time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Activate(ctx, activation("u1", "o1", t1, 30)))

	m, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, types.MembershipStatusActive, m.Status)
	require.Equal(t, "basic", m.Plan)
	require.Equal(t, "o1", m.LastOrderID)
	require.True(t, m.ExpireAt.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))
	firstID := m.ID

	t2 := t1.Add(24 * time.Hour)
	a := activation("u1", "o2", t2, 180)
	a.Plan = "enterprise"
	require.NoError(t, s.Activate(ctx, a))

	m, err = s.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, firstID, m.ID)
	require.Equal(t, "enterprise", m.Plan)
	require.Equal(t, "o2", m.LastOrderID)
	// not cumulative: expiry is activation time + duration
	require.True(t, m.ExpireAt.Equal(t2.AddDate(0, 0, 180)))
}

func TestActivate_SkipsStaleAndReplays(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	newer := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	require.NoError(t, s.Activate(ctx, activation("u1", "o-new", newer, 30)))

	err := s.Activate(ctx, activation("u1", "o-old", older, 90))
	require.ErrorIs(t, err, ErrStaleActivation)
	var stale *StaleActivationError
	require.ErrorAs(t, err, &stale)
	require.Equal(t, "o-new", stale.Stored.LastOrderID)
	require.True(t, stale.Stored.ExpireAt.Equal(newer.AddDate(0, 0, 30)))

	require.NoError(t, s.Activate(ctx, activation("u1", "o-new", newer, 30)))

	m, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "o-new", m.LastOrderID)
	require.True(t, m.ExpireAt.Equal(time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)))
}

func TestActivate_LocksMembershipRow(t *testing.T) {
	db := dbtest.New(t)
	s := NewService(db, zap.NewNop().Sugar())

	var locked, insertIgnoresConflict bool
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("test:membership_lock", func(tx *gorm.DB) {
		if tx.Statement.Table == "user_membership" {
			_, ok := tx.Statement.Clauses["FOR"]
			locked = locked || ok
		}
	}))
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:membership_conflict", func(tx *gorm.DB) {
		if tx.Statement.Table == "user_membership" {
			_, ok := tx.Statement.Clauses["ON CONFLICT"]
			insertIgnoresConflict = insertIgnoresConflict || ok
		}
	}))

	require.NoError(t, s.Activate(context.Background(), activation("u1", "o1", time.Now().UTC(), 30)))
	require.True(t, locked, "stored membership must be read FOR UPDATE")
	require.True(t, insertIgnoresConflict, "first insert must tolerate a concurrent one")
}

func TestActivate_ConcurrentNewestWins(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Activate(ctx, activation("u1", fmt.Sprintf("o%d", i), base.Add(time.Duration(i)*time.Hour), 30))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, ErrStaleActivation)
		}
	}
	m, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "o4", m.LastOrderID)
	require.True(t, m.ExpireAt.Equal(base.Add(4*time.Hour).AddDate(0, 0, 30)))

	var n int64
	require.NoError(t, s.db.Model(&models.UserMembership{}).Where("user_id = ?", "u1").Count(&n).Error)
	require.Equal(t, int64(1), n)
}

func TestActivate_WritesChangeLog(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	require.NoError(t, s.Activate(ctx, activation("u1", "o1", time.Now().UTC(), 30)))

	require.Eventually(t, func() bool {
		var n int64
		s.db.Model(&models.MembershipLog{}).Where("user_id = ? AND order_id = ?", "u1", "o1").Count(&n)
		return n == 1
	}, time.Second, 10*time.Millisecond)
}

func TestActivate_Invalid(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	require.ErrorIs(t, s.Activate(ctx, nil), ErrInvalidActivation)
	require.ErrorIs(t, s.Activate(ctx, activation("", "o1", now, 30)), ErrInvalidActivation)
	require.ErrorIs(t, s.Activate(ctx, activation("u1", "o1", now, 0)), ErrInvalidActivation)
}

func TestGet_UnknownUserIsInactive(t *testing.T) {
	s := newTestService(t)
	m, err := s.Get(context.Background(), "nobody")
	require.NoError(t, err)
	require.Equal(t, types.MembershipStatusInactive, m.Status)
	require.False(t, m.Valid())

	info, err := s.GetInfo(context.Background(), "nobody")
	require.NoError(t, err)
	require.Equal(t, "nobody", info.UserID)
	require.False(t, info.Valid)
}

func TestGetInfo_Valid(t *testing.T) {
	s := newTestService(t)
	now := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now.Add(time.Hour) }
	require.NoError(t, s.Activate(context.Background(), activation("u1", "o1", now, 30)))

	info, err := s.GetInfo(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, info.Valid)
	require.True(t, info.ExpireAt.Equal(time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)))
}
