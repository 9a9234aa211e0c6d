package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fatflowers/memberpay/internal/app/service/plancatalog"
	"github.com/fatflowers/memberpay/pkg/config"
	"github.com/fatflowers/memberpay/pkg/types"

	"github.com/stretchr/testify/require"
)

func TestReconciler_HealsPartialVerification(t *testing.T) {
	h := newHarness(t)
	resp := h.createOrder(t, "u1", "enterprise")
	completedAt := h.now

	h.memberships.err = errors.New("user store unavailable")
	_, err := h.c.VerifyPayment(context.Background(), verifyRequest(resp, "u1", "enterprise"))
	require.ErrorIs(t, err, ErrPartialVerification)
	h.memberships.err = nil

	r := NewReconciler(config.ReconcileConfig{Grace: 2 * time.Minute}, h.store, h.memberships, plancatalog.New(nil, 0), nil, nil)

	// inside the grace period nothing happens
	r.now = func() time.Time { return completedAt.Add(time.Minute) }
	res, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, res.Scanned)

	r.now = func() time.Time { return completedAt.Add(time.Hour) }
	res, err = r.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, res.Scanned)
	require.Equal(t, 1, res.Repaired)

	m := h.memberships.get("u1")
	require.NotNil(t, m)
	require.Equal(t, types.MembershipChangeReasonReconcile, m.Reason)
	require.True(t, m.ActivatedAt.Equal(completedAt))
	// expiry is anchored to the completion, not to the repair
	require.True(t, m.ExpireAt.Equal(time.Date(2024, 7, 29, 9, 30, 0, 0, time.UTC)))
	require.NotNil(t, h.store.get(resp.OrderID).MembershipAppliedAt)

	res, err = r.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, res.Scanned)
}

func TestReconciler_DoesNotOverrideNewerMembership(t *testing.T) {
	h := newHarness(t)
	older := h.createOrder(t, "u1", "enterprise")

	h.memberships.err = errors.New("user store unavailable")
	_, err := h.c.VerifyPayment(context.Background(), verifyRequest(older, "u1", "enterprise"))
	require.ErrorIs(t, err, ErrPartialVerification)
	h.memberships.err = nil

	h.now = h.now.Add(24 * time.Hour)
	newer := h.createOrder(t, "u1", "basic")
	fresh, err := h.c.VerifyPayment(context.Background(), verifyRequest(newer, "u1", "basic"))
	require.NoError(t, err)

	r := NewReconciler(config.ReconcileConfig{}, h.store, h.memberships, plancatalog.New(nil, 0), nil, nil)
	r.now = func() time.Time { return h.now.Add(time.Hour) }
	res, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, res.Repaired)
	require.Equal(t, 1, res.Superseded)
	require.NotNil(t, h.store.get(older.OrderID).MembershipAppliedAt)

	m := h.memberships.get("u1")
	require.Equal(t, newer.OrderID, m.OrderID)
	require.True(t, m.ExpireAt.Equal(fresh.ExpiryDate))

	res, err = r.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, res.Scanned)
}

func TestReconciler_ReportsFailures(t *testing.T) {
	h := newHarness(t)
	resp := h.createOrder(t, "u1", "basic")
	h.memberships.err = errors.New("down")
	_, err := h.c.VerifyPayment(context.Background(), verifyRequest(resp, "u1", "basic"))
	require.ErrorIs(t, err, ErrPartialVerification)

	r := NewReconciler(config.ReconcileConfig{}, h.store, h.memberships, plancatalog.New(nil, 0), nil, nil)
	r.now = func() time.Time { return h.now.Add(time.Hour) }
	res, err := r.RunOnce(context.Background())
	require.Error(t, err)
	require.Equal(t, 1, res.Failed)
	require.Equal(t, []string{resp.OrderID}, res.FailedOrderIDs)
	require.True(t, h.store.get(resp.OrderID).NeedsReconcile())
}

func TestReconciler_RunForeverStops(t *testing.T) {
	h := newHarness(t)
	r := NewReconciler(config.ReconcileConfig{Interval: 5 * time.Millisecond}, h.store, h.memberships, plancatalog.New(nil, 0), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.RunForever(ctx)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunForever did not stop")
	}
}
