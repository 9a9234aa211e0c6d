package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fatflowers/memberpay/internal/app/service/membership"
	"github.com/fatflowers/memberpay/internal/models"
	"github.com/fatflowers/memberpay/internal/platform/razorpay"
	"github.com/fatflowers/memberpay/pkg/types"
)

type fakeGateway struct {
	mu       sync.Mutex
	calls    []*razorpay.CreateOrderRequest
	fn       func(ctx context.Context, req *razorpay.CreateOrderRequest) (*razorpay.Order, error)
	seq      int
	orders   map[string]*razorpay.Order
	fetchErr error
}

func (g *fakeGateway) CreateOrder(ctx context.Context, req *razorpay.CreateOrderRequest) (*razorpay.Order, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	g.seq++
	seq := g.seq
	g.mu.Unlock()
	if g.fn != nil {
		return g.fn(ctx, req)
	}
	o := &razorpay.Order{
		ID:       fmt.Sprintf("order_test%d", seq),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
		Notes:    req.Notes,
	}
	g.mu.Lock()
	if g.orders == nil {
		g.orders = map[string]*razorpay.Order{}
	}
	cp := *o
	g.orders[o.ID] = &cp
	g.mu.Unlock()
	return o, nil
}

func (g *fakeGateway) FetchOrder(ctx context.Context, gatewayOrderID string) (*razorpay.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	o, ok := g.orders[gatewayOrderID]
	if !ok {
		return nil, &razorpay.APIError{StatusCode: 400, Code: "BAD_REQUEST_ERROR", Description: "The id provided does not exist"}
	}
	cp := *o
	return &cp, nil
}

// markPaid mimics the gateway capturing the full amount of an order.
func (g *fakeGateway) markPaid(gatewayOrderID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if o, ok := g.orders[gatewayOrderID]; ok {
		o.Status = "paid"
		o.AmountPaid = o.Amount
		o.Attempts++
	}
}

// memStore is an OrderStore with the same conditional completion semantics
// as the gorm store.
type memStore struct {
	mu          sync.Mutex
	orders      map[string]*models.MembershipOrder
	createErr   error
	getErr      error
	completeErr error
	markErr     error
}

func newMemStore() *memStore {
	return &memStore{orders: map[string]*models.MembershipOrder{}}
}

func (s *memStore) Create(ctx context.Context, o *models.MembershipOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *memStore) Get(ctx context.Context, id string) (*models.MembershipOrder, error) {
	s.mu.Lock()
	getErr := s.getErr
	s.mu.Unlock()
	if getErr != nil {
		if errors.Is(getErr, context.DeadlineExceeded) {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return nil, getErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	cp := *o
	return &cp, nil
}

func (s *memStore) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.MembershipOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	for _, o := range s.orders {
		if o.GatewayOrderID == gatewayOrderID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: gateway order %s", ErrOrderNotFound, gatewayOrderID)
}

func (s *memStore) Complete(ctx context.Context, id string, c *Completion) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completeErr != nil {
		return false, s.completeErr
	}
	o, ok := s.orders[id]
	if !ok || o.Status != types.OrderStatusPending {
		return false, nil
	}
	o.Status = types.OrderStatusCompleted
	o.GatewayPaymentID = &c.GatewayPaymentID
	o.GatewaySignature = &c.GatewaySignature
	completedAt := c.CompletedAt
	o.CompletedAt = &completedAt
	return true, nil
}

func (s *memStore) MarkMembershipApplied(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return s.markErr
	}
	if o, ok := s.orders[id]; ok && o.IsCompleted() && o.MembershipAppliedAt == nil {
		o.MembershipAppliedAt = &at
	}
	return nil
}

func (s *memStore) ListUnapplied(ctx context.Context, completedBefore time.Time, limit int) ([]*models.MembershipOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.MembershipOrder
	for _, o := range s.orders {
		if o.NeedsReconcile() && o.CompletedAt.Before(completedBefore) {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.Before(*out[j].CompletedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) get(id string) *models.MembershipOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil
	}
	cp := *o
	return &cp
}

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

type fakeMemberships struct {
	mu     sync.Mutex
	byUser map[string]*membership.Activation
	calls  int
	err    error
}

func newFakeMemberships() *fakeMemberships {
	return &fakeMemberships{byUser: map[string]*membership.Activation{}}
}

func (m *fakeMemberships) Activate(ctx context.Context, a *membership.Activation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	if prev, ok := m.byUser[a.UserID]; ok && a.ActivatedAt.Before(prev.ActivatedAt) {
		expireAt := prev.ExpireAt
		return &membership.StaleActivationError{Stored: models.UserMembership{
			UserID:      prev.UserID,
			Status:      types.MembershipStatusActive,
			Plan:        prev.Plan,
			ExpireAt:    &expireAt,
			LastOrderID: prev.OrderID,
		}}
	}
	cp := *a
	m.byUser[a.UserID] = &cp
	return nil
}

func (m *fakeMemberships) get(userID string) *membership.Activation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byUser[userID]
}

func (m *fakeMemberships) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type fakeAudit struct {
	mu   sync.Mutex
	logs []*models.PaymentNotificationLog
}

func (a *fakeAudit) Save(ctx context.Context, log *models.PaymentNotificationLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, log)
}

func (a *fakeAudit) statuses() []models.PaymentNotificationLogStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.PaymentNotificationLogStatus, 0, len(a.logs))
	for _, l := range a.logs {
		out = append(out, l.Status)
	}
	return out
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

func (l *fakeLocker) TryLock(ctx context.Context, orderID string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return func() {}, false, l.err
	}
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[orderID] {
		return func() {}, false, nil
	}
	l.held[orderID] = true
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, orderID)
	}, true, nil
}
