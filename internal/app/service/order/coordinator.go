package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fatflowers/memberpay/internal/app/service/membership"
	"github.com/fatflowers/memberpay/internal/app/service/plancatalog"
	"github.com/fatflowers/memberpay/internal/models"
	"github.com/fatflowers/memberpay/internal/platform/razorpay"
	"github.com/fatflowers/memberpay/pkg/logctx"
	"github.com/fatflowers/memberpay/pkg/metrics"
	"github.com/fatflowers/memberpay/pkg/tool"
	"github.com/fatflowers/memberpay/pkg/types"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Gateway creates and reads remote orders. Amounts are in minor units.
type Gateway interface {
	CreateOrder(ctx context.Context, req *razorpay.CreateOrderRequest) (*razorpay.Order, error)
	FetchOrder(ctx context.Context, gatewayOrderID string) (*razorpay.Order, error)
}

type MembershipStore interface {
	Activate(ctx context.Context, a *membership.Activation) error
}

// Locker serializes verifications of one order. release is never nil.
type Locker interface {
	TryLock(ctx context.Context, orderID string) (release func(), acquired bool, err error)
}

// AuditLogger records verification attempts. Save must not block.
type AuditLogger interface {
	Save(ctx context.Context, log *models.PaymentNotificationLog)
}

type noopLocker struct{}

func (noopLocker) TryLock(context.Context, string) (func(), bool, error) { return func() {}, true, nil }

type noopAudit struct{}

func (noopAudit) Save(context.Context, *models.PaymentNotificationLog) {}

type Config struct {
	// KeyID is public and returned to the checkout widget.
	KeyID string
	// KeySecret keys the payment signature. Never logged or returned.
	KeySecret          string
	Currency           string
	ReceiptPrefix      string
	CallTimeout        time.Duration
	StrictOrderBinding bool
}

type Option func(*Coordinator)

func WithLocker(l Locker) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.locker = l
		}
	}
}

func WithAudit(a AuditLogger) Option {
	return func(c *Coordinator) {
		if a != nil {
			c.audit = a
		}
	}
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Coordinator) { c.metrics = r }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// Coordinator runs the membership order lifecycle: gateway order, pending
// local order, signature verification, completion and membership activation.
// It keeps no per-request state.
type Coordinator struct {
	cfg         Config
	gateway     Gateway
	orders      OrderStore
	memberships MembershipStore
	catalog     *plancatalog.Catalog
	locker      Locker
	audit       AuditLogger
	metrics     *metrics.Recorder
	log         *zap.SugaredLogger
	now         func() time.Time
}

func NewCoordinator(cfg Config, gateway Gateway, orders OrderStore, memberships MembershipStore, catalog *plancatalog.Catalog, opts ...Option) *Coordinator {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 10 * time.Second
	}
	c := &Coordinator{
		cfg:         cfg,
		gateway:     gateway,
		orders:      orders,
		memberships: memberships,
		catalog:     catalog,
		locker:      noopLocker{},
		audit:       noopAudit{},
		log:         zap.NewNop().Sugar(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type CreateOrderRequest struct {
	PlanID   string          `json:"plan_id"`
	PlanName string          `json:"plan_name"`
	Amount   decimal.Decimal `json:"amount"`
	UserID   string          `json:"user_id"`
}

type CreateOrderResponse struct {
	OrderID        string `json:"order_id"`
	GatewayOrderID string `json:"gateway_order_id"`
	// Amount is in minor units, as the checkout widget expects.
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

type VerifyPaymentRequest struct {
	GatewayPaymentID string `json:"gateway_payment_id"`
	GatewayOrderID   string `json:"gateway_order_id"`
	Signature        string `json:"signature"`
	OrderID          string `json:"order_id"`
	UserID           string `json:"user_id"`
	PlanID           string `json:"plan_id"`
}

type VerifyPaymentResult struct {
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	PlanID     string    `json:"plan_id"`
	ExpiryDate time.Time `json:"expiry_date"`
}

func (c *Coordinator) KeyID() string { return c.cfg.KeyID }

func (c *Coordinator) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.cfg.CallTimeout)
}

// classify adds ErrTimeout to err when the call hit a deadline.
func classify(callCtx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) || razorpay.IsTimeout(err) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

func (c *Coordinator) CreateOrder(ctx context.Context, req *CreateOrderRequest) (resp *CreateOrderResponse, err error) {
	start := time.Now()
	defer func() { c.metrics.Observe("create_order", Outcome(err), start) }()

	if req == nil {
		return nil, fmt.Errorf("%w: request is nil", ErrInvalidRequest)
	}
	if req.UserID == "" || req.PlanID == "" {
		return nil, fmt.Errorf("%w: user_id and plan_id are required", ErrInvalidRequest)
	}
	amountMinor, err := razorpay.ToMinorUnits(req.Amount, c.cfg.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	logger := logctx.FromCtx(ctx, c.log).With("user_id", req.UserID, "plan_id", req.PlanID)
	planName := req.PlanName
	if planName == "" {
		if p, ok := c.catalog.Plan(req.PlanID); ok {
			planName = p.Name
		}
	}
	notes := map[string]string{
		"plan_id":   req.PlanID,
		"plan_name": planName,
		"user_id":   req.UserID,
	}

	gwCtx, cancel := c.callCtx(ctx)
	gwOrder, err := c.gateway.CreateOrder(gwCtx, &razorpay.CreateOrderRequest{
		Amount:   amountMinor,
		Currency: c.cfg.Currency,
		Receipt:  tool.GenerateReceipt(c.cfg.ReceiptPrefix),
		Notes:    notes,
	})
	err = classify(gwCtx, err)
	cancel()
	if err != nil {
		logger.Errorw("gateway create order failed", "amount_minor", amountMinor, "error", err)
		return nil, fmt.Errorf("%w: gateway: %w", ErrOrderCreationFailed, err)
	}
	if gwOrder.Amount != 0 && gwOrder.Amount != amountMinor {
		logger.Errorw("gateway order amount differs from request",
			"gateway_order_id", gwOrder.ID, "amount_minor", amountMinor, "gateway_amount", gwOrder.Amount)
		return nil, fmt.Errorf("%w: gateway amount %d != %d", ErrOrderCreationFailed, gwOrder.Amount, amountMinor)
	}
	currency := lo.CoalesceOrEmpty(gwOrder.Currency, c.cfg.Currency)

	o := &models.MembershipOrder{
		ID:             tool.GenerateUUIDV7(),
		UserID:         req.UserID,
		PlanID:         req.PlanID,
		PlanName:       planName,
		Amount:         req.Amount,
		Currency:       currency,
		AmountMinor:    amountMinor,
		Receipt:        gwOrder.Receipt,
		GatewayOrderID: gwOrder.ID,
		Status:         types.OrderStatusPending,
		Notes:          datatypes.NewJSONType(notes),
	}
	storeCtx, cancel := c.callCtx(ctx)
	err = classify(storeCtx, c.orders.Create(storeCtx, o))
	cancel()
	if err != nil {
		// the gateway order is orphaned; it expires unpaid on the gateway side
		logger.Errorw("persist order failed", "gateway_order_id", gwOrder.ID, "error", err)
		return nil, fmt.Errorf("%w: store: %w", ErrOrderCreationFailed, err)
	}

	logger.Infow("order created", "order_id", o.ID, "gateway_order_id", o.GatewayOrderID, "amount_minor", amountMinor)
	return &CreateOrderResponse{
		OrderID:        o.ID,
		GatewayOrderID: o.GatewayOrderID,
		Amount:         amountMinor,
		Currency:       currency,
		KeyID:          c.cfg.KeyID,
	}, nil
}

// VerifyPayment checks the gateway signature and completes the order at most
// once. The membership write happens after the order update; if it fails the
// error wraps ErrPartialVerification and the reconciler finishes the job.
func (c *Coordinator) VerifyPayment(ctx context.Context, req *VerifyPaymentRequest) (res *VerifyPaymentResult, err error) {
	start := time.Now()
	defer func() { c.metrics.Observe("verify_payment", Outcome(err), start) }()

	if req == nil {
		return nil, fmt.Errorf("%w: request is nil", ErrInvalidRequest)
	}
	logger := logctx.FromCtx(ctx, c.log).With("order_id", req.OrderID, "gateway_order_id", req.GatewayOrderID)
	defer func() { c.auditVerify(ctx, req, res, err) }()

	if !razorpay.VerifyPaymentSignature(req.GatewayOrderID, req.GatewayPaymentID, req.Signature, c.cfg.KeySecret) {
		logger.Warnw("security: payment signature mismatch",
			"gateway_payment_id", req.GatewayPaymentID, "user_id", req.UserID)
		return nil, ErrSignatureMismatch
	}
	if req.OrderID == "" {
		return nil, fmt.Errorf("%w: order_id is required", ErrInvalidRequest)
	}

	getCtx, cancel := c.callCtx(ctx)
	o, err := c.orders.Get(getCtx, req.OrderID)
	err = classify(getCtx, err)
	cancel()
	if err != nil {
		return nil, err
	}
	if o.GatewayOrderID != req.GatewayOrderID {
		logger.Warnw("security: signature belongs to another gateway order",
			"stored_gateway_order_id", o.GatewayOrderID, "user_id", req.UserID)
		return nil, fmt.Errorf("%w: gateway order id does not match order", ErrSignatureMismatch)
	}

	userID, planID := o.UserID, o.PlanID
	if c.cfg.StrictOrderBinding {
		if (req.UserID != "" && req.UserID != o.UserID) || (req.PlanID != "" && req.PlanID != o.PlanID) {
			logger.Warnw("security: verify request does not match stored order",
				"user_id", req.UserID, "plan_id", req.PlanID, "stored_user_id", o.UserID, "stored_plan_id", o.PlanID)
			return nil, ErrOrderMismatch
		}
	} else {
		userID = lo.CoalesceOrEmpty(req.UserID, o.UserID)
		planID = lo.CoalesceOrEmpty(req.PlanID, o.PlanID)
	}

	return c.complete(ctx, logger, o, userID, planID, &Completion{
		GatewayPaymentID: req.GatewayPaymentID,
		GatewaySignature: req.Signature,
	})
}

// CapturedPayment is a capture reported server to server by the gateway.
// Amount is in minor units; zero skips the amount check.
type CapturedPayment struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Amount           int64
	Currency         string
}

// ConfirmCaptured completes the order a gateway capture refers to. The caller
// must already have authenticated the capture, e.g. by its webhook signature.
// It races safely with VerifyPayment: exactly one of them completes the order.
func (c *Coordinator) ConfirmCaptured(ctx context.Context, p *CapturedPayment) (res *VerifyPaymentResult, err error) {
	start := time.Now()
	defer func() { c.metrics.Observe("confirm_captured", Outcome(err), start) }()

	if p == nil || p.GatewayOrderID == "" || p.GatewayPaymentID == "" {
		return nil, fmt.Errorf("%w: gateway order and payment ids are required", ErrInvalidRequest)
	}
	logger := logctx.FromCtx(ctx, c.log).With("gateway_order_id", p.GatewayOrderID, "gateway_payment_id", p.GatewayPaymentID)

	getCtx, cancel := c.callCtx(ctx)
	o, err := c.orders.GetByGatewayOrderID(getCtx, p.GatewayOrderID)
	err = classify(getCtx, err)
	cancel()
	if err != nil {
		return nil, err
	}
	if (p.Amount != 0 && p.Amount != o.AmountMinor) || (p.Currency != "" && !strings.EqualFold(p.Currency, o.Currency)) {
		logger.Warnw("security: captured amount does not match order",
			"order_id", o.ID, "amount_minor", o.AmountMinor, "captured_amount", p.Amount, "captured_currency", p.Currency)
		return nil, fmt.Errorf("%w: captured %d %s", ErrOrderMismatch, p.Amount, p.Currency)
	}

	return c.complete(ctx, logger.With("order_id", o.ID), o, o.UserID, o.PlanID, &Completion{GatewayPaymentID: p.GatewayPaymentID})
}

// complete transitions o to completed at most once and activates the
// membership. Callers have already authenticated the payment.
func (c *Coordinator) complete(ctx context.Context, logger *zap.SugaredLogger, o *models.MembershipOrder, userID, planID string, comp *Completion) (*VerifyPaymentResult, error) {
	if o.IsCompleted() {
		return nil, ErrAlreadyCompleted
	}

	lockCtx, cancel := c.callCtx(ctx)
	release, acquired, lockErr := c.locker.TryLock(lockCtx, o.ID)
	cancel()
	defer release()
	if lockErr != nil {
		// the conditional update below still guarantees at-most-once completion
		logger.Warnw("verify lock unavailable, continuing without it", "error", lockErr)
	} else if !acquired {
		return nil, ErrVerificationInProgress
	}

	completedAt := c.now().UTC().Truncate(time.Microsecond)
	comp.CompletedAt = completedAt
	expiry := completedAt.AddDate(0, 0, c.catalog.DurationDays(planID))

	completeCtx, cancel := c.callCtx(ctx)
	ok, err := c.orders.Complete(completeCtx, o.ID, comp)
	err = classify(completeCtx, err)
	cancel()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyCompleted
	}

	activateCtx, cancel := c.callCtx(ctx)
	err = c.memberships.Activate(activateCtx, &membership.Activation{
		UserID:      userID,
		Plan:        planID,
		OrderID:     o.ID,
		ExpireAt:    expiry,
		ActivatedAt: completedAt,
		Reason:      types.MembershipChangeReasonPurchase,
	})
	err = classify(activateCtx, err)
	cancel()
	var stale *membership.StaleActivationError
	if errors.As(err, &stale) {
		// a newer order already set the membership; report what is stored
		logger.Warnw("membership superseded by a newer order",
			"user_id", userID, "plan_id", planID, "stored_order_id", stale.Stored.LastOrderID)
		if stale.Stored.ExpireAt != nil {
			expiry = stale.Stored.ExpireAt.UTC()
		}
		planID = stale.Stored.Plan
		err = nil
	}
	if err != nil {
		logger.Errorw("partial verification: order completed, membership not updated",
			"user_id", userID, "plan_id", planID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrPartialVerification, err)
	}

	markCtx, cancel := c.callCtx(ctx)
	if err := c.orders.MarkMembershipApplied(markCtx, o.ID, c.now().UTC()); err != nil {
		logger.Warnw("mark membership applied failed, reconciler will retry", "error", err)
	}
	cancel()

	logger.Infow("payment verified", "user_id", userID, "plan_id", planID, "expiry", expiry)
	return &VerifyPaymentResult{OrderID: o.ID, UserID: userID, PlanID: planID, ExpiryDate: expiry}, nil
}

func (c *Coordinator) auditVerify(ctx context.Context, req *VerifyPaymentRequest, res *VerifyPaymentResult, err error) {
	status := models.PaymentNotificationLogStatusHandled
	switch {
	case errors.Is(err, ErrSignatureMismatch):
		status = models.PaymentNotificationLogStatusRejected
	case err != nil:
		status = models.PaymentNotificationLogStatusHandleFailed
	}

	data, _ := json.Marshal(map[string]string{
		"gateway_payment_id": req.GatewayPaymentID,
		"gateway_order_id":   req.GatewayOrderID,
		"order_id":           req.OrderID,
		"user_id":            req.UserID,
		"plan_id":            req.PlanID,
	})
	result := map[string]any{"outcome": Outcome(err)}
	if res != nil {
		result["expiry_date"] = res.ExpiryDate
	}
	resultJSON, _ := json.Marshal(result)

	var userID *string
	if req.UserID != "" {
		userID = lo.ToPtr(req.UserID)
	}
	c.audit.Save(ctx, &models.PaymentNotificationLog{
		ProviderID:       string(types.PaymentProviderRazorpay),
		UserID:           userID,
		OrderID:          req.OrderID,
		GatewayOrderID:   req.GatewayOrderID,
		NotificationTime: c.now().UTC(),
		Data:             datatypes.JSON(data),
		Result:           lo.ToPtr(datatypes.JSON(resultJSON)),
		Status:           status,
	})
}
