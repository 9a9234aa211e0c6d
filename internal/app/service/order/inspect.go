package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatflowers/memberpay/internal/models"
	"github.com/fatflowers/memberpay/internal/platform/razorpay"
	"github.com/fatflowers/memberpay/pkg/logctx"
	"github.com/fatflowers/memberpay/pkg/types"

	"github.com/shopspring/decimal"
)

// gateway order statuses
const (
	GatewayOrderStatusCreated   = "created"
	GatewayOrderStatusAttempted = "attempted"
	GatewayOrderStatusPaid      = "paid"
)

// OrderInspection puts a local order next to the gateway's view of it.
type OrderInspection struct {
	Order             *models.MembershipOrder
	GatewayStatus     string
	GatewayAmount     decimal.Decimal
	GatewayAmountPaid decimal.Decimal
	GatewayCurrency   string
	GatewayAttempts   int
	AmountMatches     bool
	// PaidNotCompleted is a gateway-paid order still pending locally: the
	// client never verified and no capture webhook arrived.
	PaidNotCompleted bool
}

// InspectOrder loads the local order and cross-checks it against the gateway.
// It never changes state.
func (c *Coordinator) InspectOrder(ctx context.Context, orderID string) (*OrderInspection, error) {
	if orderID == "" {
		return nil, fmt.Errorf("%w: order_id is required", ErrInvalidRequest)
	}
	logger := logctx.FromCtx(ctx, c.log).With("order_id", orderID)

	getCtx, cancel := c.callCtx(ctx)
	o, err := c.orders.Get(getCtx, orderID)
	err = classify(getCtx, err)
	cancel()
	if err != nil {
		return nil, err
	}

	fetchCtx, cancel := c.callCtx(ctx)
	g, err := c.gateway.FetchOrder(fetchCtx, o.GatewayOrderID)
	err = classify(fetchCtx, err)
	cancel()
	if err != nil {
		logger.Warnw("fetch gateway order failed", "gateway_order_id", o.GatewayOrderID, "error", err)
		return nil, fmt.Errorf("fetch gateway order: %w", err)
	}

	res := &OrderInspection{
		Order:             o,
		GatewayStatus:     g.Status,
		GatewayAmount:     razorpay.FromMinorUnits(g.Amount, g.Currency),
		GatewayAmountPaid: razorpay.FromMinorUnits(g.AmountPaid, g.Currency),
		GatewayCurrency:   g.Currency,
		GatewayAttempts:   g.Attempts,
	}
	res.AmountMatches = g.Amount == o.AmountMinor && strings.EqualFold(g.Currency, o.Currency)
	res.PaidNotCompleted = g.Status == GatewayOrderStatusPaid && o.Status == types.OrderStatusPending
	if res.PaidNotCompleted || !res.AmountMatches {
		logger.Warnw("order diverges from gateway",
			"gateway_status", g.Status, "status", o.Status, "amount_matches", res.AmountMatches)
	}
	return res, nil
}
