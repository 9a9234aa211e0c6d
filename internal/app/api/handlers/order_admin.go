package handlers

import (
	"context"
	"net/http"

	"github.com/fatflowers/memberpay/internal/app/service/order"
	"github.com/fatflowers/memberpay/internal/models"
	"github.com/fatflowers/memberpay/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderGetter interface {
	Get(ctx context.Context, id string) (*models.MembershipOrder, error)
}

type AuditReader interface {
	ListByOrder(ctx context.Context, orderID, gatewayOrderID string) ([]*models.PaymentNotificationLog, error)
}

type OrderInspector interface {
	InspectOrder(ctx context.Context, orderID string) (*order.OrderInspection, error)
}

type OrderAuditResponse struct {
	Order *OrderItem                       `json:"order"`
	Logs  []*models.PaymentNotificationLog `json:"logs"`
}

type InspectOrderResponse struct {
	Order             *OrderItem      `json:"order"`
	GatewayStatus     string          `json:"gateway_status"`
	GatewayAmount     decimal.Decimal `json:"gateway_amount"`
	GatewayAmountPaid decimal.Decimal `json:"gateway_amount_paid"`
	GatewayCurrency   string          `json:"gateway_currency"`
	GatewayAttempts   int             `json:"gateway_attempts"`
	AmountMatches     bool            `json:"amount_matches"`
	PaidNotCompleted  bool            `json:"paid_not_completed"`
}

// @Summary      Order Audit (Admin)
// @Description  Returns an order with every verification attempt and webhook delivery recorded for it.
// @Tags         Admin
// @Produce      json
// @Param        order_id query string true "Local order ID"
// @Success      200  {object}  handlers.RespOrderAudit
// @Router       /api/v1/admin/order_audit [get]
func ApiOrderAudit(orders OrderGetter, audit AuditReader, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Query("order_id")
		if orderID == "" {
			badRequest(c)
			return
		}
		o, err := orders.Get(c.Request.Context(), orderID)
		if err != nil {
			writeError(c, log, err)
			return
		}
		logs, err := audit.ListByOrder(c.Request.Context(), o.ID, o.GatewayOrderID)
		if err != nil {
			writeError(c, log, err)
			return
		}
		if logs == nil {
			logs = []*models.PaymentNotificationLog{}
		}
		c.JSON(http.StatusOK, response.OKT(&OrderAuditResponse{Order: toOrderItem(o), Logs: logs}))
	}
}

// @Summary      Inspect Order (Admin)
// @Description  Cross-checks a local order against the gateway. Read only.
// @Tags         Admin
// @Produce      json
// @Param        order_id query string true "Local order ID"
// @Success      200  {object}  handlers.RespInspectOrder
// @Router       /api/v1/admin/inspect_order [get]
func ApiInspectOrder(svc OrderInspector, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Query("order_id")
		if orderID == "" {
			badRequest(c)
			return
		}
		res, err := svc.InspectOrder(c.Request.Context(), orderID)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&InspectOrderResponse{
			Order:             toOrderItem(res.Order),
			GatewayStatus:     res.GatewayStatus,
			GatewayAmount:     res.GatewayAmount,
			GatewayAmountPaid: res.GatewayAmountPaid,
			GatewayCurrency:   res.GatewayCurrency,
			GatewayAttempts:   res.GatewayAttempts,
			AmountMatches:     res.AmountMatches,
			PaidNotCompleted:  res.PaidNotCompleted,
		}))
	}
}

func RegisterOrderAuditRoutes(r gin.IRouter, orders OrderGetter, audit AuditReader, inspector OrderInspector, log *zap.SugaredLogger) {
	r.GET("/order_audit", ApiOrderAudit(orders, audit, log))
	r.GET("/inspect_order", ApiInspectOrder(inspector, log))
}
