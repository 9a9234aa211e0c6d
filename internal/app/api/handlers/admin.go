package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fatflowers/memberpay/internal/app/service/order"
	"github.com/fatflowers/memberpay/internal/app/service/statistics"
	"github.com/fatflowers/memberpay/internal/models"
	"github.com/fatflowers/memberpay/pkg/response"
	"github.com/fatflowers/memberpay/pkg/types"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderScanner interface {
	Scan(ctx context.Context, req *order.ScanOrdersRequest) (*order.ScanOrdersResponse, error)
}

type ReconcileRunner interface {
	RunOnce(ctx context.Context) (*order.ReconcileResult, error)
}

type StatisticsService interface {
	GetStatistic(ctx context.Context, req *statistics.StatisticRequest) (*statistics.StatisticResponse, error)
}

type ListOrdersRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type OrderItem struct {
	ID                  string            `json:"id"`
	UserID              string            `json:"user_id"`
	PlanID              string            `json:"plan_id"`
	PlanName            string            `json:"plan_name"`
	Amount              decimal.Decimal   `json:"amount"`
	AmountMinor         int64             `json:"amount_minor"`
	Currency            string            `json:"currency"`
	Status              types.OrderStatus `json:"status"`
	GatewayOrderID      string            `json:"gateway_order_id"`
	GatewayPaymentID    *string           `json:"gateway_payment_id"`
	CompletedAt         *time.Time        `json:"completed_at"`
	MembershipAppliedAt *time.Time        `json:"membership_applied_at"`
	NeedsReconcile      bool              `json:"needs_reconcile"`
	CreatedAt           time.Time         `json:"created_at"`
}

func toOrderItem(m *models.MembershipOrder) *OrderItem {
	return &OrderItem{
		ID:                  m.ID,
		UserID:              m.UserID,
		PlanID:              m.PlanID,
		PlanName:            m.PlanName,
		Amount:              m.Amount,
		AmountMinor:         m.AmountMinor,
		Currency:            m.Currency,
		Status:              m.Status,
		GatewayOrderID:      m.GatewayOrderID,
		GatewayPaymentID:    m.GatewayPaymentID,
		CompletedAt:         m.CompletedAt,
		MembershipAppliedAt: m.MembershipAppliedAt,
		NeedsReconcile:      m.NeedsReconcile(),
		CreatedAt:           m.CreatedAt,
	}
}

type ListOrdersResponse struct {
	Items []*OrderItem `json:"items"`
	Total int64        `json:"total"`
}

// @Summary      List Orders (Admin)
// @Description  Retrieves a paginated and filterable list of membership orders.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ListOrdersRequest true "List orders request with filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespListOrders
// @Router       /api/v1/admin/list_orders [post]
func ApiListOrders(store OrderScanner, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListOrdersRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
		res, err := store.Scan(c.Request.Context(), &order.ScanOrdersRequest{
			Filters: req.Filters, From: req.From, Size: req.Size, SortBy: req.SortBy, SortOrder: req.SortOrder,
		})
		if err != nil {
			writeError(c, log, err)
			return
		}
		items := lo.Map(res.Items, func(it *models.MembershipOrder, _ int) *OrderItem { return toOrderItem(it) })
		c.JSON(http.StatusOK, response.OKT(&ListOrdersResponse{Items: items, Total: res.Total}))
	}
}

// @Summary      Reconcile (Admin)
// @Description  Runs one reconciliation pass over completed orders whose membership was not applied.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespReconcile
// @Router       /api/v1/admin/reconcile [post]
func ApiReconcile(r ReconcileRunner, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := r.RunOnce(c.Request.Context())
		if err != nil && res == nil {
			writeError(c, log, err)
			return
		}
		// per-order failures are reported in the result
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Get Statistics (Admin)
// @Description  Retrieves order and membership statistics. data_items is a comma separated list; empty means all.
// @Tags         Admin
// @Produce      json
// @Param        data_items query string false "Comma separated statistic ids"
// @Success      200  {object}  handlers.RespStatistic
// @Router       /api/v1/admin/statistics [get]
func ApiGetStatistics(svc StatisticsService, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := &statistics.StatisticRequest{}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(req); err != nil {
				badRequest(c)
				return
			}
		}
		if q := c.Query("data_items"); q != "" {
			ids := lo.Compact(lo.Map(strings.Split(q, ","), func(s string, _ int) string { return strings.TrimSpace(s) }))
			req.DataItems = lo.Map(ids, func(id string, _ int) *statistics.StatisticDataItem {
				return &statistics.StatisticDataItem{ID: statistics.StatisticType(id)}
			})
		}
		if err := req.Validate(); err != nil {
			badRequest(c)
			return
		}

		res, err := svc.GetStatistic(c.Request.Context(), req)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, store OrderScanner, rec ReconcileRunner, stats StatisticsService, log *zap.SugaredLogger) {
	r.POST("/list_orders", ApiListOrders(store, log))
	r.POST("/reconcile", ApiReconcile(rec, log))
	r.GET("/statistics", ApiGetStatistics(stats, log))
	r.POST("/statistics", ApiGetStatistics(stats, log))
}
