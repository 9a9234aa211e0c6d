package handlers

import (
	"context"
	"net/http"
	"time"

	mw "github.com/fatflowers/memberpay/internal/app/api/middleware"
	"github.com/fatflowers/memberpay/internal/app/service/order"
	"github.com/fatflowers/memberpay/pkg/response"
	"github.com/fatflowers/memberpay/pkg/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentService is the order lifecycle as seen by the payment routes.
type PaymentService interface {
	CreateOrder(ctx context.Context, req *order.CreateOrderRequest) (*order.CreateOrderResponse, error)
	VerifyPayment(ctx context.Context, req *order.VerifyPaymentRequest) (*order.VerifyPaymentResult, error)
}

type MembershipReader interface {
	GetInfo(ctx context.Context, userID string) (*types.UserMembershipInfo, error)
}

type verifyPaymentResp struct {
	ExpiryDate time.Time `json:"expiry_date"`
}

// @Summary      Create Order
// @Description  Creates a gateway order and a pending local order for a membership plan.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body order.CreateOrderRequest true "Create order request"
// @Success      200  {object}  handlers.RespCreateOrder
// @Router       /api/v2/payment/create_order [post]
func ApiCreateOrder(svc PaymentService, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
		if !mw.AuthorizeUser(c, req.UserID) {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeForbidden, nil))
			return
		}

		res, err := svc.CreateOrder(c.Request.Context(), &req)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Verify Payment
// @Description  Verifies the gateway payment signature, completes the order and extends the membership.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body order.VerifyPaymentRequest true "Verify payment request"
// @Success      200  {object}  handlers.RespVerifyPayment
// @Router       /api/v2/payment/verify_payment [post]
func ApiVerifyPayment(svc PaymentService, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.VerifyPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
		if !mw.AuthorizeUser(c, req.UserID) {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeForbidden, nil))
			return
		}

		res, err := svc.VerifyPayment(c.Request.Context(), &req)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(verifyPaymentResp{ExpiryDate: res.ExpiryDate}))
	}
}

// @Summary      Get Membership
// @Description  Returns the membership state of a user.
// @Tags         Payment
// @Produce      json
// @Param        user_id query string true "User ID"
// @Success      200  {object}  handlers.RespMembership
// @Router       /api/v2/membership [get]
func ApiGetMembership(svc MembershipReader, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			badRequest(c)
			return
		}
		if !mw.AuthorizeUser(c, userID) {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeForbidden, nil))
			return
		}

		info, err := svc.GetInfo(c.Request.Context(), userID)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(info))
	}
}

func RegisterPaymentRoutes(r gin.IRouter, svc PaymentService, log *zap.SugaredLogger) {
	r.POST("/create_order", ApiCreateOrder(svc, log))
	r.POST("/verify_payment", ApiVerifyPayment(svc, log))
}

func RegisterMembershipRoutes(r gin.IRouter, svc MembershipReader, log *zap.SugaredLogger) {
	r.GET("/membership", ApiGetMembership(svc, log))
}
