package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	nh "github.com/fatflowers/memberpay/internal/app/service/notification_handler"
	"github.com/fatflowers/memberpay/internal/platform/razorpay"
	"github.com/fatflowers/memberpay/pkg/logctx"
	"github.com/fatflowers/memberpay/pkg/response"
	"github.com/fatflowers/memberpay/pkg/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20

type WebhookHandler interface {
	HandleNotification(ctx context.Context, provider types.PaymentProvider, n *nh.Notification) error
}

// @Summary      Razorpay Webhook
// @Description  Handles payment.captured and order.paid events signed with the webhook secret.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        X-Razorpay-Signature header string true "hex HMAC-SHA256 of the raw body"
// @Param        payload body object true "Razorpay webhook event"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v2/payment/webhook/razorpay [post]
// ApiRazorpayWebhook acknowledges with HTTP 200 unless the failure is
// retryable, in which case the gateway is asked to redeliver.
func ApiRazorpayWebhook(h WebhookHandler, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := logctx.FromGin(c, log)
		logger.Infow("webhook_razorpay_received")

		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
		if err != nil {
			badRequest(c)
			return
		}
		err = h.HandleNotification(c.Request.Context(), types.PaymentProviderRazorpay, &nh.Notification{
			Body:      body,
			Signature: c.GetHeader(razorpay.WebhookSignatureHeader),
		})
		if err != nil {
			code := webhookErrorCode(err)
			status := http.StatusOK
			if code >= response.APIResponseCodeError {
				status = http.StatusInternalServerError
			}
			logger.Errorw("webhook_razorpay_handle_error", "code", code, "error", err)
			c.JSON(status, response.ErrorT[any](code, nil))
			return
		}
		logger.Infow("webhook_razorpay_handled")
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func webhookErrorCode(err error) response.APIResponseCode {
	switch {
	case errors.Is(err, nh.ErrInvalidSignature):
		return response.APIResponseCodeSignatureMismatch
	case errors.Is(err, nh.ErrUnsupportedProvider):
		return response.APIResponseCodeBadRequest
	default:
		return errorCode(err)
	}
}

func RegisterPaymentWebhookRoutes(r gin.IRouter, h WebhookHandler, log *zap.SugaredLogger) {
	r.POST("/razorpay", ApiRazorpayWebhook(h, log))
}
