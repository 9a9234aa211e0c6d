package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	nh "github.com/fatflowers/memberpay/internal/app/service/notification_handler"
	"github.com/fatflowers/memberpay/internal/app/service/order"
	"github.com/fatflowers/memberpay/internal/platform/razorpay"
	"github.com/fatflowers/memberpay/pkg/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubWebhook struct {
	got *nh.Notification
	err error
}

func (s *stubWebhook) HandleNotification(_ context.Context, provider types.PaymentProvider, n *nh.Notification) error {
	if provider != types.PaymentProviderRazorpay {
		return nh.ErrUnsupportedProvider
	}
	s.got = n
	return s.err
}

func webhookEngine(h WebhookHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterPaymentWebhookRoutes(r.Group("/api/v2/payment/webhook"), h, zap.NewNop().Sugar())
	return r
}

func postWebhook(r *gin.Engine, body, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v2/payment/webhook/razorpay", strings.NewReader(body))
	req.Header.Set(razorpay.WebhookSignatureHeader, sig)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestApiRazorpayWebhook_PassesRawBody(t *testing.T) {
	h := &stubWebhook{}
	body := `{"event":"payment.captured" , "payload":{}}`
	w := postWebhook(webhookEngine(h), body, "abc123")

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"code":0,"message":"ok","data":null}`, w.Body.String())
	require.Equal(t, body, string(h.got.Body))
	require.Equal(t, "abc123", h.got.Signature)
}

func TestApiRazorpayWebhook_Errors(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
		code   string
	}{
		"signature": {nh.ErrInvalidSignature, http.StatusOK, `"code":40100`},
		"malformed": {fmt.Errorf("%w: decode", order.ErrInvalidRequest), http.StatusOK, `"code":40000`},
		"mismatch":  {order.ErrOrderMismatch, http.StatusOK, `"code":40300`},
		"partial":   {fmt.Errorf("%w: db", order.ErrPartialVerification), http.StatusInternalServerError, `"code":50002`},
		"internal":  {errors.New("db down"), http.StatusInternalServerError, `"code":50000`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := postWebhook(webhookEngine(&stubWebhook{err: tc.err}), `{}`, "sig")
			require.Equal(t, tc.status, w.Code)
			require.Contains(t, w.Body.String(), tc.code)
			require.NotContains(t, w.Body.String(), "db down")
		})
	}
}
