package razorpay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClient_CreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "rzp_test_key", user)
		require.Equal(t, "shh", pass)

		var req CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, int64(49900), req.Amount)
		require.Equal(t, "INR", req.Currency)
		require.Equal(t, "basic", req.Notes["plan_id"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_abc","entity":"order","amount":49900,"amount_paid":0,"amount_due":49900,"currency":"INR","receipt":"rcpt_1","status":"created","attempts":0,"notes":{"plan_id":"basic"},"created_at":1700000000}`))
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{KeyID: "rzp_test_key", KeySecret: "shh", BaseURL: srv.URL + "/", Timeout: time.Second})
	require.Equal(t, "rzp_test_key", c.KeyID())

	order, err := c.CreateOrder(context.Background(), &CreateOrderRequest{
		Amount:   49900,
		Currency: "INR",
		Receipt:  "rcpt_1",
		Notes:    map[string]string{"plan_id": "basic"},
	})
	require.NoError(t, err)
	require.Equal(t, "order_abc", order.ID)
	require.Equal(t, int64(49900), order.Amount)
	require.Equal(t, "created", order.Status)
}

func TestClient_CreateOrder_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"The amount must be atleast INR 1.00","field":"amount"}}`))
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{KeyID: "k", KeySecret: "s", BaseURL: srv.URL})
	_, err := c.CreateOrder(context.Background(), &CreateOrderRequest{Amount: 1, Currency: "INR"})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrGateway)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, "BAD_REQUEST_ERROR", apiErr.Code)
	require.Equal(t, "amount", apiErr.Field)
}

func TestClient_CreateOrder_MissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"amount":100}`))
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{BaseURL: srv.URL})
	_, err := c.CreateOrder(context.Background(), &CreateOrderRequest{Amount: 100, Currency: "INR"})
	require.ErrorIs(t, err, ErrGateway)
}

func TestClient_CreateOrder_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(ClientOptions{BaseURL: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.CreateOrder(ctx, &CreateOrderRequest{Amount: 100, Currency: "INR"})
	require.Error(t, err)
	require.True(t, IsTimeout(err))
	require.ErrorIs(t, err, ErrGateway)
}

func TestClient_FetchOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/orders/order_abc", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"order_abc","status":"paid","amount":100,"amount_paid":100}`))
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{BaseURL: srv.URL})
	order, err := c.FetchOrder(context.Background(), "order_abc")
	require.NoError(t, err)
	require.Equal(t, "paid", order.Status)
}

func TestIsTimeout(t *testing.T) {
	require.False(t, IsTimeout(nil))
	require.False(t, IsTimeout(errors.New("boom")))
	require.True(t, IsTimeout(context.DeadlineExceeded))
}
