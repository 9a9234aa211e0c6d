package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fatflowers/memberpay/pkg/logctx"
	"github.com/fatflowers/memberpay/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const jwtSecret = "unit-test-jwt-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.StandardClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func newAuthEngine(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceMiddleware(), BearerAuthMiddleware(secret, zap.NewNop().Sugar()))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, response.OKT(map[string]string{
			"user_id":  c.GetString(logctx.GinUserIDKey),
			"ctx_user": logctx.UserID(c.Request.Context()),
			"trace_id": logctx.TraceID(c.Request.Context()),
		}))
	})
	return r
}

func doGet(r *gin.Engine, header string) (*httptest.ResponseRecorder, response.APIResponse[map[string]string]) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out response.APIResponse[map[string]string]
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestBearerAuth_Disabled(t *testing.T) {
	w, out := doGet(newAuthEngine(""), "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, response.APIResponseCodeOK, out.Code)
	require.Equal(t, "", out.Data["user_id"])
	require.NotEmpty(t, out.Data["trace_id"])
}

func TestBearerAuth_ValidToken(t *testing.T) {
	tok := signToken(t, jwt.SigningMethodHS256, []byte(jwtSecret), jwt.StandardClaims{
		Subject:   "user-1",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})
	_, out := doGet(newAuthEngine(jwtSecret), "Bearer "+tok)
	require.Equal(t, response.APIResponseCodeOK, out.Code)
	require.Equal(t, "user-1", out.Data["user_id"])
	require.Equal(t, "user-1", out.Data["ctx_user"])
}

func TestBearerAuth_Rejects(t *testing.T) {
	r := newAuthEngine(jwtSecret)
	cases := map[string]string{
		"missing":    "",
		"not bearer": "Basic abc",
		"wrong key": "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.StandardClaims{
			Subject: "user-1",
		}),
		"expired": "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(jwtSecret), jwt.StandardClaims{
			Subject:   "user-1",
			ExpiresAt: time.Now().Add(-time.Minute).Unix(),
		}),
		"no subject": "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(jwtSecret), jwt.StandardClaims{}),
		"garbage":    "Bearer not.a.token",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			w, out := doGet(r, header)
			require.Equal(t, http.StatusOK, w.Code)
			require.Equal(t, response.APIResponseCodeUnauthorized, out.Code)
			require.Equal(t, "unauthorized", out.Message)
		})
	}
}

func TestAuthorizeUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	require.True(t, AuthorizeUser(c, "anyone"))

	c.Set(logctx.GinUserIDKey, "user-1")
	require.True(t, AuthorizeUser(c, "user-1"))
	require.False(t, AuthorizeUser(c, "user-2"))
}

func TestTraceMiddleware_EchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceMiddleware(), RequestLoggerMiddleware(zap.NewNop().Sugar()))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, logctx.TraceID(c.Request.Context())) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, "req-42", w.Body.String())
	require.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
}
