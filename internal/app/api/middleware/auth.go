package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/fatflowers/memberpay/pkg/logctx"
	"github.com/fatflowers/memberpay/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"go.uber.org/zap"
)

// BearerAuthMiddleware validates an HS256 bearer token and records its
// subject as the authenticated user. An empty secret disables the check.
func BearerAuthMiddleware(secret string, base *zap.SugaredLogger) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		if len(key) == 0 {
			c.Next()
			return
		}

		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if len(raw) < 7 || !strings.EqualFold(raw[:7], "bearer ") {
			abortUnauthorized(c, base, "missing bearer token")
			return
		}

		claims := &jwt.StandardClaims{}
		token, err := jwt.ParseWithClaims(strings.TrimSpace(raw[7:]), claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, base, "invalid token")
			return
		}
		if claims.Subject == "" {
			abortUnauthorized(c, base, "token has no subject")
			return
		}

		c.Set(logctx.GinUserIDKey, claims.Subject)
		c.Request = c.Request.WithContext(logctx.WithUserID(c.Request.Context(), claims.Subject))
		c.Next()
	}
}

// AuthorizeUser reports whether the authenticated subject, if any, may act
// for userID. Without authentication every user id is accepted.
func AuthorizeUser(c *gin.Context, userID string) bool {
	sub := c.GetString(logctx.GinUserIDKey)
	return sub == "" || sub == userID
}

func abortUnauthorized(c *gin.Context, base *zap.SugaredLogger, reason string) {
	logctx.FromGin(c, base).Warnw("security: request rejected", "reason", reason, "path", c.FullPath())
	c.AbortWithStatusJSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
}
