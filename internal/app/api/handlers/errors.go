package handlers

import (
	"errors"
	"net/http"

	"github.com/fatflowers/memberpay/internal/app/service/order"
	"github.com/fatflowers/memberpay/pkg/logctx"
	"github.com/fatflowers/memberpay/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errorCode maps a service error to its public response code. A partial
// verification wins over a timeout so clients learn the payment was recorded.
func errorCode(err error) response.APIResponseCode {
	switch {
	case errors.Is(err, order.ErrPartialVerification):
		return response.APIResponseCodePartialVerification
	case errors.Is(err, order.ErrTimeout):
		return response.APIResponseCodeTimeout
	case errors.Is(err, order.ErrInvalidRequest):
		return response.APIResponseCodeBadRequest
	case errors.Is(err, order.ErrSignatureMismatch):
		return response.APIResponseCodeSignatureMismatch
	case errors.Is(err, order.ErrOrderMismatch):
		return response.APIResponseCodeForbidden
	case errors.Is(err, order.ErrOrderNotFound):
		return response.APIResponseCodeNotFound
	case errors.Is(err, order.ErrAlreadyCompleted):
		return response.APIResponseCodeAlreadyCompleted
	case errors.Is(err, order.ErrVerificationInProgress):
		return response.APIResponseCodeVerificationInProgress
	case errors.Is(err, order.ErrOrderCreationFailed):
		return response.APIResponseCodeOrderCreationFailed
	default:
		return response.APIResponseCodeError
	}
}

// writeError logs err with the request logger and responds with the opaque
// public message for its code.
func writeError(c *gin.Context, base *zap.SugaredLogger, err error) {
	code := errorCode(err)
	logger := logctx.FromGin(c, base)
	if code >= response.APIResponseCodeError {
		logger.Errorw("request failed", "path", c.FullPath(), "code", code, "error", err)
	} else {
		logger.Infow("request rejected", "path", c.FullPath(), "code", code, "error", err)
	}
	c.JSON(http.StatusOK, response.ErrorT[any](code, nil))
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, nil))
}
