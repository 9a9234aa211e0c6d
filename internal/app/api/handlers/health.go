package handlers

import (
	"context"
	"net/http"

	"github.com/fatflowers/memberpay/pkg/response"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger func(ctx context.Context) error

// @Summary      Health check
// @Description  Returns service status. Dependency failures report status=degraded.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /healthz [get]
func Healthz(checks map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		out := map[string]string{"status": "ok"}
		for name, ping := range checks {
			if ping == nil {
				continue
			}
			if err := ping(c.Request.Context()); err != nil {
				out["status"] = "degraded"
				out[name] = "down"
				continue
			}
			out[name] = "up"
		}
		c.JSON(http.StatusOK, response.OKT(out))
	}
}

func RegisterHealthRoutes(r gin.IRouter, checks map[string]Pinger) {
	r.GET("/healthz", Healthz(checks))
}
