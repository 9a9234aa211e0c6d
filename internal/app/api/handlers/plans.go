package handlers

import (
	"net/http"

	"github.com/fatflowers/memberpay/pkg/response"
	"github.com/fatflowers/memberpay/pkg/types"

	"github.com/gin-gonic/gin"
)

type PlanLister interface {
	Plans() []*types.Plan
	DefaultDays() int
}

type PlansResponse struct {
	Plans []*types.Plan `json:"plans"`
	// DefaultDurationDays applies to plan ids not listed.
	DefaultDurationDays int `json:"default_duration_days"`
}

// @Summary      List Plans
// @Description  Returns the membership plans and their durations.
// @Tags         Payment
// @Produce      json
// @Success      200  {object}  handlers.RespPlans
// @Router       /api/v2/payment/plans [get]
func ApiListPlans(catalog PlanLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, response.OKT(&PlansResponse{
			Plans:               catalog.Plans(),
			DefaultDurationDays: catalog.DefaultDays(),
		}))
	}
}

func RegisterPlanRoutes(r gin.IRouter, catalog PlanLister) {
	r.GET("/plans", ApiListPlans(catalog))
}
