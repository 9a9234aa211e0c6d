package plancatalog

import (
	"github.com/fatflowers/memberpay/pkg/config"
	"github.com/fatflowers/memberpay/pkg/types"

	"github.com/samber/lo"
	"go.uber.org/fx"
)

// DefaultPlans is used when no plans are configured.
var DefaultPlans = []*types.Plan{
	{ID: "basic", Name: "Basic", DurationDays: 30},
	{ID: "premium", Name: "Premium", DurationDays: 90},
	{ID: "enterprise", Name: "Enterprise", DurationDays: 180},
}

// Catalog maps plan ids to entitlement durations. It is read-only after
// construction and safe for concurrent use.
type Catalog struct {
	plans       []*types.Plan
	byID        map[string]*types.Plan
	defaultDays int
}

func New(plans []*types.Plan, defaultDays int) *Catalog {
	if len(plans) == 0 {
		plans = DefaultPlans
	}
	if defaultDays <= 0 {
		defaultDays = types.DefaultPlanDurationDays
	}
	plans = lo.Filter(plans, func(p *types.Plan, _ int) bool { return p != nil && p.ID != "" })
	return &Catalog{
		plans:       plans,
		byID:        lo.KeyBy(plans, func(p *types.Plan) string { return p.ID }),
		defaultDays: defaultDays,
	}
}

func NewFromConfig(cfg *config.Config) *Catalog {
	return New(cfg.Plans, cfg.Payment.DefaultDurationDays)
}

// DurationDays returns the configured duration for planID, or the default for
// any id the catalog does not know, including "".
func (c *Catalog) DurationDays(planID string) int {
	if p, ok := c.byID[planID]; ok && p.DurationDays > 0 {
		return p.DurationDays
	}
	return c.defaultDays
}

func (c *Catalog) Plan(planID string) (*types.Plan, bool) {
	p, ok := c.byID[planID]
	return p, ok
}

func (c *Catalog) Plans() []*types.Plan {
	return append([]*types.Plan(nil), c.plans...)
}

func (c *Catalog) DefaultDays() int { return c.defaultDays }

var Module = fx.Options(
	fx.Provide(NewFromConfig),
)
