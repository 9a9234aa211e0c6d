package types

// DefaultPlanDurationDays is used for any plan id the catalog does not know.
const DefaultPlanDurationDays = 30

type PaymentProvider string

const (
	PaymentProviderRazorpay PaymentProvider = "razorpay"
)

// Plan is a purchasable membership plan.
type Plan struct {
	ID   string `json:"id" mapstructure:"id"`
	Name string `json:"name" mapstructure:"name"`
	// 会员时长（天）
	DurationDays int `json:"duration_days" mapstructure:"duration_days"`
}
