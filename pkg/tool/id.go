package tool

import (
	"strings"

	"github.com/google/uuid"
)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// GenerateReceipt returns a gateway receipt id. Razorpay caps receipts at 40
// characters, so the uuid is used without dashes.
func GenerateReceipt(prefix string) string {
	r := prefix + strings.ReplaceAll(uuid.New().String(), "-", "")
	if len(r) > 40 {
		r = r[:40]
	}
	return r
}
