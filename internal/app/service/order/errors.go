package order

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrOrderNotFound  = errors.New("order not found")
	// ErrOrderCreationFailed covers gateway and store failures during creation.
	// The client may retry with a new request.
	ErrOrderCreationFailed = errors.New("order creation failed")
	// ErrSignatureMismatch marks an untrusted callback. Nothing is written.
	ErrSignatureMismatch = errors.New("payment signature mismatch")
	// ErrOrderMismatch is returned when the request names a different user or
	// plan than the stored order.
	ErrOrderMismatch          = errors.New("order does not match request")
	ErrAlreadyCompleted       = errors.New("order already completed")
	ErrVerificationInProgress = errors.New("verification already in progress")
	// ErrPartialVerification means the order is completed but the membership
	// write failed. The reconciler repairs it.
	ErrPartialVerification = errors.New("order completed but membership update failed")
	ErrTimeout             = errors.New("upstream call timed out")
)

// Outcome is the metrics label for err.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrSignatureMismatch):
		return "signature_mismatch"
	case errors.Is(err, ErrOrderMismatch):
		return "order_mismatch"
	case errors.Is(err, ErrAlreadyCompleted):
		return "already_completed"
	case errors.Is(err, ErrVerificationInProgress):
		return "in_progress"
	case errors.Is(err, ErrPartialVerification):
		return "partial"
	case errors.Is(err, ErrOrderNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid"
	case errors.Is(err, ErrOrderCreationFailed):
		return "creation_failed"
	default:
		return "error"
	}
}
