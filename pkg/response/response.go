package response

// APIResponseCode is the stable external result code. HTTP status stays 200
// for handled outcomes; clients branch on this code.
type APIResponseCode int

const (
	APIResponseCodeOK                     APIResponseCode = 0
	APIResponseCodeBadRequest             APIResponseCode = 40000
	APIResponseCodeSignatureMismatch      APIResponseCode = 40100
	APIResponseCodeUnauthorized           APIResponseCode = 40101
	APIResponseCodeForbidden              APIResponseCode = 40300
	APIResponseCodeNotFound               APIResponseCode = 40400
	APIResponseCodeAlreadyCompleted       APIResponseCode = 40900
	APIResponseCodeVerificationInProgress APIResponseCode = 40901
	APIResponseCodeError                  APIResponseCode = 50000
	APIResponseCodeOrderCreationFailed    APIResponseCode = 50001
	APIResponseCodePartialVerification    APIResponseCode = 50002
	APIResponseCodeTimeout                APIResponseCode = 50400
)

var codeToMsg = map[APIResponseCode]string{
	APIResponseCodeOK:                     "ok",
	APIResponseCodeBadRequest:             "bad request",
	APIResponseCodeSignatureMismatch:      "signature mismatch",
	APIResponseCodeUnauthorized:           "unauthorized",
	APIResponseCodeForbidden:              "forbidden",
	APIResponseCodeNotFound:               "order not found",
	APIResponseCodeAlreadyCompleted:       "order already completed",
	APIResponseCodeVerificationInProgress: "verification in progress",
	APIResponseCodeError:                  "internal error",
	APIResponseCodeOrderCreationFailed:    "order creation failed",
	APIResponseCodePartialVerification:    "payment recorded, membership pending",
	APIResponseCodeTimeout:                "upstream timeout",
}

// Message returns the opaque public message for code.
func Message(code APIResponseCode) string {
	if m, ok := codeToMsg[code]; ok {
		return m
	}
	return codeToMsg[APIResponseCodeError]
}

// APIResponse is the generic response envelope used by HTTP APIs.
// Use OKT / ErrorT helpers to construct instances.
type APIResponse[T any] struct {
	Code    APIResponseCode `json:"code"`
	Message string          `json:"message"`
	Data    T               `json:"data"`
}

// OKT returns a successful response with data.
func OKT[T any](data T) *APIResponse[T] {
	return &APIResponse[T]{Code: APIResponseCodeOK, Message: Message(APIResponseCodeOK), Data: data}
}

// ErrorT returns an error response with message and optional data.
func ErrorT[T any](code APIResponseCode, data T) *APIResponse[T] {
	return &APIResponse[T]{Code: code, Message: Message(code), Data: data}
}
