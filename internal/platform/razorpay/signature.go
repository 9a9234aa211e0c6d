package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// equalSignatures compares two signatures in time that depends only on their
// length, never on where they first differ.
var equalSignatures = hmac.Equal

// PaymentSignature returns the signature the gateway attaches to a successful
// checkout: hex(HMAC-SHA256(secret, gatewayOrderID + "|" + paymentID)).
func PaymentSignature(gatewayOrderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPaymentSignature reports whether signature was produced by the gateway
// for this order and payment. The comparison is constant time.
func VerifyPaymentSignature(gatewayOrderID, paymentID, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := PaymentSignature(gatewayOrderID, paymentID, secret)
	return equalSignatures([]byte(expected), []byte(signature))
}
