package adoptions

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature checks the completion proof Razorpay hands back after
// checkout: HMAC-SHA256 over "<gateway order id>|<gateway payment id>" keyed
// by the signing secret, hex encoded. Fails closed on any empty input.
func VerifySignature(gatewayOrderID, gatewayPaymentID, signature, secret string) bool {
	if gatewayOrderID == "" || gatewayPaymentID == "" || signature == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
