package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignWebhook computes the hex HMAC-SHA256 the gateway attaches to webhook
// deliveries. The digest covers the exact raw request body; any
// re-serialization of the payload invalidates it.
func SignWebhook(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	return hmac.Equal([]byte(SignWebhook(body, secret)), []byte(signature))
}

// SignPayment computes the checkout-callback signature over
// "orderID|paymentID" with the key secret.
func SignPayment(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifyPaymentSignature(orderID, paymentID, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	return hmac.Equal([]byte(SignPayment(orderID, paymentID, secret)), []byte(signature))
}
