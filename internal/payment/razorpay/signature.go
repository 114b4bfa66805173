package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// VerifyPaymentSignature 校验支付回调签名。
// 签名串为 "<order_id>|<payment_id>"，使用 webhook secret 做 HMAC-SHA256。
func VerifyPaymentSignature(secret, orderID, paymentID, signature string) error {
	if strings.TrimSpace(secret) == "" {
		return fmt.Errorf("%w: webhook_secret is required", ErrConfigInvalid)
	}
	orderID = strings.TrimSpace(orderID)
	paymentID = strings.TrimSpace(paymentID)
	signature = strings.ToLower(strings.TrimSpace(signature))
	if orderID == "" || paymentID == "" || signature == "" {
		return fmt.Errorf("%w: verify failed", ErrSignatureInvalid)
	}
	expected := computeSignature(secret, orderID+"|"+paymentID)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return fmt.Errorf("%w: verify failed", ErrSignatureInvalid)
	}
	return nil
}

func computeSignature(secret, payload string) string {
	h := hmac.New(sha256.New, []byte(secret))
	_, _ = h.Write([]byte(payload))
	return strings.ToLower(hex.EncodeToString(h.Sum(nil)))
}
