package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "test_secret"
	orderID := "order_Jx123"
	paymentID := "pay_Kx456"

	valid := sign(orderID, paymentID, secret)

	require.True(t, VerifySignature(orderID, paymentID, valid, secret))
	require.False(t, VerifySignature(orderID, paymentID, strings.ToUpper(valid), secret),
		"digest comparison is an exact match on the lowercase hex encoding")
}

func TestVerifySignatureRejectsTamperedValues(t *testing.T) {
	secret := "test_secret"
	valid := sign("order_Jx123", "pay_Kx456", secret)

	require.False(t, VerifySignature("order_Jx999", "pay_Kx456", valid, secret))
	require.False(t, VerifySignature("order_Jx123", "pay_Kx999", valid, secret))
	require.False(t, VerifySignature("order_Jx123", "pay_Kx456", valid, "other_secret"))
	require.False(t, VerifySignature("order_Jx123", "pay_Kx456", valid[:len(valid)-2], secret))
}

func TestVerifySignatureRejectsEmptyInputs(t *testing.T) {
	secret := "test_secret"
	valid := sign("order_Jx123", "pay_Kx456", secret)

	require.False(t, VerifySignature("", "pay_Kx456", valid, secret))
	require.False(t, VerifySignature("order_Jx123", "", valid, secret))
	require.False(t, VerifySignature("order_Jx123", "pay_Kx456", "", secret))
	require.False(t, VerifySignature("order_Jx123", "pay_Kx456", valid, ""),
		"missing server secret must fail verification, not pass it")
}

func TestVerifySignatureOrderMatters(t *testing.T) {
	secret := "test_secret"
	swapped := sign("pay_Kx456", "order_Jx123", secret)

	require.False(t, VerifySignature("order_Jx123", "pay_Kx456", swapped, secret))
}
