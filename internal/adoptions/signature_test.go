package adoptions

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func signPayload(t *testing.T, orderID, paymentID, secret string) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignatureAcceptsValidProof(t *testing.T) {
	sig := signPayload(t, "order_abc", "pay_xyz", "secret")
	if !VerifySignature("order_abc", "pay_xyz", sig, "secret") {
		t.Fatal("valid signature rejected")
	}
}

func TestVerifySignatureRejectsTampering(t *testing.T) {
	sig := signPayload(t, "order_abc", "pay_xyz", "secret")

	cases := map[string][4]string{
		"wrong order":   {"order_def", "pay_xyz", sig, "secret"},
		"wrong payment": {"order_abc", "pay_other", sig, "secret"},
		"wrong secret":  {"order_abc", "pay_xyz", sig, "other"},
		"bad signature": {"order_abc", "pay_xyz", "deadbeef", "secret"},
	}
	for name, args := range cases {
		if VerifySignature(args[0], args[1], args[2], args[3]) {
			t.Fatalf("%s: signature accepted", name)
		}
	}
}

func TestVerifySignatureFailsClosedOnEmptyInput(t *testing.T) {
	sig := signPayload(t, "order_abc", "pay_xyz", "secret")

	cases := [][4]string{
		{"", "pay_xyz", sig, "secret"},
		{"order_abc", "", sig, "secret"},
		{"order_abc", "pay_xyz", "", "secret"},
		{"order_abc", "pay_xyz", sig, ""},
	}
	for i, args := range cases {
		if VerifySignature(args[0], args[1], args[2], args[3]) {
			t.Fatalf("case %d: empty input accepted", i)
		}
	}
}
