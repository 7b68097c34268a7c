package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func signPayload(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignatureAcceptsValidSignature(t *testing.T) {
	signature := signPayload("order_A", "pay_B", "key-secret")
	if !VerifySignature("order_A", "pay_B", signature, "key-secret") {
		t.Fatal("expected valid signature to verify")
	}
}

func TestVerifySignatureRejectsMutations(t *testing.T) {
	signature := signPayload("order_A", "pay_B", "key-secret")

	for i := range signature {
		mutated := []byte(signature)
		if mutated[i] == 'a' {
			mutated[i] = 'b'
		} else {
			mutated[i] = 'a'
		}
		if VerifySignature("order_A", "pay_B", string(mutated), "key-secret") {
			t.Fatalf("expected mutated signature at index %d to fail verification", i)
		}
	}
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	signature := signPayload("order_A", "pay_B", "key-secret")
	if VerifySignature("order_A", "pay_B", signature, "other-secret") {
		t.Fatal("expected signature for a different secret to fail")
	}
}

func TestVerifySignatureRejectsSwappedIDs(t *testing.T) {
	signature := signPayload("order_A", "pay_B", "key-secret")
	if VerifySignature("pay_B", "order_A", signature, "key-secret") {
		t.Fatal("expected swapped order/payment ids to fail verification")
	}
}
