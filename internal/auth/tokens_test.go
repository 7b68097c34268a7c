package auth

import (
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	userID := primitive.NewObjectID()
	token, err := IssueAccessToken(userID, "user", "access-secret", 15*time.Minute)
	if err != nil {
		t.Fatalf("IssueAccessToken returned error: %v", err)
	}

	parsed, err := ParseToken(token, "access-secret")
	if err != nil {
		t.Fatalf("ParseToken returned error: %v", err)
	}
	if parsed != userID {
		t.Fatalf("expected userId %s, got %s", userID.Hex(), parsed.Hex())
	}
}

func TestParseTokenRejectsTamperedSignature(t *testing.T) {
	userID := primitive.NewObjectID()
	token, err := IssueAccessToken(userID, "user", "access-secret", 15*time.Minute)
	if err != nil {
		t.Fatalf("IssueAccessToken returned error: %v", err)
	}

	last := token[len(token)-1]
	replacement := "A"
	if string(last) == replacement {
		replacement = "B"
	}
	tampered := token[:len(token)-1] + replacement

	if _, err := ParseToken(tampered, "access-secret"); err == nil {
		t.Fatal("expected tampered token to be rejected")
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	userID := primitive.NewObjectID()
	refresh, err := IssueRefreshToken(userID, "refresh-secret", 7*24*time.Hour)
	if err != nil {
		t.Fatalf("IssueRefreshToken returned error: %v", err)
	}

	// A refresh token must never validate against the access secret.
	if _, err := ParseToken(refresh, "access-secret"); err == nil {
		t.Fatal("expected refresh token to fail access-secret validation")
	}

	if _, err := ParseToken(refresh, "refresh-secret"); err != nil {
		t.Fatalf("expected refresh token to validate with its own secret, got %v", err)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	userID := primitive.NewObjectID()
	token, err := IssueAccessToken(userID, "user", "access-secret", -time.Minute)
	if err != nil {
		t.Fatalf("IssueAccessToken returned error: %v", err)
	}

	if _, err := ParseToken(token, "access-secret"); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestGenerateResetToken(t *testing.T) {
	token, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken returned error: %v", err)
	}
	if len(token) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(token))
	}

	other, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken returned error: %v", err)
	}
	if token == other {
		t.Fatal("expected distinct tokens across calls")
	}
}

func TestHashTokenIsStableAndOneWay(t *testing.T) {
	hash := HashToken("raw-token")
	if hash != HashToken("raw-token") {
		t.Fatal("expected identical input to hash identically")
	}
	if hash == "raw-token" || strings.Contains(hash, "raw-token") {
		t.Fatal("expected hash to not contain the raw token")
	}
	if len(hash) != 64 {
		t.Fatalf("expected sha256 hex length 64, got %d", len(hash))
	}
}
