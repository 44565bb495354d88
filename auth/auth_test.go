package auth

import (
	"testing"
	"time"
)

func TestMintVerifyRoundTrip(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	signed, err := tokens.Mint("user_abc", "buyer@example.com", false)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	claims, err := tokens.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "user_abc" {
		t.Errorf("subject %q", claims.Subject)
	}
	if claims.Email != "buyer@example.com" {
		t.Errorf("email %q", claims.Email)
	}
	if claims.IsAdmin {
		t.Error("unexpected admin claim")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signed, err := NewTokens("secret-a", time.Hour).Mint("user_abc", "a@b.c", false)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if _, err := NewTokens("secret-b", time.Hour).Verify(signed); err == nil {
		t.Fatal("expected verification failure")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	past := &Tokens{secret: []byte("secret"), ttl: -time.Minute}
	signed, err := past.Mint("user_abc", "a@b.c", false)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if _, err := NewTokens("secret", time.Hour).Verify(signed); err == nil {
		t.Fatal("expected expiry failure")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "hunter22") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "hunter23") {
		t.Error("wrong password accepted")
	}
}

func TestVerificationCodeFormat(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := NewVerificationCode()
		if err != nil {
			t.Fatalf("NewVerificationCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q is not 6 digits", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q contains non-digit", code)
			}
		}
	}
}

func TestOpaqueTokenUnique(t *testing.T) {
	a, err := NewOpaqueToken()
	if err != nil {
		t.Fatalf("NewOpaqueToken: %v", err)
	}
	b, err := NewOpaqueToken()
	if err != nil {
		t.Fatalf("NewOpaqueToken: %v", err)
	}
	if a == b {
		t.Error("tokens collide")
	}
	if len(a) != 64 {
		t.Errorf("token length %d", len(a))
	}
}
