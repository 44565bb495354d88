package account

import (
	"testing"
	"time"
)

func TestMaskedPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  string
	}{
		{"5512345678", "******5678"},
		{"+52 55 1234 5678", "********5678"},
		{"1234", "1234"},
		{"", ""},
	}

	for _, tt := range tests {
		a := Account{Phone: tt.phone}
		if got := a.MaskedPhone(); got != tt.want {
			t.Errorf("MaskedPhone(%q) = %q, want %q", tt.phone, got, tt.want)
		}
	}
}

func TestDigitsOnly(t *testing.T) {
	if got := DigitsOnly("+52 (55) 1234-5678"); got != "525512345678" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Buyer@Example.COM "); got != "buyer@example.com" {
		t.Errorf("got %q", got)
	}
}

func TestResetTokenUsable(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		tok  ResetToken
		want bool
	}{
		{"fresh", ResetToken{ExpiresAt: now.Add(time.Minute)}, true},
		{"expired", ResetToken{ExpiresAt: now.Add(-time.Minute)}, false},
		{"used", ResetToken{ExpiresAt: now.Add(time.Minute), Used: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tok.Usable(now); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
