package account

import (
	"strings"
	"time"

	"github.com/stereohaus/beatstore/id"
	"github.com/stereohaus/beatstore/types"
)

// Provider identifies how an account authenticates.
type Provider string

const (
	ProviderEmail  Provider = "email"
	ProviderGoogle Provider = "google"
)

// Account is a storefront user. Google accounts carry no password hash.
// The privileged admin account lives in the same store as every other
// account and is written by an explicit seed step at engine start.
type Account struct {
	types.Entity
	ID           id.AccountID `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Username     string       `json:"username,omitempty"`
	Name         string       `json:"name,omitempty"`
	Picture      string       `json:"picture,omitempty"`
	Phone        string       `json:"phone,omitempty"`
	CountryCode  string       `json:"country_code,omitempty"`
	AuthProvider Provider     `json:"auth_provider"`
	IsAdmin      bool         `json:"is_admin"`
	IsVerified   bool         `json:"is_verified"`
	LastLogin    *time.Time   `json:"last_login,omitempty"`
}

// ProfileComplete reports whether a Google account has supplied the
// storefront fields registration normally collects.
func (a *Account) ProfileComplete() bool {
	return a.Username != "" && a.Phone != ""
}

// MaskedPhone returns the phone with only the last four digits visible,
// for the phone-based reset flow's confirmation prompt.
func (a *Account) MaskedPhone() string {
	digits := DigitsOnly(a.Phone)
	if len(digits) <= 4 {
		return digits
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}

// DigitsOnly strips everything but digits, for phone comparison.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeEmail lower-cases and trims an email for use as a lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Verification is a short-lived 6-digit email verification code.
// Single-use: consumed on successful check.
type Verification struct {
	types.Entity
	ID        id.VerificationID `json:"id"`
	Email     string            `json:"email"`
	Code      string            `json:"code"`
	ExpiresAt time.Time         `json:"expires_at"`
}

func (v *Verification) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// ResetToken is an opaque single-use password reset credential, delivered
// by email. Phone-based resets use a Verification window instead.
type ResetToken struct {
	types.Entity
	ID        id.ResetID `json:"id"`
	Email     string     `json:"email"`
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	Used      bool       `json:"used"`
}

func (r *ResetToken) Usable(now time.Time) bool {
	return !r.Used && now.Before(r.ExpiresAt)
}

// Session is a server-side session handle for the Google sign-in flow.
// Rotated on each exchange.
type Session struct {
	types.Entity
	ID        id.SessionID `json:"id"`
	Token     string       `json:"token"`
	AccountID id.AccountID `json:"account_id"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
