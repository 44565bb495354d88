package beatstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/stereohaus/beatstore/account"
	"github.com/stereohaus/beatstore/auth"
	"github.com/stereohaus/beatstore/id"
	"github.com/stereohaus/beatstore/notify"
	"github.com/stereohaus/beatstore/types"
)

// RegisterRequest creates an email/password account.
type RegisterRequest struct {
	Email       string
	Password    string
	Username    string
	Phone       string
	CountryCode string
}

// AuthResult pairs an account with a freshly minted access token.
type AuthResult struct {
	Account *account.Account
	Token   string
}

// ──────────────────────────────────────────────────
// Registration and login
// ──────────────────────────────────────────────────

// Register creates an account. Phone is required with at least ten digits
// plus a country code; the password is bcrypt-hashed before storage.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	email := account.NormalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ValidationError{Field: "email", Message: "valid email is required"}
	}
	if len(req.Password) < 6 {
		return nil, ValidationError{Field: "password", Message: "must be at least 6 characters"}
	}
	if len(account.DigitsOnly(req.Phone)) < 10 {
		return nil, ValidationError{Field: "phone", Message: "must have at least 10 digits"}
	}
	if strings.TrimSpace(req.CountryCode) == "" {
		return nil, ValidationError{Field: "country_code", Message: "country code is required"}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	a := &account.Account{
		Entity:       types.NewEntity(),
		ID:           id.NewAccountID(),
		Email:        email,
		PasswordHash: hash,
		Username:     strings.TrimSpace(req.Username),
		Phone:        req.Phone,
		CountryCode:  req.CountryCode,
		AuthProvider: account.ProviderEmail,
		IsVerified:   true,
	}
	// Mint before the store write so a missing token service cannot
	// leave behind an account the caller never saw.
	token, err := e.mintToken(a)
	if err != nil {
		return nil, err
	}
	if err := e.store.CreateAccount(ctx, a); err != nil {
		return nil, err
	}

	e.plugins.EmitUserRegistered(ctx, a)

	return &AuthResult{Account: a, Token: token}, nil
}

// Login checks credentials and issues an access token. Google accounts
// have no password and must use the session flow.
func (e *Engine) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	a, err := e.store.GetAccountByEmail(ctx, account.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	if a.AuthProvider == account.ProviderGoogle || a.PasswordHash == "" {
		return nil, ErrGoogleAccount
	}
	if !auth.CheckPassword(a.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	if !a.IsVerified && !a.IsAdmin {
		return nil, ErrAccountUnverified
	}

	token, err := e.mintToken(a)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	a.LastLogin = &now
	a.Touch()
	if err := e.store.UpdateAccount(ctx, a); err != nil {
		e.logger.Warn("failed to record last login", "email", a.Email, "error", err)
	}

	return &AuthResult{Account: a, Token: token}, nil
}

// Authenticate resolves a bearer token to its account.
func (e *Engine) Authenticate(ctx context.Context, token string) (*account.Account, error) {
	if e.tokens == nil {
		return nil, ErrUnauthorized
	}
	claims, err := e.tokens.Verify(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	accountID, err := id.ParseAccountID(claims.Subject)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return e.store.GetAccount(ctx, accountID)
}

// ChangePassword verifies the current password before setting a new one.
func (e *Engine) ChangePassword(ctx context.Context, email, current, next string) error {
	a, err := e.store.GetAccountByEmail(ctx, account.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if a.AuthProvider == account.ProviderGoogle || a.PasswordHash == "" {
		return ErrGoogleAccount
	}
	if !auth.CheckPassword(a.PasswordHash, current) {
		return ErrBadCredentials
	}
	if len(next) < 6 {
		return ValidationError{Field: "password", Message: "must be at least 6 characters"}
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	a.Touch()
	return e.store.UpdateAccount(ctx, a)
}

// UpdateProfile fills in the storefront profile fields, used mainly by
// Google accounts completing registration.
func (e *Engine) UpdateProfile(ctx context.Context, accountID id.AccountID, username, phone, countryCode string) (*account.Account, error) {
	a, err := e.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if username != "" {
		a.Username = strings.TrimSpace(username)
	}
	if phone != "" {
		if len(account.DigitsOnly(phone)) < 10 {
			return nil, ValidationError{Field: "phone", Message: "must have at least 10 digits"}
		}
		a.Phone = phone
	}
	if countryCode != "" {
		a.CountryCode = countryCode
	}
	a.Touch()

	if err := e.store.UpdateAccount(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ──────────────────────────────────────────────────
// Email verification codes
// ──────────────────────────────────────────────────

// SendVerificationCode issues a fresh 6-digit code, replacing any previous
// live code for the email.
func (e *Engine) SendVerificationCode(ctx context.Context, email string) error {
	email = account.NormalizeEmail(email)
	if _, err := e.store.GetAccountByEmail(ctx, email); err != nil {
		return err
	}

	code, err := auth.NewVerificationCode()
	if err != nil {
		return err
	}

	v := &account.Verification{
		Entity:    types.NewEntity(),
		ID:        id.NewVerificationID(),
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().UTC().Add(e.verifyTTL),
	}
	if err := e.store.CreateVerification(ctx, v); err != nil {
		return err
	}

	if err := e.notifier.VerificationCode(ctx, email, code); err != nil {
		e.logger.Warn("failed to send verification code", "email", email, "error", err)
		e.plugins.EmitNotifyFailed(ctx, "verification_code", email, err)
	}
	return nil
}

// VerifyEmail consumes a verification code and marks the account verified.
func (e *Engine) VerifyEmail(ctx context.Context, email, code string) error {
	email = account.NormalizeEmail(email)
	v, err := e.store.GetVerification(ctx, email)
	if err != nil {
		return ErrCodeInvalid
	}
	if v.Expired(time.Now().UTC()) {
		_ = e.store.DeleteVerification(ctx, email) //nolint:errcheck // expired code cleanup
		return ErrTokenExpired
	}
	if v.Code != code {
		return ErrCodeInvalid
	}

	if err := e.store.DeleteVerification(ctx, email); err != nil {
		return err
	}

	a, err := e.store.GetAccountByEmail(ctx, email)
	if err != nil {
		return err
	}
	a.IsVerified = true
	a.Touch()
	return e.store.UpdateAccount(ctx, a)
}

// ──────────────────────────────────────────────────
// Password resets
// ──────────────────────────────────────────────────

// RequestPasswordReset issues an emailed single-use reset link. Unknown
// emails and Google accounts return nil without sending anything, so the
// endpoint never confirms whether an address is registered.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) error {
	email = account.NormalizeEmail(email)
	a, err := e.store.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil
		}
		return err
	}
	if a.AuthProvider == account.ProviderGoogle || a.PasswordHash == "" {
		return nil
	}

	token, err := auth.NewOpaqueToken()
	if err != nil {
		return err
	}

	r := &account.ResetToken{
		Entity:    types.NewEntity(),
		ID:        id.NewResetID(),
		Email:     email,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(e.resetTTL),
	}
	if err := e.store.CreateResetToken(ctx, r); err != nil {
		return err
	}

	resetURL := e.resetBaseURL + "?token=" + token
	if err := e.notifier.PasswordReset(ctx, email, resetURL); err != nil {
		e.logger.Warn("failed to send password reset", "email", email, "error", err)
		e.plugins.EmitNotifyFailed(ctx, "password_reset", email, err)
	}
	return nil
}

// ResetPassword consumes a reset token and sets the new password.
func (e *Engine) ResetPassword(ctx context.Context, token, next string) error {
	r, err := e.store.GetResetToken(ctx, token)
	if err != nil {
		return ErrTokenInvalid
	}
	if !r.Usable(time.Now().UTC()) {
		return ErrTokenExpired
	}
	if len(next) < 6 {
		return ValidationError{Field: "password", Message: "must be at least 6 characters"}
	}

	a, err := e.store.GetAccountByEmail(ctx, r.Email)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	a.Touch()
	if err := e.store.UpdateAccount(ctx, a); err != nil {
		return err
	}

	return e.store.MarkResetTokenUsed(ctx, token)
}

// MaskedPhone returns the account's phone with only the last four digits
// visible, for the phone-based reset prompt.
func (e *Engine) MaskedPhone(ctx context.Context, email string) (string, error) {
	a, err := e.store.GetAccountByEmail(ctx, account.NormalizeEmail(email))
	if err != nil {
		return "", err
	}
	if a.Phone == "" {
		return "", ErrNotFound
	}
	return a.MaskedPhone(), nil
}

// VerifyPhoneForReset compares the supplied phone against the account's,
// digits only, and on match opens a ten-minute reset window by issuing a
// reset token directly.
func (e *Engine) VerifyPhoneForReset(ctx context.Context, email, phone string) (string, error) {
	a, err := e.store.GetAccountByEmail(ctx, account.NormalizeEmail(email))
	if err != nil {
		return "", err
	}
	if a.AuthProvider == account.ProviderGoogle || a.PasswordHash == "" {
		return "", ErrGoogleAccount
	}
	if account.DigitsOnly(a.Phone) == "" || account.DigitsOnly(a.Phone) != account.DigitsOnly(phone) {
		return "", ErrForbidden
	}

	token, err := auth.NewOpaqueToken()
	if err != nil {
		return "", err
	}
	r := &account.ResetToken{
		Entity:    types.NewEntity(),
		ID:        id.NewResetID(),
		Email:     a.Email,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(10 * time.Minute),
	}
	if err := e.store.CreateResetToken(ctx, r); err != nil {
		return "", err
	}
	return token, nil
}

// ──────────────────────────────────────────────────
// Google sign-in sessions
// ──────────────────────────────────────────────────

// GoogleSession exchanges a broker session id for a verified profile,
// finds or creates the matching account, and rotates its server-side
// session.
func (e *Engine) GoogleSession(ctx context.Context, brokerSessionID string) (*account.Account, string, error) {
	if e.broker == nil {
		return nil, "", ErrProviderNotConfigured
	}

	profile, err := e.broker.Exchange(ctx, brokerSessionID)
	if err != nil {
		return nil, "", ErrUnauthorized
	}

	email := account.NormalizeEmail(profile.Email)
	a, err := e.store.GetAccountByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrAccountNotFound) {
			return nil, "", err
		}
		a = &account.Account{
			Entity:       types.NewEntity(),
			ID:           id.NewAccountID(),
			Email:        email,
			Name:         profile.Name,
			Picture:      profile.Picture,
			AuthProvider: account.ProviderGoogle,
			IsVerified:   true,
		}
		if err := e.store.CreateAccount(ctx, a); err != nil {
			return nil, "", err
		}
		e.plugins.EmitUserRegistered(ctx, a)
	}

	now := time.Now().UTC()
	a.LastLogin = &now
	a.Touch()
	if err := e.store.UpdateAccount(ctx, a); err != nil {
		e.logger.Warn("failed to record last login", "email", a.Email, "error", err)
	}

	// Rotate: drop existing sessions before issuing the new one.
	if err := e.store.DeleteSessionsForAccount(ctx, a.ID); err != nil {
		e.logger.Warn("failed to rotate sessions", "email", a.Email, "error", err)
	}

	token, err := auth.NewOpaqueToken()
	if err != nil {
		return nil, "", err
	}
	sess := &account.Session{
		Entity:    types.NewEntity(),
		ID:        id.NewSessionID(),
		Token:     token,
		AccountID: a.ID,
		ExpiresAt: now.Add(e.sessionTTL),
	}
	if err := e.store.CreateSession(ctx, sess); err != nil {
		return nil, "", err
	}

	return a, token, nil
}

// SessionAccount resolves a session token to its account.
func (e *Engine) SessionAccount(ctx context.Context, sessionToken string) (*account.Account, error) {
	sess, err := e.store.GetSession(ctx, sessionToken)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if sess.Expired(time.Now().UTC()) {
		_ = e.store.DeleteSession(ctx, sessionToken) //nolint:errcheck // expired session cleanup
		return nil, ErrUnauthorized
	}
	return e.store.GetAccount(ctx, sess.AccountID)
}

// Logout deletes a session token.
func (e *Engine) Logout(ctx context.Context, sessionToken string) error {
	return e.store.DeleteSession(ctx, sessionToken)
}

// ──────────────────────────────────────────────────
// Admin bootstrap and custom requests
// ──────────────────────────────────────────────────

// SeedAdmin writes the privileged account into the ordinary account store.
// Idempotent: an existing account with the seed email is left untouched.
func (e *Engine) SeedAdmin(ctx context.Context, seed AdminSeed) error {
	email := account.NormalizeEmail(seed.Email)
	if email == "" || seed.Password == "" {
		return ValidationError{Field: "admin_seed", Message: "email and password are required"}
	}

	if _, err := e.store.GetAccountByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, ErrAccountNotFound) {
		return err
	}

	hash, err := auth.HashPassword(seed.Password)
	if err != nil {
		return err
	}

	a := &account.Account{
		Entity:       types.NewEntity(),
		ID:           id.NewAccountID(),
		Email:        email,
		PasswordHash: hash,
		Username:     seed.Username,
		AuthProvider: account.ProviderEmail,
		IsAdmin:      true,
		IsVerified:   true,
	}
	if err := e.store.CreateAccount(ctx, a); err != nil {
		return err
	}

	e.logger.Info("admin account seeded", "email", email)
	return nil
}

// RequestCustomBeat forwards a commission inquiry to the studio inbox.
func (e *Engine) RequestCustomBeat(ctx context.Context, req notify.BeatRequest) error {
	if req.Email == "" || req.Details == "" {
		return ValidationError{Field: "request", Message: "email and details are required"}
	}
	if err := e.notifier.BeatRequest(ctx, req); err != nil {
		e.plugins.EmitNotifyFailed(ctx, "beat_request", req.Email, err)
		return err
	}
	return nil
}

func (e *Engine) mintToken(a *account.Account) (string, error) {
	if e.tokens == nil {
		return "", ErrProviderNotConfigured
	}
	return e.tokens.Mint(a.ID.String(), a.Email, a.IsAdmin)
}
