package beatstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	beatstore "github.com/stereohaus/beatstore"
	"github.com/stereohaus/beatstore/account"
	"github.com/stereohaus/beatstore/auth"
	"github.com/stereohaus/beatstore/notify"
	"github.com/stereohaus/beatstore/store/memory"
)

// captureNotifier records every notification instead of sending it.
type captureNotifier struct {
	mu        sync.Mutex
	codes     map[string]string // email -> code
	resetURLs map[string]string // email -> url
	receipts  []notify.Receipt
	requests  []notify.BeatRequest
	fail      bool
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{
		codes:     make(map[string]string),
		resetURLs: make(map[string]string),
	}
}

func (n *captureNotifier) VerificationCode(_ context.Context, email, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp down")
	}
	n.codes[email] = code
	return nil
}

func (n *captureNotifier) PasswordReset(_ context.Context, email, resetURL string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp down")
	}
	n.resetURLs[email] = resetURL
	return nil
}

func (n *captureNotifier) PurchaseReceipt(_ context.Context, r notify.Receipt) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp down")
	}
	n.receipts = append(n.receipts, r)
	return nil
}

func (n *captureNotifier) BeatRequest(_ context.Context, r notify.BeatRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp down")
	}
	n.requests = append(n.requests, r)
	return nil
}

// fakeBroker resolves any session id to a fixed Google profile.
type fakeBroker struct {
	profile *auth.Profile
	err     error
}

func (b *fakeBroker) Exchange(_ context.Context, _ string) (*auth.Profile, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.profile, nil
}

func registerBuyer(t *testing.T, env *testEnv, email string) *beatstore.AuthResult {
	t.Helper()

	res, err := env.engine.Register(context.Background(), beatstore.RegisterRequest{
		Email:       email,
		Password:    "hunter22",
		Username:    "buyer",
		Phone:       "+52 555 123 4567",
		CountryCode: "+52",
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return res
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t, beatstore.WithTokens(auth.NewTokens("test-secret", time.Hour)))
	ctx := context.Background()

	res := registerBuyer(t, env, "Buyer@Example.com")
	if res.Account.Email != "buyer@example.com" {
		t.Errorf("email = %q, want normalized", res.Account.Email)
	}
	if res.Token == "" {
		t.Error("no access token minted")
	}
	if !res.Account.IsVerified {
		t.Error("email registration should start verified")
	}

	login, err := env.engine.Login(ctx, "buyer@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.Account.LastLogin == nil {
		t.Error("LastLogin not recorded")
	}

	// The bearer token resolves back to the account.
	got, err := env.engine.Authenticate(ctx, login.Token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID.String() != res.Account.ID.String() {
		t.Errorf("Authenticate resolved %s, want %s", got.ID, res.Account.ID)
	}
}

func TestRegisterWithoutTokens(t *testing.T) {
	s := memory.New()
	eng := beatstore.New(s)
	ctx := context.Background()

	_, err := eng.Register(ctx, beatstore.RegisterRequest{
		Email:       "buyer@example.com",
		Password:    "hunter22",
		Phone:       "+52 555 123 4567",
		CountryCode: "+52",
	})
	if !errors.Is(err, beatstore.ErrProviderNotConfigured) {
		t.Fatalf("Register without tokens: err = %v, want ErrProviderNotConfigured", err)
	}

	// The failed registration must not leave an account behind.
	if _, err := s.GetAccountByEmail(ctx, "buyer@example.com"); !errors.Is(err, beatstore.ErrAccountNotFound) {
		t.Errorf("GetAccountByEmail after failed register: err = %v, want ErrAccountNotFound", err)
	}

	if _, err := eng.Login(ctx, "buyer@example.com", "hunter22"); !errors.Is(err, beatstore.ErrBadCredentials) {
		t.Errorf("Login for never-created account: err = %v, want ErrBadCredentials", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  beatstore.RegisterRequest
	}{
		{"missing email", beatstore.RegisterRequest{Password: "hunter22", Phone: "5551234567", CountryCode: "+52"}},
		{"malformed email", beatstore.RegisterRequest{Email: "not-an-email", Password: "hunter22", Phone: "5551234567", CountryCode: "+52"}},
		{"short password", beatstore.RegisterRequest{Email: "a@b.com", Password: "abc", Phone: "5551234567", CountryCode: "+52"}},
		{"short phone", beatstore.RegisterRequest{Email: "a@b.com", Password: "hunter22", Phone: "12345", CountryCode: "+52"}},
		{"missing country code", beatstore.RegisterRequest{Email: "a@b.com", Password: "hunter22", Phone: "5551234567"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.engine.Register(ctx, tt.req)
			var verr beatstore.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("Register = %v, want ValidationError", err)
			}
		})
	}

	t.Run("duplicate email", func(t *testing.T) {
		registerBuyer(t, env, "dup@example.com")
		_, err := env.engine.Register(ctx, beatstore.RegisterRequest{
			Email: "DUP@example.com", Password: "hunter22",
			Phone: "5551234567", CountryCode: "+52",
		})
		if !errors.Is(err, beatstore.ErrAccountExists) {
			t.Errorf("duplicate Register = %v, want ErrAccountExists", err)
		}
	})
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registerBuyer(t, env, "buyer@example.com")

	t.Run("UnknownEmailIsBadCredentials", func(t *testing.T) {
		_, err := env.engine.Login(ctx, "ghost@example.com", "whatever")
		if !errors.Is(err, beatstore.ErrBadCredentials) {
			t.Errorf("Login = %v, want ErrBadCredentials", err)
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := env.engine.Login(ctx, "buyer@example.com", "wrong")
		if !errors.Is(err, beatstore.ErrBadCredentials) {
			t.Errorf("Login = %v, want ErrBadCredentials", err)
		}
	})

	t.Run("GoogleAccountHasNoPassword", func(t *testing.T) {
		env := newTestEnv(t, beatstore.WithSessionBroker(&fakeBroker{
			profile: &auth.Profile{Email: "g@example.com", Name: "G"},
		}))
		if _, _, err := env.engine.GoogleSession(ctx, "sess_1"); err != nil {
			t.Fatalf("GoogleSession: %v", err)
		}
		_, err := env.engine.Login(ctx, "g@example.com", "anything")
		if !errors.Is(err, beatstore.ErrGoogleAccount) {
			t.Errorf("Login = %v, want ErrGoogleAccount", err)
		}
	})
}

func TestVerificationCodeFlow(t *testing.T) {
	notifier := newCaptureNotifier()
	env := newTestEnv(t, beatstore.WithNotifier(notifier))
	ctx := context.Background()

	registerBuyer(t, env, "buyer@example.com")

	if err := env.engine.SendVerificationCode(ctx, "buyer@example.com"); err != nil {
		t.Fatalf("SendVerificationCode: %v", err)
	}
	code := notifier.codes["buyer@example.com"]
	if len(code) != 6 {
		t.Fatalf("code = %q, want 6 digits", code)
	}

	t.Run("WrongCode", func(t *testing.T) {
		if err := env.engine.VerifyEmail(ctx, "buyer@example.com", "000000"); !errors.Is(err, beatstore.ErrCodeInvalid) {
			// A six-in-a-million collision with the real code is possible but
			// the generated code is checked below anyway.
			if code != "000000" {
				t.Errorf("VerifyEmail wrong code = %v, want ErrCodeInvalid", err)
			}
		}
	})

	t.Run("CorrectCodeConsumes", func(t *testing.T) {
		if err := env.engine.VerifyEmail(ctx, "buyer@example.com", code); err != nil {
			t.Fatalf("VerifyEmail: %v", err)
		}
		// The code is single-use.
		if err := env.engine.VerifyEmail(ctx, "buyer@example.com", code); !errors.Is(err, beatstore.ErrCodeInvalid) {
			t.Errorf("replayed VerifyEmail = %v, want ErrCodeInvalid", err)
		}
	})
}

func TestPasswordResetFlow(t *testing.T) {
	notifier := newCaptureNotifier()
	env := newTestEnv(t,
		beatstore.WithNotifier(notifier),
		beatstore.WithResetBaseURL("https://beats.example.com/reset"),
	)
	ctx := context.Background()

	registerBuyer(t, env, "buyer@example.com")

	if err := env.engine.RequestPasswordReset(ctx, "buyer@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	resetURL := notifier.resetURLs["buyer@example.com"]
	const prefix = "https://beats.example.com/reset?token="
	if len(resetURL) <= len(prefix) || resetURL[:len(prefix)] != prefix {
		t.Fatalf("reset url = %q, want %s<token>", resetURL, prefix)
	}
	token := resetURL[len(prefix):]

	if err := env.engine.ResetPassword(ctx, token, "newpass9"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, err := env.engine.Login(ctx, "buyer@example.com", "newpass9"); err != nil {
		t.Errorf("Login with new password: %v", err)
	}
	if _, err := env.engine.Login(ctx, "buyer@example.com", "hunter22"); !errors.Is(err, beatstore.ErrBadCredentials) {
		t.Errorf("Login with old password = %v, want ErrBadCredentials", err)
	}

	// The token is single-use.
	if err := env.engine.ResetPassword(ctx, token, "another9"); !errors.Is(err, beatstore.ErrTokenExpired) {
		t.Errorf("replayed ResetPassword = %v, want ErrTokenExpired", err)
	}
}

func TestRequestPasswordResetNeverConfirmsEmails(t *testing.T) {
	notifier := newCaptureNotifier()
	env := newTestEnv(t, beatstore.WithNotifier(notifier))

	// Unknown address: silent success, nothing sent.
	if err := env.engine.RequestPasswordReset(context.Background(), "ghost@example.com"); err != nil {
		t.Errorf("RequestPasswordReset(unknown) = %v, want nil", err)
	}
	if len(notifier.resetURLs) != 0 {
		t.Errorf("reset sent for unknown email: %v", notifier.resetURLs)
	}
}

func TestPhoneResetFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registerBuyer(t, env, "buyer@example.com")

	masked, err := env.engine.MaskedPhone(ctx, "buyer@example.com")
	if err != nil {
		t.Fatalf("MaskedPhone: %v", err)
	}
	// "+52 555 123 4567" has 12 digits; all but the last four are starred.
	if masked != "********4567" {
		t.Errorf("MaskedPhone = %q, want ********4567", masked)
	}

	t.Run("WrongPhoneForbidden", func(t *testing.T) {
		_, err := env.engine.VerifyPhoneForReset(ctx, "buyer@example.com", "5550000000")
		if !errors.Is(err, beatstore.ErrForbidden) {
			t.Errorf("VerifyPhoneForReset = %v, want ErrForbidden", err)
		}
	})

	t.Run("MatchingPhoneOpensWindow", func(t *testing.T) {
		// Formatting differences are ignored; digits decide.
		token, err := env.engine.VerifyPhoneForReset(ctx, "buyer@example.com", "52-555-123-4567")
		if err != nil {
			t.Fatalf("VerifyPhoneForReset: %v", err)
		}
		if err := env.engine.ResetPassword(ctx, token, "fromphone1"); err != nil {
			t.Fatalf("ResetPassword: %v", err)
		}
		if _, err := env.engine.Login(ctx, "buyer@example.com", "fromphone1"); err != nil {
			t.Errorf("Login after phone reset: %v", err)
		}
	})
}

func TestGoogleSessionFlow(t *testing.T) {
	broker := &fakeBroker{profile: &auth.Profile{
		Email: "G.User@Example.com", Name: "G User", Picture: "https://img.example.com/p.png",
	}}
	env := newTestEnv(t, beatstore.WithSessionBroker(broker))
	ctx := context.Background()

	a, token, err := env.engine.GoogleSession(ctx, "sess_1")
	if err != nil {
		t.Fatalf("GoogleSession: %v", err)
	}
	if a.Email != "g.user@example.com" || a.AuthProvider != account.ProviderGoogle {
		t.Errorf("account = %+v, want normalized google account", a)
	}

	got, err := env.engine.SessionAccount(ctx, token)
	if err != nil {
		t.Fatalf("SessionAccount: %v", err)
	}
	if got.ID.String() != a.ID.String() {
		t.Errorf("session resolves %s, want %s", got.ID, a.ID)
	}

	// A second exchange rotates the session; the old token dies.
	_, token2, err := env.engine.GoogleSession(ctx, "sess_2")
	if err != nil {
		t.Fatalf("GoogleSession rotate: %v", err)
	}
	if _, err := env.engine.SessionAccount(ctx, token); !errors.Is(err, beatstore.ErrUnauthorized) {
		t.Errorf("old session = %v, want ErrUnauthorized", err)
	}
	if _, err := env.engine.SessionAccount(ctx, token2); err != nil {
		t.Errorf("new session: %v", err)
	}

	if err := env.engine.Logout(ctx, token2); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := env.engine.SessionAccount(ctx, token2); !errors.Is(err, beatstore.ErrUnauthorized) {
		t.Errorf("after logout = %v, want ErrUnauthorized", err)
	}
}

func TestGoogleSessionWithoutBroker(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.engine.GoogleSession(context.Background(), "sess_1")
	if !errors.Is(err, beatstore.ErrProviderNotConfigured) {
		t.Errorf("GoogleSession = %v, want ErrProviderNotConfigured", err)
	}
}

func TestSeedAdminIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seed := beatstore.AdminSeed{Email: "admin@example.com", Password: "supersecret", Username: "admin"}
	if err := env.engine.SeedAdmin(ctx, seed); err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}

	res, err := env.engine.Login(ctx, "admin@example.com", "supersecret")
	if err != nil {
		t.Fatalf("admin Login: %v", err)
	}
	if !res.Account.IsAdmin {
		t.Error("seeded account not admin")
	}

	// Re-seeding with a different password leaves the account untouched.
	if err := env.engine.SeedAdmin(ctx, beatstore.AdminSeed{
		Email: "admin@example.com", Password: "different",
	}); err != nil {
		t.Fatalf("SeedAdmin again: %v", err)
	}
	if _, err := env.engine.Login(ctx, "admin@example.com", "supersecret"); err != nil {
		t.Errorf("original password stopped working after reseed: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registerBuyer(t, env, "buyer@example.com")

	if err := env.engine.ChangePassword(ctx, "buyer@example.com", "wrong", "newpass9"); !errors.Is(err, beatstore.ErrBadCredentials) {
		t.Errorf("ChangePassword wrong current = %v, want ErrBadCredentials", err)
	}
	if err := env.engine.ChangePassword(ctx, "buyer@example.com", "hunter22", "newpass9"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := env.engine.Login(ctx, "buyer@example.com", "newpass9"); err != nil {
		t.Errorf("Login after change: %v", err)
	}
}

func TestRequestCustomBeat(t *testing.T) {
	notifier := newCaptureNotifier()
	env := newTestEnv(t, beatstore.WithNotifier(notifier))
	ctx := context.Background()

	req := notify.BeatRequest{
		Name: "Artist", Email: "artist@example.com",
		Genre: "Trap", BPM: "140", Mood: "Dark",
		Details: "Something like my last purchase but darker",
	}
	if err := env.engine.RequestCustomBeat(ctx, req); err != nil {
		t.Fatalf("RequestCustomBeat: %v", err)
	}
	if len(notifier.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(notifier.requests))
	}

	// Unlike receipts, a commission inquiry that cannot be delivered is an
	// error the caller sees.
	notifier.fail = true
	if err := env.engine.RequestCustomBeat(ctx, req); err == nil {
		t.Error("RequestCustomBeat with failing notifier = nil, want error")
	}

	var verr beatstore.ValidationError
	if err := env.engine.RequestCustomBeat(ctx, notify.BeatRequest{Email: "a@b.c"}); !errors.As(err, &verr) {
		t.Errorf("RequestCustomBeat missing details = %v, want ValidationError", err)
	}
}
