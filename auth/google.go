package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// GoogleBroker resolves Google sign-in sessions against an external
// session-data endpoint. The endpoint accepts the browser-supplied session
// id and returns the verified profile.
type GoogleBroker struct {
	endpoint string
	client   *http.Client
}

func NewGoogleBroker(endpoint string) *GoogleBroker {
	return &GoogleBroker{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (b *GoogleBroker) Exchange(ctx context.Context, sessionID string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("auth: build session request: %w", err)
	}
	req.Header.Set("X-Session-ID", sessionID)

	res, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: session exchange: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: session exchange returned %d", res.StatusCode)
	}

	var payload struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("auth: decode session payload: %w", err)
	}
	if payload.Email == "" {
		return nil, fmt.Errorf("auth: session payload missing email")
	}
	return &Profile{Email: payload.Email, Name: payload.Name, Picture: payload.Picture}, nil
}
