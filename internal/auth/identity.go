package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// IdentityVerifier validates an ID token minted by the external identity
// provider during signup and returns the verified email.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (email string, err error)
}

// HTTPIdentityVerifier verifies tokens against the provider's tokeninfo
// endpoint (GET {endpoint}?id_token=...). A non-200 response means the
// token is invalid or expired.
type HTTPIdentityVerifier struct {
	endpoint   string
	httpClient *http.Client
}

func NewHTTPIdentityVerifier(endpoint string) *HTTPIdentityVerifier {
	return &HTTPIdentityVerifier{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *HTTPIdentityVerifier) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		v.endpoint+"?id_token="+url.QueryEscape(idToken), nil)
	if err != nil {
		return "", fmt.Errorf("auth: build tokeninfo request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth: tokeninfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.New("auth: identity token rejected by provider")
	}

	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("auth: decode tokeninfo response: %w", err)
	}
	if info.Email == "" {
		return "", errors.New("auth: identity token carries no email")
	}
	return info.Email, nil
}
