// internal/common/auth/identity.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"loan-engine/internal/common/errors"
	httpclient "loan-engine/internal/common/http"
)

// IdentityClient talks to the OpenID Connect identity provider used for
// service authentication and caller attribution on score reports.
type IdentityClient struct {
	baseURL      string
	realm        string
	clientID     string
	clientSecret string
	httpClient   *httpclient.Client
	accessToken  string
	tokenExpiry  time.Time
}

// TokenResponse holds the response from the provider's token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

// Principal identifies the authenticated caller of a scoring request.
type Principal struct {
	Subject  string `json:"sub"`
	Username string `json:"preferred_username"`
	ClientID string `json:"azp"`
	Active   bool   `json:"active"`
}

// NewIdentityClient creates a new instance of IdentityClient.
func NewIdentityClient(baseURL, realm, clientID, clientSecret string) *IdentityClient {
	return &IdentityClient{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpclient.NewClient(30 * time.Second),
	}
}

// getAccessToken fetches a new access token using the client credentials flow.
// It caches the token until expiry.
func (k *IdentityClient) getAccessToken(ctx context.Context) error {
	if k.tokenExpiry.After(time.Now()) && k.accessToken != "" {
		// Token is still valid, no need to fetch a new one
		return nil
	}

	tokenURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", k.baseURL, k.realm)

	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", k.clientID)
	data.Set("client_secret", k.clientSecret)

	req, err := http.NewRequestWithContext(ctx, "POST", tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("identity token request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}

	k.accessToken = tokenResp.AccessToken
	k.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)

	return nil
}

// IntrospectToken resolves the caller behind a bearer token so score reports
// can record who requested the score. An inactive token is an authentication error.
func (k *IdentityClient) IntrospectToken(ctx context.Context, token string) (*Principal, error) {
	if err := k.getAccessToken(ctx); err != nil {
		return nil, errors.NewAuthenticationError(err.Error())
	}

	introspectURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token/introspect", k.baseURL, k.realm)

	data := url.Values{}
	data.Set("token", token)
	data.Set("client_id", k.clientID)
	data.Set("client_secret", k.clientSecret)

	req, err := http.NewRequestWithContext(ctx, "POST", introspectURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create introspection request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewExternalServiceError("identity", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("introspection failed with status %d: %s", resp.StatusCode, string(body))
	}

	var principal Principal
	if err := json.NewDecoder(resp.Body).Decode(&principal); err != nil {
		return nil, fmt.Errorf("failed to decode introspection response: %w", err)
	}

	if !principal.Active {
		return nil, errors.NewAuthenticationError("token is not active")
	}

	return &principal, nil
}

// ServiceIdentity returns the identity this service authenticates as. Used for
// the scoredBy attribution when a job carries no caller token.
func (k *IdentityClient) ServiceIdentity(ctx context.Context) (string, error) {
	if err := k.getAccessToken(ctx); err != nil {
		return "", errors.NewAuthenticationError(err.Error())
	}
	return k.clientID, nil
}
