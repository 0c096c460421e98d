// internal/engine/bureau/lookup.go
package bureau

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	httpclient "loan-engine/internal/common/http"
	"loan-engine/internal/engine/applicant"
)

// LookupService retrieves the raw bureau payload for an applicant. The
// payload is opaque at this layer; Canonicalize owns its interpretation.
// Implementations must respect the caller's context deadline.
type LookupService interface {
	Lookup(ctx context.Context, profile *applicant.Profile) (map[string]interface{}, error)
}

// HTTPLookup calls the bureau provider's credit-report endpoint.
type HTTPLookup struct {
	baseURL    string
	apiKey     string
	httpClient *httpclient.Client
}

// NewHTTPLookup creates a lookup client for the given provider endpoint.
// The client timeout is a safety net; per-request deadlines come from the
// caller's context.
func NewHTTPLookup(baseURL, apiKey string) *HTTPLookup {
	return &HTTPLookup{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpclient.NewClient(30 * time.Second),
	}
}

type lookupRequest struct {
	IdentityNumber string `json:"identityNumber"`
	Surname        string `json:"surname"`
	Forename       string `json:"forename"`
	DateOfBirth    string `json:"dateOfBirth,omitempty"`
}

// Lookup posts the applicant's identity fields to the provider and returns
// the decoded payload as-is.
func (c *HTTPLookup) Lookup(ctx context.Context, profile *applicant.Profile) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/v1/credit-reports", c.baseURL)

	jsonData, err := json.Marshal(lookupRequest{
		IdentityNumber: profile.IdentityNumber,
		Surname:        profile.Surname,
		Forename:       profile.Forename,
		DateOfBirth:    profile.DateOfBirth,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lookup request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bureau lookup failed (status %d): %s", resp.StatusCode, string(body))
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode bureau payload: %w", err)
	}

	return payload, nil
}
