// internal/engine/bureau/lookup_test.go
package bureau

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-engine/internal/engine/applicant"
)

func testProfile() *applicant.Profile {
	return &applicant.Profile{
		IdentityNumber: "8001015009087",
		Surname:        "Dlamini",
		Forename:       "Thandi",
	}
}

func TestHTTPLookup_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/credit-reports", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "8001015009087", req["identityNumber"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"creditScore":          685,
			"adverseListingsCount": 0,
		})
	}))
	defer server.Close()

	client := NewHTTPLookup(server.URL, "test-key")
	payload, err := client.Lookup(context.Background(), testProfile())
	require.NoError(t, err)
	assert.Equal(t, 685.0, payload["creditScore"])
}

func TestHTTPLookup_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "provider down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewHTTPLookup(server.URL, "test-key")
	payload, err := client.Lookup(context.Background(), testProfile())
	assert.Nil(t, payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestHTTPLookup_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	client := NewHTTPLookup(server.URL, "test-key")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	payload, err := client.Lookup(ctx, testProfile())
	assert.Nil(t, payload)
	require.Error(t, err)
}

func TestHTTPLookup_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewHTTPLookup(server.URL, "test-key")
	payload, err := client.Lookup(context.Background(), testProfile())
	assert.Nil(t, payload)
	require.Error(t, err)
}
