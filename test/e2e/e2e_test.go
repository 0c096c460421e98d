// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-engine/internal/common/errors"
	"loan-engine/internal/common/logger"
	"loan-engine/internal/engine"
	"loan-engine/internal/engine/bureau"
	"loan-engine/internal/engine/scorer"
)

// bureauFixtures maps identity numbers to raw bureau payloads, each in a
// different provider shape the canonicalizer must absorb.
var bureauFixtures = map[string]map[string]interface{}{
	// Nested provider shape: creditScoreData + accountExposure objects.
	"9001015009087": {
		"creditScoreData": map[string]interface{}{"score": 720.0},
		"accountExposure": map[string]interface{}{
			"totalBalance":            45000.0,
			"totalLimits":             100000.0,
			"revolvingBalance":        3000.0,
			"revolvingLimits":         20000.0,
			"totalMonthlyInstallment": 2500.0,
		},
		"adverseListingsCount": 0.0,
		"employmentHistory":    []interface{}{map[string]interface{}{"employer": "Acme"}, map[string]interface{}{"employer": "Initech"}},
	},
	// Flat legacy shape with snake_case adverse listings.
	"8502023344088": {
		"creditScore":            540.0,
		"totalBalance":           90000.0,
		"totalLimits":            100000.0,
		"revolvingBalance":       18000.0,
		"revolvingLimits":        20000.0,
		"adverse_listings_count": 2.0,
	},
	// Thin file: the bureau knows nothing about this applicant.
	"0001010000000": {},
}

func startBureauServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/credit-reports", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var req struct {
			IdentityNumber string `json:"identityNumber"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		payload, ok := bureauFixtures[req.IdentityNumber]
		if !ok {
			payload = map[string]interface{}{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(server.Close)
	return server
}

func newEngine(t *testing.T, baseURL string) *engine.Engine {
	t.Helper()
	registry, err := scorer.NewDefaultRegistry(logger.NewTestLogger(t))
	require.NoError(t, err)
	lookup := bureau.NewHTTPLookup(baseURL, "test-key")
	return engine.New(registry, lookup, 5*time.Second, logger.NewTestLogger(t))
}

func TestPipeline_HealthyApplicant(t *testing.T) {
	server := startBureauServer(t)
	eng := newEngine(t, server.URL)

	result, err := eng.Score(context.Background(), "app-e2e-1", map[string]interface{}{
		"identity_number":     "9001015009087",
		"surname":             "Dlamini",
		"forename":            "Thandi",
		"monthly_income":      42000,
		"employment_months":   48,
		"contract_type":       "permanent",
		"employment_category": "professional",
		"is_new_borrower":     false,
	}, "e2e-suite")
	require.NoError(t, err)

	assert.NotEmpty(t, result.ReportID)
	assert.Equal(t, "app-e2e-1", result.ApplicationID)
	assert.Len(t, result.Breakdown, 11)
	assert.Equal(t, 100.0, result.LoanEngineScoreMax)
	assert.GreaterOrEqual(t, result.LoanEngineScoreNormalized, 0.0)
	assert.LessOrEqual(t, result.LoanEngineScoreNormalized, 100.0)

	// Raw score must equal the sum of per-factor contributions.
	var sum float64
	for _, contribution := range result.Breakdown {
		assert.GreaterOrEqual(t, contribution.ContributionPercent, 0.0)
		assert.LessOrEqual(t, contribution.ContributionPercent, contribution.MaxWeight)
		sum += contribution.ContributionPercent
	}
	assert.InDelta(t, result.LoanEngineScore, sum, 1e-9)

	// A clean, well-scored profile raises no risk flags.
	assert.Empty(t, result.Reasons)
	assert.Equal(t, 100000.0, result.CreditExposure.TotalLimits)
	assert.Equal(t, "e2e-suite", result.ScoredBy)
}

func TestPipeline_RiskyApplicantReasonsOrdered(t *testing.T) {
	server := startBureauServer(t)
	eng := newEngine(t, server.URL)

	result, err := eng.Score(context.Background(), "app-e2e-2", map[string]interface{}{
		"identity_number":   "8502023344088",
		"surname":           "Ndlovu",
		"forename":          "Sipho",
		"annual_income":     240000, // 20k monthly
		"employment_months": 3,
	}, "e2e-suite")
	require.NoError(t, err)

	// Score 540, blended utilization 0.6*90% + 0.4*90% = 90%, tenure 3 months.
	// DTI stays under the 50% flag with no installment data in the payload.
	assert.Equal(t, []string{
		"Low credit score",
		"High credit utilization",
		"Adverse listings present",
		"Short employment tenure",
	}, result.Reasons)
}

func TestPipeline_ThinFileDegrades(t *testing.T) {
	server := startBureauServer(t)
	eng := newEngine(t, server.URL)

	result, err := eng.Score(context.Background(), "app-e2e-3", map[string]interface{}{
		"identity_number": "0001010000000",
		"surname":         "Mokoena",
		"forename":        "Lerato",
	}, "e2e-suite")
	require.NoError(t, err)

	// No bureau facts and no applicant facts: every factor contributes zero
	// but the report still assembles.
	assert.Equal(t, 0.0, result.LoanEngineScore)
	assert.Equal(t, 0.0, result.LoanEngineScoreNormalized)
	assert.Len(t, result.Breakdown, 11)
}

func TestPipeline_ValidationRejectsBeforeLookup(t *testing.T) {
	lookupCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lookupCalls++
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	eng := newEngine(t, server.URL)

	_, err := eng.Score(context.Background(), "app-e2e-4", map[string]interface{}{
		"surname": "Dlamini",
	}, "e2e-suite")
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
	assert.Equal(t, 0, lookupCalls, "invalid applicants never reach the bureau")
}

func TestPipeline_Deterministic(t *testing.T) {
	server := startBureauServer(t)
	eng := newEngine(t, server.URL)

	applicant := map[string]interface{}{
		"identity_number":   "9001015009087",
		"surname":           "Dlamini",
		"forename":          "Thandi",
		"monthly_income":    42000,
		"employment_months": 48,
		"is_new_borrower":   false,
	}

	first, err := eng.Score(context.Background(), "app-e2e-5", applicant, "e2e-suite")
	require.NoError(t, err)
	second, err := eng.Score(context.Background(), "app-e2e-5", applicant, "e2e-suite")
	require.NoError(t, err)

	assert.Equal(t, first.LoanEngineScore, second.LoanEngineScore)
	assert.Equal(t, first.LoanEngineScoreNormalized, second.LoanEngineScoreNormalized)
	assert.Equal(t, first.Reasons, second.Reasons)
	assert.Equal(t, first.Breakdown, second.Breakdown)
}
