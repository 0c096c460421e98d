// internal/engine/bureau/report_test.go
package bureau

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize_CreditScoreShapes(t *testing.T) {
	tests := []struct {
		name     string
		payload  map[string]interface{}
		expected int
	}{
		{
			name:     "flat extractedCreditScore",
			payload:  map[string]interface{}{"extractedCreditScore": 712.0},
			expected: 712,
		},
		{
			name:     "flat creditScore",
			payload:  map[string]interface{}{"creditScore": 650.0},
			expected: 650,
		},
		{
			name: "nested creditScoreData.score",
			payload: map[string]interface{}{
				"creditScoreData": map[string]interface{}{"score": 598.0},
			},
			expected: 598,
		},
		{
			name:     "unextractable defaults to zero",
			payload:  map[string]interface{}{"somethingElse": true},
			expected: 0,
		},
		{
			name:     "negative score clamps to zero",
			payload:  map[string]interface{}{"creditScore": -50.0},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Canonicalize(tt.payload)
			assert.Equal(t, tt.expected, report.CreditScoreValue)
		})
	}
}

func TestCanonicalize_AccountExposure(t *testing.T) {
	payload := map[string]interface{}{
		"accountExposure": map[string]interface{}{
			"totalBalance":            120000.0,
			"totalLimits":             200000.0,
			"revolvingBalance":        15000.0,
			"revolvingLimits":         40000.0,
			"totalMonthlyInstallment": 8500.0,
		},
	}

	report := Canonicalize(payload)
	assert.Equal(t, 120000.0, report.AccountExposure.TotalBalance)
	assert.Equal(t, 200000.0, report.AccountExposure.TotalLimits)
	assert.Equal(t, 15000.0, report.AccountExposure.RevolvingBalance)
	assert.Equal(t, 40000.0, report.AccountExposure.RevolvingLimits)
	assert.Equal(t, 8500.0, report.AccountExposure.TotalMonthlyInstallment)
}

func TestCanonicalize_FlatExposureFallback(t *testing.T) {
	payload := map[string]interface{}{
		"totalBalance": 50000.0,
		"totalLimits":  100000.0,
	}

	report := Canonicalize(payload)
	assert.Equal(t, 50000.0, report.AccountExposure.TotalBalance)
	assert.Equal(t, 100000.0, report.AccountExposure.TotalLimits)
	assert.Equal(t, 0.0, report.AccountExposure.RevolvingBalance)
}

func TestCanonicalize_NeverFails(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"nil payload", nil},
		{"empty payload", map[string]interface{}{}},
		{"garbage values", map[string]interface{}{
			"creditScore":     "not-a-number",
			"accountExposure": "unexpected-string",
			"adverseListings": []interface{}{1, 2},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Canonicalize(tt.payload)
			require.NotNil(t, report)
			assert.Equal(t, 0, report.CreditScoreValue)
			assert.Equal(t, AccountExposure{}, report.AccountExposure)
			assert.Equal(t, 0, report.AdverseListingsCount)
			assert.Empty(t, report.EmploymentHistory)
		})
	}
}

func TestCanonicalize_AdverseListings(t *testing.T) {
	report := Canonicalize(map[string]interface{}{"adverseListingsCount": 2.0})
	assert.Equal(t, 2, report.AdverseListingsCount)

	report = Canonicalize(map[string]interface{}{
		"adverseListings": map[string]interface{}{"count": 1.0},
	})
	assert.Equal(t, 1, report.AdverseListingsCount)
}

func TestCanonicalize_EmploymentHistory(t *testing.T) {
	payload := map[string]interface{}{
		"employmentHistory": []interface{}{
			map[string]interface{}{"employer": "Acme", "months": 24.0},
			map[string]interface{}{"employer": "Initech", "months": 12.0},
		},
	}

	report := Canonicalize(payload)
	assert.Len(t, report.EmploymentHistory, 2)
}

func TestReport_Received(t *testing.T) {
	assert.False(t, Canonicalize(nil).Received())
	assert.False(t, Canonicalize(map[string]interface{}{}).Received())
	assert.True(t, Canonicalize(map[string]interface{}{"creditScore": 600.0}).Received())
}
