// internal/engine/applicant/applicant_test.go
package applicant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-engine/internal/common/errors"
)

func validInput() map[string]interface{} {
	return map[string]interface{}{
		"identity_number": "8001015009087",
		"surname":         "Dlamini",
		"forename":        "Thandi",
	}
}

func TestNormalize_AliasResolution(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]interface{}
	}{
		{
			name: "canonical snake_case",
			input: map[string]interface{}{
				"identity_number": "8001015009087",
				"surname":         "Dlamini",
				"forename":        "Thandi",
			},
		},
		{
			name: "legacy id_number alias",
			input: map[string]interface{}{
				"id_number": "8001015009087",
				"surname":   "Dlamini",
				"forename":  "Thandi",
			},
		},
		{
			name: "camelCase intake aliases",
			input: map[string]interface{}{
				"identityNumber": "8001015009087",
				"lastName":       "Dlamini",
				"firstName":      "Thandi",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, "8001015009087", profile.IdentityNumber)
			assert.Equal(t, "Dlamini", profile.Surname)
			assert.Equal(t, "Thandi", profile.Forename)
		})
	}
}

func TestNormalize_IncomeDerivation(t *testing.T) {
	tests := []struct {
		name     string
		input    map[string]interface{}
		expected float64
	}{
		{
			name:     "monthly preferred over annual",
			input:    map[string]interface{}{"gross_monthly_income": 25000.0, "annual_income": 600000.0},
			expected: 25000,
		},
		{
			name:     "annual divided by twelve",
			input:    map[string]interface{}{"annual_income": 360000.0},
			expected: 30000,
		},
		{
			name:     "absent income is zero",
			input:    map[string]interface{}{},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			for k, v := range tt.input {
				input[k] = v
			}

			profile, err := Normalize(input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, profile.GrossMonthlyIncome)
		})
	}
}

func TestNormalize_TenureDerivation(t *testing.T) {
	input := validInput()
	input["years_in_current_job"] = 3.0

	profile, err := Normalize(input)
	require.NoError(t, err)
	assert.Equal(t, 36.0, profile.MonthsInCurrentJob)

	// Canonical months wins over years.
	input["months_in_current_job"] = 7.0
	profile, err = Normalize(input)
	require.NoError(t, err)
	assert.Equal(t, 7.0, profile.MonthsInCurrentJob)
}

func TestNormalize_EmploymentMonthsAlias(t *testing.T) {
	input := validInput()
	input["employment_months"] = 48.0

	profile, err := Normalize(input)
	require.NoError(t, err)
	assert.Equal(t, 48.0, profile.MonthsInCurrentJob)

	// The canonical key still wins over the intake alias.
	input["months_in_current_job"] = 12.0
	profile, err = Normalize(input)
	require.NoError(t, err)
	assert.Equal(t, 12.0, profile.MonthsInCurrentJob)
}

func TestNormalize_NewBorrowerDefaultsTrue(t *testing.T) {
	profile, err := Normalize(validInput())
	require.NoError(t, err)
	assert.True(t, profile.IsNewBorrower)

	input := validInput()
	input["is_new_borrower"] = false
	profile, err = Normalize(input)
	require.NoError(t, err)
	assert.False(t, profile.IsNewBorrower)
}

func TestNormalize_RequiredFieldGate(t *testing.T) {
	tests := []struct {
		name    string
		drop    string
		details string
	}{
		{"missing identity number", "identity_number", "identity_number"},
		{"missing surname", "surname", "surname"},
		{"missing forename", "forename", "forename"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			delete(input, tt.drop)

			profile, err := Normalize(input)
			assert.Nil(t, profile)
			require.Error(t, err)

			stdErr, ok := err.(*errors.StandardError)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
			assert.Contains(t, stdErr.Details, tt.details)
			assert.False(t, stdErr.Retryable)
		})
	}
}

func TestNormalize_EmptyStringsRejected(t *testing.T) {
	input := validInput()
	input["surname"] = "   "

	profile, err := Normalize(input)
	assert.Nil(t, profile)
	require.Error(t, err)
}

func TestNormalize_NilInput(t *testing.T) {
	profile, err := Normalize(nil)
	assert.Nil(t, profile)
	require.Error(t, err)
}

func TestNormalize_EmploymentFieldsLowercased(t *testing.T) {
	input := validInput()
	input["contract_type"] = "Permanent"
	input["employmentCategory"] = "PROFESSIONAL"

	profile, err := Normalize(input)
	require.NoError(t, err)
	assert.Equal(t, "permanent", profile.ContractType)
	assert.Equal(t, "professional", profile.EmploymentCategory)
}

func TestNormalize_DeviceFingerprintCarried(t *testing.T) {
	input := validInput()
	input["device_fingerprint"] = map[string]interface{}{
		"deviceId": "abc-123",
		"riskSignals": []interface{}{
			"emulator_detected",
		},
	}

	profile, err := Normalize(input)
	require.NoError(t, err)
	require.NotNil(t, profile.DeviceFingerprint)
	assert.Equal(t, "abc-123", profile.DeviceFingerprint["deviceId"])
}
