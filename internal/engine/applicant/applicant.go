// internal/engine/applicant/applicant.go

// Package applicant normalizes heterogeneous applicant input into the
// canonical profile consumed by the scoring pipeline. Callers submit fields
// under several historical aliases and unit conventions; everything after
// this package sees one shape only.
package applicant

import (
	"fmt"
	"strings"

	"loan-engine/internal/common/errors"
	"loan-engine/internal/engine/extract"
)

// Profile holds the canonical applicant facts. Immutable after Normalize.
type Profile struct {
	IdentityNumber     string                 `json:"identityNumber"`
	Surname            string                 `json:"surname"`
	Forename           string                 `json:"forename"`
	DateOfBirth        string                 `json:"dateOfBirth,omitempty"`
	Email              string                 `json:"email,omitempty"`
	PhoneNumber        string                 `json:"phoneNumber,omitempty"`
	GrossMonthlyIncome float64                `json:"grossMonthlyIncome"`
	MonthsInCurrentJob float64                `json:"monthsInCurrentJob"`
	ContractType       string                 `json:"contractType"`
	EmploymentCategory string                 `json:"employmentCategory"`
	IsNewBorrower      bool                   `json:"isNewBorrower"`
	DeviceFingerprint  map[string]interface{} `json:"deviceFingerprint,omitempty"`
}

// Alias lists per canonical field, attempted in order. The snake_case form
// is canonical; camelCase variants come from the newer intake API.
var (
	identityNumberAliases = []string{"identity_number", "id_number", "identityNumber", "idNumber"}
	surnameAliases        = []string{"surname", "last_name", "lastName"}
	forenameAliases       = []string{"forename", "first_name", "firstName"}
	dateOfBirthAliases    = []string{"date_of_birth", "dateOfBirth", "dob"}
	emailAliases          = []string{"email", "email_address", "emailAddress"}
	phoneAliases          = []string{"phone_number", "phoneNumber", "mobile_number", "mobileNumber"}

	monthlyIncomeAliases = []string{"gross_monthly_income", "grossMonthlyIncome", "monthly_income", "monthlyIncome"}
	annualIncomeAliases  = []string{"annual_income", "annualIncome", "gross_annual_income", "grossAnnualIncome"}

	monthsInJobAliases = []string{"months_in_current_job", "monthsInCurrentJob", "employment_months", "employmentMonths"}
	yearsInJobAliases  = []string{"years_in_current_job", "yearsInCurrentJob"}

	contractTypeAliases       = []string{"contract_type", "contractType", "employment_contract", "employmentContract"}
	employmentCategoryAliases = []string{"employment_category", "employmentCategory", "occupation_category", "occupationCategory"}
)

// Normalize maps raw applicant input into a Profile. Unit derivation applies
// only when the canonical field is absent: annual income divides to monthly,
// years in job multiplies to months. A missing isNewBorrower flag defaults to
// true because an applicant we cannot match to prior loans must be treated as
// unproven. Returns a validation error when identity_number, surname, or
// forename are missing or empty; this is the only required-field gate before
// the bureau lookup is attempted.
func Normalize(raw map[string]interface{}) (*Profile, error) {
	if raw == nil {
		return nil, errors.NewValidationFailedError("applicant input is empty")
	}

	p := &Profile{
		IdentityNumber:     extract.ExtractString(raw, identityNumberAliases),
		Surname:            extract.ExtractString(raw, surnameAliases),
		Forename:           extract.ExtractString(raw, forenameAliases),
		DateOfBirth:        extract.ExtractString(raw, dateOfBirthAliases),
		Email:              extract.ExtractString(raw, emailAliases),
		PhoneNumber:        extract.ExtractString(raw, phoneAliases),
		ContractType:       strings.ToLower(extract.ExtractString(raw, contractTypeAliases)),
		EmploymentCategory: strings.ToLower(extract.ExtractString(raw, employmentCategoryAliases)),
		IsNewBorrower:      true,
	}

	// Income: prefer canonical monthly, derive from annual only as fallback.
	if monthly := extract.Extract(raw, monthlyIncomeAliases); monthly != nil {
		p.GrossMonthlyIncome = *monthly
	} else if annual := extract.Extract(raw, annualIncomeAliases); annual != nil {
		p.GrossMonthlyIncome = *annual / 12
	}

	// Tenure: prefer canonical months, derive from years only as fallback.
	if months := extract.Extract(raw, monthsInJobAliases); months != nil {
		p.MonthsInCurrentJob = *months
	} else if years := extract.Extract(raw, yearsInJobAliases); years != nil {
		p.MonthsInCurrentJob = *years * 12
	}

	if flag, ok := lookupBool(raw, "is_new_borrower", "isNewBorrower"); ok {
		p.IsNewBorrower = flag
	}

	if fp, ok := lookupMap(raw, "device_fingerprint", "deviceFingerprint"); ok {
		p.DeviceFingerprint = fp
	}

	if missing := missingRequiredFields(p); len(missing) > 0 {
		return nil, errors.NewValidationFailedError(
			fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")),
		)
	}

	return p, nil
}

func missingRequiredFields(p *Profile) []string {
	var missing []string
	if p.IdentityNumber == "" {
		missing = append(missing, "identity_number")
	}
	if p.Surname == "" {
		missing = append(missing, "surname")
	}
	if p.Forename == "" {
		missing = append(missing, "forename")
	}
	return missing
}

func lookupBool(raw map[string]interface{}, keys ...string) (bool, bool) {
	for _, key := range keys {
		if val, exists := raw[key]; exists {
			if b, ok := val.(bool); ok {
				return b, true
			}
		}
	}
	return false, false
}

func lookupMap(raw map[string]interface{}, keys ...string) (map[string]interface{}, bool) {
	for _, key := range keys {
		if val, exists := raw[key]; exists {
			if m, ok := val.(map[string]interface{}); ok {
				return m, true
			}
		}
	}
	return nil, false
}
