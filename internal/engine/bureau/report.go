// internal/engine/bureau/report.go

// Package bureau canonicalizes credit bureau responses and owns the lookup
// transport. Providers return differently shaped payloads per version, so
// every canonical field is read through an ordered candidate-path list.
package bureau

import (
	"loan-engine/internal/engine/extract"
)

// AccountExposure summarizes the applicant's account balances and limits.
// Missing sub-fields default to 0.
type AccountExposure struct {
	TotalBalance            float64 `json:"totalBalance"`
	TotalLimits             float64 `json:"totalLimits"`
	RevolvingBalance        float64 `json:"revolvingBalance"`
	RevolvingLimits         float64 `json:"revolvingLimits"`
	TotalMonthlyInstallment float64 `json:"totalMonthlyInstallment"`
}

// Report holds the canonical bureau facts for one scoring request.
// Immutable after Canonicalize; never re-derived mid-request.
type Report struct {
	CreditScoreValue     int                    `json:"creditScoreValue"`
	AccountExposure      AccountExposure        `json:"accountExposure"`
	AdverseListingsCount int                    `json:"adverseListingsCount"`
	EmploymentHistory    []interface{}          `json:"employmentHistory"`
	RawPayload           map[string]interface{} `json:"-"` // retained for audit only
}

// Received reports whether a bureau payload was actually obtained. Scorers
// that would otherwise reward an empty history (no adverse listings, clean
// repayment record) check this to avoid scoring absence of data as merit.
func (r *Report) Received() bool {
	return len(r.RawPayload) > 0
}

// Candidate paths per canonical field, attempted in order.
var (
	creditScorePaths = []string{"extractedCreditScore", "creditScore", "creditScoreData.score"}

	totalBalancePaths       = []string{"accountExposure.totalBalance", "accounts.totalBalance", "totalBalance"}
	totalLimitsPaths        = []string{"accountExposure.totalLimits", "accounts.totalLimits", "totalLimits"}
	revolvingBalancePaths   = []string{"accountExposure.revolvingBalance", "accounts.revolvingBalance", "revolvingBalance"}
	revolvingLimitsPaths    = []string{"accountExposure.revolvingLimits", "accounts.revolvingLimits", "revolvingLimits"}
	monthlyInstallmentPaths = []string{"accountExposure.totalMonthlyInstallment", "accounts.totalMonthlyInstallment", "totalMonthlyInstallment"}

	adverseListingsPaths = []string{"adverseListingsCount", "adverseListings.count", "adverse_listings_count"}

	employmentHistoryPaths = []string{"employmentHistory", "employment.history", "employment_history"}
)

// Canonicalize turns a raw bureau payload into a Report. It never fails: an
// empty or partially shaped payload yields zeroed/empty fields, because a
// degraded report is preferable to aborting the whole request once the
// lookup itself has completed.
func Canonicalize(payload map[string]interface{}) *Report {
	report := &Report{
		RawPayload: payload,
	}

	if payload == nil {
		return report
	}

	score := extract.ExtractOr(payload, creditScorePaths, 0)
	if score > 0 {
		report.CreditScoreValue = int(score)
	}

	report.AccountExposure = AccountExposure{
		TotalBalance:            extract.ExtractOr(payload, totalBalancePaths, 0),
		TotalLimits:             extract.ExtractOr(payload, totalLimitsPaths, 0),
		RevolvingBalance:        extract.ExtractOr(payload, revolvingBalancePaths, 0),
		RevolvingLimits:         extract.ExtractOr(payload, revolvingLimitsPaths, 0),
		TotalMonthlyInstallment: extract.ExtractOr(payload, monthlyInstallmentPaths, 0),
	}

	adverse := extract.ExtractOr(payload, adverseListingsPaths, 0)
	if adverse > 0 {
		report.AdverseListingsCount = int(adverse)
	}

	report.EmploymentHistory = extract.ExtractSlice(payload, employmentHistoryPaths)

	return report
}
