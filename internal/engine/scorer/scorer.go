// internal/engine/scorer/scorer.go

// Package scorer holds the factor scorers and their registry. Each scorer is
// a pure function computing one bounded risk-factor contribution; the
// registry validates the declared weights at startup and isolates scorer
// faults at evaluation time.
package scorer

// TotalEngineWeight is the declared sum of every registered scorer's
// maximum weight. The registry refuses to start if the registered scorers
// do not add up to exactly this value.
const TotalEngineWeight = 100.0

// Inputs carries the canonical facts every scorer draws from. Scorers must
// tolerate a nil bureau report and zeroed applicant fields.
type Inputs struct {
	Applicant ApplicantFacts
	Bureau    BureauFacts
}

// ApplicantFacts is the applicant-side view consumed by scorers.
type ApplicantFacts struct {
	GrossMonthlyIncome float64
	MonthsInCurrentJob float64
	ContractType       string
	EmploymentCategory string
	IsNewBorrower      bool
	DeviceFingerprint  map[string]interface{}
}

// BureauFacts is the bureau-side view consumed by scorers. PayloadReceived
// distinguishes "bureau returned an empty history" from "no bureau data at
// all"; factors that reward a clean record must not reward absence of data.
type BureauFacts struct {
	PayloadReceived         bool
	CreditScoreValue        int
	TotalBalance            float64
	TotalLimits             float64
	RevolvingBalance        float64
	RevolvingLimits         float64
	TotalMonthlyInstallment float64
	AdverseListingsCount    int
	EmploymentHistoryCount  int
}

// ContributionResult is one factor's bounded output.
// Invariant: 0 <= ContributionPercent <= MaxWeight.
type ContributionResult struct {
	FactorName          string   `json:"factorName"`
	Diagnostic          string   `json:"diagnostic,omitempty"`
	DiagnosticValue     *float64 `json:"diagnosticValue"`
	ContributionPercent float64  `json:"contributionPercent"`
	MaxWeight           float64  `json:"maxWeight"`
}

// FactorScorer computes one factor's contribution. Implementations must be
// pure, monotonic in their risk-relevant input direction, clamp their output
// into [0, MaxWeight], and return a zero contribution with a diagnostic for
// missing or non-finite inputs rather than failing.
type FactorScorer interface {
	FactorName() string
	MaxWeight() float64
	Score(in Inputs) ContributionResult
}

func clamp(value, max float64) float64 {
	if value < 0 {
		return 0
	}
	if value > max {
		return max
	}
	return value
}

func diagnosticValue(v float64) *float64 {
	return &v
}
