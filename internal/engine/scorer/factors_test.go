// internal/engine/scorer/factors_test.go
package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bureauReceived(facts BureauFacts) BureauFacts {
	facts.PayloadReceived = true
	return facts
}

func TestCreditScoreBandScorer_Bands(t *testing.T) {
	tests := []struct {
		score    int
		expected float64
	}{
		{800, 20},
		{750, 20},
		{749, 16},
		{700, 16},
		{650, 12},
		{620, 9},
		{580, 6},
		{520, 3},
		{519, 0},
		{0, 0},
	}

	s := CreditScoreBandScorer{}
	for _, tt := range tests {
		result := s.Score(Inputs{Bureau: BureauFacts{CreditScoreValue: tt.score}})
		assert.Equal(t, tt.expected, result.ContributionPercent, "score %d", tt.score)
		require.NotNil(t, result.DiagnosticValue)
		assert.Equal(t, float64(tt.score), *result.DiagnosticValue)
	}
}

func TestCreditScoreBandScorer_Monotonic(t *testing.T) {
	s := CreditScoreBandScorer{}

	prev := -1.0
	for score := 0; score <= 850; score += 10 {
		result := s.Score(Inputs{Bureau: BureauFacts{CreditScoreValue: score}})
		assert.GreaterOrEqual(t, result.ContributionPercent, prev, "score %d", score)
		prev = result.ContributionPercent
	}
}

func TestDebtToIncomeScorer(t *testing.T) {
	s := DebtToIncomeScorer{}

	tests := []struct {
		name         string
		income       float64
		installment  float64
		expected     float64
		expectNilDTI bool
	}{
		{"low dti full weight", 30000, 5000, 15, false},
		{"moderate dti", 30000, 10000, 11, false},
		{"high dti", 30000, 14000, 7, false},
		{"very high dti", 30000, 18000, 3, false},
		{"extreme dti zero", 30000, 25000, 0, false},
		{"zero income no crash", 0, 8000, 0, true},
		{"negative income no crash", -100, 8000, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := s.Score(Inputs{
				Applicant: ApplicantFacts{GrossMonthlyIncome: tt.income},
				Bureau:    BureauFacts{TotalMonthlyInstallment: tt.installment},
			})

			assert.Equal(t, tt.expected, result.ContributionPercent)
			assert.Equal(t, "dtiPercent", result.Diagnostic)
			if tt.expectNilDTI {
				assert.Nil(t, result.DiagnosticValue)
			} else {
				require.NotNil(t, result.DiagnosticValue)
			}
		})
	}
}

func TestCreditUtilizationScorer(t *testing.T) {
	s := CreditUtilizationScorer{}

	t.Run("zero utilization earns full weight", func(t *testing.T) {
		result := s.Score(Inputs{Bureau: BureauFacts{
			RevolvingLimits: 10000,
			TotalLimits:     50000,
		}})
		assert.Equal(t, 12.0, result.ContributionPercent)
		require.NotNil(t, result.DiagnosticValue)
		assert.Equal(t, 0.0, *result.DiagnosticValue)
	})

	t.Run("full utilization earns nothing", func(t *testing.T) {
		result := s.Score(Inputs{Bureau: BureauFacts{
			RevolvingBalance: 10000,
			RevolvingLimits:  10000,
			TotalBalance:     50000,
			TotalLimits:      50000,
		}})
		assert.Equal(t, 0.0, result.ContributionPercent)
	})

	t.Run("blend weights revolving heavier", func(t *testing.T) {
		// 50% revolving, 0% overall -> blended 0.6*0.5 = 0.3
		result := s.Score(Inputs{Bureau: BureauFacts{
			RevolvingBalance: 5000,
			RevolvingLimits:  10000,
			TotalLimits:      50000,
		}})
		require.NotNil(t, result.DiagnosticValue)
		assert.InDelta(t, 30.0, *result.DiagnosticValue, 0.001)
		assert.InDelta(t, 12*0.7, result.ContributionPercent, 0.001)
	})

	t.Run("no limits means no ratio", func(t *testing.T) {
		result := s.Score(Inputs{Bureau: BureauFacts{RevolvingBalance: 5000}})
		assert.Equal(t, 0.0, result.ContributionPercent)
		assert.Nil(t, result.DiagnosticValue)
	})

	t.Run("balance above limit clamps to 100 percent", func(t *testing.T) {
		result := s.Score(Inputs{Bureau: BureauFacts{
			RevolvingBalance: 20000,
			RevolvingLimits:  10000,
		}})
		assert.Equal(t, 0.0, result.ContributionPercent)
		require.NotNil(t, result.DiagnosticValue)
		assert.Equal(t, 100.0, *result.DiagnosticValue)
	})

	t.Run("monotonic in utilization", func(t *testing.T) {
		prev := 13.0
		for bal := 0.0; bal <= 10000; bal += 1000 {
			result := s.Score(Inputs{Bureau: BureauFacts{
				RevolvingBalance: bal,
				RevolvingLimits:  10000,
			}})
			assert.LessOrEqual(t, result.ContributionPercent, prev)
			prev = result.ContributionPercent
		}
	})
}

func TestAdverseListingsScorer(t *testing.T) {
	s := AdverseListingsScorer{}

	t.Run("gated on payload received", func(t *testing.T) {
		result := s.Score(Inputs{Bureau: BureauFacts{PayloadReceived: false}})
		assert.Equal(t, 0.0, result.ContributionPercent)
		assert.Equal(t, DiagnosticBureauDataMissing, result.Diagnostic)
		assert.Nil(t, result.DiagnosticValue)
	})

	tests := []struct {
		count    int
		expected float64
	}{
		{0, 10},
		{1, 4},
		{2, 2},
		{3, 0},
		{10, 0},
	}

	for _, tt := range tests {
		result := s.Score(Inputs{Bureau: bureauReceived(BureauFacts{AdverseListingsCount: tt.count})})
		assert.Equal(t, tt.expected, result.ContributionPercent, "count %d", tt.count)
	}
}

func TestEmploymentTenureScorer_Bands(t *testing.T) {
	tests := []struct {
		months   float64
		expected float64
	}{
		{72, 8},
		{60, 8},
		{48, 6},
		{24, 5},
		{12, 3},
		{6, 2},
		{5, 0},
		{0, 0},
	}

	s := EmploymentTenureScorer{}
	for _, tt := range tests {
		result := s.Score(Inputs{Applicant: ApplicantFacts{MonthsInCurrentJob: tt.months}})
		assert.Equal(t, tt.expected, result.ContributionPercent, "months %v", tt.months)
	}
}

func TestIncomeStabilityScorer(t *testing.T) {
	s := IncomeStabilityScorer{}

	t.Run("no income no stability", func(t *testing.T) {
		result := s.Score(Inputs{})
		assert.Equal(t, 0.0, result.ContributionPercent)
		assert.Nil(t, result.DiagnosticValue)
	})

	t.Run("income alone earns base", func(t *testing.T) {
		result := s.Score(Inputs{Applicant: ApplicantFacts{GrossMonthlyIncome: 20000}})
		assert.Equal(t, 4.0, result.ContributionPercent)
	})

	t.Run("history and tenure stack to max", func(t *testing.T) {
		result := s.Score(Inputs{
			Applicant: ApplicantFacts{GrossMonthlyIncome: 20000, MonthsInCurrentJob: 36},
			Bureau:    BureauFacts{EmploymentHistoryCount: 3},
		})
		assert.Equal(t, 8.0, result.ContributionPercent)
	})
}

func TestContractTypeScorer(t *testing.T) {
	tests := []struct {
		contract string
		expected float64
	}{
		{"permanent", 6},
		{"fixed_term", 4},
		{"self_employed", 3},
		{"part_time", 2},
		{"gig", 0},
		{"", 0},
	}

	s := ContractTypeScorer{}
	for _, tt := range tests {
		result := s.Score(Inputs{Applicant: ApplicantFacts{ContractType: tt.contract}})
		assert.Equal(t, tt.expected, result.ContributionPercent, "contract %q", tt.contract)
	}
}

func TestEmploymentCategoryScorer(t *testing.T) {
	tests := []struct {
		category string
		expected float64
	}{
		{"professional", 6},
		{"skilled", 5},
		{"semi_skilled", 3},
		{"unskilled", 2},
		{"", 0},
	}

	s := EmploymentCategoryScorer{}
	for _, tt := range tests {
		result := s.Score(Inputs{Applicant: ApplicantFacts{EmploymentCategory: tt.category}})
		assert.Equal(t, tt.expected, result.ContributionPercent, "category %q", tt.category)
	}
}

func TestDeviceTrustScorer(t *testing.T) {
	s := DeviceTrustScorer{}

	t.Run("missing fingerprint earns nothing", func(t *testing.T) {
		result := s.Score(Inputs{})
		assert.Equal(t, 0.0, result.ContributionPercent)
		assert.Nil(t, result.DiagnosticValue)
	})

	signals := func(n int) map[string]interface{} {
		list := make([]interface{}, n)
		for i := range list {
			list[i] = "signal"
		}
		return map[string]interface{}{"deviceId": "abc", "riskSignals": list}
	}

	tests := []struct {
		signals  int
		expected float64
	}{
		{0, 5},
		{1, 3},
		{2, 1},
		{3, 0},
	}

	for _, tt := range tests {
		result := s.Score(Inputs{Applicant: ApplicantFacts{DeviceFingerprint: signals(tt.signals)}})
		assert.Equal(t, tt.expected, result.ContributionPercent, "%d signals", tt.signals)
	}

	t.Run("fingerprint without signal list is clean", func(t *testing.T) {
		result := s.Score(Inputs{Applicant: ApplicantFacts{
			DeviceFingerprint: map[string]interface{}{"deviceId": "abc"},
		}})
		assert.Equal(t, 5.0, result.ContributionPercent)
	})
}

func TestRepaymentHistoryScorer(t *testing.T) {
	s := RepaymentHistoryScorer{}

	result := s.Score(Inputs{Applicant: ApplicantFacts{IsNewBorrower: true}})
	assert.Equal(t, 0.0, result.ContributionPercent)
	assert.Equal(t, DiagnosticNewBorrower, result.Diagnostic)

	result = s.Score(Inputs{Applicant: ApplicantFacts{IsNewBorrower: false}})
	assert.Equal(t, 5.0, result.ContributionPercent)
}

func TestDataRetrievalScorer(t *testing.T) {
	s := DataRetrievalScorer{}

	result := s.Score(Inputs{Bureau: BureauFacts{PayloadReceived: true}})
	assert.Equal(t, 5.0, result.ContributionPercent)

	result = s.Score(Inputs{})
	assert.Equal(t, 0.0, result.ContributionPercent)
	assert.Equal(t, DiagnosticBureauDataMissing, result.Diagnostic)
}

func TestAllScorers_BoundRespected(t *testing.T) {
	scorers := []FactorScorer{
		CreditScoreBandScorer{},
		DebtToIncomeScorer{},
		CreditUtilizationScorer{},
		AdverseListingsScorer{},
		EmploymentTenureScorer{},
		IncomeStabilityScorer{},
		ContractTypeScorer{},
		EmploymentCategoryScorer{},
		DeviceTrustScorer{},
		RepaymentHistoryScorer{},
		DataRetrievalScorer{},
	}

	inputs := []Inputs{
		{},
		{
			Applicant: ApplicantFacts{
				GrossMonthlyIncome: 45000,
				MonthsInCurrentJob: 120,
				ContractType:       "permanent",
				EmploymentCategory: "professional",
				IsNewBorrower:      false,
				DeviceFingerprint:  map[string]interface{}{"deviceId": "x"},
			},
			Bureau: bureauReceived(BureauFacts{
				CreditScoreValue:       820,
				RevolvingLimits:        10000,
				TotalLimits:            100000,
				EmploymentHistoryCount: 4,
			}),
		},
	}

	for _, in := range inputs {
		for _, s := range scorers {
			result := s.Score(in)
			assert.GreaterOrEqual(t, result.ContributionPercent, 0.0, s.FactorName())
			assert.LessOrEqual(t, result.ContributionPercent, s.MaxWeight(), s.FactorName())
			assert.Equal(t, s.FactorName(), result.FactorName)
			assert.Equal(t, s.MaxWeight(), result.MaxWeight)
		}
	}
}

// An applicant with nothing but identity fields and no bureau data must not
// earn a single point from any factor.
func TestAllScorers_AbsentInputsContributeNothing(t *testing.T) {
	scorers := []FactorScorer{
		CreditScoreBandScorer{},
		DebtToIncomeScorer{},
		CreditUtilizationScorer{},
		AdverseListingsScorer{},
		EmploymentTenureScorer{},
		IncomeStabilityScorer{},
		ContractTypeScorer{},
		EmploymentCategoryScorer{},
		DeviceTrustScorer{},
		RepaymentHistoryScorer{},
		DataRetrievalScorer{},
	}

	in := Inputs{Applicant: ApplicantFacts{IsNewBorrower: true}}

	for _, s := range scorers {
		result := s.Score(in)
		assert.Equal(t, 0.0, result.ContributionPercent, s.FactorName())
	}
}
