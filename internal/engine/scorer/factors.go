// internal/engine/scorer/factors.go
package scorer

// Factor names, also used as breakdown map keys and metric labels.
const (
	FactorCreditScoreBand    = "credit_score_band"
	FactorDebtToIncome       = "debt_to_income"
	FactorCreditUtilization  = "credit_utilization"
	FactorAdverseListings    = "adverse_listings"
	FactorEmploymentTenure   = "employment_tenure"
	FactorIncomeStability    = "income_stability"
	FactorContractType       = "contract_type"
	FactorEmploymentCategory = "employment_category"
	FactorDeviceTrust        = "device_trust"
	FactorRepaymentHistory   = "repayment_history"
	FactorDataRetrieval      = "data_retrieval"
)

// Diagnostic markers shared across scorers.
const (
	DiagnosticBureauDataMissing = "bureau_data_missing"
	DiagnosticNewBorrower       = "new_borrower"
	DiagnosticFactorUnavailable = "factor_unavailable"
)

// ==========================
// Credit score band
// ==========================

// CreditScoreBandScorer maps the bureau credit score onto stepped bands. An
// unextractable score canonicalizes to 0 and lands in the lowest band.
type CreditScoreBandScorer struct{}

func (s CreditScoreBandScorer) FactorName() string { return FactorCreditScoreBand }
func (s CreditScoreBandScorer) MaxWeight() float64 { return 20 }

func (s CreditScoreBandScorer) Score(in Inputs) ContributionResult {
	score := in.Bureau.CreditScoreValue

	contribution := 0.0
	if score >= 750 {
		contribution = 20
	} else if score >= 700 {
		contribution = 16
	} else if score >= 650 {
		contribution = 12
	} else if score >= 620 {
		contribution = 9
	} else if score >= 580 {
		contribution = 6
	} else if score >= 520 {
		contribution = 3
	}

	return ContributionResult{
		FactorName:          s.FactorName(),
		Diagnostic:          "creditScoreValue",
		DiagnosticValue:     diagnosticValue(float64(score)),
		ContributionPercent: clamp(contribution, s.MaxWeight()),
		MaxWeight:           s.MaxWeight(),
	}
}

// ==========================
// Debt-to-income
// ==========================

// DebtToIncomeScorer scores the ratio of monthly installments to gross
// monthly income. Zero or negative income yields a nil dtiPercent and a zero
// contribution, never a division fault.
type DebtToIncomeScorer struct{}

func (s DebtToIncomeScorer) FactorName() string { return FactorDebtToIncome }
func (s DebtToIncomeScorer) MaxWeight() float64 { return 15 }

func (s DebtToIncomeScorer) Score(in Inputs) ContributionResult {
	income := in.Applicant.GrossMonthlyIncome
	if income <= 0 {
		return ContributionResult{
			FactorName:          s.FactorName(),
			Diagnostic:          "dtiPercent",
			DiagnosticValue:     nil,
			ContributionPercent: 0,
			MaxWeight:           s.MaxWeight(),
		}
	}

	dtiPercent := (in.Bureau.TotalMonthlyInstallment / income) * 100

	contribution := 0.0
	if dtiPercent <= 20 {
		contribution = 15
	} else if dtiPercent <= 35 {
		contribution = 11
	} else if dtiPercent <= 50 {
		contribution = 7
	} else if dtiPercent <= 65 {
		contribution = 3
	}

	return ContributionResult{
		FactorName:          s.FactorName(),
		Diagnostic:          "dtiPercent",
		DiagnosticValue:     diagnosticValue(dtiPercent),
		ContributionPercent: clamp(contribution, s.MaxWeight()),
		MaxWeight:           s.MaxWeight(),
	}
}

// ==========================
// Credit utilization
// ==========================

// CreditUtilizationScorer scores a blended utilization ratio weighted toward
// revolving accounts (60% revolving, 40% overall), linearly: full weight at
// zero utilization falling to zero at 100%. With no usable limits the ratio
// is undiagnosable and contributes nothing.
type CreditUtilizationScorer struct{}

func (s CreditUtilizationScorer) FactorName() string { return FactorCreditUtilization }
func (s CreditUtilizationScorer) MaxWeight() float64 { return 12 }

func (s CreditUtilizationScorer) Score(in Inputs) ContributionResult {
	revLimits := in.Bureau.RevolvingLimits
	totLimits := in.Bureau.TotalLimits

	var ratios []float64
	var weights []float64

	if revLimits > 0 {
		ratios = append(ratios, clamp(in.Bureau.RevolvingBalance/revLimits, 1))
		weights = append(weights, 0.6)
	}
	if totLimits > 0 {
		ratios = append(ratios, clamp(in.Bureau.TotalBalance/totLimits, 1))
		weights = append(weights, 0.4)
	}

	if len(ratios) == 0 {
		return ContributionResult{
			FactorName:          s.FactorName(),
			Diagnostic:          "ratioPercent",
			DiagnosticValue:     nil,
			ContributionPercent: 0,
			MaxWeight:           s.MaxWeight(),
		}
	}

	var blended, totalWeight float64
	for i := range ratios {
		blended += ratios[i] * weights[i]
		totalWeight += weights[i]
	}
	blended /= totalWeight

	ratioPercent := blended * 100
	contribution := s.MaxWeight() * (1 - blended)

	return ContributionResult{
		FactorName:          s.FactorName(),
		Diagnostic:          "ratioPercent",
		DiagnosticValue:     diagnosticValue(ratioPercent),
		ContributionPercent: clamp(contribution, s.MaxWeight()),
		MaxWeight:           s.MaxWeight(),
	}
}

// ==========================
// Adverse listings
// ==========================

// AdverseListingsScorer rewards a clean record. It only scores once a bureau
// payload was actually received; a missing payload must not read as a clean
// history.
type AdverseListingsScorer struct{}

func (s AdverseListingsScorer) FactorName() string { return FactorAdverseListings }
func (s AdverseListingsScorer) MaxWeight() float64 { return 10 }

func (s AdverseListingsScorer) Score(in Inputs) ContributionResult {
	if !in.Bureau.PayloadReceived {
		return ContributionResult{
			FactorName:          s.FactorName(),
			Diagnostic:          DiagnosticBureauDataMissing,
			DiagnosticValue:     nil,
			ContributionPercent: 0,
			MaxWeight:           s.MaxWeight(),
		}
	}

	count := in.Bureau.AdverseListingsCount

	contribution := 0.0
	switch {
	case count <= 0:
		contribution = 10
	case count == 1:
		contribution = 4
	case count == 2:
		contribution = 2
	}

	return ContributionResult{
		FactorName:          s.FactorName(),
		Diagnostic:          "adverseListingsCount",
		DiagnosticValue:     diagnosticValue(float64(count)),
		ContributionPercent: clamp(contribution, s.MaxWeight()),
		MaxWeight:           s.MaxWeight(),
	}
}

// ==========================
// Employment tenure
// ==========================

// EmploymentTenureScorer maps months in the current job onto stepped bands.
type EmploymentTenureScorer struct{}

func (s EmploymentTenureScorer) FactorName() string { return FactorEmploymentTenure }
func (s EmploymentTenureScorer) MaxWeight() float64 { return 8 }

func (s EmploymentTenureScorer) Score(in Inputs) ContributionResult {
	months := in.Applicant.MonthsInCurrentJob

	contribution := 0.0
	if months >= 60 {
		contribution = 8
	} else if months >= 36 {
		contribution = 6
	} else if months >= 24 {
		contribution = 5
	} else if months >= 12 {
		contribution = 3
	} else if months >= 6 {
		contribution = 2
	}

	return ContributionResult{
		FactorName:          s.FactorName(),
		Diagnostic:          "monthsInCurrentJob",
		DiagnosticValue:     diagnosticValue(months),
		ContributionPercent: clamp(contribution, s.MaxWeight()),
		MaxWeight:           s.MaxWeight(),
	}
}

// ==========================
// Income stability
// ==========================

// IncomeStabilityScorer combines income presence with employment depth: a
// verifiable income earns the base, a bureau employment history of two or
// more entries and a settled tenure each add on top.
type IncomeStabilityScorer struct{}

func (s IncomeStabilityScorer) FactorName() string { return FactorIncomeStability }
func (s IncomeStabilityScorer) MaxWeight() float64 { return 8 }

func (s IncomeStabilityScorer) Score(in Inputs) ContributionResult {
	income := in.Applicant.GrossMonthlyIncome
	if income <= 0 {
		return ContributionResult{
			FactorName:          s.FactorName(),
			Diagnostic:          "grossMonthlyIncome",
			DiagnosticValue:     nil,
			ContributionPercent: 0,
			MaxWeight:           s.MaxWeight(),
		}
	}

	contribution := 4.0
	if in.Bureau.EmploymentHistoryCount >= 2 {
		contribution += 2
	}
	if in.Applicant.MonthsInCurrentJob >= 24 {
		contribution += 2
	}

	return ContributionResult{
		FactorName:          s.FactorName(),
		Diagnostic:          "grossMonthlyIncome",
		DiagnosticValue:     diagnosticValue(income),
		ContributionPercent: clamp(contribution, s.MaxWeight()),
		MaxWeight:           s.MaxWeight(),
	}
}

// ==========================
// Contract type
// ==========================

// ContractTypeScorer scores the employment contract's permanence. Unknown
// contract types contribute nothing.
type ContractTypeScorer struct{}

func (s ContractTypeScorer) FactorName() string { return FactorContractType }
func (s ContractTypeScorer) MaxWeight() float64 { return 6 }

var contractTypeBands = map[string]float64{
	"permanent":     6,
	"fixed_term":    4,
	"self_employed": 3,
	"part_time":     2,
}

func (s ContractTypeScorer) Score(in Inputs) ContributionResult {
	contribution := contractTypeBands[in.Applicant.ContractType]

	return ContributionResult{
		FactorName:          s.FactorName(),
		Diagnostic:          "contractType",
		DiagnosticValue:     diagnosticValue(contribution),
		ContributionPercent: clamp(contribution, s.MaxWeight()),
		MaxWeight:           s.MaxWeight(),
	}
}

// ==========================
// Employment category
// ==========================

// EmploymentCategoryScorer scores occupational stability. Unknown categories
// contribute nothing.
type EmploymentCategoryScorer struct{}

func (s EmploymentCategoryScorer) FactorName() string { return FactorEmploymentCategory }
func (s EmploymentCategoryScorer) MaxWeight() float64 { return 6 }

var employmentCategoryBands = map[string]float64{
	"professional": 6,
	"skilled":      5,
	"semi_skilled": 3,
	"unskilled":    2,
}

func (s EmploymentCategoryScorer) Score(in Inputs) ContributionResult {
	contribution := employmentCategoryBands[in.Applicant.EmploymentCategory]

	return ContributionResult{
		FactorName:          s.FactorName(),
		Diagnostic:          "employmentCategory",
		DiagnosticValue:     diagnosticValue(contribution),
		ContributionPercent: clamp(contribution, s.MaxWeight()),
		MaxWeight:           s.MaxWeight(),
	}
}

// ==========================
// Device trust
// ==========================

// DeviceTrustScorer counts risk signals in the captured device fingerprint.
// A missing fingerprint means the capture step failed and earns nothing.
type DeviceTrustScorer struct{}

func (s DeviceTrustScorer) FactorName() string { return FactorDeviceTrust }
func (s DeviceTrustScorer) MaxWeight() float64 { return 5 }

func (s DeviceTrustScorer) Score(in Inputs) ContributionResult {
	fp := in.Applicant.DeviceFingerprint
	if len(fp) == 0 {
		return ContributionResult{
			FactorName:          s.FactorName(),
			Diagnostic:          "riskSignalCount",
			DiagnosticValue:     nil,
			ContributionPercent: 0,
			MaxWeight:           s.MaxWeight(),
		}
	}

	signalCount := 0
	if signals, ok := fp["riskSignals"].([]interface{}); ok {
		signalCount = len(signals)
	}

	contribution := 0.0
	switch {
	case signalCount == 0:
		contribution = 5
	case signalCount == 1:
		contribution = 3
	case signalCount == 2:
		contribution = 1
	}

	return ContributionResult{
		FactorName:          s.FactorName(),
		Diagnostic:          "riskSignalCount",
		DiagnosticValue:     diagnosticValue(float64(signalCount)),
		ContributionPercent: clamp(contribution, s.MaxWeight()),
		MaxWeight:           s.MaxWeight(),
	}
}

// ==========================
// Repayment history
// ==========================

// RepaymentHistoryScorer awards returning borrowers in good standing. New
// borrowers have no repayment record with us and earn nothing here.
type RepaymentHistoryScorer struct{}

func (s RepaymentHistoryScorer) FactorName() string { return FactorRepaymentHistory }
func (s RepaymentHistoryScorer) MaxWeight() float64 { return 5 }

func (s RepaymentHistoryScorer) Score(in Inputs) ContributionResult {
	if in.Applicant.IsNewBorrower {
		return ContributionResult{
			FactorName:          s.FactorName(),
			Diagnostic:          DiagnosticNewBorrower,
			DiagnosticValue:     nil,
			ContributionPercent: 0,
			MaxWeight:           s.MaxWeight(),
		}
	}

	return ContributionResult{
		FactorName:          s.FactorName(),
		Diagnostic:          "returningBorrower",
		DiagnosticValue:     diagnosticValue(1),
		ContributionPercent: s.MaxWeight(),
		MaxWeight:           s.MaxWeight(),
	}
}

// ==========================
// Data retrieval confidence
// ==========================

// DataRetrievalScorer is the fixed-value scorer for bureau-call
// completeness: full weight when a payload was received, nothing otherwise.
type DataRetrievalScorer struct{}

func (s DataRetrievalScorer) FactorName() string { return FactorDataRetrieval }
func (s DataRetrievalScorer) MaxWeight() float64 { return 5 }

func (s DataRetrievalScorer) Score(in Inputs) ContributionResult {
	if !in.Bureau.PayloadReceived {
		return ContributionResult{
			FactorName:          s.FactorName(),
			Diagnostic:          DiagnosticBureauDataMissing,
			DiagnosticValue:     nil,
			ContributionPercent: 0,
			MaxWeight:           s.MaxWeight(),
		}
	}

	return ContributionResult{
		FactorName:          s.FactorName(),
		Diagnostic:          "payloadReceived",
		DiagnosticValue:     diagnosticValue(1),
		ContributionPercent: s.MaxWeight(),
		MaxWeight:           s.MaxWeight(),
	}
}
