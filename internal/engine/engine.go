// internal/engine/engine.go

// Package engine wires the scoring pipeline: normalize the applicant, fetch
// and canonicalize the bureau report, evaluate the factor registry,
// aggregate, derive reasons, and assemble the final report.
package engine

import (
	"context"
	"errors"
	"time"

	stderrors "loan-engine/internal/common/errors"
	"loan-engine/internal/common/logger"
	"loan-engine/internal/common/metrics"
	"loan-engine/internal/engine/aggregate"
	"loan-engine/internal/engine/applicant"
	"loan-engine/internal/engine/bureau"
	"loan-engine/internal/engine/reasons"
	"loan-engine/internal/engine/report"
	"loan-engine/internal/engine/scorer"
)

// Engine runs one scoring request end to end. It is stateless across
// requests; the only shared structure is the immutable scorer registry.
type Engine struct {
	registry      *scorer.Registry
	lookup        bureau.LookupService
	lookupTimeout time.Duration
	logger        logger.Logger
}

// New constructs the engine. The lookup timeout bounds the only blocking
// call in the pipeline.
func New(registry *scorer.Registry, lookup bureau.LookupService, lookupTimeout time.Duration, log logger.Logger) *Engine {
	return &Engine{
		registry:      registry,
		lookup:        lookup,
		lookupTimeout: lookupTimeout,
		logger:        log,
	}
}

// Score runs the pipeline for one applicant. Validation failures reject the
// request before the bureau is ever contacted; lookup transport failures and
// timeouts surface as bureau-unavailable errors rather than degrading to a
// zeroed report.
func (e *Engine) Score(ctx context.Context, applicationID string, rawApplicant map[string]interface{}, scoredBy string) (*report.EngineScoreReport, error) {
	profile, err := applicant.Normalize(rawApplicant)
	if err != nil {
		return nil, err
	}

	payload, err := e.lookupWithTimeout(ctx, profile)
	if err != nil {
		return nil, err
	}

	bureauReport := bureau.Canonicalize(payload)

	results := e.registry.Evaluate(buildInputs(profile, bureauReport))
	breakdown := report.BuildBreakdown(results)

	agg := aggregate.Aggregate(results, e.registry.TotalWeight())
	reasonList := reasons.Generate(profile, bureauReport, breakdown)

	scoreReport := report.Assemble(applicationID, profile, bureauReport, breakdown, agg, reasonList, scoredBy)

	metrics.ScoresComputed.Observe(agg.LoanEngineScoreNormalized)
	e.logger.Info("score computed", map[string]interface{}{
		"applicationId":   applicationID,
		"reportId":        scoreReport.ReportID,
		"normalizedScore": agg.LoanEngineScoreNormalized,
		"reasonCount":     len(reasonList),
	})

	return scoreReport, nil
}

func (e *Engine) lookupWithTimeout(ctx context.Context, profile *applicant.Profile) (map[string]interface{}, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, e.lookupTimeout)
	defer cancel()

	start := time.Now()
	payload, err := e.lookup.Lookup(lookupCtx, profile)
	metrics.BureauLookupDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(lookupCtx.Err(), context.DeadlineExceeded) {
			metrics.BureauLookups.WithLabelValues("timeout").Inc()
			return nil, stderrors.NewBureauTimeoutError()
		}
		metrics.BureauLookups.WithLabelValues("error").Inc()
		return nil, stderrors.NewBureauUnavailableError(err)
	}

	return payload, nil
}

func buildInputs(profile *applicant.Profile, bureauReport *bureau.Report) scorer.Inputs {
	return scorer.Inputs{
		Applicant: scorer.ApplicantFacts{
			GrossMonthlyIncome: profile.GrossMonthlyIncome,
			MonthsInCurrentJob: profile.MonthsInCurrentJob,
			ContractType:       profile.ContractType,
			EmploymentCategory: profile.EmploymentCategory,
			IsNewBorrower:      profile.IsNewBorrower,
			DeviceFingerprint:  profile.DeviceFingerprint,
		},
		Bureau: scorer.BureauFacts{
			PayloadReceived:         bureauReport.Received(),
			CreditScoreValue:        bureauReport.CreditScoreValue,
			TotalBalance:            bureauReport.AccountExposure.TotalBalance,
			TotalLimits:             bureauReport.AccountExposure.TotalLimits,
			RevolvingBalance:        bureauReport.AccountExposure.RevolvingBalance,
			RevolvingLimits:         bureauReport.AccountExposure.RevolvingLimits,
			TotalMonthlyInstallment: bureauReport.AccountExposure.TotalMonthlyInstallment,
			AdverseListingsCount:    bureauReport.AdverseListingsCount,
			EmploymentHistoryCount:  len(bureauReport.EmploymentHistory),
		},
	}
}
