package forecast

import (
	"log"

	"finanalyzer/pkg/core/errs"
	"finanalyzer/pkg/core/valuation"
	"finanalyzer/pkg/models"
)

// Bounds and depth of the reverse-DCF growth search. Twenty bisections over
// [-50%, +500%] resolve the rate to well under a basis point.
const (
	reverseDCFGrowthFloor   = -0.5
	reverseDCFGrowthCeiling = 5.0
	reverseDCFIterations    = 20
)

// CalculateReverseDCF answers "what revenue growth does a given enterprise
// valuation imply?" by bisecting the growth rate, re-running the forecast
// and DCF at each probe. The base-case forecast is restored on the model
// before returning, whatever the search outcome.
func (e *Engine) CalculateReverseDCF(targetValuation float64) (*models.ReverseDCFAnalysis, error) {
	if e.lastYears == 0 || len(e.model.ForecastIncomeStatements) == 0 {
		return nil, errs.Validation("cannot run reverse DCF before a forecast", nil)
	}

	log.Printf("[FORECAST] calculating reverse DCF for target valuation $%.0f", targetValuation)

	origBase := e.base
	origScenario := e.lastScenario

	// Probe with the scenario-adjusted drivers currently in effect so the
	// answer is the growth rate itself, not a pre-multiplier input.
	applied := e.model.Assumptions

	low := reverseDCFGrowthFloor
	high := reverseDCFGrowthCeiling
	required := 0.0
	lowMoved := false
	highMoved := false

	restore := func() error {
		e.base = origBase
		_, err := e.Forecast(e.lastYears, origScenario)
		return err
	}

	for i := 0; i < reverseDCFIterations; i++ {
		mid := (low + high) / 2

		trial := applied
		trial.RevenueGrowthRate = mid
		e.base = trial
		if _, err := e.Forecast(e.lastYears, models.ScenarioBase); err != nil {
			e.base = origBase
			return nil, err
		}

		dcf, err := valuation.ComputeDCF(e.model, e.cfg)
		if err != nil {
			e.base = origBase
			return nil, err
		}

		if dcf.EnterpriseValue < targetValuation {
			low = mid
			lowMoved = true
		} else {
			high = mid
			highMoved = true
		}
		required = mid
	}

	if err := restore(); err != nil {
		return nil, err
	}

	// Implied multiple over the last actual revenue year.
	multiple := 0.0
	if rev := models.Val(e.model.LastHistoricalIncome().Revenue); rev != 0 {
		multiple = targetValuation / rev
	}

	// Breakeven: the first forecast year generating positive operating cash.
	var breakeven *float64
	for i := range e.model.ForecastCashFlows {
		if models.Val(e.model.ForecastCashFlows[i].CashFromOperations) > 0 {
			breakeven = models.Ptr(float64(i + 1))
			break
		}
	}

	requiredMargin := e.model.Assumptions.NetMargin
	if requiredMargin == 0 {
		requiredMargin = 0.1
	}

	return &models.ReverseDCFAnalysis{
		TargetValuation:        targetValuation,
		RequiredGrowthRate:     required,
		RequiredMargin:         requiredMargin,
		YearsToBreakeven:       breakeven,
		ImpliedRevenueMultiple: models.Ptr(multiple),
		Converged:              lowMoved && highMoved,
		Iterations:             reverseDCFIterations,
	}, nil
}
