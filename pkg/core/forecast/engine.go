// Package forecast projects a linked model forward: driver-based three-
// statement projection under a scenario, investment advice scored from the
// forecast and a DCF, and a reverse DCF that solves for the growth rate a
// target valuation implies.
package forecast

import (
	"fmt"
	"log"
	"math"
	"time"

	"finanalyzer/pkg/core/calc"
	"finanalyzer/pkg/core/config"
	"finanalyzer/pkg/core/errs"
	"finanalyzer/pkg/models"
)

// Engine drives forecasting for one linked model. It remembers the
// scenario-free driver set so repeated runs never compound scenario
// multipliers, and the last run's shape so the reverse DCF can re-run it.
type Engine struct {
	cfg   config.Config
	model *models.LinkedModel

	// base is the driver set before any scenario adjustment.
	base models.ForecastAssumptions

	lastYears    int
	lastScenario models.Scenario
}

// New builds a forecast engine over a linked model, seeding the base driver
// set from the model's current assumptions.
func New(cfg config.Config, m *models.LinkedModel) *Engine {
	return &Engine{cfg: cfg, model: m, base: m.Assumptions}
}

// SetAssumptions replaces the scenario-free driver set used by later runs.
func (e *Engine) SetAssumptions(a models.ForecastAssumptions) {
	e.base = a
}

// ApplyScenario returns a copy of the driver set adjusted for the scenario.
// Bull stretches growth and margins (margins capped at the configured
// ceilings), bear compresses them, base passes through unchanged. The input
// is never mutated, so applying a scenario twice does not compound.
func ApplyScenario(a models.ForecastAssumptions, scenario models.Scenario, cfg config.Config) models.ForecastAssumptions {
	switch scenario {
	case models.ScenarioBull:
		a.RevenueGrowthRate *= 1.5
		a.GrossMargin = math.Min(a.GrossMargin*1.1, cfg.Thresholds.MaxGrossMargin)
		a.OperatingMargin = math.Min(a.OperatingMargin*1.1, cfg.Thresholds.MaxOperatingMargin)
	case models.ScenarioBear:
		a.RevenueGrowthRate *= 0.5
		a.GrossMargin *= 0.9
		a.OperatingMargin *= 0.85
	}
	a.Scenario = scenario
	return a
}

// Forecast projects the model years into the future under the scenario and
// stores the result on the model, replacing any previous forecast. Each year
// chains off the one before it; year one seeds from the last historical
// period.
func (e *Engine) Forecast(years int, scenario models.Scenario) (*models.LinkedModel, error) {
	if years <= 0 {
		years = 5
	}
	if scenario == "" {
		scenario = models.ScenarioBase
	}

	log.Printf("[FORECAST] generating %d-year %s forecast for %s", years, scenario, e.model.CompanyName)

	if len(e.model.HistoricalIncomeStatements) == 0 {
		return nil, errs.Validation("cannot forecast: no historical income statements available", nil)
	}
	if len(e.model.HistoricalBalanceSheets) == 0 {
		return nil, errs.Validation("cannot forecast: no historical balance sheets available", nil)
	}
	if len(e.model.HistoricalCashFlows) == 0 {
		return nil, errs.Validation("cannot forecast: no historical cash flow statements available", nil)
	}

	e.model.Assumptions = ApplyScenario(e.base, scenario, e.cfg)
	e.model.ClearForecast()

	baseIncome := e.model.LastHistoricalIncome()
	baseBS := e.model.LastHistoricalBalance()

	for year := 1; year <= years; year++ {
		prevIncome := baseIncome
		prevBS := baseBS
		if year > 1 {
			prevIncome = &e.model.ForecastIncomeStatements[year-2]
			prevBS = &e.model.ForecastBalanceSheets[year-2]
		}

		income := e.projectIncomeStatement(prevIncome)
		e.model.ForecastIncomeStatements = append(e.model.ForecastIncomeStatements, income)

		bs := e.projectBalanceSheet(prevBS, &income)
		e.model.ForecastBalanceSheets = append(e.model.ForecastBalanceSheets, bs)

		cf := e.projectCashFlow(&income, prevBS, &bs)
		e.model.ForecastCashFlows = append(e.model.ForecastCashFlows, cf)
	}

	e.model.ForecastRatios = calc.RatioSeries(e.model.ForecastIncomeStatements, e.model.ForecastBalanceSheets)
	e.model.ForecastYears = years
	e.model.UpdatedAt = time.Now().UTC()

	e.lastYears = years
	e.lastScenario = scenario

	log.Printf("[FORECAST] forecast complete for %d years", years)
	return e.model, nil
}

// nextPeriod advances an ISO period end by one year. Malformed dates fall
// back to calendar years derived from the fiscal year.
func nextPeriod(periodEnd string, fiscalYear int) (start, end string) {
	if t, err := time.Parse("2006-01-02", periodEnd); err == nil {
		next := t.AddDate(1, 0, 0)
		return next.AddDate(-1, 0, 0).AddDate(0, 0, 1).Format("2006-01-02"), next.Format("2006-01-02")
	}
	return fmt.Sprintf("%d-01-01", fiscalYear+1), fmt.Sprintf("%d-12-31", fiscalYear+1)
}
