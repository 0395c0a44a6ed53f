package forecast

import (
	"fmt"
	"log"

	"finanalyzer/pkg/core/calc"
	"finanalyzer/pkg/core/errs"
	"finanalyzer/pkg/core/valuation"
	"finanalyzer/pkg/models"
)

// GenerateInvestmentAdvice runs the valuation and scores a BUY/HOLD/SELL
// call from four signals: forecast revenue CAGR, average forecast net
// margin, sentiment composite, and the upside of the DCF-implied price over
// the market quote. The DCF, recommendation, target price, upside and thesis
// are stored on the model. A nil sentiment falls back to the summary already
// attached to the model, then to neutral.
func (e *Engine) GenerateInvestmentAdvice(sentiment *models.SentimentSummary) (*models.LinkedModel, error) {
	log.Printf("[FORECAST] generating investment recommendation for %s", e.model.CompanyName)

	if len(e.model.HistoricalIncomeStatements) == 0 {
		return nil, errs.Validation("cannot generate advice: no historical income statements", nil)
	}
	if len(e.model.ForecastIncomeStatements) == 0 {
		return nil, errs.Validation("cannot generate advice: no forecast available, run Forecast first", nil)
	}

	// 1. Quantitative signals from the forecast.
	histRev := models.Val(e.model.LastHistoricalIncome().Revenue)
	fcstRev := models.Val(e.model.ForecastIncomeStatements[len(e.model.ForecastIncomeStatements)-1].Revenue)
	revGrowth := calc.RevenueCAGR(histRev, fcstRev, e.model.ForecastYears)
	avgNetMargin := calc.AverageNetMargin(e.model.ForecastIncomeStatements)

	// 2. Intrinsic value.
	dcf, err := valuation.ComputeDCF(e.model, e.cfg)
	if err != nil {
		return nil, err
	}
	e.model.DCFValuation = dcf
	targetPrice := dcf.ImpliedPricePerShare

	// 3. Sentiment weighting.
	if sentiment == nil {
		sentiment = e.model.Sentiment
	}
	sentimentScore := 0.0
	if sentiment != nil {
		sentimentScore = sentiment.CompositeScore
	}

	// 4. Point scoring.
	sc := e.cfg.Scoring
	score := 0

	if revGrowth > sc.HighGrowthThreshold {
		score += 3
	} else if revGrowth > sc.MediumGrowthThreshold {
		score += 2
	} else if revGrowth > sc.LowGrowthThreshold {
		score += 1
	}

	if avgNetMargin > sc.HighMarginThreshold {
		score += 3
	} else if avgNetMargin > sc.MediumMarginThreshold {
		score += 2
	} else if avgNetMargin > sc.LowMarginThreshold {
		score += 1
	}

	if sentimentScore > 0.2 {
		score += 2
	} else if sentimentScore > 0.05 {
		score += 1
	} else if sentimentScore < -0.2 {
		score -= 2
	} else if sentimentScore < -0.05 {
		score -= 1
	}

	// Valuation upside counts only when a market quote is known.
	upside := 0.0
	hasPrice := e.model.MarketData != nil &&
		e.model.MarketData.CurrentPrice != nil &&
		*e.model.MarketData.CurrentPrice != 0
	if hasPrice {
		upside = targetPrice / *e.model.MarketData.CurrentPrice - 1
		if upside > sc.HighUpsideThreshold {
			score += 3
		} else if upside > sc.MediumUpsideThreshold {
			score += 2
		} else if upside > sc.LowUpsideThreshold {
			score += 1
		} else if upside < -0.3 {
			score -= 3
		} else if upside < -0.15 {
			score -= 2
		} else if upside < -0.05 {
			score -= 1
		}
	}

	// 5. Final call.
	var thesis string
	switch {
	case score >= sc.BuyThreshold:
		e.model.Recommendation = models.RecommendationBuy
		thesis = fmt.Sprintf("Strong fundamentals (Growth: %.1f%%) combined with significant intrinsic value upside (%.1f%%).",
			revGrowth*100, upside*100)
	case score >= sc.HoldThreshold:
		e.model.Recommendation = models.RecommendationHold
		thesis = "Stable performance with fair valuation. Intrinsic value is close to current market price."
	default:
		e.model.Recommendation = models.RecommendationSell
		thesis = "Valuation looks stretched relative to growth potential or intrinsic cash flow generation."
	}

	e.model.TargetPrice = models.Ptr(targetPrice)
	if hasPrice {
		e.model.UpsidePotential = models.Ptr(upside)
	} else {
		e.model.UpsidePotential = nil
	}
	e.model.InvestmentThesis = thesis

	log.Printf("[FORECAST] recommendation=%s score=%d target=$%.2f", e.model.Recommendation, score, targetPrice)
	return e.model, nil
}
