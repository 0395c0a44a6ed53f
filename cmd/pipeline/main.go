package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"finanalyzer/pkg/core/config"
	"finanalyzer/pkg/core/forecast"
	"finanalyzer/pkg/core/pipeline"
	"finanalyzer/pkg/core/store"
	"finanalyzer/pkg/core/valuation"
	"finanalyzer/pkg/models"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	file := flag.String("file", "", "path to the financial report (text, markdown or HTML)")
	years := flag.Int("years", 5, "forecast horizon in years")
	scenario := flag.String("scenario", "base", "forecast scenario: base, bull or bear")
	ticker := flag.String("ticker", "", "ticker override for market data lookup")
	save := flag.Bool("save", false, "persist the finished analysis to the vault")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		log.Fatal("Error: -file is required.")
	}
	scen := models.Scenario(strings.ToLower(strings.TrimSpace(*scenario)))
	switch scen {
	case "", models.ScenarioBase, models.ScenarioBull, models.ScenarioBear:
	default:
		log.Fatalf("Error: unknown scenario %q (want base, bull or bear).", *scenario)
	}

	cfg, err := config.Load(os.Getenv("ANALYZER_CONFIG"))
	if err != nil {
		log.Printf("Warning: analyzer config not loaded: %v", err)
	}

	ctx := context.Background()
	orch := pipeline.New(cfg)
	res, err := orch.Run(ctx, *file, pipeline.Options{
		Years:    *years,
		Scenario: scen,
		Ticker:   *ticker,
	})
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}
	m := res.Model

	// When the market cap is known, solve for the growth rate it implies.
	// The forecast is re-run base-over-applied-drivers first so the engine
	// has a run to bisect around, then the driver set is restored.
	if q := m.MarketData; q != nil && models.Val(q.MarketCap) > 0 {
		applied := m.Assumptions
		engine := forecast.New(cfg, m)
		if _, ferr := engine.Forecast(m.ForecastYears, models.ScenarioBase); ferr != nil {
			log.Printf("[PIPELINE] reverse DCF skipped: %v", ferr)
		} else if rdcf, rerr := engine.CalculateReverseDCF(models.Val(q.MarketCap)); rerr != nil {
			log.Printf("[PIPELINE] reverse DCF skipped: %v", rerr)
		} else {
			m.ReverseDCF = rdcf
		}
		m.Assumptions = applied
	}

	printReport(res)

	if *save {
		vault := store.VaultFromEnv(ctx)
		id, serr := vault.Save(ctx, m)
		if serr != nil {
			log.Printf("[STORE] save failed: %v", serr)
		} else {
			fmt.Printf("\nSaved analysis %s\n", id)
		}
	}
}

// mil renders an absolute statement value in millions.
func mil(p *float64) float64 { return models.Val(p) / 1e6 }

func printReport(res *pipeline.Result) {
	m := res.Model

	fmt.Println("\n################################################################################")
	fmt.Println("                    FINANCIAL ANALYZER - ANALYST REPORT")
	fmt.Printf("                    Target: %s (FY%d)\n", m.CompanyName, m.BaseYear)
	fmt.Println("################################################################################")

	// [1] PROFILE
	fmt.Println("\n[1] COMPANY PROFILE")
	tick := m.Ticker
	if tick == "" {
		tick = "n/a"
	}
	fmt.Printf("Ticker:                %s\n", tick)
	fmt.Printf("Report type:           %s  (standard: %s, classified at %.0f%% confidence)\n",
		m.ReportType, m.AccountingStandard, res.Classification.Confidence*100)
	fmt.Printf("Historical periods:    %d  |  Forecast horizon: %d years (%s)\n",
		len(m.HistoricalIncomeStatements), m.ForecastYears, m.Assumptions.Scenario)
	if m.IsBalanced {
		fmt.Printf("Balance check:         OK\n")
	} else {
		fmt.Printf("Balance check:         %d issue(s)\n", len(m.ValidationErrors))
		for _, v := range m.ValidationErrors {
			fmt.Printf("  - %s\n", v)
		}
	}

	// [2] FINANCIALS
	fmt.Println("\n[2] CORE FINANCIALS (latest historical year)")
	if is := m.LastHistoricalIncome(); is != nil {
		growth := ""
		if n := len(m.HistoricalRatios); n > 0 && m.HistoricalRatios[n-1].RevenueGrowth != nil {
			growth = fmt.Sprintf("  (Growth: %+.1f%%)", *m.HistoricalRatios[n-1].RevenueGrowth*100)
		}
		fmt.Printf("Revenue:             $ %10.0f M%s\n", mil(is.Revenue), growth)
		fmt.Printf("Gross profit:        $ %10.0f M\n", mil(is.GrossProfit))
		fmt.Printf("Operating income:    $ %10.0f M\n", mil(is.OperatingIncome))
		net := mil(is.NetIncome)
		if rev := mil(is.Revenue); rev != 0 {
			fmt.Printf("Net income:          $ %10.0f M  (margin %.1f%%)\n", net, net/rev*100)
		} else {
			fmt.Printf("Net income:          $ %10.0f M\n", net)
		}
	}
	if bs := m.LastHistoricalBalance(); bs != nil {
		fmt.Printf("Total assets:        $ %10.0f M\n", mil(bs.TotalAssets))
		fmt.Printf("Total liabilities:   $ %10.0f M\n", mil(bs.TotalLiabilities))
		fmt.Printf("Shareholder equity:  $ %10.0f M\n", mil(bs.TotalShareholdersEquity))
	}
	if cf := m.LastHistoricalCashFlow(); cf != nil {
		fcf := mil(cf.CashFromOperations) - mil(cf.CapitalExpenditures)
		fmt.Printf("Operating cash flow: $ %10.0f M  |  Capex: $ %.0f M  |  FCF: $ %.0f M\n",
			mil(cf.CashFromOperations), mil(cf.CapitalExpenditures), fcf)
	}

	// [3] ASSUMPTIONS
	a := m.Assumptions
	fmt.Println("\n[3] FORECAST ASSUMPTIONS")
	fmt.Printf("Revenue growth:        %6.1f%%   Gross margin:     %6.1f%%\n", a.RevenueGrowthRate*100, a.GrossMargin*100)
	fmt.Printf("Operating margin:      %6.1f%%   Tax rate:         %6.1f%%\n", a.OperatingMargin*100, a.TaxRate*100)
	fmt.Printf("Capex / revenue:       %6.1f%%   Payout ratio:     %6.1f%%\n", a.CapexPercentOfRevenue*100, a.DividendPayoutRatio*100)
	fmt.Printf("Risk-free rate:        %6.2f%%   Equity premium:   %6.2f%%   Beta: %.2f\n", a.RiskFreeRate*100, a.EquityRiskPremium*100, a.Beta)
	fmt.Printf("Terminal growth:       %6.2f%%\n", a.TerminalGrowthRate*100)

	// [4] FORECAST TABLE
	fmt.Printf("\n[4] FORECAST (%d-YEAR %s CASE)\n", m.ForecastYears, strings.ToUpper(string(a.Scenario)))
	fmt.Printf("%-8s | %14s | %14s | %14s | %14s\n", "Year", "Revenue (M)", "OpInc (M)", "NetInc (M)", "FCF (M)")
	fmt.Println(strings.Repeat("-", 76))
	for i := range m.ForecastIncomeStatements {
		is := &m.ForecastIncomeStatements[i]
		fcf := 0.0
		if i < len(m.ForecastCashFlows) {
			cf := &m.ForecastCashFlows[i]
			fcf = mil(cf.CashFromOperations) - mil(cf.CapitalExpenditures)
		}
		fmt.Printf("FY%-6d | $ %12.0f | $ %12.0f | $ %12.0f | $ %12.0f\n",
			is.FiscalYear, mil(is.Revenue), mil(is.OperatingIncome), mil(is.NetIncome), fcf)
	}
	fmt.Println(strings.Repeat("-", 76))

	// [5] DCF BRIDGE
	if dcf := m.DCFValuation; dcf != nil {
		fmt.Println("\n[5] DCF VALUATION")
		fmt.Printf("Sum PV of FCF:       $ %10.0f M\n", dcf.SumPVFCF/1e6)
		fmt.Printf("PV terminal value:   $ %10.0f M  (g=%.2f%%, WACC=%.2f%%)\n",
			dcf.PVTerminalValue/1e6, dcf.TerminalGrowthUsed*100, dcf.WACCUsed*100)
		fmt.Printf("Enterprise value:    $ %10.0f M\n", dcf.EnterpriseValue/1e6)
		fmt.Printf("Less net debt:       $ %10.0f M\n", dcf.NetDebt/1e6)
		fmt.Println(strings.Repeat("=", 40))
		fmt.Printf("Equity value:        $ %10.0f M\n", dcf.EquityValue/1e6)
		fmt.Printf("Shares outstanding:    %10.0f M\n", dcf.SharesOutstanding/1e6)
		fmt.Printf("IMPLIED SHARE PRICE: $ %10.2f\n", dcf.ImpliedPricePerShare)
		fmt.Println(strings.Repeat("=", 40))
		for _, w := range dcf.Warnings {
			fmt.Printf("  ! %s\n", w)
		}
	}

	// [6] MARKET & SENTIMENT
	if q := m.MarketData; q != nil {
		fmt.Println("\n[6] MARKET CONTEXT")
		fmt.Printf("Quoted price:        $ %10.2f  (%s)\n", models.Val(q.CurrentPrice), q.Currency)
		if models.Val(q.MarketCap) > 0 {
			fmt.Printf("Market cap:          $ %10.0f M\n", models.Val(q.MarketCap)/1e6)
		}
		if s := m.Sentiment; s != nil {
			fmt.Printf("Report sentiment:      %s (score %+.2f, %d positive / %d negative hits)\n",
				s.DominantSentiment, s.CompositeScore, s.PositiveHits, s.NegativeHits)
		}
		if r := m.ReverseDCF; r != nil {
			fmt.Printf("Market-implied growth: %.1f%% per year to justify $ %.0f M\n",
				r.RequiredGrowthRate*100, r.TargetValuation/1e6)
			fmt.Printf("Model assumption:      %.1f%% per year\n", a.RevenueGrowthRate*100)
			if r.ImpliedRevenueMultiple != nil {
				fmt.Printf("Implied EV / revenue:  %.1fx\n", *r.ImpliedRevenueMultiple)
			}
			if !r.Converged {
				fmt.Println("  ! reverse DCF search did not bracket the target; rate is a bound")
			}
		}
	}

	// [7] CAP TABLE (private-company models only)
	if s := valuation.SummarizeCapTable(m.CapTable); s != nil {
		fmt.Println("\n[7] CAPITALIZATION")
		if s.LastRound != "" {
			fmt.Printf("Last round:            %s at $ %.1f M post-money\n", s.LastRound, s.PostMoneyValuation/1e6)
		}
		fmt.Printf("Total raised:          $ %.1f M\n", s.TotalRaised/1e6)
		fmt.Printf("Fully diluted shares:  %.0f  (implied $ %.2f / share)\n", s.FullyDilutedShares, s.ImpliedSharePrice)
		for _, o := range s.Ownership {
			fmt.Printf("  %-16s %12.0f shares  %5.1f%%  (%.1fx preference)\n", o.Class, o.Shares, o.Percent*100, o.Preference)
		}
	}

	// [8] RECOMMENDATION
	fmt.Println("\n[8] RECOMMENDATION")
	fmt.Printf("Rating:                %s\n", m.Recommendation)
	if m.TargetPrice != nil {
		fmt.Printf("Target price:        $ %10.2f\n", *m.TargetPrice)
	}
	if m.UpsidePotential != nil {
		fmt.Printf("Upside potential:      %+.1f%%\n", *m.UpsidePotential*100)
	}
	if m.InvestmentThesis != "" {
		fmt.Printf("Thesis:                %s\n", m.InvestmentThesis)
	}
	if m.AISummary != "" {
		fmt.Printf("\nSummary:\n%s\n", m.AISummary)
	}
	if len(m.AIRisks) > 0 {
		fmt.Println("\nKey risks:")
		for _, r := range m.AIRisks {
			fmt.Printf("  - %s\n", r)
		}
	}
	if m.AINarrative != "" {
		fmt.Printf("\nNarrative:\n%s\n", m.AINarrative)
	}

	fmt.Printf("\n[Done] Analysis complete in %s (run %s).\n",
		res.Elapsed.Round(time.Millisecond), res.RunID)
}
