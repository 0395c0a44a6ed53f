// Package pipeline chains the analysis stages into a single run: ingest a
// filing, classify the accounting standard, extract statements, build the
// linked model, then layer on market data, sentiment, forecast, advice and
// AI commentary. Document parsing, modeling and forecasting are hard
// dependencies; market and sentiment enrichment degrade to warnings so a
// filing can be analyzed offline.
package pipeline

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"finanalyzer/pkg/core/classify"
	"finanalyzer/pkg/core/config"
	"finanalyzer/pkg/core/extract"
	"finanalyzer/pkg/core/forecast"
	"finanalyzer/pkg/core/ingest"
	"finanalyzer/pkg/core/market"
	"finanalyzer/pkg/core/model"
	"finanalyzer/pkg/core/sentiment"
	"finanalyzer/pkg/core/summarize"
	"finanalyzer/pkg/models"
)

// Options tunes a single pipeline run.
type Options struct {
	// Years is the forecast horizon; <= 0 falls back to the engine default.
	Years int
	// Scenario selects the assumption set ("" means base).
	Scenario models.Scenario
	// Ticker overrides the symbol parsed from the filing.
	Ticker string

	// SkipMarket disables the live quote lookup.
	SkipMarket bool
	// SkipSentiment disables report and headline scoring.
	SkipSentiment bool
	// SkipAdvice stops after the forecast, leaving no recommendation.
	SkipAdvice bool
}

// Result carries everything a run produced, including intermediate artifacts
// callers may want to inspect or persist separately from the model.
type Result struct {
	RunID          uuid.UUID
	Model          *models.LinkedModel
	Statements     *models.FinancialStatements
	Classification classify.Result
	Quote          *models.MarketSnapshot
	Sentiment      *models.SentimentSummary
	Elapsed        time.Duration
}

// Orchestrator wires the stage engines together. The zero value is not
// usable; construct with New and override collaborators through the setters
// when a caller needs a fake provider or custom feeds.
type Orchestrator struct {
	cfg        config.Config
	market     market.Provider
	analyzer   *sentiment.Analyzer
	news       *sentiment.NewsFetcher
	summarizer *summarize.Summarizer
}

// New builds an orchestrator with the default collaborators: the Yahoo-backed
// market client, the lexicon analyzer with the stock news feeds, and a
// summarizer configured from the environment.
func New(cfg config.Config) *Orchestrator {
	analyzer := sentiment.NewAnalyzer()
	return &Orchestrator{
		cfg:        cfg,
		market:     market.NewClient(cfg),
		analyzer:   analyzer,
		news:       sentiment.NewNewsFetcher(analyzer),
		summarizer: summarize.NewFromEnv(),
	}
}

// SetMarketProvider swaps the quote source. Nil disables market lookups
// entirely, same as Options.SkipMarket.
func (o *Orchestrator) SetMarketProvider(p market.Provider) {
	o.market = p
}

// SetNewsFetcher swaps the headline source. Nil keeps report-text sentiment
// but skips news enrichment.
func (o *Orchestrator) SetNewsFetcher(f *sentiment.NewsFetcher) {
	o.news = f
}

// SetSummarizer swaps the AI commentary layer.
func (o *Orchestrator) SetSummarizer(s *summarize.Summarizer) {
	o.summarizer = s
}

// Run executes the full pipeline over the filing at path. Ingest, extraction,
// model build and forecast errors abort the run; market and sentiment
// failures are logged and the run continues without them.
func (o *Orchestrator) Run(ctx context.Context, path string, opts Options) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: uuid.New()}
	log.Printf("[PIPELINE] run %s: %s", result.RunID, path)

	// Stage 1: load and paginate the filing.
	doc, err := ingest.Load(path)
	if err != nil {
		return nil, err
	}
	fullText := doc.FullText()
	log.Printf("[PIPELINE] ingested %d pages (%s)", doc.NumPages(), doc.Format)

	// Stage 2: detect the accounting standard from the raw text.
	result.Classification = classify.Classify(fullText)
	log.Printf("[PIPELINE] standard %s (confidence %.2f)",
		result.Classification.Standard, result.Classification.Confidence)

	// Stage 3: extract the three statements. The extractor assumes GAAP, so
	// the classified standard is written over it when detection succeeded.
	statements := extract.New(o.cfg, doc).Extract(true)
	if result.Classification.Standard != models.StandardUnknown {
		statements.AccountingStandard = result.Classification.Standard
	}
	result.Statements = statements

	// Stage 4: link the statements into a balanced model.
	m, err := model.New(o.cfg, statements).BuildLinkedModel()
	if err != nil {
		return nil, err
	}
	result.Model = m

	// Stage 5: live quote. Soft failure.
	if !opts.SkipMarket && o.market != nil {
		o.fetchMarket(ctx, m, opts.Ticker, result)
	}

	// Stage 6: sentiment from the report text plus recent headlines. Soft
	// failure inside Enrich; the lexicon pass itself cannot fail.
	if !opts.SkipSentiment && o.analyzer != nil {
		o.scoreSentiment(ctx, doc, m, result)
	}

	// Stage 7: forecast, then the recommendation on top of it.
	engine := forecast.New(o.cfg, m)
	m, err = engine.Forecast(opts.Years, opts.Scenario)
	if err != nil {
		return nil, err
	}
	if !opts.SkipAdvice {
		m, err = engine.GenerateInvestmentAdvice(result.Sentiment)
		if err != nil {
			return nil, err
		}
	}
	result.Model = m

	// Stage 8: AI commentary. The summarizer degrades to templates on its
	// own, so no error handling here.
	if o.summarizer != nil {
		m.AISummary = o.summarizer.Summarize(ctx, fullText)
		m.AIRisks = o.summarizer.ExtractRisks(ctx, fullText)
		if !opts.SkipAdvice {
			m.AINarrative = o.summarizer.ExecutiveNarrative(ctx, m, m.AISummary)
		}
	}

	result.Elapsed = time.Since(start)
	log.Printf("[PIPELINE] run %s finished in %s", result.RunID, result.Elapsed.Round(time.Millisecond))
	return result, nil
}

// fetchMarket resolves a ticker and attaches a live quote to the model.
// Resolution order: caller override, ticker parsed from the filing, then a
// name search against the quote provider.
func (o *Orchestrator) fetchMarket(ctx context.Context, m *models.LinkedModel, override string, result *Result) {
	ticker := strings.ToUpper(strings.TrimSpace(override))
	if ticker == "" {
		ticker = m.Ticker
	}
	if ticker == "" && m.CompanyName != "" {
		found, err := o.market.SearchTicker(ctx, m.CompanyName)
		if err != nil {
			log.Printf("[PIPELINE] ticker search for %q failed: %v", m.CompanyName, err)
			return
		}
		ticker = found
	}
	if ticker == "" {
		log.Printf("[PIPELINE] no ticker resolved; skipping market data")
		return
	}

	quote, err := o.market.Quote(ctx, ticker)
	if err != nil {
		log.Printf("[PIPELINE] quote for %s failed: %v", ticker, err)
		return
	}
	m.Ticker = quote.Ticker
	if quote.LongName != "" && (m.CompanyName == "" || m.CompanyName == "Unknown Company") {
		m.CompanyName = quote.LongName
	}
	m.MarketData = quote
	result.Quote = quote
	log.Printf("[PIPELINE] quote %s at %.2f", quote.Ticker, models.Val(quote.CurrentPrice))
}

// scoreSentiment scores the filing text and blends in scored headlines when
// a news fetcher is configured.
func (o *Orchestrator) scoreSentiment(ctx context.Context, doc *ingest.Document, m *models.LinkedModel, result *Result) {
	pages := make([]string, 0, doc.NumPages())
	for i := 1; i <= doc.NumPages(); i++ {
		pages = append(pages, doc.Page(i))
	}
	summary := o.analyzer.AnalyzeReport(pages)
	if o.news != nil {
		summary = o.news.Enrich(ctx, summary, m.Ticker, m.CompanyName)
	}
	m.Sentiment = summary
	result.Sentiment = summary
	log.Printf("[PIPELINE] sentiment %s (%.2f)", summary.DominantSentiment, summary.CompositeScore)
}
