package sentiment

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"finanalyzer/pkg/models"
)

// Headline is a scored news item relevant to one company.
type Headline struct {
	Title       string
	Source      string
	Link        string
	PublishedAt time.Time
	Score       float64
}

// NewsFetcher pulls RSS headlines and folds their sentiment into a report
// summary. Feed failures are logged and skipped; news supplements a filing
// score and never blocks an analysis.
type NewsFetcher struct {
	parser   *gofeed.Parser
	analyzer *Analyzer
	sources  []string
	now      func() time.Time
}

// DefaultNewsSources lists public US market feeds. Entries containing %s
// are expanded with the ticker and taken as symbol-specific; the rest are
// filtered client-side against ticker and company name.
func DefaultNewsSources() []string {
	return []string{
		"https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US",
		"https://www.cnbc.com/id/100003114/device/rss/rss.html",
		"https://feeds.content.dowjones.io/public/rss/mw_topstories",
	}
}

// NewNewsFetcher builds a fetcher over the given feeds, falling back to
// DefaultNewsSources when none are given.
func NewNewsFetcher(analyzer *Analyzer, sources ...string) *NewsFetcher {
	if len(sources) == 0 {
		sources = DefaultNewsSources()
	}
	return &NewsFetcher{
		parser:   gofeed.NewParser(),
		analyzer: analyzer,
		sources:  sources,
		now:      time.Now,
	}
}

// FetchHeadlines collects and scores headlines mentioning the company.
// Unreachable feeds are skipped.
func (f *NewsFetcher) FetchHeadlines(ctx context.Context, ticker, company string) []Headline {
	var headlines []Headline
	for _, source := range f.sources {
		feedURL := source
		symbolFeed := strings.Contains(source, "%s")
		if symbolFeed {
			if ticker == "" {
				continue
			}
			feedURL = fmt.Sprintf(source, url.QueryEscape(ticker))
		}
		feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			log.Printf("[SENTIMENT] feed %s unavailable: %v", feedURL, err)
			continue
		}
		for _, item := range feed.Items {
			text := stripHTML(item.Title + " " + item.Description)
			if !symbolFeed && !mentionsCompany(text, ticker, company) {
				continue
			}
			headlines = append(headlines, Headline{
				Title:       item.Title,
				Source:      feed.Title,
				Link:        item.Link,
				PublishedAt: publishedAt(item, f.now()),
				Score:       f.analyzer.Analyze(text).CompositeScore,
			})
		}
	}
	return headlines
}

// Enrich blends news sentiment into a report summary, splitting evenly
// between filing tone and decayed headline tone. With no usable headlines
// the summary passes through unchanged.
func (f *NewsFetcher) Enrich(ctx context.Context, base *models.SentimentSummary, ticker, company string) *models.SentimentSummary {
	if base == nil {
		base = &models.SentimentSummary{DominantSentiment: "neutral"}
	}
	headlines := f.FetchHeadlines(ctx, ticker, company)
	if len(headlines) == 0 {
		return base
	}
	news := WeightedComposite(headlines, f.now())
	blended := (base.CompositeScore + news) / 2

	out := *base
	out.CompositeScore = blended
	out.DominantSentiment = label(blended)
	out.HeadlinesScored = len(headlines)
	log.Printf("[SENTIMENT] blended %d headlines for %s: news=%.3f composite=%.3f",
		len(headlines), ticker, news, blended)
	return &out
}

// WeightedComposite averages headline scores with exponential time decay,
// halving a headline's weight every 24 hours.
func WeightedComposite(headlines []Headline, now time.Time) float64 {
	var weighted, total float64
	for _, h := range headlines {
		age := now.Sub(h.PublishedAt).Hours()
		if age < 0 {
			age = 0
		}
		w := math.Exp2(-age / 24)
		weighted += h.Score * w
		total += w
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// mentionsCompany guards against scoring unrelated headlines. Single-letter
// tickers match too loosely, so those rely on the company name instead.
func mentionsCompany(text, ticker, company string) bool {
	upper := strings.ToUpper(text)
	if len(ticker) >= 2 && strings.Contains(upper, strings.ToUpper(ticker)) {
		return true
	}
	name, _, _ := strings.Cut(strings.ToUpper(strings.TrimSpace(company)), " ")
	return len(name) > 3 && strings.Contains(upper, name)
}

func publishedAt(item *gofeed.Item, fallback time.Time) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return fallback
}

var htmlTags = regexp.MustCompile(`<[^>]*>`)

func stripHTML(s string) string {
	return strings.TrimSpace(htmlTags.ReplaceAllString(s, " "))
}
