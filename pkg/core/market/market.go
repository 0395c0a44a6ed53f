// Package market fetches quotes, price history and technical indicators
// from a Yahoo-style finance API. Market data is a collaborator, not a core
// stage: every failure surfaces as an external-API error and callers degrade
// to whatever the filing itself provided.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"finanalyzer/pkg/core/config"
	"finanalyzer/pkg/core/errs"
	"finanalyzer/pkg/models"
)

// Yahoo-style endpoint templates. Tests point these at a local server.
const (
	defaultQuoteURL  = "https://query1.finance.yahoo.com/v7/finance/quote?symbols=%s"
	defaultSearchURL = "https://query2.finance.yahoo.com/v1/finance/search?q=%s"
	defaultChartURL  = "https://query1.finance.yahoo.com/v8/finance/chart/%s?range=%s&interval=1d"
)

// Provider is the slice of market data the pipeline consumes.
type Provider interface {
	Quote(ctx context.Context, ticker string) (*models.MarketSnapshot, error)
	SearchTicker(ctx context.Context, companyName string) (string, error)
}

// Client talks to the quote, search and chart endpoints.
type Client struct {
	// Endpoint format strings, exported so tests can rewire them.
	QuoteURL  string
	SearchURL string
	ChartURL  string

	httpClient *http.Client
	userAgent  string
	delay      time.Duration
}

// NewClient builds a Client from the API config block.
func NewClient(cfg config.Config) *Client {
	timeout := time.Duration(cfg.API.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		QuoteURL:   defaultQuoteURL,
		SearchURL:  defaultSearchURL,
		ChartURL:   defaultChartURL,
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  cfg.API.UserAgent,
		delay:      time.Duration(cfg.API.RequestDelaySeconds * float64(time.Second)),
	}
}

// --- Wire types ---

type quoteResponse struct {
	QuoteResponse struct {
		Result []quoteResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"quoteResponse"`
}

type quoteResult struct {
	Symbol             string  `json:"symbol"`
	ShortName          string  `json:"shortName"`
	LongName           string  `json:"longName"`
	Currency           string  `json:"currency"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	SharesOutstanding  float64 `json:"sharesOutstanding"`
	MarketCap          float64 `json:"marketCap"`
	Beta               float64 `json:"beta"`
	ForwardPE          float64 `json:"forwardPE"`
	TrailingPE         float64 `json:"trailingPE"`
	DividendYield      float64 `json:"dividendYield"`
}

type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol             string  `json:"symbol"`
		Currency           string  `json:"currency"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- Public methods ---

// SearchTicker resolves a company name to its primary listing symbol.
func (c *Client) SearchTicker(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errs.ExternalAPI("empty company name", nil)
	}
	clean := cleanCompanyName(name)
	log.Printf("[MARKET] searching ticker for %q", clean)

	var resp searchResponse
	if err := c.getJSON(ctx, fmt.Sprintf(c.SearchURL, url.QueryEscape(clean)), &resp); err != nil {
		return "", err
	}
	if len(resp.Quotes) == 0 {
		return "", errs.ExternalAPI(fmt.Sprintf("no ticker found for %q", name), nil)
	}
	symbol := resp.Quotes[0].Symbol
	log.Printf("[MARKET] resolved %q -> %s", name, symbol)
	return symbol, nil
}

// Quote fetches a market snapshot. Fields the upstream omits stay nil; a
// zero quote price falls back to the last chart close, and market cap is
// reconstructed from price and share count when absent.
func (c *Client) Quote(ctx context.Context, ticker string) (*models.MarketSnapshot, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, errs.ExternalAPI("empty ticker", nil)
	}
	log.Printf("[MARKET] fetching market data for %s", ticker)

	var resp quoteResponse
	if err := c.getJSON(ctx, fmt.Sprintf(c.QuoteURL, url.QueryEscape(ticker)), &resp); err != nil {
		return nil, err
	}
	if resp.QuoteResponse.Error != nil {
		return nil, errs.ExternalAPI(fmt.Sprintf("quote API error: %s", resp.QuoteResponse.Error.Description), nil)
	}
	if len(resp.QuoteResponse.Result) == 0 {
		return nil, errs.ExternalAPI(fmt.Sprintf("no quote data for %s", ticker), nil)
	}
	r := resp.QuoteResponse.Result[0]

	price := r.RegularMarketPrice
	if price == 0 {
		// Some deployments block the quote feed; the chart endpoint still
		// serves a last close.
		if h, err := c.History(ctx, ticker, "1d"); err == nil && len(h.Closes) > 0 {
			price = h.Closes[len(h.Closes)-1]
		}
	}

	marketCap := r.MarketCap
	if marketCap == 0 && price != 0 && r.SharesOutstanding != 0 {
		marketCap = price * r.SharesOutstanding
	}
	forwardPE := r.ForwardPE
	if forwardPE == 0 {
		forwardPE = r.TrailingPE
	}
	currency := r.Currency
	if currency == "" {
		currency = "USD"
	}
	longName := r.LongName
	if longName == "" {
		longName = r.ShortName
	}
	if longName == "" {
		longName = ticker
	}

	return &models.MarketSnapshot{
		Ticker:            ticker,
		LongName:          longName,
		CurrentPrice:      optional(price),
		SharesOutstanding: optional(r.SharesOutstanding),
		MarketCap:         optional(marketCap),
		Beta:              optional(r.Beta),
		ForwardPE:         optional(forwardPE),
		DividendYield:     optional(r.DividendYield),
		Currency:          currency,
		FetchedAt:         time.Now().UTC(),
	}, nil
}

// Peers returns comparable tickers from the static sector map.
func (c *Client) Peers(ticker string) []string {
	return config.Peers(ticker)
}

// --- Helpers ---

// cleanCompanyName strips legal suffixes that hurt search relevance.
func cleanCompanyName(name string) string {
	for _, suffix := range []string{"INC.", "CORP.", "CORPORATION"} {
		name = strings.ReplaceAll(name, suffix, "")
	}
	return strings.TrimSpace(name)
}

// optional converts a wire zero to an absent pointer.
func optional(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return models.Ptr(v)
}

// getJSON performs a throttled GET and decodes the JSON body.
func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	if err := c.throttle(ctx); err != nil {
		return errs.ExternalAPI("request cancelled", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errs.ExternalAPI("failed to create request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.ExternalAPI("market API request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errs.ExternalAPI(fmt.Sprintf("market API returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.ExternalAPI("failed to read market API response", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errs.ExternalAPI("failed to parse market API response", err)
	}
	return nil
}

// throttle spaces requests out the way the upstream rate limits expect.
func (c *Client) throttle(ctx context.Context) error {
	if c.delay <= 0 {
		return nil
	}
	t := time.NewTimer(c.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
