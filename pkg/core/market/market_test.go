package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finanalyzer/pkg/core/config"
	"finanalyzer/pkg/core/errs"
	"finanalyzer/pkg/models"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.API.RequestDelaySeconds = 0
	c := NewClient(cfg)
	c.QuoteURL = srv.URL + "/quote?symbols=%s"
	c.SearchURL = srv.URL + "/search?q=%s"
	c.ChartURL = srv.URL + "/chart/%s?range=%s"
	return c
}

func TestQuoteParsesSnapshot(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quote", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbols"); got != "AAPL" {
			t.Errorf("symbols = %q, want AAPL", got)
		}
		fmt.Fprint(w, `{"quoteResponse":{"result":[{
			"symbol":"AAPL","longName":"Apple Inc.","currency":"USD",
			"regularMarketPrice":187.5,"sharesOutstanding":15600000000,
			"beta":1.29,"trailingPE":28.4,"dividendYield":0.0044}]}}`)
	})
	c := testClient(t, mux)

	snap, err := c.Quote(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if snap.Ticker != "AAPL" || snap.LongName != "Apple Inc." {
		t.Errorf("identity = %s/%s", snap.Ticker, snap.LongName)
	}
	if models.Val(snap.CurrentPrice) != 187.5 {
		t.Errorf("price = %v, want 187.5", models.Val(snap.CurrentPrice))
	}
	if models.Val(snap.SharesOutstanding) != 15_600_000_000 {
		t.Errorf("shares = %v", models.Val(snap.SharesOutstanding))
	}
	// No marketCap in the payload: reconstructed from price and shares.
	if got := models.Val(snap.MarketCap); got != 187.5*15_600_000_000 {
		t.Errorf("market cap = %v, want %v", got, 187.5*15_600_000_000)
	}
	// No forwardPE: trailing fills in.
	if models.Val(snap.ForwardPE) != 28.4 {
		t.Errorf("forward PE = %v, want 28.4", models.Val(snap.ForwardPE))
	}
	if models.Val(snap.Beta) != 1.29 {
		t.Errorf("beta = %v, want 1.29", models.Val(snap.Beta))
	}
	if models.Val(snap.DividendYield) != 0.0044 {
		t.Errorf("dividend yield = %v", models.Val(snap.DividendYield))
	}
	if snap.Currency != "USD" {
		t.Errorf("currency = %q", snap.Currency)
	}
	if snap.FetchedAt.IsZero() {
		t.Error("fetched-at not stamped")
	}
}

func TestQuoteFallsBackToChartClose(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quote", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteResponse":{"result":[{"symbol":"XYZ","shortName":"XYZ Holdings"}]}}`)
	})
	mux.HandleFunc("/chart/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/XYZ") {
			t.Errorf("chart path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"chart":{"result":[{
			"meta":{"symbol":"XYZ","regularMarketPrice":11.5},
			"timestamp":[1700000000,1700086400],
			"indicators":{"quote":[{"close":[10.0,11.5]}]}}]}}`)
	})
	c := testClient(t, mux)

	snap, err := c.Quote(context.Background(), "XYZ")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if models.Val(snap.CurrentPrice) != 11.5 {
		t.Errorf("price = %v, want last chart close 11.5", models.Val(snap.CurrentPrice))
	}
	if snap.MarketCap != nil {
		t.Errorf("market cap = %v, want nil without shares", *snap.MarketCap)
	}
	if snap.LongName != "XYZ Holdings" {
		t.Errorf("long name = %q", snap.LongName)
	}
	if snap.Currency != "USD" {
		t.Errorf("currency default = %q", snap.Currency)
	}
}

func TestQuoteReportsUpstreamError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quote", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteResponse":{"result":[],"error":{"code":"Not Found","description":"No data found"}}}`)
	})
	c := testClient(t, mux)

	_, err := c.Quote(context.Background(), "ZZZZ")
	if err == nil {
		t.Fatal("expected upstream error")
	}
	if !errs.IsKind(err, errs.KindExternalAPI) {
		t.Errorf("error kind = %v, want external API", err)
	}
	if !strings.Contains(err.Error(), "No data found") {
		t.Errorf("error = %v, want upstream description", err)
	}
}

func TestQuoteReportsHTTPStatus(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := c.Quote(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected status error")
	}
	if !strings.Contains(err.Error(), "status 429") {
		t.Errorf("error = %v, want status 429", err)
	}
}

func TestSearchTickerStripsLegalSuffix(t *testing.T) {
	var gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		fmt.Fprint(w, `{"quotes":[{"symbol":"NVDA","shortname":"NVIDIA Corp","quoteType":"EQUITY"}]}`)
	})
	c := testClient(t, mux)

	symbol, err := c.SearchTicker(context.Background(), "NVIDIA CORPORATION")
	if err != nil {
		t.Fatalf("SearchTicker: %v", err)
	}
	if symbol != "NVDA" {
		t.Errorf("symbol = %q, want NVDA", symbol)
	}
	if gotQuery != "NVIDIA" {
		t.Errorf("query = %q, want NVIDIA", gotQuery)
	}
}

func TestSearchTickerNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quotes":[]}`)
	})
	c := testClient(t, mux)

	_, err := c.SearchTicker(context.Background(), "No Such Company")
	if err == nil {
		t.Fatal("expected not-found error")
	}
	if !errs.IsKind(err, errs.KindExternalAPI) {
		t.Errorf("error kind = %v, want external API", err)
	}
}

func TestHistoryDropsNullCloses(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chart/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{
			"timestamp":[1700000000,1700086400,1700172800],
			"indicators":{"quote":[{"close":[10.0,null,12.0]}]}}]}}`)
	})
	c := testClient(t, mux)

	h, err := c.History(context.Background(), "XYZ", "1mo")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(h.Closes) != 2 || len(h.Timestamps) != 2 {
		t.Fatalf("series lengths = %d/%d, want 2/2", len(h.Closes), len(h.Timestamps))
	}
	if h.Closes[0] != 10.0 || h.Closes[1] != 12.0 {
		t.Errorf("closes = %v", h.Closes)
	}
}

func TestPeersFromSectorMap(t *testing.T) {
	c := NewClient(config.Default())

	peers := c.Peers("aapl")
	if len(peers) != 4 || peers[0] != "MSFT" {
		t.Errorf("peers = %v", peers)
	}
	if got := c.Peers("ZZZZ"); got != nil {
		t.Errorf("unmapped peers = %v, want nil", got)
	}
}
