package market

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"finanalyzer/pkg/core/errs"
)

// PriceHistory is a close-price series with optional computed indicators.
// Indicator slices are aligned to Closes; positions before a full window
// hold NaN.
type PriceHistory struct {
	Ticker     string
	Timestamps []time.Time
	Closes     []float64
	SMA50      []float64
	SMA200     []float64
	RSI        []float64
}

// History fetches daily closes for a range such as "1y" or "6mo". Null
// closes (halts, partial sessions) are dropped with their timestamps.
func (c *Client) History(ctx context.Context, ticker, rng string) (*PriceHistory, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if rng == "" {
		rng = "1y"
	}

	var resp chartResponse
	if err := c.getJSON(ctx, fmt.Sprintf(c.ChartURL, url.PathEscape(ticker), url.QueryEscape(rng)), &resp); err != nil {
		return nil, err
	}
	if resp.Chart.Error != nil {
		return nil, errs.ExternalAPI(fmt.Sprintf("chart API error: %s", resp.Chart.Error.Description), nil)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, errs.ExternalAPI(fmt.Sprintf("no chart data for %s", ticker), nil)
	}

	result := resp.Chart.Result[0]
	h := &PriceHistory{Ticker: ticker}
	if len(result.Indicators.Quote) == 0 {
		return h, nil
	}
	closes := result.Indicators.Quote[0].Close
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		h.Timestamps = append(h.Timestamps, time.Unix(ts, 0).UTC())
		h.Closes = append(h.Closes, *closes[i])
	}
	return h, nil
}

// HistoryWithIndicators fetches closes and attaches SMA(50), SMA(200) and
// RSI(14) series to them.
func (c *Client) HistoryWithIndicators(ctx context.Context, ticker, rng string) (*PriceHistory, error) {
	h, err := c.History(ctx, ticker, rng)
	if err != nil {
		return nil, err
	}
	h.SMA50 = SMA(h.Closes, 50)
	h.SMA200 = SMA(h.Closes, 200)
	h.RSI = RSI(h.Closes, 14)
	return h, nil
}

// SMA is a rolling-window simple moving average.
func SMA(closes []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(closes))
	var sum float64
	for i, v := range closes {
		sum += v
		if i >= window {
			sum -= closes[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// RSI is the relative strength index over simple rolling means of gains and
// losses. A lossless window reads 100; a flat window has no defined index
// and reads NaN.
func RSI(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if period < 1 || len(closes) <= period {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	var gainSum, lossSum float64
	for i := 1; i < len(closes); i++ {
		gainSum += gains[i]
		lossSum += losses[i]
		if i > period {
			gainSum -= gains[i-period]
			lossSum -= losses[i-period]
		}
		if i >= period {
			rs := (gainSum / float64(period)) / (lossSum / float64(period))
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out
}
