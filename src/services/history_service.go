package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/username/ledgerfolio/src/logger"
	"github.com/username/ledgerfolio/src/models"
	"github.com/username/ledgerfolio/src/storage"
)

const historyDateLayout = "2006-01-02"

// Structs for the chart API response
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  interface{}   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Currency string `json:"currency"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []chartQuote `json:"quote"`
	} `json:"indicators"`
}

type chartQuote struct {
	Open   []float64 `json:"open"`
	High   []float64 `json:"high"`
	Low    []float64 `json:"low"`
	Close  []float64 `json:"close"`
	Volume []int64   `json:"volume"`
}

// historyServiceImpl serves daily OHLCV series cache-through: reads come from
// the stock_prices table, a missing range is fetched from the chart endpoint
// and upserted before answering.
type historyServiceImpl struct {
	httpClient *http.Client
	store      *storage.Store
	userAgent  string
}

// NewHistoryService creates the historical price client. The cookie jar keeps
// the session cookies the endpoint sets on first contact.
func NewHistoryService(store *storage.Store, userAgent string) HistoryService {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}

	return &historyServiceImpl{
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 20 * time.Second,
		},
		store:     store,
		userAgent: userAgent,
	}
}

// GetDailyBars returns the daily bars for [fromDate, toDate]. The cache is
// considered complete when its newest row reaches toDate; otherwise the whole
// requested range is refetched and upserted, which also heals earlier gaps.
func (s *historyServiceImpl) GetDailyBars(ctx context.Context, symbol, fromDate, toDate string) ([]models.PriceBar, error) {
	from, err := time.Parse(historyDateLayout, fromDate)
	if err != nil {
		return nil, fmt.Errorf("invalid from date %q: %w", fromDate, err)
	}
	to, err := time.Parse(historyDateLayout, toDate)
	if err != nil {
		return nil, fmt.Errorf("invalid to date %q: %w", toDate, err)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("date range inverted: %s after %s", fromDate, toDate)
	}

	latest, err := s.store.LatestPriceDate(symbol)
	if err != nil {
		return nil, err
	}

	if latest < toDate {
		bars, err := s.fetchRange(ctx, symbol, from, to)
		if err != nil {
			// Stale cache beats no answer when the endpoint is down.
			logger.L.Warn("History fetch failed, serving cached bars only", "symbol", symbol, "error", err)
		} else if err := s.store.UpsertPriceBars(bars); err != nil {
			return nil, err
		}
	}

	return s.store.GetPriceBars(symbol, fromDate, toDate)
}

// fetchRange pulls the daily chart for the range. period2 is pushed one day
// past toDate: the chart endpoint treats it as exclusive.
func (s *historyServiceImpl) fetchRange(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error) {
	chartURL := fmt.Sprintf(
		"https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		symbol, from.Unix(), to.AddDate(0, 0, 1).Unix(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, chartURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call chart API for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart API returned non-OK status %d for %s", resp.StatusCode, symbol)
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("failed to decode chart response for %s: %w", symbol, err)
	}
	if chart.Chart.Error != nil || len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart API returned an error or no result for %s", symbol)
	}

	bars, err := barsFromChart(symbol, chart.Chart.Result[0])
	if err != nil {
		return nil, err
	}
	logger.L.Info("Fetched historical bars", "symbol", symbol, "bars", len(bars))
	return bars, nil
}

// barsFromChart maps one chart result to price bars. The endpoint can return
// ragged series on partial trading days, so every array is checked against
// the timestamp count before indexing.
func barsFromChart(symbol string, result chartResult) ([]models.PriceBar, error) {
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote series returned for %s", symbol)
	}
	quote := result.Indicators.Quote[0]
	n := len(result.Timestamp)
	if len(quote.Open) != n || len(quote.High) != n || len(quote.Low) != n ||
		len(quote.Close) != n || len(quote.Volume) != n {
		return nil, fmt.Errorf("mismatched series lengths for %s", symbol)
	}

	bars := make([]models.PriceBar, 0, n)
	for i, ts := range result.Timestamp {
		bars = append(bars, models.PriceBar{
			Symbol: symbol,
			Date:   time.Unix(ts, 0).UTC().Format(historyDateLayout),
			Open:   quote.Open[i],
			High:   quote.High[i],
			Low:    quote.Low[i],
			Close:  quote.Close[i],
			Volume: quote.Volume[i],
		})
	}
	return bars, nil
}
