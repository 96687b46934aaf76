package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/username/ledgerfolio/src/logger"
	"github.com/username/ledgerfolio/src/models"
)

const priceSourceFinnhub = "finnhub"

// Structs for Finnhub API responses
type finnhubSearchResponse struct {
	Count  int `json:"count"`
	Result []struct {
		Symbol      string `json:"symbol"`
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"result"`
}

type finnhubProfileResponse struct {
	Name     string `json:"name"`
	Ticker   string `json:"ticker"`
	Currency string `json:"currency"`
}

type finnhubQuoteResponse struct {
	Current       float64 `json:"c"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// priceServiceImpl talks to Finnhub: symbol search, company profile, quote.
type priceServiceImpl struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewPriceService creates the Finnhub client. An empty API key is allowed;
// every lookup then fails per-symbol and holdings get the failed source.
func NewPriceService(baseURL, apiKey string) PriceService {
	return &priceServiceImpl{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// GetQuote resolves the symbol through Finnhub's search, then fetches the
// company profile and the current quote. A zero quote price is treated as a
// failed lookup: Finnhub answers 0 for unknown symbols instead of erroring.
func (s *priceServiceImpl) GetQuote(ctx context.Context, symbol string) (models.Quote, error) {
	if s.apiKey == "" {
		return models.Quote{}, fmt.Errorf("no price API key configured")
	}

	resolved, err := s.searchSymbol(ctx, symbol)
	if err != nil {
		return models.Quote{}, err
	}

	profile, err := s.getProfile(ctx, resolved)
	if err != nil {
		logger.L.Warn("Price fetch: profile lookup failed, continuing without company name", "symbol", resolved, "error", err)
	}

	quote, err := s.getQuote(ctx, resolved)
	if err != nil {
		return models.Quote{}, err
	}
	if quote.Current == 0 {
		return models.Quote{}, fmt.Errorf("no quote available for symbol %s", resolved)
	}

	currency := profile.Currency
	if currency == "" {
		currency = models.CurrencyUSD
	}

	ts := time.Now()
	if quote.Timestamp > 0 {
		ts = time.Unix(quote.Timestamp, 0).UTC()
	}

	return models.Quote{
		Symbol:      resolved,
		CompanyName: profile.Name,
		Price:       quote.Current,
		Currency:    currency,
		Timestamp:   ts,
		Source:      priceSourceFinnhub,
	}, nil
}

// searchSymbol maps an ISIN or partial ticker onto Finnhub's canonical symbol.
func (s *priceServiceImpl) searchSymbol(ctx context.Context, query string) (string, error) {
	var searchData finnhubSearchResponse
	if err := s.getJSON(ctx, "/search", url.Values{"q": {query}}, &searchData); err != nil {
		return "", fmt.Errorf("failed to call symbol search for %q: %w", query, err)
	}
	if searchData.Count == 0 || len(searchData.Result) == 0 {
		return "", fmt.Errorf("no symbol found for %q", query)
	}
	return searchData.Result[0].Symbol, nil
}

func (s *priceServiceImpl) getProfile(ctx context.Context, symbol string) (finnhubProfileResponse, error) {
	var profile finnhubProfileResponse
	if err := s.getJSON(ctx, "/stock/profile2", url.Values{"symbol": {symbol}}, &profile); err != nil {
		return finnhubProfileResponse{}, fmt.Errorf("failed to call profile API for %s: %w", symbol, err)
	}
	return profile, nil
}

func (s *priceServiceImpl) getQuote(ctx context.Context, symbol string) (finnhubQuoteResponse, error) {
	var quote finnhubQuoteResponse
	if err := s.getJSON(ctx, "/quote", url.Values{"symbol": {symbol}}, &quote); err != nil {
		return finnhubQuoteResponse{}, fmt.Errorf("failed to call quote API for %s: %w", symbol, err)
	}
	return quote, nil
}

func (s *priceServiceImpl) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("token", s.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", s.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("price API returned non-OK status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
