package holdings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/ledgerfolio/src/models"
)

type stubPrices struct {
	quotes map[string]models.Quote
	calls  int
}

func (s *stubPrices) GetQuote(ctx context.Context, symbol string) (models.Quote, error) {
	s.calls++
	q, ok := s.quotes[symbol]
	if !ok {
		return models.Quote{}, errors.New("symbol not found")
	}
	return q, nil
}

func buy(isin, product string, shares int, amountEUR float64, valid bool) models.ClassifiedTransaction {
	tx := models.ClassifiedTransaction{
		Category: models.CategoryBuy,
		Shares:   shares,
		IsValid:  valid,
	}
	tx.ISIN = isin
	tx.Product = product
	tx.AmountEUR = amountEUR
	return tx
}

func sell(isin string, shares int) models.ClassifiedTransaction {
	tx := models.ClassifiedTransaction{
		Category: models.CategorySell,
		Shares:   shares,
	}
	tx.ISIN = isin
	return tx
}

func newTestReconciler(prices PriceLookup) *Reconciler {
	return NewReconciler(prices, time.Millisecond)
}

func TestReconcileNetsBuysAgainstSells(t *testing.T) {
	prices := &stubPrices{quotes: map[string]models.Quote{
		"AAPL": {Symbol: "AAPL", CompanyName: "Apple Inc", Price: 180, Currency: "USD", Timestamp: time.Now(), Source: "finnhub"},
	}}

	buys := []models.ClassifiedTransaction{
		buy("US0378331005", "AAPL INC", 6, -900, true),
		buy("US0378331005", "AAPL INC", 4, -600, true),
	}
	sells := []models.ClassifiedTransaction{sell("US0378331005", 4)}

	holdings := newTestReconciler(prices).Reconcile(context.Background(), buys, sells)
	require.Len(t, holdings, 1)

	h := holdings[0]
	assert.Equal(t, "US0378331005", h.ISIN)
	assert.Equal(t, 6, h.SharesHeld)
	assert.Equal(t, 1500.0, h.InvestedEUR)
	assert.Equal(t, 180.0, h.CurrentPrice)
	assert.Equal(t, 1080.0, h.PositionValue)
	assert.Equal(t, "finnhub", h.Source)
	assert.Equal(t, "Apple Inc", h.CompanyName)
}

func TestReconcileDropsClosedPositions(t *testing.T) {
	buys := []models.ClassifiedTransaction{buy("US0378331005", "AAPL INC", 10, -1500, true)}
	sells := []models.ClassifiedTransaction{sell("US0378331005", 10)}

	holdings := newTestReconciler(&stubPrices{}).Reconcile(context.Background(), buys, sells)
	assert.Empty(t, holdings)
}

func TestReconcileIgnoresInvalidBuys(t *testing.T) {
	buys := []models.ClassifiedTransaction{
		buy("US0378331005", "AAPL INC", 10, -1500, false),
		buy("", "NO ISIN CORP", 5, -500, true),
	}

	holdings := newTestReconciler(&stubPrices{}).Reconcile(context.Background(), buys, nil)
	assert.Empty(t, holdings)
}

func TestReconcileFailedLookupDegrades(t *testing.T) {
	buys := []models.ClassifiedTransaction{buy("US0378331005", "AAPL INC", 10, -1500, true)}

	holdings := newTestReconciler(&stubPrices{}).Reconcile(context.Background(), buys, nil)
	require.Len(t, holdings, 1)

	h := holdings[0]
	assert.Equal(t, models.PriceSourceFailed, h.Source)
	assert.Zero(t, h.CurrentPrice)
	assert.Zero(t, h.PositionValue)
	assert.Equal(t, 10, h.SharesHeld)
	assert.Equal(t, 1500.0, h.InvestedEUR)
	assert.NotEmpty(t, h.FetchDate)
}

func TestReconcileNilPriceLookup(t *testing.T) {
	buys := []models.ClassifiedTransaction{buy("US0378331005", "AAPL INC", 10, -1500, true)}

	holdings := NewReconciler(nil, time.Millisecond).Reconcile(context.Background(), buys, nil)
	require.Len(t, holdings, 1)
	assert.Equal(t, models.PriceSourceFailed, holdings[0].Source)
}

func TestReconcileSortsByCompanyName(t *testing.T) {
	buys := []models.ClassifiedTransaction{
		buy("US9999999999", "ZETA CORP", 1, -100, true),
		buy("US1111111111", "ALPHA CORP", 1, -100, true),
	}

	holdings := newTestReconciler(&stubPrices{}).Reconcile(context.Background(), buys, nil)
	require.Len(t, holdings, 2)
	assert.Equal(t, "ALPHA CORP", holdings[0].CompanyName)
	assert.Equal(t, "ZETA CORP", holdings[1].CompanyName)
}

func TestSymbolHeuristic(t *testing.T) {
	prices := &stubPrices{quotes: map[string]models.Quote{}}
	buys := []models.ClassifiedTransaction{buy("US0378331005", "AAPL INC", 1, -100, true)}

	newTestReconciler(prices).Reconcile(context.Background(), buys, nil)
	assert.Equal(t, 1, prices.calls)
}
