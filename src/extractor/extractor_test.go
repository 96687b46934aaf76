package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/ledgerfolio/src/models"
)

func buyTx(desc, isin string, amountEUR float64) models.ClassifiedTransaction {
	tx := models.ClassifiedTransaction{Category: models.CategoryBuy}
	tx.OriginalDescription = desc
	tx.ISIN = isin
	tx.AmountEUR = amountEUR
	return tx
}

func TestEnrichBuys(t *testing.T) {
	buys := []models.ClassifiedTransaction{
		buyTx("Compra 10 APPLE INC@150.25 USD (US0378331005)", "US0378331005", -1502.50),
	}
	New().EnrichBuys(buys)

	tx := buys[0]
	assert.Equal(t, 10, tx.Shares)
	assert.Equal(t, 150.25, tx.Price)
	assert.True(t, tx.IsValid)
}

func TestEnrichBuysEuropeanPrice(t *testing.T) {
	buys := []models.ClassifiedTransaction{
		buyTx("Compra 1 Block Inc.@61,82 USD (US8522341036)", "US8522341036", -56.75),
	}
	New().EnrichBuys(buys)

	assert.Equal(t, 1, buys[0].Shares)
	assert.Equal(t, 61.82, buys[0].Price)
	assert.True(t, buys[0].IsValid)
}

func TestEnrichBuysValidity(t *testing.T) {
	tests := []struct {
		name string
		tx   models.ClassifiedTransaction
	}{
		{"no share count", buyTx("Compra APPLE INC@150.25 USD (US0378331005)", "US0378331005", -1502.50)},
		{"missing isin", buyTx("Compra 10 APPLE INC@150.25 USD (US0378331005)", "", -1502.50)},
		{"isin not in description", buyTx("Compra 10 APPLE INC@150.25 USD", "US0378331005", -1502.50)},
		{"non-negative amount", buyTx("Compra 10 APPLE INC@150.25 USD (US0378331005)", "US0378331005", 1502.50)},
	}
	for _, tt := range tests {
		buys := []models.ClassifiedTransaction{tt.tx}
		New().EnrichBuys(buys)
		assert.False(t, buys[0].IsValid, tt.name)
	}
}

func TestEnrichSells(t *testing.T) {
	sells := []models.ClassifiedTransaction{
		{Category: models.CategorySell},
	}
	sells[0].OriginalDescription = "Venta 4 APPLE INC@180.00 USD (US0378331005)"
	New().EnrichSells(sells)

	assert.Equal(t, 4, sells[0].Shares)
	assert.Equal(t, 180.00, sells[0].Price)
	assert.True(t, sells[0].IsValid)

	noCount := []models.ClassifiedTransaction{{Category: models.CategorySell}}
	noCount[0].OriginalDescription = "Venta APPLE INC@180.00 USD"
	New().EnrichSells(noCount)
	assert.False(t, noCount[0].IsValid)
}

// Enrich over a mixed slice must touch the trade rows only.
func TestEnrichDispatchesByCategory(t *testing.T) {
	txs := []models.ClassifiedTransaction{
		buyTx("Compra 10 APPLE INC@150.25 USD (US0378331005)", "US0378331005", -1502.50),
		{Category: models.CategoryDividend},
	}
	txs[1].OriginalDescription = "Dividendo"

	New().Enrich(txs)

	require.True(t, txs[0].IsValid)
	assert.Equal(t, 10, txs[0].Shares)
	assert.Zero(t, txs[1].Shares)
	assert.False(t, txs[1].IsValid)
}
