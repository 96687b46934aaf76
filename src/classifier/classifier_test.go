package classifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/ledgerfolio/src/models"
)

func record(desc string) models.LedgerRecord {
	return models.LedgerRecord{
		Date:                time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC),
		Product:             "ACME CORP",
		OriginalDescription: desc,
	}
}

func classifyOne(t *testing.T, desc string) models.ClassifiedTransaction {
	t.Helper()
	out := NewClassifier().Classify([]models.LedgerRecord{record(desc)})
	require.Len(t, out, 1)
	return out[0]
}

func TestClassifyCategories(t *testing.T) {
	tests := []struct {
		desc string
		want string
	}{
		{"Compra 10 APPLE INC@150.25 USD (US0378331005)", models.CategoryBuy},
		{"Venta 4 APPLE INC@180.00 USD (US0378331005)", models.CategorySell},
		{"Dividendo", models.CategoryDividend},
		{"Retención del dividendo", models.CategoryDividend},
		{"Ingreso", models.CategoryDeposit},
		{"flatex Deposit", models.CategoryDeposit},
		{"Retirada de efectivo", models.CategoryWithdrawal},
		{"Comisión por transacción", models.CategoryFee},
		{"Stamp Duty", models.CategoryTax},
		{"Cambio de Divisa - Ingreso (EUR)", models.CategoryCurrencyExchange},
		{"Cash Sweep Transfer", models.CategoryInternalTransfer},
		{"Algo totalmente desconocido", models.CategoryOther},
	}

	for _, tt := range tests {
		tx := classifyOne(t, tt.desc)
		assert.Equal(t, tt.want, tx.Category, tt.desc)
	}
}

// A corporate-action marker on a trade line must win over the plain buy/sell
// keyword, else split bookings inflate invested capital.
func TestClassifyCorporateActionBeforeTrade(t *testing.T) {
	tests := []string{
		"Compra 20 ACME CORP@0 EUR: Stock Split",
		"Venta 10 ACME CORP@0 EUR: Fusión",
		"Compra 5 ACME CORP@0 EUR: Cambio de ISIN",
		"STOCK SPLIT: Compra 30 ACME CORP",
	}
	for _, desc := range tests {
		tx := classifyOne(t, desc)
		assert.Equal(t, models.CategoryCorporateAction, tx.Category, desc)
	}
}

func TestClassifyDenylistRemovesBookkeepingLines(t *testing.T) {
	recs := []models.LedgerRecord{
		record("Flatex Interest Income"),
		record("Comisión de Conectividad 2024"),
		record("ADR/GDR Pass-Through Fee"),
		record("Transferir a su Cuenta de Efectivo en flatex"),
		record("Dividendo"),
	}
	out := NewClassifier().Classify(recs)
	require.Len(t, out, 1)
	assert.Equal(t, models.CategoryDividend, out[0].Category)
}

func TestClassifyDeduplicatesIgnoringTime(t *testing.T) {
	a := record("Dividendo")
	a.Time = "10:00"
	b := record("Dividendo")
	b.Time = "10:05" // same event, re-exported with a shifted time

	out := NewClassifier().Classify([]models.LedgerRecord{a, b})
	assert.Len(t, out, 1)
}

func TestClassifyKeepsDistinctAmounts(t *testing.T) {
	a := record("Dividendo")
	a.Amount, a.AmountCurrency = 10, models.CurrencyEUR
	b := record("Dividendo")
	b.Amount, b.AmountCurrency = 20, models.CurrencyEUR

	out := NewClassifier().Classify([]models.LedgerRecord{a, b})
	assert.Len(t, out, 2)
}

func TestCountryFromISIN(t *testing.T) {
	rec := record("Dividendo")
	rec.ISIN = "US0378331005"
	out := NewClassifier().Classify([]models.LedgerRecord{rec})
	require.Len(t, out, 1)
	assert.Equal(t, "US", out[0].Country)

	out = NewClassifier().Classify([]models.LedgerRecord{record("Dividendo")})
	require.Len(t, out, 1)
	assert.Equal(t, models.CountryNone, out[0].Country)
}

func TestNormalizeDescription(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Compra 10 APPLE INC@150.25 USD (US0378331005)", "compra"},
		{"Venta 4 APPLE INC@180.00 USD", "venta"},
		{"Compra 20 ACME@0 EUR: Stock Split", "compra - stock split"},
		{"flatex Deposit", models.CategoryDeposit},
		{"Ingreso", models.CategoryDeposit},
		{"Transferir a su Cuenta de Efectivo en flatex", "transferencia a cuenta de efectivo"},
		{"Algo Desconocido", "algo desconocido"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeDescription(tt.in), tt.in)
	}
}

func TestPartitionAndBreakdown(t *testing.T) {
	recs := []models.LedgerRecord{
		record("Compra 10 ACME@5 EUR (US0378331005)"),
		record("Venta 5 ACME@6 EUR (US0378331005)"),
		record("Dividendo"),
		record("Ingreso"),
		record("Comisión por transacción"),
		record("Algo desconocido"),
	}
	txs := NewClassifier().Classify(recs)
	require.Len(t, txs, 6)

	p := Partition(txs)
	assert.Len(t, p.Buys, 1)
	assert.Len(t, p.Sells, 1)
	assert.Len(t, p.Dividends, 1)
	assert.Len(t, p.Deposits, 1)
	assert.Len(t, p.Fees, 1)
	assert.Len(t, p.All, 6)

	counts := Breakdown(txs)
	assert.Equal(t, 1, counts[models.CategoryBuy])
	assert.Equal(t, 1, counts[models.CategoryOther])
}
