package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/username/ledgerfolio/src/logger"
	"github.com/username/ledgerfolio/src/models"
	"github.com/username/ledgerfolio/src/rates"
	"github.com/username/ledgerfolio/src/security/validation"
	"github.com/username/ledgerfolio/src/utils"
)

// Column headers of the broker's cash-account export. The amount and balance
// each span two columns: a headed currency column ("Variación" / "Saldo")
// followed by an unnamed numeric column.
const (
	colDate        = "Fecha"
	colTime        = "Hora"
	colProduct     = "Producto"
	colISIN        = "ISIN"
	colDescription = "Descripción"
	colAmount      = "Variación"
	colBalance     = "Saldo"
)

// Administrative columns are ignored entirely: "Fecha valor", "ID Orden",
// "Tipo" carry no ledger information.

var (
	amountRe = regexp.MustCompile(`(-?[\d.,]+)\s*(EUR|USD|GBP)`)
	isinRe   = regexp.MustCompile(`\(([A-Z]{2}[A-Z0-9]{9}[0-9])\)`)
	// the same token with its surrounding parentheses and leading whitespace,
	// for stripping out of the display name
	isinStripRe = regexp.MustCompile(`\s*\([A-Z]{2}[A-Z0-9]{9}[0-9]\)`)
)

var allowedCurrencies = map[string]bool{
	models.CurrencyEUR: true,
	models.CurrencyUSD: true,
	models.CurrencyGBP: true,
}

// Loader parses raw ledger CSV text into normalized records. The exchange
// rate table is injected so tests can run against a fixed series.
type Loader struct {
	rates *rates.Table
}

func NewLoader(rateTable *rates.Table) *Loader {
	return &Loader{rates: rateTable}
}

// Load reads the CSV export and returns the normalized record set. Rows with
// a missing or unparsable date are dropped; rows whose amount currency is not
// EUR/USD/GBP are excluded entirely. Malformed numeric fields degrade to zero
// with the valid flag cleared, never to an error: only CSV text that is not
// tabular at all fails the load.
func (l *Loader) Load(r io.Reader) ([]models.LedgerRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := indexColumns(header)
	for _, required := range []string{colDate, colProduct, colDescription, colAmount} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("ledger CSV missing required column %q", required)
		}
	}

	var records []models.LedgerRecord
	dropped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		date, err := utils.ParseLedgerDate(field(row, cols, colDate))
		if err != nil {
			dropped++
			continue
		}

		rec := models.LedgerRecord{
			Date:                date,
			Time:                field(row, cols, colTime),
			Year:                date.Year(),
			YearMonth:           utils.YearMonth(date),
			OriginalDescription: cleanText(field(row, cols, colDescription)),
		}

		product := cleanText(field(row, cols, colProduct))
		rec.ISIN = strings.TrimSpace(field(row, cols, colISIN))
		if rec.ISIN == "" {
			// some exports embed the ISIN in the product field instead
			if m := isinRe.FindStringSubmatch(product); m != nil {
				rec.ISIN = m[1]
			}
		}
		rec.Product = strings.TrimSpace(isinStripRe.ReplaceAllString(product, ""))

		rec.Amount, rec.AmountCurrency, rec.AmountValid =
			splitAmount(field(row, cols, colAmount+"#value"), field(row, cols, colAmount))
		rec.Balance, rec.BalanceCurrency, rec.BalanceValid =
			splitAmount(field(row, cols, colBalance+"#value"), field(row, cols, colBalance))

		if !allowedCurrencies[rec.AmountCurrency] {
			dropped++
			continue
		}

		rec.AmountEUR = utils.RoundFloat(l.rates.ToEUR(rec.Amount, rec.AmountCurrency, date), 2)
		rec.BalanceEUR = utils.RoundFloat(l.rates.ToEUR(rec.Balance, rec.BalanceCurrency, date), 2)

		records = append(records, rec)
	}

	logger.L.Info("Ledger CSV loaded", "records", len(records), "dropped", dropped)
	return records, nil
}

// indexColumns maps header names to column positions. The unnamed numeric
// column that follows each currency column is registered under "<name>#value".
func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		switch name {
		case colAmount, colBalance:
			cols[name] = i
			if i+1 < len(header) {
				cols[name+"#value"] = i + 1
			}
		case "":
			// companion value columns are indexed from their headed neighbor
		default:
			cols[name] = i
		}
	}
	return cols
}

func field(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// splitAmount concatenates the numeric and currency columns and extracts a
// typed (value, currency) pair. A malformed numeric yields (0, currency,
// false) rather than an error.
func splitAmount(value, currency string) (float64, string, bool) {
	combined := strings.TrimSpace(value + " " + strings.TrimSpace(currency))
	m := amountRe.FindStringSubmatch(combined)
	if m == nil {
		return 0, strings.TrimSpace(currency), false
	}
	parsed, err := utils.ParseEuropeanFloat(m[1])
	if err != nil {
		return 0, m[2], false
	}
	return parsed, m[2], true
}

// cleanText strips unprintable characters and normalizes the non-breaking
// spaces the export sprinkles through free-text fields.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(validation.StripUnprintable(s))
}
