package rates

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/username/ledgerfolio/src/logger"
	"github.com/username/ledgerfolio/src/models"
)

// Table holds the EUR→USD reference series, sorted by date. It is loaded once
// at startup and injected into the components that convert currency, so tests
// can substitute a fixed table.
type Table struct {
	observations []observation
}

type observation struct {
	date     time.Time
	eurToUSD float64
}

// Load reads a rate CSV with a "Date,EUR_to_USD" header.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening exchange rate file %q: %w", path, err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing exchange rate file %q: %w", path, err)
	}
	logger.L.Info("Exchange rates loaded", "path", path, "observations", len(t.observations))
	return t, nil
}

// Parse reads the rate series from CSV text.
func Parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading rate CSV header: %w", err)
	}
	dateIdx, rateIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "Date":
			dateIdx = i
		case "EUR_to_USD":
			rateIdx = i
		}
	}
	if dateIdx < 0 || rateIdx < 0 {
		return nil, fmt.Errorf("rate CSV missing Date/EUR_to_USD columns: %v", header)
	}

	var obs []observation
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading rate CSV record: %w", err)
		}
		if len(record) <= dateIdx || len(record) <= rateIdx {
			continue
		}
		date, err := time.Parse("2006-01-02", strings.TrimSpace(record[dateIdx]))
		if err != nil {
			continue
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(record[rateIdx]), 64)
		if err != nil || rate <= 0 {
			continue
		}
		obs = append(obs, observation{date: date, eurToUSD: rate})
	}
	sort.Slice(obs, func(i, j int) bool { return obs[i].date.Before(obs[j].date) })
	return &Table{observations: obs}, nil
}

// EURToUSD returns the rate for a date, forward-filled: non-trading days take
// the last preceding observation. Dates before the series start get the first
// observation; an empty table reports an error.
func (t *Table) EURToUSD(date time.Time) (float64, error) {
	if len(t.observations) == 0 {
		return 0, fmt.Errorf("exchange rate table is empty")
	}
	day := date.Truncate(24 * time.Hour)
	idx := sort.Search(len(t.observations), func(i int) bool {
		return t.observations[i].date.After(day)
	})
	if idx == 0 {
		return t.observations[0].eurToUSD, nil
	}
	return t.observations[idx-1].eurToUSD, nil
}

// Latest returns the most recent observed rate.
func (t *Table) Latest() (float64, error) {
	if len(t.observations) == 0 {
		return 0, fmt.Errorf("exchange rate table is empty")
	}
	return t.observations[len(t.observations)-1].eurToUSD, nil
}

// ToEUR converts an amount in the given currency to EUR on the given date.
// EUR is identity; USD divides by the day-matched rate. Other currencies are
// filtered out upstream, but fall back to identity rather than failing.
func (t *Table) ToEUR(amount float64, currency string, date time.Time) float64 {
	if currency == models.CurrencyUSD {
		if rate, err := t.EURToUSD(date); err == nil && rate > 0 {
			return amount / rate
		}
		logger.L.Warn("No EUR_to_USD rate available, leaving amount unconverted", "date", date.Format("2006-01-02"))
	}
	return amount
}
