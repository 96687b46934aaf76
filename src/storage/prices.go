package storage

import (
	"fmt"

	"github.com/username/ledgerfolio/src/models"
)

// UpsertPriceBars caches daily OHLCV rows. Re-fetching a range the cache
// already covers overwrites in place, so revised bars from the provider win.
func (s *Store) UpsertPriceBars(bars []models.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	dbTx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(`INSERT INTO stock_prices (symbol, date, open, high, low, close, volume) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET open=excluded.open, high=excluded.high, low=excluded.low, close=excluded.close, volume=excluded.volume`)
	if err != nil {
		return fmt.Errorf("error preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	for _, bar := range bars {
		if _, err := stmt.Exec(bar.Symbol, bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume); err != nil {
			return fmt.Errorf("error upserting price bar (%s %s): %w", bar.Symbol, bar.Date, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("error committing price bars: %w", err)
	}
	return nil
}

// GetPriceBars returns cached bars for a symbol between two dates inclusive,
// oldest first. Dates are ISO strings so lexical order is date order.
func (s *Store) GetPriceBars(symbol, fromDate, toDate string) ([]models.PriceBar, error) {
	rows, err := s.db.Query(`SELECT symbol, date, open, high, low, close, volume FROM stock_prices
		WHERE symbol = ? AND date >= ? AND date <= ? ORDER BY date ASC`, symbol, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("error querying price bars for %s: %w", symbol, err)
	}
	defer rows.Close()

	var bars []models.PriceBar
	for rows.Next() {
		var bar models.PriceBar
		if err := rows.Scan(&bar.Symbol, &bar.Date, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, fmt.Errorf("error scanning price bar for %s: %w", symbol, err)
		}
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over price bars for %s: %w", symbol, err)
	}
	return bars, nil
}

// LatestPriceDate returns the most recent cached date for a symbol, or ""
// when the cache has nothing for it.
func (s *Store) LatestPriceDate(symbol string) (string, error) {
	var date string
	err := s.db.QueryRow(`SELECT COALESCE(MAX(date), '') FROM stock_prices WHERE symbol = ?`, symbol).Scan(&date)
	if err != nil {
		return "", fmt.Errorf("error querying latest price date for %s: %w", symbol, err)
	}
	return date, nil
}
