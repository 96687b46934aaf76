package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/username/ledgerfolio/src/logger"
	"github.com/username/ledgerfolio/src/models"
)

// dateLayout is how transaction dates are stored: ISO day strings, so date
// comparisons in SQL stay lexical.
const dateLayout = "2006-01-02"

// Store persists classified transactions and derived holdings. Writes are
// replace-style: an ingestion deletes the user's previous rows and inserts the
// new computation inside one sql transaction, so readers never observe a
// half-replaced portfolio.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ReplacePortfolio swaps out the user's entire transaction set and the
// holdings derived from it in one sql transaction. Either both tables carry
// the new upload afterwards or neither does.
func (s *Store) ReplacePortfolio(userID int64, txs []models.ClassifiedTransaction, holdings []models.Holding) error {
	dbTx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := replaceTransactionsTx(dbTx, userID, txs); err != nil {
		return err
	}
	if err := replaceHoldingsTx(dbTx, userID, holdings); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("error committing portfolio replacement: %w", err)
	}
	logger.L.Info("Replaced stored portfolio", "userID", userID, "transactions", len(txs), "holdings", len(holdings))
	return nil
}

// ReplaceTransactions swaps out the user's transaction set only. Ingestion
// goes through ReplacePortfolio so the derived holdings move with it.
func (s *Store) ReplaceTransactions(userID int64, txs []models.ClassifiedTransaction) error {
	dbTx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := replaceTransactionsTx(dbTx, userID, txs); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("error committing transactions: %w", err)
	}
	logger.L.Info("Replaced stored transactions", "userID", userID, "count", len(txs))
	return nil
}

// ReplaceHoldings swaps out the user's reconciled holdings only.
func (s *Store) ReplaceHoldings(userID int64, holdings []models.Holding) error {
	dbTx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := replaceHoldingsTx(dbTx, userID, holdings); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("error committing holdings: %w", err)
	}
	logger.L.Info("Replaced stored holdings", "userID", userID, "count", len(holdings))
	return nil
}

func replaceTransactionsTx(dbTx *sql.Tx, userID int64, txs []models.ClassifiedTransaction) error {
	if _, err := dbTx.Exec(`DELETE FROM transactions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("error clearing previous transactions for userID %d: %w", userID, err)
	}

	stmt, err := dbTx.Prepare(`INSERT INTO transactions (user_id, date, time, year, year_month, product, isin, description, original_description, category, country_code, shares, price, amount, amount_currency, amount_eur, balance_eur, is_valid, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for _, tx := range txs {
		_, err := stmt.Exec(userID, tx.Date.Format(dateLayout), tx.Time, tx.Year, tx.YearMonth, tx.Product, tx.ISIN,
			tx.Description, tx.OriginalDescription, tx.Category, tx.Country, tx.Shares, tx.Price,
			tx.Amount, tx.AmountCurrency, tx.AmountEUR, tx.BalanceEUR, tx.IsValid, tx.Status)
		if err != nil {
			return fmt.Errorf("error inserting transaction (date: %s, product: %s): %w", tx.Date, tx.Product, err)
		}
	}
	return nil
}

func replaceHoldingsTx(dbTx *sql.Tx, userID int64, holdings []models.Holding) error {
	if _, err := dbTx.Exec(`DELETE FROM holdings WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("error clearing previous holdings for userID %d: %w", userID, err)
	}

	stmt, err := dbTx.Prepare(`INSERT INTO holdings (user_id, isin, company_name, symbol, shares_held, invested_eur, current_price, currency, position_value, fetch_date, fetch_timestamp, source) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for _, h := range holdings {
		_, err := stmt.Exec(userID, h.ISIN, h.CompanyName, h.Symbol, h.SharesHeld, h.InvestedEUR,
			h.CurrentPrice, h.Currency, h.PositionValue, h.FetchDate, h.FetchTimestamp, h.Source)
		if err != nil {
			return fmt.Errorf("error inserting holding (isin: %s): %w", h.ISIN, err)
		}
	}
	return nil
}

// GetTransactions returns the user's transactions in ledger order, optionally
// filtered to one category.
func (s *Store) GetTransactions(userID int64, category string) ([]models.ClassifiedTransaction, error) {
	query := `SELECT date, time, year, year_month, product, isin, description, original_description, category, country_code, shares, price, amount, amount_currency, amount_eur, balance_eur, is_valid, status FROM transactions WHERE user_id = ?`
	args := []interface{}{userID}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions for userID %d: %w", userID, err)
	}
	defer rows.Close()

	var txs []models.ClassifiedTransaction
	for rows.Next() {
		var tx models.ClassifiedTransaction
		var date string
		err := rows.Scan(&date, &tx.Time, &tx.Year, &tx.YearMonth, &tx.Product, &tx.ISIN,
			&tx.Description, &tx.OriginalDescription, &tx.Category, &tx.Country, &tx.Shares, &tx.Price,
			&tx.Amount, &tx.AmountCurrency, &tx.AmountEUR, &tx.BalanceEUR, &tx.IsValid, &tx.Status)
		if err != nil {
			return nil, fmt.Errorf("error scanning transaction row for userID %d: %w", userID, err)
		}
		if tx.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("error parsing stored date %q for userID %d: %w", date, userID, err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over transaction rows for userID %d: %w", userID, err)
	}
	return txs, nil
}

// GetHoldings returns the user's holdings ordered by company name.
func (s *Store) GetHoldings(userID int64) ([]models.Holding, error) {
	rows, err := s.db.Query(`SELECT isin, company_name, symbol, shares_held, invested_eur, current_price, currency, position_value, fetch_date, fetch_timestamp, source FROM holdings WHERE user_id = ? ORDER BY company_name ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying holdings for userID %d: %w", userID, err)
	}
	defer rows.Close()

	var holdings []models.Holding
	for rows.Next() {
		var h models.Holding
		err := rows.Scan(&h.ISIN, &h.CompanyName, &h.Symbol, &h.SharesHeld, &h.InvestedEUR,
			&h.CurrentPrice, &h.Currency, &h.PositionValue, &h.FetchDate, &h.FetchTimestamp, &h.Source)
		if err != nil {
			return nil, fmt.Errorf("error scanning holding row for userID %d: %w", userID, err)
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over holding rows for userID %d: %w", userID, err)
	}
	return holdings, nil
}

// DeleteAllTransactions removes everything derived from the user's uploads,
// both the transaction rows and the holdings computed from them.
func (s *Store) DeleteAllTransactions(userID int64) error {
	dbTx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.Exec(`DELETE FROM transactions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("error deleting transactions for userID %d: %w", userID, err)
	}
	if _, err := dbTx.Exec(`DELETE FROM holdings WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("error deleting holdings for userID %d: %w", userID, err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("error committing deletion: %w", err)
	}
	logger.L.Info("Deleted all transactions and holdings", "userID", userID)
	return nil
}
