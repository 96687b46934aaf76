package database

import (
	"database/sql"
	"fmt"

	"github.com/username/ledgerfolio/src/logger"
	_ "modernc.org/sqlite"
)

// InitDB opens the sqlite database, runs column migrations for pre-existing
// installs and ensures the full schema. The returned handle is shared by
// every store; modernc's driver serializes access internally.
func InitDB(databasePath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", databasePath, err)
	}

	logger.L.Info("Checking database migrations", "databasePath", databasePath)
	migrateTransactionsTable(db)

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		user_agent TEXT,
		client_ip TEXT,
		is_blocked BOOLEAN DEFAULT FALSE,
		expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		time TEXT,
		year INTEGER,
		year_month TEXT,
		product TEXT NOT NULL,
		isin TEXT,
		description TEXT,
		original_description TEXT,
		category TEXT NOT NULL,
		country_code TEXT,
		shares INTEGER,
		price REAL,
		amount REAL,
		amount_currency TEXT,
		amount_eur REAL,
		balance_eur REAL,
		is_valid BOOLEAN DEFAULT FALSE,
		status TEXT,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS holdings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		isin TEXT NOT NULL,
		company_name TEXT,
		symbol TEXT,
		shares_held INTEGER,
		invested_eur REAL,
		current_price REAL,
		currency TEXT,
		position_value REAL,
		fetch_date TEXT,
		fetch_timestamp TEXT,
		source TEXT,
		FOREIGN KEY(user_id) REFERENCES users(id),
		UNIQUE(user_id, isin)
	);

	CREATE TABLE IF NOT EXISTS stock_prices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		date TEXT NOT NULL,
		open REAL,
		high REAL,
		low REAL,
		close REAL,
		volume INTEGER,
		UNIQUE(symbol, date)
	);
	`

	if _, err := db.Exec(createTableStatement); err != nil {
		return nil, fmt.Errorf("creating tables: %w", err)
	}
	logger.L.Info("Database tables ensured/created.")
	return db, nil
}

// migrateTransactionsTable adds columns introduced after the first release so
// existing databases keep working. Failures are logged, not fatal: a fresh
// install has no table to migrate.
func migrateTransactionsTable(db *sql.DB) {
	var tableName string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='transactions'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			logger.L.Info("'transactions' table does not exist, no migration needed as table will be created.")
			return
		}
		logger.L.Error("Error checking for 'transactions' table", "error", err)
		return
	}

	columnExists, err := tableColumns(db, "transactions")
	if err != nil {
		logger.L.Error("Error querying table schema for 'transactions'", "error", err)
		return
	}

	if _, ok := columnExists["status"]; !ok {
		if _, err := db.Exec("ALTER TABLE transactions ADD COLUMN status TEXT"); err != nil {
			logger.L.Error("Error adding 'status' column to 'transactions' table", "error", err)
		} else {
			logger.L.Info("Added 'status' column to 'transactions' table")
		}
	}

	if _, ok := columnExists["original_description"]; !ok {
		if _, err := db.Exec("ALTER TABLE transactions ADD COLUMN original_description TEXT"); err != nil {
			logger.L.Error("Error adding 'original_description' column to 'transactions' table", "error", err)
		} else {
			logger.L.Info("Added 'original_description' column to 'transactions' table")
			if _, err := db.Exec("UPDATE transactions SET original_description = description WHERE original_description IS NULL"); err != nil {
				logger.L.Error("Error backfilling original_description for existing rows", "error", err)
			}
		}
	}

	if _, ok := columnExists["balance_eur"]; !ok {
		if _, err := db.Exec("ALTER TABLE transactions ADD COLUMN balance_eur REAL"); err != nil {
			logger.L.Error("Error adding 'balance_eur' column to 'transactions' table", "error", err)
		} else {
			logger.L.Info("Added 'balance_eur' column to 'transactions' table")
		}
	}
}

func tableColumns(db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			return nil, err
		}
		columnExists[name] = true
	}
	return columnExists, rows.Err()
}
