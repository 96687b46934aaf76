package services

import (
	"context"
	"errors"
	"io"

	"github.com/username/ledgerfolio/src/models"
)

var (
	// ErrParsingFailed wraps everything that goes wrong while turning the
	// uploaded CSV into ledger records.
	ErrParsingFailed = errors.New("error parsing the ledger export")
	// ErrProcessingFailed wraps failures in the classify/extract/reconcile
	// pipeline after parsing succeeded.
	ErrProcessingFailed = errors.New("error processing transactions")
)

// IngestService runs the full pipeline over an uploaded cash-ledger export
// and serves the derived views.
type IngestService interface {
	ProcessUpload(ctx context.Context, fileReader io.Reader, userID int64) (*models.IngestResult, error)
	GetSummary(userID int64) (*models.PortfolioSummary, error)
	GetCashReport(userID int64) (*models.CashReport, error)
	GetHoldings(userID int64) ([]models.Holding, error)
	GetTransactions(userID int64, category string) ([]models.ClassifiedTransaction, error)
	DeleteAllTransactions(userID int64) error
	InvalidateUserCache(userID int64)
}

// PriceService resolves a current quote for a ticker symbol.
type PriceService interface {
	GetQuote(ctx context.Context, symbol string) (models.Quote, error)
}

// HistoryService serves the daily OHLCV series for a symbol, cache-through.
type HistoryService interface {
	GetDailyBars(ctx context.Context, symbol, fromDate, toDate string) ([]models.PriceBar, error)
}
