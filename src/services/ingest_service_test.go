package services

import (
	"context"
	"strings"
	"testing"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/ledgerfolio/src/classifier"
	"github.com/username/ledgerfolio/src/database"
	"github.com/username/ledgerfolio/src/extractor"
	"github.com/username/ledgerfolio/src/holdings"
	"github.com/username/ledgerfolio/src/ledger"
	"github.com/username/ledgerfolio/src/models"
	"github.com/username/ledgerfolio/src/rates"
	"github.com/username/ledgerfolio/src/storage"
	"github.com/username/ledgerfolio/src/summary"
)

const exportCSV = "Fecha,Hora,Producto,ISIN,Descripción,Variación,,Saldo,\n" +
	"01-03-2024,09:00,,,Ingreso,EUR,\"5.000,00\",EUR,\"5.000,00\"\n" +
	"15-03-2024,10:30,APPLE INC (US0378331005),,Compra 10 APPLE INC@150.25 USD (US0378331005),EUR,\"-1.502,50\",EUR,\"3.497,50\"\n" +
	"20-03-2024,11:00,APPLE INC (US0378331005),,Dividendo,EUR,\"10,00\",EUR,\"3.507,50\"\n" +
	"20-03-2024,11:05,APPLE INC (US0378331005),,Retención del dividendo,EUR,\"-1,50\",EUR,\"3.506,00\"\n" +
	"20-03-2024,12:00,,,Comisión por transacción,EUR,\"-2,50\",EUR,\"3.503,50\"\n"

func testIngestService(t *testing.T) (IngestService, int64) {
	t.Helper()

	db, err := database.InitDB(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	user := &models.User{Username: "tester", Email: "tester@example.com", Password: "hash"}
	require.NoError(t, user.CreateUser(db))

	table, err := rates.Parse(strings.NewReader("Date,EUR_to_USD\n2024-01-02,1.10\n"))
	require.NoError(t, err)

	svc := NewIngestService(
		ledger.NewLoader(table),
		classifier.NewClassifier(),
		extractor.New(),
		holdings.NewReconciler(nil, 0),
		summary.NewSummarizer(summary.DefaultVerificationTable()),
		storage.NewStore(db),
		cache.New(DefaultCacheExpiration, CacheCleanupInterval),
	)
	return svc, user.ID
}

func TestProcessUploadFullPipeline(t *testing.T) {
	svc, userID := testIngestService(t)

	result, err := svc.ProcessUpload(context.Background(), strings.NewReader(exportCSV), userID)
	require.NoError(t, err)

	assert.Equal(t, 5, result.TransactionsCount)
	assert.Equal(t, 1, result.HoldingsCount)
	assert.Equal(t, 1, result.TransactionBreakdown[models.CategoryBuy])
	assert.Equal(t, 2, result.TransactionBreakdown[models.CategoryDividend])
	assert.Equal(t, 1, result.TransactionBreakdown[models.CategoryDeposit])
	assert.Equal(t, 1, result.TransactionBreakdown[models.CategoryFee])

	require.NotNil(t, result.Summary)
	assert.Equal(t, 1502.50, result.Summary.TotalInvested)
	assert.Equal(t, 8.50, result.Summary.TotalDividends)
	assert.Equal(t, 5000.00, result.Summary.TotalDeposits)
	assert.Equal(t, 2.50, result.Summary.TotalFees)
	assert.Equal(t, 3503.50, result.Summary.CurrentCashEUR)
	assert.Equal(t, 2, result.Summary.VerifiedDividendTransactions)

	txs, err := svc.GetTransactions(userID, "")
	require.NoError(t, err)
	require.Len(t, txs, 5)

	// the buy's extraction and the dividend pair's verification must survive
	// the round trip through storage
	buys, err := svc.GetTransactions(userID, models.CategoryBuy)
	require.NoError(t, err)
	require.Len(t, buys, 1)
	assert.True(t, buys[0].IsValid)
	assert.Equal(t, 10, buys[0].Shares)
	assert.Equal(t, 150.25, buys[0].Price)

	dividends, err := svc.GetTransactions(userID, models.CategoryDividend)
	require.NoError(t, err)
	require.Len(t, dividends, 2)
	assert.Equal(t, models.StatusVerified, dividends[0].Status)
	assert.Equal(t, models.StatusVerified, dividends[1].Status)

	held, err := svc.GetHoldings(userID)
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, "US0378331005", held[0].ISIN)
	assert.Equal(t, 10, held[0].SharesHeld)
	assert.Equal(t, 1502.50, held[0].InvestedEUR)
	// no price collaborator wired, so the lookup is recorded as failed
	assert.Equal(t, models.PriceSourceFailed, held[0].Source)
}

func TestProcessUploadIsIdempotent(t *testing.T) {
	svc, userID := testIngestService(t)
	ctx := context.Background()

	_, err := svc.ProcessUpload(ctx, strings.NewReader(exportCSV), userID)
	require.NoError(t, err)
	result, err := svc.ProcessUpload(ctx, strings.NewReader(exportCSV), userID)
	require.NoError(t, err)

	assert.Equal(t, 5, result.TransactionsCount)
	txs, err := svc.GetTransactions(userID, "")
	require.NoError(t, err)
	assert.Len(t, txs, 5)
}

func TestProcessUploadRejectsUnparsableExport(t *testing.T) {
	svc, userID := testIngestService(t)

	_, err := svc.ProcessUpload(context.Background(), strings.NewReader("Fecha,Variación\n"), userID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParsingFailed)
}

func TestGetSummaryRecomputesAfterInvalidation(t *testing.T) {
	svc, userID := testIngestService(t)

	_, err := svc.ProcessUpload(context.Background(), strings.NewReader(exportCSV), userID)
	require.NoError(t, err)

	cached, err := svc.GetSummary(userID)
	require.NoError(t, err)
	assert.Equal(t, 1502.50, cached.TotalInvested)

	svc.InvalidateUserCache(userID)

	recomputed, err := svc.GetSummary(userID)
	require.NoError(t, err)
	assert.Equal(t, cached.TotalInvested, recomputed.TotalInvested)
	assert.Equal(t, cached.CurrentCashEUR, recomputed.CurrentCashEUR)
	assert.Equal(t, cached.PortfolioReturn, recomputed.PortfolioReturn)
}

func TestDeleteAllTransactionsClearsViews(t *testing.T) {
	svc, userID := testIngestService(t)

	_, err := svc.ProcessUpload(context.Background(), strings.NewReader(exportCSV), userID)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteAllTransactions(userID))

	txs, err := svc.GetTransactions(userID, "")
	require.NoError(t, err)
	assert.Empty(t, txs)

	held, err := svc.GetHoldings(userID)
	require.NoError(t, err)
	assert.Empty(t, held)

	s, err := svc.GetSummary(userID)
	require.NoError(t, err)
	assert.Zero(t, s.TotalInvested)
	assert.Zero(t, s.CurrentCashEUR)
}
