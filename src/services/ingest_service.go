package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/ledgerfolio/src/classifier"
	"github.com/username/ledgerfolio/src/extractor"
	"github.com/username/ledgerfolio/src/holdings"
	"github.com/username/ledgerfolio/src/ledger"
	"github.com/username/ledgerfolio/src/logger"
	"github.com/username/ledgerfolio/src/models"
	"github.com/username/ledgerfolio/src/storage"
	"github.com/username/ledgerfolio/src/summary"
)

const (
	// Aggregate caches, keyed per user
	ckSummary      = "agg_summary_user_%d"
	ckCashReport   = "agg_cash_report_user_%d"
	ckLatestResult = "agg_latest_ingest_result_user_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type ingestServiceImpl struct {
	loader      *ledger.Loader
	classifier  *classifier.Classifier
	extractor   *extractor.Extractor
	reconciler  *holdings.Reconciler
	summarizer  *summary.Summarizer
	store       *storage.Store
	reportCache *cache.Cache
}

func NewIngestService(
	loader *ledger.Loader,
	class *classifier.Classifier,
	extract *extractor.Extractor,
	reconciler *holdings.Reconciler,
	summarizer *summary.Summarizer,
	store *storage.Store,
	reportCache *cache.Cache,
) IngestService {
	return &ingestServiceImpl{
		loader:      loader,
		classifier:  class,
		extractor:   extract,
		reconciler:  reconciler,
		summarizer:  summarizer,
		store:       store,
		reportCache: reportCache,
	}
}

// ProcessUpload runs the whole pipeline over one uploaded export: load and
// normalize, classify, recover trade fields, reconcile holdings, summarize,
// then replace the user's stored rows. Ingestion is idempotent: re-uploading
// the same export replaces the previous result with an identical one.
func (s *ingestServiceImpl) ProcessUpload(ctx context.Context, fileReader io.Reader, userID int64) (*models.IngestResult, error) {
	overallStartTime := time.Now()
	logger.L.Info("ProcessUpload START", "userID", userID)

	records, err := s.loader.Load(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	txs := s.classifier.Classify(records)
	s.extractor.Enrich(txs)

	parts := classifier.Partition(txs)
	portfolioSummary := s.summarizer.Summarize(parts)

	// Summarize labeled the partition's dividend copies; run the same pass
	// over the full slice so the stored rows carry the labels too.
	s.summarizer.VerifyDividends(txs)

	holdingsList := s.reconciler.Reconcile(ctx, parts.Buys, parts.Sells)

	if err := s.store.ReplacePortfolio(userID, txs, holdingsList); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessingFailed, err)
	}

	s.InvalidateUserCache(userID)

	result := &models.IngestResult{
		TransactionsCount:    len(txs),
		HoldingsCount:        len(holdingsList),
		TransactionBreakdown: classifier.Breakdown(txs),
		ProcessingTimestamp:  time.Now().Format(time.RFC3339),
		Summary:              portfolioSummary,
	}
	s.reportCache.Set(fmt.Sprintf(ckLatestResult, userID), result, DefaultCacheExpiration)
	s.reportCache.Set(fmt.Sprintf(ckSummary, userID), portfolioSummary, DefaultCacheExpiration)

	logger.L.Info("ProcessUpload END", "userID", userID, "transactions", len(txs),
		"holdings", len(holdingsList), "duration", time.Since(overallStartTime))
	return result, nil
}

// GetSummary serves the cached summary or recomputes it from the stored rows.
func (s *ingestServiceImpl) GetSummary(userID int64) (*models.PortfolioSummary, error) {
	cacheKey := fmt.Sprintf(ckSummary, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for GetSummary", "userID", userID)
		return cached.(*models.PortfolioSummary), nil
	}

	logger.L.Info("Cache miss for summary, recalculating from DB", "userID", userID)
	txs, err := s.store.GetTransactions(userID, "")
	if err != nil {
		return nil, err
	}

	portfolioSummary := s.summarizer.Summarize(classifier.Partition(txs))
	s.reportCache.Set(cacheKey, portfolioSummary, DefaultCacheExpiration)
	return portfolioSummary, nil
}

// GetCashReport computes the cash view over all stored transactions.
func (s *ingestServiceImpl) GetCashReport(userID int64) (*models.CashReport, error) {
	cacheKey := fmt.Sprintf(ckCashReport, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(*models.CashReport), nil
	}

	txs, err := s.store.GetTransactions(userID, "")
	if err != nil {
		return nil, err
	}

	report := s.summarizer.Cash(txs)
	s.reportCache.Set(cacheKey, report, DefaultCacheExpiration)
	return report, nil
}

func (s *ingestServiceImpl) GetHoldings(userID int64) ([]models.Holding, error) {
	return s.store.GetHoldings(userID)
}

func (s *ingestServiceImpl) GetTransactions(userID int64, category string) ([]models.ClassifiedTransaction, error) {
	return s.store.GetTransactions(userID, category)
}

// DeleteAllTransactions wipes everything derived from the user's uploads.
func (s *ingestServiceImpl) DeleteAllTransactions(userID int64) error {
	if err := s.store.DeleteAllTransactions(userID); err != nil {
		return err
	}
	s.InvalidateUserCache(userID)
	return nil
}

// InvalidateUserCache clears the user's cached aggregates, forcing a rebuild
// on the next request.
func (s *ingestServiceImpl) InvalidateUserCache(userID int64) {
	keysToDelete := []string{
		fmt.Sprintf(ckSummary, userID),
		fmt.Sprintf(ckCashReport, userID),
		fmt.Sprintf(ckLatestResult, userID),
	}
	for _, key := range keysToDelete {
		s.reportCache.Delete(key)
	}
	logger.L.Info("Invalidated all caches for user", "userID", userID)
}
