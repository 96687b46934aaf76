package holdings

import (
	"context"
	"regexp"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/username/ledgerfolio/src/logger"
	"github.com/username/ledgerfolio/src/models"
	"github.com/username/ledgerfolio/src/utils"
)

// PriceLookup is the price collaborator: one ticker symbol in, latest quote
// out, or an explicit failure. Calls may block or rate-limit; the reconciler
// treats every failure as per-symbol and keeps going.
type PriceLookup interface {
	GetQuote(ctx context.Context, symbol string) (models.Quote, error)
}

// symbolRe captures the leading run of uppercase letters of a product name.
// Best-effort only: callers that need an authoritative symbol must bring
// their own ISIN→ticker mapping.
var symbolRe = regexp.MustCompile(`^[A-Z]{1,5}`)

// Reconciler nets buys against sells per ISIN and values the surviving
// positions with live quotes.
type Reconciler struct {
	prices  PriceLookup
	limiter *rate.Limiter
}

// NewReconciler wires the price collaborator and the fixed inter-call delay
// used to respect its quota.
func NewReconciler(prices PriceLookup, fetchDelay time.Duration) *Reconciler {
	return &Reconciler{
		prices:  prices,
		limiter: rate.NewLimiter(rate.Every(fetchDelay), 1),
	}
}

type position struct {
	product     string
	shares      int
	investedEUR float64
}

// Reconcile produces the current holdings: valid buy shares summed per ISIN,
// sell shares subtracted, positions with net shares ≤ 0 discarded, and one
// throttled price lookup per survivor. A failed lookup degrades the holding
// to a zero-valued entry with source "failed"; it never aborts the batch.
func (r *Reconciler) Reconcile(ctx context.Context, buys, sells []models.ClassifiedTransaction) []models.Holding {
	positions := make(map[string]*position)
	var order []string

	// Group by ISIN, not product name: the same ISIN shows up under
	// inconsistent name variants across rows. First name seen wins.
	for _, buy := range buys {
		if !buy.IsValid || buy.ISIN == "" {
			continue
		}
		pos, ok := positions[buy.ISIN]
		if !ok {
			pos = &position{product: buy.Product}
			positions[buy.ISIN] = pos
			order = append(order, buy.ISIN)
		}
		pos.shares += buy.Shares
		pos.investedEUR += buy.AmountEUR
	}

	for _, sell := range sells {
		if pos, ok := positions[sell.ISIN]; ok {
			pos.shares -= sell.Shares
		}
	}

	var holdings []models.Holding
	for _, isin := range order {
		pos := positions[isin]
		if pos.shares <= 0 {
			continue
		}

		h := models.Holding{
			ISIN:        isin,
			CompanyName: pos.product,
			Symbol:      symbolRe.FindString(pos.product),
			SharesHeld:  pos.shares,
			InvestedEUR: utils.RoundFloat(-pos.investedEUR, 2),
		}
		r.attachQuote(ctx, &h)
		holdings = append(holdings, h)
	}

	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].CompanyName < holdings[j].CompanyName
	})
	logger.L.Info("Holdings reconciled", "positions", len(holdings))
	return holdings
}

// attachQuote performs the throttled per-symbol lookup and fills the price
// fields, falling back to the "failed" sentinel.
func (r *Reconciler) attachQuote(ctx context.Context, h *models.Holding) {
	now := time.Now()
	h.FetchDate = now.Format("2006-01-02")
	h.FetchTimestamp = now.Format(time.RFC3339)
	h.Source = models.PriceSourceFailed

	if h.Symbol == "" || r.prices == nil {
		return
	}
	if err := r.limiter.Wait(ctx); err != nil {
		logger.L.Warn("Price fetch throttle interrupted", "symbol", h.Symbol, "error", err)
		return
	}

	quote, err := r.prices.GetQuote(ctx, h.Symbol)
	if err != nil {
		logger.L.Warn("Price lookup failed", "symbol", h.Symbol, "isin", h.ISIN, "error", err)
		return
	}

	h.CurrentPrice = quote.Price
	h.Currency = quote.Currency
	h.PositionValue = utils.RoundFloat(float64(h.SharesHeld)*quote.Price, 2)
	h.FetchDate = quote.Timestamp.Format("2006-01-02")
	h.FetchTimestamp = quote.Timestamp.Format(time.RFC3339)
	h.Source = quote.Source
	if quote.CompanyName != "" {
		h.CompanyName = quote.CompanyName
	}
}
