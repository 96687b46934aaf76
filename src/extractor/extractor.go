package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/username/ledgerfolio/src/models"
	"github.com/username/ledgerfolio/src/utils"
)

// Trade descriptions look like
//
//	"Compra 10 APPLE INC@150.25 USD (US0378331005)"
//	"Venta 1 Block Inc.@61,82 USD (US8522341036)"
//
// The share count is the first integer after the verb token and the price is
// the token between "@" and the currency code.
var (
	buySharesRe  = regexp.MustCompile(`(?i)compra\s+(\d+)`)
	sellSharesRe = regexp.MustCompile(`(?i)venta\s+(\d+)`)
	priceRe      = regexp.MustCompile(`@([\d,.]+)\s*(?:USD|EUR|GBP)`)
)

// Extractor recovers share counts and per-share prices from trade narratives
// and decides each trade's validity for holdings math.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Enrich fills the trade fields across a mixed classified slice in place,
// dispatching on category. Non-trade rows are left untouched. Run this before
// partitioning so every copy of a row carries the trade fields.
func (e *Extractor) Enrich(txs []models.ClassifiedTransaction) {
	for i := range txs {
		switch txs[i].Category {
		case models.CategoryBuy:
			e.EnrichBuys(txs[i : i+1])
		case models.CategorySell:
			e.EnrichSells(txs[i : i+1])
		}
	}
}

// EnrichBuys fills Shares, Price and IsValid on each buy in place. A buy is
// valid only when shares parsed positive, its ISIN token occurs literally in
// the raw description and the EUR amount is negative. That last pair of
// checks keeps mis-classified corporate-action rows out of holdings and the
// invested-capital totals while the rows themselves stay stored for audit.
func (e *Extractor) EnrichBuys(buys []models.ClassifiedTransaction) {
	for i := range buys {
		tx := &buys[i]
		tx.Shares = extractShares(buySharesRe, tx.OriginalDescription)
		tx.Price = extractPrice(tx.OriginalDescription)
		tx.IsValid = tx.Shares > 0 &&
			tx.ISIN != "" &&
			strings.Contains(tx.OriginalDescription, tx.ISIN) &&
			tx.AmountEUR < 0
	}
}

// EnrichSells fills Shares, Price and IsValid on each sell in place. The sell
// check is looser: a parsable positive share count is enough, since sells
// only ever reduce a position.
func (e *Extractor) EnrichSells(sells []models.ClassifiedTransaction) {
	for i := range sells {
		tx := &sells[i]
		tx.Shares = extractShares(sellSharesRe, tx.OriginalDescription)
		tx.Price = extractPrice(tx.OriginalDescription)
		tx.IsValid = tx.Shares > 0
	}
}

// extractShares returns the first integer after the verb token, or 0 when the
// narrative does not carry one.
func extractShares(re *regexp.Regexp, description string) int {
	m := re.FindStringSubmatch(description)
	if m == nil {
		return 0
	}
	shares, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return shares
}

// extractPrice returns the per-share price in the transaction's stated
// currency, or 0 when absent or unparsable.
func extractPrice(description string) float64 {
	m := priceRe.FindStringSubmatch(description)
	if m == nil {
		return 0
	}
	price, err := utils.ParseEuropeanFloat(m[1])
	if err != nil {
		return 0
	}
	return price
}
