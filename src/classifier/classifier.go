package classifier

import (
	"fmt"
	"strings"

	"github.com/username/ledgerfolio/src/logger"
	"github.com/username/ledgerfolio/src/models"
)

// Classifier assigns every ledger record to exactly one category via an
// ordered rule list. Rules can be substituted in tests.
type Classifier struct {
	rules []Rule
}

func NewClassifier() *Classifier {
	return &Classifier{rules: DefaultRules()}
}

func NewClassifierWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify normalizes descriptions, categorizes each record, removes
// denylisted bookkeeping lines and deduplicates exact repeats (the time field
// is ignored for duplicate detection). Classification never fails: records
// matching no positive rule land in the "otro" category.
func (c *Classifier) Classify(records []models.LedgerRecord) []models.ClassifiedTransaction {
	var out []models.ClassifiedTransaction
	seen := make(map[string]bool, len(records))
	denied := 0

	for _, rec := range records {
		desc := normalizeDescription(rec.OriginalDescription)

		tx := models.ClassifiedTransaction{
			LedgerRecord: rec,
			Description:  desc,
			Category:     c.categorize(desc),
			Country:      countryFromISIN(rec.ISIN),
		}

		if denylistedDescriptions[desc] {
			denied++
			continue
		}

		key := dedupKey(tx)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tx)
	}

	logger.L.Info("Ledger classified", "transactions", len(out), "denylisted", denied)
	return out
}

func (c *Classifier) categorize(desc string) string {
	for _, rule := range c.rules {
		if rule.Match(desc) {
			return rule.Category
		}
	}
	return models.CategoryOther
}

func countryFromISIN(isin string) string {
	if len(isin) < 2 {
		return models.CountryNone
	}
	return strings.ToUpper(isin[:2])
}

// dedupKey identifies an exact duplicate row. The time field is deliberately
// left out: re-exports shift it while the underlying event is the same.
func dedupKey(tx models.ClassifiedTransaction) string {
	return strings.Join([]string{
		tx.Date.Format("2006-01-02"),
		tx.Product,
		tx.ISIN,
		tx.OriginalDescription,
		fmt.Sprintf("%.4f|%s|%.4f|%s", tx.Amount, tx.AmountCurrency, tx.Balance, tx.BalanceCurrency),
	}, "|")
}

// Partitions is the classifier output split into the five partitions the
// downstream components consume, plus the full record set for cash math.
type Partitions struct {
	Buys      []models.ClassifiedTransaction
	Sells     []models.ClassifiedTransaction
	Dividends []models.ClassifiedTransaction
	Deposits  []models.ClassifiedTransaction
	Fees      []models.ClassifiedTransaction
	All       []models.ClassifiedTransaction
}

// Partition splits classified transactions by category. The partitions are
// mutually exclusive because each record carries exactly one category.
func Partition(txs []models.ClassifiedTransaction) Partitions {
	p := Partitions{All: txs}
	for _, tx := range txs {
		switch tx.Category {
		case models.CategoryBuy:
			p.Buys = append(p.Buys, tx)
		case models.CategorySell:
			p.Sells = append(p.Sells, tx)
		case models.CategoryDividend:
			p.Dividends = append(p.Dividends, tx)
		case models.CategoryDeposit:
			p.Deposits = append(p.Deposits, tx)
		case models.CategoryFee:
			p.Fees = append(p.Fees, tx)
		}
	}
	return p
}

// Breakdown counts transactions per category.
func Breakdown(txs []models.ClassifiedTransaction) map[string]int {
	counts := make(map[string]int)
	for _, tx := range txs {
		counts[tx.Category]++
	}
	return counts
}
