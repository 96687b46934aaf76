package summary

import (
	"strings"

	"github.com/username/ledgerfolio/src/models"
)

// GroupPattern is the row shape a jurisdiction's dividend bookings are
// expected to take on a single (date, product) group.
type GroupPattern int

const (
	// PairWithWithholding expects exactly two rows: the dividend and its
	// withholding-tax counterpart.
	PairWithWithholding GroupPattern = iota
	// SingleRow expects exactly one row, for jurisdictions that withhold
	// nothing at source.
	SingleRow
)

// VerificationTable encodes the per-country withholding conventions as data,
// so adding a jurisdiction is a table entry rather than a code change.
type VerificationTable struct {
	countryPatterns map[string]GroupPattern
	// product names (lower-case substrings) booked like withholding-exempt
	// jurisdictions regardless of their ISIN country, e.g. ADR listings
	productExceptions []string
}

// DefaultVerificationTable covers the conventions observed in real exports:
// US dividends arrive as a dividend/withholding pair; Liberian-registered
// ISINs and Alibaba-style ADRs arrive as a single row.
func DefaultVerificationTable() *VerificationTable {
	return &VerificationTable{
		countryPatterns: map[string]GroupPattern{
			"US": PairWithWithholding,
			"LR": SingleRow,
		},
		productExceptions: []string{"alibaba"},
	}
}

const (
	descDividend    = "dividendo"
	descWithholding = "retención del dividendo"
)

// Verify labels each dividend row verified or unverified in place. Rows are
// grouped by (date, product); a group is verified when its row count and
// descriptions match the jurisdiction's expected pattern. The label is
// informational only and never excludes a row from the summary sums.
// Non-dividend rows in the slice are skipped, so Verify may run over a mixed
// classified set as well as a pure dividend partition.
func (t *VerificationTable) Verify(dividends []models.ClassifiedTransaction) {
	groups := make(map[string][]int)
	for i, tx := range dividends {
		if tx.Category != models.CategoryDividend {
			continue
		}
		key := tx.Date.Format("2006-01-02") + "|" + tx.Product
		groups[key] = append(groups[key], i)
	}

	for _, idxs := range groups {
		verified := t.groupVerified(dividends, idxs)
		status := models.StatusUnverified
		if verified {
			status = models.StatusVerified
		}
		for _, i := range idxs {
			dividends[i].Status = status
		}
	}
}

func (t *VerificationTable) groupVerified(dividends []models.ClassifiedTransaction, idxs []int) bool {
	first := dividends[idxs[0]]
	pattern, known := t.patternFor(first.Country, first.Product)
	if !known {
		return false
	}

	switch pattern {
	case SingleRow:
		return len(idxs) == 1
	case PairWithWithholding:
		if len(idxs) != 2 {
			return false
		}
		descs := make(map[string]bool, 2)
		for _, i := range idxs {
			descs[strings.ToLower(dividends[i].Description)] = true
		}
		return descs[descDividend] && descs[descWithholding]
	}
	return false
}

func (t *VerificationTable) patternFor(country, product string) (GroupPattern, bool) {
	lowerProduct := strings.ToLower(product)
	for _, exception := range t.productExceptions {
		if strings.Contains(lowerProduct, exception) {
			return SingleRow, true
		}
	}
	pattern, ok := t.countryPatterns[country]
	return pattern, ok
}
