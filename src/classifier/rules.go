package classifier

import (
	"strings"

	"github.com/username/ledgerfolio/src/models"
)

// Rule maps a normalized description to a category. Rules are evaluated in
// slice order and the first match wins, so specific rules (corporate-action
// variants) must precede the general buy/sell keywords.
type Rule struct {
	Name     string
	Category string
	Match    func(desc string) bool
}

// corporateActionMarkers are the narrative fragments that turn a buy/sell
// line into a corporate-action booking rather than a market trade. Both the
// export's local language and the English variants appear in the wild.
var corporateActionMarkers = []string{
	"stock split",
	"fusión", "merger",
	"escisión", "spin-off",
	"cambio de producto", "product change",
	"cambio de isin", "isin change",
	"conversión fondos del mercado monetario", "money market fund conversion",
}

func containsAny(desc string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(desc, n) {
			return true
		}
	}
	return false
}

func hasCorporateMarker(desc string) bool {
	return containsAny(desc, corporateActionMarkers...)
}

func isTradeVerb(desc string) bool {
	return containsAny(desc, "compra", "buy") || containsAny(desc, "venta", "sell")
}

// DefaultRules returns the classifier's standard ordered rule set.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "corporate-action",
			Category: models.CategoryCorporateAction,
			Match: func(desc string) bool {
				if strings.Contains(desc, "stock split") {
					return true
				}
				return isTradeVerb(desc) && hasCorporateMarker(desc)
			},
		},
		{
			Name:     "currency-exchange",
			Category: models.CategoryCurrencyExchange,
			Match: func(desc string) bool {
				return containsAny(desc, "cambio de divisa", "crédito de divisa", "levantamiento de divisa")
			},
		},
		{
			Name:     "internal-transfer",
			Category: models.CategoryInternalTransfer,
			Match: func(desc string) bool {
				return strings.Contains(desc, "cash sweep transfer")
			},
		},
		{
			Name:     "buy",
			Category: models.CategoryBuy,
			Match: func(desc string) bool {
				return containsAny(desc, "compra", "buy ")
			},
		},
		{
			Name:     "sell",
			Category: models.CategorySell,
			Match: func(desc string) bool {
				return containsAny(desc, "venta", "sell ")
			},
		},
		{
			Name:     "dividend",
			Category: models.CategoryDividend,
			Match: func(desc string) bool {
				return containsAny(desc, "dividendo", "dividend", "div.", "distribution")
			},
		},
		{
			Name:     "deposit",
			Category: models.CategoryDeposit,
			Match: func(desc string) bool {
				return containsAny(desc, "ingreso", "depósito", "deposit", "transferencia", "transfer")
			},
		},
		{
			Name:     "withdrawal",
			Category: models.CategoryWithdrawal,
			Match: func(desc string) bool {
				return containsAny(desc, "retirada", "withdrawal")
			},
		},
		{
			Name:     "tax",
			Category: models.CategoryTax,
			Match: func(desc string) bool {
				return containsAny(desc, "stamp duty", "impuesto de selo", "impuesto de timbre")
			},
		},
		{
			Name:     "fee",
			Category: models.CategoryFee,
			Match: func(desc string) bool {
				return containsAny(desc, "comisión", "commission", "fee", "cargo", "coste", "cost")
			},
		},
	}
}

// normalizeDescription collapses known raw narratives into canonical
// lower-case labels. Unrecognized text passes through lowered so the rule set
// still sees the original wording.
func normalizeDescription(raw string) string {
	x := strings.ToLower(strings.TrimSpace(raw))

	switch {
	case strings.Contains(x, "transferir a su cuenta de efectivo"):
		return "transferencia a cuenta de efectivo"
	case strings.Contains(x, "transferir desde su cuenta de efectivo"):
		return "transferencia desde cuenta de efectivo"
	case strings.Contains(x, "comisión de conectividad"):
		return "comisión de conectividad"
	case strings.Contains(x, "flatex deposit"):
		return models.CategoryDeposit
	case x == "ingreso":
		return models.CategoryDeposit
	}

	for _, verb := range []string{"compra ", "venta "} {
		if !strings.Contains(x, verb) {
			continue
		}
		label := strings.TrimSpace(verb)
		for _, marker := range corporateActionMarkers {
			if strings.Contains(x, marker) {
				return label + " - " + marker
			}
		}
		return label
	}
	return x
}

// denylistedDescriptions are near-zero internal bookkeeping lines removed
// entirely after classification. This is an explicit exclusion, not a
// category.
var denylistedDescriptions = map[string]bool{
	"flatex interest income":   true,
	"flatex interest":          true,
	"comisión de conectividad": true,
	"adr/gdr pass-through fee": true,
	"rendimiento de capital":   true,
	"fondos del mercado monetario cambio de precio (eur)": true,
	"venta - conversión fondos del mercado monetario":     true,
	"transferencia a cuenta de efectivo":                  true,
	"transferencia desde cuenta de efectivo":              true,
}
