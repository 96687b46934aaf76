package models

import "time"

// Currency codes accepted after loading. Anything else is dropped.
const (
	CurrencyEUR = "EUR"
	CurrencyUSD = "USD"
	CurrencyGBP = "GBP"
)

// Transaction categories produced by the classifier. Spanish labels follow the
// broker's export language; the classifier also matches the English variants.
const (
	CategoryBuy              = "compra"
	CategorySell             = "venta"
	CategoryDividend         = "dividendo"
	CategoryDeposit          = "ingreso"
	CategoryWithdrawal       = "retiro"
	CategoryFee              = "comisión"
	CategoryTax              = "impuesto"
	CategoryCorporateAction  = "cambio corporativo"
	CategoryCurrencyExchange = "cambio de divisa"
	CategoryInternalTransfer = "transferencia interna"
	CategoryOther            = "otro"
)

// CountryNone is the country sentinel used when a record carries no ISIN.
const CountryNone = "None"

// LedgerRecord is one normalized row of the broker's cash-account export.
type LedgerRecord struct {
	Date      time.Time `json:"date"`
	Time      string    `json:"time,omitempty"`
	Year      int       `json:"year"`
	YearMonth string    `json:"year_month"` // "2006-01" grouping key

	Product             string `json:"product"` // display name, ISIN stripped
	ISIN                string `json:"isin,omitempty"`
	OriginalDescription string `json:"original_description"`

	Amount          float64 `json:"amount"`
	AmountValid     bool    `json:"amount_valid"` // false when the numeric field was malformed
	AmountCurrency  string  `json:"amount_currency"`
	Balance         float64 `json:"balance"`
	BalanceValid    bool    `json:"balance_valid"`
	BalanceCurrency string  `json:"balance_currency"`

	AmountEUR  float64 `json:"amount_eur"`
	BalanceEUR float64 `json:"balance_eur"`
}

// ClassifiedTransaction is a LedgerRecord plus the classifier's verdict and,
// for trades, the fields recovered from the free-text description.
type ClassifiedTransaction struct {
	LedgerRecord

	Category    string `json:"category"`
	Description string `json:"description"` // normalized lower-case narrative label
	Country     string `json:"country"`     // first two chars of ISIN, or "None"

	// Trade fields (buys/sells only). Zero when unparsable; IsValid guards
	// every downstream use, so a zero here never leaks into holdings math.
	Shares  int     `json:"shares,omitempty"`
	Price   float64 `json:"price,omitempty"`
	IsValid bool    `json:"is_valid"`

	// Dividend verification label, "verified" or "unverified". Informational
	// only: it never excludes a row from the summary sums.
	Status string `json:"status,omitempty"`
}

// Dividend verification labels.
const (
	StatusVerified   = "verified"
	StatusUnverified = "unverified"
)

// IngestResult is the plain record handed to the presentation layer after a
// full ingestion pass.
type IngestResult struct {
	TransactionsCount    int               `json:"transactions_count"`
	HoldingsCount        int               `json:"holdings_count"`
	TransactionBreakdown map[string]int    `json:"transaction_breakdown"`
	ProcessingTimestamp  string            `json:"processing_timestamp"`
	Summary              *PortfolioSummary `json:"summary,omitempty"`
}
