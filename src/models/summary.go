package models

// PortfolioSummary is the aggregate view over the classified partitions. It is
// derived, never persisted as state, and recomputed wholesale per ingestion.
type PortfolioSummary struct {
	TotalInvested   float64 `json:"total_invested"`
	TotalProceeds   float64 `json:"total_proceeds"`
	NetInvested     float64 `json:"net_invested"`
	TotalDeposits   float64 `json:"total_deposits"`
	TotalDividends  float64 `json:"total_dividends_received"`
	TotalFees       float64 `json:"total_fees"`
	PortfolioReturn float64 `json:"portfolio_return"`
	CurrentCashEUR  float64 `json:"current_cash_eur"`

	DividendByYear    map[int]float64    `json:"dividend_by_year"`
	InvestmentByYear  map[int]float64    `json:"investment_by_year"`
	ProceedsByYear    map[int]float64    `json:"proceeds_by_year"`
	InvestmentByMonth map[string]float64 `json:"investment_by_month"`
	DepositByMonth    map[string]float64 `json:"deposit_by_month"`

	DividendTransactions         int `json:"dividend_transactions"`
	VerifiedDividendTransactions int `json:"verified_dividend_transactions"`
	BuyTransactions              int `json:"total_buy_transactions"`
	ValidBuyTransactions         int `json:"valid_buy_transactions"`
	SellTransactions             int `json:"sell_transactions"`
	DepositTransactions          int `json:"deposit_transactions"`
	FeeTransactions              int `json:"fee_transactions"`

	CalculationTimestamp string `json:"calculation_timestamp"`
}

// CashReport breaks the cash-flow total down by category. Internal transfers
// between cash sub-accounts are excluded: they never represent external money.
type CashReport struct {
	CurrentCashEUR            float64            `json:"current_cash_eur"`
	TotalDeposits             float64            `json:"total_deposits"`
	TotalWithdrawals          float64            `json:"total_withdrawals"`
	CashByCategory            map[string]float64 `json:"cash_by_category"`
	TransactionsUsed          int                `json:"total_transactions_used"`
	ExcludedInternalTransfers int                `json:"excluded_internal_transfers"`
}
