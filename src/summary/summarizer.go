package summary

import (
	"time"

	"github.com/username/ledgerfolio/src/classifier"
	"github.com/username/ledgerfolio/src/logger"
	"github.com/username/ledgerfolio/src/models"
	"github.com/username/ledgerfolio/src/utils"
)

// Summarizer aggregates the classified partitions into lifetime and
// time-bucketed totals. It is a pure pass over the partitions: recomputed
// wholesale per ingestion, never incrementally updated.
type Summarizer struct {
	verification *VerificationTable
}

func NewSummarizer(verification *VerificationTable) *Summarizer {
	return &Summarizer{verification: verification}
}

// Summarize runs the dividend-verification pass and computes the summary
// record. Invested capital only counts valid buys; dividends sum over ALL
// dividend rows; verification labels data quality, it never filters.
func (s *Summarizer) Summarize(p classifier.Partitions) *models.PortfolioSummary {
	s.verification.Verify(p.Dividends)

	sum := &models.PortfolioSummary{
		DividendByYear:    make(map[int]float64),
		InvestmentByYear:  make(map[int]float64),
		ProceedsByYear:    make(map[int]float64),
		InvestmentByMonth: make(map[string]float64),
		DepositByMonth:    make(map[string]float64),

		BuyTransactions:      len(p.Buys),
		SellTransactions:     len(p.Sells),
		DividendTransactions: len(p.Dividends),
		DepositTransactions:  len(p.Deposits),
		FeeTransactions:      len(p.Fees),

		CalculationTimestamp: time.Now().Format(time.RFC3339),
	}

	for _, buy := range p.Buys {
		if !buy.IsValid {
			continue
		}
		sum.ValidBuyTransactions++
		sum.TotalInvested -= buy.AmountEUR
		sum.InvestmentByYear[buy.Year] -= buy.AmountEUR
		sum.InvestmentByMonth[buy.YearMonth] -= buy.AmountEUR
	}

	for _, sell := range p.Sells {
		sum.TotalProceeds += sell.AmountEUR
		sum.ProceedsByYear[sell.Year] += sell.AmountEUR
	}

	for _, div := range p.Dividends {
		sum.TotalDividends += div.AmountEUR
		sum.DividendByYear[div.Year] += div.AmountEUR
		if div.Status == models.StatusVerified {
			sum.VerifiedDividendTransactions++
		}
	}

	for _, dep := range p.Deposits {
		sum.TotalDeposits += dep.AmountEUR
		sum.DepositByMonth[dep.YearMonth] += dep.AmountEUR
	}

	for _, fee := range p.Fees {
		sum.TotalFees -= fee.AmountEUR
	}

	sum.NetInvested = sum.TotalInvested - sum.TotalProceeds
	sum.PortfolioReturn = sum.TotalDividends + sum.TotalProceeds - sum.TotalFees
	sum.CurrentCashEUR = s.Cash(p.All).CurrentCashEUR

	roundSummary(sum)
	logger.L.Info("Portfolio summarized",
		"invested", sum.TotalInvested,
		"proceeds", sum.TotalProceeds,
		"dividends", sum.TotalDividends,
		"cash", sum.CurrentCashEUR)
	return sum
}

// VerifyDividends applies the verification labels to the dividend rows of a
// mixed classified slice in place.
func (s *Summarizer) VerifyDividends(txs []models.ClassifiedTransaction) {
	s.verification.Verify(txs)
}

// Cash totals the cash flow over every classified transaction except internal
// transfers between cash sub-accounts, which never represent external money
// movement.
func (s *Summarizer) Cash(all []models.ClassifiedTransaction) *models.CashReport {
	report := &models.CashReport{
		CashByCategory: make(map[string]float64),
	}

	for _, tx := range all {
		if tx.Category == models.CategoryInternalTransfer {
			report.ExcludedInternalTransfers++
			continue
		}
		report.TransactionsUsed++
		report.CurrentCashEUR += tx.AmountEUR
		report.CashByCategory[tx.Category] += tx.AmountEUR
		switch tx.Category {
		case models.CategoryDeposit:
			report.TotalDeposits += tx.AmountEUR
		case models.CategoryWithdrawal:
			report.TotalWithdrawals += tx.AmountEUR
		}
	}

	report.CurrentCashEUR = utils.RoundFloat(report.CurrentCashEUR, 2)
	report.TotalDeposits = utils.RoundFloat(report.TotalDeposits, 2)
	report.TotalWithdrawals = utils.RoundFloat(report.TotalWithdrawals, 2)
	for category, amount := range report.CashByCategory {
		report.CashByCategory[category] = utils.RoundFloat(amount, 2)
	}
	return report
}

func roundSummary(sum *models.PortfolioSummary) {
	sum.TotalInvested = utils.RoundFloat(sum.TotalInvested, 2)
	sum.TotalProceeds = utils.RoundFloat(sum.TotalProceeds, 2)
	sum.NetInvested = utils.RoundFloat(sum.NetInvested, 2)
	sum.TotalDeposits = utils.RoundFloat(sum.TotalDeposits, 2)
	sum.TotalDividends = utils.RoundFloat(sum.TotalDividends, 2)
	sum.TotalFees = utils.RoundFloat(sum.TotalFees, 2)
	sum.PortfolioReturn = utils.RoundFloat(sum.PortfolioReturn, 2)
	for year, v := range sum.DividendByYear {
		sum.DividendByYear[year] = utils.RoundFloat(v, 2)
	}
	for year, v := range sum.InvestmentByYear {
		sum.InvestmentByYear[year] = utils.RoundFloat(v, 2)
	}
	for year, v := range sum.ProceedsByYear {
		sum.ProceedsByYear[year] = utils.RoundFloat(v, 2)
	}
	for month, v := range sum.InvestmentByMonth {
		sum.InvestmentByMonth[month] = utils.RoundFloat(v, 2)
	}
	for month, v := range sum.DepositByMonth {
		sum.DepositByMonth[month] = utils.RoundFloat(v, 2)
	}
}
