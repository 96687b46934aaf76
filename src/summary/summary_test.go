package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/ledgerfolio/src/classifier"
	"github.com/username/ledgerfolio/src/models"
)

func tx(category, product, isin string, amountEUR float64, date time.Time) models.ClassifiedTransaction {
	t := models.ClassifiedTransaction{Category: category}
	t.Product = product
	t.ISIN = isin
	t.AmountEUR = amountEUR
	t.Date = date
	t.Year = date.Year()
	t.YearMonth = date.Format("2006-01")
	if len(isin) >= 2 {
		t.Country = isin[:2]
	} else {
		t.Country = models.CountryNone
	}
	return t
}

func dividendTx(product, isin, desc string, amountEUR float64, date time.Time) models.ClassifiedTransaction {
	d := tx(models.CategoryDividend, product, isin, amountEUR, date)
	d.Description = desc
	return d
}

var day1 = time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

func TestVerifyUSPair(t *testing.T) {
	dividends := []models.ClassifiedTransaction{
		dividendTx("APPLE INC", "US0378331005", "dividendo", 10.00, day1),
		dividendTx("APPLE INC", "US0378331005", "retención del dividendo", -1.50, day1),
	}
	DefaultVerificationTable().Verify(dividends)

	assert.Equal(t, models.StatusVerified, dividends[0].Status)
	assert.Equal(t, models.StatusVerified, dividends[1].Status)
}

func TestVerifyUSLoneRowUnverified(t *testing.T) {
	dividends := []models.ClassifiedTransaction{
		dividendTx("APPLE INC", "US0378331005", "dividendo", 10.00, day1),
	}
	DefaultVerificationTable().Verify(dividends)
	assert.Equal(t, models.StatusUnverified, dividends[0].Status)
}

func TestVerifySingleRowJurisdiction(t *testing.T) {
	dividends := []models.ClassifiedTransaction{
		dividendTx("ROYAL CARIBBEAN", "LR0008862868", "dividendo", 25.00, day1),
	}
	DefaultVerificationTable().Verify(dividends)
	assert.Equal(t, models.StatusVerified, dividends[0].Status)
}

func TestVerifyProductExceptionOverridesCountry(t *testing.T) {
	// an ADR booked as a single row even though the ISIN says US
	dividends := []models.ClassifiedTransaction{
		dividendTx("ALIBABA GROUP ADR", "US01609W1027", "dividendo", 12.00, day1),
	}
	DefaultVerificationTable().Verify(dividends)
	assert.Equal(t, models.StatusVerified, dividends[0].Status)
}

func TestVerifyUnknownCountryUnverified(t *testing.T) {
	dividends := []models.ClassifiedTransaction{
		dividendTx("SIEMENS AG", "DE0007236101", "dividendo", 8.00, day1),
	}
	DefaultVerificationTable().Verify(dividends)
	assert.Equal(t, models.StatusUnverified, dividends[0].Status)
}

func TestVerifySkipsNonDividendRows(t *testing.T) {
	mixed := []models.ClassifiedTransaction{
		tx(models.CategoryBuy, "APPLE INC", "US0378331005", -100, day1),
		dividendTx("APPLE INC", "US0378331005", "dividendo", 10.00, day1),
		dividendTx("APPLE INC", "US0378331005", "retención del dividendo", -1.50, day1),
	}
	DefaultVerificationTable().Verify(mixed)

	assert.Empty(t, mixed[0].Status)
	assert.Equal(t, models.StatusVerified, mixed[1].Status)
	assert.Equal(t, models.StatusVerified, mixed[2].Status)
}

func TestSummarizeTotals(t *testing.T) {
	validBuy := tx(models.CategoryBuy, "APPLE INC", "US0378331005", -1502.50, day1)
	validBuy.IsValid = true
	invalidBuy := tx(models.CategoryBuy, "ACME CORP", "US1111111111", -200.00, day1)

	txs := []models.ClassifiedTransaction{
		validBuy,
		invalidBuy,
		tx(models.CategorySell, "APPLE INC", "US0378331005", 720.00, day1),
		dividendTx("APPLE INC", "US0378331005", "dividendo", 10.00, day1),
		dividendTx("APPLE INC", "US0378331005", "retención del dividendo", -1.50, day1),
		tx(models.CategoryDeposit, "", "", 5000.00, day1),
		tx(models.CategoryFee, "", "", -2.50, day1),
	}

	sum := NewSummarizer(DefaultVerificationTable()).Summarize(classifier.Partition(txs))

	// invested counts valid buys only, sign-flipped
	assert.Equal(t, 1502.50, sum.TotalInvested)
	assert.Equal(t, 720.00, sum.TotalProceeds)
	assert.Equal(t, 782.50, sum.NetInvested)
	// dividends sum over every dividend row, withholding included
	assert.Equal(t, 8.50, sum.TotalDividends)
	assert.Equal(t, 2.50, sum.TotalFees)
	assert.Equal(t, 5000.00, sum.TotalDeposits)
	// return = dividends + proceeds - fees
	assert.Equal(t, 726.00, sum.PortfolioReturn)

	assert.Equal(t, 2, sum.BuyTransactions)
	assert.Equal(t, 1, sum.ValidBuyTransactions)
	assert.Equal(t, 2, sum.DividendTransactions)
	assert.Equal(t, 2, sum.VerifiedDividendTransactions)

	assert.Equal(t, 1502.50, sum.InvestmentByYear[2024])
	assert.Equal(t, 1502.50, sum.InvestmentByMonth["2024-03"])
	assert.Equal(t, 720.00, sum.ProceedsByYear[2024])
	assert.Equal(t, 8.50, sum.DividendByYear[2024])
	assert.Equal(t, 5000.00, sum.DepositByMonth["2024-03"])
	assert.NotEmpty(t, sum.CalculationTimestamp)
}

func TestCashExcludesInternalTransfers(t *testing.T) {
	txs := []models.ClassifiedTransaction{
		tx(models.CategoryDeposit, "", "", 5000.00, day1),
		tx(models.CategoryWithdrawal, "", "", -1000.00, day1),
		tx(models.CategoryInternalTransfer, "", "", -250.00, day1),
		tx(models.CategoryFee, "", "", -2.50, day1),
	}

	report := NewSummarizer(DefaultVerificationTable()).Cash(txs)

	assert.Equal(t, 3997.50, report.CurrentCashEUR)
	assert.Equal(t, 5000.00, report.TotalDeposits)
	assert.Equal(t, -1000.00, report.TotalWithdrawals)
	assert.Equal(t, 3, report.TransactionsUsed)
	assert.Equal(t, 1, report.ExcludedInternalTransfers)
	assert.Equal(t, 5000.00, report.CashByCategory[models.CategoryDeposit])
}

func TestSummarizeEmptyPartitions(t *testing.T) {
	sum := NewSummarizer(DefaultVerificationTable()).Summarize(classifier.Partitions{})
	require.NotNil(t, sum)
	assert.Zero(t, sum.TotalInvested)
	assert.Zero(t, sum.PortfolioReturn)
	assert.Empty(t, sum.DividendByYear)
}
