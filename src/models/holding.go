package models

import "time"

// PriceSourceFailed marks a holding whose price lookup did not succeed, so
// consumers can tell "zero because unknown" from "zero because verified zero".
const PriceSourceFailed = "failed"

// Holding is a reconciled net position in a security. One per ISIN, and only
// while SharesHeld > 0.
type Holding struct {
	ISIN        string `json:"isin"`
	CompanyName string `json:"company_name"`
	Symbol      string `json:"symbol,omitempty"` // heuristic, not authoritative

	SharesHeld    int     `json:"shares_held"`
	InvestedEUR   float64 `json:"invested_eur"` // summed valid buy amounts, sign-flipped
	CurrentPrice  float64 `json:"current_price"`
	Currency      string  `json:"currency,omitempty"`
	PositionValue float64 `json:"position_value"`

	FetchDate      string `json:"fetch_date"`
	FetchTimestamp string `json:"fetch_timestamp"`
	Source         string `json:"source"`
}

// Quote is the price-lookup collaborator's answer for one ticker symbol.
type Quote struct {
	Symbol      string    `json:"symbol"`
	CompanyName string    `json:"company_name,omitempty"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	Timestamp   time.Time `json:"timestamp"`
	Source      string    `json:"source"`
}

// PriceBar is one day of the historical OHLCV series. Date is an ISO day
// string so cached rows sort and compare lexically.
type PriceBar struct {
	Symbol string  `json:"symbol"`
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}
