package utils

import "time"

// DefaultDateFormat is the broker export's day-first date layout.
const DefaultDateFormat = "02-01-2006"

// ParseLedgerDate parses a day-first date string.
func ParseLedgerDate(dateStr string) (time.Time, error) {
	return time.Parse(DefaultDateFormat, dateStr)
}

// YearMonth formats a date as the "YYYY-MM" grouping key.
func YearMonth(t time.Time) string {
	return t.Format("2006-01")
}
