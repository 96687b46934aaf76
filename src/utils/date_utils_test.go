package utils

import (
	"testing"
	"time"
)

func TestParseLedgerDate(t *testing.T) {
	got, err := ParseLedgerDate("02-01-2024")
	if err != nil {
		t.Fatalf("ParseLedgerDate: %v", err)
	}
	want := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseLedgerDate(02-01-2024) = %v, want %v", got, want)
	}

	if _, err := ParseLedgerDate("2024-01-02"); err == nil {
		t.Error("ParseLedgerDate accepted an ISO date, want day-first only")
	}
}

func TestYearMonth(t *testing.T) {
	d := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	if got := YearMonth(d); got != "2024-03" {
		t.Errorf("YearMonth = %q, want 2024-03", got)
	}
}
