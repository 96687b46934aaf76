package utils

import (
	"math"
	"testing"
)

func TestParseEuropeanFloat(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"1.208,88", 1208.88, false},
		{"61,82", 61.82, false},
		{"150.25", 150.25, false},
		{"-1.502,50", -1502.50, false},
		{"-61,82", -61.82, false},
		{"1000", 1000, false},
		{"0,00", 0, false},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseEuropeanFloat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseEuropeanFloat(%q) expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseEuropeanFloat(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseEuropeanFloat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRoundFloat(t *testing.T) {
	tests := []struct {
		val       float64
		precision uint
		want      float64
	}{
		{1208.8849, 2, 1208.88},
		{-1502.509, 2, -1502.51},
		{0.1 + 0.2, 2, 0.3},
		{12.3456, 3, 12.346},
	}

	for _, tt := range tests {
		if got := RoundFloat(tt.val, tt.precision); got != tt.want {
			t.Errorf("RoundFloat(%v, %d) = %v, want %v", tt.val, tt.precision, got, tt.want)
		}
	}
}
