package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RoundFloat rounds a float64 to a given number of decimal places.
func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// ParseEuropeanFloat parses a numeric string that may use the broker's mixed
// separator conventions. When both "." and "," appear, "." is a thousands
// separator and "," the decimal mark ("1.208,88" → 1208.88). When only ","
// appears it is the decimal mark ("61,82" → 61.82). Plain "150.25" parses
// as-is.
func ParseEuropeanFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty numeric string")
	}
	if strings.Contains(s, ".") && strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", ".")
	}
	return strconv.ParseFloat(s, 64)
}
