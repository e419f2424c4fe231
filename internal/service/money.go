package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseMoney parses a reported money string tolerating both "1,234.56" and
// "1.234,56". When both separators appear, the one appearing later is the
// decimal point. A lone comma is decimal only when followed by exactly 1-2
// digits, otherwise it is a thousands separator.
func ParseMoney(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			// comma is decimal, dots are thousands
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		frac := s[strings.LastIndex(s, ",")+1:]
		if strings.Count(s, ",") == 1 && len(frac) >= 1 && len(frac) <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d.InexactFloat64(), nil
}

// roundToStep rounds a value to the nearest multiple of step, half away
// from zero.
func roundToStep(value, step float64) float64 {
	if step <= 0 {
		return value
	}
	d := decimal.NewFromFloat(value).
		Div(decimal.NewFromFloat(step)).
		Round(0).
		Mul(decimal.NewFromFloat(step))
	return d.InexactFloat64()
}

// roundMoney rounds to the nearest whole unit, half away from zero.
func roundMoney(value float64) float64 {
	return decimal.NewFromFloat(value).Round(0).InexactFloat64()
}
