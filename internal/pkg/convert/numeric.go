// Package convert provides loose numeric conversions for hand-edited data files.
package convert

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ToFloat64 converts numbers and numeric strings to float64.
// Strings use LeadingFloat; unsupported types and NaN/Inf yield 0.
func ToFloat64(v any) float64 {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		f, _ = t.Float64()
	case string:
		f, _ = LeadingFloat(t)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ToInt truncates like ToFloat64 followed by dropping the fraction.
func ToInt(v any) int {
	return FloatToInt(ToFloat64(v))
}

// FloatToInt drops the fraction and saturates at the int range instead of wrapping.
func FloatToInt(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= float64(math.MaxInt):
		return math.MaxInt
	case f <= float64(math.MinInt):
		return math.MinInt
	}
	return int(math.Trunc(f))
}

// LeadingFloat parses the longest numeric prefix of s ("12.5%" -> 12.5).
// ok is false when s has no numeric prefix.
func LeadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	seenDigit, seenDot, seenExp := false, false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
			end = i + 1
		case (c == '+' || c == '-') && (i == 0 || s[i-1] == 'e' || s[i-1] == 'E'):
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
			if seenDigit {
				end = i + 1
			}
		case (c == 'e' || c == 'E') && seenDigit && !seenExp:
			seenExp = true
		default:
			i = len(s)
		}
	}
	if !seenDigit || end == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimRight(s[:end], "."), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// RoundHalfUp rounds to the nearest integer with ties toward +Inf.
func RoundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// Fixed rounds v to the given number of decimal places using decimal arithmetic.
func Fixed(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
