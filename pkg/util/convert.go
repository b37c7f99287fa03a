package util

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	numericPrefix   = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	integerPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	nonCurrencyChar = regexp.MustCompile(`[^\d.-]`)

	gramsPerKilogram = decimal.NewFromInt(1000)
)

// spreadsheetEpochOffset is the serial number of 1970-01-01 in the 1900 date system
const spreadsheetEpochOffset = 25569

// parseDecimalPrefix parses the longest leading number of s, ignoring any trailing text.
// "12.5abc" yields 12.5, "abc" yields false.
func parseDecimalPrefix(s string) (decimal.Decimal, bool) {
	match := numericPrefix.FindString(strings.TrimSpace(s))
	if match == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// numberOf returns the numeric value of a decoded JSON scalar
func numberOf(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case decimal.Decimal:
		return n.InexactFloat64(), true
	}
	return 0, false
}

// ParseWeight normalizes a weight to grams. Numbers pass through, strings ending
// in kg are multiplied by 1000, strings ending in g are taken as grams, anything
// else is parsed as a bare number. Unparseable or missing input yields 0.
func ParseWeight(v interface{}) float64 {
	if n, ok := numberOf(v); ok {
		return n
	}
	s, ok := v.(string)
	if !ok {
		return 0
	}
	w := strings.ToLower(strings.TrimSpace(s))
	if w == "" {
		return 0
	}

	switch {
	case strings.HasSuffix(w, "kg"):
		d, ok := parseDecimalPrefix(strings.TrimSuffix(w, "kg"))
		if !ok {
			return 0
		}
		return d.Mul(gramsPerKilogram).InexactFloat64()
	case strings.HasSuffix(w, "g"):
		d, ok := parseDecimalPrefix(strings.TrimSuffix(w, "g"))
		if !ok {
			return 0
		}
		return d.InexactFloat64()
	}

	d, ok := parseDecimalPrefix(w)
	if !ok {
		return 0
	}
	return d.InexactFloat64()
}

// ParseUSPrice normalizes a price such as "$3.50". Unparseable or missing input yields 0.
func ParseUSPrice(v interface{}) float64 {
	if n, ok := numberOf(v); ok {
		return n
	}
	s, ok := v.(string)
	if !ok {
		return 0
	}
	p := strings.TrimPrefix(strings.TrimSpace(s), "$")
	d, ok := parseDecimalPrefix(p)
	if !ok {
		return 0
	}
	return d.InexactFloat64()
}

// CleanCurrency strips everything but digits, dots and minus signs before parsing,
// so "US $1,234.50" becomes 1234.5.
func CleanCurrency(v interface{}) float64 {
	if n, ok := numberOf(v); ok {
		return n
	}
	s, ok := v.(string)
	if !ok {
		return 0
	}
	d, ok := parseDecimalPrefix(nonCurrencyChar.ReplaceAllString(s, ""))
	if !ok {
		return 0
	}
	return d.InexactFloat64()
}

// CleanQuantity parses an integer count, ignoring thousands separators
func CleanQuantity(v interface{}) int {
	if n, ok := numberOf(v); ok {
		return int(n)
	}
	s, ok := v.(string)
	if !ok {
		return 0
	}
	match := integerPrefix.FindString(strings.TrimSpace(strings.ReplaceAll(s, ",", "")))
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return n
}

// ToFloat converts a loosely typed scalar to float64
func ToFloat(v interface{}) float64 {
	if n, ok := numberOf(v); ok {
		return n
	}
	if s, ok := v.(string); ok {
		if d, ok := parseDecimalPrefix(s); ok {
			return d.InexactFloat64()
		}
	}
	return 0
}

// ToInt converts a loosely typed scalar to int, truncating fractions
func ToInt(v interface{}) int {
	return int(ToFloat(v))
}

// ToInt64 converts a loosely typed scalar to int64, reporting whether a number was found
func ToInt64(v interface{}) (int64, bool) {
	if n, ok := numberOf(v); ok {
		return int64(n), true
	}
	if s, ok := v.(string); ok {
		if d, ok := parseDecimalPrefix(s); ok {
			return d.IntPart(), true
		}
	}
	return 0, false
}

// ToString renders a loosely typed scalar as text. Whole numbers lose their fraction.
func ToString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	}
	if n, ok := numberOf(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

// SerialToTime converts a spreadsheet serial date (days since 1899-12-30) to UTC
func SerialToTime(serial float64) time.Time {
	ms := math.Round((serial - spreadsheetEpochOffset) * 86400 * 1000)
	return time.UnixMilli(int64(ms)).UTC()
}

// SerialToDate converts a spreadsheet serial date to a YYYY-MM-DD calendar date
func SerialToDate(serial float64) string {
	return SerialToTime(serial).Format("2006-01-02")
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
}

// ParseDate accepts calendar strings, RFC3339 timestamps and spreadsheet serials.
// Missing input yields nil without error.
func ParseDate(v interface{}) (*time.Time, error) {
	if n, ok := numberOf(v); ok {
		t := SerialToTime(n)
		return &t, nil
	}
	s, ok := v.(string)
	if !ok {
		if v == nil {
			return nil, nil
		}
		return nil, errors.Errorf("unsupported date value %v", v)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		t := SerialToTime(f)
		return &t, nil
	}
	return nil, errors.Errorf("invalid date %q", s)
}
