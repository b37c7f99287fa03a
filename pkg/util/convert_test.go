package util

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeight(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  float64
	}{
		{"kilograms", "2.5kg", 2500},
		{"kilograms uppercase with spaces", "  1 KG ", 1000},
		{"grams", "12.3g", 12.3},
		{"grams with space", "4 g", 4},
		{"bare number string", "7.25", 7.25},
		{"number passes through", 3.5, 3.5},
		{"json number", json.Number("8"), 8},
		{"int", 42, 42},
		{"unparseable", "heavy", 0},
		{"unparseable kilograms", "abc kg", 0},
		{"empty", "", 0},
		{"nil", nil, 0},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseWeight(tt.input), 1e-9)
		})
	}
}

func TestParseWeight_KilogramsEqualPrefixTimesThousand(t *testing.T) {
	for _, prefix := range []string{"0.001", "0.35", "1", "12.75", "300"} {
		grams := ParseWeight(prefix + "kg")
		plain := ParseWeight(prefix)
		assert.InDelta(t, plain*1000, grams, 1e-9, prefix)
		assert.InDelta(t, plain, ParseWeight(prefix+"g"), 1e-9, prefix)
	}
}

func TestParseUSPrice(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  float64
	}{
		{"dollar prefix", "$3.50", 3.5},
		{"dollar prefix with spaces", " $0.07 ", 0.07},
		{"no prefix", "12", 12},
		{"number", 1.25, 1.25},
		{"unparseable", "free", 0},
		{"only dollar", "$", 0},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseUSPrice(tt.input), 1e-9)
		})
	}
}

func TestCleanCurrency(t *testing.T) {
	assert.InDelta(t, 1234.5, CleanCurrency("US $1,234.50"), 1e-9)
	assert.InDelta(t, -3.2, CleanCurrency("-3.20 EUR"), 1e-9)
	assert.InDelta(t, 9.99, CleanCurrency(9.99), 1e-9)
	assert.Zero(t, CleanCurrency("n/a"))
	assert.Zero(t, CleanCurrency(nil))
}

func TestCleanQuantity(t *testing.T) {
	assert.Equal(t, 1200, CleanQuantity("1,200"))
	assert.Equal(t, 12, CleanQuantity("12.7"))
	assert.Equal(t, 3, CleanQuantity(3.0))
	assert.Equal(t, 0, CleanQuantity("many"))
	assert.Equal(t, 0, CleanQuantity(nil))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "3001", ToString(3001.0))
	assert.Equal(t, "3001b", ToString(" 3001b "))
	assert.Equal(t, "2.5", ToString(2.5))
	assert.Equal(t, "", ToString(nil))
}

func TestToInt64(t *testing.T) {
	n, ok := ToInt64("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)

	n, ok = ToInt64(17.0)
	assert.True(t, ok)
	assert.Equal(t, int64(17), n)

	_, ok = ToInt64("")
	assert.False(t, ok)
	_, ok = ToInt64(nil)
	assert.False(t, ok)
}

func TestSerialToDate(t *testing.T) {
	assert.Equal(t, "1970-01-01", SerialToDate(25569))
	assert.Equal(t, "2024-01-15", SerialToDate(45306))
	// fractional day still lands on the same calendar date
	assert.Equal(t, "2024-01-15", SerialToDate(45306.75))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-05")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *d)

	d, err = ParseDate("2024-03-05T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Hour())

	d, err = ParseDate(45306.0)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", d.Format("2006-01-02"))

	d, err = ParseDate("45306")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", d.Format("2006-01-02"))

	d, err = ParseDate(nil)
	assert.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseDate("  ")
	assert.NoError(t, err)
	assert.Nil(t, d)

	_, err = ParseDate("yesterday")
	assert.Error(t, err)
}
