package earnings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shift-crm/internal/storage"
)

func strPtr(s string) *string {
	return &s
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"40", 40},
		{"20,5", 20.5},
		{" 7.25 ", 7.25},
		{"", 0},
		{"abc", 0},
		{"NaN", 0},
		{"-3", -3},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, ParseAmount(c.in), "input %q", c.in)
	}
}

func TestDeriveCalculatedCheck(t *testing.T) {
	calc := NewCalculator(DefaultRates())

	got := calc.DeriveCalculatedCheck(map[string]string{"Chaturbate": "40", "Stripchat": "20,5"})
	require.NotNil(t, got)
	assert.Equal(t, "3.03", *got)
}

func TestDeriveCalculatedCheck_NoTokens(t *testing.T) {
	calc := NewCalculator(DefaultRates())

	assert.Nil(t, calc.DeriveCalculatedCheck(map[string]string{}))
	assert.Nil(t, calc.DeriveCalculatedCheck(map[string]string{"Cam4": "", "Crypto": "нет"}))
}

func TestComplete_Scenario(t *testing.T) {
	calc := NewCalculator(DefaultRates())

	totals := calc.Complete(storage.Entries{
		Tokens:  map[string]string{"Stripchat": "200"},
		Bonuses: map[string]string{},
	})

	require.NotNil(t, totals.CheckCalculated)
	assert.Equal(t, "10.00", *totals.CheckCalculated)
	assert.Equal(t, "10", totals.Check)
	assert.Equal(t, "0", totals.BonusesText)
}

func TestComplete_WithBonuses(t *testing.T) {
	calc := NewCalculator(DefaultRates())

	totals := calc.Complete(storage.Entries{
		Tokens:  map[string]string{"Stripchat": "100", "Cam4": "50"},
		Bonuses: map[string]string{"Crypto": "12,5", "Camsoda": "2.5"},
	})

	assert.Equal(t, "22.5", totals.Check)
	assert.Equal(t, "15", totals.BonusesText)
	assert.Equal(t, "7.50", *totals.CheckCalculated)
}

func TestComplete_Idempotent(t *testing.T) {
	calc := NewCalculator(DefaultRates())
	e := storage.Entries{
		Tokens:  map[string]string{"Stripchat": "333", "Livejasmin": "17,7"},
		Bonuses: map[string]string{"Crypto": "4"},
	}

	first := calc.Complete(e)
	second := calc.Complete(e)

	assert.Equal(t, first, second)
}

func TestMismatch(t *testing.T) {
	assert.False(t, Mismatch(strPtr("100"), strPtr("100.004")))
	assert.True(t, Mismatch(strPtr("100"), strPtr("99.5")))
	assert.False(t, Mismatch(nil, strPtr("99.5")))
	assert.False(t, Mismatch(strPtr("100"), nil))
	assert.False(t, Mismatch(strPtr("сто"), strPtr("99.5")))
	assert.True(t, Mismatch(strPtr("10,5"), strPtr("10.00")))
}

func TestSalary(t *testing.T) {
	calc := NewCalculator(DefaultRates())

	assert.InDelta(t, 900, calc.Salary(40, 0, 90), 1e-9)
	assert.InDelta(t, (40.0/4+60.0/6)*90, calc.Salary(40, 60, 90), 1e-9)
}

func TestNewCalculator_ZeroRatesUseDefaults(t *testing.T) {
	calc := NewCalculator(Rates{})

	assert.Equal(t, DefaultRates(), calc.Rates())
}

func TestNormalizeEntries(t *testing.T) {
	e := NormalizeEntries(storage.Entries{
		Tokens:  map[string]string{"Stripchat": "1", "OnlyFans": "2"},
		Bonuses: nil,
	})

	assert.Equal(t, map[string]string{"Stripchat": "1"}, e.Tokens)
	assert.Empty(t, e.Bonuses)
}
