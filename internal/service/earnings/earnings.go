// Package earnings считает доход смены по записям сайтов.
package earnings

import (
	"math"
	"strconv"
	"strings"

	"shift-crm/internal/constants"
	"shift-crm/internal/storage"
)

const (
	TokensPerDollar = 20
	SoloDivisor     = 4
	PairDivisor     = 6

	// MismatchTolerance: допустимое расхождение чека оператора и расчётного.
	MismatchTolerance = 0.01
)

type Rates struct {
	TokensPerDollar float64
	SoloDivisor     float64
	PairDivisor     float64
}

func DefaultRates() Rates {
	return Rates{
		TokensPerDollar: TokensPerDollar,
		SoloDivisor:     SoloDivisor,
		PairDivisor:     PairDivisor,
	}
}

// withDefaults подставляет стандартные значения вместо нулевых.
func (r Rates) withDefaults() Rates {
	d := DefaultRates()
	if r.TokensPerDollar <= 0 {
		r.TokensPerDollar = d.TokensPerDollar
	}
	if r.SoloDivisor <= 0 {
		r.SoloDivisor = d.SoloDivisor
	}
	if r.PairDivisor <= 0 {
		r.PairDivisor = d.PairDivisor
	}
	return r
}

// ParseAmount разбирает свободный ввод: запятая считается десятичным разделителем,
// пустое или нечисловое значение даёт ноль.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}

	return v
}

// parseStrict: то же, но сообщает, было ли значение числом.
func parseStrict(s *string) (float64, bool) {
	if s == nil {
		return 0, false
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(*s, ",", ".")), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}

func Sum(values map[string]string) float64 {
	var total float64
	for _, v := range values {
		total += ParseAmount(v)
	}
	return total
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatAmount: кратчайшая запись числа ("10", "3.5").
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Calculator переводит токены в доллары по курсу Rates.
type Calculator struct {
	rates Rates
}

func NewCalculator(rates Rates) Calculator {
	return Calculator{rates: rates.withDefaults()}
}

func (c Calculator) Rates() Rates {
	return c.rates
}

// Dollars: сумма токенов в долларах, округлённая до центов.
func (c Calculator) Dollars(totalTokens float64) float64 {
	return math.Round(totalTokens*100/c.rates.TokensPerDollar) / 100
}

// DeriveCalculatedCheck: расчётный чек; nil, если токенов нет (нет данных, а не ноль).
func (c Calculator) DeriveCalculatedCheck(tokens map[string]string) *string {
	total := Sum(tokens)
	if total <= 0 {
		return nil
	}

	v := strconv.FormatFloat(c.Dollars(total), 'f', 2, 64)
	return &v
}

// Totals результата смены.
type Totals struct {
	Earnings        float64
	Bonuses         float64
	Check           string
	CheckCalculated *string
	BonusesText     string
}

// Complete считает итоги завершения смены: чек = доход по токенам + бонусы.
func (c Calculator) Complete(e storage.Entries) Totals {
	tokens := Sum(e.Tokens)
	bonuses := Sum(e.Bonuses)

	var earnings float64
	if tokens > 0 {
		earnings = c.Dollars(tokens)
	}

	return Totals{
		Earnings:        earnings,
		Bonuses:         bonuses,
		Check:           FormatAmount(Round2(earnings + bonuses)),
		CheckCalculated: c.DeriveCalculatedCheck(e.Tokens),
		BonusesText:     FormatAmount(bonuses),
	}
}

// Salary: зарплата в местной валюте.
func (c Calculator) Salary(solo, pair, exchangeRate float64) float64 {
	return (solo/c.rates.SoloDivisor + pair/c.rates.PairDivisor) * exchangeRate
}

// Mismatch: чек оператора расходится с расчётным больше допуска.
// Только для подсветки, ничего не блокирует.
func Mismatch(check, calculated *string) bool {
	a, ok := parseStrict(check)
	if !ok {
		return false
	}
	b, ok := parseStrict(calculated)
	if !ok {
		return false
	}

	return math.Abs(a-b) > MismatchTolerance+1e-9
}

// NormalizeEntries оставляет только известные сайты.
func NormalizeEntries(e storage.Entries) storage.Entries {
	return storage.Entries{
		Tokens:  filterSites(e.Tokens),
		Bonuses: filterSites(e.Bonuses),
	}
}

func filterSites(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for site, v := range m {
		if constants.IsSite(site) {
			out[site] = v
		}
	}
	return out
}
