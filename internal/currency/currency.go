// Package currency converts USD catalog amounts for display.
package currency

import (
	"errors"
	"fmt"
	"github.com/shopspring/decimal"
	"strings"
)

var ErrUnsupportedCurrency = errors.New("unsupported currency")

type Code string

const (
	USD Code = "USD"
	INR Code = "INR"
)

type rate struct {
	perUSD decimal.Decimal
	symbol string
	indian bool // 12,34,567 grouping
}

var rates = map[Code]rate{
	USD: {perUSD: decimal.NewFromInt(1), symbol: "$"},
	INR: {perUSD: decimal.RequireFromString("83.50"), symbol: "₹", indian: true},
}

// Parse accepts a currency code in any case. Empty means USD.
func Parse(s string) (Code, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return USD, nil
	}
	if _, ok := rates[Code(s)]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCurrency, s)
	}
	return Code(s), nil
}

// Convert returns usd in the target currency rounded to cents.
func Convert(usd decimal.Decimal, c Code) (decimal.Decimal, error) {
	r, ok := rates[c]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, c)
	}
	return usd.Mul(r.perUSD).Round(2), nil
}

// Format converts and renders the amount with symbol and grouping,
// e.g. "$1,299.99" or "₹1,08,549.17".
func Format(usd decimal.Decimal, c Code) (string, error) {
	amt, err := Convert(usd, c)
	if err != nil {
		return "", err
	}
	r := rates[c]
	sign := ""
	if amt.IsNegative() {
		sign = "-"
		amt = amt.Neg()
	}
	s := amt.StringFixed(2)
	whole, frac := s[:len(s)-3], s[len(s)-2:]
	return sign + r.symbol + group(whole, r.indian) + "." + frac, nil
}

func group(digits string, indian bool) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	size := 3
	if indian {
		size = 2
	}
	var parts []string
	for len(head) > size {
		parts = append([]string{head[len(head)-size:]}, parts...)
		head = head[:len(head)-size]
	}
	parts = append([]string{head}, parts...)
	return strings.Join(append(parts, tail), ",")
}
