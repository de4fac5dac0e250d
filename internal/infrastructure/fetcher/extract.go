package fetcher

import (
	"errors"
	"regexp"
	"strings"

	"dolarcaro-service/internal/domain"

	"github.com/shopspring/decimal"
)

var errNoPrice = errors.New("no price pattern matched")

// pricePattern pairs a compiled regex with a short name for logs.
type pricePattern struct {
	name string
	re   *regexp.Regexp
}

func pattern(name, expr string) *pricePattern {
	return &pricePattern{name: name, re: regexp.MustCompile(expr)}
}

// Generic patterns applied after any store-specific ones. Retail pages
// shift markup often, so extraction degrades from structured metadata
// to a plain currency-sign scan.
func genericPatterns() []*pricePattern {
	return []*pricePattern{
		pattern("itemprop", `itemprop="price"[^>]*content="([0-9][0-9.,]*)"`),
		pattern("json_price", `"price"\s*:\s*"?([0-9][0-9.,]*)"?`),
		pattern("currency_sign", `\$\s*([0-9][0-9.,]*)`),
	}
}

// extractPrice tries each pattern in priority order against the page
// body and returns the first positive amount that parses.
func extractPrice(body []byte, patterns []*pricePattern, locale domain.Locale) (decimal.Decimal, error) {
	for _, p := range patterns {
		m := p.re.FindSubmatch(body)
		if len(m) < 2 {
			continue
		}
		amount, err := parseAmount(string(m[1]), locale)
		if err != nil || amount.Sign() <= 0 {
			continue
		}
		return amount, nil
	}
	return decimal.Decimal{}, errNoPrice
}

// parseAmount normalizes a displayed amount by locale convention:
// es-AR uses "." for thousands and "," for decimals ("199.999,50"),
// en-US the inverse ("1,099.99").
func parseAmount(s string, locale domain.Locale) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if locale == domain.LocaleOrigin {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	// A trailing separator from a greedy match ("199.999," -> "199999.")
	s = strings.TrimRight(s, ".")
	return decimal.NewFromString(s)
}
