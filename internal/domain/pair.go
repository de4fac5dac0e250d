package domain

import "regexp"

type Pair string

// BluePair is the only pair the service quotes: pesos per US dollar,
// valued at the informal "dolar blue" rate.
const BluePair Pair = "ARS/USD"

var SupportedCurrency = map[string]bool{
	"ARS": true,
	"USD": true,
}

var pairRe = regexp.MustCompile(`^[A-Z]{3}/[A-Z]{3}$`)

func ValidatePair(p string) bool {
	// First validate format via shared precompiled regex
	if !pairRe.MatchString(p) {
		return false
	}
	// Then validate supported currencies and disallow identical base/quote
	base := p[:3]
	quote := p[4:]
	return SupportedCurrency[base] && SupportedCurrency[quote] && base != quote
}

func SplitPair(p string) (base, quote string, ok bool) {
	if !pairRe.MatchString(p) {
		return "", "", false
	}
	return p[:3], p[4:], true
}
