package domain

import (
	"fmt"
	"strings"
)

// Valid currency codes (ISO 4217).
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "RUB": true, "TRY": true, "HKD": true,
	"KES": true, "NGN": true, "TZS": true, "UGX": true,
}

// Currencies whose minor unit is not the default two decimal places.
var currencyMinorUnits = map[string]int32{
	"JPY": 0,
	"KRW": 0,
	"UGX": 0,
}

// ValidateCurrency validates a currency code.
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a valid ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// MinorUnits returns the number of decimal places amounts in the given
// currency are rounded to when posted.
func MinorUnits(currency string) int32 {
	if units, ok := currencyMinorUnits[strings.ToUpper(currency)]; ok {
		return units
	}

	return 2
}
