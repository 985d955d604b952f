package isomsgsign

// SPDX-License-Identifier: MIT
// Adapted from checkcurrency.go's IsValidCurrencyFormat: same
// regexp-validated-decimal-string shape, generalized from a fixed
// two-decimal-place format to ISO 20022's ActiveCurrencyAndAmount, which
// allows zero to five fractional digits.

import "regexp"

var validAmountFormat = regexp.MustCompile(`^\d+(\.\d{1,5})?$`)

// IsValidAmountFormat reports whether amount is a syntactically valid ISO
// 20022 ActiveCurrencyAndAmount decimal string: one or more integer digits,
// optionally followed by a decimal point and one to five fractional digits.
// It does not check currency-specific minor-unit conventions.
func IsValidAmountFormat(amount string) bool {
	return validAmountFormat.MatchString(amount)
}
