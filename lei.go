package isomsgsign

// SPDX-License-Identifier: MIT
// Adapted from checkoib.go's ValidateOIB: same running-remainder checksum
// shape, replacing the Croatian OIB's Mod 11,10 algorithm (no longer
// applicable once the module stopped dealing in Croatian tax numbers) with
// the Mod 97-10 (ISO/IEC 7064) check ISO 17442 mandates for a Legal Entity
// Identifier.

// ValidateLEI reports whether lei is a well-formed, checksum-valid Legal
// Entity Identifier: 20 characters, the first 18 alphanumeric and
// LOU-assigned, the last 2 numeric check digits computed per ISO 17442
// using the same Mod 97-10 algorithm IBAN validation uses.
func ValidateLEI(lei string) bool {
	if len(lei) != 20 {
		return false
	}

	remainder := 0
	for i, r := range lei {
		switch {
		case r >= '0' && r <= '9':
			remainder = (remainder*10 + int(r-'0')) % 97
		case r >= 'A' && r <= 'Z' && i < 18:
			// ISO 7064 digit expansion: letters become two digits, A=10 .. Z=35.
			value := int(r-'A') + 10
			remainder = (remainder*10 + value/10) % 97
			remainder = (remainder*10 + value%10) % 97
		default:
			return false
		}
	}

	return remainder == 1
}
