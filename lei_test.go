package isomsgsign

// SPDX-License-Identifier: MIT

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateLEIAcceptsValidCheckDigits(t *testing.T) {
	require.True(t, ValidateLEI("12345678901234567888"))
	require.True(t, ValidateLEI("98765432109876543246"))
}

func TestValidateLEIRejectsWrongCheckDigits(t *testing.T) {
	require.False(t, ValidateLEI("12345678901234567800"))
}

func TestValidateLEIRejectsWrongLength(t *testing.T) {
	require.False(t, ValidateLEI("1234567890"))
}

func TestValidateLEIRejectsNonAlphanumeric(t *testing.T) {
	require.False(t, ValidateLEI("1234567890123456788!"))
}
