package isomsgsign

// SPDX-License-Identifier: MIT

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidAmountFormat(t *testing.T) {
	require.True(t, IsValidAmountFormat("100.00"))
	require.True(t, IsValidAmountFormat("0"))
	require.True(t, IsValidAmountFormat("100.12345"))
	require.False(t, IsValidAmountFormat("100.123456"))
	require.False(t, IsValidAmountFormat("-100.00"))
	require.False(t, IsValidAmountFormat("abc"))
	require.False(t, IsValidAmountFormat(""))
}
