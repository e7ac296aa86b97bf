package domain

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok, "bad test literal %s", s)
	return v
}

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "whole ether", input: "2", expected: "2000000000000000000"},
		{name: "half ether", input: "0.5", expected: "500000000000000000"},
		{name: "one wei", input: "0.000000000000000001", expected: "1"},
		{name: "zero", input: "0", expected: "0"},
		{name: "surrounding spaces", input: " 1.25 ", expected: "1250000000000000000"},
		{name: "trailing zeros beyond wei", input: "1.0000000000000000000", expected: "1000000000000000000"},
		{name: "leading dot", input: ".5", expected: "500000000000000000"},
		{
			name:     "uint256 max",
			input:    "115792089237316195423570985008687907853269984665640564039457.584007913129639935",
			expected: "115792089237316195423570985008687907853269984665640564039457584007913129639935",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBaseUnits(tt.input)
			require.NoError(t, err)
			assert.Equal(t, 0, got.Cmp(mustBig(t, tt.expected)), "got %s", got)
		})
	}
}

func TestToBaseUnits_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "blank", input: "   "},
		{name: "not a number", input: "abc"},
		{name: "negative", input: "-1"},
		{name: "finer than wei", input: "0.0000000000000000001"},
		{name: "exponent", input: "1e3"},
		{name: "negative exponent", input: "5E-1"},
		{name: "huge exponent", input: "1e8000000"},
		{name: "plus sign", input: "+1"},
		{name: "lone dot", input: "."},
		{name: "trailing dot", input: "1."},
		{name: "uint256 overflow", input: "115792089237316195423570985008687907853269984665640564039457.584007913129639936"},
		{name: "far above uint256", input: "1" + strings.Repeat("0", 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToBaseUnits(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestFromBaseUnits(t *testing.T) {
	assert.Equal(t, "2", FromBaseUnits(mustBig(t, "2000000000000000000")))
	assert.Equal(t, "1", FromBaseUnits(mustBig(t, "1000000000000000000")))
	assert.Equal(t, "0.5", FromBaseUnits(mustBig(t, "500000000000000000")))
	assert.Equal(t, "0.000000000000000001", FromBaseUnits(big.NewInt(1)))
	assert.Equal(t, "0", FromBaseUnits(big.NewInt(0)))
	assert.Equal(t, "0", FromBaseUnits(nil))
}

func TestBaseUnitsRoundTrip(t *testing.T) {
	amounts := []string{
		"0", "1", "0.5", "2", "0.1", "0.000000000000000001", "123456789.123456789123456789",
		"1000000", "3.14159", "0.333333333333333333",
	}

	for _, a := range amounts {
		first, err := ToBaseUnits(a)
		require.NoError(t, err, a)

		second, err := ToBaseUnits(FromBaseUnits(first))
		require.NoError(t, err, a)

		assert.Equal(t, 0, first.Cmp(second), "round trip of %s: %s != %s", a, first, second)
	}
}
