package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActivityPriceRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		displayed float64
		cents     int64
	}{
		{name: "two decimal places", displayed: 99.99, cents: 9999},
		{name: "whole amount", displayed: 150, cents: 15000},
		{name: "zero", displayed: 0, cents: 0},
		{name: "single cent", displayed: 0.01, cents: 1},
		{name: "float noise rounds to nearest cent", displayed: 19.90, cents: 1990},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Activity
			a.SetPrice(tt.displayed)
			require.Equal(t, tt.cents, a.PriceCents)
			require.InDelta(t, tt.displayed, a.Price(), 0.0001)
		})
	}
}

func TestPriceToCentsRounding(t *testing.T) {
	// 0.1 + 0.2 style float error must not lose a cent.
	require.Equal(t, int64(30), PriceToCents(0.1+0.2))
	require.Equal(t, int64(1005), PriceToCents(10.049))
}
