package sale_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playtimeuy/payments/internal/sale"
)

func TestFlatPolicy_Split(t *testing.T) {
	policy := sale.FlatPolicy{Base: decimal.NewFromInt(750)}

	tests := []struct {
		name           string
		finalPrice     decimal.Decimal
		wantCommission string
		wantErr        bool
	}{
		{name: "AboveBase", finalPrice: decimal.NewFromInt(1000), wantCommission: "250"},
		{name: "EqualBase", finalPrice: decimal.NewFromInt(750), wantCommission: "0"},
		{name: "Fractional", finalPrice: decimal.RequireFromString("999.99"), wantCommission: "249.99"},
		{name: "BelowBase", finalPrice: decimal.NewFromInt(749), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split, err := policy.Split(tt.finalPrice)
			if tt.wantErr {
				assert.ErrorIs(t, err, sale.ErrBelowBasePrice)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantCommission, split.Commission.String())
			assert.True(t, split.Net.Equal(decimal.NewFromInt(750)))
			assert.True(t, split.Commission.Add(split.Net).Equal(tt.finalPrice))
		})
	}
}

func TestPercentagePolicy_Split(t *testing.T) {
	policy := sale.PercentagePolicy{PlatformShare: decimal.RequireFromString("0.20")}

	split, err := policy.Split(decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.Equal(t, "200", split.Net.String())
	assert.Equal(t, "800", split.Commission.String())

	split, err = policy.Split(decimal.RequireFromString("333.33"))
	require.NoError(t, err)
	assert.Equal(t, "66.67", split.Net.String())
	assert.Equal(t, "266.66", split.Commission.String())

	_, err = policy.Split(decimal.Zero)
	assert.Error(t, err)
}

func TestNewSplitPolicy(t *testing.T) {
	base := decimal.NewFromInt(750)
	share := decimal.RequireFromString("0.2")

	p, err := sale.NewSplitPolicy(sale.PolicyFlat, base, share)
	require.NoError(t, err)
	assert.Equal(t, sale.PolicyFlat, p.Name())

	p, err = sale.NewSplitPolicy(sale.PolicyPercentage, base, share)
	require.NoError(t, err)
	assert.Equal(t, sale.PolicyPercentage, p.Name())

	_, err = sale.NewSplitPolicy(sale.PolicyPercentage, base, decimal.NewFromInt(2))
	assert.Error(t, err)

	_, err = sale.NewSplitPolicy("tiered", base, share)
	assert.Error(t, err)
}
