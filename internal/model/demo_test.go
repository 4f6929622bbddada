package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoUser(t *testing.T) {
	now := time.Date(2024, 1, 16, 12, 0, 0, 0, time.UTC)
	u := DemoUser(now)

	assert.Equal(t, "Oluwasegun Lawrence", u.Name)
	assert.Equal(t, "1200000", u.AccountBalance.String())
	assert.Equal(t, KindDeposit, u.RecentTransaction.Type)
	assert.True(t, u.RecentTransaction.Timestamp.Equal(now.Add(-24*time.Hour)))
}

func TestFlexibleSavingsContext(t *testing.T) {
	rec := FlexibleSavings(DemoUser(time.Now()))
	assert.Contains(t, rec.Context, "₦15,000")
	assert.Equal(t, "5000", rec.MinimumAmount.String())
	assert.Len(t, rec.Benefits, 5)
}

func TestSimulateTransaction(t *testing.T) {
	plan := FlexibleSavings(DemoUser(time.Now()))

	fixed := SimulateTransaction(plan, decimal.NewFromInt(7_500))
	assert.True(t, fixed.Success)
	assert.Equal(t, "7500", fixed.Amount.String())
	assert.Equal(t, "Flexible Savings Plan", fixed.PlanName)

	for i := 0; i < 20; i++ {
		random := SimulateTransaction(plan, decimal.Zero)
		require.True(t, random.Amount.GreaterThanOrEqual(decimal.NewFromInt(5_000)), random.Amount.String())
		require.True(t, random.Amount.LessThanOrEqual(decimal.NewFromInt(50_000)), random.Amount.String())
		assert.True(t, random.Amount.Mod(decimal.NewFromInt(1_000)).IsZero())
	}
}

func TestNormalizeProductType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"mutual fund", ProductTypeMutualFund},
		{"MUTUAL_FUND", ProductTypeMutualFund},
		{" Fixed-Deposit ", ProductTypeFixedDeposit},
		{"treasury bill", "treasury bill"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeProductType(tt.in), "NormalizeProductType(%q)", tt.in)
	}
}

func TestDateUnmarshal(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalJSON([]byte(`"2025-06-30"`)))
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, time.June, d.Month())

	require.NoError(t, d.UnmarshalJSON([]byte(`"2025-07-01T10:00:00Z"`)))
	assert.Equal(t, 1, d.Day())

	require.NoError(t, d.UnmarshalJSON([]byte(`null`)))
	assert.True(t, d.IsZero())

	assert.Error(t, d.UnmarshalJSON([]byte(`"next tuesday"`)))
}

func TestAverageSize(t *testing.T) {
	tx := FeedTransactions{TotalTransactions: 4, MonthlyVolume: decimal.NewFromInt(60_000)}
	assert.Equal(t, "15000", tx.AverageSize().String())
	assert.True(t, FeedTransactions{}.AverageSize().IsZero())
}
