package rates

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/shopspring/decimal"
)

func TestUtilizationRate(t *testing.T) {
	u := UtilizationRate(decimal.NewFromInt(1000), decimal.NewFromInt(250))
	assert.Equal(t, "0.25", u.String())

	assert.Equal(t, "0", UtilizationRate(decimal.Zero, decimal.NewFromInt(250)).String())
}

func TestBorrowAPR(t *testing.T) {
	// 1% earned on the borrow over one year annualizes to 1%
	apr := BorrowAPR(decimal.NewFromInt(100), decimal.NewFromInt(10000), 31536000)
	assert.Equal(t, "0.01", apr.String())

	assert.Equal(t, "0", BorrowAPR(decimal.NewFromInt(100), decimal.Zero, 3600).String())
	assert.Equal(t, "0", BorrowAPR(decimal.NewFromInt(100), decimal.NewFromInt(10000), 0).String())
}

func TestSupplyAPR(t *testing.T) {
	borrowRate := decimal.NewFromFloat(0.08)
	utilization := decimal.NewFromFloat(0.5)
	fee := decimal.NewFromFloat(0.1)

	// 0.08 * 0.5 * 0.9
	assert.Equal(t, "0.036", SupplyAPR(borrowRate, utilization, fee).String())

	// without a fee the full utilization-weighted rate flows to suppliers
	assert.Equal(t, "0.04", SupplyAPR(borrowRate, utilization, decimal.Zero).String())
}
