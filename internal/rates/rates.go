package rates

import (
	"github.com/shopspring/decimal"
)

var (
	// SecondsPerYear seconds per year
	SecondsPerYear = decimal.NewFromInt(31536000)
	// MaxPrecision max precision
	MaxPrecision int32 = 16
)

// UtilizationRate utilization rate
// utilization_rate = market.total_borrow / market.total_supply
func UtilizationRate(totalSupply, totalBorrow decimal.Decimal) decimal.Decimal {
	if totalSupply.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	return totalBorrow.Div(totalSupply).Truncate(MaxPrecision)
}

// BorrowAPR annualized borrow rate inferred from one accrual:
// interest earned over elapsed seconds against the outstanding borrow.
func BorrowAPR(interest, totalBorrow decimal.Decimal, elapsedSeconds int64) decimal.Decimal {
	if totalBorrow.LessThanOrEqual(decimal.Zero) || elapsedSeconds <= 0 {
		return decimal.Zero
	}

	perSecond := interest.Div(totalBorrow).Div(decimal.NewFromInt(elapsedSeconds))
	return perSecond.Mul(SecondsPerYear).Truncate(MaxPrecision)
}

// SupplyAPR supply rate
// supply_rate = borrow_rate * utilization_rate * (1 - fee)
func SupplyAPR(borrowRate, utilizationRate, fee decimal.Decimal) decimal.Decimal {
	oneMinusFee := decimal.NewFromInt(1).Sub(fee)
	return borrowRate.Mul(utilizationRate).Mul(oneMinusFee).Truncate(MaxPrecision)
}
