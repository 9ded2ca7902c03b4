package sharemath

import (
	"github.com/shopspring/decimal"
)

// Virtual offsets added to pool totals before every conversion. They keep
// the exchange rate defined on an empty pool and bound the profit of
// share-price manipulation.
var (
	VirtualShares = decimal.New(1, 6)
	VirtualAssets = decimal.New(1, 0)

	one = decimal.New(1, 0)
)

// mulDivDown floor(x * y / d), exact integer arithmetic
func mulDivDown(x, y, d decimal.Decimal) decimal.Decimal {
	q, _ := x.Mul(y).QuoRem(d, 0)
	return q
}

// mulDivUp ceil(x * y / d), exact integer arithmetic
func mulDivUp(x, y, d decimal.Decimal) decimal.Decimal {
	q, r := x.Mul(y).QuoRem(d, 0)
	if !r.IsZero() {
		q = q.Add(one)
	}
	return q
}

// ToSharesDown converts assets to shares, rounding against the caller
func ToSharesDown(assets, totalAssets, totalShares decimal.Decimal) decimal.Decimal {
	return mulDivDown(assets, totalShares.Add(VirtualShares), totalAssets.Add(VirtualAssets))
}

// ToSharesUp converts assets to shares, rounding in favor of the caller
func ToSharesUp(assets, totalAssets, totalShares decimal.Decimal) decimal.Decimal {
	return mulDivUp(assets, totalShares.Add(VirtualShares), totalAssets.Add(VirtualAssets))
}

// ToAssetsDown converts shares to assets, rounding against the caller
func ToAssetsDown(shares, totalAssets, totalShares decimal.Decimal) decimal.Decimal {
	return mulDivDown(shares, totalAssets.Add(VirtualAssets), totalShares.Add(VirtualShares))
}

// ToAssetsUp converts shares to assets, rounding in favor of the pool
func ToAssetsUp(shares, totalAssets, totalShares decimal.Decimal) decimal.Decimal {
	return mulDivUp(shares, totalAssets.Add(VirtualAssets), totalShares.Add(VirtualShares))
}
