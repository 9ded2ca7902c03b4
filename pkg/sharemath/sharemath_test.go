package sharemath

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/shopspring/decimal"
)

func d(v string) decimal.Decimal {
	x, _ := decimal.NewFromString(v)
	return x
}

func TestEmptyPoolDeposit(t *testing.T) {
	shares := ToSharesDown(d("1000000"), decimal.Zero, decimal.Zero)
	assert.Equal(t, "1000000000000", shares.String())

	// withdrawing every share returns exactly the deposit
	assets := ToAssetsDown(shares, d("1000000"), shares)
	assert.Equal(t, "1000000", assets.String())
}

func TestRoundTripNeverProfits(t *testing.T) {
	totalAssets := d("1000000")
	totalShares := d("1000000000000")

	cases := []string{"1", "7", "999", "123457", "1000000"}
	for _, c := range cases {
		t.Run(c, func(t *testing.T) {
			in := d(c)
			shares := ToSharesDown(in, totalAssets, totalShares)
			out := ToAssetsDown(shares, totalAssets.Add(in), totalShares.Add(shares))
			assert.Equal(t, true, out.LessThanOrEqual(in), "round trip minted value")
		})
	}
}

func TestRoundingDirections(t *testing.T) {
	// pool where a single share is worth a fraction of an asset unit
	totalAssets := d("3000000")
	totalShares := d("1000000000000")

	down := ToAssetsDown(d("1000"), totalAssets, totalShares)
	up := ToAssetsUp(d("1000"), totalAssets, totalShares)
	diff := up.Sub(down)
	assert.Equal(t, true, diff.LessThanOrEqual(d("1")), "up and down differ by more than one unit")
	assert.Equal(t, true, diff.GreaterThanOrEqual(decimal.Zero))

	sharesDown := ToSharesDown(d("1000"), totalAssets, totalShares)
	sharesUp := ToSharesUp(d("1000"), totalAssets, totalShares)
	assert.Equal(t, true, sharesUp.GreaterThanOrEqual(sharesDown))
}

func TestInterestShiftsRate(t *testing.T) {
	totalShares := d("1000000000000")

	before := ToAssetsDown(totalShares, d("1000000"), totalShares)
	after := ToAssetsDown(totalShares, d("1100000"), totalShares)
	assert.Equal(t, true, after.GreaterThan(before), "interest must raise share value")
}

func TestExactDivisionHasNoRemainder(t *testing.T) {
	// 2e6 assets, 1e12 shares: one asset is exactly 1e6+ shares scaled
	down := ToSharesDown(d("500000"), d("1000000"), d("1000000000000"))
	up := ToSharesUp(d("500000"), d("1000000"), d("1000000000000"))
	assert.Equal(t, down.String(), up.String())
}
