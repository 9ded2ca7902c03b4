package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// RateSide which side of the market the rate applies to
type RateSide string

const (
	// RateSideLender rate earned by suppliers
	RateSideLender RateSide = "LENDER"
	// RateSideBorrower rate paid by borrowers
	RateSideBorrower RateSide = "BORROWER"
)

// InterestRate a per-market rate observation. One live row per
// (market, side); snapshot rows carry a bucket-suffixed RateID and are
// never updated.
type InterestRate struct {
	ID       uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	RateID   string          `sql:"size:200;unique_index:rate_idx" json:"rate_id"`
	MarketID string          `sql:"size:128;index:idx_rates_market" json:"market_id"`
	Side     RateSide        `sql:"size:16" json:"side"`
	// Rate annualized fraction, 0.05 means 5%
	Rate decimal.Decimal `sql:"type:decimal(20,16)" json:"rate"`

	BlockNumber int64     `sql:"default:0" json:"block_number"`
	Timestamp   time.Time `json:"timestamp"`
	CreatedAt   time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IRateStore interest rate store interface
type IRateStore interface {
	// Save upserts by RateID
	Save(ctx context.Context, tx *db.DB, rate *InterestRate) error
	Find(ctx context.Context, rateID string) (*InterestRate, error)
	ListByMarket(ctx context.Context, marketID string, limit int) ([]*InterestRate, error)
}
