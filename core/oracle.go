package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Price last observed usd price of an asset
type Price struct {
	ID       uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID  string          `sql:"size:128;unique_index:price_idx" json:"asset_id"`
	PriceUSD decimal.Decimal `sql:"type:decimal(32,12)" json:"price_usd"`

	BlockNumber int64     `sql:"default:0" json:"block_number"`
	Timestamp   time.Time `json:"timestamp"`
	UpdatedAt   time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// PriceTicker remote feed payload
type PriceTicker struct {
	AssetID string          `json:"asset_id"`
	Price   decimal.Decimal `json:"price"`
}

// IPriceStore price store interface
type IPriceStore interface {
	// Save upserts by AssetID, keeping only the newest observation
	Save(ctx context.Context, tx *db.DB, price *Price) error
	Find(ctx context.Context, assetID string) (*Price, error)
	All(ctx context.Context) ([]*Price, error)
}

// IPriceOracleService asset pricing.
//
// GetPrice never fails hard on a feed outage: it falls back to the last
// persisted observation, and to zero when the asset was never priced.
// A zero price leaves usd valuations at zero rather than blocking the
// ledger.
type IPriceOracleService interface {
	GetPrice(ctx context.Context, assetID string) (decimal.Decimal, error)
	// PullPrices refreshes the cached prices from the remote feed and
	// persists them.
	PullPrices(ctx context.Context) error
}
