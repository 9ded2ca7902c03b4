package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Market a lending pool pairing one collateral asset and one loan asset.
//
// Share/asset totals are integer-valued decimals in native token units.
// Invariant: TotalSupplyShares == 0 implies TotalSupply == 0, modulo the
// virtual offsets used by share math.
type Market struct {
	ID       uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	MarketID string `sql:"size:128;unique_index:market_idx" json:"market_id"`

	LoanAssetID        string `sql:"size:128" json:"loan_asset_id"`
	CollateralAssetID  string `sql:"size:128" json:"collateral_asset_id"`
	LoanDecimals       int32  `sql:"default:0" json:"loan_decimals"`
	CollateralDecimals int32  `sql:"default:0" json:"collateral_decimals"`
	OracleID           string `sql:"size:128" json:"oracle_id"`
	RateModelID        string `sql:"size:128" json:"rate_model_id"`
	// LLTV liquidation loan-to-value threshold, fraction in (0, 1)
	LLTV decimal.Decimal `sql:"type:decimal(20,8)" json:"lltv"`

	TotalSupply       decimal.Decimal `sql:"type:decimal(64,0)" json:"total_supply"`
	TotalSupplyShares decimal.Decimal `sql:"type:decimal(64,0)" json:"total_supply_shares"`
	TotalBorrow       decimal.Decimal `sql:"type:decimal(64,0)" json:"total_borrow"`
	TotalBorrowShares decimal.Decimal `sql:"type:decimal(64,0)" json:"total_borrow_shares"`
	TotalCollateral   decimal.Decimal `sql:"type:decimal(64,0)" json:"total_collateral"`
	// Interest accumulated interest since market creation
	Interest decimal.Decimal `sql:"type:decimal(64,0)" json:"interest"`
	// Fee protocol fee taken on accrued interest, fraction in [0, 1)
	Fee decimal.Decimal `sql:"type:decimal(20,8)" json:"fee"`

	LoanPriceUSD       decimal.Decimal `sql:"type:decimal(32,12)" json:"loan_price_usd"`
	CollateralPriceUSD decimal.Decimal `sql:"type:decimal(32,12)" json:"collateral_price_usd"`

	TotalValueLockedUSD    decimal.Decimal `sql:"type:decimal(32,8)" json:"total_value_locked_usd"`
	TotalDepositBalanceUSD decimal.Decimal `sql:"type:decimal(32,8)" json:"total_deposit_balance_usd"`
	TotalBorrowBalanceUSD  decimal.Decimal `sql:"type:decimal(32,8)" json:"total_borrow_balance_usd"`

	CumulativeDepositUSD             decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_deposit_usd"`
	CumulativeBorrowUSD              decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_borrow_usd"`
	CumulativeLiquidateUSD           decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_liquidate_usd"`
	CumulativeFlashloanUSD           decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_flashloan_usd"`
	CumulativeTransferUSD            decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_transfer_usd"`
	CumulativeSupplySideRevenueUSD   decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_supply_side_revenue_usd"`
	CumulativeProtocolSideRevenueUSD decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_protocol_side_revenue_usd"`
	CumulativeTotalRevenueUSD        decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_total_revenue_usd"`

	DepositCount     int64 `sql:"default:0" json:"deposit_count"`
	WithdrawCount    int64 `sql:"default:0" json:"withdraw_count"`
	BorrowCount      int64 `sql:"default:0" json:"borrow_count"`
	RepayCount       int64 `sql:"default:0" json:"repay_count"`
	LiquidationCount int64 `sql:"default:0" json:"liquidation_count"`
	TransferCount    int64 `sql:"default:0" json:"transfer_count"`
	FlashloanCount   int64 `sql:"default:0" json:"flashloan_count"`
	TransactionCount int64 `sql:"default:0" json:"transaction_count"`

	PositionCount           int64 `sql:"default:0" json:"position_count"`
	OpenPositionCount       int64 `sql:"default:0" json:"open_position_count"`
	ClosedPositionCount     int64 `sql:"default:0" json:"closed_position_count"`
	LendingPositionCount    int64 `sql:"default:0" json:"lending_position_count"`
	BorrowingPositionCount  int64 `sql:"default:0" json:"borrowing_position_count"`
	CollateralPositionCount int64 `sql:"default:0" json:"collateral_position_count"`

	CumulativeUniqueUsers        int64 `sql:"default:0" json:"cumulative_unique_users"`
	CumulativeUniqueDepositors   int64 `sql:"default:0" json:"cumulative_unique_depositors"`
	CumulativeUniqueBorrowers    int64 `sql:"default:0" json:"cumulative_unique_borrowers"`
	CumulativeUniqueLiquidators  int64 `sql:"default:0" json:"cumulative_unique_liquidators"`
	CumulativeUniqueLiquidatees  int64 `sql:"default:0" json:"cumulative_unique_liquidatees"`
	CumulativeUniqueTransferrers int64 `sql:"default:0" json:"cumulative_unique_transferrers"`
	CumulativeUniqueFlashloaners int64 `sql:"default:0" json:"cumulative_unique_flashloaners"`

	SupplyRate      decimal.Decimal `sql:"type:decimal(20,16)" json:"supply_rate"`
	BorrowRate      decimal.Decimal `sql:"type:decimal(20,16)" json:"borrow_rate"`
	UtilizationRate decimal.Decimal `sql:"type:decimal(20,16)" json:"utilization_rate"`

	LastUpdate  time.Time `json:"last_update"`
	BlockNumber int64     `sql:"default:0" json:"block_number"`
	Version     int64     `sql:"default:0" json:"version"`
	CreatedAt   time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// LoanAmountUSD value of a loan-asset amount at the market's current price
func (m *Market) LoanAmountUSD(amount decimal.Decimal) decimal.Decimal {
	return amount.Shift(-m.LoanDecimals).Mul(m.LoanPriceUSD)
}

// CollateralAmountUSD value of a collateral amount at the current price
func (m *Market) CollateralAmountUSD(amount decimal.Decimal) decimal.Decimal {
	return amount.Shift(-m.CollateralDecimals).Mul(m.CollateralPriceUSD)
}

// IMarketStore market store interface
type IMarketStore interface {
	Save(ctx context.Context, tx *db.DB, market *Market) error
	Find(ctx context.Context, marketID string) (*Market, error)
	All(ctx context.Context) ([]*Market, error)
	AllAsMap(ctx context.Context) (map[string]*Market, error)
	Update(ctx context.Context, tx *db.DB, market *Market) error
}

// IMarketService market level bookkeeping
type IMarketService interface {
	// UpdateMarketAndProtocolData refreshes usd valuations and interest
	// rates on the market, then re-sums protocol totals over all markets.
	// It must run after the market's share/asset totals were updated for
	// the current event.
	UpdateMarketAndProtocolData(ctx context.Context, tx *db.DB, event *Event, market *Market, protocol *Protocol) error
	// AccrueInterest applies an interest accrual event: bumps market
	// totals, attributes revenue and mints fee shares when a fee is set.
	AccrueInterest(ctx context.Context, tx *db.DB, event *Event, market *Market, protocol *Protocol) error
}
