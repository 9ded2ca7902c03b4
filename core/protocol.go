package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Protocol protocol wide aggregates, a single row per deployment.
//
// Totals are recomputed by a full re-sum over every market on each
// state-changing event; the market count stays small so the simplicity
// wins over incremental deltas.
type Protocol struct {
	ID   uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Name string `sql:"size:64;unique_index:protocol_idx" json:"name"`
	// FeeRecipient account credited with minted fee shares
	FeeRecipient string `sql:"size:128" json:"fee_recipient"`

	TotalValueLockedUSD    decimal.Decimal `sql:"type:decimal(32,8)" json:"total_value_locked_usd"`
	TotalDepositBalanceUSD decimal.Decimal `sql:"type:decimal(32,8)" json:"total_deposit_balance_usd"`
	TotalBorrowBalanceUSD  decimal.Decimal `sql:"type:decimal(32,8)" json:"total_borrow_balance_usd"`

	CumulativeDepositUSD             decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_deposit_usd"`
	CumulativeBorrowUSD              decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_borrow_usd"`
	CumulativeLiquidateUSD           decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_liquidate_usd"`
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

	CumulativeUniqueUsers       int64 `sql:"default:0" json:"cumulative_unique_users"`
	CumulativeUniqueDepositors  int64 `sql:"default:0" json:"cumulative_unique_depositors"`
	CumulativeUniqueBorrowers   int64 `sql:"default:0" json:"cumulative_unique_borrowers"`
	CumulativeUniqueLiquidators int64 `sql:"default:0" json:"cumulative_unique_liquidators"`
	CumulativeUniqueLiquidatees int64 `sql:"default:0" json:"cumulative_unique_liquidatees"`

	CumulativePositionCount int64 `sql:"default:0" json:"cumulative_position_count"`
	OpenPositionCount       int64 `sql:"default:0" json:"open_position_count"`
	TotalPoolCount          int64 `sql:"default:0" json:"total_pool_count"`

	Version   int64     `sql:"default:0" json:"version"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IProtocolStore protocol store interface
type IProtocolStore interface {
	// Get returns the protocol row, creating a zero-valued one on first use.
	Get(ctx context.Context) (*Protocol, error)
	Update(ctx context.Context, tx *db.DB, protocol *Protocol) error
}
