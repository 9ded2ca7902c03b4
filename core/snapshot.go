package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// MarketHourlySnapshot per-market hour bucket rollup.
//
// Cumulative fields are copied from the live market on every touch;
// Hourly* fields start at zero when the bucket row is first created and
// accumulate within the bucket.
type MarketHourlySnapshot struct {
	ID         uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	SnapshotID string `sql:"size:200;unique_index:market_hourly_idx" json:"snapshot_id"`
	MarketID   string `sql:"size:128;index:idx_market_hourly_market" json:"market_id"`
	Hours      int64  `sql:"default:0" json:"hours"`

	TotalValueLockedUSD              decimal.Decimal `sql:"type:decimal(32,8)" json:"total_value_locked_usd"`
	TotalDepositBalanceUSD           decimal.Decimal `sql:"type:decimal(32,8)" json:"total_deposit_balance_usd"`
	TotalBorrowBalanceUSD            decimal.Decimal `sql:"type:decimal(32,8)" json:"total_borrow_balance_usd"`
	CumulativeDepositUSD             decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_deposit_usd"`
	CumulativeBorrowUSD              decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_borrow_usd"`
	CumulativeLiquidateUSD           decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_liquidate_usd"`
	CumulativeSupplySideRevenueUSD   decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_supply_side_revenue_usd"`
	CumulativeProtocolSideRevenueUSD decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_protocol_side_revenue_usd"`
	CumulativeTotalRevenueUSD        decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_total_revenue_usd"`

	HourlyDepositUSD              decimal.Decimal `sql:"type:decimal(32,8)" json:"hourly_deposit_usd"`
	HourlyWithdrawUSD             decimal.Decimal `sql:"type:decimal(32,8)" json:"hourly_withdraw_usd"`
	HourlyBorrowUSD               decimal.Decimal `sql:"type:decimal(32,8)" json:"hourly_borrow_usd"`
	HourlyRepayUSD                decimal.Decimal `sql:"type:decimal(32,8)" json:"hourly_repay_usd"`
	HourlyLiquidateUSD            decimal.Decimal `sql:"type:decimal(32,8)" json:"hourly_liquidate_usd"`
	HourlyTransferUSD             decimal.Decimal `sql:"type:decimal(32,8)" json:"hourly_transfer_usd"`
	HourlyFlashloanUSD            decimal.Decimal `sql:"type:decimal(32,8)" json:"hourly_flashloan_usd"`
	HourlySupplySideRevenueUSD    decimal.Decimal `sql:"type:decimal(32,8)" json:"hourly_supply_side_revenue_usd"`
	HourlyProtocolSideRevenueUSD  decimal.Decimal `sql:"type:decimal(32,8)" json:"hourly_protocol_side_revenue_usd"`
	HourlyTotalRevenueUSD         decimal.Decimal `sql:"type:decimal(32,8)" json:"hourly_total_revenue_usd"`

	BlockNumber int64     `sql:"default:0" json:"block_number"`
	Timestamp   time.Time `json:"timestamp"`
	CreatedAt   time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// MarketDailySnapshot per-market day bucket rollup
type MarketDailySnapshot struct {
	ID         uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	SnapshotID string `sql:"size:200;unique_index:market_daily_idx" json:"snapshot_id"`
	MarketID   string `sql:"size:128;index:idx_market_daily_market" json:"market_id"`
	Days       int64  `sql:"default:0" json:"days"`

	TotalValueLockedUSD              decimal.Decimal `sql:"type:decimal(32,8)" json:"total_value_locked_usd"`
	TotalDepositBalanceUSD           decimal.Decimal `sql:"type:decimal(32,8)" json:"total_deposit_balance_usd"`
	TotalBorrowBalanceUSD            decimal.Decimal `sql:"type:decimal(32,8)" json:"total_borrow_balance_usd"`
	CumulativeDepositUSD             decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_deposit_usd"`
	CumulativeBorrowUSD              decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_borrow_usd"`
	CumulativeLiquidateUSD           decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_liquidate_usd"`
	CumulativeFlashloanUSD           decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_flashloan_usd"`
	CumulativeTransferUSD            decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_transfer_usd"`
	CumulativeSupplySideRevenueUSD   decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_supply_side_revenue_usd"`
	CumulativeProtocolSideRevenueUSD decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_protocol_side_revenue_usd"`
	CumulativeTotalRevenueUSD        decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_total_revenue_usd"`

	DailyDepositUSD     decimal.Decimal `sql:"type:decimal(32,8)" json:"daily_deposit_usd"`
	DailyNativeDeposit  decimal.Decimal `sql:"type:decimal(64,0)" json:"daily_native_deposit"`
	DailyWithdrawUSD    decimal.Decimal `sql:"type:decimal(32,8)" json:"daily_withdraw_usd"`
	DailyNativeWithdraw decimal.Decimal `sql:"type:decimal(64,0)" json:"daily_native_withdraw"`
	DailyBorrowUSD      decimal.Decimal `sql:"type:decimal(32,8)" json:"daily_borrow_usd"`
	DailyNativeBorrow   decimal.Decimal `sql:"type:decimal(64,0)" json:"daily_native_borrow"`
	DailyRepayUSD       decimal.Decimal `sql:"type:decimal(32,8)" json:"daily_repay_usd"`
	DailyNativeRepay    decimal.Decimal `sql:"type:decimal(64,0)" json:"daily_native_repay"`
	DailyLiquidateUSD   decimal.Decimal `sql:"type:decimal(32,8)" json:"daily_liquidate_usd"`
	DailyNativeLiquidate decimal.Decimal `sql:"type:decimal(64,0)" json:"daily_native_liquidate"`
	DailyTransferUSD    decimal.Decimal `sql:"type:decimal(32,8)" json:"daily_transfer_usd"`
	DailyNativeTransfer decimal.Decimal `sql:"type:decimal(64,0)" json:"daily_native_transfer"`
	DailyFlashloanUSD   decimal.Decimal `sql:"type:decimal(32,8)" json:"daily_flashloan_usd"`
	DailyNativeFlashloan decimal.Decimal `sql:"type:decimal(64,0)" json:"daily_native_flashloan"`

	DailySupplySideRevenueUSD   decimal.Decimal `sql:"type:decimal(32,8)" json:"daily_supply_side_revenue_usd"`
	DailyProtocolSideRevenueUSD decimal.Decimal `sql:"type:decimal(32,8)" json:"daily_protocol_side_revenue_usd"`
	DailyTotalRevenueUSD        decimal.Decimal `sql:"type:decimal(32,8)" json:"daily_total_revenue_usd"`

	DailyActiveUsers        int64 `sql:"default:0" json:"daily_active_users"`
	DailyActiveDepositors   int64 `sql:"default:0" json:"daily_active_depositors"`
	DailyActiveBorrowers    int64 `sql:"default:0" json:"daily_active_borrowers"`
	DailyActiveLiquidators  int64 `sql:"default:0" json:"daily_active_liquidators"`
	DailyActiveLiquidatees  int64 `sql:"default:0" json:"daily_active_liquidatees"`
	DailyActiveTransferrers int64 `sql:"default:0" json:"daily_active_transferrers"`
	DailyActiveFlashloaners int64 `sql:"default:0" json:"daily_active_flashloaners"`

	DailyDepositCount   int64 `sql:"default:0" json:"daily_deposit_count"`
	DailyWithdrawCount  int64 `sql:"default:0" json:"daily_withdraw_count"`
	DailyBorrowCount    int64 `sql:"default:0" json:"daily_borrow_count"`
	DailyRepayCount     int64 `sql:"default:0" json:"daily_repay_count"`
	DailyLiquidateCount int64 `sql:"default:0" json:"daily_liquidate_count"`
	DailyTransferCount  int64 `sql:"default:0" json:"daily_transfer_count"`
	DailyFlashloanCount int64 `sql:"default:0" json:"daily_flashloan_count"`

	DailyActiveLendingPositionCount   int64 `sql:"default:0" json:"daily_active_lending_position_count"`
	DailyActiveBorrowingPositionCount int64 `sql:"default:0" json:"daily_active_borrowing_position_count"`

	PositionCount          int64 `sql:"default:0" json:"position_count"`
	OpenPositionCount      int64 `sql:"default:0" json:"open_position_count"`
	ClosedPositionCount    int64 `sql:"default:0" json:"closed_position_count"`
	LendingPositionCount   int64 `sql:"default:0" json:"lending_position_count"`
	BorrowingPositionCount int64 `sql:"default:0" json:"borrowing_position_count"`

	BlockNumber int64     `sql:"default:0" json:"block_number"`
	Timestamp   time.Time `json:"timestamp"`
	CreatedAt   time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// FinancialsDailySnapshot protocol wide day bucket financials
type FinancialsDailySnapshot struct {
	ID         uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	SnapshotID string `sql:"size:64;unique_index:financials_daily_idx" json:"snapshot_id"`
	Days       int64  `sql:"default:0" json:"days"`

	TotalValueLockedUSD              decimal.Decimal `sql:"type:decimal(32,8)" json:"total_value_locked_usd"`
	TotalDepositBalanceUSD           decimal.Decimal `sql:"type:decimal(32,8)" json:"total_deposit_balance_usd"`
	TotalBorrowBalanceUSD            decimal.Decimal `sql:"type:decimal(32,8)" json:"total_borrow_balance_usd"`
	CumulativeDepositUSD             decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_deposit_usd"`
	CumulativeBorrowUSD              decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_borrow_usd"`
	CumulativeLiquidateUSD           decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_liquidate_usd"`
	CumulativeSupplySideRevenueUSD   decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_supply_side_revenue_usd"`
	CumulativeProtocolSideRevenueUSD decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_protocol_side_revenue_usd"`
	CumulativeTotalRevenueUSD        decimal.Decimal `sql:"type:decimal(32,8)" json:"cumulative_total_revenue_usd"`

	DailyDepositUSD   decimal.Decimal `sql:"type:decimal(32,8)" json:"daily_deposit_usd"`
	DailyWithdrawUSD  decimal.Decimal `sql:"type:decimal(32,8)" json:"daily_withdraw_usd"`
	DailyBorrowUSD    decimal.Decimal `sql:"type:decimal(32,8)" json:"daily_borrow_usd"`
	DailyRepayUSD     decimal.Decimal `sql:"type:decimal(32,8)" json:"daily_repay_usd"`
	DailyLiquidateUSD decimal.Decimal `sql:"type:decimal(32,8)" json:"daily_liquidate_usd"`
	DailyTransferUSD  decimal.Decimal `sql:"type:decimal(32,8)" json:"daily_transfer_usd"`
	DailyFlashloanUSD decimal.Decimal `sql:"type:decimal(32,8)" json:"daily_flashloan_usd"`

	DailySupplySideRevenueUSD   decimal.Decimal `sql:"type:decimal(32,8)" json:"daily_supply_side_revenue_usd"`
	DailyProtocolSideRevenueUSD decimal.Decimal `sql:"type:decimal(32,8)" json:"daily_protocol_side_revenue_usd"`
	DailyTotalRevenueUSD        decimal.Decimal `sql:"type:decimal(32,8)" json:"daily_total_revenue_usd"`

	BlockNumber int64     `sql:"default:0" json:"block_number"`
	Timestamp   time.Time `json:"timestamp"`
	CreatedAt   time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// UsageDailySnapshot protocol wide day bucket usage counters
type UsageDailySnapshot struct {
	ID         uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	SnapshotID string `sql:"size:64;unique_index:usage_daily_idx" json:"snapshot_id"`
	Days       int64  `sql:"default:0" json:"days"`

	CumulativeUniqueUsers       int64 `sql:"default:0" json:"cumulative_unique_users"`
	CumulativeUniqueDepositors  int64 `sql:"default:0" json:"cumulative_unique_depositors"`
	CumulativeUniqueBorrowers   int64 `sql:"default:0" json:"cumulative_unique_borrowers"`
	CumulativeUniqueLiquidators int64 `sql:"default:0" json:"cumulative_unique_liquidators"`
	CumulativeUniqueLiquidatees int64 `sql:"default:0" json:"cumulative_unique_liquidatees"`
	CumulativePositionCount     int64 `sql:"default:0" json:"cumulative_position_count"`
	OpenPositionCount           int64 `sql:"default:0" json:"open_position_count"`
	TotalPoolCount              int64 `sql:"default:0" json:"total_pool_count"`

	DailyActiveUsers       int64 `sql:"default:0" json:"daily_active_users"`
	DailyActiveDepositors  int64 `sql:"default:0" json:"daily_active_depositors"`
	DailyActiveBorrowers   int64 `sql:"default:0" json:"daily_active_borrowers"`
	DailyActiveLiquidators int64 `sql:"default:0" json:"daily_active_liquidators"`
	DailyActiveLiquidatees int64 `sql:"default:0" json:"daily_active_liquidatees"`
	DailyActivePositions   int64 `sql:"default:0" json:"daily_active_positions"`

	DailyTransactionCount int64 `sql:"default:0" json:"daily_transaction_count"`
	DailyDepositCount     int64 `sql:"default:0" json:"daily_deposit_count"`
	DailyWithdrawCount    int64 `sql:"default:0" json:"daily_withdraw_count"`
	DailyBorrowCount      int64 `sql:"default:0" json:"daily_borrow_count"`
	DailyRepayCount       int64 `sql:"default:0" json:"daily_repay_count"`
	DailyLiquidateCount   int64 `sql:"default:0" json:"daily_liquidate_count"`
	DailyTransferCount    int64 `sql:"default:0" json:"daily_transfer_count"`
	DailyFlashloanCount   int64 `sql:"default:0" json:"daily_flashloan_count"`

	BlockNumber int64     `sql:"default:0" json:"block_number"`
	Timestamp   time.Time `json:"timestamp"`
	CreatedAt   time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// UsageHourlySnapshot protocol wide hour bucket usage counters
type UsageHourlySnapshot struct {
	ID         uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	SnapshotID string `sql:"size:64;unique_index:usage_hourly_idx" json:"snapshot_id"`
	Hours      int64  `sql:"default:0" json:"hours"`

	CumulativeUniqueUsers int64 `sql:"default:0" json:"cumulative_unique_users"`

	HourlyActiveUsers      int64 `sql:"default:0" json:"hourly_active_users"`
	HourlyTransactionCount int64 `sql:"default:0" json:"hourly_transaction_count"`
	HourlyDepositCount     int64 `sql:"default:0" json:"hourly_deposit_count"`
	HourlyWithdrawCount    int64 `sql:"default:0" json:"hourly_withdraw_count"`
	HourlyBorrowCount      int64 `sql:"default:0" json:"hourly_borrow_count"`
	HourlyRepayCount       int64 `sql:"default:0" json:"hourly_repay_count"`
	HourlyLiquidateCount   int64 `sql:"default:0" json:"hourly_liquidate_count"`
	HourlyFlashloanCount   int64 `sql:"default:0" json:"hourly_flashloan_count"`

	BlockNumber int64     `sql:"default:0" json:"block_number"`
	Timestamp   time.Time `json:"timestamp"`
	CreatedAt   time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ActivityMarker dedup marker for unique-actor counting. One row per
// (actor, action, bucket) key; the first insert is the only count.
type ActivityMarker struct {
	ID        uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	MarkerKey string    `sql:"size:255;unique_index:activity_marker_idx" json:"marker_key"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// ISnapshotStore snapshot row store interface.
//
// Find reads take the open event transaction so a bucket row written
// earlier within the same event is visible to the next updater; a nil
// tx reads committed state.
type ISnapshotStore interface {
	FindMarketHourly(ctx context.Context, tx *db.DB, snapshotID string) (*MarketHourlySnapshot, error)
	SaveMarketHourly(ctx context.Context, tx *db.DB, snapshot *MarketHourlySnapshot) error
	ListMarketHourly(ctx context.Context, marketID string, limit int) ([]*MarketHourlySnapshot, error)

	FindMarketDaily(ctx context.Context, tx *db.DB, snapshotID string) (*MarketDailySnapshot, error)
	SaveMarketDaily(ctx context.Context, tx *db.DB, snapshot *MarketDailySnapshot) error
	ListMarketDaily(ctx context.Context, marketID string, limit int) ([]*MarketDailySnapshot, error)

	FindFinancialsDaily(ctx context.Context, tx *db.DB, snapshotID string) (*FinancialsDailySnapshot, error)
	SaveFinancialsDaily(ctx context.Context, tx *db.DB, snapshot *FinancialsDailySnapshot) error
	ListFinancialsDaily(ctx context.Context, limit int) ([]*FinancialsDailySnapshot, error)

	FindUsageDaily(ctx context.Context, tx *db.DB, snapshotID string) (*UsageDailySnapshot, error)
	SaveUsageDaily(ctx context.Context, tx *db.DB, snapshot *UsageDailySnapshot) error
	ListUsageDaily(ctx context.Context, limit int) ([]*UsageDailySnapshot, error)

	FindUsageHourly(ctx context.Context, tx *db.DB, snapshotID string) (*UsageHourlySnapshot, error)
	SaveUsageHourly(ctx context.Context, tx *db.DB, snapshot *UsageHourlySnapshot) error
	ListUsageHourly(ctx context.Context, limit int) ([]*UsageHourlySnapshot, error)

	// TouchActivity inserts the marker when absent and reports whether it
	// was created, i.e. whether this (actor, action, bucket) counts.
	TouchActivity(ctx context.Context, tx *db.DB, markerKey string) (bool, error)
}

// ISnapshotService time bucketed rollups, called once per transaction
// record after market and protocol cumulative totals were updated.
type ISnapshotService interface {
	UpdateTransactionData(ctx context.Context, tx *db.DB, event *Event, market *Market, protocol *Protocol, action ActionType, amount, amountUSD decimal.Decimal) error
	UpdateUsageData(ctx context.Context, tx *db.DB, event *Event, market *Market, protocol *Protocol, action ActionType, actor string) error
	// MarkLiquidatee counts the liquidated borrower, who is an actor of
	// the event without being its caller.
	MarkLiquidatee(ctx context.Context, tx *db.DB, event *Event, market *Market, protocol *Protocol, actor string) error
	UpdateRevenue(ctx context.Context, tx *db.DB, event *Event, market *Market, protocol *Protocol, protocolDelta, supplyDelta decimal.Decimal) error
	AddDailyActivePosition(ctx context.Context, tx *db.DB, event *Event, market *Market, side PositionSide) error
	// SyncFinancials refreshes the day's financials row from the final
	// protocol state, after the end-of-event rollup.
	SyncFinancials(ctx context.Context, tx *db.DB, event *Event, protocol *Protocol) error
}
