package core

import (
	"context"
	"database/sql"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// PositionSide side of a position within a market
type PositionSide string

const (
	// PositionSideSupplier lender of the loan asset
	PositionSideSupplier PositionSide = "SUPPLIER"
	// PositionSideBorrower borrower of the loan asset
	PositionSideBorrower PositionSide = "BORROWER"
	// PositionSideCollateral collateral backing a borrow
	PositionSideCollateral PositionSide = "COLLATERAL"
)

// Position one instance of an (account, market, side) claim.
//
// A position is open iff its shares (balance for the collateral side) are
// positive. Reaching exactly zero closes the instance forever; the next
// activity on the same triple opens a new instance with a higher
// InstanceNo, so closed positions stay immutable history.
type Position struct {
	ID         uint64       `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	PositionID string       `sql:"size:200;unique_index:position_idx" json:"position_id"`
	AccountID  string       `sql:"size:128;index:idx_positions_account" json:"account_id"`
	MarketID   string       `sql:"size:128;index:idx_positions_market" json:"market_id"`
	Side       PositionSide `sql:"size:16" json:"side"`
	InstanceNo int64        `sql:"default:0" json:"instance_no"`

	// Shares zero for the collateral side, which is tracked in assets
	Shares  decimal.Decimal `sql:"type:decimal(64,0)" json:"shares"`
	Balance decimal.Decimal `sql:"type:decimal(64,0)" json:"balance"`
	// Principal cost basis: deposits minus withdrawals valued at event time
	Principal    decimal.Decimal `sql:"type:decimal(64,0)" json:"principal"`
	IsCollateral bool            `sql:"default:false" json:"is_collateral"`

	DepositCount     int64 `sql:"default:0" json:"deposit_count"`
	WithdrawCount    int64 `sql:"default:0" json:"withdraw_count"`
	BorrowCount      int64 `sql:"default:0" json:"borrow_count"`
	RepayCount       int64 `sql:"default:0" json:"repay_count"`
	LiquidationCount int64 `sql:"default:0" json:"liquidation_count"`
	TransferredCount int64 `sql:"default:0" json:"transferred_count"`
	ReceivedCount    int64 `sql:"default:0" json:"received_count"`

	OpenedAt      time.Time    `json:"opened_at"`
	OpenedBlock   int64        `sql:"default:0" json:"opened_block"`
	OpenedTxHash  string       `sql:"size:128" json:"opened_tx_hash"`
	ClosedAt      sql.NullTime `json:"closed_at,omitempty"`
	ClosedBlock   int64        `sql:"default:0" json:"closed_block,omitempty"`
	ClosedTxHash  string       `sql:"size:128" json:"closed_tx_hash,omitempty"`
	Closed        bool         `sql:"default:false" json:"closed"`

	Version   int64     `sql:"default:0" json:"version"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Open reports whether the position instance is still active
func (p *Position) Open() bool {
	return !p.Closed
}

// PositionCounter monotonic instance counter per (account, market, side).
//
// LastActiveAt drives the daily-active-position metric: the first touch
// on a new day bucket counts the position as active for that day.
type PositionCounter struct {
	ID           uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	CounterKey   string    `sql:"size:200;unique_index:position_counter_idx" json:"counter_key"`
	NextInstance int64     `sql:"default:0" json:"next_instance"`
	LastActiveAt time.Time `json:"last_active_at"`
	Version      int64     `sql:"default:0" json:"version"`
}

// PositionSnapshot immutable point-in-time copy of a position balance
type PositionSnapshot struct {
	ID         uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	SnapshotID string          `sql:"size:255;unique_index:position_snapshot_idx" json:"snapshot_id"`
	PositionID string          `sql:"size:200;index:idx_position_snapshots_position" json:"position_id"`
	AccountID  string          `sql:"size:128" json:"account_id"`
	Balance    decimal.Decimal `sql:"type:decimal(64,0)" json:"balance"`
	BalanceUSD decimal.Decimal `sql:"type:decimal(32,8)" json:"balance_usd"`
	Shares     decimal.Decimal `sql:"type:decimal(64,0)" json:"shares"`
	Principal  decimal.Decimal `sql:"type:decimal(64,0)" json:"principal"`

	BlockNumber int64     `sql:"default:0" json:"block_number"`
	LogIndex    int       `sql:"default:0" json:"log_index"`
	TxHash      string    `sql:"size:128" json:"tx_hash"`
	Timestamp   time.Time `json:"timestamp"`
	CreatedAt   time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// IPositionStore position ledger store interface
type IPositionStore interface {
	FindCounter(ctx context.Context, counterKey string) (*PositionCounter, error)
	SaveCounter(ctx context.Context, tx *db.DB, counter *PositionCounter) error
	UpdateCounter(ctx context.Context, tx *db.DB, counter *PositionCounter) error

	Save(ctx context.Context, tx *db.DB, position *Position) error
	Find(ctx context.Context, positionID string) (*Position, error)
	FindByAccount(ctx context.Context, account string) ([]*Position, error)
	FindByMarket(ctx context.Context, marketID string) ([]*Position, error)
	Update(ctx context.Context, tx *db.DB, position *Position) error

	CreateSnapshot(ctx context.Context, tx *db.DB, snapshot *PositionSnapshot) error
	ListSnapshots(ctx context.Context, positionID string, limit int) ([]*PositionSnapshot, error)
}

// IPositionService position lifecycle operations.
//
// Every method expects the owning market's share/asset totals to already
// include the current event; balances are derived from those totals.
type IPositionService interface {
	AddSupply(ctx context.Context, tx *db.DB, event *Event, market *Market, account *Account, shares, amount decimal.Decimal) (*Position, error)
	ReduceSupply(ctx context.Context, tx *db.DB, event *Event, market *Market, account *Account, shares, amount decimal.Decimal) (*Position, error)
	AddBorrow(ctx context.Context, tx *db.DB, event *Event, market *Market, account *Account, shares, amount decimal.Decimal) (*Position, error)
	ReduceBorrow(ctx context.Context, tx *db.DB, event *Event, market *Market, account *Account, shares, amount decimal.Decimal) (*Position, error)
	AddCollateral(ctx context.Context, tx *db.DB, event *Event, market *Market, account *Account, amount decimal.Decimal) (*Position, error)
	ReduceCollateral(ctx context.Context, tx *db.DB, event *Event, market *Market, account *Account, amount decimal.Decimal) (*Position, error)
	// Active returns the current instance for the triple, nil when the
	// triple has no open position.
	Active(ctx context.Context, account string, marketID string, side PositionSide) (*Position, error)
}
