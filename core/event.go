package core

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// ActionType ledger event action
type ActionType int

const (
	// ActionTypeDefault default
	ActionTypeDefault ActionType = iota
	// ActionTypeSupply supply loan asset
	ActionTypeSupply
	// ActionTypeWithdraw withdraw loan asset
	ActionTypeWithdraw
	// ActionTypeSupplyCollateral supply collateral asset
	ActionTypeSupplyCollateral
	// ActionTypeWithdrawCollateral withdraw collateral asset
	ActionTypeWithdrawCollateral
	// ActionTypeBorrow borrow
	ActionTypeBorrow
	// ActionTypeRepay repay
	ActionTypeRepay
	// ActionTypeLiquidate liquidate an underwater borrower
	ActionTypeLiquidate
	// ActionTypeFlashloan flashloan
	ActionTypeFlashloan
	// ActionTypeTransfer position transfer between accounts
	ActionTypeTransfer
	// ActionTypeAccrueInterest interest accrual
	ActionTypeAccrueInterest
	// ActionTypeCreateMarket market creation
	ActionTypeCreateMarket
	// ActionTypeSetFee market fee update
	ActionTypeSetFee
	// ActionTypeUpdatePrice oracle price update
	ActionTypeUpdatePrice
)

var actionNames = map[ActionType]string{
	ActionTypeSupply:             "supply",
	ActionTypeWithdraw:           "withdraw",
	ActionTypeSupplyCollateral:   "supply_collateral",
	ActionTypeWithdrawCollateral: "withdraw_collateral",
	ActionTypeBorrow:             "borrow",
	ActionTypeRepay:              "repay",
	ActionTypeLiquidate:          "liquidate",
	ActionTypeFlashloan:          "flashloan",
	ActionTypeTransfer:           "transfer",
	ActionTypeAccrueInterest:     "accrue_interest",
	ActionTypeCreateMarket:       "create_market",
	ActionTypeSetFee:             "set_fee",
	ActionTypeUpdatePrice:        "update_price",
}

func (a ActionType) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}

	return "unknown"
}

// Event a single entry of the ordered ledger input stream.
//
// Events are appended by the ingest api (or seeded fixtures) and consumed
// by the ledger worker in ID order. (BlockNumber, LogIndex) is the source
// chronological key, TxHash the source unique identifier.
type Event struct {
	ID          uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	BlockNumber int64           `sql:"index:idx_events_block" json:"block_number"`
	LogIndex    int             `json:"log_index"`
	TxHash      string          `sql:"size:128;index:idx_events_tx_hash" json:"tx_hash"`
	// TraceID correlates worker logs with the ingest request; derived
	// from (TxHash, LogIndex) so re-ingesting yields the same trace.
	TraceID   string     `sql:"size:36" json:"trace_id,omitempty"`
	Action    ActionType `json:"action"`
	MarketID  string     `sql:"size:128;index:idx_events_market" json:"market_id"`
	AccountID string     `sql:"size:128" json:"account_id"`
	// CallerID differs from AccountID on liquidations: the liquidator pays,
	// the borrower's positions are reduced.
	CallerID string          `sql:"size:128" json:"caller_id,omitempty"`
	Amount   decimal.Decimal `sql:"type:decimal(64,0)" json:"amount"`
	Shares   decimal.Decimal `sql:"type:decimal(64,0)" json:"shares"`

	// liquidation only
	SeizedAssets  decimal.Decimal `sql:"type:decimal(64,0)" json:"seized_assets,omitempty"`
	RepaidAssets  decimal.Decimal `sql:"type:decimal(64,0)" json:"repaid_assets,omitempty"`
	RepaidShares  decimal.Decimal `sql:"type:decimal(64,0)" json:"repaid_shares,omitempty"`
	BadDebtAssets decimal.Decimal `sql:"type:decimal(64,0)" json:"bad_debt_assets,omitempty"`
	BadDebtShares decimal.Decimal `sql:"type:decimal(64,0)" json:"bad_debt_shares,omitempty"`

	// interest accrual only
	Interest  decimal.Decimal `sql:"type:decimal(64,0)" json:"interest,omitempty"`
	FeeShares decimal.Decimal `sql:"type:decimal(64,0)" json:"fee_shares,omitempty"`

	// price/fee updates
	AssetID string          `sql:"size:128" json:"asset_id,omitempty"`
	Price   decimal.Decimal `sql:"type:decimal(32,12)" json:"price,omitempty"`
	Fee     decimal.Decimal `sql:"type:decimal(20,8)" json:"fee,omitempty"`

	// market creation params
	Params types.JSONText `sql:"type:TEXT" json:"params,omitempty"`

	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// HourBucket fixed-width hour bucket of the event timestamp
func (e *Event) HourBucket() int64 {
	return e.Timestamp.Unix() / 3600
}

// DayBucket fixed-width day bucket of the event timestamp
func (e *Event) DayBucket() int64 {
	return e.Timestamp.Unix() / 86400
}

// EventStore ordered event log store
type EventStore interface {
	Create(ctx context.Context, event *Event) error
	Find(ctx context.Context, id uint64) (*Event, error)
	// List returns events with ID > fromID in ID order, up to limit rows.
	List(ctx context.Context, fromID uint64, limit int) ([]*Event, error)
}
