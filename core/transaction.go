package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Transaction immutable record of a value-moving action.
//
// TransactionID is derived from (tx hash, log index, action), so replaying
// the same source event overwrites the row instead of duplicating it.
type Transaction struct {
	ID            uint64     `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TransactionID string     `sql:"size:255;unique_index:transaction_idx" json:"transaction_id"`
	Action        ActionType `sql:"index:idx_transactions_action" json:"action"`
	MarketID      string     `sql:"size:128;index:idx_transactions_market" json:"market_id"`
	AccountID     string     `sql:"size:128;index:idx_transactions_account" json:"account_id"`
	PositionID    string     `sql:"size:200" json:"position_id,omitempty"`
	AssetID       string     `sql:"size:128" json:"asset_id"`

	Amount    decimal.Decimal `sql:"type:decimal(64,0)" json:"amount"`
	AmountUSD decimal.Decimal `sql:"type:decimal(32,8)" json:"amount_usd"`
	Shares    decimal.Decimal `sql:"type:decimal(64,0)" json:"shares,omitempty"`

	IsCollateral bool `sql:"default:false" json:"is_collateral,omitempty"`

	// Receiver transfer only, the account credited with the shares
	Receiver string `sql:"size:128" json:"receiver,omitempty"`

	// liquidation only
	Liquidator   string          `sql:"size:128" json:"liquidator,omitempty"`
	Repaid       decimal.Decimal `sql:"type:decimal(64,0)" json:"repaid,omitempty"`
	RepaidUSD    decimal.Decimal `sql:"type:decimal(32,8)" json:"repaid_usd,omitempty"`
	ProfitUSD    decimal.Decimal `sql:"type:decimal(32,8)" json:"profit_usd,omitempty"`
	CollateralID string          `sql:"size:128" json:"collateral_id,omitempty"`

	BlockNumber int64     `sql:"default:0" json:"block_number"`
	LogIndex    int       `sql:"default:0" json:"log_index"`
	TxHash      string    `sql:"size:128" json:"tx_hash"`
	Timestamp   time.Time `json:"timestamp"`
	CreatedAt   time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// BadDebtRealization write-off emitted when a liquidation cannot recover
// the full obligation from collateral. The shortfall is socialized across
// suppliers by reducing market total supply outside the repay path.
type BadDebtRealization struct {
	ID            uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	LiquidationID string          `sql:"size:255;unique_index:bad_debt_idx" json:"liquidation_id"`
	MarketID      string          `sql:"size:128;index:idx_bad_debts_market" json:"market_id"`
	BadDebt       decimal.Decimal `sql:"type:decimal(64,0)" json:"bad_debt"`
	BadDebtUSD    decimal.Decimal `sql:"type:decimal(32,8)" json:"bad_debt_usd"`
	CreatedAt     time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// ITransactionStore transaction log store interface
type ITransactionStore interface {
	// Create upserts by TransactionID: last write wins, never duplicated.
	Create(ctx context.Context, tx *db.DB, transaction *Transaction) error
	Find(ctx context.Context, transactionID string) (*Transaction, error)
	ListByMarket(ctx context.Context, marketID string, limit int) ([]*Transaction, error)
	ListByAccount(ctx context.Context, account string, limit int) ([]*Transaction, error)

	CreateBadDebt(ctx context.Context, tx *db.DB, realization *BadDebtRealization) error
	ListBadDebts(ctx context.Context, marketID string) ([]*BadDebtRealization, error)
}

// ITransactionService writes transaction records and fans the per-event
// bookkeeping out to market, protocol and snapshot counters in fixed
// order: cumulative totals first, snapshot rollups second.
type ITransactionService interface {
	CreateDeposit(ctx context.Context, tx *db.DB, event *Event, market *Market, protocol *Protocol, position *Position, isCollateral bool) (*Transaction, error)
	CreateWithdraw(ctx context.Context, tx *db.DB, event *Event, market *Market, protocol *Protocol, position *Position, isCollateral bool) (*Transaction, error)
	CreateBorrow(ctx context.Context, tx *db.DB, event *Event, market *Market, protocol *Protocol, position *Position) (*Transaction, error)
	CreateRepay(ctx context.Context, tx *db.DB, event *Event, market *Market, protocol *Protocol, position *Position) (*Transaction, error)
	CreateLiquidate(ctx context.Context, tx *db.DB, event *Event, market *Market, protocol *Protocol, borrowPosition, collateralPosition *Position) (*Transaction, error)
	CreateFlashloan(ctx context.Context, tx *db.DB, event *Event, market *Market, protocol *Protocol) (*Transaction, error)
	CreateTransfer(ctx context.Context, tx *db.DB, event *Event, market *Market, protocol *Protocol, sender, receiver *Position) (*Transaction, error)
}
