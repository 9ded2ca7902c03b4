package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
)

// Account an actor interacting with the protocol
type Account struct {
	ID      uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Address string `sql:"size:128;unique_index:account_idx" json:"address"`

	PositionCount       int64 `sql:"default:0" json:"position_count"`
	OpenPositionCount   int64 `sql:"default:0" json:"open_position_count"`
	ClosedPositionCount int64 `sql:"default:0" json:"closed_position_count"`

	DepositCount  int64 `sql:"default:0" json:"deposit_count"`
	WithdrawCount int64 `sql:"default:0" json:"withdraw_count"`
	BorrowCount   int64 `sql:"default:0" json:"borrow_count"`
	RepayCount    int64 `sql:"default:0" json:"repay_count"`
	// LiquidateCount times this account was liquidated
	LiquidateCount int64 `sql:"default:0" json:"liquidate_count"`
	// LiquidationCount liquidations performed by this account
	LiquidationCount int64 `sql:"default:0" json:"liquidation_count"`
	TransferredCount int64 `sql:"default:0" json:"transferred_count"`
	ReceivedCount    int64 `sql:"default:0" json:"received_count"`
	FlashloanCount   int64 `sql:"default:0" json:"flashloan_count"`

	Version   int64     `sql:"default:0" json:"version"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IAccountStore account store interface
type IAccountStore interface {
	// FindOrCreate loads the account for the address, creating a fresh
	// row on first sight.
	FindOrCreate(ctx context.Context, tx *db.DB, address string) (*Account, error)
	Find(ctx context.Context, address string) (*Account, error)
	Update(ctx context.Context, tx *db.DB, account *Account) error
}
