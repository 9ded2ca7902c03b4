package ledger

import (
	"context"

	"lendledger/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// handleAccrueInterest folds interest into the pool and credits minted
// fee shares to the fee recipient's supply position.
func (w *Ledger) handleAccrueInterest(ctx context.Context, tx *db.DB, event *core.Event) error {
	market, protocol, err := w.loadMarket(ctx, event)
	if err != nil || market == nil {
		return err
	}

	if err := w.marketService.AccrueInterest(ctx, tx, event, market, protocol); err != nil {
		return err
	}

	if event.FeeShares.IsPositive() && w.system.App.FeeRecipient != "" {
		recipient, err := w.accountStore.FindOrCreate(ctx, tx, w.system.App.FeeRecipient)
		if err != nil {
			return err
		}

		feeEvent := *event
		feeEvent.AccountID = w.system.App.FeeRecipient
		if _, err := w.positionService.AddSupply(ctx, tx, &feeEvent, market, recipient, event.FeeShares, decimal.Zero); err != nil {
			return err
		}
	}

	return w.marketService.UpdateMarketAndProtocolData(ctx, tx, event, market, protocol)
}
