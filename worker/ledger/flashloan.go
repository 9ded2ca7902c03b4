package ledger

import (
	"context"

	"lendledger/core"

	"github.com/fox-one/pkg/store/db"
)

// handleFlashloan records the loan without touching pool totals, the
// borrowed amount is returned within the same source transaction.
func (w *Ledger) handleFlashloan(ctx context.Context, tx *db.DB, event *core.Event) error {
	market, protocol, err := w.loadMarket(ctx, event)
	if err != nil || market == nil {
		return err
	}

	if _, err := w.transactionService.CreateFlashloan(ctx, tx, event, market, protocol); err != nil {
		return err
	}

	return w.marketService.UpdateMarketAndProtocolData(ctx, tx, event, market, protocol)
}
