package ledger

import (
	"context"

	"lendledger/core"
	"lendledger/pkg/sharemath"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
)

// handleTransfer moves supply shares between accounts. Pool totals do
// not change, only the two positions do. The event's account is the
// sender, its caller the receiver.
func (w *Ledger) handleTransfer(ctx context.Context, tx *db.DB, event *core.Event) error {
	log := logger.FromContext(ctx)

	market, protocol, err := w.loadMarket(ctx, event)
	if err != nil || market == nil {
		return err
	}

	amount := event.Amount
	if amount.IsZero() {
		amount = sharemath.ToAssetsDown(event.Shares, market.TotalSupply, market.TotalSupplyShares)
		// the transaction record and its usd valuation carry the derived amount
		event.Amount = amount
	}

	sender, err := w.accountStore.FindOrCreate(ctx, tx, event.AccountID)
	if err != nil {
		return err
	}
	receiver, err := w.accountStore.FindOrCreate(ctx, tx, event.CallerID)
	if err != nil {
		return err
	}

	senderPosition, err := w.positionService.ReduceSupply(ctx, tx, event, market, sender, event.Shares, amount)
	if err != nil {
		log.WithError(err).Errorln("positionService.ReduceSupply")
		return err
	}

	receiverEvent := *event
	receiverEvent.AccountID = event.CallerID
	receiverPosition, err := w.positionService.AddSupply(ctx, tx, &receiverEvent, market, receiver, event.Shares, amount)
	if err != nil {
		return err
	}

	if _, err := w.transactionService.CreateTransfer(ctx, tx, event, market, protocol, senderPosition, receiverPosition); err != nil {
		return err
	}

	return w.marketService.UpdateMarketAndProtocolData(ctx, tx, event, market, protocol)
}
