package ledger

import (
	"context"

	"lendledger/core"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
)

func (w *Ledger) handleSupplyCollateral(ctx context.Context, tx *db.DB, event *core.Event) error {
	market, protocol, err := w.loadMarket(ctx, event)
	if err != nil || market == nil {
		return err
	}

	market.TotalCollateral = market.TotalCollateral.Add(event.Amount)

	account, err := w.accountStore.FindOrCreate(ctx, tx, event.AccountID)
	if err != nil {
		return err
	}

	position, err := w.positionService.AddCollateral(ctx, tx, event, market, account, event.Amount)
	if err != nil {
		return err
	}

	if _, err := w.transactionService.CreateDeposit(ctx, tx, event, market, protocol, position, true); err != nil {
		return err
	}

	return w.marketService.UpdateMarketAndProtocolData(ctx, tx, event, market, protocol)
}

func (w *Ledger) handleWithdrawCollateral(ctx context.Context, tx *db.DB, event *core.Event) error {
	log := logger.FromContext(ctx)

	market, protocol, err := w.loadMarket(ctx, event)
	if err != nil || market == nil {
		return err
	}

	market.TotalCollateral = market.TotalCollateral.Sub(event.Amount)

	account, err := w.accountStore.FindOrCreate(ctx, tx, event.AccountID)
	if err != nil {
		return err
	}

	position, err := w.positionService.ReduceCollateral(ctx, tx, event, market, account, event.Amount)
	if err != nil {
		log.WithError(err).Errorln("positionService.ReduceCollateral")
		return err
	}

	if _, err := w.transactionService.CreateWithdraw(ctx, tx, event, market, protocol, position, true); err != nil {
		return err
	}

	return w.marketService.UpdateMarketAndProtocolData(ctx, tx, event, market, protocol)
}
