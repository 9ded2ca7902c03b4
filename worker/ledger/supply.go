package ledger

import (
	"context"

	"lendledger/core"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
)

func (w *Ledger) handleSupply(ctx context.Context, tx *db.DB, event *core.Event) error {
	log := logger.FromContext(ctx)

	market, protocol, err := w.loadMarket(ctx, event)
	if err != nil || market == nil {
		return err
	}

	market.TotalSupply = market.TotalSupply.Add(event.Amount)
	market.TotalSupplyShares = market.TotalSupplyShares.Add(event.Shares)

	account, err := w.accountStore.FindOrCreate(ctx, tx, event.AccountID)
	if err != nil {
		return err
	}

	position, err := w.positionService.AddSupply(ctx, tx, event, market, account, event.Shares, event.Amount)
	if err != nil {
		log.WithError(err).Errorln("positionService.AddSupply")
		return err
	}

	if _, err := w.transactionService.CreateDeposit(ctx, tx, event, market, protocol, position, false); err != nil {
		return err
	}

	return w.marketService.UpdateMarketAndProtocolData(ctx, tx, event, market, protocol)
}

func (w *Ledger) handleWithdraw(ctx context.Context, tx *db.DB, event *core.Event) error {
	log := logger.FromContext(ctx)

	market, protocol, err := w.loadMarket(ctx, event)
	if err != nil || market == nil {
		return err
	}

	market.TotalSupply = market.TotalSupply.Sub(event.Amount)
	market.TotalSupplyShares = market.TotalSupplyShares.Sub(event.Shares)

	account, err := w.accountStore.FindOrCreate(ctx, tx, event.AccountID)
	if err != nil {
		return err
	}

	position, err := w.positionService.ReduceSupply(ctx, tx, event, market, account, event.Shares, event.Amount)
	if err != nil {
		log.WithError(err).Errorln("positionService.ReduceSupply")
		return err
	}

	if _, err := w.transactionService.CreateWithdraw(ctx, tx, event, market, protocol, position, false); err != nil {
		return err
	}

	return w.marketService.UpdateMarketAndProtocolData(ctx, tx, event, market, protocol)
}
