package ledger

import (
	"context"

	"lendledger/core"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
)

func (w *Ledger) handleBorrow(ctx context.Context, tx *db.DB, event *core.Event) error {
	market, protocol, err := w.loadMarket(ctx, event)
	if err != nil || market == nil {
		return err
	}

	market.TotalBorrow = market.TotalBorrow.Add(event.Amount)
	market.TotalBorrowShares = market.TotalBorrowShares.Add(event.Shares)

	account, err := w.accountStore.FindOrCreate(ctx, tx, event.AccountID)
	if err != nil {
		return err
	}

	position, err := w.positionService.AddBorrow(ctx, tx, event, market, account, event.Shares, event.Amount)
	if err != nil {
		return err
	}

	if _, err := w.transactionService.CreateBorrow(ctx, tx, event, market, protocol, position); err != nil {
		return err
	}

	return w.marketService.UpdateMarketAndProtocolData(ctx, tx, event, market, protocol)
}

func (w *Ledger) handleRepay(ctx context.Context, tx *db.DB, event *core.Event) error {
	log := logger.FromContext(ctx)

	market, protocol, err := w.loadMarket(ctx, event)
	if err != nil || market == nil {
		return err
	}

	market.TotalBorrow = market.TotalBorrow.Sub(event.Amount)
	market.TotalBorrowShares = market.TotalBorrowShares.Sub(event.Shares)

	account, err := w.accountStore.FindOrCreate(ctx, tx, event.AccountID)
	if err != nil {
		return err
	}

	position, err := w.positionService.ReduceBorrow(ctx, tx, event, market, account, event.Shares, event.Amount)
	if err != nil {
		log.WithError(err).Errorln("positionService.ReduceBorrow")
		return err
	}

	if _, err := w.transactionService.CreateRepay(ctx, tx, event, market, protocol, position); err != nil {
		return err
	}

	return w.marketService.UpdateMarketAndProtocolData(ctx, tx, event, market, protocol)
}
