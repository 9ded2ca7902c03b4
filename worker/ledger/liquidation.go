package ledger

import (
	"context"

	"lendledger/core"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
)

// handleLiquidate reduces the borrower's debt by the repaid and written
// off shares, seizes collateral, and socializes any shortfall across
// suppliers by shrinking total supply.
func (w *Ledger) handleLiquidate(ctx context.Context, tx *db.DB, event *core.Event) error {
	log := logger.FromContext(ctx)

	market, protocol, err := w.loadMarket(ctx, event)
	if err != nil || market == nil {
		return err
	}

	market.TotalBorrow = market.TotalBorrow.Sub(event.RepaidAssets)
	market.TotalBorrowShares = market.TotalBorrowShares.Sub(event.RepaidShares)
	market.TotalCollateral = market.TotalCollateral.Sub(event.SeizedAssets)

	if event.BadDebtShares.IsPositive() {
		market.TotalBorrowShares = market.TotalBorrowShares.Sub(event.BadDebtShares)
		market.TotalBorrow = market.TotalBorrow.Sub(event.BadDebtAssets)
		market.TotalSupply = market.TotalSupply.Sub(event.BadDebtAssets)
	}

	borrower, err := w.accountStore.FindOrCreate(ctx, tx, event.AccountID)
	if err != nil {
		return err
	}

	debitShares := event.RepaidShares.Add(event.BadDebtShares)
	debitAssets := event.RepaidAssets.Add(event.BadDebtAssets)
	borrowPosition, err := w.positionService.ReduceBorrow(ctx, tx, event, market, borrower, debitShares, debitAssets)
	if err != nil {
		log.WithError(err).Errorln("positionService.ReduceBorrow")
		return err
	}

	collateralPosition, err := w.positionService.ReduceCollateral(ctx, tx, event, market, borrower, event.SeizedAssets)
	if err != nil {
		log.WithError(err).Errorln("positionService.ReduceCollateral")
		return err
	}

	if _, err := w.transactionService.CreateLiquidate(ctx, tx, event, market, protocol, borrowPosition, collateralPosition); err != nil {
		return err
	}

	return w.marketService.UpdateMarketAndProtocolData(ctx, tx, event, market, protocol)
}
