package ledger

import (
	"context"

	"lendledger/core"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
)

// handleUpdatePrice persists the oracle observation and, when the event
// names a market, refreshes that market's valuation immediately.
func (w *Ledger) handleUpdatePrice(ctx context.Context, tx *db.DB, event *core.Event) error {
	log := logger.FromContext(ctx)

	if !event.Price.IsPositive() || event.AssetID == "" {
		log.Warningln("invalid price event, skipped")
		return nil
	}

	price := &core.Price{
		AssetID:     event.AssetID,
		PriceUSD:    event.Price,
		BlockNumber: event.BlockNumber,
		Timestamp:   event.Timestamp,
	}
	if err := w.priceStore.Save(ctx, tx, price); err != nil {
		return err
	}

	if event.MarketID == "" {
		return nil
	}

	market, protocol, err := w.loadMarket(ctx, event)
	if err != nil || market == nil {
		return err
	}

	switch event.AssetID {
	case market.LoanAssetID:
		market.LoanPriceUSD = event.Price
	case market.CollateralAssetID:
		market.CollateralPriceUSD = event.Price
	}

	return w.marketService.UpdateMarketAndProtocolData(ctx, tx, event, market, protocol)
}
