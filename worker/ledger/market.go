package ledger

import (
	"context"
	"encoding/json"

	"lendledger/core"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

type marketParams struct {
	LoanAssetID        string          `json:"loan_asset_id"`
	CollateralAssetID  string          `json:"collateral_asset_id"`
	LoanDecimals       int32           `json:"loan_decimals"`
	CollateralDecimals int32           `json:"collateral_decimals"`
	OracleID           string          `json:"oracle_id"`
	RateModelID        string          `json:"rate_model_id"`
	LLTV               decimal.Decimal `json:"lltv"`
}

func (w *Ledger) handleCreateMarket(ctx context.Context, tx *db.DB, event *core.Event) error {
	log := logger.FromContext(ctx)

	if _, err := w.marketStore.Find(ctx, event.MarketID); err == nil {
		log.Warningln("market already exists:", event.MarketID)
		return nil
	} else if !gorm.IsRecordNotFoundError(err) {
		return err
	}

	var params marketParams
	if err := json.Unmarshal(event.Params, &params); err != nil {
		log.WithError(err).Errorln("invalid market params, skipped")
		return nil
	}

	market := &core.Market{
		MarketID:           event.MarketID,
		LoanAssetID:        params.LoanAssetID,
		CollateralAssetID:  params.CollateralAssetID,
		LoanDecimals:       params.LoanDecimals,
		CollateralDecimals: params.CollateralDecimals,
		OracleID:           params.OracleID,
		RateModelID:        params.RateModelID,
		LLTV:               params.LLTV,
		LastUpdate:         event.Timestamp,
		BlockNumber:        event.BlockNumber,
	}
	if err := w.marketStore.Save(ctx, tx, market); err != nil {
		return err
	}

	protocol, err := w.protocolStore.Get(ctx)
	if err != nil {
		return err
	}

	return w.marketService.UpdateMarketAndProtocolData(ctx, tx, event, market, protocol)
}

func (w *Ledger) handleSetFee(ctx context.Context, tx *db.DB, event *core.Event) error {
	log := logger.FromContext(ctx)

	market, protocol, err := w.loadMarket(ctx, event)
	if err != nil || market == nil {
		return err
	}

	one := decimal.New(1, 0)
	if event.Fee.IsNegative() || event.Fee.GreaterThanOrEqual(one) {
		log.Warningln("fee out of range, skipped:", event.Fee)
		return nil
	}

	market.Fee = event.Fee
	return w.marketService.UpdateMarketAndProtocolData(ctx, tx, event, market, protocol)
}
