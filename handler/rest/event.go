package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"lendledger/core"
	"lendledger/handler/render"
	"lendledger/handler/views"
	"lendledger/pkg/id"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

type eventPayload struct {
	BlockNumber int64  `json:"block_number" valid:"required"`
	LogIndex    int    `json:"log_index"`
	TxHash      string `json:"tx_hash" valid:"required"`
	Action      string `json:"action" valid:"required"`
	MarketID    string `json:"market_id"`
	AccountID   string `json:"account_id"`
	CallerID    string `json:"caller_id"`

	Amount decimal.Decimal `json:"amount"`
	Shares decimal.Decimal `json:"shares"`

	SeizedAssets  decimal.Decimal `json:"seized_assets"`
	RepaidAssets  decimal.Decimal `json:"repaid_assets"`
	RepaidShares  decimal.Decimal `json:"repaid_shares"`
	BadDebtAssets decimal.Decimal `json:"bad_debt_assets"`
	BadDebtShares decimal.Decimal `json:"bad_debt_shares"`

	Interest  decimal.Decimal `json:"interest"`
	FeeShares decimal.Decimal `json:"fee_shares"`

	AssetID string          `json:"asset_id"`
	Price   decimal.Decimal `json:"price"`
	Fee     decimal.Decimal `json:"fee"`

	Params types.JSONText `json:"params"`

	Timestamp time.Time `json:"timestamp" valid:"required"`
}

var actionsByName = map[string]core.ActionType{
	core.ActionTypeSupply.String():             core.ActionTypeSupply,
	core.ActionTypeWithdraw.String():           core.ActionTypeWithdraw,
	core.ActionTypeSupplyCollateral.String():   core.ActionTypeSupplyCollateral,
	core.ActionTypeWithdrawCollateral.String(): core.ActionTypeWithdrawCollateral,
	core.ActionTypeBorrow.String():             core.ActionTypeBorrow,
	core.ActionTypeRepay.String():              core.ActionTypeRepay,
	core.ActionTypeLiquidate.String():          core.ActionTypeLiquidate,
	core.ActionTypeFlashloan.String():          core.ActionTypeFlashloan,
	core.ActionTypeTransfer.String():           core.ActionTypeTransfer,
	core.ActionTypeAccrueInterest.String():     core.ActionTypeAccrueInterest,
	core.ActionTypeCreateMarket.String():       core.ActionTypeCreateMarket,
	core.ActionTypeSetFee.String():             core.ActionTypeSetFee,
	core.ActionTypeUpdatePrice.String():        core.ActionTypeUpdatePrice,
}

// createEventHandler appends an event to the ledger input stream. The
// worker picks it up asynchronously, so a success response only means
// the event was accepted, not applied.
func createEventHandler(system *core.Config, eventStr core.EventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if !system.IsAdmin(r.Header.Get("X-Ingest-Key")) {
			render.Error(w, http.StatusForbidden, int(core.ErrOperationForbidden), core.ErrOperationForbidden)
			return
		}

		var payload eventPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			render.BadRequest(w, err)
			return
		}

		action, ok := actionsByName[payload.Action]
		if !ok {
			render.BadRequest(w, core.ErrInvalidEvent)
			return
		}
		if payload.TxHash == "" || payload.Timestamp.IsZero() {
			render.BadRequest(w, errors.New("tx_hash and timestamp required"))
			return
		}

		event := &core.Event{
			BlockNumber:   payload.BlockNumber,
			LogIndex:      payload.LogIndex,
			TxHash:        payload.TxHash,
			TraceID:       id.TraceIDFrom(id.Composite(payload.TxHash, strconv.Itoa(payload.LogIndex))),
			Action:        action,
			MarketID:      payload.MarketID,
			AccountID:     payload.AccountID,
			CallerID:      payload.CallerID,
			Amount:        payload.Amount,
			Shares:        payload.Shares,
			SeizedAssets:  payload.SeizedAssets,
			RepaidAssets:  payload.RepaidAssets,
			RepaidShares:  payload.RepaidShares,
			BadDebtAssets: payload.BadDebtAssets,
			BadDebtShares: payload.BadDebtShares,
			Interest:      payload.Interest,
			FeeShares:     payload.FeeShares,
			AssetID:       payload.AssetID,
			Price:         payload.Price,
			Fee:           payload.Fee,
			Params:        payload.Params,
			Timestamp:     payload.Timestamp,
		}
		if err := eventStr.Create(ctx, event); err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, views.DefaultSuccess)
	}
}
