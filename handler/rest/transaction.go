package rest

import (
	"errors"
	"net/http"

	"lendledger/core"
	"lendledger/handler/param"
	"lendledger/handler/render"
)

func transactionsHandler(transactionStr core.ITransactionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Account  string `json:"account"`
			MarketID string `json:"market_id"`
			Limit    int    `json:"limit"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		limit := params.Limit
		if limit <= 0 {
			limit = 500
		}

		var (
			transactions []*core.Transaction
			err          error
		)
		switch {
		case params.Account != "":
			transactions, err = transactionStr.ListByAccount(ctx, params.Account, limit)
		case params.MarketID != "":
			transactions, err = transactionStr.ListByMarket(ctx, params.MarketID, limit)
		default:
			render.BadRequest(w, errors.New("account or market_id required"))
			return
		}
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, transactions)
	}
}
