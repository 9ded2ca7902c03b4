package rest

import (
	"errors"
	"net/http"

	"lendledger/core"
	"lendledger/handler/param"
	"lendledger/handler/render"

	"github.com/go-chi/chi"
)

func positionsHandler(positionStr core.IPositionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Account  string `json:"account"`
			MarketID string `json:"market_id"`
			OpenOnly bool   `json:"open_only"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		var (
			positions []*core.Position
			err       error
		)
		switch {
		case params.Account != "":
			positions, err = positionStr.FindByAccount(ctx, params.Account)
		case params.MarketID != "":
			positions, err = positionStr.FindByMarket(ctx, params.MarketID)
		default:
			render.BadRequest(w, errors.New("account or market_id required"))
			return
		}
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		if params.OpenOnly {
			open := positions[:0]
			for _, p := range positions {
				if !p.Closed {
					open = append(open, p)
				}
			}
			positions = open
		}

		render.JSON(w, positions)
	}
}

func positionHandler(positionStr core.IPositionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		position, err := positionStr.Find(ctx, chi.URLParam(r, "position_id"))
		if err != nil {
			render.NotFoundRequest(w, err)
			return
		}

		render.JSON(w, position)
	}
}
