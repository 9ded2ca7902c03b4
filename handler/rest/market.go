package rest

import (
	"net/http"

	"lendledger/core"
	"lendledger/handler/render"
	"lendledger/handler/views"

	"github.com/go-chi/chi"
)

func allMarketsHandler(marketStr core.IMarketStore, rateStr core.IRateStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		markets, err := marketStr.All(ctx)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		marketViews := make([]*views.Market, 0, len(markets))
		for _, m := range markets {
			marketViews = append(marketViews, getMarketView(r, m, rateStr))
		}

		render.JSON(w, marketViews)
	}
}

func marketHandler(marketStr core.IMarketStore, rateStr core.IRateStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		market, err := marketStr.Find(ctx, chi.URLParam(r, "market_id"))
		if err != nil {
			render.NotFoundRequest(w, err)
			return
		}

		render.JSON(w, getMarketView(r, market, rateStr))
	}
}

func getMarketView(r *http.Request, market *core.Market, rateStr core.IRateStore) *views.Market {
	view := views.Market{Market: *market}
	if rates, err := rateStr.ListByMarket(r.Context(), market.MarketID, 500); err == nil {
		view.Rates = rates
	}

	return &view
}
