package rest

import (
	"net/http"

	"lendledger/core"
	"lendledger/handler/render"
)

func pricesHandler(priceStr core.IPriceStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prices, err := priceStr.All(r.Context())
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, prices)
	}
}
