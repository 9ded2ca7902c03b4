package rest

import (
	"errors"
	"net/http"

	"lendledger/core"
	"lendledger/handler/render"

	"github.com/go-chi/chi"
)

// Handle handle rest api request
func Handle(
	system *core.Config,
	eventStore core.EventStore,
	marketStore core.IMarketStore,
	protocolStore core.IProtocolStore,
	positionStore core.IPositionStore,
	transactionStore core.ITransactionStore,
	snapshotStore core.ISnapshotStore,
	rateStore core.IRateStore,
	priceStore core.IPriceStore,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/protocol", protocolHandler(protocolStore))
	router.Get("/markets", allMarketsHandler(marketStore, rateStore))
	router.Get("/markets/{market_id}", marketHandler(marketStore, rateStore))
	router.Get("/markets/{market_id}/snapshots", marketSnapshotsHandler(snapshotStore))
	router.Get("/financials", financialsHandler(snapshotStore))
	router.Get("/usage", usageHandler(snapshotStore))
	router.Get("/positions", positionsHandler(positionStore))
	router.Get("/positions/{position_id}", positionHandler(positionStore))
	router.Get("/transactions", transactionsHandler(transactionStore))
	router.Get("/prices", pricesHandler(priceStore))
	router.Post("/events", createEventHandler(system, eventStore))

	return router
}
