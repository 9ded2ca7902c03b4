package handler

import (
	"errors"
	"net/http"

	"lendledger/core"
	"lendledger/handler/render"
	"lendledger/handler/rest"

	"github.com/go-chi/chi"
)

// Server server
type Server struct {
	cfg *core.Config

	eventStore       core.EventStore
	marketStore      core.IMarketStore
	protocolStore    core.IProtocolStore
	positionStore    core.IPositionStore
	transactionStore core.ITransactionStore
	snapshotStore    core.ISnapshotStore
	rateStore        core.IRateStore
	priceStore       core.IPriceStore
}

// New new server function
func New(
	cfg *core.Config,
	eventStore core.EventStore,
	marketStore core.IMarketStore,
	protocolStore core.IProtocolStore,
	positionStore core.IPositionStore,
	transactionStore core.ITransactionStore,
	snapshotStore core.ISnapshotStore,
	rateStore core.IRateStore,
	priceStore core.IPriceStore,
) Server {
	return Server{
		cfg:              cfg,
		eventStore:       eventStore,
		marketStore:      marketStore,
		protocolStore:    protocolStore,
		positionStore:    positionStore,
		transactionStore: transactionStore,
		snapshotStore:    snapshotStore,
		rateStore:        rateStore,
		priceStore:       priceStore,
	}
}

// HandleRestAPI handle restful apis
func (s Server) HandleRestAPI() http.Handler {
	r := chi.NewRouter()
	r.Use(resetRoutePath)
	r.Use(render.WrapResponse(true))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, http.StatusNotFound, -1, errors.New("not found"))
	})

	r.Mount("/", rest.Handle(
		s.cfg,
		s.eventStore,
		s.marketStore,
		s.protocolStore,
		s.positionStore,
		s.transactionStore,
		s.snapshotStore,
		s.rateStore,
		s.priceStore,
	))

	return r
}

func resetRoutePath(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if c := chi.RouteContext(ctx); c != nil {
			c.RoutePath = r.URL.Path
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}
