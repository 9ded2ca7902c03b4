package rest

import (
	"net/http"

	"lendledger/core"
	"lendledger/handler/param"
	"lendledger/handler/render"

	"github.com/go-chi/chi"
)

const defaultSnapshotLimit = 100

func marketSnapshotsHandler(snapshotStr core.ISnapshotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Interval string `json:"interval" valid:"in(hourly|daily),optional"`
			Limit    int    `json:"limit"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		limit := params.Limit
		if limit <= 0 {
			limit = defaultSnapshotLimit
		}

		marketID := chi.URLParam(r, "market_id")
		if params.Interval == "hourly" {
			snapshots, err := snapshotStr.ListMarketHourly(ctx, marketID, limit)
			if err != nil {
				render.BadRequest(w, err)
				return
			}

			render.JSON(w, snapshots)
			return
		}

		snapshots, err := snapshotStr.ListMarketDaily(ctx, marketID, limit)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, snapshots)
	}
}

func financialsHandler(snapshotStr core.ISnapshotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Limit int `json:"limit"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		limit := params.Limit
		if limit <= 0 {
			limit = defaultSnapshotLimit
		}

		snapshots, err := snapshotStr.ListFinancialsDaily(ctx, limit)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, snapshots)
	}
}

func usageHandler(snapshotStr core.ISnapshotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Interval string `json:"interval" valid:"in(hourly|daily),optional"`
			Limit    int    `json:"limit"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		limit := params.Limit
		if limit <= 0 {
			limit = defaultSnapshotLimit
		}

		if params.Interval == "hourly" {
			snapshots, err := snapshotStr.ListUsageHourly(ctx, limit)
			if err != nil {
				render.BadRequest(w, err)
				return
			}

			render.JSON(w, snapshots)
			return
		}

		snapshots, err := snapshotStr.ListUsageDaily(ctx, limit)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, snapshots)
	}
}
