package rest

import (
	"net/http"

	"lendledger/core"
	"lendledger/handler/render"
)

func protocolHandler(protocolStr core.IProtocolStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		protocol, err := protocolStr.Get(r.Context())
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, protocol)
	}
}
