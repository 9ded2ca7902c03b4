package render

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
)

type wrapResponse struct {
	status int
	header http.Header
	buf    *bytes.Buffer
}

func (w *wrapResponse) Header() http.Header {
	return w.header
}

func (w *wrapResponse) WriteHeader(statusCode int) {
	w.status = statusCode
}

func (w *wrapResponse) Write(data []byte) (int, error) {
	return w.buf.Write(data)
}

func (w *wrapResponse) isJsonContent() bool {
	typ := w.header.Get("Content-Type")
	return strings.HasPrefix(typ, "application/json")
}

type dataResponse struct {
	Data json.RawMessage `json:"data,omitempty"`
}

// WrapResponse wraps successful json payloads inside a data envelope so
// that every endpoint responds with the same shape.
func WrapResponse(wrap bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if !wrap {
				next.ServeHTTP(w, r)
				return
			}

			ww := &wrapResponse{
				status: http.StatusOK,
				header: w.Header(),
				buf:    &bytes.Buffer{},
			}

			next.ServeHTTP(ww, r)

			body := ww.buf.Bytes()
			if ww.isJsonContent() && ww.status < http.StatusBadRequest {
				if wrapped, err := json.Marshal(dataResponse{Data: body}); err == nil {
					body = wrapped
				}
			}

			w.WriteHeader(ww.status)
			_, _ = w.Write(body)
		}

		return http.HandlerFunc(fn)
	}
}
