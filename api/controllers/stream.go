package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kioskworks/counter-backend/api/responses"
	"github.com/kioskworks/counter-backend/internal/liveview"
	pkgerrors "github.com/kioskworks/counter-backend/pkg/errors"
	"github.com/kioskworks/counter-backend/pkg/logger"
)

// IncomingStream serves the incoming board as server-sent events. The
// current board is pushed immediately, then again on every pipeline
// change; events carrying a new or put-back order are tagged "alert" so
// the kitchen display can chime.
func IncomingStream(facade *liveview.Facade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		events, err := facade.Subscribe(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case event, open := <-events:
				if !open {
					return
				}
				payload, err := json.Marshal(event)
				if err != nil {
					if logg != nil {
						logg.Error(r.Context(), "encode stream event", err)
					}
					return
				}
				name := "refresh"
				if event.Alert {
					name = "alert"
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload)
				flusher.Flush()
			}
		}
	}
}
