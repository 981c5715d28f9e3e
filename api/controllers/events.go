package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sisterblooms/storefront-backend/api/middleware"
	"github.com/sisterblooms/storefront-backend/api/responses"
	"github.com/sisterblooms/storefront-backend/api/validators"
	"github.com/sisterblooms/storefront-backend/internal/storefront"
	pkgerrors "github.com/sisterblooms/storefront-backend/pkg/errors"
	"github.com/sisterblooms/storefront-backend/pkg/logger"
)

const eventBuffer = 16

// CartEvents streams server-sent events when another tab of the same session
// changes the cart or the delivery choice. Events only say what changed; the
// client re-reads the cart.
func CartEvents(svc EventService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		heartbeat, err := validators.ParseQueryInt(r, "heartbeat", 15, 5, 60)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		// Notifications can fire while the writer holds the cart lock, so
		// they must never block: a full buffer drops the event.
		events := make(chan storefront.Event, eventBuffer)
		stop, err := svc.Subscribe(ctx, middleware.SessionIDFromContext(ctx), func(e storefront.Event) {
			select {
			case events <- e:
			default:
			}
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		defer stop()

		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "retry: 3000\n\n")
		flusher.Flush()

		if logg != nil {
			logg.Debug(ctx, "events.stream.open")
		}

		ticker := time.NewTicker(time.Duration(heartbeat) * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				if logg != nil {
					logg.Debug(ctx, "events.stream.closed")
				}
				return
			case e := <-events:
				payload, err := json.Marshal(e)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Kind, payload); err != nil {
					return
				}
				flusher.Flush()
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
