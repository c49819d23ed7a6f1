package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/workpulse/workpulse-backend-go/internal/handler/http/middleware"
	"github.com/workpulse/workpulse-backend-go/internal/handler/http/response"
	"github.com/workpulse/workpulse-backend-go/internal/pkg/sse"
)

type EventStreamHandler interface {
	Subscribe(w http.ResponseWriter, r *http.Request)
}

type eventStreamHandlerImpl struct {
	hub *sse.Hub
}

func NewEventStreamHandler(hub *sse.Hub) EventStreamHandler {
	return &eventStreamHandlerImpl{hub: hub}
}

// Subscribe implements EventStreamHandler: an SSE stream of the caller's own
// attendance and payroll events, open until the client disconnects.
func (h *eventStreamHandlerImpl) Subscribe(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, cleanup := h.hub.Subscribe(identity.EmployeeID)
	defer cleanup()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data)
			flusher.Flush()
		}
	}
}
