package relay

import (
	"fmt"
	"net/http"
	"strings"
)

// feedFilter parses ?feeds=a,b. A nil map accepts every feed.
func feedFilter(r *http.Request) map[string]bool {
	q := r.URL.Query().Get("feeds")
	if q == "" {
		return nil
	}
	filter := make(map[string]bool)
	for _, f := range strings.Split(q, ",") {
		if f = strings.TrimSpace(f); f != "" {
			filter[f] = true
		}
	}
	return filter
}

// SSEHandler streams broker events as server-sent events.
func SSEHandler(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		id, ch := broker.Subscribe(feedFilter(r))
		defer broker.Unsubscribe(id)

		for {
			select {
			case <-r.Context().Done():
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Feed, evt.Payload)
				flusher.Flush()
			}
		}
	}
}
