package relay

import (
	"log/slog"
	"net/http"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// WSHandler streams event payloads as WebSocket text frames. It honours the
// same ?feeds= filter as SSEHandler.
func WSHandler(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			slog.Debug("ws upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		id, ch := broker.Subscribe(feedFilter(r))
		defer broker.Unsubscribe(id)

		// The reader only exists to notice the client going away.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := wsutil.ReadClientData(conn); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-closed:
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				if err := wsutil.WriteServerText(conn, []byte(evt.Payload)); err != nil {
					slog.Debug("ws write failed", "error", err)
					return
				}
			}
		}
	}
}
