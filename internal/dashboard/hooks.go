package dashboard

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/dgnsrekt/fxboard/internal/notify"
	"github.com/dgnsrekt/fxboard/internal/relay"
	"github.com/dgnsrekt/fxboard/internal/signals"
	"github.com/dgnsrekt/fxboard/internal/storage"
	"github.com/dgnsrekt/fxboard/internal/view"
)

// EventViewUpdated is the type of the event published after each load.
const EventViewUpdated = "view-updated"

type updateEvent struct {
	Type     string    `json:"type"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
}

// HistoryEntry is one line of the load history.
type HistoryEntry struct {
	LoadedAt  time.Time        `json:"loaded_at"`
	Pairs     int              `json:"pairs"`
	Summary   *signals.Summary `json:"summary,omitempty"`
	ForexData json.RawMessage  `json:"forexData"`
}

// UpdateEvent is the push message for v.
func UpdateEvent(v view.View) relay.Event {
	payload, _ := json.Marshal(updateEvent{Type: EventViewUpdated, Source: v.Source, LoadedAt: v.LoadedAt})
	return relay.Event{Feed: v.Source, Payload: string(payload)}
}

// Hooks fan a freshly applied view out to the optional side channels.
// Any nil field is skipped.
type Hooks struct {
	Broker        *relay.Broker
	History       *storage.History
	Watcher       *notify.TopPickWatcher
	NotifyTimeout time.Duration
}

// OnUpdate is registered with view.Loader.OnUpdate. It never blocks on the
// notifiers.
func (h Hooks) OnUpdate(v view.View) {
	if h.Broker != nil {
		h.Broker.Publish(UpdateEvent(v))
	}

	if h.History != nil {
		entry := HistoryEntry{LoadedAt: v.LoadedAt, Pairs: len(v.Rows), ForexData: v.Raw}
		if v.HasSummary {
			s := v.Summary
			entry.Summary = &s
		}
		if err := h.History.Append(v.Source, entry); err != nil {
			slog.Debug("history append skipped", "source", v.Source, "error", err)
		}
	}

	if h.Watcher != nil && v.HasSummary {
		timeout := h.NotifyTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		h.Watcher.ObserveAsync(v.Source, v.Summary, timeout)
	}
}
