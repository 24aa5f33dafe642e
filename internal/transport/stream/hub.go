package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"instinct/internal/app/ports"
)

// Hub decorates a DecisionLog and fans every appended record out to
// websocket subscribers, so observers can watch agents decide live. Slow
// subscribers drop messages rather than stall the simulation.
type Hub struct {
	next ports.DecisionLog
	log  zerolog.Logger

	mu   sync.Mutex
	subs map[chan []byte]struct{}

	upgrader websocket.Upgrader
}

func NewHub(next ports.DecisionLog, log zerolog.Logger) *Hub {
	return &Hub{
		next: next,
		log:  log,
		subs: make(map[chan []byte]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

type event struct {
	AgentID   string  `json:"agent_id"`
	ActionTag string  `json:"action_tag"`
	Event     string  `json:"event"`
	Score     float64 `json:"score"`
	Context   string  `json:"context,omitempty"`
	At        int64   `json:"at_unix_ms"`
}

func (h *Hub) Append(ctx context.Context, rec ports.DecisionRecord) error {
	b, err := json.Marshal(event{
		AgentID:   rec.AgentID,
		ActionTag: rec.ActionTag.String(),
		Event:     rec.Event,
		Score:     rec.Score,
		Context:   rec.Context,
		At:        rec.At.UnixMilli(),
	})
	if err == nil {
		h.broadcast(b)
	}

	if h.next == nil {
		return nil
	}
	return h.next.Append(ctx, rec)
}

func (h *Hub) Tail(ctx context.Context, limit int) ([]ports.DecisionRecord, error) {
	if h.next == nil {
		return nil, nil
	}
	return h.next.Tail(ctx, limit)
}

func (h *Hub) broadcast(b []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- b:
		default:
			// Subscriber is behind; drop this event for it.
		}
	}
}

func (h *Hub) subscribe() chan []byte {
	ch := make(chan []byte, 256)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// SubscriberCount reports the number of live websocket subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Handler upgrades to a websocket and streams decision events until the
// client disconnects.
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ch := h.subscribe()
		defer h.unsubscribe(ch)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case b := <-ch:
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					h.log.Debug().Err(err).Msg("decision stream write failed")
					return
				}
			}
		}
	}
}

// ListenAndServe runs a standalone HTTP server exposing the stream at /ws.
func (h *Hub) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h.Handler())
	return http.ListenAndServe(addr, mux)
}
