package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/formscout/formscout/internal/pipeline"
)

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Ping sends an SSE comment line to keep intermediaries from closing an
// idle stream.
func (s *SSEWriter) Ping() error {
	if _, err := fmt.Fprint(s.w, ": ping\n\n"); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// subscriberBuffer bounds how far a slow consumer may fall behind before
// events are dropped.
const subscriberBuffer = 16

// heartbeatInterval paces keep-alive comments on idle event streams.
const heartbeatInterval = 15 * time.Second

// eventHub fans progress events out to every connected SSE stream.
type eventHub struct {
	mu   sync.Mutex
	subs map[chan pipeline.ProgressEvent]struct{}
}

func newEventHub() *eventHub {
	return &eventHub{subs: make(map[chan pipeline.ProgressEvent]struct{})}
}

func (h *eventHub) subscribe() chan pipeline.ProgressEvent {
	ch := make(chan pipeline.ProgressEvent, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *eventHub) unsubscribe(ch chan pipeline.ProgressEvent) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// broadcast delivers an event to every subscriber without blocking. A
// subscriber whose buffer is full loses the event rather than stalling the
// operation that produced it.
func (h *eventHub) broadcast(ev pipeline.ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// handleEvents streams scan and fill progress as Server-Sent Events. Each
// stream opens with a snapshot of the current field list.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.opMu.Lock()
	gen, fields := s.session.Summaries()
	s.opMu.Unlock()
	if err := sse.WriteEvent("snapshot", FieldsResponse{Generation: gen, Fields: fields}); err != nil {
		return
	}

	ch := s.hub.subscribe()
	defer s.hub.unsubscribe(ch)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			if err := sse.WriteEvent(ev.Step, ev); err != nil {
				return
			}
		case <-heartbeat.C:
			if err := sse.Ping(); err != nil {
				return
			}
		}
	}
}
