package events

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/prasenjit/oas-minify/internal/models"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// WebSocketHandler streams runs to WebSocket clients.
//
// Query parameters narrow the stream: specId keeps the runs of one spec, and
// match keeps the runs for which a gjson path over the run JSON is truthy,
// e.g. match=success or match=diagnostics.#(severity=="error").
type WebSocketHandler struct {
	feed     *Feed
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler.
func NewWebSocketHandler(feed *Feed, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &WebSocketHandler{
		feed:   feed,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP handles WebSocket upgrade and streaming.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	specID := r.URL.Query().Get("specId")
	match := r.URL.Query().Get("match")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	subID, runs := h.feed.Subscribe()
	defer h.feed.Unsubscribe(subID)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine notices the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case run, ok := <-runs:
			if !ok {
				return
			}
			data, send := h.encode(run, specID, match)
			if !send {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("websocket write failed", "error", err)
				return
			}

		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}

// encode serializes run and reports whether it passes the stream filters.
func (h *WebSocketHandler) encode(run *models.Run, specID, match string) ([]byte, bool) {
	if specID != "" && run.SpecID != specID {
		return nil, false
	}

	data, err := json.Marshal(run)
	if err != nil {
		h.logger.Error("failed to marshal run", "run", run.ID, "error", err)
		return nil, false
	}

	if match != "" && !Matches(data, match) {
		return nil, false
	}
	return data, true
}

// Matches reports whether the gjson path evaluates to a truthy value in data.
// Arrays and objects are truthy when non-empty.
func Matches(data []byte, path string) bool {
	res := gjson.GetBytes(data, path)
	switch {
	case !res.Exists():
		return false
	case res.IsArray():
		return len(res.Array()) > 0
	case res.IsObject():
		return res.Raw != "{}"
	default:
		return res.Bool()
	}
}
