// Package chat provides the WebSocket transport for live debate sessions.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/jdeboer/debatkamer/internal/debate"
	"github.com/jdeboer/debatkamer/internal/domain"
)

// apologyMessage is sent to the client on a failed turn; it is never
// persisted into the transcript.
const apologyMessage = "Sorry, er ging iets mis. Probeer het opnieuw."

// wsFrame is the message structure exchanged over the socket.
type wsFrame struct {
	Type    string          `json:"type"`
	Content string          `json:"content,omitempty"`
	Session *domain.Session `json:"session,omitempty"`
	Summary *domain.Summary `json:"summary,omitempty"`
}

// WebSocketHandler drives a debate session over a WebSocket connection.
type WebSocketHandler struct {
	engine        *debate.Engine
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates a new WebSocket handler.
func NewWebSocketHandler(engine *debate.Engine, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{
		engine:        engine,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// ServeHTTP upgrades the connection and runs the debate message loop.
// The client identifies its session with the session_id query parameter,
// sends {"type":"turn","content":...} frames, and receives coach replies,
// the final summary, and error frames.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	slog.Info("WebSocket connection request", "session_id", sessionID, "ip", r.RemoteAddr)

	if sessionID == "" {
		http.Error(w, "session_id required", http.StatusBadRequest)
		return
	}
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "session_id", sessionID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "session_id", sessionID)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sess, err := h.engine.Session(ctx, sessionID)
	if err != nil {
		if writeErr := h.writeJSON(ws, wsFrame{Type: "error", Content: "session_not_found"}); writeErr != nil {
			slog.Debug("Failed to send session_not_found error", "error", writeErr)
		}
		return
	}

	// Replay current state so reconnecting clients catch up.
	if err := h.writeJSON(ws, wsFrame{Type: "session", Session: sess}); err != nil {
		slog.Debug("Failed to send session state", "error", err, "session_id", sessionID)
		return
	}

	h.messageLoop(ctx, ws, sessionID)
	slog.Info("Debate socket closed", "session_id", sessionID)
}

func (h *WebSocketHandler) messageLoop(ctx context.Context, ws *websocket.Conn, sessionID string) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "session_id", sessionID)
			} else if !errors.Is(err, context.Canceled) {
				slog.Warn("WebSocket read error", "error", err, "session_id", sessionID)
			}
			return
		}

		var frame wsFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			if writeErr := h.writeJSON(ws, wsFrame{Type: "error", Content: "invalid_frame"}); writeErr != nil {
				slog.Debug("Failed to send invalid_frame error", "error", writeErr)
			}
			continue
		}

		switch frame.Type {
		case "turn":
			h.handleTurn(ctx, ws, sessionID, frame.Content)
		case "ping":
			if err := h.writeJSON(ws, wsFrame{Type: "pong"}); err != nil {
				slog.Debug("Failed to send pong", "error", err)
			}
		}
	}
}

// handleTurn drives one user turn and, when the turn limit is reached,
// the summary that completes the session.
func (h *WebSocketHandler) handleTurn(ctx context.Context, ws *websocket.Conn, sessionID, content string) {
	msg, sess, err := h.engine.SubmitTurn(ctx, sessionID, content)
	if err != nil {
		h.writeTurnError(ws, sessionID, err)
		return
	}

	if err := h.writeJSON(ws, wsFrame{Type: "coach", Content: msg.Content, Session: sess}); err != nil {
		slog.Debug("Failed to send coach reply", "error", err, "session_id", sessionID)
		return
	}

	if sess.State() != domain.StateAwaitingSummary {
		return
	}

	completed, err := h.engine.Summarize(ctx, sessionID)
	if err != nil {
		slog.Error("Summary generation failed", "error", err, "session_id", sessionID)
		// The session stays awaiting_summary; the client may retry over HTTP.
		if writeErr := h.writeJSON(ws, wsFrame{Type: "error", Content: "summary_failed"}); writeErr != nil {
			slog.Debug("Failed to send summary_failed error", "error", writeErr)
		}
		return
	}
	if err := h.writeJSON(ws, wsFrame{Type: "summary", Summary: completed.Summary, Session: completed}); err != nil {
		slog.Debug("Failed to send summary", "error", err, "session_id", sessionID)
	}
}

func (h *WebSocketHandler) writeTurnError(ws *websocket.Conn, sessionID string, err error) {
	var content string
	switch {
	case errors.Is(err, debate.ErrEmptyInput):
		content = "empty_input"
	case errors.Is(err, debate.ErrTurnInFlight):
		content = "turn_in_flight"
	case errors.Is(err, debate.ErrSessionComplete):
		content = "session_complete"
	case errors.Is(err, debate.ErrSessionNotFound):
		content = "session_not_found"
	default:
		slog.Error("Turn failed", "error", err, "session_id", sessionID)
		content = apologyMessage
	}
	if writeErr := h.writeJSON(ws, wsFrame{Type: "error", Content: content}); writeErr != nil {
		slog.Debug("Failed to send turn error", "error", writeErr, "session_id", sessionID)
	}
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" || origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *WebSocketHandler) writeJSON(ws *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return ws.Write(context.Background(), websocket.MessageText, data)
}
