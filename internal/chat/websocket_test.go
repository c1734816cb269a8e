package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/jdeboer/debatkamer/internal/coach"
	"github.com/jdeboer/debatkamer/internal/debate"
	"github.com/jdeboer/debatkamer/internal/domain"
	"github.com/jdeboer/debatkamer/internal/store"
)

func newTestEngine(t *testing.T) *debate.Engine {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Failed to close store: %v", err)
		}
	})
	return debate.NewEngine(repo, coach.NewSelectorWithSource(func(n int) int { return 0 }))
}

func readFrame(t *testing.T, ctx context.Context, ws *websocket.Conn) wsFrame {
	t.Helper()
	_, data, err := ws.Read(ctx)
	if err != nil {
		t.Fatalf("WebSocket read failed: %v", err)
	}
	var frame wsFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("Failed to decode frame: %v", err)
	}
	return frame
}

func writeFrame(t *testing.T, ctx context.Context, ws *websocket.Conn, frame wsFrame) {
	t.Helper()
	data, err := json.Marshal(frame)
	if err != nil {
		t.Fatalf("Failed to encode frame: %v", err)
	}
	if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("WebSocket write failed: %v", err)
	}
}

func TestWebSocketDebateRoundTrip(t *testing.T) {
	engine := newTestEngine(t)
	topic := &domain.Topic{ID: "topic-1", Title: "Huiswerk afschaffen", Category: "onderwijs"}
	sess, err := engine.CreateSession(context.Background(), topic, domain.StandpointFor, 1)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	handler := NewWebSocketHandler(engine, "", true)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1) + "?session_id=" + sess.ID
	ws, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer func() {
		_ = ws.Close(websocket.StatusNormalClosure, "done")
	}()

	// Initial state replay.
	frame := readFrame(t, ctx, ws)
	if frame.Type != "session" {
		t.Fatalf("Expected session frame, got %q", frame.Type)
	}
	if frame.Session == nil || frame.Session.CurrentTurn != 0 {
		t.Fatalf("Unexpected session state: %+v", frame.Session)
	}

	// One turn on a one-turn session produces a coach reply and a summary.
	writeFrame(t, ctx, ws, wsFrame{Type: "turn", Content: "Huiswerk kost leerlingen veel te veel vrije tijd."})

	frame = readFrame(t, ctx, ws)
	if frame.Type != "coach" {
		t.Fatalf("Expected coach frame, got %q: %+v", frame.Type, frame)
	}
	if frame.Content == "" {
		t.Error("Expected non-empty coach reply")
	}

	frame = readFrame(t, ctx, ws)
	if frame.Type != "summary" {
		t.Fatalf("Expected summary frame, got %q", frame.Type)
	}
	if frame.Summary == nil || frame.Summary.PerformanceScore < 4 {
		t.Fatalf("Unexpected summary: %+v", frame.Summary)
	}
	if frame.Session == nil || !frame.Session.Completed {
		t.Error("Expected completed session in summary frame")
	}

	// Further turns are rejected on the completed session.
	writeFrame(t, ctx, ws, wsFrame{Type: "turn", Content: "Nog een argument."})
	frame = readFrame(t, ctx, ws)
	if frame.Type != "error" || frame.Content != "session_complete" {
		t.Errorf("Expected session_complete error, got %+v", frame)
	}
}

func TestWebSocketPing(t *testing.T) {
	engine := newTestEngine(t)
	topic := &domain.Topic{ID: "topic-1", Title: "Huiswerk afschaffen", Category: "onderwijs"}
	sess, err := engine.CreateSession(context.Background(), topic, domain.StandpointAgainst, 3)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	srv := httptest.NewServer(NewWebSocketHandler(engine, "", true))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1) + "?session_id=" + sess.ID
	ws, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer func() {
		_ = ws.Close(websocket.StatusNormalClosure, "done")
	}()

	readFrame(t, ctx, ws) // session replay

	writeFrame(t, ctx, ws, wsFrame{Type: "ping"})
	frame := readFrame(t, ctx, ws)
	if frame.Type != "pong" {
		t.Errorf("Expected pong, got %q", frame.Type)
	}
}

func TestWebSocketRequiresSessionID(t *testing.T) {
	srv := httptest.NewServer(NewWebSocketHandler(newTestEngine(t), "", true))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 without session_id, got %d", resp.StatusCode)
	}
}

func TestCheckOrigin(t *testing.T) {
	h := NewWebSocketHandler(nil, "https://debatkamer.example", false)

	req := httptest.NewRequest(http.MethodGet, "/ws/debate", nil)
	req.Header.Set("Origin", "https://debatkamer.example")
	if !h.checkOrigin(req) {
		t.Error("Expected matching origin to be allowed")
	}

	req.Header.Set("Origin", "https://evil.example")
	if h.checkOrigin(req) {
		t.Error("Expected mismatched origin to be rejected")
	}

	dev := NewWebSocketHandler(nil, "https://debatkamer.example", true)
	if !dev.checkOrigin(req) {
		t.Error("Expected dev mode to allow any origin")
	}
}
