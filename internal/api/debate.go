package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jdeboer/debatkamer/internal/coach"
	"github.com/jdeboer/debatkamer/internal/debate"
	"github.com/jdeboer/debatkamer/internal/domain"
	"github.com/jdeboer/debatkamer/internal/safety"
)

// apologyMessage is shown to the user when a turn fails; it is never
// persisted into the transcript.
const apologyMessage = "Sorry, er ging iets mis. Probeer het opnieuw."

// DebateHandler handles debate session and coach endpoints.
type DebateHandler struct {
	*Handler
	selector *coach.Selector
}

// NewDebateHandler creates a new debate handler.
func NewDebateHandler(base *Handler, selector *coach.Selector) *DebateHandler {
	return &DebateHandler{Handler: base, selector: selector}
}

// RegisterRoutes registers debate routes.
func (h *DebateHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/coach", h.CoachTurn)
		r.Post("/coach/summary", h.CoachSummary)

		r.Get("/topics", h.ListTopics)
		r.Post("/topics/refresh", h.RefreshTopics)

		r.Post("/sessions", h.CreateSession)
		r.Get("/sessions/{id}", h.GetSession)
		r.Post("/sessions/{id}/turns", h.SubmitTurn)
		r.Post("/sessions/{id}/summary", h.Summarize)
	})
}

type coachTurnRequest struct {
	Topic       string `json:"topic"`
	Standpoint  string `json:"standpoint"`
	UserInput   string `json:"userInput"`
	IsSensitive bool   `json:"isSensitive,omitempty"`
}

// CoachTurn is the stateless coach endpoint: given topic, the user's
// standpoint, and their latest input, it returns the coach's reply without
// touching any session state.
func (h *DebateHandler) CoachTurn(w http.ResponseWriter, r *http.Request) {
	var req coachTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, ErrKindBadRequest, "invalid JSON body")
		return
	}
	if req.Topic == "" || req.Standpoint == "" {
		Error(w, http.StatusBadRequest, ErrKindBadRequest, "missing required fields")
		return
	}
	if req.UserInput == "" {
		Error(w, http.StatusBadRequest, ErrKindBadRequest, "missing userInput for debate response")
		return
	}
	standpoint, err := domain.ParseStandpoint(req.Standpoint)
	if err != nil {
		Error(w, http.StatusBadRequest, ErrKindBadRequest, err.Error())
		return
	}

	// A topic pre-flagged as sensitive skips selection entirely.
	if req.IsSensitive {
		JSON(w, http.StatusOK, map[string]string{"response": safety.Message})
		return
	}

	JSON(w, http.StatusOK, map[string]string{
		"response": h.selector.Respond(req.Topic, standpoint, req.UserInput),
	})
}

type coachSummaryRequest struct {
	Topic      string           `json:"topic"`
	Standpoint string           `json:"standpoint"`
	Messages   []domain.Message `json:"messages"`
}

// CoachSummary is the stateless summary endpoint: it scores a transcript
// without requiring a stored session.
func (h *DebateHandler) CoachSummary(w http.ResponseWriter, r *http.Request) {
	var req coachSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, ErrKindBadRequest, "invalid JSON body")
		return
	}
	if req.Topic == "" || req.Standpoint == "" {
		Error(w, http.StatusBadRequest, ErrKindBadRequest, "missing required fields")
		return
	}
	if len(req.Messages) == 0 {
		Error(w, http.StatusBadRequest, ErrKindBadRequest, "missing messages for summary")
		return
	}
	standpoint, err := domain.ParseStandpoint(req.Standpoint)
	if err != nil {
		Error(w, http.StatusBadRequest, ErrKindBadRequest, err.Error())
		return
	}

	JSON(w, http.StatusOK, map[string]domain.Summary{
		"summary": coach.Score(req.Messages, standpoint),
	})
}

// ListTopics returns the topic catalog.
func (h *DebateHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.List(r.Context())
	if err != nil {
		slog.Error("Failed to list topics", "error", err)
		Error(w, http.StatusInternalServerError, ErrKindInternal, "failed to list topics")
		return
	}
	if list == nil {
		list = []*domain.Topic{}
	}
	JSON(w, http.StatusOK, map[string]interface{}{"topics": list})
}

type refreshTopicsRequest struct {
	Count int `json:"count"`
}

// RefreshTopics pulls fresh topics from the external supplier.
func (h *DebateHandler) RefreshTopics(w http.ResponseWriter, r *http.Request) {
	req := refreshTopicsRequest{Count: 5}
	// Body is optional; a bare POST refreshes the default count.
	_ = json.NewDecoder(r.Body).Decode(&req)

	stored, err := h.catalog.Refresh(r.Context(), req.Count)
	if err != nil {
		slog.Error("Topic refresh failed", "error", err)
		Error(w, http.StatusBadGateway, ErrKindInternal, "topic supplier unavailable")
		return
	}
	JSON(w, http.StatusOK, map[string]int{"stored": stored})
}

type createSessionRequest struct {
	TopicID    string `json:"topic_id"`
	Standpoint string `json:"standpoint"`
	TurnLimit  int    `json:"turn_limit"`
}

// CreateSession starts a new debate session with the coach's welcome
// message already appended.
func (h *DebateHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, ErrKindBadRequest, "invalid JSON body")
		return
	}
	if req.TopicID == "" || req.Standpoint == "" || req.TurnLimit <= 0 {
		Error(w, http.StatusBadRequest, ErrKindBadRequest, "missing required fields")
		return
	}
	standpoint, err := domain.ParseStandpoint(req.Standpoint)
	if err != nil {
		Error(w, http.StatusBadRequest, ErrKindBadRequest, err.Error())
		return
	}

	topic, err := h.catalog.Get(r.Context(), req.TopicID)
	if err != nil {
		slog.Error("Failed to load topic", "topic_id", req.TopicID, "error", err)
		Error(w, http.StatusInternalServerError, ErrKindInternal, "failed to load topic")
		return
	}
	if topic == nil {
		Error(w, http.StatusNotFound, ErrKindNotFound, "topic not found")
		return
	}

	sess, err := h.engine.CreateSession(r.Context(), topic, standpoint, req.TurnLimit)
	if err != nil {
		slog.Error("Failed to create session", "topic_id", req.TopicID, "error", err)
		Error(w, http.StatusInternalServerError, ErrKindInternal, "failed to create session")
		return
	}

	slog.Info("Session created", "session_id", sess.ID, "topic_id", topic.ID, "turn_limit", sess.TurnLimit)
	JSON(w, http.StatusCreated, sess)
}

// GetSession returns the full persisted session document.
func (h *DebateHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.engine.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	JSON(w, http.StatusOK, sess)
}

type turnRequest struct {
	Content string `json:"content"`
}

// SubmitTurn processes one user turn and returns the coach's reply plus the
// updated session state.
func (h *DebateHandler) SubmitTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, ErrKindBadRequest, "invalid JSON body")
		return
	}

	id := chi.URLParam(r, "id")
	msg, sess, err := h.engine.SubmitTurn(r.Context(), id, req.Content)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"message": msg,
		"session": sess,
	})
}

// Summarize attaches the session summary, completing the session. Safe to
// retry: a completed session returns its stored summary.
func (h *DebateHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	sess, err := h.engine.Summarize(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	JSON(w, http.StatusOK, sess)
}

// writeEngineError maps engine errors onto the HTTP error taxonomy.
func (h *DebateHandler) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, debate.ErrSessionNotFound):
		Error(w, http.StatusNotFound, ErrKindNotFound, "session not found")
	case errors.Is(err, debate.ErrEmptyInput):
		Error(w, http.StatusBadRequest, ErrKindBadRequest, "message content is empty")
	case errors.Is(err, debate.ErrTurnInFlight):
		Error(w, http.StatusConflict, ErrKindConflict, "a turn is already being processed")
	case errors.Is(err, debate.ErrSessionComplete):
		Error(w, http.StatusConflict, ErrKindConflict, "session no longer accepts input")
	case errors.Is(err, debate.ErrSessionActive):
		Error(w, http.StatusConflict, ErrKindConflict, "session still has turns remaining")
	default:
		slog.Error("Debate request failed", "error", err)
		Error(w, http.StatusInternalServerError, ErrKindInternal, apologyMessage)
	}
}
