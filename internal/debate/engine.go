// Package debate implements the turn-limited debate session state machine.
//
// A session moves through three states derived from its data:
//
//   - Active: user turns are accepted until the turn limit is reached
//   - AwaitingSummary: the final turn has resolved; a summary is pending
//   - Completed: the summary is attached; the session is frozen
//
// The engine enforces at-most-one-in-flight-turn-per-session: a second
// submission while one is pending is rejected, not queued. Sessions are
// otherwise fully independent and share no mutable state.
package debate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jdeboer/debatkamer/internal/coach"
	"github.com/jdeboer/debatkamer/internal/domain"
	"github.com/jdeboer/debatkamer/internal/store"
)

var (
	// ErrEmptyInput is returned for an empty or whitespace-only turn.
	ErrEmptyInput = errors.New("debate: empty input")

	// ErrTurnInFlight is returned when a turn for the same session is
	// still being processed.
	ErrTurnInFlight = errors.New("debate: turn already in flight")

	// ErrSessionComplete is returned when the session no longer accepts
	// user input (turn limit reached or summary attached).
	ErrSessionComplete = errors.New("debate: session no longer accepts input")

	// ErrSessionActive is returned when a summary is requested before the
	// final turn has resolved.
	ErrSessionActive = errors.New("debate: session has turns remaining")

	// ErrSessionNotFound is returned when the session ID is unknown.
	ErrSessionNotFound = errors.New("debate: session not found")
)

// Engine drives debate sessions: it creates them, advances turns, and
// triggers summary generation at completion.
type Engine struct {
	repo     store.Repository
	selector *coach.Selector

	// turnLocks holds one mutex per session to enforce the
	// at-most-one-in-flight-turn invariant.
	turnLocks sync.Map
}

// NewEngine creates an engine backed by the given repository and selector.
func NewEngine(repo store.Repository, selector *coach.Selector) *Engine {
	return &Engine{repo: repo, selector: selector}
}

// CreateSession starts a new session for a topic. It appends the synthetic
// welcome message from the coach and persists the session. The welcome
// message does not consume a turn: current_turn is 0 afterwards.
func (e *Engine) CreateSession(ctx context.Context, topic *domain.Topic, standpoint domain.Standpoint, turnLimit int) (*domain.Session, error) {
	if !standpoint.Valid() {
		return nil, fmt.Errorf("debate: invalid standpoint %q", standpoint)
	}
	if turnLimit <= 0 {
		return nil, fmt.Errorf("debate: turn limit must be positive, got %d", turnLimit)
	}

	now := time.Now().UTC()
	sess := &domain.Session{
		ID:         uuid.NewString(),
		TopicID:    topic.ID,
		TopicTitle: topic.Title,
		Standpoint: standpoint,
		TurnLimit:  turnLimit,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	sess.Append(domain.NewMessage(domain.RoleCoach, coach.WelcomeMessage(standpoint)))

	if err := e.repo.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist new session: %w", err)
	}
	return sess, nil
}

// Session loads a session by ID.
func (e *Engine) Session(ctx context.Context, id string) (*domain.Session, error) {
	sess, err := e.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// SubmitTurn processes one user turn: it appends the user message,
// increments the turn counter, selects the coach's reply, appends it, and
// persists the updated transcript. It returns the coach message and the
// updated session.
//
// The turn is rejected without any state change when the input is empty,
// when the turn limit is reached, or when another turn for the same
// session is still in flight.
func (e *Engine) SubmitTurn(ctx context.Context, id, content string) (domain.Message, *domain.Session, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Message{}, nil, ErrEmptyInput
	}

	lock, _ := e.turnLocks.LoadOrStore(id, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	if !mu.TryLock() {
		return domain.Message{}, nil, ErrTurnInFlight
	}
	defer mu.Unlock()

	sess, err := e.Session(ctx, id)
	if err != nil {
		return domain.Message{}, nil, err
	}
	if sess.Completed || sess.CurrentTurn >= sess.TurnLimit {
		return domain.Message{}, nil, ErrSessionComplete
	}

	sess.Append(domain.NewMessage(domain.RoleUser, content))
	sess.CurrentTurn++

	reply := e.selector.Respond(sess.TopicTitle, sess.Standpoint, content)
	coachMsg := domain.NewMessage(domain.RoleCoach, reply)
	sess.Append(coachMsg)
	sess.UpdatedAt = time.Now().UTC()

	if err := e.repo.SaveSession(ctx, sess); err != nil {
		// The in-memory transcript stays intact for the caller; the
		// persisted record is unchanged, so a retry replays the turn.
		return domain.Message{}, sess, fmt.Errorf("persist turn: %w", err)
	}
	return coachMsg, sess, nil
}

// Summarize generates and attaches the session summary, completing the
// session. It is idempotent: a completed session returns its stored
// summary, and recomputing over the same frozen transcript yields the
// same result, so failed attempts are safe to retry.
func (e *Engine) Summarize(ctx context.Context, id string) (*domain.Session, error) {
	sess, err := e.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Completed {
		return sess, nil
	}
	if sess.CurrentTurn < sess.TurnLimit {
		return nil, ErrSessionActive
	}

	summary := coach.Score(sess.Messages, sess.Standpoint)
	sess.Summary = &summary
	sess.Completed = true
	sess.UpdatedAt = time.Now().UTC()

	if err := e.repo.SaveSession(ctx, sess); err != nil {
		// Persisted state still says awaiting_summary; the caller may retry.
		return nil, fmt.Errorf("persist summary: %w", err)
	}
	return sess, nil
}
