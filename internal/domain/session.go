package domain

import "time"

// SessionState represents where a debate session is in its lifecycle.
type SessionState string

const (
	// StateActive indicates the session accepts user turns.
	StateActive SessionState = "active"

	// StateAwaitingSummary indicates the turn limit has been reached and
	// the session is waiting for its summary to be generated.
	StateAwaitingSummary SessionState = "awaiting_summary"

	// StateCompleted indicates the summary is attached. Terminal: the
	// transcript and summary are immutable from this point.
	StateCompleted SessionState = "completed"
)

// Session holds the state of one debate practice session.
//
// Invariants: CurrentTurn counts only user-authored messages and never
// exceeds TurnLimit; Completed becomes true exactly once, when the final
// turn has resolved and a Summary has been attached.
type Session struct {
	ID          string     `json:"id"`
	TopicID     string     `json:"topic_id"`
	TopicTitle  string     `json:"topic_title"`
	Standpoint  Standpoint `json:"standpoint"`
	Messages    []Message  `json:"messages"`
	TurnLimit   int        `json:"turn_limit"`
	CurrentTurn int        `json:"current_turn"`
	Completed   bool       `json:"completed"`
	Summary     *Summary   `json:"summary,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// State derives the lifecycle state from the session fields, so state can
// never drift from the data that defines it.
func (s *Session) State() SessionState {
	switch {
	case s.Completed:
		return StateCompleted
	case s.CurrentTurn >= s.TurnLimit:
		return StateAwaitingSummary
	default:
		return StateActive
	}
}

// CoachStandpoint returns the side the coach argues.
func (s *Session) CoachStandpoint() Standpoint {
	return s.Standpoint.Opposite()
}

// TurnsLeft returns the number of user turns still available.
func (s *Session) TurnsLeft() int {
	left := s.TurnLimit - s.CurrentTurn
	if left < 0 {
		return 0
	}
	return left
}

// Append adds a message to the transcript.
func (s *Session) Append(m Message) {
	s.Messages = append(s.Messages, m)
}
