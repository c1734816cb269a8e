package domain

import "time"

// Role identifies the author of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleCoach Role = "coach"
)

// Message is a single entry in a debate transcript. Transcripts are
// append-only; messages are never mutated or reordered after creation.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content, Timestamp: time.Now().UTC()}
}
