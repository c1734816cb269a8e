// Package domain contains core domain types for the debate practice service.
package domain

import "fmt"

// Topic is a debate topic. Topics are immutable once fetched; they are
// supplied by the external topic catalog.
type Topic struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	IsSensitive bool   `json:"is_sensitive"`
}

// Standpoint is one of the two mutually exclusive debate positions.
type Standpoint string

const (
	// StandpointFor argues in favor of the topic statement.
	StandpointFor Standpoint = "FOR"

	// StandpointAgainst argues against the topic statement.
	StandpointAgainst Standpoint = "AGAINST"
)

// Valid reports whether s is one of the two enum values.
func (s Standpoint) Valid() bool {
	return s == StandpointFor || s == StandpointAgainst
}

// Opposite returns the other standpoint. The coach always argues the
// opposite of the user's choice.
func (s Standpoint) Opposite() Standpoint {
	if s == StandpointFor {
		return StandpointAgainst
	}
	return StandpointFor
}

// Label returns the Dutch display label used in coach text.
func (s Standpoint) Label() string {
	if s == StandpointFor {
		return "VOOR"
	}
	return "TEGEN"
}

// ParseStandpoint converts a wire value into a Standpoint.
func ParseStandpoint(v string) (Standpoint, error) {
	s := Standpoint(v)
	if !s.Valid() {
		return "", fmt.Errorf("invalid standpoint %q", v)
	}
	return s, nil
}
