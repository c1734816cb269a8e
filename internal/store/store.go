// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/jdeboer/debatkamer/internal/domain"
)

// Repository defines the interface for persisting debate sessions and topics.
type Repository interface {
	// GetSession retrieves a session by ID. Returns (nil, nil) when the
	// session does not exist.
	GetSession(ctx context.Context, id string) (*domain.Session, error)

	// SaveSession creates or overwrites a session record wholesale.
	// No partial updates: the full document is written on each mutation.
	SaveSession(ctx context.Context, session *domain.Session) error

	// GetTopic retrieves a topic by ID. Returns (nil, nil) when the topic
	// does not exist.
	GetTopic(ctx context.Context, id string) (*domain.Topic, error)

	// ListTopics returns all topics ordered by category and title.
	ListTopics(ctx context.Context) ([]*domain.Topic, error)

	// UpsertTopic creates or updates a topic by title.
	UpsertTopic(ctx context.Context, topic *domain.Topic) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
