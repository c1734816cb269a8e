package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jdeboer/debatkamer/internal/domain"
	"github.com/jdeboer/debatkamer/internal/shared"
	_ "modernc.org/sqlite"
)

// saveRetries bounds retries on SQLITE_BUSY during session writes.
const saveRetries = 3

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS topics (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL UNIQUE,
		description TEXT,
		category TEXT NOT NULL,
		is_sensitive INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_topics_category ON topics(category);

	CREATE TABLE IF NOT EXISTS debate_sessions (
		id TEXT PRIMARY KEY,
		topic_id TEXT NOT NULL,
		topic_title TEXT NOT NULL,
		standpoint TEXT NOT NULL,
		messages_json TEXT NOT NULL,
		turn_limit INTEGER NOT NULL,
		current_turn INTEGER NOT NULL DEFAULT 0,
		summary_json TEXT,
		completed INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON debate_sessions(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	query := `
		SELECT id, topic_id, topic_title, standpoint, messages_json,
		       turn_limit, current_turn, summary_json, completed,
		       created_at, updated_at
		FROM debate_sessions WHERE id = ?`

	row := s.db.QueryRowContext(ctx, query, id)

	var sess domain.Session
	var messagesJSON string
	var summaryJSON sql.NullString
	var completed int
	var createdAt, updatedAt int64

	err := row.Scan(
		&sess.ID, &sess.TopicID, &sess.TopicTitle, &sess.Standpoint,
		&messagesJSON, &sess.TurnLimit, &sess.CurrentTurn,
		&summaryJSON, &completed, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	if err := json.Unmarshal([]byte(messagesJSON), &sess.Messages); err != nil {
		return nil, fmt.Errorf("decode session messages: %w", err)
	}
	if summaryJSON.Valid {
		var summary domain.Summary
		if err := json.Unmarshal([]byte(summaryJSON.String), &summary); err != nil {
			return nil, fmt.Errorf("decode session summary: %w", err)
		}
		sess.Summary = &summary
	}
	sess.Completed = completed != 0
	sess.CreatedAt = time.Unix(createdAt, 0)
	sess.UpdatedAt = time.Unix(updatedAt, 0)

	return &sess, nil
}

// SaveSession creates or overwrites a session record wholesale. Writes are
// retried on SQLite concurrency errors.
func (s *SQLiteStore) SaveSession(ctx context.Context, session *domain.Session) error {
	messagesJSON, err := json.Marshal(session.Messages)
	if err != nil {
		return fmt.Errorf("encode session messages: %w", err)
	}

	var summaryJSON interface{}
	if session.Summary != nil {
		data, err := json.Marshal(session.Summary)
		if err != nil {
			return fmt.Errorf("encode session summary: %w", err)
		}
		summaryJSON = string(data)
	}

	completed := 0
	if session.Completed {
		completed = 1
	}

	query := `
	INSERT INTO debate_sessions (id, topic_id, topic_title, standpoint, messages_json,
		turn_limit, current_turn, summary_json, completed, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		messages_json = excluded.messages_json,
		current_turn = excluded.current_turn,
		summary_json = excluded.summary_json,
		completed = excluded.completed,
		updated_at = excluded.updated_at`

	for attempt := 0; ; attempt++ {
		_, err = s.db.ExecContext(ctx, query,
			session.ID, session.TopicID, session.TopicTitle, string(session.Standpoint),
			string(messagesJSON), session.TurnLimit, session.CurrentTurn,
			summaryJSON, completed,
			session.CreatedAt.Unix(), session.UpdatedAt.Unix(),
		)
		if err == nil {
			return nil
		}
		if !shared.IsSQLiteConflictError(err) || attempt >= saveRetries-1 {
			return fmt.Errorf("save session: %w", err)
		}
		delay := 50 * time.Millisecond * time.Duration(1<<attempt)
		slog.Debug("Session save hit locked database, retrying",
			"session_id", session.ID, "attempt", attempt+1, "delay", delay)
		time.Sleep(delay)
	}
}

// GetTopic retrieves a topic by ID.
func (s *SQLiteStore) GetTopic(ctx context.Context, id string) (*domain.Topic, error) {
	query := `SELECT id, title, description, category, is_sensitive FROM topics WHERE id = ?`

	row := s.db.QueryRowContext(ctx, query, id)

	var topic domain.Topic
	var description sql.NullString
	var sensitive int

	err := row.Scan(&topic.ID, &topic.Title, &description, &topic.Category, &sensitive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan topic row: %w", err)
	}

	topic.Description = description.String
	topic.IsSensitive = sensitive != 0

	return &topic, nil
}

// ListTopics returns all topics ordered by category and title.
func (s *SQLiteStore) ListTopics(ctx context.Context) ([]*domain.Topic, error) {
	query := `SELECT id, title, description, category, is_sensitive FROM topics ORDER BY category, title`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close topic rows", "error", closeErr)
		}
	}()

	var topics []*domain.Topic
	for rows.Next() {
		var topic domain.Topic
		var description sql.NullString
		var sensitive int

		if err := rows.Scan(&topic.ID, &topic.Title, &description, &topic.Category, &sensitive); err != nil {
			return nil, fmt.Errorf("scan topic row: %w", err)
		}

		topic.Description = description.String
		topic.IsSensitive = sensitive != 0
		topics = append(topics, &topic)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topics: %w", err)
	}

	return topics, nil
}

// UpsertTopic creates or updates a topic by title. Refreshed catalogs keep
// the original ID for an already known title.
func (s *SQLiteStore) UpsertTopic(ctx context.Context, topic *domain.Topic) error {
	query := `
	INSERT INTO topics (id, title, description, category, is_sensitive, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(title) DO UPDATE SET
		description = excluded.description,
		category = excluded.category,
		is_sensitive = excluded.is_sensitive`

	var description interface{}
	if topic.Description != "" {
		description = topic.Description
	}

	sensitive := 0
	if topic.IsSensitive {
		sensitive = 1
	}

	_, err := s.db.ExecContext(ctx, query,
		topic.ID, topic.Title, description, topic.Category, sensitive, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert topic: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
