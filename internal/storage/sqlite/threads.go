// ABOUTME: Thread and tag storage operations for SQLite
// ABOUTME: Implements thread persistence with tagging support
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harper/vault-standalone/internal/models"
)

// ErrNotFound marks lookups of absent threads, turns, or tags.
var ErrNotFound = errors.New("not found")

// ThreadStore handles thread persistence
type ThreadStore struct {
	db *DB
}

// NewThreadStore creates a new ThreadStore
func NewThreadStore(db *DB) *ThreadStore {
	return &ThreadStore{db: db}
}

// Create saves a new thread
func (s *ThreadStore) Create(thread *models.Thread) error {
	metadataJSON, err := marshalJSONField(thread.Metadata)
	if err != nil {
		return fmt.Errorf("marshaling thread metadata: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO threads (id, title, description, status, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, thread.ThreadID, thread.Title, nullString(thread.Description), string(thread.Status),
		metadataJSON, thread.CreatedAt, thread.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting thread: %w", err)
	}
	return nil
}

// Find retrieves a thread by id
func (s *ThreadStore) Find(threadID string) (*models.Thread, error) {
	row := s.db.QueryRow(`
		SELECT id, title, description, status, metadata, created_at, updated_at
		FROM threads
		WHERE id = ?
	`, threadID)

	thread, err := scanThread(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("thread %s: %w", threadID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("finding thread: %w", err)
	}
	return thread, nil
}

// List retrieves threads ordered by most recently updated. Archived threads
// are excluded unless includeArchived is set.
func (s *ThreadStore) List(includeArchived bool, limit int) ([]models.Thread, error) {
	query := `
		SELECT id, title, description, status, metadata, created_at, updated_at
		FROM threads
	`
	var args []interface{}
	if !includeArchived {
		query += " WHERE status = ?"
		args = append(args, string(models.StatusActive))
	}
	query += " ORDER BY updated_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing threads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var threads []models.Thread
	for rows.Next() {
		thread, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning thread: %w", err)
		}
		threads = append(threads, *thread)
	}
	return threads, rows.Err()
}

// UpdateStatus sets a thread's lifecycle status
func (s *ThreadStore) UpdateStatus(threadID string, status models.ThreadStatus) error {
	result, err := s.db.Exec(`
		UPDATE threads SET status = ?, updated_at = ? WHERE id = ?
	`, string(status), time.Now().UTC(), threadID)
	if err != nil {
		return fmt.Errorf("updating thread status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("thread %s: %w", threadID, ErrNotFound)
	}
	return nil
}

// CreateTag saves a new tag
func (s *ThreadStore) CreateTag(tag *models.Tag) error {
	_, err := s.db.Exec(`
		INSERT INTO tags (id, name, color) VALUES (?, ?, ?)
	`, tag.TagID, tag.Name, nullString(tag.Color))
	if err != nil {
		return fmt.Errorf("inserting tag: %w", err)
	}
	return nil
}

// TagThread attaches a tag to a thread (idempotent)
func (s *ThreadStore) TagThread(threadID, tagID string) error {
	_, err := s.db.Exec(`
		INSERT INTO thread_tags (thread_id, tag_id) VALUES (?, ?)
		ON CONFLICT(thread_id, tag_id) DO NOTHING
	`, threadID, tagID)
	if err != nil {
		return fmt.Errorf("tagging thread: %w", err)
	}
	return nil
}

// ThreadTags lists the tags attached to a thread
func (s *ThreadStore) ThreadTags(threadID string) ([]models.Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.color
		FROM tags t
		JOIN thread_tags tt ON tt.tag_id = t.id
		WHERE tt.thread_id = ?
		ORDER BY t.name ASC
	`, threadID)
	if err != nil {
		return nil, fmt.Errorf("listing thread tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tags []models.Tag
	for rows.Next() {
		var (
			tag   models.Tag
			color sql.NullString
		)
		if err := rows.Scan(&tag.TagID, &tag.Name, &color); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		if color.Valid {
			tag.Color = color.String
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// scanner abstracts sql.Row and sql.Rows for shared scanning
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanThread(row scanner) (*models.Thread, error) {
	var (
		thread       models.Thread
		description  sql.NullString
		metadataJSON sql.NullString
		status       string
	)

	err := row.Scan(&thread.ThreadID, &thread.Title, &description, &status,
		&metadataJSON, &thread.CreatedAt, &thread.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		thread.Description = description.String
	}
	thread.Status = models.ThreadStatus(status)
	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &thread.Metadata); err != nil {
			thread.Metadata = nil
		}
	}
	return &thread, nil
}

// marshalJSONField marshals a map for storage, using NULL for empty maps
func marshalJSONField(m map[string]any) (sql.NullString, error) {
	if len(m) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// nullString converts an empty string to SQL NULL
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
