// ABOUTME: Turn storage operations for SQLite
// ABOUTME: Serialized per-thread append, lookup, and embedding writes
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harper/vault-standalone/internal/models"
)

// TurnStore handles turn persistence
type TurnStore struct {
	db *DB
}

// NewTurnStore creates a new TurnStore
func NewTurnStore(db *DB) *TurnStore {
	return &TurnStore{db: db}
}

// Append inserts turn at the thread's next order index. The count and insert
// run inside one transaction and the schema carries a unique
// (thread_id, order_index) index, so concurrent appends on the same thread
// serialize instead of producing duplicate or gapped indices. On success
// turn.OrderIndex holds the assigned index.
func (s *TurnStore) Append(turn *models.Turn) error {
	annotationsJSON, err := marshalJSONField(turn.Annotations)
	if err != nil {
		return fmt.Errorf("marshaling turn annotations: %w", err)
	}

	tx, err := s.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("beginning append transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(1) FROM threads WHERE id = ?`, turn.ThreadID).Scan(&exists); err != nil {
		return fmt.Errorf("checking thread: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("thread %s: %w", turn.ThreadID, ErrNotFound)
	}

	var nextIndex int
	if err := tx.QueryRow(`SELECT COUNT(1) FROM turns WHERE thread_id = ?`, turn.ThreadID).Scan(&nextIndex); err != nil {
		return fmt.Errorf("counting turns: %w", err)
	}

	var tokenCount sql.NullInt64
	if turn.TokenCountEstimate > 0 {
		tokenCount = sql.NullInt64{Int64: int64(turn.TokenCountEstimate), Valid: true}
	}

	_, err = tx.Exec(`
		INSERT INTO turns (id, thread_id, role, content, order_index, token_count_estimate, annotations, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, turn.TurnID, turn.ThreadID, string(turn.Role), turn.Content, nextIndex,
		tokenCount, annotationsJSON, turn.CreatedAt, turn.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting turn: %w", err)
	}

	if _, err := tx.Exec(`UPDATE threads SET updated_at = ? WHERE id = ?`, time.Now().UTC(), turn.ThreadID); err != nil {
		return fmt.Errorf("touching thread: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing append: %w", err)
	}

	turn.OrderIndex = nextIndex
	return nil
}

// Find retrieves a turn by id
func (s *TurnStore) Find(turnID string) (*models.Turn, error) {
	row := s.db.QueryRow(turnSelect+` WHERE id = ?`, turnID)

	turn, err := scanTurn(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("turn %s: %w", turnID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("finding turn: %w", err)
	}
	return turn, nil
}

// ListByThread retrieves all turns for a thread, ordered by order index ascending
func (s *TurnStore) ListByThread(threadID string) ([]models.Turn, error) {
	rows, err := s.db.Query(turnSelect+`
		WHERE thread_id = ?
		ORDER BY order_index ASC
	`, threadID)
	if err != nil {
		return nil, fmt.Errorf("listing turns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTurns(rows)
}

// Recent retrieves the thread's n most recent turns in ascending order.
func (s *TurnStore) Recent(threadID string, n int) ([]models.Turn, error) {
	rows, err := s.db.Query(`
		SELECT * FROM (`+turnSelect+`
			WHERE thread_id = ?
			ORDER BY order_index DESC
			LIMIT ?
		) ORDER BY order_index ASC
	`, threadID, n)
	if err != nil {
		return nil, fmt.Errorf("listing recent turns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTurns(rows)
}

// Count returns the number of turns in a thread
func (s *TurnStore) Count(threadID string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM turns WHERE thread_id = ?`, threadID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting turns: %w", err)
	}
	return count, nil
}

// UpdateEmbedding overwrites the turn's stored vector and records which
// provider produced it. This is the only embedding write path.
func (s *TurnStore) UpdateEmbedding(turnID string, vector []float64, providerName string) error {
	result, err := s.db.Exec(`
		UPDATE turns SET embedding = ?, embedding_model = ?, updated_at = ? WHERE id = ?
	`, vectorToBlob(vector), providerName, time.Now().UTC(), turnID)
	if err != nil {
		return fmt.Errorf("updating turn embedding: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("turn %s: %w", turnID, ErrNotFound)
	}
	return nil
}

const turnSelect = `
	SELECT id, thread_id, role, content, order_index, token_count_estimate, annotations, embedding, embedding_model, created_at, updated_at
	FROM turns`

func scanTurn(row scanner) (*models.Turn, error) {
	var (
		turn            models.Turn
		role            string
		tokenCount      sql.NullInt64
		annotationsJSON sql.NullString
		embeddingBlob   []byte
		embeddingModel  sql.NullString
	)

	err := row.Scan(&turn.TurnID, &turn.ThreadID, &role, &turn.Content, &turn.OrderIndex,
		&tokenCount, &annotationsJSON, &embeddingBlob, &embeddingModel,
		&turn.CreatedAt, &turn.UpdatedAt)
	if err != nil {
		return nil, err
	}

	turn.Role = models.Role(role)
	if tokenCount.Valid {
		turn.TokenCountEstimate = int(tokenCount.Int64)
	}
	if annotationsJSON.Valid && annotationsJSON.String != "" {
		if err := json.Unmarshal([]byte(annotationsJSON.String), &turn.Annotations); err != nil {
			turn.Annotations = nil
		}
	}
	if len(embeddingBlob) > 0 {
		turn.Embedding = blobToVector(embeddingBlob)
	}
	if embeddingModel.Valid {
		turn.EmbeddingModel = embeddingModel.String
	}
	return &turn, nil
}

func scanTurns(rows *sql.Rows) ([]models.Turn, error) {
	var turns []models.Turn
	for rows.Next() {
		turn, err := scanTurn(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		turns = append(turns, *turn)
	}
	return turns, rows.Err()
}
