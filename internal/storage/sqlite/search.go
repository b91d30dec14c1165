// ABOUTME: Vector similarity search over stored turn embeddings
// ABOUTME: Brute-force cosine scan with metadata filters, BLOB vector codec
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/harper/vault-standalone/internal/models"
)

// SearchSimilar scans stored embeddings and returns the k turns most similar
// to the query vector, ordered by similarity descending. Turns without an
// embedding and turns whose embedding dimension does not match the query are
// skipped. Ties are broken by turn id ascending so results are deterministic.
func (s *TurnStore) SearchSimilar(queryVector []float64, filter models.TurnFilter, k int) ([]models.TurnSearchResult, error) {
	if k <= 0 {
		return nil, nil
	}
	if len(queryVector) == 0 {
		return nil, fmt.Errorf("query vector is empty")
	}

	query := `
		SELECT tu.id, tu.thread_id, tu.role, tu.content, tu.order_index,
		       tu.token_count_estimate, tu.annotations, tu.embedding, tu.embedding_model,
		       tu.created_at, tu.updated_at, th.title
		FROM turns tu
		JOIN threads th ON th.id = tu.thread_id
		WHERE tu.embedding IS NOT NULL
	`
	var args []interface{}

	if filter.ThreadID != "" {
		query += " AND tu.thread_id = ?"
		args = append(args, filter.ThreadID)
	}
	if filter.Role != "" {
		query += " AND tu.role = ?"
		args = append(args, string(filter.Role))
	}
	if filter.StartDate != nil {
		query += " AND tu.created_at >= ?"
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += " AND tu.created_at <= ?"
		args = append(args, *filter.EndDate)
	}
	if len(filter.TagIDs) > 0 {
		query += ` AND EXISTS (
			SELECT 1 FROM thread_tags tt
			WHERE tt.thread_id = tu.thread_id AND tt.tag_id IN (`
		for i, tagID := range filter.TagIDs {
			if i > 0 {
				query += ", "
			}
			query += "?"
			args = append(args, tagID)
		}
		query += "))"
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying embedded turns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []models.TurnSearchResult
	for rows.Next() {
		var (
			turn            models.Turn
			role            string
			tokenCount      sql.NullInt64
			annotationsJSON sql.NullString
			embeddingBlob   []byte
			embeddingModel  sql.NullString
			threadTitle     string
		)
		err := rows.Scan(&turn.TurnID, &turn.ThreadID, &role, &turn.Content, &turn.OrderIndex,
			&tokenCount, &annotationsJSON, &embeddingBlob, &embeddingModel,
			&turn.CreatedAt, &turn.UpdatedAt, &threadTitle)
		if err != nil {
			return nil, fmt.Errorf("scanning embedded turn: %w", err)
		}

		embedding := blobToVector(embeddingBlob)
		if len(embedding) != len(queryVector) {
			continue
		}

		turn.Role = models.Role(role)
		if tokenCount.Valid {
			turn.TokenCountEstimate = int(tokenCount.Int64)
		}
		turn.Embedding = embedding
		if embeddingModel.Valid {
			turn.EmbeddingModel = embeddingModel.String
		}

		results = append(results, models.TurnSearchResult{
			Turn:        turn,
			Similarity:  CosineSimilarity(queryVector, embedding),
			ThreadID:    turn.ThreadID,
			ThreadTitle: threadTitle,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embedded turns: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Turn.TurnID < results[j].Turn.TurnID
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// CosineSimilarity computes cosine similarity between two vectors, clamped to
// [0, 1]. Mismatched dimensions or zero-magnitude vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// vectorToBlob serializes a float64 vector to little-endian bytes for storage
func vectorToBlob(vector []float64) []byte {
	blob := make([]byte, len(vector)*8)
	for i, v := range vector {
		binary.LittleEndian.PutUint64(blob[i*8:], math.Float64bits(v))
	}
	return blob
}

// blobToVector deserializes little-endian bytes back into a float64 vector
func blobToVector(blob []byte) []float64 {
	vector := make([]float64, len(blob)/8)
	for i := range vector {
		vector[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return vector
}
