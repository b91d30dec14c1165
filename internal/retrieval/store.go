// ABOUTME: SQLite-backed Store adapter for the retrieval service
// ABOUTME: Maps the Store surface onto TurnStore methods
package retrieval

import (
	"github.com/harper/vault-standalone/internal/models"
	"github.com/harper/vault-standalone/internal/storage/sqlite"
)

// SQLiteStore adapts a sqlite.TurnStore to the retrieval Store interface.
type SQLiteStore struct {
	turns *sqlite.TurnStore
}

// NewSQLiteStore wraps a turn store for retrieval use
func NewSQLiteStore(turns *sqlite.TurnStore) *SQLiteStore {
	return &SQLiteStore{turns: turns}
}

func (s *SQLiteStore) FindTurn(turnID string) (*models.Turn, error) {
	return s.turns.Find(turnID)
}

func (s *SQLiteStore) UpdateTurnEmbedding(turnID string, vector []float64, providerName string) error {
	return s.turns.UpdateEmbedding(turnID, vector, providerName)
}

func (s *SQLiteStore) SearchSimilar(queryVector []float64, filter models.TurnFilter, k int) ([]models.TurnSearchResult, error) {
	return s.turns.SearchSimilar(queryVector, filter, k)
}
