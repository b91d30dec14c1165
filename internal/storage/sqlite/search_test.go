// ABOUTME: Tests for vector similarity search over turns
// ABOUTME: Covers filters, ordering, clamping, and the BLOB vector codec

package sqlite

import (
	"math"
	"testing"
	"time"

	"github.com/harper/vault-standalone/internal/models"
)

func appendEmbedded(t *testing.T, turns *TurnStore, threadID string, role models.Role, content string, vector []float64) *models.Turn {
	t.Helper()
	turn := mustAppendTurn(t, turns, threadID, role, content)
	if err := turns.UpdateEmbedding(turn.TurnID, vector, "local"); err != nil {
		t.Fatalf("UpdateEmbedding() error = %v", err)
	}
	return turn
}

func TestSearchSimilar_OrdersBySimilarity(t *testing.T) {
	db := newTestDB(t)
	threads := NewThreadStore(db)
	turns := NewTurnStore(db)

	thread := mustCreateThread(t, threads, "Search thread")
	appendEmbedded(t, turns, thread.ThreadID, models.RoleHuman, "orthogonal", []float64{0, 1, 0})
	appendEmbedded(t, turns, thread.ThreadID, models.RoleHuman, "exact", []float64{1, 0, 0})
	appendEmbedded(t, turns, thread.ThreadID, models.RoleHuman, "close", []float64{0.9, 0.1, 0})

	results, err := turns.SearchSimilar([]float64{1, 0, 0}, models.TurnFilter{}, 10)
	if err != nil {
		t.Fatalf("SearchSimilar() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Turn.Content != "exact" || results[1].Turn.Content != "close" {
		t.Errorf("order = [%q, %q, %q]", results[0].Turn.Content, results[1].Turn.Content, results[2].Turn.Content)
	}
	if results[0].Similarity < 0.999 {
		t.Errorf("exact match similarity = %f", results[0].Similarity)
	}
	if results[0].ThreadTitle != "Search thread" {
		t.Errorf("ThreadTitle = %q", results[0].ThreadTitle)
	}
}

func TestSearchSimilar_SkipsUnembeddedAndMismatched(t *testing.T) {
	db := newTestDB(t)
	threads := NewThreadStore(db)
	turns := NewTurnStore(db)

	thread := mustCreateThread(t, threads, "Sparse thread")
	mustAppendTurn(t, turns, thread.ThreadID, models.RoleHuman, "no vector yet")
	appendEmbedded(t, turns, thread.ThreadID, models.RoleHuman, "wrong dims", []float64{1, 0})
	appendEmbedded(t, turns, thread.ThreadID, models.RoleHuman, "matching", []float64{1, 0, 0})

	results, err := turns.SearchSimilar([]float64{1, 0, 0}, models.TurnFilter{}, 10)
	if err != nil {
		t.Fatalf("SearchSimilar() error = %v", err)
	}
	if len(results) != 1 || results[0].Turn.Content != "matching" {
		t.Errorf("results = %v", results)
	}
}

func TestSearchSimilar_Filters(t *testing.T) {
	db := newTestDB(t)
	threads := NewThreadStore(db)
	turns := NewTurnStore(db)

	threadA := mustCreateThread(t, threads, "Thread A")
	threadB := mustCreateThread(t, threads, "Thread B")
	appendEmbedded(t, turns, threadA.ThreadID, models.RoleHuman, "a human", []float64{1, 0})
	appendEmbedded(t, turns, threadA.ThreadID, models.RoleReflection, "a reflection", []float64{1, 0})
	appendEmbedded(t, turns, threadB.ThreadID, models.RoleHuman, "b human", []float64{1, 0})

	query := []float64{1, 0}

	byThread, err := turns.SearchSimilar(query, models.TurnFilter{ThreadID: threadB.ThreadID}, 10)
	if err != nil {
		t.Fatalf("SearchSimilar(thread) error = %v", err)
	}
	if len(byThread) != 1 || byThread[0].Turn.Content != "b human" {
		t.Errorf("thread filter results = %v", byThread)
	}

	byRole, err := turns.SearchSimilar(query, models.TurnFilter{Role: models.RoleReflection}, 10)
	if err != nil {
		t.Fatalf("SearchSimilar(role) error = %v", err)
	}
	if len(byRole) != 1 || byRole[0].Turn.Content != "a reflection" {
		t.Errorf("role filter results = %v", byRole)
	}

	future := time.Now().UTC().Add(time.Hour)
	byDate, err := turns.SearchSimilar(query, models.TurnFilter{StartDate: &future}, 10)
	if err != nil {
		t.Fatalf("SearchSimilar(date) error = %v", err)
	}
	if len(byDate) != 0 {
		t.Errorf("future start date returned %d results", len(byDate))
	}
}

func TestSearchSimilar_TagFilter(t *testing.T) {
	db := newTestDB(t)
	threads := NewThreadStore(db)
	turns := NewTurnStore(db)

	tagged := mustCreateThread(t, threads, "Tagged")
	untagged := mustCreateThread(t, threads, "Untagged")
	appendEmbedded(t, turns, tagged.ThreadID, models.RoleHuman, "tagged turn", []float64{1, 0})
	appendEmbedded(t, turns, untagged.ThreadID, models.RoleHuman, "untagged turn", []float64{1, 0})

	tag, err := models.NewTag("work", "")
	if err != nil {
		t.Fatalf("NewTag() error = %v", err)
	}
	if err := threads.CreateTag(tag); err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}
	if err := threads.TagThread(tagged.ThreadID, tag.TagID); err != nil {
		t.Fatalf("TagThread() error = %v", err)
	}

	results, err := turns.SearchSimilar([]float64{1, 0}, models.TurnFilter{TagIDs: []string{tag.TagID}}, 10)
	if err != nil {
		t.Fatalf("SearchSimilar() error = %v", err)
	}
	if len(results) != 1 || results[0].Turn.Content != "tagged turn" {
		t.Errorf("tag filter results = %v", results)
	}
}

func TestSearchSimilar_LimitsToK(t *testing.T) {
	db := newTestDB(t)
	threads := NewThreadStore(db)
	turns := NewTurnStore(db)

	thread := mustCreateThread(t, threads, "Limited")
	for i := 0; i < 5; i++ {
		appendEmbedded(t, turns, thread.ThreadID, models.RoleHuman, "turn", []float64{1, 0})
	}

	results, err := turns.SearchSimilar([]float64{1, 0}, models.TurnFilter{}, 2)
	if err != nil {
		t.Fatalf("SearchSimilar() error = %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
}

func TestSearchSimilar_ZeroK(t *testing.T) {
	db := newTestDB(t)
	turns := NewTurnStore(db)

	results, err := turns.SearchSimilar([]float64{1, 0}, models.TurnFilter{}, 0)
	if err != nil {
		t.Fatalf("SearchSimilar() error = %v", err)
	}
	if results != nil {
		t.Errorf("k=0 returned %v", results)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0.0},
		{"opposite clamps to zero", []float64{1, 0}, []float64{-1, 0}, 0.0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0.0},
		{"dimension mismatch", []float64{1, 0}, []float64{1, 0, 0}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestVectorBlobRoundTrip(t *testing.T) {
	vector := []float64{0.0, -1.5, math.Pi, 1e-300}
	got := blobToVector(vectorToBlob(vector))
	if len(got) != len(vector) {
		t.Fatalf("got %d values, want %d", len(got), len(vector))
	}
	for i := range vector {
		if got[i] != vector[i] {
			t.Errorf("round trip [%d] = %v, want %v", i, got[i], vector[i])
		}
	}
}
