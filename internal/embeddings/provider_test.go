// ABOUTME: Tests for shared embedding helpers
// ABOUTME: Verifies silent truncation bounds and sequential batch ordering

package embeddings

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestTruncateText(t *testing.T) {
	long := strings.Repeat("a", 40000)
	truncated := TruncateText(long, DefaultMaxTokens)
	if len(truncated) > 32768 {
		t.Errorf("truncated length = %d, want <= 32768", len(truncated))
	}

	short := "hello"
	if got := TruncateText(short, DefaultMaxTokens); got != short {
		t.Errorf("TruncateText(%q) = %q, want unchanged", short, got)
	}

	// Exactly at the boundary stays intact
	exact := strings.Repeat("b", 32768)
	if got := TruncateText(exact, DefaultMaxTokens); len(got) != 32768 {
		t.Errorf("boundary input truncated to %d chars", len(got))
	}
}

func TestSequentialBatch_PreservesOrder(t *testing.T) {
	// Embed function encodes the input's first byte so order is observable
	embed := func(_ context.Context, text string) ([]float64, error) {
		if text == "" {
			return nil, fmt.Errorf("empty input")
		}
		return []float64{float64(text[0])}, nil
	}

	texts := []string{"a", "b", "c"}
	vectors, err := sequentialBatch(context.Background(), embed, texts)
	if err != nil {
		t.Fatalf("sequentialBatch() error = %v", err)
	}
	if len(vectors) != 3 {
		t.Fatalf("got %d vectors, want 3", len(vectors))
	}
	for i, text := range texts {
		if vectors[i][0] != float64(text[0]) {
			t.Errorf("vectors[%d] = %v, does not correspond to input %q", i, vectors[i], text)
		}
	}
}

func TestSequentialBatch_StopsOnError(t *testing.T) {
	calls := 0
	embed := func(_ context.Context, text string) ([]float64, error) {
		calls++
		if text == "bad" {
			return nil, fmt.Errorf("boom")
		}
		return []float64{1}, nil
	}

	_, err := sequentialBatch(context.Background(), embed, []string{"ok", "bad", "never"})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 2 {
		t.Errorf("embed called %d times, want 2 (stop at first failure)", calls)
	}
}
