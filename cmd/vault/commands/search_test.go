// ABOUTME: Tests for search and note CLI commands
// ABOUTME: Exercises the full store-embed-search path with the local provider

package commands

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestNoteAndSearch(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "vault.db")

	out, err := runCommand(t, dbPath, "--quiet", "threads", "create", "Searchable thread")
	if err != nil {
		t.Fatalf("create error = %v", err)
	}
	threadID := strings.TrimSpace(out)

	if _, err := runCommand(t, dbPath, "note", threadID, "the quick brown fox jumps over the lazy dog"); err != nil {
		t.Fatalf("note error = %v", err)
	}

	out, err = runCommand(t, dbPath, "search", "the quick brown fox jumps over the lazy dog")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if !strings.Contains(out, "quick brown fox") {
		t.Errorf("search output missing note:\n%s", out)
	}
	if !strings.Contains(out, "Searchable thread") {
		t.Errorf("search output missing thread title:\n%s", out)
	}
}

func TestSearch_NoResults(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "vault.db")

	out, err := runCommand(t, dbPath, "search", "anything at all")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if !strings.Contains(out, "No turns found") {
		t.Errorf("search output = %q", out)
	}
}

func TestSearch_InvalidRole(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "vault.db")

	if _, err := runCommand(t, dbPath, "search", "--role", "WIZARD", "query"); err == nil {
		t.Error("unknown role accepted")
	}
}

func TestNote_MissingThread(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "vault.db")

	if _, err := runCommand(t, dbPath, "note", "thread_missing", "orphan note"); err == nil {
		t.Error("note to missing thread succeeded")
	}
}

func TestReindex(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "vault.db")

	out, err := runCommand(t, dbPath, "--quiet", "threads", "create", "Reindexed thread")
	if err != nil {
		t.Fatalf("create error = %v", err)
	}
	threadID := strings.TrimSpace(out)

	if _, err := runCommand(t, dbPath, "note", threadID, "something worth remembering"); err != nil {
		t.Fatalf("note error = %v", err)
	}

	out, err = runCommand(t, dbPath, "reindex")
	if err != nil {
		t.Fatalf("reindex error = %v", err)
	}
	if !strings.Contains(out, "Reindexed 1 turn(s)") {
		t.Errorf("reindex output = %q", out)
	}
}
