// ABOUTME: Turn represents a single message within a dialogue thread
// ABOUTME: Core data structure for the dialogue vault
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a turn.
type Role string

const (
	// RoleHuman marks a turn written by the human participant.
	RoleHuman Role = "HUMAN"
	// RoleReflection marks an AI-generated reflective turn.
	RoleReflection Role = "REFLECTION"
	// RoleNote marks a free-form annotation turn.
	RoleNote Role = "NOTE"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleHuman, RoleReflection, RoleNote:
		return true
	}
	return false
}

// Turn is a single message in a thread. OrderIndex is unique and contiguous
// within the owning thread. Embedding is optional; a turn without one is
// invisible to similarity search. EmbeddingModel records which provider
// produced the vector so mixed-dimension vectors are never compared.
type Turn struct {
	TurnID             string         `json:"turn_id"`
	ThreadID           string         `json:"thread_id"`
	Role               Role           `json:"role"`
	Content            string         `json:"content"`
	OrderIndex         int            `json:"order_index"`
	TokenCountEstimate int            `json:"token_count_estimate,omitempty"`
	Annotations        map[string]any `json:"annotations,omitempty"`
	Embedding          []float64      `json:"embedding,omitempty"`
	EmbeddingModel     string         `json:"embedding_model,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// NewTurn creates a new Turn with validation
func NewTurn(threadID string, role Role, content string) (*Turn, error) {
	if threadID == "" {
		return nil, errors.New("thread id cannot be empty")
	}
	if !ValidRole(role) {
		return nil, fmt.Errorf("unknown role: %s", role)
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("turn content cannot be empty")
	}
	now := time.Now().UTC()
	return &Turn{
		TurnID:    generateTurnID(),
		ThreadID:  threadID,
		Role:      role,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// generateTurnID generates a unique turn identifier
func generateTurnID() string {
	return fmt.Sprintf("turn_%s_%s", time.Now().Format("20060102_150405"), uuid.New().String()[:8])
}
