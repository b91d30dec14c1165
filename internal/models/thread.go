// ABOUTME: Thread and Tag models for the dialogue vault
// ABOUTME: A thread is an ordered collection of turns with status and metadata
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ThreadStatus is the lifecycle state of a thread.
type ThreadStatus string

const (
	StatusActive   ThreadStatus = "ACTIVE"
	StatusArchived ThreadStatus = "ARCHIVED"
)

// Thread is an ordered conversation composed of turns (ordered by
// Turn.OrderIndex ascending).
type Thread struct {
	ThreadID    string         `json:"thread_id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      ThreadStatus   `json:"status"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Tag labels threads; the tag filter in similarity search matches turns
// through their owning thread's tags.
type Tag struct {
	TagID string `json:"tag_id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// NewThread creates a new active Thread with validation
func NewThread(title, description string) (*Thread, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("thread title cannot be empty")
	}
	now := time.Now().UTC()
	return &Thread{
		ThreadID:    generateThreadID(),
		Title:       title,
		Description: description,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// NewTag creates a new Tag with validation
func NewTag(name, color string) (*Tag, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("tag name cannot be empty")
	}
	return &Tag{
		TagID: fmt.Sprintf("tag_%s", uuid.New().String()[:8]),
		Name:  name,
		Color: color,
	}, nil
}

// generateThreadID generates a unique thread identifier
func generateThreadID() string {
	return fmt.Sprintf("thread_%s_%s", time.Now().Format("20060102_150405"), uuid.New().String()[:8])
}
