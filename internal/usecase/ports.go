package usecase

import (
	"context"
	"encoding/json"

	"github.com/pubky-garden/pubky-playground"
	"github.com/pubky-garden/pubky-playground/internal/domain"
)

// ListOptions narrows a record listing.
type ListOptions struct {
	// Cursor is an exclusive identifier bound; listing resumes after it.
	Cursor string
	Limit  int
	// Reverse lists newest-first. Time-ordered identifiers sort
	// lexicographically in chronological order, so both directions are
	// plain index scans.
	Reverse bool
}

// RecordRepository defines storage operations for validated records.
type RecordRepository interface {
	// Store persists a record. When dedupe is set the write is
	// idempotent: an existing record under the same identifier is left
	// untouched.
	Store(ctx context.Context, record domain.Record, dedupe bool) error
	Get(ctx context.Context, owner, kind, id string) (domain.Record, error)
	List(ctx context.Context, owner, kind string, opts ListOptions) ([]domain.Record, error)
	// Tombstone replaces a record's content in place with a
	// framework-generated marker, keeping the row for relationship
	// integrity.
	Tombstone(ctx context.Context, owner, kind, id string, content json.RawMessage) error
	Delete(ctx context.Context, owner, kind, id string) error
}

// EventPublisher fans out accepted-record events to realtime subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event pubky.Event) error
}
