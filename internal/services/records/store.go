package records

import (
	"context"

	"github.com/ipex/docregistro/internal/models"
)

// Store persists document records.
// Implementations return ErrNotFound for unknown ids and wrap every other
// persistence failure in *StoreError.
type Store interface {
	Insert(ctx context.Context, rec *models.DocumentRecord) (uint, error)
	ListActive(ctx context.Context) ([]models.DocumentRecord, error)
	ListDeleted(ctx context.Context) ([]models.DocumentRecord, error)
	// GetByID finds a record in either state
	GetByID(ctx context.Context, id uint) (*models.DocumentRecord, error)
	// SoftDelete marks an active record deleted
	SoftDelete(ctx context.Context, id uint) error
	// Restore clears the deletion mark of a deleted record
	Restore(ctx context.Context, id uint) error
	// PermanentlyDelete removes a deleted record's row
	PermanentlyDelete(ctx context.Context, id uint) error
}

// Event is published after every successful lifecycle change
type Event struct {
	Type string `json:"type"`
	ID   uint   `json:"id"`
	At   string `json:"at"`
}

// Event types
const (
	EventCreated  = "record.created"
	EventDeleted  = "record.deleted"
	EventRestored = "record.restored"
	EventRemoved  = "record.removed"
	EventEmailed  = "record.emailed"
)

// Publisher receives lifecycle events (e.g. the websocket hub)
type Publisher interface {
	Publish(event Event)
}
