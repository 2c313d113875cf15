package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dodobird181/sambot2/internal/models"
)

// ErrDecode marks a record that exists but could not be decoded. It is
// distinct from not-found, which is a normal control-flow branch and is
// reported as (nil, nil) from Load.
var ErrDecode = errors.New("conversation record corrupt")

// ConversationStore defines the interface for persisting conversations.
// Writes are last-writer-wins; there is no optimistic concurrency.
type ConversationStore interface {
	// Save serializes the full conversation, overwriting any previous
	// record with the same id.
	Save(ctx context.Context, c *models.Conversation) error

	// Load reconstructs a conversation from storage. A missing id is
	// not a failure: callers get (nil, nil) and treat it as "no
	// existing session".
	Load(ctx context.Context, id uuid.UUID) (*models.Conversation, error)

	// Delete removes a conversation. Deleting a missing id is a no-op.
	Delete(ctx context.Context, id uuid.UUID) error

	Ping(ctx context.Context) error
	Close()
}
