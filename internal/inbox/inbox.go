// Package inbox delivers deduplicated, recipient-scoped notifications.
package inbox

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talentmatch/backend/internal/db"
)

// List limits. Requests outside the range are clamped, not rejected.
const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// Store is the persistence the service needs.
type Store interface {
	InsertInboxMessage(ctx context.Context, nm db.NewInboxMessage) (*uuid.UUID, error)
	ListInboxMessages(ctx context.Context, recipientID uuid.UUID, limit int) ([]db.InboxMessage, error)
	MarkInboxMessageRead(ctx context.Context, id, recipientID uuid.UUID, read bool) (bool, error)
	DeleteInboxMessage(ctx context.Context, id, recipientID uuid.UUID) (bool, error)
	PatchInboxMessageStatus(ctx context.Context, recipientID uuid.UUID, msgType string, relatedID uuid.UUID, label string) error
}

// Service guarantees at most one stored message per
// (recipient, type, related entity) triple.
type Service struct {
	store Store
	log   *zap.Logger
}

// New creates a Service.
func New(store Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

// Create stores a notification. When the dedup triple already exists the
// insert is a no-op and the returned id is nil; callers treat that as
// success ("already delivered"), never as failure.
func (s *Service) Create(ctx context.Context, nm db.NewInboxMessage) (*uuid.UUID, error) {
	if nm.RecipientID == uuid.Nil {
		return nil, fmt.Errorf("inbox message requires a recipient")
	}
	if nm.Type == "" {
		return nil, fmt.Errorf("inbox message requires a type")
	}

	id, err := s.store.InsertInboxMessage(ctx, nm)
	if err != nil {
		return nil, err
	}
	if id == nil {
		s.log.Warn("duplicate notification skipped",
			zap.String("recipient_id", nm.RecipientID.String()),
			zap.String("type", nm.Type))
		return nil, nil
	}

	s.log.Info("notification delivered",
		zap.String("id", id.String()),
		zap.String("recipient_id", nm.RecipientID.String()),
		zap.String("type", nm.Type))
	return id, nil
}

// List returns the recipient's notifications newest first. The limit is
// clamped to [1, MaxListLimit]; zero or negative means the default.
func (s *Service) List(ctx context.Context, recipientID uuid.UUID, limit int) ([]db.InboxMessage, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.store.ListInboxMessages(ctx, recipientID, limit)
}

// MarkRead toggles the read timestamp. Only the recipient may toggle;
// anything else reports not found.
func (s *Service) MarkRead(ctx context.Context, id, recipientID uuid.UUID, read bool) (bool, error) {
	return s.store.MarkInboxMessageRead(ctx, id, recipientID, read)
}

// Delete removes a notification on explicit recipient action.
func (s *Service) Delete(ctx context.Context, id, recipientID uuid.UUID) (bool, error) {
	return s.store.DeleteInboxMessage(ctx, id, recipientID)
}

// PatchStatus rewrites the status label inside the metadata of the message
// identified by the dedup triple.
func (s *Service) PatchStatus(ctx context.Context, recipientID uuid.UUID, msgType string, relatedID uuid.UUID, label string) error {
	return s.store.PatchInboxMessageStatus(ctx, recipientID, msgType, relatedID, label)
}
