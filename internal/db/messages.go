package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// NewInboxMessage carries the fields for an inbox insert.
type NewInboxMessage struct {
	RecipientID uuid.UUID
	SenderID    *uuid.UUID
	Title       string
	Body        string
	Type        string
	RelatedID   *uuid.UUID
	Metadata    map[string]string
}

// InsertInboxMessage stores a notification. The insert and the uniqueness
// check on (recipient, type, related_id) are one atomic statement, so a
// retried or racing delivery of the same event cannot create a second row.
// On conflict the returned id is nil and err is nil.
func (db *DB) InsertInboxMessage(ctx context.Context, nm NewInboxMessage) (*uuid.UUID, error) {
	var metaJSON []byte
	if nm.Metadata != nil {
		b, err := json.Marshal(nm.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message metadata: %w", err)
		}
		metaJSON = b
	}

	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO inbox_messages (recipient_id, sender_id, title, body, type, related_id, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (recipient_id, type, related_id) DO NOTHING
		 RETURNING id`,
		nm.RecipientID, nm.SenderID, nm.Title, nm.Body, nm.Type, nm.RelatedID, metaJSON,
	).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Already delivered
			return nil, nil
		}
		return nil, fmt.Errorf("failed to insert inbox message: %w", err)
	}
	return &id, nil
}

// ListInboxMessages retrieves a recipient's notifications, newest first.
func (db *DB) ListInboxMessages(ctx context.Context, recipientID uuid.UUID, limit int) ([]InboxMessage, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, recipient_id, sender_id, title, body, type, related_id, metadata, created_at, read_at
		 FROM inbox_messages
		 WHERE recipient_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		recipientID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox messages: %w", err)
	}
	defer rows.Close()

	var messages []InboxMessage
	for rows.Next() {
		var m InboxMessage
		var metaJSON []byte
		if err := rows.Scan(&m.ID, &m.RecipientID, &m.SenderID, &m.Title, &m.Body,
			&m.Type, &m.RelatedID, &metaJSON, &m.CreatedAt, &m.ReadAt); err != nil {
			return nil, fmt.Errorf("failed to scan inbox message: %w", err)
		}
		if metaJSON != nil {
			_ = json.Unmarshal(metaJSON, &m.Metadata)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read inbox messages: %w", err)
	}
	return messages, nil
}

// MarkInboxMessageRead toggles the read timestamp, scoped to the recipient.
// Reports false when the message does not exist or belongs to someone else.
func (db *DB) MarkInboxMessageRead(ctx context.Context, id, recipientID uuid.UUID, read bool) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE inbox_messages
		 SET read_at = CASE WHEN $3 THEN now() ELSE NULL END
		 WHERE id = $1 AND recipient_id = $2`,
		id, recipientID, read,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark inbox message read: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteInboxMessage removes a notification, scoped to the recipient.
func (db *DB) DeleteInboxMessage(ctx context.Context, id, recipientID uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM inbox_messages WHERE id = $1 AND recipient_id = $2`,
		id, recipientID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete inbox message: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// PatchInboxMessageStatus updates the status label inside the metadata of
// the message identified by the dedup triple. Used to resolve an invite
// notification in place instead of delivering a second unread item.
func (db *DB) PatchInboxMessageStatus(ctx context.Context, recipientID uuid.UUID, msgType string, relatedID uuid.UUID, label string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE inbox_messages
		 SET metadata = COALESCE(metadata, '{}'::jsonb) || jsonb_build_object('status', $4::text)
		 WHERE recipient_id = $1 AND type = $2 AND related_id = $3`,
		recipientID, msgType, relatedID, label,
	)
	if err != nil {
		return fmt.Errorf("failed to patch inbox message status: %w", err)
	}
	return nil
}
