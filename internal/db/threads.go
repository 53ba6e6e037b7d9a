package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetThreadByApplication retrieves the dossier thread for an application.
// Returns nil when absent.
func (db *DB) GetThreadByApplication(ctx context.Context, applicationID uuid.UUID) (*Thread, error) {
	var t Thread
	err := db.pool.QueryRow(ctx,
		`SELECT id, application_id, archived, archived_at, created_at
		 FROM application_threads WHERE application_id = $1`,
		applicationID,
	).Scan(&t.ID, &t.ApplicationID, &t.Archived, &t.ArchivedAt, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}
	return &t, nil
}

// AppendThreadMessage adds one entry to a dossier conversation.
func (db *DB) AppendThreadMessage(ctx context.Context, threadID, senderID, receiverID uuid.UUID, msgType, body string) (*ThreadMessage, error) {
	var m ThreadMessage
	err := db.pool.QueryRow(ctx,
		`INSERT INTO thread_messages (thread_id, sender_id, receiver_id, type, body)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, thread_id, sender_id, receiver_id, type, body, created_at`,
		threadID, senderID, receiverID, msgType, body,
	).Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.ReceiverID, &m.Type, &m.Body, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append thread message: %w", err)
	}
	return &m, nil
}

// ListThreadMessages retrieves a conversation oldest-first. Ties on the
// creation timestamp break by id so the order is total.
func (db *DB) ListThreadMessages(ctx context.Context, threadID uuid.UUID) ([]ThreadMessage, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, thread_id, sender_id, receiver_id, type, body, created_at
		 FROM thread_messages WHERE thread_id = $1
		 ORDER BY created_at ASC, id ASC`,
		threadID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list thread messages: %w", err)
	}
	defer rows.Close()

	var messages []ThreadMessage
	for rows.Next() {
		var m ThreadMessage
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.ReceiverID, &m.Type, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan thread message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read thread messages: %w", err)
	}
	return messages, nil
}

// SetThreadArchived flips the archive flag on an application's dossier.
func (db *DB) SetThreadArchived(ctx context.Context, applicationID uuid.UUID, archived bool) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE application_threads
		 SET archived = $2,
		     archived_at = CASE WHEN $2 THEN now() ELSE NULL END
		 WHERE application_id = $1`,
		applicationID, archived,
	)
	if err != nil {
		return fmt.Errorf("failed to set thread archived: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("thread not found for application: %s", applicationID)
	}
	return nil
}
