package inbox

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/talentmatch/backend/internal/db"
)

type mockInboxStore struct {
	inserted   []db.NewInboxMessage
	duplicate  bool
	listLimits []int
	messages   []db.InboxMessage
}

func (m *mockInboxStore) InsertInboxMessage(_ context.Context, nm db.NewInboxMessage) (*uuid.UUID, error) {
	if m.duplicate {
		return nil, nil
	}
	m.inserted = append(m.inserted, nm)
	id := uuid.New()
	return &id, nil
}

func (m *mockInboxStore) ListInboxMessages(_ context.Context, _ uuid.UUID, limit int) ([]db.InboxMessage, error) {
	m.listLimits = append(m.listLimits, limit)
	return m.messages, nil
}

func (m *mockInboxStore) MarkInboxMessageRead(_ context.Context, _, _ uuid.UUID, _ bool) (bool, error) {
	return true, nil
}

func (m *mockInboxStore) DeleteInboxMessage(_ context.Context, _, _ uuid.UUID) (bool, error) {
	return true, nil
}

func (m *mockInboxStore) PatchInboxMessageStatus(_ context.Context, _ uuid.UUID, _ string, _ uuid.UUID, _ string) error {
	return nil
}

func newService(store *mockInboxStore) *Service {
	return New(store, zap.NewNop())
}

func TestCreate(t *testing.T) {
	store := &mockInboxStore{}
	svc := newService(store)

	id, err := svc.Create(context.Background(), db.NewInboxMessage{
		RecipientID: uuid.New(),
		Type:        "invite",
		Title:       "Invitation",
	})
	require.NoError(t, err)
	assert.NotNil(t, id)
	assert.Len(t, store.inserted, 1)
}

func TestCreateDuplicateIsSuccess(t *testing.T) {
	store := &mockInboxStore{duplicate: true}
	svc := newService(store)

	id, err := svc.Create(context.Background(), db.NewInboxMessage{
		RecipientID: uuid.New(),
		Type:        "invite",
	})
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestCreateRequiresRecipientAndType(t *testing.T) {
	svc := newService(&mockInboxStore{})

	_, err := svc.Create(context.Background(), db.NewInboxMessage{Type: "invite"})
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), db.NewInboxMessage{RecipientID: uuid.New()})
	assert.Error(t, err)
}

func TestListClampsLimit(t *testing.T) {
	store := &mockInboxStore{}
	svc := newService(store)
	recipient := uuid.New()

	tests := []struct {
		requested int
		effective int
	}{
		{0, DefaultListLimit},
		{-5, DefaultListLimit},
		{1, 1},
		{MaxListLimit, MaxListLimit},
		{MaxListLimit + 1, MaxListLimit},
	}
	for _, tt := range tests {
		_, err := svc.List(context.Background(), recipient, tt.requested)
		require.NoError(t, err)
	}
	var effective []int
	for _, tt := range tests {
		effective = append(effective, tt.effective)
	}
	assert.Equal(t, effective, store.listLimits)
}
