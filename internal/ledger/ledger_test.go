package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/talentmatch/backend/internal/db"
)

type mockStore struct {
	users     map[uuid.UUID]*db.User
	vacancies map[uuid.UUID]*db.VacancyPosting
	profiles  map[uuid.UUID]*db.CandidateProfile
	apps      map[uuid.UUID]*db.Application
	threads   map[uuid.UUID]*db.Thread // keyed by application id

	createErr       error
	duplicateCreate bool

	created      []db.NewApplication
	inviteBodies []string
	appended     []db.ThreadMessage
	decisions    []db.ThreadMessage
	reviewed     []string
	archived     map[uuid.UUID]bool
}

func newMockStore() *mockStore {
	return &mockStore{
		users:     map[uuid.UUID]*db.User{},
		vacancies: map[uuid.UUID]*db.VacancyPosting{},
		profiles:  map[uuid.UUID]*db.CandidateProfile{},
		apps:      map[uuid.UUID]*db.Application{},
		threads:   map[uuid.UUID]*db.Thread{},
		archived:  map[uuid.UUID]bool{},
	}
}

func (m *mockStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	return m.users[id], nil
}

func (m *mockStore) GetVacancy(_ context.Context, id uuid.UUID) (*db.VacancyPosting, error) {
	return m.vacancies[id], nil
}

func (m *mockStore) GetCandidateProfile(_ context.Context, userID uuid.UUID) (*db.CandidateProfile, error) {
	return m.profiles[userID], nil
}

func (m *mockStore) CreateApplication(_ context.Context, na db.NewApplication, inviteBody string) (*db.Application, error) {
	if m.duplicateCreate {
		return nil, db.ErrDuplicate
	}
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, na)
	m.inviteBodies = append(m.inviteBodies, inviteBody)

	app := &db.Application{
		ID:           uuid.New(),
		CandidateID:  na.CandidateID,
		EmployerID:   na.EmployerID,
		VacancyID:    na.VacancyID,
		Status:       na.Status,
		ReviewStatus: db.ReviewPending,
		CoverLetter:  na.CoverLetter,
		MatchScore:   na.MatchScore,
	}
	m.apps[app.ID] = app
	m.threads[app.ID] = &db.Thread{ID: uuid.New(), ApplicationID: app.ID}
	return app, nil
}

func (m *mockStore) GetApplication(_ context.Context, id uuid.UUID) (*db.Application, error) {
	return m.apps[id], nil
}

func (m *mockStore) ApplyDecision(_ context.Context, appID uuid.UUID, newStatus string, msg db.ThreadMessage) (bool, error) {
	app, ok := m.apps[appID]
	if !ok || app.Status != db.StatusInvited {
		return false, nil
	}
	app.Status = newStatus
	m.decisions = append(m.decisions, msg)
	return true, nil
}

func (m *mockStore) UpdateReviewStatus(_ context.Context, appID uuid.UUID, disposition string) (bool, error) {
	app, ok := m.apps[appID]
	if !ok || app.Status != db.StatusSubmitted {
		return false, nil
	}
	app.ReviewStatus = disposition
	m.reviewed = append(m.reviewed, disposition)
	return true, nil
}

func (m *mockStore) GetThreadByApplication(_ context.Context, applicationID uuid.UUID) (*db.Thread, error) {
	return m.threads[applicationID], nil
}

func (m *mockStore) AppendThreadMessage(_ context.Context, threadID, senderID, receiverID uuid.UUID, msgType, body string) (*db.ThreadMessage, error) {
	tm := db.ThreadMessage{
		ID:         uuid.New(),
		ThreadID:   threadID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Type:       msgType,
		Body:       body,
	}
	m.appended = append(m.appended, tm)
	return &tm, nil
}

func (m *mockStore) ListThreadMessages(_ context.Context, threadID uuid.UUID) ([]db.ThreadMessage, error) {
	var out []db.ThreadMessage
	for _, tm := range m.appended {
		if tm.ThreadID == threadID {
			out = append(out, tm)
		}
	}
	return out, nil
}

func (m *mockStore) SetThreadArchived(_ context.Context, applicationID uuid.UUID, archived bool) error {
	m.archived[applicationID] = archived
	return nil
}

type mockInbox struct {
	created []db.NewInboxMessage
	patched []string // "recipient/type/related/label"
	err     error
}

func (m *mockInbox) Create(_ context.Context, nm db.NewInboxMessage) (*uuid.UUID, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = append(m.created, nm)
	id := uuid.New()
	return &id, nil
}

func (m *mockInbox) PatchStatus(_ context.Context, recipientID uuid.UUID, msgType string, relatedID uuid.UUID, label string) error {
	m.patched = append(m.patched, recipientID.String()+"/"+msgType+"/"+relatedID.String()+"/"+label)
	return nil
}

func (m *mockInbox) byType(msgType string) []db.NewInboxMessage {
	var out []db.NewInboxMessage
	for _, nm := range m.created {
		if nm.Type == msgType {
			out = append(out, nm)
		}
	}
	return out
}

type fixture struct {
	store     *mockStore
	inbox     *mockInbox
	ledger    *Ledger
	employer  uuid.UUID
	candidate uuid.UUID
	vacancy   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMockStore()
	inbox := &mockInbox{}

	employerID := uuid.New()
	candidateID := uuid.New()
	vacancyID := uuid.New()

	store.users[employerID] = &db.User{ID: employerID, Role: db.RoleEmployer}
	store.users[candidateID] = &db.User{ID: candidateID, Role: db.RoleCandidate}
	store.vacancies[vacancyID] = &db.VacancyPosting{
		ID:         vacancyID,
		EmployerID: employerID,
		Title:      "Backend Engineer",
		Active:     true,
		Skills: []db.SkillRequirement{
			{Skill: "Go", Importance: db.ImportanceCritical},
			{Skill: "SQL", Importance: db.ImportanceLow},
		},
	}
	store.profiles[candidateID] = &db.CandidateProfile{
		UserID: candidateID,
		Skills: []string{"Go"},
	}

	return &fixture{
		store:     store,
		inbox:     inbox,
		ledger:    New(store, inbox, zap.NewNop()),
		employer:  employerID,
		candidate: candidateID,
		vacancy:   vacancyID,
	}
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)

	app, err := f.ledger.Submit(context.Background(), f.candidate, f.vacancy, "  dear team  ")
	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, db.StatusSubmitted, app.Status)
	require.NotNil(t, app.MatchScore)
	assert.Equal(t, 80, *app.MatchScore) // Go critical held, SQL low missing
	require.NotNil(t, app.CoverLetter)
	assert.Equal(t, "dear team", *app.CoverLetter)

	require.Len(t, f.inbox.byType(NoticeConfirmation), 1)
	require.Len(t, f.inbox.byType(NoticeReceived), 1)
	confirmation := f.inbox.byType(NoticeConfirmation)[0]
	assert.Equal(t, f.candidate, confirmation.RecipientID)
	assert.Equal(t, "Backend Engineer", confirmation.Metadata["vacancy_title"])
}

func TestSubmitWithoutProfileScoresAgainstEmptySkills(t *testing.T) {
	f := newFixture(t)
	delete(f.store.profiles, f.candidate)

	app, err := f.ledger.Submit(context.Background(), f.candidate, f.vacancy, "")
	require.NoError(t, err)
	require.NotNil(t, app.MatchScore)
	assert.Equal(t, 0, *app.MatchScore)
	assert.Nil(t, app.CoverLetter)
}

func TestSubmitDuplicate(t *testing.T) {
	f := newFixture(t)
	f.store.duplicateCreate = true

	_, err := f.ledger.Submit(context.Background(), f.candidate, f.vacancy, "")
	var conflict *ErrConflict
	require.ErrorAs(t, err, &conflict)
	assert.Empty(t, f.inbox.created)
}

func TestSubmitInactiveVacancy(t *testing.T) {
	f := newFixture(t)
	f.store.vacancies[f.vacancy].Active = false

	_, err := f.ledger.Submit(context.Background(), f.candidate, f.vacancy, "")
	var validation *ErrValidation
	require.ErrorAs(t, err, &validation)
}

func TestSubmitUnknownVacancy(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.Submit(context.Background(), f.candidate, uuid.New(), "")
	var notFound *ErrNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestSubmitNotificationFailureDoesNotFailSubmit(t *testing.T) {
	f := newFixture(t)
	f.inbox.err = errors.New("inbox down")

	app, err := f.ledger.Submit(context.Background(), f.candidate, f.vacancy, "")
	require.NoError(t, err)
	assert.NotNil(t, app)
}

func TestInvite(t *testing.T) {
	f := newFixture(t)

	app, err := f.ledger.Invite(context.Background(), f.employer, f.vacancy, f.candidate, "come talk to us")
	require.NoError(t, err)
	assert.Equal(t, db.StatusInvited, app.Status)

	require.Len(t, f.store.inviteBodies, 1)
	assert.Equal(t, "come talk to us", f.store.inviteBodies[0])

	invites := f.inbox.byType(NoticeInvite)
	require.Len(t, invites, 1)
	assert.Equal(t, f.candidate, invites[0].RecipientID)
	assert.Equal(t, "come talk to us", invites[0].Body)
	assert.Equal(t, "invited", invites[0].Metadata["status"])
}

func TestInviteDefaultMessage(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.Invite(context.Background(), f.employer, f.vacancy, f.candidate, "   ")
	require.NoError(t, err)
	require.Len(t, f.store.inviteBodies, 1)
	assert.Equal(t, "You have been invited to apply for Backend Engineer.", f.store.inviteBodies[0])
}

func TestInviteNotOwner(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.Invite(context.Background(), uuid.New(), f.vacancy, f.candidate, "")
	var authz *ErrAuthorization
	require.ErrorAs(t, err, &authz)
	assert.Empty(t, f.store.created)
}

func TestInviteNonCandidate(t *testing.T) {
	f := newFixture(t)
	otherEmployer := uuid.New()
	f.store.users[otherEmployer] = &db.User{ID: otherEmployer, Role: db.RoleEmployer}

	_, err := f.ledger.Invite(context.Background(), f.employer, f.vacancy, otherEmployer, "")
	var notFound *ErrNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestInviteDuplicate(t *testing.T) {
	f := newFixture(t)
	f.store.duplicateCreate = true

	_, err := f.ledger.Invite(context.Background(), f.employer, f.vacancy, f.candidate, "")
	var conflict *ErrConflict
	require.ErrorAs(t, err, &conflict)
}

func invite(t *testing.T, f *fixture) *db.Application {
	t.Helper()
	app, err := f.ledger.Invite(context.Background(), f.employer, f.vacancy, f.candidate, "join us")
	require.NoError(t, err)
	return app
}

func TestDecideAccept(t *testing.T) {
	f := newFixture(t)
	app := invite(t, f)

	decided, err := f.ledger.Decide(context.Background(), f.candidate, app.ID, DecisionAccept, "")
	require.NoError(t, err)
	assert.Equal(t, db.StatusInvitedAccepted, decided.Status)

	require.Len(t, f.store.decisions, 1)
	assert.Equal(t, db.ThreadTypeDecision, f.store.decisions[0].Type)
	assert.Equal(t, LabelAccepted, f.store.decisions[0].Body)

	notices := f.inbox.byType(NoticeDecision)
	require.Len(t, notices, 1)
	assert.Equal(t, f.employer, notices[0].RecipientID)

	require.Len(t, f.inbox.patched, 1)
	assert.Contains(t, f.inbox.patched[0], LabelAccepted)
	assert.Contains(t, f.inbox.patched[0], f.candidate.String())
}

func TestDecideDecline(t *testing.T) {
	f := newFixture(t)
	app := invite(t, f)

	decided, err := f.ledger.Decide(context.Background(), f.candidate, app.ID, DecisionDecline, "found another role")
	require.NoError(t, err)
	assert.Equal(t, db.StatusInvitedDeclined, decided.Status)
	assert.Equal(t, "found another role", f.store.decisions[0].Body)
}

func TestDecideDeclineRequiresReason(t *testing.T) {
	f := newFixture(t)
	app := invite(t, f)

	_, err := f.ledger.Decide(context.Background(), f.candidate, app.ID, DecisionDecline, "   ")
	var validation *ErrValidation
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields, "body")
}

func TestDecideTwice(t *testing.T) {
	f := newFixture(t)
	app := invite(t, f)

	_, err := f.ledger.Decide(context.Background(), f.candidate, app.ID, DecisionAccept, "")
	require.NoError(t, err)

	_, err = f.ledger.Decide(context.Background(), f.candidate, app.ID, DecisionDecline, "changed my mind")
	var conflict *ErrConflict
	require.ErrorAs(t, err, &conflict)
}

func TestDecideWrongCandidate(t *testing.T) {
	f := newFixture(t)
	app := invite(t, f)

	_, err := f.ledger.Decide(context.Background(), uuid.New(), app.ID, DecisionAccept, "")
	var authz *ErrAuthorization
	require.ErrorAs(t, err, &authz)
}

func TestDecideInvalidDecision(t *testing.T) {
	f := newFixture(t)
	app := invite(t, f)

	_, err := f.ledger.Decide(context.Background(), f.candidate, app.ID, "maybe", "")
	var validation *ErrValidation
	require.ErrorAs(t, err, &validation)
}

func TestReact(t *testing.T) {
	f := newFixture(t)
	app := invite(t, f)

	tm, err := f.ledger.React(context.Background(), f.candidate, app.ID, "when do we start?", "")
	require.NoError(t, err)
	assert.Equal(t, db.ThreadTypeInfo, tm.Type)
	assert.Equal(t, f.employer, tm.ReceiverID)

	replies := f.inbox.byType(NoticeReply)
	require.Len(t, replies, 1)
	assert.Equal(t, f.employer, replies[0].RecipientID)
	assert.Equal(t, "Reply from candidate", replies[0].Title)
}

func TestReactFromEmployer(t *testing.T) {
	f := newFixture(t)
	app := invite(t, f)

	tm, err := f.ledger.React(context.Background(), f.employer, app.ID, "any update?", "")
	require.NoError(t, err)
	assert.Equal(t, f.candidate, tm.ReceiverID)

	replies := f.inbox.byType(NoticeReply)
	require.Len(t, replies, 1)
	assert.Equal(t, "Reply from employer", replies[0].Title)
}

func TestReactStranger(t *testing.T) {
	f := newFixture(t)
	app := invite(t, f)

	_, err := f.ledger.React(context.Background(), uuid.New(), app.ID, "hello", "")
	var authz *ErrAuthorization
	require.ErrorAs(t, err, &authz)
}

func TestReactEmptyBody(t *testing.T) {
	f := newFixture(t)
	app := invite(t, f)

	_, err := f.ledger.React(context.Background(), f.candidate, app.ID, "  ", "")
	var validation *ErrValidation
	require.ErrorAs(t, err, &validation)
}

func submit(t *testing.T, f *fixture) *db.Application {
	t.Helper()
	app, err := f.ledger.Submit(context.Background(), f.candidate, f.vacancy, "")
	require.NoError(t, err)
	return app
}

func TestReview(t *testing.T) {
	f := newFixture(t)
	app := submit(t, f)

	err := f.ledger.Review(context.Background(), f.employer, app.ID, db.ReviewAccepted)
	require.NoError(t, err)
	assert.Equal(t, []string{db.ReviewAccepted}, f.store.reviewed)

	notices := f.inbox.byType("review_accepted")
	require.Len(t, notices, 1)
	assert.Equal(t, f.candidate, notices[0].RecipientID)
}

func TestReviewWrongEmployer(t *testing.T) {
	f := newFixture(t)
	app := submit(t, f)

	err := f.ledger.Review(context.Background(), uuid.New(), app.ID, db.ReviewRejected)
	var authz *ErrAuthorization
	require.ErrorAs(t, err, &authz)
}

func TestReviewInvitedApplication(t *testing.T) {
	f := newFixture(t)
	app := invite(t, f)

	err := f.ledger.Review(context.Background(), f.employer, app.ID, db.ReviewAccepted)
	var conflict *ErrConflict
	require.ErrorAs(t, err, &conflict)
}

func TestReviewInvalidDisposition(t *testing.T) {
	f := newFixture(t)
	app := submit(t, f)

	err := f.ledger.Review(context.Background(), f.employer, app.ID, "shortlisted")
	var validation *ErrValidation
	require.ErrorAs(t, err, &validation)
}

func TestThread(t *testing.T) {
	f := newFixture(t)
	app := invite(t, f)

	_, err := f.ledger.React(context.Background(), f.candidate, app.ID, "first", "")
	require.NoError(t, err)
	_, err = f.ledger.React(context.Background(), f.employer, app.ID, "second", "")
	require.NoError(t, err)

	thread, messages, err := f.ledger.Thread(context.Background(), f.candidate, app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.ID, thread.ApplicationID)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Body)
	assert.Equal(t, "second", messages[1].Body)
}

func TestThreadStranger(t *testing.T) {
	f := newFixture(t)
	app := invite(t, f)

	_, _, err := f.ledger.Thread(context.Background(), uuid.New(), app.ID)
	var authz *ErrAuthorization
	require.ErrorAs(t, err, &authz)
}

func TestSetArchived(t *testing.T) {
	f := newFixture(t)
	app := invite(t, f)

	require.NoError(t, f.ledger.SetArchived(context.Background(), f.employer, app.ID, true))
	assert.True(t, f.store.archived[app.ID])

	require.NoError(t, f.ledger.SetArchived(context.Background(), f.employer, app.ID, false))
	assert.False(t, f.store.archived[app.ID])
}

func TestSetArchivedCandidateForbidden(t *testing.T) {
	f := newFixture(t)
	app := invite(t, f)

	err := f.ledger.SetArchived(context.Background(), f.candidate, app.ID, true)
	var authz *ErrAuthorization
	require.ErrorAs(t, err, &authz)
}
