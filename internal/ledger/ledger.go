// Package ledger owns the application/invitation lifecycle: the status
// state machine, ownership rules, and the notification fan-out that
// follows every transition.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talentmatch/backend/internal/db"
	"github.com/talentmatch/backend/internal/matching"
)

// Decision values accepted by Decide.
const (
	DecisionAccept  = "accept"
	DecisionDecline = "decline"
)

// Inbox notification types emitted by the ledger. Together with the
// recipient and the related entity id they form the dedup key, so one
// lifecycle event can never deliver twice.
const (
	NoticeConfirmation = "application_confirmation"
	NoticeReceived     = "application_received"
	NoticeInvite       = "invite"
	NoticeDecision     = "invite_decision"
	NoticeReply        = "application_reply"
)

// Status labels patched into a resolved invite notification.
const (
	LabelAccepted = "Invitation accepted"
	LabelDeclined = "Invitation declined"
)

// Store is the relational persistence the ledger depends on. All
// multi-row writes behind these methods run in one transaction.
type Store interface {
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetVacancy(ctx context.Context, id uuid.UUID) (*db.VacancyPosting, error)
	GetCandidateProfile(ctx context.Context, userID uuid.UUID) (*db.CandidateProfile, error)

	CreateApplication(ctx context.Context, na db.NewApplication, inviteBody string) (*db.Application, error)
	GetApplication(ctx context.Context, id uuid.UUID) (*db.Application, error)
	ApplyDecision(ctx context.Context, appID uuid.UUID, newStatus string, msg db.ThreadMessage) (bool, error)
	UpdateReviewStatus(ctx context.Context, appID uuid.UUID, disposition string) (bool, error)

	GetThreadByApplication(ctx context.Context, applicationID uuid.UUID) (*db.Thread, error)
	AppendThreadMessage(ctx context.Context, threadID, senderID, receiverID uuid.UUID, msgType, body string) (*db.ThreadMessage, error)
	ListThreadMessages(ctx context.Context, threadID uuid.UUID) ([]db.ThreadMessage, error)
	SetThreadArchived(ctx context.Context, applicationID uuid.UUID, archived bool) error
}

// Inbox is the deduplicated notification delivery. Create returns a nil id
// when the (recipient, type, related) triple was already delivered; that is
// success, not failure.
type Inbox interface {
	Create(ctx context.Context, nm db.NewInboxMessage) (*uuid.UUID, error)
	PatchStatus(ctx context.Context, recipientID uuid.UUID, msgType string, relatedID uuid.UUID, label string) error
}

// Ledger coordinates application state transitions and their side effects.
type Ledger struct {
	store Store
	inbox Inbox
	log   *zap.Logger
}

// New creates a Ledger.
func New(store Store, inbox Inbox, log *zap.Logger) *Ledger {
	return &Ledger{store: store, inbox: inbox, log: log}
}

// Submit creates a candidate-initiated application in state submitted.
// The application and its dossier thread are written in one transaction;
// the two inbox notifications happen after commit and are independently
// idempotent, so a crash in between is safe to retry.
func (l *Ledger) Submit(ctx context.Context, candidateID, vacancyID uuid.UUID, coverLetter string) (*db.Application, error) {
	if vacancyID == uuid.Nil {
		return nil, &ErrValidation{Fields: []string{"vacancy_id"}, Message: "vacancy_id is required"}
	}

	vac, err := l.store.GetVacancy(ctx, vacancyID)
	if err != nil {
		return nil, &ErrStore{Err: err}
	}
	if vac == nil {
		return nil, &ErrNotFound{Resource: "vacancy"}
	}
	if !vac.Active {
		return nil, &ErrValidation{Fields: []string{"vacancy_id"}, Message: "vacancy is not active"}
	}

	score := l.scoreFor(ctx, candidateID, vac)

	na := db.NewApplication{
		CandidateID: candidateID,
		EmployerID:  vac.EmployerID,
		VacancyID:   vacancyID,
		Status:      db.StatusSubmitted,
		MatchScore:  &score,
	}
	if cl := strings.TrimSpace(coverLetter); cl != "" {
		na.CoverLetter = &cl
	}

	app, err := l.store.CreateApplication(ctx, na, "")
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, &ErrConflict{Message: "you have already applied to this vacancy"}
		}
		return nil, &ErrStore{Err: err}
	}

	l.notifySubmitted(ctx, app, vac)
	return app, nil
}

// Invite creates an employer-initiated application in state invited. The
// application, dossier thread, and the invite thread message are one
// transaction; the candidate's inbox notification follows after commit.
func (l *Ledger) Invite(ctx context.Context, employerID, vacancyID, candidateID uuid.UUID, message string) (*db.Application, error) {
	var missing []string
	if vacancyID == uuid.Nil {
		missing = append(missing, "vacancy_id")
	}
	if candidateID == uuid.Nil {
		missing = append(missing, "candidate_id")
	}
	if len(missing) > 0 {
		return nil, &ErrValidation{Fields: missing, Message: "required fields missing"}
	}

	vac, err := l.store.GetVacancy(ctx, vacancyID)
	if err != nil {
		return nil, &ErrStore{Err: err}
	}
	if vac == nil {
		return nil, &ErrNotFound{Resource: "vacancy"}
	}
	if vac.EmployerID != employerID {
		return nil, &ErrAuthorization{Message: "vacancy belongs to another employer"}
	}
	if !vac.Active {
		return nil, &ErrValidation{Fields: []string{"vacancy_id"}, Message: "vacancy is not active"}
	}

	candidate, err := l.store.GetUser(ctx, candidateID)
	if err != nil {
		return nil, &ErrStore{Err: err}
	}
	if candidate == nil || candidate.Role != db.RoleCandidate {
		return nil, &ErrNotFound{Resource: "candidate"}
	}

	inviteBody := strings.TrimSpace(message)
	if inviteBody == "" {
		inviteBody = fmt.Sprintf("You have been invited to apply for %s.", vac.Title)
	}

	na := db.NewApplication{
		CandidateID: candidateID,
		EmployerID:  employerID,
		VacancyID:   vacancyID,
		Status:      db.StatusInvited,
	}
	app, err := l.store.CreateApplication(ctx, na, inviteBody)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, &ErrConflict{Message: "an application already links this candidate and vacancy"}
		}
		return nil, &ErrStore{Err: err}
	}

	l.notifyInvited(ctx, app, vac, inviteBody)
	return app, nil
}

// Decide resolves an invited application. Only the invited candidate may
// decide, only once: the conditional status update makes a second (or
// racing) decision a conflict. Declining requires a reason.
func (l *Ledger) Decide(ctx context.Context, candidateID, applicationID uuid.UUID, decision, body string) (*db.Application, error) {
	if decision != DecisionAccept && decision != DecisionDecline {
		return nil, &ErrValidation{Fields: []string{"decision"}, Message: "decision must be accept or decline"}
	}

	body = strings.TrimSpace(body)
	if decision == DecisionDecline && body == "" {
		return nil, &ErrValidation{Fields: []string{"body"}, Message: "a reason is required to decline"}
	}

	app, err := l.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, &ErrStore{Err: err}
	}
	if app == nil {
		return nil, &ErrNotFound{Resource: "application"}
	}
	if app.CandidateID != candidateID {
		return nil, &ErrAuthorization{Message: "only the invited candidate may decide"}
	}
	if app.Status != db.StatusInvited {
		return nil, &ErrConflict{Message: "invitation has already been decided"}
	}

	thread, err := l.store.GetThreadByApplication(ctx, applicationID)
	if err != nil {
		return nil, &ErrStore{Err: err}
	}
	if thread == nil {
		return nil, &ErrStore{Err: fmt.Errorf("missing thread for application %s", applicationID)}
	}

	newStatus := db.StatusInvitedAccepted
	label := LabelAccepted
	if decision == DecisionDecline {
		newStatus = db.StatusInvitedDeclined
		label = LabelDeclined
	}
	if body == "" {
		body = label
	}

	decided, err := l.store.ApplyDecision(ctx, applicationID, newStatus, db.ThreadMessage{
		ThreadID:   thread.ID,
		SenderID:   candidateID,
		ReceiverID: app.EmployerID,
		Type:       db.ThreadTypeDecision,
		Body:       body,
	})
	if err != nil {
		return nil, &ErrStore{Err: err}
	}
	if !decided {
		return nil, &ErrConflict{Message: "invitation has already been decided"}
	}

	l.notifyDecided(ctx, app, label, body)

	app.Status = newStatus
	return app, nil
}

// React appends a free conversation message to an application's dossier.
// Not a state transition; either party may do this at any time.
func (l *Ledger) React(ctx context.Context, actorID, applicationID uuid.UUID, body, msgType string) (*db.ThreadMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &ErrValidation{Fields: []string{"body"}, Message: "message body cannot be empty"}
	}
	if msgType == "" {
		msgType = db.ThreadTypeInfo
	}

	app, err := l.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, &ErrStore{Err: err}
	}
	if app == nil {
		return nil, &ErrNotFound{Resource: "application"}
	}
	if actorID != app.CandidateID && actorID != app.EmployerID {
		return nil, &ErrAuthorization{Message: "no access to this application"}
	}

	receiverID := app.CandidateID
	fromEmployer := actorID == app.EmployerID
	if !fromEmployer {
		receiverID = app.EmployerID
	}

	thread, err := l.store.GetThreadByApplication(ctx, applicationID)
	if err != nil {
		return nil, &ErrStore{Err: err}
	}
	if thread == nil {
		return nil, &ErrStore{Err: fmt.Errorf("missing thread for application %s", applicationID)}
	}

	tm, err := l.store.AppendThreadMessage(ctx, thread.ID, actorID, receiverID, msgType, body)
	if err != nil {
		return nil, &ErrStore{Err: err}
	}

	title := "Reply from candidate"
	if fromEmployer {
		title = "Reply from employer"
	}
	l.notify(ctx, db.NewInboxMessage{
		RecipientID: receiverID,
		SenderID:    &actorID,
		Title:       title,
		Body:        body,
		Type:        NoticeReply,
		RelatedID:   &tm.ID,
		Metadata: map[string]string{
			"application_id": applicationID.String(),
			"thread_id":      thread.ID.String(),
			"vacancy_id":     app.VacancyID.String(),
		},
	})
	return tm, nil
}

// Review sets the employer disposition on a submitted application and
// notifies the candidate of the outcome.
func (l *Ledger) Review(ctx context.Context, employerID, applicationID uuid.UUID, disposition string) error {
	switch disposition {
	case db.ReviewPending, db.ReviewAccepted, db.ReviewRejected:
	default:
		return &ErrValidation{Fields: []string{"status"}, Message: "status must be pending, accepted, or rejected"}
	}

	app, err := l.store.GetApplication(ctx, applicationID)
	if err != nil {
		return &ErrStore{Err: err}
	}
	if app == nil {
		return &ErrNotFound{Resource: "application"}
	}
	if app.EmployerID != employerID {
		return &ErrAuthorization{Message: "application belongs to another employer"}
	}

	updated, err := l.store.UpdateReviewStatus(ctx, applicationID, disposition)
	if err != nil {
		return &ErrStore{Err: err}
	}
	if !updated {
		return &ErrConflict{Message: "application is not open for review"}
	}

	var outcome string
	switch disposition {
	case db.ReviewAccepted:
		outcome = "Your application has been accepted."
	case db.ReviewRejected:
		outcome = "Your application has been rejected."
	default:
		outcome = "Your application is back in review."
	}
	l.notify(ctx, db.NewInboxMessage{
		RecipientID: app.CandidateID,
		SenderID:    &employerID,
		Title:       "Application update",
		Body:        outcome,
		Type:        "review_" + disposition,
		RelatedID:   &applicationID,
		Metadata: map[string]string{
			"application_id": applicationID.String(),
			"vacancy_id":     app.VacancyID.String(),
			"status":         disposition,
		},
	})
	return nil
}

// Thread returns the dossier and its conversation, oldest first, for one
// of the two application parties.
func (l *Ledger) Thread(ctx context.Context, actorID, applicationID uuid.UUID) (*db.Thread, []db.ThreadMessage, error) {
	app, err := l.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, nil, &ErrStore{Err: err}
	}
	if app == nil {
		return nil, nil, &ErrNotFound{Resource: "application"}
	}
	if actorID != app.CandidateID && actorID != app.EmployerID {
		return nil, nil, &ErrAuthorization{Message: "no access to this application"}
	}

	thread, err := l.store.GetThreadByApplication(ctx, applicationID)
	if err != nil {
		return nil, nil, &ErrStore{Err: err}
	}
	if thread == nil {
		return nil, nil, &ErrNotFound{Resource: "thread"}
	}

	messages, err := l.store.ListThreadMessages(ctx, thread.ID)
	if err != nil {
		return nil, nil, &ErrStore{Err: err}
	}
	return thread, messages, nil
}

// SetArchived flips the dossier archive flag. Employer-owner only,
// reversible, no notifications.
func (l *Ledger) SetArchived(ctx context.Context, employerID, applicationID uuid.UUID, archived bool) error {
	app, err := l.store.GetApplication(ctx, applicationID)
	if err != nil {
		return &ErrStore{Err: err}
	}
	if app == nil {
		return &ErrNotFound{Resource: "application"}
	}
	if app.EmployerID != employerID {
		return &ErrAuthorization{Message: "only the employer may archive the dossier"}
	}

	if err := l.store.SetThreadArchived(ctx, applicationID, archived); err != nil {
		return &ErrStore{Err: err}
	}
	return nil
}

// scoreFor computes the match score for an application. Scoring must never
// block the flow: store failures and panics fall back to the documented
// defaults.
func (l *Ledger) scoreFor(ctx context.Context, candidateID uuid.UUID, vac *db.VacancyPosting) int {
	profile, err := l.store.GetCandidateProfile(ctx, candidateID)
	if err != nil {
		l.log.Warn("match scoring fell back to default",
			zap.String("candidate_id", candidateID.String()),
			zap.Error(err))
		return matching.ScoreOnError
	}

	var skills []string
	if profile != nil {
		skills = profile.Skills
	}

	reqs := make([]matching.Requirement, 0, len(vac.Skills))
	for _, s := range vac.Skills {
		reqs = append(reqs, matching.Requirement{Skill: s.Skill, Importance: s.Importance})
	}
	return matching.ComputeScore(skills, reqs)
}
