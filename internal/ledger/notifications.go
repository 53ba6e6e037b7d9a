package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/talentmatch/backend/internal/db"
)

// notify delivers one inbox message. Delivery runs outside the primary
// transaction: failures are logged and left for an independent retry, and
// the dedup key makes that retry safe.
func (l *Ledger) notify(ctx context.Context, nm db.NewInboxMessage) {
	if _, err := l.inbox.Create(ctx, nm); err != nil {
		l.log.Error("failed to deliver notification",
			zap.String("recipient_id", nm.RecipientID.String()),
			zap.String("type", nm.Type),
			zap.Error(err))
	}
}

// notifySubmitted delivers the post-commit pair for a new submission:
// confirmation to the candidate, notification to the employer.
func (l *Ledger) notifySubmitted(ctx context.Context, app *db.Application, vac *db.VacancyPosting) {
	meta := l.threadMeta(ctx, app)
	meta["vacancy_title"] = vac.Title

	l.notify(ctx, db.NewInboxMessage{
		RecipientID: app.CandidateID,
		SenderID:    &app.EmployerID,
		Title:       fmt.Sprintf("Application confirmed: %s", vac.Title),
		Body:        fmt.Sprintf("Your application for %s has been sent.", vac.Title),
		Type:        NoticeConfirmation,
		RelatedID:   &app.ID,
		Metadata:    meta,
	})

	l.notify(ctx, db.NewInboxMessage{
		RecipientID: app.EmployerID,
		SenderID:    &app.CandidateID,
		Title:       "New application received",
		Body:        fmt.Sprintf("A candidate applied for %s.", vac.Title),
		Type:        NoticeReceived,
		RelatedID:   &app.ID,
		Metadata:    meta,
	})
}

// notifyInvited delivers the invite notification to the candidate,
// carrying the invite text and a link back to the vacancy.
func (l *Ledger) notifyInvited(ctx context.Context, app *db.Application, vac *db.VacancyPosting, inviteBody string) {
	meta := l.threadMeta(ctx, app)
	meta["vacancy_title"] = vac.Title
	meta["link"] = fmt.Sprintf("/vacancies/%s", vac.ID)
	meta["status"] = "invited"

	l.notify(ctx, db.NewInboxMessage{
		RecipientID: app.CandidateID,
		SenderID:    &app.EmployerID,
		Title:       fmt.Sprintf("Invitation: %s", vac.Title),
		Body:        inviteBody,
		Type:        NoticeInvite,
		RelatedID:   &app.ID,
		Metadata:    meta,
	})
}

// notifyDecided informs the employer of the decision and resolves the
// candidate's original invite notification in place, so the inbox shows
// the new state without a second unread item.
func (l *Ledger) notifyDecided(ctx context.Context, app *db.Application, label, body string) {
	l.notify(ctx, db.NewInboxMessage{
		RecipientID: app.EmployerID,
		SenderID:    &app.CandidateID,
		Title:       label,
		Body:        body,
		Type:        NoticeDecision,
		RelatedID:   &app.ID,
		Metadata: map[string]string{
			"application_id": app.ID.String(),
			"vacancy_id":     app.VacancyID.String(),
			"status":         label,
		},
	})

	if err := l.inbox.PatchStatus(ctx, app.CandidateID, NoticeInvite, app.ID, label); err != nil {
		l.log.Error("failed to patch invite notification status",
			zap.String("application_id", app.ID.String()),
			zap.Error(err))
	}
}

// threadMeta builds the common metadata map for an application's
// notifications. The thread lookup is best effort.
func (l *Ledger) threadMeta(ctx context.Context, app *db.Application) map[string]string {
	meta := map[string]string{
		"application_id": app.ID.String(),
		"vacancy_id":     app.VacancyID.String(),
	}
	if thread, err := l.store.GetThreadByApplication(ctx, app.ID); err == nil && thread != nil {
		meta["thread_id"] = thread.ID.String()
	}
	return meta
}
