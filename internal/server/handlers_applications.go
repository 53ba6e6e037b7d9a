package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/talentmatch/backend/internal/db"
	"github.com/talentmatch/backend/internal/ledger"
	"github.com/talentmatch/backend/internal/server/middleware"
)

type submitApplicationRequest struct {
	VacancyID   uuid.UUID `json:"vacancy_id"`
	CoverLetter string    `json:"cover_letter"`
}

func (s *Server) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := s.requireRole(w, r, db.RoleCandidate)
	if !ok {
		return
	}

	var req submitApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	app, err := s.apps.Submit(r.Context(), candidateID, req.VacancyID, req.CoverLetter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"application": app})
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var apps []db.ApplicationSummary
	switch middleware.GetRole(r) {
	case db.RoleCandidate:
		apps, err = s.store.ListApplicationsByCandidate(r.Context(), userID)
	case db.RoleEmployer:
		apps, err = s.store.ListApplicationsByEmployer(r.Context(), userID)
	default:
		s.writeError(w, r, &ledger.ErrAuthorization{Message: "requires candidate or employer role"})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"applications": apps})
}

type inviteRequest struct {
	VacancyID   uuid.UUID `json:"vacancy_id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	Message     string    `json:"message"`
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	employerID, ok := s.requireRole(w, r, db.RoleEmployer)
	if !ok {
		return
	}

	var req inviteRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	app, err := s.apps.Invite(r.Context(), employerID, req.VacancyID, req.CandidateID, req.Message)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"application": app})
}

type decisionRequest struct {
	Decision string `json:"decision"`
	Body     string `json:"body"`
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := s.requireRole(w, r, db.RoleCandidate)
	if !ok {
		return
	}
	appID, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	var req decisionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	app, err := s.apps.Decide(r.Context(), candidateID, appID, req.Decision, req.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"application": app})
}

type reactRequest struct {
	Body string `json:"body"`
	Type string `json:"type"`
}

func (s *Server) handleReact(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	appID, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	var req reactRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	msg, err := s.apps.React(r.Context(), userID, appID, req.Body, req.Type)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"message": msg})
}

func (s *Server) handleThread(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	appID, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	thread, messages, err := s.apps.Thread(r.Context(), userID, appID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"thread":   thread,
		"messages": messages,
	})
}

type archiveRequest struct {
	Archived bool `json:"archived"`
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	employerID, ok := s.requireRole(w, r, db.RoleEmployer)
	if !ok {
		return
	}
	appID, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	var req archiveRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.apps.SetArchived(r.Context(), employerID, appID, req.Archived); err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": appID, "archived": req.Archived})
}

type reviewRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	employerID, ok := s.requireRole(w, r, db.RoleEmployer)
	if !ok {
		return
	}
	appID, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.apps.Review(r.Context(), employerID, appID, req.Status); err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": appID, "review_status": req.Status})
}
