package server

import (
	"net/http"

	"github.com/talentmatch/backend/internal/db"
	"github.com/talentmatch/backend/internal/ledger"
)

type profileRequest struct {
	Skills            []string `json:"skills" validate:"max=100,dive,min=1,max=100"`
	YearsExperience   int      `json:"years_experience" validate:"min=0,max=60"`
	EducationLevel    string   `json:"education_level" validate:"max=100"`
	PreferredLocation string   `json:"preferred_location" validate:"max=200"`
	RemotePreference  string   `json:"remote_preference" validate:"omitempty,oneof=onsite hybrid remote flexible"`
	Availability      string   `json:"availability" validate:"max=100"`
	Headline          string   `json:"headline" validate:"max=200"`
	Bio               string   `json:"bio" validate:"max=5000"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireRole(w, r, db.RoleCandidate)
	if !ok {
		return
	}

	profile, err := s.store.GetCandidateProfile(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if profile == nil {
		// A fresh account has no profile row yet; return an empty one.
		profile = &db.CandidateProfile{UserID: userID, Skills: []string{}}
	}
	respondJSON(w, http.StatusOK, profile)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireRole(w, r, db.RoleCandidate)
	if !ok {
		return
	}

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, r, &ledger.ErrValidation{Fields: validationFields(err), Message: "invalid profile"})
		return
	}

	profile := &db.CandidateProfile{
		UserID:            userID,
		Skills:            req.Skills,
		YearsExperience:   req.YearsExperience,
		EducationLevel:    req.EducationLevel,
		PreferredLocation: req.PreferredLocation,
		RemotePreference:  req.RemotePreference,
		Availability:      req.Availability,
		Headline:          req.Headline,
		Bio:               req.Bio,
	}
	if profile.Skills == nil {
		profile.Skills = []string{}
	}

	if err := s.store.UpsertCandidateProfile(r.Context(), profile); err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}
