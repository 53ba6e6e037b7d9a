package server

import (
	"net/http"

	"github.com/talentmatch/backend/internal/db"
	"github.com/talentmatch/backend/internal/ledger"
	"github.com/talentmatch/backend/internal/matching"
)

// handleRunMatching scores the authenticated candidate against all active
// vacancies and persists the qualifying results.
func (s *Server) handleRunMatching(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := s.requireRole(w, r, db.RoleCandidate)
	if !ok {
		return
	}

	profile, err := s.store.GetCandidateProfile(r.Context(), candidateID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if profile == nil {
		s.writeError(w, r, &ledger.ErrNotFound{Resource: "profile"})
		return
	}

	postings, err := s.store.ListActiveVacancies(r.Context(), 500, 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	candidate := matching.Candidate{
		ID:                candidateID,
		Skills:            profile.Skills,
		ExperienceYears:   profile.YearsExperience,
		EducationLevel:    profile.EducationLevel,
		PreferredLocation: profile.PreferredLocation,
		RemotePreference:  profile.RemotePreference,
		Availability:      profile.Availability,
	}
	vacancies := make([]matching.Vacancy, 0, len(postings))
	for _, p := range postings {
		skills := make([]string, 0, len(p.Skills))
		for _, sk := range p.Skills {
			skills = append(skills, sk.Skill)
		}
		vacancies = append(vacancies, matching.Vacancy{
			ID:              p.ID,
			Title:           p.Title,
			RequiredSkills:  skills,
			ExperienceLevel: p.ExperienceLevel,
			Location:        p.Location,
			RemoteOption:    p.RemoteOption,
			EmploymentType:  p.EmploymentType,
		})
	}

	scores := matching.BulkScore(candidate, vacancies)
	stored, err := matching.StoreMatches(r.Context(), s.store, candidateID, scores, s.log)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	top := 0
	for _, sc := range scores {
		if sc.Overall >= matching.TopThreshold {
			top++
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"matches":         scores,
		"total_vacancies": len(vacancies),
		"stored":          stored,
		"top_matches":     top,
	})
}

// handleListMatches returns the candidate's stored matches, best first.
func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := s.requireRole(w, r, db.RoleCandidate)
	if !ok {
		return
	}

	matches, err := s.store.ListMatches(r.Context(), candidateID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"matches": matches})
}
