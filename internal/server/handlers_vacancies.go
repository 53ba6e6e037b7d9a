package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/talentmatch/backend/internal/db"
	"github.com/talentmatch/backend/internal/ledger"
)

type skillRequirementRequest struct {
	Skill      string `json:"skill" validate:"required,min=1,max=100"`
	Importance string `json:"importance" validate:"omitempty,oneof=critical high medium low"`
}

type vacancyRequest struct {
	Title           string                    `json:"title" validate:"required,min=1,max=200"`
	Description     string                    `json:"description" validate:"max=10000"`
	Location        string                    `json:"location" validate:"max=200"`
	ExperienceLevel string                    `json:"experience_level" validate:"omitempty,oneof=junior medior senior lead"`
	RemoteOption    string                    `json:"remote_option" validate:"omitempty,oneof=onsite hybrid remote"`
	EmploymentType  string                    `json:"employment_type" validate:"max=100"`
	SalaryMin       *int                      `json:"salary_min" validate:"omitempty,min=0"`
	SalaryMax       *int                      `json:"salary_max" validate:"omitempty,min=0"`
	Skills          []skillRequirementRequest `json:"skills" validate:"max=50,dive"`
}

func (r vacancyRequest) toPosting(employerID, id uuid.UUID) *db.VacancyPosting {
	skills := make([]db.SkillRequirement, 0, len(r.Skills))
	for _, sk := range r.Skills {
		importance := sk.Importance
		if importance == "" {
			importance = db.ImportanceMedium
		}
		skills = append(skills, db.SkillRequirement{
			Skill:      strings.TrimSpace(sk.Skill),
			Importance: importance,
		})
	}
	return &db.VacancyPosting{
		ID:              id,
		EmployerID:      employerID,
		Title:           strings.TrimSpace(r.Title),
		Description:     r.Description,
		Location:        r.Location,
		ExperienceLevel: r.ExperienceLevel,
		RemoteOption:    r.RemoteOption,
		EmploymentType:  r.EmploymentType,
		SalaryMin:       r.SalaryMin,
		SalaryMax:       r.SalaryMax,
		Active:          true,
		Skills:          skills,
	}
}

func (s *Server) handleCreateVacancy(w http.ResponseWriter, r *http.Request) {
	employerID, ok := s.requireRole(w, r, db.RoleEmployer)
	if !ok {
		return
	}

	var req vacancyRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, r, &ledger.ErrValidation{Fields: validationFields(err), Message: "invalid vacancy"})
		return
	}

	created, err := s.store.CreateVacancy(r.Context(), req.toPosting(employerID, uuid.Nil))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateVacancy(w http.ResponseWriter, r *http.Request) {
	employerID, ok := s.requireRole(w, r, db.RoleEmployer)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	existing, err := s.store.GetVacancy(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if existing == nil {
		s.writeError(w, r, &ledger.ErrNotFound{Resource: "vacancy"})
		return
	}
	if existing.EmployerID != employerID {
		s.writeError(w, r, &ledger.ErrAuthorization{Message: "vacancy belongs to another employer"})
		return
	}

	var req vacancyRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, r, &ledger.ErrValidation{Fields: validationFields(err), Message: "invalid vacancy"})
		return
	}

	posting := req.toPosting(employerID, id)
	posting.Active = existing.Active
	if err := s.store.UpdateVacancy(r.Context(), posting); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.store.GetVacancy(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// handleCloseVacancy deactivates a vacancy. The row stays; existing
// applications keep pointing at it.
func (s *Server) handleCloseVacancy(w http.ResponseWriter, r *http.Request) {
	employerID, ok := s.requireRole(w, r, db.RoleEmployer)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	existing, err := s.store.GetVacancy(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if existing == nil {
		s.writeError(w, r, &ledger.ErrNotFound{Resource: "vacancy"})
		return
	}
	if existing.EmployerID != employerID {
		s.writeError(w, r, &ledger.ErrAuthorization{Message: "vacancy belongs to another employer"})
		return
	}

	if err := s.store.SetVacancyActive(r.Context(), id, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "active": false})
}

func (s *Server) handleGetVacancy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	vac, err := s.store.GetVacancy(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if vac == nil {
		s.writeError(w, r, &ledger.ErrNotFound{Resource: "vacancy"})
		return
	}
	respondJSON(w, http.StatusOK, vac)
}

func (s *Server) handleListVacancies(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	vacancies, err := s.store.ListActiveVacancies(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"vacancies": vacancies})
}

func (s *Server) handleEmployerVacancies(w http.ResponseWriter, r *http.Request) {
	employerID, ok := s.requireRole(w, r, db.RoleEmployer)
	if !ok {
		return
	}

	vacancies, err := s.store.ListVacanciesByEmployer(r.Context(), employerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"vacancies": vacancies})
}
