package server

import (
	"net/http"
	"strings"

	"github.com/talentmatch/backend/internal/db"
	"github.com/talentmatch/backend/internal/ledger"
)

func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireRole(w, r, db.RoleAdmin); !ok {
		return
	}

	key := strings.TrimSpace(r.PathValue("key"))
	value, found, err := s.store.GetSetting(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !found {
		s.writeError(w, r, &ledger.ErrNotFound{Resource: "setting"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

type settingRequest struct {
	Value string `json:"value"`
}

func (s *Server) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireRole(w, r, db.RoleAdmin); !ok {
		return
	}

	key := strings.TrimSpace(r.PathValue("key"))
	if key == "" {
		badRequest(w, "setting key is required")
		return
	}

	var req settingRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.store.SetSetting(r.Context(), key, req.Value); err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"key": key, "value": req.Value})
}
