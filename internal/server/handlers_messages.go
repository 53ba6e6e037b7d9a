package server

import (
	"net/http"

	"github.com/talentmatch/backend/internal/inbox"
	"github.com/talentmatch/backend/internal/ledger"
	"github.com/talentmatch/backend/internal/server/middleware"
)

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := queryInt(r, "limit", inbox.DefaultListLimit)
	messages, err := s.inbox.List(r.Context(), userID, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

type markReadRequest struct {
	Read bool `json:"read"`
}

func (s *Server) handleMarkMessageRead(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	req := markReadRequest{Read: true}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, err.Error())
			return
		}
	}

	found, err := s.inbox.MarkRead(r.Context(), id, userID, req.Read)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !found {
		s.writeError(w, r, &ledger.ErrNotFound{Resource: "message"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "read": req.Read})
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	found, err := s.inbox.Delete(r.Context(), id, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !found {
		s.writeError(w, r, &ledger.ErrNotFound{Resource: "message"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
