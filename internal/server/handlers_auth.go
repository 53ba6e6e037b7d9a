package server

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/talentmatch/backend/internal/db"
	"github.com/talentmatch/backend/internal/ledger"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Role     string `json:"role" validate:"required,oneof=candidate employer"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  *db.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, r, &ledger.ErrValidation{Fields: validationFields(err), Message: "invalid registration"})
		return
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.store.CreateUser(r.Context(), email, hash, strings.TrimSpace(req.Name), req.Role)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			s.writeError(w, r, &ledger.ErrConflict{Message: "an account with this email already exists"})
			return
		}
		s.writeError(w, r, err)
		return
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("role", user.Role))
	respondJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, r, &ledger.ErrValidation{Fields: validationFields(err), Message: "invalid credentials"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// Same response for unknown email and wrong password.
	if user == nil || !s.passwords.VerifyPassword(req.Password, user.PasswordHash) {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid email or password"})
		return
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}
