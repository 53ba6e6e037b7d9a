// Package server exposes the HTTP API: authentication, profiles, vacancies,
// the application lifecycle, inbox messages, matching, and admin settings.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talentmatch/backend/internal/db"
	"github.com/talentmatch/backend/internal/ledger"
	"github.com/talentmatch/backend/internal/server/middleware"
)

// ApplicationService is the application lifecycle the handlers drive.
type ApplicationService interface {
	Submit(ctx context.Context, candidateID, vacancyID uuid.UUID, coverLetter string) (*db.Application, error)
	Invite(ctx context.Context, employerID, vacancyID, candidateID uuid.UUID, message string) (*db.Application, error)
	Decide(ctx context.Context, candidateID, applicationID uuid.UUID, decision, body string) (*db.Application, error)
	React(ctx context.Context, actorID, applicationID uuid.UUID, body, msgType string) (*db.ThreadMessage, error)
	Review(ctx context.Context, employerID, applicationID uuid.UUID, disposition string) error
	Thread(ctx context.Context, actorID, applicationID uuid.UUID) (*db.Thread, []db.ThreadMessage, error)
	SetArchived(ctx context.Context, employerID, applicationID uuid.UUID, archived bool) error
}

// InboxService is the recipient-scoped notification inbox.
type InboxService interface {
	List(ctx context.Context, recipientID uuid.UUID, limit int) ([]db.InboxMessage, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID, read bool) (bool, error)
	Delete(ctx context.Context, id, recipientID uuid.UUID) (bool, error)
}

// Store is the subset of the database the handlers read and write directly,
// outside the application lifecycle.
type Store interface {
	CreateUser(ctx context.Context, email, passwordHash, name, role string) (*db.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)

	GetCandidateProfile(ctx context.Context, userID uuid.UUID) (*db.CandidateProfile, error)
	UpsertCandidateProfile(ctx context.Context, p *db.CandidateProfile) error

	CreateVacancy(ctx context.Context, v *db.VacancyPosting) (*db.VacancyPosting, error)
	UpdateVacancy(ctx context.Context, v *db.VacancyPosting) error
	SetVacancyActive(ctx context.Context, id uuid.UUID, active bool) error
	GetVacancy(ctx context.Context, id uuid.UUID) (*db.VacancyPosting, error)
	ListActiveVacancies(ctx context.Context, limit, offset int) ([]db.VacancyPosting, error)
	ListVacanciesByEmployer(ctx context.Context, employerID uuid.UUID) ([]db.VacancyPosting, error)

	ListApplicationsByCandidate(ctx context.Context, candidateID uuid.UUID) ([]db.ApplicationSummary, error)
	ListApplicationsByEmployer(ctx context.Context, employerID uuid.UUID) ([]db.ApplicationSummary, error)

	UpsertMatch(ctx context.Context, m db.Match) error
	ListMatches(ctx context.Context, candidateID uuid.UUID) ([]db.Match, error)

	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	store     Store
	apps      ApplicationService
	inbox     InboxService
	jwt       *JWTService
	passwords PasswordHasher
	validate  *validator.Validate
	log       *zap.Logger
}

// PasswordHasher hashes and verifies login credentials.
type PasswordHasher interface {
	HashPassword(pw string) (string, error)
	VerifyPassword(pw, storedHash string) bool
}

// New creates a Server with all dependencies injected.
func New(store Store, apps ApplicationService, inbox InboxService, jwt *JWTService, passwords PasswordHasher, log *zap.Logger) *Server {
	return &Server{
		store:     store,
		apps:      apps,
		inbox:     inbox,
		jwt:       jwt,
		passwords: passwords,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		log:       log,
	}
}

// Routes builds the full route table.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	auth := middleware.Auth(s.jwt)
	protected := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)

	mux.Handle("GET /profile", protected(s.handleGetProfile))
	mux.Handle("PUT /profile", protected(s.handlePutProfile))

	mux.HandleFunc("GET /vacancies", s.handleListVacancies)
	mux.HandleFunc("GET /vacancies/{id}", s.handleGetVacancy)
	mux.Handle("POST /vacancies", protected(s.handleCreateVacancy))
	mux.Handle("PUT /vacancies/{id}", protected(s.handleUpdateVacancy))
	mux.Handle("POST /vacancies/{id}/close", protected(s.handleCloseVacancy))
	mux.Handle("GET /employer/vacancies", protected(s.handleEmployerVacancies))

	mux.Handle("POST /applications", protected(s.handleSubmitApplication))
	mux.Handle("GET /applications", protected(s.handleListApplications))
	mux.Handle("POST /applications/invite", protected(s.handleInvite))
	mux.Handle("POST /applications/{id}/decision", protected(s.handleDecision))
	mux.Handle("POST /applications/{id}/react", protected(s.handleReact))
	mux.Handle("GET /applications/{id}/thread", protected(s.handleThread))
	mux.Handle("PATCH /applications/{id}/archive", protected(s.handleArchive))
	mux.Handle("PATCH /applications/{id}/review", protected(s.handleReview))

	mux.Handle("GET /messages", protected(s.handleListMessages))
	mux.Handle("PATCH /messages/{id}/read", protected(s.handleMarkMessageRead))
	mux.Handle("DELETE /messages/{id}", protected(s.handleDeleteMessage))

	mux.Handle("POST /matching/run", protected(s.handleRunMatching))
	mux.Handle("GET /matching", protected(s.handleListMatches))

	mux.Handle("GET /admin/settings/{key}", protected(s.handleGetSetting))
	mux.Handle("PUT /admin/settings/{key}", protected(s.handlePutSetting))

	return s.withLogging(withCORS(mux))
}

// ListenAndServe runs the HTTP server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info("server listening", zap.Int("port", port))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withLogging logs every request with method, path, status, and latency.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// pathID parses the {id} path segment as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id: %w", err)
	}
	return id, nil
}

// validationFields flattens validator errors into field names.
func validationFields(err error) []string {
	var fields []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
	}
	return fields
}

// queryInt parses an integer query parameter with a fallback.
func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// requireRole checks the authenticated role, writing a 403 on mismatch.
func (s *Server) requireRole(w http.ResponseWriter, r *http.Request, role string) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	if middleware.GetRole(r) != role {
		s.writeError(w, r, &ledger.ErrAuthorization{Message: fmt.Sprintf("requires %s role", role)})
		return uuid.Nil, false
	}
	return userID, true
}
