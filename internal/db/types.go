package db

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleCandidate = "candidate"
	RoleEmployer  = "employer"
	RoleAdmin     = "admin"
)

// Application statuses. A submitted application additionally carries a
// review_status disposition controlled by the employer.
const (
	StatusSubmitted       = "submitted"
	StatusInvited         = "invited"
	StatusInvitedAccepted = "invited_accepted"
	StatusInvitedDeclined = "invited_declined"
)

// Employer review dispositions for submitted applications
const (
	ReviewPending  = "pending"
	ReviewAccepted = "accepted"
	ReviewRejected = "rejected"
)

// Skill requirement importance tags
const (
	ImportanceCritical = "critical"
	ImportanceHigh     = "high"
	ImportanceMedium   = "medium"
	ImportanceLow      = "low"
)

// Thread message types
const (
	ThreadTypeInfo     = "info"
	ThreadTypeInvite   = "invite"
	ThreadTypeDecision = "decision"
)

// Remote preference / remote option values
const (
	RemoteOnsite   = "onsite"
	RemoteHybrid   = "hybrid"
	RemoteRemote   = "remote"
	RemoteFlexible = "flexible"
)

// User represents an account row. PasswordHash never serializes.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CandidateProfile holds the attributes used for matching.
type CandidateProfile struct {
	UserID            uuid.UUID `json:"user_id"`
	Skills            []string  `json:"skills"`
	YearsExperience   int       `json:"years_experience"`
	EducationLevel    string    `json:"education_level"`
	PreferredLocation string    `json:"preferred_location"`
	RemotePreference  string    `json:"remote_preference"`
	Availability      string    `json:"availability"`
	Headline          string    `json:"headline"`
	Bio               string    `json:"bio"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// SkillRequirement is one required skill on a vacancy with its importance tag.
type SkillRequirement struct {
	Skill      string `json:"skill"`
	Importance string `json:"importance"`
}

// VacancyPosting is an employer's open role. Closing sets Active=false;
// vacancies are never deleted.
type VacancyPosting struct {
	ID              uuid.UUID          `json:"id"`
	EmployerID      uuid.UUID          `json:"employer_id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	Location        string             `json:"location"`
	ExperienceLevel string             `json:"experience_level"`
	RemoteOption    string             `json:"remote_option"`
	EmploymentType  string             `json:"employment_type"`
	SalaryMin       *int               `json:"salary_min,omitempty"`
	SalaryMax       *int               `json:"salary_max,omitempty"`
	Active          bool               `json:"active"`
	Skills          []SkillRequirement `json:"skills"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// Application links one candidate to one vacancy. At most one row exists
// per (candidate, vacancy) pair.
type Application struct {
	ID           uuid.UUID `json:"id"`
	CandidateID  uuid.UUID `json:"candidate_id"`
	EmployerID   uuid.UUID `json:"employer_id"`
	VacancyID    uuid.UUID `json:"vacancy_id"`
	Status       string    `json:"status"`
	ReviewStatus string    `json:"review_status"`
	CoverLetter  *string   `json:"cover_letter,omitempty"`
	MatchScore   *int      `json:"match_score,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ApplicationSummary is a list view row with the joined vacancy title.
type ApplicationSummary struct {
	Application
	VacancyTitle string `json:"vacancy_title"`
}

// Thread is the dossier attached to one application.
type Thread struct {
	ID            uuid.UUID  `json:"id"`
	ApplicationID uuid.UUID  `json:"application_id"`
	Archived      bool       `json:"archived"`
	ArchivedAt    *time.Time `json:"archived_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ThreadMessage is an immutable, append-only conversation entry.
type ThreadMessage struct {
	ID         uuid.UUID `json:"id"`
	ThreadID   uuid.UUID `json:"thread_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Type       string    `json:"type"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// InboxMessage is a deduplicated, recipient-scoped notification.
type InboxMessage struct {
	ID          uuid.UUID         `json:"id"`
	RecipientID uuid.UUID         `json:"recipient_id"`
	SenderID    *uuid.UUID        `json:"sender_id,omitempty"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Type        string            `json:"type"`
	RelatedID   *uuid.UUID        `json:"related_id,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	ReadAt      *time.Time        `json:"read_at,omitempty"`
}

// Read reports whether the message has been read.
func (m *InboxMessage) Read() bool {
	return m.ReadAt != nil
}

// Match is a stored bulk-scoring result for one (candidate, vacancy) pair.
type Match struct {
	CandidateID     uuid.UUID `json:"candidate_id"`
	VacancyID       uuid.UUID `json:"vacancy_id"`
	Score           int       `json:"score"`
	SkillScore      float64   `json:"skill_score"`
	ExperienceScore float64   `json:"experience_score"`
	LocationScore   float64   `json:"location_score"`
	UpdatedAt       time.Time `json:"updated_at"`
}
