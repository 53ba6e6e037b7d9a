package matching

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talentmatch/backend/internal/db"
)

// Weights of the blended bulk score.
const (
	skillWeight      = 0.5
	experienceWeight = 0.3
	locationWeight   = 0.2
)

// Thresholds on the blended score.
const (
	// StoreThreshold is the minimum blended score persisted as a Match.
	StoreThreshold = 50
	// TopThreshold marks a match worth surfacing prominently.
	TopThreshold = 70
)

// Candidate is the matching view of a seeker profile.
type Candidate struct {
	ID                uuid.UUID `json:"id"`
	Skills            []string  `json:"skills"`
	ExperienceYears   int       `json:"experience_years"`
	EducationLevel    string    `json:"education_level"`
	PreferredLocation string    `json:"preferred_location"`
	RemotePreference  string    `json:"remote_preference"`
	Availability      string    `json:"availability"`
}

// Vacancy is the matching view of an open role.
type Vacancy struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	RequiredSkills  []string  `json:"required_skills"`
	ExperienceLevel string    `json:"experience_level"`
	Location        string    `json:"location"`
	RemoteOption    string    `json:"remote_option"`
	EmploymentType  string    `json:"employment_type"`
}

// VacancyScore is the blended result for one vacancy.
type VacancyScore struct {
	VacancyID       uuid.UUID `json:"vacancy_id"`
	VacancyTitle    string    `json:"vacancy_title"`
	Overall         float64   `json:"overall_score"`
	SkillMatch      float64   `json:"skill_match"`
	ExperienceMatch float64   `json:"experience_match"`
	LocationMatch   float64   `json:"location_match"`
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// skillMatch is the fraction of required skills the candidate holds, as a
// percentage. The comparison is case-insensitive; no requirements means no
// disqualifier, so 100.
func skillMatch(candidateSkills, requiredSkills []string) float64 {
	if len(requiredSkills) == 0 {
		return 100
	}
	held := make(map[string]bool, len(candidateSkills))
	for _, s := range candidateSkills {
		held[normalize(s)] = true
	}
	matches := 0
	for _, s := range requiredSkills {
		if held[normalize(s)] {
			matches++
		}
	}
	return float64(matches) / float64(len(requiredSkills)) * 100
}

// experienceBands maps a required level to its years range.
var experienceBands = map[string][2]int{
	"junior": {0, 2},
	"medior": {2, 5},
	"senior": {5, 10},
	"lead":   {8, 100},
}

// experienceMatch scores the candidate's years against the required level.
// Inside the band is a full match, each missing year costs 20 points, and
// overqualified is still good.
func experienceMatch(years int, requiredLevel string) float64 {
	band, ok := experienceBands[normalize(requiredLevel)]
	if !ok {
		return 50
	}
	switch {
	case years >= band[0] && years <= band[1]:
		return 100
	case years < band[0]:
		return math.Max(0, float64(100-(band[0]-years)*20))
	default:
		return 90
	}
}

// locationMatch scores remote compatibility first, then falls back to
// comparing locations textually.
func locationMatch(candidateLocation, vacancyLocation, candidateRemote, vacancyRemote string) float64 {
	cr, vr := normalize(candidateRemote), normalize(vacancyRemote)
	switch {
	case cr == "remote" && vr == "remote":
		return 100
	case cr == "remote" && vr == "hybrid":
		return 80
	case cr == "hybrid" && (vr == "remote" || vr == "hybrid"):
		return 90
	}

	cl, vl := normalize(candidateLocation), normalize(vacancyLocation)
	switch {
	case cl == vl:
		return 100
	case cl != "" && vl != "" && (strings.Contains(vl, cl) || strings.Contains(cl, vl)):
		return 70
	default:
		return 30
	}
}

// Score computes the blended compatibility between one candidate and one
// vacancy, with the per-component breakdown.
func Score(c Candidate, v Vacancy) VacancyScore {
	skill := skillMatch(c.Skills, v.RequiredSkills)
	experience := experienceMatch(c.ExperienceYears, v.ExperienceLevel)
	location := locationMatch(c.PreferredLocation, v.Location, c.RemotePreference, v.RemoteOption)

	overall := skill*skillWeight + experience*experienceWeight + location*locationWeight

	return VacancyScore{
		VacancyID:       v.ID,
		VacancyTitle:    v.Title,
		Overall:         math.Round(overall*100) / 100,
		SkillMatch:      math.Round(skill*100) / 100,
		ExperienceMatch: math.Round(experience*100) / 100,
		LocationMatch:   math.Round(location*100) / 100,
	}
}

// BulkScore scores one candidate against every vacancy, best first.
// Deterministic for fixed inputs; the sort is stable so equal scores keep
// the input order.
func BulkScore(c Candidate, vacancies []Vacancy) []VacancyScore {
	scores := make([]VacancyScore, 0, len(vacancies))
	for _, v := range vacancies {
		scores = append(scores, Score(c, v))
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Overall > scores[j].Overall
	})
	return scores
}

// MatchStore persists bulk-scoring results.
type MatchStore interface {
	UpsertMatch(ctx context.Context, m db.Match) error
}

// StoreMatches upserts every score at or above StoreThreshold and returns
// how many were stored. Upserts are keyed on (candidate, vacancy), so the
// operation is re-entrant: repeating it with unchanged inputs leaves the
// stored set identical.
func StoreMatches(ctx context.Context, store MatchStore, candidateID uuid.UUID, scores []VacancyScore, log *zap.Logger) (int, error) {
	stored := 0
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	results := make(chan uuid.UUID, len(scores))
	for _, sc := range scores {
		if sc.Overall < StoreThreshold {
			continue
		}
		g.Go(func() error {
			m := db.Match{
				CandidateID:     candidateID,
				VacancyID:       sc.VacancyID,
				Score:           int(math.Round(sc.Overall)),
				SkillScore:      sc.SkillMatch,
				ExperienceScore: sc.ExperienceMatch,
				LocationScore:   sc.LocationMatch,
			}
			if err := store.UpsertMatch(gctx, m); err != nil {
				return fmt.Errorf("failed to store match for vacancy %s: %w", sc.VacancyID, err)
			}
			results <- sc.VacancyID
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	close(results)
	for range results {
		stored++
	}

	if log != nil {
		log.Info("bulk scoring stored matches",
			zap.String("candidate_id", candidateID.String()),
			zap.Int("scored", len(scores)),
			zap.Int("stored", stored))
	}
	return stored, nil
}
