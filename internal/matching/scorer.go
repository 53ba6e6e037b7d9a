// Package matching computes candidate/vacancy compatibility scores.
package matching

import "math"

// Requirement is one required skill with its importance tag.
type Requirement struct {
	Skill      string `json:"skill"`
	Importance string `json:"importance"`
}

// Importance tags on vacancy skill requirements.
const (
	ImportanceCritical = "critical"
	ImportanceHigh     = "high"
	ImportanceMedium   = "medium"
	ImportanceLow      = "low"
)

// Defaults used instead of a computed score. A vacancy without declared
// requirements is "no disqualifying requirement", not a perfect match, and
// a scoring failure must never block an application.
const (
	ScoreNoRequirements = 75
	ScoreOnError        = 50
)

// importanceWeight maps an importance tag to its weight. Unknown tags
// weigh the same as low.
func importanceWeight(importance string) int {
	switch importance {
	case ImportanceCritical:
		return 4
	case ImportanceHigh:
		return 3
	case ImportanceMedium:
		return 2
	default:
		return 1
	}
}

// ComputeScore returns a 0-100 compatibility score between a candidate's
// skill set and a vacancy's requirements. Each requirement contributes
// weight*100 to the denominator and, when the candidate holds the skill
// (exact, case-sensitive match), to the numerator. The result is the
// rounded percentage. Pure function, safe for concurrent use; any panic
// is swallowed in favor of ScoreOnError.
func ComputeScore(candidateSkills []string, requirements []Requirement) (score int) {
	defer func() {
		if r := recover(); r != nil {
			score = ScoreOnError
		}
	}()

	if len(requirements) == 0 {
		return ScoreNoRequirements
	}

	held := make(map[string]bool, len(candidateSkills))
	for _, s := range candidateSkills {
		held[s] = true
	}

	total := 0
	max := 0
	for _, req := range requirements {
		w := importanceWeight(req.Importance) * 100
		max += w
		if held[req.Skill] {
			total += w
		}
	}
	if max == 0 {
		return ScoreNoRequirements
	}

	return int(math.Round(float64(total) / float64(max) * 100))
}
