package candidate

import (
	"errors"
	"sort"
)

const (
	// linkedInBonus rewards profiles that carry a verified external identifier.
	linkedInBonus = 0.1
	// experienceBonusMax caps the boost earned by experience proximity.
	experienceBonusMax = 0.15
)

// Score holds the scoring components attached to a profile for one
// evaluation. CombinedScore is a deterministic pure function of the other
// fields and the configured weights.
type Score struct {
	CandidateID     string  `json:"candidate_id"`
	RetrievalScore  float64 `json:"retrieval_score"`
	PreferenceScore float64 `json:"preference_score"`
	CombinedScore   float64 `json:"combined_score"`
}

// Weights are the non-negative scoring weights for the retrieval signal, the
// soft-preference signal and the constant padding term. They are normalized
// by their sum before use, so any uniform scaling yields the same combined
// score.
type Weights struct {
	Retrieval  float64 `mapstructure:"retrieval"`
	Preference float64 `mapstructure:"preference"`
	Padding    float64 `mapstructure:"padding"`
}

var ErrZeroWeights = errors.New("at least one scoring weight must be positive")

// Normalize returns the weights divided by their sum.
func (w Weights) Normalize() (Weights, error) {
	if w.Retrieval < 0 || w.Preference < 0 || w.Padding < 0 {
		return Weights{}, errors.New("scoring weights must be non-negative")
	}

	sum := w.Retrieval + w.Preference + w.Padding
	if sum <= 0 {
		return Weights{}, ErrZeroWeights
	}

	return Weights{
		Retrieval:  w.Retrieval / sum,
		Preference: w.Preference / sum,
		Padding:    w.Padding / sum,
	}, nil
}

// PreferenceScore computes the soft-preference boost for a profile: the
// fraction of preferred keywords present in its text, plus capped bonuses
// for a verified external identifier and for experience proximity to
// targetYears. The result never exceeds 1.0. An empty keyword list yields
// exactly 0.0 regardless of bonuses.
func PreferenceScore(p *Profile, preferred []string, targetYears int) float64 {
	if len(preferred) == 0 {
		return 0.0
	}

	matches := 0
	for _, keyword := range preferred {
		if p.HasKeyword(keyword) {
			matches++
		}
	}

	score := float64(matches) / float64(len(preferred))

	if p.LinkedInURL != "" {
		score += linkedInBonus
	}
	score += experienceBonus(p.YearsExperience, targetYears)

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// experienceBonus scales with proximity of the candidate's experience to the
// target. Unknown experience or no target earns nothing.
func experienceBonus(years, target int) float64 {
	if years <= 0 || target <= 0 {
		return 0.0
	}

	diff := years - target
	if diff < 0 {
		diff = -diff
	}

	denom := target
	if denom < 10 {
		denom = 10
	}

	proximity := 1.0 - float64(diff)/float64(denom)
	if proximity < 0 {
		proximity = 0
	}
	return proximity * experienceBonusMax
}

// Combine merges a retrieval score and a preference score into one ranking
// value using normalized weights. The padding weight applies to a constant
// unit term, giving every candidate the same floor.
func Combine(retrieval, preference float64, w Weights) (float64, error) {
	n, err := w.Normalize()
	if err != nil {
		return 0, err
	}

	return n.Retrieval*retrieval + n.Preference*preference + n.Padding*1.0, nil
}

// ScoreProfile derives a full Score for the profile without mutating it.
func ScoreProfile(p *Profile, retrieval float64, preferred []string, targetYears int, w Weights) (Score, error) {
	preference := PreferenceScore(p, preferred, targetYears)
	combined, err := Combine(retrieval, preference, w)
	if err != nil {
		return Score{}, err
	}

	return Score{
		CandidateID:     p.ID,
		RetrievalScore:  retrieval,
		PreferenceScore: preference,
		CombinedScore:   combined,
	}, nil
}

// Ranked pairs a profile with its derived score.
type Ranked struct {
	Profile *Profile
	Score   Score
}

// Ranking is an ordered candidate list with attached scores.
type Ranking []Ranked

// Sort orders the ranking by combined score, best first. Ties keep their
// original relative order so repeated runs stay deterministic.
func (r Ranking) Sort() {
	sort.SliceStable(r, func(i, j int) bool {
		return r[i].Score.CombinedScore > r[j].Score.CombinedScore
	})
}

// Profiles returns the ranked profiles as a candidate list, preserving order.
func (r Ranking) Profiles() *Candidates {
	items := make([]*Profile, 0, len(r))
	for _, ranked := range r {
		items = append(items, ranked.Profile)
	}
	return &Candidates{Items: items}
}

func (r Ranking) IDs() []string {
	ids := make([]string, 0, len(r))
	for _, ranked := range r {
		ids = append(ids, ranked.Profile.ID)
	}
	return ids
}
