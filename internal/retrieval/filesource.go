package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/talentsift/talentsift/internal/candidate"
)

type indexedProfile struct {
	profile *candidate.Profile
	vector  float64
}

// FileSource serves retrieval queries from a local index snapshot: a JSON
// array of profile rows, each optionally carrying a precomputed vector score
// under "retrieval_score". It stands in for the external index during local
// runs and tests.
type FileSource struct {
	entries []indexedProfile
}

// NewFileSource loads the snapshot at path.
func NewFileSource(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index snapshot: %w", err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse index snapshot: %w", err)
	}

	profiles, err := DecodeProfiles(rows)
	if err != nil {
		return nil, err
	}

	entries := make([]indexedProfile, 0, len(profiles))
	for i, p := range profiles {
		vector := 0.0
		if raw, ok := rows[i]["retrieval_score"]; ok {
			if f, ok := raw.(float64); ok {
				vector = f
			}
		}
		entries = append(entries, indexedProfile{profile: p, vector: vector})
	}

	return &FileSource{entries: entries}, nil
}

// Search scores the snapshot against the query per the requested strategy and
// returns the best matches, ordered best-first.
func (s *FileSource) Search(ctx context.Context, query Query) ([]Result, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terms := strings.Fields(strings.ToLower(query.Text))

	results := make([]Result, 0, len(s.entries))
	for _, entry := range s.entries {
		score := s.score(entry, terms, query.Strategy)
		if score <= 0 {
			continue
		}
		results = append(results, Result{Profile: entry.profile, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > query.MaxCandidates {
		results = results[:query.MaxCandidates]
	}

	return results, nil
}

func (s *FileSource) score(entry indexedProfile, terms []string, strategy Strategy) float64 {
	keyword := keywordScore(entry.profile, terms)

	switch strategy {
	case StrategyVectorOnly:
		return entry.vector
	case StrategyKeywordOnly:
		return keyword
	default:
		// hybrid and judgment_enhanced blend both signals
		return (entry.vector + keyword) / 2
	}
}

func keywordScore(p *candidate.Profile, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}

	matched := 0
	for _, term := range terms {
		if p.HasKeyword(term) {
			matched++
		}
	}

	return float64(matched) / float64(len(terms))
}
