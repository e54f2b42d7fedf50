package retrieval

import "testing"

func TestQueryValidate(t *testing.T) {
	t.Parallel()

	valid := Query{
		Text:          "radiology imaging expert",
		Category:      "radiology",
		Strategy:      StrategyHybrid,
		MaxCandidates: 10,
	}

	tests := []struct {
		name    string
		mutate  func(Query) Query
		wantErr bool
	}{
		{name: "valid", mutate: func(q Query) Query { return q }},
		{name: "empty text", mutate: func(q Query) Query { q.Text = ""; return q }, wantErr: true},
		{name: "empty category", mutate: func(q Query) Query { q.Category = ""; return q }, wantErr: true},
		{name: "bad strategy", mutate: func(q Query) Query { q.Strategy = "fuzzy"; return q }, wantErr: true},
		{name: "zero budget", mutate: func(q Query) Query { q.MaxCandidates = 0; return q }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.mutate(valid).Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestQueryBroadenedDoublesUpToLimit(t *testing.T) {
	t.Parallel()

	q := Query{MaxCandidates: 10}

	if got := q.Broadened(50).MaxCandidates; got != 20 {
		t.Fatalf("expected 20, got %d", got)
	}

	q.MaxCandidates = 40
	if got := q.Broadened(50).MaxCandidates; got != 50 {
		t.Fatalf("expected cap at 50, got %d", got)
	}

	if q.MaxCandidates != 40 {
		t.Fatal("Broadened must not mutate the receiver")
	}
}

func TestDecodeProfiles(t *testing.T) {
	t.Parallel()

	rows := []map[string]any{
		{
			"id":               "cand-1",
			"name":             "Jordan Doe",
			"summary":          "Radiologist",
			"linkedin_url":     "https://linkedin.com/in/jordan",
			"years_experience": 8,
		},
		{
			"id":   "cand-2",
			"name": "Sam Lee",
		},
	}

	profiles, err := DecodeProfiles(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}

	if profiles[0].ID != "cand-1" || profiles[0].YearsExperience != 8 {
		t.Fatalf("unexpected first profile: %+v", profiles[0])
	}

	if profiles[1].Summary != "" {
		t.Fatalf("expected empty summary, got %q", profiles[1].Summary)
	}
}
