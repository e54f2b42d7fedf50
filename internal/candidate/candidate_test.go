package candidate

import (
	"strings"
	"testing"
)

func TestSearchableTextCombinesFields(t *testing.T) {
	t.Parallel()

	p := &Profile{
		Name:          "Jordan Doe",
		Summary:       "Radiologist",
		SkillsText:    "MRI, CT",
		EducationText: "MD",
	}

	text := p.SearchableText()
	for _, want := range []string{"jordan doe", "radiologist", "mri", "md"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in searchable text %q", want, text)
		}
	}
}

func TestHasKeyword(t *testing.T) {
	t.Parallel()

	p := &Profile{Summary: "Experienced Tax Attorney with IRS background"}

	if !p.HasKeyword("tax attorney") {
		t.Fatal("expected case-insensitive match")
	}
	if p.HasKeyword("radiology") {
		t.Fatal("unexpected match")
	}
	if p.HasKeyword("  ") {
		t.Fatal("blank keyword must not match")
	}
}

func TestSatisfiesHardFilters(t *testing.T) {
	t.Parallel()

	p := &Profile{Summary: "PhD in mathematics, researcher in algebraic topology"}

	tests := []struct {
		name     string
		mustHave []string
		exclude  []string
		expect   bool
	}{
		{name: "all requirements met", mustHave: []string{"phd", "mathematics"}, expect: true},
		{name: "missing requirement", mustHave: []string{"phd", "radiology"}, expect: false},
		{name: "excluded term present", exclude: []string{"topology"}, expect: false},
		{name: "blank terms ignored", mustHave: []string{" "}, exclude: []string{""}, expect: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := p.SatisfiesHardFilters(tt.mustHave, tt.exclude); got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestCandidatesHelpers(t *testing.T) {
	t.Parallel()

	c := &Candidates{Items: []*Profile{
		{ID: "a"}, {ID: "b"}, {ID: "c"},
	}}

	if c.Len() != 3 {
		t.Fatalf("expected 3, got %d", c.Len())
	}

	if found := c.FindByID("b"); found == nil || found.ID != "b" {
		t.Fatalf("expected to find b, got %+v", found)
	}
	if c.FindByID("missing") != nil {
		t.Fatal("expected nil for missing id")
	}

	ids := c.IDs()
	if len(ids) != 3 || ids[0] != "a" || ids[2] != "c" {
		t.Fatalf("unexpected ids: %v", ids)
	}

	c.Truncate(2)
	if c.Len() != 2 {
		t.Fatalf("expected 2 after truncate, got %d", c.Len())
	}

	c.Truncate(10)
	if c.Len() != 2 {
		t.Fatalf("truncate must not grow the list, got %d", c.Len())
	}
}
