package refine

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/talentsift/talentsift/internal/candidate"
)

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	t.Parallel()

	c := &candidate.Candidates{Items: []*candidate.Profile{
		{ID: "a", Name: "first"},
		{ID: "b"},
		{ID: "a", Name: "second"},
	}}

	next, stats, err := NewDedupe().Apply(context.Background(), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if next.Len() != 2 {
		t.Fatalf("expected 2 candidates, got %d", next.Len())
	}
	if stats.Dropped != 1 {
		t.Fatalf("expected 1 dropped, got %d", stats.Dropped)
	}
	if next.FindByID("a").Name != "first" {
		t.Fatal("expected first occurrence to survive")
	}
}

func TestHardFilterDropsNonMatching(t *testing.T) {
	t.Parallel()

	c := &candidate.Candidates{Items: []*candidate.Profile{
		{ID: "a", Summary: "tax attorney with IRS litigation background"},
		{ID: "b", Summary: "software engineer"},
		{ID: "c", Summary: "tax attorney, former software engineer"},
	}}

	step := NewHardFilter([]string{"tax attorney"}, []string{"software"})
	next, stats, err := step.Apply(context.Background(), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if next.Len() != 1 || next.Items[0].ID != "a" {
		t.Fatalf("unexpected survivors: %v", next.IDs())
	}
	if stats.Dropped != 2 {
		t.Fatalf("expected 2 dropped, got %d", stats.Dropped)
	}
}

func TestHardFilterDisabledWithoutCriteria(t *testing.T) {
	t.Parallel()

	if NewHardFilter(nil, nil).IsEnabled() {
		t.Fatal("expected step to be disabled without criteria")
	}
	if !NewHardFilter([]string{"phd"}, nil).IsEnabled() {
		t.Fatal("expected step to be enabled with criteria")
	}
}

func TestTruncateValidate(t *testing.T) {
	t.Parallel()

	if err := NewTruncate(0).Validate(); err == nil {
		t.Fatal("expected error for non-positive limit")
	}
	if err := NewTruncate(5).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPipelineRunsStepsInOrder(t *testing.T) {
	t.Parallel()

	c := &candidate.Candidates{Items: []*candidate.Profile{
		{ID: "a", Summary: "radiology expert"},
		{ID: "a", Summary: "radiology expert"},
		{ID: "b", Summary: "radiology resident"},
		{ID: "c", Summary: "accountant"},
	}}

	pipeline := New([]Step{
		NewDedupe(),
		NewHardFilter([]string{"radiology"}, nil),
		NewTruncate(1),
	}, zap.NewNop())

	refined, err := pipeline.Run(context.Background(), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if refined.Len() != 1 || refined.Items[0].ID != "a" {
		t.Fatalf("unexpected result: %v", refined.IDs())
	}
}

func TestPipelineSurfacesValidationErrors(t *testing.T) {
	t.Parallel()

	pipeline := New([]Step{NewTruncate(-1)}, zap.NewNop())

	if _, err := pipeline.Run(context.Background(), &candidate.Candidates{}); err == nil {
		t.Fatal("expected validation error")
	}
}
