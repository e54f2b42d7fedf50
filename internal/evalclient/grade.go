package evalclient

import (
	"context"
	"fmt"
)

// gradeIDCount is the exact number of candidate ids the backend requires per
// graded category.
const gradeIDCount = 10

// GradeReceipt acknowledges an accepted grade submission.
type GradeReceipt struct {
	SubmissionID string `json:"submission_id"`
	Accepted     int    `json:"accepted"`
}

type gradeRequest struct {
	Grades map[string][]string `json:"grades"`
}

// SubmitGrades sends the final per-category candidate selections. Every
// category must carry exactly gradeIDCount unique ids; the whole submission
// is rejected client-side otherwise.
func (c *Client) SubmitGrades(ctx context.Context, grades map[string][]string) (*GradeReceipt, error) {
	if len(grades) == 0 {
		return nil, fmt.Errorf("at least one graded category is required")
	}

	for category, ids := range grades {
		if err := validateGradeIDs(category, ids); err != nil {
			return nil, err
		}
	}

	var receipt GradeReceipt
	if err := c.postJSON(ctx, "grade", "/v1/grade", gradeRequest{Grades: grades}, &receipt); err != nil {
		return nil, err
	}

	return &receipt, nil
}

func validateGradeIDs(category string, ids []string) error {
	if len(ids) != gradeIDCount {
		return fmt.Errorf("category %q: exactly %d candidate ids required, got %d", category, gradeIDCount, len(ids))
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("category %q: empty candidate id", category)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("category %q: duplicate candidate id %q", category, id)
		}
		seen[id] = struct{}{}
	}

	return nil
}
