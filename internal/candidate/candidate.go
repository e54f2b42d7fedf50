package candidate

import (
	"encoding/json"
	"os"
	"strings"
)

// Profile is a single candidate record as returned by the retrieval index.
// Fields are read-only once constructed; derived scores live in Score values
// and never modify the profile itself.
type Profile struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Summary     string `json:"summary,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`

	Headline       string `json:"headline,omitempty"`
	ExperienceText string `json:"experience_text,omitempty"`
	SkillsText     string `json:"skills_text,omitempty"`
	EducationText  string `json:"education_text,omitempty"`
	Country        string `json:"country,omitempty"`

	// YearsExperience is 0 when the index does not know it.
	YearsExperience int `json:"years_experience,omitempty"`
}

// SearchableText returns all free-text fields combined and lowercased for
// keyword matching.
func (p *Profile) SearchableText() string {
	fields := []string{
		p.Name,
		p.Summary,
		p.Headline,
		p.ExperienceText,
		p.SkillsText,
		p.EducationText,
	}

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if field != "" {
			parts = append(parts, field)
		}
	}

	return strings.ToLower(strings.Join(parts, " "))
}

// HasKeyword reports whether the profile text contains the keyword,
// case-insensitively.
func (p *Profile) HasKeyword(keyword string) bool {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return false
	}
	return strings.Contains(p.SearchableText(), keyword)
}

// SatisfiesHardFilters reports whether the profile contains every must-have
// term and none of the excluded terms. Hard criteria exclude candidates;
// soft criteria only boost ranking.
func (p *Profile) SatisfiesHardFilters(mustHave, exclude []string) bool {
	text := p.SearchableText()

	for _, requirement := range mustHave {
		requirement = strings.ToLower(strings.TrimSpace(requirement))
		if requirement == "" {
			continue
		}
		if !strings.Contains(text, requirement) {
			return false
		}
	}

	for _, exclusion := range exclude {
		exclusion = strings.ToLower(strings.TrimSpace(exclusion))
		if exclusion == "" {
			continue
		}
		if strings.Contains(text, exclusion) {
			return false
		}
	}

	return true
}

// Candidates is an ordered list of profiles.
type Candidates struct {
	Items []*Profile
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

func (c *Candidates) IDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func (c *Candidates) FindByID(id string) *Profile {
	for _, item := range c.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// Truncate drops everything beyond the first n profiles, preserving order.
func (c *Candidates) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if len(c.Items) > n {
		c.Items = c.Items[:n]
	}
}

// DumpToTmpFile writes the candidate list to a temporary JSON file for audit
// and returns the file name.
func (c *Candidates) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "candidates_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return "", err
	}
	return file.Name(), nil
}
