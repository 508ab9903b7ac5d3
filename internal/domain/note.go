package domain

import (
	"strings"
	"time"
)

// Note is a user-authored text record belonging to exactly one subject.
// SubjectID is a weak reference: storage does not verify the subject exists.
type Note struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	SubjectID int       `json:"subjectId"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewNote carries the caller-supplied fields for note creation.
// Content defaults to the empty string and Tags to an empty slice;
// storage applies both defaults.
type NewNote struct {
	Title     string
	Content   string
	SubjectID int
	Tags      []string
}

// Validate checks the required fields for note creation.
func (n NewNote) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return NewValidationError("title", "must not be empty")
	}
	if n.SubjectID <= 0 {
		return NewValidationError("subjectId", "must reference a subject")
	}
	return nil
}

// NotePatch is a partial update: nil fields keep their prior values.
// UpdatedAt is always refreshed by storage, even for an empty patch.
type NotePatch struct {
	Title     *string
	Content   *string
	SubjectID *int
	Tags      *[]string
}

// Validate rejects patches that would violate note invariants.
func (p NotePatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return NewValidationError("title", "must not be empty")
	}
	if p.SubjectID != nil && *p.SubjectID <= 0 {
		return NewValidationError("subjectId", "must reference a subject")
	}
	return nil
}

// Apply merges the patch into the note. Timestamps are storage's concern.
func (p NotePatch) Apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.SubjectID != nil {
		n.SubjectID = *p.SubjectID
	}
	if p.Tags != nil {
		n.Tags = *p.Tags
	}
}

// MatchesQuery reports whether the note's title, content, or any tag
// contains the already-lowercased query as a substring.
func (n Note) MatchesQuery(lowered string) bool {
	if strings.Contains(strings.ToLower(n.Title), lowered) {
		return true
	}
	if strings.Contains(strings.ToLower(n.Content), lowered) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), lowered) {
			return true
		}
	}
	return false
}
