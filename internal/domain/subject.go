// Package domain contains core business entities and rules.
package domain

import (
	"strings"
	"time"
)

// Default presentation values applied by storage when a subject is created
// without an explicit icon or color.
const (
	DefaultSubjectIcon  = "fas fa-book"
	DefaultSubjectColor = "gray"
)

// Subject is a user-defined topical category grouping notes.
// IDs are assigned by storage on creation and are immutable.
type Subject struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewSubject carries the caller-supplied fields for subject creation.
// ID and CreatedAt are never accepted from callers; storage assigns them.
type NewSubject struct {
	Name  string
	Icon  string
	Color string
}

// Validate checks the required fields for subject creation.
func (s NewSubject) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return NewValidationError("name", "must not be empty")
	}
	return nil
}

// SubjectPatch is a partial update: nil fields keep their prior values.
type SubjectPatch struct {
	Name  *string
	Icon  *string
	Color *string
}

// Validate rejects patches that would violate subject invariants.
func (p SubjectPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return NewValidationError("name", "must not be empty")
	}
	return nil
}

// Apply merges the patch into the subject.
func (p SubjectPatch) Apply(s *Subject) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Icon != nil {
		s.Icon = *p.Icon
	}
	if p.Color != nil {
		s.Color = *p.Color
	}
}
