package dto

import (
	"time"

	"github.com/studynotes/studynotes/internal/app"
	"github.com/studynotes/studynotes/internal/domain"
)

// CreateSubjectRequest is the request body for creating a subject.
// Icon and color fall back to server-side defaults when omitted.
type CreateSubjectRequest struct {
	Name  string `json:"name" validate:"required,notempty,max=100"`
	Icon  string `json:"icon" validate:"omitempty,max=50"`
	Color string `json:"color" validate:"omitempty,max=30"`
}

// ToDomain converts the request to the domain creation type.
func (r *CreateSubjectRequest) ToDomain() domain.NewSubject {
	return domain.NewSubject{
		Name:  r.Name,
		Icon:  r.Icon,
		Color: r.Color,
	}
}

// UpdateSubjectRequest is the request body for a partial subject update.
// Only the fields present in the JSON body are applied.
type UpdateSubjectRequest struct {
	Name  *string `json:"name" validate:"omitempty,notempty,max=100"`
	Icon  *string `json:"icon" validate:"omitempty,max=50"`
	Color *string `json:"color" validate:"omitempty,max=30"`
}

// ToDomain converts the request to the domain patch type.
func (r *UpdateSubjectRequest) ToDomain() domain.SubjectPatch {
	return domain.SubjectPatch{
		Name:  r.Name,
		Icon:  r.Icon,
		Color: r.Color,
	}
}

// SubjectResponse is the HTTP representation of a subject.
type SubjectResponse struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubjectWithCountResponse is a subject listing entry carrying the
// number of notes that reference the subject.
type SubjectWithCountResponse struct {
	SubjectResponse
	NoteCount int `json:"noteCount"`
}

// ToSubjectResponse converts a domain subject to its HTTP representation.
func ToSubjectResponse(s *domain.Subject) *SubjectResponse {
	return &SubjectResponse{
		ID:        s.ID,
		Name:      s.Name,
		Icon:      s.Icon,
		Color:     s.Color,
		CreatedAt: s.CreatedAt,
	}
}

// ToSubjectWithCountResponses converts enriched subjects to listing entries.
func ToSubjectWithCountResponses(subjects []app.SubjectWithCount) []SubjectWithCountResponse {
	responses := make([]SubjectWithCountResponse, 0, len(subjects))
	for _, s := range subjects {
		responses = append(responses, SubjectWithCountResponse{
			SubjectResponse: *ToSubjectResponse(&s.Subject),
			NoteCount:       s.NoteCount,
		})
	}

	return responses
}
