package dto

import (
	"time"

	"github.com/studynotes/studynotes/internal/domain"
)

// CreateNoteRequest is the request body for creating a note.
// Content and tags default to empty server-side when omitted. The
// subject reference is not checked against existing subjects.
type CreateNoteRequest struct {
	Title     string   `json:"title" validate:"required,notempty,max=200"`
	Content   string   `json:"content"`
	SubjectID int      `json:"subjectId" validate:"required,gt=0"`
	Tags      []string `json:"tags" validate:"omitempty,dive,notempty,max=50"`
}

// ToDomain converts the request to the domain creation type.
func (r *CreateNoteRequest) ToDomain() domain.NewNote {
	return domain.NewNote{
		Title:     r.Title,
		Content:   r.Content,
		SubjectID: r.SubjectID,
		Tags:      r.Tags,
	}
}

// UpdateNoteRequest is the request body for a partial note update.
// Only the fields present in the JSON body are applied; an update with
// no fields still refreshes the note's updatedAt timestamp.
type UpdateNoteRequest struct {
	Title     *string   `json:"title" validate:"omitempty,notempty,max=200"`
	Content   *string   `json:"content"`
	SubjectID *int      `json:"subjectId" validate:"omitempty,gt=0"`
	Tags      *[]string `json:"tags" validate:"omitempty,dive,notempty,max=50"`
}

// ToDomain converts the request to the domain patch type.
func (r *UpdateNoteRequest) ToDomain() domain.NotePatch {
	return domain.NotePatch{
		Title:     r.Title,
		Content:   r.Content,
		SubjectID: r.SubjectID,
		Tags:      r.Tags,
	}
}

// ListNotesQuery captures the note listing filters. Search takes
// precedence over the subject filter when both are supplied.
type ListNotesQuery struct {
	SubjectID int    `form:"subjectId" validate:"omitempty,gt=0"`
	Search    string `form:"search"`
}

// NoteResponse is the HTTP representation of a note.
type NoteResponse struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	SubjectID int       `json:"subjectId"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToNoteResponse converts a domain note to its HTTP representation.
func ToNoteResponse(n *domain.Note) *NoteResponse {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}

	return &NoteResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		SubjectID: n.SubjectID,
		Tags:      tags,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// ToNoteResponses converts a slice of domain notes, preserving order.
func ToNoteResponses(notes []domain.Note) []NoteResponse {
	responses := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		responses = append(responses, *ToNoteResponse(&n))
	}

	return responses
}
