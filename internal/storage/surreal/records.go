package surreal

import (
	"strconv"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/studynotes/studynotes/internal/domain"
)

// Record types mirror the stored documents. The SurrealDB record id
// (`subjects:⟨n⟩`, `notes:⟨n⟩`) carries the domain integer id as its id
// part; conversion back to domain types strips the database identity so
// callers only ever see the domain schema.

type subjectRecord struct {
	ID        *models.RecordID      `json:"id,omitempty"`
	Name      string                `json:"name"`
	Icon      string                `json:"icon"`
	Color     string                `json:"color"`
	CreatedAt models.CustomDateTime `json:"createdAt"`
}

type noteRecord struct {
	ID        *models.RecordID      `json:"id,omitempty"`
	Title     string                `json:"title"`
	Content   string                `json:"content"`
	SubjectID int                   `json:"subjectId"`
	Tags      []string              `json:"tags"`
	CreatedAt models.CustomDateTime `json:"createdAt"`
	UpdatedAt models.CustomDateTime `json:"updatedAt"`
}

// counterRecord backs the id sequence emulation: one record per entity
// type (`counters:subjects`, `counters:notes`) holding the last issued id.
type counterRecord struct {
	ID       *models.RecordID `json:"id,omitempty"`
	Sequence int              `json:"sequence"`
}

func (r subjectRecord) toDomain() domain.Subject {
	return domain.Subject{
		ID:        recordIDInt(r.ID),
		Name:      r.Name,
		Icon:      r.Icon,
		Color:     r.Color,
		CreatedAt: r.CreatedAt.Time,
	}
}

func (r noteRecord) toDomain() domain.Note {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}

	return domain.Note{
		ID:        recordIDInt(r.ID),
		Title:     r.Title,
		Content:   r.Content,
		SubjectID: r.SubjectID,
		Tags:      tags,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

func subjectsToDomain(records []subjectRecord) []domain.Subject {
	subjects := make([]domain.Subject, 0, len(records))
	for _, r := range records {
		subjects = append(subjects, r.toDomain())
	}

	return subjects
}

func notesToDomain(records []noteRecord) []domain.Note {
	notes := make([]domain.Note, 0, len(records))
	for _, r := range records {
		notes = append(notes, r.toDomain())
	}

	return notes
}

// recordIDInt extracts the integer id part of a record id. CBOR decoding
// may hand back any integer width, so every one is normalized here.
func recordIDInt(id *models.RecordID) int {
	if id == nil {
		return 0
	}

	switch v := id.ID.(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func datetime(t time.Time) models.CustomDateTime {
	return models.CustomDateTime{Time: t}
}
