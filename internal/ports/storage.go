// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
package ports

import (
	"context"

	"github.com/studynotes/studynotes/internal/domain"
)

// Storage is the single contract both backends satisfy, so callers are
// backend-agnostic. The two implementations are the in-memory store
// (tests, local dev) and the SurrealDB-backed document store.
//
// Conventions:
//   - Context is the first parameter on every operation.
//   - "No such id" on reads and updates is domain.ErrNotFound; deletes
//     report it as (false, nil) so callers choose the response.
//   - Connectivity failures are domain.ErrUnavailable; no operation
//     retries internally.
//   - Entities are created, mutated, and destroyed only through these
//     operations. Storage assigns ids and timestamps; callers never do.
type Storage interface {
	// ListSubjects returns all subjects ordered by name, ascending.
	ListSubjects(ctx context.Context) ([]domain.Subject, error)

	// GetSubject retrieves a subject by id.
	// Returns domain.ErrNotFound if no such subject exists.
	GetSubject(ctx context.Context, id int) (*domain.Subject, error)

	// CreateSubject creates a subject, assigning its id and CreatedAt.
	// Omitted icon and color receive the documented defaults.
	// Returns domain.ErrValidation when the name is empty.
	CreateSubject(ctx context.Context, s domain.NewSubject) (*domain.Subject, error)

	// UpdateSubject applies a partial patch. It never creates.
	// Returns domain.ErrNotFound if no such subject exists.
	UpdateSubject(ctx context.Context, id int, patch domain.SubjectPatch) (*domain.Subject, error)

	// DeleteSubject removes a subject and cascades to every note
	// referencing it. Returns false when no such subject exists.
	DeleteSubject(ctx context.Context, id int) (bool, error)

	// ListNotes returns all notes ordered by UpdatedAt, descending.
	ListNotes(ctx context.Context) ([]domain.Note, error)

	// ListNotesBySubject returns the subject's notes, UpdatedAt descending.
	ListNotesBySubject(ctx context.Context, subjectID int) ([]domain.Note, error)

	// GetNote retrieves a note by id.
	// Returns domain.ErrNotFound if no such note exists.
	GetNote(ctx context.Context, id int) (*domain.Note, error)

	// CreateNote creates a note with CreatedAt == UpdatedAt.
	// Returns domain.ErrValidation when title or subjectId is missing.
	CreateNote(ctx context.Context, n domain.NewNote) (*domain.Note, error)

	// UpdateNote applies a partial patch and always refreshes UpdatedAt,
	// even when the patch changes no visible field.
	// Returns domain.ErrNotFound if no such note exists.
	UpdateNote(ctx context.Context, id int, patch domain.NotePatch) (*domain.Note, error)

	// DeleteNote removes a note. Returns false when no such note exists;
	// deleting an already-deleted id is not an error.
	DeleteNote(ctx context.Context, id int) (bool, error)

	// SearchNotes matches the query case-insensitively against title,
	// content, and tags; results are ordered UpdatedAt descending.
	// An empty or whitespace-only query returns no notes.
	SearchNotes(ctx context.Context, query string) ([]domain.Note, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend's resources. Operations after Close
	// fail with domain.ErrUnavailable.
	Close(ctx context.Context) error
}
