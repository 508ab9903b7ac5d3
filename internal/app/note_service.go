package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/studynotes/studynotes/internal/domain"
	"github.com/studynotes/studynotes/internal/platform/logging"
	"github.com/studynotes/studynotes/internal/ports"
)

// NoteListOptions narrows a note listing. Query takes precedence over
// SubjectID when both are set, matching how the listing endpoint
// interprets its parameters.
type NoteListOptions struct {
	// Query, when non-empty, switches the listing to full-text search
	// across title, content, and tags.
	Query string

	// SubjectID, when non-zero, restricts the listing to one subject.
	SubjectID int
}

// NoteService orchestrates note-related use cases.
type NoteService struct {
	storage ports.Storage
	logger  *slog.Logger
}

// NoteServiceConfig contains configuration for the note service.
type NoteServiceConfig struct {
	Storage ports.Storage
	Logger  *slog.Logger
}

// NewNoteService creates a new note service with the provided dependencies.
func NewNoteService(cfg NoteServiceConfig) *NoteService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &NoteService{
		storage: cfg.Storage,
		logger:  logger.With(slog.String("component", "app.NoteService")),
	}
}

// ListNotes returns notes ordered by most recently updated, optionally
// narrowed by search query or subject.
func (s *NoteService) ListNotes(ctx context.Context, opts NoteListOptions) ([]domain.Note, error) {
	logger := s.requestLogger(ctx)

	switch {
	case strings.TrimSpace(opts.Query) != "":
		notes, err := s.storage.SearchNotes(ctx, opts.Query)
		if err != nil {
			return nil, fmt.Errorf("searching notes: %w", err)
		}

		logger.DebugContext(ctx, "searched notes",
			slog.String("query", opts.Query),
			slog.Int("count", len(notes)),
		)

		return notes, nil

	case opts.SubjectID != 0:
		notes, err := s.storage.ListNotesBySubject(ctx, opts.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("listing notes for subject %d: %w", opts.SubjectID, err)
		}

		return notes, nil

	default:
		notes, err := s.storage.ListNotes(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing notes: %w", err)
		}

		return notes, nil
	}
}

// GetNote retrieves a single note by id.
func (s *NoteService) GetNote(ctx context.Context, id int) (*domain.Note, error) {
	note, err := s.storage.GetNote(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting note: %w", err)
	}

	return note, nil
}

// CreateNote validates and stores a new note.
func (s *NoteService) CreateNote(ctx context.Context, nn domain.NewNote) (*domain.Note, error) {
	logger := s.requestLogger(ctx)

	note, err := s.storage.CreateNote(ctx, nn)
	if err != nil {
		return nil, fmt.Errorf("creating note: %w", err)
	}

	logger.InfoContext(ctx, "created note",
		slog.Int("note_id", note.ID),
		slog.Int("subject_id", note.SubjectID),
	)

	return note, nil
}

// UpdateNote applies a partial update to an existing note.
func (s *NoteService) UpdateNote(ctx context.Context, id int, patch domain.NotePatch) (*domain.Note, error) {
	logger := s.requestLogger(ctx)

	note, err := s.storage.UpdateNote(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("updating note: %w", err)
	}

	logger.InfoContext(ctx, "updated note", slog.Int("note_id", note.ID))

	return note, nil
}

// DeleteNote removes a note. It reports domain.ErrNotFound when the
// note does not exist.
func (s *NoteService) DeleteNote(ctx context.Context, id int) error {
	logger := s.requestLogger(ctx)

	deleted, err := s.storage.DeleteNote(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	if !deleted {
		return domain.NewNotFoundError("note", id)
	}

	logger.InfoContext(ctx, "deleted note", slog.Int("note_id", id))

	return nil
}

func (s *NoteService) requestLogger(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}

	return s.logger
}
