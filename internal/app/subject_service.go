// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
//
// Application Layer Responsibilities:
//   - Orchestrate use cases (business workflows)
//   - Coordinate between domain and infrastructure
//   - Handle cross-cutting concerns (logging)
//   - Enforce business rules that span multiple entities
//
// What does NOT belong here:
//   - HTTP specifics (that's adapters)
//   - Storage queries (that's the storage backends)
//   - Core domain logic (that's the domain layer)
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studynotes/studynotes/internal/domain"
	"github.com/studynotes/studynotes/internal/platform/logging"
	"github.com/studynotes/studynotes/internal/ports"
)

// noteCountConcurrency bounds the fan-out when enriching subject
// listings with note counts.
const noteCountConcurrency = 4

// SubjectWithCount pairs a subject with the number of notes that
// reference it. Subject listings carry the count so clients can render
// per-subject totals without a second round trip.
type SubjectWithCount struct {
	domain.Subject
	NoteCount int
}

// SubjectService orchestrates subject-related use cases.
// It depends on the storage port, not a concrete backend.
type SubjectService struct {
	storage ports.Storage
	logger  *slog.Logger
}

// SubjectServiceConfig contains configuration for the subject service.
type SubjectServiceConfig struct {
	Storage ports.Storage
	Logger  *slog.Logger
}

// NewSubjectService creates a new subject service with the provided dependencies.
func NewSubjectService(cfg SubjectServiceConfig) *SubjectService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SubjectService{
		storage: cfg.Storage,
		logger:  logger.With(slog.String("component", "app.SubjectService")),
	}
}

// ListSubjects returns all subjects ordered by name, each enriched with
// its note count.
func (s *SubjectService) ListSubjects(ctx context.Context) ([]SubjectWithCount, error) {
	logger := s.requestLogger(ctx)

	subjects, err := s.storage.ListSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing subjects: %w", err)
	}

	// Note counts are independent lookups, so fan them out with bounded
	// concurrency instead of counting one subject at a time.
	countFns := make([]func(context.Context) (SubjectWithCount, error), len(subjects))
	for i, subject := range subjects {
		countFns[i] = func(ctx context.Context) (SubjectWithCount, error) {
			notes, err := s.storage.ListNotesBySubject(ctx, subject.ID)
			if err != nil {
				return SubjectWithCount{}, fmt.Errorf("counting notes for subject %d: %w", subject.ID, err)
			}

			return SubjectWithCount{Subject: subject, NoteCount: len(notes)}, nil
		}
	}

	enriched, err := ParallelLimit(ctx, noteCountConcurrency, countFns...)
	if err != nil {
		return nil, err
	}

	logger.DebugContext(ctx, "listed subjects", slog.Int("count", len(enriched)))

	return enriched, nil
}

// GetSubject retrieves a single subject by id.
func (s *SubjectService) GetSubject(ctx context.Context, id int) (*domain.Subject, error) {
	subject, err := s.storage.GetSubject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting subject: %w", err)
	}

	return subject, nil
}

// CreateSubject validates and stores a new subject.
func (s *SubjectService) CreateSubject(ctx context.Context, ns domain.NewSubject) (*domain.Subject, error) {
	logger := s.requestLogger(ctx)

	subject, err := s.storage.CreateSubject(ctx, ns)
	if err != nil {
		return nil, fmt.Errorf("creating subject: %w", err)
	}

	logger.InfoContext(ctx, "created subject",
		slog.Int("subject_id", subject.ID),
		slog.String("name", subject.Name),
	)

	return subject, nil
}

// UpdateSubject applies a partial update to an existing subject.
func (s *SubjectService) UpdateSubject(ctx context.Context, id int, patch domain.SubjectPatch) (*domain.Subject, error) {
	logger := s.requestLogger(ctx)

	subject, err := s.storage.UpdateSubject(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("updating subject: %w", err)
	}

	logger.InfoContext(ctx, "updated subject", slog.Int("subject_id", subject.ID))

	return subject, nil
}

// DeleteSubject removes a subject and cascades to its notes. It reports
// domain.ErrNotFound when the subject does not exist.
func (s *SubjectService) DeleteSubject(ctx context.Context, id int) error {
	logger := s.requestLogger(ctx)

	deleted, err := s.storage.DeleteSubject(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting subject: %w", err)
	}
	if !deleted {
		return domain.NewNotFoundError("subject", id)
	}

	logger.InfoContext(ctx, "deleted subject", slog.Int("subject_id", id))

	return nil
}

// requestLogger prefers the request-scoped logger from the context so
// log lines carry the request id; the service logger is the fallback.
func (s *SubjectService) requestLogger(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}

	return s.logger
}
