// Package memory provides the in-memory storage backend.
// It keeps all state in process-local maps and is used by tests and
// local development. State is lost on restart and never shared across
// processes.
package memory

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/studynotes/studynotes/internal/domain"
)

// defaultSubjects are seeded through the normal create path on
// construction so they receive real sequential ids and timestamps.
var defaultSubjects = []domain.NewSubject{
	{Name: "Mathematics", Icon: "fas fa-calculator", Color: "blue"},
	{Name: "Physics", Icon: "fas fa-atom", Color: "green"},
	{Name: "Chemistry", Icon: "fas fa-flask", Color: "purple"},
	{Name: "History", Icon: "fas fa-landmark", Color: "orange"},
	{Name: "English Literature", Icon: "fas fa-book-open", Color: "red"},
}

// Store implements ports.Storage with process-local maps.
//
// Ids are monotonically increasing per entity type and never reused for
// the lifetime of the process, including after deletion. The mutex exists
// because HTTP handlers run on concurrent goroutines; individual
// operations remain non-reentrant single units of work.
type Store struct {
	mu            sync.RWMutex
	subjects      map[int]domain.Subject
	notes         map[int]domain.Note
	nextSubjectID int
	nextNoteID    int
	closed        bool
	logger        *slog.Logger
}

// New creates an in-memory store seeded with the five default subjects.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		subjects:      make(map[int]domain.Subject),
		notes:         make(map[int]domain.Note),
		nextSubjectID: 1,
		nextNoteID:    1,
		logger:        logger.With(slog.String("component", "storage.memory")),
	}

	for _, subject := range defaultSubjects {
		// Seeding uses fixed valid data; creation cannot fail here.
		_, _ = s.CreateSubject(context.Background(), subject)
	}

	return s
}

// Name identifies the backend in health check responses.
func (s *Store) Name() string { return "memory" }

// Check implements ports.HealthChecker.
func (s *Store) Check(ctx context.Context) error { return s.Ping(ctx) }

// Ping reports whether the store is usable.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.errIfClosed()
}

// Close marks the store unusable. Subsequent operations fail with
// domain.ErrUnavailable.
func (s *Store) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true

	return nil
}

// errIfClosed must be called with the mutex held.
func (s *Store) errIfClosed() error {
	if s.closed {
		return domain.NewUnavailableError("memory", "store closed")
	}
	return nil
}

// ListSubjects returns all subjects ordered by name, ascending.
func (s *Store) ListSubjects(_ context.Context) ([]domain.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.errIfClosed(); err != nil {
		return nil, err
	}

	subjects := make([]domain.Subject, 0, len(s.subjects))
	for _, subject := range s.subjects {
		subjects = append(subjects, subject)
	}

	sort.Slice(subjects, func(i, j int) bool {
		return strings.Compare(subjects[i].Name, subjects[j].Name) < 0
	})

	return subjects, nil
}

// GetSubject retrieves a subject by id.
func (s *Store) GetSubject(_ context.Context, id int) (*domain.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.errIfClosed(); err != nil {
		return nil, err
	}

	subject, ok := s.subjects[id]
	if !ok {
		return nil, domain.NewNotFoundError("subject", id)
	}

	return &subject, nil
}

// CreateSubject assigns the next sequential id and stores the subject.
// Defaults for icon and color are applied here, not by callers.
func (s *Store) CreateSubject(_ context.Context, ns domain.NewSubject) (*domain.Subject, error) {
	if err := ns.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.errIfClosed(); err != nil {
		return nil, err
	}

	id := s.nextSubjectID
	s.nextSubjectID++

	subject := domain.Subject{
		ID:        id,
		Name:      ns.Name,
		Icon:      ns.Icon,
		Color:     ns.Color,
		CreatedAt: time.Now().UTC(),
	}
	if subject.Icon == "" {
		subject.Icon = domain.DefaultSubjectIcon
	}
	if subject.Color == "" {
		subject.Color = domain.DefaultSubjectColor
	}

	s.subjects[id] = subject

	return &subject, nil
}

// UpdateSubject applies a partial patch. Absent ids are domain.ErrNotFound.
func (s *Store) UpdateSubject(_ context.Context, id int, patch domain.SubjectPatch) (*domain.Subject, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.errIfClosed(); err != nil {
		return nil, err
	}

	subject, ok := s.subjects[id]
	if !ok {
		return nil, domain.NewNotFoundError("subject", id)
	}

	patch.Apply(&subject)
	s.subjects[id] = subject

	return &subject, nil
}

// DeleteSubject removes the subject and cascades to its notes.
func (s *Store) DeleteSubject(_ context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.errIfClosed(); err != nil {
		return false, err
	}

	if _, ok := s.subjects[id]; !ok {
		return false, nil
	}

	removed := 0
	for noteID, note := range s.notes {
		if note.SubjectID == id {
			delete(s.notes, noteID)
			removed++
		}
	}

	delete(s.subjects, id)

	if removed > 0 {
		s.logger.Debug("cascade removed notes",
			slog.Int("subject_id", id),
			slog.Int("notes", removed),
		)
	}

	return true, nil
}

// ListNotes returns all notes ordered by UpdatedAt, descending.
func (s *Store) ListNotes(_ context.Context) ([]domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.errIfClosed(); err != nil {
		return nil, err
	}

	return s.collectNotes(func(domain.Note) bool { return true }), nil
}

// ListNotesBySubject returns the subject's notes, UpdatedAt descending.
func (s *Store) ListNotesBySubject(_ context.Context, subjectID int) ([]domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.errIfClosed(); err != nil {
		return nil, err
	}

	return s.collectNotes(func(n domain.Note) bool { return n.SubjectID == subjectID }), nil
}

// GetNote retrieves a note by id.
func (s *Store) GetNote(_ context.Context, id int) (*domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.errIfClosed(); err != nil {
		return nil, err
	}

	note, ok := s.notes[id]
	if !ok {
		return nil, domain.NewNotFoundError("note", id)
	}

	note.Tags = cloneTags(note.Tags)

	return &note, nil
}

// CreateNote assigns the next sequential id and stores the note with
// CreatedAt == UpdatedAt. Content and tags defaults are applied here.
func (s *Store) CreateNote(_ context.Context, nn domain.NewNote) (*domain.Note, error) {
	if err := nn.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.errIfClosed(); err != nil {
		return nil, err
	}

	id := s.nextNoteID
	s.nextNoteID++

	now := time.Now().UTC()
	note := domain.Note{
		ID:        id,
		Title:     nn.Title,
		Content:   nn.Content,
		SubjectID: nn.SubjectID,
		Tags:      cloneTags(nn.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}

	s.notes[id] = note
	note.Tags = cloneTags(note.Tags)

	return &note, nil
}

// UpdateNote applies a partial patch and always refreshes UpdatedAt,
// even for an empty patch.
func (s *Store) UpdateNote(_ context.Context, id int, patch domain.NotePatch) (*domain.Note, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.errIfClosed(); err != nil {
		return nil, err
	}

	note, ok := s.notes[id]
	if !ok {
		return nil, domain.NewNotFoundError("note", id)
	}

	patch.Apply(&note)
	note.Tags = cloneTags(note.Tags)
	if note.Tags == nil {
		note.Tags = []string{}
	}
	note.UpdatedAt = time.Now().UTC()

	s.notes[id] = note
	note.Tags = cloneTags(note.Tags)

	return &note, nil
}

// DeleteNote removes a note. Deleting an absent id returns false, not an error.
func (s *Store) DeleteNote(_ context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.errIfClosed(); err != nil {
		return false, err
	}

	if _, ok := s.notes[id]; !ok {
		return false, nil
	}

	delete(s.notes, id)

	return true, nil
}

// SearchNotes matches the query case-insensitively against title,
// content, and tags. Empty and whitespace-only queries match nothing.
func (s *Store) SearchNotes(_ context.Context, query string) ([]domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.errIfClosed(); err != nil {
		return nil, err
	}

	lowered := strings.ToLower(strings.TrimSpace(query))
	if lowered == "" {
		return []domain.Note{}, nil
	}

	return s.collectNotes(func(n domain.Note) bool { return n.MatchesQuery(lowered) }), nil
}

// collectNotes must be called with the mutex held. Results are ordered
// UpdatedAt descending, ties broken by id descending so equal timestamps
// still list the most recently created note first.
func (s *Store) collectNotes(keep func(domain.Note) bool) []domain.Note {
	notes := make([]domain.Note, 0, len(s.notes))
	for _, note := range s.notes {
		if keep(note) {
			note.Tags = cloneTags(note.Tags)
			notes = append(notes, note)
		}
	}

	sort.Slice(notes, func(i, j int) bool {
		if notes[i].UpdatedAt.Equal(notes[j].UpdatedAt) {
			return notes[i].ID > notes[j].ID
		}
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})

	return notes
}

// cloneTags copies a tag slice so callers never alias stored state.
func cloneTags(tags []string) []string {
	if tags == nil {
		return nil
	}

	out := make([]string, len(tags))
	copy(out, tags)

	return out
}
