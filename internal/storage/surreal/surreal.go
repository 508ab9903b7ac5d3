// Package surreal provides the SurrealDB-backed storage backend.
//
// SurrealDB has no native integer auto-increment, so ids come from a
// counters table whose records are bumped with a single atomic UPSERT
// (sequence emulation). The connection is established once in Open and
// reused for every operation; there is no automatic reconnect — an
// unopened or closed store fails fast with domain.ErrUnavailable.
package surreal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/studynotes/studynotes/internal/domain"
)

const (
	tableSubjects = "subjects"
	tableNotes    = "notes"
	tableCounters = "counters"
)

// Config contains the connection settings for the SurrealDB backend.
type Config struct {
	// URL is the SurrealDB endpoint, e.g. ws://localhost:8000/rpc.
	URL string

	// Namespace and Database select the target namespace/database pair.
	Namespace string
	Database  string

	// Username and Password are optional root credentials. Empty
	// username skips authentication (local dev servers).
	Username string
	Password string

	// Seed controls whether the five default subjects are created when
	// the subjects table is empty.
	Seed bool

	Logger *slog.Logger
}

// Store implements ports.Storage against SurrealDB.
type Store struct {
	db     *surrealdb.DB
	logger *slog.Logger
}

// Open connects to SurrealDB, provisions indexes, and optionally seeds
// the default subjects. The returned store owns the connection; callers
// must Close it on shutdown.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "storage.surreal"))

	db, err := surrealdb.FromEndpointURLString(ctx, cfg.URL)
	if err != nil {
		return nil, domain.NewUnavailableError("surrealdb", err.Error())
	}

	if cfg.Username != "" {
		_, err = db.SignIn(ctx, surrealdb.Auth{
			Username: cfg.Username,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, domain.NewUnavailableError("surrealdb", fmt.Sprintf("sign in: %s", err))
		}
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		return nil, domain.NewUnavailableError("surrealdb", fmt.Sprintf("selecting %s/%s: %s", cfg.Namespace, cfg.Database, err))
	}

	s := &Store{db: db, logger: logger}

	if err := s.defineIndexes(ctx); err != nil {
		return nil, fmt.Errorf("defining indexes: %w", err)
	}

	if cfg.Seed {
		if err := s.seedDefaultSubjects(ctx); err != nil {
			return nil, fmt.Errorf("seeding subjects: %w", err)
		}
	}

	logger.Info("connected to SurrealDB",
		slog.String("namespace", cfg.Namespace),
		slog.String("database", cfg.Database),
	)

	return s, nil
}

// defineIndexes provisions the non-unique indexes on subject name and
// note subjectId, plus a full-text index over note title and content.
// The full-text index is provisioned for the database but search itself
// goes through string matching, mirroring the regex search of the
// original storage layer.
func (s *Store) defineIndexes(ctx context.Context) error {
	const stmts = `
		DEFINE INDEX IF NOT EXISTS subjects_name_idx ON TABLE subjects FIELDS name;
		DEFINE INDEX IF NOT EXISTS notes_subject_idx ON TABLE notes FIELDS subjectId;
		DEFINE ANALYZER IF NOT EXISTS note_text_analyzer TOKENIZERS class FILTERS lowercase;
		DEFINE INDEX IF NOT EXISTS notes_text_idx ON TABLE notes FIELDS title, content SEARCH ANALYZER note_text_analyzer BM25;
	`

	_, err := surrealdb.Query[any](ctx, s.db, stmts, nil)

	return err
}

// seedDefaultSubjects creates the five default subjects through the
// normal create path when the subjects table is empty, so they receive
// real sequential ids and timestamps.
func (s *Store) seedDefaultSubjects(ctx context.Context) error {
	res, err := surrealdb.Query[[]counterRecord](ctx, s.db,
		`SELECT count() AS sequence FROM subjects GROUP ALL`, nil)
	if err != nil {
		return err
	}

	if len(*res) > 0 && len((*res)[0].Result) > 0 && (*res)[0].Result[0].Sequence > 0 {
		return nil
	}

	seeds := []domain.NewSubject{
		{Name: "Mathematics", Icon: "fas fa-calculator", Color: "blue"},
		{Name: "Physics", Icon: "fas fa-atom", Color: "green"},
		{Name: "Chemistry", Icon: "fas fa-flask", Color: "purple"},
		{Name: "History", Icon: "fas fa-landmark", Color: "orange"},
		{Name: "English Literature", Icon: "fas fa-book-open", Color: "red"},
	}

	for _, seed := range seeds {
		if _, err := s.CreateSubject(ctx, seed); err != nil {
			return err
		}
	}

	s.logger.Info("seeded default subjects", slog.Int("count", len(seeds)))

	return nil
}

// Name identifies the backend in health check responses.
func (s *Store) Name() string { return "surrealdb" }

// Check implements ports.HealthChecker.
func (s *Store) Check(ctx context.Context) error { return s.Ping(ctx) }

// Ping verifies the connection with a trivial round trip.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	if _, err := surrealdb.Query[any](ctx, s.db, `RETURN 1`, nil); err != nil {
		return domain.NewUnavailableError("surrealdb", err.Error())
	}

	return nil
}

// Close terminates the connection. Subsequent operations fail fast.
func (s *Store) Close(ctx context.Context) error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close(ctx)
	s.db = nil

	if err != nil {
		return fmt.Errorf("closing surrealdb connection: %w", err)
	}

	return nil
}

// ensureOpen asserts the connection was established and not closed.
// This is the deliberate fail-fast policy: no reconnect, no retry.
func (s *Store) ensureOpen() error {
	if s.db == nil {
		return domain.NewUnavailableError("surrealdb", "connection not established")
	}

	return nil
}

// nextSequence atomically increments the counter record for the given
// entity type and returns the post-increment value. The UPSERT runs as
// a single statement server-side, so concurrent creators cannot observe
// the same id. A missing result falls back to 1; that keeps creation
// alive when the counter read misbehaves but is a degraded mode, not a
// uniqueness guarantee.
func (s *Store) nextSequence(ctx context.Context, name string) (int, error) {
	res, err := surrealdb.Query[[]counterRecord](ctx, s.db,
		`UPSERT type::thing('counters', $name) SET sequence += 1 RETURN AFTER`,
		map[string]any{"name": name},
	)
	if err != nil {
		return 0, fmt.Errorf("incrementing %s counter: %w", name, err)
	}

	if len(*res) == 0 || len((*res)[0].Result) == 0 || (*res)[0].Result[0].Sequence == 0 {
		s.logger.Warn("counter increment returned no usable value, defaulting to 1",
			slog.String("counter", name),
		)
		return 1, nil
	}

	return (*res)[0].Result[0].Sequence, nil
}

// ListSubjects returns all subjects ordered by name, ascending.
func (s *Store) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	res, err := surrealdb.Query[[]subjectRecord](ctx, s.db,
		`SELECT * FROM subjects ORDER BY name ASC`, nil)
	if err != nil {
		return nil, fmt.Errorf("listing subjects: %w", err)
	}

	return subjectsToDomain(lastResult(res)), nil
}

// GetSubject retrieves a subject by its domain id.
func (s *Store) GetSubject(ctx context.Context, id int) (*domain.Subject, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	res, err := surrealdb.Query[[]subjectRecord](ctx, s.db,
		`SELECT * FROM type::thing('subjects', $id)`,
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, fmt.Errorf("getting subject %d: %w", id, err)
	}

	records := lastResult(res)
	if len(records) == 0 {
		return nil, domain.NewNotFoundError("subject", id)
	}

	subject := records[0].toDomain()

	return &subject, nil
}

// CreateSubject assigns the next id from the subjects counter and
// stores the record. Icon and color defaults are applied here.
func (s *Store) CreateSubject(ctx context.Context, ns domain.NewSubject) (*domain.Subject, error) {
	if err := ns.Validate(); err != nil {
		return nil, err
	}

	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	id, err := s.nextSequence(ctx, tableSubjects)
	if err != nil {
		return nil, err
	}

	record := subjectRecord{
		Name:      ns.Name,
		Icon:      ns.Icon,
		Color:     ns.Color,
		CreatedAt: datetime(time.Now().UTC()),
	}
	if record.Icon == "" {
		record.Icon = domain.DefaultSubjectIcon
	}
	if record.Color == "" {
		record.Color = domain.DefaultSubjectColor
	}

	created, err := surrealdb.Create[subjectRecord](ctx, s.db,
		models.NewRecordID(tableSubjects, id), record)
	if err != nil {
		return nil, fmt.Errorf("creating subject: %w", err)
	}

	subject := created.toDomain()

	return &subject, nil
}

// UpdateSubject merges the patch server-side. UPDATE on a record id
// never creates, so an absent id yields an empty result set.
func (s *Store) UpdateSubject(ctx context.Context, id int, patch domain.SubjectPatch) (*domain.Subject, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	merge := map[string]any{}
	if patch.Name != nil {
		merge["name"] = *patch.Name
	}
	if patch.Icon != nil {
		merge["icon"] = *patch.Icon
	}
	if patch.Color != nil {
		merge["color"] = *patch.Color
	}

	res, err := surrealdb.Query[[]subjectRecord](ctx, s.db,
		`UPDATE type::thing('subjects', $id) MERGE $patch RETURN AFTER`,
		map[string]any{"id": id, "patch": merge},
	)
	if err != nil {
		return nil, fmt.Errorf("updating subject %d: %w", id, err)
	}

	records := lastResult(res)
	if len(records) == 0 {
		return nil, domain.NewNotFoundError("subject", id)
	}

	subject := records[0].toDomain()

	return &subject, nil
}

// DeleteSubject removes the subject and all notes referencing it.
// SurrealDB supports multi-statement transactions, so both steps run in
// one, closing the partial-failure window a two-step cascade would have.
func (s *Store) DeleteSubject(ctx context.Context, id int) (bool, error) {
	if err := s.ensureOpen(); err != nil {
		return false, err
	}

	res, err := surrealdb.Query[[]subjectRecord](ctx, s.db,
		`BEGIN TRANSACTION;
		DELETE notes WHERE subjectId = $id;
		DELETE type::thing('subjects', $id) RETURN BEFORE;
		COMMIT TRANSACTION`,
		map[string]any{"id": id},
	)
	if err != nil {
		return false, fmt.Errorf("deleting subject %d: %w", id, err)
	}

	return len(lastResult(res)) > 0, nil
}

// ListNotes returns all notes ordered by UpdatedAt, descending.
func (s *Store) ListNotes(ctx context.Context) ([]domain.Note, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	res, err := surrealdb.Query[[]noteRecord](ctx, s.db,
		`SELECT * FROM notes ORDER BY updatedAt DESC`, nil)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}

	return notesToDomain(lastResult(res)), nil
}

// ListNotesBySubject returns the subject's notes, UpdatedAt descending.
func (s *Store) ListNotesBySubject(ctx context.Context, subjectID int) ([]domain.Note, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	res, err := surrealdb.Query[[]noteRecord](ctx, s.db,
		`SELECT * FROM notes WHERE subjectId = $subjectId ORDER BY updatedAt DESC`,
		map[string]any{"subjectId": subjectID},
	)
	if err != nil {
		return nil, fmt.Errorf("listing notes for subject %d: %w", subjectID, err)
	}

	return notesToDomain(lastResult(res)), nil
}

// GetNote retrieves a note by its domain id.
func (s *Store) GetNote(ctx context.Context, id int) (*domain.Note, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	res, err := surrealdb.Query[[]noteRecord](ctx, s.db,
		`SELECT * FROM type::thing('notes', $id)`,
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, fmt.Errorf("getting note %d: %w", id, err)
	}

	records := lastResult(res)
	if len(records) == 0 {
		return nil, domain.NewNotFoundError("note", id)
	}

	note := records[0].toDomain()

	return &note, nil
}

// CreateNote assigns the next id from the notes counter and stores the
// record with CreatedAt == UpdatedAt. Content and tags defaults are
// applied here. The subject reference is deliberately not checked.
func (s *Store) CreateNote(ctx context.Context, nn domain.NewNote) (*domain.Note, error) {
	if err := nn.Validate(); err != nil {
		return nil, err
	}

	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	id, err := s.nextSequence(ctx, tableNotes)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := noteRecord{
		Title:     nn.Title,
		Content:   nn.Content,
		SubjectID: nn.SubjectID,
		Tags:      nn.Tags,
		CreatedAt: datetime(now),
		UpdatedAt: datetime(now),
	}
	if record.Tags == nil {
		record.Tags = []string{}
	}

	created, err := surrealdb.Create[noteRecord](ctx, s.db,
		models.NewRecordID(tableNotes, id), record)
	if err != nil {
		return nil, fmt.Errorf("creating note: %w", err)
	}

	note := created.toDomain()

	return &note, nil
}

// UpdateNote merges the patch server-side and always refreshes
// updatedAt, even when the patch changes no visible field.
func (s *Store) UpdateNote(ctx context.Context, id int, patch domain.NotePatch) (*domain.Note, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	merge := map[string]any{
		"updatedAt": datetime(time.Now().UTC()),
	}
	if patch.Title != nil {
		merge["title"] = *patch.Title
	}
	if patch.Content != nil {
		merge["content"] = *patch.Content
	}
	if patch.SubjectID != nil {
		merge["subjectId"] = *patch.SubjectID
	}
	if patch.Tags != nil {
		merge["tags"] = *patch.Tags
	}

	res, err := surrealdb.Query[[]noteRecord](ctx, s.db,
		`UPDATE type::thing('notes', $id) MERGE $patch RETURN AFTER`,
		map[string]any{"id": id, "patch": merge},
	)
	if err != nil {
		return nil, fmt.Errorf("updating note %d: %w", id, err)
	}

	records := lastResult(res)
	if len(records) == 0 {
		return nil, domain.NewNotFoundError("note", id)
	}

	note := records[0].toDomain()

	return &note, nil
}

// DeleteNote removes a note. Subjects are never affected.
func (s *Store) DeleteNote(ctx context.Context, id int) (bool, error) {
	if err := s.ensureOpen(); err != nil {
		return false, err
	}

	res, err := surrealdb.Query[[]noteRecord](ctx, s.db,
		`DELETE type::thing('notes', $id) RETURN BEFORE`,
		map[string]any{"id": id},
	)
	if err != nil {
		return false, fmt.Errorf("deleting note %d: %w", id, err)
	}

	return len(lastResult(res)) > 0, nil
}

// SearchNotes matches the query case-insensitively against title,
// content, and every tag, server-side. Empty and whitespace-only
// queries match nothing.
func (s *Store) SearchNotes(ctx context.Context, query string) ([]domain.Note, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	lowered := strings.ToLower(strings.TrimSpace(query))
	if lowered == "" {
		return []domain.Note{}, nil
	}

	res, err := surrealdb.Query[[]noteRecord](ctx, s.db,
		`SELECT * FROM notes
		WHERE string::contains(string::lowercase(title), $q)
		   OR string::contains(string::lowercase(content), $q)
		   OR array::any(array::map(tags, |$tag| string::contains(string::lowercase($tag), $q)))
		ORDER BY updatedAt DESC`,
		map[string]any{"q": lowered},
	)
	if err != nil {
		return nil, fmt.Errorf("searching notes: %w", err)
	}

	return notesToDomain(lastResult(res)), nil
}

// lastResult unwraps the final statement's result set from a query
// response. Multi-statement queries (the cascade transaction) report
// one result per statement; the last one is always the interesting one.
func lastResult[T any](res *[]surrealdb.QueryResult[[]T]) []T {
	if res == nil || len(*res) == 0 {
		return nil
	}

	return (*res)[len(*res)-1].Result
}
