package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/aliskhannn/hafiz-bot/internal/domain/entities"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	// ErrNotPersisted means the change is applied in memory but the durable write failed.
	ErrNotPersisted = errors.New("changes are kept in memory but were not saved")
	ErrLoadFailed   = errors.New("stored students could not be loaded")
)

// StudentService owns the in-memory student collection. Every mutation is
// validated first, applied in memory, then written through the repository.
// A failed write does not roll back the in-memory change.
type StudentService struct {
	mu         sync.Mutex
	students   []*entities.Student
	repository StudentRepository
	surahs     SurahTable
	validate   *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string

	// loadFailed blocks writes so an unreadable snapshot is not overwritten
	// by a partial collection. Cleared by a successful Load, ReplaceAll or ClearAll.
	loadFailed bool
}

// Option configures a StudentService.
type Option func(*StudentService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *StudentService) {
		s.now = now
	}
}

// WithIDGenerator overrides the id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *StudentService) {
		s.newID = fn
	}
}

func NewStudentService(repository StudentRepository, surahs SurahTable, logger *zap.Logger, opts ...Option) *StudentService {
	s := &StudentService{
		students:   []*entities.Student{},
		repository: repository,
		surahs:     surahs,
		validate:   newValidator(),
		logger:     logger,
		now:        time.Now,
		newID:      newTimeOrderedID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newTimeOrderedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Load replaces the in-memory collection with the stored one.
// On failure the collection is left empty, ErrLoadFailed is returned and later
// mutations stay in memory only until the collection is reloaded, replaced or cleared.
func (s *StudentService) Load(ctx context.Context) error {
	students, err := s.repository.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.logger.Error("failed to load students", zap.Error(err))
		s.students = []*entities.Student{}
		s.loadFailed = true
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	s.students = students
	s.loadFailed = false
	s.logger.Info("students loaded", zap.Int("count", len(students)))
	return nil
}

// List returns copies of all students in insertion order.
func (s *StudentService) List() []entities.Student {
	s.mu.Lock()
	defer s.mu.Unlock()

	return lo.Map(s.students, func(st *entities.Student, _ int) entities.Student {
		return st.Clone()
	})
}

// Get returns a copy of the student with the given id.
func (s *StudentService) Get(id string) (entities.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, _, ok := s.find(id)
	if !ok {
		return entities.Student{}, ErrStudentNotFound
	}
	return st.Clone(), nil
}

// At returns the student at a 1-based position in the list.
func (s *StudentService) At(index int) (entities.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 1 || index > len(s.students) {
		return entities.Student{}, fmt.Errorf("%w: no student number %d", ErrStudentNotFound, index)
	}
	return s.students[index-1].Clone(), nil
}

// FilterByLevel returns the students whose current level equals level.
func (s *StudentService) FilterByLevel(level entities.Level) []entities.Student {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := lo.Filter(s.students, func(st *entities.Student, _ int) bool {
		return st.Level == level
	})
	return lo.Map(matched, func(st *entities.Student, _ int) entities.Student {
		return st.Clone()
	})
}

// CountByLevel counts students per current level. Every known level is present.
func (s *StudentService) CountByLevel() map[entities.Level]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[entities.Level]int, len(entities.Levels()))
	for _, l := range entities.Levels() {
		counts[l] = lo.CountBy(s.students, func(st *entities.Student) bool {
			return st.Level == l
		})
	}
	return counts
}

// AddStudent creates a student.
func (s *StudentService) AddStudent(ctx context.Context, in AddStudentInput) (entities.Student, error) {
	in.normalize()
	if err := validateStruct(s.validate, in); err != nil {
		return entities.Student{}, err
	}

	level := in.Level
	if level == "" {
		level = entities.DefaultLevel
	}
	if err := checkLevel(level, "level"); err != nil {
		return entities.Student{}, err
	}

	revision, err := in.Revision.Build(s.surahs)
	if err != nil {
		return entities.Student{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := entities.NewStudent(s.newID(), in.Name, level, in.Notes, revision, s.now())
	s.students = append(s.students, st)

	s.logger.Info("student added", zap.String("student_id", st.ID))

	return st.Clone(), s.persist(ctx, "add student")
}

// AddDailyProgress appends a progress entry and optionally replaces the revision range
// in the same operation.
func (s *StudentService) AddDailyProgress(ctx context.Context, studentID string, in AddProgressInput) (entities.Student, error) {
	in.normalize()
	if err := validateStruct(s.validate, in); err != nil {
		return entities.Student{}, err
	}
	if err := checkLevel(in.Level, "level"); err != nil {
		return entities.Student{}, err
	}

	var position entities.Position
	switch {
	case in.SurahNumber == 0 && in.AyahNumber == 0:
	case in.SurahNumber == 0 || in.AyahNumber == 0:
		return entities.Student{}, &entities.ValidationError{
			Field:   "position",
			Message: "surah and ayah must be given together",
		}
	default:
		if err := entities.ValidatePosition(s.surahs, in.SurahNumber, in.AyahNumber); err != nil {
			return entities.Student{}, err
		}
		position = entities.Position{Surah: in.SurahNumber, Ayah: in.AyahNumber}
	}

	var revision *entities.RevisionRange
	if in.Revision != nil {
		r, err := in.Revision.Build(s.surahs)
		if err != nil {
			return entities.Student{}, err
		}
		if r == nil {
			return entities.Student{}, &entities.ValidationError{
				Field:   "revision",
				Message: "replacement revision range is empty",
			}
		}
		revision = r
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, _, ok := s.find(studentID)
	if !ok {
		return entities.Student{}, ErrStudentNotFound
	}

	now := s.now()
	st.AddProgress(entities.DailyProgress{
		ID:        s.newID(),
		Date:      in.Date,
		Level:     in.Level,
		Position:  position,
		Notes:     in.Notes,
		CreatedAt: now,
	}, revision, now)

	s.logger.Info("progress added",
		zap.String("student_id", st.ID),
		zap.String("level", in.Level.Alias()),
		zap.Int("surah", position.Surah),
		zap.Int("ayah", position.Ayah),
	)

	return st.Clone(), s.persist(ctx, "add progress")
}

// EditStudent replaces name and notes and replaces or clears the revision range.
// Level and progress log are not touched.
func (s *StudentService) EditStudent(ctx context.Context, studentID string, in EditStudentInput) (entities.Student, error) {
	in.normalize()
	if err := validateStruct(s.validate, in); err != nil {
		return entities.Student{}, err
	}

	revision, err := in.Revision.Build(s.surahs)
	if err != nil {
		return entities.Student{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, _, ok := s.find(studentID)
	if !ok {
		return entities.Student{}, ErrStudentNotFound
	}

	st.Edit(in.Name, in.Notes, revision, s.now())

	s.logger.Info("student edited", zap.String("student_id", st.ID))

	return st.Clone(), s.persist(ctx, "edit student")
}

// SetRevision replaces or clears only the revision range. A blank draft clears it.
func (s *StudentService) SetRevision(ctx context.Context, studentID string, draft entities.RevisionDraft) (entities.Student, error) {
	revision, err := draft.Build(s.surahs)
	if err != nil {
		return entities.Student{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, _, ok := s.find(studentID)
	if !ok {
		return entities.Student{}, ErrStudentNotFound
	}

	st.SetRevision(revision, s.now())

	return st.Clone(), s.persist(ctx, "set revision")
}

// DeleteStudent removes a student with all owned data.
func (s *StudentService) DeleteStudent(ctx context.Context, studentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, idx, ok := s.find(studentID)
	if !ok {
		return ErrStudentNotFound
	}

	s.students = append(s.students[:idx], s.students[idx+1:]...)

	s.logger.Info("student deleted", zap.String("student_id", studentID))

	return s.persist(ctx, "delete student")
}

// ClearAll removes every student and the stored snapshot.
func (s *StudentService) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.students = []*entities.Student{}

	if err := s.repository.Clear(ctx); err != nil {
		s.logger.Error("failed to clear stored students", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}
	s.loadFailed = false

	s.logger.Info("all students cleared")
	return nil
}

// ReplaceAll swaps the collection for an imported one. Students without an id get one;
// a student without a name or with an invalid record rejects the whole import.
func (s *StudentService) ReplaceAll(ctx context.Context, students []entities.Student) error {
	next := make([]*entities.Student, 0, len(students))
	for i := range students {
		st := students[i].Clone()
		st.Name = strings.TrimSpace(st.Name)
		if st.Name == "" {
			return &entities.ValidationError{
				Field:   "name",
				Message: fmt.Sprintf("student %d has an empty name", i+1),
			}
		}
		if st.ID == "" {
			st.ID = s.newID()
		}
		if st.Level == "" {
			st.Level = entities.DefaultLevel
		}
		if err := st.Validate(s.surahs); err != nil {
			return &entities.ValidationError{
				Field:   "students",
				Message: fmt.Sprintf("student %d (%s): %s", i+1, st.Name, err.Error()),
			}
		}
		next = append(next, &st)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.students = next
	s.loadFailed = false

	s.logger.Info("students replaced", zap.Int("count", len(next)))

	return s.persist(ctx, "replace students")
}

// SeedDemo replaces the collection with demo students.
func (s *StudentService) SeedDemo(ctx context.Context) error {
	return s.ReplaceAll(ctx, DemoStudents())
}

func (s *StudentService) find(id string) (*entities.Student, int, bool) {
	for i, st := range s.students {
		if st.ID == id {
			return st, i, true
		}
	}
	return nil, -1, false
}

// persist must be called with s.mu held.
func (s *StudentService) persist(ctx context.Context, op string) error {
	if s.loadFailed {
		s.logger.Warn("skipping save after failed load", zap.String("op", op))
		return fmt.Errorf("%w: %w", ErrNotPersisted, ErrLoadFailed)
	}

	if err := s.repository.Save(ctx, s.students); err != nil {
		s.logger.Error("failed to persist students",
			zap.String("op", op),
			zap.Int("count", len(s.students)),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}
	return nil
}
