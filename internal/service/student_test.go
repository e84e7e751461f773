package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/hafiz-bot/internal/domain/entities"
	"github.com/aliskhannn/hafiz-bot/internal/repository"
	"github.com/aliskhannn/hafiz-bot/internal/storage"
)

var surahs = repository.MustDefaultSurahRepository()

type brokenGateway struct {
	*storage.MemoryGateway
	setErr error
	getErr error
	rmErr  error
}

func (g *brokenGateway) Get(ctx context.Context, key string) ([]byte, error) {
	if g.getErr != nil {
		return nil, g.getErr
	}
	return g.MemoryGateway.Get(ctx, key)
}

func (g *brokenGateway) Set(ctx context.Context, key string, value []byte) error {
	if g.setErr != nil {
		return g.setErr
	}
	return g.MemoryGateway.Set(ctx, key, value)
}

func (g *brokenGateway) Remove(ctx context.Context, key string) error {
	if g.rmErr != nil {
		return g.rmErr
	}
	return g.MemoryGateway.Remove(ctx, key)
}

type fixture struct {
	gateway *brokenGateway
	service *StudentService
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		gateway: &brokenGateway{MemoryGateway: storage.NewMemoryGateway()},
		clock:   time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}
	f.service = f.newService()
	return f
}

func (f *fixture) newService() *StudentService {
	ids := 0
	return NewStudentService(
		repository.NewStudentRepository(f.gateway, ""),
		surahs,
		zap.NewNop(),
		WithClock(func() time.Time {
			f.clock = f.clock.Add(time.Minute)
			return f.clock
		}),
		WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		}),
	)
}

// reload builds a fresh service over the same storage.
func (f *fixture) reload(t *testing.T) *StudentService {
	t.Helper()
	s := f.newService()
	require.NoError(t, s.Load(context.Background()))
	return s
}

func (f *fixture) addStudent(t *testing.T, name string) entities.Student {
	t.Helper()
	st, err := f.service.AddStudent(context.Background(), AddStudentInput{Name: name})
	require.NoError(t, err)
	return st
}

func TestAddStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.service.AddStudent(ctx, AddStudentInput{
		Name:     "  أحمد محمد  ",
		Notes:    " مجتهد ",
		Revision: entities.RevisionDraft{SurahNumber: 1, FromAyah: 1, ToAyah: 7},
	})
	require.NoError(t, err)

	assert.Equal(t, "أحمد محمد", st.Name)
	assert.Equal(t, "مجتهد", st.Notes)
	assert.Equal(t, entities.DefaultLevel, st.Level)
	assert.NotEmpty(t, st.ID)
	assert.Empty(t, st.DailyProgress)
	assert.Nil(t, st.LastUpdated)
	require.NotNil(t, st.Revision)
	assert.Equal(t, entities.DefaultLevel, st.Revision.Level)

	reloaded := f.reload(t).List()
	require.Len(t, reloaded, 1)
	assert.Equal(t, st.ID, reloaded[0].ID)
}

func TestAddStudentValidation(t *testing.T) {
	tests := []struct {
		name  string
		input AddStudentInput
	}{
		{name: "empty name", input: AddStudentInput{Name: ""}},
		{name: "blank name", input: AddStudentInput{Name: "   "}},
		{name: "unknown level", input: AddStudentInput{Name: "a", Level: "x"}},
		{name: "partial revision", input: AddStudentInput{Name: "a", Revision: entities.RevisionDraft{SurahNumber: 1, FromAyah: 1}}},
		{name: "revision out of range", input: AddStudentInput{Name: "a", Revision: entities.RevisionDraft{SurahNumber: 1, FromAyah: 1, ToAyah: 9}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.service.AddStudent(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, entities.ErrValidation), "got %v", err)
			assert.Empty(t, f.service.List())
		})
	}
}

func TestAddDailyProgressWithPosition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.addStudent(t, "أحمد")

	got, err := f.service.AddDailyProgress(ctx, st.ID, AddProgressInput{
		Date:        "2024-01-15",
		Level:       entities.LevelGood,
		SurahNumber: 2,
		AyahNumber:  5,
	})
	require.NoError(t, err)

	assert.Equal(t, entities.LevelGood, got.Level)
	require.Len(t, got.DailyProgress, len(st.DailyProgress)+1)
	require.NotNil(t, got.LastUpdated)
	assert.NotEqual(t, st.LastUpdated, got.LastUpdated)
	assert.Equal(t, entities.Position{Surah: 2, Ayah: 5}, got.DailyProgress[0].Position)

	again, err := f.service.AddDailyProgress(ctx, st.ID, AddProgressInput{Date: "2024-01-16", Level: entities.LevelExcellent})
	require.NoError(t, err)
	assert.True(t, again.LastUpdated.After(*got.LastUpdated))
}

func TestAddDailyProgressLevelOnly(t *testing.T) {
	f := newFixture(t)
	st := f.addStudent(t, "أحمد")

	got, err := f.service.AddDailyProgress(context.Background(), st.ID, AddProgressInput{
		Date:  "2024-01-15",
		Level: entities.LevelNotRead,
	})
	require.NoError(t, err)

	require.Len(t, got.DailyProgress, 1)
	assert.Equal(t, entities.Position{}, got.DailyProgress[0].Position)
	assert.False(t, got.DailyProgress[0].HasPosition())
	assert.Equal(t, entities.LevelNotRead, got.Level)
}

func TestAddDailyProgressRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		input   AddProgressInput
		wantMsg string
	}{
		{name: "ayah past surah end", input: AddProgressInput{Date: "d", Level: entities.LevelGood, SurahNumber: 1, AyahNumber: 8}, wantMsg: "1..7"},
		{name: "surah out of range", input: AddProgressInput{Date: "d", Level: entities.LevelGood, SurahNumber: 115, AyahNumber: 1}, wantMsg: "1..114"},
		{name: "surah without ayah", input: AddProgressInput{Date: "d", Level: entities.LevelGood, SurahNumber: 2}, wantMsg: "together"},
		{name: "missing date", input: AddProgressInput{Level: entities.LevelGood}, wantMsg: "date"},
		{name: "missing level", input: AddProgressInput{Date: "d"}, wantMsg: "level"},
		{name: "unknown level", input: AddProgressInput{Date: "d", Level: "x"}, wantMsg: "level"},
		{
			name:    "partial replacement revision",
			input:   AddProgressInput{Date: "d", Level: entities.LevelGood, Revision: &entities.RevisionDraft{SurahNumber: 1, ToAyah: 3}},
			wantMsg: "revision",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			st := f.addStudent(t, "أحمد")

			_, err := f.service.AddDailyProgress(context.Background(), st.ID, tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, entities.ErrValidation), "got %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)

			after, err := f.service.Get(st.ID)
			require.NoError(t, err)
			assert.Equal(t, st, after)
		})
	}
}

func TestAddDailyProgressRevision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.service.AddStudent(ctx, AddStudentInput{
		Name:     "أحمد",
		Revision: entities.RevisionDraft{SurahNumber: 1, FromAyah: 1, ToAyah: 7, Level: entities.LevelGood},
	})
	require.NoError(t, err)

	kept, err := f.service.AddDailyProgress(ctx, st.ID, AddProgressInput{Date: "d1", Level: entities.LevelGood})
	require.NoError(t, err)
	assert.Equal(t, st.Revision, kept.Revision)

	replaced, err := f.service.AddDailyProgress(ctx, st.ID, AddProgressInput{
		Date:     "d2",
		Level:    entities.LevelVeryGood,
		Revision: &entities.RevisionDraft{SurahNumber: 2, FromAyah: 1, ToAyah: 50, Level: entities.LevelExcellent},
	})
	require.NoError(t, err)
	assert.Equal(t, &entities.RevisionRange{SurahNumber: 2, FromAyah: 1, ToAyah: 50, Level: entities.LevelExcellent}, replaced.Revision)
	assert.Len(t, replaced.DailyProgress, 2)
}

func TestAddDailyProgressUnknownStudent(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.AddDailyProgress(context.Background(), "missing", AddProgressInput{Date: "d", Level: entities.LevelGood})
	assert.True(t, errors.Is(err, ErrStudentNotFound))
}

func TestEditStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.service.AddStudent(ctx, AddStudentInput{
		Name:     "أحمد",
		Level:    entities.LevelGood,
		Revision: entities.RevisionDraft{SurahNumber: 1, FromAyah: 1, ToAyah: 7},
	})
	require.NoError(t, err)
	_, err = f.service.AddDailyProgress(ctx, st.ID, AddProgressInput{Date: "d", Level: entities.LevelExcellent})
	require.NoError(t, err)

	edited, err := f.service.EditStudent(ctx, st.ID, EditStudentInput{
		Name:     "أحمد علي",
		Notes:    "ملاحظة",
		Revision: entities.RevisionDraft{SurahNumber: 2, FromAyah: 10, ToAyah: 20, Level: entities.LevelGood},
	})
	require.NoError(t, err)
	assert.Equal(t, "أحمد علي", edited.Name)
	assert.Equal(t, "ملاحظة", edited.Notes)
	assert.Equal(t, 2, edited.Revision.SurahNumber)
	assert.Equal(t, entities.LevelExcellent, edited.Level)
	assert.Len(t, edited.DailyProgress, 1)

	cleared, err := f.service.EditStudent(ctx, st.ID, EditStudentInput{Name: "أحمد علي"})
	require.NoError(t, err)
	assert.Nil(t, cleared.Revision)
	assert.Empty(t, cleared.Notes)
}

func TestEditStudentPartialRevisionKeepsStoredRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.service.AddStudent(ctx, AddStudentInput{
		Name:     "أحمد",
		Revision: entities.RevisionDraft{SurahNumber: 1, FromAyah: 1, ToAyah: 7, Level: entities.LevelGood},
	})
	require.NoError(t, err)

	_, err = f.service.EditStudent(ctx, st.ID, EditStudentInput{
		Name:     "changed",
		Revision: entities.RevisionDraft{SurahNumber: 2, FromAyah: 3},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, entities.ErrValidation))

	after, err := f.service.Get(st.ID)
	require.NoError(t, err)
	assert.Equal(t, "أحمد", after.Name)
	assert.Equal(t, st.Revision, after.Revision)

	stored := f.reload(t).List()
	require.Len(t, stored, 1)
	assert.Equal(t, st.Revision, stored[0].Revision)
}

func TestSetRevision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st := f.addStudent(t, "أحمد")

	got, err := f.service.SetRevision(ctx, st.ID, entities.RevisionDraft{SurahNumber: 114, FromAyah: 1, ToAyah: 6})
	require.NoError(t, err)
	require.NotNil(t, got.Revision)
	assert.Equal(t, "أحمد", got.Name)
	require.NotNil(t, got.LastUpdated)

	got, err = f.service.SetRevision(ctx, st.ID, entities.RevisionDraft{})
	require.NoError(t, err)
	assert.Nil(t, got.Revision)
}

func TestDeleteStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addStudent(t, "a")
	b := f.addStudent(t, "b")

	require.NoError(t, f.service.DeleteStudent(ctx, a.ID))

	list := f.service.List()
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	reloaded := f.reload(t)
	_, err := reloaded.Get(a.ID)
	assert.True(t, errors.Is(err, ErrStudentNotFound))
	assert.Len(t, reloaded.List(), 1)

	assert.True(t, errors.Is(f.service.DeleteStudent(ctx, a.ID), ErrStudentNotFound))
}

func TestClearAll(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, "a")
	f.addStudent(t, "b")

	require.NoError(t, f.service.ClearAll(context.Background()))

	assert.Empty(t, f.service.List())
	assert.Empty(t, f.reload(t).List())
}

func TestPersistenceFailureKeepsMemoryState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.gateway.setErr = errors.New("disk full")

	st, err := f.service.AddStudent(ctx, AddStudentInput{Name: "أحمد"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotPersisted))
	assert.False(t, errors.Is(err, entities.ErrValidation))
	assert.Equal(t, "أحمد", st.Name)

	list := f.service.List()
	require.Len(t, list, 1)

	f.gateway.setErr = nil
	assert.Empty(t, f.reload(t).List())

	f.gateway.rmErr = errors.New("locked")
	err = f.service.ClearAll(ctx)
	assert.True(t, errors.Is(err, ErrNotPersisted))
	assert.Empty(t, f.service.List())
}

func TestLoadFailure(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, "a")
	f.gateway.getErr = errors.New("io error")

	s := f.newService()
	err := s.Load(context.Background())
	assert.True(t, errors.Is(err, ErrLoadFailed))
	assert.Empty(t, s.List())
}

func TestLoadFailureKeepsStoredData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	truncated := []byte(`[{"id":"a","name":"a","level":"جيد","dailyProgress":[]},{"id":"b","na`)
	require.NoError(t, f.gateway.Set(ctx, repository.DefaultStudentsKey, truncated))

	s := f.newService()
	require.True(t, errors.Is(s.Load(ctx), ErrLoadFailed))

	st, err := s.AddStudent(ctx, AddStudentInput{Name: "new"})
	assert.True(t, errors.Is(err, ErrNotPersisted))
	assert.True(t, errors.Is(err, ErrLoadFailed))
	assert.Equal(t, "new", st.Name)

	_, err = s.AddDailyProgress(ctx, st.ID, AddProgressInput{Date: "2024-01-20", Level: entities.LevelGood})
	assert.True(t, errors.Is(err, ErrNotPersisted))

	stored, err := f.gateway.Get(ctx, repository.DefaultStudentsKey)
	require.NoError(t, err)
	assert.Equal(t, truncated, stored)

	require.NoError(t, s.ReplaceAll(ctx, []entities.Student{{Name: "restored"}}))
	_, err = s.AddStudent(ctx, AddStudentInput{Name: "after"})
	require.NoError(t, err)
	assert.Len(t, f.reload(t).List(), 2)
}

func TestLoadFailureClearedBySuccessfulLoad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addStudent(t, "a")

	s := f.newService()
	f.gateway.getErr = errors.New("io error")
	require.Error(t, s.Load(ctx))

	f.gateway.getErr = nil
	require.NoError(t, s.Load(ctx))
	_, err := s.AddStudent(ctx, AddStudentInput{Name: "b"})
	require.NoError(t, err)
	assert.Len(t, f.reload(t).List(), 2)
}

func TestQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.addStudent(t, "a")
	f.addStudent(t, "b")
	_, err := f.service.AddDailyProgress(ctx, a.ID, AddProgressInput{Date: "d", Level: entities.LevelExcellent})
	require.NoError(t, err)

	first, err := f.service.At(1)
	require.NoError(t, err)
	assert.Equal(t, a.ID, first.ID)

	_, err = f.service.At(3)
	assert.True(t, errors.Is(err, ErrStudentNotFound))
	_, err = f.service.At(0)
	assert.True(t, errors.Is(err, ErrStudentNotFound))

	excellent := f.service.FilterByLevel(entities.LevelExcellent)
	require.Len(t, excellent, 1)
	assert.Equal(t, "a", excellent[0].Name)

	counts := f.service.CountByLevel()
	assert.Len(t, counts, 5)
	assert.Equal(t, 1, counts[entities.LevelExcellent])
	assert.Equal(t, 1, counts[entities.LevelAcceptable])
	assert.Equal(t, 0, counts[entities.LevelGood])
}

func TestListReturnsCopies(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, "a")

	list := f.service.List()
	list[0].Name = "changed"

	assert.Equal(t, "a", f.service.List()[0].Name)
}

func TestSeedDemoAndReplaceAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.SeedDemo(ctx))
	demo := f.service.List()
	require.Len(t, demo, len(DemoStudents()))

	for _, st := range demo {
		for _, p := range st.DailyProgress {
			if p.HasPosition() {
				assert.True(t, surahs.IsValidPosition(p.Surah, p.Ayah), "%s %s", st.Name, p.Position)
			}
		}
		if latest, ok := st.LatestProgress(); ok {
			assert.Equal(t, latest.Level, st.Level, st.Name)
		}
	}
	assert.Len(t, f.reload(t).List(), len(demo))

	err := f.service.ReplaceAll(ctx, []entities.Student{{Name: " "}})
	assert.True(t, errors.Is(err, entities.ErrValidation))
	assert.Len(t, f.service.List(), len(demo))

	invalid := []struct {
		name    string
		student entities.Student
	}{
		{name: "unknown level", student: entities.Student{Name: "x", Level: "bogus"}},
		{
			name:    "partial revision",
			student: entities.Student{Name: "x", Revision: &entities.RevisionRange{SurahNumber: 2}},
		},
		{
			name:    "revision out of range",
			student: entities.Student{Name: "x", Revision: &entities.RevisionRange{SurahNumber: 1, FromAyah: 1, ToAyah: 8}},
		},
		{
			name: "entry with unknown level",
			student: entities.Student{Name: "x", DailyProgress: []entities.DailyProgress{
				{Date: "2024-01-20", Level: "bogus"},
			}},
		},
		{
			name: "entry position out of range",
			student: entities.Student{Name: "x", DailyProgress: []entities.DailyProgress{
				{Date: "2024-01-20", Level: entities.LevelGood, Position: entities.Position{Surah: 1, Ayah: 99}},
			}},
		},
		{
			name: "entry with half a position",
			student: entities.Student{Name: "x", DailyProgress: []entities.DailyProgress{
				{Date: "2024-01-20", Level: entities.LevelGood, Position: entities.Position{Surah: 2}},
			}},
		},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			err := f.service.ReplaceAll(ctx, []entities.Student{{Name: "valid"}, tt.student})
			require.True(t, errors.Is(err, entities.ErrValidation), "got %v", err)
			assert.Contains(t, err.Error(), "student 2")
			assert.Len(t, f.service.List(), len(demo))
			assert.Len(t, f.reload(t).List(), len(demo))
		})
	}

	require.NoError(t, f.service.ReplaceAll(ctx, []entities.Student{{Name: "imported"}}))
	imported := f.service.List()
	require.Len(t, imported, 1)
	assert.NotEmpty(t, imported[0].ID)
	assert.Equal(t, entities.DefaultLevel, imported[0].Level)
	assert.NotNil(t, imported[0].DailyProgress)
}
