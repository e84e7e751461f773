package entities

import (
	"math"
	"time"
)

// DailyProgress is one entry of a student's progress log. Entries are never edited.
type DailyProgress struct {
	ID        string    `json:"id"`              // unique entry id
	Date      string    `json:"date"`            // calendar date supplied by the user
	Level     Level     `json:"level"`           // memorization quality for the day
	Position            // memorized position, zero when only a level was recorded
	Notes     string    `json:"notes,omitempty"` // optional free text
	CreatedAt time.Time `json:"createdAt"`       // time the entry was recorded
}

// HasPosition reports whether the entry records a place in the Quran.
func (p DailyProgress) HasPosition() bool {
	return !p.Position.IsZero()
}

// Student is the root aggregate: it owns its progress log and revision range.
type Student struct {
	ID            string          `json:"id"`                            // unique student id
	Name          string          `json:"name"`                          // display name
	Level         Level           `json:"level"`                         // level of the latest progress entry or the initial level
	Notes         string          `json:"notes"`                         // free text
	CreatedAt     time.Time       `json:"createdAt"`                     // creation time
	LastUpdated   *time.Time      `json:"lastUpdated,omitempty"`         // time of the latest mutation, nil until the first one
	DailyProgress []DailyProgress `json:"dailyProgress"`                 // append-only log in insertion order
	Revision      *RevisionRange  `json:"currentSurahMurajaa,omitempty"` // current revision range, nil when none
}

// NewStudent creates a student with an empty progress log.
func NewStudent(id, name string, level Level, notes string, revision *RevisionRange, now time.Time) *Student {
	if level == "" {
		level = DefaultLevel
	}

	return &Student{
		ID:            id,
		Name:          name,
		Level:         level,
		Notes:         notes,
		CreatedAt:     now,
		DailyProgress: []DailyProgress{},
		Revision:      cloneRevision(revision),
	}
}

// AddProgress appends an entry and makes its level the student's current level.
// A non-nil revision replaces the current range, nil leaves it untouched.
func (s *Student) AddProgress(entry DailyProgress, revision *RevisionRange, now time.Time) {
	s.DailyProgress = append(s.DailyProgress, entry)
	s.Level = entry.Level
	if revision != nil {
		s.Revision = cloneRevision(revision)
	}
	s.touch(now)
}

// Edit changes the descriptive fields and replaces or clears the revision range.
func (s *Student) Edit(name, notes string, revision *RevisionRange, now time.Time) {
	s.Name = name
	s.Notes = notes
	s.Revision = cloneRevision(revision)
	s.touch(now)
}

// SetRevision replaces or clears the revision range.
func (s *Student) SetRevision(revision *RevisionRange, now time.Time) {
	s.Revision = cloneRevision(revision)
	s.touch(now)
}

func (s *Student) touch(now time.Time) {
	t := now
	s.LastUpdated = &t
}

// LatestProgress returns the most recently appended entry.
func (s *Student) LatestProgress() (DailyProgress, bool) {
	if len(s.DailyProgress) == 0 {
		return DailyProgress{}, false
	}
	return s.DailyProgress[len(s.DailyProgress)-1], true
}

// CurrentPosition returns the position of the latest entry when it has one.
func (s *Student) CurrentPosition() (Position, bool) {
	latest, ok := s.LatestProgress()
	if !ok || !latest.HasPosition() {
		return Position{}, false
	}
	return latest.Position, true
}

// RecentProgress returns up to n latest entries, newest first.
func (s *Student) RecentProgress(n int) []DailyProgress {
	if n <= 0 || len(s.DailyProgress) == 0 {
		return nil
	}

	start := len(s.DailyProgress) - n
	if start < 0 {
		start = 0
	}

	out := make([]DailyProgress, 0, len(s.DailyProgress)-start)
	for i := len(s.DailyProgress) - 1; i >= start; i-- {
		out = append(out, s.DailyProgress[i])
	}
	return out
}

// ProgressScore is the average level score of the log as a percentage of the maximum.
func (s *Student) ProgressScore() int {
	if len(s.DailyProgress) == 0 {
		return 0
	}

	total := 0
	for _, p := range s.DailyProgress {
		total += p.Level.Score()
	}

	maxScore := MaxLevelScore * len(s.DailyProgress)
	return int(math.Round(float64(total) / float64(maxScore) * 100))
}

// HasRevision reports whether a revision range is set.
func (s *Student) HasRevision() bool {
	return s.Revision != nil
}

// Clone returns a deep copy.
func (s *Student) Clone() Student {
	c := *s
	if s.LastUpdated != nil {
		t := *s.LastUpdated
		c.LastUpdated = &t
	}
	c.DailyProgress = make([]DailyProgress, len(s.DailyProgress))
	copy(c.DailyProgress, s.DailyProgress)
	c.Revision = cloneRevision(s.Revision)
	return c
}

func cloneRevision(r *RevisionRange) *RevisionRange {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// Validate checks a stored or imported record: a known level, a complete and valid
// revision range when one is present, and entries with known levels and either no
// position or a valid one.
func (s *Student) Validate(table AyahCounter) error {
	if !s.Level.Valid() {
		return newValidationError("level", "unknown level %q", string(s.Level))
	}

	if s.Revision != nil {
		if err := s.Revision.Validate(table); err != nil {
			return err
		}
	}

	for i, p := range s.DailyProgress {
		if !p.Level.Valid() {
			return newValidationError("daily_progress",
				"entry %d has unknown level %q", i+1, string(p.Level))
		}
		if p.Surah == 0 && p.Ayah == 0 {
			continue
		}
		if err := ValidatePosition(table, p.Surah, p.Ayah); err != nil {
			return newValidationError("daily_progress", "entry %d: %s", i+1, err.Error())
		}
	}

	return nil
}
