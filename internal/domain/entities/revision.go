package entities

// RevisionRange is the surah span a student is currently revising.
// A student holds either a complete range or none.
type RevisionRange struct {
	SurahNumber int   `json:"surahNumber"`     // surah under revision
	FromAyah    int   `json:"fromAyah"`        // first ayah of the span
	ToAyah      int   `json:"toAyah"`          // last ayah of the span, inclusive
	Level       Level `json:"level,omitempty"` // revision quality, may be absent in stored data
}

// EffectiveLevel returns the stored level or DefaultLevel when it is missing.
func (r RevisionRange) EffectiveLevel() Level {
	if r.Level == "" {
		return DefaultLevel
	}
	return r.Level
}

// Validate checks that both ends lie inside the surah and are ordered.
func (r RevisionRange) Validate(table AyahCounter) error {
	if err := validateSurah(r.SurahNumber); err != nil {
		return err
	}

	count := table.AyahCount(r.SurahNumber)
	name := table.SurahName(r.SurahNumber)

	if r.FromAyah < 1 || r.FromAyah > count {
		return newValidationError("from_ayah",
			"start ayah must be within 1..%d for surah %d (%s), got %d", count, r.SurahNumber, name, r.FromAyah)
	}
	if r.ToAyah < 1 || r.ToAyah > count {
		return newValidationError("to_ayah",
			"end ayah must be within 1..%d for surah %d (%s), got %d", count, r.SurahNumber, name, r.ToAyah)
	}
	if r.FromAyah > r.ToAyah {
		return newValidationError("from_ayah",
			"start ayah %d is after end ayah %d", r.FromAyah, r.ToAyah)
	}
	if r.Level != "" && !r.Level.Valid() {
		return newValidationError("level", "unknown level %q", string(r.Level))
	}

	return nil
}

// RevisionDraft is user input for a revision range where every field may be left blank.
// Zero means blank.
type RevisionDraft struct {
	SurahNumber int   `json:"surahNumber"`
	FromAyah    int   `json:"fromAyah"`
	ToAyah      int   `json:"toAyah"`
	Level       Level `json:"level"`
}

// IsBlank reports whether no positional field was filled.
func (d RevisionDraft) IsBlank() bool {
	return d.SurahNumber == 0 && d.FromAyah == 0 && d.ToAyah == 0
}

// Build turns the draft into a validated range. A blank draft yields nil.
// A partially filled draft is rejected.
func (d RevisionDraft) Build(table AyahCounter) (*RevisionRange, error) {
	if d.IsBlank() {
		return nil, nil
	}
	if d.SurahNumber == 0 || d.FromAyah == 0 || d.ToAyah == 0 {
		return nil, newValidationError("revision",
			"revision range needs surah, start ayah and end ayah together")
	}

	level := d.Level
	if level == "" {
		level = DefaultLevel
	}

	r := RevisionRange{
		SurahNumber: d.SurahNumber,
		FromAyah:    d.FromAyah,
		ToAyah:      d.ToAyah,
		Level:       level,
	}
	if err := r.Validate(table); err != nil {
		return nil, err
	}

	return &r, nil
}
