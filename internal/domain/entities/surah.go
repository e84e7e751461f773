package entities

import "fmt"

// SurahCount is the number of surahs in the Quran.
const SurahCount = 114

// Surah is one record of the Quran reference table.
type Surah struct {
	Number    int    `json:"number"` // canonical order, from 1 to 114
	Name      string `json:"name"`   // display name
	AyahCount int    `json:"ayahs"`  // total verses in the surah
}

// Position is a point in the canonical reading order.
// The zero value means "no position recorded".
type Position struct {
	Surah int `json:"surahNumber"`
	Ayah  int `json:"ayahNumber"`
}

// IsZero reports whether the position is the "no position" sentinel.
func (p Position) IsZero() bool {
	return p.Surah <= 0 || p.Ayah <= 0
}

// AyahCounter resolves ayah counts and display names of surahs.
type AyahCounter interface {
	AyahCount(surahNumber int) int
	SurahName(surahNumber int) string
}

// ValidatePosition checks a surah/ayah pair against the reference table.
func ValidatePosition(table AyahCounter, surahNumber, ayahNumber int) error {
	if err := validateSurah(surahNumber); err != nil {
		return err
	}

	count := table.AyahCount(surahNumber)
	if ayahNumber < 1 || ayahNumber > count {
		return newValidationError("ayah_number",
			"ayah must be within 1..%d for surah %d (%s), got %d",
			count, surahNumber, table.SurahName(surahNumber), ayahNumber)
	}

	return nil
}

func validateSurah(surahNumber int) error {
	if surahNumber < 1 || surahNumber > SurahCount {
		return newValidationError("surah_number",
			"surah must be within 1..%d, got %d", SurahCount, surahNumber)
	}
	return nil
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Surah, p.Ayah)
}
