package repository

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/aliskhannn/hafiz-bot/internal/domain/entities"
)

var (
	ErrSurahNotFound = errors.New("surah not found")
	ErrInvalidNumber = errors.New("invalid surah number")
)

//go:embed data/surahs.json
var embeddedSurahs []byte

// SurahRepository is the static Quran reference table with position arithmetic on top of it.
// It is read-only after construction and safe for concurrent use.
type SurahRepository struct {
	surahs     []entities.Surah
	cumulative []int // cumulative[i] is the number of ayahs in surahs 1..i
}

// NewSurahRepository loads the table from path, or from the embedded dataset when path is empty.
func NewSurahRepository(path string) (*SurahRepository, error) {
	data := embeddedSurahs
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read surahs file: %w", err)
		}
	}

	surahs, err := parseSurahs(data)
	if err != nil {
		return nil, err
	}

	cumulative := make([]int, len(surahs)+1)
	for i, s := range surahs {
		cumulative[i+1] = cumulative[i] + s.AyahCount
	}

	return &SurahRepository{
		surahs:     surahs,
		cumulative: cumulative,
	}, nil
}

// MustDefaultSurahRepository returns the embedded table and panics if it is broken.
func MustDefaultSurahRepository() *SurahRepository {
	r, err := NewSurahRepository("")
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the surah with the given number.
func (r *SurahRepository) Lookup(number int) (entities.Surah, bool) {
	if number < 1 || number > len(r.surahs) {
		return entities.Surah{}, false
	}
	return r.surahs[number-1], true
}

// GetByNumber retrieves a surah by its number (1-114).
func (r *SurahRepository) GetByNumber(number int) (*entities.Surah, error) {
	if number < 1 || number > entities.SurahCount {
		return nil, ErrInvalidNumber
	}

	s, ok := r.Lookup(number)
	if !ok {
		return nil, ErrSurahNotFound
	}
	return &s, nil
}

// GetAll retrieves all 114 surahs in canonical order.
func (r *SurahRepository) GetAll() []entities.Surah {
	out := make([]entities.Surah, len(r.surahs))
	copy(out, r.surahs)
	return out
}

// SurahName returns the display name, or "سورة N" for unknown numbers.
func (r *SurahRepository) SurahName(number int) string {
	if s, ok := r.Lookup(number); ok {
		return s.Name
	}
	return fmt.Sprintf("سورة %d", number)
}

// AyahCount returns the number of ayahs in the surah, 0 when the number is unknown.
func (r *SurahRepository) AyahCount(number int) int {
	if s, ok := r.Lookup(number); ok {
		return s.AyahCount
	}
	return 0
}

// TotalAyahs returns the number of ayahs in the whole Quran.
func (r *SurahRepository) TotalAyahs() int {
	return r.cumulative[len(r.cumulative)-1]
}

// IsValidPosition reports whether the surah exists and the ayah lies inside it.
func (r *SurahRepository) IsValidPosition(surahNumber, ayahNumber int) bool {
	count := r.AyahCount(surahNumber)
	return count > 0 && ayahNumber >= 1 && ayahNumber <= count
}

// ProgressPercentage returns how far the position is through the Quran, rounded to 0..100.
// Surah 0 means no progress. Callers validate other positions first.
func (r *SurahRepository) ProgressPercentage(surahNumber, ayahNumber int) int {
	if surahNumber <= 0 {
		return 0
	}

	completed := min(surahNumber-1, len(r.surahs))
	read := r.cumulative[completed] + ayahNumber

	return int(math.Round(float64(read) / float64(r.TotalAyahs()) * 100))
}

// NextPosition advances one ayah. It returns false at the end of the Quran
// and for positions in unknown surahs.
func (r *SurahRepository) NextPosition(surahNumber, ayahNumber int) (entities.Position, bool) {
	count := r.AyahCount(surahNumber)
	if count == 0 {
		return entities.Position{}, false
	}

	switch {
	case ayahNumber < count:
		return entities.Position{Surah: surahNumber, Ayah: ayahNumber + 1}, true
	case surahNumber < len(r.surahs):
		return entities.Position{Surah: surahNumber + 1, Ayah: 1}, true
	default:
		return entities.Position{}, false
	}
}

// FormatPosition renders "<surah name> - آية N". It does not validate the position.
func (r *SurahRepository) FormatPosition(surahNumber, ayahNumber int) string {
	return fmt.Sprintf("%s - آية %d", r.SurahName(surahNumber), ayahNumber)
}

// Search matches surahs by number (exact or containing the digits) or by name substring.
// An empty query returns every surah.
func (r *SurahRepository) Search(query string) []entities.Surah {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.GetAll()
	}

	var out []entities.Surah
	if _, err := strconv.Atoi(query); err == nil {
		for _, s := range r.surahs {
			if strings.Contains(strconv.Itoa(s.Number), query) {
				out = append(out, s)
			}
		}
		return out
	}

	for _, s := range r.surahs {
		if strings.Contains(s.Name, query) {
			out = append(out, s)
		}
	}
	return out
}

func parseSurahs(data []byte) ([]entities.Surah, error) {
	var wrapper struct {
		Surahs []entities.Surah `json:"surahs"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to unmarshal surahs JSON: %w", err)
	}

	if len(wrapper.Surahs) != entities.SurahCount {
		return nil, fmt.Errorf("expected %d surahs, got %d", entities.SurahCount, len(wrapper.Surahs))
	}

	for i, s := range wrapper.Surahs {
		if s.Number != i+1 {
			return nil, fmt.Errorf("surah at index %d has number %d, want %d", i, s.Number, i+1)
		}
		if s.AyahCount <= 0 {
			return nil, fmt.Errorf("surah %d has non-positive ayah count %d", s.Number, s.AyahCount)
		}
	}

	return wrapper.Surahs, nil
}
