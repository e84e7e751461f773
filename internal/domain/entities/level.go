// Package entities contains domain entities used across the application.
package entities

import (
	"fmt"
	"strings"
)

// Level is a memorization or revision quality rating.
// The stored value is the Arabic label shown in reports and the bot.
type Level string

const (
	LevelNotRead    Level = "لم تتم القراءة" // not read
	LevelAcceptable Level = "مقبول"          // acceptable
	LevelGood       Level = "جيد"            // good
	LevelVeryGood   Level = "جيد جداً"       // very good
	LevelExcellent  Level = "ممتاز"          // excellent
)

// DefaultLevel is used when a student is created without a level
// and when a stored revision range has no level.
const DefaultLevel = LevelAcceptable

// MaxLevelScore is the score of the highest level.
const MaxLevelScore = 4

// unknownLevelScore is the score given to labels that are not part of the scale.
const unknownLevelScore = 1

var levels = []Level{
	LevelNotRead,
	LevelAcceptable,
	LevelGood,
	LevelVeryGood,
	LevelExcellent,
}

var levelAliases = map[string]Level{
	"not_read":   LevelNotRead,
	"notread":    LevelNotRead,
	"acceptable": LevelAcceptable,
	"good":       LevelGood,
	"very_good":  LevelVeryGood,
	"verygood":   LevelVeryGood,
	"excellent":  LevelExcellent,
	"جيد جدا":    LevelVeryGood,
	"جيد_جداً":   LevelVeryGood,
	"جيد_جدا":    LevelVeryGood,
}

// Levels returns all levels ordered from lowest to highest.
func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels)
	return out
}

// ParseLevel accepts an Arabic label or an English alias such as "very_good".
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)
	for _, l := range levels {
		if string(l) == s {
			return l, nil
		}
	}

	if l, ok := levelAliases[strings.ToLower(s)]; ok {
		return l, nil
	}

	return "", &ValidationError{
		Field:   "level",
		Message: fmt.Sprintf("unknown level %q", s),
	}
}

// Rank returns the position of the level on the scale (0..4), or -1 for unknown labels.
func (l Level) Rank() int {
	for i, v := range levels {
		if v == l {
			return i
		}
	}
	return -1
}

// Valid reports whether the level is one of the five known labels.
func (l Level) Valid() bool {
	return l.Rank() >= 0
}

// Score returns the numeric score used for progress averaging.
func (l Level) Score() int {
	if r := l.Rank(); r >= 0 {
		return r
	}
	return unknownLevelScore
}

// Alias returns the English alias of the level.
func (l Level) Alias() string {
	switch l {
	case LevelNotRead:
		return "not_read"
	case LevelAcceptable:
		return "acceptable"
	case LevelGood:
		return "good"
	case LevelVeryGood:
		return "very_good"
	case LevelExcellent:
		return "excellent"
	default:
		return string(l)
	}
}

func (l Level) String() string {
	return string(l)
}
