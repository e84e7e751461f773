package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/aliskhannn/hafiz-bot/internal/domain/entities"
)

// maxMessageUnits is the Telegram limit for one text message, counted in UTF-16 code units.
const maxMessageUnits = 4096

// splitArgs splits "a | b | c" into trimmed fields. Empty input yields no fields.
func splitArgs(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	parts := strings.Split(s, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// arg returns the i-th field or "" when it is missing.
func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, &entities.ValidationError{
			Field:   "number",
			Message: fmt.Sprintf("رقم الطالب غير صحيح: %q", s),
		}
	}
	return n, nil
}

// parsePosition parses "surah:ayah". An empty string means no position.
func parsePosition(s string) (surah, ayah int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, nil
	}

	left, right, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, positionFormatError(s)
	}

	surah, err1 := strconv.Atoi(strings.TrimSpace(left))
	ayah, err2 := strconv.Atoi(strings.TrimSpace(right))
	if err1 != nil || err2 != nil {
		return 0, 0, positionFormatError(s)
	}
	return surah, ayah, nil
}

func positionFormatError(s string) error {
	return &entities.ValidationError{
		Field:   "position",
		Message: fmt.Sprintf("الموقع يكتب بالشكل سورة:آية مثل 2:255، وصل %q", s),
	}
}

// parseRevision parses "surah:from-to" into a draft. An empty string yields a blank draft.
func parseRevision(s string, level entities.Level) (entities.RevisionDraft, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return entities.RevisionDraft{}, nil
	}

	surahPart, span, ok := strings.Cut(s, ":")
	if !ok {
		return entities.RevisionDraft{}, revisionFormatError(s)
	}
	fromPart, toPart, ok := strings.Cut(span, "-")
	if !ok {
		return entities.RevisionDraft{}, revisionFormatError(s)
	}

	surah, err1 := strconv.Atoi(strings.TrimSpace(surahPart))
	from, err2 := strconv.Atoi(strings.TrimSpace(fromPart))
	to, err3 := strconv.Atoi(strings.TrimSpace(toPart))
	if err1 != nil || err2 != nil || err3 != nil {
		return entities.RevisionDraft{}, revisionFormatError(s)
	}

	return entities.RevisionDraft{
		SurahNumber: surah,
		FromAyah:    from,
		ToAyah:      to,
		Level:       level,
	}, nil
}

func revisionFormatError(s string) error {
	return &entities.ValidationError{
		Field:   "revision",
		Message: fmt.Sprintf("المراجعة تكتب بالشكل سورة:من-إلى مثل 2:1-50، وصل %q", s),
	}
}

// parseOptionalLevel returns "" for an empty string.
func parseOptionalLevel(s string) (entities.Level, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return entities.ParseLevel(s)
}

// splitMessage cuts text into chunks of at most limit UTF-16 code units, preferring
// line boundaries. With html set a long line is never cut inside an entity or a tag.
func splitMessage(text string, limit int, html bool) []string {
	if limit <= 0 {
		limit = maxMessageUnits
	}
	if utf16Len(text) <= limit {
		return []string{text}
	}

	var (
		chunks []string
		cur    strings.Builder
		size   int
	)

	flush := func() {
		if size > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			size = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf16Len(line)

		if n > limit {
			flush()
			for utf16Len(line) > limit {
				cut := cutIndex(line, limit, html)
				chunks = append(chunks, line[:cut])
				line = line[cut:]
			}
			cur.WriteString(line)
			size = utf16Len(line)
			continue
		}

		if size+n > limit {
			flush()
		}
		cur.WriteString(line)
		size += n
	}
	flush()

	return chunks
}

// cutIndex returns the byte offset of the longest prefix of s that fits into limit
// UTF-16 code units and, for html, does not end inside an entity or a tag.
func cutIndex(s string, limit int, html bool) int {
	var (
		units, cut, safe int
		inMarkup         bool
	)

	for i, r := range s {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > limit {
			break
		}
		units += n
		cut = i + utf8.RuneLen(r)

		switch {
		case !html:
			safe = cut
		case r == '&' || r == '<':
			inMarkup = true
		case inMarkup && (r == ';' || r == '>'):
			inMarkup = false
			safe = cut
		case !inMarkup:
			safe = cut
		}
	}

	switch {
	case safe > 0:
		return safe
	case cut > 0:
		return cut
	default:
		_, size := utf8.DecodeRuneInString(s)
		return size
	}
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}
