package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/aliskhannn/hafiz-bot/internal/domain/entities"
	"github.com/aliskhannn/hafiz-bot/internal/service"
)

const (
	progressDateLayout = "2006-01-02"
	surahSearchLimit   = 30
)

func (h *Handler) handleHelp() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		return h.send(newHTMLMessage(chatID, msgHelp))
	}
}

// handleStudents lists all students, or those at one level. Numbers always refer
// to the position in the full list so they can be passed to the other commands.
func (h *Handler) handleStudents(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		var level entities.Level
		if strings.TrimSpace(args) != "" {
			l, err := entities.ParseLevel(args)
			if err != nil {
				return err
			}
			level = l
		}

		all := h.students.List()
		if len(all) == 0 {
			return h.send(newPlainMessage(chatID, msgNoStudents))
		}

		var (
			shown   []entities.Student
			numbers []int
		)
		for i, st := range all {
			if level != "" && st.Level != level {
				continue
			}
			shown = append(shown, st)
			numbers = append(numbers, i+1)
		}

		if len(shown) == 0 {
			return h.send(newPlainMessage(chatID, msgNoMatches))
		}

		title := "الطلاب"
		if level != "" {
			title = "الطلاب بمستوى " + level.String()
		}

		text := formatStudentList(h.surahs, title, shown, numbers)
		if level == "" {
			text += "\n" + formatLevelSummary(h.students.CountByLevel())
		}
		return h.sendChunks(chatID, text, true)
	}
}

func (h *Handler) handleStudent(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if strings.TrimSpace(args) == "" {
			return h.send(newPlainMessage(chatID, msgUsageStudent))
		}

		n, st, err := h.studentAt(args)
		if err != nil {
			return err
		}
		return h.sendChunks(chatID, formatStudentCard(h.surahs, n, st, h.location), true)
	}
}

func (h *Handler) handleAdd(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		fields := splitArgs(args)
		if len(fields) == 0 {
			return h.send(newPlainMessage(chatID, msgUsageAdd))
		}

		level, err := parseOptionalLevel(arg(fields, 1))
		if err != nil {
			return err
		}

		st, err := h.students.AddStudent(ctx, service.AddStudentInput{
			Name:  arg(fields, 0),
			Level: level,
			Notes: arg(fields, 2),
		})
		if err != nil && !errors.Is(err, service.ErrNotPersisted) {
			return err
		}

		if sendErr := h.send(newHTMLMessage(chatID, formatStudentAdded(len(h.students.List()), st))); sendErr != nil {
			return sendErr
		}
		return err
	}
}

func (h *Handler) handleProgress(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		fields := splitArgs(args)
		if len(fields) < 3 {
			return h.send(newPlainMessage(chatID, msgUsageProgress))
		}

		_, st, err := h.studentAt(fields[0])
		if err != nil {
			return err
		}

		date := arg(fields, 1)
		if date == "" {
			date = h.now().In(h.location).Format(progressDateLayout)
		}

		level, err := entities.ParseLevel(arg(fields, 2))
		if err != nil {
			return err
		}

		surah, ayah, err := parsePosition(arg(fields, 3))
		if err != nil {
			return err
		}

		updated, err := h.students.AddDailyProgress(ctx, st.ID, service.AddProgressInput{
			Date:        date,
			Level:       level,
			SurahNumber: surah,
			AyahNumber:  ayah,
			Notes:       arg(fields, 4),
		})
		if err != nil && !errors.Is(err, service.ErrNotPersisted) {
			return err
		}

		if sendErr := h.send(newHTMLMessage(chatID, formatProgressAdded(h.surahs, updated))); sendErr != nil {
			return sendErr
		}
		return err
	}
}

func (h *Handler) handleEdit(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		fields := splitArgs(args)
		if len(fields) < 2 {
			return h.send(newPlainMessage(chatID, msgUsageEdit))
		}

		_, st, err := h.studentAt(fields[0])
		if err != nil {
			return err
		}

		revisionLevel, err := parseOptionalLevel(arg(fields, 4))
		if err != nil {
			return err
		}

		// An omitted range keeps the current one, "-" clears it.
		var draft entities.RevisionDraft
		switch rangeArg := arg(fields, 3); {
		case rangeArg == "-":
		case rangeArg == "" && st.Revision != nil:
			draft = entities.RevisionDraft{
				SurahNumber: st.Revision.SurahNumber,
				FromAyah:    st.Revision.FromAyah,
				ToAyah:      st.Revision.ToAyah,
				Level:       st.Revision.Level,
			}
			if revisionLevel != "" {
				draft.Level = revisionLevel
			}
		default:
			if draft, err = parseRevision(rangeArg, revisionLevel); err != nil {
				return err
			}
		}

		updated, err := h.students.EditStudent(ctx, st.ID, service.EditStudentInput{
			Name:     arg(fields, 1),
			Notes:    arg(fields, 2),
			Revision: draft,
		})
		if err != nil && !errors.Is(err, service.ErrNotPersisted) {
			return err
		}

		if sendErr := h.send(newHTMLMessage(chatID, formatStudentUpdated(updated))); sendErr != nil {
			return sendErr
		}
		return err
	}
}

func (h *Handler) handleRevision(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		fields := splitArgs(args)
		if len(fields) < 2 {
			return h.send(newPlainMessage(chatID, msgUsageRevision))
		}

		_, st, err := h.studentAt(fields[0])
		if err != nil {
			return err
		}

		var draft entities.RevisionDraft
		if fields[1] != "-" {
			level, err := parseOptionalLevel(arg(fields, 2))
			if err != nil {
				return err
			}
			draft, err = parseRevision(fields[1], level)
			if err != nil {
				return err
			}
			if draft.IsBlank() {
				return h.send(newPlainMessage(chatID, msgUsageRevision))
			}
		}

		updated, err := h.students.SetRevision(ctx, st.ID, draft)
		if err != nil && !errors.Is(err, service.ErrNotPersisted) {
			return err
		}

		if sendErr := h.send(newHTMLMessage(chatID, formatStudentUpdated(updated))); sendErr != nil {
			return sendErr
		}
		return err
	}
}

func (h *Handler) handleDelete(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if strings.TrimSpace(args) == "" {
			return h.send(newPlainMessage(chatID, msgUsageDelete))
		}

		_, st, err := h.studentAt(args)
		if err != nil {
			return err
		}

		msg := newHTMLMessage(chatID, formatConfirmDelete(st))
		msg.ReplyMarkup = buildDeleteKeyboard(st.ID)
		return h.send(msg)
	}
}

func (h *Handler) handleClear() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		msg := newPlainMessage(chatID, msgConfirmClear)
		msg.ReplyMarkup = buildClearKeyboard()
		return h.send(msg)
	}
}

func (h *Handler) handleDemo() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		msg := newPlainMessage(chatID, msgConfirmDemo)
		msg.ReplyMarkup = buildDemoKeyboard()
		return h.send(msg)
	}
}

func (h *Handler) handleReport(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if strings.TrimSpace(args) == "" {
			msg := newPlainMessage(chatID, msgChooseReport)
			msg.ReplyMarkup = buildReportModeKeyboard()
			return h.send(msg)
		}

		mode, err := service.ParseReportMode(args)
		if err != nil {
			return &entities.ValidationError{Field: "mode", Message: "نوع التقرير: موجز أو مفصل"}
		}
		return h.sendReport(chatID, mode)
	}
}

func (h *Handler) sendReport(chatID int64, mode service.ReportMode) error {
	text := h.reports.Generate(h.students.List(), mode)
	return h.sendChunks(chatID, text, false)
}

// handleSurah shows one surah for an exact number, otherwise the search results.
func (h *Handler) handleSurah(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		query := strings.TrimSpace(args)
		if query == "" {
			return h.send(newPlainMessage(chatID, msgUsageSurah))
		}

		if n, err := strconv.Atoi(query); err == nil {
			if s, ok := h.surahs.Lookup(n); ok {
				return h.send(newHTMLMessage(chatID, formatSurahInfo(s, h.surahs.ProgressPercentage(n, 1))))
			}
		}

		found := h.surahs.Search(query)
		if len(found) == 0 {
			return h.send(newPlainMessage(chatID, msgNoMatches))
		}
		return h.sendChunks(chatID, formatSurahList(found, surahSearchLimit), true)
	}
}

// studentAt resolves a 1-based list number.
func (h *Handler) studentAt(s string) (int, entities.Student, error) {
	n, err := parseIndex(s)
	if err != nil {
		return 0, entities.Student{}, err
	}
	st, err := h.students.At(n)
	if err != nil {
		return 0, entities.Student{}, err
	}
	return n, st, nil
}
