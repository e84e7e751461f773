package service

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/aliskhannn/hafiz-bot/internal/domain/entities"
)

// ReportMode selects the verbosity of a report.
type ReportMode string

const (
	ReportConcise  ReportMode = "concise"
	ReportDetailed ReportMode = "detailed"
)

var ErrUnknownReportMode = errors.New("unknown report mode")

const (
	recentEntriesInReport = 5
	reportDateLayout      = "02/01/2006"
	reportTimeLayout      = "15:04:05"
	reportHeavyRule       = "═══════════════════════════"
	reportLightRule       = "─────────────────────────────"
)

// ParseReportMode accepts English or Arabic mode names. Empty means concise.
func ParseReportMode(s string) (ReportMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "concise", "short", "موجز":
		return ReportConcise, nil
	case "detailed", "full", "مفصل":
		return ReportDetailed, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownReportMode, s)
	}
}

// ReportFileName is the suggested file name for a report generated at now.
func ReportFileName(now time.Time) string {
	return fmt.Sprintf("quran_tracker_report_%s.txt", now.Format("2006-01-02"))
}

// ReportService renders the student collection as shareable plain text.
type ReportService struct {
	surahs   SurahTable
	location *time.Location
	now      func() time.Time
}

// NewReportService creates a report generator. A nil location means UTC.
func NewReportService(surahs SurahTable, location *time.Location) *ReportService {
	if location == nil {
		location = time.UTC
	}
	return &ReportService{
		surahs:   surahs,
		location: location,
		now:      time.Now,
	}
}

// Generate renders students in the given mode.
func (s *ReportService) Generate(students []entities.Student, mode ReportMode) string {
	now := s.now().In(s.location)
	detailed := mode == ReportDetailed

	var sb strings.Builder

	if detailed {
		sb.WriteString("📊 تقرير حفظة القرآن الكريم (مفصل)\n")
	} else {
		sb.WriteString("📊 تقرير حفظة القرآن الكريم (موجز)\n")
	}
	fmt.Fprintf(&sb, "📅 التاريخ: %s - %s\n", now.Format(reportDateLayout), now.Format(reportTimeLayout))
	fmt.Fprintf(&sb, "👥 عدد الطلاب: %d\n\n", len(students))

	sb.WriteString("📈 إحصائيات المستويات:\n")
	for _, l := range entities.Levels() {
		count := lo.CountBy(students, func(st entities.Student) bool { return st.Level == l })
		fmt.Fprintf(&sb, "• %s: %d طالب\n", l, count)
	}
	sb.WriteString("\n")

	if detailed {
		s.writeAggregates(&sb, students)
	}

	sb.WriteString(reportHeavyRule + "\n\n")

	for i := range students {
		s.writeStudent(&sb, i+1, &students[i], detailed)
	}

	sb.WriteString("📱 تم إنشاء هذا التقرير بواسطة تطبيق حافظ\n")

	return sb.String()
}

func (s *ReportService) writeAggregates(sb *strings.Builder, students []entities.Student) {
	totalDays := lo.SumBy(students, func(st entities.Student) int { return len(st.DailyProgress) })
	avgDays := 0
	if len(students) > 0 {
		avgDays = int(math.Round(float64(totalDays) / float64(len(students))))
	}
	withProgress := lo.CountBy(students, func(st entities.Student) bool { return len(st.DailyProgress) > 0 })
	withRevision := lo.CountBy(students, func(st entities.Student) bool { return st.HasRevision() })

	sb.WriteString("📊 إحصائيات إضافية:\n")
	fmt.Fprintf(sb, "• إجمالي الأيام المسجلة: %d يوم\n", totalDays)
	fmt.Fprintf(sb, "• متوسط الأيام لكل طالب: %d يوم\n", avgDays)
	fmt.Fprintf(sb, "• الطلاب الذين بدأوا الحفظ: %d طالب\n", withProgress)
	fmt.Fprintf(sb, "• الطلاب الذين لم يبدأوا بعد: %d طالب\n", len(students)-withProgress)
	fmt.Fprintf(sb, "• الطلاب الذين لديهم مراجعة: %d طالب\n", withRevision)
	fmt.Fprintf(sb, "• الطلاب بدون مراجعة محددة: %d طالب\n\n", len(students)-withRevision)

	if withRevision == 0 {
		return
	}

	sb.WriteString("🔄 إحصائيات المراجعة:\n")
	for _, l := range entities.Levels() {
		count := lo.CountBy(students, func(st entities.Student) bool {
			return st.HasRevision() && st.Revision.EffectiveLevel() == l
		})
		if count > 0 {
			fmt.Fprintf(sb, "• %s: %d طالب\n", revisionLevelLabel(l), count)
		}
	}
	sb.WriteString("\n")
}

func (s *ReportService) writeStudent(sb *strings.Builder, number int, st *entities.Student, detailed bool) {
	fmt.Fprintf(sb, "👤 %d. %s\n", number, st.Name)
	if detailed {
		fmt.Fprintf(sb, "📊 المستوى: %s\n", st.Level)
	}

	if latest, ok := st.LatestProgress(); ok {
		fmt.Fprintf(sb, "📚 مستوى الحفظ: %s\n", latest.Level)
		fmt.Fprintf(sb, "🔄 مستوى المراجعة: %s\n", revisionLevel(st))

		if latest.HasPosition() {
			fmt.Fprintf(sb, "📖 الموقع الحالي: %s\n", s.surahs.FormatPosition(latest.Surah, latest.Ayah))
			if detailed {
				fmt.Fprintf(sb, "📈 نسبة التقدم: %d%%\n", s.surahs.ProgressPercentage(latest.Surah, latest.Ayah))
			}
		}

		fmt.Fprintf(sb, "📅 آخر تحديث: %s\n", latest.Date)
	}

	if st.HasRevision() {
		label := "🔄 المراجعة"
		if detailed {
			label = "🔄 المراجعة الحالية"
		}
		fmt.Fprintf(sb, "%s: %s\n", label, s.formatRevision(st.Revision))
	}

	if detailed {
		fmt.Fprintf(sb, "📝 عدد الأيام المسجلة: %d\n", len(st.DailyProgress))
		fmt.Fprintf(sb, "⭐ متوسط الأداء: %d%%\n", st.ProgressScore())
		fmt.Fprintf(sb, "📅 تاريخ الإضافة: %s\n", st.CreatedAt.In(s.location).Format(reportDateLayout))
	} else {
		fmt.Fprintf(sb, "📝 عدد الأيام: %d\n", len(st.DailyProgress))
	}

	if st.Notes != "" {
		fmt.Fprintf(sb, "💭 ملاحظات: %s\n", st.Notes)
	}

	if detailed && len(st.DailyProgress) > 0 {
		fmt.Fprintf(sb, "\n📋 آخر %d أيام:\n", recentEntriesInReport)
		for i, day := range st.RecentProgress(recentEntriesInReport) {
			if day.HasPosition() {
				fmt.Fprintf(sb, "   %d. %s - %s - %s\n", i+1, day.Date, s.surahs.FormatPosition(day.Surah, day.Ayah), day.Level)
			} else {
				fmt.Fprintf(sb, "   %d. %s - %s\n", i+1, day.Date, day.Level)
			}
			if day.Notes != "" {
				fmt.Fprintf(sb, "      💭 %s\n", day.Notes)
			}
		}
	}

	sb.WriteString("\n" + reportLightRule + "\n\n")
}

func (s *ReportService) formatRevision(r *entities.RevisionRange) string {
	return fmt.Sprintf("%s - من آية %d إلى آية %d", s.surahs.SurahName(r.SurahNumber), r.FromAyah, r.ToAyah)
}

// revisionLevel is the level of the revision range when one is set, otherwise the student's level.
func revisionLevel(st *entities.Student) entities.Level {
	if st.HasRevision() {
		return st.Revision.EffectiveLevel()
	}
	return st.Level
}

func revisionLevelLabel(l entities.Level) string {
	switch l {
	case entities.LevelNotRead:
		return "مراجعة لم تتم القراءة"
	case entities.LevelAcceptable:
		return "مراجعة مقبولة"
	case entities.LevelGood:
		return "مراجعة جيدة"
	case entities.LevelVeryGood:
		return "مراجعة جيدة جداً"
	case entities.LevelExcellent:
		return "مراجعة ممتازة"
	default:
		return "مراجعة " + string(l)
	}
}
