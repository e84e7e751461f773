// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/hafiz-bot/internal/domain/entities"
)

// Error messages.
const (
	msgInternalError   = "حدث خطأ غير متوقع. حاول مرة أخرى لاحقاً."
	msgNotAllowed      = "⛔ ليس لديك صلاحية لاستخدام هذا البوت."
	msgUnknownCommand  = "أمر غير معروف. أرسل /help لعرض الأوامر المتاحة."
	msgStudentNotFound = "❌ لا يوجد طالب بهذا الرقم. أرسل /students لعرض القائمة."
	msgNotPersisted    = "⚠️ تم تطبيق التغيير لكن تعذر حفظه. سيضيع عند إعادة تشغيل البوت."
	msgNoStudents      = "لا يوجد طلاب بعد. أضف طالباً بالأمر /add أو جرّب /demo."
	msgNoMatches       = "لا توجد نتائج."
)

// Usage messages.
const (
	msgUsageStudent  = "الاستخدام: /student رقم_الطالب"
	msgUsageAdd      = "الاستخدام: /add الاسم | المستوى | ملاحظات\nمثال: /add أحمد محمد | مقبول | طالب جديد"
	msgUsageProgress = "الاستخدام: /progress رقم | التاريخ | المستوى | سورة:آية | ملاحظات\n" +
		"مثال: /progress 1 | | جيد | 2:255 | حفظ آية الكرسي\n" +
		"التاريخ الفارغ يعني اليوم، والموقع اختياري."
	msgUsageEdit = "الاستخدام: /edit رقم | الاسم | ملاحظات | سورة:من-إلى | مستوى المراجعة\n" +
		"ترك المراجعة فارغة يبقيها كما هي، و - يحذفها."
	msgUsageRevision = "الاستخدام: /revision رقم | سورة:من-إلى | المستوى\nأو /revision رقم | - لحذف المراجعة"
	msgUsageDelete   = "الاستخدام: /delete رقم_الطالب"
	msgUsageSurah    = "الاستخدام: /surah رقم_السورة أو جزء من اسمها"
)

// Confirmation messages.
const (
	msgChooseReport   = "اختر نوع التقرير:"
	msgConfirmClear   = "⚠️ سيتم حذف جميع الطلاب وسجلاتهم نهائياً. هل أنت متأكد؟"
	msgConfirmDemo    = "سيتم استبدال جميع الطلاب الحاليين ببيانات تجريبية. هل تريد المتابعة؟"
	msgCancelled      = "تم الإلغاء."
	msgCleared        = "🗑 تم حذف جميع البيانات."
	msgDemoLoaded     = "✅ تم تحميل البيانات التجريبية. أرسل /students لعرضها."
	msgStudentDeleted = "🗑 تم حذف الطالب."
)

const msgHelp = `<b>📖 حافظ - متابعة حفظ القرآن الكريم</b>

<b>الطلاب</b>
/students [المستوى] - قائمة الطلاب
/student رقم - بطاقة الطالب
/add الاسم | المستوى | ملاحظات - إضافة طالب
/edit رقم | الاسم | ملاحظات | سورة:من-إلى أو - | المستوى - تعديل طالب
/delete رقم - حذف طالب

<b>الحفظ والمراجعة</b>
/progress رقم | التاريخ | المستوى | سورة:آية | ملاحظات - تسجيل يوم
/revision رقم | سورة:من-إلى | المستوى - تحديد المراجعة

<b>التقارير</b>
/report [موجز|مفصل] - تقرير عن جميع الطلاب

<b>أخرى</b>
/surah استعلام - البحث عن سورة
/demo - تحميل بيانات تجريبية
/clear - حذف جميع البيانات

المستويات: لم تتم القراءة، مقبول، جيد، جيد جداً، ممتاز`

const (
	cardDateLayout     = "02/01/2006"
	cardDateTimeLayout = "02/01/2006 15:04"
	recentEntriesCount = 5
)

// esc escapes user text for HTML parse mode.
func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}

func bold(s string) string {
	return "<b>" + esc(s) + "</b>"
}

func newHTMLMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	return msg
}

// newPlainMessage creates a message without parse mode.
func newPlainMessage(chatID int64, text string) tgbotapi.MessageConfig {
	return tgbotapi.NewMessage(chatID, text)
}

// newEdit creates an edit with HTML parse mode.
func newEdit(chatID int64, msgID int, text string) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	return edit
}

func formatValidationError(err error) string {
	return "⚠️ " + esc(err.Error())
}

func formatRevision(surahs SurahTable, r *entities.RevisionRange) string {
	return fmt.Sprintf("%s - من آية %d إلى آية %d",
		surahs.SurahName(r.SurahNumber), r.FromAyah, r.ToAyah)
}

// formatStudentLine is one row of the /students list. number is the position in the full list.
func formatStudentLine(surahs SurahTable, number int, st entities.Student) string {
	line := fmt.Sprintf("%d. %s · %s", number, bold(st.Name), esc(st.Level.String()))
	if pos, ok := st.CurrentPosition(); ok {
		line += " · " + esc(surahs.FormatPosition(pos.Surah, pos.Ayah))
	}
	return line
}

func formatStudentList(surahs SurahTable, title string, students []entities.Student, numbers []int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 %s (%d)\n\n", bold(title), len(students))
	for i, st := range students {
		sb.WriteString(formatStudentLine(surahs, numbers[i], st))
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatLevelSummary(counts map[entities.Level]int) string {
	var sb strings.Builder
	sb.WriteString("📈 ")
	for i, l := range entities.Levels() {
		if i > 0 {
			sb.WriteString(" · ")
		}
		fmt.Fprintf(&sb, "%s: %d", esc(l.String()), counts[l])
	}
	return sb.String()
}

// formatStudentCard renders the full profile of one student.
func formatStudentCard(surahs SurahTable, number int, st entities.Student, loc *time.Location) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "👤 %d. %s\n", number, bold(st.Name))
	fmt.Fprintf(&sb, "📊 المستوى: %s\n", esc(st.Level.String()))

	if pos, ok := st.CurrentPosition(); ok {
		fmt.Fprintf(&sb, "📖 الموقع الحالي: %s (%d%%)\n",
			esc(surahs.FormatPosition(pos.Surah, pos.Ayah)),
			surahs.ProgressPercentage(pos.Surah, pos.Ayah))
	}

	if st.Revision != nil {
		fmt.Fprintf(&sb, "🔄 المراجعة: %s · %s\n",
			esc(formatRevision(surahs, st.Revision)),
			esc(st.Revision.EffectiveLevel().String()))
	}

	fmt.Fprintf(&sb, "📝 عدد الأيام المسجلة: %d\n", len(st.DailyProgress))
	fmt.Fprintf(&sb, "⭐ متوسط الأداء: %d%%\n", st.ProgressScore())

	if st.Notes != "" {
		fmt.Fprintf(&sb, "💭 ملاحظات: %s\n", esc(st.Notes))
	}

	fmt.Fprintf(&sb, "📅 تاريخ الإضافة: %s\n", st.CreatedAt.In(loc).Format(cardDateLayout))
	if st.LastUpdated != nil {
		fmt.Fprintf(&sb, "🕒 آخر تحديث: %s\n", st.LastUpdated.In(loc).Format(cardDateTimeLayout))
	}

	if recent := st.RecentProgress(recentEntriesCount); len(recent) > 0 {
		fmt.Fprintf(&sb, "\n📋 آخر %d أيام:\n", recentEntriesCount)
		for i, day := range recent {
			fmt.Fprintf(&sb, "%d. %s", i+1, esc(day.Date))
			if day.HasPosition() {
				fmt.Fprintf(&sb, " - %s", esc(surahs.FormatPosition(day.Surah, day.Ayah)))
			}
			fmt.Fprintf(&sb, " - %s\n", esc(day.Level.String()))
			if day.Notes != "" {
				fmt.Fprintf(&sb, "   💭 %s\n", esc(day.Notes))
			}
		}
	}

	return sb.String()
}

func formatStudentAdded(number int, st entities.Student) string {
	return fmt.Sprintf("✅ تمت إضافة الطالب %s برقم %d.", bold(st.Name), number)
}

func formatProgressAdded(surahs SurahTable, st entities.Student) string {
	latest, _ := st.LatestProgress()

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ تم تسجيل تقدم %s\n", bold(st.Name))
	fmt.Fprintf(&sb, "📅 %s · %s", esc(latest.Date), esc(latest.Level.String()))
	if latest.HasPosition() {
		fmt.Fprintf(&sb, "\n📖 %s (%d%%)",
			esc(surahs.FormatPosition(latest.Surah, latest.Ayah)),
			surahs.ProgressPercentage(latest.Surah, latest.Ayah))
	}
	return sb.String()
}

func formatStudentUpdated(st entities.Student) string {
	return fmt.Sprintf("✅ تم تحديث بيانات %s.", bold(st.Name))
}

func formatConfirmDelete(st entities.Student) string {
	return fmt.Sprintf("⚠️ هل تريد حذف الطالب %s مع جميع سجلاته؟", bold(st.Name))
}

func formatSurahInfo(s entities.Surah, startPercent int) string {
	return fmt.Sprintf("📖 %d. %s\nعدد الآيات: %d\nتبدأ عند %d%% من المصحف",
		s.Number, bold(s.Name), s.AyahCount, startPercent)
}

func formatSurahList(surahs []entities.Surah, limit int) string {
	var sb strings.Builder
	for i, s := range surahs {
		if i == limit {
			fmt.Fprintf(&sb, "… و%d نتيجة أخرى\n", len(surahs)-limit)
			break
		}
		fmt.Fprintf(&sb, "%d. %s (%d آية)\n", s.Number, esc(s.Name), s.AyahCount)
	}
	return sb.String()
}
