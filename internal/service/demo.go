package service

import (
	"time"

	"github.com/aliskhannn/hafiz-bot/internal/domain/entities"
)

func demoTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func demoEntry(id, date string, level entities.Level, surah, ayah int, notes string) entities.DailyProgress {
	return entities.DailyProgress{
		ID:        id,
		Date:      date,
		Level:     level,
		Position:  entities.Position{Surah: surah, Ayah: ayah},
		Notes:     notes,
		CreatedAt: demoTime(date + "T10:00:00Z"),
	}
}

// DemoStudents returns a sample class used to try the bot and the CLI.
func DemoStudents() []entities.Student {
	build := func(id, name string, level entities.Level, notes, created string, revision *entities.RevisionRange, log ...entities.DailyProgress) entities.Student {
		st := entities.NewStudent(id, name, level, notes, revision, demoTime(created))
		for _, p := range log {
			st.AddProgress(p, nil, p.CreatedAt)
		}
		return *st
	}

	return []entities.Student{
		build("demo-1", "أحمد محمد", entities.LevelAcceptable, "طالب مجتهد ومتفوق في الحفظ", "2024-01-15T10:00:00Z",
			&entities.RevisionRange{SurahNumber: 1, FromAyah: 1, ToAyah: 7, Level: entities.LevelVeryGood},
			demoEntry("demo-101", "2024-01-15", entities.LevelAcceptable, 1, 7, "حفظ سورة الفاتحة كاملة"),
			demoEntry("demo-102", "2024-01-16", entities.LevelGood, 2, 5, "بداية حفظ سورة البقرة"),
			demoEntry("demo-103", "2024-01-17", entities.LevelGood, 2, 10, "تقدم جيد في سورة البقرة"),
			demoEntry("demo-104", "2024-01-18", entities.LevelExcellent, 2, 20, "أداء ممتاز اليوم"),
			demoEntry("demo-105", "2024-01-19", entities.LevelVeryGood, 2, 25, "مراجعة وحفظ جديد"),
			demoEntry("demo-106", "2024-01-20", entities.LevelVeryGood, 2, 30, "استمرار التقدم"),
		),
		build("demo-2", "فاطمة علي", entities.LevelExcellent, "طالبة متميزة في التلاوة والحفظ", "2024-01-10T09:00:00Z",
			&entities.RevisionRange{SurahNumber: 2, FromAyah: 1, ToAyah: 50, Level: entities.LevelExcellent},
			demoEntry("demo-201", "2024-01-10", entities.LevelExcellent, 3, 50, "تقدم ممتاز في سورة آل عمران"),
			demoEntry("demo-202", "2024-01-12", entities.LevelExcellent, 3, 100, "وصلت للآية 100 من آل عمران"),
			demoEntry("demo-203", "2024-01-15", entities.LevelGood, 3, 120, "مراجعة وتثبيت"),
			demoEntry("demo-204", "2024-01-20", entities.LevelExcellent, 3, 175, "قريبة من إنهاء سورة آل عمران"),
		),
		build("demo-3", "عبدالله حسن", entities.LevelNotRead, "طالب جديد - لم يبدأ الحفظ بعد", "2024-01-20T11:00:00Z", nil),
		build("demo-4", "عائشة أحمد", entities.LevelGood, "تركز على الحفظ الجديد فقط", "2024-01-12T08:30:00Z", nil,
			demoEntry("demo-401", "2024-01-12", entities.LevelAcceptable, 114, 6, "حفظ سورة الناس كاملة"),
			demoEntry("demo-402", "2024-01-13", entities.LevelGood, 113, 5, "حفظ سورة الفلق كاملة"),
			demoEntry("demo-403", "2024-01-18", entities.LevelExcellent, 111, 5, "حفظ سورة المسد كاملة"),
			demoEntry("demo-404", "2024-01-20", entities.LevelGood, 110, 2, "بداية حفظ سورة النصر"),
		),
		build("demo-5", "محمد سالم", entities.LevelAcceptable, "يحتاج إلى مزيد من التشجيع والمتابعة", "2024-01-22T09:00:00Z",
			&entities.RevisionRange{SurahNumber: 114, FromAyah: 1, ToAyah: 6, Level: entities.LevelAcceptable},
			demoEntry("demo-501", "2024-01-22", entities.LevelNotRead, 0, 0, "لم يتمكن من القراءة اليوم"),
			demoEntry("demo-502", "2024-01-23", entities.LevelAcceptable, 114, 6, "تحسن طفيف"),
		),
	}
}
