package service

import (
	"context"

	"github.com/aliskhannn/hafiz-bot/internal/domain/entities"
)

type StudentRepository interface {
	Load(ctx context.Context) ([]*entities.Student, error)
	Save(ctx context.Context, students []*entities.Student) error
	Clear(ctx context.Context) error
}

type SurahTable interface {
	AyahCount(surahNumber int) int
	SurahName(surahNumber int) string
	FormatPosition(surahNumber, ayahNumber int) string
	ProgressPercentage(surahNumber, ayahNumber int) int
}

// StudentLister is the read side of StudentService used by the scheduler.
type StudentLister interface {
	List() []entities.Student
}

// ReportNotifier delivers a rendered report to a chat.
type ReportNotifier interface {
	SendReport(ctx context.Context, chatID int64, text string) error
}
