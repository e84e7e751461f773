package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReportScheduler periodically sends a report of all students to a fixed set of chats.
type ReportScheduler struct {
	students StudentLister
	reports  *ReportService
	notifier ReportNotifier
	logger   *zap.Logger

	schedule string
	location *time.Location
	mode     ReportMode
	chatIDs  []int64
}

// NewReportScheduler creates a scheduler. The notifier is set later with SetNotifier.
func NewReportScheduler(
	students StudentLister,
	reports *ReportService,
	schedule string,
	location *time.Location,
	mode ReportMode,
	chatIDs []int64,
	logger *zap.Logger,
) *ReportScheduler {
	if location == nil {
		location = time.UTC
	}
	return &ReportScheduler{
		students: students,
		reports:  reports,
		logger:   logger,
		schedule: schedule,
		location: location,
		mode:     mode,
		chatIDs:  chatIDs,
	}
}

// SetNotifier sets the notifier (called after handler is created).
func (s *ReportScheduler) SetNotifier(notifier ReportNotifier) {
	s.notifier = notifier
}

// Validate checks the cron expression.
func (s *ReportScheduler) Validate() error {
	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("parse report schedule %q: %w", s.schedule, err)
	}
	return nil
}

// Start runs the cron loop until ctx is cancelled.
func (s *ReportScheduler) Start(ctx context.Context) error {
	if err := s.Validate(); err != nil {
		return err
	}

	c := cron.New(cron.WithLocation(s.location))

	_, err := c.AddFunc(s.schedule, func() {
		s.logger.Info("cron triggered: sending scheduled report")
		s.SendNow(ctx)
	})
	if err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}

	c.Start()
	s.logger.Info("report scheduler started",
		zap.String("schedule", s.schedule),
		zap.String("mode", string(s.mode)),
		zap.Int("chats", len(s.chatIDs)),
	)

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("report scheduler stopped")

	return nil
}

// SendNow renders the report once and delivers it to every configured chat.
// It returns the number of chats that received it.
func (s *ReportScheduler) SendNow(ctx context.Context) int {
	if s.notifier == nil {
		s.logger.Error("notifier not set, cannot send report")
		return 0
	}

	text := s.reports.Generate(s.students.List(), s.mode)

	sent := 0
	for _, chatID := range s.chatIDs {
		if err := ctx.Err(); err != nil {
			break
		}
		if err := s.notifier.SendReport(ctx, chatID, text); err != nil {
			s.logger.Error("failed to send scheduled report",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
			continue
		}
		sent++
	}

	s.logger.Info("scheduled report processed", zap.Int("total_sent", sent))
	return sent
}
