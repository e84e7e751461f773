package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/hafiz-bot/internal/domain/entities"
)

type staticLister []entities.Student

func (l staticLister) List() []entities.Student { return l }

type recordingNotifier struct {
	mu    sync.Mutex
	sent  map[int64]string
	fails map[int64]bool
}

func (n *recordingNotifier) SendReport(_ context.Context, chatID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.fails[chatID] {
		return errors.New("chat not found")
	}
	if n.sent == nil {
		n.sent = map[int64]string{}
	}
	n.sent[chatID] = text
	return nil
}

func newTestScheduler(schedule string, chatIDs ...int64) *ReportScheduler {
	return NewReportScheduler(
		staticLister(DemoStudents()),
		newTestReportService(),
		schedule,
		time.UTC,
		ReportDetailed,
		chatIDs,
		zap.NewNop(),
	)
}

func TestReportSchedulerValidate(t *testing.T) {
	tests := []struct {
		schedule string
		wantErr  bool
	}{
		{schedule: "0 20 * * *"},
		{schedule: "@daily"},
		{schedule: "*/15 * * * *"},
		{schedule: "", wantErr: true},
		{schedule: "every evening", wantErr: true},
		{schedule: "0 25 * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			err := newTestScheduler(tt.schedule).Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReportSchedulerSendNow(t *testing.T) {
	s := newTestScheduler("@daily", 10, 20, 30)
	n := &recordingNotifier{fails: map[int64]bool{20: true}}
	s.SetNotifier(n)

	sent := s.SendNow(context.Background())

	assert.Equal(t, 2, sent)
	require.Len(t, n.sent, 2)
	assert.Contains(t, n.sent[10], "(مفصل)")
	assert.Contains(t, n.sent[10], "👥 عدد الطلاب: 5")
	assert.Equal(t, n.sent[10], n.sent[30])
}

func TestReportSchedulerSendNowWithoutNotifier(t *testing.T) {
	assert.Equal(t, 0, newTestScheduler("@daily", 10).SendNow(context.Background()))
}

func TestReportSchedulerSendNowCancelled(t *testing.T) {
	s := newTestScheduler("@daily", 10, 20)
	n := &recordingNotifier{}
	s.SetNotifier(n)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, 0, s.SendNow(ctx))
	assert.Empty(t, n.sent)
}

func TestReportSchedulerStartStopsOnCancel(t *testing.T) {
	s := newTestScheduler("@daily", 10)
	s.SetNotifier(&recordingNotifier{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestReportSchedulerStartRejectsBadSchedule(t *testing.T) {
	err := newTestScheduler("nope").Start(context.Background())
	assert.Error(t, err)
}
