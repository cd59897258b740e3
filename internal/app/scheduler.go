package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReminderSender рассылает напоминания о скором начале занятий
type ReminderSender interface {
	SendDue(ctx context.Context) (int, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	cron      *cron.Cron
	reminders ReminderSender
	spec      string
	logger    *zap.Logger
}

// NewScheduler создаёт новый планировщик. spec - расписание в формате cron.
func NewScheduler(reminders ReminderSender, spec string, loc *time.Location, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		reminders: reminders,
		spec:      spec,
		logger:    logger,
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Starting background scheduler", zap.String("reminder_cron", s.spec))

	if _, err := s.cron.AddFunc(s.spec, func() { s.sendReminders(ctx) }); err != nil {
		return fmt.Errorf("add reminder job: %w", err)
	}

	// Первый запуск сразу при старте
	go s.sendReminders(ctx)

	s.cron.Start()
	return nil
}

// Stop останавливает фоновые задачи и ждёт текущую
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendReminders(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	sent, err := s.reminders.SendDue(ctx)
	if err != nil {
		s.logger.Error("Failed to send reminders", zap.Error(err))
		return
	}

	if sent > 0 {
		s.logger.Info("Reminders sent", zap.Int("count", sent))
	}
}
