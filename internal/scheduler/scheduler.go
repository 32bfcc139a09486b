package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// WeeklySchedule 每周运行的时间点
type WeeklySchedule struct {
	Weekday  time.Weekday
	Hour     int
	Minute   int
	Location *time.Location
}

// CronSpec renders the schedule as a cron expression.
func (s WeeklySchedule) CronSpec() string {
	return fmt.Sprintf("%d %d * * %d", s.Minute, s.Hour, int(s.Weekday))
}

func (s WeeklySchedule) String() string {
	return fmt.Sprintf("%s %02d:%02d %s",
		strings.ToLower(s.Weekday.String()), s.Hour, s.Minute, s.Location.String())
}

// Scheduler 每周定时触发扫描管线
// Owns at most one cron entry; Install and Remove are both idempotent so
// repeated installs never create duplicate triggers.
type Scheduler struct {
	cron    *cron.Cron
	entryID cron.EntryID
	active  bool
	logger  *zap.Logger
}

// NewScheduler 创建调度器
func NewScheduler(loc *time.Location, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		logger: logger,
	}
}

// Install registers the weekly job, replacing any existing entry first.
func (s *Scheduler) Install(schedule WeeklySchedule, job func()) error {
	s.Remove()

	id, err := s.cron.AddFunc(schedule.CronSpec(), job)
	if err != nil {
		return fmt.Errorf("failed to install schedule %q: %w", schedule.CronSpec(), err)
	}
	s.entryID = id
	s.active = true

	s.logger.Info("Installed weekly schedule",
		zap.String("schedule", schedule.String()),
		zap.String("cron_spec", schedule.CronSpec()),
	)
	return nil
}

// Remove drops the installed entry if there is one.
func (s *Scheduler) Remove() {
	if !s.active {
		return
	}
	s.cron.Remove(s.entryID)
	s.active = false
	s.logger.Info("Removed weekly schedule")
}

// Installed reports whether a trigger is currently registered.
func (s *Scheduler) Installed() bool { return s.active }

// Entries returns the registered cron entries (for inspection).
func (s *Scheduler) Entries() []cron.Entry { return s.cron.Entries() }

// Start 启动调度循环
func (s *Scheduler) Start() { s.cron.Start() }

// Stop 停止调度循环，等待在途任务结束
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
