// Package scheduler owns the recurring work-log alarm and the one-shot snooze
// alarm, and re-arms them after every relevant event.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/wurkwurk/internal/constants"
	"github.com/julianstephens/wurkwurk/internal/logger"
	"github.com/julianstephens/wurkwurk/internal/models"
	"github.com/julianstephens/wurkwurk/internal/policy"
)

type Status int

const (
	StatusUnarmed Status = iota
	StatusDisabled
	StatusIdle
	StatusPromptPending
	StatusSnoozed
)

func (s Status) String() string {
	switch s {
	case StatusUnarmed:
		return "unarmed"
	case StatusDisabled:
		return "disabled"
	case StatusIdle:
		return "idle"
	case StatusPromptPending:
		return "prompt_pending"
	case StatusSnoozed:
		return "snoozed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// State is a point-in-time view of the scheduler.
type State struct {
	Status      Status
	IntervalMin int
	NextFire    time.Time // zero when nothing is armed
	LastFire    time.Time
}

// SettingsSource provides the current settings.
type SettingsSource interface {
	GetSettings() (models.Settings, error)
}

// PromptFunc asks for a prompt on the active tab.
type PromptFunc func(ctx context.Context, bypassDND bool) error

type Scheduler struct {
	timers   Timers
	settings SettingsSource
	prompt   PromptFunc
	now      func() time.Time

	mu    sync.Mutex
	state State
}

func New(t Timers, s SettingsSource, prompt PromptFunc, now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{timers: t, settings: s, prompt: prompt, now: now}
}

// Arm restarts the cycle with the full interval as the first delay.
func (s *Scheduler) Arm() (Status, error) {
	return s.arm(0)
}

// ArmAfter restarts the cycle with the first fire after d.
func (s *Scheduler) ArmAfter(d time.Duration) (Status, error) {
	if d <= 0 {
		return s.arm(0)
	}
	return s.arm(d)
}

// arm clears the work-log and snooze alarms and, unless the interval is 0,
// schedules the recurring alarm. The midnight alarm is left alone.
func (s *Scheduler) arm(initial time.Duration) (Status, error) {
	s.timers.Clear(constants.AlarmWorkLog)
	s.timers.Clear(constants.AlarmSnooze)

	settings, err := s.settings.GetSettings()
	if err != nil {
		s.setStatus(StatusUnarmed, 0, time.Time{})
		return StatusUnarmed, fmt.Errorf("failed to read settings: %w", err)
	}
	if settings.LogIntervalMin <= 0 {
		logger.Info("Automatic prompting disabled")
		s.setStatus(StatusDisabled, 0, time.Time{})
		return StatusDisabled, nil
	}

	period := time.Duration(settings.LogIntervalMin) * time.Minute
	if initial <= 0 {
		initial = period
	}
	if err := s.timers.Create(constants.AlarmWorkLog, initial, period); err != nil {
		s.setStatus(StatusUnarmed, settings.LogIntervalMin, time.Time{})
		return StatusUnarmed, fmt.Errorf("failed to create %s: %w", constants.AlarmWorkLog, err)
	}
	logger.Debug("Armed work-log alarm", "first", initial, "period", period)
	s.setStatus(StatusIdle, settings.LogIntervalMin, s.now().Add(initial))
	return StatusIdle, nil
}

// OnRecurringFire prompts if the working-hours policy allows it. The alarm is
// periodic and is not re-armed here.
func (s *Scheduler) OnRecurringFire(ctx context.Context) error {
	now := s.now()
	settings, err := s.settings.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}

	s.mu.Lock()
	s.state.LastFire = now
	if s.state.IntervalMin > 0 {
		s.state.NextFire = now.Add(time.Duration(s.state.IntervalMin) * time.Minute)
	}
	s.mu.Unlock()

	if !policy.ShouldPromptNow(now, settings) {
		logger.Debug("Outside working hours, not prompting", "now", now)
		return nil
	}

	s.transition(StatusPromptPending)
	defer s.transition(StatusIdle)
	return s.prompt(ctx, false)
}

// OnSnoozeFire prompts and then restarts the full-period cycle. The user
// asked for this prompt, so working hours are not checked; do-not-disturb
// still applies.
func (s *Scheduler) OnSnoozeFire(ctx context.Context) error {
	s.mu.Lock()
	s.state.LastFire = s.now()
	s.state.Status = StatusPromptPending
	s.mu.Unlock()

	perr := s.prompt(ctx, false)
	if _, err := s.Arm(); err != nil {
		logger.Warn("Failed to re-arm after snooze", "error", err)
	}
	return perr
}

// Snooze replaces the cycle with a one-shot alarm in minutes. minutes <= 0
// skips: the cycle is re-armed and no one-shot is created.
func (s *Scheduler) Snooze(minutes int) (Status, error) {
	if minutes <= 0 {
		return s.Arm()
	}

	s.timers.Clear(constants.AlarmWorkLog)
	s.timers.Clear(constants.AlarmSnooze)
	d := time.Duration(minutes) * time.Minute
	if err := s.timers.Create(constants.AlarmSnooze, d, 0); err != nil {
		s.setStatus(StatusUnarmed, s.interval(), time.Time{})
		return StatusUnarmed, fmt.Errorf("failed to create %s: %w", constants.AlarmSnooze, err)
	}
	logger.Info("Snoozed", "minutes", minutes)
	s.setStatus(StatusSnoozed, s.interval(), s.now().Add(d))
	return StatusSnoozed, nil
}

// OnSettingsChanged re-arms with a one minute probe so a new interval takes
// effect quickly.
func (s *Scheduler) OnSettingsChanged() (Status, error) {
	return s.ArmAfter(constants.SettingsProbeDelay)
}

// HandleAlarm routes a fired alarm. It reports false for alarms it does not own.
func (s *Scheduler) HandleAlarm(ctx context.Context, name string) (bool, error) {
	switch name {
	case constants.AlarmWorkLog:
		return true, s.OnRecurringFire(ctx)
	case constants.AlarmSnooze:
		return true, s.OnSnoozeFire(ctx)
	default:
		return false, nil
	}
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) interval() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IntervalMin
}

func (s *Scheduler) setStatus(st Status, interval int, next time.Time) {
	s.mu.Lock()
	s.state.Status = st
	s.state.IntervalMin = interval
	s.state.NextFire = next
	s.mu.Unlock()
}

// transition changes only the status, and only while the cycle is live.
func (s *Scheduler) transition(st Status) {
	s.mu.Lock()
	if s.state.Status == StatusIdle || s.state.Status == StatusPromptPending {
		s.state.Status = st
	}
	s.mu.Unlock()
}
