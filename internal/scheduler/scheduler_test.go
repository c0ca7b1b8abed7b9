package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/wurkwurk/internal/constants"
	"github.com/julianstephens/wurkwurk/internal/models"
)

type timerCall struct {
	name   string
	delay  time.Duration
	period time.Duration
}

type fakeTimers struct {
	active  map[string]timerCall
	created []timerCall
	err     error
}

func newFakeTimers() *fakeTimers {
	return &fakeTimers{active: make(map[string]timerCall)}
}

func (f *fakeTimers) Create(name string, delay, period time.Duration) error {
	if f.err != nil {
		return f.err
	}
	c := timerCall{name, delay, period}
	f.active[name] = c
	f.created = append(f.created, c)
	return nil
}

func (f *fakeTimers) Clear(name string) {
	delete(f.active, name)
}

type fakeSettings struct {
	s models.Settings
}

func (f *fakeSettings) GetSettings() (models.Settings, error) { return f.s, nil }

type promptRecorder struct {
	calls []bool
}

func (p *promptRecorder) prompt(_ context.Context, bypass bool) error {
	p.calls = append(p.calls, bypass)
	return nil
}

// Wednesday 2026-03-04.
var wednesday10 = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

func newTestScheduler(now time.Time) (*Scheduler, *fakeTimers, *fakeSettings, *promptRecorder) {
	settings := models.DefaultSettings()
	settings.Timezone = "UTC"
	fs := &fakeSettings{s: settings}
	ft := newFakeTimers()
	pr := &promptRecorder{}
	return New(ft, fs, pr.prompt, func() time.Time { return now }), ft, fs, pr
}

func TestArm(t *testing.T) {
	s, ft, _, _ := newTestScheduler(wednesday10)
	ft.active[constants.AlarmSnooze] = timerCall{name: constants.AlarmSnooze}
	ft.active[constants.AlarmMidnight] = timerCall{name: constants.AlarmMidnight}

	st, err := s.Arm()
	if err != nil || st != StatusIdle {
		t.Fatalf("Arm() = %s, %v", st, err)
	}
	got := ft.active[constants.AlarmWorkLog]
	if got.delay != 15*time.Minute || got.period != 15*time.Minute {
		t.Errorf("work-log alarm = %+v, want 15m/15m", got)
	}
	if _, ok := ft.active[constants.AlarmSnooze]; ok {
		t.Error("Arm() should clear the snooze alarm")
	}
	if _, ok := ft.active[constants.AlarmMidnight]; !ok {
		t.Error("Arm() must not clear the midnight alarm")
	}
	if next := s.State().NextFire; !next.Equal(wednesday10.Add(15 * time.Minute)) {
		t.Errorf("NextFire = %v", next)
	}
}

func TestArm_Disabled(t *testing.T) {
	s, ft, fs, _ := newTestScheduler(wednesday10)
	fs.s.LogIntervalMin = 0

	st, err := s.Arm()
	if err != nil || st != StatusDisabled {
		t.Fatalf("Arm() = %s, %v", st, err)
	}
	if len(ft.active) != 0 {
		t.Errorf("active alarms = %v, want none", ft.active)
	}
}

func TestArm_TimerFailure(t *testing.T) {
	s, ft, _, _ := newTestScheduler(wednesday10)
	ft.err = errors.New("no timers")

	st, err := s.Arm()
	if err == nil || st != StatusUnarmed {
		t.Fatalf("Arm() = %s, %v; want unarmed with error", st, err)
	}
}

func TestOnSettingsChanged(t *testing.T) {
	s, ft, fs, _ := newTestScheduler(wednesday10)
	fs.s.LogIntervalMin = 45

	if st, _ := s.OnSettingsChanged(); st != StatusIdle {
		t.Fatalf("status = %s, want idle", st)
	}
	got := ft.active[constants.AlarmWorkLog]
	if got.delay != time.Minute || got.period != 45*time.Minute {
		t.Errorf("work-log alarm = %+v, want 1m/45m", got)
	}

	fs.s.LogIntervalMin = 0
	if st, _ := s.OnSettingsChanged(); st != StatusDisabled {
		t.Errorf("status = %s, want disabled", st)
	}
}

func TestSnooze(t *testing.T) {
	s, ft, _, _ := newTestScheduler(wednesday10)
	s.Arm()

	st, err := s.Snooze(10)
	if err != nil || st != StatusSnoozed {
		t.Fatalf("Snooze(10) = %s, %v", st, err)
	}
	if _, ok := ft.active[constants.AlarmWorkLog]; ok {
		t.Error("Snooze should cancel the work-log alarm")
	}
	got := ft.active[constants.AlarmSnooze]
	if got.delay != 10*time.Minute || got.period != 0 {
		t.Errorf("snooze alarm = %+v, want one-shot 10m", got)
	}
}

func TestSnooze_SkipMatchesArm(t *testing.T) {
	for _, minutes := range []int{0, -1} {
		s, ft, _, _ := newTestScheduler(wednesday10)
		s.Snooze(30)
		ft.created = nil

		st, err := s.Snooze(minutes)
		if err != nil || st != StatusIdle {
			t.Fatalf("Snooze(%d) = %s, %v", minutes, st, err)
		}
		for _, c := range ft.created {
			if c.name == constants.AlarmSnooze {
				t.Errorf("Snooze(%d) created a one-shot alarm", minutes)
			}
		}

		ref, rt, _, _ := newTestScheduler(wednesday10)
		ref.Arm()
		if len(ft.active) != len(rt.active) || ft.active[constants.AlarmWorkLog] != rt.active[constants.AlarmWorkLog] {
			t.Errorf("Snooze(%d) alarms = %v, Arm() alarms = %v", minutes, ft.active, rt.active)
		}
		if s.State() != ref.State() {
			t.Errorf("Snooze(%d) state = %+v, Arm() state = %+v", minutes, s.State(), ref.State())
		}
	}
}

func TestOnRecurringFire(t *testing.T) {
	tests := []struct {
		name       string
		now        time.Time
		wantPrompt bool
	}{
		{"working hours", wednesday10, true},
		{"saturday", time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC), false},
		{"end hour excluded", time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC), false},
		{"start hour included", time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _, pr := newTestScheduler(tt.now)
			s.Arm()
			if err := s.OnRecurringFire(context.Background()); err != nil {
				t.Fatalf("OnRecurringFire() error = %v", err)
			}
			if got := len(pr.calls) == 1; got != tt.wantPrompt {
				t.Errorf("prompted = %v, want %v", got, tt.wantPrompt)
			}
			if len(pr.calls) == 1 && pr.calls[0] {
				t.Error("scheduled prompts must not bypass do-not-disturb")
			}
			if st := s.State().Status; st != StatusIdle {
				t.Errorf("status = %s, want idle", st)
			}
		})
	}
}

func TestOnSnoozeFire(t *testing.T) {
	// Saturday: snooze fires prompt regardless of working hours.
	s, ft, _, pr := newTestScheduler(time.Date(2026, 3, 7, 20, 0, 0, 0, time.UTC))
	s.Snooze(5)

	handled, err := s.HandleAlarm(context.Background(), constants.AlarmSnooze)
	if !handled || err != nil {
		t.Fatalf("HandleAlarm() = %v, %v", handled, err)
	}
	if len(pr.calls) != 1 || pr.calls[0] {
		t.Errorf("prompt calls = %v, want one without bypass", pr.calls)
	}
	got := ft.active[constants.AlarmWorkLog]
	if got.delay != 15*time.Minute {
		t.Errorf("work-log alarm = %+v, want full period re-arm", got)
	}
	if st := s.State().Status; st != StatusIdle {
		t.Errorf("status = %s, want idle", st)
	}
}

func TestHandleAlarm_Unknown(t *testing.T) {
	s, _, _, pr := newTestScheduler(wednesday10)
	handled, _ := s.HandleAlarm(context.Background(), constants.AlarmMidnight)
	if handled || len(pr.calls) != 0 {
		t.Errorf("midnight alarm should not be handled by the scheduler")
	}
}
