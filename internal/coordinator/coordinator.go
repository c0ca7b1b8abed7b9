// Package coordinator runs the daemon's event loop: alarms, prompt responses
// and CLI signals are all handled on one goroutine.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/wurkwurk/internal/constants"
	"github.com/julianstephens/wurkwurk/internal/dispatcher"
	"github.com/julianstephens/wurkwurk/internal/logger"
	"github.com/julianstephens/wurkwurk/internal/models"
	"github.com/julianstephens/wurkwurk/internal/retry"
	"github.com/julianstephens/wurkwurk/internal/scheduler"
	"github.com/julianstephens/wurkwurk/internal/state"
	"github.com/julianstephens/wurkwurk/internal/submission"
	"github.com/julianstephens/wurkwurk/internal/utils"
	"github.com/julianstephens/wurkwurk/internal/watch"
)

// TabSource reports the tab a prompt should be shown on.
type TabSource interface {
	ActiveTab(ctx context.Context) (models.Tab, error)
}

// StaticTab always reports the same tab.
type StaticTab models.Tab

func (t StaticTab) ActiveTab(context.Context) (models.Tab, error) {
	return models.Tab(t), nil
}

// Clock is a Timers implementation that also delivers fires.
type Clock interface {
	scheduler.Timers
	Fired() <-chan scheduler.Fire
	Accept(f scheduler.Fire) bool
}

type Config struct {
	State     *state.Store
	Transport submission.Transport
	Prompter  dispatcher.Prompter
	Notifier  dispatcher.Notifier // optional
	Responses <-chan models.PromptResponse
	Signals   <-chan watch.Signal // optional
	Tabs      TabSource
	Clock     Clock
	Now       func() time.Time
	Retry     *retry.Policy // nil uses submission.DefaultRetryPolicy
}

// Badge mirrors the old toolbar badge: "!" while a prompt is open, "ON"
// while a task timer runs.
type Badge struct {
	Timer bool
	Alarm bool
}

func (b Badge) Text() string {
	switch {
	case b.Alarm:
		return "!"
	case b.Timer:
		return "ON"
	default:
		return ""
	}
}

type Coordinator struct {
	state      *state.Store
	clock      Clock
	tabs       TabSource
	responses  <-chan models.PromptResponse
	signals    <-chan watch.Signal
	now        func() time.Time
	scheduler  *scheduler.Scheduler
	dispatcher *dispatcher.Dispatcher
	pipeline   *submission.Pipeline

	mu    sync.Mutex
	badge Badge
	// alarm is set when a prompt is shown and cleared once any log is
	// submitted or the prompt is answered.
	alarm bool
}

func New(cfg Config) (*Coordinator, error) {
	switch {
	case cfg.State == nil:
		return nil, errors.New("coordinator: state is required")
	case cfg.Transport == nil, cfg.Prompter == nil:
		return nil, errors.New("coordinator: transport and prompter are required")
	case cfg.Clock == nil, cfg.Tabs == nil:
		return nil, errors.New("coordinator: clock and tab source are required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	c := &Coordinator{
		state:     cfg.State,
		clock:     cfg.Clock,
		tabs:      cfg.Tabs,
		responses: cfg.Responses,
		signals:   cfg.Signals,
		now:       cfg.Now,
	}

	opts := []submission.Option{submission.WithClock(cfg.Now)}
	if cfg.Retry != nil {
		opts = append(opts, submission.WithRetryPolicy(*cfg.Retry))
	}
	c.pipeline = submission.New(cfg.Transport, cfg.State, opts...)

	c.dispatcher = dispatcher.New(cfg.State, cfg.Prompter, cfg.Notifier)
	c.scheduler = scheduler.New(cfg.Clock, cfg.State, c.TriggerPrompt, cfg.Now)
	return c, nil
}

func (c *Coordinator) Scheduler() *scheduler.Scheduler { return c.scheduler }

// Start arms the cycle with the short probe delay and schedules the midnight
// reset. Run calls it; it is exported for tests that drive events by hand.
func (c *Coordinator) Start() {
	if _, err := c.scheduler.ArmAfter(constants.SettingsProbeDelay); err != nil {
		logger.Error("Failed to arm work-log alarm", "error", err)
	}
	if err := c.scheduleMidnight(); err != nil {
		logger.Error("Failed to schedule midnight reset", "error", err)
	}
	c.refreshBadge()
}

// Run handles events until ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	c.Start()
	logger.Info("Coordinator running", "status", c.scheduler.State().Status)

	signals := c.signals
	for {
		select {
		case <-ctx.Done():
			logger.Info("Coordinator stopped")
			return nil
		case f := <-c.clock.Fired():
			if !c.clock.Accept(f) {
				continue
			}
			c.HandleAlarm(ctx, f.Name)
		case resp := <-c.responses:
			c.HandleResponse(ctx, resp)
		case sig, ok := <-signals:
			if !ok {
				signals = nil
				continue
			}
			c.HandleSignal(ctx, sig)
		}
	}
}

// HandleAlarm routes one accepted alarm fire.
func (c *Coordinator) HandleAlarm(ctx context.Context, name string) {
	if name == constants.AlarmMidnight {
		c.midnightReset()
		return
	}
	handled, err := c.scheduler.HandleAlarm(ctx, name)
	if err != nil {
		logger.Warn("Alarm handler failed", "alarm", name, "error", err)
	}
	if !handled {
		logger.Debug("Ignoring unknown alarm", "alarm", name)
	}
}

// TriggerPrompt dispatches a prompt on the active tab.
func (c *Coordinator) TriggerPrompt(ctx context.Context, bypassDND bool) error {
	tab, err := c.tabs.ActiveTab(ctx)
	if err != nil {
		return fmt.Errorf("failed to find active tab: %w", err)
	}
	outcome, err := c.dispatcher.Dispatch(ctx, tab, bypassDND)
	if err != nil {
		return fmt.Errorf("prompt dispatch %s: %w", outcome, err)
	}
	logger.Debug("Prompt dispatch", "tab", tab.ID, "outcome", outcome, "bypass", bypassDND)
	if outcome == dispatcher.OutcomeShown {
		c.setAlarm(true)
	}
	c.refreshBadge()
	return nil
}

// HandleResponse acts on the user's answer and returns the submission result.
// Non-submitting actions return a zero result.
func (c *Coordinator) HandleResponse(ctx context.Context, resp models.PromptResponse) models.SubmissionResult {
	c.dispatcher.Release(resp.TabID)
	c.setAlarm(false)
	defer c.refreshBadge()

	var res models.SubmissionResult
	switch resp.Action {
	case models.ActionSubmit:
		res = c.Submit(ctx, resp.Entry)
	case models.ActionSubmitAndSnooze:
		res = c.Submit(ctx, resp.Entry)
		if res.OK() {
			minutes := resp.Minutes
			if minutes <= 0 {
				minutes = constants.LogAndSnoozeMinutes
			}
			c.snooze(minutes)
		}
	case models.ActionSnooze:
		c.snooze(resp.Minutes)
	case models.ActionDismiss:
		c.snooze(constants.CloseSnoozeMinutes)
	default:
		logger.Warn("Unknown prompt action", "action", resp.Action)
	}

	return res
}

// Submit runs the pipeline and records the outcome in local state.
func (c *Coordinator) Submit(ctx context.Context, entry models.LogEntry) models.SubmissionResult {
	return c.pipeline.SubmitAndRecord(ctx, entry, c.state)
}

// HandleSignal reacts to a signal sent by another wurkwurk process.
func (c *Coordinator) HandleSignal(ctx context.Context, sig watch.Signal) {
	logger.Debug("Signal received", "kind", sig.Kind)
	switch sig.Kind {
	case watch.KindSettings:
		if _, err := c.scheduler.OnSettingsChanged(); err != nil {
			logger.Warn("Failed to re-arm after settings change", "error", err)
		}
	case watch.KindPrompt:
		if err := c.TriggerPrompt(ctx, true); err != nil {
			logger.Warn("Manual prompt failed", "error", err)
		}
	case watch.KindSnooze:
		c.snooze(sig.Minutes)
	case watch.KindTask:
		c.refreshBadge()
	case watch.KindLogged:
		c.setAlarm(false)
		c.refreshBadge()
	default:
		logger.Warn("Unknown signal", "kind", sig.Kind)
	}
}

func (c *Coordinator) snooze(minutes int) {
	if _, err := c.scheduler.Snooze(minutes); err != nil {
		logger.Warn("Snooze failed", "minutes", minutes, "error", err)
	}
}

func (c *Coordinator) midnightReset() {
	if err := c.state.ResetDaily(); err != nil {
		logger.Error("Midnight reset failed", "error", err)
	} else {
		logger.Info("Daily counters reset")
	}
	if err := c.scheduleMidnight(); err != nil {
		logger.Error("Failed to schedule midnight reset", "error", err)
	}
}

func (c *Coordinator) scheduleMidnight() error {
	settings, err := c.state.GetSettings()
	if err != nil {
		return err
	}
	now, err := utils.InTimezone(c.now(), settings.Timezone)
	if err != nil {
		return err
	}
	return c.clock.Create(constants.AlarmMidnight, utils.NextMidnight(now).Sub(now), 0)
}

// Badge returns the current badge state.
func (c *Coordinator) Badge() Badge {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.badge
}

func (c *Coordinator) setAlarm(on bool) {
	c.mu.Lock()
	c.alarm = on
	c.mu.Unlock()
}

func (c *Coordinator) refreshBadge() {
	_, running, err := c.state.ActiveTask()
	if err != nil {
		logger.Warn("Could not read active task", "error", err)
	}
	c.mu.Lock()
	b := Badge{Timer: running, Alarm: c.alarm}
	changed := b != c.badge
	c.badge = b
	c.mu.Unlock()
	if changed {
		logger.Debug("Badge changed", "text", b.Text())
	}
}
