// Package dispatcher decides whether a prompt may be shown on a tab and asks
// the collector to show it.
package dispatcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/julianstephens/wurkwurk/internal/constants"
	"github.com/julianstephens/wurkwurk/internal/logger"
	"github.com/julianstephens/wurkwurk/internal/models"
	"github.com/julianstephens/wurkwurk/internal/notifier"
	"github.com/julianstephens/wurkwurk/internal/policy"
)

// Outcome is what a Dispatch call did.
type Outcome int

const (
	OutcomeShown Outcome = iota
	OutcomeNoTab
	OutcomeProtected
	OutcomeBlocked
	OutcomeAlreadyOpen
	// OutcomeFailed means the prompt could not be shown; the error says why.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeShown:
		return "shown"
	case OutcomeNoTab:
		return "no_tab"
	case OutcomeProtected:
		return "protected"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeAlreadyOpen:
		return "already_open"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Prompter displays the collector. Show must not wait for the user; the
// response is delivered separately.
type Prompter interface {
	Show(ctx context.Context, req models.PromptRequest) error
}

// Notifier raises a desktop notification.
type Notifier interface {
	Notify(ctx context.Context, n notifier.Notification) error
}

// State is what the dispatcher reads to build a prompt.
type State interface {
	GetSettings() (models.Settings, error)
	MRUTags() ([]string, error)
	LastLog() (models.LastLog, error)
	TakePrefill() (string, error)
}

type Dispatcher struct {
	state    State
	prompter Prompter
	notifier Notifier

	mu   sync.Mutex
	open map[int]struct{}
}

// New returns a Dispatcher. n may be nil to disable notifications.
func New(s State, p Prompter, n Notifier) *Dispatcher {
	return &Dispatcher{
		state:    s,
		prompter: p,
		notifier: n,
		open:     make(map[int]struct{}),
	}
}

// Dispatch shows the prompt on tab unless the tab is unusable, the host is on
// the do-not-disturb list and bypassDND is false, or a prompt is already open
// there. Manual triggers pass bypassDND=true.
func (d *Dispatcher) Dispatch(ctx context.Context, tab models.Tab, bypassDND bool) (Outcome, error) {
	if tab.ID <= 0 || tab.URL == "" {
		return OutcomeNoTab, nil
	}
	if policy.IsProtectedURL(tab.URL) {
		logger.Debug("Skipping prompt on protected page", "url", tab.URL)
		return OutcomeProtected, nil
	}

	settings, err := d.state.GetSettings()
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to read settings: %w", err)
	}

	host := policy.Hostname(tab.URL)
	if !bypassDND && policy.IsDomainBlocked(host, settings.BlockedDomains) {
		logger.Debug("Prompt suppressed by do-not-disturb", "host", host)
		return OutcomeBlocked, nil
	}

	if !d.markOpen(tab.ID) {
		return OutcomeAlreadyOpen, nil
	}

	req := d.request(tab, host, settings)
	d.notify(ctx, settings)

	if err := d.prompter.Show(ctx, req); err != nil {
		d.Release(tab.ID)
		return OutcomeFailed, fmt.Errorf("failed to show prompt: %w", err)
	}
	return OutcomeShown, nil
}

func (d *Dispatcher) request(tab models.Tab, host string, settings models.Settings) models.PromptRequest {
	req := models.PromptRequest{
		TabID:  tab.ID,
		Sound:  settings.NotificationSound,
		Volume: settings.NotificationVolume,
		Tags:   settings.PromptTags(constants.BreakTag),
	}
	if settings.IsDomainLogEnabled {
		req.Domain = host
	}

	// Missing extras only make the prompt plainer.
	var err error
	if req.MRUTags, err = d.state.MRUTags(); err != nil {
		logger.Warn("Could not read recent tags", "error", err)
	}
	if req.Last, err = d.state.LastLog(); err != nil {
		logger.Warn("Could not read last log", "error", err)
	}
	if req.Prefill, err = d.state.TakePrefill(); err != nil {
		logger.Warn("Could not read prefill", "error", err)
	}
	return req
}

func (d *Dispatcher) notify(ctx context.Context, settings models.Settings) {
	if d.notifier == nil {
		return
	}
	err := d.notifier.Notify(ctx, notifier.Notification{
		Title:   constants.NotificationTitle,
		Message: constants.NotificationMessage,
		Sound:   settings.NotificationSound,
		Volume:  settings.NotificationVolume,
	})
	if err != nil {
		logger.Debug("Desktop notification not sent", "error", err)
	}
}

func (d *Dispatcher) markOpen(tabID int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.open[tabID]; ok {
		return false
	}
	d.open[tabID] = struct{}{}
	return true
}

// Release marks the prompt on tabID as closed.
func (d *Dispatcher) Release(tabID int) {
	d.mu.Lock()
	delete(d.open, tabID)
	d.mu.Unlock()
}

// IsOpen reports whether a prompt is open on tabID.
func (d *Dispatcher) IsOpen(tabID int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.open[tabID]
	return ok
}
