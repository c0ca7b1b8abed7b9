package cli

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/wurkwurk/internal/constants"
	"github.com/julianstephens/wurkwurk/internal/keyring"
	"github.com/julianstephens/wurkwurk/internal/logger"
	"github.com/julianstephens/wurkwurk/internal/models"
	"github.com/julianstephens/wurkwurk/internal/retry"
	"github.com/julianstephens/wurkwurk/internal/state"
	"github.com/julianstephens/wurkwurk/internal/storage"
	"github.com/julianstephens/wurkwurk/internal/submission"
	"github.com/julianstephens/wurkwurk/internal/watch"
	"github.com/julianstephens/wurkwurk/internal/webapp"
)

type Context struct {
	Store     storage.Provider
	ConfigDir string
	Debug     bool

	// HTTPClient replaces the keyring-authenticated web app client when set.
	HTTPClient *http.Client
	// Now replaces time.Now when set.
	Now func() time.Time
	// Retry replaces the submission retry policy when set.
	Retry *retry.Policy

	state *state.Store
}

// State returns the state facade over Store. The store must be loaded.
func (c *Context) State() *state.Store {
	if c.state == nil {
		now := c.Now
		if now == nil {
			now = time.Now
		}
		c.state = state.New(c.Store, now)
	}
	return c.state
}

// WebApp returns a web app client, authenticated with the keyring token if
// one is stored.
func (c *Context) WebApp(ctx context.Context) *webapp.Client {
	if c.HTTPClient != nil {
		return webapp.NewClientWithHTTP(c.HTTPClient)
	}
	token, err := keyring.GetWebAppToken()
	if err != nil {
		logger.Debug("No web app token available", "error", err)
	}
	return webapp.NewClient(ctx, token)
}

// Submit sends entry from this process and records the outcome.
func (c *Context) Submit(ctx context.Context, entry models.LogEntry) models.SubmissionResult {
	var opts []submission.Option
	if c.Now != nil {
		opts = append(opts, submission.WithClock(c.Now))
	}
	if c.Retry != nil {
		opts = append(opts, submission.WithRetryPolicy(*c.Retry))
	}
	s := c.State()
	return submission.New(c.WebApp(ctx), s, opts...).SubmitAndRecord(ctx, entry, s)
}

func (c *Context) SignalDir() string {
	return filepath.Join(c.ConfigDir, constants.SignalDirName)
}

// Signal tells a running daemon about a change. A daemon that is not running
// simply never reads it.
func (c *Context) Signal(kind watch.Kind, minutes int) {
	if err := watch.Send(c.SignalDir(), watch.Signal{Kind: kind, Minutes: minutes}); err != nil {
		logger.Warn("Failed to signal daemon", "kind", kind, "error", err)
	}
}

// ParseWeekdays parses a comma-separated list of weekday names or numbers
// (0=Sunday).
func ParseWeekdays(s string) ([]time.Weekday, error) {
	dayMap := map[string]time.Weekday{
		"sun": time.Sunday, "sunday": time.Sunday,
		"mon": time.Monday, "monday": time.Monday,
		"tue": time.Tuesday, "tuesday": time.Tuesday,
		"wed": time.Wednesday, "wednesday": time.Wednesday,
		"thu": time.Thursday, "thursday": time.Thursday,
		"fri": time.Friday, "friday": time.Friday,
		"sat": time.Saturday, "saturday": time.Saturday,
	}

	var weekdays []time.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		if wd, ok := dayMap[part]; ok {
			weekdays = append(weekdays, wd)
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 || num > 6 {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		weekdays = append(weekdays, time.Weekday(num))
	}
	return weekdays, nil
}

// FormatWeekdays renders days as short names, e.g. "Mon,Tue".
func FormatWeekdays(days []time.Weekday) string {
	names := make([]string, 0, len(days))
	for _, d := range days {
		names = append(names, d.String()[:3])
	}
	return strings.Join(names, ",")
}
