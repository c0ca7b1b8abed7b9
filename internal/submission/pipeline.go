// Package submission turns a user's log entry into a submitted, enriched
// record. Submit always resolves to a models.SubmissionResult.
package submission

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/wurkwurk/internal/constants"
	"github.com/julianstephens/wurkwurk/internal/logger"
	"github.com/julianstephens/wurkwurk/internal/models"
	"github.com/julianstephens/wurkwurk/internal/retry"
	"github.com/julianstephens/wurkwurk/internal/utils"
	"github.com/julianstephens/wurkwurk/internal/webapp"
)

// Transport delivers one payload to the web app.
type Transport interface {
	PostLog(ctx context.Context, endpoint string, payload models.LogPayload) error
}

// History is the part of the state store the pipeline reads.
type History interface {
	GetSettings() (models.Settings, error)
	LastEntryForDate(date string) (models.LogEntry, bool, error)
}

// DefaultRetryPolicy retries only rate-limited attempts: 3 attempts, waiting 2s then 4s.
func DefaultRetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: constants.SubmitMaxAttempts,
		BaseDelay:   constants.SubmitBaseDelay,
		Multiplier:  constants.SubmitBackoffMultiplier,
		Retryable:   webapp.IsRateLimited,
	}
}

type Pipeline struct {
	transport Transport
	history   History
	policy    retry.Policy
	now       func() time.Time
}

type Option func(*Pipeline)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithRetryPolicy replaces DefaultRetryPolicy.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(p *Pipeline) { p.policy = policy }
}

func New(t Transport, h History, opts ...Option) *Pipeline {
	p := &Pipeline{
		transport: t,
		history:   h,
		policy:    DefaultRetryPolicy(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit validates entry, derives time, date, gap and fullTimestamp, and
// sends it. Only rate-limited responses are retried. The caller records the
// returned entry in local state.
func (p *Pipeline) Submit(ctx context.Context, entry models.LogEntry) models.SubmissionResult {
	if strings.TrimSpace(entry.Text) == "" {
		return models.SubmissionResult{
			Kind:    models.ResultValidationError,
			Entry:   entry,
			Message: "Log text cannot be empty.",
		}
	}

	settings, err := p.history.GetSettings()
	if err != nil {
		return models.SubmissionResult{
			Kind:    models.ResultConfigurationError,
			Entry:   entry,
			Message: "Could not read settings: " + err.Error(),
			Err:     err,
		}
	}
	if settings.WebAppURL == "" {
		return models.SubmissionResult{
			Kind:    models.ResultConfigurationError,
			Entry:   entry,
			Message: webapp.Message(webapp.ErrNoURL),
			Err:     webapp.ErrNoURL,
		}
	}

	enriched, err := p.enrich(entry, settings)
	if err != nil {
		return models.SubmissionResult{
			Kind:    models.ResultConfigurationError,
			Entry:   entry,
			Message: err.Error(),
			Err:     err,
		}
	}

	payload := enriched.Payload()
	res, err := retry.Do(ctx, p.policy, func(ctx context.Context, attempt int) error {
		err := p.transport.PostLog(ctx, settings.WebAppURL, payload)
		if err != nil {
			logger.Warn("Log submission attempt failed", "attempt", attempt, "error", err)
		}
		return err
	})

	switch {
	case err == nil:
		logger.Debug("Log submitted", "id", enriched.ID, "attempts", res.Attempts)
		return models.SubmissionResult{Kind: models.ResultSuccess, Entry: enriched, Attempts: res.Attempts}
	case res.Exhausted && webapp.IsRateLimited(err):
		return models.SubmissionResult{
			Kind:     models.ResultRateLimited,
			Entry:    entry,
			Message:  webapp.Message(err),
			Attempts: res.Attempts,
			Err:      err,
		}
	default:
		return models.SubmissionResult{
			Kind:     models.ResultTransportError,
			Entry:    entry,
			Message:  webapp.Message(err),
			Attempts: res.Attempts,
			Err:      err,
		}
	}
}

// enrich fills the derived fields using the configured timezone. The gap is
// taken only from an entry logged earlier on the same local date.
func (p *Pipeline) enrich(entry models.LogEntry, settings models.Settings) (models.LogEntry, error) {
	now, err := utils.InTimezone(p.now(), settings.Timezone)
	if err != nil {
		return models.LogEntry{}, err
	}

	entry.ID = uuid.NewString()
	entry.Time = now.Format(constants.TimeFormat)
	entry.Date = now.Format(constants.DateFormat)
	entry.FullTimestamp = utils.Timestamp(now)
	entry.Gap = models.Gap{}

	prev, ok, err := p.history.LastEntryForDate(entry.Date)
	if err != nil {
		logger.Warn("Could not read previous entry, gap not computed", "error", err)
		return entry, nil
	}
	if !ok {
		return entry, nil
	}
	prevAt, err := utils.ParseTimestamp(prev.FullTimestamp)
	if err != nil {
		logger.Warn("Previous entry has an unreadable timestamp", "timestamp", prev.FullTimestamp, "error", err)
		return entry, nil
	}
	entry.Gap = models.GapMinutes(utils.MinutesBetween(prevAt, now))
	return entry, nil
}
