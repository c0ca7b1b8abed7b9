package submission

import (
	"context"

	"github.com/julianstephens/wurkwurk/internal/logger"
	"github.com/julianstephens/wurkwurk/internal/models"
)

// Recorder stores the outcome of a submission in local state.
type Recorder interface {
	RecordSubmission(entry models.LogEntry) error
	SetLastError(msg string) error
}

// SubmitAndRecord submits entry and records the result: counters, MRU and
// last log on success, the last error otherwise. Recording failures are
// logged and never change the result.
func (p *Pipeline) SubmitAndRecord(ctx context.Context, entry models.LogEntry, r Recorder) models.SubmissionResult {
	res := p.Submit(ctx, entry)
	if res.OK() {
		if err := r.RecordSubmission(res.Entry); err != nil {
			logger.Error("Failed to record submission", "error", err)
		}
		logger.Info("Log submitted", "tag", res.Entry.Tag, "gap", res.Entry.Gap.String())
		return res
	}

	logger.Warn("Log submission failed", "kind", res.Kind, "message", res.Message)
	if err := r.SetLastError(res.Message); err != nil {
		logger.Error("Failed to record last error", "error", err)
	}
	return res
}
