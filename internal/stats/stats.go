package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/wurkwurk/internal/constants"
	"github.com/julianstephens/wurkwurk/internal/logger"
	"github.com/julianstephens/wurkwurk/internal/models"
	"github.com/julianstephens/wurkwurk/internal/state"
	"github.com/julianstephens/wurkwurk/internal/webapp"
)

// TodayReport is today's counters and timeline.
type TodayReport struct {
	Stats      models.DailyStats
	FocusScore int
	Logs       []models.LogEntry // oldest first
	Task       *models.ActiveTask
}

func Today(s *state.Store) (TodayReport, error) {
	daily, err := s.DailyStats()
	if err != nil {
		return TodayReport{}, err
	}
	logs, err := s.TodayLogs()
	if err != nil {
		return TodayReport{}, err
	}
	r := TodayReport{Stats: daily, FocusScore: daily.FocusScore(), Logs: logs}

	task, ok, err := s.ActiveTask()
	if err != nil {
		return TodayReport{}, err
	}
	if ok {
		r.Task = &task
	}
	return r, nil
}

// WeeklyFetcher fetches the weekly rows from the web app.
type WeeklyFetcher interface {
	FetchWeekly(ctx context.Context, endpoint string) (json.RawMessage, error)
}

// Weekly returns the weekly rows, from the local cache when it is younger
// than constants.WeeklyCacheTTL unless refresh is set. cached reports
// whether the cache was used.
func Weekly(ctx context.Context, s *state.Store, f WeeklyFetcher, refresh bool) (rows []Row, cached bool, err error) {
	if !refresh {
		data, ok, err := s.WeeklyCache(constants.WeeklyCacheTTL)
		if err != nil {
			logger.Warn("Could not read weekly cache", "error", err)
		} else if ok {
			return ParseWeekly(data), true, nil
		}
	}

	settings, err := s.GetSettings()
	if err != nil {
		return nil, false, err
	}
	if settings.WebAppURL == "" {
		return nil, false, webapp.ErrNoURL
	}

	data, err := f.FetchWeekly(ctx, settings.WebAppURL)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", webapp.Message(err), err)
	}
	if err := s.SaveWeeklyCache(data); err != nil {
		logger.Warn("Could not cache weekly data", "error", err)
	}
	return ParseWeekly(data), false, nil
}
