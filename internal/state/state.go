// Package state is the read-modify-write layer over a storage.Provider:
// settings with defaults, daily counters, MRU tags, recent logs, the task
// timer and the weekly data cache.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/julianstephens/wurkwurk/internal/constants"
	"github.com/julianstephens/wurkwurk/internal/models"
	"github.com/julianstephens/wurkwurk/internal/storage"
	"github.com/julianstephens/wurkwurk/internal/utils"
)

// Store is the facade over local state. Every read-modify-write goes
// through Provider.UpdateStates, which excludes other writers of the same
// store, including the daemon and CLI running as separate processes.
type Store struct {
	p   storage.Provider
	now func() time.Time
}

// New wraps p. A nil now uses time.Now.
func New(p storage.Provider, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{p: p, now: now}
}

func (s *Store) GetSettings() (models.Settings, error) {
	return s.p.GetSettings()
}

// SaveSettings validates before writing.
func (s *Store) SaveSettings(settings models.Settings) error {
	if err := models.ValidateSettings(settings); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return s.p.SaveSettings(settings)
}

// today returns the current date in the configured timezone.
func (s *Store) today() (string, error) {
	settings, err := s.p.GetSettings()
	if err != nil {
		return "", fmt.Errorf("reading settings: %w", err)
	}
	return utils.DateIn(s.now(), settings.Timezone)
}

// snapshot holds stored values by key. Missing keys are absent.
type snapshot map[string]string

func (v snapshot) str(key, def string) string {
	if val, ok := v[key]; ok {
		return val
	}
	return def
}

func (v snapshot) int(key string) (int, error) {
	n, err := strconv.Atoi(v.str(key, "0"))
	if err != nil {
		return 0, fmt.Errorf("state %s is not a number: %w", key, err)
	}
	return n, nil
}

func decode[T any](v snapshot, key string, def T) (T, error) {
	raw := v.str(key, "")
	if raw == "" {
		return def, nil
	}
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return def, fmt.Errorf("decoding state %s: %w", key, err)
	}
	return out, nil
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// read is an unlocked point-in-time read for callers that do not write back.
func (s *Store) read(keys ...string) (snapshot, error) {
	v := make(snapshot, len(keys))
	for _, key := range keys {
		val, err := s.p.GetState(key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		v[key] = val
	}
	return v, nil
}

// update reads keys under the store's write lock and writes what fn returns.
func (s *Store) update(keys []string, fn func(snapshot) (map[string]string, error)) error {
	return s.p.UpdateStates(keys, func(current map[string]string) (map[string]string, error) {
		return fn(snapshot(current))
	})
}

// dailyKeys are the per-day values, read and written together.
var dailyKeys = []string{
	constants.StateStatsDate,
	constants.StateLogsToday,
	constants.StateDriftedLogs,
	constants.StateTasksCompleted,
	constants.StateRecentLogs,
}

func withKeys(extra ...string) []string {
	return append(append([]string{}, dailyKeys...), extra...)
}

// daily is the per-day part of local state.
type daily struct {
	date   string
	stats  models.DailyStats
	recent []models.LogEntry // newest-first
}

// loadDaily decodes the counters and recent logs, treating values from an
// earlier day as already reset.
func loadDaily(v snapshot, today string) (daily, error) {
	d := daily{date: today, stats: models.DailyStats{Date: today}}
	if v.str(constants.StateStatsDate, "") != today {
		return d, nil
	}

	var err error
	if d.stats.LogsToday, err = v.int(constants.StateLogsToday); err != nil {
		return daily{}, err
	}
	if d.stats.DriftedLogs, err = v.int(constants.StateDriftedLogs); err != nil {
		return daily{}, err
	}
	if d.stats.TasksCompleted, err = v.int(constants.StateTasksCompleted); err != nil {
		return daily{}, err
	}
	if d.recent, err = decode(v, constants.StateRecentLogs, []models.LogEntry{}); err != nil {
		return daily{}, err
	}
	return d, nil
}

func (s *Store) readDaily() (daily, error) {
	today, err := s.today()
	if err != nil {
		return daily{}, err
	}
	v, err := s.read(dailyKeys...)
	if err != nil {
		return daily{}, err
	}
	return loadDaily(v, today)
}

func (d daily) values() (map[string]string, error) {
	recent, err := encodeJSON(d.recent)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		constants.StateStatsDate:      d.date,
		constants.StateLogsToday:      strconv.Itoa(d.stats.LogsToday),
		constants.StateDriftedLogs:    strconv.Itoa(d.stats.DriftedLogs),
		constants.StateTasksCompleted: strconv.Itoa(d.stats.TasksCompleted),
		constants.StateRecentLogs:     recent,
	}, nil
}

func (d *daily) add(entry models.LogEntry) {
	d.stats.LogsToday++
	if entry.Drifted {
		d.stats.DriftedLogs++
	}
	buf := utils.NewBounded(constants.MaxRecentLogs, d.recent)
	buf.Push(entry)
	d.recent = buf.Items
}

// DailyStats returns today's counters.
func (s *Store) DailyStats() (models.DailyStats, error) {
	d, err := s.readDaily()
	if err != nil {
		return models.DailyStats{}, err
	}
	return d.stats, nil
}

// LastEntryForDate returns the most recent entry if it was logged on date.
// Entries from any other day are never returned.
func (s *Store) LastEntryForDate(date string) (models.LogEntry, bool, error) {
	v, err := s.read(constants.StateRecentLogs)
	if err != nil {
		return models.LogEntry{}, false, err
	}
	recent, err := decode(v, constants.StateRecentLogs, []models.LogEntry{})
	if err != nil {
		return models.LogEntry{}, false, err
	}
	if len(recent) == 0 || recent[0].Date != date || recent[0].FullTimestamp == "" {
		return models.LogEntry{}, false, nil
	}
	return recent[0], true, nil
}

// TodayLogs returns today's entries oldest-first.
func (s *Store) TodayLogs() ([]models.LogEntry, error) {
	d, err := s.readDaily()
	if err != nil {
		return nil, err
	}
	out := make([]models.LogEntry, 0, len(d.recent))
	for i := len(d.recent) - 1; i >= 0; i-- {
		out = append(out, d.recent[i])
	}
	return out, nil
}

// IncrementDailyCounters counts entry and adds it to the recent logs.
func (s *Store) IncrementDailyCounters(entry models.LogEntry) error {
	today, err := s.today()
	if err != nil {
		return err
	}
	return s.update(dailyKeys, func(v snapshot) (map[string]string, error) {
		d, err := loadDaily(v, today)
		if err != nil {
			return nil, err
		}
		d.add(entry)
		return d.values()
	})
}

// MRUTags returns the most recently used tags, newest first.
func (s *Store) MRUTags() ([]string, error) {
	v, err := s.read(constants.StateMRUTags)
	if err != nil {
		return nil, err
	}
	return decode(v, constants.StateMRUTags, []string{})
}

func pushTag(v snapshot, tag string) (string, error) {
	tags, err := decode(v, constants.StateMRUTags, []string{})
	if err != nil {
		return "", err
	}
	buf := utils.NewBounded(constants.MaxMRUTags, tags)
	buf.PushUnique(tag, func(a, b string) bool { return a == b })
	return encodeJSON(buf.Items)
}

// UpdateMostRecentTags moves tag to the front of the MRU list. Empty tags are ignored.
func (s *Store) UpdateMostRecentTags(tag string) error {
	if tag == "" {
		return nil
	}
	return s.update([]string{constants.StateMRUTags}, func(v snapshot) (map[string]string, error) {
		tags, err := pushTag(v, tag)
		if err != nil {
			return nil, err
		}
		return map[string]string{constants.StateMRUTags: tags}, nil
	})
}

// RecordSubmission stores everything that follows a successful submission
// in one locked update: last log, MRU tags, counters, recent logs and a
// cleared error.
func (s *Store) RecordSubmission(entry models.LogEntry) error {
	today, err := s.today()
	if err != nil {
		return err
	}
	return s.update(withKeys(constants.StateMRUTags), func(v snapshot) (map[string]string, error) {
		d, err := loadDaily(v, today)
		if err != nil {
			return nil, err
		}
		d.add(entry)
		values, err := d.values()
		if err != nil {
			return nil, err
		}
		if entry.Tag != "" {
			if values[constants.StateMRUTags], err = pushTag(v, entry.Tag); err != nil {
				return nil, err
			}
		}
		values[constants.StateLastLog] = entry.Text
		values[constants.StateLastTag] = entry.Tag
		values[constants.StateLastError] = ""
		return values, nil
	})
}

// LastLog returns the text and tag used by "Doing Same".
func (s *Store) LastLog() (models.LastLog, error) {
	v, err := s.read(constants.StateLastLog, constants.StateLastTag)
	if err != nil {
		return models.LastLog{}, err
	}
	return models.LastLog{Text: v.str(constants.StateLastLog, ""), Tag: v.str(constants.StateLastTag, "")}, nil
}

func (s *Store) SetLastError(msg string) error {
	return s.p.SetState(constants.StateLastError, msg)
}

// LastError returns the last submission error, or "" if the last one succeeded.
func (s *Store) LastError() (string, error) {
	v, err := s.read(constants.StateLastError)
	if err != nil {
		return "", err
	}
	return v.str(constants.StateLastError, ""), nil
}

// ResetDaily zeroes the counters and clears recent logs for the current day.
func (s *Store) ResetDaily() error {
	today, err := s.today()
	if err != nil {
		return err
	}
	values, err := daily{date: today, recent: []models.LogEntry{}}.values()
	if err != nil {
		return err
	}
	return s.p.SetStates(values)
}
