package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/wurkwurk/internal/constants"
	"github.com/julianstephens/wurkwurk/internal/models"
)

// ErrTaskRunning is returned by StartTask while another task is active.
var ErrTaskRunning = errors.New("a task is already running")

// ErrNoTask is returned by StopTask when no task is active.
var ErrNoTask = errors.New("no task is running")

// ActiveTask returns the running task, if any.
func (s *Store) ActiveTask() (models.ActiveTask, bool, error) {
	v, err := s.read(constants.StateActiveTask)
	if err != nil {
		return models.ActiveTask{}, false, err
	}
	return activeTask(v)
}

func activeTask(v snapshot) (models.ActiveTask, bool, error) {
	t, err := decode(v, constants.StateActiveTask, models.ActiveTask{})
	if err != nil {
		return models.ActiveTask{}, false, err
	}
	return t, t.Name != "", nil
}

// StartTask starts the task timer.
func (s *Store) StartTask(name string) (models.ActiveTask, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.ActiveTask{}, errors.New("task name cannot be empty")
	}

	task := models.ActiveTask{Name: name, StartTime: s.now()}
	err := s.update([]string{constants.StateActiveTask}, func(v snapshot) (map[string]string, error) {
		if _, running, err := activeTask(v); err != nil {
			return nil, err
		} else if running {
			return nil, ErrTaskRunning
		}
		enc, err := encodeJSON(task)
		if err != nil {
			return nil, err
		}
		return map[string]string{constants.StateActiveTask: enc}, nil
	})
	if err != nil {
		return models.ActiveTask{}, err
	}
	return task, nil
}

// StopTask stops the timer, counts a completed task and stores the prefill
// text for the next prompt. It returns the prefill text.
func (s *Store) StopTask() (string, error) {
	today, err := s.today()
	if err != nil {
		return "", err
	}

	var prefill string
	err = s.update(withKeys(constants.StateActiveTask), func(v snapshot) (map[string]string, error) {
		task, running, err := activeTask(v)
		if err != nil {
			return nil, err
		}
		if !running {
			return nil, ErrNoTask
		}
		d, err := loadDaily(v, today)
		if err != nil {
			return nil, err
		}
		d.stats.TasksCompleted++
		values, err := d.values()
		if err != nil {
			return nil, err
		}
		prefill = task.PrefillText(s.now())
		values[constants.StateActiveTask] = ""
		values[constants.StatePrefill] = prefill
		return values, nil
	})
	if err != nil {
		return "", err
	}
	return prefill, nil
}

// TakePrefill returns the pending prefill text and clears it. Only one
// caller ever receives a given prefill.
func (s *Store) TakePrefill() (string, error) {
	var prefill string
	err := s.update([]string{constants.StatePrefill}, func(v snapshot) (map[string]string, error) {
		prefill = v.str(constants.StatePrefill, "")
		if prefill == "" {
			return nil, nil
		}
		return map[string]string{constants.StatePrefill: ""}, nil
	})
	return prefill, err
}

// WeeklyCache returns cached weekly data if it was fetched less than ttl ago.
func (s *Store) WeeklyCache(ttl time.Duration) (json.RawMessage, bool, error) {
	v, err := s.read(constants.StateWeeklyCache, constants.StateLastWeeklyFetch)
	if err != nil {
		return nil, false, err
	}
	data := v.str(constants.StateWeeklyCache, "")
	if data == "" {
		return nil, false, nil
	}
	ms, err := strconv.ParseInt(v.str(constants.StateLastWeeklyFetch, "0"), 10, 64)
	if err != nil {
		return nil, false, fmt.Errorf("state %s is not a number: %w", constants.StateLastWeeklyFetch, err)
	}
	if s.now().Sub(time.UnixMilli(ms)) >= ttl {
		return nil, false, nil
	}
	return json.RawMessage(data), true, nil
}

func (s *Store) SaveWeeklyCache(data json.RawMessage) error {
	return s.p.SetStates(map[string]string{
		constants.StateWeeklyCache:     string(data),
		constants.StateLastWeeklyFetch: strconv.FormatInt(s.now().UnixMilli(), 10),
	})
}
