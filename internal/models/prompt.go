package models

import (
	"strconv"
	"time"
)

// Tab is the target a prompt is shown on.
type Tab struct {
	ID  int
	URL string
}

// PromptAction is the user's choice in a prompt.
type PromptAction string

const (
	ActionSubmit          PromptAction = "submit"
	ActionSubmitAndSnooze PromptAction = "submit_and_snooze"
	ActionSnooze          PromptAction = "snooze" // Minutes <= 0 means skip
	ActionDismiss         PromptAction = "dismiss"
)

// PromptRequest is everything the collector needs to render a prompt.
type PromptRequest struct {
	TabID   int
	Domain  string // empty unless domain logging is enabled
	Sound   string
	Volume  float64
	Tags    []string
	MRUTags []string
	Last    LastLog
	Prefill string
}

// PromptResponse is sent back by the collector once the user acts.
type PromptResponse struct {
	TabID   int
	Action  PromptAction
	Entry   LogEntry
	Minutes int
}

// ActiveTask is a running task timer.
type ActiveTask struct {
	Name      string    `json:"name"`
	StartTime time.Time `json:"startTime"`
}

// PrefillText is the log text suggested after a task stops.
func (t ActiveTask) PrefillText(now time.Time) string {
	mins := int(now.Sub(t.StartTime).Round(time.Minute) / time.Minute)
	return t.Name + " (approx. " + strconv.Itoa(mins) + " min)"
}

// DailyStats are the counters shown by "stats today".
type DailyStats struct {
	Date           string `json:"date"`
	LogsToday      int    `json:"logsToday"`
	DriftedLogs    int    `json:"driftedLogs"`
	TasksCompleted int    `json:"tasksCompleted"`
}

// FocusScore is the percentage of today's logs that were not drifted.
func (s DailyStats) FocusScore() int {
	if s.LogsToday <= 0 {
		return 0
	}
	return int(float64(s.LogsToday-s.DriftedLogs)/float64(s.LogsToday)*100 + 0.5)
}
