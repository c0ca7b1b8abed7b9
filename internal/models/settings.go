package models

import "time"

// Settings represents the user-editable settings that govern prompting and submission
type Settings struct {
	LogIntervalMin     int            `json:"log_interval_min" yaml:"log_interval_min"`           // minutes between automatic prompts, 0 disables them
	LogTags            []string       `json:"log_tags" yaml:"log_tags"`                           // tags offered by the prompt
	IsDebugMode        bool           `json:"is_debug_mode" yaml:"is_debug_mode"`                 // verbose logging
	WorkingDays        []time.Weekday `json:"working_days" yaml:"working_days"`                   // days on which prompts fire (0=Sunday)
	WorkStartHour      int            `json:"work_start_hour" yaml:"work_start_hour"`             // first hour prompts may fire, inclusive
	WorkEndHour        int            `json:"work_end_hour" yaml:"work_end_hour"`                 // hour prompts stop, exclusive
	BlockedDomains     []string       `json:"blocked_domains" yaml:"blocked_domains"`             // do-not-disturb hostname substrings
	WebAppURL          string         `json:"web_app_url" yaml:"web_app_url"`                     // transport endpoint
	IsDomainLogEnabled bool           `json:"is_domain_log_enabled" yaml:"is_domain_log_enabled"` // attach the active hostname to entries
	NotificationSound  string         `json:"notification_sound" yaml:"notification_sound"`       // sound file name, "none" disables
	NotificationVolume float64        `json:"notification_volume" yaml:"notification_volume"`     // 0..1
	IsPomodoroEnabled  bool           `json:"is_pomodoro_enabled" yaml:"is_pomodoro_enabled"`     // whether the task timer is offered
	Timezone           string         `json:"timezone" yaml:"timezone"`                           // IANA timezone name, or "Local"
}

// IsWorkingDay reports whether wd is one of the configured working days.
func (s Settings) IsWorkingDay(wd time.Weekday) bool {
	for _, d := range s.WorkingDays {
		if d == wd {
			return true
		}
	}
	return false
}

// PromptTags returns the configured tags with Break always present.
func (s Settings) PromptTags(breakTag string) []string {
	tags := make([]string, 0, len(s.LogTags)+1)
	hasBreak := false
	for _, t := range s.LogTags {
		if t == breakTag {
			hasBreak = true
		}
		tags = append(tags, t)
	}
	if !hasBreak {
		tags = append(tags, breakTag)
	}
	return tags
}
