package models

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/wurkwurk/internal/constants"
	"github.com/julianstephens/wurkwurk/internal/utils"
)

// DefaultSettings returns the settings used for any key that has never been saved.
func DefaultSettings() Settings {
	s, _ := MapToSettings(nil)
	return s
}

// MapToSettings converts a map of key-value pairs to a Settings struct.
// Keys missing from data keep their default value.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{
		LogIntervalMin:     constants.DefaultLogIntervalMin,
		LogTags:            SplitLines(constants.DefaultLogTags),
		IsDebugMode:        constants.DefaultIsDebugMode,
		WorkStartHour:      constants.DefaultWorkStartHour,
		WorkEndHour:        constants.DefaultWorkEndHour,
		BlockedDomains:     SplitLines(constants.DefaultBlockedDomains),
		WebAppURL:          constants.DefaultWebAppURL,
		IsDomainLogEnabled: constants.DefaultIsDomainLogEnabled,
		NotificationSound:  constants.DefaultNotificationSound,
		NotificationVolume: constants.DefaultNotificationVolume,
		IsPomodoroEnabled:  constants.DefaultIsPomodoroEnabled,
		Timezone:           constants.DefaultTimezone,
	}
	days, err := ParseWeekdayCodes(constants.DefaultWorkingDays)
	if err != nil {
		return Settings{}, err
	}
	settings.WorkingDays = days

	for key, value := range data {
		switch key {
		case constants.SettingLogIntervalMin:
			if _, err := fmt.Sscanf(value, "%d", &settings.LogIntervalMin); err != nil {
				return Settings{}, fmt.Errorf("parsing log_interval_min: %w", err)
			}
		case constants.SettingLogTags:
			settings.LogTags = SplitLines(value)
		case constants.SettingIsDebugMode:
			settings.IsDebugMode = value == "true"
		case constants.SettingWorkingDays:
			days, err := ParseWeekdayCodes(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing working_days: %w", err)
			}
			settings.WorkingDays = days
		case constants.SettingWorkStartHour:
			if _, err := fmt.Sscanf(value, "%d", &settings.WorkStartHour); err != nil {
				return Settings{}, fmt.Errorf("parsing work_start_hour: %w", err)
			}
		case constants.SettingWorkEndHour:
			if _, err := fmt.Sscanf(value, "%d", &settings.WorkEndHour); err != nil {
				return Settings{}, fmt.Errorf("parsing work_end_hour: %w", err)
			}
		case constants.SettingBlockedDomains:
			settings.BlockedDomains = SplitLines(value)
		case constants.SettingWebAppURL:
			settings.WebAppURL = value
		case constants.SettingIsDomainLogEnabled:
			settings.IsDomainLogEnabled = value == "true"
		case constants.SettingNotificationSound:
			settings.NotificationSound = value
		case constants.SettingNotificationVolume:
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing notification_volume: %w", err)
			}
			settings.NotificationVolume = v
		case constants.SettingIsPomodoroEnabled:
			settings.IsPomodoroEnabled = value == "true"
		case constants.SettingTimezone:
			settings.Timezone = value
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingLogIntervalMin:     fmt.Sprintf("%d", settings.LogIntervalMin),
		constants.SettingLogTags:            strings.Join(settings.LogTags, "\n"),
		constants.SettingIsDebugMode:        fmt.Sprintf("%v", settings.IsDebugMode),
		constants.SettingWorkingDays:        FormatWeekdayCodes(settings.WorkingDays),
		constants.SettingWorkStartHour:      fmt.Sprintf("%d", settings.WorkStartHour),
		constants.SettingWorkEndHour:        fmt.Sprintf("%d", settings.WorkEndHour),
		constants.SettingBlockedDomains:     strings.Join(settings.BlockedDomains, "\n"),
		constants.SettingWebAppURL:          settings.WebAppURL,
		constants.SettingIsDomainLogEnabled: fmt.Sprintf("%v", settings.IsDomainLogEnabled),
		constants.SettingNotificationSound:  settings.NotificationSound,
		constants.SettingNotificationVolume: strconv.FormatFloat(settings.NotificationVolume, 'f', -1, 64),
		constants.SettingIsPomodoroEnabled:  fmt.Sprintf("%v", settings.IsPomodoroEnabled),
		constants.SettingTimezone:           settings.Timezone,
	}
}

// ValidateSettings rejects settings the scheduler or pipeline cannot work with.
func ValidateSettings(s Settings) error {
	var errs []error
	if s.LogIntervalMin < 0 {
		errs = append(errs, fmt.Errorf("log interval must be >= 0, got %d", s.LogIntervalMin))
	}
	if s.WorkStartHour < 0 || s.WorkStartHour > 23 {
		errs = append(errs, fmt.Errorf("work start hour must be 0-23, got %d", s.WorkStartHour))
	}
	if s.WorkEndHour < 1 || s.WorkEndHour > 24 {
		errs = append(errs, fmt.Errorf("work end hour must be 1-24, got %d", s.WorkEndHour))
	}
	if s.WorkStartHour >= s.WorkEndHour {
		errs = append(errs, fmt.Errorf("work start hour (%d) must be before work end hour (%d)", s.WorkStartHour, s.WorkEndHour))
	}
	for _, d := range s.WorkingDays {
		if d < time.Sunday || d > time.Saturday {
			errs = append(errs, fmt.Errorf("invalid working day %d", d))
		}
	}
	if s.NotificationVolume < 0 || s.NotificationVolume > 1 {
		errs = append(errs, fmt.Errorf("notification volume must be between 0 and 1, got %v", s.NotificationVolume))
	}
	if !utils.ValidateTimezone(s.Timezone) {
		errs = append(errs, fmt.Errorf("invalid timezone %q", s.Timezone))
	}
	if s.WebAppURL != "" {
		u, err := url.Parse(s.WebAppURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("web app URL must be an http:// or https:// URL"))
		}
	}
	return errors.Join(errs...)
}

// SplitLines splits a newline-separated list, trimming entries and dropping blanks.
func SplitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ParseWeekdayCodes parses a comma-separated list of weekday codes (0=Sunday .. 6=Saturday).
func ParseWeekdayCodes(s string) ([]time.Weekday, error) {
	var days []time.Weekday
	seen := make(map[time.Weekday]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("invalid weekday code: %s", part)
		}
		wd := time.Weekday(n)
		if !seen[wd] {
			seen[wd] = true
			days = append(days, wd)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days, nil
}

// FormatWeekdayCodes is the inverse of ParseWeekdayCodes.
func FormatWeekdayCodes(days []time.Weekday) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ",")
}
