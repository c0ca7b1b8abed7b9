package models

import (
	"reflect"
	"testing"
	"time"

	"github.com/julianstephens/wurkwurk/internal/constants"
)

func TestMapToSettings_Defaults(t *testing.T) {
	s, err := MapToSettings(map[string]string{})
	if err != nil {
		t.Fatalf("MapToSettings() error = %v", err)
	}
	if s.LogIntervalMin != constants.DefaultLogIntervalMin {
		t.Errorf("LogIntervalMin = %d, want %d", s.LogIntervalMin, constants.DefaultLogIntervalMin)
	}
	wantDays := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	if !reflect.DeepEqual(s.WorkingDays, wantDays) {
		t.Errorf("WorkingDays = %v, want %v", s.WorkingDays, wantDays)
	}
	if len(s.BlockedDomains) != 4 || s.BlockedDomains[0] != "meet.google.com" {
		t.Errorf("BlockedDomains = %v", s.BlockedDomains)
	}
	if s.Timezone != constants.DefaultTimezone {
		t.Errorf("Timezone = %q, want %q", s.Timezone, constants.DefaultTimezone)
	}
}

func TestMapToSettings_ZeroIntervalIsKept(t *testing.T) {
	s, err := MapToSettings(map[string]string{constants.SettingLogIntervalMin: "0"})
	if err != nil {
		t.Fatalf("MapToSettings() error = %v", err)
	}
	if s.LogIntervalMin != 0 {
		t.Errorf("LogIntervalMin = %d, want 0", s.LogIntervalMin)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	in := DefaultSettings()
	in.LogIntervalMin = 20
	in.WorkingDays = []time.Weekday{time.Saturday, time.Sunday}
	in.BlockedDomains = []string{"zoom.us"}
	in.WebAppURL = "https://script.google.com/macros/s/abc/exec"
	in.NotificationVolume = 0.25
	in.IsDomainLogEnabled = true

	out, err := MapToSettings(SettingsToMap(in))
	if err != nil {
		t.Fatalf("MapToSettings() error = %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n in = %+v\nout = %+v", in, out)
	}
}

func TestMapToSettings_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"interval not a number", constants.SettingLogIntervalMin, "soon"},
		{"weekday out of range", constants.SettingWorkingDays, "1,9"},
		{"volume not a number", constants.SettingNotificationVolume, "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := MapToSettings(map[string]string{tt.key: tt.val}); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(s *Settings) {}, false},
		{"interval disabled", func(s *Settings) { s.LogIntervalMin = 0 }, false},
		{"negative interval", func(s *Settings) { s.LogIntervalMin = -5 }, true},
		{"start after end", func(s *Settings) { s.WorkStartHour = 19 }, true},
		{"end 24", func(s *Settings) { s.WorkEndHour = 24 }, false},
		{"volume too high", func(s *Settings) { s.NotificationVolume = 1.5 }, true},
		{"bad timezone", func(s *Settings) { s.Timezone = "Mars/Olympus" }, true},
		{"good timezone", func(s *Settings) { s.Timezone = "Europe/Vilnius" }, false},
		{"local timezone", func(s *Settings) { s.Timezone = "Local" }, false},
		{"empty timezone", func(s *Settings) { s.Timezone = "" }, false},
		{"bad url scheme", func(s *Settings) { s.WebAppURL = "ftp://example.com" }, true},
		{"https url", func(s *Settings) { s.WebAppURL = "https://script.google.com/macros/s/x/exec" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := ValidateSettings(s)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSettings() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPromptTags_AlwaysHasBreak(t *testing.T) {
	s := Settings{LogTags: []string{"Meeting", "Slack"}}
	tags := s.PromptTags(constants.BreakTag)
	if tags[len(tags)-1] != constants.BreakTag {
		t.Errorf("PromptTags() = %v, want Break appended", tags)
	}

	s.LogTags = []string{"Break", "Meeting"}
	if got := s.PromptTags(constants.BreakTag); len(got) != 2 {
		t.Errorf("PromptTags() = %v, want no duplicate Break", got)
	}
}
