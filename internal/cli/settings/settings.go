package settings

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/wurkwurk/internal/cli"
	"github.com/julianstephens/wurkwurk/internal/constants"
	"github.com/julianstephens/wurkwurk/internal/models"
	"github.com/julianstephens/wurkwurk/internal/watch"
)

type SettingsCmd struct {
	List   bool   `help:"List current settings."`
	Export string `help:"Write settings as YAML to a file, or '-' for stdout." placeholder:"FILE"`
	Import string `help:"Read settings from a YAML file. Keys not in the file are left unchanged." placeholder:"FILE" type:"existingfile"`

	Interval       *int     `help:"Minutes between prompts (0 disables)."`
	Tags           *string  `help:"Comma-separated prompt tags."`
	WorkingDays    *string  `help:"Comma-separated working days (e.g. mon,tue or 1,2)."`
	StartHour      *int     `help:"First hour prompts may fire (0-23)."`
	EndHour        *int     `help:"Hour prompts stop (1-24, exclusive)."`
	BlockedDomains *string  `help:"Comma-separated do-not-disturb hostname fragments."`
	WebAppURL      *string  `name:"web-app-url" help:"Google Apps Script web app URL."`
	DomainLog      *bool    `help:"Attach the active page's hostname to entries."`
	Sound          *string  `help:"Notification sound file, or 'none'."`
	Volume         *float64 `help:"Notification volume (0-1)."`
	Pomodoro       *bool    `help:"Offer the task timer."`
	Timezone       *string  `help:"IANA timezone name, or 'Local'."`
	DebugMode      *bool    `help:"Verbose daemon logging."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		fmt.Println(cli.TitleStyle.Render("Current Settings"))
		fmt.Println(cli.Table([]string{"Setting", "Value"}, rows(settings)))
		return nil
	}
	if c.Export != "" {
		return export(settings, c.Export)
	}

	updated := false
	if c.Import != "" {
		if settings, err = importFile(settings, c.Import); err != nil {
			return err
		}
		updated = true
	}
	flagsUpdated, err := c.apply(&settings)
	if err != nil {
		return err
	}
	updated = updated || flagsUpdated

	if !updated {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	if err := ctx.State().SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.Signal(watch.KindSettings, 0)
	fmt.Println("Settings updated successfully.")
	return nil
}

// apply copies every flag that was given onto s.
func (c *SettingsCmd) apply(s *models.Settings) (bool, error) {
	updated := false
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
			updated = true
		}
	}
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
			updated = true
		}
	}
	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
			updated = true
		}
	}

	setInt(&s.LogIntervalMin, c.Interval)
	setInt(&s.WorkStartHour, c.StartHour)
	setInt(&s.WorkEndHour, c.EndHour)
	setBool(&s.IsDomainLogEnabled, c.DomainLog)
	setBool(&s.IsPomodoroEnabled, c.Pomodoro)
	setBool(&s.IsDebugMode, c.DebugMode)
	setString(&s.WebAppURL, c.WebAppURL)
	setString(&s.NotificationSound, c.Sound)
	setString(&s.Timezone, c.Timezone)

	if c.Tags != nil {
		s.LogTags = splitList(*c.Tags)
		updated = true
	}
	if c.BlockedDomains != nil {
		s.BlockedDomains = splitList(*c.BlockedDomains)
		updated = true
	}
	if c.WorkingDays != nil {
		days, err := cli.ParseWeekdays(*c.WorkingDays)
		if err != nil {
			return false, err
		}
		s.WorkingDays = days
		updated = true
	}
	if c.Volume != nil {
		s.NotificationVolume = *c.Volume
		updated = true
	}
	return updated, nil
}

func splitList(s string) []string {
	return models.SplitLines(strings.ReplaceAll(s, ",", "\n"))
}

func rows(s models.Settings) [][]string {
	interval := strconv.Itoa(s.LogIntervalMin) + " min"
	if s.LogIntervalMin == 0 {
		interval = "disabled"
	}
	url := s.WebAppURL
	if url == "" {
		url = cli.WarnStyle.Render("not set")
	}
	return [][]string{
		{"Log interval", interval},
		{"Tags", strings.Join(s.PromptTags(constants.BreakTag), ", ")},
		{"Working days", cli.FormatWeekdays(s.WorkingDays)},
		{"Working hours", fmt.Sprintf("%02d:00-%02d:00", s.WorkStartHour, s.WorkEndHour)},
		{"Blocked domains", strings.Join(s.BlockedDomains, ", ")},
		{"Web app URL", url},
		{"Domain logging", strconv.FormatBool(s.IsDomainLogEnabled)},
		{"Notification sound", s.NotificationSound},
		{"Notification volume", strconv.FormatFloat(s.NotificationVolume, 'f', -1, 64)},
		{"Task timer", strconv.FormatBool(s.IsPomodoroEnabled)},
		{"Timezone", s.Timezone},
		{"Debug mode", strconv.FormatBool(s.IsDebugMode)},
	}
}

func export(s models.Settings, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if path == "-" {
		fmt.Print(string(data))
		return nil
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Printf("✓ Settings exported to %s\n", path)
	return nil
}

// importFile decodes path over current, so omitted keys keep their value.
func importFile(current models.Settings, path string) (models.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return current, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &current); err != nil {
		return current, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return current, nil
}
