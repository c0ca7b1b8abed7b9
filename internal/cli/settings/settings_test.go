package settings

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/julianstephens/wurkwurk/internal/cli"
	"github.com/julianstephens/wurkwurk/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) *cli.Context {
	t.Helper()
	tempDir := t.TempDir()

	store := sqlite.NewStore(filepath.Join(tempDir, "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	return &cli.Context{Store: store, ConfigDir: tempDir}
}

func ptr[T any](v T) *T { return &v }

func TestSettingsCmd_List(t *testing.T) {
	ctx := setupTestDB(t)

	if err := (&SettingsCmd{List: true}).Run(ctx); err != nil {
		t.Errorf("settings list failed: %v", err)
	}
}

func TestSettingsCmd_Update(t *testing.T) {
	ctx := setupTestDB(t)

	cmd := &SettingsCmd{
		Interval:       ptr(30),
		Tags:           ptr("Meeting, Deep Work ,Slack"),
		WorkingDays:    ptr("mon,wed,5"),
		StartHour:      ptr(8),
		EndHour:        ptr(17),
		BlockedDomains: ptr("zoom.us,meet.google.com"),
		WebAppURL:      ptr(" https://script.google.com/macros/s/abc/exec "),
		DomainLog:      ptr(true),
		Volume:         ptr(0.8),
		Timezone:       ptr("Asia/Tokyo"),
	}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}

	got, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	if got.LogIntervalMin != 30 || got.WorkStartHour != 8 || got.WorkEndHour != 17 {
		t.Errorf("numeric settings = %+v", got)
	}
	if !reflect.DeepEqual(got.LogTags, []string{"Meeting", "Deep Work", "Slack"}) {
		t.Errorf("LogTags = %q", got.LogTags)
	}
	if !reflect.DeepEqual(got.WorkingDays, []time.Weekday{time.Monday, time.Wednesday, time.Friday}) {
		t.Errorf("WorkingDays = %v", got.WorkingDays)
	}
	if got.WebAppURL != "https://script.google.com/macros/s/abc/exec" {
		t.Errorf("WebAppURL = %q", got.WebAppURL)
	}
	if !got.IsDomainLogEnabled || got.NotificationVolume != 0.8 || got.Timezone != "Asia/Tokyo" {
		t.Errorf("settings = %+v", got)
	}

	// The running daemon is told about the change
	entries, err := os.ReadDir(ctx.SignalDir())
	if err != nil || len(entries) != 1 {
		t.Errorf("expected one signal file, got %d (%v)", len(entries), err)
	}
}

func TestSettingsCmd_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		cmd  SettingsCmd
	}{
		{"negative interval", SettingsCmd{Interval: ptr(-5)}},
		{"start after end", SettingsCmd{StartHour: ptr(18), EndHour: ptr(9)}},
		{"bad weekday", SettingsCmd{WorkingDays: ptr("funday")}},
		{"bad volume", SettingsCmd{Volume: ptr(1.5)}},
		{"bad timezone", SettingsCmd{Timezone: ptr("Mars/Olympus")}},
		{"bad url", SettingsCmd{WebAppURL: ptr("ftp://example.com")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := setupTestDB(t)
			if err := tt.cmd.Run(ctx); err == nil {
				t.Error("expected error")
			}
			got, _ := ctx.Store.GetSettings()
			if got.LogIntervalMin != 15 {
				t.Errorf("settings changed despite error: %+v", got)
			}
		})
	}
}

func TestSettingsCmd_ExportImport(t *testing.T) {
	ctx := setupTestDB(t)
	path := filepath.Join(t.TempDir(), "settings.yaml")

	if err := (&SettingsCmd{Interval: ptr(45), Tags: ptr("A,B")}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&SettingsCmd{Export: path}).Run(ctx); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	other := setupTestDB(t)
	if err := (&SettingsCmd{Import: path}).Run(other); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	got, _ := other.Store.GetSettings()
	if got.LogIntervalMin != 45 || !reflect.DeepEqual(got.LogTags, []string{"A", "B"}) {
		t.Errorf("imported settings = %+v", got)
	}
}

func TestSettingsCmd_ImportPartial(t *testing.T) {
	ctx := setupTestDB(t)
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("work_end_hour: 20\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := (&SettingsCmd{Import: path}).Run(ctx); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	got, _ := ctx.Store.GetSettings()
	if got.WorkEndHour != 20 || got.WorkStartHour != 9 || got.LogIntervalMin != 15 {
		t.Errorf("settings = %+v", got)
	}
}

func TestSettingsCmd_NoChanges(t *testing.T) {
	ctx := setupTestDB(t)
	if err := (&SettingsCmd{}).Run(ctx); err != nil {
		t.Errorf("settings without flags failed: %v", err)
	}
	if _, err := os.Stat(ctx.SignalDir()); !os.IsNotExist(err) {
		t.Error("no signal should be sent when nothing changed")
	}
}
