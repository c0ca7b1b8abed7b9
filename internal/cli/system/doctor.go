package system

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/wurkwurk/internal/cli"
	"github.com/julianstephens/wurkwurk/internal/constants"
	"github.com/julianstephens/wurkwurk/internal/keyring"
	"github.com/julianstephens/wurkwurk/internal/models"
	"github.com/julianstephens/wurkwurk/internal/notifier"
	"github.com/julianstephens/wurkwurk/internal/storage"
	"github.com/julianstephens/wurkwurk/internal/utils"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(ctx *cli.Context) error
	// warnOnly checks never fail the command.
	warnOnly bool
	// needsDB checks are skipped when the store is unreachable.
	needsDB bool
}

var doctorChecks = []check{
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Migrations complete", run: checkMigrationsComplete, needsDB: true},
	{name: "Settings valid", run: checkSettings, needsDB: true},
	{name: "Web app URL", run: checkWebAppURL, needsDB: true, warnOnly: true},
	{name: "Local state", run: checkState, needsDB: true},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "OS keyring", run: checkKeyring, warnOnly: true},
	{name: "Tray notifier", run: checkTray, warnOnly: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := true
	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range doctorChecks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	if db, ok := ctx.Store.(interface{ GetDB() *sql.DB }); ok {
		conn := db.GetDB()
		if conn == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := conn.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

func schemaVersions(ctx *cli.Context) (current, latest int, ok bool, err error) {
	m, isSQL := ctx.Store.(migratable)
	if !isSQL {
		// diskv has no schema
		return 0, 0, false, nil
	}
	runner, err := m.Runner()
	if err != nil {
		return 0, 0, true, err
	}
	if current, err = runner.GetCurrentVersion(); err != nil {
		return 0, 0, true, fmt.Errorf("failed to get current schema version: %w", err)
	}
	if latest, err = runner.GetLatestVersion(); err != nil {
		return 0, 0, true, fmt.Errorf("failed to get latest schema version: %w", err)
	}
	return current, latest, true, nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, ok, err := schemaVersions(ctx)
	if err != nil || !ok {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	current, latest, ok, err := schemaVersions(ctx)
	if err != nil || !ok {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'wurkwurk migrate')", current, latest)
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := models.ValidateSettings(settings); err != nil {
		return err
	}
	if len(settings.WorkingDays) == 0 {
		return errors.New("no working days configured, prompts will never fire")
	}
	return nil
}

func checkWebAppURL(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	switch {
	case settings.WebAppURL == "":
		return errors.New("no web app URL set - logs cannot be submitted (use 'wurkwurk settings --web-app-url')")
	case !strings.HasPrefix(settings.WebAppURL, constants.DiagnosticsURLPrefix):
		return fmt.Errorf("URL does not start with %s", constants.DiagnosticsURLPrefix)
	}
	return nil
}

func checkState(ctx *cli.Context) error {
	s := ctx.State()
	if _, err := s.DailyStats(); err != nil {
		return fmt.Errorf("daily counters unreadable: %w", err)
	}
	if _, err := s.MRUTags(); err != nil {
		return fmt.Errorf("recent tags unreadable: %w", err)
	}
	if _, err := s.TodayLogs(); err != nil {
		return fmt.Errorf("recent logs unreadable: %w", err)
	}
	if _, _, err := s.ActiveTask(); err != nil {
		return fmt.Errorf("active task unreadable: %w", err)
	}
	if _, err := ctx.Store.GetState(constants.StateLastError); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if ctx == nil || ctx.Store == nil {
		return nil
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		// Reported by the settings check
		return nil
	}
	if _, err := utils.LoadLocation(settings.Timezone); err != nil {
		return fmt.Errorf("timezone %q cannot be loaded: %w", settings.Timezone, err)
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}

func checkTray(ctx *cli.Context) error {
	if err := notifier.Probe(); err != nil {
		return fmt.Errorf("%v - reminders will show without desktop notifications", err)
	}
	return nil
}
