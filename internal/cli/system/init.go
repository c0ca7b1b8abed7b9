package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/wurkwurk/internal/cli"
	"github.com/julianstephens/wurkwurk/internal/constants"
	"github.com/julianstephens/wurkwurk/internal/storage"
	"github.com/julianstephens/wurkwurk/internal/storage/diskv"
	"github.com/julianstephens/wurkwurk/internal/storage/postgres"
	"github.com/julianstephens/wurkwurk/internal/storage/sqlite"
)

// copiedStateKeys is the local state carried over by --source.
var copiedStateKeys = []string{
	constants.StateLastLog,
	constants.StateLastTag,
	constants.StateLastError,
	constants.StateMRUTags,
	constants.StateRecentLogs,
	constants.StateLogsToday,
	constants.StateDriftedLogs,
	constants.StateTasksCompleted,
	constants.StateStatsDate,
	constants.StateActiveTask,
	constants.StatePrefill,
}

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to copy settings and state from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized %s storage at: %s\n", constants.AppName, ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyFrom(ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migration completed successfully!")
	}
	return nil
}

// reset deletes an existing sqlite database file. Other backends are
// re-initialised in place.
func (c *InitCmd) reset(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil
	}
	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		if abs, err := filepath.Abs(dbPath); err == nil {
			dbPath = abs
		}
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		fmt.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

// OpenSource returns a provider for a --source or --config style location.
func OpenSource(location string) (storage.Provider, error) {
	switch {
	case strings.HasPrefix(location, "postgres://"), strings.HasPrefix(location, "postgresql://"):
		if err := postgres.CheckConnString(location); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return nil, err
		}
		return postgres.New(location), nil
	case strings.HasPrefix(location, diskv.Scheme):
		return diskv.NewStore(strings.TrimPrefix(location, diskv.Scheme)), nil
	default:
		return sqlite.NewStore(location), nil
	}
}

func (c *InitCmd) copyFrom(ctx *cli.Context, location string) error {
	source, err := OpenSource(location)
	if err != nil {
		return err
	}
	if err := source.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	fmt.Println("  Copying settings...")
	settings, err := source.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	fmt.Println("  Copying local state...")
	values := make(map[string]string)
	for _, key := range copiedStateKeys {
		v, err := source.GetState(key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read %s from source: %w", key, err)
		}
		values[key] = v
	}
	if err := ctx.Store.SetStates(values); err != nil {
		return fmt.Errorf("failed to save state to destination: %w", err)
	}
	fmt.Printf("    Copied %d state values\n", len(values))
	return nil
}
