package system

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/wurkwurk/internal/cli"
	"github.com/julianstephens/wurkwurk/internal/constants"
	"github.com/julianstephens/wurkwurk/internal/logger"
	"github.com/julianstephens/wurkwurk/internal/storage"
)

type DebugCmd struct {
	DBPath       *DebugDBPathCmd       `cmd:"" help:"Show database path."`
	DumpSettings *DebugDumpSettingsCmd `cmd:"" help:"Dump settings as JSON."`
	DumpState    *DebugDumpStateCmd    `cmd:"" help:"Dump local state as JSON."`
	Info         *DebugInfoCmd         `cmd:"" help:"Show endpoint, last error and daemon paths."`
}

// stateKeys are dumped in this order.
var stateKeys = []string{
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
	constants.StateLastWeeklyFetch,
}

func printJSON(v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(map[string]string{"path": ctx.Store.GetConfigPath()})
}

type DebugDumpSettingsCmd struct{}

func (cmd *DebugDumpSettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return printJSON(settings)
}

type DebugDumpStateCmd struct {
	WithCache bool `help:"Include the cached weekly payload."`
}

func (cmd *DebugDumpStateCmd) Run(ctx *cli.Context) error {
	values, err := dumpState(ctx.Store, cmd.WithCache)
	if err != nil {
		return err
	}
	return printJSON(values)
}

// dumpState returns every written state key. JSON values are embedded as-is.
func dumpState(p storage.Provider, withCache bool) (map[string]any, error) {
	keys := stateKeys
	if withCache {
		keys = append(append([]string{}, stateKeys...), constants.StateWeeklyCache)
	}

	out := make(map[string]any, len(keys))
	for _, key := range keys {
		val, err := p.GetState(key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		if json.Valid([]byte(val)) {
			out[key] = json.RawMessage(val)
		} else {
			out[key] = val
		}
	}
	return out, nil
}

type DebugInfoCmd struct{}

type debugInfo struct {
	Version    string `json:"version"`
	Store      string `json:"store"`
	WebAppURL  string `json:"web_app_url"`
	DebugMode  bool   `json:"debug_mode"`
	LastError  string `json:"last_error"`
	LogsToday  int    `json:"logs_today"`
	ActiveTask string `json:"active_task,omitempty"`
	SignalDir  string `json:"signal_dir"`
	LogFile    string `json:"log_file"`
}

func (cmd *DebugInfoCmd) Run(ctx *cli.Context) error {
	info, err := collectDebugInfo(ctx)
	if err != nil {
		return err
	}
	return printJSON(info)
}

func collectDebugInfo(ctx *cli.Context) (debugInfo, error) {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return debugInfo{}, fmt.Errorf("failed to get settings: %w", err)
	}
	s := ctx.State()

	lastErr, err := s.LastError()
	if err != nil {
		return debugInfo{}, err
	}
	stats, err := s.DailyStats()
	if err != nil {
		return debugInfo{}, err
	}
	info := debugInfo{
		Version:   constants.Version,
		Store:     ctx.Store.GetConfigPath(),
		WebAppURL: settings.WebAppURL,
		DebugMode: settings.IsDebugMode || ctx.Debug,
		LastError: lastErr,
		LogsToday: stats.LogsToday,
		SignalDir: ctx.SignalDir(),
		LogFile:   logger.LogFilePath(ctx.ConfigDir),
	}
	if task, ok, err := s.ActiveTask(); err == nil && ok {
		info.ActiveTask = task.Name
	}
	return info, nil
}
