package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/wurkwurk/internal/cli"
	"github.com/julianstephens/wurkwurk/internal/coordinator"
	"github.com/julianstephens/wurkwurk/internal/logger"
	"github.com/julianstephens/wurkwurk/internal/models"
	"github.com/julianstephens/wurkwurk/internal/notifier"
	"github.com/julianstephens/wurkwurk/internal/prompt"
	"github.com/julianstephens/wurkwurk/internal/scheduler"
	"github.com/julianstephens/wurkwurk/internal/watch"
)

// daemonContext is the parent of the daemon's run context.
var daemonContext = context.Background

// DaemonCmd runs the reminder loop in the foreground.
type DaemonCmd struct {
	ActiveURL      string `help:"URL reported as the active page; blocked-domain checks and domain logging use its host." default:"about:blank"`
	NoNotification bool   `help:"Do not send desktop notifications through the tray helper."`
	Verbose        bool   `short:"v" help:"Also write info logs to stderr."`
}

func (c *DaemonCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if c.Verbose || settings.IsDebugMode {
		cfg := logger.Config{
			Debug:      ctx.Debug || settings.IsDebugMode,
			ConfigDir:  ctx.ConfigDir,
			Foreground: c.Verbose,
		}
		if err := logger.Init(cfg); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	runCtx, stop := signal.NotifyContext(daemonContext(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(ctx.SignalDir())
	if err != nil {
		return fmt.Errorf("failed to watch signal directory: %w", err)
	}
	go w.Run(runCtx)

	clock := scheduler.NewAlarmClock()
	defer clock.Close()

	collector := prompt.NewCollector()
	cfg := coordinator.Config{
		State:     ctx.State(),
		Transport: ctx.WebApp(runCtx),
		Prompter:  collector,
		Responses: collector.Responses(),
		Signals:   w.Signals(),
		Tabs:      coordinator.StaticTab(models.Tab{ID: 1, URL: c.ActiveURL}),
		Clock:     clock,
		Now:       ctx.Now,
		Retry:     ctx.Retry,
	}
	if !c.NoNotification {
		cfg.Notifier = notifier.New()
	}

	coord, err := coordinator.New(cfg)
	if err != nil {
		return err
	}

	fmt.Println(cli.TitleStyle.Render("wurkwurk daemon running") + cli.MutedStyle.Render(" (Ctrl+C to stop)"))
	logger.Info("Daemon started", "store", ctx.Store.GetConfigPath(), "signals", ctx.SignalDir())
	return coord.Run(runCtx)
}
