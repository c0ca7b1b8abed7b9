package logs

import (
	"errors"
	"fmt"

	"github.com/julianstephens/wurkwurk/internal/cli"
	"github.com/julianstephens/wurkwurk/internal/watch"
)

// PromptCmd asks the daemon to show a prompt now, even on a blocked page.
type PromptCmd struct{}

func (c *PromptCmd) Run(ctx *cli.Context) error {
	ctx.Signal(watch.KindPrompt, 0)
	fmt.Println("Prompt requested")
	return nil
}

// SnoozeCmd postpones the daemon's next prompt.
type SnoozeCmd struct {
	Minutes int `arg:"" optional:"" default:"5" help:"Minutes to snooze."`
}

func (c *SnoozeCmd) Validate() error {
	if c.Minutes <= 0 {
		return errors.New("minutes must be positive; use 'wurkwurk skip' to skip a cycle")
	}
	return nil
}

func (c *SnoozeCmd) Run(ctx *cli.Context) error {
	ctx.Signal(watch.KindSnooze, c.Minutes)
	fmt.Printf("Snoozed for %d minutes\n", c.Minutes)
	return nil
}

// SkipCmd restarts the daemon's cycle, skipping the pending prompt.
type SkipCmd struct{}

func (c *SkipCmd) Run(ctx *cli.Context) error {
	ctx.Signal(watch.KindSnooze, 0)
	fmt.Println("Skipped to the next cycle")
	return nil
}
