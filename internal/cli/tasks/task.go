package tasks

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/wurkwurk/internal/cli"
	"github.com/julianstephens/wurkwurk/internal/state"
	"github.com/julianstephens/wurkwurk/internal/watch"
)

var errTimerDisabled = errors.New("the task timer is disabled (enable it with 'wurkwurk settings --pomodoro')")

type TaskStartCmd struct {
	Name string `arg:"" help:"What you are working on."`
}

func (c *TaskStartCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !settings.IsPomodoroEnabled {
		return errTimerDisabled
	}

	task, err := ctx.State().StartTask(c.Name)
	if err != nil {
		if errors.Is(err, state.ErrTaskRunning) {
			return fmt.Errorf("%w; stop it first with 'wurkwurk task stop'", err)
		}
		return err
	}
	ctx.Signal(watch.KindTask, 0)
	fmt.Printf("⏱  Started %q at %s\n", task.Name, task.StartTime.Format("15:04"))
	return nil
}

type TaskStopCmd struct{}

func (c *TaskStopCmd) Run(ctx *cli.Context) error {
	prefill, err := ctx.State().StopTask()
	if err != nil {
		return err
	}
	ctx.Signal(watch.KindTask, 0)
	fmt.Printf("%s Stopped: %s\n", cli.Mark(true), prefill)
	fmt.Println(cli.MutedStyle.Render("  The next prompt will be prefilled with this text."))
	return nil
}

type TaskStatusCmd struct{}

func (c *TaskStatusCmd) Run(ctx *cli.Context) error {
	task, ok, err := ctx.State().ActiveTask()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("No task running")
		return nil
	}
	now := time.Now
	if ctx.Now != nil {
		now = ctx.Now
	}
	elapsed := now().Sub(task.StartTime).Round(time.Minute)
	fmt.Printf("⏱  %s (%s elapsed)\n", task.Name, elapsed)
	return nil
}
