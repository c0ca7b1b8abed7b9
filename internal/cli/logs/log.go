package logs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/wurkwurk/internal/cli"
	"github.com/julianstephens/wurkwurk/internal/constants"
	apperrors "github.com/julianstephens/wurkwurk/internal/errors"
	"github.com/julianstephens/wurkwurk/internal/models"
	"github.com/julianstephens/wurkwurk/internal/prompt"
	"github.com/julianstephens/wurkwurk/internal/watch"
)

// askFunc shows the interactive form.
var askFunc = prompt.Ask

// LogCmd submits a work log from the command line.
type LogCmd struct {
	Text        string `arg:"" optional:"" help:"What you worked on."`
	Tag         string `short:"t" help:"Tag for the entry."`
	Drifted     bool   `help:"Mark the entry as drifted (off-plan)."`
	Reactive    bool   `help:"Mark the entry as reactive (interrupt-driven)."`
	Keywords    string `short:"k" help:"Comma-separated keywords."`
	Domain      string `help:"Hostname to attach when domain logging is enabled."`
	Same        bool   `help:"Repeat the last log."`
	Break       bool   `help:"Log a break."`
	Snooze      bool   `help:"Snooze the daemon's next prompt for 30 minutes after logging."`
	Interactive bool   `short:"i" help:"Fill the entry in the prompt form."`
}

func (c *LogCmd) Validate() error {
	modes := 0
	for _, set := range []bool{c.Same, c.Break, c.Interactive} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return errors.New("--same, --break and --interactive are mutually exclusive")
	}
	if modes == 1 && strings.TrimSpace(c.Text) != "" {
		return errors.New("log text cannot be combined with --same, --break or --interactive")
	}
	return nil
}

func (c *LogCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	domain := ""
	if settings.IsDomainLogEnabled {
		domain = strings.TrimSpace(c.Domain)
	}

	resp, err := c.response(ctx, settings, domain)
	if err != nil {
		return err
	}
	return act(context.Background(), ctx, resp)
}

// response builds the prompt response the flags (or the form) describe.
func (c *LogCmd) response(ctx *cli.Context, settings models.Settings, domain string) (models.PromptResponse, error) {
	s := ctx.State()
	switch {
	case c.Interactive:
		req, err := promptRequest(ctx, settings, domain)
		if err != nil {
			return models.PromptResponse{}, err
		}
		return askFunc(context.Background(), req)
	case c.Same:
		last, err := s.LastLog()
		if err != nil {
			return models.PromptResponse{}, err
		}
		entry, ok := last.DoingSame(domain)
		if !ok {
			return models.PromptResponse{}, errors.New("nothing logged yet to repeat")
		}
		return c.submit(entry), nil
	case c.Break:
		return c.submit(models.BreakEntry(domain)), nil
	default:
		return c.submit(models.LogEntry{
			Text:     strings.TrimSpace(c.Text),
			Tag:      strings.TrimSpace(c.Tag),
			Drifted:  c.Drifted,
			Reactive: c.Reactive,
			Keywords: strings.TrimSpace(c.Keywords),
			Domain:   domain,
		}), nil
	}
}

func (c *LogCmd) submit(entry models.LogEntry) models.PromptResponse {
	resp := models.PromptResponse{Action: models.ActionSubmit, Entry: entry}
	if c.Snooze {
		resp.Action = models.ActionSubmitAndSnooze
		resp.Minutes = constants.LogAndSnoozeMinutes
	}
	return resp
}

func promptRequest(ctx *cli.Context, settings models.Settings, domain string) (models.PromptRequest, error) {
	s := ctx.State()
	mru, err := s.MRUTags()
	if err != nil {
		return models.PromptRequest{}, err
	}
	last, err := s.LastLog()
	if err != nil {
		return models.PromptRequest{}, err
	}
	prefill, err := s.TakePrefill()
	if err != nil {
		return models.PromptRequest{}, err
	}
	return models.PromptRequest{
		Domain:  domain,
		Tags:    settings.PromptTags(constants.BreakTag),
		MRUTags: mru,
		Last:    last,
		Prefill: prefill,
	}, nil
}

// act carries out resp from this process. Snoozes are forwarded to the daemon.
func act(runCtx context.Context, ctx *cli.Context, resp models.PromptResponse) error {
	switch resp.Action {
	case models.ActionSubmit, models.ActionSubmitAndSnooze:
		res := ctx.Submit(runCtx, resp.Entry)
		if err := apperrors.FromResult(res); err != nil {
			return err
		}
		fmt.Printf("%s Logged %q", cli.Mark(true), res.Entry.Text)
		if res.Entry.Tag != "" {
			fmt.Printf(" [%s]", res.Entry.Tag)
		}
		fmt.Println(cli.MutedStyle.Render(fmt.Sprintf(" (%s min since last)", res.Entry.Gap)))
		ctx.Signal(watch.KindLogged, 0)
		if resp.Action == models.ActionSubmitAndSnooze {
			ctx.Signal(watch.KindSnooze, resp.Minutes)
			fmt.Printf("Snoozed for %d minutes\n", resp.Minutes)
		}
		return nil
	case models.ActionSnooze:
		ctx.Signal(watch.KindSnooze, resp.Minutes)
		if resp.Minutes <= 0 {
			fmt.Println("Skipped to the next cycle")
		} else {
			fmt.Printf("Snoozed for %d minutes\n", resp.Minutes)
		}
		return nil
	default:
		fmt.Println("Nothing logged")
		return nil
	}
}
