// Package prompt is the terminal collector: a huh form that asks what the
// user has been working on.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/wurkwurk/internal/constants"
	"github.com/julianstephens/wurkwurk/internal/models"
)

type choice string

const (
	choiceLog     choice = "log"
	choiceSame    choice = "same"
	choiceBreak   choice = "break"
	choiceSnooze  choice = "snooze"
	choiceDismiss choice = "dismiss"
)

// formModel holds the values bound to the form fields.
type formModel struct {
	Choice   choice
	Text     string
	Tag      string
	Drifted  bool
	Reactive bool
	Keywords string
	Snooze   bool // submit and snooze for the default period
	Minutes  int
}

// tagOptions lists recent tags first, then the remaining configured tags.
func tagOptions(mru, tags []string) []string {
	seen := make(map[string]bool, len(mru)+len(tags))
	out := make([]string, 0, len(mru)+len(tags))
	for _, list := range [][]string{mru, tags} {
		for _, t := range list {
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func newForm(req models.PromptRequest, fm *formModel) *huh.Form {
	choices := []huh.Option[choice]{huh.NewOption("Log what I did", choiceLog)}
	if req.Last.Text != "" {
		choices = append(choices, huh.NewOption(constants.DoingSamePrefix+req.Last.Text, choiceSame))
	}
	choices = append(choices,
		huh.NewOption(constants.BreakTag, choiceBreak),
		huh.NewOption("Snooze", choiceSnooze),
		huh.NewOption(fmt.Sprintf("Close (snooze %d min)", constants.CloseSnoozeMinutes), choiceDismiss),
	)

	tags := tagOptions(req.MRUTags, req.Tags)
	if len(tags) > 0 && fm.Tag == "" {
		fm.Tag = tags[0]
	}

	minutes := make([]huh.Option[int], 0, len(constants.SnoozeChoices))
	for _, m := range constants.SnoozeChoices {
		label := fmt.Sprintf("%d min", m)
		if m <= 0 {
			label = "Skip to next cycle"
		}
		minutes = append(minutes, huh.NewOption(label, m))
	}

	title := constants.NotificationTitle
	if req.Domain != "" {
		title += " (" + req.Domain + ")"
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[choice]().
				Title(title).
				Options(choices...).
				Value(&fm.Choice),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("What did you work on?").
				Value(&fm.Text).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("log text cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Tag").
				Options(huh.NewOptions(tags...)...).
				Value(&fm.Tag),
			huh.NewConfirm().
				Title("Drifted from the plan?").
				Value(&fm.Drifted),
			huh.NewConfirm().
				Title("Reactive work?").
				Value(&fm.Reactive),
			huh.NewInput().
				Title("Keywords").
				Value(&fm.Keywords),
			huh.NewConfirm().
				Title(fmt.Sprintf("Snooze %d min after logging?", constants.LogAndSnoozeMinutes)).
				Value(&fm.Snooze),
		).WithHideFunc(func() bool { return fm.Choice != choiceLog }),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Snooze for").
				Options(minutes...).
				Value(&fm.Minutes),
		).WithHideFunc(func() bool { return fm.Choice != choiceSnooze }),
	)
}

// toResponse converts the completed form into a response for req.
func toResponse(req models.PromptRequest, fm formModel) models.PromptResponse {
	resp := models.PromptResponse{TabID: req.TabID}
	switch fm.Choice {
	case choiceLog:
		resp.Action = models.ActionSubmit
		resp.Entry = models.LogEntry{
			Text:     strings.TrimSpace(fm.Text),
			Tag:      fm.Tag,
			Drifted:  fm.Drifted,
			Reactive: fm.Reactive,
			Keywords: strings.TrimSpace(fm.Keywords),
			Domain:   req.Domain,
		}
		if fm.Snooze {
			resp.Action = models.ActionSubmitAndSnooze
			resp.Minutes = constants.LogAndSnoozeMinutes
		}
	case choiceSame:
		entry, ok := req.Last.DoingSame(req.Domain)
		if !ok {
			resp.Action = models.ActionDismiss
			return resp
		}
		resp.Action = models.ActionSubmit
		resp.Entry = entry
	case choiceBreak:
		resp.Action = models.ActionSubmit
		resp.Entry = models.BreakEntry(req.Domain)
	case choiceSnooze:
		resp.Action = models.ActionSnooze
		resp.Minutes = fm.Minutes
	default:
		resp.Action = models.ActionDismiss
	}
	return resp
}

// Ask shows the form and waits for the user. Aborting the form dismisses it.
func Ask(ctx context.Context, req models.PromptRequest) (models.PromptResponse, error) {
	fm := formModel{Choice: choiceLog, Text: req.Prefill, Minutes: constants.SnoozeChoices[0]}
	if err := newForm(req, &fm).RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return models.PromptResponse{TabID: req.TabID, Action: models.ActionDismiss}, nil
		}
		return models.PromptResponse{}, err
	}
	return toResponse(req, fm), nil
}
