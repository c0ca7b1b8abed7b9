package insights

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/julianstephens/wurkwurk/internal/cli"
	"github.com/julianstephens/wurkwurk/internal/stats"
)

type TodayCmd struct{}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	r, err := stats.Today(ctx.State())
	if err != nil {
		return fmt.Errorf("failed to read today's stats: %w", err)
	}

	fmt.Println(cli.TitleStyle.Render("Today " + r.Stats.Date))
	fmt.Println(cli.Table(
		[]string{"Logs", "Drifted", "Tasks done", "Focus score"},
		[][]string{{
			strconv.Itoa(r.Stats.LogsToday),
			strconv.Itoa(r.Stats.DriftedLogs),
			strconv.Itoa(r.Stats.TasksCompleted),
			strconv.Itoa(r.FocusScore) + "%",
		}},
	))
	if r.Task != nil {
		fmt.Printf("⏱  Running: %s since %s\n", r.Task.Name, r.Task.StartTime.Format("15:04"))
	}

	if len(r.Logs) == 0 {
		fmt.Println(cli.MutedStyle.Render("Nothing logged yet today."))
		return nil
	}
	rows := make([][]string, 0, len(r.Logs))
	for _, e := range r.Logs {
		flags := ""
		if e.Drifted {
			flags += "drifted "
		}
		if e.Reactive {
			flags += "reactive"
		}
		rows = append(rows, []string{e.Time, e.Text, e.Tag, e.Gap.String(), flags})
	}
	fmt.Println(cli.Table([]string{"Time", "Log", "Tag", "Gap", ""}, rows))
	return nil
}

type WeeklyCmd struct {
	Refresh bool `help:"Ignore the local cache and fetch from the web app."`
	Days    int  `help:"Number of days to include." default:"7"`
}

func (c *WeeklyCmd) Run(ctx *cli.Context) error {
	runCtx := context.Background()
	rows, cached, err := stats.Weekly(runCtx, ctx.State(), ctx.WebApp(runCtx), c.Refresh)
	if err != nil {
		return err
	}

	now := time.Now
	if ctx.Now != nil {
		now = ctx.Now
	}
	end := now()
	days := c.Days
	if days <= 0 {
		days = 7
	}
	rows = stats.Filter(rows, end.AddDate(0, 0, -days), end)
	s := stats.Summarize(rows)

	title := fmt.Sprintf("Last %d days", days)
	if cached {
		title += cli.MutedStyle.Render(" (cached)")
	}
	fmt.Println(cli.TitleStyle.Render(title))
	fmt.Println(cli.Table(
		[]string{"Logs", "Reactive", "Drifted", "Avg gap"},
		[][]string{{
			strconv.Itoa(s.TotalLogs),
			fmt.Sprintf("%d (%d%%)", s.ReactiveCount, s.ReactivePercent),
			strconv.Itoa(s.DriftedCount),
			fmt.Sprintf("%d min", s.AvgGapMin),
		}},
	))

	for _, section := range []struct {
		title   string
		buckets []stats.Bucket
	}{
		{"By tag", s.ByTag},
		{"By domain", s.ByDomain},
		{"Reactive by tag", s.ReactiveByTag},
		{"Drifted by domain", s.DriftedByDomain},
	} {
		if len(section.buckets) == 0 {
			continue
		}
		fmt.Println(cli.TitleStyle.Render(section.title))
		fmt.Println(cli.Table([]string{"Name", "Count", "%"}, bucketRows(section.buckets)))
	}
	return nil
}

func bucketRows(buckets []stats.Bucket) [][]string {
	rows := make([][]string, len(buckets))
	for i, b := range buckets {
		rows[i] = []string{b.Name, strconv.Itoa(b.Count), strconv.Itoa(b.Percentage)}
	}
	return rows
}
