package stats

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/julianstephens/wurkwurk/internal/models"
	"github.com/julianstephens/wurkwurk/internal/state"
	"github.com/julianstephens/wurkwurk/internal/storage/sqlite"
	"github.com/julianstephens/wurkwurk/internal/webapp"
)

const weeklyJSON = `[
	{"timestamp":"2026-03-02T09:15:00Z","tag":"Meeting","domain":"meet.google.com","drifted":false,"reactive":true,"minutesSinceLast":"N/A"},
	{"timestamp":"2026-03-02T09:45:00Z","tag":"Focus Time","domain":"github.com","drifted":"TRUE","reactive":false,"minutesSinceLast":30},
	{"timestamp":"2026-03-03T11:00:00Z","tag":"Meeting","domain":"","drifted":false,"reactive":true,"minutesSinceLast":"20"},
	{"timestamp":"2026-03-09T11:00:00Z","tag":"Slack","domain":"slack.com","drifted":false,"reactive":false,"minutesSinceLast":10}
]`

func TestParseWeekly(t *testing.T) {
	quoted, _ := json.Marshal(weeklyJSON)
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"array", weeklyJSON, 4},
		{"string holding array", string(quoted), 4},
		{"object", `{"rows":[]}`, 0},
		{"empty", ``, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseWeekly(json.RawMessage(tt.raw)); len(got) != tt.want {
				t.Errorf("ParseWeekly() rows = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	rows := Filter(ParseWeekly(json.RawMessage(weeklyJSON)),
		time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 8, 23, 59, 59, 0, time.UTC))
	if len(rows) != 3 {
		t.Fatalf("Filter() rows = %d, want 3", len(rows))
	}

	s := Summarize(rows)
	if s.TotalLogs != 3 || s.ReactiveCount != 2 || s.ReactivePercent != 67 || s.DriftedCount != 1 {
		t.Errorf("summary = %+v", s)
	}
	// (0 + 30 + 20) / 3
	if s.AvgGapMin != 17 {
		t.Errorf("AvgGapMin = %d, want 17", s.AvgGapMin)
	}
	wantTags := []Bucket{{"Meeting", 2, 67}, {"Focus Time", 1, 33}}
	if !reflect.DeepEqual(s.ByTag, wantTags) {
		t.Errorf("ByTag = %+v, want %+v", s.ByTag, wantTags)
	}
	if s.ByDomain[0].Name != "Uncategorized" && s.ByDomain[0].Count != 1 {
		t.Errorf("ByDomain = %+v", s.ByDomain)
	}
	if len(s.ReactiveByTag) != 1 || s.ReactiveByTag[0] != (Bucket{"Meeting", 2, 100}) {
		t.Errorf("ReactiveByTag = %+v", s.ReactiveByTag)
	}
	if len(s.DriftedByDomain) != 1 || s.DriftedByDomain[0].Name != "github.com" {
		t.Errorf("DriftedByDomain = %+v", s.DriftedByDomain)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalLogs != 0 || s.ReactivePercent != 0 || s.AvgGapMin != 0 || len(s.ByTag) != 0 {
		t.Errorf("Summarize(nil) = %+v", s)
	}
}

type fakeFetcher struct {
	calls int
	data  string
	err   error
}

func (f *fakeFetcher) FetchWeekly(context.Context, string) (json.RawMessage, error) {
	f.calls++
	return json.RawMessage(f.data), f.err
}

func setupTestState(t *testing.T, now *time.Time) *state.Store {
	t.Helper()
	p := sqlite.NewStore(filepath.Join(t.TempDir(), "wurkwurk.db"))
	if err := p.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { p.Close() })
	s := state.New(p, func() time.Time { return *now })

	settings, _ := s.GetSettings()
	settings.Timezone = "UTC"
	settings.WebAppURL = "https://script.google.com/macros/s/abc/exec"
	if err := s.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}
	return s
}

func TestWeekly_Cache(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	s := setupTestState(t, &now)
	f := &fakeFetcher{data: weeklyJSON}
	ctx := context.Background()

	rows, cached, err := Weekly(ctx, s, f, false)
	if err != nil || cached || len(rows) != 4 {
		t.Fatalf("first Weekly() = %d rows, cached=%v, err=%v", len(rows), cached, err)
	}

	now = now.Add(9 * time.Minute)
	if _, cached, _ := Weekly(ctx, s, f, false); !cached || f.calls != 1 {
		t.Errorf("within ttl: cached=%v calls=%d, want cache hit", cached, f.calls)
	}

	if _, cached, _ := Weekly(ctx, s, f, true); cached || f.calls != 2 {
		t.Errorf("refresh: cached=%v calls=%d, want fetch", cached, f.calls)
	}

	now = now.Add(10 * time.Minute)
	if _, cached, _ := Weekly(ctx, s, f, false); cached || f.calls != 3 {
		t.Errorf("after ttl: cached=%v calls=%d, want fetch", cached, f.calls)
	}
}

func TestWeekly_Errors(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	s := setupTestState(t, &now)

	f := &fakeFetcher{err: webapp.ErrUnreachable}
	if _, _, err := Weekly(context.Background(), s, f, true); !errors.Is(err, webapp.ErrUnreachable) {
		t.Errorf("Weekly() error = %v, want ErrUnreachable", err)
	}

	settings, _ := s.GetSettings()
	settings.WebAppURL = ""
	s.SaveSettings(settings)
	if _, _, err := Weekly(context.Background(), s, f, true); !errors.Is(err, webapp.ErrNoURL) {
		t.Errorf("Weekly() error = %v, want ErrNoURL", err)
	}
}

func TestToday(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	s := setupTestState(t, &now)

	for i, drifted := range []bool{false, true, false, false} {
		e := models.LogEntry{
			Text:          "entry",
			Tag:           "Focus Time",
			Drifted:       drifted,
			Date:          "2026-03-04",
			FullTimestamp: now.Add(time.Duration(i) * time.Minute).Format("2006-01-02T15:04:05.000Z07:00"),
		}
		if err := s.RecordSubmission(e); err != nil {
			t.Fatalf("RecordSubmission() error = %v", err)
		}
	}
	if _, err := s.StartTask("Write report"); err != nil {
		t.Fatalf("StartTask() error = %v", err)
	}

	r, err := Today(s)
	if err != nil {
		t.Fatalf("Today() error = %v", err)
	}
	if r.Stats.LogsToday != 4 || r.Stats.DriftedLogs != 1 || r.FocusScore != 75 {
		t.Errorf("report = %+v", r)
	}
	if len(r.Logs) != 4 || r.Logs[0].FullTimestamp > r.Logs[3].FullTimestamp {
		t.Errorf("logs not oldest first: %+v", r.Logs)
	}
	if r.Task == nil || r.Task.Name != "Write report" {
		t.Errorf("task = %+v", r.Task)
	}
}
