package insights

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/julianstephens/wurkwurk/internal/cli"
	"github.com/julianstephens/wurkwurk/internal/models"
	"github.com/julianstephens/wurkwurk/internal/storage/sqlite"
)

const weeklyBody = `{"status":"success","data":[
	{"timestamp":"2026-03-02T09:15:00Z","tag":"Meeting","domain":"meet.google.com","drifted":false,"reactive":true,"minutesSinceLast":"N/A"},
	{"timestamp":"2026-03-03T09:45:00Z","tag":"Focus Time","domain":"github.com","drifted":true,"reactive":false,"minutesSinceLast":30}
]}`

func setupTest(t *testing.T, handler http.Handler) *cli.Context {
	t.Helper()
	tempDir := t.TempDir()
	store := sqlite.NewStore(filepath.Join(tempDir, "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := &cli.Context{Store: store, ConfigDir: tempDir}
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	ctx.Now = func() time.Time { return now }

	settings, _ := store.GetSettings()
	settings.Timezone = "UTC"
	if handler != nil {
		server := httptest.NewServer(handler)
		t.Cleanup(server.Close)
		settings.WebAppURL = server.URL
		ctx.HTTPClient = server.Client()
	}
	if err := store.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}
	return ctx
}

func TestTodayCmd(t *testing.T) {
	ctx := setupTest(t, nil)

	if err := (&TodayCmd{}).Run(ctx); err != nil {
		t.Fatalf("today with no logs failed: %v", err)
	}

	entry := models.LogEntry{Text: "standup", Tag: "Meeting", Date: "2026-03-04", Time: "09:30", Drifted: true}
	if err := ctx.State().RecordSubmission(entry); err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.State().StartTask("Write report"); err != nil {
		t.Fatal(err)
	}
	if err := (&TodayCmd{}).Run(ctx); err != nil {
		t.Errorf("today failed: %v", err)
	}
}

func TestWeeklyCmd(t *testing.T) {
	var calls atomic.Int32
	ctx := setupTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("action") != "getWeeklyData" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(weeklyBody))
	}))

	if err := (&WeeklyCmd{Days: 7}).Run(ctx); err != nil {
		t.Fatalf("weekly failed: %v", err)
	}
	if err := (&WeeklyCmd{Days: 7}).Run(ctx); err != nil {
		t.Fatalf("cached weekly failed: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("web app called %d times, want 1 (second run cached)", got)
	}
	if err := (&WeeklyCmd{Refresh: true}).Run(ctx); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("web app called %d times after refresh, want 2", got)
	}
}

func TestWeeklyCmd_NoURL(t *testing.T) {
	ctx := setupTest(t, nil)
	if err := (&WeeklyCmd{}).Run(ctx); err == nil {
		t.Error("weekly without a web app URL should fail")
	}
}
