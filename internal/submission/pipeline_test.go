package submission

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/wurkwurk/internal/models"
	"github.com/julianstephens/wurkwurk/internal/utils"
	"github.com/julianstephens/wurkwurk/internal/webapp"
)

type fakeTransport struct {
	mu       sync.Mutex
	errs     []error
	calls    int
	payloads []models.LogPayload
}

func (f *fakeTransport) PostLog(_ context.Context, _ string, payload models.LogPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.payloads = append(f.payloads, payload)
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	if len(f.errs) > 1 {
		f.errs = f.errs[1:]
	}
	return err
}

type fakeHistory struct {
	settings models.Settings
	last     map[string]models.LogEntry
}

func (h *fakeHistory) GetSettings() (models.Settings, error) { return h.settings, nil }

func (h *fakeHistory) LastEntryForDate(date string) (models.LogEntry, bool, error) {
	e, ok := h.last[date]
	return e, ok, nil
}

type sleepRecorder struct {
	delays []time.Duration
}

func (r *sleepRecorder) Sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func rateLimited() error {
	return &webapp.StatusError{Code: 429, Status: "Too Many Requests"}
}

func newTestPipeline(t *testing.T, tr *fakeTransport, h *fakeHistory, now time.Time) (*Pipeline, *sleepRecorder) {
	t.Helper()
	rec := &sleepRecorder{}
	policy := DefaultRetryPolicy()
	policy.Sleep = rec.Sleep
	return New(tr, h, WithClock(func() time.Time { return now }), WithRetryPolicy(policy)), rec
}

func defaultHistory() *fakeHistory {
	s := models.DefaultSettings()
	s.WebAppURL = "https://script.google.com/macros/s/abc/exec"
	s.Timezone = "UTC"
	return &fakeHistory{settings: s, last: map[string]models.LogEntry{}}
}

func TestSubmit_Validation(t *testing.T) {
	tr := &fakeTransport{}
	p, _ := newTestPipeline(t, tr, defaultHistory(), time.Now())

	for _, text := range []string{"", "   ", "\n\t"} {
		res := p.Submit(context.Background(), models.LogEntry{Text: text, Tag: "Focus Time"})
		if res.Kind != models.ResultValidationError {
			t.Errorf("Submit(%q) kind = %s, want validation_error", text, res.Kind)
		}
	}
	if tr.calls != 0 {
		t.Errorf("transport called %d times, want 0", tr.calls)
	}
}

func TestSubmit_NoEndpoint(t *testing.T) {
	h := defaultHistory()
	h.settings.WebAppURL = ""
	tr := &fakeTransport{}
	p, _ := newTestPipeline(t, tr, h, time.Now())

	res := p.Submit(context.Background(), models.LogEntry{Text: "work"})
	if res.Kind != models.ResultConfigurationError {
		t.Fatalf("kind = %s, want configuration_error", res.Kind)
	}
	if res.Message != "Google Apps Script URL is not set." {
		t.Errorf("message = %q", res.Message)
	}
	if tr.calls != 0 {
		t.Errorf("transport called %d times, want 0", tr.calls)
	}
}

func TestSubmit_RetriesRateLimit(t *testing.T) {
	tr := &fakeTransport{errs: []error{rateLimited(), rateLimited(), nil}}
	p, rec := newTestPipeline(t, tr, defaultHistory(), time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC))

	res := p.Submit(context.Background(), models.LogEntry{Text: "Write report", Tag: "Focus Time"})
	if res.Kind != models.ResultSuccess {
		t.Fatalf("kind = %s, want success (%v)", res.Kind, res.Err)
	}
	if res.Attempts != 3 || tr.calls != 3 {
		t.Errorf("attempts = %d, calls = %d, want 3", res.Attempts, tr.calls)
	}
	if want := []time.Duration{2 * time.Second, 4 * time.Second}; !reflect.DeepEqual(rec.delays, want) {
		t.Errorf("delays = %v, want %v", rec.delays, want)
	}
}

func TestSubmit_RateLimitExhausted(t *testing.T) {
	tr := &fakeTransport{errs: []error{rateLimited()}}
	p, _ := newTestPipeline(t, tr, defaultHistory(), time.Now())

	res := p.Submit(context.Background(), models.LogEntry{Text: "work"})
	if res.Kind != models.ResultRateLimited {
		t.Fatalf("kind = %s, want rate_limited", res.Kind)
	}
	if tr.calls != 3 {
		t.Errorf("calls = %d, want 3", tr.calls)
	}
	if res.Message == "" {
		t.Error("expected a user-facing message")
	}
}

func TestSubmit_TransportErrorNotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"server error", &webapp.StatusError{Code: 500, Status: "Internal Server Error"}},
		{"unreachable", webapp.ErrUnreachable},
		{"script error", &webapp.ScriptError{Message: "Sheet not found"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &fakeTransport{errs: []error{tt.err}}
			p, rec := newTestPipeline(t, tr, defaultHistory(), time.Now())

			res := p.Submit(context.Background(), models.LogEntry{Text: "work"})
			if res.Kind != models.ResultTransportError {
				t.Errorf("kind = %s, want transport_error", res.Kind)
			}
			if tr.calls != 1 {
				t.Errorf("calls = %d, want 1", tr.calls)
			}
			if len(rec.delays) != 0 {
				t.Errorf("slept %v, want no sleeps", rec.delays)
			}
			if !errors.Is(res.Err, tt.err) {
				t.Errorf("Err = %v, want %v", res.Err, tt.err)
			}
		})
	}
}

func TestSubmit_Enrichment(t *testing.T) {
	now := time.Date(2026, 3, 4, 14, 37, 12, 0, time.UTC)
	tests := []struct {
		name    string
		last    map[string]models.LogEntry
		wantGap models.Gap
	}{
		{
			name:    "first entry of the day",
			wantGap: models.Gap{},
		},
		{
			name: "previous entry yesterday",
			last: map[string]models.LogEntry{
				"2026-03-03": {Date: "2026-03-03", FullTimestamp: "2026-03-03T17:00:00.000Z"},
			},
			wantGap: models.Gap{},
		},
		{
			name: "previous entry earlier today",
			last: map[string]models.LogEntry{
				"2026-03-04": {Date: "2026-03-04", FullTimestamp: "2026-03-04T14:15:00.000Z"},
			},
			wantGap: models.GapMinutes(22),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := defaultHistory()
			if tt.last != nil {
				h.last = tt.last
			}
			p, _ := newTestPipeline(t, &fakeTransport{}, h, now)

			res := p.Submit(context.Background(), models.LogEntry{Text: "Write report", Tag: "Focus Time"})
			if !res.OK() {
				t.Fatalf("kind = %s, want success", res.Kind)
			}
			e := res.Entry
			if e.Time != "14:37" || e.Date != "2026-03-04" {
				t.Errorf("time/date = %s %s, want 14:37 2026-03-04", e.Time, e.Date)
			}
			if e.Gap != tt.wantGap {
				t.Errorf("gap = %v, want %v", e.Gap, tt.wantGap)
			}
			if e.ID == "" {
				t.Error("expected an id")
			}
		})
	}
}

func TestSubmit_TimezoneDate(t *testing.T) {
	h := defaultHistory()
	h.settings.Timezone = "Asia/Tokyo"
	// 2026-03-04 23:30 UTC is already 2026-03-05 08:30 in Tokyo.
	p, _ := newTestPipeline(t, &fakeTransport{}, h, time.Date(2026, 3, 4, 23, 30, 0, 0, time.UTC))

	res := p.Submit(context.Background(), models.LogEntry{Text: "standup"})
	if !res.OK() {
		t.Fatalf("kind = %s, want success", res.Kind)
	}
	if res.Entry.Date != "2026-03-05" || res.Entry.Time != "08:30" {
		t.Errorf("date/time = %s %s, want 2026-03-05 08:30", res.Entry.Date, res.Entry.Time)
	}
	if res.Entry.FullTimestamp != "2026-03-04T23:30:00.000000000Z" {
		t.Errorf("fullTimestamp = %s", res.Entry.FullTimestamp)
	}
}

func TestSubmit_TimestampWithinCall(t *testing.T) {
	p := New(&fakeTransport{}, defaultHistory())

	start := time.Now()
	res := p.Submit(context.Background(), models.LogEntry{Text: "work"})
	end := time.Now()
	if !res.OK() {
		t.Fatalf("kind = %s, want success", res.Kind)
	}
	ts, err := utils.ParseTimestamp(res.Entry.FullTimestamp)
	if err != nil {
		t.Fatalf("ParseTimestamp() error = %v", err)
	}
	if ts.Before(start) || ts.After(end) {
		t.Errorf("fullTimestamp %v not within [%v, %v]", ts, start, end)
	}
}

func TestSubmit_PayloadFields(t *testing.T) {
	tr := &fakeTransport{}
	p, _ := newTestPipeline(t, tr, defaultHistory(), time.Now())

	in := models.LogEntry{Text: "Review PR", Tag: "Jira Tasks", Drifted: true, Reactive: true, Domain: "github.com", Keywords: "review"}
	p.Submit(context.Background(), in)

	want := models.LogPayload{Log: "Review PR", Tag: "Jira Tasks", Drifted: true, Reactive: true, Keywords: "review", Domain: "github.com"}
	if len(tr.payloads) != 1 || tr.payloads[0] != want {
		t.Errorf("payloads = %+v, want [%+v]", tr.payloads, want)
	}
}
