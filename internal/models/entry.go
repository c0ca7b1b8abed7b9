package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/julianstephens/wurkwurk/internal/constants"
)

// LogEntry is one user-submitted work log. Time, Date, Gap and FullTimestamp
// are derived by the submission pipeline and empty until then.
type LogEntry struct {
	ID       string `json:"id,omitempty"`
	Text     string `json:"logText"`
	Tag      string `json:"tag"`
	Drifted  bool   `json:"drifted"`
	Reactive bool   `json:"reactive"`
	Domain   string `json:"domain"`
	Keywords string `json:"keywords"`

	Time          string `json:"time,omitempty"`
	Date          string `json:"date,omitempty"`
	Gap           Gap    `json:"gap"`
	FullTimestamp string `json:"fullTimestamp,omitempty"`
}

// Payload returns the body sent to the web app for this entry.
func (e LogEntry) Payload() LogPayload {
	return LogPayload{
		Log:      e.Text,
		Tag:      e.Tag,
		Drifted:  e.Drifted,
		Reactive: e.Reactive,
		Keywords: e.Keywords,
		Domain:   e.Domain,
	}
}

// LogPayload is the JSON body of a log submission.
type LogPayload struct {
	Log      string `json:"log"`
	Tag      string `json:"tag"`
	Drifted  bool   `json:"drifted"`
	Reactive bool   `json:"reactive"`
	Keywords string `json:"keywords"`
	Domain   string `json:"domain"`
}

// Gap is the number of minutes since the previous same-day entry.
// The zero value means "not applicable".
type Gap struct {
	Minutes int
	Valid   bool
}

// GapMinutes returns a valid Gap of m minutes.
func GapMinutes(m int) Gap {
	return Gap{Minutes: m, Valid: true}
}

func (g Gap) String() string {
	if !g.Valid {
		return constants.GapNotApplicable
	}
	return fmt.Sprintf("%d", g.Minutes)
}

// MarshalJSON writes the minutes as a number, or "N/A" when not applicable.
func (g Gap) MarshalJSON() ([]byte, error) {
	if !g.Valid {
		return json.Marshal(constants.GapNotApplicable)
	}
	return json.Marshal(g.Minutes)
}

func (g *Gap) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*g = GapMinutes(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("gap must be a number or %q: %w", constants.GapNotApplicable, err)
	}
	*g = Gap{}
	return nil
}

// LastLog is the most recently submitted text and tag, used for "Doing Same".
type LastLog struct {
	Text string `json:"text"`
	Tag  string `json:"tag"`
}

// DoingSame returns an entry repeating the last log, or false if there is none.
func (l LastLog) DoingSame(domain string) (LogEntry, bool) {
	if strings.TrimSpace(l.Text) == "" {
		return LogEntry{}, false
	}
	return LogEntry{
		Text:   constants.DoingSamePrefix + l.Text,
		Tag:    l.Tag,
		Domain: domain,
	}, true
}

// BreakEntry returns the quick "Break" entry.
func BreakEntry(domain string) LogEntry {
	return LogEntry{Text: constants.BreakTag, Tag: constants.BreakTag, Domain: domain}
}
